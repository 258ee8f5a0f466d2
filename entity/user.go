package entity

import "time"

const (
	TableNameUsers = "users"

	UserFieldID           = "id"
	UserFieldEmail        = "email"
	UserFieldPasswordHash = "password_hash"
	UserFieldFullName     = "full_name"
	UserFieldRole         = "role"
	UserFieldIsActive     = "is_active"
	UserFieldCreatedAt    = "created_at"
	UserFieldUpdatedAt    = "updated_at"
)

// User 用户数据库实体
type User struct {
	ID           string    `xorm:"pk varchar(36) 'id'" json:"id"`
	Email        string    `xorm:"varchar(255) unique 'email'" json:"email"`
	PasswordHash string    `xorm:"varchar(255) 'password_hash'" json:"-"`
	FullName     string    `xorm:"varchar(255) 'full_name'" json:"full_name"`
	Role         string    `xorm:"varchar(32) 'role'" json:"role"`
	IsActive     bool      `xorm:"bool 'is_active'" json:"is_active"`
	CreatedAt    time.Time `xorm:"created 'created_at'" json:"created_at"`
	UpdatedAt    time.Time `xorm:"updated 'updated_at'" json:"updated_at"`
}

func (e *User) TableName() string {
	return TableNameUsers
}
