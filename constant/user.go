package constant

// =============================================
// 用户角色常量
// =============================================

// UserRole 用户角色
type UserRole string

const (
	// UserRoleAdmin 管理员，可以管理用户
	UserRoleAdmin UserRole = "admin"
	// UserRoleEditor 编辑者，可以上传和修改文档
	UserRoleEditor UserRole = "editor"
	// UserRoleViewer 只读用户，只能检索和问答
	UserRoleViewer UserRole = "viewer"
)

// String 返回角色的字符串值
func (r UserRole) String() string {
	return string(r)
}

// IsValid 检查角色是否有效
func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleAdmin, UserRoleEditor, UserRoleViewer:
		return true
	}
	return false
}

// CanWriteDocuments 是否可以上传/修改文档
func (r UserRole) CanWriteDocuments() bool {
	return r == UserRoleAdmin || r == UserRoleEditor
}
