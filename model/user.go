package model

// UpdateDocumentCondition 文档更新条件
type UpdateDocumentCondition struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	Metadata *string `json:"metadata"` // JSON 字符串
}

// GetUsersCondition 用户列表查询条件
type GetUsersCondition struct {
	Email *string `json:"email"`
	Role  *string `json:"role"`
	*Pager
	*Order
}

func (g *GetUsersCondition) GetPager() *Pager {
	return g.Pager
}

func (g *GetUsersCondition) GetOrder() *Order {
	return g.Order
}
