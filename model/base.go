package model

// Pager 分页结构
type Pager struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Order 排序结构
type Order struct {
	OrderAsc bool   `json:"order_asc" form:"order_asc"` // 是否升序，eg: false
	OrderBy  string `json:"order_by" form:"order_by"`   // 排序字段，eg: "created_at"
}

// GetDocumentsCondition 文档列表查询条件（带分页和排序）
type GetDocumentsCondition struct {
	OwnerID  *string  `json:"owner_id"`
	IDs      []string `json:"ids"`
	Title    *string  `json:"title"`    // ilike 查询
	Category *string  `json:"category"` // document_metadata 里的 category
	Tags     []string `json:"tags"`     // document_metadata 里的 tags，要求全部包含
	*Pager
	*Order
}

func (g *GetDocumentsCondition) GetPager() *Pager {
	return g.Pager
}

func (g *GetDocumentsCondition) GetOrder() *Order {
	return g.Order
}

// GetChunksCondition 分块查询条件
type GetChunksCondition struct {
	DocumentID           *string  `json:"document_id"`
	DocumentIDs          []string `json:"document_ids"`
	OnlyMissingEmbedding bool     `json:"only_missing_embedding"`
	*Pager
	*Order
}

func (g *GetChunksCondition) GetPager() *Pager {
	return g.Pager
}

func (g *GetChunksCondition) GetOrder() *Order {
	return g.Order
}
