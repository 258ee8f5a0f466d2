package entity

// ChunkSearchRow 检索查询的投影结果，带相关性得分
type ChunkSearchRow struct {
	ChunkID       string  `xorm:"'chunk_id'"`
	DocumentID    string  `xorm:"'document_id'"`
	DocumentTitle string  `xorm:"'document_title'"`
	Content       string  `xorm:"'content'"`
	Metadata      string  `xorm:"'chunk_metadata'"`
	Score         float64 `xorm:"'score'"`
}
