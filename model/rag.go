package model

const (
	RagMaxResultsLimit = 20
)

// RagQueryRequest RAG 问答请求
type RagQueryRequest struct {
	Question         string   `json:"question" binding:"required"`
	MaxResults       *int     `json:"max_results"` // 1~20，默认取配置
	Temperature      *float64 `json:"temperature"`
	IncludeCitations *bool    `json:"include_citations"`
	DocumentIDs      []string `json:"document_ids"`
}

// Validate 校验 RAG 请求参数
func (r *RagQueryRequest) Validate() *Error {
	if len(r.Question) == 0 || len(r.Question) > SearchQueryMaxLength {
		return NewError(ErrorRagQuestionInvalid, nil)
	}

	if r.MaxResults != nil && (*r.MaxResults < 1 || *r.MaxResults > RagMaxResultsLimit) {
		return NewError(ErrorSearchLimitInvalid, nil)
	}

	if r.Temperature != nil && (*r.Temperature < 0 || *r.Temperature > 2) {
		return NewError(ErrorParams, nil)
	}

	return nil
}

// RagSource 答案引用的来源
type RagSource struct {
	Index         int     `json:"index"` // 对应答案中的 [Source n]
	DocumentID    string  `json:"document_id"`
	DocumentTitle string  `json:"document_title"`
	ChunkID       string  `json:"chunk_id"`
	Content       string  `json:"content"`
	Score         float64 `json:"score"`
}

// RagConfidence 置信度评分
type RagConfidence struct {
	Score     float64            `json:"score"`
	Level     string             `json:"level"` // high / medium / low / very_low
	Breakdown map[string]float64 `json:"breakdown,omitempty"`
}

// RagTokenUsage 令牌用量
type RagTokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// RagQueryResponse RAG 问答响应
type RagQueryResponse struct {
	AnswerID         string         `json:"answer_id"`
	QueryID          string         `json:"query_id"`
	Answer           string         `json:"answer"`
	ModelName        string         `json:"model_name,omitempty"`
	Sources          []*RagSource   `json:"sources"`
	Confidence       *RagConfidence `json:"confidence"`
	TokenUsage       *RagTokenUsage `json:"token_usage,omitempty"`
	UniqueDocuments  int            `json:"unique_documents"`
	ContextLength    int            `json:"context_length"`
	ProcessingTimeMs int64          `json:"processing_time_ms"`
}

// RagStreamEvent 流式响应的单个事件
type RagStreamEvent struct {
	Type       string         `json:"type"` // sources / content / done / error
	Content    string         `json:"content,omitempty"`
	Sources    []*RagSource   `json:"sources,omitempty"`
	Confidence *RagConfidence `json:"confidence,omitempty"`
	Error      string         `json:"error,omitempty"`
}
