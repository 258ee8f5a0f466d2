package constant

const (
	DefaultPageLimit = 10
)

const (
	EmptyString = ""
)

// RAG 提示词常量
const (
	// RAG 回答系统提示词，约束模型只基于检索上下文作答
	RagSystemPrompt = `You are a helpful AI assistant that provides accurate and informative answers based on the given context.

Rules:
1. Answer only based on the provided context.
2. If the context does not contain enough information, say so explicitly.
3. Cite the sources you used by their [Source n] markers.
4. Keep answers concise and factual.`

	// RAG 用户提示词模板，%s 依次为上下文和问题
	RagUserPromptTemplate = `Context:
%s

Question: %s

Answer based on the context above:`
)
