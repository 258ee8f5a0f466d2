package document

import (
	"testing"

	"github.com/kyanome/rag-backend/pkg/chunker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildChunkEntitiesSkipsBlankChunks(t *testing.T) {
	chunks := []chunker.Chunk{
		{Text: "第一块内容", StartIdx: 0, EndIdx: 15, ChunkIdx: 0, TotalChunks: 3},
		{Text: "   \n\t", StartIdx: 15, EndIdx: 20, ChunkIdx: 1, TotalChunks: 3},
		{Text: "", StartIdx: 20, EndIdx: 20, ChunkIdx: 2, TotalChunks: 3},
	}

	entities, modelErr := buildChunkEntities("doc-1", chunks, 10)
	require.Nil(t, modelErr)
	require.Len(t, entities, 1)
	assert.Equal(t, "第一块内容", entities[0].Content)
	assert.Equal(t, "doc-1", entities[0].DocumentID)
}

func TestBuildChunkEntitiesEmptyDocument(t *testing.T) {
	// 空文档只产出一个空块，最终不应落任何行
	chunks := chunker.NewChunker(chunker.DefaultChunkConfig()).Chunk("", 1000, 100)
	entities, modelErr := buildChunkEntities("doc-1", chunks, 100)
	require.Nil(t, modelErr)
	assert.Empty(t, entities)
}

func TestBuildChunkEntitiesLeavesEmbeddingUnset(t *testing.T) {
	chunks := []chunker.Chunk{
		{Text: "待向量化的内容", StartIdx: 0, EndIdx: 21, ChunkIdx: 0, TotalChunks: 1},
	}

	entities, modelErr := buildChunkEntities("doc-1", chunks, 0)
	require.Nil(t, modelErr)
	require.Len(t, entities, 1)

	// embedding 必须保持 nil，插入时写 NULL 而不是空串
	assert.Nil(t, entities[0].Embedding)
}
