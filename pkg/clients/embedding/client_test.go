package embedding

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type EmbeddingClientTest struct {
	suite.Suite
}

func (e *EmbeddingClientTest) TestLRUCache_PutAndGet() {
	cache := NewLRUCache(3)

	cache.Put("a", []float64{1, 2, 3})
	value, ok := cache.Get("a")
	e.True(ok)
	e.Equal([]float64{1, 2, 3}, value)

	_, ok = cache.Get("missing")
	e.False(ok)
}

func (e *EmbeddingClientTest) TestLRUCache_UpdateExisting() {
	cache := NewLRUCache(3)

	cache.Put("a", []float64{1})
	cache.Put("a", []float64{2})

	value, ok := cache.Get("a")
	e.True(ok)
	e.Equal([]float64{2}, value)
}

func (e *EmbeddingClientTest) TestLRUCache_EvictsLeastRecentlyUsed() {
	cache := NewLRUCache(2)

	cache.Put("a", []float64{1})
	cache.Put("b", []float64{2})

	// 访问 a 之后 b 变成最久未使用
	_, ok := cache.Get("a")
	e.True(ok)

	cache.Put("c", []float64{3})

	_, ok = cache.Get("b")
	e.False(ok, "b should have been evicted")

	_, ok = cache.Get("a")
	e.True(ok)
	_, ok = cache.Get("c")
	e.True(ok)
}

func (e *EmbeddingClientTest) TestLRUCache_InvalidCapacity() {
	cache := NewLRUCache(0)
	e.Equal(LRUCacheCapacity, cache.capacity)
}

func (e *EmbeddingClientTest) TestLRUCache_EvictionAtScale() {
	capacity := 100
	cache := NewLRUCache(capacity)

	for i := 0; i < capacity*2; i++ {
		cache.Put(fmt.Sprintf("key-%d", i), []float64{float64(i)})
	}

	// 只有后一半保留
	_, ok := cache.Get("key-0")
	e.False(ok)
	value, ok := cache.Get(fmt.Sprintf("key-%d", capacity*2-1))
	e.True(ok)
	e.Equal([]float64{float64(capacity*2 - 1)}, value)
}

func (e *EmbeddingClientTest) TestVectorToString() {
	e.Equal("[]", VectorToString(nil))
	e.Equal("[]", VectorToString([]float64{}))
	e.Equal("[1.000000]", VectorToString([]float64{1}))
	e.Equal("[0.100000,-0.200000,3.500000]", VectorToString([]float64{0.1, -0.2, 3.5}))
}

func TestEmbeddingClient(t *testing.T) {
	suite.Run(t, new(EmbeddingClientTest))
}
