package memory

import (
	"context"
	"time"

	"github.com/habiliai/tutorwise/errors"
	"github.com/patrickmn/go-cache"
)

type TaskType string

const (
	TaskTypeRetrievalDocument TaskType = "RETRIEVAL_DOCUMENT"
	TaskTypeRetrievalQuery    TaskType = "RETRIEVAL_QUERY"
)

func (t TaskType) String() string {
	return string(t)
}

// Embedder maps text to a fixed-length vector. Failures are returned as is.
type Embedder interface {
	Embed(ctx context.Context, taskType TaskType, text string) ([]float32, error)
}

type EmbedderFunc func(ctx context.Context, taskType TaskType, text string) ([]float32, error)

func (f EmbedderFunc) Embed(ctx context.Context, taskType TaskType, text string) ([]float32, error) {
	return f(ctx, taskType, text)
}

// CachedEmbedder memoizes embeddings per (task type, text) for ttl.
type CachedEmbedder struct {
	embedder Embedder
	cache    *cache.Cache
}

var _ Embedder = (*CachedEmbedder)(nil)

func NewCachedEmbedder(embedder Embedder, ttl time.Duration) *CachedEmbedder {
	return &CachedEmbedder{
		embedder: embedder,
		cache:    cache.New(ttl, 2*ttl),
	}
}

func (c *CachedEmbedder) Embed(ctx context.Context, taskType TaskType, text string) ([]float32, error) {
	key := taskType.String() + "\x00" + text
	if v, ok := c.cache.Get(key); ok {
		return append([]float32(nil), v.([]float32)...), nil
	}

	embedding, err := c.embedder.Embed(ctx, taskType, text)
	if err != nil {
		return nil, err
	}

	c.cache.SetDefault(key, append([]float32(nil), embedding...))
	return embedding, nil
}

func checkDimension(embedding []float32, dim int) error {
	if dim > 0 && len(embedding) != dim {
		return errors.Errorf("embedding has %d dimensions, want %d", len(embedding), dim)
	}
	return nil
}
