package mytesting

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"sync/atomic"
	"unicode"

	"github.com/habiliai/tutorwise/memory"
)

// HashEmbedder is a deterministic bag-of-words embedder. Texts sharing
// words get close vectors, which is enough to exercise retrieval offline.
type HashEmbedder struct {
	Dim   int
	Err   error
	calls atomic.Int64
}

var _ memory.Embedder = (*HashEmbedder)(nil)

func NewHashEmbedder(dim int) *HashEmbedder {
	return &HashEmbedder{Dim: dim}
}

func (h *HashEmbedder) Calls() int {
	return int(h.calls.Load())
}

func (h *HashEmbedder) Embed(ctx context.Context, _ memory.TaskType, text string) ([]float32, error) {
	h.calls.Add(1)
	if h.Err != nil {
		return nil, h.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vec := make([]float32, h.Dim)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		f := fnv.New32a()
		_, _ = f.Write([]byte(w))
		vec[int(f.Sum32())%h.Dim] += 1
	}
	if len(words) == 0 {
		vec[0] = 1
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}

	return vec, nil
}
