package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/habiliai/tutorwise/errors"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/mat"
)

// InMemoryStore keeps every record in process. Searches score candidates
// with one matrix-vector product.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
}

var _ Store = (*InMemoryStore)(nil)

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		records: make(map[string]*Record),
	}
}

func (s *InMemoryStore) Upsert(_ context.Context, record *Record) error {
	if len(record.Embedding) == 0 {
		return errors.Wrapf(errors.ErrInvalidParams, "record %s has no embedding", record.LogicalID)
	}

	stored := copyRecord(record)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, record.LogicalID)
	s.records[record.LogicalID] = stored

	return nil
}

func (s *InMemoryStore) Search(_ context.Context, query SearchQuery) ([]SearchResult, error) {
	if len(query.Embedding) == 0 || query.K <= 0 {
		return []SearchResult{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	dim := len(query.Embedding)
	candidates := make([]*Record, 0, len(s.records))
	for _, record := range s.records {
		if record.UserID != query.UserID || !lo.Contains(query.Visibilities, record.Visibility) {
			continue
		}
		if len(record.Embedding) != dim {
			continue
		}
		candidates = append(candidates, record)
	}
	if len(candidates) == 0 {
		return []SearchResult{}, nil
	}

	similarities := cosineSimilarities(query.Embedding, candidates)

	results := make([]SearchResult, len(candidates))
	for i, record := range candidates {
		sim := float32(similarities[i])
		results[i] = SearchResult{
			Record:   copyRecordWithoutEmbedding(record),
			Distance: 1 - sim,
			Score:    sim,
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Distance == results[j].Distance {
			return results[i].Record.LogicalID < results[j].Record.LogicalID
		}
		return results[i].Distance < results[j].Distance
	})

	if len(results) > query.K {
		results = results[:query.K]
	}

	return results, nil
}

func (s *InMemoryStore) Get(_ context.Context, logicalID string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[logicalID]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "memory %s", logicalID)
	}
	return copyRecordWithoutEmbedding(record), nil
}

func (s *InMemoryStore) Delete(_ context.Context, logicalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, logicalID)
	return nil
}

func (s *InMemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*Record)
	return nil
}

// cosineSimilarities scores every candidate against query. Zero vectors
// score 0.
func cosineSimilarities(query []float32, candidates []*Record) []float64 {
	dim := len(query)

	queryVec := mat.NewVecDense(dim, float32sToFloat64s(query))
	queryNorm := mat.Norm(queryVec, 2)

	data := make([]float64, 0, len(candidates)*dim)
	norms := make([]float64, len(candidates))
	for i, record := range candidates {
		row := float32sToFloat64s(record.Embedding)
		norms[i] = mat.Norm(mat.NewVecDense(dim, row), 2)
		data = append(data, row...)
	}

	var dots mat.VecDense
	dots.MulVec(mat.NewDense(len(candidates), dim, data), queryVec)

	similarities := make([]float64, len(candidates))
	for i := range candidates {
		denom := queryNorm * norms[i]
		if denom == 0 {
			continue
		}
		similarities[i] = dots.AtVec(i) / denom
	}
	return similarities
}

func float32sToFloat64s(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

func copyRecord(r *Record) *Record {
	c := *r
	c.Embedding = append([]float32(nil), r.Embedding...)
	return &c
}

func copyRecordWithoutEmbedding(r *Record) *Record {
	c := *r
	c.Embedding = nil
	return &c
}
