package memory

import (
	"context"
)

type Store interface {
	// Upsert replaces any record with the same LogicalID.
	Upsert(ctx context.Context, record *Record) error
	// Search returns at most K records of UserID whose visibility is one of
	// Visibilities, closest first.
	Search(ctx context.Context, query SearchQuery) ([]SearchResult, error)
	Get(ctx context.Context, logicalID string) (*Record, error)
	Delete(ctx context.Context, logicalID string) error
	Close() error
}
