package memory

import (
	"strings"
	"time"
)

type Visibility string

const (
	VisibilityOwner  Visibility = "owner"
	VisibilityPublic Visibility = "public"
)

func (v Visibility) Valid() bool {
	return v == VisibilityOwner || v == VisibilityPublic
}

// DefaultVisibilities is the filter applied when a retrieval names none.
var DefaultVisibilities = []Visibility{VisibilityOwner, VisibilityPublic}

type (
	// Record is one stored piece of text. LogicalID is unique across the store.
	Record struct {
		LogicalID  string
		UserID     string
		Type       string
		Subtype    string
		Text       string
		Visibility Visibility
		ScoreBoost float64
		Embedding  []float32
		CreatedAt  time.Time
	}

	SearchQuery struct {
		UserID       string
		Embedding    []float32
		K            int
		Visibilities []Visibility
	}

	SearchResult struct {
		Record *Record
		// Distance is the cosine distance to the query, in [0, 2]
		Distance float32
		Score    float32
	}
)

// LogicalID is the identity of a record: one record per (user, type, subtype).
func LogicalID(userID, typ, subtype string) string {
	return strings.Join([]string{userID, typ, subtype}, ":")
}
