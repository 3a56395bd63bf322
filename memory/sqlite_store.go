package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	"github.com/habiliai/tutorwise/errors"
	"github.com/habiliai/tutorwise/internal/db"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// SqliteStore keeps record text in a regular table and embeddings in a
// sqlite-vec virtual table partitioned by user.
type SqliteStore struct {
	db     *gorm.DB
	vecDim int
}

type SqliteMemoryRecord struct {
	LogicalID  string `gorm:"primaryKey"`
	UserID     string `gorm:"index:idx_memory_user;not null"`
	Type       string `gorm:"not null"`
	Subtype    string `gorm:"not null"`
	Text       string `gorm:"type:text"`
	Visibility string `gorm:"not null"`
	ScoreBoost float64
	CreatedAt  time.Time
}

func (SqliteMemoryRecord) TableName() string {
	return "memory_records"
}

// MaxKNN is the largest k sqlite-vec accepts in a KNN query.
const MaxKNN = 4096

var _ Store = (*SqliteStore)(nil)

func NewSqliteStore(dbPath string, dimension int) (*SqliteStore, error) {
	sqlite_vec.Auto()

	gormDB, err := db.OpenSqlite(dbPath)
	if err != nil {
		return nil, err
	}

	store := &SqliteStore{
		db:     gormDB,
		vecDim: dimension,
	}

	if err := gormDB.AutoMigrate(&SqliteMemoryRecord{}); err != nil {
		return nil, errors.Wrapf(err, "failed to migrate memory table")
	}

	if err := store.createVectorTable(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *SqliteStore) createVectorTable() error {
	var sqliteVersion, vecVersion string
	err := s.db.Raw("SELECT sqlite_version(), vec_version()").Row().Scan(&sqliteVersion, &vecVersion)
	if err != nil {
		return errors.Wrapf(err, "sqlite-vec extension not properly loaded")
	}

	createTableSQL := fmt.Sprintf(`
		CREATE VIRTUAL TABLE IF NOT EXISTS memory_vectors USING vec0(
			logical_id TEXT PRIMARY KEY,
			embedding float[%d] distance_metric=cosine,
			user_id TEXT partition key,
			visibility TEXT
		);
	`, s.vecDim)

	if err := s.db.Exec(createTableSQL).Error; err != nil {
		return errors.Wrapf(err, "failed to create memory_vectors table")
	}

	return nil
}

func (s *SqliteStore) Upsert(ctx context.Context, record *Record) error {
	if len(record.Embedding) != s.vecDim {
		return errors.Wrapf(errors.ErrInvalidParams, "embedding has %d dimensions, want %d", len(record.Embedding), s.vecDim)
	}

	serializedEmbedding, err := sqlite_vec.SerializeFloat32(record.Embedding)
	if err != nil {
		return errors.Wrapf(err, "failed to serialize embedding")
	}

	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM memory_vectors WHERE logical_id = ?", record.LogicalID).Error; err != nil {
			return errors.Wrapf(err, "failed to delete existing vector")
		}
		if err := tx.Delete(&SqliteMemoryRecord{}, "logical_id = ?", record.LogicalID).Error; err != nil {
			return errors.Wrapf(err, "failed to delete existing record")
		}

		if err := tx.Create(&SqliteMemoryRecord{
			LogicalID:  record.LogicalID,
			UserID:     record.UserID,
			Type:       record.Type,
			Subtype:    record.Subtype,
			Text:       record.Text,
			Visibility: string(record.Visibility),
			ScoreBoost: record.ScoreBoost,
			CreatedAt:  record.CreatedAt,
		}).Error; err != nil {
			return errors.Wrapf(err, "failed to insert record")
		}

		insertSQL := "INSERT INTO memory_vectors (logical_id, embedding, user_id, visibility) VALUES (?, ?, ?, ?)"
		if err := tx.Exec(insertSQL, record.LogicalID, serializedEmbedding, record.UserID, string(record.Visibility)).Error; err != nil {
			return errors.Wrapf(err, "failed to insert vector")
		}

		return nil
	})
}

func (s *SqliteStore) Search(ctx context.Context, query SearchQuery) ([]SearchResult, error) {
	if len(query.Embedding) == 0 || query.K <= 0 {
		return []SearchResult{}, nil
	}
	if len(query.Embedding) != s.vecDim {
		return nil, errors.Wrapf(errors.ErrInvalidParams, "query has %d dimensions, want %d", len(query.Embedding), s.vecDim)
	}

	k := min(query.K, MaxKNN)

	serializedQuery, err := sqlite_vec.SerializeFloat32(query.Embedding)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to serialize query embedding")
	}

	type hit struct {
		ID       string
		Distance float32
	}
	var hits []hit

	// metadata filters only support equality inside a KNN query, so each
	// visibility gets its own top-k and the union is cut back to k below
	for _, visibility := range lo.Uniq(query.Visibilities) {
		rows, err := s.db.WithContext(ctx).Raw(`
			SELECT logical_id, distance
			FROM memory_vectors
			WHERE embedding MATCH ? AND k = ? AND user_id = ? AND visibility = ?
			ORDER BY distance
		`, serializedQuery, k, query.UserID, string(visibility)).Rows()
		if err != nil {
			return nil, errors.Wrapf(err, "failed to execute search query")
		}

		for rows.Next() {
			var h hit
			if err := rows.Scan(&h.ID, &h.Distance); err != nil {
				rows.Close()
				return nil, errors.Wrapf(err, "failed to scan result row")
			}
			hits = append(hits, h)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, errors.Wrapf(err, "failed to iterate result rows")
		}
		if err := rows.Close(); err != nil {
			return nil, errors.Wrapf(err, "failed to close result rows")
		}
	}

	if len(hits) == 0 {
		return []SearchResult{}, nil
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})
	if len(hits) > k {
		hits = hits[:k]
	}

	var records []SqliteMemoryRecord
	if err := s.db.WithContext(ctx).
		Where("logical_id IN ?", lo.Map(hits, func(h hit, _ int) string { return h.ID })).
		Find(&records).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to fetch memory records")
	}
	byID := lo.KeyBy(records, func(r SqliteMemoryRecord) string { return r.LogicalID })

	results := make([]SearchResult, 0, len(hits))
	for _, h := range hits {
		record, ok := byID[h.ID]
		if !ok {
			continue
		}
		results = append(results, SearchResult{
			Record:   record.toRecord(),
			Distance: h.Distance,
			Score:    1.0 - h.Distance,
		})
	}

	return results, nil
}

func (s *SqliteStore) Get(ctx context.Context, logicalID string) (*Record, error) {
	var record SqliteMemoryRecord
	if err := s.db.WithContext(ctx).First(&record, "logical_id = ?", logicalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(errors.ErrNotFound, "memory %s", logicalID)
		}
		return nil, errors.Wrapf(err, "failed to fetch memory record")
	}
	return record.toRecord(), nil
}

func (s *SqliteStore) Delete(ctx context.Context, logicalID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM memory_vectors WHERE logical_id = ?", logicalID).Error; err != nil {
			return errors.Wrapf(err, "failed to delete vector")
		}
		if err := tx.Delete(&SqliteMemoryRecord{}, "logical_id = ?", logicalID).Error; err != nil {
			return errors.Wrapf(err, "failed to delete record")
		}
		return nil
	})
}

func (s *SqliteStore) Close() error {
	return db.CloseDB(s.db)
}

func (r *SqliteMemoryRecord) toRecord() *Record {
	return &Record{
		LogicalID:  r.LogicalID,
		UserID:     r.UserID,
		Type:       r.Type,
		Subtype:    r.Subtype,
		Text:       r.Text,
		Visibility: Visibility(r.Visibility),
		ScoreBoost: r.ScoreBoost,
		CreatedAt:  r.CreatedAt,
	}
}
