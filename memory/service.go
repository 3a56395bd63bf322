package memory

import (
	"context"
	"log/slog"
	"strings"

	"github.com/habiliai/tutorwise/errors"
	"github.com/habiliai/tutorwise/internal/mylog"
	"github.com/samber/lo"
)

const (
	DefaultK          = 5
	DefaultScoreBoost = 1.0
)

type (
	UpsertRequest struct {
		UserID  string
		Text    string
		Type    string
		Subtype string
		// Visibility defaults to owner
		Visibility Visibility
		// ScoreBoost is stored with the record. Zero means the default of 1.0.
		ScoreBoost float64
	}

	RetrieveRequest struct {
		UserID string
		Query  string
		// K defaults to 5 when not positive
		K int
		// Allowed defaults to owner and public
		Allowed []Visibility
	}

	Service struct {
		store    Store
		embedder Embedder
		dim      int
		logger   *slog.Logger
	}

	ServiceOption func(*Service)
)

func WithDimension(dim int) ServiceOption {
	return func(s *Service) {
		s.dim = dim
	}
}

func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

func NewService(store Store, embedder Embedder, opts ...ServiceOption) *Service {
	s := &Service{
		store:    store,
		embedder: embedder,
		logger:   mylog.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Store() Store {
	return s.store
}

// Upsert embeds req.Text and stores it under user:type:subtype, replacing
// whatever was stored there before.
func (s *Service) Upsert(ctx context.Context, req UpsertRequest) (*Record, error) {
	if strings.TrimSpace(req.UserID) == "" || req.Type == "" || req.Subtype == "" {
		return nil, errors.Wrapf(errors.ErrInvalidParams, "user_id, type and subtype are required")
	}
	if req.Visibility == "" {
		req.Visibility = VisibilityOwner
	}
	if !req.Visibility.Valid() {
		return nil, errors.Wrapf(errors.ErrInvalidParams, "unknown visibility %q", req.Visibility)
	}
	if req.ScoreBoost == 0 {
		req.ScoreBoost = DefaultScoreBoost
	}

	embedding, err := s.embedder.Embed(ctx, TaskTypeRetrievalDocument, req.Text)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to embed text")
	}
	if err := checkDimension(embedding, s.dim); err != nil {
		return nil, err
	}

	record := &Record{
		LogicalID:  LogicalID(req.UserID, req.Type, req.Subtype),
		UserID:     req.UserID,
		Type:       req.Type,
		Subtype:    req.Subtype,
		Text:       req.Text,
		Visibility: req.Visibility,
		ScoreBoost: req.ScoreBoost,
		Embedding:  embedding,
	}
	if err := s.store.Upsert(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Debug("upserted memory", "logical_id", record.LogicalID, "chars", len(req.Text))
	return record, nil
}

// Search returns the k closest records of req.UserID with an allowed visibility.
func (s *Service) Search(ctx context.Context, req RetrieveRequest) ([]SearchResult, error) {
	if req.K <= 0 {
		req.K = DefaultK
	}
	if len(req.Allowed) == 0 {
		req.Allowed = DefaultVisibilities
	}
	for _, v := range req.Allowed {
		if !v.Valid() {
			return nil, errors.Wrapf(errors.ErrInvalidParams, "unknown visibility %q", v)
		}
	}

	embedding, err := s.embedder.Embed(ctx, TaskTypeRetrievalQuery, req.Query)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to embed query")
	}
	if err := checkDimension(embedding, s.dim); err != nil {
		return nil, err
	}

	return s.store.Search(ctx, SearchQuery{
		UserID:       req.UserID,
		Embedding:    embedding,
		K:            req.K,
		Visibilities: req.Allowed,
	})
}

// Retrieve returns the text of the closest records, closest first. No
// matching record yields an empty slice.
func (s *Service) Retrieve(ctx context.Context, req RetrieveRequest) ([]string, error) {
	results, err := s.Search(ctx, req)
	if err != nil {
		return nil, err
	}

	return lo.Map(results, func(r SearchResult, _ int) string {
		return r.Record.Text
	}), nil
}

func (s *Service) Delete(ctx context.Context, userID, typ, subtype string) error {
	return s.store.Delete(ctx, LogicalID(userID, typ, subtype))
}

func (s *Service) Close() error {
	return s.store.Close()
}
