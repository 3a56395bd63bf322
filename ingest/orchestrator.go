package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/habiliai/tutorwise/blob"
	"github.com/habiliai/tutorwise/entity"
	"github.com/habiliai/tutorwise/errors"
	"github.com/habiliai/tutorwise/extractor"
	"github.com/habiliai/tutorwise/internal/metrics"
	"github.com/habiliai/tutorwise/internal/mylog"
	"github.com/habiliai/tutorwise/memory"
)

// MemoryType is the record type extracted content is stored under.
const MemoryType = "content"

type (
	ContentStore interface {
		GetContent(ctx context.Context, id string) (*entity.Content, error)
		FinishContent(ctx context.Context, id string, status entity.ContentStatus, extraction entity.Extraction, failure error) (bool, error)
	}

	TextExtractor interface {
		Extract(ctx context.Context, path string) (extractor.Result, error)
	}

	MemoryWriter interface {
		Upsert(ctx context.Context, req memory.UpsertRequest) (*memory.Record, error)
	}

	// Ingester runs the ingestion of one content row.
	Ingester interface {
		Ingest(ctx context.Context, contentID string) error
	}

	Orchestrator struct {
		contents  ContentStore
		storage   blob.Storage
		extractor TextExtractor
		memory    MemoryWriter
		logger    *slog.Logger
		metrics   *metrics.Metrics
	}

	OrchestratorOption func(*Orchestrator)
)

var _ Ingester = (*Orchestrator)(nil)

func WithLogger(logger *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) OrchestratorOption {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

func NewOrchestrator(
	contents ContentStore,
	storage blob.Storage,
	textExtractor TextExtractor,
	memoryWriter MemoryWriter,
	opts ...OrchestratorOption,
) *Orchestrator {
	o := &Orchestrator{
		contents:  contents,
		storage:   storage,
		extractor: textExtractor,
		memory:    memoryWriter,
		logger:    mylog.Discard(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Ingest extracts the text of a pending content, stores it in memory under
// the content owner and marks the row processed. On failure the row is marked
// error and the failure is returned. A missing or already finished row is a no-op.
func (o *Orchestrator) Ingest(ctx context.Context, contentID string) error {
	logger := o.logger.With("content_id", contentID)

	content, err := o.contents.GetContent(ctx, contentID)
	if errors.Is(err, errors.ErrNotFound) {
		logger.Warn("content not found, skipping ingestion")
		return nil
	} else if err != nil {
		return err
	}
	if content.Status.Terminal() {
		logger.Debug("content already finished", "status", content.Status)
		return nil
	}

	started := time.Now()
	extraction, err := o.ingest(ctx, logger, content)
	if err != nil {
		o.metrics.ObserveIngest(string(entity.ContentStatusError), started)
		logger.Error("ingestion failed", "err", err)
		if _, markErr := o.contents.FinishContent(context.WithoutCancel(ctx), content.ID, entity.ContentStatusError, extraction, err); markErr != nil {
			return errors.Join(err, markErr)
		}
		return err
	}

	changed, err := o.contents.FinishContent(ctx, content.ID, entity.ContentStatusProcessed, extraction, nil)
	if err != nil {
		return err
	}
	if !changed {
		logger.Debug("content was finished concurrently")
	}
	o.metrics.ObserveIngest(string(entity.ContentStatusProcessed), started)
	logger.Info("content ingested", "chars", extraction.Chars, "degraded", extraction.Degraded)

	return nil
}

func (o *Orchestrator) ingest(ctx context.Context, logger *slog.Logger, content *entity.Content) (entity.Extraction, error) {
	var extraction entity.Extraction

	path, cleanup, err := blob.Materialize(ctx, o.storage, content.FilePath)
	if err != nil {
		return extraction, errors.Wrapf(err, "failed to read %s", content.FilePath)
	}
	defer cleanup()

	result, err := o.extractor.Extract(ctx, path)
	if err != nil {
		return extraction, err
	}

	extraction.Chars = len(result.Text)
	if result.Degraded {
		extraction.Degraded = true
		if result.Cause != nil {
			extraction.Cause = result.Cause.Error()
		}
		kind := extractor.Classify(extractor.Ext(content.FilePath))
		o.metrics.ObserveDegraded(kind.String())
		logger.Warn("stored degraded extraction", "kind", kind.String(), "cause", extraction.Cause)
	}

	if _, err := o.memory.Upsert(ctx, memory.UpsertRequest{
		UserID:  content.MemoryOwner(),
		Text:    result.Text,
		Type:    MemoryType,
		Subtype: content.ID,
	}); err != nil {
		return extraction, err
	}

	return extraction, nil
}
