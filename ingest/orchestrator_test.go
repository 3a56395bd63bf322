package ingest_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/habiliai/tutorwise/blob"
	"github.com/habiliai/tutorwise/entity"
	"github.com/habiliai/tutorwise/errors"
	"github.com/habiliai/tutorwise/extractor"
	"github.com/habiliai/tutorwise/ingest"
	"github.com/habiliai/tutorwise/internal/metrics"
	"github.com/habiliai/tutorwise/internal/mytesting"
	"github.com/habiliai/tutorwise/memory"
	"github.com/habiliai/tutorwise/space"
	"github.com/mokiat/gog"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dim = 64

type fixture struct {
	spaces   *space.Service
	memory   *memory.Service
	embedder *mytesting.HashEmbedder
	storage  *blob.Local
	metrics  *metrics.Metrics
	orch     *ingest.Orchestrator
	spaceID  string
	dir      string
}

func newFixture(t *testing.T, opts ...extractor.Option) *fixture {
	t.Helper()

	dir := t.TempDir()
	storage, err := blob.NewLocal(dir)
	require.NoError(t, err)

	f := &fixture{
		spaces:   space.NewService(mytesting.OpenTestDB(t), nil),
		embedder: mytesting.NewHashEmbedder(dim),
		storage:  storage,
		metrics:  metrics.New(),
		dir:      dir,
	}
	f.memory = memory.NewService(memory.NewInMemoryStore(), f.embedder, memory.WithDimension(dim))
	f.orch = ingest.NewOrchestrator(
		f.spaces,
		f.storage,
		extractor.New(opts...),
		f.memory,
		ingest.WithMetrics(f.metrics),
	)

	sp, err := f.spaces.CreateSpace(t.Context(), space.CreateSpaceRequest{Title: "Geography", OwnerID: "u1"})
	require.NoError(t, err)
	f.spaceID = sp.ID

	return f
}

func (f *fixture) upload(t *testing.T, name, body string, owner *string) *entity.Content {
	t.Helper()

	path := filepath.Join(f.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	content := &entity.Content{
		SpaceID:  f.spaceID,
		OwnerID:  owner,
		FilePath: path,
		MimeType: extractor.MimeType(extractor.Ext(name)),
	}
	require.NoError(t, f.spaces.CreateContent(t.Context(), content))
	return content
}

func TestIngestText(t *testing.T) {
	f := newFixture(t)
	content := f.upload(t, "notes.txt", "The capital of France is Paris.", gog.PtrOf("u1"))

	require.NoError(t, f.orch.Ingest(t.Context(), content.ID))

	got, err := f.spaces.GetContent(t.Context(), content.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ContentStatusProcessed, got.Status)
	assert.False(t, got.Extraction.Data().Degraded)
	assert.Equal(t, len("The capital of France is Paris."), got.Extraction.Data().Chars)

	record, err := f.memory.Store().Get(t.Context(), memory.LogicalID("u1", ingest.MemoryType, content.ID))
	require.NoError(t, err)
	assert.Equal(t, "The capital of France is Paris.", record.Text)

	snippets, err := f.memory.Retrieve(t.Context(), memory.RetrieveRequest{UserID: "u1", Query: "capital of France", K: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"The capital of France is Paris."}, snippets)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.IngestTotal.WithLabelValues("processed")))
}

func TestIngestAnonymousOwner(t *testing.T) {
	f := newFixture(t)
	content := f.upload(t, "anon.md", "# Title\n\nSome body text.", nil)

	require.NoError(t, f.orch.Ingest(t.Context(), content.ID))

	_, err := f.memory.Store().Get(t.Context(), memory.LogicalID("anon", ingest.MemoryType, content.ID))
	require.NoError(t, err)
}

func TestIngestMissingFile(t *testing.T) {
	f := newFixture(t)
	content := f.upload(t, "gone.txt", "soon deleted", gog.PtrOf("u1"))
	require.NoError(t, os.Remove(content.FilePath))

	err := f.orch.Ingest(t.Context(), content.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrNotFound)

	got, err := f.spaces.GetContent(t.Context(), content.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ContentStatusError, got.Status)
	assert.NotEmpty(t, got.Error)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.IngestTotal.WithLabelValues("error")))
}

func TestIngestEmbedderFailure(t *testing.T) {
	f := newFixture(t)
	f.embedder.Err = errors.New("embedding service down")
	content := f.upload(t, "notes.txt", "hello", gog.PtrOf("u1"))

	err := f.orch.Ingest(t.Context(), content.ID)
	require.ErrorContains(t, err, "embedding service down")

	got, err := f.spaces.GetContent(t.Context(), content.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ContentStatusError, got.Status)
}

func TestIngestUnsupportedIsDegraded(t *testing.T) {
	f := newFixture(t)
	content := f.upload(t, "data.xyz", "whatever", gog.PtrOf("u1"))

	require.NoError(t, f.orch.Ingest(t.Context(), content.ID))

	got, err := f.spaces.GetContent(t.Context(), content.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ContentStatusProcessed, got.Status)
	assert.True(t, got.Extraction.Data().Degraded)

	record, err := f.memory.Store().Get(t.Context(), memory.LogicalID("u1", ingest.MemoryType, content.ID))
	require.NoError(t, err)
	assert.Equal(t, "[Unsupported file type: .xyz]", record.Text)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.DegradedTotal.WithLabelValues("unsupported")))
}

func TestIngestVideoWithoutSummarizer(t *testing.T) {
	f := newFixture(t)
	content := f.upload(t, "lecture.mp4", "not really a video", gog.PtrOf("u1"))

	require.NoError(t, f.orch.Ingest(t.Context(), content.ID))

	got, err := f.spaces.GetContent(t.Context(), content.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ContentStatusProcessed, got.Status)
	assert.True(t, got.Extraction.Data().Degraded)
}

type failingOCR struct{}

func (failingOCR) Recognize(context.Context, string) (string, error) {
	return "", errors.New("tesseract missing")
}

func TestIngestImageFallbackFailure(t *testing.T) {
	f := newFixture(t, extractor.WithOCR(failingOCR{}))
	content := f.upload(t, "photo.png", "png bytes", gog.PtrOf("u1"))

	err := f.orch.Ingest(t.Context(), content.ID)
	require.ErrorContains(t, err, "tesseract missing")

	got, err := f.spaces.GetContent(t.Context(), content.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ContentStatusError, got.Status)
}

func TestIngestMissingRowIsNoop(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.orch.Ingest(t.Context(), "does-not-exist"))
}

func TestIngestTwiceKeepsOneRecord(t *testing.T) {
	f := newFixture(t)
	content := f.upload(t, "notes.txt", "Mitochondria is the powerhouse of the cell.", gog.PtrOf("u1"))

	require.NoError(t, f.orch.Ingest(t.Context(), content.ID))
	// finished rows are left alone
	require.NoError(t, f.orch.Ingest(t.Context(), content.ID))
	assert.Equal(t, 1, f.embedder.Calls())

	results, err := f.memory.Search(t.Context(), memory.RetrieveRequest{UserID: "u1", Query: "powerhouse", K: 10})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}
