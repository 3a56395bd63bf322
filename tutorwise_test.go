package tutorwise_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/habiliai/tutorwise"
	"github.com/habiliai/tutorwise/chat"
	"github.com/habiliai/tutorwise/config"
	"github.com/habiliai/tutorwise/entity"
	"github.com/habiliai/tutorwise/errors"
	"github.com/habiliai/tutorwise/internal/mylog"
	"github.com/habiliai/tutorwise/internal/mytesting"
	"github.com/habiliai/tutorwise/space"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingGenerator struct {
	mu      sync.Mutex
	prompts []string
}

func (g *recordingGenerator) Generate(_ context.Context, req chat.GenerateRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, req.Prompt)
	return "  Paris is the capital of France.  ", nil
}

func (g *recordingGenerator) LastPrompt() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.prompts) == 0 {
		return ""
	}
	return g.prompts[len(g.prompts)-1]
}

type failingOCR struct{}

func (failingOCR) Recognize(context.Context, string) (string, error) {
	return "", errors.New("no tesseract in tests")
}

func newTestConfig(t *testing.T, backend string) *config.Config {
	t.Helper()

	dir := t.TempDir()
	conf := config.NewConfig()
	conf.Database.DatabaseUrl = filepath.Join(dir, "tutorwise.sqlite")
	conf.Memory.Backend = backend
	conf.Memory.Path = filepath.Join(dir, "db_vec.sqlite")
	conf.Memory.EmbedDim = 64
	conf.Storage.UploadDir = filepath.Join(dir, "uploads")
	conf.Auth.SecretKey = "test-secret"
	conf.Ingest.Workers = 2
	return conf
}

func newTestApp(t *testing.T, backend string) (*tutorwise.App, *recordingGenerator) {
	t.Helper()

	generator := &recordingGenerator{}
	app, err := tutorwise.New(
		t.Context(),
		tutorwise.WithConfig(newTestConfig(t, backend)),
		tutorwise.WithLogger(mylog.Discard()),
		tutorwise.WithEmbedder(mytesting.NewHashEmbedder(64)),
		tutorwise.WithGenerator(generator),
		tutorwise.WithOCR(failingOCR{}),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, app.Close())
	})
	return app, generator
}

func TestNew_RequiresAPIKeyWithoutFakes(t *testing.T) {
	_, err := tutorwise.New(
		t.Context(),
		tutorwise.WithConfig(newTestConfig(t, config.MemoryBackendMemory)),
		tutorwise.WithLogger(mylog.Discard()),
	)
	require.ErrorIs(t, err, errors.ErrInvalidConfig)
}

func TestUploadIngestAndChat(t *testing.T) {
	for _, backend := range []string{config.MemoryBackendMemory, config.MemoryBackendSqlite} {
		t.Run(backend, func(t *testing.T) {
			app, generator := newTestApp(t, backend)

			ctx, cancel := context.WithCancel(t.Context())
			workersDone := make(chan error, 1)
			go func() {
				workersDone <- app.RunWorkers(ctx)
			}()

			srv := httptest.NewServer(app.Handler())
			defer srv.Close()

			sp, err := app.Spaces().CreateSpace(t.Context(), space.CreateSpaceRequest{Title: "Geography", OwnerID: "u1"})
			require.NoError(t, err)

			var body bytes.Buffer
			mw := multipart.NewWriter(&body)
			fw, err := mw.CreateFormFile("file", "france.txt")
			require.NoError(t, err)
			_, err = fw.Write([]byte("The capital of France is Paris."))
			require.NoError(t, err)
			require.NoError(t, mw.Close())

			resp, err := http.Post(srv.URL+"/contents/upload?space_id="+sp.ID+"&owner_id=u1", mw.FormDataContentType(), &body)
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, http.StatusCreated, resp.StatusCode)

			var content entity.Content
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&content))

			require.Eventually(t, func() bool {
				got, err := app.Spaces().GetContent(t.Context(), content.ID)
				return err == nil && got.Status.Terminal()
			}, 10*time.Second, 20*time.Millisecond)

			got, err := app.Spaces().GetContent(t.Context(), content.ID)
			require.NoError(t, err)
			require.Equal(t, entity.ContentStatusProcessed, got.Status, got.Error)

			answer, err := app.Chat().Answer(t.Context(), chat.Request{
				UserID:  "u1",
				SpaceID: sp.ID,
				Message: "What is the capital of France?",
			})
			require.NoError(t, err)
			assert.Equal(t, "Paris is the capital of France.", answer.Answer)
			assert.Equal(t, []string{"The capital of France is Paris."}, answer.Context)
			assert.Contains(t, generator.LastPrompt(), "1. The capital of France is Paris.")
			assert.True(t, strings.HasSuffix(generator.LastPrompt(), "User: What is the capital of France?\nAI:"))

			cancel()
			require.NoError(t, <-workersDone)
		})
	}
}

func TestIngestImageWithoutCaptionerFails(t *testing.T) {
	app, _ := newTestApp(t, config.MemoryBackendMemory)

	sp, err := app.Spaces().CreateSpace(t.Context(), space.CreateSpaceRequest{Title: "Art", OwnerID: "u1"})
	require.NoError(t, err)

	path := filepath.Join(app.Config().Storage.UploadDir, "photo.png")
	require.NoError(t, writeFile(path, "not really a png"))
	content := &entity.Content{SpaceID: sp.ID, FilePath: path}
	require.NoError(t, app.Spaces().CreateContent(t.Context(), content))

	err = app.Ingest(t.Context(), content.ID)
	require.ErrorContains(t, err, "no tesseract in tests")

	got, err := app.Spaces().GetContent(t.Context(), content.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ContentStatusError, got.Status)
}
