package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/habiliai/tutorwise/auth"
	"github.com/habiliai/tutorwise/blob"
	"github.com/habiliai/tutorwise/chat"
	"github.com/habiliai/tutorwise/config"
	"github.com/habiliai/tutorwise/entity"
	"github.com/habiliai/tutorwise/errors"
	"github.com/habiliai/tutorwise/ingest"
	"github.com/habiliai/tutorwise/internal/metrics"
	"github.com/habiliai/tutorwise/internal/mytesting"
	"github.com/habiliai/tutorwise/server"
	"github.com/habiliai/tutorwise/space"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeAnswerer struct {
	last chat.Request
	err  error
}

func (f *fakeAnswerer) Answer(_ context.Context, req chat.Request) (*chat.Response, error) {
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return &chat.Response{Answer: "Paris", Context: []string{"The capital of France is Paris."}}, nil
}

type env struct {
	handler http.Handler
	spaces  *space.Service
	pool    *ingest.Pool
	chat    *fakeAnswerer
	auth    *auth.Service
}

func newEnv(t *testing.T, authRequired bool) *env {
	t.Helper()

	storage, err := blob.NewLocal(t.TempDir())
	require.NoError(t, err)

	gormDB := mytesting.OpenTestDB(t)
	authConf := config.NewAuthConfig()
	authConf.SecretKey = "test-secret"
	authSvc, err := auth.NewService(gormDB, authConf, auth.WithBcryptCost(bcrypt.MinCost))
	require.NoError(t, err)

	e := &env{
		spaces: space.NewService(gormDB, nil),
		chat:   &fakeAnswerer{},
		auth:   authSvc,
	}
	// workers are not started; submitted tasks stay queued
	e.pool = ingest.NewPool(ingest.NewMemoryQueue(8), ingest.NewOrchestrator(e.spaces, storage, nil, nil))
	e.handler = server.NewHandler(server.Deps{
		Spaces:       e.spaces,
		Chat:         e.chat,
		Ingest:       e.pool,
		Storage:      storage,
		Auth:         authSvc,
		Metrics:      metrics.New(),
		AuthRequired: authRequired,
	})
	return e
}

func (e *env) do(t *testing.T, method, path string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *env) upload(t *testing.T, path, filename, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (e *env) createSpace(t *testing.T, title string) entity.Space {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/spaces/create_space", map[string]any{"title": title, "owner_id": "u1"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[entity.Space](t, rec)
}

func TestRootAndHealth(t *testing.T) {
	e := newEnv(t, false)

	rec := e.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to the Spaces Backend API", decode[map[string]string](t, rec)["message"])

	rec = e.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = e.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tutorwise_")
}

func TestSpaceRoutes(t *testing.T) {
	e := newEnv(t, false)

	created := e.createSpace(t, "Biology")
	assert.NotEmpty(t, created.ID)

	rec := e.do(t, http.MethodGet, "/spaces/list_spaces?owner_id=u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]entity.Space](t, rec), 1)

	rec = e.do(t, http.MethodGet, "/spaces/list_spaces?owner_id=other", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]entity.Space](t, rec))

	rec = e.do(t, http.MethodPatch, "/spaces/space/"+created.ID, map[string]any{"title": "Advanced Biology"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Advanced Biology", decode[entity.Space](t, rec).Title)

	rec = e.do(t, http.MethodGet, "/spaces/space/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Advanced Biology", decode[entity.Space](t, rec).Title)

	rec = e.do(t, http.MethodDelete, "/spaces/space/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Space deleted successfully", decode[map[string]string](t, rec)["detail"])

	rec = e.do(t, http.MethodGet, "/spaces/space/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Space not found", decode[map[string]string](t, rec)["detail"])

	rec = e.do(t, http.MethodPost, "/spaces/create_space", map[string]any{"title": "", "owner_id": "u1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadAndChat(t *testing.T) {
	e := newEnv(t, false)
	created := e.createSpace(t, "Geography")

	rec := e.do(t, http.MethodPost, "/chat/", map[string]any{"user_id": "u1", "space_id": created.ID, "message": "hi"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Space has no processed content yet", decode[map[string]string](t, rec)["detail"])

	rec = e.upload(t, "/contents/upload?space_id="+created.ID+"&owner_id=u1", "notes.txt", "The capital of France is Paris.")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	content := decode[entity.Content](t, rec)
	assert.Equal(t, entity.ContentStatusPending, content.Status)
	assert.Equal(t, "notes.txt", *content.Title)
	assert.Equal(t, "u1", *content.OwnerID)
	assert.Equal(t, "text/plain", content.MimeType)
	data, err := os.ReadFile(content.FilePath)
	require.NoError(t, err)
	assert.Equal(t, "The capital of France is Paris.", string(data))

	rec = e.do(t, http.MethodGet, "/contents/"+content.ID+"/task", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ingest.TaskStateQueued, decode[ingest.Task](t, rec).State)

	rec = e.do(t, http.MethodGet, "/contents/by_space/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]entity.Content](t, rec), 1)

	rec = e.do(t, http.MethodGet, "/contents/"+content.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodPost, "/chat/", map[string]any{
		"user_id":  "u1",
		"space_id": created.ID,
		"message":  "What is the capital of France?",
		"history":  []map[string]string{{"role": "user", "content": "hello"}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[chat.Response](t, rec)
	assert.Equal(t, "Paris", resp.Answer)
	assert.Equal(t, []string{"The capital of France is Paris."}, resp.Context)
	assert.Equal(t, "What is the capital of France?", e.chat.last.Message)
	assert.Len(t, e.chat.last.History, 1)
}

func TestUploadValidation(t *testing.T) {
	e := newEnv(t, false)
	created := e.createSpace(t, "History")

	rec := e.upload(t, "/contents/upload?space_id="+created.ID, "README", "no extension")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "File must have an extension", decode[map[string]string](t, rec)["detail"])

	rec = e.upload(t, "/contents/upload?space_id=missing", "a.txt", "x")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(t, http.MethodGet, "/contents/unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChatErrors(t *testing.T) {
	e := newEnv(t, false)

	rec := e.do(t, http.MethodPost, "/chat/", map[string]any{"user_id": "u1", "space_id": "missing", "message": "hi"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Space not found", decode[map[string]string](t, rec)["detail"])

	created := e.createSpace(t, "Math")
	rec = e.upload(t, "/contents/upload?space_id="+created.ID, "n.txt", "x")
	require.Equal(t, http.StatusCreated, rec.Code)

	e.chat.err = errors.Join(errors.ErrRemote, errors.New("gemini unavailable"))
	rec = e.do(t, http.MethodPost, "/chat/", map[string]any{"user_id": "u1", "space_id": created.ID, "message": "hi"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec = e.do(t, http.MethodPost, "/chat/", "not an object")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthRoutes(t *testing.T) {
	e := newEnv(t, true)

	rec := e.do(t, http.MethodPost, "/auth/register", map[string]any{"email": "amy@example.com", "password": "pw"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	registered := decode[map[string]string](t, rec)
	assert.Equal(t, "bearer", registered["token_type"])
	assert.NotEmpty(t, registered["access_token"])

	rec = e.do(t, http.MethodPost, "/auth/register", map[string]any{"email": "amy@example.com", "password": "pw"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email already registered", decode[map[string]string](t, rec)["detail"])

	rec = e.do(t, http.MethodPost, "/auth/login", map[string]any{"email": "amy@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password", decode[map[string]string](t, rec)["detail"])

	rec = e.do(t, http.MethodPost, "/auth/login", map[string]any{"email": "amy@example.com", "password": "pw"})
	require.Equal(t, http.StatusOK, rec.Code)
	login := decode[map[string]string](t, rec)
	assert.NotEmpty(t, login["user_id"])
	assert.Equal(t, "amy@example.com", login["email"])

	rec = e.do(t, http.MethodGet, "/spaces/list_spaces", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.do(t, http.MethodPost, "/spaces/create_space", map[string]any{"title": "Mine"},
		"Authorization", "Bearer "+login["access_token"])
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, login["user_id"], decode[entity.Space](t, rec).OwnerID)
}

func TestAuthScopesRequestsToCaller(t *testing.T) {
	e := newEnv(t, true)

	alice, aliceToken, err := e.auth.Register(t.Context(), auth.RegisterRequest{Email: "alice@example.com", Password: "pw"})
	require.NoError(t, err)
	bob, bobToken, err := e.auth.Register(t.Context(), auth.RegisterRequest{Email: "bob@example.com", Password: "pw"})
	require.NoError(t, err)
	asAlice := []string{"Authorization", "Bearer " + aliceToken}
	asBob := []string{"Authorization", "Bearer " + bobToken}

	rec := e.do(t, http.MethodPost, "/spaces/create_space", map[string]any{"title": "Diary", "owner_id": bob.ID}, asAlice...)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(t, http.MethodPost, "/spaces/create_space", map[string]any{"title": "Diary"}, asAlice...)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	diary := decode[entity.Space](t, rec)
	assert.Equal(t, alice.ID, diary.OwnerID)

	rec = e.upload(t, "/contents/upload?space_id="+diary.ID+"&owner_id="+bob.ID, "entry.txt", "private diary", asAlice...)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = e.upload(t, "/contents/upload?space_id="+diary.ID, "entry.txt", "private diary", asBob...)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = e.upload(t, "/contents/upload?space_id="+diary.ID, "entry.txt", "private diary", asAlice...)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, alice.ID, *decode[entity.Content](t, rec).OwnerID)

	rec = e.do(t, http.MethodPost, "/chat/", map[string]any{"user_id": alice.ID, "space_id": diary.ID, "message": "what did I write?"}, asBob...)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Not allowed to act for another user", decode[map[string]string](t, rec)["detail"])
	rec = e.do(t, http.MethodPost, "/chat/", map[string]any{"space_id": diary.ID, "message": "what did I write?"}, asBob...)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, e.chat.last.UserID)

	rec = e.do(t, http.MethodPost, "/chat/", map[string]any{"space_id": diary.ID, "message": "what did I write?"}, asAlice...)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, alice.ID, e.chat.last.UserID)

	rec = e.do(t, http.MethodGet, "/spaces/space/"+diary.ID, nil, asBob...)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = e.do(t, http.MethodPatch, "/spaces/space/"+diary.ID, map[string]any{"title": "Mine now"}, asBob...)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = e.do(t, http.MethodDelete, "/spaces/space/"+diary.ID, nil, asBob...)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = e.do(t, http.MethodGet, "/contents/by_space/"+diary.ID, nil, asBob...)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(t, http.MethodGet, "/spaces/list_spaces?owner_id="+alice.ID, nil, asBob...)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = e.do(t, http.MethodGet, "/spaces/list_spaces", nil, asBob...)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]entity.Space](t, rec))

	rec = e.do(t, http.MethodGet, "/spaces/space/"+diary.ID, nil, asAlice...)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Diary", decode[entity.Space](t, rec).Title)
	rec = e.do(t, http.MethodDelete, "/spaces/space/"+diary.ID, nil, asAlice...)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, server.StatusOf(errors.Wrapf(errors.ErrNotFound, "x")))
	assert.Equal(t, http.StatusForbidden, server.StatusOf(errors.Wrapf(errors.ErrForbidden, "x")))
	assert.Equal(t, http.StatusBadRequest, server.StatusOf(errors.Wrapf(errors.ErrConflict, "x")))
	assert.Equal(t, http.StatusServiceUnavailable, server.StatusOf(errors.ErrQueueFull))
	assert.Equal(t, http.StatusInternalServerError, server.StatusOf(errors.New("boom")))
}
