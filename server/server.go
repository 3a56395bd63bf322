package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/habiliai/tutorwise/auth"
	"github.com/habiliai/tutorwise/blob"
	"github.com/habiliai/tutorwise/chat"
	"github.com/habiliai/tutorwise/ingest"
	"github.com/habiliai/tutorwise/internal/metrics"
	"github.com/habiliai/tutorwise/internal/mylog"
	"github.com/habiliai/tutorwise/space"
)

type (
	Answerer interface {
		Answer(ctx context.Context, req chat.Request) (*chat.Response, error)
	}

	TaskSubmitter interface {
		Submit(ctx context.Context, contentID string) error
		Task(contentID string) (ingest.Task, bool)
	}

	// Deps are the services behind the HTTP routes. Auth and Metrics are optional.
	Deps struct {
		Spaces  *space.Service
		Chat    Answerer
		Ingest  TaskSubmitter
		Storage blob.Storage
		Auth    *auth.Service
		Metrics *metrics.Metrics
		Logger  *slog.Logger

		// AuthRequired rejects requests without a bearer token on the
		// spaces, contents and chat routes.
		AuthRequired bool
	}

	server struct {
		Deps
	}
)

func NewHandler(deps Deps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = mylog.Discard()
	}
	s := &server{Deps: deps}

	router := mux.NewRouter()
	router.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	if s.Metrics != nil {
		router.Handle("/metrics", s.Metrics.Handler()).Methods(http.MethodGet)
	}
	if s.Auth != nil {
		s.registerAuthRoutes(router.PathPrefix("/auth").Subrouter())
	}

	api := router.NewRoute().Subrouter()
	if s.Auth != nil {
		api.Use(s.Auth.Middleware(s.AuthRequired))
	}
	s.registerSpaceRoutes(api.PathPrefix("/spaces").Subrouter())
	s.registerContentRoutes(api.PathPrefix("/contents").Subrouter())
	s.registerChatRoutes(api)

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	return cors(newRecoveryHandler(s.Logger)(router))
}

func newRecoveryHandler(logger *slog.Logger) func(http.Handler) http.Handler {
	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError)),
		handlers.PrintRecoveryStack(true),
	)
}

func (s *server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.Logger, http.StatusOK, map[string]string{"message": "Welcome to the Spaces Backend API"})
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		s.Logger.Warn("failed to write health response", "err", err)
	}
}
