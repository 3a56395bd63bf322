package server

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/habiliai/tutorwise/auth"
	"github.com/habiliai/tutorwise/entity"
	"github.com/habiliai/tutorwise/errors"
	"github.com/habiliai/tutorwise/extractor"
	"github.com/mokiat/gog"
)

const maxUploadMemory = 32 << 20

func (s *server) registerContentRoutes(r *mux.Router) {
	r.HandleFunc("/upload", s.handleUpload).Methods(http.MethodPost)
	r.HandleFunc("/by_space/{space_id}", s.handleListContents).Methods(http.MethodGet)
	r.HandleFunc("/{id}", s.handleGetContent).Methods(http.MethodGet)
	r.HandleFunc("/{id}/task", s.handleGetTask).Methods(http.MethodGet)
}

// handleUpload stores the file, inserts a pending content row and queues its
// ingestion. The response does not wait for ingestion.
func (s *server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	spaceID := query.Get("space_id")
	if spaceID == "" {
		writeError(w, s.Logger, errors.Wrapf(errors.ErrInvalidParams, "space_id is required"))
		return
	}
	if _, err := s.ownedSpace(ctx, spaceID); err != nil {
		writeError(w, s.Logger, err)
		return
	}
	ownerID, err := actingUser(ctx, query.Get("owner_id"))
	if err != nil {
		writeError(w, s.Logger, err)
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, s.Logger, errors.Wrapf(errors.ErrInvalidRequest, "invalid multipart form: %v", err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, s.Logger, errors.Wrapf(errors.ErrInvalidRequest, "file is required"))
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext == "" {
		writeError(w, s.Logger, errors.Wrapf(errors.ErrInvalidParams, "File must have an extension"))
		return
	}

	content := &entity.Content{
		ID:       uuid.NewString(),
		SpaceID:  spaceID,
		Title:    gog.PtrOf(header.Filename),
		MimeType: header.Header.Get("Content-Type"),
	}
	if title := query.Get("title"); title != "" {
		content.Title = &title
	}
	if ownerID != "" {
		content.OwnerID = &ownerID
	}
	if content.MimeType == "" || content.MimeType == "application/octet-stream" {
		if mimeType := extractor.MimeType(ext); mimeType != "" {
			content.MimeType = mimeType
		}
	}

	content.FilePath, err = s.Storage.Save(ctx, content.ID+ext, file)
	if err != nil {
		writeError(w, s.Logger, err)
		return
	}
	if err := s.Spaces.CreateContent(ctx, content); err != nil {
		if delErr := s.Storage.Delete(ctx, content.FilePath); delErr != nil {
			s.Logger.Warn("failed to remove orphaned upload", "path", content.FilePath, "err", delErr)
		}
		writeError(w, s.Logger, err)
		return
	}

	// a failed submit leaves the row pending for the sweeper
	if err := s.Ingest.Submit(ctx, content.ID); err != nil {
		s.Logger.Warn("failed to queue ingestion", "content_id", content.ID, "err", err)
	}

	writeJSON(w, s.Logger, http.StatusCreated, content)
}

func (s *server) handleListContents(w http.ResponseWriter, r *http.Request) {
	spaceID := mux.Vars(r)["space_id"]
	if _, ok := auth.UserIDFromContext(r.Context()); ok {
		if _, err := s.ownedSpace(r.Context(), spaceID); err != nil {
			writeError(w, s.Logger, err)
			return
		}
	}
	contents, err := s.Spaces.ListContentsBySpace(r.Context(), spaceID)
	if err != nil {
		writeError(w, s.Logger, err)
		return
	}
	writeJSON(w, s.Logger, http.StatusOK, contents)
}

func (s *server) handleGetContent(w http.ResponseWriter, r *http.Request) {
	content, err := s.Spaces.GetContent(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, s.Logger, err)
		return
	}
	writeJSON(w, s.Logger, http.StatusOK, content)
}

func (s *server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	task, ok := s.Ingest.Task(id)
	if !ok {
		writeError(w, s.Logger, errors.Wrapf(errors.ErrNotFound, "no ingestion task for content %s", id))
		return
	}
	writeJSON(w, s.Logger, http.StatusOK, task)
}
