package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/habiliai/tutorwise/space"
)

func (s *server) registerSpaceRoutes(r *mux.Router) {
	r.HandleFunc("/create_space", s.handleCreateSpace).Methods(http.MethodPost)
	r.HandleFunc("/list_spaces", s.handleListSpaces).Methods(http.MethodGet)
	r.HandleFunc("/space/{id}", s.handleGetSpace).Methods(http.MethodGet)
	r.HandleFunc("/space/{id}", s.handleUpdateSpace).Methods(http.MethodPatch)
	r.HandleFunc("/space/{id}", s.handleDeleteSpace).Methods(http.MethodDelete)
}

func (s *server) handleCreateSpace(w http.ResponseWriter, r *http.Request) {
	var req space.CreateSpaceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.Logger, err)
		return
	}
	ownerID, err := actingUser(r.Context(), req.OwnerID)
	if err != nil {
		writeError(w, s.Logger, err)
		return
	}
	req.OwnerID = ownerID

	created, err := s.Spaces.CreateSpace(r.Context(), req)
	if err != nil {
		writeError(w, s.Logger, err)
		return
	}
	writeJSON(w, s.Logger, http.StatusCreated, created)
}

func (s *server) handleListSpaces(w http.ResponseWriter, r *http.Request) {
	ownerID, err := actingUser(r.Context(), r.URL.Query().Get("owner_id"))
	if err != nil {
		writeError(w, s.Logger, err)
		return
	}
	spaces, err := s.Spaces.ListSpaces(r.Context(), ownerID)
	if err != nil {
		writeError(w, s.Logger, err)
		return
	}
	writeJSON(w, s.Logger, http.StatusOK, spaces)
}

func (s *server) handleGetSpace(w http.ResponseWriter, r *http.Request) {
	found, err := s.ownedSpace(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, s.Logger, err)
		return
	}
	writeJSON(w, s.Logger, http.StatusOK, found)
}

func (s *server) handleUpdateSpace(w http.ResponseWriter, r *http.Request) {
	var req space.UpdateSpaceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.Logger, err)
		return
	}
	if _, err := s.ownedSpace(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, s.Logger, err)
		return
	}

	updated, err := s.Spaces.UpdateSpace(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		writeError(w, s.Logger, spaceNotFound(err))
		return
	}
	writeJSON(w, s.Logger, http.StatusOK, updated)
}

func (s *server) handleDeleteSpace(w http.ResponseWriter, r *http.Request) {
	if _, err := s.ownedSpace(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, s.Logger, err)
		return
	}
	if err := s.Spaces.DeleteSpace(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, s.Logger, spaceNotFound(err))
		return
	}
	writeJSON(w, s.Logger, http.StatusOK, map[string]string{"detail": "Space deleted successfully"})
}
