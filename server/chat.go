package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/habiliai/tutorwise/chat"
	"github.com/habiliai/tutorwise/errors"
)

func (s *server) registerChatRoutes(r *mux.Router) {
	r.HandleFunc("/chat/", s.handleChat).Methods(http.MethodPost)
	r.HandleFunc("/chat", s.handleChat).Methods(http.MethodPost)
}

func (s *server) handleChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req chat.Request
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.Logger, err)
		return
	}
	userID, err := actingUser(ctx, req.UserID)
	if err != nil {
		writeError(w, s.Logger, err)
		return
	}
	req.UserID = userID

	if _, err := s.ownedSpace(ctx, req.SpaceID); err != nil {
		writeError(w, s.Logger, err)
		return
	}
	hasContent, err := s.Spaces.HasContent(ctx, req.SpaceID)
	if err != nil {
		writeError(w, s.Logger, err)
		return
	}
	if !hasContent {
		writeError(w, s.Logger, errors.Wrapf(errors.ErrNoContent, "Space has no processed content yet"))
		return
	}

	resp, err := s.Chat.Answer(ctx, req)
	if err != nil {
		writeError(w, s.Logger, err)
		return
	}
	writeJSON(w, s.Logger, http.StatusOK, resp)
}
