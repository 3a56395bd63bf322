package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/habiliai/tutorwise/auth"
)

type (
	tokenResponse struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		UserID      string `json:"user_id,omitempty"`
		Email       string `json:"email,omitempty"`
	}

	loginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
)

func (s *server) registerAuthRoutes(r *mux.Router) {
	r.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
}

func (s *server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.Logger, err)
		return
	}

	_, token, err := s.Auth.Register(r.Context(), req)
	if err != nil {
		writeError(w, s.Logger, err)
		return
	}

	writeJSON(w, s.Logger, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   auth.TokenType,
	})
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.Logger, err)
		return
	}

	user, token, err := s.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, s.Logger, err)
		return
	}

	writeJSON(w, s.Logger, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   auth.TokenType,
		UserID:      user.ID,
		Email:       user.Email,
	})
}
