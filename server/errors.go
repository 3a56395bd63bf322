package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/habiliai/tutorwise/errors"
)

type errorMapping struct {
	sentinel error
	status   int
}

// checked in order; the first match wins
var errorMappings = []errorMapping{
	{errors.ErrNotFound, http.StatusNotFound},
	{errors.ErrUnauthorized, http.StatusUnauthorized},
	{errors.ErrForbidden, http.StatusForbidden},
	{errors.ErrInvalidParams, http.StatusBadRequest},
	{errors.ErrInvalidRequest, http.StatusBadRequest},
	{errors.ErrConflict, http.StatusBadRequest},
	{errors.ErrNoContent, http.StatusBadRequest},
	{errors.ErrQueueFull, http.StatusServiceUnavailable},
	{errors.ErrRemote, http.StatusBadGateway},
}

// StatusOf maps an error to the HTTP status it is reported with.
func StatusOf(err error) int {
	for _, m := range errorMappings {
		if errors.Is(err, m.sentinel) {
			return m.status
		}
	}
	return http.StatusInternalServerError
}

// detail strips the sentinel suffix so clients see only the wrapping message.
func detail(err error, status int) string {
	if status == http.StatusInternalServerError {
		return "Internal server error"
	}
	msg := err.Error()
	for _, m := range errorMappings {
		if errors.Is(err, m.sentinel) {
			msg = strings.TrimSuffix(msg, ": "+m.sentinel.Error())
			break
		}
	}
	return msg
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("failed to write response", "err", err)
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := StatusOf(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "err", err)
	} else {
		logger.Debug("request rejected", "status", status, "err", err)
	}
	writeJSON(w, logger, status, map[string]string{"detail": detail(err, status)})
}

func decodeJSON(r *http.Request, out any) error {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		return errors.Wrapf(errors.ErrInvalidRequest, "invalid request body: %v", err)
	}
	return nil
}

func spaceNotFound(err error) error {
	if errors.Is(err, errors.ErrNotFound) {
		return errors.Wrapf(errors.ErrNotFound, "Space not found")
	}
	return err
}
