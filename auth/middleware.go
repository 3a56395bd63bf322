package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/habiliai/tutorwise/errors"
)

type userIDCtxKey struct{}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDCtxKey{}, userID)
}

// UserIDFromContext returns the authenticated user id, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDCtxKey{}).(string)
	return userID, ok && userID != ""
}

// ExtractToken returns the token of a "Bearer <token>" header value.
func ExtractToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", errors.Wrapf(errors.ErrUnauthorized, "invalid authorization header format")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", errors.Wrapf(errors.ErrUnauthorized, "empty token")
	}
	return token, nil
}

// Middleware verifies bearer tokens. When required is false requests without
// an Authorization header pass through anonymously; a bad token is always rejected.
func (s *Service) Middleware(required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" && !required {
				next.ServeHTTP(w, r)
				return
			}

			token, err := ExtractToken(header)
			if err == nil {
				var userID string
				if userID, err = s.VerifyToken(token); err == nil {
					next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
					return
				}
			}

			s.logger.Debug("rejected request", "path", r.URL.Path, "err", err)
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("WWW-Authenticate", "Bearer")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Could not validate credentials"}`))
		})
	}
}
