package http

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	identityKey
)

// identity is the authenticated caller attached to the request context.
type identity struct {
	UserID   int64
	Username string
}

// requireAuth verifies the bearer token and attaches the caller identity to
// the request context. Missing or invalid tokens get a 401 without reaching
// the handler.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			respondJSON(w, http.StatusUnauthorized, errorBody{Message: "Access token required"})
			return
		}

		claims, err := s.tokens.Verify(token)
		if err != nil {
			respondJSON(w, http.StatusUnauthorized, errorBody{Message: "Invalid or expired token"})
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, identity{
			UserID:   claims.UserID,
			Username: claims.Username,
		})
		next(w, r.WithContext(ctx))
	}
}

// callerID returns the authenticated user behind the request. Handlers are
// only reachable through requireAuth, so the value is always present.
func callerID(r *http.Request) int64 {
	id, _ := r.Context().Value(identityKey).(identity)
	return id.UserID
}
