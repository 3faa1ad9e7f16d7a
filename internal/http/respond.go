package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
)

// errorBody is the uniform error payload for every failure response.
type errorBody struct {
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError maps domain errors onto HTTP statuses. Upstream and unknown
// errors are logged with their cause and surfaced as an opaque 500.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	if errors.Is(err, services.ErrInvalidCredentials) {
		respondJSON(w, http.StatusUnauthorized, errorBody{Message: "Invalid credentials"})
		return
	}

	switch core.KindOf(err) {
	case core.KindValidation:
		respondJSON(w, http.StatusBadRequest, errorBody{Message: core.MessageOf(err)})
	case core.KindNotFound:
		respondJSON(w, http.StatusNotFound, errorBody{Message: core.MessageOf(err)})
	case core.KindConflict:
		respondJSON(w, http.StatusConflict, errorBody{Message: core.MessageOf(err)})
	default:
		slog.ErrorContext(ctx, "Request failed", applog.FieldError, err)
		respondJSON(w, http.StatusInternalServerError, errorBody{Message: "Server error"})
	}
}
