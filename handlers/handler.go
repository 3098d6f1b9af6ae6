package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"nexus-project/collaboration-service/models"
)

// requestTimeout bounds every record-store round trip so a stuck store
// surfaces as a transient failure instead of a hung request.
const requestTimeout = 5 * time.Second

func requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), requestTimeout)
}

// actingUser returns the authenticated user ID injected by the JWT
// middleware.
func actingUser(r *http.Request) string {
	return r.Header.Get("User-ID")
}

// originClient identifies the caller's realtime connection so its own
// broadcast echo can be suppressed. Optional.
func originClient(r *http.Request) string {
	return r.Header.Get("X-Client-ID")
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeError maps the error taxonomy onto HTTP statuses. The specific
// reason always reaches the client so it can decide whether to retry,
// request elevated permission, or abandon the action.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case models.IsValidation(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case models.IsAuthorization(err):
		http.Error(w, err.Error(), http.StatusForbidden)
	case models.IsNotFound(err):
		http.Error(w, err.Error(), http.StatusNotFound)
	case models.IsInvariantViolation(err):
		http.Error(w, err.Error(), http.StatusConflict)
	case models.IsTransient(err):
		http.Error(w, "temporarily unavailable, try again", http.StatusServiceUnavailable)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
