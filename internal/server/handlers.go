package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"termwatch/internal/store"
	"termwatch/pkg/api"
)

// Handlers holds the ops HTTP handlers and their dependencies.
type Handlers struct {
	db store.Pinger
}

// NewHandlers creates a Handlers instance backed by db.
func NewHandlers(db store.Pinger) *Handlers {
	return &Handlers{db: db}
}

// Healthz is a liveness probe.
// It returns 200 OK if the process is serving.
func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, api.StatusResponse{Status: "healthy"})
}

// Readyz is a readiness probe. It fails while the terminal database is
// unreachable, since no cycle can build a snapshot then.
func (h *Handlers) Readyz(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		httpError(w, "Database unavailable", http.StatusServiceUnavailable)
		return
	}
	respondJSON(w, http.StatusOK, api.StatusResponse{Status: "ready"})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

func httpError(w http.ResponseWriter, message string, code int) {
	respondJSON(w, code, api.ErrorResponse{
		Error: message,
		Code:  strconv.Itoa(code),
	})
}
