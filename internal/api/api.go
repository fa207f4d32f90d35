// Package api serves the plain-HTTP side of the server: health checks
// and the winners leaderboard.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dstrelkov/seabattle/internal/model"
	"github.com/dstrelkov/seabattle/internal/storage"
)

// Handler serves the read-only HTTP endpoints
type Handler struct {
	storage storage.Storage
	logger  *slog.Logger
}

// NewHandler creates a Handler over the storage
func NewHandler(store storage.Storage, logger *slog.Logger) *Handler {
	return &Handler{
		storage: store,
		logger:  logger.With(slog.String("component", "api")),
	}
}

// Register mounts the endpoints on the router
func (h *Handler) Register(router *mux.Router) {
	router.HandleFunc("/healthz", h.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/winners", h.handleWinners).Methods(http.MethodGet)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleWinners(w http.ResponseWriter, r *http.Request) {
	winners, err := h.storage.Winners(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list winners", slog.Any("error", err))
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if winners == nil {
		winners = []*model.Winner{}
	}
	h.writeJSON(w, http.StatusOK, winners)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to write response", slog.Any("error", err))
	}
}
