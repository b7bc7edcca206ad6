package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/qdashboard/qdashboard/internal/model"
	"github.com/qdashboard/qdashboard/internal/service/qubicrpc"
)

type qubicSource interface {
	Tick(ctx context.Context) (model.TickSnapshot, error)
	Stats(ctx context.Context) (model.StatsSnapshot, error)
	Status() qubicrpc.Status
}

// QubicHandler is the backend the dashboard's API client polls. It answers
// 502 when the RPC cannot be reached so the client sees a non-2xx.
type QubicHandler struct {
	source qubicSource
}

func NewQubicHandler(source qubicSource) *QubicHandler {
	return &QubicHandler{source: source}
}

func (h *QubicHandler) RegisterRoutes(r chi.Router) {
	r.Get("/qubic/tick", h.Tick)
	r.Get("/qubic/stats", h.Stats)
	r.Get("/qubic/status", h.Status)
}

func (h *QubicHandler) Tick(w http.ResponseWriter, r *http.Request) {
	tick, err := h.source.Tick(r.Context())
	if err != nil {
		slog.Warn("qubic rpc tick failed", "error", err)
		writeError(w, http.StatusBadGateway, "failed to fetch tick from qubic rpc")
		return
	}
	writeJSON(w, http.StatusOK, tick)
}

func (h *QubicHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.source.Stats(r.Context())
	if err != nil {
		slog.Warn("qubic rpc stats failed", "error", err)
		writeError(w, http.StatusBadGateway, "failed to fetch stats from qubic rpc")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *QubicHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.source.Status())
}
