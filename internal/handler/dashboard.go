package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/qdashboard/qdashboard/internal/chart"
	"github.com/qdashboard/qdashboard/internal/model"
	"github.com/qdashboard/qdashboard/internal/service/dashboard"
	"github.com/qdashboard/qdashboard/internal/service/metrics"
	"github.com/qdashboard/qdashboard/internal/view"
)

type dashboardService interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	IsRunning() bool
	RefreshTick(ctx context.Context) bool
	RefreshStats(ctx context.Context) bool
	CurrentData() (model.TickSnapshot, bool)
	Status() model.PollerState
}

type viewBoard interface {
	Snapshot() map[string]view.CellState
}

type chartFrames interface {
	Frames() map[string]chart.Frame
}

type historySource interface {
	Snapshot() metrics.Snapshot
}

type pollerStateStore interface {
	Get(ctx context.Context) (*model.PollerState, error)
}

type languageReader interface {
	Current() string
}

// DashboardHandler exposes the rendered dashboard and controls polling.
type DashboardHandler struct {
	svc     dashboardService
	board   viewBoard
	charts  chartFrames
	history historySource
	lang    languageReader
	state   pollerStateStore
}

// NewDashboardHandler builds the handler. state may be nil when no archive
// database is configured.
func NewDashboardHandler(
	svc dashboardService,
	board viewBoard,
	charts chartFrames,
	history historySource,
	lang languageReader,
	state pollerStateStore,
) *DashboardHandler {
	return &DashboardHandler{
		svc:     svc,
		board:   board,
		charts:  charts,
		history: history,
		lang:    lang,
		state:   state,
	}
}

func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard/view", h.View)
	r.Get("/dashboard/charts", h.Charts)
	r.Get("/dashboard/current", h.Current)
	r.Get("/dashboard/status", h.Status)
	r.Post("/dashboard/start", h.Start)
	r.Post("/dashboard/stop", h.Stop)
	r.Post("/dashboard/refresh", h.Refresh)
}

func (h *DashboardHandler) View(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"language": h.lang.Current(),
		"running":  h.svc.IsRunning(),
		"targets":  h.board.Snapshot(),
	})
}

func (h *DashboardHandler) Charts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"series":  h.charts.Frames(),
		"history": h.history.Snapshot(),
	})
}

func (h *DashboardHandler) Current(w http.ResponseWriter, r *http.Request) {
	tick, ok := h.svc.CurrentData()
	if !ok {
		writeError(w, http.StatusNotFound, "no tick data yet")
		return
	}
	writeJSON(w, http.StatusOK, tick)
}

func (h *DashboardHandler) Status(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"poller": h.svc.Status()}
	if h.state != nil {
		persisted, err := h.state.Get(r.Context())
		if err != nil {
			slog.Warn("failed to read persisted poller state", "error", err)
		} else {
			resp["persisted"] = persisted
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *DashboardHandler) Start(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Start(r.Context()); err != nil {
		if errors.Is(err, dashboard.ErrAlreadyRunning) {
			writeError(w, http.StatusConflict, "dashboard is already running")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to start dashboard")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Dashboard started"})
}

func (h *DashboardHandler) Stop(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Stop(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to stop dashboard")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Dashboard stopped"})
}

// Refresh runs one tick and one stats cycle immediately. A refresh that is
// already in flight is skipped and reported as false.
func (h *DashboardHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	tick := h.svc.RefreshTick(r.Context())
	stats := h.svc.RefreshStats(r.Context())
	writeJSON(w, http.StatusOK, map[string]bool{
		"tick":  tick,
		"stats": stats,
	})
}
