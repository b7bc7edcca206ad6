package handler

import (
	"context"
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/qdashboard/qdashboard/internal/model"
)

type snapshotStore interface {
	GetTick(ctx context.Context, id int64) (*model.ArchivedTick, error)
	ListTicks(ctx context.Context, page, perPage int, epoch int64) ([]model.ArchivedTick, int, error)
	ExportTicks(ctx context.Context, epoch int64) ([]model.ArchivedTick, error)
	ListStats(ctx context.Context, page, perPage int) ([]model.ArchivedStats, int, error)
}

// SnapshotHandler serves the snapshot archive.
type SnapshotHandler struct {
	repo snapshotStore
}

func NewSnapshotHandler(repo snapshotStore) *SnapshotHandler {
	return &SnapshotHandler{repo: repo}
}

func (h *SnapshotHandler) RegisterRoutes(r chi.Router) {
	r.Get("/snapshots/ticks", h.ListTicks)
	r.Get("/snapshots/ticks/export", h.ExportTicks)
	r.Get("/snapshots/ticks/{id}", h.GetTick)
	r.Get("/snapshots/stats", h.ListStats)
}

func (h *SnapshotHandler) ListTicks(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r)
	epoch := epochParam(r)

	ticks, total, err := h.repo.ListTicks(r.Context(), page, perPage, epoch)
	if err != nil {
		writeError(w, storeErrorStatus(err), "failed to list tick snapshots")
		return
	}
	if ticks == nil {
		ticks = []model.ArchivedTick{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ticks":    ticks,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

func (h *SnapshotHandler) GetTick(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid snapshot id")
		return
	}

	tick, err := h.repo.GetTick(r.Context(), id)
	if err != nil {
		status := storeErrorStatus(err)
		if status == http.StatusNotFound {
			writeError(w, status, "tick snapshot not found")
			return
		}
		writeError(w, status, "failed to get tick snapshot")
		return
	}
	writeJSON(w, http.StatusOK, tick)
}

func (h *SnapshotHandler) ListStats(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r)

	stats, total, err := h.repo.ListStats(r.Context(), page, perPage)
	if err != nil {
		writeError(w, storeErrorStatus(err), "failed to list stats snapshots")
		return
	}
	if stats == nil {
		stats = []model.ArchivedStats{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"stats":    stats,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

func (h *SnapshotHandler) ExportTicks(w http.ResponseWriter, r *http.Request) {
	ticks, err := h.repo.ExportTicks(r.Context(), epochParam(r))
	if err != nil {
		writeError(w, storeErrorStatus(err), "failed to export tick snapshots")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="tick_snapshots.csv"`)

	writer := csv.NewWriter(w)
	defer writer.Flush()

	writer.Write([]string{
		"id", "tick", "epoch", "duration", "initial_tick", "timestamp",
		"overall", "tick_status", "epoch_status", "duration_status", "recorded_at",
	})

	for _, t := range ticks {
		writer.Write([]string{
			strconv.FormatInt(t.ID, 10),
			strconv.FormatInt(t.Tick, 10),
			strconv.FormatInt(t.Epoch, 10),
			strconv.FormatFloat(t.Duration, 'f', -1, 64),
			strconv.FormatInt(t.InitialTick, 10),
			strconv.FormatInt(t.Timestamp, 10),
			t.Health.Overall,
			t.Health.TickStatus,
			t.Health.EpochStatus,
			t.Health.DurationStatus,
			t.RecordedAt.Format(time.RFC3339),
		})
	}
}

func epochParam(r *http.Request) int64 {
	if v := r.URL.Query().Get("epoch"); v != "" {
		if e, err := strconv.ParseInt(v, 10, 64); err == nil && e > 0 {
			return e
		}
	}
	return 0
}
