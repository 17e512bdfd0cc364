package handler

import (
	"log/slog"
	"net/http"

	"github.com/avolkova/tracker/internal/stats"
	"github.com/avolkova/tracker/internal/store"
)

type StatsHandler struct {
	trackers *store.TrackerStore
	records  *store.RecordStore
	logger   *slog.Logger
}

func NewStatsHandler(ts *store.TrackerStore, rs *store.RecordStore, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{trackers: ts, records: rs, logger: logger}
}

// Get recomputes the statistics from current snapshots on every request.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	trackers, err := h.trackers.List()
	if err != nil {
		h.logger.Error("list trackers", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list trackers")
		return
	}
	records, err := h.records.List()
	if err != nil {
		h.logger.Error("list records", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list records")
		return
	}

	writeJSON(w, http.StatusOK, stats.Compute(records, trackers))
}
