package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/avolkova/tracker/internal/model"
	"github.com/avolkova/tracker/internal/schedule"
	"github.com/avolkova/tracker/internal/store"
	"github.com/avolkova/tracker/internal/websocket"
)

type RecordHandler struct {
	records  *store.RecordStore
	trackers *store.TrackerStore
	hub      *websocket.Hub
	logger   *slog.Logger
}

func NewRecordHandler(rs *store.RecordStore, ts *store.TrackerStore, hub *websocket.Hub, logger *slog.Logger) *RecordHandler {
	return &RecordHandler{records: rs, trackers: ts, hub: hub, logger: logger}
}

func (h *RecordHandler) broadcast(action, trackerID string) {
	if h.hub != nil {
		h.hub.Broadcast(websocket.NewMessage("record", action, trackerID))
	}
}

func (h *RecordHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.records.List()
	if err != nil {
		h.logger.Error("list records", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list records")
		return
	}
	if records == nil {
		records = []model.TrackerRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *RecordHandler) ListByTracker(w http.ResponseWriter, r *http.Request) {
	id, err := parseTrackerIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	tr, err := h.trackers.GetByID(id)
	if err != nil {
		h.logger.Error("get tracker", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get tracker")
		return
	}
	if tr == nil {
		writeError(w, http.StatusNotFound, "tracker not found")
		return
	}

	records, err := h.records.ListByTracker(id)
	if err != nil {
		h.logger.Error("list records", "tracker_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list records")
		return
	}
	if records == nil {
		records = []model.TrackerRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

type toggleRequest struct {
	Date string `json:"date"`
}

type toggleResponse struct {
	TrackerID string `json:"tracker_id"`
	Day       string `json:"day"`
	Completed bool   `json:"completed"`
	Count     int    `json:"count"`
}

// Toggle flips the tracker's completion for a day. The body may carry a
// {"date": "YYYY-MM-DD"} override; without one the toggle applies to today.
// Toggling twice restores the original state.
func (h *RecordHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id, err := parseTrackerIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	day := time.Now()
	if r.Body != nil && r.ContentLength != 0 {
		var req toggleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		if req.Date != "" {
			day, err = schedule.ParseDay(req.Date)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
				return
			}
		}
	}

	tr, err := h.trackers.GetByID(id)
	if err != nil {
		h.logger.Error("get tracker", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get tracker")
		return
	}
	if tr == nil {
		writeError(w, http.StatusNotFound, "tracker not found")
		return
	}

	completed, err := h.records.Toggle(id, day)
	if errors.Is(err, store.ErrFutureDay) {
		writeError(w, http.StatusBadRequest, "cannot record a future day")
		return
	}
	if err != nil {
		h.logger.Error("toggle record", "tracker_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to toggle record")
		return
	}

	count, err := h.records.CountByTracker(id)
	if err != nil {
		h.logger.Error("count records", "tracker_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to count records")
		return
	}

	h.broadcast("toggled", id.String())

	writeJSON(w, http.StatusOK, toggleResponse{
		TrackerID: id.String(),
		Day:       schedule.DayKey(day),
		Completed: completed,
		Count:     count,
	})
}
