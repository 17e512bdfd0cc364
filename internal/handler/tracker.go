package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/avolkova/tracker/internal/ledger"
	"github.com/avolkova/tracker/internal/model"
	"github.com/avolkova/tracker/internal/schedule"
	"github.com/avolkova/tracker/internal/store"
	"github.com/avolkova/tracker/internal/visibility"
	"github.com/avolkova/tracker/internal/websocket"
)

type TrackerHandler struct {
	trackers   *store.TrackerStore
	categories *store.CategoryStore
	records    *store.RecordStore
	hub        *websocket.Hub
	logger     *slog.Logger
}

func NewTrackerHandler(ts *store.TrackerStore, cs *store.CategoryStore, rs *store.RecordStore, hub *websocket.Hub, logger *slog.Logger) *TrackerHandler {
	return &TrackerHandler{trackers: ts, categories: cs, records: rs, hub: hub, logger: logger}
}

func (h *TrackerHandler) broadcast(entity, action, id string) {
	if h.hub != nil {
		h.hub.Broadcast(websocket.NewMessage(entity, action, id))
	}
}

type trackerRequest struct {
	Name       string      `json:"name"`
	Emoji      string      `json:"emoji"`
	Color      model.Color `json:"color"`
	Schedule   []int       `json:"schedule"`
	CategoryID *int64      `json:"category_id"`
}

func (req trackerRequest) schedule() (schedule.Schedule, bool) {
	var s schedule.Schedule
	for _, n := range req.Schedule {
		d := schedule.WeekDay(n)
		if !d.Valid() {
			return nil, false
		}
		s = append(s, d)
	}
	return s.Normalize(), true
}

// checkCategory verifies that a referenced category exists. A nil reference
// is fine — the tracker lands in the pinned section.
func (h *TrackerHandler) checkCategory(w http.ResponseWriter, categoryID *int64) bool {
	if categoryID == nil {
		return true
	}
	cat, err := h.categories.GetByID(*categoryID)
	if err != nil {
		h.logger.Error("check category", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to check category")
		return false
	}
	if cat == nil {
		writeError(w, http.StatusBadRequest, "category not found")
		return false
	}
	return true
}

func (h *TrackerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req trackerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	sched, ok := req.schedule()
	if !ok {
		writeError(w, http.StatusBadRequest, "schedule contains an invalid weekday")
		return
	}
	if !h.checkCategory(w, req.CategoryID) {
		return
	}

	tr, err := model.NewTracker(req.Name, req.Emoji, req.Color, sched, req.CategoryID)
	if errors.Is(err, model.ErrEmptyName) {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.trackers.Create(tr)
	if err != nil {
		h.logger.Error("create tracker", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create tracker")
		return
	}

	h.broadcast("tracker", "created", created.ID.String())

	writeJSON(w, http.StatusCreated, created)
}

func (h *TrackerHandler) Get(w http.ResponseWriter, r *http.Request) {
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
	writeJSON(w, http.StatusOK, tr)
}

func (h *TrackerHandler) List(w http.ResponseWriter, r *http.Request) {
	trackers, err := h.trackers.List()
	if err != nil {
		h.logger.Error("list trackers", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list trackers")
		return
	}
	if trackers == nil {
		trackers = []model.Tracker{}
	}
	writeJSON(w, http.StatusOK, trackers)
}

// Update is a full replacement of the tracker's fields, keeping its id and
// completion history.
func (h *TrackerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseTrackerIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.trackers.GetByID(id)
	if err != nil {
		h.logger.Error("get tracker", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get tracker")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "tracker not found")
		return
	}

	var req trackerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	sched, ok := req.schedule()
	if !ok {
		writeError(w, http.StatusBadRequest, "schedule contains an invalid weekday")
		return
	}
	if !h.checkCategory(w, req.CategoryID) {
		return
	}

	replacement, err := model.NewTracker(req.Name, req.Emoji, req.Color, sched, req.CategoryID)
	if errors.Is(err, model.ErrEmptyName) {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	replacement.ID = existing.ID

	updated, err := h.trackers.Update(replacement)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "tracker not found")
		return
	}
	if err != nil {
		h.logger.Error("update tracker", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update tracker")
		return
	}

	h.broadcast("tracker", "updated", id.String())

	writeJSON(w, http.StatusOK, updated)
}

// Delete removes the tracker and cascades its completion records.
func (h *TrackerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseTrackerIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	err = h.trackers.Delete(id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "tracker not found")
		return
	}
	if err != nil {
		h.logger.Error("delete tracker", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete tracker")
		return
	}

	h.broadcast("tracker", "deleted", id.String())

	w.WriteHeader(http.StatusNoContent)
}

type visibleResponse struct {
	Categories []model.TrackerCategory `json:"categories"`
	AnyDue     bool                    `json:"any_due"`
}

// Visible returns the filtered category tree for a day: schedule and search
// matching, then the optional completed/not_completed refinement against the
// day's records.
func (h *TrackerHandler) Visible(w http.ResponseWriter, r *http.Request) {
	refDate, err := parseDayQuery(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
		return
	}

	var filter model.Filter
	if raw := r.URL.Query().Get("filter"); raw != "" {
		filter, err = model.ParseFilter(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "unknown filter")
			return
		}
	}
	search := r.URL.Query().Get("search")

	all, err := h.trackers.ListCategorized()
	if err != nil {
		h.logger.Error("list categorized", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list trackers")
		return
	}
	records, err := h.records.List()
	if err != nil {
		h.logger.Error("list records", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list records")
		return
	}

	completions := ledger.FromRecords(records)
	visible := visibility.Visible(all, refDate, search, filter, completions)
	if visible == nil {
		visible = []model.TrackerCategory{}
	}

	writeJSON(w, http.StatusOK, visibleResponse{
		Categories: visible,
		AnyDue:     visibility.AnyDue(all, refDate),
	})
}
