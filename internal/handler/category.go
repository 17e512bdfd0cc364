package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/avolkova/tracker/internal/model"
	"github.com/avolkova/tracker/internal/store"
	"github.com/avolkova/tracker/internal/websocket"
)

type CategoryHandler struct {
	categories *store.CategoryStore
	hub        *websocket.Hub
	logger     *slog.Logger
}

func NewCategoryHandler(cs *store.CategoryStore, hub *websocket.Hub, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{categories: cs, hub: hub, logger: logger}
}

func (h *CategoryHandler) broadcast(action string, id int64) {
	if h.hub != nil {
		h.hub.Broadcast(websocket.NewMessage("category", action, strconv.FormatInt(id, 10)))
	}
}

type categoryRequest struct {
	Title string `json:"title"`
}

// Create adds a category, or returns the existing one when the title is
// already taken — creating "X" twice never duplicates it.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	cat, err := h.categories.Create(req.Title)
	if errors.Is(err, model.ErrEmptyTitle) {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if err != nil {
		h.logger.Error("create category", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create category")
		return
	}

	h.broadcast("created", cat.ID)

	writeJSON(w, http.StatusCreated, cat)
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	cats, err := h.categories.List()
	if err != nil {
		h.logger.Error("list categories", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}
	if cats == nil {
		cats = []model.TrackerCategory{}
	}
	writeJSON(w, http.StatusOK, cats)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	cat, err := h.categories.Update(id, req.Title)
	switch {
	case errors.Is(err, model.ErrEmptyTitle):
		writeError(w, http.StatusBadRequest, "title is required")
		return
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "category not found")
		return
	case err != nil:
		h.logger.Error("update category", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update category")
		return
	}

	h.broadcast("updated", id)

	writeJSON(w, http.StatusOK, cat)
}

// Delete removes a category. Its trackers survive with a null category
// reference; only the grouping disappears.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	err = h.categories.Delete(id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}
	if err != nil {
		h.logger.Error("delete category", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete category")
		return
	}

	h.broadcast("deleted", id)

	w.WriteHeader(http.StatusNoContent)
}
