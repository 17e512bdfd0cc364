package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/avolkova/tracker/internal/database"
	"github.com/avolkova/tracker/internal/model"
	"github.com/avolkova/tracker/internal/store"
)

var handlerTestNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

// setupTestAPI wires the handlers against an in-memory database and returns
// the routed mux so path parameters resolve the same way they do in the
// server.
func setupTestAPI(t *testing.T) *http.ServeMux {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	categories := store.NewCategoryStore(db)
	trackers := store.NewTrackerStore(db)
	records := store.NewRecordStore(db)
	records.SetClock(func() time.Time { return handlerTestNow })

	ch := NewCategoryHandler(categories, nil, logger)
	th := NewTrackerHandler(trackers, categories, records, nil, logger)
	rh := NewRecordHandler(records, trackers, nil, logger)
	sh := NewStatsHandler(trackers, records, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/categories", ch.Create)
	mux.HandleFunc("GET /api/categories", ch.List)
	mux.HandleFunc("PUT /api/categories/{id}", ch.Update)
	mux.HandleFunc("DELETE /api/categories/{id}", ch.Delete)
	mux.HandleFunc("POST /api/trackers", th.Create)
	mux.HandleFunc("GET /api/trackers", th.List)
	mux.HandleFunc("GET /api/trackers/visible", th.Visible)
	mux.HandleFunc("GET /api/trackers/{id}", th.Get)
	mux.HandleFunc("PUT /api/trackers/{id}", th.Update)
	mux.HandleFunc("DELETE /api/trackers/{id}", th.Delete)
	mux.HandleFunc("POST /api/trackers/{id}/toggle", rh.Toggle)
	mux.HandleFunc("GET /api/trackers/{id}/records", rh.ListByTracker)
	mux.HandleFunc("GET /api/records", rh.List)
	mux.HandleFunc("GET /api/statistics", sh.Get)
	return mux
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func createTestTracker(t *testing.T, mux *http.ServeMux, name string, sched []int, categoryID *int64) model.Tracker {
	t.Helper()
	w := doJSON(t, mux, "POST", "/api/trackers", map[string]any{
		"name":        name,
		"emoji":       "✅",
		"color":       "#fd4c49",
		"schedule":    sched,
		"category_id": categoryID,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create tracker %q: status %d, body %s", name, w.Code, w.Body)
	}
	return decodeBody[model.Tracker](t, w)
}

func TestCategoryCreateIdempotent(t *testing.T) {
	mux := setupTestAPI(t)

	first := doJSON(t, mux, "POST", "/api/categories", map[string]string{"title": "Health"})
	if first.Code != http.StatusCreated {
		t.Fatalf("create: status %d, body %s", first.Code, first.Body)
	}
	a := decodeBody[model.TrackerCategory](t, first)

	second := doJSON(t, mux, "POST", "/api/categories", map[string]string{"title": "Health"})
	if second.Code != http.StatusCreated {
		t.Fatalf("repeat create: status %d", second.Code)
	}
	b := decodeBody[model.TrackerCategory](t, second)
	if a.ID != b.ID {
		t.Errorf("repeat create returned id %d, want existing %d", b.ID, a.ID)
	}

	list := doJSON(t, mux, "GET", "/api/categories", nil)
	cats := decodeBody[[]model.TrackerCategory](t, list)
	if len(cats) != 1 {
		t.Errorf("category count = %d, want 1", len(cats))
	}
}

func TestCategoryEmptyTitleRejected(t *testing.T) {
	mux := setupTestAPI(t)
	w := doJSON(t, mux, "POST", "/api/categories", map[string]string{"title": "   "})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestCategoryUpdateAndDelete(t *testing.T) {
	mux := setupTestAPI(t)
	created := decodeBody[model.TrackerCategory](t,
		doJSON(t, mux, "POST", "/api/categories", map[string]string{"title": "Work"}))

	w := doJSON(t, mux, "PUT", fmt.Sprintf("/api/categories/%d", created.ID), map[string]string{"title": "Office"})
	if w.Code != http.StatusOK {
		t.Fatalf("update: status %d, body %s", w.Code, w.Body)
	}
	if got := decodeBody[model.TrackerCategory](t, w); got.Title != "Office" {
		t.Errorf("title = %q, want Office", got.Title)
	}

	if w := doJSON(t, mux, "DELETE", fmt.Sprintf("/api/categories/%d", created.ID), nil); w.Code != http.StatusNoContent {
		t.Errorf("delete: status %d", w.Code)
	}
	if w := doJSON(t, mux, "DELETE", fmt.Sprintf("/api/categories/%d", created.ID), nil); w.Code != http.StatusNotFound {
		t.Errorf("delete missing: status %d, want 404", w.Code)
	}
}

func TestTrackerCreateValidation(t *testing.T) {
	mux := setupTestAPI(t)

	w := doJSON(t, mux, "POST", "/api/trackers", map[string]any{"name": "  ", "color": "#000000"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty name: status %d, want 400", w.Code)
	}

	w = doJSON(t, mux, "POST", "/api/trackers", map[string]any{
		"name": "Run", "color": "#000000", "schedule": []int{0, 8},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad schedule: status %d, want 400", w.Code)
	}

	missing := int64(9999)
	w = doJSON(t, mux, "POST", "/api/trackers", map[string]any{
		"name": "Run", "color": "#000000", "category_id": &missing,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing category: status %d, want 400", w.Code)
	}
}

func TestTrackerCRUD(t *testing.T) {
	mux := setupTestAPI(t)
	created := createTestTracker(t, mux, "Morning run", []int{1, 3, 5}, nil)

	w := doJSON(t, mux, "GET", "/api/trackers/"+created.ID.String(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get: status %d", w.Code)
	}
	got := decodeBody[model.Tracker](t, w)
	if got.Name != "Morning run" || len(got.Schedule) != 3 {
		t.Errorf("get = %+v", got)
	}

	w = doJSON(t, mux, "PUT", "/api/trackers/"+created.ID.String(), map[string]any{
		"name": "Evening run", "emoji": "🏃", "color": "#1a2b3c", "schedule": []int{2},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update: status %d, body %s", w.Code, w.Body)
	}
	updated := decodeBody[model.Tracker](t, w)
	if updated.Name != "Evening run" || updated.ID != created.ID {
		t.Errorf("update = %+v", updated)
	}

	if w := doJSON(t, mux, "DELETE", "/api/trackers/"+created.ID.String(), nil); w.Code != http.StatusNoContent {
		t.Errorf("delete: status %d", w.Code)
	}
	if w := doJSON(t, mux, "GET", "/api/trackers/"+created.ID.String(), nil); w.Code != http.StatusNotFound {
		t.Errorf("get deleted: status %d, want 404", w.Code)
	}
}

func TestTrackerListEmptyIsArray(t *testing.T) {
	mux := setupTestAPI(t)
	w := doJSON(t, mux, "GET", "/api/trackers", nil)
	if body := w.Body.String(); body != "[]\n" {
		t.Errorf("empty list body = %q, want []", body)
	}
}

func TestToggleEndpoint(t *testing.T) {
	mux := setupTestAPI(t)
	tr := createTestTracker(t, mux, "Read", nil, nil)
	path := "/api/trackers/" + tr.ID.String() + "/toggle"

	w := doJSON(t, mux, "POST", path, map[string]string{"date": "2024-06-10"})
	if w.Code != http.StatusOK {
		t.Fatalf("toggle: status %d, body %s", w.Code, w.Body)
	}
	resp := decodeBody[toggleResponse](t, w)
	if !resp.Completed || resp.Count != 1 || resp.Day != "2024-06-10" {
		t.Errorf("toggle response = %+v", resp)
	}

	w = doJSON(t, mux, "POST", path, map[string]string{"date": "2024-06-10"})
	resp = decodeBody[toggleResponse](t, w)
	if resp.Completed || resp.Count != 0 {
		t.Errorf("second toggle response = %+v, want uncompleted", resp)
	}
}

func TestToggleFutureDayRejected(t *testing.T) {
	mux := setupTestAPI(t)
	tr := createTestTracker(t, mux, "Read", nil, nil)

	w := doJSON(t, mux, "POST", "/api/trackers/"+tr.ID.String()+"/toggle",
		map[string]string{"date": "2024-06-16"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("future toggle: status %d, want 400", w.Code)
	}

	w = doJSON(t, mux, "GET", "/api/trackers/"+tr.ID.String()+"/records", nil)
	if records := decodeBody[[]model.TrackerRecord](t, w); len(records) != 0 {
		t.Errorf("rejected toggle left records: %v", records)
	}
}

func TestToggleMissingTracker(t *testing.T) {
	mux := setupTestAPI(t)
	w := doJSON(t, mux, "POST", "/api/trackers/6b1e2c3d-0000-4000-8000-000000000001/toggle",
		map[string]string{"date": "2024-06-10"})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestVisibleEndpoint(t *testing.T) {
	mux := setupTestAPI(t)
	cat := decodeBody[model.TrackerCategory](t,
		doJSON(t, mux, "POST", "/api/categories", map[string]string{"title": "Health"}))

	// 2024-06-10 is a Monday.
	mondayOnly := createTestTracker(t, mux, "Morning run", []int{1}, &cat.ID)
	irregular := createTestTracker(t, mux, "Dentist", nil, nil)

	w := doJSON(t, mux, "GET", "/api/trackers/visible?date=2024-06-10", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("visible: status %d, body %s", w.Code, w.Body)
	}
	resp := decodeBody[visibleResponse](t, w)
	if len(resp.Categories) != 2 {
		t.Fatalf("monday sections = %d, want 2 (pinned + Health)", len(resp.Categories))
	}
	if resp.Categories[0].Title != store.PinnedTitle {
		t.Errorf("first section = %q, want pinned", resp.Categories[0].Title)
	}
	if !resp.AnyDue {
		t.Error("expected any_due on monday")
	}

	// Tuesday drops the scheduled tracker but keeps the irregular one.
	resp = decodeBody[visibleResponse](t,
		doJSON(t, mux, "GET", "/api/trackers/visible?date=2024-06-11", nil))
	for _, section := range resp.Categories {
		for _, tr := range section.Trackers {
			if tr.ID == mondayOnly.ID {
				t.Error("monday-only tracker visible on tuesday")
			}
		}
	}
	found := false
	for _, section := range resp.Categories {
		for _, tr := range section.Trackers {
			if tr.ID == irregular.ID {
				found = true
			}
		}
	}
	if !found {
		t.Error("irregular tracker should be visible every day")
	}

	// Search narrows by case-insensitive substring.
	resp = decodeBody[visibleResponse](t,
		doJSON(t, mux, "GET", "/api/trackers/visible?date=2024-06-10&search=RUN", nil))
	total := 0
	for _, section := range resp.Categories {
		total += len(section.Trackers)
	}
	if total != 1 {
		t.Errorf("search matches = %d, want 1", total)
	}

	// Completion filter consults the records.
	doJSON(t, mux, "POST", "/api/trackers/"+mondayOnly.ID.String()+"/toggle",
		map[string]string{"date": "2024-06-10"})
	resp = decodeBody[visibleResponse](t,
		doJSON(t, mux, "GET", "/api/trackers/visible?date=2024-06-10&filter=completed", nil))
	total = 0
	for _, section := range resp.Categories {
		for _, tr := range section.Trackers {
			if tr.ID != mondayOnly.ID {
				t.Errorf("completed filter leaked tracker %s", tr.Name)
			}
			total++
		}
	}
	if total != 1 {
		t.Errorf("completed matches = %d, want 1", total)
	}

	if w := doJSON(t, mux, "GET", "/api/trackers/visible?filter=bogus", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bogus filter: status %d, want 400", w.Code)
	}
	if w := doJSON(t, mux, "GET", "/api/trackers/visible?date=June+10", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bogus date: status %d, want 400", w.Code)
	}
}

func TestStatisticsEndpoint(t *testing.T) {
	mux := setupTestAPI(t)
	tr := createTestTracker(t, mux, "Read", nil, nil)

	for _, day := range []string{"2024-06-01", "2024-06-02", "2024-06-03"} {
		w := doJSON(t, mux, "POST", "/api/trackers/"+tr.ID.String()+"/toggle",
			map[string]string{"date": day})
		if w.Code != http.StatusOK {
			t.Fatalf("toggle %s: status %d", day, w.Code)
		}
	}

	w := doJSON(t, mux, "GET", "/api/statistics", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("statistics: status %d", w.Code)
	}
	got := decodeBody[map[string]float64](t, w)
	if got["best_streak"] != 3 {
		t.Errorf("best_streak = %v, want 3", got["best_streak"])
	}
	if got["total_completions"] != 3 {
		t.Errorf("total_completions = %v, want 3", got["total_completions"])
	}
	if got["perfect_days"] != 3 {
		t.Errorf("perfect_days = %v, want 3", got["perfect_days"])
	}
	if got["average_per_active_day"] != 1 {
		t.Errorf("average_per_active_day = %v, want 1", got["average_per_active_day"])
	}
}
