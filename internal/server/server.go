package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/avolkova/tracker/internal/handler"
	"github.com/avolkova/tracker/internal/middleware"
	"github.com/avolkova/tracker/internal/store"
	ws "github.com/avolkova/tracker/internal/websocket"
)

type Server struct {
	db          *sql.DB
	hub         *ws.Hub
	categoryH   *handler.CategoryHandler
	trackerH    *handler.TrackerHandler
	recordH     *handler.RecordHandler
	statsH      *handler.StatsHandler
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(db *sql.DB, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	categoryStore := store.NewCategoryStore(db)
	trackerStore := store.NewTrackerStore(db)
	recordStore := store.NewRecordStore(db)

	return &Server{
		db:          db,
		hub:         hub,
		categoryH:   handler.NewCategoryHandler(categoryStore, hub, logger.With("component", "category")),
		trackerH:    handler.NewTrackerHandler(trackerStore, categoryStore, recordStore, hub, logger.With("component", "tracker")),
		recordH:     handler.NewRecordHandler(recordStore, trackerStore, hub, logger.With("component", "record")),
		statsH:      handler.NewStatsHandler(trackerStore, recordStore, logger.With("component", "stats")),
		rateLimiter: middleware.NewRateLimiter(),
		logger:      logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	// Category API routes
	mux.HandleFunc("POST /api/categories", s.rateLimitedHandler(s.categoryH.Create))
	mux.HandleFunc("GET /api/categories", s.categoryH.List)
	mux.HandleFunc("PUT /api/categories/{id}", s.rateLimitedHandler(s.categoryH.Update))
	mux.HandleFunc("DELETE /api/categories/{id}", s.rateLimitedHandler(s.categoryH.Delete))

	// Tracker API routes. The literal /visible segment outranks the {id}
	// wildcard in mux precedence.
	mux.HandleFunc("POST /api/trackers", s.rateLimitedHandler(s.trackerH.Create))
	mux.HandleFunc("GET /api/trackers", s.trackerH.List)
	mux.HandleFunc("GET /api/trackers/visible", s.trackerH.Visible)
	mux.HandleFunc("GET /api/trackers/{id}", s.trackerH.Get)
	mux.HandleFunc("PUT /api/trackers/{id}", s.rateLimitedHandler(s.trackerH.Update))
	mux.HandleFunc("DELETE /api/trackers/{id}", s.rateLimitedHandler(s.trackerH.Delete))

	// Record API routes. Toggles happen at tap frequency; they share the same
	// per-IP window as the other mutations.
	mux.HandleFunc("POST /api/trackers/{id}/toggle", s.rateLimitedHandler(s.recordH.Toggle))
	mux.HandleFunc("GET /api/trackers/{id}/records", s.recordH.ListByTracker)
	mux.HandleFunc("GET /api/records", s.recordH.List)

	// Statistics
	mux.HandleFunc("GET /api/statistics", s.statsH.Get)

	// WebSocket change feed
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket")))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 60, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}
