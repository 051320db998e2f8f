// Package api serves the latest scraped data to the signage display: JSON
// endpoints for each record kind plus a websocket that tells connected
// displays when a fresh scrape has landed.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/fortuna/rinkside/internal/export"
	"github.com/fortuna/rinkside/internal/record"
)

// Snapshot is the full data set from the most recent successful scrape.
type Snapshot struct {
	Schedule  []record.ScheduleEntry   `json:"schedule"`
	Stats     []record.PlayerStatEntry `json:"stats"`
	Standings []record.StandingsEntry  `json:"standings"`
	Display   export.DisplayData       `json:"display"`
	UpdatedAt time.Time                `json:"updated_at"`
}

// HealthCheck pings one dependency for the health endpoint.
type HealthCheck func(ctx context.Context) error

// Server is the display HTTP server.
type Server struct {
	server *http.Server
	hub    *Hub
	checks map[string]HealthCheck

	mu   sync.RWMutex
	snap *Snapshot
}

// NewServer builds the server and its routes.
func NewServer(port string) *Server {
	s := &Server{hub: NewHub(), checks: map[string]HealthCheck{}}

	router := mux.NewRouter()
	router.Use(recoveryMiddleware)
	router.Use(loggingMiddleware)

	router.HandleFunc("/health", s.handleHealth).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/schedule", s.handleSchedule).Methods("GET")
	api.HandleFunc("/stats", s.handleStats).Methods("GET")
	api.HandleFunc("/standings", s.handleStandings).Methods("GET")
	api.HandleFunc("/display", s.handleDisplay).Methods("GET")

	router.HandleFunc("/ws", s.handleWebsocket)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: router,
	}
	return s
}

// AddHealthCheck registers a dependency check reported by /health. Must be
// called before Start.
func (s *Server) AddHealthCheck(name string, check HealthCheck) {
	s.checks[name] = check
}

// Start runs the hub and listens. Blocks until shutdown.
func (s *Server) Start() error {
	go s.hub.Run()
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// SetSnapshot swaps in fresh data and notifies every connected display.
func (s *Server) SetSnapshot(snap *Snapshot) {
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()

	event, err := json.Marshal(map[string]any{
		"type":       "refresh",
		"updated_at": snap.UpdatedAt,
	})
	if err != nil {
		log.Printf("api: encoding refresh event: %v", err)
		return
	}
	s.hub.Broadcast(event)
}

func (s *Server) snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot()
	status := map[string]any{
		"status":  "healthy",
		"clients": s.hub.ClientCount(),
	}
	if snap != nil {
		status["updated_at"] = snap.UpdatedAt
	}

	code := http.StatusOK
	if len(s.checks) > 0 {
		deps := make(map[string]string, len(s.checks))
		for name, check := range s.checks {
			if err := check(r.Context()); err != nil {
				deps[name] = err.Error()
				status["status"] = "degraded"
				code = http.StatusServiceUnavailable
				continue
			}
			deps[name] = "ok"
		}
		status["dependencies"] = deps
	}
	writeJSON(w, code, status)
}

func (s *Server) handleSchedule(w http.ResponseWriter, _ *http.Request) {
	snap := s.snapshot()
	if snap == nil {
		writeError(w, http.StatusServiceUnavailable, "no data scraped yet")
		return
	}
	writeJSON(w, http.StatusOK, snap.Schedule)
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	snap := s.snapshot()
	if snap == nil {
		writeError(w, http.StatusServiceUnavailable, "no data scraped yet")
		return
	}
	writeJSON(w, http.StatusOK, snap.Stats)
}

func (s *Server) handleStandings(w http.ResponseWriter, _ *http.Request) {
	snap := s.snapshot()
	if snap == nil {
		writeError(w, http.StatusServiceUnavailable, "no data scraped yet")
		return
	}
	writeJSON(w, http.StatusOK, snap.Standings)
}

func (s *Server) handleDisplay(w http.ResponseWriter, _ *http.Request) {
	snap := s.snapshot()
	if snap == nil {
		writeError(w, http.StatusServiceUnavailable, "no data scraped yet")
		return
	}
	writeJSON(w, http.StatusOK, snap.Display)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("api: %s %s (%v)", r.Method, r.URL.Path, time.Since(started).Round(time.Millisecond))
	})
}

func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("api: panic serving %s: %v", r.URL.Path, rec)
				writeError(w, http.StatusInternalServerError, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
