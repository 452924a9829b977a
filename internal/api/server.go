// Package api exposes the residence finance engine over HTTP. Every route
// reads from or writes through the local store; nothing here waits on the
// remote mirror.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/syndic-app/syndic/internal/app/finance"
	"github.com/syndic-app/syndic/internal/app/sync"
	"github.com/syndic-app/syndic/internal/infra/sqlite"
)

// Server is the syndic HTTP API server.
type Server struct {
	db             *sqlite.DB
	engine         *finance.Engine
	generator      *finance.Generator
	reconciler     *sync.Reconciler
	log            zerolog.Logger
	metricsEnabled bool
}

// NewServer creates the API server.
func NewServer(db *sqlite.DB, engine *finance.Engine, generator *finance.Generator, reconciler *sync.Reconciler, log zerolog.Logger) *Server {
	return &Server{
		db:         db,
		engine:     engine,
		generator:  generator,
		reconciler: reconciler,
		log:        log,
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Minute))
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/transactions", s.handleAppendTransaction)
		r.Get("/transactions", s.handleListTransactions)
		r.Get("/transactions/{id}", s.handleGetTransaction)

		r.Get("/balance", s.handleGlobalBalance)
		r.Get("/balance/live", s.handleGlobalBalanceLive)

		r.Get("/metrics/runway", s.handleRunway)
		r.Get("/metrics/recovery", s.handleRecoveryRate)

		r.Post("/residents", s.handleSaveResident)
		r.Get("/residents", s.handleListResidents)
		r.Get("/residents/matrix", s.handleMatrix)
		r.Get("/residents/{id}", s.handleGetResident)
		r.Get("/residents/{id}/balance", s.handleUserBalance)
		r.Get("/residents/{id}/balance/live", s.handleUserBalanceLive)
		r.Get("/residents/{id}/status", s.handleResidentStatus)

		r.Post("/charges/generate", s.handleGenerateCharges)

		r.Get("/config", s.handleGetConfig)
		r.Put("/config", s.handleSaveConfig)

		r.Post("/auth/validate", s.handleValidatePIN)

		r.Post("/sync/pull", s.handleSyncPull)
		r.Post("/sync/push", s.handleSyncPush)
		r.Get("/sync/status", s.handleSyncStatus)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// corsMiddleware adds CORS headers for local development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
