package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/syndic-app/syndic/internal/domain"
)

// ─── Live Balance Feeds ─────────────────────────────────────────────────────
// SSE instead of WebSocket: simpler, and HTTP/2 friendly. Each event is
// `data: {"balance":"<decimal>"}`. The stream opens with the current value
// and pushes a fresh one after every ledger mutation.

// handleGlobalBalanceLive streams the global balance.
// GET /api/balance/live
func (s *Server) handleGlobalBalanceLive(w http.ResponseWriter, r *http.Request) {
	s.serveBalanceStream(w, r, s.engine.WatchGlobalBalance(r.Context()))
}

// handleUserBalanceLive streams one resident's balance.
// GET /api/residents/{id}/balance/live
func (s *Server) handleUserBalanceLive(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.db.GetResident(id); errors.Is(err, domain.ErrResidentNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.serveBalanceStream(w, r, s.engine.WatchUserBalance(r.Context(), id))
}

func (s *Server) serveBalanceStream(w http.ResponseWriter, r *http.Request, stream <-chan decimal.Decimal) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case balance, ok := <-stream:
			if !ok {
				return
			}
			w.Write([]byte(`data: {"balance":"` + balance.String() + `"}` + "\n\n"))
			flusher.Flush()
		}
	}
}
