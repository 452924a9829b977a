package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/syndic-app/syndic/internal/domain"
)

// ─── Transactions ───────────────────────────────────────────────────────────

// handleAppendTransaction appends one ledger entry.
// POST /api/transactions
func (s *Server) handleAppendTransaction(w http.ResponseWriter, r *http.Request) {
	var tx domain.Transaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	now := time.Now()
	if tx.OccurredAt.IsZero() {
		tx.OccurredAt = now
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = now
	}

	err := s.reconciler.RecordLocally(r.Context(), tx)
	switch {
	case domain.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, domain.ErrDuplicateCharge):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		s.log.Error().Err(err).Msg("append transaction")
		writeError(w, http.StatusInternalServerError, "could not record transaction")
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

// handleListTransactions returns the filtered ledger.
// GET /api/transactions?user_id=&type=&from=&to=
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := parseTxFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	txs, err := s.db.ListTransactions(filter)
	if err != nil {
		s.log.Error().Err(err).Msg("list transactions")
		writeError(w, http.StatusInternalServerError, "could not list transactions")
		return
	}
	if txs == nil {
		txs = []domain.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

// handleGetTransaction returns one transaction.
// GET /api/transactions/{id}
func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.db.GetTransaction(chi.URLParam(r, "id"))
	if errors.Is(err, domain.ErrTransactionNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.log.Error().Err(err).Msg("get transaction")
		writeError(w, http.StatusInternalServerError, "could not load transaction")
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func parseTxFilter(r *http.Request) (domain.TxFilter, error) {
	q := r.URL.Query()
	filter := domain.TxFilter{
		UserID: q.Get("user_id"),
		Type:   domain.TransactionType(q.Get("type")),
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return domain.TxFilter{}, errors.New("unknown transaction type " + string(filter.Type))
	}
	if raw := q.Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return domain.TxFilter{}, errors.New("from: expected RFC 3339 timestamp")
		}
		filter.From = t
	}
	if raw := q.Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return domain.TxFilter{}, errors.New("to: expected RFC 3339 timestamp")
		}
		filter.To = t
	}
	return filter, nil
}

// ─── Balances and Metrics ───────────────────────────────────────────────────

// handleGlobalBalance returns the cash position.
// GET /api/balance
func (s *Server) handleGlobalBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := s.engine.GlobalBalance(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("global balance")
		writeError(w, http.StatusInternalServerError, "could not compute balance")
		return
	}
	writeJSON(w, http.StatusOK, map[string]decimal.Decimal{"balance": balance})
}

// handleUserBalance returns one resident's balance.
// GET /api/residents/{id}/balance
func (s *Server) handleUserBalance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.db.GetResident(id); errors.Is(err, domain.ErrResidentNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	balance, err := s.engine.UserBalance(r.Context(), id)
	if err != nil {
		s.log.Error().Err(err).Msg("user balance")
		writeError(w, http.StatusInternalServerError, "could not compute balance")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user_id": id, "balance": balance})
}

// handleRunway returns months of cash left at the current burn rate.
// GET /api/metrics/runway
func (s *Server) handleRunway(w http.ResponseWriter, r *http.Request) {
	runway, err := s.engine.Runway(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("runway")
		writeError(w, http.StatusInternalServerError, "could not compute runway")
		return
	}
	writeJSON(w, http.StatusOK, runway)
}

// handleRecoveryRate returns the cotisation collection percentage.
// GET /api/metrics/recovery
func (s *Server) handleRecoveryRate(w http.ResponseWriter, r *http.Request) {
	rate, err := s.engine.RecoveryRate(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("recovery rate")
		writeError(w, http.StatusInternalServerError, "could not compute recovery rate")
		return
	}
	writeJSON(w, http.StatusOK, map[string]decimal.Decimal{"recovery_rate": rate})
}

// ─── Residents ──────────────────────────────────────────────────────────────

// handleSaveResident creates or replaces a resident. An optional raw "pin"
// field is hashed before storage and never echoed back.
// POST /api/residents
func (s *Server) handleSaveResident(w http.ResponseWriter, r *http.Request) {
	var req struct {
		domain.Resident
		PIN string `json:"pin,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	resident := req.Resident
	if resident.ID == "" {
		resident.ID = uuid.New().String()
	}
	if !resident.Role.Valid() {
		writeError(w, http.StatusBadRequest, "unknown role "+string(resident.Role))
		return
	}
	if req.PIN != "" {
		resident.PinHash = domain.HashPIN(req.PIN)
	} else if prev, err := s.db.GetResident(resident.ID); err == nil {
		// No new PIN supplied: a replacement keeps the stored credential.
		resident.PinHash = prev.PinHash
	}
	now := time.Now()
	if resident.CreatedAt.IsZero() {
		resident.CreatedAt = now
	}
	resident.UpdatedAt = now

	if err := s.reconciler.SaveResident(r.Context(), resident); err != nil {
		s.log.Error().Err(err).Msg("save resident")
		writeError(w, http.StatusInternalServerError, "could not save resident")
		return
	}
	writeJSON(w, http.StatusCreated, resident)
}

// handleListResidents lists residents, optionally by role.
// GET /api/residents?role=
func (s *Server) handleListResidents(w http.ResponseWriter, r *http.Request) {
	role := domain.Role(r.URL.Query().Get("role"))
	if role != "" && !role.Valid() {
		writeError(w, http.StatusBadRequest, "unknown role "+string(role))
		return
	}
	residents, err := s.db.ListResidents(role)
	if err != nil {
		s.log.Error().Err(err).Msg("list residents")
		writeError(w, http.StatusInternalServerError, "could not list residents")
		return
	}
	if residents == nil {
		residents = []domain.Resident{}
	}
	writeJSON(w, http.StatusOK, residents)
}

// handleGetResident returns one resident.
// GET /api/residents/{id}
func (s *Server) handleGetResident(w http.ResponseWriter, r *http.Request) {
	resident, err := s.db.GetResident(chi.URLParam(r, "id"))
	if errors.Is(err, domain.ErrResidentNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.log.Error().Err(err).Msg("get resident")
		writeError(w, http.StatusInternalServerError, "could not load resident")
		return
	}
	writeJSON(w, http.StatusOK, resident)
}

// handleResidentStatus returns the tricolor label for one resident.
// GET /api/residents/{id}/status
func (s *Server) handleResidentStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	color, err := s.engine.Classify(r.Context(), id)
	switch {
	case errors.Is(err, domain.ErrResidentNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, domain.ErrConfigNotFound):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		s.log.Error().Err(err).Msg("resident status")
		writeError(w, http.StatusInternalServerError, "could not classify resident")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user_id": id, "color": color})
}

// handleMatrix returns the full tricolor matrix.
// GET /api/residents/matrix
func (s *Server) handleMatrix(w http.ResponseWriter, r *http.Request) {
	matrix, err := s.engine.Matrix(r.Context())
	if errors.Is(err, domain.ErrConfigNotFound) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		s.log.Error().Err(err).Msg("matrix")
		writeError(w, http.StatusInternalServerError, "could not build matrix")
		return
	}
	writeJSON(w, http.StatusOK, matrix)
}

// ─── Charges ────────────────────────────────────────────────────────────────

// handleGenerateCharges runs the monthly charge generator. Month defaults
// to the current one, amount to the configured monthly fee.
// POST /api/charges/generate
func (s *Server) handleGenerateCharges(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Month  string          `json:"month,omitempty"` // "2006-01"
		Amount decimal.Decimal `json:"amount,omitempty"`
		Label  string          `json:"label,omitempty"`
	}
	// An empty body runs with all defaults.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	ref := time.Now()
	if req.Month != "" {
		t, err := time.Parse("2006-01", req.Month)
		if err != nil {
			writeError(w, http.StatusBadRequest, "month: expected YYYY-MM")
			return
		}
		ref = t
	}
	if !req.Amount.IsPositive() {
		cfg, err := s.db.GetConfig()
		if errors.Is(err, domain.ErrConfigNotFound) {
			writeError(w, http.StatusConflict, "no amount given and residence config not initialized")
			return
		}
		if err != nil {
			s.log.Error().Err(err).Msg("load config for charges")
			writeError(w, http.StatusInternalServerError, "could not load config")
			return
		}
		req.Amount = cfg.MonthlyFee
	}
	if req.Label == "" {
		req.Label = "Cotisation " + ref.Format("2006-01")
	}

	created, err := s.generator.GenerateMonthlyCharges(r.Context(), ref, req.Amount, req.Label)
	if domain.IsValidation(err) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.log.Error().Err(err).Msg("generate charges")
		writeError(w, http.StatusInternalServerError, "charge run failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"month":   ref.Format("2006-01"),
		"amount":  req.Amount,
		"created": created,
	})
}

// ─── Config ─────────────────────────────────────────────────────────────────

// handleGetConfig returns the residence config (PIN hashes excluded).
// GET /api/config
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.db.GetConfig()
	if errors.Is(err, domain.ErrConfigNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.log.Error().Err(err).Msg("get config")
		writeError(w, http.StatusInternalServerError, "could not load config")
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// handleSaveConfig replaces the residence config. Raw PIN fields are
// hashed; an omitted PIN keeps the stored credential.
// PUT /api/config
func (s *Server) handleSaveConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		domain.ResidenceConfig
		MasterPIN    string `json:"master_pin,omitempty"`
		SyndicPIN    string `json:"syndic_pin,omitempty"`
		ConciergePIN string `json:"concierge_pin,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	cfg := req.ResidenceConfig
	cfg.ID = domain.ConfigID
	// A local edit is a fresh revision: the store stamps UpdatedAt itself.
	cfg.UpdatedAt = time.Time{}
	if cfg.MonthlyFee.IsNegative() {
		writeError(w, http.StatusBadRequest, "monthly_fee must not be negative")
		return
	}

	prev, err := s.db.GetConfig()
	if err != nil && !errors.Is(err, domain.ErrConfigNotFound) {
		s.log.Error().Err(err).Msg("load previous config")
		writeError(w, http.StatusInternalServerError, "could not load config")
		return
	}
	cfg.MasterPinHash = pinOrPrevious(req.MasterPIN, prev, func(c *domain.ResidenceConfig) string { return c.MasterPinHash })
	cfg.SyndicPinHash = pinOrPrevious(req.SyndicPIN, prev, func(c *domain.ResidenceConfig) string { return c.SyndicPinHash })
	cfg.ConciergePinHash = pinOrPrevious(req.ConciergePIN, prev, func(c *domain.ResidenceConfig) string { return c.ConciergePinHash })

	if err := s.reconciler.SaveConfig(r.Context(), cfg); err != nil {
		s.log.Error().Err(err).Msg("save config")
		writeError(w, http.StatusInternalServerError, "could not save config")
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func pinOrPrevious(raw string, prev *domain.ResidenceConfig, hash func(*domain.ResidenceConfig) string) string {
	if raw != "" {
		return domain.HashPIN(raw)
	}
	if prev != nil {
		return hash(prev)
	}
	return ""
}

// ─── Auth ───────────────────────────────────────────────────────────────────

// handleValidatePIN checks a PIN against a stored credential: either one
// of the residence scopes or a resident's personal PIN. The response only
// says whether the PIN matched — it never reveals which digests are set.
// POST /api/auth/validate
func (s *Server) handleValidatePIN(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PIN    string `json:"pin"`
		Scope  string `json:"scope,omitempty"` // master, syndic, concierge
		UserID string `json:"user_id,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	var stored string
	switch {
	case req.UserID != "":
		resident, err := s.db.GetResident(req.UserID)
		if errors.Is(err, domain.ErrResidentNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		if err != nil {
			s.log.Error().Err(err).Msg("load resident for auth")
			writeError(w, http.StatusInternalServerError, "could not validate pin")
			return
		}
		stored = resident.PinHash
	case req.Scope != "":
		cfg, err := s.db.GetConfig()
		if errors.Is(err, domain.ErrConfigNotFound) {
			writeJSON(w, http.StatusOK, map[string]bool{"valid": false})
			return
		}
		if err != nil {
			s.log.Error().Err(err).Msg("load config for auth")
			writeError(w, http.StatusInternalServerError, "could not validate pin")
			return
		}
		switch req.Scope {
		case "master":
			stored = cfg.MasterPinHash
		case "syndic":
			stored = cfg.SyndicPinHash
		case "concierge":
			stored = cfg.ConciergePinHash
		default:
			writeError(w, http.StatusBadRequest, "unknown scope "+req.Scope)
			return
		}
	default:
		writeError(w, http.StatusBadRequest, "scope or user_id required")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"valid": domain.ValidatePIN(req.PIN, stored)})
}

// ─── Sync ───────────────────────────────────────────────────────────────────

// handleSyncPull merges the full remote dataset into the local store.
// POST /api/sync/pull
func (s *Server) handleSyncPull(w http.ResponseWriter, r *http.Request) {
	err := s.reconciler.PullAll(r.Context())
	switch {
	case errors.Is(err, domain.ErrSyncInFlight):
		writeError(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, domain.ErrRemoteUnavailable):
		writeError(w, http.StatusBadGateway, err.Error())
		return
	case err != nil:
		s.log.Error().Err(err).Msg("sync pull")
		writeError(w, http.StatusInternalServerError, "pull failed")
		return
	}
	writeJSON(w, http.StatusOK, s.reconciler.Status())
}

// handleSyncPush drains the due outbox jobs once.
// POST /api/sync/push
func (s *Server) handleSyncPush(w http.ResponseWriter, r *http.Request) {
	delivered, err := s.reconciler.ProcessOutbox(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("sync push")
		writeError(w, http.StatusInternalServerError, "push failed")
		return
	}
	status := s.reconciler.Status()
	writeJSON(w, http.StatusOK, map[string]any{
		"delivered": delivered,
		"pending":   status.Pending,
	})
}

// handleSyncStatus reports the reconciler state.
// GET /api/sync/status
func (s *Server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.reconciler.Status())
}
