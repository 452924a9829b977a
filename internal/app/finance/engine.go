// Package finance derives every financial metric from the ledger: global
// cash position, per-resident balance, cash runway, recovery rate, the
// tricolor resident matrix, and the idempotent monthly charge run.
//
// All computations are pure read-derivations. Each metric folds a single
// ledger query so it never blends two different store snapshots.
package finance

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/syndic-app/syndic/internal/domain"
	"github.com/syndic-app/syndic/internal/infra/sqlite"
)

// runwayWindow is the trailing expense window used for the burn rate.
const runwayWindow = 90 * 24 * time.Hour

var three = decimal.NewFromInt(3)
var hundred = decimal.NewFromInt(100)

// Engine computes balances and metrics over the ledger store.
type Engine struct {
	db  *sqlite.DB
	hub *Hub
	log zerolog.Logger
	now func() time.Time
}

// New creates a balance engine. The hub re-publishes on every ledger
// mutation so watchers can recompute.
func New(db *sqlite.DB, hub *Hub, log zerolog.Logger) *Engine {
	return &Engine{db: db, hub: hub, log: log, now: time.Now}
}

// Hub returns the mutation hub writers must publish to.
func (e *Engine) Hub() *Hub { return e.hub }

// ─── Balances ───────────────────────────────────────────────────────────────

// GlobalBalance returns the cash position: Σ PAIEMENT − Σ DEPENSE.
// COTISATION entries are receivables, not cash movement, and never count.
func (e *Engine) GlobalBalance(ctx context.Context) (decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, err
	}
	txs, err := e.db.ListTransactions(domain.TxFilter{})
	if err != nil {
		return decimal.Zero, err
	}
	return globalBalanceOf(txs), nil
}

// UserBalance returns Σ(PAIEMENT, u) − Σ(COTISATION, u).
// Negative means the resident owes money.
func (e *Engine) UserBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, err
	}
	txs, err := e.db.ListTransactions(domain.TxFilter{UserID: userID})
	if err != nil {
		return decimal.Zero, err
	}
	balance := decimal.Zero
	for _, tx := range txs {
		switch tx.Type {
		case domain.TxPaiement:
			balance = balance.Add(tx.Amount)
		case domain.TxCotisation:
			balance = balance.Sub(tx.Amount)
		}
	}
	return balance, nil
}

func globalBalanceOf(txs []domain.Transaction) decimal.Decimal {
	balance := decimal.Zero
	for _, tx := range txs {
		switch tx.Type {
		case domain.TxPaiement:
			balance = balance.Add(tx.Amount)
		case domain.TxDepense:
			balance = balance.Sub(tx.Amount)
		}
	}
	return balance
}

// ─── Runway ─────────────────────────────────────────────────────────────────

// Runway is months of cash left at the current burn rate. Unbounded is set
// when no burn figure exists at all — there is no finite sentinel.
// Projected marks a runway computed from the configured fixed monthly
// costs rather than observed spending.
type Runway struct {
	Months    decimal.Decimal `json:"months"`
	Unbounded bool            `json:"unbounded"`
	Projected bool            `json:"projected,omitempty"`
}

// Runway divides the global balance by the monthly burn: the trailing
// 90-day DEPENSE total divided by 3. Both figures fold the same ledger
// read. A ledger with no trailing expenses falls back to the configured
// fixed monthly costs as the burn estimate. A negative balance with
// positive burn yields a negative runway — insolvency is reported, never
// clamped.
func (e *Engine) Runway(ctx context.Context) (Runway, error) {
	if err := ctx.Err(); err != nil {
		return Runway{}, err
	}
	txs, err := e.db.ListTransactions(domain.TxFilter{})
	if err != nil {
		return Runway{}, err
	}

	balance := globalBalanceOf(txs)
	cutoff := e.now().Add(-runwayWindow)
	spent := decimal.Zero
	for _, tx := range txs {
		if tx.Type == domain.TxDepense && !tx.OccurredAt.Before(cutoff) {
			spent = spent.Add(tx.Amount)
		}
	}
	burn := spent.Div(three)

	if burn.IsZero() {
		cfg, err := e.db.GetConfig()
		if err != nil && !errors.Is(err, domain.ErrConfigNotFound) {
			return Runway{}, err
		}
		if cfg != nil {
			if fixed := cfg.FixedMonthlyCosts(); fixed.IsPositive() {
				return Runway{Months: balance.DivRound(fixed, 4), Projected: true}, nil
			}
		}
		return Runway{Unbounded: true}, nil
	}
	return Runway{Months: balance.DivRound(burn, 4)}, nil
}

// ─── Recovery Rate ──────────────────────────────────────────────────────────

// RecoveryRate is the percentage of charged cotisations actually collected,
// clamped to [0, 100]. An empty charge book reports 100.
func (e *Engine) RecoveryRate(ctx context.Context) (decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, err
	}
	txs, err := e.db.ListTransactions(domain.TxFilter{})
	if err != nil {
		return decimal.Zero, err
	}

	totalDue, totalPaid := decimal.Zero, decimal.Zero
	for _, tx := range txs {
		switch tx.Type {
		case domain.TxCotisation:
			totalDue = totalDue.Add(tx.Amount)
		case domain.TxPaiement:
			totalPaid = totalPaid.Add(tx.Amount)
		}
	}

	if totalDue.IsZero() {
		return hundred, nil
	}
	rate := totalPaid.DivRound(totalDue, 4).Mul(hundred)
	if rate.LessThan(decimal.Zero) {
		return decimal.Zero, nil
	}
	if rate.GreaterThan(hundred) {
		return hundred, nil
	}
	return rate, nil
}

// ─── Monthly Charge Check ───────────────────────────────────────────────────

// HasChargeForMonth reports whether the resident already has a COTISATION
// inside the calendar month of ref (first to last instant, inclusive).
func (e *Engine) HasChargeForMonth(ctx context.Context, userID string, ref time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	start, end := domain.MonthBounds(ref)
	count, err := e.db.CountTransactions(domain.TxFilter{
		UserID: userID,
		Type:   domain.TxCotisation,
		From:   start,
		To:     end,
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
