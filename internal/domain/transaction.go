// Package domain contains pure business types with ZERO infrastructure imports.
// This is the innermost ring of the application — it depends on nothing.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Transaction Types ──────────────────────────────────────────────────────

// TransactionType classifies a ledger entry.
type TransactionType string

const (
	// TxCotisation is a charge owed by a resident (receivable).
	// It never moves cash and never affects the global balance.
	TxCotisation TransactionType = "COTISATION"
	// TxPaiement is cash received from a resident.
	TxPaiement TransactionType = "PAIEMENT"
	// TxDepense is cash paid out for an association-level expense.
	TxDepense TransactionType = "DEPENSE"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TxCotisation, TxPaiement, TxDepense:
		return true
	}
	return false
}

// PaymentMethod records how a PAIEMENT was received.
type PaymentMethod string

const (
	PayCash     PaymentMethod = "CASH"
	PayCheque   PaymentMethod = "CHEQUE"
	PayTransfer PaymentMethod = "TRANSFER"
	PayCard     PaymentMethod = "CARD"
	PayOther    PaymentMethod = "OTHER"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PayCash, PayCheque, PayTransfer, PayCard, PayOther:
		return true
	}
	return false
}

// ─── Transaction ────────────────────────────────────────────────────────────

// Transaction is one row of the append-only ledger. Once appended it is
// never mutated or deleted; corrections are offsetting entries.
// Amount is always a positive magnitude — direction is implied by Type.
type Transaction struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id,omitempty"` // required for COTISATION/PAIEMENT, empty for DEPENSE
	Amount        decimal.Decimal `json:"amount"`
	Type          TransactionType `json:"type"`
	Label         string          `json:"label"`
	PaymentMethod PaymentMethod   `json:"payment_method,omitempty"` // PAIEMENT only
	Provider      string          `json:"provider,omitempty"`       // DEPENSE only
	Category      string          `json:"category,omitempty"`       // DEPENSE only
	ChargeMonth   string          `json:"charge_month,omitempty"`   // recurring-charge slot, "2006-01"; empty for manual entries
	OccurredAt    time.Time       `json:"occurred_at"` // may be backdated (legacy balances)
	CreatedAt     time.Time       `json:"created_at"`  // insertion time, always "now"
}

// Validate checks the per-type required fields before any write.
func (tx Transaction) Validate() error {
	if tx.ID == "" {
		return ErrValidation("transaction id is required")
	}
	if !tx.Type.Valid() {
		return ErrValidation("unknown transaction type")
	}
	if !tx.Amount.IsPositive() {
		return ErrValidation("amount must be positive")
	}
	if tx.ChargeMonth != "" {
		if tx.Type != TxCotisation {
			return ErrValidation("charge month applies only to cotisations")
		}
		if _, err := time.Parse("2006-01", tx.ChargeMonth); err != nil {
			return ErrValidation("charge month must be formatted YYYY-MM")
		}
	}
	switch tx.Type {
	case TxCotisation:
		if tx.UserID == "" {
			return ErrValidation("cotisation requires a resident")
		}
	case TxPaiement:
		if tx.UserID == "" {
			return ErrValidation("paiement requires a resident")
		}
		if !tx.PaymentMethod.Valid() {
			return ErrValidation("paiement requires a payment method")
		}
	case TxDepense:
		if tx.UserID != "" {
			return ErrValidation("depense is global, resident must be absent")
		}
		if tx.Provider == "" {
			return ErrValidation("depense requires a provider")
		}
		if tx.Category == "" {
			return ErrValidation("depense requires a category")
		}
	}
	return nil
}

// ─── Ledger Queries ─────────────────────────────────────────────────────────

// TxFilter selects a subset of the ledger. Zero-valued fields match everything.
type TxFilter struct {
	UserID string
	Type   TransactionType
	From   time.Time // inclusive
	To     time.Time // inclusive
}

// MonthBounds returns the first and last instant of ref's calendar month.
func MonthBounds(ref time.Time) (start, end time.Time) {
	start = time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	end = start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end
}
