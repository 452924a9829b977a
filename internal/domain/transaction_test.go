package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func validTx(typ TransactionType) Transaction {
	tx := Transaction{
		ID:         "tx-1",
		Amount:     decimal.NewFromInt(250),
		Type:       typ,
		Label:      "test",
		OccurredAt: time.Now(),
		CreatedAt:  time.Now(),
	}
	switch typ {
	case TxCotisation:
		tx.UserID = "r1"
	case TxPaiement:
		tx.UserID = "r1"
		tx.PaymentMethod = PayCash
	case TxDepense:
		tx.Provider = "EDF"
		tx.Category = "electricity"
	}
	return tx
}

// ─── Validation Tests ───────────────────────────────────────────────────────

func TestTransactionValidate_OK(t *testing.T) {
	for _, typ := range []TransactionType{TxCotisation, TxPaiement, TxDepense} {
		if err := validTx(typ).Validate(); err != nil {
			t.Errorf("Validate(%s) error: %v", typ, err)
		}
	}
}

func TestTransactionValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Transaction)
	}{
		{"missing id", func(tx *Transaction) { tx.ID = "" }},
		{"zero amount", func(tx *Transaction) { tx.Amount = decimal.Zero }},
		{"negative amount", func(tx *Transaction) { tx.Amount = decimal.NewFromInt(-5) }},
		{"unknown type", func(tx *Transaction) { tx.Type = "VIREMENT" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validTx(TxPaiement)
			tt.mutate(&tx)
			err := tx.Validate()
			if err == nil {
				t.Fatal("Validate() should reject")
			}
			if !IsValidation(err) {
				t.Errorf("error %v should be a ValidationError", err)
			}
		})
	}
}

func TestTransactionValidate_PerTypeFields(t *testing.T) {
	// Cotisation and paiement need a resident.
	tx := validTx(TxCotisation)
	tx.UserID = ""
	if tx.Validate() == nil {
		t.Error("cotisation without resident should be rejected")
	}

	tx = validTx(TxPaiement)
	tx.PaymentMethod = ""
	if tx.Validate() == nil {
		t.Error("paiement without payment method should be rejected")
	}

	// Depense is global: resident must be absent, provider+category required.
	tx = validTx(TxDepense)
	tx.UserID = "r1"
	if tx.Validate() == nil {
		t.Error("depense with a resident should be rejected")
	}
	tx = validTx(TxDepense)
	tx.Provider = ""
	if tx.Validate() == nil {
		t.Error("depense without provider should be rejected")
	}
	tx = validTx(TxDepense)
	tx.Category = ""
	if tx.Validate() == nil {
		t.Error("depense without category should be rejected")
	}
}

func TestTransactionValidate_ChargeMonth(t *testing.T) {
	tx := validTx(TxCotisation)
	tx.ChargeMonth = "2026-08"
	if err := tx.Validate(); err != nil {
		t.Errorf("slotted cotisation rejected: %v", err)
	}

	tx = validTx(TxCotisation)
	tx.ChargeMonth = "August 2026"
	if tx.Validate() == nil {
		t.Error("malformed charge month should be rejected")
	}

	tx = validTx(TxPaiement)
	tx.ChargeMonth = "2026-08"
	if tx.Validate() == nil {
		t.Error("charge month on a paiement should be rejected")
	}
}

// ─── Month Bounds ───────────────────────────────────────────────────────────

func TestMonthBounds(t *testing.T) {
	ref := time.Date(2026, time.February, 17, 13, 45, 0, 0, time.UTC)
	start, end := MonthBounds(ref)

	wantStart := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	if !start.Equal(wantStart) {
		t.Errorf("start = %v, want %v", start, wantStart)
	}
	if end.Month() != time.February || end.Day() != 28 {
		t.Errorf("end = %v, want last instant of February", end)
	}
	if !end.Before(wantStart.AddDate(0, 1, 0)) {
		t.Error("end must be strictly inside the month")
	}
}
