package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/syndic-app/syndic/internal/domain"
)

func TestUpsertTransaction_SendsWireFormat(t *testing.T) {
	var (
		gotPath   string
		gotMethod string
		gotKey    string
		gotBody   map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotMethod = r.URL.Path, r.Method
		gotKey = r.Header.Get("X-Api-Key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := New(srv.URL, "secret", zerolog.Nop())
	tx := domain.Transaction{
		ID:            "tx-1",
		UserID:        "alice",
		Amount:        decimal.RequireFromString("250.50"),
		Type:          domain.TxPaiement,
		Label:         "Cotisation aout",
		PaymentMethod: domain.PayCash,
		OccurredAt:    time.Date(2026, 8, 15, 10, 30, 0, 0, time.UTC),
		CreatedAt:     time.Date(2026, 8, 15, 10, 30, 0, 0, time.UTC),
	}
	if err := client.UpsertTransaction(context.Background(), tx); err != nil {
		t.Fatalf("UpsertTransaction() error: %v", err)
	}

	if gotMethod != http.MethodPut || gotPath != "/transactions/tx-1" {
		t.Errorf("request = %s %s, want PUT /transactions/tx-1", gotMethod, gotPath)
	}
	if gotKey != "secret" {
		t.Errorf("X-Api-Key = %q, want secret", gotKey)
	}
	if gotBody["user_id"] != "alice" {
		t.Errorf("user_id = %v, want alice", gotBody["user_id"])
	}
	if gotBody["amount"] != "250.5" {
		t.Errorf("amount = %v, want decimal string", gotBody["amount"])
	}
	if gotBody["type"] != "PAIEMENT" {
		t.Errorf("type = %v, want PAIEMENT", gotBody["type"])
	}
	if gotBody["occurred_at"] != "2026-08-15T10:30:00Z" {
		t.Errorf("occurred_at = %v, want RFC 3339 UTC", gotBody["occurred_at"])
	}
}

func TestListTransactions_RoundTrip(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	remote := []transactionDTO{
		{ID: "a", UserID: "alice", Amount: decimal.RequireFromString("250"),
			Type: "COTISATION", Label: "charge", OccurredAt: now, CreatedAt: now},
		{ID: "b", Amount: decimal.RequireFromString("99.99"),
			Type: "DEPENSE", Label: "fix", Provider: "acme", Category: "entretien",
			OccurredAt: now, CreatedAt: now},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(remote)
	}))
	defer srv.Close()

	client := New(srv.URL, "", zerolog.Nop())
	txs, err := client.ListTransactions(context.Background())
	if err != nil {
		t.Fatalf("ListTransactions() error: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("len = %d, want 2", len(txs))
	}
	if txs[0].Type != domain.TxCotisation || txs[0].UserID != "alice" {
		t.Errorf("txs[0] = %+v", txs[0])
	}
	if !txs[1].Amount.Equal(decimal.RequireFromString("99.99")) {
		t.Errorf("txs[1].Amount = %s, want 99.99", txs[1].Amount)
	}
}

func TestGetConfig_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := New(srv.URL, "", zerolog.Nop())
	_, err := client.GetConfig(context.Background())
	if !errors.Is(err, domain.ErrConfigNotFound) {
		t.Errorf("GetConfig() error = %v, want ErrConfigNotFound", err)
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"server error maps to unavailable", http.StatusInternalServerError, domain.ErrRemoteUnavailable},
		{"bad gateway maps to unavailable", http.StatusBadGateway, domain.ErrRemoteUnavailable},
		{"client error maps to rejected", http.StatusUnprocessableEntity, domain.ErrRemoteRejected},
		{"auth failure maps to rejected", http.StatusUnauthorized, domain.ErrRemoteRejected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			client := New(srv.URL, "", zerolog.Nop())
			err := client.UpsertResident(context.Background(), domain.Resident{ID: "r1"})
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestConnectionRefusedMapsToUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	client := New(srv.URL, "", zerolog.Nop())
	err := client.UpsertConfig(context.Background(), domain.ResidenceConfig{ID: domain.ConfigID})
	if !errors.Is(err, domain.ErrRemoteUnavailable) {
		t.Errorf("error = %v, want ErrRemoteUnavailable", err)
	}
}

func TestResidentPinHashTravels(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
	}))
	defer srv.Close()

	client := New(srv.URL, "", zerolog.Nop())
	r := domain.Resident{
		ID:      "r1",
		Role:    domain.RoleResident,
		PinHash: domain.HashPIN("1234"),
	}
	if err := client.UpsertResident(context.Background(), r); err != nil {
		t.Fatalf("UpsertResident() error: %v", err)
	}
	// The local API never exposes hashes but the mirror stores them, so
	// the wire record carries the digest.
	if gotBody["pin_hash"] != domain.HashPIN("1234") {
		t.Errorf("pin_hash = %v, want digest", gotBody["pin_hash"])
	}
}
