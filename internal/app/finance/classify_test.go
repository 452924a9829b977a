package finance

import (
	"context"
	"errors"
	"testing"

	"github.com/syndic-app/syndic/internal/domain"
	"github.com/syndic-app/syndic/internal/infra/sqlite"
)

func TestClassifyBalance(t *testing.T) {
	fee := dec("100")
	tests := []struct {
		balance string
		want    domain.StatusColor
	}{
		{"-0.01", domain.StatusRed},
		{"-500", domain.StatusRed},
		{"0", domain.StatusGreen},
		{"150", domain.StatusGreen},
		{"300", domain.StatusGreen}, // exactly 3 months is not GOLD
		{"300.01", domain.StatusGold},
		{"301", domain.StatusGold},
	}
	for _, tt := range tests {
		if got := ClassifyBalance(dec(tt.balance), fee); got != tt.want {
			t.Errorf("ClassifyBalance(%s, 100) = %s, want %s", tt.balance, got, tt.want)
		}
	}
}

func TestClassifyBalance_ZeroFee(t *testing.T) {
	// With a zero fee any positive balance is GOLD, zero stays GREEN.
	if got := ClassifyBalance(dec("0.01"), dec("0")); got != domain.StatusGold {
		t.Errorf("ClassifyBalance(0.01, 0) = %s, want GOLD", got)
	}
	if got := ClassifyBalance(dec("0"), dec("0")); got != domain.StatusGreen {
		t.Errorf("ClassifyBalance(0, 0) = %s, want GREEN", got)
	}
}

func saveTestConfig(t *testing.T, db *sqlite.DB, fee string) {
	t.Helper()
	err := db.SaveConfig(domain.ResidenceConfig{
		ID:            domain.ConfigID,
		ResidenceName: "Residence Atlas",
		MonthlyFee:    dec(fee),
		Currency:      "DH",
	})
	if err != nil {
		t.Fatalf("SaveConfig() error: %v", err)
	}
}

func TestClassify(t *testing.T) {
	db, engine := newTestEngine(t)
	ctx := context.Background()

	saveTestConfig(t, db, "250")
	addResident(t, db, "alice", "1", domain.RoleResident)

	mustAppend(t, db, cotisation("c1", "alice", "250"))

	color, err := engine.Classify(ctx, "alice")
	if err != nil {
		t.Fatalf("Classify() error: %v", err)
	}
	if color != domain.StatusRed {
		t.Errorf("Classify(alice) = %s, want RED", color)
	}

	mustAppend(t, db, paiement("p1", "alice", "250"))
	color, err = engine.Classify(ctx, "alice")
	if err != nil {
		t.Fatalf("Classify() error: %v", err)
	}
	if color != domain.StatusGreen {
		t.Errorf("Classify(alice) = %s, want GREEN", color)
	}
}

func TestClassify_UnknownResident(t *testing.T) {
	db, engine := newTestEngine(t)
	saveTestConfig(t, db, "250")

	_, err := engine.Classify(context.Background(), "ghost")
	if !errors.Is(err, domain.ErrResidentNotFound) {
		t.Errorf("Classify(ghost) error = %v, want ErrResidentNotFound", err)
	}
}

func TestClassify_MissingConfig(t *testing.T) {
	db, engine := newTestEngine(t)
	addResident(t, db, "alice", "1", domain.RoleResident)

	_, err := engine.Classify(context.Background(), "alice")
	if !errors.Is(err, domain.ErrConfigNotFound) {
		t.Errorf("Classify() error = %v, want ErrConfigNotFound", err)
	}
}

func TestMatrix(t *testing.T) {
	db, engine := newTestEngine(t)
	ctx := context.Background()

	saveTestConfig(t, db, "100")
	addResident(t, db, "carol", "10", domain.RoleResident)
	addResident(t, db, "alice", "2", domain.RoleResident)
	addResident(t, db, "bob", "B-annex", domain.RoleResident)
	addResident(t, db, "staff", "0", domain.RoleConcierge)

	mustAppend(t, db, paiement("p1", "alice", "500"))   // GOLD
	mustAppend(t, db, cotisation("c1", "carol", "100")) // RED
	mustAppend(t, db, cotisation("c2", "bob", "100"))
	mustAppend(t, db, paiement("p2", "bob", "100")) // GREEN

	matrix, err := engine.Matrix(ctx)
	if err != nil {
		t.Fatalf("Matrix() error: %v", err)
	}

	if len(matrix) != 3 {
		t.Fatalf("Matrix() returned %d rows, want 3", len(matrix))
	}

	// Numeric apartments first in order, non-numeric last.
	wantOrder := []string{"alice", "carol", "bob"}
	wantColor := []domain.StatusColor{domain.StatusGold, domain.StatusRed, domain.StatusGreen}
	for i, row := range matrix {
		if row.UserID != wantOrder[i] {
			t.Errorf("matrix[%d].UserID = %s, want %s", i, row.UserID, wantOrder[i])
		}
		if row.Color != wantColor[i] {
			t.Errorf("matrix[%d].Color = %s, want %s", i, row.Color, wantColor[i])
		}
	}
}

func TestMatrix_MissingConfig(t *testing.T) {
	db, engine := newTestEngine(t)
	addResident(t, db, "alice", "1", domain.RoleResident)

	_, err := engine.Matrix(context.Background())
	if !errors.Is(err, domain.ErrConfigNotFound) {
		t.Errorf("Matrix() error = %v, want ErrConfigNotFound", err)
	}
}
