package finance

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/syndic-app/syndic/internal/domain"
)

// ─── Status Classifier ──────────────────────────────────────────────────────

// ClassifyBalance maps a resident balance to the tricolor label:
// GOLD strictly above three months of fees, RED below zero, GREEN between
// (the 3×fee boundary itself is GREEN).
func ClassifyBalance(balance, monthlyFee decimal.Decimal) domain.StatusColor {
	switch {
	case balance.LessThan(decimal.Zero):
		return domain.StatusRed
	case balance.GreaterThan(monthlyFee.Mul(three)):
		return domain.StatusGold
	default:
		return domain.StatusGreen
	}
}

// Classify returns the status color for one resident, using the configured
// monthly fee.
func (e *Engine) Classify(ctx context.Context, userID string) (domain.StatusColor, error) {
	if _, err := e.db.GetResident(userID); err != nil {
		return "", err
	}
	cfg, err := e.db.GetConfig()
	if err != nil {
		return "", fmt.Errorf("classify %s: %w", userID, err)
	}
	balance, err := e.UserBalance(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("classify %s: %w", userID, err)
	}
	return ClassifyBalance(balance, cfg.MonthlyFee), nil
}

// ─── Resident Matrix ────────────────────────────────────────────────────────

// ResidentStatus is one cell of the resident matrix.
type ResidentStatus struct {
	UserID    string             `json:"user_id"`
	FirstName string             `json:"first_name"`
	LastName  string             `json:"last_name"`
	Apartment string             `json:"apartment"`
	Balance   decimal.Decimal    `json:"balance"`
	Color     domain.StatusColor `json:"color"`
}

// Matrix classifies every RESIDENT, sorted by numeric apartment number
// (non-numeric apartments sort last).
func (e *Engine) Matrix(ctx context.Context) ([]ResidentStatus, error) {
	cfg, err := e.db.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("matrix: %w", err)
	}
	residents, err := e.db.ListResidents(domain.RoleResident)
	if err != nil {
		return nil, fmt.Errorf("matrix: %w", err)
	}

	matrix := make([]ResidentStatus, 0, len(residents))
	for _, r := range residents {
		balance, err := e.UserBalance(ctx, r.ID)
		if err != nil {
			return nil, fmt.Errorf("matrix: balance of %s: %w", r.ID, err)
		}
		matrix = append(matrix, ResidentStatus{
			UserID:    r.ID,
			FirstName: r.FirstName,
			LastName:  r.LastName,
			Apartment: r.ApartmentNumber,
			Balance:   balance,
			Color:     ClassifyBalance(balance, cfg.MonthlyFee),
		})
	}

	sort.SliceStable(matrix, func(i, j int) bool {
		return apartmentOrder(matrix[i].Apartment) < apartmentOrder(matrix[j].Apartment)
	})
	return matrix, nil
}

func apartmentOrder(apartment string) int {
	n, err := strconv.Atoi(apartment)
	if err != nil {
		return 1<<31 - 1
	}
	return n
}
