package finance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/syndic-app/syndic/internal/domain"
	"github.com/syndic-app/syndic/internal/infra/observability"
	"github.com/syndic-app/syndic/internal/infra/sqlite"
)

// Recorder commits a transaction locally and schedules its remote mirror.
// The sync reconciler implements it; tests use a plain store adapter.
type Recorder interface {
	RecordLocally(ctx context.Context, tx domain.Transaction) error
}

// Generator creates the monthly resident charges exactly once per calendar
// month. Generated charges carry a charge-month slot; the store's unique
// index on that slot is the actual guarantee when two runs race, with the
// existence check as a fast path. Manual cotisation entries carry no slot
// and stay unconstrained.
type Generator struct {
	db       *sqlite.DB
	engine   *Engine
	recorder Recorder
	log      zerolog.Logger
	now      func() time.Time
}

// NewGenerator creates the monthly charge generator.
func NewGenerator(db *sqlite.DB, engine *Engine, recorder Recorder, log zerolog.Logger) *Generator {
	return &Generator{db: db, engine: engine, recorder: recorder, log: log, now: time.Now}
}

// GenerateMonthlyCharges appends one COTISATION per RESIDENT for the month
// of ref, skipping residents already charged, and returns how many charges
// it created. Residents that fail only by racing another run
// (duplicate-charge rejection) are skipped silently — the charge exists,
// which is the goal. Any other failure aborts the run.
func (g *Generator) GenerateMonthlyCharges(ctx context.Context, ref time.Time, amount decimal.Decimal, label string) (int, error) {
	if !amount.IsPositive() {
		return 0, domain.ErrValidation("charge amount must be positive")
	}

	residents, err := g.db.ListResidents(domain.RoleResident)
	if err != nil {
		return 0, fmt.Errorf("list residents: %w", err)
	}

	created := 0
	for _, r := range residents {
		charged, err := g.engine.HasChargeForMonth(ctx, r.ID, ref)
		if err != nil {
			return created, fmt.Errorf("check charge for %s: %w", r.ID, err)
		}
		if charged {
			continue
		}

		tx := domain.Transaction{
			ID:          uuid.New().String(),
			UserID:      r.ID,
			Amount:      amount,
			Type:        domain.TxCotisation,
			Label:       label,
			ChargeMonth: ref.UTC().Format("2006-01"),
			OccurredAt:  g.now(),
			CreatedAt:   g.now(),
		}
		err = g.recorder.RecordLocally(ctx, tx)
		if errors.Is(err, domain.ErrDuplicateCharge) {
			// Lost the race to a concurrent run; the month is covered.
			g.log.Debug().Str("resident", r.ID).Msg("charge already created concurrently")
			continue
		}
		if err != nil {
			return created, fmt.Errorf("charge resident %s: %w", r.ID, err)
		}
		created++
		observability.ChargesGenerated.Inc()
	}

	g.log.Info().
		Int("residents", len(residents)).
		Int("created", created).
		Str("month", ref.Format("2006-01")).
		Msg("monthly charge run complete")
	return created, nil
}
