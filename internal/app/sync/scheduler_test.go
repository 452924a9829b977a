package sync

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/syndic-app/syndic/internal/app/finance"
	"github.com/syndic-app/syndic/internal/domain"
)

func TestScheduler_DrainsOutbox(t *testing.T) {
	_, remote, rec := newTestReconciler(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := rec.RecordLocally(ctx, testTx("tx-1", "alice")); err != nil {
		t.Fatalf("RecordLocally() error: %v", err)
	}

	cfg := DefaultSchedulerConfig()
	cfg.DrainInterval = 10 * time.Millisecond
	cfg.PullInterval = 0
	sched := NewScheduler(cfg, rec, nil, zerolog.Nop())
	go sched.Run(ctx)

	deadline := time.After(2 * time.Second)
	for {
		remote.mu.Lock()
		n := len(remote.transactions)
		remote.mu.Unlock()
		if n == 1 {
			return
		}
		select {
		case <-deadline:
			t.Fatal("outbox never drained")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestScheduler_RunsMonthlyCharges(t *testing.T) {
	db, _, rec := newTestReconciler(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := db.UpsertResident(domain.Resident{
		ID: "alice", FirstName: "Alice", LastName: "A",
		Role: domain.RoleResident, ApartmentNumber: "1",
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("UpsertResident() error: %v", err)
	}

	engine := finance.New(db, rec.hub, zerolog.Nop())
	gen := finance.NewGenerator(db, engine, rec, zerolog.Nop())

	cfg := DefaultSchedulerConfig()
	cfg.DrainInterval = time.Hour // keep drain out of the way
	cfg.ChargeCheck = time.Hour   // only the startup run fires
	cfg.PullInterval = 0
	cfg.ChargeAmount = dec("250")
	sched := NewScheduler(cfg, rec, gen, zerolog.Nop())
	go sched.Run(ctx)

	deadline := time.After(2 * time.Second)
	for {
		n, err := db.CountTransactions(domain.TxFilter{Type: domain.TxCotisation})
		if err != nil {
			t.Fatalf("CountTransactions() error: %v", err)
		}
		if n == 1 {
			return
		}
		select {
		case <-deadline:
			t.Fatal("startup charge run never happened")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestScheduler_ChargeRunDisabledWithoutAmount(t *testing.T) {
	db, _, rec := newTestReconciler(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := db.UpsertResident(domain.Resident{
		ID: "alice", Role: domain.RoleResident, ApartmentNumber: "1",
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("UpsertResident() error: %v", err)
	}
	engine := finance.New(db, rec.hub, zerolog.Nop())
	gen := finance.NewGenerator(db, engine, rec, zerolog.Nop())

	cfg := DefaultSchedulerConfig()
	cfg.DrainInterval = time.Hour
	cfg.PullInterval = 0
	// ChargeAmount left zero: automatic charging stays off.
	sched := NewScheduler(cfg, rec, gen, zerolog.Nop())
	go sched.Run(ctx)

	time.Sleep(100 * time.Millisecond)
	n, err := db.CountTransactions(domain.TxFilter{Type: domain.TxCotisation})
	if err != nil {
		t.Fatalf("CountTransactions() error: %v", err)
	}
	if n != 0 {
		t.Errorf("charges created = %d, want 0 with charging disabled", n)
	}
}
