package sync

import (
	"context"
	"errors"
	gosync "sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/syndic-app/syndic/internal/app/finance"
	"github.com/syndic-app/syndic/internal/domain"
)

// SchedulerConfig controls the background loops.
type SchedulerConfig struct {
	DrainInterval time.Duration // outbox delivery cadence
	PullInterval  time.Duration // full remote pull cadence, 0 disables
	ChargeCheck   time.Duration // monthly charge run cadence
	ChargeAmount  decimal.Decimal
	ChargeLabel   string
}

// DefaultSchedulerConfig returns the daemon defaults.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		DrainInterval: 30 * time.Second,
		PullInterval:  15 * time.Minute,
		ChargeCheck:   time.Hour,
		ChargeLabel:   "Cotisation mensuelle",
	}
}

// Scheduler drives the reconciler and the monthly charge generator on
// timers. Each named job runs single-flight: a tick that fires while the
// previous run is still going is skipped.
type Scheduler struct {
	cfg        SchedulerConfig
	reconciler *Reconciler
	generator  *finance.Generator
	log        zerolog.Logger
	now        func() time.Time

	mu      gosync.Mutex
	running map[string]bool
}

// NewScheduler creates the background scheduler. generator may be nil when
// automatic charging is disabled.
func NewScheduler(cfg SchedulerConfig, reconciler *Reconciler, generator *finance.Generator, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cfg:        cfg,
		reconciler: reconciler,
		generator:  generator,
		log:        log,
		now:        time.Now,
		running:    make(map[string]bool),
	}
}

// Run blocks until ctx is done, firing the outbox drain, the periodic
// pull, and the monthly charge check. One initial drain and charge check
// run immediately on start so a restart catches up without waiting a full
// interval.
func (s *Scheduler) Run(ctx context.Context) {
	drain := time.NewTicker(s.cfg.DrainInterval)
	defer drain.Stop()
	charge := time.NewTicker(s.cfg.ChargeCheck)
	defer charge.Stop()

	var pull <-chan time.Time
	if s.cfg.PullInterval > 0 {
		t := time.NewTicker(s.cfg.PullInterval)
		defer t.Stop()
		pull = t.C
	}

	s.runJob(ctx, "drain", s.drain)
	s.runJob(ctx, "charges", s.charges)

	for {
		select {
		case <-ctx.Done():
			return
		case <-drain.C:
			s.runJob(ctx, "drain", s.drain)
		case <-charge.C:
			s.runJob(ctx, "charges", s.charges)
		case <-pull:
			s.runJob(ctx, "pull", s.pullOnce)
		}
	}
}

// runJob runs fn asynchronously unless the same-named job is still going.
func (s *Scheduler) runJob(ctx context.Context, name string, fn func(context.Context)) {
	s.mu.Lock()
	if s.running[name] {
		s.mu.Unlock()
		return
	}
	s.running[name] = true
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			s.running[name] = false
			s.mu.Unlock()
		}()
		fn(ctx)
	}()
}

func (s *Scheduler) drain(ctx context.Context) {
	delivered, err := s.reconciler.ProcessOutbox(ctx)
	if err != nil && ctx.Err() == nil {
		s.log.Warn().Err(err).Msg("outbox drain failed")
		return
	}
	if delivered > 0 {
		s.log.Debug().Int("delivered", delivered).Msg("outbox drained")
	}
}

func (s *Scheduler) pullOnce(ctx context.Context) {
	err := s.reconciler.PullAll(ctx)
	if errors.Is(err, domain.ErrSyncInFlight) {
		return
	}
	if err != nil && ctx.Err() == nil {
		s.log.Warn().Err(err).Msg("periodic pull failed")
	}
}

func (s *Scheduler) charges(ctx context.Context) {
	if s.generator == nil || !s.cfg.ChargeAmount.IsPositive() {
		return
	}
	if _, err := s.generator.GenerateMonthlyCharges(ctx, s.now(), s.cfg.ChargeAmount, s.cfg.ChargeLabel); err != nil && ctx.Err() == nil {
		s.log.Warn().Err(err).Msg("monthly charge run failed")
	}
}
