// Package sync keeps the local store and the remote mirror convergent.
// Local writes commit first and always succeed offline; the remote copy
// follows through a durable outbox. Pulls merge remote records in with
// remote-wins semantics and never delete local-only rows.
package sync

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/syndic-app/syndic/internal/app/finance"
	"github.com/syndic-app/syndic/internal/domain"
	"github.com/syndic-app/syndic/internal/infra/observability"
	"github.com/syndic-app/syndic/internal/infra/sqlite"
)

const (
	// maxBackoff caps the exponential retry delay for a failing upload.
	maxBackoff = time.Hour
	// drainBatch bounds one outbox pass.
	drainBatch = 50
)

// Remote is the mirror the reconciler uploads to and pulls from.
// internal/infra/remote.Client implements it.
type Remote interface {
	UpsertTransaction(ctx context.Context, tx domain.Transaction) error
	UpsertResident(ctx context.Context, r domain.Resident) error
	UpsertConfig(ctx context.Context, cfg domain.ResidenceConfig) error
	ListTransactions(ctx context.Context) ([]domain.Transaction, error)
	ListResidents(ctx context.Context) ([]domain.Resident, error)
	GetConfig(ctx context.Context) (*domain.ResidenceConfig, error)
}

// Status is a point-in-time snapshot of the reconciler.
type Status struct {
	Pending    int       `json:"pending"`
	PullActive bool      `json:"pull_active"`
	LastSyncAt time.Time `json:"last_sync_at,omitzero"`
	LastError  string    `json:"last_error,omitempty"`
}

// Reconciler owns the outbox and the pull merge. It implements
// finance.Recorder so every domain write flows local-first through it.
type Reconciler struct {
	db         *sqlite.DB
	remote     Remote
	hub        *finance.Hub
	log        zerolog.Logger
	backoffMin time.Duration
	now        func() time.Time

	pull   chan struct{} // size-1 token: held while a pull runs
	status struct {
		mu         gosync.Mutex
		lastSyncAt time.Time
		lastError  string
	}
}

var _ finance.Recorder = (*Reconciler)(nil)

// New creates a reconciler. backoffMin is the first retry delay; each
// further failure doubles it up to an hour.
func New(db *sqlite.DB, remote Remote, hub *finance.Hub, backoffMin time.Duration, log zerolog.Logger) *Reconciler {
	r := &Reconciler{
		db:         db,
		remote:     remote,
		hub:        hub,
		log:        log,
		backoffMin: backoffMin,
		now:        time.Now,
		pull:       make(chan struct{}, 1),
	}
	r.pull <- struct{}{}
	return r
}

// ─── Local-First Writes ─────────────────────────────────────────────────────

// RecordLocally appends a transaction to the local ledger, notifies balance
// watchers, and schedules the remote mirror write. The local commit is the
// success criterion: the remote write happens later and may retry for as
// long as it takes.
func (r *Reconciler) RecordLocally(ctx context.Context, tx domain.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.db.AppendTransaction(tx); err != nil {
		if domain.IsValidation(err) {
			observability.ValidationRejections.Inc()
		}
		return err
	}
	observability.TransactionsAppended.WithLabelValues(string(tx.Type)).Inc()
	r.hub.Publish()
	r.enqueue(domain.KindTransaction, tx.ID)
	return nil
}

// SaveResident upserts a resident locally and schedules its mirror write.
func (r *Reconciler) SaveResident(ctx context.Context, resident domain.Resident) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.db.UpsertResident(resident); err != nil {
		return err
	}
	r.hub.Publish()
	r.enqueue(domain.KindResident, resident.ID)
	return nil
}

// SaveConfig saves the residence config locally and schedules its mirror
// write.
func (r *Reconciler) SaveConfig(ctx context.Context, cfg domain.ResidenceConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.db.SaveConfig(cfg); err != nil {
		return err
	}
	r.hub.Publish()
	r.enqueue(domain.KindConfig, domain.ConfigID)
	return nil
}

// enqueue schedules the mirror write for an entity already committed
// locally. The local commit is what the caller was promised, so a failed
// outbox insert is logged and surfaced through Status, never propagated:
// returning it would make a durably recorded write look like it did not
// happen and invite a double-record on retry.
func (r *Reconciler) enqueue(kind domain.EntityKind, entityID string) {
	if err := r.db.EnqueueSyncJob(kind, entityID, r.now()); err != nil {
		err = fmt.Errorf("enqueue %s %s: %w", kind, entityID, err)
		r.log.Error().Err(err).Msg("outbox insert failed")
		r.setLastError(err)
		return
	}
	r.refreshDepth()
}

// ─── Outbox Drain ───────────────────────────────────────────────────────────

// ProcessOutbox delivers every due outbox job once. Failures reschedule
// with exponential backoff and never block the remaining jobs. Returns the
// number of jobs delivered.
func (r *Reconciler) ProcessOutbox(ctx context.Context) (int, error) {
	jobs, err := r.db.DueSyncJobs(r.now(), drainBatch)
	if err != nil {
		return 0, fmt.Errorf("load due jobs: %w", err)
	}

	delivered := 0
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return delivered, err
		}
		if err := r.deliver(ctx, job); err != nil {
			observability.SyncUploads.WithLabelValues("failure").Inc()
			r.setLastError(err)
			backoff := r.backoff(job.Attempts)
			if rerr := r.db.RescheduleSyncJob(job.ID, r.now().Add(backoff), err.Error()); rerr != nil {
				r.log.Error().Err(rerr).Int64("job", job.ID).Msg("reschedule failed")
			}
			r.log.Warn().Err(err).
				Str("kind", string(job.Kind)).
				Str("entity", job.EntityID).
				Dur("retry_in", backoff).
				Msg("upload failed")
			continue
		}
		if err := r.db.CompleteSyncJob(job.ID); err != nil {
			r.log.Error().Err(err).Int64("job", job.ID).Msg("complete failed")
			continue
		}
		observability.SyncUploads.WithLabelValues("success").Inc()
		delivered++
	}

	if delivered > 0 {
		r.markSynced()
	}
	r.refreshDepth()
	return delivered, nil
}

// deliver uploads the current local state of the job's entity. An entity
// deleted since enqueue has nothing to mirror and counts as done.
func (r *Reconciler) deliver(ctx context.Context, job domain.SyncJob) error {
	switch job.Kind {
	case domain.KindTransaction:
		tx, err := r.db.GetTransaction(job.EntityID)
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return r.remote.UpsertTransaction(ctx, *tx)
	case domain.KindResident:
		resident, err := r.db.GetResident(job.EntityID)
		if errors.Is(err, domain.ErrResidentNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return r.remote.UpsertResident(ctx, *resident)
	case domain.KindConfig:
		cfg, err := r.db.GetConfig()
		if errors.Is(err, domain.ErrConfigNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return r.remote.UpsertConfig(ctx, *cfg)
	default:
		return fmt.Errorf("unknown entity kind %q", job.Kind)
	}
}

// backoff returns min×2^attempts capped at maxBackoff.
func (r *Reconciler) backoff(attempts int) time.Duration {
	d := r.backoffMin
	for i := 0; i < attempts && d < maxBackoff; i++ {
		d *= 2
	}
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

// ─── Pull Merge ─────────────────────────────────────────────────────────────

// PullAll merges the full remote dataset into the local store. Remote
// records win over local records with the same id; rows that exist only
// locally are untouched. At most one pull runs at a time — a concurrent
// call fails fast with domain.ErrSyncInFlight.
func (r *Reconciler) PullAll(ctx context.Context) error {
	select {
	case <-r.pull:
	default:
		return domain.ErrSyncInFlight
	}
	defer func() { r.pull <- struct{}{} }()

	if err := r.pullAll(ctx); err != nil {
		observability.SyncPulls.WithLabelValues("failure").Inc()
		r.setLastError(err)
		return err
	}
	observability.SyncPulls.WithLabelValues("success").Inc()
	r.markSynced()
	return nil
}

func (r *Reconciler) pullAll(ctx context.Context) error {
	txs, err := r.remote.ListTransactions(ctx)
	if err != nil {
		return fmt.Errorf("pull transactions: %w", err)
	}
	residents, err := r.remote.ListResidents(ctx)
	if err != nil {
		return fmt.Errorf("pull residents: %w", err)
	}
	cfg, err := r.remote.GetConfig(ctx)
	if err != nil && !errors.Is(err, domain.ErrConfigNotFound) {
		return fmt.Errorf("pull config: %w", err)
	}

	// One bad record must not abort the merge: skip it, keep the rest.
	merged, skipped := 0, 0
	for _, tx := range txs {
		if err := r.db.UpsertRemoteTransaction(tx); err != nil {
			r.log.Warn().Err(err).Str("id", tx.ID).Msg("skipping remote transaction")
			skipped++
			continue
		}
		merged++
	}
	for _, resident := range residents {
		if err := r.db.UpsertResident(resident); err != nil {
			r.log.Warn().Err(err).Str("id", resident.ID).Msg("skipping remote resident")
			skipped++
			continue
		}
		merged++
	}
	if cfg != nil {
		if err := r.db.SaveConfig(*cfg); err != nil {
			r.log.Warn().Err(err).Msg("skipping remote config")
			skipped++
		} else {
			merged++
		}
	}

	observability.PullRecordsMerged.Add(float64(merged))
	r.hub.Publish()
	r.log.Info().
		Int("transactions", len(txs)).
		Int("residents", len(residents)).
		Bool("config", cfg != nil).
		Int("skipped", skipped).
		Msg("pull merge complete")
	return nil
}

// ─── Status ─────────────────────────────────────────────────────────────────

// Status reports the outbox depth, whether a pull is running, and the last
// sync result.
func (r *Reconciler) Status() Status {
	pending, err := r.db.CountPendingSyncJobs()
	if err != nil {
		r.log.Warn().Err(err).Msg("count pending jobs")
	}

	pullActive := false
	select {
	case token := <-r.pull:
		r.pull <- token
	default:
		pullActive = true
	}

	r.status.mu.Lock()
	defer r.status.mu.Unlock()
	return Status{
		Pending:    pending,
		PullActive: pullActive,
		LastSyncAt: r.status.lastSyncAt,
		LastError:  r.status.lastError,
	}
}

func (r *Reconciler) markSynced() {
	r.status.mu.Lock()
	defer r.status.mu.Unlock()
	r.status.lastSyncAt = r.now()
	r.status.lastError = ""
}

func (r *Reconciler) setLastError(err error) {
	r.status.mu.Lock()
	defer r.status.mu.Unlock()
	r.status.lastError = err.Error()
}

func (r *Reconciler) refreshDepth() {
	if pending, err := r.db.CountPendingSyncJobs(); err == nil {
		observability.OutboxDepth.Set(float64(pending))
	}
}
