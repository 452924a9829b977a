package domain

import "time"

// ─── Outbox Types ───────────────────────────────────────────────────────────
// A local write that must be mirrored remotely becomes a SyncJob. The job
// terminates on successful upload or is retried with backoff until removed.

// EntityKind names the record family a sync job carries.
type EntityKind string

const (
	KindTransaction EntityKind = "transaction"
	KindResident    EntityKind = "resident"
	KindConfig      EntityKind = "config"
)

// SyncJob is one durable outbox row: deliver entity (Kind, EntityID)
// to the remote store at least once.
type SyncJob struct {
	ID             int64      `json:"id"`
	Kind           EntityKind `json:"kind"`
	EntityID       string     `json:"entity_id"`
	Attempts       int        `json:"attempts"`
	NextEligibleAt time.Time  `json:"next_eligible_at"`
	LastError      string     `json:"last_error,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
