// Sync outbox operations. A job is the durable half of the outbox pattern:
// local commit first, then an at-least-once remote delivery tracked here.
package sqlite

import (
	"fmt"
	"time"

	"github.com/syndic-app/syndic/internal/domain"
)

// EnqueueSyncJob records a pending delivery for (kind, entityID). If a job
// for the same entity is already pending, the existing job is kept untouched.
func (db *DB) EnqueueSyncJob(kind domain.EntityKind, entityID string, eligibleAt time.Time) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	_, err := db.db.Exec(`
		INSERT OR IGNORE INTO sync_jobs (kind, entity_id, attempts, next_eligible_at, created_at)
		VALUES (?, ?, 0, ?, ?)
	`, string(kind), entityID, eligibleAt.UnixMilli(), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("enqueue sync job %s/%s: %w", kind, entityID, err)
	}
	return nil
}

// DueSyncJobs returns up to limit jobs eligible to run at now, oldest first.
func (db *DB) DueSyncJobs(now time.Time, limit int) ([]domain.SyncJob, error) {
	rows, err := db.db.Query(`
		SELECT id, kind, entity_id, attempts, next_eligible_at, last_error, created_at
		FROM sync_jobs WHERE next_eligible_at <= ?
		ORDER BY next_eligible_at, id LIMIT ?
	`, now.UnixMilli(), limit)
	if err != nil {
		return nil, fmt.Errorf("due sync jobs: %w", err)
	}
	defer rows.Close()

	var jobs []domain.SyncJob
	for rows.Next() {
		var (
			j            domain.SyncJob
			nextMs, crMs int64
		)
		if err := rows.Scan(&j.ID, (*string)(&j.Kind), &j.EntityID, &j.Attempts, &nextMs, &j.LastError, &crMs); err != nil {
			return nil, fmt.Errorf("due sync jobs: %w", err)
		}
		j.NextEligibleAt = time.UnixMilli(nextMs).UTC()
		j.CreatedAt = time.UnixMilli(crMs).UTC()
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// CompleteSyncJob removes a job after a successful upload.
func (db *DB) CompleteSyncJob(id int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	_, err := db.db.Exec(`DELETE FROM sync_jobs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("complete sync job %d: %w", id, err)
	}
	return nil
}

// RescheduleSyncJob bumps the attempt counter and pushes the job out to
// nextEligibleAt, recording the failure reason.
func (db *DB) RescheduleSyncJob(id int64, nextEligibleAt time.Time, lastError string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	_, err := db.db.Exec(`
		UPDATE sync_jobs SET attempts = attempts + 1, next_eligible_at = ?, last_error = ?
		WHERE id = ?
	`, nextEligibleAt.UnixMilli(), lastError, id)
	if err != nil {
		return fmt.Errorf("reschedule sync job %d: %w", id, err)
	}
	return nil
}

// RemoveSyncJob cancels a queued job before it starts. In-flight attempts
// run to completion; removal only prevents future attempts.
func (db *DB) RemoveSyncJob(kind domain.EntityKind, entityID string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	_, err := db.db.Exec(`DELETE FROM sync_jobs WHERE kind = ? AND entity_id = ?`, string(kind), entityID)
	if err != nil {
		return fmt.Errorf("remove sync job %s/%s: %w", kind, entityID, err)
	}
	return nil
}

// CountPendingSyncJobs returns the outbox depth.
func (db *DB) CountPendingSyncJobs() (int, error) {
	var count int
	if err := db.db.QueryRow(`SELECT COUNT(*) FROM sync_jobs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count sync jobs: %w", err)
	}
	return count, nil
}
