package sqlite

import (
	"testing"
	"time"

	"github.com/syndic-app/syndic/internal/domain"
)

func TestEnqueueSyncJob_DedupPerEntity(t *testing.T) {
	db := newTestDB(t)
	now := time.Now().UTC()

	if err := db.EnqueueSyncJob(domain.KindTransaction, "tx-1", now); err != nil {
		t.Fatalf("EnqueueSyncJob() error: %v", err)
	}
	// Second enqueue for the same entity keeps the existing job.
	if err := db.EnqueueSyncJob(domain.KindTransaction, "tx-1", now.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}

	count, err := db.CountPendingSyncJobs()
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("pending = %d, want 1 (deduplicated)", count)
	}

	jobs, err := db.DueSyncJobs(now, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 1 {
		t.Fatalf("due = %d, want 1", len(jobs))
	}
	if jobs[0].EntityID != "tx-1" || jobs[0].Kind != domain.KindTransaction {
		t.Errorf("job = %+v", jobs[0])
	}
}

func TestDueSyncJobs_RespectsEligibility(t *testing.T) {
	db := newTestDB(t)
	now := time.Now().UTC()

	db.EnqueueSyncJob(domain.KindTransaction, "due", now.Add(-time.Minute))
	db.EnqueueSyncJob(domain.KindTransaction, "later", now.Add(time.Hour))

	jobs, err := db.DueSyncJobs(now, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 1 {
		t.Fatalf("due = %d, want 1", len(jobs))
	}
	if jobs[0].EntityID != "due" {
		t.Errorf("EntityID = %q, want due", jobs[0].EntityID)
	}
}

func TestRescheduleSyncJob(t *testing.T) {
	db := newTestDB(t)
	now := time.Now().UTC()
	db.EnqueueSyncJob(domain.KindTransaction, "tx-1", now)

	jobs, _ := db.DueSyncJobs(now, 1)
	next := now.Add(30 * time.Second)
	if err := db.RescheduleSyncJob(jobs[0].ID, next, "remote unreachable"); err != nil {
		t.Fatalf("RescheduleSyncJob() error: %v", err)
	}

	// Not due anymore.
	due, _ := db.DueSyncJobs(now, 10)
	if len(due) != 0 {
		t.Fatalf("due = %d, want 0 after reschedule", len(due))
	}

	// Due at the new eligibility, with attempt count and error recorded.
	due, _ = db.DueSyncJobs(next, 10)
	if len(due) != 1 {
		t.Fatalf("due = %d, want 1", len(due))
	}
	if due[0].Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", due[0].Attempts)
	}
	if due[0].LastError != "remote unreachable" {
		t.Errorf("LastError = %q", due[0].LastError)
	}
}

func TestCompleteAndRemoveSyncJob(t *testing.T) {
	db := newTestDB(t)
	now := time.Now().UTC()
	db.EnqueueSyncJob(domain.KindTransaction, "tx-1", now)
	db.EnqueueSyncJob(domain.KindResident, "r-1", now)

	jobs, _ := db.DueSyncJobs(now, 10)
	if err := db.CompleteSyncJob(jobs[0].ID); err != nil {
		t.Fatalf("CompleteSyncJob() error: %v", err)
	}
	if err := db.RemoveSyncJob(domain.KindResident, "r-1"); err != nil {
		t.Fatalf("RemoveSyncJob() error: %v", err)
	}

	count, _ := db.CountPendingSyncJobs()
	if count != 0 {
		t.Errorf("pending = %d, want 0", count)
	}
}
