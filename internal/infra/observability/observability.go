// Package observability holds the Prometheus metrics for the ledger and
// the sync reconciler. Exposed on /metrics when enabled in config.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Ledger Metrics ─────────────────────────────────────────────────────────

// TransactionsAppended counts successful ledger appends by type.
var TransactionsAppended = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "syndic",
	Subsystem: "ledger",
	Name:      "transactions_total",
	Help:      "Total transactions appended to the ledger by type.",
}, []string{"type"})

// ValidationRejections counts writes rejected before hitting the store.
var ValidationRejections = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "syndic",
	Subsystem: "ledger",
	Name:      "validation_rejections_total",
	Help:      "Total transaction writes rejected by validation.",
})

// ChargesGenerated counts monthly cotisation charges created.
var ChargesGenerated = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "syndic",
	Subsystem: "charges",
	Name:      "generated_total",
	Help:      "Total monthly charges created by the generator.",
})

// ─── Sync Metrics ───────────────────────────────────────────────────────────

// SyncUploads counts upload attempts by outcome.
var SyncUploads = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "syndic",
	Subsystem: "sync",
	Name:      "uploads_total",
	Help:      "Total outbox upload attempts by outcome.",
}, []string{"outcome"})

// SyncPulls counts full-pull runs by outcome.
var SyncPulls = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "syndic",
	Subsystem: "sync",
	Name:      "pulls_total",
	Help:      "Total full remote pulls by outcome.",
}, []string{"outcome"})

// OutboxDepth tracks pending deferred uploads.
var OutboxDepth = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "syndic",
	Subsystem: "sync",
	Name:      "outbox_depth",
	Help:      "Current number of pending sync jobs.",
})

// PullRecordsMerged counts remote records upserted locally during pulls.
var PullRecordsMerged = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "syndic",
	Subsystem: "sync",
	Name:      "pull_records_merged_total",
	Help:      "Total remote records merged into the local store.",
})
