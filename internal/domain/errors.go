package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.

var (
	// Ledger errors
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrDuplicateCharge     = errors.New("resident already charged for this month")

	// Resident errors
	ErrResidentNotFound = errors.New("resident not found")

	// Config errors
	ErrConfigNotFound = errors.New("residence config not initialized")

	// Auth errors
	ErrAuthentication = errors.New("pin mismatch or no credential set")

	// Sync errors (non-fatal for the caller — the local write stands)
	ErrRemoteUnavailable = errors.New("remote store is unreachable")
	ErrRemoteRejected    = errors.New("remote store rejected the payload")
	ErrSyncInFlight      = errors.New("a sync run is already in progress")
)

// ValidationError rejects a write before it happens. It carries the field
// explanation so callers can surface it directly.
type ValidationError string

func (e ValidationError) Error() string { return "validation: " + string(e) }

// ErrValidation builds a ValidationError from a reason.
func ErrValidation(reason string) error { return ValidationError(reason) }

// IsValidation reports whether err is a validation rejection.
func IsValidation(err error) bool {
	var v ValidationError
	return errors.As(err, &v)
}
