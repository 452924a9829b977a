// Ledger operations. The transactions table is append-only: the only code
// path that replaces a row is UpsertRemoteTransaction, reserved for the
// sync pull (remote-wins merge by id).
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/syndic-app/syndic/internal/domain"
)

// AppendTransaction durably inserts one ledger row. The row is visible to
// readers only once fully written; on return the write has been committed.
// Validation failures reject before any write. A second generated charge
// for the same resident and month maps to domain.ErrDuplicateCharge.
func (db *DB) AppendTransaction(tx domain.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	_, err := db.db.Exec(`
		INSERT INTO transactions (id, user_id, amount, type, label, payment_method, provider, category, charge_month, occurred_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, tx.ID, nullable(tx.UserID), tx.Amount.String(), string(tx.Type), tx.Label,
		nullable(string(tx.PaymentMethod)), nullable(tx.Provider), nullable(tx.Category),
		tx.ChargeMonth, tx.OccurredAt.UnixMilli(), tx.CreatedAt.UnixMilli())
	if isUniqueViolation(err) {
		if tx.ChargeMonth != "" {
			return domain.ErrDuplicateCharge
		}
		return fmt.Errorf("append transaction %s: %w", tx.ID, err)
	}
	if err != nil {
		return fmt.Errorf("append transaction %s: %w", tx.ID, err)
	}
	return nil
}

// UpsertRemoteTransaction inserts or replaces a row by id. Only the sync
// pull path may call this: the remote record wins over the local one with
// the same id, and local-only rows are never deleted. A remote generated
// charge that lands on an occupied (resident, month) slot under a different
// id also wins: two devices generating the same month's charges offline
// must converge on the remote record instead of failing the merge.
func (db *DB) UpsertRemoteTransaction(tx domain.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	_, err := db.db.Exec(`
		INSERT INTO transactions (id, user_id, amount, type, label, payment_method, provider, category, charge_month, occurred_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id        = excluded.user_id,
			amount         = excluded.amount,
			type           = excluded.type,
			label          = excluded.label,
			payment_method = excluded.payment_method,
			provider       = excluded.provider,
			category       = excluded.category,
			charge_month   = excluded.charge_month,
			occurred_at    = excluded.occurred_at,
			created_at     = excluded.created_at
		ON CONFLICT(user_id, charge_month) WHERE charge_month <> '' DO UPDATE SET
			id             = excluded.id,
			amount         = excluded.amount,
			type           = excluded.type,
			label          = excluded.label,
			payment_method = excluded.payment_method,
			provider       = excluded.provider,
			category       = excluded.category,
			occurred_at    = excluded.occurred_at,
			created_at     = excluded.created_at
	`, tx.ID, nullable(tx.UserID), tx.Amount.String(), string(tx.Type), tx.Label,
		nullable(string(tx.PaymentMethod)), nullable(tx.Provider), nullable(tx.Category),
		tx.ChargeMonth, tx.OccurredAt.UnixMilli(), tx.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("upsert transaction %s: %w", tx.ID, err)
	}
	return nil
}

// GetTransaction retrieves one transaction by id.
func (db *DB) GetTransaction(id string) (*domain.Transaction, error) {
	row := db.db.QueryRow(`
		SELECT id, user_id, amount, type, label, payment_method, provider, category, charge_month, occurred_at, created_at
		FROM transactions WHERE id = ?
	`, id)
	tx, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction %s: %w", id, err)
	}
	return tx, nil
}

// ListTransactions returns the filtered ledger, newest occurrence first.
func (db *DB) ListTransactions(f domain.TxFilter) ([]domain.Transaction, error) {
	where, args := filterClause(f)
	rows, err := db.db.Query(`
		SELECT id, user_id, amount, type, label, payment_method, provider, category, charge_month, occurred_at, created_at
		FROM transactions `+where+` ORDER BY occurred_at DESC, id
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var result []domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("list transactions: %w", err)
		}
		result = append(result, *tx)
	}
	return result, rows.Err()
}

// SumTransactions returns the aggregate amount over the filter, computed in
// a single read of the store.
func (db *DB) SumTransactions(f domain.TxFilter) (decimal.Decimal, error) {
	where, args := filterClause(f)
	rows, err := db.db.Query(`SELECT amount FROM transactions `+where, args...)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum transactions: %w", err)
	}
	defer rows.Close()

	// Summed in Go: sqlite SUM() on TEXT falls back to float arithmetic,
	// decimal strings must stay exact.
	total := decimal.Zero
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return decimal.Zero, fmt.Errorf("sum transactions: %w", err)
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return decimal.Zero, fmt.Errorf("sum transactions: bad amount %q: %w", raw, err)
		}
		total = total.Add(amount)
	}
	return total, rows.Err()
}

// CountTransactions counts rows matching the filter.
func (db *DB) CountTransactions(f domain.TxFilter) (int, error) {
	where, args := filterClause(f)
	var count int
	err := db.db.QueryRow(`SELECT COUNT(*) FROM transactions `+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return count, nil
}

// ─── Helpers ────────────────────────────────────────────────────────────────

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var (
		tx                        domain.Transaction
		userID, method            sql.NullString
		provider, category        sql.NullString
		amountRaw                 string
		occurredMilli, createdMil int64
	)
	err := row.Scan(&tx.ID, &userID, &amountRaw, (*string)(&tx.Type), &tx.Label,
		&method, &provider, &category, &tx.ChargeMonth, &occurredMilli, &createdMil)
	if err != nil {
		return nil, err
	}
	tx.Amount, err = decimal.NewFromString(amountRaw)
	if err != nil {
		return nil, fmt.Errorf("bad amount %q: %w", amountRaw, err)
	}
	tx.UserID = userID.String
	tx.PaymentMethod = domain.PaymentMethod(method.String)
	tx.Provider = provider.String
	tx.Category = category.String
	tx.OccurredAt = time.UnixMilli(occurredMilli).UTC()
	tx.CreatedAt = time.UnixMilli(createdMil).UTC()
	return &tx, nil
}

func filterClause(f domain.TxFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.UserID != "" {
		conds = append(conds, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.Type != "" {
		conds = append(conds, "type = ?")
		args = append(args, string(f.Type))
	}
	if !f.From.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, f.From.UnixMilli())
	}
	if !f.To.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, f.To.UnixMilli())
	}
	if len(conds) == 0 {
		return "", nil
	}
	where := "WHERE " + conds[0]
	for _, c := range conds[1:] {
		where += " AND " + c
	}
	return where, args
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
