// Resident and residence-config operations. Both are full-record upserts —
// the storage layer never patches individual fields.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/syndic-app/syndic/internal/domain"
)

// ─── Resident Operations ────────────────────────────────────────────────────

// UpsertResident inserts or replaces a resident record by id.
func (db *DB) UpsertResident(r domain.Resident) error {
	if r.ID == "" {
		return domain.ErrValidation("resident id is required")
	}
	if !r.Role.Valid() {
		return domain.ErrValidation("unknown resident role")
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	_, err := db.db.Exec(`
		INSERT INTO residents (id, email, first_name, last_name, role, phone, apartment_number, pin_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email            = excluded.email,
			first_name       = excluded.first_name,
			last_name        = excluded.last_name,
			role             = excluded.role,
			phone            = excluded.phone,
			apartment_number = excluded.apartment_number,
			pin_hash         = excluded.pin_hash,
			updated_at       = excluded.updated_at
	`, r.ID, r.Email, r.FirstName, r.LastName, string(r.Role), r.Phone,
		r.ApartmentNumber, r.PinHash, r.CreatedAt.UnixMilli(), r.UpdatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("upsert resident %s: %w", r.ID, err)
	}
	return nil
}

// GetResident retrieves a resident by id.
func (db *DB) GetResident(id string) (*domain.Resident, error) {
	row := db.db.QueryRow(residentSelect+` WHERE id = ?`, id)
	r, err := scanResident(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrResidentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get resident %s: %w", id, err)
	}
	return r, nil
}

// GetResidentByApartment retrieves a resident by apartment number.
func (db *DB) GetResidentByApartment(apartment string) (*domain.Resident, error) {
	row := db.db.QueryRow(residentSelect+` WHERE apartment_number = ? LIMIT 1`, apartment)
	r, err := scanResident(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrResidentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get resident by apartment %s: %w", apartment, err)
	}
	return r, nil
}

// ListResidents returns residents ordered by apartment number, optionally
// restricted to one role (empty role matches all).
func (db *DB) ListResidents(role domain.Role) ([]domain.Resident, error) {
	query := residentSelect + ` ORDER BY apartment_number, id`
	var args []any
	if role != "" {
		query = residentSelect + ` WHERE role = ? ORDER BY apartment_number, id`
		args = append(args, string(role))
	}

	rows, err := db.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list residents: %w", err)
	}
	defer rows.Close()

	var result []domain.Resident
	for rows.Next() {
		r, err := scanResident(rows)
		if err != nil {
			return nil, fmt.Errorf("list residents: %w", err)
		}
		result = append(result, *r)
	}
	return result, rows.Err()
}

const residentSelect = `
	SELECT id, email, first_name, last_name, role, phone, apartment_number, pin_hash, created_at, updated_at
	FROM residents`

func scanResident(row rowScanner) (*domain.Resident, error) {
	var (
		r                  domain.Resident
		createdMs, updated int64
	)
	err := row.Scan(&r.ID, &r.Email, &r.FirstName, &r.LastName, (*string)(&r.Role),
		&r.Phone, &r.ApartmentNumber, &r.PinHash, &createdMs, &updated)
	if err != nil {
		return nil, err
	}
	r.CreatedAt = time.UnixMilli(createdMs).UTC()
	r.UpdatedAt = time.UnixMilli(updated).UTC()
	return &r, nil
}

// ─── Residence Config Operations ────────────────────────────────────────────

// SaveConfig replaces the singleton config row wholesale. Zero timestamps
// are filled with now; caller-supplied ones are kept, so a pulled remote
// config never looks newer locally than it is on the mirror.
func (db *DB) SaveConfig(c domain.ResidenceConfig) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = now
	}

	_, err := db.db.Exec(`
		INSERT INTO residence_config (id, residence_name, address, monthly_fee, concierge_salary, cleaning_cost,
			electricity_cost, water_cost, elevator_cost, insurance_cost, misc_cost,
			total_apartments, currency, master_pin_hash, syndic_pin_hash, concierge_pin_hash,
			setup_complete, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			residence_name     = excluded.residence_name,
			address            = excluded.address,
			monthly_fee        = excluded.monthly_fee,
			concierge_salary   = excluded.concierge_salary,
			cleaning_cost      = excluded.cleaning_cost,
			electricity_cost   = excluded.electricity_cost,
			water_cost         = excluded.water_cost,
			elevator_cost      = excluded.elevator_cost,
			insurance_cost     = excluded.insurance_cost,
			misc_cost          = excluded.misc_cost,
			total_apartments   = excluded.total_apartments,
			currency           = excluded.currency,
			master_pin_hash    = excluded.master_pin_hash,
			syndic_pin_hash    = excluded.syndic_pin_hash,
			concierge_pin_hash = excluded.concierge_pin_hash,
			setup_complete     = excluded.setup_complete,
			updated_at         = excluded.updated_at
	`, domain.ConfigID, c.ResidenceName, c.Address, c.MonthlyFee.String(), c.ConciergeSalary.String(),
		c.CleaningCost.String(), c.ElectricityCost.String(), c.WaterCost.String(), c.ElevatorCost.String(),
		c.InsuranceCost.String(), c.MiscCost.String(), c.TotalApartments, c.Currency,
		c.MasterPinHash, c.SyndicPinHash, c.ConciergePinHash,
		boolToInt(c.SetupComplete), c.CreatedAt.UnixMilli(), c.UpdatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// GetConfig retrieves the singleton config.
func (db *DB) GetConfig() (*domain.ResidenceConfig, error) {
	var (
		c                  domain.ResidenceConfig
		fee, salary, clean string
		elec, water, elev  string
		insur, misc        string
		setupInt           int
		createdMs, updated int64
	)
	err := db.db.QueryRow(`
		SELECT id, residence_name, address, monthly_fee, concierge_salary, cleaning_cost,
			electricity_cost, water_cost, elevator_cost, insurance_cost, misc_cost,
			total_apartments, currency, master_pin_hash, syndic_pin_hash, concierge_pin_hash,
			setup_complete, created_at, updated_at
		FROM residence_config WHERE id = ?
	`, domain.ConfigID).Scan(&c.ID, &c.ResidenceName, &c.Address, &fee, &salary, &clean,
		&elec, &water, &elev, &insur, &misc,
		&c.TotalApartments, &c.Currency, &c.MasterPinHash, &c.SyndicPinHash, &c.ConciergePinHash,
		&setupInt, &createdMs, &updated)
	if err == sql.ErrNoRows {
		return nil, domain.ErrConfigNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get config: %w", err)
	}

	for _, f := range []struct {
		raw  string
		dest *decimal.Decimal
	}{
		{fee, &c.MonthlyFee}, {salary, &c.ConciergeSalary}, {clean, &c.CleaningCost},
		{elec, &c.ElectricityCost}, {water, &c.WaterCost}, {elev, &c.ElevatorCost},
		{insur, &c.InsuranceCost}, {misc, &c.MiscCost},
	} {
		d, err := decimal.NewFromString(f.raw)
		if err != nil {
			return nil, fmt.Errorf("get config: bad amount %q: %w", f.raw, err)
		}
		*f.dest = d
	}
	c.SetupComplete = setupInt == 1
	c.CreatedAt = time.UnixMilli(createdMs).UTC()
	c.UpdatedAt = time.UnixMilli(updated).UTC()
	return &c, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
