package domain

import "time"

// ─── Resident Types ─────────────────────────────────────────────────────────

// Role is the resident's function within the residence.
type Role string

const (
	RoleSyndic    Role = "SYNDIC"
	RoleAdjoint   Role = "ADJOINT"
	RoleConcierge Role = "CONCIERGE"
	RoleResident  Role = "RESIDENT"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleSyndic, RoleAdjoint, RoleConcierge, RoleResident:
		return true
	}
	return false
}

// Resident is a person attached to the residence. Records are replaced
// wholesale on change (full-record upsert, never partial patch).
type Resident struct {
	ID              string    `json:"id"`
	Email           string    `json:"email,omitempty"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Role            Role      `json:"role"`
	Phone           string    `json:"phone,omitempty"`
	ApartmentNumber string    `json:"apartment_number"` // soft-unique per residence
	PinHash         string    `json:"-"`                // SHA-256 hex, empty = unset
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ─── Status Classification ──────────────────────────────────────────────────

// StatusColor is the tricolor risk label shown on the resident matrix.
type StatusColor string

const (
	StatusGold  StatusColor = "GOLD"  // paid more than 3 months in advance
	StatusGreen StatusColor = "GREEN" // up to date
	StatusRed   StatusColor = "RED"   // owes money
)
