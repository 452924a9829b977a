package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ConfigID is the fixed primary key of the singleton config row.
const ConfigID = "config_v1"

// ResidenceConfig is the singleton residence record. It is saved wholesale;
// UpdatedAt is bumped on every save.
type ResidenceConfig struct {
	ID            string `json:"id"`
	ResidenceName string `json:"residence_name"`
	Address       string `json:"address,omitempty"`

	// Financial configuration
	MonthlyFee      decimal.Decimal `json:"monthly_fee"`
	ConciergeSalary decimal.Decimal `json:"concierge_salary"`
	CleaningCost    decimal.Decimal `json:"cleaning_cost"`
	ElectricityCost decimal.Decimal `json:"electricity_cost"`
	WaterCost       decimal.Decimal `json:"water_cost"`
	ElevatorCost    decimal.Decimal `json:"elevator_cost"`
	InsuranceCost   decimal.Decimal `json:"insurance_cost"`
	MiscCost        decimal.Decimal `json:"misc_cost"`

	TotalApartments int    `json:"total_apartments"`
	Currency        string `json:"currency"` // ISO-ish code, display only

	// Security (SHA-256 hex digests, empty = unset)
	MasterPinHash    string `json:"-"`
	SyndicPinHash    string `json:"-"`
	ConciergePinHash string `json:"-"`

	SetupComplete bool      `json:"setup_complete"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// FixedMonthlyCosts sums the configured fixed cost components.
func (c ResidenceConfig) FixedMonthlyCosts() decimal.Decimal {
	return c.ConciergeSalary.
		Add(c.CleaningCost).
		Add(c.ElectricityCost).
		Add(c.WaterCost).
		Add(c.ElevatorCost).
		Add(c.InsuranceCost).
		Add(c.MiscCost)
}
