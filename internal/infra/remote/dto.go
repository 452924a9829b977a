package remote

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/syndic-app/syndic/internal/domain"
)

// Wire records. Timestamps travel as RFC 3339 strings, amounts as decimal
// strings, enums by name. Null-able local fields are omitted when empty.

type transactionDTO struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Type          string          `json:"type"`
	Label         string          `json:"label"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	Provider      string          `json:"provider,omitempty"`
	Category      string          `json:"category,omitempty"`
	ChargeMonth   string          `json:"charge_month,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
	CreatedAt     time.Time       `json:"created_at"`
}

func transactionToDTO(tx domain.Transaction) transactionDTO {
	return transactionDTO{
		ID:            tx.ID,
		UserID:        tx.UserID,
		Amount:        tx.Amount,
		Type:          string(tx.Type),
		Label:         tx.Label,
		PaymentMethod: string(tx.PaymentMethod),
		Provider:      tx.Provider,
		Category:      tx.Category,
		ChargeMonth:   tx.ChargeMonth,
		OccurredAt:    tx.OccurredAt.UTC(),
		CreatedAt:     tx.CreatedAt.UTC(),
	}
}

func (d transactionDTO) toDomain() domain.Transaction {
	return domain.Transaction{
		ID:            d.ID,
		UserID:        d.UserID,
		Amount:        d.Amount,
		Type:          domain.TransactionType(d.Type),
		Label:         d.Label,
		PaymentMethod: domain.PaymentMethod(d.PaymentMethod),
		Provider:      d.Provider,
		Category:      d.Category,
		ChargeMonth:   d.ChargeMonth,
		OccurredAt:    d.OccurredAt,
		CreatedAt:     d.CreatedAt,
	}
}

type residentDTO struct {
	ID              string    `json:"id"`
	Email           string    `json:"email,omitempty"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Role            string    `json:"role"`
	Phone           string    `json:"phone,omitempty"`
	ApartmentNumber string    `json:"apartment_number"`
	PinHash         string    `json:"pin_hash,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func residentToDTO(r domain.Resident) residentDTO {
	return residentDTO{
		ID:              r.ID,
		Email:           r.Email,
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		Role:            string(r.Role),
		Phone:           r.Phone,
		ApartmentNumber: r.ApartmentNumber,
		PinHash:         r.PinHash,
		CreatedAt:       r.CreatedAt.UTC(),
		UpdatedAt:       r.UpdatedAt.UTC(),
	}
}

func (d residentDTO) toDomain() domain.Resident {
	return domain.Resident{
		ID:              d.ID,
		Email:           d.Email,
		FirstName:       d.FirstName,
		LastName:        d.LastName,
		Role:            domain.Role(d.Role),
		Phone:           d.Phone,
		ApartmentNumber: d.ApartmentNumber,
		PinHash:         d.PinHash,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

type configDTO struct {
	ID               string          `json:"id"`
	ResidenceName    string          `json:"residence_name"`
	Address          string          `json:"address,omitempty"`
	MonthlyFee       decimal.Decimal `json:"monthly_fee"`
	ConciergeSalary  decimal.Decimal `json:"concierge_salary"`
	CleaningCost     decimal.Decimal `json:"cleaning_cost"`
	ElectricityCost  decimal.Decimal `json:"electricity_cost"`
	WaterCost        decimal.Decimal `json:"water_cost"`
	ElevatorCost     decimal.Decimal `json:"elevator_cost"`
	InsuranceCost    decimal.Decimal `json:"insurance_cost"`
	MiscCost         decimal.Decimal `json:"misc_cost"`
	TotalApartments  int             `json:"total_apartments"`
	Currency         string          `json:"currency"`
	MasterPinHash    string          `json:"master_pin_hash,omitempty"`
	SyndicPinHash    string          `json:"syndic_pin_hash,omitempty"`
	ConciergePinHash string          `json:"concierge_pin_hash,omitempty"`
	SetupComplete    bool            `json:"setup_complete"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func configToDTO(c domain.ResidenceConfig) configDTO {
	return configDTO{
		ID:               c.ID,
		ResidenceName:    c.ResidenceName,
		Address:          c.Address,
		MonthlyFee:       c.MonthlyFee,
		ConciergeSalary:  c.ConciergeSalary,
		CleaningCost:     c.CleaningCost,
		ElectricityCost:  c.ElectricityCost,
		WaterCost:        c.WaterCost,
		ElevatorCost:     c.ElevatorCost,
		InsuranceCost:    c.InsuranceCost,
		MiscCost:         c.MiscCost,
		TotalApartments:  c.TotalApartments,
		Currency:         c.Currency,
		MasterPinHash:    c.MasterPinHash,
		SyndicPinHash:    c.SyndicPinHash,
		ConciergePinHash: c.ConciergePinHash,
		SetupComplete:    c.SetupComplete,
		CreatedAt:        c.CreatedAt.UTC(),
		UpdatedAt:        c.UpdatedAt.UTC(),
	}
}

func (d configDTO) toDomain() domain.ResidenceConfig {
	return domain.ResidenceConfig{
		ID:               d.ID,
		ResidenceName:    d.ResidenceName,
		Address:          d.Address,
		MonthlyFee:       d.MonthlyFee,
		ConciergeSalary:  d.ConciergeSalary,
		CleaningCost:     d.CleaningCost,
		ElectricityCost:  d.ElectricityCost,
		WaterCost:        d.WaterCost,
		ElevatorCost:     d.ElevatorCost,
		InsuranceCost:    d.InsuranceCost,
		MiscCost:         d.MiscCost,
		TotalApartments:  d.TotalApartments,
		Currency:         d.Currency,
		MasterPinHash:    d.MasterPinHash,
		SyndicPinHash:    d.SyndicPinHash,
		ConciergePinHash: d.ConciergePinHash,
		SetupComplete:    d.SetupComplete,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}
