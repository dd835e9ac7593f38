package models

import (
	"fmt"
	"time"
)

// Employment statuses accepted for a debtor
const (
	EmploymentEmployed     = "employed"
	EmploymentSelfEmployed = "self-employed"
	EmploymentUnemployed   = "unemployed"
)

// Debtor represents a debtor in the system. A debtor is created once and
// never mutated afterwards; its id_number is unique across the store.
type Debtor struct {
	ID               int64     `json:"id"`
	IDNumber         string    `json:"id_number"`
	FullName         string    `json:"full_name"`
	Age              *int      `json:"age,omitempty"`
	Phone            *string   `json:"phone,omitempty"`
	MonthlyIncome    float64   `json:"monthly_income"`
	DebtAmount       float64   `json:"debt_amount"`
	EmploymentStatus string    `json:"employment_status"`
	CreditScore      *int      `json:"credit_score,omitempty"`
	PaymentHistory   *string   `json:"payment_history,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// DebtorInput carries caller-supplied data for creating a debtor
type DebtorInput struct {
	IDNumber         string  `json:"id_number"`
	FullName         string  `json:"full_name"`
	Age              *int    `json:"age,omitempty"`
	Phone            *string `json:"phone,omitempty"`
	MonthlyIncome    float64 `json:"monthly_income"`
	DebtAmount       float64 `json:"debt_amount"`
	EmploymentStatus string  `json:"employment_status"`
	CreditScore      *int    `json:"credit_score,omitempty"`
	PaymentHistory   *string `json:"payment_history,omitempty"`
}

// Validate checks caller-supplied debtor data before it reaches the store
// or the assessment engine. MonthlyIncome > 0 is relied upon downstream by
// the debt-to-income calculation.
func (in *DebtorInput) Validate() error {
	if in.IDNumber == "" {
		return fmt.Errorf("id_number is required")
	}
	if in.FullName == "" {
		return fmt.Errorf("full_name is required")
	}
	if in.MonthlyIncome <= 0 {
		return fmt.Errorf("monthly_income must be positive")
	}
	if in.DebtAmount < 0 {
		return fmt.Errorf("debt_amount must not be negative")
	}
	if in.Age != nil && *in.Age < 0 {
		return fmt.Errorf("age must not be negative")
	}
	switch in.EmploymentStatus {
	case EmploymentEmployed, EmploymentSelfEmployed, EmploymentUnemployed:
	default:
		return fmt.Errorf("unknown employment_status: %q", in.EmploymentStatus)
	}
	if in.CreditScore != nil && (*in.CreditScore < 300 || *in.CreditScore > 850) {
		return fmt.Errorf("credit_score must be between 300 and 850")
	}
	return nil
}

// ToDebtor converts validated input into a debtor entity
func (in *DebtorInput) ToDebtor() *Debtor {
	return &Debtor{
		IDNumber:         in.IDNumber,
		FullName:         in.FullName,
		Age:              in.Age,
		Phone:            in.Phone,
		MonthlyIncome:    in.MonthlyIncome,
		DebtAmount:       in.DebtAmount,
		EmploymentStatus: in.EmploymentStatus,
		CreditScore:      in.CreditScore,
		PaymentHistory:   in.PaymentHistory,
	}
}
