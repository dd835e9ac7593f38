package models

import (
	"fmt"
	"time"
)

// Risk levels produced by the predictor and the fallback heuristic
const (
	RiskLevelLow    = "LOW"
	RiskLevelMedium = "MEDIUM"
	RiskLevelHigh   = "HIGH"
)

// Impact tiers for a risk factor
const (
	ImpactLow    = "Low Impact"
	ImpactMedium = "Medium Impact"
	ImpactHigh   = "High Impact"
)

// RiskFactor is one named contributor to a risk score
type RiskFactor struct {
	Name        string  `json:"name"`
	Impact      string  `json:"impact"`
	Score       float64 `json:"score"`
	Description string  `json:"description"`
}

// RiskPredictionResponse is the prediction result returned to callers.
// Remote and fallback results share this shape; the caller cannot tell
// them apart.
type RiskPredictionResponse struct {
	RiskScore       int          `json:"riskScore"`
	RiskLevel       string       `json:"riskLevel"`
	RiskFactors     []RiskFactor `json:"riskFactors,omitempty"`
	Recommendations []string     `json:"recommendations,omitempty"`
}

// Validate checks a prediction payload against the wire contract. Every
// remote response must pass before it is accepted.
func (r *RiskPredictionResponse) Validate() error {
	if r.RiskScore < 0 || r.RiskScore > 100 {
		return fmt.Errorf("risk score %d out of range [0,100]", r.RiskScore)
	}
	switch r.RiskLevel {
	case RiskLevelLow, RiskLevelMedium, RiskLevelHigh:
	default:
		return fmt.Errorf("unrecognized risk level %q", r.RiskLevel)
	}
	for i, f := range r.RiskFactors {
		if f.Name == "" || f.Impact == "" || f.Description == "" {
			return fmt.Errorf("risk factor %d is missing required fields", i)
		}
	}
	return nil
}

// RiskAssessment is one persisted scoring result for a debtor. Assessments
// are insert-only; multiple rows per debtor form its history.
type RiskAssessment struct {
	ID              int64        `json:"id"`
	DebtorID        int64        `json:"debtor_id"`
	RiskScore       int          `json:"risk_score"`
	RiskLevel       string       `json:"risk_level"`
	RiskFactors     []RiskFactor `json:"risk_factors,omitempty"`
	Recommendations []string     `json:"recommendations,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
}

// RiskProfile is the normalized financial profile sent to the remote
// predictor. Optional fields marshal to explicit JSON nulls.
type RiskProfile struct {
	FullName         string  `json:"fullName"`
	Age              *int    `json:"age"`
	IDNumber         string  `json:"idNumber"`
	Phone            *string `json:"phone"`
	MonthlyIncome    float64 `json:"monthlyIncome"`
	DebtAmount       float64 `json:"debtAmount"`
	EmploymentStatus string  `json:"employmentStatus"`
	CreditScore      *int    `json:"creditScore"`
	PaymentHistory   *string `json:"paymentHistory"`
}

// NewRiskProfile builds the predictor profile from a debtor
func NewRiskProfile(d *Debtor) *RiskProfile {
	return &RiskProfile{
		FullName:         d.FullName,
		Age:              d.Age,
		IDNumber:         d.IDNumber,
		Phone:            d.Phone,
		MonthlyIncome:    d.MonthlyIncome,
		DebtAmount:       d.DebtAmount,
		EmploymentStatus: d.EmploymentStatus,
		CreditScore:      d.CreditScore,
		PaymentHistory:   d.PaymentHistory,
	}
}
