package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/mkravtsov/debtor-risk-service/internal/models"
)

// Sentinel errors surfaced to callers
var (
	ErrDebtorNotFound  = errors.New("debtor not found")
	ErrDuplicateDebtor = errors.New("debtor with this id number already exists")
)

// lib/pq code for unique constraint violations
const uniqueViolation = "23505"

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateDebtor creates a new debtor in the database
func (r *Repository) CreateDebtor(debtor *models.Debtor) error {
	query := `
		INSERT INTO debtors (id_number, full_name, age, phone, monthly_income, debt_amount, employment_status, credit_score, payment_history, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := r.db.QueryRow(query,
		debtor.IDNumber, debtor.FullName, debtor.Age, debtor.Phone,
		debtor.MonthlyIncome, debtor.DebtAmount, debtor.EmploymentStatus,
		debtor.CreditScore, debtor.PaymentHistory).
		Scan(&debtor.ID, &debtor.CreatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrDuplicateDebtor
	}
	if err != nil {
		return fmt.Errorf("failed to create debtor: %w", err)
	}
	return nil
}

// FindDebtorByID retrieves a debtor by primary key
func (r *Repository) FindDebtorByID(id int64) (*models.Debtor, error) {
	query := `
		SELECT id, id_number, full_name, age, phone, monthly_income, debt_amount, employment_status, credit_score, payment_history, created_at
		FROM debtors
		WHERE id = $1`
	return r.scanDebtor(r.db.QueryRow(query, id))
}

// FindDebtorByIDNumber retrieves a debtor by its unique identity number
func (r *Repository) FindDebtorByIDNumber(idNumber string) (*models.Debtor, error) {
	query := `
		SELECT id, id_number, full_name, age, phone, monthly_income, debt_amount, employment_status, credit_score, payment_history, created_at
		FROM debtors
		WHERE id_number = $1`
	return r.scanDebtor(r.db.QueryRow(query, idNumber))
}

func (r *Repository) scanDebtor(row *sql.Row) (*models.Debtor, error) {
	debtor := &models.Debtor{}
	err := row.Scan(&debtor.ID, &debtor.IDNumber, &debtor.FullName, &debtor.Age,
		&debtor.Phone, &debtor.MonthlyIncome, &debtor.DebtAmount,
		&debtor.EmploymentStatus, &debtor.CreditScore, &debtor.PaymentHistory,
		&debtor.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrDebtorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find debtor: %w", err)
	}
	return debtor, nil
}

// CreateAssessment persists a risk assessment as a single atomic insert.
// Factor and recommendation payloads are stored as JSON, NULL when empty.
func (r *Repository) CreateAssessment(assessment *models.RiskAssessment) error {
	factors, err := marshalFactors(assessment.RiskFactors)
	if err != nil {
		return fmt.Errorf("failed to serialize risk factors: %w", err)
	}
	recommendations, err := marshalRecommendations(assessment.Recommendations)
	if err != nil {
		return fmt.Errorf("failed to serialize recommendations: %w", err)
	}

	query := `
		INSERT INTO risk_assessments (debtor_id, risk_score, risk_level, risk_factors, recommendations, created_at)
		VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err = r.db.QueryRow(query,
		assessment.DebtorID, assessment.RiskScore, assessment.RiskLevel,
		factors, recommendations).
		Scan(&assessment.ID, &assessment.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create risk assessment: %w", err)
	}
	return nil
}

// FindAssessmentsByDebtorID retrieves the assessment history for a debtor,
// newest first
func (r *Repository) FindAssessmentsByDebtorID(debtorID int64) ([]models.RiskAssessment, error) {
	query := `
		SELECT id, debtor_id, risk_score, risk_level, risk_factors, recommendations, created_at
		FROM risk_assessments
		WHERE debtor_id = $1
		ORDER BY created_at DESC`
	rows, err := r.db.Query(query, debtorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list risk assessments: %w", err)
	}
	defer rows.Close()

	var assessments []models.RiskAssessment
	for rows.Next() {
		var a models.RiskAssessment
		var factors, recommendations []byte
		if err := rows.Scan(&a.ID, &a.DebtorID, &a.RiskScore, &a.RiskLevel,
			&factors, &recommendations, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan risk assessment: %w", err)
		}
		if len(factors) > 0 {
			if err := json.Unmarshal(factors, &a.RiskFactors); err != nil {
				return nil, fmt.Errorf("failed to decode risk factors: %w", err)
			}
		}
		if len(recommendations) > 0 {
			if err := json.Unmarshal(recommendations, &a.Recommendations); err != nil {
				return nil, fmt.Errorf("failed to decode recommendations: %w", err)
			}
		}
		assessments = append(assessments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read risk assessments: %w", err)
	}
	return assessments, nil
}

func marshalFactors(factors []models.RiskFactor) (interface{}, error) {
	if len(factors) == 0 {
		return nil, nil
	}
	return json.Marshal(factors)
}

func marshalRecommendations(recommendations []string) (interface{}, error) {
	if len(recommendations) == 0 {
		return nil, nil
	}
	return json.Marshal(recommendations)
}
