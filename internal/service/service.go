package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkravtsov/debtor-risk-service/internal/integrations/predictor"
	"github.com/mkravtsov/debtor-risk-service/internal/models"
	"github.com/mkravtsov/debtor-risk-service/internal/repository"
	"github.com/sirupsen/logrus"
)

// Repository is the persistence surface the service depends on
type Repository interface {
	CreateDebtor(debtor *models.Debtor) error
	FindDebtorByID(id int64) (*models.Debtor, error)
	FindDebtorByIDNumber(idNumber string) (*models.Debtor, error)
	CreateAssessment(assessment *models.RiskAssessment) error
	FindAssessmentsByDebtorID(debtorID int64) ([]models.RiskAssessment, error)
}

// Predictor produces a risk prediction for a debtor profile
type Predictor interface {
	Predict(ctx context.Context, profile *models.RiskProfile) (*models.RiskPredictionResponse, error)
}

// AlertSender notifies about high-risk assessment results
type AlertSender interface {
	SendHighRiskAlert(debtor *models.Debtor, result *models.RiskPredictionResponse) error
}

// Service handles business logic
type Service struct {
	repo      Repository
	predictor Predictor
	fallback  *FallbackAssessor
	alerts    AlertSender
	log       *logrus.Logger
}

// NewService initializes a new service. alerts may be nil when no alert
// recipient is configured.
func NewService(repo Repository, pred Predictor, fallback *FallbackAssessor, alerts AlertSender, log *logrus.Logger) *Service {
	return &Service{repo: repo, predictor: pred, fallback: fallback, alerts: alerts, log: log}
}

// CreateDebtor stores a new debtor, rejecting duplicate identity numbers
func (s *Service) CreateDebtor(input *models.DebtorInput) (*models.Debtor, error) {
	_, err := s.repo.FindDebtorByIDNumber(input.IDNumber)
	if err == nil {
		return nil, repository.ErrDuplicateDebtor
	}
	if !errors.Is(err, repository.ErrDebtorNotFound) {
		return nil, err
	}

	debtor := input.ToDebtor()
	if err := s.repo.CreateDebtor(debtor); err != nil {
		return nil, err
	}

	s.log.Infof("Debtor created: %s", debtor.IDNumber)
	return debtor, nil
}

// GetDebtorByID retrieves a debtor by primary key
func (s *Service) GetDebtorByID(id int64) (*models.Debtor, error) {
	return s.repo.FindDebtorByID(id)
}

// GetDebtorByIDNumber retrieves a debtor by identity number
func (s *Service) GetDebtorByIDNumber(idNumber string) (*models.Debtor, error) {
	return s.repo.FindDebtorByIDNumber(idNumber)
}

// GetDebtorAssessments returns the assessment history for an existing debtor
func (s *Service) GetDebtorAssessments(debtorID int64) ([]models.RiskAssessment, error) {
	if _, err := s.repo.FindDebtorByID(debtorID); err != nil {
		return nil, err
	}
	return s.repo.FindAssessmentsByDebtorID(debtorID)
}

// AssessDebtor creates a debtor record and immediately assesses it
func (s *Service) AssessDebtor(ctx context.Context, input *models.DebtorInput) (*models.RiskPredictionResponse, error) {
	debtor, err := s.CreateDebtor(input)
	if err != nil {
		return nil, err
	}
	return s.PredictRisk(ctx, debtor)
}

// PredictRisk obtains a risk prediction for the debtor, preferring the
// remote predictor and falling back to the local heuristic whenever the
// remote call is unavailable. The result is persisted before it is
// returned; a persistence failure is the one error path that surfaces.
func (s *Service) PredictRisk(ctx context.Context, debtor *models.Debtor) (*models.RiskPredictionResponse, error) {
	result, err := s.predictor.Predict(ctx, models.NewRiskProfile(debtor))
	if err != nil {
		if !errors.Is(err, predictor.ErrUnavailable) {
			return nil, err
		}
		s.log.Warnf("Remote predictor unavailable for debtor %s, using fallback assessment: %v", debtor.IDNumber, err)
		result = s.fallback.Assess(debtor)
	}

	assessment := &models.RiskAssessment{
		DebtorID:        debtor.ID,
		RiskScore:       result.RiskScore,
		RiskLevel:       result.RiskLevel,
		RiskFactors:     result.RiskFactors,
		Recommendations: result.Recommendations,
	}
	if err := s.repo.CreateAssessment(assessment); err != nil {
		return nil, fmt.Errorf("failed to persist risk assessment: %w", err)
	}
	s.log.Infof("Risk assessment stored for debtor %s: score=%d level=%s", debtor.IDNumber, result.RiskScore, result.RiskLevel)

	if result.RiskLevel == models.RiskLevelHigh && s.alerts != nil {
		if err := s.alerts.SendHighRiskAlert(debtor, result); err != nil {
			s.log.Warnf("Failed to send high-risk alert for debtor %s: %v", debtor.IDNumber, err)
		}
	}

	return result, nil
}
