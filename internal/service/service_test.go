package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/mkravtsov/debtor-risk-service/internal/integrations/predictor"
	"github.com/mkravtsov/debtor-risk-service/internal/models"
	"github.com/mkravtsov/debtor-risk-service/internal/repository"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	debtors             map[int64]*models.Debtor
	assessments         []*models.RiskAssessment
	createAssessmentErr error
	nextID              int64
}

func newStubRepo() *stubRepo {
	return &stubRepo{debtors: make(map[int64]*models.Debtor)}
}

func (r *stubRepo) CreateDebtor(debtor *models.Debtor) error {
	r.nextID++
	debtor.ID = r.nextID
	debtor.CreatedAt = time.Now()
	r.debtors[debtor.ID] = debtor
	return nil
}

func (r *stubRepo) FindDebtorByID(id int64) (*models.Debtor, error) {
	if d, ok := r.debtors[id]; ok {
		return d, nil
	}
	return nil, repository.ErrDebtorNotFound
}

func (r *stubRepo) FindDebtorByIDNumber(idNumber string) (*models.Debtor, error) {
	for _, d := range r.debtors {
		if d.IDNumber == idNumber {
			return d, nil
		}
	}
	return nil, repository.ErrDebtorNotFound
}

func (r *stubRepo) CreateAssessment(assessment *models.RiskAssessment) error {
	if r.createAssessmentErr != nil {
		return r.createAssessmentErr
	}
	assessment.ID = int64(len(r.assessments) + 1)
	assessment.CreatedAt = time.Now()
	r.assessments = append(r.assessments, assessment)
	return nil
}

func (r *stubRepo) FindAssessmentsByDebtorID(debtorID int64) ([]models.RiskAssessment, error) {
	var out []models.RiskAssessment
	for _, a := range r.assessments {
		if a.DebtorID == debtorID {
			out = append(out, *a)
		}
	}
	return out, nil
}

type stubPredictor struct {
	resp   *models.RiskPredictionResponse
	err    error
	called int
}

func (p *stubPredictor) Predict(ctx context.Context, profile *models.RiskProfile) (*models.RiskPredictionResponse, error) {
	p.called++
	if p.err != nil {
		return nil, p.err
	}
	return p.resp, nil
}

type stubAlerts struct {
	sent []string
	err  error
}

func (a *stubAlerts) SendHighRiskAlert(debtor *models.Debtor, result *models.RiskPredictionResponse) error {
	a.sent = append(a.sent, debtor.IDNumber)
	return a.err
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestService(repo *stubRepo, pred Predictor, alerts AlertSender) *Service {
	return NewService(repo, pred, NewFallbackAssessor(fixedScore(12)), alerts, testLogger())
}

func validInput() *models.DebtorInput {
	return &models.DebtorInput{
		IDNumber:         "900101300123",
		FullName:         "Jane Doe",
		MonthlyIncome:    10000,
		DebtAmount:       2000,
		EmploymentStatus: models.EmploymentEmployed,
	}
}

func TestPredictRisk_RemoteSuccess(t *testing.T) {
	repo := newStubRepo()
	remote := &models.RiskPredictionResponse{
		RiskScore: 42,
		RiskLevel: models.RiskLevelMedium,
		RiskFactors: []models.RiskFactor{
			{Name: "Debt-to-Income Ratio", Impact: models.ImpactMedium, Score: 40, Description: "Moderate debt load"},
		},
		Recommendations: []string{"Monitor payment patterns closely"},
	}
	svc := newTestService(repo, &stubPredictor{resp: remote}, nil)
	debtor := newDebtor(10000, 4000, models.EmploymentEmployed, nil)

	result, err := svc.PredictRisk(context.Background(), debtor)

	require.NoError(t, err)
	assert.Equal(t, remote, result)
	require.Len(t, repo.assessments, 1)
	stored := repo.assessments[0]
	assert.Equal(t, debtor.ID, stored.DebtorID)
	assert.Equal(t, 42, stored.RiskScore)
	assert.Equal(t, models.RiskLevelMedium, stored.RiskLevel)
	assert.Equal(t, remote.RiskFactors, stored.RiskFactors)
	assert.Equal(t, remote.Recommendations, stored.Recommendations)
}

func TestPredictRisk_FallbackWhenUnavailable(t *testing.T) {
	repo := newStubRepo()
	pred := &stubPredictor{err: fmt.Errorf("%w: unexpected status code: 500", predictor.ErrUnavailable)}
	svc := newTestService(repo, pred, nil)
	debtor := newDebtor(10000, 2000, models.EmploymentEmployed, nil)

	result, err := svc.PredictRisk(context.Background(), debtor)

	require.NoError(t, err)
	assert.NoError(t, result.Validate())
	assert.Equal(t, 12, result.RiskScore)
	assert.Equal(t, models.RiskLevelLow, result.RiskLevel)
	require.Len(t, repo.assessments, 1)
	assert.Equal(t, 12, repo.assessments[0].RiskScore)
}

func TestPredictRisk_UnexpectedErrorSurfaces(t *testing.T) {
	repo := newStubRepo()
	pred := &stubPredictor{err: errors.New("profile encoding defect")}
	svc := newTestService(repo, pred, nil)

	_, err := svc.PredictRisk(context.Background(), newDebtor(10000, 2000, models.EmploymentEmployed, nil))

	require.Error(t, err)
	assert.Empty(t, repo.assessments)
}

func TestPredictRisk_PersistenceFailureSurfaces(t *testing.T) {
	repo := newStubRepo()
	repo.createAssessmentErr = errors.New("connection reset")
	remote := &models.RiskPredictionResponse{RiskScore: 42, RiskLevel: models.RiskLevelMedium}
	svc := newTestService(repo, &stubPredictor{resp: remote}, nil)

	_, err := svc.PredictRisk(context.Background(), newDebtor(10000, 4000, models.EmploymentEmployed, nil))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to persist risk assessment")
}

func TestPredictRisk_HighRiskTriggersAlert(t *testing.T) {
	repo := newStubRepo()
	alerts := &stubAlerts{}
	remote := &models.RiskPredictionResponse{RiskScore: 92, RiskLevel: models.RiskLevelHigh}
	svc := newTestService(repo, &stubPredictor{resp: remote}, alerts)
	debtor := newDebtor(5000, 4000, models.EmploymentUnemployed, nil)

	_, err := svc.PredictRisk(context.Background(), debtor)

	require.NoError(t, err)
	assert.Equal(t, []string{debtor.IDNumber}, alerts.sent)
}

func TestPredictRisk_AlertFailureDoesNotSurface(t *testing.T) {
	repo := newStubRepo()
	alerts := &stubAlerts{err: errors.New("smtp down")}
	remote := &models.RiskPredictionResponse{RiskScore: 92, RiskLevel: models.RiskLevelHigh}
	svc := newTestService(repo, &stubPredictor{resp: remote}, alerts)

	result, err := svc.PredictRisk(context.Background(), newDebtor(5000, 4000, models.EmploymentUnemployed, nil))

	require.NoError(t, err)
	assert.Equal(t, remote, result)
}

func TestCreateDebtor_RejectsDuplicateIDNumber(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo, &stubPredictor{}, nil)

	_, err := svc.CreateDebtor(validInput())
	require.NoError(t, err)

	_, err = svc.CreateDebtor(validInput())
	assert.ErrorIs(t, err, repository.ErrDuplicateDebtor)
	assert.Len(t, repo.debtors, 1)
}

func TestGetDebtorAssessments_MissingDebtor(t *testing.T) {
	svc := newTestService(newStubRepo(), &stubPredictor{}, nil)

	_, err := svc.GetDebtorAssessments(99)

	assert.ErrorIs(t, err, repository.ErrDebtorNotFound)
}

func TestAssessDebtor_CreatesAndAssesses(t *testing.T) {
	repo := newStubRepo()
	remote := &models.RiskPredictionResponse{RiskScore: 25, RiskLevel: models.RiskLevelLow}
	svc := newTestService(repo, &stubPredictor{resp: remote}, nil)

	result, err := svc.AssessDebtor(context.Background(), validInput())

	require.NoError(t, err)
	assert.Equal(t, remote, result)
	require.Len(t, repo.debtors, 1)
	require.Len(t, repo.assessments, 1)
	assert.Equal(t, repo.assessments[0].DebtorID, repo.debtors[1].ID)
}
