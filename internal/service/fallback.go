package service

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/mkravtsov/debtor-risk-service/internal/models"
)

// ScoreSource yields a random integer in [min, max] inclusive. Injected so
// tests can pin exact scores.
type ScoreSource interface {
	IntInRange(min, max int) int
}

type mathRandSource struct {
	rng *rand.Rand
}

// NewScoreSource returns the production score source backed by math/rand
func NewScoreSource() ScoreSource {
	return &mathRandSource{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (s *mathRandSource) IntInRange(min, max int) int {
	return s.rng.Intn(max-min+1) + min
}

// FallbackAssessor computes a local risk assessment from the debtor's
// financial attributes when the remote predictor cannot. It never fails:
// callers guarantee MonthlyIncome > 0 before a debtor reaches it.
type FallbackAssessor struct {
	scores ScoreSource
}

// NewFallbackAssessor initializes a fallback assessor
func NewFallbackAssessor(scores ScoreSource) *FallbackAssessor {
	return &FallbackAssessor{scores: scores}
}

// Assess computes a risk prediction for the debtor. The score is drawn from
// a band determined by the debt-to-income ratio, then escalated for
// unemployment and poor credit; factor and recommendation order is fixed.
func (f *FallbackAssessor) Assess(debtor *models.Debtor) *models.RiskPredictionResponse {
	ratio := debtor.DebtAmount / debtor.MonthlyIncome

	var score int
	var level string
	switch {
	case ratio <= 0.3:
		score = f.scores.IntInRange(1, 30)
		level = models.RiskLevelLow
	case ratio <= 0.6:
		score = f.scores.IntInRange(31, 70)
		level = models.RiskLevelMedium
	default:
		score = f.scores.IntInRange(71, 100)
		level = models.RiskLevelHigh
	}

	if debtor.EmploymentStatus == models.EmploymentUnemployed {
		score = min(score+20, 100)
		if score > 70 {
			level = models.RiskLevelHigh
		}
	}
	if debtor.CreditScore != nil && *debtor.CreditScore < 600 {
		score = min(score+15, 100)
		if score > 70 {
			level = models.RiskLevelHigh
		}
	}

	return &models.RiskPredictionResponse{
		RiskScore:       score,
		RiskLevel:       level,
		RiskFactors:     riskFactors(debtor, ratio),
		Recommendations: recommendations(debtor, ratio),
	}
}

func riskFactors(debtor *models.Debtor, ratio float64) []models.RiskFactor {
	ratioImpact := models.ImpactLow
	ratioVerdict := "is within acceptable range"
	if ratio > 0.5 {
		ratioImpact = models.ImpactHigh
		ratioVerdict = "indicates potential payment difficulties"
	} else if ratio > 0.3 {
		ratioImpact = models.ImpactMedium
	}

	employmentImpact := models.ImpactMedium
	employmentScore := 40.0
	employmentDesc := "Employment status may affect payment capability"
	switch debtor.EmploymentStatus {
	case models.EmploymentEmployed:
		employmentScore = 20
		employmentDesc = "Stable employment status"
	case models.EmploymentUnemployed:
		employmentImpact = models.ImpactHigh
		employmentScore = 80
	}

	factors := []models.RiskFactor{
		{
			Name:        "Debt-to-Income Ratio",
			Impact:      ratioImpact,
			Score:       math.Min(ratio*100, 100),
			Description: fmt.Sprintf("Current ratio of %.1f%% %s", ratio*100, ratioVerdict),
		},
		{
			Name:        "Employment Status",
			Impact:      employmentImpact,
			Score:       employmentScore,
			Description: employmentDesc,
		},
	}

	if debtor.CreditScore != nil {
		creditScore := *debtor.CreditScore
		factor := models.RiskFactor{
			Name:        "Credit Score",
			Impact:      models.ImpactLow,
			Score:       20,
			Description: fmt.Sprintf("Credit score of %d demonstrates good credit history", creditScore),
		}
		if creditScore < 600 {
			factor.Impact = models.ImpactHigh
			factor.Score = 80
			factor.Description = fmt.Sprintf("Credit score of %d indicates poor credit history", creditScore)
		} else if creditScore < 700 {
			factor.Impact = models.ImpactMedium
			factor.Score = 50
			factor.Description = fmt.Sprintf("Credit score of %d shows fair credit standing", creditScore)
		}
		factors = append(factors, factor)
	}

	return factors
}

func recommendations(debtor *models.Debtor, ratio float64) []string {
	recs := []string{"Monitor payment patterns closely"}
	if ratio > 0.5 {
		recs = append(recs, "Consider restructuring payment terms")
	} else {
		recs = append(recs, "Maintain current payment schedule")
	}
	recs = append(recs, "Request regular income verification")
	if debtor.EmploymentStatus == models.EmploymentUnemployed {
		recs = append(recs, "Require employment verification before extending credit")
	}
	if debtor.CreditScore != nil && *debtor.CreditScore < 600 {
		recs = append(recs, "Implement stricter monitoring due to poor credit history")
	}
	return recs
}
