package email

import (
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
	"github.com/mkravtsov/debtor-risk-service/internal/config"
	"github.com/mkravtsov/debtor-risk-service/internal/models"
	"github.com/sirupsen/logrus"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendHighRiskAlert notifies the configured recipient that a debtor was
// assessed as high risk. Sending is best-effort; the engine logs failures
// and moves on.
func (s *Sender) SendHighRiskAlert(debtor *models.Debtor, result *models.RiskPredictionResponse) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{s.cfg.RiskAlertEmail}
	e.Subject = "High Risk Debtor Assessment"

	body := fmt.Sprintf(
		"Debtor %s (ID number %s) has been assessed as HIGH risk with a score of %d.\n\n",
		debtor.FullName, debtor.IDNumber, result.RiskScore,
	)
	if len(result.Recommendations) > 0 {
		body += "Recommendations:\n"
		for _, rec := range result.Recommendations {
			body += fmt.Sprintf("- %s\n", rec)
		}
	}
	body += "\nBest regards,\nDebtor Risk Service"
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send high-risk alert to %s: %v", s.cfg.RiskAlertEmail, err)
		return fmt.Errorf("failed to send high-risk alert: %w", err)
	}

	s.logger.Infof("High-risk alert sent for debtor %s", debtor.IDNumber)
	return nil
}
