package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	Port             string
	DBConn           string
	LogLevel         string
	PredictorURL     string
	PredictorAPIKey  string
	PredictorTimeout time.Duration
	SMTPHost         string
	SMTPPort         string
	SMTPUsername     string
	SMTPPassword     string
	SenderEmail      string
	RiskAlertEmail   string
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		DBConn:          getEnv("DB_CONN", "host=localhost port=5436 user=test password=test dbname=debtors sslmode=disable"),
		LogLevel:        getEnv("LOG_LEVEL", "INFO"),
		PredictorURL:    getEnv("PREDICTOR_URL", "http://localhost:5000/api/predict-debtor-risk"),
		PredictorAPIKey: getEnv("PREDICTOR_API_KEY", ""),
		SMTPHost:        getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:        getEnv("SMTP_PORT", "587"),
		SMTPUsername:    getEnv("SMTP_USERNAME", ""),
		SMTPPassword:    getEnv("SMTP_PASSWORD", ""),
		SenderEmail:     getEnv("SENDER_EMAIL", ""),
		RiskAlertEmail:  getEnv("RISK_ALERT_EMAIL", ""),
	}

	timeoutSec, err := strconv.Atoi(getEnv("PREDICTOR_TIMEOUT_SECONDS", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid PREDICTOR_TIMEOUT_SECONDS: %w", err)
	}
	if timeoutSec <= 0 {
		return nil, fmt.Errorf("PREDICTOR_TIMEOUT_SECONDS must be positive, got %d", timeoutSec)
	}
	cfg.PredictorTimeout = time.Duration(timeoutSec) * time.Second

	if cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	if cfg.PredictorURL == "" {
		return nil, fmt.Errorf("PREDICTOR_URL is required")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
