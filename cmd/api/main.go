package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"database/sql"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/mkravtsov/debtor-risk-service/internal/config"
	"github.com/mkravtsov/debtor-risk-service/internal/handler"
	"github.com/mkravtsov/debtor-risk-service/internal/integrations/predictor"
	"github.com/mkravtsov/debtor-risk-service/internal/middleware"
	"github.com/mkravtsov/debtor-risk-service/internal/repository"
	"github.com/mkravtsov/debtor-risk-service/internal/service"
	"github.com/mkravtsov/debtor-risk-service/internal/utils/email"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db)
	predictorClient := predictor.NewClient(cfg, logger)
	fallback := service.NewFallbackAssessor(service.NewScoreSource())
	var alerts service.AlertSender
	if cfg.RiskAlertEmail != "" {
		alerts = email.NewSender(cfg, logger)
	}
	svc := service.NewService(repo, predictorClient, fallback, alerts, logger)
	h := handler.NewHandler(svc, logger)

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	h.RegisterRoutes(r)
	// Health endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"status": "healthy"}
		code := http.StatusOK
		if err := db.Ping(); err != nil {
			status["status"] = "unhealthy"
			status["database"] = "disconnected"
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(status)
	}).Methods("GET")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
