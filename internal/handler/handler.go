package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/mkravtsov/debtor-risk-service/internal/models"
	"github.com/mkravtsov/debtor-risk-service/internal/repository"
	"github.com/mkravtsov/debtor-risk-service/internal/service"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	svc *service.Service
	log *logrus.Logger
}

func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// RegisterRoutes attaches all API routes to the router
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/debtors", h.CreateDebtor).Methods(http.MethodPost)
	r.HandleFunc("/api/debtors/{id:[0-9]+}", h.GetDebtor).Methods(http.MethodGet)
	r.HandleFunc("/api/debtors/{id:[0-9]+}/assessments", h.GetDebtorAssessments).Methods(http.MethodGet)
	r.HandleFunc("/api/risk-assessments", h.PredictDebtorRisk).Methods(http.MethodPost)
}

// CreateDebtor handles debtor registration
func (h *Handler) CreateDebtor(w http.ResponseWriter, r *http.Request) {
	var input models.DebtorInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := input.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	debtor, err := h.svc.CreateDebtor(&input)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, debtor)
}

// GetDebtor returns a single debtor by id
func (h *Handler) GetDebtor(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid debtor id")
		return
	}

	debtor, err := h.svc.GetDebtorByID(id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, debtor)
}

// GetDebtorAssessments returns the assessment history for a debtor
func (h *Handler) GetDebtorAssessments(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid debtor id")
		return
	}

	assessments, err := h.svc.GetDebtorAssessments(id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	if assessments == nil {
		assessments = []models.RiskAssessment{}
	}
	respondJSON(w, http.StatusOK, assessments)
}

// PredictDebtorRisk registers a debtor and runs a risk assessment in one call
func (h *Handler) PredictDebtorRisk(w http.ResponseWriter, r *http.Request) {
	var input models.DebtorInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := input.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.svc.AssessDebtor(r.Context(), &input)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrDebtorNotFound):
		respondError(w, http.StatusNotFound, "debtor not found")
	case errors.Is(err, repository.ErrDuplicateDebtor):
		respondError(w, http.StatusConflict, "debtor with this id number already exists")
	default:
		h.log.Errorf("Request failed: %v", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}
