package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	budgeterrors "reqflow/contexts/talent-acquisition/budget-ledger-service/domain/errors"
	budgethttp "reqflow/contexts/talent-acquisition/budget-ledger-service/transport/http"
)

func (s *Server) handleCreateCostCenter(w http.ResponseWriter, r *http.Request) {
	tenantID := strings.TrimSpace(r.Header.Get("X-Tenant-Id"))
	if tenantID == "" {
		writeBudgetError(w, http.StatusUnauthorized, "missing_tenant", "X-Tenant-Id header is required")
		return
	}
	var req budgethttp.CreateCostCenterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBudgetError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.budget.Handler.CreateCostCenterHandler(r.Context(), tenantID, req)
	if err != nil {
		writeBudgetDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetCostCenter(w http.ResponseWriter, r *http.Request) {
	resp, err := s.budget.Handler.GetCostCenterHandler(r.Context(), r.PathValue("cost_center_id"))
	if err != nil {
		writeBudgetDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateJobGrade(w http.ResponseWriter, r *http.Request) {
	tenantID := strings.TrimSpace(r.Header.Get("X-Tenant-Id"))
	if tenantID == "" {
		writeBudgetError(w, http.StatusUnauthorized, "missing_tenant", "X-Tenant-Id header is required")
		return
	}
	var req budgethttp.CreateJobGradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBudgetError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.budget.Handler.CreateJobGradeHandler(r.Context(), tenantID, req)
	if err != nil {
		writeBudgetDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListReservations(w http.ResponseWriter, r *http.Request) {
	resp, err := s.budget.Handler.ListReservationsHandler(r.Context(), r.PathValue("requisition_id"))
	if err != nil {
		writeBudgetDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeBudgetDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, budgeterrors.ErrCostCenterNotFound),
		errors.Is(err, budgeterrors.ErrInvalidJobGrade):
		writeBudgetError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, budgeterrors.ErrInvalidLedgerInput),
		errors.Is(err, budgeterrors.ErrInvertedSalaryRange):
		writeBudgetError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, budgeterrors.ErrCostCenterInactive),
		errors.Is(err, budgeterrors.ErrSalaryBelowGradeMin),
		errors.Is(err, budgeterrors.ErrSalaryAboveGradeMax):
		writeBudgetError(w, http.StatusUnprocessableEntity, "validation_failed", err.Error())
	case errors.Is(err, budgeterrors.ErrInsufficientBudget):
		writeBudgetError(w, http.StatusUnprocessableEntity, "insufficient_budget", err.Error())
	case errors.Is(err, budgeterrors.ErrDuplicateReservation),
		errors.Is(err, budgeterrors.ErrNoActiveReservation):
		writeBudgetError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeBudgetError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeBudgetError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, budgethttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
