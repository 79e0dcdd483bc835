package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	budgeterrors "reqflow/contexts/talent-acquisition/budget-ledger-service/domain/errors"
	requisitionerrors "reqflow/contexts/talent-acquisition/requisition-service/domain/errors"
	requisitionhttp "reqflow/contexts/talent-acquisition/requisition-service/transport/http"
)

func (s *Server) handleCreateRequisition(w http.ResponseWriter, r *http.Request) {
	tenantID, userID, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req requisitionhttp.CreateRequisitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRequisitionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = r.Header.Get("Idempotency-Key")
	}

	resp, err := s.requisitions.Handler.CreateRequisitionHandler(r.Context(), tenantID, userID, req)
	if err != nil {
		writeRequisitionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListRequisitions(w http.ResponseWriter, r *http.Request) {
	tenantID := r.Header.Get("X-Tenant-Id")
	query := r.URL.Query()
	resp, err := s.requisitions.Handler.ListRequisitionsHandler(
		r.Context(),
		tenantID,
		query.Get("department_id"),
		query.Get("status"),
	)
	if err != nil {
		writeRequisitionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetRequisition(w http.ResponseWriter, r *http.Request) {
	resp, err := s.requisitions.Handler.GetRequisitionHandler(r.Context(), r.PathValue("requisition_id"))
	if err != nil {
		writeRequisitionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteRequisition(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if err := s.requisitions.Handler.DeleteRequisitionHandler(r.Context(), r.PathValue("requisition_id"), userID); err != nil {
		writeRequisitionDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSubmitRequisition(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	resp, err := s.requisitions.Handler.SubmitRequisitionHandler(r.Context(), r.PathValue("requisition_id"), userID)
	if err != nil {
		writeRequisitionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDecideApproval(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	var req requisitionhttp.DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRequisitionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.requisitions.Handler.DecideApprovalHandler(r.Context(), r.PathValue("requisition_id"), userID, req)
	if err != nil {
		writeRequisitionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCancelRequisition(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	var req requisitionhttp.CancelRequisitionRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	resp, err := s.requisitions.Handler.CancelRequisitionHandler(r.Context(), r.PathValue("requisition_id"), userID, req)
	if err != nil {
		writeRequisitionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHoldRequisition(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	var req requisitionhttp.HoldRequisitionRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	resp, err := s.requisitions.Handler.HoldRequisitionHandler(r.Context(), r.PathValue("requisition_id"), userID, req)
	if err != nil {
		writeRequisitionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResumeRequisition(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	resp, err := s.requisitions.Handler.ResumeRequisitionHandler(r.Context(), r.PathValue("requisition_id"), userID)
	if err != nil {
		writeRequisitionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePostRequisition(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	var req requisitionhttp.PostRequisitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRequisitionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.requisitions.Handler.PostRequisitionHandler(r.Context(), r.PathValue("requisition_id"), userID, req)
	if err != nil {
		writeRequisitionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFillRequisition(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	var req requisitionhttp.FillRequisitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRequisitionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.requisitions.Handler.FillRequisitionHandler(r.Context(), r.PathValue("requisition_id"), userID, req)
	if err != nil {
		writeRequisitionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePendingApprovals(w http.ResponseWriter, r *http.Request) {
	tenantID, userID, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	resp, err := s.requisitions.Handler.PendingApprovalsHandler(r.Context(), tenantID, userID)
	if err != nil {
		writeRequisitionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	tenantID := r.Header.Get("X-Tenant-Id")
	if strings.TrimSpace(tenantID) == "" {
		writeRequisitionError(w, http.StatusUnauthorized, "missing_tenant", "X-Tenant-Id header is required")
		return
	}
	var req requisitionhttp.CreateRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRequisitionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.requisitions.Handler.CreateRuleHandler(r.Context(), tenantID, req)
	if err != nil {
		writeRequisitionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleDeactivateRule(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if err := s.requisitions.Handler.DeactivateRuleHandler(r.Context(), r.PathValue("rule_id"), userID); err != nil {
		writeRequisitionDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// requireIdentity pulls the tenant and acting user off the request headers.
func requireIdentity(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	tenantID := strings.TrimSpace(r.Header.Get("X-Tenant-Id"))
	userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if userID == "" {
		writeRequisitionError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return "", "", false
	}
	return tenantID, userID, true
}

func writeRequisitionDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, requisitionerrors.ErrRequisitionNotFound):
		writeRequisitionError(w, http.StatusNotFound, "requisition_not_found", err.Error())
	case errors.Is(err, requisitionerrors.ErrRuleNotFound):
		writeRequisitionError(w, http.StatusNotFound, "rule_not_found", err.Error())
	case errors.Is(err, requisitionerrors.ErrInvalidRequisitionInput),
		errors.Is(err, requisitionerrors.ErrInvalidRuleInput),
		errors.Is(err, requisitionerrors.ErrUnknownRuleCondition),
		errors.Is(err, requisitionerrors.ErrDelegateRequired):
		writeRequisitionError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, requisitionerrors.ErrIdempotencyKeyRequired):
		writeRequisitionError(w, http.StatusBadRequest, "idempotency_key_required", err.Error())
	case errors.Is(err, requisitionerrors.ErrIdempotencyKeyConflict):
		writeRequisitionError(w, http.StatusConflict, "idempotency_conflict", err.Error())
	case errors.Is(err, requisitionerrors.ErrInvalidStateTransition):
		writeRequisitionError(w, http.StatusConflict, "invalid_state_transition", err.Error())
	case errors.Is(err, requisitionerrors.ErrConcurrentUpdate):
		writeRequisitionError(w, http.StatusConflict, "concurrent_update", err.Error())
	case errors.Is(err, requisitionerrors.ErrApprovalNotPending):
		writeRequisitionError(w, http.StatusConflict, "approval_not_pending", err.Error())
	case errors.Is(err, requisitionerrors.ErrNotAuthorizedApprover):
		writeRequisitionError(w, http.StatusForbidden, "not_authorized_approver", err.Error())
	case errors.Is(err, budgeterrors.ErrInsufficientBudget):
		writeRequisitionError(w, http.StatusUnprocessableEntity, "insufficient_budget", err.Error())
	case errors.Is(err, budgeterrors.ErrDuplicateReservation):
		writeRequisitionError(w, http.StatusConflict, "duplicate_reservation", err.Error())
	case errors.Is(err, budgeterrors.ErrCostCenterNotFound),
		errors.Is(err, budgeterrors.ErrInvalidJobGrade):
		writeRequisitionError(w, http.StatusUnprocessableEntity, "budget_reference_invalid", err.Error())
	case errors.Is(err, budgeterrors.ErrCostCenterInactive),
		errors.Is(err, budgeterrors.ErrSalaryBelowGradeMin),
		errors.Is(err, budgeterrors.ErrSalaryAboveGradeMax),
		errors.Is(err, budgeterrors.ErrInvertedSalaryRange):
		writeRequisitionError(w, http.StatusUnprocessableEntity, "budget_validation_failed", err.Error())
	case errors.Is(err, budgeterrors.ErrNoActiveReservation):
		writeRequisitionError(w, http.StatusConflict, "no_active_reservation", err.Error())
	default:
		writeRequisitionError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
