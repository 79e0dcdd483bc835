package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"reqflow/contexts/talent-acquisition/requisition-service/application/commands"
	"reqflow/contexts/talent-acquisition/requisition-service/application/queries"
	"reqflow/contexts/talent-acquisition/requisition-service/domain/entities"
	httptransport "reqflow/contexts/talent-acquisition/requisition-service/transport/http"
)

// Handler adapts the transport DTOs onto the use cases. It carries no
// behavior of its own beyond mapping.
type Handler struct {
	Create       commands.CreateRequisitionUseCase
	Submit       commands.SubmitRequisitionUseCase
	Decide       commands.DecideApprovalUseCase
	ChangeStatus commands.ChangeStatusUseCase
	Post         commands.PostRequisitionUseCase
	Fill         commands.FillRequisitionUseCase
	Delete       commands.DeleteRequisitionUseCase
	Rules        commands.AuthorRuleUseCase
	Get          queries.GetRequisitionUseCase
	List         queries.ListRequisitionsUseCase
	Inbox        queries.PendingApprovalsUseCase
	Logger       *slog.Logger
}

func (h Handler) CreateRequisitionHandler(
	ctx context.Context,
	tenantID, requestedBy string,
	req httptransport.CreateRequisitionRequest,
) (httptransport.RequisitionResponse, error) {
	created, err := h.Create.Execute(ctx, commands.CreateRequisitionCommand{
		TenantID:        tenantID,
		RequestedBy:     requestedBy,
		IdempotencyKey:  req.IdempotencyKey,
		Title:           req.Title,
		RequisitionType: req.RequisitionType,
		Priority:        req.Priority,
		DepartmentID:    req.DepartmentID,
		BusinessUnitID:  req.BusinessUnitID,
		CostCenterID:    req.CostCenterID,
		JobGradeID:      req.JobGradeID,
		Headcount:       req.Headcount,
		SalaryMin:       req.SalaryMin,
		SalaryMax:       req.SalaryMax,
		Currency:        req.Currency,
	})
	if err != nil {
		return httptransport.RequisitionResponse{}, err
	}
	return mapRequisition(created.Requisition), nil
}

func (h Handler) SubmitRequisitionHandler(
	ctx context.Context,
	requisitionID, actorID string,
) (httptransport.SubmitRequisitionResponse, error) {
	result, err := h.Submit.Execute(ctx, commands.SubmitRequisitionCommand{
		RequisitionID: requisitionID,
		ActorID:       actorID,
	})
	if err != nil {
		return httptransport.SubmitRequisitionResponse{}, err
	}
	return httptransport.SubmitRequisitionResponse{
		Requisition:      mapRequisition(result.Requisition),
		TotalLevels:      result.TotalLevels,
		AutoApproved:     result.AutoApproved,
		PendingApprovers: result.PendingApprovers,
	}, nil
}

func (h Handler) DecideApprovalHandler(
	ctx context.Context,
	requisitionID, approverID string,
	req httptransport.DecisionRequest,
) (httptransport.DecisionResponse, error) {
	result, err := h.Decide.Execute(ctx, commands.DecideApprovalCommand{
		RequisitionID: requisitionID,
		ApproverID:    approverID,
		Decision:      entities.ApprovalDecision(req.Decision),
		Comments:      req.Comments,
		DelegateTo: entities.Approver{
			UserID: req.DelegateTo.UserID,
			Name:   req.DelegateTo.Name,
			Email:  req.DelegateTo.Email,
		},
	})
	if err != nil {
		return httptransport.DecisionResponse{}, err
	}
	return httptransport.DecisionResponse{
		Requisition:      mapRequisition(result.Requisition),
		Approval:         mapApproval(result.Transaction),
		IsFullyApproved:  result.IsFullyApproved,
		NextLevel:        result.NextLevel,
		PendingApprovers: result.PendingApprovers,
	}, nil
}

func (h Handler) CancelRequisitionHandler(
	ctx context.Context,
	requisitionID, actorID string,
	req httptransport.CancelRequisitionRequest,
) (httptransport.RequisitionResponse, error) {
	updated, err := h.ChangeStatus.Cancel(ctx, commands.CancelRequisitionCommand{
		RequisitionID: requisitionID,
		ActorID:       actorID,
		Reason:        req.Reason,
	})
	if err != nil {
		return httptransport.RequisitionResponse{}, err
	}
	return mapRequisition(updated), nil
}

func (h Handler) HoldRequisitionHandler(
	ctx context.Context,
	requisitionID, actorID string,
	req httptransport.HoldRequisitionRequest,
) (httptransport.RequisitionResponse, error) {
	updated, err := h.ChangeStatus.Hold(ctx, commands.HoldRequisitionCommand{
		RequisitionID: requisitionID,
		ActorID:       actorID,
		Reason:        req.Reason,
	})
	if err != nil {
		return httptransport.RequisitionResponse{}, err
	}
	return mapRequisition(updated), nil
}

func (h Handler) ResumeRequisitionHandler(
	ctx context.Context,
	requisitionID, actorID string,
) (httptransport.RequisitionResponse, error) {
	updated, err := h.ChangeStatus.Resume(ctx, commands.ResumeRequisitionCommand{
		RequisitionID: requisitionID,
		ActorID:       actorID,
	})
	if err != nil {
		return httptransport.RequisitionResponse{}, err
	}
	return mapRequisition(updated), nil
}

func (h Handler) PostRequisitionHandler(
	ctx context.Context,
	requisitionID, actorID string,
	req httptransport.PostRequisitionRequest,
) (httptransport.RequisitionResponse, error) {
	updated, err := h.Post.Execute(ctx, commands.PostRequisitionCommand{
		RequisitionID: requisitionID,
		ActorID:       actorID,
		Channels:      req.Channels,
	})
	if err != nil {
		return httptransport.RequisitionResponse{}, err
	}
	return mapRequisition(updated), nil
}

func (h Handler) FillRequisitionHandler(
	ctx context.Context,
	requisitionID, actorID string,
	req httptransport.FillRequisitionRequest,
) (httptransport.RequisitionResponse, error) {
	updated, err := h.Fill.Execute(ctx, commands.FillRequisitionCommand{
		RequisitionID: requisitionID,
		ActorID:       actorID,
		HiresMade:     req.HiresMade,
	})
	if err != nil {
		return httptransport.RequisitionResponse{}, err
	}
	return mapRequisition(updated), nil
}

func (h Handler) DeleteRequisitionHandler(ctx context.Context, requisitionID, actorID string) error {
	return h.Delete.Execute(ctx, commands.DeleteRequisitionCommand{
		RequisitionID: requisitionID,
		ActorID:       actorID,
	})
}

func (h Handler) CreateRuleHandler(
	ctx context.Context,
	tenantID string,
	req httptransport.CreateRuleRequest,
) (httptransport.RuleResponse, error) {
	approvers := make([]entities.Approver, 0, len(req.CustomApprovers))
	for _, a := range req.CustomApprovers {
		approvers = append(approvers, entities.Approver{UserID: a.UserID, Name: a.Name, Email: a.Email})
	}
	rule, err := h.Rules.Create(ctx, commands.CreateRuleCommand{
		TenantID:          tenantID,
		Name:              req.Name,
		Condition:         req.Condition,
		ApproverRole:      req.ApproverRole,
		CustomApprovers:   approvers,
		Level:             req.Level,
		SLAHours:          req.SLAHours,
		EscalationEnabled: req.EscalationEnabled,
		EscalationHours:   req.EscalationHours,
		EscalateTo:        req.EscalateTo,
		Priority:          req.Priority,
		EffectiveFrom:     req.EffectiveFrom,
		EffectiveUntil:    req.EffectiveUntil,
	})
	if err != nil {
		return httptransport.RuleResponse{}, err
	}
	return mapRule(rule)
}

func (h Handler) DeactivateRuleHandler(ctx context.Context, ruleID, actorID string) error {
	return h.Rules.Deactivate(ctx, commands.DeactivateRuleCommand{RuleID: ruleID, ActorID: actorID})
}

func (h Handler) GetRequisitionHandler(ctx context.Context, requisitionID string) (httptransport.RequisitionDetailResponse, error) {
	detail, err := h.Get.Execute(ctx, queries.GetRequisitionQuery{RequisitionID: requisitionID})
	if err != nil {
		return httptransport.RequisitionDetailResponse{}, err
	}
	resp := httptransport.RequisitionDetailResponse{
		Requisition: mapRequisition(detail.Requisition),
		Approvals:   make([]httptransport.ApprovalDTO, 0, len(detail.Approvals)),
	}
	for _, tx := range detail.Approvals {
		resp.Approvals = append(resp.Approvals, mapApproval(tx))
	}
	return resp, nil
}

func (h Handler) ListRequisitionsHandler(
	ctx context.Context,
	tenantID, departmentID, status string,
) (httptransport.ListRequisitionsResponse, error) {
	items, err := h.List.Execute(ctx, queries.ListRequisitionsQuery{
		TenantID:     tenantID,
		DepartmentID: departmentID,
		Status:       status,
	})
	if err != nil {
		return httptransport.ListRequisitionsResponse{}, err
	}
	resp := httptransport.ListRequisitionsResponse{
		Requisitions: make([]httptransport.RequisitionResponse, 0, len(items)),
	}
	for _, item := range items {
		resp.Requisitions = append(resp.Requisitions, mapRequisition(item))
	}
	return resp, nil
}

func (h Handler) PendingApprovalsHandler(ctx context.Context, tenantID, userID string) (httptransport.PendingApprovalsResponse, error) {
	items, err := h.Inbox.Execute(ctx, queries.PendingApprovalsQuery{TenantID: tenantID, UserID: userID})
	if err != nil {
		return httptransport.PendingApprovalsResponse{}, err
	}
	resp := httptransport.PendingApprovalsResponse{
		Approvals: make([]httptransport.ApprovalDTO, 0, len(items)),
	}
	for _, tx := range items {
		resp.Approvals = append(resp.Approvals, mapApproval(tx))
	}
	return resp, nil
}

func mapRequisition(req entities.Requisition) httptransport.RequisitionResponse {
	resp := httptransport.RequisitionResponse{
		RequisitionID:        req.RequisitionID,
		TenantID:             req.TenantID,
		Title:                req.Title,
		RequisitionType:      req.RequisitionType,
		Status:               string(req.Status),
		Priority:             string(req.Priority),
		DepartmentID:         req.DepartmentID,
		BusinessUnitID:       req.BusinessUnitID,
		CostCenterID:         req.CostCenterID,
		JobGradeID:           req.JobGradeID,
		Headcount:            req.Headcount,
		HeadcountFilled:      req.HeadcountFilled,
		SalaryMin:            req.SalaryMin,
		SalaryMax:            req.SalaryMax,
		Currency:             req.Currency,
		CurrentApprovalLevel: req.CurrentApprovalLevel,
		TotalApprovalLevels:  req.TotalApprovalLevels,
		RejectionReason:      req.RejectionReason,
		HoldReason:           req.HoldReason,
		PostedChannels:       req.PostedChannels,
		RequestedBy:          req.RequestedBy,
		Version:              req.Version,
		CreatedAt:            req.CreatedAt.UTC().Format(time.RFC3339),
	}
	resp.SubmittedAt = formatOptional(req.SubmittedAt)
	resp.ApprovedAt = formatOptional(req.ApprovedAt)
	resp.RejectedAt = formatOptional(req.RejectedAt)
	resp.PostedAt = formatOptional(req.PostedAt)
	resp.ClosedAt = formatOptional(req.ClosedAt)
	return resp
}

func mapApproval(tx entities.ApprovalTransaction) httptransport.ApprovalDTO {
	return httptransport.ApprovalDTO{
		ApprovalID:          tx.ApprovalID,
		RequisitionID:       tx.RequisitionID,
		Level:               tx.Level,
		ApproverID:          tx.ApproverID,
		ApproverName:        tx.ApproverName,
		ApproverRole:        string(tx.ApproverRole),
		Status:              string(tx.Status),
		Decision:            string(tx.Decision),
		Comments:            tx.Comments,
		SLAHours:            tx.SLAHours,
		SLAStatus:           string(tx.SLAStatus),
		DueAt:               formatOptional(tx.DueAt),
		RespondedAt:         formatOptional(tx.RespondedAt),
		Escalated:           tx.Escalated,
		EscalateTo:          tx.EscalateTo,
		DelegatedFromUserID: tx.DelegatedFromUserID,
	}
}

func mapRule(rule entities.ApprovalRule) (httptransport.RuleResponse, error) {
	condition, err := entities.EncodeCondition(rule.Condition)
	if err != nil {
		return httptransport.RuleResponse{}, err
	}
	approvers := make([]httptransport.ApproverDTO, 0, len(rule.CustomApprovers))
	for _, a := range rule.CustomApprovers {
		approvers = append(approvers, httptransport.ApproverDTO{UserID: a.UserID, Name: a.Name, Email: a.Email})
	}
	return httptransport.RuleResponse{
		RuleID:            rule.RuleID,
		TenantID:          rule.TenantID,
		Name:              rule.Name,
		Condition:         condition,
		ApproverRole:      string(rule.ApproverRole),
		CustomApprovers:   approvers,
		Level:             rule.Level,
		SLAHours:          rule.SLAHours,
		EscalationEnabled: rule.EscalationEnabled,
		EscalationHours:   rule.EscalationHours,
		EscalateTo:        rule.EscalateTo,
		Priority:          rule.Priority,
		IsActive:          rule.IsActive,
	}, nil
}

func formatOptional(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
