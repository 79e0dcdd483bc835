package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "reqflow/contexts/talent-acquisition/requisition-service/application"
	"reqflow/contexts/talent-acquisition/requisition-service/domain/entities"
	domainerrors "reqflow/contexts/talent-acquisition/requisition-service/domain/errors"
	"reqflow/contexts/talent-acquisition/requisition-service/domain/services"
	"reqflow/contexts/talent-acquisition/requisition-service/ports"
)

type SubmitRequisitionCommand struct {
	RequisitionID string
	ActorID       string
}

type SubmitRequisitionUseCase struct {
	Requisitions ports.RequisitionRepository
	Rules        ports.ApprovalRuleRepository
	Transactions ports.ApprovalTransactionRepository
	Directory    ports.ApproverDirectory
	Budget       ports.BudgetGateway
	Audit        ports.AuditRepository
	Outbox       ports.OutboxWriter
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	Logger       *slog.Logger
}

type SubmitRequisitionResult struct {
	Requisition      entities.Requisition
	TotalLevels      int
	AutoApproved     bool
	PendingApprovers []string
}

// approvalLevel is one activated stage of the chain after empty levels have
// been dropped and the remaining ones renumbered sequentially.
type approvalLevel struct {
	number       int
	transactions []entities.ApprovalTransaction
}

func (uc SubmitRequisitionUseCase) Execute(ctx context.Context, cmd SubmitRequisitionCommand) (SubmitRequisitionResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	req, err := uc.Requisitions.GetRequisition(ctx, strings.TrimSpace(cmd.RequisitionID))
	if err != nil {
		return SubmitRequisitionResult{}, err
	}
	if strings.TrimSpace(cmd.ActorID) == "" {
		return SubmitRequisitionResult{}, domainerrors.ErrInvalidRequisitionInput
	}
	if !req.CanSubmit() {
		return SubmitRequisitionResult{}, domainerrors.ErrInvalidStateTransition
	}

	if err := uc.Budget.ValidateSalaryBand(ctx, req.JobGradeID, req.SalaryMin, req.SalaryMax); err != nil {
		return SubmitRequisitionResult{}, err
	}

	now := uc.Clock.Now().UTC()
	rules, err := uc.Rules.ListRules(ctx, req.TenantID, true)
	if err != nil {
		return SubmitRequisitionResult{}, err
	}
	matched := services.SelectRules(req, rules, now)
	levels, err := uc.materializeLevels(ctx, logger, req, matched, now)
	if err != nil {
		return SubmitRequisitionResult{}, err
	}

	if err := uc.Budget.Reserve(ctx, req); err != nil {
		return SubmitRequisitionResult{}, err
	}

	statusBefore := req.Status
	submitted := now
	req.SubmittedAt = &submitted
	req.RejectionReason = ""
	req.RejectedAt = nil
	req.UpdatedAt = now
	req.TotalApprovalLevels = len(levels)

	allTxs := make([]entities.ApprovalTransaction, 0)
	for _, level := range levels {
		allTxs = append(allTxs, level.transactions...)
	}

	if len(levels) == 0 {
		approved := now
		req.Status = entities.RequisitionStatusApproved
		req.CurrentApprovalLevel = 0
		req.ApprovedAt = &approved
	} else {
		req.Status = entities.RequisitionStatusPendingApproval
		req.CurrentApprovalLevel = 1
		req.ApprovedAt = nil

		if err := uc.Transactions.CreateTransactions(ctx, allTxs); err != nil {
			uc.rollbackSubmit(ctx, logger, req, nil, now)
			return SubmitRequisitionResult{}, err
		}
	}

	if err := uc.Requisitions.UpdateRequisition(ctx, req); err != nil {
		// The requisition is still a draft, so the reservation and the chain
		// built above must not survive or the next submit is blocked on a
		// duplicate reservation.
		uc.rollbackSubmit(ctx, logger, req, allTxs, now)
		return SubmitRequisitionResult{}, err
	}

	appendAudit(ctx, uc.Audit, uc.IDGen, logger, now, req, "submitted", cmd.ActorID, statusBefore, map[string]any{
		"total_approval_levels": req.TotalApprovalLevels,
	})

	result := SubmitRequisitionResult{
		Requisition:  req,
		TotalLevels:  req.TotalApprovalLevels,
		AutoApproved: req.TotalApprovalLevels == 0,
	}
	if result.AutoApproved {
		appendEvent(ctx, uc.Outbox, uc.IDGen, logger, "requisition.approved", req, now, map[string]any{
			"requisition_id": req.RequisitionID,
			"auto_approved":  true,
		})
	} else {
		result.PendingApprovers = approverNames(levels[0].transactions)
		appendEvent(ctx, uc.Outbox, uc.IDGen, logger, "requisition.submitted", req, now, map[string]any{
			"requisition_id":        req.RequisitionID,
			"total_approval_levels": req.TotalApprovalLevels,
		})
		appendEvent(ctx, uc.Outbox, uc.IDGen, logger, "approval.pending", req, now, map[string]any{
			"requisition_id": req.RequisitionID,
			"level":          1,
			"approvers":      result.PendingApprovers,
		})
	}

	logger.Info("requisition submitted",
		"event", "requisition_submitted",
		"module", "talent-acquisition/requisition-service",
		"layer", "application",
		"requisition_id", req.RequisitionID,
		"total_approval_levels", req.TotalApprovalLevels,
		"auto_approved", result.AutoApproved,
	)
	return result, nil
}

// materializeLevels resolves approvers for every matched rule and builds the
// transaction chain. Levels that resolve to zero approvers are auto-satisfied
// and dropped; the survivors are renumbered 1..N so the current level always
// has live transactions.
func (uc SubmitRequisitionUseCase) materializeLevels(
	ctx context.Context,
	logger *slog.Logger,
	req entities.Requisition,
	matched []entities.ApprovalRule,
	now time.Time,
) ([]approvalLevel, error) {
	grouped := make(map[int][]entities.ApprovalRule)
	order := make([]int, 0)
	for _, rule := range matched {
		if _, seen := grouped[rule.Level]; !seen {
			order = append(order, rule.Level)
		}
		grouped[rule.Level] = append(grouped[rule.Level], rule)
	}

	levels := make([]approvalLevel, 0, len(order))
	next := 1
	for _, ruleLevel := range order {
		txs := make([]entities.ApprovalTransaction, 0)
		for _, rule := range grouped[ruleLevel] {
			for _, approver := range uc.resolveApprovers(ctx, logger, rule, req) {
				approvalID, err := uc.IDGen.NewID(ctx)
				if err != nil {
					return nil, err
				}
				due := now.Add(time.Duration(rule.SLAHours) * time.Hour)
				txs = append(txs, entities.ApprovalTransaction{
					ApprovalID:    approvalID,
					TenantID:      req.TenantID,
					RequisitionID: req.RequisitionID,
					Level:         next,
					ApproverID:    approver.UserID,
					ApproverName:  approver.Name,
					ApproverEmail: approver.Email,
					ApproverRole:  rule.ApproverRole,
					Status:        entities.ApprovalStatusPending,
					SLAHours:      rule.SLAHours,
					DueAt:         &due,
					SLAStatus:     entities.SLAOnTrack,
					EscalateTo:    rule.EscalateTo,
					CreatedAt:     now,
					UpdatedAt:     now,
				})
			}
		}
		if len(txs) == 0 {
			logger.Info("approval level auto-satisfied, no approvers resolved",
				"event", "approval_level_skipped",
				"module", "talent-acquisition/requisition-service",
				"layer", "application",
				"requisition_id", req.RequisitionID,
				"rule_level", ruleLevel,
			)
			continue
		}
		levels = append(levels, approvalLevel{number: next, transactions: txs})
		next++
	}
	return levels, nil
}

// rollbackSubmit undoes the side effects of a submit that could not record
// its final state: the reservation is released and any transactions already
// created are closed as skipped. Failures are logged, not returned, so the
// original error stays on top.
func (uc SubmitRequisitionUseCase) rollbackSubmit(
	ctx context.Context,
	logger *slog.Logger,
	req entities.Requisition,
	created []entities.ApprovalTransaction,
	now time.Time,
) {
	if err := uc.Budget.Release(ctx, req.RequisitionID); err != nil {
		logger.Error("budget release after failed submit failed",
			"event", "requisition_submit_compensation_failed",
			"module", "talent-acquisition/requisition-service",
			"layer", "application",
			"requisition_id", req.RequisitionID,
			"error", err.Error(),
		)
	}
	responded := now
	for _, tx := range created {
		tx.Status = entities.ApprovalStatusSkipped
		tx.RespondedAt = &responded
		tx.UpdatedAt = now
		if err := uc.Transactions.UpdateTransactionIfPending(ctx, tx); err != nil {
			logger.Error("closing orphaned approval after failed submit failed",
				"event", "requisition_submit_compensation_failed",
				"module", "talent-acquisition/requisition-service",
				"layer", "application",
				"requisition_id", req.RequisitionID,
				"approval_id", tx.ApprovalID,
				"error", err.Error(),
			)
		}
	}
}

func (uc SubmitRequisitionUseCase) resolveApprovers(
	ctx context.Context,
	logger *slog.Logger,
	rule entities.ApprovalRule,
	req entities.Requisition,
) []entities.Approver {
	if rule.ApproverRole == entities.RoleCustom {
		return rule.CustomApprovers
	}
	approvers, err := uc.Directory.ResolveApprovers(ctx, rule.ApproverRole, req)
	if err != nil {
		logger.Warn("approver directory lookup failed, level treated as auto-satisfied",
			"event", "approver_resolution_failed",
			"module", "talent-acquisition/requisition-service",
			"layer", "application",
			"requisition_id", req.RequisitionID,
			"role", string(rule.ApproverRole),
			"error", err.Error(),
		)
		return nil
	}
	return approvers
}

func approverNames(txs []entities.ApprovalTransaction) []string {
	names := make([]string, 0, len(txs))
	for _, tx := range txs {
		names = append(names, tx.ApproverName)
	}
	return names
}
