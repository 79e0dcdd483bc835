package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "reqflow/contexts/talent-acquisition/requisition-service/application"
	"reqflow/contexts/talent-acquisition/requisition-service/domain/entities"
	domainerrors "reqflow/contexts/talent-acquisition/requisition-service/domain/errors"
	"reqflow/contexts/talent-acquisition/requisition-service/ports"
)

type DecideApprovalCommand struct {
	RequisitionID string
	ApproverID    string
	Decision      entities.ApprovalDecision
	Comments      string
	DelegateTo    entities.Approver
}

type DecideApprovalResult struct {
	Requisition      entities.Requisition
	Transaction      entities.ApprovalTransaction
	IsFullyApproved  bool
	NextLevel        int
	PendingApprovers []string
}

// DecideApprovalUseCase records one approver's decision and moves the chain.
// A level completes only when every transaction on it is terminal; approvers
// within a level are AND-combined, levels are strictly sequential.
type DecideApprovalUseCase struct {
	Requisitions ports.RequisitionRepository
	Transactions ports.ApprovalTransactionRepository
	Budget       ports.BudgetGateway
	Audit        ports.AuditRepository
	Outbox       ports.OutboxWriter
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	Logger       *slog.Logger
}

func (uc DecideApprovalUseCase) Execute(ctx context.Context, cmd DecideApprovalCommand) (DecideApprovalResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	req, err := uc.Requisitions.GetRequisition(ctx, strings.TrimSpace(cmd.RequisitionID))
	if err != nil {
		return DecideApprovalResult{}, err
	}
	if !req.CanDecide() {
		return DecideApprovalResult{}, domainerrors.ErrInvalidStateTransition
	}

	txs, err := uc.Transactions.ListByRequisition(ctx, req.RequisitionID)
	if err != nil {
		return DecideApprovalResult{}, err
	}
	acting, found := findPendingForApprover(txs, req.CurrentApprovalLevel, strings.TrimSpace(cmd.ApproverID))
	if !found {
		return DecideApprovalResult{}, domainerrors.ErrNotAuthorizedApprover
	}

	now := uc.Clock.Now().UTC()
	switch cmd.Decision {
	case entities.DecisionApprove:
		return uc.approve(ctx, logger, req, txs, acting, cmd, now)
	case entities.DecisionReject:
		return uc.reject(ctx, logger, req, txs, acting, cmd, now)
	case entities.DecisionSendBack:
		return uc.sendBack(ctx, logger, req, txs, acting, cmd, now)
	case entities.DecisionDelegate:
		return uc.delegate(ctx, logger, req, acting, cmd, now)
	default:
		return DecideApprovalResult{}, domainerrors.ErrInvalidRequisitionInput
	}
}

func (uc DecideApprovalUseCase) approve(
	ctx context.Context,
	logger *slog.Logger,
	req entities.Requisition,
	txs []entities.ApprovalTransaction,
	acting entities.ApprovalTransaction,
	cmd DecideApprovalCommand,
	now time.Time,
) (DecideApprovalResult, error) {
	acting = closeTransaction(acting, entities.ApprovalStatusApproved, entities.DecisionApprove, cmd.Comments, now)
	// The close and the level's pending count come from one repository
	// transaction, so exactly one of several concurrent same-level approvals
	// observes the level drain to zero and advances the requisition.
	remaining, err := uc.Transactions.DecideTransaction(ctx, acting)
	if err != nil {
		return DecideApprovalResult{}, err
	}
	replaceTransaction(txs, acting)

	result := DecideApprovalResult{Requisition: req, Transaction: acting}
	if remaining > 0 {
		appendAudit(ctx, uc.Audit, uc.IDGen, logger, now, req, "approval_recorded", cmd.ApproverID, req.Status, map[string]any{
			"level": acting.Level,
		})
		result.NextLevel = req.CurrentApprovalLevel
		result.PendingApprovers = approverNames(pendingAtLevel(txs, req.CurrentApprovalLevel))
		return result, nil
	}

	statusBefore := req.Status
	if req.CurrentApprovalLevel >= req.TotalApprovalLevels {
		approved := now
		req.Status = entities.RequisitionStatusApproved
		req.ApprovedAt = &approved
		req.UpdatedAt = now
		if err := uc.Requisitions.UpdateRequisition(ctx, req); err != nil {
			return DecideApprovalResult{}, err
		}
		appendAudit(ctx, uc.Audit, uc.IDGen, logger, now, req, "approved", cmd.ApproverID, statusBefore, map[string]any{
			"level": acting.Level,
		})
		appendEvent(ctx, uc.Outbox, uc.IDGen, logger, "requisition.approved", req, now, map[string]any{
			"requisition_id": req.RequisitionID,
			"final_level":    acting.Level,
		})
		logger.Info("requisition fully approved",
			"event", "requisition_approved",
			"module", "talent-acquisition/requisition-service",
			"layer", "application",
			"requisition_id", req.RequisitionID,
		)
		result.Requisition = req
		result.IsFullyApproved = true
		return result, nil
	}

	req.CurrentApprovalLevel++
	req.UpdatedAt = now
	if err := uc.Requisitions.UpdateRequisition(ctx, req); err != nil {
		return DecideApprovalResult{}, err
	}

	// Levels are sequential, so the next level's clock only starts now.
	next := pendingAtLevel(txs, req.CurrentApprovalLevel)
	for i := range next {
		due := now.Add(time.Duration(next[i].SLAHours) * time.Hour)
		next[i].DueAt = &due
		next[i].SLAStatus = entities.SLAOnTrack
		next[i].UpdatedAt = now
		if err := uc.Transactions.UpdateTransactionIfPending(ctx, next[i]); err != nil {
			return DecideApprovalResult{}, err
		}
	}

	appendAudit(ctx, uc.Audit, uc.IDGen, logger, now, req, "level_approved", cmd.ApproverID, statusBefore, map[string]any{
		"completed_level": acting.Level,
		"next_level":      req.CurrentApprovalLevel,
	})
	appendEvent(ctx, uc.Outbox, uc.IDGen, logger, "approval.pending", req, now, map[string]any{
		"requisition_id": req.RequisitionID,
		"level":          req.CurrentApprovalLevel,
		"approvers":      approverNames(next),
	})

	result.Requisition = req
	result.NextLevel = req.CurrentApprovalLevel
	result.PendingApprovers = approverNames(next)
	return result, nil
}

func (uc DecideApprovalUseCase) reject(
	ctx context.Context,
	logger *slog.Logger,
	req entities.Requisition,
	txs []entities.ApprovalTransaction,
	acting entities.ApprovalTransaction,
	cmd DecideApprovalCommand,
	now time.Time,
) (DecideApprovalResult, error) {
	acting = closeTransaction(acting, entities.ApprovalStatusRejected, entities.DecisionReject, cmd.Comments, now)
	if err := uc.Transactions.UpdateTransactionIfPending(ctx, acting); err != nil {
		return DecideApprovalResult{}, err
	}
	if err := uc.skipRemaining(ctx, txs, acting.ApprovalID, now); err != nil {
		return DecideApprovalResult{}, err
	}
	if err := uc.Budget.Release(ctx, req.RequisitionID); err != nil {
		return DecideApprovalResult{}, err
	}

	statusBefore := req.Status
	rejected := now
	req.Status = entities.RequisitionStatusRejected
	req.RejectedAt = &rejected
	req.RejectionReason = cmd.Comments
	req.UpdatedAt = now
	if err := uc.Requisitions.UpdateRequisition(ctx, req); err != nil {
		return DecideApprovalResult{}, err
	}

	appendAudit(ctx, uc.Audit, uc.IDGen, logger, now, req, "rejected", cmd.ApproverID, statusBefore, map[string]any{
		"level":  acting.Level,
		"reason": cmd.Comments,
	})
	appendEvent(ctx, uc.Outbox, uc.IDGen, logger, "requisition.rejected", req, now, map[string]any{
		"requisition_id": req.RequisitionID,
		"level":          acting.Level,
		"reason":         cmd.Comments,
	})
	logger.Info("requisition rejected",
		"event", "requisition_rejected",
		"module", "talent-acquisition/requisition-service",
		"layer", "application",
		"requisition_id", req.RequisitionID,
		"level", acting.Level,
	)
	return DecideApprovalResult{Requisition: req, Transaction: acting}, nil
}

func (uc DecideApprovalUseCase) sendBack(
	ctx context.Context,
	logger *slog.Logger,
	req entities.Requisition,
	txs []entities.ApprovalTransaction,
	acting entities.ApprovalTransaction,
	cmd DecideApprovalCommand,
	now time.Time,
) (DecideApprovalResult, error) {
	acting = closeTransaction(acting, entities.ApprovalStatusRejected, entities.DecisionSendBack, cmd.Comments, now)
	if err := uc.Transactions.UpdateTransactionIfPending(ctx, acting); err != nil {
		return DecideApprovalResult{}, err
	}
	if err := uc.skipRemaining(ctx, txs, acting.ApprovalID, now); err != nil {
		return DecideApprovalResult{}, err
	}
	if err := uc.Budget.Release(ctx, req.RequisitionID); err != nil {
		return DecideApprovalResult{}, err
	}

	// Back to the requester for edits. The chain is rebuilt from scratch on
	// the next submission, so the level counters reset here.
	statusBefore := req.Status
	req.Status = entities.RequisitionStatusDraft
	req.CurrentApprovalLevel = 0
	req.TotalApprovalLevels = 0
	req.SubmittedAt = nil
	req.UpdatedAt = now
	if err := uc.Requisitions.UpdateRequisition(ctx, req); err != nil {
		return DecideApprovalResult{}, err
	}

	appendAudit(ctx, uc.Audit, uc.IDGen, logger, now, req, "sent_back", cmd.ApproverID, statusBefore, map[string]any{
		"level":    acting.Level,
		"comments": cmd.Comments,
	})
	appendEvent(ctx, uc.Outbox, uc.IDGen, logger, "requisition.sent_back", req, now, map[string]any{
		"requisition_id": req.RequisitionID,
		"level":          acting.Level,
		"comments":       cmd.Comments,
	})
	return DecideApprovalResult{Requisition: req, Transaction: acting}, nil
}

func (uc DecideApprovalUseCase) delegate(
	ctx context.Context,
	logger *slog.Logger,
	req entities.Requisition,
	acting entities.ApprovalTransaction,
	cmd DecideApprovalCommand,
	now time.Time,
) (DecideApprovalResult, error) {
	if strings.TrimSpace(cmd.DelegateTo.UserID) == "" {
		return DecideApprovalResult{}, domainerrors.ErrDelegateRequired
	}

	// The new slot's id is drawn before the old one is closed so a generator
	// failure cannot leave the level with no pending transaction.
	delegatedID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return DecideApprovalResult{}, err
	}

	acting = closeTransaction(acting, entities.ApprovalStatusDelegated, entities.DecisionDelegate, cmd.Comments, now)
	if err := uc.Transactions.UpdateTransactionIfPending(ctx, acting); err != nil {
		return DecideApprovalResult{}, err
	}

	// The delegate gets a full fresh SLA window, not the remainder.
	due := now.Add(time.Duration(acting.SLAHours) * time.Hour)
	delegated := entities.ApprovalTransaction{
		ApprovalID:          delegatedID,
		TenantID:            acting.TenantID,
		RequisitionID:       acting.RequisitionID,
		Level:               acting.Level,
		ApproverID:          cmd.DelegateTo.UserID,
		ApproverName:        cmd.DelegateTo.Name,
		ApproverEmail:       cmd.DelegateTo.Email,
		ApproverRole:        acting.ApproverRole,
		Status:              entities.ApprovalStatusPending,
		SLAHours:            acting.SLAHours,
		DueAt:               &due,
		SLAStatus:           entities.SLAOnTrack,
		EscalateTo:          acting.EscalateTo,
		DelegatedFromUserID: acting.ApproverID,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := uc.Transactions.CreateTransactions(ctx, []entities.ApprovalTransaction{delegated}); err != nil {
		return DecideApprovalResult{}, err
	}

	appendAudit(ctx, uc.Audit, uc.IDGen, logger, now, req, "delegated", cmd.ApproverID, req.Status, map[string]any{
		"level":       acting.Level,
		"delegate_to": cmd.DelegateTo.UserID,
	})
	appendEvent(ctx, uc.Outbox, uc.IDGen, logger, "approval.delegated", req, now, map[string]any{
		"requisition_id": req.RequisitionID,
		"level":          acting.Level,
		"from":           acting.ApproverID,
		"to":             cmd.DelegateTo.UserID,
	})
	logger.Info("approval delegated",
		"event", "approval_delegated",
		"module", "talent-acquisition/requisition-service",
		"layer", "application",
		"requisition_id", req.RequisitionID,
		"from", acting.ApproverID,
		"to", cmd.DelegateTo.UserID,
	)
	return DecideApprovalResult{
		Requisition:      req,
		Transaction:      delegated,
		NextLevel:        acting.Level,
		PendingApprovers: []string{delegated.ApproverName},
	}, nil
}

// skipRemaining closes every other pending transaction on the chain. A
// terminal decision at any level moots the rest of the chain.
func (uc DecideApprovalUseCase) skipRemaining(ctx context.Context, txs []entities.ApprovalTransaction, actingID string, now time.Time) error {
	for _, tx := range txs {
		if tx.ApprovalID == actingID || !tx.IsPending() {
			continue
		}
		tx.Status = entities.ApprovalStatusSkipped
		responded := now
		tx.RespondedAt = &responded
		tx.UpdatedAt = now
		if err := uc.Transactions.UpdateTransactionIfPending(ctx, tx); err != nil {
			return err
		}
	}
	return nil
}

func closeTransaction(tx entities.ApprovalTransaction, status entities.ApprovalStatus, decision entities.ApprovalDecision, comments string, now time.Time) entities.ApprovalTransaction {
	responded := now
	tx.Status = status
	tx.Decision = decision
	tx.Comments = comments
	tx.RespondedAt = &responded
	tx.UpdatedAt = now
	return tx
}

func findPendingForApprover(txs []entities.ApprovalTransaction, level int, approverID string) (entities.ApprovalTransaction, bool) {
	for _, tx := range txs {
		if tx.Level == level && tx.ApproverID == approverID && tx.IsPending() {
			return tx, true
		}
	}
	return entities.ApprovalTransaction{}, false
}

func replaceTransaction(txs []entities.ApprovalTransaction, updated entities.ApprovalTransaction) {
	for i := range txs {
		if txs[i].ApprovalID == updated.ApprovalID {
			txs[i] = updated
			return
		}
	}
}

func pendingAtLevel(txs []entities.ApprovalTransaction, level int) []entities.ApprovalTransaction {
	out := make([]entities.ApprovalTransaction, 0)
	for _, tx := range txs {
		if tx.Level == level && tx.IsPending() {
			out = append(out, tx)
		}
	}
	return out
}
