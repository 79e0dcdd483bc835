package commands

import (
	"context"
	"log/slog"
	"strings"

	application "reqflow/contexts/talent-acquisition/requisition-service/application"
	"reqflow/contexts/talent-acquisition/requisition-service/domain/entities"
	domainerrors "reqflow/contexts/talent-acquisition/requisition-service/domain/errors"
	"reqflow/contexts/talent-acquisition/requisition-service/ports"
)

type CancelRequisitionCommand struct {
	RequisitionID string
	ActorID       string
	Reason        string
}

type HoldRequisitionCommand struct {
	RequisitionID string
	ActorID       string
	Reason        string
}

type ResumeRequisitionCommand struct {
	RequisitionID string
	ActorID       string
}

// ChangeStatusUseCase groups the lifecycle moves that need no approval
// chain of their own: cancel, hold, resume.
type ChangeStatusUseCase struct {
	Requisitions ports.RequisitionRepository
	Transactions ports.ApprovalTransactionRepository
	Budget       ports.BudgetGateway
	Audit        ports.AuditRepository
	Outbox       ports.OutboxWriter
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	Logger       *slog.Logger
}

// Cancel terminates the requisition from any non-terminal state, releasing
// reserved funds and closing out any in-flight approvals as skipped.
func (uc ChangeStatusUseCase) Cancel(ctx context.Context, cmd CancelRequisitionCommand) (entities.Requisition, error) {
	logger := application.ResolveLogger(uc.Logger)
	req, err := uc.Requisitions.GetRequisition(ctx, strings.TrimSpace(cmd.RequisitionID))
	if err != nil {
		return entities.Requisition{}, err
	}
	if !req.CanCancel() {
		return entities.Requisition{}, domainerrors.ErrInvalidStateTransition
	}

	now := uc.Clock.Now().UTC()
	if err := uc.Budget.Release(ctx, req.RequisitionID); err != nil {
		return entities.Requisition{}, err
	}

	txs, err := uc.Transactions.ListByRequisition(ctx, req.RequisitionID)
	if err != nil {
		return entities.Requisition{}, err
	}
	for _, tx := range txs {
		if !tx.IsPending() {
			continue
		}
		tx.Status = entities.ApprovalStatusSkipped
		responded := now
		tx.RespondedAt = &responded
		tx.UpdatedAt = now
		if err := uc.Transactions.UpdateTransactionIfPending(ctx, tx); err != nil {
			return entities.Requisition{}, err
		}
	}

	statusBefore := req.Status
	closed := now
	req.Status = entities.RequisitionStatusCancelled
	req.ClosedAt = &closed
	req.UpdatedAt = now
	if err := uc.Requisitions.UpdateRequisition(ctx, req); err != nil {
		return entities.Requisition{}, err
	}

	appendAudit(ctx, uc.Audit, uc.IDGen, logger, now, req, "cancelled", cmd.ActorID, statusBefore, map[string]any{
		"reason": cmd.Reason,
	})
	appendEvent(ctx, uc.Outbox, uc.IDGen, logger, "requisition.cancelled", req, now, map[string]any{
		"requisition_id": req.RequisitionID,
		"reason":         cmd.Reason,
	})
	logger.Info("requisition cancelled",
		"event", "requisition_cancelled",
		"module", "talent-acquisition/requisition-service",
		"layer", "application",
		"requisition_id", req.RequisitionID,
		"status_before", string(statusBefore),
	)
	return req, nil
}

// Hold parks the requisition, remembering the status it left so Resume can
// restore it. Pending approval clocks keep running while on hold.
func (uc ChangeStatusUseCase) Hold(ctx context.Context, cmd HoldRequisitionCommand) (entities.Requisition, error) {
	logger := application.ResolveLogger(uc.Logger)
	req, err := uc.Requisitions.GetRequisition(ctx, strings.TrimSpace(cmd.RequisitionID))
	if err != nil {
		return entities.Requisition{}, err
	}
	if !req.CanHold() {
		return entities.Requisition{}, domainerrors.ErrInvalidStateTransition
	}

	now := uc.Clock.Now().UTC()
	statusBefore := req.Status
	req.PreviousStatus = req.Status
	req.Status = entities.RequisitionStatusOnHold
	req.HoldReason = cmd.Reason
	req.UpdatedAt = now
	if err := uc.Requisitions.UpdateRequisition(ctx, req); err != nil {
		return entities.Requisition{}, err
	}

	appendAudit(ctx, uc.Audit, uc.IDGen, logger, now, req, "held", cmd.ActorID, statusBefore, map[string]any{
		"reason": cmd.Reason,
	})
	appendEvent(ctx, uc.Outbox, uc.IDGen, logger, "requisition.held", req, now, map[string]any{
		"requisition_id": req.RequisitionID,
		"reason":         cmd.Reason,
	})
	return req, nil
}

func (uc ChangeStatusUseCase) Resume(ctx context.Context, cmd ResumeRequisitionCommand) (entities.Requisition, error) {
	logger := application.ResolveLogger(uc.Logger)
	req, err := uc.Requisitions.GetRequisition(ctx, strings.TrimSpace(cmd.RequisitionID))
	if err != nil {
		return entities.Requisition{}, err
	}
	if !req.CanResume() {
		return entities.Requisition{}, domainerrors.ErrInvalidStateTransition
	}

	now := uc.Clock.Now().UTC()
	statusBefore := req.Status
	req.Status = req.PreviousStatus
	req.PreviousStatus = ""
	req.HoldReason = ""
	req.UpdatedAt = now
	if err := uc.Requisitions.UpdateRequisition(ctx, req); err != nil {
		return entities.Requisition{}, err
	}

	appendAudit(ctx, uc.Audit, uc.IDGen, logger, now, req, "resumed", cmd.ActorID, statusBefore, nil)
	appendEvent(ctx, uc.Outbox, uc.IDGen, logger, "requisition.resumed", req, now, map[string]any{
		"requisition_id":  req.RequisitionID,
		"restored_status": string(req.Status),
	})
	return req, nil
}
