package commands

import (
	"context"
	"log/slog"
	"strings"

	application "reqflow/contexts/talent-acquisition/requisition-service/application"
	domainerrors "reqflow/contexts/talent-acquisition/requisition-service/domain/errors"
	"reqflow/contexts/talent-acquisition/requisition-service/ports"
)

type DeleteRequisitionCommand struct {
	RequisitionID string
	ActorID       string
}

// DeleteRequisitionUseCase removes a draft. Anything past draft has an audit
// trail worth keeping and must be cancelled instead.
type DeleteRequisitionUseCase struct {
	Requisitions ports.RequisitionRepository
	Audit        ports.AuditRepository
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	Logger       *slog.Logger
}

func (uc DeleteRequisitionUseCase) Execute(ctx context.Context, cmd DeleteRequisitionCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	req, err := uc.Requisitions.GetRequisition(ctx, strings.TrimSpace(cmd.RequisitionID))
	if err != nil {
		return err
	}
	if !req.CanDelete() {
		return domainerrors.ErrInvalidStateTransition
	}

	now := uc.Clock.Now().UTC()
	if err := uc.Requisitions.DeleteRequisition(ctx, req.RequisitionID); err != nil {
		return err
	}

	appendAudit(ctx, uc.Audit, uc.IDGen, logger, now, req, "deleted", cmd.ActorID, req.Status, nil)
	logger.Info("draft requisition deleted",
		"event", "requisition_deleted",
		"module", "talent-acquisition/requisition-service",
		"layer", "application",
		"requisition_id", req.RequisitionID,
	)
	return nil
}
