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

type FillRequisitionCommand struct {
	RequisitionID string
	ActorID       string
	HiresMade     int
}

// FillRequisitionUseCase records accepted hires against the requisition's
// headcount. Filling the last head commits the budget reservation and closes
// the requisition; partial fills move it to active hiring.
type FillRequisitionUseCase struct {
	Requisitions ports.RequisitionRepository
	Budget       ports.BudgetGateway
	Audit        ports.AuditRepository
	Outbox       ports.OutboxWriter
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	Logger       *slog.Logger
}

func (uc FillRequisitionUseCase) Execute(ctx context.Context, cmd FillRequisitionCommand) (entities.Requisition, error) {
	logger := application.ResolveLogger(uc.Logger)
	req, err := uc.Requisitions.GetRequisition(ctx, strings.TrimSpace(cmd.RequisitionID))
	if err != nil {
		return entities.Requisition{}, err
	}
	if !req.CanFill() {
		return entities.Requisition{}, domainerrors.ErrInvalidStateTransition
	}
	if cmd.HiresMade <= 0 {
		return entities.Requisition{}, domainerrors.ErrInvalidRequisitionInput
	}

	now := uc.Clock.Now().UTC()
	statusBefore := req.Status
	req.HeadcountFilled += cmd.HiresMade
	if req.HeadcountFilled > req.Headcount {
		req.HeadcountFilled = req.Headcount
	}
	req.UpdatedAt = now

	fullyFilled := req.HeadcountFilled >= req.Headcount
	if fullyFilled {
		if err := uc.Budget.Commit(ctx, req.RequisitionID); err != nil {
			return entities.Requisition{}, err
		}
		closed := now
		req.Status = entities.RequisitionStatusFilled
		req.ClosedAt = &closed
	} else {
		req.Status = entities.RequisitionStatusActiveHiring
	}
	if err := uc.Requisitions.UpdateRequisition(ctx, req); err != nil {
		return entities.Requisition{}, err
	}

	appendAudit(ctx, uc.Audit, uc.IDGen, logger, now, req, "filled", cmd.ActorID, statusBefore, map[string]any{
		"hires_made":       cmd.HiresMade,
		"headcount_filled": req.HeadcountFilled,
		"headcount":        req.Headcount,
	})
	if fullyFilled {
		appendEvent(ctx, uc.Outbox, uc.IDGen, logger, "requisition.filled", req, now, map[string]any{
			"requisition_id":   req.RequisitionID,
			"headcount_filled": req.HeadcountFilled,
		})
	}
	logger.Info("requisition fill recorded",
		"event", "requisition_filled",
		"module", "talent-acquisition/requisition-service",
		"layer", "application",
		"requisition_id", req.RequisitionID,
		"headcount_filled", req.HeadcountFilled,
		"headcount", req.Headcount,
	)
	return req, nil
}
