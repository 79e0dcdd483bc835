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

type PostRequisitionCommand struct {
	RequisitionID string
	ActorID       string
	Channels      []string
}

type PostRequisitionUseCase struct {
	Requisitions ports.RequisitionRepository
	Audit        ports.AuditRepository
	Outbox       ports.OutboxWriter
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	Logger       *slog.Logger
}

func (uc PostRequisitionUseCase) Execute(ctx context.Context, cmd PostRequisitionCommand) (entities.Requisition, error) {
	logger := application.ResolveLogger(uc.Logger)
	req, err := uc.Requisitions.GetRequisition(ctx, strings.TrimSpace(cmd.RequisitionID))
	if err != nil {
		return entities.Requisition{}, err
	}
	if !req.CanPost() {
		return entities.Requisition{}, domainerrors.ErrInvalidStateTransition
	}

	channels := make([]string, 0, len(cmd.Channels))
	for _, channel := range cmd.Channels {
		if trimmed := strings.TrimSpace(channel); trimmed != "" {
			channels = append(channels, trimmed)
		}
	}
	if len(channels) == 0 {
		return entities.Requisition{}, domainerrors.ErrInvalidRequisitionInput
	}

	now := uc.Clock.Now().UTC()
	statusBefore := req.Status
	posted := now
	req.Status = entities.RequisitionStatusPosted
	req.PostedChannels = channels
	req.PostedAt = &posted
	req.UpdatedAt = now
	if err := uc.Requisitions.UpdateRequisition(ctx, req); err != nil {
		return entities.Requisition{}, err
	}

	appendAudit(ctx, uc.Audit, uc.IDGen, logger, now, req, "posted", cmd.ActorID, statusBefore, map[string]any{
		"channels": channels,
	})
	appendEvent(ctx, uc.Outbox, uc.IDGen, logger, "requisition.posted", req, now, map[string]any{
		"requisition_id": req.RequisitionID,
		"channels":       channels,
	})
	logger.Info("requisition posted",
		"event", "requisition_posted",
		"module", "talent-acquisition/requisition-service",
		"layer", "application",
		"requisition_id", req.RequisitionID,
		"channels", channels,
	)
	return req, nil
}
