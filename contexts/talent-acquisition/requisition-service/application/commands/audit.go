package commands

import (
	"context"
	"log/slog"
	"time"

	"reqflow/contexts/talent-acquisition/requisition-service/domain/entities"
	"reqflow/contexts/talent-acquisition/requisition-service/ports"
)

// appendAudit writes an audit entry and logs a warning on failure. Audit
// storage is best-effort; it never fails the operation that produced it.
func appendAudit(
	ctx context.Context,
	audit ports.AuditRepository,
	idGen ports.IDGenerator,
	logger *slog.Logger,
	now time.Time,
	req entities.Requisition,
	action string,
	performedBy string,
	statusBefore entities.RequisitionStatus,
	changes map[string]any,
) {
	if audit == nil {
		return
	}
	auditID, err := idGen.NewID(ctx)
	if err != nil {
		logger.Warn("audit id generation failed",
			"event", "requisition_audit_failed",
			"module", "talent-acquisition/requisition-service",
			"layer", "application",
			"requisition_id", req.RequisitionID,
			"action", action,
			"error", err.Error(),
		)
		return
	}
	entry := entities.AuditEntry{
		AuditID:       auditID,
		TenantID:      req.TenantID,
		RequisitionID: req.RequisitionID,
		Action:        action,
		PerformedBy:   performedBy,
		StatusBefore:  statusBefore,
		StatusAfter:   req.Status,
		Changes:       changes,
		CreatedAt:     now,
	}
	if err := audit.AppendAudit(ctx, entry); err != nil {
		logger.Warn("audit append failed",
			"event", "requisition_audit_failed",
			"module", "talent-acquisition/requisition-service",
			"layer", "application",
			"requisition_id", req.RequisitionID,
			"action", action,
			"error", err.Error(),
		)
	}
}

// appendEvent writes a notification event to the outbox, logging and
// suppressing failures: delivery is fire-and-forget from the core's view.
func appendEvent(
	ctx context.Context,
	outbox ports.OutboxWriter,
	idGen ports.IDGenerator,
	logger *slog.Logger,
	eventType string,
	req entities.Requisition,
	occurredAt time.Time,
	data map[string]any,
) {
	if outbox == nil {
		return
	}
	eventID, err := idGen.NewID(ctx)
	if err == nil {
		var envelope ports.EventEnvelope
		envelope, err = newRequisitionEnvelope(eventID, eventType, req.TenantID, req.RequisitionID, occurredAt, data)
		if err == nil {
			err = outbox.AppendOutbox(ctx, envelope)
		}
	}
	if err != nil {
		logger.Warn("notification event append failed",
			"event", "requisition_event_append_failed",
			"module", "talent-acquisition/requisition-service",
			"layer", "application",
			"requisition_id", req.RequisitionID,
			"event_type", eventType,
			"error", err.Error(),
		)
	}
}
