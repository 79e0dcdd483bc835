package workers

import (
	"context"
	"encoding/json"
	"log/slog"

	application "reqflow/contexts/talent-acquisition/requisition-service/application"
	"reqflow/contexts/talent-acquisition/requisition-service/domain/entities"
	"reqflow/contexts/talent-acquisition/requisition-service/ports"
	"reqflow/internal/shared/events"
)

// SLAMonitor sweeps pending approvals past their due time and raises one
// escalation event per breached transaction. The repository flags each row
// as escalated in the same sweep, so re-running the monitor never raises a
// second escalation for the same approval.
type SLAMonitor struct {
	Transactions ports.ApprovalTransactionRepository
	Outbox       ports.OutboxWriter
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	BatchSize    int
	Logger       *slog.Logger
}

func (m SLAMonitor) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(m.Logger)
	limit := m.BatchSize
	if limit <= 0 {
		limit = 100
	}

	now := m.Clock.Now().UTC()
	breached, err := m.Transactions.EscalateOverdue(ctx, now, limit)
	if err != nil {
		logger.Error("sla sweep failed",
			"event", "sla_sweep_failed",
			"module", "talent-acquisition/requisition-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	if len(breached) == 0 {
		logger.Debug("sla sweep found no overdue approvals",
			"event", "sla_sweep_noop",
			"module", "talent-acquisition/requisition-service",
			"layer", "worker",
			"batch_size", limit,
		)
		return nil
	}

	for _, record := range breached {
		if err := m.appendEscalation(ctx, record); err != nil {
			logger.Error("escalation event append failed",
				"event", "sla_escalation_append_failed",
				"module", "talent-acquisition/requisition-service",
				"layer", "worker",
				"requisition_id", record.RequisitionID,
				"approval_id", record.ApprovalID,
				"error", err.Error(),
			)
			return err
		}
		logger.Warn("approval sla breached",
			"event", "approval_sla_breached",
			"module", "talent-acquisition/requisition-service",
			"layer", "worker",
			"requisition_id", record.RequisitionID,
			"approval_id", record.ApprovalID,
			"approver_id", record.ApproverID,
			"escalate_to", record.EscalateTo,
		)
	}

	logger.Info("sla sweep completed",
		"event", "sla_sweep_completed",
		"module", "talent-acquisition/requisition-service",
		"layer", "worker",
		"escalated_count", len(breached),
	)
	return nil
}

func (m SLAMonitor) appendEscalation(ctx context.Context, record entities.EscalationRecord) error {
	eventID, err := m.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	envelope := events.Envelope{
		EventID:       eventID,
		EventType:     "approval.escalated",
		SourceService: "requisition-service",
		OccurredAt:    record.SLABreachedAt,
		EntityType:    "requisition",
		EntityID:      record.RequisitionID,
		SchemaVersion: 1,
		Data:          data,
	}
	return m.Outbox.AppendOutbox(ctx, envelope)
}
