package commands

import (
	"encoding/json"
	"time"

	"reqflow/contexts/talent-acquisition/requisition-service/ports"
)

func newRequisitionEnvelope(
	eventID string,
	eventType string,
	tenantID string,
	requisitionID string,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:       eventID,
		EventType:     eventType,
		SourceService: "requisition-service",
		OccurredAt:    occurredAt.UTC(),
		TenantID:      tenantID,
		EntityType:    "requisition",
		EntityID:      requisitionID,
		SchemaVersion: 1,
		Data:          payload,
	}, nil
}
