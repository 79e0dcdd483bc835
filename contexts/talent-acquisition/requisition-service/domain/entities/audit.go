package entities

import "time"

// AuditEntry records one state-changing operation with before/after values.
// Writing it never blocks the operation that produced it.
type AuditEntry struct {
	AuditID       string
	TenantID      string
	RequisitionID string
	Action        string
	PerformedBy   string
	StatusBefore  RequisitionStatus
	StatusAfter   RequisitionStatus
	Changes       map[string]any
	CreatedAt     time.Time
}
