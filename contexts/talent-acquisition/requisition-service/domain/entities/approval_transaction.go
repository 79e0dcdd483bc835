package entities

import "time"

type ApprovalStatus string
type ApprovalDecision string
type SLAStatus string

const (
	ApprovalStatusPending   ApprovalStatus = "pending"
	ApprovalStatusApproved  ApprovalStatus = "approved"
	ApprovalStatusRejected  ApprovalStatus = "rejected"
	ApprovalStatusSkipped   ApprovalStatus = "skipped"
	ApprovalStatusDelegated ApprovalStatus = "delegated"
	ApprovalStatusEscalated ApprovalStatus = "escalated"

	DecisionApprove  ApprovalDecision = "approve"
	DecisionReject   ApprovalDecision = "reject"
	DecisionSendBack ApprovalDecision = "send_back"
	DecisionDelegate ApprovalDecision = "delegate"

	SLAOnTrack SLAStatus = "on_track"
	SLAWarning SLAStatus = "warning"
	SLAOverdue SLAStatus = "overdue"
)

// ApprovalTransaction is one approver's slot at one level of a requisition's
// chain. Rows are append-only: a transaction reaches a terminal status and is
// never deleted, so the chain doubles as the approval audit trail.
type ApprovalTransaction struct {
	ApprovalID          string
	TenantID            string
	RequisitionID       string
	Level               int
	ApproverID          string
	ApproverName        string
	ApproverEmail       string
	ApproverRole        ApproverRole
	Status              ApprovalStatus
	Decision            ApprovalDecision
	Comments            string
	SLAHours            int
	DueAt               *time.Time
	RespondedAt         *time.Time
	SLAStatus           SLAStatus
	Escalated           bool
	EscalatedAt         *time.Time
	EscalateTo          string
	DelegatedFromUserID string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (t ApprovalTransaction) IsPending() bool {
	return t.Status == ApprovalStatusPending
}

// IsTerminal reports whether the transaction can no longer be acted on.
func (t ApprovalTransaction) IsTerminal() bool {
	return t.Status != ApprovalStatusPending
}

// EscalationRecord is handed to the notification sink when a PENDING
// transaction breaches its SLA.
type EscalationRecord struct {
	RequisitionID string    `json:"requisition_id"`
	ApprovalID    string    `json:"approval_id"`
	ApproverID    string    `json:"approver_id"`
	ApproverName  string    `json:"approver_name"`
	EscalateTo    string    `json:"escalate_to"`
	SLABreachedAt time.Time `json:"sla_breached_at"`
}
