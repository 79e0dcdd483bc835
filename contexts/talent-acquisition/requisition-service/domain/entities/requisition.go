package entities

import "time"

type RequisitionStatus string
type RequisitionPriority string

const (
	RequisitionStatusDraft           RequisitionStatus = "draft"
	RequisitionStatusPendingApproval RequisitionStatus = "pending_approval"
	RequisitionStatusApproved        RequisitionStatus = "approved"
	RequisitionStatusRejected        RequisitionStatus = "rejected"
	RequisitionStatusPosted          RequisitionStatus = "posted"
	RequisitionStatusActiveHiring    RequisitionStatus = "active_hiring"
	RequisitionStatusFilled          RequisitionStatus = "filled"
	RequisitionStatusCancelled       RequisitionStatus = "cancelled"
	RequisitionStatusOnHold          RequisitionStatus = "on_hold"
	RequisitionStatusClosed          RequisitionStatus = "closed"

	PriorityLow      RequisitionPriority = "low"
	PriorityMedium   RequisitionPriority = "medium"
	PriorityHigh     RequisitionPriority = "high"
	PriorityCritical RequisitionPriority = "critical"
)

var terminalStatuses = map[RequisitionStatus]bool{
	RequisitionStatusFilled:    true,
	RequisitionStatusCancelled: true,
	RequisitionStatusClosed:    true,
}

// Requisition is the aggregate root of the hiring approval flow. Status moves
// only through the guarded transitions below; Version backs the optimistic
// check that serializes concurrent decisions on one requisition.
type Requisition struct {
	RequisitionID        string
	TenantID             string
	Title                string
	RequisitionType      string
	Status               RequisitionStatus
	PreviousStatus       RequisitionStatus
	Priority             RequisitionPriority
	DepartmentID         string
	BusinessUnitID       string
	CostCenterID         string
	JobGradeID           string
	Headcount            int
	HeadcountFilled      int
	SalaryMin            float64
	SalaryMax            float64
	Currency             string
	CurrentApprovalLevel int
	TotalApprovalLevels  int
	RejectionReason      string
	HoldReason           string
	PostedChannels       []string
	RequestedBy          string
	Version              int
	CreatedAt            time.Time
	UpdatedAt            time.Time
	SubmittedAt          *time.Time
	ApprovedAt           *time.Time
	RejectedAt           *time.Time
	PostedAt             *time.Time
	ClosedAt             *time.Time
}

func (r Requisition) IsTerminal() bool {
	return terminalStatuses[r.Status]
}

func (r Requisition) CanSubmit() bool {
	return r.Status == RequisitionStatusDraft || r.Status == RequisitionStatusRejected
}

func (r Requisition) CanDecide() bool {
	return r.Status == RequisitionStatusPendingApproval
}

func (r Requisition) CanCancel() bool {
	switch r.Status {
	case RequisitionStatusDraft, RequisitionStatusPendingApproval, RequisitionStatusApproved,
		RequisitionStatusPosted, RequisitionStatusActiveHiring, RequisitionStatusOnHold:
		return true
	default:
		return false
	}
}

func (r Requisition) CanHold() bool {
	switch r.Status {
	case RequisitionStatusPendingApproval, RequisitionStatusApproved,
		RequisitionStatusPosted, RequisitionStatusActiveHiring:
		return true
	default:
		return false
	}
}

func (r Requisition) CanResume() bool {
	return r.Status == RequisitionStatusOnHold
}

func (r Requisition) CanPost() bool {
	return r.Status == RequisitionStatusApproved
}

func (r Requisition) CanFill() bool {
	return r.Status == RequisitionStatusPosted || r.Status == RequisitionStatusActiveHiring
}

func (r Requisition) CanDelete() bool {
	return r.Status == RequisitionStatusDraft
}

func IsSupportedPriority(value RequisitionPriority) bool {
	switch value {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	default:
		return false
	}
}
