package httptransport

import (
	"encoding/json"
	"time"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateRequisitionRequest struct {
	IdempotencyKey  string  `json:"idempotency_key"`
	Title           string  `json:"title"`
	RequisitionType string  `json:"requisition_type"`
	Priority        string  `json:"priority"`
	DepartmentID    string  `json:"department_id"`
	BusinessUnitID  string  `json:"business_unit_id"`
	CostCenterID    string  `json:"cost_center_id"`
	JobGradeID      string  `json:"job_grade_id"`
	Headcount       int     `json:"headcount"`
	SalaryMin       float64 `json:"salary_min"`
	SalaryMax       float64 `json:"salary_max"`
	Currency        string  `json:"currency"`
}

type RequisitionResponse struct {
	RequisitionID        string   `json:"requisition_id"`
	TenantID             string   `json:"tenant_id"`
	Title                string   `json:"title"`
	RequisitionType      string   `json:"requisition_type"`
	Status               string   `json:"status"`
	Priority             string   `json:"priority"`
	DepartmentID         string   `json:"department_id"`
	BusinessUnitID       string   `json:"business_unit_id,omitempty"`
	CostCenterID         string   `json:"cost_center_id"`
	JobGradeID           string   `json:"job_grade_id"`
	Headcount            int      `json:"headcount"`
	HeadcountFilled      int      `json:"headcount_filled"`
	SalaryMin            float64  `json:"salary_min"`
	SalaryMax            float64  `json:"salary_max"`
	Currency             string   `json:"currency,omitempty"`
	CurrentApprovalLevel int      `json:"current_approval_level"`
	TotalApprovalLevels  int      `json:"total_approval_levels"`
	RejectionReason      string   `json:"rejection_reason,omitempty"`
	HoldReason           string   `json:"hold_reason,omitempty"`
	PostedChannels       []string `json:"posted_channels,omitempty"`
	RequestedBy          string   `json:"requested_by"`
	Version              int      `json:"version"`
	CreatedAt            string   `json:"created_at"`
	SubmittedAt          string   `json:"submitted_at,omitempty"`
	ApprovedAt           string   `json:"approved_at,omitempty"`
	RejectedAt           string   `json:"rejected_at,omitempty"`
	PostedAt             string   `json:"posted_at,omitempty"`
	ClosedAt             string   `json:"closed_at,omitempty"`
}

type SubmitRequisitionResponse struct {
	Requisition      RequisitionResponse `json:"requisition"`
	TotalLevels      int                 `json:"total_levels"`
	AutoApproved     bool                `json:"auto_approved"`
	PendingApprovers []string            `json:"pending_approvers,omitempty"`
}

type ApproverDTO struct {
	UserID string `json:"user_id"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
}

type DecisionRequest struct {
	Decision   string      `json:"decision"`
	Comments   string      `json:"comments,omitempty"`
	DelegateTo ApproverDTO `json:"delegate_to,omitempty"`
}

type DecisionResponse struct {
	Requisition      RequisitionResponse `json:"requisition"`
	Approval         ApprovalDTO         `json:"approval"`
	IsFullyApproved  bool                `json:"is_fully_approved"`
	NextLevel        int                 `json:"next_level,omitempty"`
	PendingApprovers []string            `json:"pending_approvers,omitempty"`
}

type ApprovalDTO struct {
	ApprovalID          string `json:"approval_id"`
	RequisitionID       string `json:"requisition_id"`
	Level               int    `json:"level"`
	ApproverID          string `json:"approver_id"`
	ApproverName        string `json:"approver_name,omitempty"`
	ApproverRole        string `json:"approver_role"`
	Status              string `json:"status"`
	Decision            string `json:"decision,omitempty"`
	Comments            string `json:"comments,omitempty"`
	SLAHours            int    `json:"sla_hours"`
	SLAStatus           string `json:"sla_status"`
	DueAt               string `json:"due_at,omitempty"`
	RespondedAt         string `json:"responded_at,omitempty"`
	Escalated           bool   `json:"escalated"`
	EscalateTo          string `json:"escalate_to,omitempty"`
	DelegatedFromUserID string `json:"delegated_from_user_id,omitempty"`
}

type RequisitionDetailResponse struct {
	Requisition RequisitionResponse `json:"requisition"`
	Approvals   []ApprovalDTO       `json:"approvals"`
}

type ListRequisitionsResponse struct {
	Requisitions []RequisitionResponse `json:"requisitions"`
}

type PendingApprovalsResponse struct {
	Approvals []ApprovalDTO `json:"approvals"`
}

type CancelRequisitionRequest struct {
	Reason string `json:"reason,omitempty"`
}

type HoldRequisitionRequest struct {
	Reason string `json:"reason,omitempty"`
}

type PostRequisitionRequest struct {
	Channels []string `json:"channels"`
}

type FillRequisitionRequest struct {
	HiresMade int `json:"hires_made"`
}

type CreateRuleRequest struct {
	Name              string          `json:"name"`
	Condition         json.RawMessage `json:"condition,omitempty"`
	ApproverRole      string          `json:"approver_role"`
	CustomApprovers   []ApproverDTO   `json:"custom_approvers,omitempty"`
	Level             int             `json:"level"`
	SLAHours          int             `json:"sla_hours"`
	EscalationEnabled bool            `json:"escalation_enabled"`
	EscalationHours   int             `json:"escalation_hours,omitempty"`
	EscalateTo        string          `json:"escalate_to,omitempty"`
	Priority          int             `json:"priority"`
	EffectiveFrom     *time.Time      `json:"effective_from,omitempty"`
	EffectiveUntil    *time.Time      `json:"effective_until,omitempty"`
}

type RuleResponse struct {
	RuleID            string          `json:"rule_id"`
	TenantID          string          `json:"tenant_id"`
	Name              string          `json:"name"`
	Condition         json.RawMessage `json:"condition,omitempty"`
	ApproverRole      string          `json:"approver_role"`
	CustomApprovers   []ApproverDTO   `json:"custom_approvers,omitempty"`
	Level             int             `json:"level"`
	SLAHours          int             `json:"sla_hours"`
	EscalationEnabled bool            `json:"escalation_enabled"`
	EscalationHours   int             `json:"escalation_hours,omitempty"`
	EscalateTo        string          `json:"escalate_to,omitempty"`
	Priority          int             `json:"priority"`
	IsActive          bool            `json:"is_active"`
}
