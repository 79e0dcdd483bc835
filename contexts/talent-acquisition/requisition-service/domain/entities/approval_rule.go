package entities

import "time"

type ApproverRole string

const (
	RoleHRBusinessPartner ApproverRole = "hr_business_partner"
	RoleFinanceController ApproverRole = "finance_controller"
	RoleDepartmentHead    ApproverRole = "department_head"
	RoleExecutive         ApproverRole = "executive"
	RoleCustom            ApproverRole = "custom"
)

// Approver is a resolved person who can act on an approval level.
type Approver struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// ApprovalRule is tenant-scoped configuration, read-only to the workflow.
// Once transactions have been materialized from a rule set, the transactions
// are the source of truth; deactivating a rule never touches in-flight chains.
type ApprovalRule struct {
	RuleID            string
	TenantID          string
	Name              string
	Condition         RuleCondition
	ApproverRole      ApproverRole
	CustomApprovers   []Approver
	Level             int
	SLAHours          int
	EscalationEnabled bool
	EscalationHours   int
	EscalateTo        string
	Priority          int
	IsActive          bool
	EffectiveFrom     *time.Time
	EffectiveUntil    *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// EffectiveAt reports whether the rule's effective window covers now.
func (r ApprovalRule) EffectiveAt(now time.Time) bool {
	if r.EffectiveFrom != nil && now.Before(*r.EffectiveFrom) {
		return false
	}
	if r.EffectiveUntil != nil && !now.Before(*r.EffectiveUntil) {
		return false
	}
	return true
}

func IsSupportedApproverRole(value ApproverRole) bool {
	switch value {
	case RoleHRBusinessPartner, RoleFinanceController, RoleDepartmentHead, RoleExecutive, RoleCustom:
		return true
	default:
		return false
	}
}
