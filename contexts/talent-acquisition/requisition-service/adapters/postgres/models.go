package postgresadapter

import (
	"encoding/json"
	"time"

	"reqflow/contexts/talent-acquisition/requisition-service/domain/entities"
	"reqflow/contexts/talent-acquisition/requisition-service/ports"
)

type requisitionModel struct {
	RequisitionID        string     `gorm:"column:requisition_id;primaryKey"`
	TenantID             string     `gorm:"column:tenant_id"`
	Title                string     `gorm:"column:title"`
	RequisitionType      string     `gorm:"column:requisition_type"`
	Status               string     `gorm:"column:status"`
	PreviousStatus       string     `gorm:"column:previous_status"`
	Priority             string     `gorm:"column:priority"`
	DepartmentID         string     `gorm:"column:department_id"`
	BusinessUnitID       string     `gorm:"column:business_unit_id"`
	CostCenterID         string     `gorm:"column:cost_center_id"`
	JobGradeID           string     `gorm:"column:job_grade_id"`
	Headcount            int        `gorm:"column:headcount"`
	HeadcountFilled      int        `gorm:"column:headcount_filled"`
	SalaryMin            float64    `gorm:"column:salary_min"`
	SalaryMax            float64    `gorm:"column:salary_max"`
	Currency             string     `gorm:"column:currency"`
	CurrentApprovalLevel int        `gorm:"column:current_approval_level"`
	TotalApprovalLevels  int        `gorm:"column:total_approval_levels"`
	RejectionReason      string     `gorm:"column:rejection_reason"`
	HoldReason           string     `gorm:"column:hold_reason"`
	PostedChannels       []byte     `gorm:"column:posted_channels;type:jsonb"`
	RequestedBy          string     `gorm:"column:requested_by"`
	Version              int        `gorm:"column:version"`
	CreatedAt            time.Time  `gorm:"column:created_at"`
	UpdatedAt            time.Time  `gorm:"column:updated_at"`
	SubmittedAt          *time.Time `gorm:"column:submitted_at"`
	ApprovedAt           *time.Time `gorm:"column:approved_at"`
	RejectedAt           *time.Time `gorm:"column:rejected_at"`
	PostedAt             *time.Time `gorm:"column:posted_at"`
	ClosedAt             *time.Time `gorm:"column:closed_at"`
}

func (requisitionModel) TableName() string { return "requisitions" }

func (m requisitionModel) toEntity() (entities.Requisition, error) {
	var channels []string
	if len(m.PostedChannels) > 0 {
		if err := json.Unmarshal(m.PostedChannels, &channels); err != nil {
			return entities.Requisition{}, err
		}
	}
	return entities.Requisition{
		RequisitionID:        m.RequisitionID,
		TenantID:             m.TenantID,
		Title:                m.Title,
		RequisitionType:      m.RequisitionType,
		Status:               entities.RequisitionStatus(m.Status),
		PreviousStatus:       entities.RequisitionStatus(m.PreviousStatus),
		Priority:             entities.RequisitionPriority(m.Priority),
		DepartmentID:         m.DepartmentID,
		BusinessUnitID:       m.BusinessUnitID,
		CostCenterID:         m.CostCenterID,
		JobGradeID:           m.JobGradeID,
		Headcount:            m.Headcount,
		HeadcountFilled:      m.HeadcountFilled,
		SalaryMin:            m.SalaryMin,
		SalaryMax:            m.SalaryMax,
		Currency:             m.Currency,
		CurrentApprovalLevel: m.CurrentApprovalLevel,
		TotalApprovalLevels:  m.TotalApprovalLevels,
		RejectionReason:      m.RejectionReason,
		HoldReason:           m.HoldReason,
		PostedChannels:       channels,
		RequestedBy:          m.RequestedBy,
		Version:              m.Version,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
		SubmittedAt:          m.SubmittedAt,
		ApprovedAt:           m.ApprovedAt,
		RejectedAt:           m.RejectedAt,
		PostedAt:             m.PostedAt,
		ClosedAt:             m.ClosedAt,
	}, nil
}

func requisitionModelFromEntity(req entities.Requisition) (requisitionModel, error) {
	var channels []byte
	if len(req.PostedChannels) > 0 {
		encoded, err := json.Marshal(req.PostedChannels)
		if err != nil {
			return requisitionModel{}, err
		}
		channels = encoded
	}
	return requisitionModel{
		RequisitionID:        req.RequisitionID,
		TenantID:             req.TenantID,
		Title:                req.Title,
		RequisitionType:      req.RequisitionType,
		Status:               string(req.Status),
		PreviousStatus:       string(req.PreviousStatus),
		Priority:             string(req.Priority),
		DepartmentID:         req.DepartmentID,
		BusinessUnitID:       req.BusinessUnitID,
		CostCenterID:         req.CostCenterID,
		JobGradeID:           req.JobGradeID,
		Headcount:            req.Headcount,
		HeadcountFilled:      req.HeadcountFilled,
		SalaryMin:            req.SalaryMin,
		SalaryMax:            req.SalaryMax,
		Currency:             req.Currency,
		CurrentApprovalLevel: req.CurrentApprovalLevel,
		TotalApprovalLevels:  req.TotalApprovalLevels,
		RejectionReason:      req.RejectionReason,
		HoldReason:           req.HoldReason,
		PostedChannels:       channels,
		RequestedBy:          req.RequestedBy,
		Version:              req.Version,
		CreatedAt:            req.CreatedAt,
		UpdatedAt:            req.UpdatedAt,
		SubmittedAt:          req.SubmittedAt,
		ApprovedAt:           req.ApprovedAt,
		RejectedAt:           req.RejectedAt,
		PostedAt:             req.PostedAt,
		ClosedAt:             req.ClosedAt,
	}, nil
}

// requisitionUpdatesFromEntity carries the version bump; the WHERE clause on
// the old version turns the update into a compare-and-swap.
func requisitionUpdatesFromEntity(req entities.Requisition) (map[string]any, error) {
	row, err := requisitionModelFromEntity(req)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"title":                  row.Title,
		"requisition_type":       row.RequisitionType,
		"status":                 row.Status,
		"previous_status":        row.PreviousStatus,
		"priority":               row.Priority,
		"department_id":          row.DepartmentID,
		"business_unit_id":       row.BusinessUnitID,
		"cost_center_id":         row.CostCenterID,
		"job_grade_id":           row.JobGradeID,
		"headcount":              row.Headcount,
		"headcount_filled":       row.HeadcountFilled,
		"salary_min":             row.SalaryMin,
		"salary_max":             row.SalaryMax,
		"currency":               row.Currency,
		"current_approval_level": row.CurrentApprovalLevel,
		"total_approval_levels":  row.TotalApprovalLevels,
		"rejection_reason":       row.RejectionReason,
		"hold_reason":            row.HoldReason,
		"posted_channels":        row.PostedChannels,
		"version":                row.Version + 1,
		"updated_at":             row.UpdatedAt,
		"submitted_at":           row.SubmittedAt,
		"approved_at":            row.ApprovedAt,
		"rejected_at":            row.RejectedAt,
		"posted_at":              row.PostedAt,
		"closed_at":              row.ClosedAt,
	}, nil
}

type approvalRuleModel struct {
	RuleID            string     `gorm:"column:rule_id;primaryKey"`
	TenantID          string     `gorm:"column:tenant_id"`
	Name              string     `gorm:"column:name"`
	Condition         []byte     `gorm:"column:condition;type:jsonb"`
	ApproverRole      string     `gorm:"column:approver_role"`
	CustomApprovers   []byte     `gorm:"column:custom_approvers;type:jsonb"`
	Level             int        `gorm:"column:level"`
	SLAHours          int        `gorm:"column:sla_hours"`
	EscalationEnabled bool       `gorm:"column:escalation_enabled"`
	EscalationHours   int        `gorm:"column:escalation_hours"`
	EscalateTo        string     `gorm:"column:escalate_to"`
	Priority          int        `gorm:"column:priority"`
	IsActive          bool       `gorm:"column:is_active"`
	EffectiveFrom     *time.Time `gorm:"column:effective_from"`
	EffectiveUntil    *time.Time `gorm:"column:effective_until"`
	CreatedAt         time.Time  `gorm:"column:created_at"`
	UpdatedAt         time.Time  `gorm:"column:updated_at"`
}

func (approvalRuleModel) TableName() string { return "approval_rules" }

func (m approvalRuleModel) toEntity() (entities.ApprovalRule, error) {
	condition, err := entities.DecodeCondition(m.Condition)
	if err != nil {
		return entities.ApprovalRule{}, err
	}
	var approvers []entities.Approver
	if len(m.CustomApprovers) > 0 {
		if err := json.Unmarshal(m.CustomApprovers, &approvers); err != nil {
			return entities.ApprovalRule{}, err
		}
	}
	return entities.ApprovalRule{
		RuleID:            m.RuleID,
		TenantID:          m.TenantID,
		Name:              m.Name,
		Condition:         condition,
		ApproverRole:      entities.ApproverRole(m.ApproverRole),
		CustomApprovers:   approvers,
		Level:             m.Level,
		SLAHours:          m.SLAHours,
		EscalationEnabled: m.EscalationEnabled,
		EscalationHours:   m.EscalationHours,
		EscalateTo:        m.EscalateTo,
		Priority:          m.Priority,
		IsActive:          m.IsActive,
		EffectiveFrom:     m.EffectiveFrom,
		EffectiveUntil:    m.EffectiveUntil,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}, nil
}

func approvalRuleModelFromEntity(rule entities.ApprovalRule) (approvalRuleModel, error) {
	condition, err := entities.EncodeCondition(rule.Condition)
	if err != nil {
		return approvalRuleModel{}, err
	}
	var approvers []byte
	if len(rule.CustomApprovers) > 0 {
		encoded, err := json.Marshal(rule.CustomApprovers)
		if err != nil {
			return approvalRuleModel{}, err
		}
		approvers = encoded
	}
	return approvalRuleModel{
		RuleID:            rule.RuleID,
		TenantID:          rule.TenantID,
		Name:              rule.Name,
		Condition:         condition,
		ApproverRole:      string(rule.ApproverRole),
		CustomApprovers:   approvers,
		Level:             rule.Level,
		SLAHours:          rule.SLAHours,
		EscalationEnabled: rule.EscalationEnabled,
		EscalationHours:   rule.EscalationHours,
		EscalateTo:        rule.EscalateTo,
		Priority:          rule.Priority,
		IsActive:          rule.IsActive,
		EffectiveFrom:     rule.EffectiveFrom,
		EffectiveUntil:    rule.EffectiveUntil,
		CreatedAt:         rule.CreatedAt,
		UpdatedAt:         rule.UpdatedAt,
	}, nil
}

type approvalTransactionModel struct {
	ApprovalID          string     `gorm:"column:approval_id;primaryKey"`
	TenantID            string     `gorm:"column:tenant_id"`
	RequisitionID       string     `gorm:"column:requisition_id;index"`
	Level               int        `gorm:"column:level"`
	ApproverID          string     `gorm:"column:approver_id;index"`
	ApproverName        string     `gorm:"column:approver_name"`
	ApproverEmail       string     `gorm:"column:approver_email"`
	ApproverRole        string     `gorm:"column:approver_role"`
	Status              string     `gorm:"column:status"`
	Decision            string     `gorm:"column:decision"`
	Comments            string     `gorm:"column:comments"`
	SLAHours            int        `gorm:"column:sla_hours"`
	DueAt               *time.Time `gorm:"column:due_at"`
	RespondedAt         *time.Time `gorm:"column:responded_at"`
	SLAStatus           string     `gorm:"column:sla_status"`
	Escalated           bool       `gorm:"column:escalated"`
	EscalatedAt         *time.Time `gorm:"column:escalated_at"`
	EscalateTo          string     `gorm:"column:escalate_to"`
	DelegatedFromUserID string     `gorm:"column:delegated_from_user_id"`
	CreatedAt           time.Time  `gorm:"column:created_at"`
	UpdatedAt           time.Time  `gorm:"column:updated_at"`
}

func (approvalTransactionModel) TableName() string { return "approval_transactions" }

func (m approvalTransactionModel) toEntity() entities.ApprovalTransaction {
	return entities.ApprovalTransaction{
		ApprovalID:          m.ApprovalID,
		TenantID:            m.TenantID,
		RequisitionID:       m.RequisitionID,
		Level:               m.Level,
		ApproverID:          m.ApproverID,
		ApproverName:        m.ApproverName,
		ApproverEmail:       m.ApproverEmail,
		ApproverRole:        entities.ApproverRole(m.ApproverRole),
		Status:              entities.ApprovalStatus(m.Status),
		Decision:            entities.ApprovalDecision(m.Decision),
		Comments:            m.Comments,
		SLAHours:            m.SLAHours,
		DueAt:               m.DueAt,
		RespondedAt:         m.RespondedAt,
		SLAStatus:           entities.SLAStatus(m.SLAStatus),
		Escalated:           m.Escalated,
		EscalatedAt:         m.EscalatedAt,
		EscalateTo:          m.EscalateTo,
		DelegatedFromUserID: m.DelegatedFromUserID,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

func approvalTransactionModelFromEntity(tx entities.ApprovalTransaction) approvalTransactionModel {
	return approvalTransactionModel{
		ApprovalID:          tx.ApprovalID,
		TenantID:            tx.TenantID,
		RequisitionID:       tx.RequisitionID,
		Level:               tx.Level,
		ApproverID:          tx.ApproverID,
		ApproverName:        tx.ApproverName,
		ApproverEmail:       tx.ApproverEmail,
		ApproverRole:        string(tx.ApproverRole),
		Status:              string(tx.Status),
		Decision:            string(tx.Decision),
		Comments:            tx.Comments,
		SLAHours:            tx.SLAHours,
		DueAt:               tx.DueAt,
		RespondedAt:         tx.RespondedAt,
		SLAStatus:           string(tx.SLAStatus),
		Escalated:           tx.Escalated,
		EscalatedAt:         tx.EscalatedAt,
		EscalateTo:          tx.EscalateTo,
		DelegatedFromUserID: tx.DelegatedFromUserID,
		CreatedAt:           tx.CreatedAt,
		UpdatedAt:           tx.UpdatedAt,
	}
}

type auditModel struct {
	AuditID       string    `gorm:"column:audit_id;primaryKey"`
	TenantID      string    `gorm:"column:tenant_id"`
	RequisitionID string    `gorm:"column:requisition_id;index"`
	Action        string    `gorm:"column:action"`
	PerformedBy   string    `gorm:"column:performed_by"`
	StatusBefore  string    `gorm:"column:status_before"`
	StatusAfter   string    `gorm:"column:status_after"`
	Changes       []byte    `gorm:"column:changes;type:jsonb"`
	CreatedAt     time.Time `gorm:"column:created_at"`
}

func (auditModel) TableName() string { return "requisition_audit" }

func auditModelFromEntity(entry entities.AuditEntry) (auditModel, error) {
	var changes []byte
	if len(entry.Changes) > 0 {
		encoded, err := json.Marshal(entry.Changes)
		if err != nil {
			return auditModel{}, err
		}
		changes = encoded
	}
	return auditModel{
		AuditID:       entry.AuditID,
		TenantID:      entry.TenantID,
		RequisitionID: entry.RequisitionID,
		Action:        entry.Action,
		PerformedBy:   entry.PerformedBy,
		StatusBefore:  string(entry.StatusBefore),
		StatusAfter:   string(entry.StatusAfter),
		Changes:       changes,
		CreatedAt:     entry.CreatedAt,
	}, nil
}

type idempotencyModel struct {
	Key             string    `gorm:"column:idempotency_key;primaryKey"`
	RequestHash     string    `gorm:"column:request_hash"`
	ResponsePayload []byte    `gorm:"column:response_payload"`
	ExpiresAt       time.Time `gorm:"column:expires_at"`
}

func (idempotencyModel) TableName() string { return "requisition_idempotency" }

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload;type:jsonb"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
}

func (outboxModel) TableName() string { return "requisition_outbox" }

func (m outboxModel) toMessage() ports.OutboxMessage {
	return ports.OutboxMessage{
		OutboxID:     m.OutboxID,
		EventType:    m.EventType,
		PartitionKey: m.PartitionKey,
		Payload:      m.Payload,
		CreatedAt:    m.CreatedAt,
	}
}
