package ports

import (
	"context"
	"time"

	"reqflow/contexts/talent-acquisition/requisition-service/domain/entities"
	"reqflow/internal/shared/events"
	"reqflow/internal/shared/outbox"
)

type RequisitionFilter struct {
	TenantID     string
	DepartmentID string
	Status       entities.RequisitionStatus
}

type RequisitionRepository interface {
	CreateRequisition(ctx context.Context, req entities.Requisition) error
	// UpdateRequisition persists the aggregate with an optimistic version
	// check: the stored row must still carry req.Version, and the write
	// bumps it. A stale version yields ErrConcurrentUpdate.
	UpdateRequisition(ctx context.Context, req entities.Requisition) error
	GetRequisition(ctx context.Context, requisitionID string) (entities.Requisition, error)
	ListRequisitions(ctx context.Context, filter RequisitionFilter) ([]entities.Requisition, error)
	DeleteRequisition(ctx context.Context, requisitionID string) error
}

type ApprovalRuleRepository interface {
	CreateRule(ctx context.Context, rule entities.ApprovalRule) error
	GetRule(ctx context.Context, ruleID string) (entities.ApprovalRule, error)
	ListRules(ctx context.Context, tenantID string, activeOnly bool) ([]entities.ApprovalRule, error)
	DeactivateRule(ctx context.Context, ruleID string, now time.Time) error
}

type ApprovalTransactionRepository interface {
	CreateTransactions(ctx context.Context, txs []entities.ApprovalTransaction) error
	ListByRequisition(ctx context.Context, requisitionID string) ([]entities.ApprovalTransaction, error)
	// UpdateTransactionIfPending writes a transaction only while the stored
	// row is still pending; a terminal row yields ErrApprovalNotPending so
	// two racing decisions cannot both flip the same slot.
	UpdateTransactionIfPending(ctx context.Context, tx entities.ApprovalTransaction) error
	// DecideTransaction closes a pending transaction and reports how many
	// transactions remain pending on the same level of the same requisition.
	// Close and count happen in one repository transaction, so exactly one
	// of several concurrent same-level decisions observes zero remaining and
	// owns the level-complete move.
	DecideTransaction(ctx context.Context, tx entities.ApprovalTransaction) (int, error)
	ListPendingForUser(ctx context.Context, tenantID, userID string) ([]entities.ApprovalTransaction, error)
	// EscalateOverdue atomically flags pending, not-yet-escalated
	// transactions past their due time and returns one escalation record
	// each. The escalated flag makes repeated sweeps idempotent.
	EscalateOverdue(ctx context.Context, now time.Time, limit int) ([]entities.EscalationRecord, error)
}

// ApproverDirectory resolves who holds an approver role for a requisition.
// An error or empty result means the level has no approvers and is treated
// as auto-satisfied.
type ApproverDirectory interface {
	ResolveApprovers(ctx context.Context, role entities.ApproverRole, req entities.Requisition) ([]entities.Approver, error)
}

// BudgetGateway is the requisition side of the budget ledger. All four
// operations are transactional in the ledger; errors surface the ledger's
// sentinel kinds unchanged.
type BudgetGateway interface {
	ValidateSalaryBand(ctx context.Context, jobGradeID string, salaryMin, salaryMax float64) error
	Reserve(ctx context.Context, req entities.Requisition) error
	Release(ctx context.Context, requisitionID string) error
	Commit(ctx context.Context, requisitionID string) error
}

// AuditRepository is append-only; callers log and suppress its failures.
type AuditRepository interface {
	AppendAudit(ctx context.Context, entry entities.AuditEntry) error
}

type IdempotencyRecord struct {
	Key             string
	RequestHash     string
	ResponsePayload []byte
	ExpiresAt       time.Time
}

type IdempotencyStore interface {
	GetRecord(ctx context.Context, key string, now time.Time) (IdempotencyRecord, bool, error)
	PutRecord(ctx context.Context, record IdempotencyRecord) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type EventEnvelope = events.Envelope

type OutboxMessage = outbox.Message

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}
