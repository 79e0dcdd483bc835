package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"reqflow/contexts/talent-acquisition/requisition-service/domain/entities"
	domainerrors "reqflow/contexts/talent-acquisition/requisition-service/domain/errors"
	"reqflow/contexts/talent-acquisition/requisition-service/ports"

	"github.com/google/uuid"
)

// Store is the in-memory requisition backend used by tests and local runs.
// One mutex guards every table, which makes the version check in
// UpdateRequisition and the pending guard in UpdateTransactionIfPending
// atomic the same way the row-level locks do in Postgres.
type Store struct {
	mu sync.Mutex

	requisitions map[string]entities.Requisition
	rules        map[string]entities.ApprovalRule
	transactions map[string]entities.ApprovalTransaction
	audits       []entities.AuditEntry
	idempotency  map[string]ports.IdempotencyRecord
	outbox       []ports.OutboxMessage
	published    map[string]time.Time
}

func NewStore(seedRequisitions []entities.Requisition, seedRules []entities.ApprovalRule) *Store {
	requisitions := make(map[string]entities.Requisition, len(seedRequisitions))
	for _, item := range seedRequisitions {
		requisitions[item.RequisitionID] = item
	}
	rules := make(map[string]entities.ApprovalRule, len(seedRules))
	for _, item := range seedRules {
		rules[item.RuleID] = item
	}
	return &Store{
		requisitions: requisitions,
		rules:        rules,
		transactions: make(map[string]entities.ApprovalTransaction),
		idempotency:  make(map[string]ports.IdempotencyRecord),
		published:    make(map[string]time.Time),
	}
}

func (s *Store) CreateRequisition(_ context.Context, req entities.Requisition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.requisitions[req.RequisitionID]; exists {
		return domainerrors.ErrInvalidRequisitionInput
	}
	s.requisitions[req.RequisitionID] = req
	return nil
}

func (s *Store) UpdateRequisition(_ context.Context, req entities.Requisition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.requisitions[req.RequisitionID]
	if !exists {
		return domainerrors.ErrRequisitionNotFound
	}
	if stored.Version != req.Version {
		return domainerrors.ErrConcurrentUpdate
	}
	req.Version++
	s.requisitions[req.RequisitionID] = req
	return nil
}

func (s *Store) GetRequisition(_ context.Context, requisitionID string) (entities.Requisition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, exists := s.requisitions[requisitionID]
	if !exists {
		return entities.Requisition{}, domainerrors.ErrRequisitionNotFound
	}
	return item, nil
}

func (s *Store) ListRequisitions(_ context.Context, filter ports.RequisitionFilter) ([]entities.Requisition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]entities.Requisition, 0)
	for _, item := range s.requisitions {
		if filter.TenantID != "" && item.TenantID != filter.TenantID {
			continue
		}
		if filter.DepartmentID != "" && item.DepartmentID != filter.DepartmentID {
			continue
		}
		if filter.Status != "" && item.Status != filter.Status {
			continue
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].RequisitionID < out[j].RequisitionID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) DeleteRequisition(_ context.Context, requisitionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.requisitions[requisitionID]; !exists {
		return domainerrors.ErrRequisitionNotFound
	}
	delete(s.requisitions, requisitionID)
	return nil
}

func (s *Store) CreateRule(_ context.Context, rule entities.ApprovalRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rules[rule.RuleID]; exists {
		return domainerrors.ErrInvalidRuleInput
	}
	s.rules[rule.RuleID] = rule
	return nil
}

func (s *Store) GetRule(_ context.Context, ruleID string) (entities.ApprovalRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, exists := s.rules[ruleID]
	if !exists {
		return entities.ApprovalRule{}, domainerrors.ErrRuleNotFound
	}
	return item, nil
}

func (s *Store) ListRules(_ context.Context, tenantID string, activeOnly bool) ([]entities.ApprovalRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]entities.ApprovalRule, 0)
	for _, item := range s.rules {
		if tenantID != "" && item.TenantID != tenantID {
			continue
		}
		if activeOnly && !item.IsActive {
			continue
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Level == out[j].Level {
			return out[i].RuleID < out[j].RuleID
		}
		return out[i].Level < out[j].Level
	})
	return out, nil
}

func (s *Store) DeactivateRule(_ context.Context, ruleID string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, exists := s.rules[ruleID]
	if !exists {
		return domainerrors.ErrRuleNotFound
	}
	item.IsActive = false
	item.UpdatedAt = now
	s.rules[ruleID] = item
	return nil
}

func (s *Store) CreateTransactions(_ context.Context, txs []entities.ApprovalTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, tx := range txs {
		if _, exists := s.transactions[tx.ApprovalID]; exists {
			return domainerrors.ErrInvalidRequisitionInput
		}
	}
	for _, tx := range txs {
		s.transactions[tx.ApprovalID] = tx
	}
	return nil
}

func (s *Store) ListByRequisition(_ context.Context, requisitionID string) ([]entities.ApprovalTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]entities.ApprovalTransaction, 0)
	for _, tx := range s.transactions {
		if tx.RequisitionID == requisitionID {
			out = append(out, tx)
		}
	}
	sortTransactions(out)
	return out, nil
}

func (s *Store) UpdateTransactionIfPending(_ context.Context, tx entities.ApprovalTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.transactions[tx.ApprovalID]
	if !exists {
		return domainerrors.ErrApprovalNotPending
	}
	if !stored.IsPending() {
		return domainerrors.ErrApprovalNotPending
	}
	s.transactions[tx.ApprovalID] = tx
	return nil
}

func (s *Store) DecideTransaction(_ context.Context, tx entities.ApprovalTransaction) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.transactions[tx.ApprovalID]
	if !exists {
		return 0, domainerrors.ErrApprovalNotPending
	}
	if !stored.IsPending() {
		return 0, domainerrors.ErrApprovalNotPending
	}
	s.transactions[tx.ApprovalID] = tx

	remaining := 0
	for _, other := range s.transactions {
		if other.RequisitionID == tx.RequisitionID && other.Level == tx.Level && other.IsPending() {
			remaining++
		}
	}
	return remaining, nil
}

func (s *Store) ListPendingForUser(_ context.Context, tenantID, userID string) ([]entities.ApprovalTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]entities.ApprovalTransaction, 0)
	for _, tx := range s.transactions {
		if !tx.IsPending() || tx.ApproverID != userID {
			continue
		}
		if tenantID != "" && tx.TenantID != tenantID {
			continue
		}
		req, exists := s.requisitions[tx.RequisitionID]
		if !exists || tx.Level != req.CurrentApprovalLevel {
			continue
		}
		out = append(out, tx)
	}
	sortTransactions(out)
	return out, nil
}

func (s *Store) EscalateOverdue(_ context.Context, now time.Time, limit int) ([]entities.EscalationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	candidates := make([]entities.ApprovalTransaction, 0)
	for _, tx := range s.transactions {
		if !tx.IsPending() || tx.Escalated || tx.DueAt == nil {
			continue
		}
		if now.Before(*tx.DueAt) {
			continue
		}
		candidates = append(candidates, tx)
	}
	sortTransactions(candidates)
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	records := make([]entities.EscalationRecord, 0, len(candidates))
	for _, tx := range candidates {
		escalated := now
		tx.Escalated = true
		tx.EscalatedAt = &escalated
		tx.SLAStatus = entities.SLAOverdue
		tx.UpdatedAt = now
		s.transactions[tx.ApprovalID] = tx
		records = append(records, entities.EscalationRecord{
			RequisitionID: tx.RequisitionID,
			ApprovalID:    tx.ApprovalID,
			ApproverID:    tx.ApproverID,
			ApproverName:  tx.ApproverName,
			EscalateTo:    tx.EscalateTo,
			SLABreachedAt: now,
		})
	}
	return records, nil
}

func (s *Store) AppendAudit(_ context.Context, entry entities.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.audits = append(s.audits, entry)
	return nil
}

// ListAudit returns the audit trail for one requisition in append order.
func (s *Store) ListAudit(requisitionID string) []entities.AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]entities.AuditEntry, 0)
	for _, entry := range s.audits {
		if entry.RequisitionID == requisitionID {
			out = append(out, entry)
		}
	}
	return out
}

func (s *Store) GetRecord(_ context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists := s.idempotency[key]
	if !exists {
		return ports.IdempotencyRecord{}, false, nil
	}
	if !record.ExpiresAt.IsZero() && now.After(record.ExpiresAt) {
		delete(s.idempotency, key)
		return ports.IdempotencyRecord{}, false, nil
	}
	return record, true, nil
}

func (s *Store) PutRecord(_ context.Context, record ports.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.idempotency[record.Key] = record
	return nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	s.outbox = append(s.outbox, ports.OutboxMessage{
		OutboxID:     uuid.NewString(),
		EventType:    envelope.EventType,
		PartitionKey: envelope.EntityID,
		Payload:      payload,
		CreatedAt:    envelope.OccurredAt,
	})
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ports.OutboxMessage, 0)
	for _, row := range s.outbox {
		if _, done := s.published[row.OutboxID]; done {
			continue
		}
		out = append(out, row)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, publishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.published[outboxID] = publishedAt
	return nil
}

// PendingOutboxTypes lists the event types still waiting for the relay, in
// append order. Test helper.
func (s *Store) PendingOutboxTypes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0)
	for _, row := range s.outbox {
		if _, done := s.published[row.OutboxID]; done {
			continue
		}
		out = append(out, row.EventType)
	}
	return out
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func sortTransactions(txs []entities.ApprovalTransaction) {
	sort.Slice(txs, func(i, j int) bool {
		if txs[i].Level == txs[j].Level {
			if txs[i].CreatedAt.Equal(txs[j].CreatedAt) {
				return txs[i].ApprovalID < txs[j].ApprovalID
			}
			return txs[i].CreatedAt.Before(txs[j].CreatedAt)
		}
		return txs[i].Level < txs[j].Level
	})
}
