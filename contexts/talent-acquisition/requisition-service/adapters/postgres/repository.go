package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"reqflow/contexts/talent-acquisition/requisition-service/domain/entities"
	domainerrors "reqflow/contexts/talent-acquisition/requisition-service/domain/errors"
	"reqflow/contexts/talent-acquisition/requisition-service/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

func (r *Repository) CreateRequisition(ctx context.Context, req entities.Requisition) error {
	row, err := requisitionModelFromEntity(req)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrInvalidRequisitionInput
		}
		return err
	}
	return nil
}

// UpdateRequisition is a compare-and-swap on the version column. Zero rows
// affected means another writer got there first.
func (r *Repository) UpdateRequisition(ctx context.Context, req entities.Requisition) error {
	updates, err := requisitionUpdatesFromEntity(req)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).
		Model(&requisitionModel{}).
		Where("requisition_id = ? AND version = ?", req.RequisitionID, req.Version).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&requisitionModel{}).
			Where("requisition_id = ?", req.RequisitionID).
			Count(&count).
			Error; err != nil {
			return err
		}
		if count == 0 {
			return domainerrors.ErrRequisitionNotFound
		}
		return domainerrors.ErrConcurrentUpdate
	}
	return nil
}

func (r *Repository) GetRequisition(ctx context.Context, requisitionID string) (entities.Requisition, error) {
	var row requisitionModel
	err := r.db.WithContext(ctx).
		Where("requisition_id = ?", strings.TrimSpace(requisitionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Requisition{}, domainerrors.ErrRequisitionNotFound
		}
		return entities.Requisition{}, err
	}
	return row.toEntity()
}

func (r *Repository) ListRequisitions(ctx context.Context, filter ports.RequisitionFilter) ([]entities.Requisition, error) {
	query := r.db.WithContext(ctx).Model(&requisitionModel{})
	if filter.TenantID != "" {
		query = query.Where("tenant_id = ?", filter.TenantID)
	}
	if filter.DepartmentID != "" {
		query = query.Where("department_id = ?", filter.DepartmentID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	var rows []requisitionModel
	if err := query.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entities.Requisition, 0, len(rows))
	for _, row := range rows {
		item, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *Repository) DeleteRequisition(ctx context.Context, requisitionID string) error {
	result := r.db.WithContext(ctx).
		Where("requisition_id = ?", requisitionID).
		Delete(&requisitionModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrRequisitionNotFound
	}
	return nil
}

func (r *Repository) CreateRule(ctx context.Context, rule entities.ApprovalRule) error {
	row, err := approvalRuleModelFromEntity(rule)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrInvalidRuleInput
		}
		return err
	}
	return nil
}

func (r *Repository) GetRule(ctx context.Context, ruleID string) (entities.ApprovalRule, error) {
	var row approvalRuleModel
	err := r.db.WithContext(ctx).
		Where("rule_id = ?", strings.TrimSpace(ruleID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.ApprovalRule{}, domainerrors.ErrRuleNotFound
		}
		return entities.ApprovalRule{}, err
	}
	return row.toEntity()
}

func (r *Repository) ListRules(ctx context.Context, tenantID string, activeOnly bool) ([]entities.ApprovalRule, error) {
	query := r.db.WithContext(ctx).Model(&approvalRuleModel{})
	if tenantID != "" {
		query = query.Where("tenant_id = ?", tenantID)
	}
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var rows []approvalRuleModel
	if err := query.Order("level ASC, rule_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entities.ApprovalRule, 0, len(rows))
	for _, row := range rows {
		item, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *Repository) DeactivateRule(ctx context.Context, ruleID string, now time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&approvalRuleModel{}).
		Where("rule_id = ?", ruleID).
		Updates(map[string]any{"is_active": false, "updated_at": now})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrRuleNotFound
	}
	return nil
}

func (r *Repository) CreateTransactions(ctx context.Context, txs []entities.ApprovalTransaction) error {
	if len(txs) == 0 {
		return nil
	}
	rows := make([]approvalTransactionModel, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, approvalTransactionModelFromEntity(tx))
	}
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrInvalidRequisitionInput
		}
		return err
	}
	return nil
}

func (r *Repository) ListByRequisition(ctx context.Context, requisitionID string) ([]entities.ApprovalTransaction, error) {
	var rows []approvalTransactionModel
	err := r.db.WithContext(ctx).
		Where("requisition_id = ?", requisitionID).
		Order("level ASC, created_at ASC, approval_id ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	out := make([]entities.ApprovalTransaction, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}

// UpdateTransactionIfPending guards the write with the stored status so a
// decision and a concurrent sweep cannot both close the same slot.
func (r *Repository) UpdateTransactionIfPending(ctx context.Context, tx entities.ApprovalTransaction) error {
	row := approvalTransactionModelFromEntity(tx)
	result := r.db.WithContext(ctx).
		Model(&approvalTransactionModel{}).
		Where("approval_id = ? AND status = ?", tx.ApprovalID, string(entities.ApprovalStatusPending)).
		Updates(map[string]any{
			"status":       row.Status,
			"decision":     row.Decision,
			"comments":     row.Comments,
			"due_at":       row.DueAt,
			"responded_at": row.RespondedAt,
			"sla_status":   row.SLAStatus,
			"escalated":    row.Escalated,
			"escalated_at": row.EscalatedAt,
			"updated_at":   row.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrApprovalNotPending
	}
	return nil
}

// DecideTransaction closes the slot and counts the level's remaining pending
// slots under one set of row locks, so concurrent same-level decisions agree
// on who saw the level drain to zero.
func (r *Repository) DecideTransaction(ctx context.Context, decided entities.ApprovalTransaction) (int, error) {
	row := approvalTransactionModelFromEntity(decided)
	var remaining int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var level []approvalTransactionModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("requisition_id = ? AND level = ?", decided.RequisitionID, decided.Level).
			Find(&level).
			Error; err != nil {
			return err
		}
		result := tx.Model(&approvalTransactionModel{}).
			Where("approval_id = ? AND status = ?", decided.ApprovalID, string(entities.ApprovalStatusPending)).
			Updates(map[string]any{
				"status":       row.Status,
				"decision":     row.Decision,
				"comments":     row.Comments,
				"due_at":       row.DueAt,
				"responded_at": row.RespondedAt,
				"sla_status":   row.SLAStatus,
				"escalated":    row.Escalated,
				"escalated_at": row.EscalatedAt,
				"updated_at":   row.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrApprovalNotPending
		}
		return tx.Model(&approvalTransactionModel{}).
			Where("requisition_id = ? AND level = ? AND status = ?",
				decided.RequisitionID, decided.Level, string(entities.ApprovalStatusPending)).
			Count(&remaining).
			Error
	})
	if err != nil {
		return 0, err
	}
	return int(remaining), nil
}

func (r *Repository) ListPendingForUser(ctx context.Context, tenantID, userID string) ([]entities.ApprovalTransaction, error) {
	query := r.db.WithContext(ctx).
		Model(&approvalTransactionModel{}).
		Joins("JOIN requisitions ON requisitions.requisition_id = approval_transactions.requisition_id AND requisitions.current_approval_level = approval_transactions.level").
		Where("approval_transactions.status = ? AND approval_transactions.approver_id = ?",
			string(entities.ApprovalStatusPending), userID)
	if tenantID != "" {
		query = query.Where("approval_transactions.tenant_id = ?", tenantID)
	}
	var rows []approvalTransactionModel
	if err := query.Order("approval_transactions.due_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entities.ApprovalTransaction, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}

// EscalateOverdue locks the overdue rows, flips their escalated flag and
// returns one record per row, all in one transaction. A row picked up by one
// sweep is invisible to the next.
func (r *Repository) EscalateOverdue(ctx context.Context, now time.Time, limit int) ([]entities.EscalationRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	var records []entities.EscalationRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []approvalTransactionModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("status = ? AND escalated = ? AND due_at IS NOT NULL AND due_at <= ?",
				string(entities.ApprovalStatusPending), false, now).
			Order("due_at ASC").
			Limit(limit).
			Find(&rows).
			Error; err != nil {
			return err
		}
		for _, row := range rows {
			if err := tx.Model(&approvalTransactionModel{}).
				Where("approval_id = ?", row.ApprovalID).
				Updates(map[string]any{
					"escalated":    true,
					"escalated_at": now,
					"sla_status":   string(entities.SLAOverdue),
					"updated_at":   now,
				}).
				Error; err != nil {
				return err
			}
			records = append(records, entities.EscalationRecord{
				RequisitionID: row.RequisitionID,
				ApprovalID:    row.ApprovalID,
				ApproverID:    row.ApproverID,
				ApproverName:  row.ApproverName,
				EscalateTo:    row.EscalateTo,
				SLABreachedAt: now,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *Repository) AppendAudit(ctx context.Context, entry entities.AuditEntry) error {
	row, err := auditModelFromEntity(entry)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *Repository) GetRecord(ctx context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	var row idempotencyModel
	err := r.db.WithContext(ctx).
		Where("idempotency_key = ? AND expires_at > ?", key, now).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.IdempotencyRecord{}, false, nil
		}
		return ports.IdempotencyRecord{}, false, err
	}
	return ports.IdempotencyRecord{
		Key:             row.Key,
		RequestHash:     row.RequestHash,
		ResponsePayload: row.ResponsePayload,
		ExpiresAt:       row.ExpiresAt,
	}, true, nil
}

func (r *Repository) PutRecord(ctx context.Context, record ports.IdempotencyRecord) error {
	row := idempotencyModel{
		Key:             record.Key,
		RequestHash:     record.RequestHash,
		ResponsePayload: record.ResponsePayload,
		ExpiresAt:       record.ExpiresAt,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "idempotency_key"}},
			UpdateAll: true,
		}).
		Create(&row).
		Error
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	row := outboxModel{
		OutboxID:     uuid.NewString(),
		EventType:    envelope.EventType,
		PartitionKey: envelope.EntityID,
		Payload:      payload,
		CreatedAt:    envelope.OccurredAt,
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	err := r.db.WithContext(ctx).
		Where("published_at IS NULL").
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	out := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toMessage())
	}
	return out, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", outboxID).
		Update("published_at", publishedAt).
		Error
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
