package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"reqflow/contexts/talent-acquisition/requisition-service/domain/entities"
	domainerrors "reqflow/contexts/talent-acquisition/requisition-service/domain/errors"
	"reqflow/contexts/talent-acquisition/requisition-service/ports"
)

func seedRequisition() entities.Requisition {
	created := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	return entities.Requisition{
		RequisitionID: "req-1",
		TenantID:      "tenant-1",
		Title:         "Senior Engineer",
		Status:        entities.RequisitionStatusDraft,
		Version:       1,
		CreatedAt:     created,
		UpdatedAt:     created,
	}
}

func TestUpdateRequisitionRejectsStaleVersion(t *testing.T) {
	store := NewStore([]entities.Requisition{seedRequisition()}, nil)
	ctx := context.Background()

	first, err := store.GetRequisition(ctx, "req-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	stale := first

	first.Title = "Staff Engineer"
	if err := store.UpdateRequisition(ctx, first); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	stale.Title = "Principal Engineer"
	if err := store.UpdateRequisition(ctx, stale); !errors.Is(err, domainerrors.ErrConcurrentUpdate) {
		t.Fatalf("expected concurrent update, got %v", err)
	}

	current, err := store.GetRequisition(ctx, "req-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if current.Title != "Staff Engineer" || current.Version != 2 {
		t.Fatalf("lost-update guard failed: %+v", current)
	}
}

func TestUpdateTransactionIfPendingRejectsDecidedRows(t *testing.T) {
	store := NewStore(nil, nil)
	ctx := context.Background()
	created := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	tx := entities.ApprovalTransaction{
		ApprovalID:    "apr-1",
		TenantID:      "tenant-1",
		RequisitionID: "req-1",
		Level:         1,
		ApproverID:    "user-hrbp",
		Status:        entities.ApprovalStatusPending,
		SLAHours:      24,
		CreatedAt:     created,
		UpdatedAt:     created,
	}
	if err := store.CreateTransactions(ctx, []entities.ApprovalTransaction{tx}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	tx.Status = entities.ApprovalStatusApproved
	if err := store.UpdateTransactionIfPending(ctx, tx); err != nil {
		t.Fatalf("first decision failed: %v", err)
	}

	// The row is terminal now; a second decision must bounce.
	tx.Status = entities.ApprovalStatusRejected
	if err := store.UpdateTransactionIfPending(ctx, tx); !errors.Is(err, domainerrors.ErrApprovalNotPending) {
		t.Fatalf("expected approval not pending, got %v", err)
	}
}

func TestDecideTransactionCountsRemainingPendingAtomically(t *testing.T) {
	store := NewStore(nil, nil)
	ctx := context.Background()
	created := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	level := []entities.ApprovalTransaction{
		{ApprovalID: "apr-1", RequisitionID: "req-1", Level: 1, ApproverID: "user-hrbp",
			Status: entities.ApprovalStatusPending, CreatedAt: created, UpdatedAt: created},
		{ApprovalID: "apr-2", RequisitionID: "req-1", Level: 1, ApproverID: "user-head",
			Status: entities.ApprovalStatusPending, CreatedAt: created, UpdatedAt: created},
		{ApprovalID: "apr-3", RequisitionID: "req-1", Level: 2, ApproverID: "user-fin",
			Status: entities.ApprovalStatusPending, CreatedAt: created, UpdatedAt: created},
	}
	if err := store.CreateTransactions(ctx, level); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	first := level[0]
	first.Status = entities.ApprovalStatusApproved
	remaining, err := store.DecideTransaction(ctx, first)
	if err != nil {
		t.Fatalf("first decision failed: %v", err)
	}
	// The level-2 row must not count against level 1.
	if remaining != 1 {
		t.Fatalf("expected one peer still pending, got %d", remaining)
	}

	second := level[1]
	second.Status = entities.ApprovalStatusApproved
	remaining, err = store.DecideTransaction(ctx, second)
	if err != nil {
		t.Fatalf("second decision failed: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("expected the level drained, got %d", remaining)
	}

	// Terminal rows bounce, same as UpdateTransactionIfPending.
	if _, err := store.DecideTransaction(ctx, first); !errors.Is(err, domainerrors.ErrApprovalNotPending) {
		t.Fatalf("expected approval not pending, got %v", err)
	}
}

func TestIdempotencyRecordsExpire(t *testing.T) {
	store := NewStore(nil, nil)
	ctx := context.Background()
	now := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)

	if err := store.PutRecord(ctx, ports.IdempotencyRecord{
		Key:             "key-1",
		RequestHash:     "hash-1",
		ResponsePayload: []byte(`{}`),
		ExpiresAt:       now.Add(time.Hour),
	}); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	if _, found, err := store.GetRecord(ctx, "key-1", now.Add(30*time.Minute)); err != nil || !found {
		t.Fatalf("expected live record, found=%v err=%v", found, err)
	}
	if _, found, err := store.GetRecord(ctx, "key-1", now.Add(2*time.Hour)); err != nil || found {
		t.Fatalf("expected expired record dropped, found=%v err=%v", found, err)
	}
}
