package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"reqflow/contexts/talent-acquisition/requisition-service/adapters/memory"
	"reqflow/contexts/talent-acquisition/requisition-service/application/commands"
	"reqflow/contexts/talent-acquisition/requisition-service/domain/entities"
	domainerrors "reqflow/contexts/talent-acquisition/requisition-service/domain/errors"
	"reqflow/contexts/talent-acquisition/requisition-service/ports"
)

func newCreateUseCase() (commands.CreateRequisitionUseCase, *memory.Store) {
	store := memory.NewStore(nil, nil)
	clock := &stepClock{now: time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)}
	return commands.CreateRequisitionUseCase{
		Requisitions:   store,
		Idempotency:    store,
		Audit:          store,
		Clock:          clock,
		IDGenerator:    &seqIDs{},
		IdempotencyTTL: 24 * time.Hour,
	}, store
}

func validCreateCommand() commands.CreateRequisitionCommand {
	return commands.CreateRequisitionCommand{
		TenantID:        "tenant-1",
		RequestedBy:     "user-hm",
		IdempotencyKey:  "key-1",
		Title:           "Senior Engineer",
		RequisitionType: "new_position",
		Priority:        "high",
		DepartmentID:    "dept-eng",
		CostCenterID:    "cc-eng",
		JobGradeID:      "grade-senior",
		Headcount:       1,
		SalaryMin:       100000,
		SalaryMax:       130000,
		Currency:        "USD",
	}
}

func TestCreateRequisitionStartsAsDraft(t *testing.T) {
	uc, _ := newCreateUseCase()
	result, err := uc.Execute(context.Background(), validCreateCommand())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	req := result.Requisition
	if req.Status != entities.RequisitionStatusDraft || req.Version != 1 {
		t.Fatalf("unexpected new requisition: status=%s version=%d", req.Status, req.Version)
	}
	if req.Priority != entities.PriorityHigh {
		t.Fatalf("expected high priority, got %s", req.Priority)
	}
	if result.Replayed {
		t.Fatal("first create must not be a replay")
	}
}

func TestCreateRequisitionReplaysOnSameKey(t *testing.T) {
	uc, store := newCreateUseCase()
	first, err := uc.Execute(context.Background(), validCreateCommand())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	second, err := uc.Execute(context.Background(), validCreateCommand())
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if !second.Replayed {
		t.Fatal("expected a replay")
	}
	if second.Requisition.RequisitionID != first.Requisition.RequisitionID {
		t.Fatalf("replay returned a different requisition: %s vs %s",
			second.Requisition.RequisitionID, first.Requisition.RequisitionID)
	}

	all, err := store.ListRequisitions(context.Background(), ports.RequisitionFilter{TenantID: "tenant-1"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("replay must not create a second requisition, got %d", len(all))
	}
}

func TestCreateRequisitionConflictsOnReusedKey(t *testing.T) {
	uc, _ := newCreateUseCase()
	if _, err := uc.Execute(context.Background(), validCreateCommand()); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	altered := validCreateCommand()
	altered.Title = "Staff Engineer"
	_, err := uc.Execute(context.Background(), altered)
	if !errors.Is(err, domainerrors.ErrIdempotencyKeyConflict) {
		t.Fatalf("expected key conflict, got %v", err)
	}
}

func TestCreateRequisitionRequiresKey(t *testing.T) {
	uc, _ := newCreateUseCase()
	cmd := validCreateCommand()
	cmd.IdempotencyKey = " "
	_, err := uc.Execute(context.Background(), cmd)
	if !errors.Is(err, domainerrors.ErrIdempotencyKeyRequired) {
		t.Fatalf("expected key required, got %v", err)
	}
}

func TestCreateRequisitionValidatesInput(t *testing.T) {
	uc, _ := newCreateUseCase()
	cmd := validCreateCommand()
	cmd.SalaryMin = 150000 // above SalaryMax
	_, err := uc.Execute(context.Background(), cmd)
	if !errors.Is(err, domainerrors.ErrInvalidRequisitionInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
