package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"reqflow/contexts/talent-acquisition/budget-ledger-service/adapters/memory"
	"reqflow/contexts/talent-acquisition/budget-ledger-service/application"
	"reqflow/contexts/talent-acquisition/budget-ledger-service/domain/entities"
	domainerrors "reqflow/contexts/talent-acquisition/budget-ledger-service/domain/errors"
)

func newLedgerService(t *testing.T, budget float64) (application.Service, *memory.Store) {
	t.Helper()
	now := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	store := memory.NewStore(
		[]entities.CostCenter{{
			CostCenterID: "cc-eng",
			TenantID:     "tenant-1",
			Code:         "ENG",
			Name:         "Engineering",
			Currency:     "USD",
			BudgetAmount: budget,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}},
		[]entities.JobGrade{{
			JobGradeID: "grade-senior",
			TenantID:   "tenant-1",
			Code:       "L5",
			Title:      "Senior Engineer",
			SalaryMin:  90000,
			SalaryMax:  140000,
			Currency:   "USD",
			IsActive:   true,
			CreatedAt:  now,
			UpdatedAt:  now,
		}},
	)
	return application.Service{Ledger: store, Clock: store, IDGen: store}, store
}

func TestReserveCommitThenOverdraftRejected(t *testing.T) {
	service, store := newLedgerService(t, 100000)
	ctx := context.Background()

	if _, err := service.Reserve(ctx, application.ReserveCommand{
		TenantID:      "tenant-1",
		CostCenterID:  "cc-eng",
		RequisitionID: "req-1",
		Headcount:     1,
		SalaryPerHead: 20000,
	}); err != nil {
		t.Fatalf("reserve 20000 failed: %v", err)
	}
	if err := service.Commit(ctx, "req-1"); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	costCenter, err := store.GetCostCenter(ctx, "cc-eng")
	if err != nil {
		t.Fatalf("get cost center failed: %v", err)
	}
	if costCenter.UsedAmount != 20000 || costCenter.ReservedAmount != 0 {
		t.Fatalf("unexpected counters after commit: used=%v reserved=%v", costCenter.UsedAmount, costCenter.ReservedAmount)
	}
	if costCenter.Available() != 80000 {
		t.Fatalf("expected 80000 available, got %v", costCenter.Available())
	}

	_, err = service.Reserve(ctx, application.ReserveCommand{
		TenantID:      "tenant-1",
		CostCenterID:  "cc-eng",
		RequisitionID: "req-2",
		Headcount:     1,
		SalaryPerHead: 90000,
	})
	if !errors.Is(err, domainerrors.ErrInsufficientBudget) {
		t.Fatalf("expected insufficient budget, got %v", err)
	}

	after, err := store.GetCostCenter(ctx, "cc-eng")
	if err != nil {
		t.Fatalf("get cost center failed: %v", err)
	}
	if after.UsedAmount != costCenter.UsedAmount || after.ReservedAmount != costCenter.ReservedAmount {
		t.Fatalf("failed reserve mutated counters: %+v", after)
	}
}

func TestReserveComputesAmountFromHeadcount(t *testing.T) {
	service, store := newLedgerService(t, 300000)
	ctx := context.Background()

	reservation, err := service.Reserve(ctx, application.ReserveCommand{
		TenantID:      "tenant-1",
		CostCenterID:  "cc-eng",
		RequisitionID: "req-multi",
		Headcount:     3,
		SalaryPerHead: 95000,
	})
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	if reservation.Amount != 285000 {
		t.Fatalf("expected amount 285000, got %v", reservation.Amount)
	}

	costCenter, err := store.GetCostCenter(ctx, "cc-eng")
	if err != nil {
		t.Fatalf("get cost center failed: %v", err)
	}
	if costCenter.ReservedAmount != 285000 {
		t.Fatalf("expected reserved 285000, got %v", costCenter.ReservedAmount)
	}
}

func TestDuplicateReservationRejected(t *testing.T) {
	service, _ := newLedgerService(t, 100000)
	ctx := context.Background()

	if _, err := service.Reserve(ctx, application.ReserveCommand{
		TenantID:      "tenant-1",
		CostCenterID:  "cc-eng",
		RequisitionID: "req-1",
		Headcount:     1,
		SalaryPerHead: 10000,
	}); err != nil {
		t.Fatalf("first reserve failed: %v", err)
	}
	_, err := service.Reserve(ctx, application.ReserveCommand{
		TenantID:      "tenant-1",
		CostCenterID:  "cc-eng",
		RequisitionID: "req-1",
		Headcount:     1,
		SalaryPerHead: 10000,
	})
	if !errors.Is(err, domainerrors.ErrDuplicateReservation) {
		t.Fatalf("expected duplicate reservation, got %v", err)
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	service, store := newLedgerService(t, 100000)
	ctx := context.Background()

	if _, err := service.Reserve(ctx, application.ReserveCommand{
		TenantID:      "tenant-1",
		CostCenterID:  "cc-eng",
		RequisitionID: "req-1",
		Headcount:     1,
		SalaryPerHead: 25000,
	}); err != nil {
		t.Fatalf("reserve failed: %v", err)
	}

	if err := service.Release(ctx, "req-1"); err != nil {
		t.Fatalf("first release failed: %v", err)
	}
	costCenter, err := store.GetCostCenter(ctx, "cc-eng")
	if err != nil {
		t.Fatalf("get cost center failed: %v", err)
	}
	if costCenter.ReservedAmount != 0 || costCenter.Available() != 100000 {
		t.Fatalf("unexpected counters after release: %+v", costCenter)
	}

	// Second release has nothing to do and must not error or move counters.
	if err := service.Release(ctx, "req-1"); err != nil {
		t.Fatalf("second release failed: %v", err)
	}
	again, err := store.GetCostCenter(ctx, "cc-eng")
	if err != nil {
		t.Fatalf("get cost center failed: %v", err)
	}
	if again.ReservedAmount != 0 || again.UsedAmount != 0 {
		t.Fatalf("idempotent release mutated counters: %+v", again)
	}
}

func TestCommitWithoutReservationFails(t *testing.T) {
	service, _ := newLedgerService(t, 100000)
	if err := service.Commit(context.Background(), "req-ghost"); !errors.Is(err, domainerrors.ErrNoActiveReservation) {
		t.Fatalf("expected no active reservation, got %v", err)
	}
}

func TestValidateSalaryBand(t *testing.T) {
	service, _ := newLedgerService(t, 100000)
	ctx := context.Background()

	if err := service.ValidateSalaryBand(ctx, "grade-senior", 120000, 100000); !errors.Is(err, domainerrors.ErrInvertedSalaryRange) {
		t.Fatalf("expected inverted range, got %v", err)
	}
	if err := service.ValidateSalaryBand(ctx, "grade-missing", 90000, 100000); !errors.Is(err, domainerrors.ErrInvalidJobGrade) {
		t.Fatalf("expected invalid grade, got %v", err)
	}
	if err := service.ValidateSalaryBand(ctx, "grade-senior", 80000, 100000); !errors.Is(err, domainerrors.ErrSalaryBelowGradeMin) {
		t.Fatalf("expected below grade min, got %v", err)
	}
	if err := service.ValidateSalaryBand(ctx, "grade-senior", 100000, 150000); !errors.Is(err, domainerrors.ErrSalaryAboveGradeMax) {
		t.Fatalf("expected above grade max, got %v", err)
	}
	if err := service.ValidateSalaryBand(ctx, "grade-senior", 90000, 140000); err != nil {
		t.Fatalf("expected band at grade bounds to pass, got %v", err)
	}
}

func TestInactiveCostCenterRejectsReserve(t *testing.T) {
	service, store := newLedgerService(t, 100000)
	ctx := context.Background()

	inactive := entities.CostCenter{
		CostCenterID: "cc-frozen",
		TenantID:     "tenant-1",
		Code:         "FRZ",
		Name:         "Frozen",
		Currency:     "USD",
		BudgetAmount: 50000,
		IsActive:     false,
	}
	if err := store.CreateCostCenter(ctx, inactive); err != nil {
		t.Fatalf("seed cost center failed: %v", err)
	}
	_, err := service.Reserve(ctx, application.ReserveCommand{
		TenantID:      "tenant-1",
		CostCenterID:  "cc-frozen",
		RequisitionID: "req-1",
		Headcount:     1,
		SalaryPerHead: 10000,
	})
	if !errors.Is(err, domainerrors.ErrCostCenterInactive) {
		t.Fatalf("expected inactive cost center, got %v", err)
	}
}
