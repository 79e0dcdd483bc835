package ports

import (
	"context"
	"time"

	"reqflow/contexts/talent-acquisition/budget-ledger-service/domain/entities"
)

// ReserveRequest carries the inputs for a check-then-reserve. The availability
// check and the counter increment must happen under the same cost-center lock.
type ReserveRequest struct {
	TenantID      string
	CostCenterID  string
	RequisitionID string
	Headcount     int
	SalaryPerHead float64
	Amount        float64
}

// LedgerRepository owns every mutation of cost-center counters. Reserve,
// Release and Commit are all-or-nothing and hold the cost-center row lock for
// their duration; partial counter updates never persist.
type LedgerRepository interface {
	CreateCostCenter(ctx context.Context, costCenter entities.CostCenter) error
	GetCostCenter(ctx context.Context, costCenterID string) (entities.CostCenter, error)

	ReserveFunds(ctx context.Context, req ReserveRequest, now time.Time) (entities.BudgetReservation, error)
	// ReleaseFunds returns false without error when no active reservation
	// exists, making release idempotent.
	ReleaseFunds(ctx context.Context, requisitionID string, now time.Time) (bool, error)
	CommitFunds(ctx context.Context, requisitionID string, now time.Time) (entities.BudgetReservation, error)

	GetActiveReservation(ctx context.Context, requisitionID string) (entities.BudgetReservation, error)
	ListReservations(ctx context.Context, requisitionID string) ([]entities.BudgetReservation, error)

	CreateJobGrade(ctx context.Context, grade entities.JobGrade) error
	GetJobGrade(ctx context.Context, jobGradeID string) (entities.JobGrade, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
