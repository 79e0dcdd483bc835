package application

import (
	"context"
	"log/slog"
	"strings"

	"reqflow/contexts/talent-acquisition/budget-ledger-service/domain/entities"
	domainerrors "reqflow/contexts/talent-acquisition/budget-ledger-service/domain/errors"
	"reqflow/contexts/talent-acquisition/budget-ledger-service/ports"
)

// Service is the budget ledger. Every cost-center counter mutation in the
// system goes through Reserve, Release or Commit here.
type Service struct {
	Ledger ports.LedgerRepository
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

type ReserveCommand struct {
	TenantID      string
	CostCenterID  string
	RequisitionID string
	Headcount     int
	SalaryPerHead float64
}

func (s Service) Reserve(ctx context.Context, cmd ReserveCommand) (entities.BudgetReservation, error) {
	logger := ResolveLogger(s.Logger)
	costCenterID := strings.TrimSpace(cmd.CostCenterID)
	requisitionID := strings.TrimSpace(cmd.RequisitionID)
	if costCenterID == "" || requisitionID == "" || cmd.Headcount <= 0 || cmd.SalaryPerHead <= 0 {
		return entities.BudgetReservation{}, domainerrors.ErrInvalidLedgerInput
	}

	amount := cmd.SalaryPerHead * float64(cmd.Headcount)
	reservation, err := s.Ledger.ReserveFunds(ctx, ports.ReserveRequest{
		TenantID:      strings.TrimSpace(cmd.TenantID),
		CostCenterID:  costCenterID,
		RequisitionID: requisitionID,
		Headcount:     cmd.Headcount,
		SalaryPerHead: cmd.SalaryPerHead,
		Amount:        amount,
	}, s.Clock.Now().UTC())
	if err != nil {
		return entities.BudgetReservation{}, err
	}

	logger.Info("budget reserved",
		"event", "budget_reserved",
		"module", "talent-acquisition/budget-ledger-service",
		"layer", "application",
		"cost_center_id", costCenterID,
		"requisition_id", requisitionID,
		"amount", amount,
	)
	return reservation, nil
}

// Release frees the active reservation for a requisition. Calling it when
// nothing is reserved is a successful no-op.
func (s Service) Release(ctx context.Context, requisitionID string) error {
	logger := ResolveLogger(s.Logger)
	requisitionID = strings.TrimSpace(requisitionID)
	if requisitionID == "" {
		return domainerrors.ErrInvalidLedgerInput
	}

	released, err := s.Ledger.ReleaseFunds(ctx, requisitionID, s.Clock.Now().UTC())
	if err != nil {
		return err
	}
	if released {
		logger.Info("budget released",
			"event", "budget_released",
			"module", "talent-acquisition/budget-ledger-service",
			"layer", "application",
			"requisition_id", requisitionID,
		)
	}
	return nil
}

// Commit moves the reserved amount into used once headcount is filled.
// Unlike Release, a missing active reservation is an error here.
func (s Service) Commit(ctx context.Context, requisitionID string) error {
	logger := ResolveLogger(s.Logger)
	requisitionID = strings.TrimSpace(requisitionID)
	if requisitionID == "" {
		return domainerrors.ErrInvalidLedgerInput
	}

	reservation, err := s.Ledger.CommitFunds(ctx, requisitionID, s.Clock.Now().UTC())
	if err != nil {
		return err
	}

	logger.Info("budget committed",
		"event", "budget_committed",
		"module", "talent-acquisition/budget-ledger-service",
		"layer", "application",
		"requisition_id", requisitionID,
		"cost_center_id", reservation.CostCenterID,
		"amount", reservation.Amount,
	)
	return nil
}

// ValidateSalaryBand checks a proposed salary range against the job grade.
func (s Service) ValidateSalaryBand(ctx context.Context, jobGradeID string, salaryMin, salaryMax float64) error {
	if salaryMin > salaryMax {
		return domainerrors.ErrInvertedSalaryRange
	}
	grade, err := s.Ledger.GetJobGrade(ctx, strings.TrimSpace(jobGradeID))
	if err != nil {
		return domainerrors.ErrInvalidJobGrade
	}
	if !grade.IsActive {
		return domainerrors.ErrInvalidJobGrade
	}
	if salaryMin < grade.SalaryMin {
		return domainerrors.ErrSalaryBelowGradeMin
	}
	if salaryMax > grade.SalaryMax {
		return domainerrors.ErrSalaryAboveGradeMax
	}
	return nil
}

type CreateCostCenterCommand struct {
	TenantID     string
	Code         string
	Name         string
	Currency     string
	BudgetAmount float64
}

func (s Service) CreateCostCenter(ctx context.Context, cmd CreateCostCenterCommand) (entities.CostCenter, error) {
	if strings.TrimSpace(cmd.Code) == "" || cmd.BudgetAmount < 0 {
		return entities.CostCenter{}, domainerrors.ErrInvalidLedgerInput
	}
	id, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.CostCenter{}, err
	}
	now := s.Clock.Now().UTC()
	costCenter := entities.CostCenter{
		CostCenterID: id,
		TenantID:     strings.TrimSpace(cmd.TenantID),
		Code:         strings.TrimSpace(cmd.Code),
		Name:         strings.TrimSpace(cmd.Name),
		Currency:     strings.TrimSpace(cmd.Currency),
		BudgetAmount: cmd.BudgetAmount,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Ledger.CreateCostCenter(ctx, costCenter); err != nil {
		return entities.CostCenter{}, err
	}
	return costCenter, nil
}

func (s Service) GetCostCenter(ctx context.Context, costCenterID string) (entities.CostCenter, error) {
	return s.Ledger.GetCostCenter(ctx, strings.TrimSpace(costCenterID))
}

type CreateJobGradeCommand struct {
	TenantID  string
	Code      string
	Title     string
	SalaryMin float64
	SalaryMax float64
	Currency  string
}

func (s Service) CreateJobGrade(ctx context.Context, cmd CreateJobGradeCommand) (entities.JobGrade, error) {
	if strings.TrimSpace(cmd.Code) == "" {
		return entities.JobGrade{}, domainerrors.ErrInvalidLedgerInput
	}
	if cmd.SalaryMin > cmd.SalaryMax {
		return entities.JobGrade{}, domainerrors.ErrInvertedSalaryRange
	}
	id, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.JobGrade{}, err
	}
	now := s.Clock.Now().UTC()
	grade := entities.JobGrade{
		JobGradeID: id,
		TenantID:   strings.TrimSpace(cmd.TenantID),
		Code:       strings.TrimSpace(cmd.Code),
		Title:      strings.TrimSpace(cmd.Title),
		SalaryMin:  cmd.SalaryMin,
		SalaryMax:  cmd.SalaryMax,
		Currency:   strings.TrimSpace(cmd.Currency),
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.Ledger.CreateJobGrade(ctx, grade); err != nil {
		return entities.JobGrade{}, err
	}
	return grade, nil
}

func (s Service) ListReservations(ctx context.Context, requisitionID string) ([]entities.BudgetReservation, error) {
	return s.Ledger.ListReservations(ctx, strings.TrimSpace(requisitionID))
}
