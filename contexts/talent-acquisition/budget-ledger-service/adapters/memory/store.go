package memory

import (
	"context"
	"sync"
	"time"

	"reqflow/contexts/talent-acquisition/budget-ledger-service/domain/entities"
	domainerrors "reqflow/contexts/talent-acquisition/budget-ledger-service/domain/errors"
	"reqflow/contexts/talent-acquisition/budget-ledger-service/ports"

	"github.com/google/uuid"
)

// Store is the in-memory ledger used by tests and local runs. The single
// mutex plays the role of the cost-center row lock: check-then-reserve is
// atomic under it.
type Store struct {
	mu sync.Mutex

	costCenters  map[string]entities.CostCenter
	grades       map[string]entities.JobGrade
	reservations map[string]entities.BudgetReservation
}

func NewStore(seedCostCenters []entities.CostCenter, seedGrades []entities.JobGrade) *Store {
	costCenters := make(map[string]entities.CostCenter, len(seedCostCenters))
	for _, item := range seedCostCenters {
		costCenters[item.CostCenterID] = item
	}
	grades := make(map[string]entities.JobGrade, len(seedGrades))
	for _, item := range seedGrades {
		grades[item.JobGradeID] = item
	}
	return &Store{
		costCenters:  costCenters,
		grades:       grades,
		reservations: make(map[string]entities.BudgetReservation),
	}
}

func (s *Store) CreateCostCenter(_ context.Context, costCenter entities.CostCenter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.costCenters[costCenter.CostCenterID]; exists {
		return domainerrors.ErrInvalidLedgerInput
	}
	s.costCenters[costCenter.CostCenterID] = costCenter
	return nil
}

func (s *Store) GetCostCenter(_ context.Context, costCenterID string) (entities.CostCenter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, exists := s.costCenters[costCenterID]
	if !exists {
		return entities.CostCenter{}, domainerrors.ErrCostCenterNotFound
	}
	return item, nil
}

func (s *Store) ReserveFunds(_ context.Context, req ports.ReserveRequest, now time.Time) (entities.BudgetReservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	costCenter, exists := s.costCenters[req.CostCenterID]
	if !exists {
		return entities.BudgetReservation{}, domainerrors.ErrCostCenterNotFound
	}
	if !costCenter.IsActive {
		return entities.BudgetReservation{}, domainerrors.ErrCostCenterInactive
	}
	for _, r := range s.reservations {
		if r.RequisitionID == req.RequisitionID && r.IsActive() {
			return entities.BudgetReservation{}, domainerrors.ErrDuplicateReservation
		}
	}
	if !costCenter.CanReserve(req.Amount) {
		return entities.BudgetReservation{}, domainerrors.ErrInsufficientBudget
	}

	costCenter.ReservedAmount += req.Amount
	costCenter.UpdatedAt = now
	s.costCenters[req.CostCenterID] = costCenter

	reservation := entities.BudgetReservation{
		ReservationID: uuid.NewString(),
		TenantID:      req.TenantID,
		CostCenterID:  req.CostCenterID,
		RequisitionID: req.RequisitionID,
		Amount:        req.Amount,
		Currency:      costCenter.Currency,
		Headcount:     req.Headcount,
		SalaryPerHead: req.SalaryPerHead,
		Status:        entities.ReservationStatusReserved,
		ReservedAt:    now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.reservations[reservation.ReservationID] = reservation
	return reservation, nil
}

func (s *Store) ReleaseFunds(_ context.Context, requisitionID string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reservation, found := s.activeReservation(requisitionID)
	if !found {
		return false, nil
	}

	costCenter, exists := s.costCenters[reservation.CostCenterID]
	if exists {
		costCenter.ReservedAmount -= reservation.Amount
		if costCenter.ReservedAmount < 0 {
			costCenter.ReservedAmount = 0
		}
		costCenter.UpdatedAt = now
		s.costCenters[costCenter.CostCenterID] = costCenter
	}

	released := now
	reservation.Status = entities.ReservationStatusReleased
	reservation.ReleasedAt = &released
	reservation.UpdatedAt = now
	s.reservations[reservation.ReservationID] = reservation
	return true, nil
}

func (s *Store) CommitFunds(_ context.Context, requisitionID string, now time.Time) (entities.BudgetReservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reservation, found := s.activeReservation(requisitionID)
	if !found {
		return entities.BudgetReservation{}, domainerrors.ErrNoActiveReservation
	}

	costCenter, exists := s.costCenters[reservation.CostCenterID]
	if !exists {
		return entities.BudgetReservation{}, domainerrors.ErrCostCenterNotFound
	}
	costCenter.ReservedAmount -= reservation.Amount
	if costCenter.ReservedAmount < 0 {
		costCenter.ReservedAmount = 0
	}
	costCenter.UsedAmount += reservation.Amount
	costCenter.UpdatedAt = now
	s.costCenters[costCenter.CostCenterID] = costCenter

	confirmed := now
	reservation.Status = entities.ReservationStatusConfirmed
	reservation.ConfirmedAt = &confirmed
	reservation.UpdatedAt = now
	s.reservations[reservation.ReservationID] = reservation
	return reservation, nil
}

func (s *Store) GetActiveReservation(_ context.Context, requisitionID string) (entities.BudgetReservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reservation, found := s.activeReservation(requisitionID)
	if !found {
		return entities.BudgetReservation{}, domainerrors.ErrNoActiveReservation
	}
	return reservation, nil
}

func (s *Store) ListReservations(_ context.Context, requisitionID string) ([]entities.BudgetReservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]entities.BudgetReservation, 0)
	for _, r := range s.reservations {
		if r.RequisitionID == requisitionID {
			items = append(items, r)
		}
	}
	return items, nil
}

func (s *Store) CreateJobGrade(_ context.Context, grade entities.JobGrade) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.grades[grade.JobGradeID]; exists {
		return domainerrors.ErrInvalidLedgerInput
	}
	s.grades[grade.JobGradeID] = grade
	return nil
}

func (s *Store) GetJobGrade(_ context.Context, jobGradeID string) (entities.JobGrade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, exists := s.grades[jobGradeID]
	if !exists {
		return entities.JobGrade{}, domainerrors.ErrInvalidJobGrade
	}
	return item, nil
}

// activeReservation is called with the store lock held.
func (s *Store) activeReservation(requisitionID string) (entities.BudgetReservation, bool) {
	for _, r := range s.reservations {
		if r.RequisitionID == requisitionID && r.IsActive() {
			return r, true
		}
	}
	return entities.BudgetReservation{}, false
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
