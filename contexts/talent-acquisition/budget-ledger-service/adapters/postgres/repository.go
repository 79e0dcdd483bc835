package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"reqflow/contexts/talent-acquisition/budget-ledger-service/domain/entities"
	domainerrors "reqflow/contexts/talent-acquisition/budget-ledger-service/domain/errors"
	"reqflow/contexts/talent-acquisition/budget-ledger-service/ports"

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

func (r *Repository) CreateCostCenter(ctx context.Context, costCenter entities.CostCenter) error {
	row := costCenterModelFromEntity(costCenter)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrInvalidLedgerInput
		}
		return err
	}
	return nil
}

func (r *Repository) GetCostCenter(ctx context.Context, costCenterID string) (entities.CostCenter, error) {
	var row costCenterModel
	err := r.db.WithContext(ctx).
		Where("cost_center_id = ?", strings.TrimSpace(costCenterID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.CostCenter{}, domainerrors.ErrCostCenterNotFound
		}
		return entities.CostCenter{}, err
	}
	return row.toEntity(), nil
}

// ReserveFunds locks the cost-center row, re-checks availability under the
// lock and writes the counter increment and the reservation row in one
// transaction. Two concurrent reserves against the same cost center are
// serialized here; the second sees the first's increment.
func (r *Repository) ReserveFunds(ctx context.Context, req ports.ReserveRequest, now time.Time) (entities.BudgetReservation, error) {
	var reservation entities.BudgetReservation
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row costCenterModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("cost_center_id = ?", req.CostCenterID).
			First(&row).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrCostCenterNotFound
			}
			return err
		}

		costCenter := row.toEntity()
		if !costCenter.IsActive {
			return domainerrors.ErrCostCenterInactive
		}

		var activeCount int64
		if err := tx.Model(&reservationModel{}).
			Where("requisition_id = ? AND status = ?", req.RequisitionID, string(entities.ReservationStatusReserved)).
			Count(&activeCount).
			Error; err != nil {
			return err
		}
		if activeCount > 0 {
			return domainerrors.ErrDuplicateReservation
		}

		if !costCenter.CanReserve(req.Amount) {
			return domainerrors.ErrInsufficientBudget
		}

		costCenter.ReservedAmount += req.Amount
		costCenter.UpdatedAt = now
		if err := tx.Model(&costCenterModel{}).
			Where("cost_center_id = ?", costCenter.CostCenterID).
			Updates(costCenterUpdatesFromEntity(costCenter)).
			Error; err != nil {
			return err
		}

		reservation = entities.BudgetReservation{
			ReservationID: newRowID(),
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
		reservationRow := reservationModelFromEntity(reservation)
		if err := tx.Create(&reservationRow).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrDuplicateReservation
			}
			return err
		}
		return nil
	})
	if err != nil {
		return entities.BudgetReservation{}, err
	}
	return reservation, nil
}

func (r *Repository) ReleaseFunds(ctx context.Context, requisitionID string, now time.Time) (bool, error) {
	released := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var resRow reservationModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("requisition_id = ? AND status = ?", requisitionID, string(entities.ReservationStatusReserved)).
			First(&resRow).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		var ccRow costCenterModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("cost_center_id = ?", resRow.CostCenterID).
			First(&ccRow).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrCostCenterNotFound
			}
			return err
		}

		costCenter := ccRow.toEntity()
		costCenter.ReservedAmount -= resRow.Amount
		if costCenter.ReservedAmount < 0 {
			costCenter.ReservedAmount = 0
		}
		costCenter.UpdatedAt = now
		if err := tx.Model(&costCenterModel{}).
			Where("cost_center_id = ?", costCenter.CostCenterID).
			Updates(costCenterUpdatesFromEntity(costCenter)).
			Error; err != nil {
			return err
		}

		if err := tx.Model(&reservationModel{}).
			Where("reservation_id = ? AND status = ?", resRow.ReservationID, string(entities.ReservationStatusReserved)).
			Updates(map[string]any{
				"status":      string(entities.ReservationStatusReleased),
				"released_at": now,
				"updated_at":  now,
			}).
			Error; err != nil {
			return err
		}
		released = true
		return nil
	})
	return released, err
}

func (r *Repository) CommitFunds(ctx context.Context, requisitionID string, now time.Time) (entities.BudgetReservation, error) {
	var reservation entities.BudgetReservation
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var resRow reservationModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("requisition_id = ? AND status = ?", requisitionID, string(entities.ReservationStatusReserved)).
			First(&resRow).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrNoActiveReservation
			}
			return err
		}

		var ccRow costCenterModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("cost_center_id = ?", resRow.CostCenterID).
			First(&ccRow).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrCostCenterNotFound
			}
			return err
		}

		// Funds were provisioned at reserve time; the commit shifts them
		// from reserved to used without re-checking availability.
		costCenter := ccRow.toEntity()
		costCenter.ReservedAmount -= resRow.Amount
		if costCenter.ReservedAmount < 0 {
			costCenter.ReservedAmount = 0
		}
		costCenter.UsedAmount += resRow.Amount
		costCenter.UpdatedAt = now
		if err := tx.Model(&costCenterModel{}).
			Where("cost_center_id = ?", costCenter.CostCenterID).
			Updates(costCenterUpdatesFromEntity(costCenter)).
			Error; err != nil {
			return err
		}

		if err := tx.Model(&reservationModel{}).
			Where("reservation_id = ? AND status = ?", resRow.ReservationID, string(entities.ReservationStatusReserved)).
			Updates(map[string]any{
				"status":       string(entities.ReservationStatusConfirmed),
				"confirmed_at": now,
				"updated_at":   now,
			}).
			Error; err != nil {
			return err
		}

		reservation = resRow.toEntity()
		reservation.Status = entities.ReservationStatusConfirmed
		reservation.ConfirmedAt = &now
		reservation.UpdatedAt = now
		return nil
	})
	if err != nil {
		return entities.BudgetReservation{}, err
	}
	return reservation, nil
}

func (r *Repository) GetActiveReservation(ctx context.Context, requisitionID string) (entities.BudgetReservation, error) {
	var row reservationModel
	err := r.db.WithContext(ctx).
		Where("requisition_id = ? AND status = ?", strings.TrimSpace(requisitionID), string(entities.ReservationStatusReserved)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.BudgetReservation{}, domainerrors.ErrNoActiveReservation
		}
		return entities.BudgetReservation{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) ListReservations(ctx context.Context, requisitionID string) ([]entities.BudgetReservation, error) {
	var rows []reservationModel
	if err := r.db.WithContext(ctx).
		Where("requisition_id = ?", strings.TrimSpace(requisitionID)).
		Order("created_at ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	items := make([]entities.BudgetReservation, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) CreateJobGrade(ctx context.Context, grade entities.JobGrade) error {
	row := jobGradeModelFromEntity(grade)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrInvalidLedgerInput
		}
		return err
	}
	return nil
}

func (r *Repository) GetJobGrade(ctx context.Context, jobGradeID string) (entities.JobGrade, error) {
	var row jobGradeModel
	err := r.db.WithContext(ctx).
		Where("job_grade_id = ?", strings.TrimSpace(jobGradeID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.JobGrade{}, domainerrors.ErrInvalidJobGrade
		}
		return entities.JobGrade{}, err
	}
	return row.toEntity(), nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
