package postgresadapter

import (
	"time"

	"reqflow/contexts/talent-acquisition/budget-ledger-service/domain/entities"

	"github.com/google/uuid"
)

type costCenterModel struct {
	CostCenterID   string    `gorm:"column:cost_center_id;primaryKey"`
	TenantID       string    `gorm:"column:tenant_id"`
	Code           string    `gorm:"column:code"`
	Name           string    `gorm:"column:name"`
	Currency       string    `gorm:"column:currency"`
	BudgetAmount   float64   `gorm:"column:budget_amount"`
	UsedAmount     float64   `gorm:"column:used_amount"`
	ReservedAmount float64   `gorm:"column:reserved_amount"`
	IsActive       bool      `gorm:"column:is_active"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (costCenterModel) TableName() string { return "cost_centers" }

func (m costCenterModel) toEntity() entities.CostCenter {
	return entities.CostCenter{
		CostCenterID:   m.CostCenterID,
		TenantID:       m.TenantID,
		Code:           m.Code,
		Name:           m.Name,
		Currency:       m.Currency,
		BudgetAmount:   m.BudgetAmount,
		UsedAmount:     m.UsedAmount,
		ReservedAmount: m.ReservedAmount,
		IsActive:       m.IsActive,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func costCenterModelFromEntity(c entities.CostCenter) costCenterModel {
	return costCenterModel{
		CostCenterID:   c.CostCenterID,
		TenantID:       c.TenantID,
		Code:           c.Code,
		Name:           c.Name,
		Currency:       c.Currency,
		BudgetAmount:   c.BudgetAmount,
		UsedAmount:     c.UsedAmount,
		ReservedAmount: c.ReservedAmount,
		IsActive:       c.IsActive,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func costCenterUpdatesFromEntity(c entities.CostCenter) map[string]any {
	return map[string]any{
		"budget_amount":   c.BudgetAmount,
		"used_amount":     c.UsedAmount,
		"reserved_amount": c.ReservedAmount,
		"is_active":       c.IsActive,
		"updated_at":      c.UpdatedAt.UTC(),
	}
}

type reservationModel struct {
	ReservationID string     `gorm:"column:reservation_id;primaryKey"`
	TenantID      string     `gorm:"column:tenant_id"`
	CostCenterID  string     `gorm:"column:cost_center_id"`
	RequisitionID string     `gorm:"column:requisition_id"`
	Amount        float64    `gorm:"column:amount"`
	Currency      string     `gorm:"column:currency"`
	Headcount     int        `gorm:"column:headcount"`
	SalaryPerHead float64    `gorm:"column:salary_per_head"`
	Status        string     `gorm:"column:status"`
	ReservedAt    time.Time  `gorm:"column:reserved_at"`
	ConfirmedAt   *time.Time `gorm:"column:confirmed_at"`
	ReleasedAt    *time.Time `gorm:"column:released_at"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at"`
}

func (reservationModel) TableName() string { return "budget_reservations" }

func (m reservationModel) toEntity() entities.BudgetReservation {
	return entities.BudgetReservation{
		ReservationID: m.ReservationID,
		TenantID:      m.TenantID,
		CostCenterID:  m.CostCenterID,
		RequisitionID: m.RequisitionID,
		Amount:        m.Amount,
		Currency:      m.Currency,
		Headcount:     m.Headcount,
		SalaryPerHead: m.SalaryPerHead,
		Status:        entities.ReservationStatus(m.Status),
		ReservedAt:    m.ReservedAt,
		ConfirmedAt:   m.ConfirmedAt,
		ReleasedAt:    m.ReleasedAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func reservationModelFromEntity(r entities.BudgetReservation) reservationModel {
	return reservationModel{
		ReservationID: r.ReservationID,
		TenantID:      r.TenantID,
		CostCenterID:  r.CostCenterID,
		RequisitionID: r.RequisitionID,
		Amount:        r.Amount,
		Currency:      r.Currency,
		Headcount:     r.Headcount,
		SalaryPerHead: r.SalaryPerHead,
		Status:        string(r.Status),
		ReservedAt:    r.ReservedAt,
		ConfirmedAt:   r.ConfirmedAt,
		ReleasedAt:    r.ReleasedAt,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

type jobGradeModel struct {
	JobGradeID string    `gorm:"column:job_grade_id;primaryKey"`
	TenantID   string    `gorm:"column:tenant_id"`
	Code       string    `gorm:"column:code"`
	Title      string    `gorm:"column:title"`
	SalaryMin  float64   `gorm:"column:salary_min"`
	SalaryMax  float64   `gorm:"column:salary_max"`
	Currency   string    `gorm:"column:currency"`
	IsActive   bool      `gorm:"column:is_active"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (jobGradeModel) TableName() string { return "job_grades" }

func (m jobGradeModel) toEntity() entities.JobGrade {
	return entities.JobGrade{
		JobGradeID: m.JobGradeID,
		TenantID:   m.TenantID,
		Code:       m.Code,
		Title:      m.Title,
		SalaryMin:  m.SalaryMin,
		SalaryMax:  m.SalaryMax,
		Currency:   m.Currency,
		IsActive:   m.IsActive,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func jobGradeModelFromEntity(g entities.JobGrade) jobGradeModel {
	return jobGradeModel{
		JobGradeID: g.JobGradeID,
		TenantID:   g.TenantID,
		Code:       g.Code,
		Title:      g.Title,
		SalaryMin:  g.SalaryMin,
		SalaryMax:  g.SalaryMax,
		Currency:   g.Currency,
		IsActive:   g.IsActive,
		CreatedAt:  g.CreatedAt,
		UpdatedAt:  g.UpdatedAt,
	}
}

func newRowID() string {
	return uuid.NewString()
}
