package entities

import "time"

type ReservationStatus string

const (
	ReservationStatusReserved      ReservationStatus = "reserved"
	ReservationStatusConfirmed     ReservationStatus = "confirmed"
	ReservationStatusReleased      ReservationStatus = "released"
	ReservationStatusPartiallyUsed ReservationStatus = "partially_used"
	ReservationStatusFullyUsed     ReservationStatus = "fully_used"
)

// BudgetReservation is a provisional hold against a cost center. At most one
// row per requisition may be in reserved status at a time.
type BudgetReservation struct {
	ReservationID string
	TenantID      string
	CostCenterID  string
	RequisitionID string
	Amount        float64
	Currency      string
	Headcount     int
	SalaryPerHead float64
	Status        ReservationStatus
	ReservedAt    time.Time
	ConfirmedAt   *time.Time
	ReleasedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (r BudgetReservation) IsActive() bool {
	return r.Status == ReservationStatusReserved
}
