package entities

import "time"

// CostCenter is the shared financial bucket requisitions draw against.
// The three counters are only ever mutated through ledger operations that
// hold the row lock; no other component writes them.
type CostCenter struct {
	CostCenterID   string
	TenantID       string
	Code           string
	Name           string
	Currency       string
	BudgetAmount   float64
	UsedAmount     float64
	ReservedAmount float64
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Available is the amount a new reservation may still claim.
func (c CostCenter) Available() float64 {
	return c.BudgetAmount - c.UsedAmount - c.ReservedAmount
}

func (c CostCenter) CanReserve(amount float64) bool {
	return amount > 0 && c.Available() >= amount
}
