package errors

import "errors"

var (
	ErrCostCenterNotFound   = errors.New("cost center not found")
	ErrCostCenterInactive   = errors.New("cost center is inactive")
	ErrInvalidLedgerInput   = errors.New("invalid ledger input")
	ErrInsufficientBudget   = errors.New("insufficient budget for reservation")
	ErrNoActiveReservation  = errors.New("no active reservation for requisition")
	ErrDuplicateReservation = errors.New("requisition already has an active reservation")
	ErrInvalidJobGrade      = errors.New("job grade missing or inactive")
	ErrSalaryBelowGradeMin  = errors.New("salary below job grade minimum")
	ErrSalaryAboveGradeMax  = errors.New("salary above job grade maximum")
	ErrInvertedSalaryRange  = errors.New("salary minimum exceeds salary maximum")
)
