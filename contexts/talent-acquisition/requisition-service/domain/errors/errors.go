package errors

import "errors"

var (
	ErrRequisitionNotFound     = errors.New("requisition not found")
	ErrInvalidRequisitionInput = errors.New("invalid requisition input")
	ErrInvalidStateTransition  = errors.New("invalid requisition state transition")
	ErrNotAuthorizedApprover   = errors.New("user is not an assigned pending approver")
	ErrApprovalNotPending      = errors.New("approval transaction is no longer pending")
	ErrDelegateRequired        = errors.New("delegate decision requires a delegate user")
	ErrConcurrentUpdate        = errors.New("requisition was modified concurrently")
	ErrRuleNotFound            = errors.New("approval rule not found")
	ErrInvalidRuleInput        = errors.New("invalid approval rule input")
	ErrUnknownRuleCondition    = errors.New("unknown rule condition shape")
	ErrIdempotencyKeyRequired  = errors.New("idempotency key is required")
	ErrIdempotencyKeyConflict  = errors.New("idempotency key conflict")
)
