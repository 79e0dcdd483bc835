package services

import (
	"time"

	"reqflow/contexts/talent-acquisition/requisition-service/domain/entities"
)

// slaWarningFraction is the remaining share of the SLA window below which a
// still-pending transaction is flagged as a warning.
const slaWarningFraction = 0.25

// CalculateSLAStatus computes the SLA state of a transaction at a point in
// time. Decided transactions are always on track; the SLA clock only runs
// while the transaction is pending.
func CalculateSLAStatus(tx entities.ApprovalTransaction, now time.Time) entities.SLAStatus {
	if !tx.IsPending() || tx.DueAt == nil {
		return entities.SLAOnTrack
	}

	due := tx.DueAt.UTC()
	if !now.UTC().Before(due) {
		return entities.SLAOverdue
	}

	window := due.Sub(tx.CreatedAt.UTC())
	if window <= 0 {
		return entities.SLAOverdue
	}
	remaining := due.Sub(now.UTC())
	if float64(remaining)/float64(window) <= slaWarningFraction {
		return entities.SLAWarning
	}
	return entities.SLAOnTrack
}
