package services

import (
	"sort"
	"time"

	"reqflow/contexts/talent-acquisition/requisition-service/domain/entities"
)

// expeditedMaxLevel caps the chain for critical-priority requisitions: only
// levels 1 and 2 apply on the expedited path.
const expeditedMaxLevel = 2

// SelectRules filters the tenant's rules down to the ones whose predicates
// match the requisition and orders them by level, then priority. Read-only;
// an empty result means the requisition needs zero approvals.
func SelectRules(req entities.Requisition, rules []entities.ApprovalRule, now time.Time) []entities.ApprovalRule {
	matched := make([]entities.ApprovalRule, 0, len(rules))
	for _, rule := range rules {
		if !rule.IsActive || !rule.EffectiveAt(now) {
			continue
		}
		if rule.Condition != nil && !rule.Condition.Matches(req) {
			continue
		}
		matched = append(matched, rule)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Level != matched[j].Level {
			return matched[i].Level < matched[j].Level
		}
		return matched[i].Priority < matched[j].Priority
	})

	if req.Priority == entities.PriorityCritical {
		expedited := matched[:0]
		for _, rule := range matched {
			if rule.Level <= expeditedMaxLevel {
				expedited = append(expedited, rule)
			}
		}
		matched = expedited
	}
	return matched
}
