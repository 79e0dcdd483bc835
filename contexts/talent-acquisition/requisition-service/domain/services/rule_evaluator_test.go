package services

import (
	"testing"
	"time"

	"reqflow/contexts/talent-acquisition/requisition-service/domain/entities"
)

func floatPtr(v float64) *float64 { return &v }

func TestSelectRulesFiltersAndOrders(t *testing.T) {
	now := time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC)
	req := entities.Requisition{
		TenantID:     "tenant-1",
		DepartmentID: "dept-eng",
		JobGradeID:   "grade-senior",
		Headcount:    2,
		SalaryMax:    130000,
		Priority:     entities.PriorityHigh,
	}

	expired := now.Add(-time.Hour)
	rules := []entities.ApprovalRule{
		{RuleID: "rule-exec", Level: 3, Priority: 1, IsActive: true,
			Condition: entities.SalaryThresholdCondition{MinSalary: floatPtr(120000)}},
		{RuleID: "rule-inactive", Level: 1, Priority: 1, IsActive: false},
		{RuleID: "rule-expired", Level: 1, Priority: 1, IsActive: true, EffectiveUntil: &expired},
		{RuleID: "rule-other-dept", Level: 1, Priority: 1, IsActive: true,
			Condition: entities.DepartmentScopeCondition{DepartmentID: "dept-sales"}},
		{RuleID: "rule-finance", Level: 2, Priority: 2, IsActive: true,
			Condition: entities.HeadcountCondition{MinHeadcount: 2}},
		{RuleID: "rule-hrbp", Level: 1, Priority: 1, IsActive: true},
		{RuleID: "rule-finance-first", Level: 2, Priority: 1, IsActive: true},
	}

	selected := SelectRules(req, rules, now)
	got := make([]string, 0, len(selected))
	for _, rule := range selected {
		got = append(got, rule.RuleID)
	}
	want := []string{"rule-hrbp", "rule-finance-first", "rule-finance", "rule-exec"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestSelectRulesExpeditesCriticalRequisitions(t *testing.T) {
	now := time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC)
	req := entities.Requisition{
		TenantID:  "tenant-1",
		SalaryMax: 200000,
		Headcount: 1,
		Priority:  entities.PriorityCritical,
	}
	rules := []entities.ApprovalRule{
		{RuleID: "rule-l1", Level: 1, IsActive: true},
		{RuleID: "rule-l2", Level: 2, IsActive: true},
		{RuleID: "rule-l3", Level: 3, IsActive: true},
		{RuleID: "rule-l4", Level: 4, IsActive: true},
	}

	selected := SelectRules(req, rules, now)
	if len(selected) != 2 {
		t.Fatalf("expected 2 expedited rules, got %d", len(selected))
	}
	for _, rule := range selected {
		if rule.Level > 2 {
			t.Fatalf("expedited chain kept level %d rule %s", rule.Level, rule.RuleID)
		}
	}
}

func TestSelectRulesEmptyWhenNothingMatches(t *testing.T) {
	now := time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC)
	req := entities.Requisition{SalaryMax: 50000, Headcount: 1}
	rules := []entities.ApprovalRule{
		{RuleID: "rule-big-salary", Level: 1, IsActive: true,
			Condition: entities.SalaryThresholdCondition{MinSalary: floatPtr(100000)}},
	}
	if selected := SelectRules(req, rules, now); len(selected) != 0 {
		t.Fatalf("expected no rules, got %d", len(selected))
	}
}

func TestAllConditionRequiresEveryChild(t *testing.T) {
	req := entities.Requisition{DepartmentID: "dept-eng", Headcount: 3, SalaryMax: 90000}
	cond := entities.AllCondition{Conditions: []entities.RuleCondition{
		entities.DepartmentScopeCondition{DepartmentID: "dept-eng"},
		entities.HeadcountCondition{MinHeadcount: 2},
	}}
	if !cond.Matches(req) {
		t.Fatal("expected all-condition to match")
	}
	cond.Conditions = append(cond.Conditions, entities.SalaryThresholdCondition{MinSalary: floatPtr(100000)})
	if cond.Matches(req) {
		t.Fatal("expected all-condition to fail once a child fails")
	}
}
