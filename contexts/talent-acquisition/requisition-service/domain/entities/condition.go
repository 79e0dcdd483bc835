package entities

import (
	"encoding/json"
	"fmt"

	domainerrors "reqflow/contexts/talent-acquisition/requisition-service/domain/errors"
)

// RuleCondition is the predicate a requisition must satisfy for a rule to
// apply. Conditions form a closed set of variants; unknown shapes are
// rejected when a rule is authored, never at evaluation time.
type RuleCondition interface {
	Kind() string
	Matches(req Requisition) bool
}

const (
	conditionKindSalaryThreshold = "salary_threshold"
	conditionKindGradeLevel      = "grade_level"
	conditionKindHeadcount       = "headcount"
	conditionKindDepartmentScope = "department_scope"
	conditionKindAll             = "all"
)

// SalaryThresholdCondition matches when the requisition's salary maximum
// falls inside the inclusive [MinSalary, MaxSalary] band. Either bound may be
// omitted.
type SalaryThresholdCondition struct {
	MinSalary *float64
	MaxSalary *float64
}

func (SalaryThresholdCondition) Kind() string { return conditionKindSalaryThreshold }

func (c SalaryThresholdCondition) Matches(req Requisition) bool {
	if c.MinSalary != nil && req.SalaryMax < *c.MinSalary {
		return false
	}
	if c.MaxSalary != nil && req.SalaryMax > *c.MaxSalary {
		return false
	}
	return true
}

// GradeLevelCondition matches requisitions for any of the listed job grades.
type GradeLevelCondition struct {
	JobGradeIDs []string
}

func (GradeLevelCondition) Kind() string { return conditionKindGradeLevel }

func (c GradeLevelCondition) Matches(req Requisition) bool {
	for _, id := range c.JobGradeIDs {
		if id == req.JobGradeID {
			return true
		}
	}
	return false
}

// HeadcountCondition matches requisitions asking for at least MinHeadcount.
type HeadcountCondition struct {
	MinHeadcount int
}

func (HeadcountCondition) Kind() string { return conditionKindHeadcount }

func (c HeadcountCondition) Matches(req Requisition) bool {
	return req.Headcount >= c.MinHeadcount
}

// DepartmentScopeCondition scopes a rule to one department. An empty
// department means unscoped and matches every requisition.
type DepartmentScopeCondition struct {
	DepartmentID string
}

func (DepartmentScopeCondition) Kind() string { return conditionKindDepartmentScope }

func (c DepartmentScopeCondition) Matches(req Requisition) bool {
	return c.DepartmentID == "" || c.DepartmentID == req.DepartmentID
}

// AllCondition is the AND combinator over its children.
type AllCondition struct {
	Conditions []RuleCondition
}

func (AllCondition) Kind() string { return conditionKindAll }

func (c AllCondition) Matches(req Requisition) bool {
	for _, child := range c.Conditions {
		if !child.Matches(req) {
			return false
		}
	}
	return true
}

type conditionEnvelope struct {
	Kind         string            `json:"kind"`
	MinSalary    *float64          `json:"min_salary,omitempty"`
	MaxSalary    *float64          `json:"max_salary,omitempty"`
	JobGradeIDs  []string          `json:"job_grade_ids,omitempty"`
	MinHeadcount int               `json:"min_headcount,omitempty"`
	DepartmentID string            `json:"department_id,omitempty"`
	Conditions   []json.RawMessage `json:"conditions,omitempty"`
}

// DecodeCondition parses a serialized condition, rejecting unknown kinds.
func DecodeCondition(raw []byte) (RuleCondition, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var envelope conditionEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrUnknownRuleCondition, err)
	}
	switch envelope.Kind {
	case "":
		return nil, nil
	case conditionKindSalaryThreshold:
		return SalaryThresholdCondition{MinSalary: envelope.MinSalary, MaxSalary: envelope.MaxSalary}, nil
	case conditionKindGradeLevel:
		if len(envelope.JobGradeIDs) == 0 {
			return nil, fmt.Errorf("%w: grade_level requires job_grade_ids", domainerrors.ErrUnknownRuleCondition)
		}
		return GradeLevelCondition{JobGradeIDs: envelope.JobGradeIDs}, nil
	case conditionKindHeadcount:
		if envelope.MinHeadcount <= 0 {
			return nil, fmt.Errorf("%w: headcount requires a positive min_headcount", domainerrors.ErrUnknownRuleCondition)
		}
		return HeadcountCondition{MinHeadcount: envelope.MinHeadcount}, nil
	case conditionKindDepartmentScope:
		return DepartmentScopeCondition{DepartmentID: envelope.DepartmentID}, nil
	case conditionKindAll:
		children := make([]RuleCondition, 0, len(envelope.Conditions))
		for _, childRaw := range envelope.Conditions {
			child, err := DecodeCondition(childRaw)
			if err != nil {
				return nil, err
			}
			if child != nil {
				children = append(children, child)
			}
		}
		return AllCondition{Conditions: children}, nil
	default:
		return nil, fmt.Errorf("%w: kind %q", domainerrors.ErrUnknownRuleCondition, envelope.Kind)
	}
}

// EncodeCondition serializes a condition for storage. A nil condition encodes
// to nil (rule matches unconditionally within its tenant scope).
func EncodeCondition(condition RuleCondition) ([]byte, error) {
	if condition == nil {
		return nil, nil
	}
	switch c := condition.(type) {
	case SalaryThresholdCondition:
		return json.Marshal(conditionEnvelope{Kind: c.Kind(), MinSalary: c.MinSalary, MaxSalary: c.MaxSalary})
	case GradeLevelCondition:
		return json.Marshal(conditionEnvelope{Kind: c.Kind(), JobGradeIDs: c.JobGradeIDs})
	case HeadcountCondition:
		return json.Marshal(conditionEnvelope{Kind: c.Kind(), MinHeadcount: c.MinHeadcount})
	case DepartmentScopeCondition:
		return json.Marshal(conditionEnvelope{Kind: c.Kind(), DepartmentID: c.DepartmentID})
	case AllCondition:
		children := make([]json.RawMessage, 0, len(c.Conditions))
		for _, child := range c.Conditions {
			raw, err := EncodeCondition(child)
			if err != nil {
				return nil, err
			}
			children = append(children, raw)
		}
		return json.Marshal(conditionEnvelope{Kind: c.Kind(), Conditions: children})
	default:
		return nil, fmt.Errorf("%w: %T", domainerrors.ErrUnknownRuleCondition, condition)
	}
}
