package entities

import (
	"errors"
	"testing"

	domainerrors "reqflow/contexts/talent-acquisition/requisition-service/domain/errors"
)

func TestDecodeConditionRoundTrip(t *testing.T) {
	raw := []byte(`{
		"kind": "all",
		"conditions": [
			{"kind": "salary_threshold", "min_salary": 100000},
			{"kind": "department_scope", "department_id": "dept-eng"},
			{"kind": "headcount", "min_headcount": 2}
		]
	}`)
	cond, err := DecodeCondition(raw)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	all, ok := cond.(AllCondition)
	if !ok {
		t.Fatalf("expected AllCondition, got %T", cond)
	}
	if len(all.Conditions) != 3 {
		t.Fatalf("expected 3 children, got %d", len(all.Conditions))
	}

	encoded, err := EncodeCondition(cond)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	again, err := DecodeCondition(encoded)
	if err != nil {
		t.Fatalf("re-decode failed: %v", err)
	}
	if again.Kind() != "all" {
		t.Fatalf("expected all kind after round trip, got %s", again.Kind())
	}
}

func TestDecodeConditionRejectsUnknownKind(t *testing.T) {
	_, err := DecodeCondition([]byte(`{"kind": "phase_of_the_moon"}`))
	if !errors.Is(err, domainerrors.ErrUnknownRuleCondition) {
		t.Fatalf("expected unknown rule condition, got %v", err)
	}
}

func TestDecodeConditionEmptyInputsYieldNil(t *testing.T) {
	for _, raw := range [][]byte{nil, {}, []byte(`{}`)} {
		cond, err := DecodeCondition(raw)
		if err != nil {
			t.Fatalf("decode of %q failed: %v", raw, err)
		}
		if cond != nil {
			t.Fatalf("expected nil condition for %q, got %T", raw, cond)
		}
	}
}

func TestDecodeConditionValidatesVariantFields(t *testing.T) {
	if _, err := DecodeCondition([]byte(`{"kind": "grade_level"}`)); !errors.Is(err, domainerrors.ErrUnknownRuleCondition) {
		t.Fatalf("expected grade_level without ids to fail, got %v", err)
	}
	if _, err := DecodeCondition([]byte(`{"kind": "headcount", "min_headcount": 0}`)); !errors.Is(err, domainerrors.ErrUnknownRuleCondition) {
		t.Fatalf("expected non-positive headcount to fail, got %v", err)
	}
}
