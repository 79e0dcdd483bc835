package commands

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	application "reqflow/contexts/talent-acquisition/requisition-service/application"
	"reqflow/contexts/talent-acquisition/requisition-service/domain/entities"
	domainerrors "reqflow/contexts/talent-acquisition/requisition-service/domain/errors"
	"reqflow/contexts/talent-acquisition/requisition-service/ports"
)

type CreateRuleCommand struct {
	TenantID          string
	Name              string
	Condition         json.RawMessage
	ApproverRole      string
	CustomApprovers   []entities.Approver
	Level             int
	SLAHours          int
	EscalationEnabled bool
	EscalationHours   int
	EscalateTo        string
	Priority          int
	EffectiveFrom     *time.Time
	EffectiveUntil    *time.Time
}

type DeactivateRuleCommand struct {
	RuleID  string
	ActorID string
}

// AuthorRuleUseCase manages the tenant's rule set. Conditions arrive as raw
// JSON and are decoded here so a malformed predicate is rejected at authoring
// time rather than at the first submission that trips over it.
type AuthorRuleUseCase struct {
	Rules  ports.ApprovalRuleRepository
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

func (uc AuthorRuleUseCase) Create(ctx context.Context, cmd CreateRuleCommand) (entities.ApprovalRule, error) {
	logger := application.ResolveLogger(uc.Logger)
	role := entities.ApproverRole(strings.TrimSpace(cmd.ApproverRole))
	if strings.TrimSpace(cmd.TenantID) == "" ||
		strings.TrimSpace(cmd.Name) == "" ||
		cmd.Level <= 0 ||
		cmd.SLAHours <= 0 {
		return entities.ApprovalRule{}, domainerrors.ErrInvalidRuleInput
	}
	if !entities.IsSupportedApproverRole(role) {
		return entities.ApprovalRule{}, domainerrors.ErrInvalidRuleInput
	}
	if role == entities.RoleCustom && len(cmd.CustomApprovers) == 0 {
		return entities.ApprovalRule{}, domainerrors.ErrInvalidRuleInput
	}
	if cmd.EffectiveFrom != nil && cmd.EffectiveUntil != nil && !cmd.EffectiveFrom.Before(*cmd.EffectiveUntil) {
		return entities.ApprovalRule{}, domainerrors.ErrInvalidRuleInput
	}

	condition, err := entities.DecodeCondition(cmd.Condition)
	if err != nil {
		return entities.ApprovalRule{}, err
	}

	ruleID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.ApprovalRule{}, err
	}
	now := uc.Clock.Now().UTC()
	rule := entities.ApprovalRule{
		RuleID:            ruleID,
		TenantID:          strings.TrimSpace(cmd.TenantID),
		Name:              strings.TrimSpace(cmd.Name),
		Condition:         condition,
		ApproverRole:      role,
		CustomApprovers:   cmd.CustomApprovers,
		Level:             cmd.Level,
		SLAHours:          cmd.SLAHours,
		EscalationEnabled: cmd.EscalationEnabled,
		EscalationHours:   cmd.EscalationHours,
		EscalateTo:        strings.TrimSpace(cmd.EscalateTo),
		Priority:          cmd.Priority,
		IsActive:          true,
		EffectiveFrom:     cmd.EffectiveFrom,
		EffectiveUntil:    cmd.EffectiveUntil,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := uc.Rules.CreateRule(ctx, rule); err != nil {
		return entities.ApprovalRule{}, err
	}

	logger.Info("approval rule created",
		"event", "approval_rule_created",
		"module", "talent-acquisition/requisition-service",
		"layer", "application",
		"rule_id", rule.RuleID,
		"tenant_id", rule.TenantID,
		"level", rule.Level,
		"role", string(rule.ApproverRole),
	)
	return rule, nil
}

// Deactivate retires a rule from future submissions. In-flight chains built
// from it are untouched.
func (uc AuthorRuleUseCase) Deactivate(ctx context.Context, cmd DeactivateRuleCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	ruleID := strings.TrimSpace(cmd.RuleID)
	if ruleID == "" {
		return domainerrors.ErrInvalidRuleInput
	}
	now := uc.Clock.Now().UTC()
	if err := uc.Rules.DeactivateRule(ctx, ruleID, now); err != nil {
		return err
	}
	logger.Info("approval rule deactivated",
		"event", "approval_rule_deactivated",
		"module", "talent-acquisition/requisition-service",
		"layer", "application",
		"rule_id", ruleID,
	)
	return nil
}
