package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	application "reqflow/contexts/talent-acquisition/requisition-service/application"
	"reqflow/contexts/talent-acquisition/requisition-service/domain/entities"
	domainerrors "reqflow/contexts/talent-acquisition/requisition-service/domain/errors"
	"reqflow/contexts/talent-acquisition/requisition-service/ports"
)

type CreateRequisitionCommand struct {
	TenantID        string
	RequestedBy     string
	IdempotencyKey  string
	Title           string
	RequisitionType string
	Priority        string
	DepartmentID    string
	BusinessUnitID  string
	CostCenterID    string
	JobGradeID      string
	Headcount       int
	SalaryMin       float64
	SalaryMax       float64
	Currency        string
}

type CreateRequisitionUseCase struct {
	Requisitions   ports.RequisitionRepository
	Idempotency    ports.IdempotencyStore
	Audit          ports.AuditRepository
	Clock          ports.Clock
	IDGenerator    ports.IDGenerator
	IdempotencyTTL time.Duration
	Logger         *slog.Logger
}

type CreateRequisitionResult struct {
	Requisition entities.Requisition
	Replayed    bool
}

func (uc CreateRequisitionUseCase) Execute(ctx context.Context, cmd CreateRequisitionCommand) (CreateRequisitionResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	if strings.TrimSpace(cmd.IdempotencyKey) == "" {
		return CreateRequisitionResult{}, domainerrors.ErrIdempotencyKeyRequired
	}

	now := uc.Clock.Now().UTC()
	requestHash := hashCreateRequisitionCommand(cmd)
	if record, found, err := uc.Idempotency.GetRecord(ctx, cmd.IdempotencyKey, now); err != nil {
		return CreateRequisitionResult{}, err
	} else if found {
		if record.RequestHash != requestHash {
			return CreateRequisitionResult{}, domainerrors.ErrIdempotencyKeyConflict
		}
		var replayed entities.Requisition
		if err := json.Unmarshal(record.ResponsePayload, &replayed); err != nil {
			return CreateRequisitionResult{}, err
		}
		return CreateRequisitionResult{Requisition: replayed, Replayed: true}, nil
	}

	priority := entities.RequisitionPriority(strings.TrimSpace(strings.ToLower(cmd.Priority)))
	if priority == "" {
		priority = entities.PriorityMedium
	}

	requisitionID, err := uc.IDGenerator.NewID(ctx)
	if err != nil {
		return CreateRequisitionResult{}, err
	}

	req := entities.Requisition{
		RequisitionID:   requisitionID,
		TenantID:        strings.TrimSpace(cmd.TenantID),
		Title:           strings.TrimSpace(cmd.Title),
		RequisitionType: strings.TrimSpace(cmd.RequisitionType),
		Status:          entities.RequisitionStatusDraft,
		Priority:        priority,
		DepartmentID:    strings.TrimSpace(cmd.DepartmentID),
		BusinessUnitID:  strings.TrimSpace(cmd.BusinessUnitID),
		CostCenterID:    strings.TrimSpace(cmd.CostCenterID),
		JobGradeID:      strings.TrimSpace(cmd.JobGradeID),
		Headcount:       cmd.Headcount,
		SalaryMin:       cmd.SalaryMin,
		SalaryMax:       cmd.SalaryMax,
		Currency:        strings.TrimSpace(cmd.Currency),
		RequestedBy:     strings.TrimSpace(cmd.RequestedBy),
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if !validCreateInput(req) {
		return CreateRequisitionResult{}, domainerrors.ErrInvalidRequisitionInput
	}

	if err := uc.Requisitions.CreateRequisition(ctx, req); err != nil {
		return CreateRequisitionResult{}, err
	}

	serialized, err := json.Marshal(req)
	if err != nil {
		return CreateRequisitionResult{}, err
	}
	if err := uc.Idempotency.PutRecord(ctx, ports.IdempotencyRecord{
		Key:             cmd.IdempotencyKey,
		RequestHash:     requestHash,
		ResponsePayload: serialized,
		ExpiresAt:       now.Add(uc.IdempotencyTTL),
	}); err != nil {
		return CreateRequisitionResult{}, err
	}

	appendAudit(ctx, uc.Audit, uc.IDGenerator, logger, now, req, "created", req.RequestedBy, "", nil)

	logger.Info("requisition created",
		"event", "requisition_created",
		"module", "talent-acquisition/requisition-service",
		"layer", "application",
		"requisition_id", req.RequisitionID,
		"tenant_id", req.TenantID,
		"headcount", req.Headcount,
	)
	return CreateRequisitionResult{Requisition: req}, nil
}

func validCreateInput(req entities.Requisition) bool {
	return req.TenantID != "" &&
		req.Title != "" &&
		req.RequestedBy != "" &&
		req.DepartmentID != "" &&
		req.CostCenterID != "" &&
		req.JobGradeID != "" &&
		req.Headcount > 0 &&
		req.SalaryMin > 0 &&
		req.SalaryMax >= req.SalaryMin &&
		entities.IsSupportedPriority(req.Priority)
}

func hashCreateRequisitionCommand(cmd CreateRequisitionCommand) string {
	serialized, err := json.Marshal(cmd)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(serialized)
	return hex.EncodeToString(sum[:])
}
