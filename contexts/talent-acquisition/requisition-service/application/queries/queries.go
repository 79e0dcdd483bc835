package queries

import (
	"context"
	"strings"

	"reqflow/contexts/talent-acquisition/requisition-service/domain/entities"
	"reqflow/contexts/talent-acquisition/requisition-service/domain/services"
	"reqflow/contexts/talent-acquisition/requisition-service/ports"
)

// RequisitionDetail pairs the aggregate with its approval chain. SLA status
// on pending transactions is computed at read time, never persisted.
type RequisitionDetail struct {
	Requisition entities.Requisition
	Approvals   []entities.ApprovalTransaction
}

type GetRequisitionQuery struct {
	RequisitionID string
}

type GetRequisitionUseCase struct {
	Requisitions ports.RequisitionRepository
	Transactions ports.ApprovalTransactionRepository
	Clock        ports.Clock
}

func (uc GetRequisitionUseCase) Execute(ctx context.Context, query GetRequisitionQuery) (RequisitionDetail, error) {
	req, err := uc.Requisitions.GetRequisition(ctx, strings.TrimSpace(query.RequisitionID))
	if err != nil {
		return RequisitionDetail{}, err
	}
	txs, err := uc.Transactions.ListByRequisition(ctx, req.RequisitionID)
	if err != nil {
		return RequisitionDetail{}, err
	}
	now := uc.Clock.Now().UTC()
	for i := range txs {
		txs[i].SLAStatus = services.CalculateSLAStatus(txs[i], now)
	}
	return RequisitionDetail{Requisition: req, Approvals: txs}, nil
}

type ListRequisitionsQuery struct {
	TenantID     string
	DepartmentID string
	Status       string
}

type ListRequisitionsUseCase struct {
	Requisitions ports.RequisitionRepository
}

func (uc ListRequisitionsUseCase) Execute(ctx context.Context, query ListRequisitionsQuery) ([]entities.Requisition, error) {
	filter := ports.RequisitionFilter{
		TenantID:     strings.TrimSpace(query.TenantID),
		DepartmentID: strings.TrimSpace(query.DepartmentID),
		Status:       entities.RequisitionStatus(strings.TrimSpace(query.Status)),
	}
	return uc.Requisitions.ListRequisitions(ctx, filter)
}

type PendingApprovalsQuery struct {
	TenantID string
	UserID   string
}

// PendingApprovalsUseCase is the approver's inbox: every pending transaction
// assigned to them, with SLA status computed against the current clock.
type PendingApprovalsUseCase struct {
	Transactions ports.ApprovalTransactionRepository
	Clock        ports.Clock
}

func (uc PendingApprovalsUseCase) Execute(ctx context.Context, query PendingApprovalsQuery) ([]entities.ApprovalTransaction, error) {
	txs, err := uc.Transactions.ListPendingForUser(ctx, strings.TrimSpace(query.TenantID), strings.TrimSpace(query.UserID))
	if err != nil {
		return nil, err
	}
	now := uc.Clock.Now().UTC()
	for i := range txs {
		txs[i].SLAStatus = services.CalculateSLAStatus(txs[i], now)
	}
	return txs, nil
}
