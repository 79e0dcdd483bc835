package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"reqflow/contexts/talent-acquisition/budget-ledger-service/application"
	"reqflow/contexts/talent-acquisition/budget-ledger-service/domain/entities"
	httptransport "reqflow/contexts/talent-acquisition/budget-ledger-service/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) CreateCostCenterHandler(
	ctx context.Context,
	tenantID string,
	req httptransport.CreateCostCenterRequest,
) (httptransport.CostCenterResponse, error) {
	costCenter, err := h.Service.CreateCostCenter(ctx, application.CreateCostCenterCommand{
		TenantID:     tenantID,
		Code:         req.Code,
		Name:         req.Name,
		Currency:     req.Currency,
		BudgetAmount: req.BudgetAmount,
	})
	if err != nil {
		return httptransport.CostCenterResponse{}, err
	}
	return mapCostCenter(costCenter), nil
}

func (h Handler) GetCostCenterHandler(ctx context.Context, costCenterID string) (httptransport.CostCenterResponse, error) {
	costCenter, err := h.Service.GetCostCenter(ctx, costCenterID)
	if err != nil {
		return httptransport.CostCenterResponse{}, err
	}
	return mapCostCenter(costCenter), nil
}

func (h Handler) CreateJobGradeHandler(
	ctx context.Context,
	tenantID string,
	req httptransport.CreateJobGradeRequest,
) (httptransport.JobGradeResponse, error) {
	grade, err := h.Service.CreateJobGrade(ctx, application.CreateJobGradeCommand{
		TenantID:  tenantID,
		Code:      req.Code,
		Title:     req.Title,
		SalaryMin: req.SalaryMin,
		SalaryMax: req.SalaryMax,
		Currency:  req.Currency,
	})
	if err != nil {
		return httptransport.JobGradeResponse{}, err
	}
	return httptransport.JobGradeResponse{
		JobGradeID: grade.JobGradeID,
		Code:       grade.Code,
		Title:      grade.Title,
		SalaryMin:  grade.SalaryMin,
		SalaryMax:  grade.SalaryMax,
		Currency:   grade.Currency,
		IsActive:   grade.IsActive,
	}, nil
}

func (h Handler) ListReservationsHandler(ctx context.Context, requisitionID string) (httptransport.ListReservationsResponse, error) {
	items, err := h.Service.ListReservations(ctx, requisitionID)
	if err != nil {
		return httptransport.ListReservationsResponse{}, err
	}
	resp := httptransport.ListReservationsResponse{
		Reservations: make([]httptransport.ReservationDTO, 0, len(items)),
	}
	for _, item := range items {
		resp.Reservations = append(resp.Reservations, mapReservation(item))
	}
	return resp, nil
}

func mapCostCenter(c entities.CostCenter) httptransport.CostCenterResponse {
	return httptransport.CostCenterResponse{
		CostCenterID:    c.CostCenterID,
		Code:            c.Code,
		Name:            c.Name,
		Currency:        c.Currency,
		BudgetAmount:    c.BudgetAmount,
		UsedAmount:      c.UsedAmount,
		ReservedAmount:  c.ReservedAmount,
		AvailableAmount: c.Available(),
		IsActive:        c.IsActive,
	}
}

func mapReservation(r entities.BudgetReservation) httptransport.ReservationDTO {
	dto := httptransport.ReservationDTO{
		ReservationID: r.ReservationID,
		CostCenterID:  r.CostCenterID,
		RequisitionID: r.RequisitionID,
		Amount:        r.Amount,
		Currency:      r.Currency,
		Headcount:     r.Headcount,
		SalaryPerHead: r.SalaryPerHead,
		Status:        string(r.Status),
		ReservedAt:    r.ReservedAt.UTC().Format(time.RFC3339),
	}
	if r.ConfirmedAt != nil {
		dto.ConfirmedAt = r.ConfirmedAt.UTC().Format(time.RFC3339)
	}
	if r.ReleasedAt != nil {
		dto.ReleasedAt = r.ReleasedAt.UTC().Format(time.RFC3339)
	}
	return dto
}
