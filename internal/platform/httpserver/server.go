package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"

	budgetledger "reqflow/contexts/talent-acquisition/budget-ledger-service"
	requisitionservice "reqflow/contexts/talent-acquisition/requisition-service"
	requisitionhttp "reqflow/contexts/talent-acquisition/requisition-service/transport/http"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "reqflow/internal/platform/httpserver/docs"
)

type Server struct {
	mux          *http.ServeMux
	logger       *slog.Logger
	addr         string
	requisitions requisitionservice.Module
	budget       budgetledger.Module
}

func New(
	requisitions requisitionservice.Module,
	budget budgetledger.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:          http.NewServeMux(),
		logger:       logger,
		addr:         addr,
		requisitions: requisitions,
		budget:       budget,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /api/v1/requisitions", s.handleCreateRequisition)
	s.mux.HandleFunc("GET /api/v1/requisitions", s.handleListRequisitions)
	s.mux.HandleFunc("GET /api/v1/requisitions/{requisition_id}", s.handleGetRequisition)
	s.mux.HandleFunc("DELETE /api/v1/requisitions/{requisition_id}", s.handleDeleteRequisition)
	s.mux.HandleFunc("POST /api/v1/requisitions/{requisition_id}/submit", s.handleSubmitRequisition)
	s.mux.HandleFunc("POST /api/v1/requisitions/{requisition_id}/decision", s.handleDecideApproval)
	s.mux.HandleFunc("POST /api/v1/requisitions/{requisition_id}/cancel", s.handleCancelRequisition)
	s.mux.HandleFunc("POST /api/v1/requisitions/{requisition_id}/hold", s.handleHoldRequisition)
	s.mux.HandleFunc("POST /api/v1/requisitions/{requisition_id}/resume", s.handleResumeRequisition)
	s.mux.HandleFunc("POST /api/v1/requisitions/{requisition_id}/post", s.handlePostRequisition)
	s.mux.HandleFunc("POST /api/v1/requisitions/{requisition_id}/fill", s.handleFillRequisition)
	s.mux.HandleFunc("GET /api/v1/approvals/pending", s.handlePendingApprovals)
	s.mux.HandleFunc("POST /api/v1/approval-rules", s.handleCreateRule)
	s.mux.HandleFunc("POST /api/v1/approval-rules/{rule_id}/deactivate", s.handleDeactivateRule)

	s.mux.HandleFunc("POST /api/v1/cost-centers", s.handleCreateCostCenter)
	s.mux.HandleFunc("GET /api/v1/cost-centers/{cost_center_id}", s.handleGetCostCenter)
	s.mux.HandleFunc("POST /api/v1/job-grades", s.handleCreateJobGrade)
	s.mux.HandleFunc("GET /api/v1/requisitions/{requisition_id}/reservations", s.handleListReservations)
}

func writeRequisitionError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, requisitionhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
