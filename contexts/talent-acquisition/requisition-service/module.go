package requisitionservice

import (
	"log/slog"
	"time"

	httpadapter "reqflow/contexts/talent-acquisition/requisition-service/adapters/http"
	"reqflow/contexts/talent-acquisition/requisition-service/adapters/memory"
	"reqflow/contexts/talent-acquisition/requisition-service/application/commands"
	"reqflow/contexts/talent-acquisition/requisition-service/application/queries"
	"reqflow/contexts/talent-acquisition/requisition-service/application/workers"
	"reqflow/contexts/talent-acquisition/requisition-service/domain/entities"
	"reqflow/contexts/talent-acquisition/requisition-service/ports"
)

// Module bundles the wired use cases behind one constructor so binaries and
// tests assemble the service the same way.
type Module struct {
	Handler    httpadapter.Handler
	SLAMonitor workers.SLAMonitor
	Relay      workers.OutboxRelay
	Store      *memory.Store
}

type Dependencies struct {
	Requisitions   ports.RequisitionRepository
	Rules          ports.ApprovalRuleRepository
	Transactions   ports.ApprovalTransactionRepository
	Directory      ports.ApproverDirectory
	Budget         ports.BudgetGateway
	Audit          ports.AuditRepository
	Idempotency    ports.IdempotencyStore
	Outbox         ports.OutboxWriter
	OutboxRows     ports.OutboxRepository
	Publisher      ports.EventPublisher
	Clock          ports.Clock
	IDGen          ports.IDGenerator
	IdempotencyTTL time.Duration
	BatchSize      int
	Logger         *slog.Logger
}

func NewModule(deps Dependencies) Module {
	handler := httpadapter.Handler{
		Create: commands.CreateRequisitionUseCase{
			Requisitions:   deps.Requisitions,
			Idempotency:    deps.Idempotency,
			Audit:          deps.Audit,
			Clock:          deps.Clock,
			IDGenerator:    deps.IDGen,
			IdempotencyTTL: deps.IdempotencyTTL,
			Logger:         deps.Logger,
		},
		Submit: commands.SubmitRequisitionUseCase{
			Requisitions: deps.Requisitions,
			Rules:        deps.Rules,
			Transactions: deps.Transactions,
			Directory:    deps.Directory,
			Budget:       deps.Budget,
			Audit:        deps.Audit,
			Outbox:       deps.Outbox,
			Clock:        deps.Clock,
			IDGen:        deps.IDGen,
			Logger:       deps.Logger,
		},
		Decide: commands.DecideApprovalUseCase{
			Requisitions: deps.Requisitions,
			Transactions: deps.Transactions,
			Budget:       deps.Budget,
			Audit:        deps.Audit,
			Outbox:       deps.Outbox,
			Clock:        deps.Clock,
			IDGen:        deps.IDGen,
			Logger:       deps.Logger,
		},
		ChangeStatus: commands.ChangeStatusUseCase{
			Requisitions: deps.Requisitions,
			Transactions: deps.Transactions,
			Budget:       deps.Budget,
			Audit:        deps.Audit,
			Outbox:       deps.Outbox,
			Clock:        deps.Clock,
			IDGen:        deps.IDGen,
			Logger:       deps.Logger,
		},
		Post: commands.PostRequisitionUseCase{
			Requisitions: deps.Requisitions,
			Audit:        deps.Audit,
			Outbox:       deps.Outbox,
			Clock:        deps.Clock,
			IDGen:        deps.IDGen,
			Logger:       deps.Logger,
		},
		Fill: commands.FillRequisitionUseCase{
			Requisitions: deps.Requisitions,
			Budget:       deps.Budget,
			Audit:        deps.Audit,
			Outbox:       deps.Outbox,
			Clock:        deps.Clock,
			IDGen:        deps.IDGen,
			Logger:       deps.Logger,
		},
		Delete: commands.DeleteRequisitionUseCase{
			Requisitions: deps.Requisitions,
			Audit:        deps.Audit,
			Clock:        deps.Clock,
			IDGen:        deps.IDGen,
			Logger:       deps.Logger,
		},
		Rules: commands.AuthorRuleUseCase{
			Rules:  deps.Rules,
			Clock:  deps.Clock,
			IDGen:  deps.IDGen,
			Logger: deps.Logger,
		},
		Get: queries.GetRequisitionUseCase{
			Requisitions: deps.Requisitions,
			Transactions: deps.Transactions,
			Clock:        deps.Clock,
		},
		List: queries.ListRequisitionsUseCase{
			Requisitions: deps.Requisitions,
		},
		Inbox: queries.PendingApprovalsUseCase{
			Transactions: deps.Transactions,
			Clock:        deps.Clock,
		},
		Logger: deps.Logger,
	}

	return Module{
		Handler: handler,
		SLAMonitor: workers.SLAMonitor{
			Transactions: deps.Transactions,
			Outbox:       deps.Outbox,
			Clock:        deps.Clock,
			IDGen:        deps.IDGen,
			BatchSize:    deps.BatchSize,
			Logger:       deps.Logger,
		},
		Relay: workers.OutboxRelay{
			Outbox:    deps.OutboxRows,
			Publisher: deps.Publisher,
			Clock:     deps.Clock,
			BatchSize: deps.BatchSize,
			Logger:    deps.Logger,
		},
	}
}

// NewInMemoryModule wires the module onto the in-memory store. The approver
// directory and budget gateway stay injectable so tests can script them.
func NewInMemoryModule(
	seedRequisitions []entities.Requisition,
	seedRules []entities.ApprovalRule,
	directory ports.ApproverDirectory,
	budget ports.BudgetGateway,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) Module {
	store := memory.NewStore(seedRequisitions, seedRules)
	module := NewModule(Dependencies{
		Requisitions:   store,
		Rules:          store,
		Transactions:   store,
		Directory:      directory,
		Budget:         budget,
		Audit:          store,
		Idempotency:    store,
		Outbox:         store,
		OutboxRows:     store,
		Publisher:      publisher,
		Clock:          store,
		IDGen:          store,
		IdempotencyTTL: 7 * 24 * time.Hour,
		Logger:         logger,
	})
	module.Store = store
	return module
}
