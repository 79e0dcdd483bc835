package budgetledger

import (
	"log/slog"

	httpadapter "reqflow/contexts/talent-acquisition/budget-ledger-service/adapters/http"
	"reqflow/contexts/talent-acquisition/budget-ledger-service/adapters/memory"
	"reqflow/contexts/talent-acquisition/budget-ledger-service/application"
	"reqflow/contexts/talent-acquisition/budget-ledger-service/domain/entities"
	"reqflow/contexts/talent-acquisition/budget-ledger-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

type Dependencies struct {
	Ledger      ports.LedgerRepository
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Ledger: deps.Ledger,
		Clock:  deps.Clock,
		IDGen:  deps.IDGenerator,
		Logger: deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
		Service: service,
	}
}

func NewInMemoryModule(seedCostCenters []entities.CostCenter, seedGrades []entities.JobGrade, logger *slog.Logger) Module {
	store := memory.NewStore(seedCostCenters, seedGrades)
	module := NewModule(Dependencies{
		Ledger:      store,
		Clock:       store,
		IDGenerator: store,
		Logger:      logger,
	})
	module.Store = store
	return module
}
