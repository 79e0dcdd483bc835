package bootstrap

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	budgetledger "reqflow/contexts/talent-acquisition/budget-ledger-service"
	budgetpostgres "reqflow/contexts/talent-acquisition/budget-ledger-service/adapters/postgres"
	budgetapp "reqflow/contexts/talent-acquisition/budget-ledger-service/application"
	requisitionservice "reqflow/contexts/talent-acquisition/requisition-service"
	requisitionmemory "reqflow/contexts/talent-acquisition/requisition-service/adapters/memory"
	requisitionpostgres "reqflow/contexts/talent-acquisition/requisition-service/adapters/postgres"
	"reqflow/contexts/talent-acquisition/requisition-service/application/workers"
	"reqflow/contexts/talent-acquisition/requisition-service/domain/entities"
	"reqflow/internal/platform/config"
	"reqflow/internal/platform/db"
	"reqflow/internal/platform/httpserver"
	"reqflow/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres    *db.Postgres
	slaMonitor  workers.SLAMonitor
	outboxRelay workers.OutboxRelay
	sweepEvery  time.Duration
	relayEvery  time.Duration
	enableSweep bool
	enableRelay bool
	logger      *slog.Logger
}

// budgetGateway adapts the budget ledger's application service onto the
// requisition side's port. Both contexts live in one process, so the gateway
// is a direct call rather than a network hop.
type budgetGateway struct {
	service budgetapp.Service
}

func (g budgetGateway) ValidateSalaryBand(ctx context.Context, jobGradeID string, salaryMin, salaryMax float64) error {
	return g.service.ValidateSalaryBand(ctx, jobGradeID, salaryMin, salaryMax)
}

func (g budgetGateway) Reserve(ctx context.Context, req entities.Requisition) error {
	_, err := g.service.Reserve(ctx, budgetapp.ReserveCommand{
		TenantID:      req.TenantID,
		CostCenterID:  req.CostCenterID,
		RequisitionID: req.RequisitionID,
		Headcount:     req.Headcount,
		SalaryPerHead: req.SalaryMax,
	})
	return err
}

func (g budgetGateway) Release(ctx context.Context, requisitionID string) error {
	return g.service.Release(ctx, requisitionID)
}

func (g budgetGateway) Commit(ctx context.Context, requisitionID string) error {
	return g.service.Commit(ctx, requisitionID)
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(context.Background(), poolOptions(cfg))
	if err != nil {
		return nil, err
	}

	budgetRepo := budgetpostgres.NewRepository(pg.DB, logger)
	budgetModule := budgetledger.NewModule(budgetledger.Dependencies{
		Ledger:      budgetRepo,
		Clock:       budgetpostgres.SystemClock{},
		IDGenerator: budgetpostgres.UUIDGenerator{},
		Logger:      logger,
	})

	requisitionRepo := requisitionpostgres.NewRepository(pg.DB, logger)
	requisitionModule := requisitionservice.NewModule(requisitionservice.Dependencies{
		Requisitions:   requisitionRepo,
		Rules:          requisitionRepo,
		Transactions:   requisitionRepo,
		Directory:      directoryFromEnv(logger),
		Budget:         budgetGateway{service: budgetModule.Service},
		Audit:          requisitionRepo,
		Idempotency:    requisitionRepo,
		Outbox:         requisitionRepo,
		OutboxRows:     requisitionRepo,
		Clock:          requisitionpostgres.SystemClock{},
		IDGen:          requisitionpostgres.UUIDGenerator{},
		IdempotencyTTL: cfg.IdempotencyTTL,
		BatchSize:      cfg.WorkerBatchSize,
		Logger:         logger,
	})

	server := httpserver.New(requisitionModule, budgetModule, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(context.Background(), poolOptions(cfg))
	if err != nil {
		return nil, err
	}

	kafka, err := messaging.NewKafka(cfg.KafkaBrokers, cfg.EventBufferSize, logger)
	if err != nil {
		return nil, err
	}

	repo := requisitionpostgres.NewRepository(pg.DB, logger)
	return &WorkerApp{
		postgres: pg,
		slaMonitor: workers.SLAMonitor{
			Transactions: repo,
			Outbox:       repo,
			Clock:        requisitionpostgres.SystemClock{},
			IDGen:        requisitionpostgres.UUIDGenerator{},
			BatchSize:    cfg.WorkerBatchSize,
			Logger:       logger,
		},
		outboxRelay: workers.OutboxRelay{
			Outbox:    repo,
			Publisher: kafka,
			Clock:     requisitionpostgres.SystemClock{},
			BatchSize: cfg.WorkerBatchSize,
			Logger:    logger,
		},
		sweepEvery:  cfg.SLASweepInterval,
		relayEvery:  cfg.OutboxRelayEvery,
		enableSweep: cfg.EnableSLAMonitor,
		enableRelay: cfg.EnableOutboxRelay,
		logger:      logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	sweep := time.NewTicker(w.sweepEvery)
	defer sweep.Stop()
	relay := time.NewTicker(w.relayEvery)
	defer relay.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"sla_sweep_interval", w.sweepEvery.String(),
		"outbox_relay_interval", w.relayEvery.String(),
	)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sweep.C:
			if !w.enableSweep {
				continue
			}
			if err := w.slaMonitor.RunOnce(ctx); err != nil {
				return err
			}
		case <-relay.C:
			if !w.enableRelay {
				continue
			}
			if err := w.outboxRelay.RunOnce(ctx); err != nil {
				return err
			}
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

// directoryFromEnv reads APPROVER_DIRECTORY, a JSON object mapping approver
// roles to approver lists. Unset or malformed input yields an empty directory
// and levels resolve as auto-satisfied.
func directoryFromEnv(logger *slog.Logger) requisitionmemory.Directory {
	directory := requisitionmemory.Directory{
		ByRole: make(map[entities.ApproverRole][]entities.Approver),
	}
	raw := strings.TrimSpace(os.Getenv("APPROVER_DIRECTORY"))
	if raw == "" {
		return directory
	}
	var parsed map[string][]entities.Approver
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		logger.Warn("approver directory env is not valid JSON, using empty directory",
			"event", "approver_directory_invalid",
			"module", "internal/app/bootstrap",
			"layer", "platform",
			"error", err.Error(),
		)
		return directory
	}
	for role, approvers := range parsed {
		directory.ByRole[entities.ApproverRole(role)] = approvers
	}
	return directory
}

func poolOptions(cfg config.Config) db.Options {
	return db.Options{
		DSN:             cfg.PostgresDSN,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnectTimeout:  cfg.DBConnectTimeout,
	}
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
