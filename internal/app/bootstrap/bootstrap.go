package bootstrap

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/go-co-op/gocron/v2"

	reputationobserver "quinty/contexts/community-experience/reputation-observer"
	bountyengine "quinty/contexts/escrow-core/bounty-engine"
	bountymemory "quinty/contexts/escrow-core/bounty-engine/adapters/memory"
	bountypostgres "quinty/contexts/escrow-core/bounty-engine/adapters/postgres"
	bountyworkers "quinty/contexts/escrow-core/bounty-engine/application/workers"
	disputeengine "quinty/contexts/escrow-core/dispute-engine"
	disputememory "quinty/contexts/escrow-core/dispute-engine/adapters/memory"
	disputeworkers "quinty/contexts/escrow-core/dispute-engine/application/workers"
	airdropengine "quinty/contexts/qualification/airdrop-engine"
	airdropmemory "quinty/contexts/qualification/airdrop-engine/adapters/memory"
	airdroppostgres "quinty/contexts/qualification/airdrop-engine/adapters/postgres"
	airdropworkers "quinty/contexts/qualification/airdrop-engine/application/workers"
	"quinty/internal/platform/config"
	"quinty/internal/platform/db"
	"quinty/internal/platform/httpserver"
	"quinty/internal/platform/messaging"
	"quinty/internal/shared/ledger"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

// Engines holds the wired modules plus the infrastructure handles the
// processes need. One ledger and one id sequence span all engines; each
// engine keeps its own reentrancy guard so the slash path may legitimately
// nest into the dispute engine.
type Engines struct {
	Bounty     bountyengine.Module
	Dispute    disputeengine.Module
	Airdrop    airdropengine.Module
	Reputation reputationobserver.Module

	Funds    *ledger.Ledger
	Postgres *db.Postgres
}

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres      *db.Postgres
	scheduler     gocron.Scheduler
	outboxRelays  []func(context.Context) error
	expirySweep   func(context.Context) error
	relayInterval time.Duration
	sweepInterval time.Duration
	logger        *slog.Logger
}

// buildEngines wires every module over either postgres repositories (DSN
// set) or the in-memory stores. Dispute state and the ledger itself are
// memory-resident in both modes.
func buildEngines(cfg config.Config, logger *slog.Logger) (*Engines, []func(context.Context) error, func(context.Context) error, error) {
	funds := ledger.New()
	sequence := ledger.NewSequence()

	reputation := reputationobserver.NewInMemoryModule(logger)
	opener := &DisputeOpenerProxy{}

	var pg *db.Postgres
	var bountyModule bountyengine.Module
	var airdropModule airdropengine.Module
	var bountyRelay bountyworkers.OutboxRelay
	var airdropRelay airdropworkers.OutboxRelay

	bus, err := messaging.NewBus(cfg.Brokers, logger)
	if err != nil {
		return nil, nil, nil, err
	}

	if strings.TrimSpace(cfg.PostgresDSN) != "" {
		pg, err = db.Connect(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, nil, err
		}
		bountyRepo := bountypostgres.NewRepository(pg.DB, logger)
		bountyModule = bountyengine.NewModule(bountyengine.Dependencies{
			Repository: bountyRepo,
			Funds:      funds,
			Outbox:     bountyRepo,
			Disputes:   opener,
			Observer:   reputation.Service,
			Clock:      bountypostgres.SystemClock{},
			Sequence:   sequence,
			Guard:      ledger.NewGuard(),
			Logger:     logger,
		})
		bountyRelay = bountyworkers.OutboxRelay{Outbox: bountyRepo, Publisher: bus, Clock: bountypostgres.SystemClock{}, Logger: logger}

		airdropRepo := airdroppostgres.NewRepository(pg.DB, logger)
		airdropModule = airdropengine.NewModule(airdropengine.Dependencies{
			Repository: airdropRepo,
			Verifiers:  airdropRepo,
			Funds:      funds,
			Outbox:     airdropRepo,
			Clock:      bountypostgres.SystemClock{},
			Sequence:   sequence,
			Guard:      ledger.NewGuard(),
			Owner:      cfg.OwnerAddress,
			Logger:     logger,
		})
		airdropRelay = airdropworkers.OutboxRelay{Outbox: airdropRepo, Publisher: bus, Clock: bountypostgres.SystemClock{}, Logger: logger}
	} else {
		bountyStore := bountymemory.NewStore()
		bountyModule = bountyengine.NewModule(bountyengine.Dependencies{
			Repository: bountyStore,
			Funds:      funds,
			Outbox:     bountyStore,
			Disputes:   opener,
			Observer:   reputation.Service,
			Clock:      bountyStore,
			Sequence:   sequence,
			Guard:      ledger.NewGuard(),
			Logger:     logger,
		})
		bountyModule.Store = bountyStore
		bountyRelay = bountyworkers.OutboxRelay{Outbox: bountyStore, Publisher: bus, Clock: bountyStore, Logger: logger}

		airdropStore := airdropmemory.NewStore()
		airdropModule = airdropengine.NewModule(airdropengine.Dependencies{
			Repository: airdropStore,
			Verifiers:  airdropStore,
			Funds:      funds,
			Outbox:     airdropStore,
			Clock:      airdropStore,
			Sequence:   sequence,
			Guard:      ledger.NewGuard(),
			Owner:      cfg.OwnerAddress,
			Logger:     logger,
		})
		airdropModule.Store = airdropStore
		airdropRelay = airdropworkers.OutboxRelay{Outbox: airdropStore, Publisher: bus, Clock: airdropStore, Logger: logger}
	}

	disputeStore := disputememory.NewStore()
	disputeModule := disputeengine.NewModule(disputeengine.Dependencies{
		Repository:    disputeStore,
		Funds:         funds,
		Outbox:        disputeStore,
		Bounties:      BountyReaderAdapter{Repo: bountyModule.Service.Repo},
		Clock:         disputeStore,
		Sequence:      sequence,
		Guard:         ledger.NewGuard(),
		MinVoteStake:  cfg.MinVoteStake,
		VotingWindow:  cfg.VotingWindow,
		ContestWindow: cfg.ContestWindow,
		Logger:        logger,
	})
	disputeModule.Store = disputeStore
	opener.Bind(disputeModule.Service)

	disputeRelay := disputeworkers.OutboxRelay{Outbox: disputeStore, Publisher: bus, Clock: disputeStore, Logger: logger}
	watchman := bountyworkers.ExpiryWatchman{Service: bountyModule.Service, Logger: logger}

	engines := &Engines{
		Bounty:     bountyModule,
		Dispute:    disputeModule,
		Airdrop:    airdropModule,
		Reputation: reputation,
		Funds:      funds,
		Postgres:   pg,
	}
	relays := []func(context.Context) error{
		bountyRelay.RunOnce,
		disputeRelay.RunOnce,
		airdropRelay.RunOnce,
	}
	return engines, relays, watchman.RunOnce, nil
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")

	engines, _, _, err := buildEngines(cfg, logger)
	if err != nil {
		return nil, err
	}

	server := httpserver.New(
		engines.Bounty,
		engines.Dispute,
		engines.Airdrop,
		engines.Reputation,
		logger,
		normalizeAddr(cfg.HTTPPort),
		httpserver.Options{
			EnableSwagger:   cfg.EnableSwaggerRoute,
			EnableRateLimit: cfg.EnableRequestRateLimit,
		},
	)
	return &APIApp{
		server:   server,
		postgres: engines.Postgres,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")

	engines, relays, sweep, err := buildEngines(cfg, logger)
	if err != nil {
		return nil, err
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	app := &WorkerApp{
		postgres:      engines.Postgres,
		scheduler:     scheduler,
		relayInterval: cfg.OutboxRelayInterval,
		sweepInterval: cfg.ExpirySweepInterval,
		logger:        logger,
	}
	if cfg.EnableOutboxRelay {
		app.outboxRelays = relays
	}
	if cfg.EnableExpiryWatchman {
		app.expirySweep = sweep
	}
	return app, nil
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
	if len(w.outboxRelays) > 0 {
		if _, err := w.scheduler.NewJob(
			gocron.DurationJob(w.relayInterval),
			gocron.NewTask(func() {
				for _, relay := range w.outboxRelays {
					if err := relay(ctx); err != nil {
						return
					}
				}
			}),
		); err != nil {
			return err
		}
	}
	if w.expirySweep != nil {
		if _, err := w.scheduler.NewJob(
			gocron.DurationJob(w.sweepInterval),
			gocron.NewTask(func() {
				_ = w.expirySweep(ctx)
			}),
		); err != nil {
			return err
		}
	}

	w.scheduler.Start()
	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"relay_interval", w.relayInterval.String(),
		"sweep_interval", w.sweepInterval.String(),
	)

	<-ctx.Done()
	return w.scheduler.Shutdown()
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
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
