package bountyengine

import (
	"log/slog"

	httpadapter "quinty/contexts/escrow-core/bounty-engine/adapters/http"
	"quinty/contexts/escrow-core/bounty-engine/adapters/memory"
	"quinty/contexts/escrow-core/bounty-engine/application"
	"quinty/contexts/escrow-core/bounty-engine/ports"
	"quinty/internal/shared/ledger"
)

type Module struct {
	Service application.Service
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Repository ports.BountyRepository
	Funds      ports.Funds
	Outbox     ports.OutboxWriter
	Disputes   ports.DisputeOpener
	Observer   ports.ReputationNotifier
	Clock      ports.Clock
	Sequence   ports.Sequence
	Guard      ports.ReentrancyGuard
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:     deps.Repository,
		Funds:    deps.Funds,
		Outbox:   deps.Outbox,
		Disputes: deps.Disputes,
		Observer: deps.Observer,
		Clock:    deps.Clock,
		Sequence: deps.Sequence,
		Guard:    deps.Guard,
		Logger:   deps.Logger,
	}
	return Module{
		Service: service,
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
	}
}

// NewInMemoryModule wires the engine on top of the in-memory store and a
// fresh ledger. Cross-engine collaborators (dispute opener, observer) may be
// nil; slash calls then fail with a wiring error.
func NewInMemoryModule(funds ports.Funds, disputes ports.DisputeOpener, observer ports.ReputationNotifier, logger *slog.Logger) Module {
	store := memory.NewStore()
	if funds == nil {
		funds = ledger.New()
	}
	module := NewModule(Dependencies{
		Repository: store,
		Funds:      funds,
		Outbox:     store,
		Disputes:   disputes,
		Observer:   observer,
		Clock:      store,
		Sequence:   ledger.NewSequence(),
		Guard:      ledger.NewGuard(),
		Logger:     logger,
	})
	module.Store = store
	return module
}
