package airdropengine

import (
	"log/slog"

	httpadapter "quinty/contexts/qualification/airdrop-engine/adapters/http"
	"quinty/contexts/qualification/airdrop-engine/adapters/memory"
	"quinty/contexts/qualification/airdrop-engine/application"
	"quinty/contexts/qualification/airdrop-engine/ports"
	"quinty/internal/shared/ledger"
)

type Module struct {
	Service application.Service
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Repository ports.AirdropRepository
	Verifiers  ports.VerifierSet
	Funds      ports.Funds
	Outbox     ports.OutboxWriter
	Clock      ports.Clock
	Sequence   ports.Sequence
	Guard      ports.ReentrancyGuard
	Owner      string
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:      deps.Repository,
		Verifiers: deps.Verifiers,
		Funds:     deps.Funds,
		Outbox:    deps.Outbox,
		Clock:     deps.Clock,
		Sequence:  deps.Sequence,
		Guard:     deps.Guard,
		Owner:     deps.Owner,
		Logger:    deps.Logger,
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
// fresh ledger.
func NewInMemoryModule(funds ports.Funds, owner string, logger *slog.Logger) Module {
	store := memory.NewStore()
	if funds == nil {
		funds = ledger.New()
	}
	module := NewModule(Dependencies{
		Repository: store,
		Verifiers:  store,
		Funds:      funds,
		Outbox:     store,
		Clock:      store,
		Sequence:   ledger.NewSequence(),
		Guard:      ledger.NewGuard(),
		Owner:      owner,
		Logger:     logger,
	})
	module.Store = store
	return module
}
