package disputeengine

import (
	"log/slog"
	"time"

	httpadapter "quinty/contexts/escrow-core/dispute-engine/adapters/http"
	"quinty/contexts/escrow-core/dispute-engine/adapters/memory"
	"quinty/contexts/escrow-core/dispute-engine/application"
	"quinty/contexts/escrow-core/dispute-engine/domain/entities"
	"quinty/contexts/escrow-core/dispute-engine/ports"
	"quinty/internal/shared/ledger"
)

type Module struct {
	Service application.Service
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Repository    ports.DisputeRepository
	Funds         ports.Funds
	Outbox        ports.OutboxWriter
	Bounties      ports.BountyReader
	Clock         ports.Clock
	Sequence      ports.Sequence
	Guard         ports.ReentrancyGuard
	MinVoteStake  uint64
	BordaWeights  [entities.RankedChoices]uint64
	VotingWindow  time.Duration
	ContestWindow time.Duration
	Logger        *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:          deps.Repository,
		Funds:         deps.Funds,
		Outbox:        deps.Outbox,
		Bounties:      deps.Bounties,
		Clock:         deps.Clock,
		Sequence:      deps.Sequence,
		Guard:         deps.Guard,
		MinVoteStake:  deps.MinVoteStake,
		BordaWeights:  deps.BordaWeights,
		VotingWindow:  deps.VotingWindow,
		ContestWindow: deps.ContestWindow,
		Logger:        deps.Logger,
	}
	return Module{
		Service: service,
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
	}
}

// NewInMemoryModule wires the engine on the in-memory store, which also
// serves as the BountyReader via settable snapshots.
func NewInMemoryModule(funds ports.Funds, minStake uint64, logger *slog.Logger) Module {
	store := memory.NewStore()
	if funds == nil {
		funds = ledger.New()
	}
	module := NewModule(Dependencies{
		Repository:   store,
		Funds:        funds,
		Outbox:       store,
		Bounties:     store,
		Clock:        store,
		Sequence:     ledger.NewSequence(),
		Guard:        ledger.NewGuard(),
		MinVoteStake: minStake,
		Logger:       logger,
	})
	module.Store = store
	return module
}
