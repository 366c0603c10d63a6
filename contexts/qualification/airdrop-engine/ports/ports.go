package ports

import (
	"context"
	"time"

	contractsv1 "quinty/contracts/gen/events/v1"
	"quinty/contexts/qualification/airdrop-engine/domain/entities"
)

type AirdropRepository interface {
	SaveAirdrop(ctx context.Context, airdrop entities.Airdrop) error
	GetAirdrop(ctx context.Context, airdropID uint64) (entities.Airdrop, error)
	ListAirdrops(ctx context.Context) ([]entities.Airdrop, error)
	CountAirdrops(ctx context.Context) (uint64, error)
	SaveEntry(ctx context.Context, entry entities.Entry) error
	GetEntry(ctx context.Context, entryID uint64) (entities.Entry, error)
	GetEntryBySolver(ctx context.Context, airdropID uint64, solver string) (entities.Entry, bool, error)
	ListEntriesByAirdrop(ctx context.Context, airdropID uint64) ([]entities.Entry, error)
}

// VerifierSet is the owner-managed registry of addresses allowed to decide
// entries across all airdrops.
type VerifierSet interface {
	AddVerifier(ctx context.Context, address string) error
	RemoveVerifier(ctx context.Context, address string) error
	IsVerifier(ctx context.Context, address string) (bool, error)
	ListVerifiers(ctx context.Context) ([]string, error)
}

type Funds interface {
	Escrow(pool string, amount uint64) error
	Move(from, to string, amount uint64) error
	Payout(pool, to string, amount uint64) error
	PoolBalance(pool string) uint64
}

type Clock interface {
	Now() time.Time
}

type Sequence interface {
	NextID(entity string) uint64
}

type ReentrancyGuard interface {
	Enter() error
	Exit()
}

type EventEnvelope = contractsv1.Envelope

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}
