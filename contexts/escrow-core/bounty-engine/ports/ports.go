package ports

import (
	"context"
	"time"

	contractsv1 "quinty/contracts/gen/events/v1"
	"quinty/contexts/escrow-core/bounty-engine/domain/entities"
)

type BountyRepository interface {
	SaveBounty(ctx context.Context, bounty entities.Bounty) error
	GetBounty(ctx context.Context, bountyID uint64) (entities.Bounty, error)
	ListBounties(ctx context.Context) ([]entities.Bounty, error)
	CountBounties(ctx context.Context) (uint64, error)
	SaveSubmission(ctx context.Context, submission entities.Submission) error
	GetSubmission(ctx context.Context, submissionID uint64) (entities.Submission, error)
	ListSubmissionsByBounty(ctx context.Context, bountyID uint64) ([]entities.Submission, error)
}

// Funds is the custody port backed by the shared ledger. Methods are
// in-process bookkeeping, synchronous like Clock.
type Funds interface {
	Escrow(pool string, amount uint64) error
	Move(from, to string, amount uint64) error
	Payout(pool, to string, amount uint64) error
	PoolBalance(pool string) uint64
}

// DisputeOpener is the single cross-engine call: the slash path asks the
// dispute engine to open an expiry vote funded with the slashed escrow. Only
// the bounty engine holds this handle; the operation is not externally
// routable.
type DisputeOpener interface {
	OpenExpiryVote(ctx context.Context, bountyID uint64, poolAmount uint64) (uint64, error)
}

// ReputationNotifier receives lifecycle milestones. Calls are fire-and-forget:
// the engine logs failures and never reverts on them.
type ReputationNotifier interface {
	BountyCreated(ctx context.Context, creator string, bountyID uint64) error
	SolutionSubmitted(ctx context.Context, solver string, bountyID, submissionID uint64) error
	WinnerSelected(ctx context.Context, winner string, bountyID uint64) error
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
