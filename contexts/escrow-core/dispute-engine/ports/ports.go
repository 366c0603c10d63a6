package ports

import (
	"context"
	"time"

	contractsv1 "quinty/contracts/gen/events/v1"
	"quinty/contexts/escrow-core/dispute-engine/domain/entities"
)

type DisputeRepository interface {
	SaveDispute(ctx context.Context, dispute entities.Dispute) error
	GetDispute(ctx context.Context, disputeID uint64) (entities.Dispute, error)
	ListDisputes(ctx context.Context) ([]entities.Dispute, error)
	ListDisputesByBounty(ctx context.Context, bountyID uint64) ([]entities.Dispute, error)
	CountDisputes(ctx context.Context) (uint64, error)
}

type SubmissionRef struct {
	SubmissionID uint64
	Solver       string
}

// BountySnapshot is the dispute engine's read model of a bounty, supplied by
// the bounty engine through a one-way adapter so the two engines do not form
// a bidirectional object graph.
type BountySnapshot struct {
	BountyID      uint64
	Creator       string
	Amount        uint64
	Resolved      bool
	Slashed       bool
	ResolvedAt    time.Time
	Winners       []string
	WinningSubIDs []uint64
	Submissions   []SubmissionRef
}

func (s BountySnapshot) SolverOf(submissionID uint64) (string, bool) {
	for _, ref := range s.Submissions {
		if ref.SubmissionID == submissionID {
			return ref.Solver, true
		}
	}
	return "", false
}

type BountyReader interface {
	BountySnapshot(ctx context.Context, bountyID uint64) (BountySnapshot, error)
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
