package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"quinty/contexts/escrow-core/dispute-engine/domain/entities"
	domainerrors "quinty/contexts/escrow-core/dispute-engine/domain/errors"
	"quinty/contexts/escrow-core/dispute-engine/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

// Store is the in-memory dispute adapter. Bounty snapshots are projections
// settable by tests or by the crosswire adapter in real wiring.
type Store struct {
	mu          sync.RWMutex
	disputes    map[uint64]entities.Dispute
	snapshots   map[uint64]ports.BountySnapshot
	outbox      map[string]outboxRecord
	nowOverride time.Time
}

func NewStore() *Store {
	return &Store{
		disputes:  make(map[uint64]entities.Dispute),
		snapshots: make(map[uint64]ports.BountySnapshot),
		outbox:    make(map[string]outboxRecord),
	}
}

func (s *Store) SaveDispute(_ context.Context, dispute entities.Dispute) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disputes[dispute.DisputeID] = dispute
	return nil
}

func (s *Store) GetDispute(_ context.Context, disputeID uint64) (entities.Dispute, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dispute, ok := s.disputes[disputeID]
	if !ok {
		return entities.Dispute{}, domainerrors.ErrDisputeNotFound
	}
	return dispute, nil
}

func (s *Store) ListDisputes(_ context.Context) ([]entities.Dispute, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Dispute, 0, len(s.disputes))
	for _, dispute := range s.disputes {
		items = append(items, dispute)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].DisputeID < items[j].DisputeID })
	return items, nil
}

func (s *Store) ListDisputesByBounty(_ context.Context, bountyID uint64) ([]entities.Dispute, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Dispute, 0)
	for _, dispute := range s.disputes {
		if dispute.BountyID == bountyID {
			items = append(items, dispute)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].DisputeID < items[j].DisputeID })
	return items, nil
}

func (s *Store) CountDisputes(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.disputes)), nil
}

// SetBountySnapshot seeds the bounty projection this store serves as
// BountyReader.
func (s *Store) SetBountySnapshot(snapshot ports.BountySnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snapshot.BountyID] = snapshot
}

func (s *Store) BountySnapshot(_ context.Context, bountyID uint64) (ports.BountySnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot, ok := s.snapshots[bountyID]
	if !ok {
		return ports.BountySnapshot{}, domainerrors.ErrBountyNotEligible
	}
	return snapshot, nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	outboxID := uuid.NewString()
	s.outbox[outboxID] = outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:     outboxID,
			EventType:    envelope.EventType,
			PartitionKey: envelope.PartitionKey,
			Payload:      payload,
			CreatedAt:    envelope.OccurredAt,
		},
	}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pending := make([]ports.OutboxMessage, 0)
	for _, record := range s.outbox {
		if !record.published {
			pending = append(pending, record.message)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].CreatedAt.Before(pending[j].CreatedAt) })
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.outbox[outboxID]
	if !ok {
		return nil
	}
	record.published = true
	s.outbox[outboxID] = record
	return nil
}

func (s *Store) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.nowOverride.IsZero() {
		return s.nowOverride
	}
	return time.Now().UTC()
}

// SetNow pins the store clock; zero restores wall time.
func (s *Store) SetNow(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nowOverride = now
}
