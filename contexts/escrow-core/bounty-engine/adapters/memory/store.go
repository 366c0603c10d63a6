package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"quinty/contexts/escrow-core/bounty-engine/domain/entities"
	domainerrors "quinty/contexts/escrow-core/bounty-engine/domain/errors"
	"quinty/contexts/escrow-core/bounty-engine/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

// Store is the in-memory adapter backing the bounty engine in tests and
// single-process deployments. It implements the repository, outbox, and clock
// ports; the clock is overridable so deadline arithmetic is testable.
type Store struct {
	mu          sync.RWMutex
	bounties    map[uint64]entities.Bounty
	submissions map[uint64]entities.Submission
	outbox      map[string]outboxRecord
	nowOverride time.Time
}

func NewStore() *Store {
	return &Store{
		bounties:    make(map[uint64]entities.Bounty),
		submissions: make(map[uint64]entities.Submission),
		outbox:      make(map[string]outboxRecord),
	}
}

func (s *Store) SaveBounty(_ context.Context, bounty entities.Bounty) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bounties[bounty.BountyID] = bounty
	return nil
}

func (s *Store) GetBounty(_ context.Context, bountyID uint64) (entities.Bounty, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bounty, ok := s.bounties[bountyID]
	if !ok {
		return entities.Bounty{}, domainerrors.ErrBountyNotFound
	}
	return bounty, nil
}

func (s *Store) ListBounties(_ context.Context) ([]entities.Bounty, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Bounty, 0, len(s.bounties))
	for _, bounty := range s.bounties {
		items = append(items, bounty)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].BountyID < items[j].BountyID })
	return items, nil
}

func (s *Store) CountBounties(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.bounties)), nil
}

func (s *Store) SaveSubmission(_ context.Context, submission entities.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submissions[submission.SubmissionID] = submission
	return nil
}

func (s *Store) GetSubmission(_ context.Context, submissionID uint64) (entities.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	submission, ok := s.submissions[submissionID]
	if !ok {
		return entities.Submission{}, domainerrors.ErrSubmissionNotFound
	}
	return submission, nil
}

func (s *Store) ListSubmissionsByBounty(_ context.Context, bountyID uint64) ([]entities.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Submission, 0)
	for _, submission := range s.submissions {
		if submission.BountyID == bountyID {
			items = append(items, submission)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].SubmissionID < items[j].SubmissionID })
	return items, nil
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

// PendingOutboxCount is a test helper.
func (s *Store) PendingOutboxCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, record := range s.outbox {
		if !record.published {
			count++
		}
	}
	return count
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
