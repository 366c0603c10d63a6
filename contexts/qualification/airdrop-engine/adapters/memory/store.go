package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"quinty/contexts/qualification/airdrop-engine/domain/entities"
	domainerrors "quinty/contexts/qualification/airdrop-engine/domain/errors"
	"quinty/contexts/qualification/airdrop-engine/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

// Store is the in-memory adapter backing the airdrop engine in tests and
// single-process deployments. It implements the repository, verifier-set,
// outbox, and clock ports; the clock is overridable so deadline arithmetic
// is testable.
type Store struct {
	mu          sync.RWMutex
	airdrops    map[uint64]entities.Airdrop
	entries     map[uint64]entities.Entry
	verifiers   map[string]struct{}
	outbox      map[string]outboxRecord
	nowOverride time.Time
}

func NewStore() *Store {
	return &Store{
		airdrops:  make(map[uint64]entities.Airdrop),
		entries:   make(map[uint64]entities.Entry),
		verifiers: make(map[string]struct{}),
		outbox:    make(map[string]outboxRecord),
	}
}

func (s *Store) SaveAirdrop(_ context.Context, airdrop entities.Airdrop) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.airdrops[airdrop.AirdropID] = airdrop
	return nil
}

func (s *Store) GetAirdrop(_ context.Context, airdropID uint64) (entities.Airdrop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	airdrop, ok := s.airdrops[airdropID]
	if !ok {
		return entities.Airdrop{}, domainerrors.ErrAirdropNotFound
	}
	return airdrop, nil
}

func (s *Store) ListAirdrops(_ context.Context) ([]entities.Airdrop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Airdrop, 0, len(s.airdrops))
	for _, airdrop := range s.airdrops {
		items = append(items, airdrop)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].AirdropID < items[j].AirdropID })
	return items, nil
}

func (s *Store) CountAirdrops(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.airdrops)), nil
}

func (s *Store) SaveEntry(_ context.Context, entry entities.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.EntryID] = entry
	return nil
}

func (s *Store) GetEntry(_ context.Context, entryID uint64) (entities.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[entryID]
	if !ok {
		return entities.Entry{}, domainerrors.ErrEntryNotFound
	}
	return entry, nil
}

func (s *Store) GetEntryBySolver(_ context.Context, airdropID uint64, solver string) (entities.Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, entry := range s.entries {
		if entry.AirdropID == airdropID && entry.Solver == solver {
			return entry, true, nil
		}
	}
	return entities.Entry{}, false, nil
}

func (s *Store) ListEntriesByAirdrop(_ context.Context, airdropID uint64) ([]entities.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Entry, 0)
	for _, entry := range s.entries {
		if entry.AirdropID == airdropID {
			items = append(items, entry)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].EntryID < items[j].EntryID })
	return items, nil
}

func (s *Store) AddVerifier(_ context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verifiers[address] = struct{}{}
	return nil
}

func (s *Store) RemoveVerifier(_ context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.verifiers, address)
	return nil
}

func (s *Store) IsVerifier(_ context.Context, address string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.verifiers[address]
	return ok, nil
}

func (s *Store) ListVerifiers(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]string, 0, len(s.verifiers))
	for address := range s.verifiers {
		items = append(items, address)
	}
	sort.Strings(items)
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
