package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"quinty/contexts/community-experience/reputation-observer/domain/entities"
	domainerrors "quinty/contexts/community-experience/reputation-observer/domain/errors"
)

// Store keeps milestone profiles in memory. It also serves as the module
// clock, overridable for tests.
type Store struct {
	mu          sync.RWMutex
	profiles    map[string]entities.Profile
	nowOverride time.Time
}

func NewStore() *Store {
	return &Store{profiles: make(map[string]entities.Profile)}
}

func (s *Store) SaveProfile(_ context.Context, profile entities.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.Address] = profile
	return nil
}

func (s *Store) GetProfile(_ context.Context, address string) (entities.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[address]
	if !ok {
		return entities.Profile{}, domainerrors.ErrProfileNotFound
	}
	return profile, nil
}

func (s *Store) ListProfiles(_ context.Context) ([]entities.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Profile, 0, len(s.profiles))
	for _, profile := range s.profiles {
		items = append(items, profile)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Address < items[j].Address })
	return items, nil
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
