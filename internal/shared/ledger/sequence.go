package ledger

import "sync"

// Sequence allocates monotonic per-entity-type identifiers. Ids start at 1
// and are never reused; entities are never deleted, so the arena index is the
// permanent history key.
type Sequence struct {
	mu   sync.Mutex
	next map[string]uint64
}

func NewSequence() *Sequence {
	return &Sequence{next: make(map[string]uint64)}
}

func (s *Sequence) NextID(entity string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next[entity]++
	return s.next[entity]
}

// Current reports the highest id allocated for an entity type, 0 if none.
func (s *Sequence) Current(entity string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next[entity]
}
