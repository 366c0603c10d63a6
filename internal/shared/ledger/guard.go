package ledger

import "sync"

// Guard is the per-instance reentrancy guard. Custody-mutating operations
// Enter before touching state and Exit on return; a nested Enter during an
// external value transfer fails instead of re-entering, which combined with
// the effects-before-transfers ordering rules out reentrancy double-spend.
type Guard struct {
	mu      sync.Mutex
	entered bool
}

func NewGuard() *Guard {
	return &Guard{}
}

func (g *Guard) Enter() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.entered {
		return ErrReentrantCall
	}
	g.entered = true
	return nil
}

func (g *Guard) Exit() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.entered = false
}
