package ledger

import (
	"errors"
	"fmt"
	"math"
	"sync"
)

var (
	ErrZeroAmount       = errors.New("amount must be positive")
	ErrUnknownPool      = errors.New("unknown custody pool")
	ErrInsufficientPool = errors.New("insufficient pool balance")
	ErrBalanceOverflow  = errors.New("balance overflow")
	ErrReentrantCall    = errors.New("reentrant call")
)

// Ledger is the shared fund-custody book. Native value enters custody via
// Escrow into a named pool, moves between pools via Move, and leaves custody
// via Payout, which credits an externally-controlled account. Amounts are
// native base units. Every disbursement is explicit; pools are never silently
// drained, so the sum of pool balances plus paid-out credits is conserved.
type Ledger struct {
	mu       sync.Mutex
	pools    map[string]uint64
	accounts map[string]uint64
	paidOut  uint64
}

func New() *Ledger {
	return &Ledger{
		pools:    make(map[string]uint64),
		accounts: make(map[string]uint64),
	}
}

// Escrow locks attached native value into a custody pool.
func (l *Ledger) Escrow(pool string, amount uint64) error {
	if amount == 0 {
		return ErrZeroAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pools[pool] > math.MaxUint64-amount {
		return ErrBalanceOverflow
	}
	l.pools[pool] += amount
	return nil
}

// Move shifts value between two custody pools without leaving custody.
func (l *Ledger) Move(from, to string, amount uint64) error {
	if amount == 0 {
		return ErrZeroAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	balance, ok := l.pools[from]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPool, from)
	}
	if balance < amount {
		return fmt.Errorf("%w: %s has %d, need %d", ErrInsufficientPool, from, balance, amount)
	}
	if l.pools[to] > math.MaxUint64-amount {
		return ErrBalanceOverflow
	}
	l.pools[from] = balance - amount
	l.pools[to] += amount
	return nil
}

// Payout releases value from a custody pool to an external account. This is
// the only way value leaves custody, and custody-mutating callers must order
// it after all state transitions.
func (l *Ledger) Payout(pool, to string, amount uint64) error {
	if amount == 0 {
		return ErrZeroAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	balance, ok := l.pools[pool]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPool, pool)
	}
	if balance < amount {
		return fmt.Errorf("%w: %s has %d, need %d", ErrInsufficientPool, pool, balance, amount)
	}
	if l.accounts[to] > math.MaxUint64-amount {
		return ErrBalanceOverflow
	}
	l.pools[pool] = balance - amount
	l.accounts[to] += amount
	l.paidOut += amount
	return nil
}

// PoolBalance reports the current balance held in a custody pool.
func (l *Ledger) PoolBalance(pool string) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pools[pool]
}

// AccountBalance reports the total value paid out to an external account.
func (l *Ledger) AccountBalance(address string) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.accounts[address]
}

// TotalInCustody sums every pool. Escrowed minus paid out must always equal
// this figure; tests assert the conservation property against it.
func (l *Ledger) TotalInCustody() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	var total uint64
	for _, balance := range l.pools {
		total += balance
	}
	return total
}

// TotalPaidOut reports cumulative value that has left custody.
func (l *Ledger) TotalPaidOut() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.paidOut
}
