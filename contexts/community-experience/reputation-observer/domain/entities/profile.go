package entities

import "time"

// Profile is the per-address milestone tally. It is derived bookkeeping:
// nothing in the escrow engines reads it back.
type Profile struct {
	Address          string
	BountiesCreated  uint64
	SolutionsOffered uint64
	BountiesWon      uint64
	FirstSeenAt      time.Time
	LastActivityAt   time.Time
}
