package entities

import (
	"math"
	"time"
)

type BountyStatus string

const (
	BountyStatusOpen     BountyStatus = "open"
	BountyStatusResolved BountyStatus = "resolved"
	BountyStatusSlashed  BountyStatus = "slashed"
	BountyStatusExpired  BountyStatus = "expired"
)

const (
	// Slash percent bounds in basis points.
	MinSlashBP uint64 = 2500
	MaxSlashBP uint64 = 5000

	// Winner shares must sum to the full escrow.
	FullShareBP uint64 = 10000

	// MaxBountyAmount caps the escrow so basis-point arithmetic
	// (amount*shareBP, amount*slashBP) never wraps uint64.
	MaxBountyAmount uint64 = math.MaxUint64 / FullShareBP
)

type Bounty struct {
	BountyID       uint64
	Creator        string
	ContentRef     string
	Amount         uint64
	Deadline       time.Time
	MultiWinner    bool
	WinnerSharesBP []uint64
	SlashBP        uint64
	Status         BountyStatus
	Winners        []string
	WinningSubIDs  []uint64
	CreatedAt      time.Time
	ResolvedAt     time.Time
}

// DepositAmount is the exact native value a submission must attach.
func (b Bounty) DepositAmount() uint64 {
	return b.Amount / 10
}

// SlashAmount is the escrow share forfeited to dispute resolution on expiry,
// truncated integer arithmetic.
func (b Bounty) SlashAmount() uint64 {
	return b.Amount * b.SlashBP / 10000
}

// EffectiveStatus derives the read-model status: an Open bounty past its
// deadline reads as Expired even though storage keeps Open until someone
// triggers the slash.
func (b Bounty) EffectiveStatus(now time.Time) BountyStatus {
	if b.Status == BountyStatusOpen && now.After(b.Deadline) {
		return BountyStatusExpired
	}
	return b.Status
}

type Reply struct {
	Replier   string
	Content   string
	CreatedAt time.Time
}

type Submission struct {
	SubmissionID uint64
	BountyID     uint64
	Solver       string
	BlindedRef   string
	Deposit      uint64
	RevealRef    string
	Revealed     bool
	Replies      []Reply
	CreatedAt    time.Time
}
