package entities

import "time"

type DisputeKind string

const (
	// ExpiryVote disputes are opened by the bounty engine's slash path only.
	DisputeKindExpiryVote DisputeKind = "expiry_vote"
	// Pengadilan contests are creator-initiated appeals of a winner selection.
	DisputeKindPengadilan DisputeKind = "pengadilan"
)

const (
	// RankedChoices is the exact number of distinct submissions a vote ranks.
	RankedChoices = 3

	DefaultVotingWindow  = 3 * 24 * time.Hour
	DefaultContestWindow = 7 * 24 * time.Hour
)

type Vote struct {
	Voter     string
	Stake     uint64
	Ranked    [RankedChoices]uint64
	CreatedAt time.Time
}

type Dispute struct {
	DisputeID      uint64
	BountyID       uint64
	Kind           DisputeKind
	AmountAtStake  uint64
	VotingDeadline time.Time
	Resolved       bool
	WinningSubID   uint64
	Overturned     bool
	Votes          []Vote
	CreatedAt      time.Time
}

func (d Dispute) HasVoted(voter string) bool {
	for _, vote := range d.Votes {
		if vote.Voter == voter {
			return true
		}
	}
	return false
}

// TotalStake sums all escrowed vote stakes. The reward pool at resolution is
// AmountAtStake plus this figure.
func (d Dispute) TotalStake() uint64 {
	var total uint64
	for _, vote := range d.Votes {
		total += vote.Stake
	}
	return total
}
