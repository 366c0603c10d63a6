package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type InitiatePengadilanRequest struct {
	BountyID uint64 `json:"bounty_id"`
	Value    uint64 `json:"value"`
}

type VoteRequest struct {
	Ranked []uint64 `json:"ranked_submission_ids"`
	Value  uint64   `json:"value"`
}

type VoteDTO struct {
	Voter     string   `json:"voter"`
	Stake     uint64   `json:"stake"`
	Ranked    []uint64 `json:"ranked_submission_ids"`
	CreatedAt string   `json:"created_at"`
}

type DisputeDTO struct {
	DisputeID      uint64    `json:"dispute_id"`
	BountyID       uint64    `json:"bounty_id"`
	Kind           string    `json:"kind"`
	AmountAtStake  uint64    `json:"amount_at_stake"`
	VotingDeadline string    `json:"voting_deadline"`
	Resolved       bool      `json:"resolved"`
	WinningSubID   uint64    `json:"winning_submission_id,omitempty"`
	Overturned     bool      `json:"overturned,omitempty"`
	Votes          []VoteDTO `json:"votes,omitempty"`
	CreatedAt      string    `json:"created_at"`
}

type DisputeResponse struct {
	Status string     `json:"status"`
	Data   DisputeDTO `json:"data"`
}

type DisputeListResponse struct {
	Status string       `json:"status"`
	Data   []DisputeDTO `json:"data"`
}

type PayoutDTO struct {
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
	Reason string `json:"reason"`
}

type ResolutionResponse struct {
	Status string `json:"status"`
	Data   struct {
		DisputeID    uint64      `json:"dispute_id"`
		WinningSubID uint64      `json:"winning_submission_id"`
		Overturned   bool        `json:"overturned"`
		Payouts      []PayoutDTO `json:"payouts"`
	} `json:"data"`
}

type TreasuryResponse struct {
	Status string `json:"status"`
	Data   struct {
		Balance uint64 `json:"balance"`
	} `json:"data"`
}
