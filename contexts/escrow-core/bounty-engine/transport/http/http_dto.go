package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateBountyRequest struct {
	ContentRef     string   `json:"content_ref"`
	Deadline       string   `json:"deadline"`
	MultiWinner    bool     `json:"multi_winner"`
	WinnerSharesBP []uint64 `json:"winner_shares_bp,omitempty"`
	SlashBP        uint64   `json:"slash_bp"`
	Value          uint64   `json:"value"`
}

type BountyDTO struct {
	BountyID       uint64   `json:"bounty_id"`
	Creator        string   `json:"creator"`
	ContentRef     string   `json:"content_ref"`
	Amount         uint64   `json:"amount"`
	Deadline       string   `json:"deadline"`
	MultiWinner    bool     `json:"multi_winner"`
	WinnerSharesBP []uint64 `json:"winner_shares_bp,omitempty"`
	SlashBP        uint64   `json:"slash_bp"`
	Status         string   `json:"status"`
	Winners        []string `json:"winners,omitempty"`
	SubmissionIDs  []uint64 `json:"winning_submission_ids,omitempty"`
	CreatedAt      string   `json:"created_at"`
	ResolvedAt     string   `json:"resolved_at,omitempty"`
}

type BountyResponse struct {
	Status string    `json:"status"`
	Data   BountyDTO `json:"data"`
}

type BountyListResponse struct {
	Status string      `json:"status"`
	Data   []BountyDTO `json:"data"`
}

type SubmitSolutionRequest struct {
	BlindedRef string `json:"blinded_ref"`
	Value      uint64 `json:"value"`
}

type ReplyDTO struct {
	Replier   string `json:"replier"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

type SubmissionDTO struct {
	SubmissionID uint64     `json:"submission_id"`
	BountyID     uint64     `json:"bounty_id"`
	Solver       string     `json:"solver"`
	BlindedRef   string     `json:"blinded_ref"`
	Deposit      uint64     `json:"deposit"`
	RevealRef    string     `json:"reveal_ref,omitempty"`
	Revealed     bool       `json:"revealed"`
	Replies      []ReplyDTO `json:"replies,omitempty"`
	CreatedAt    string     `json:"created_at"`
}

type SubmissionResponse struct {
	Status string        `json:"status"`
	Data   SubmissionDTO `json:"data"`
}

type SubmissionListResponse struct {
	Status string          `json:"status"`
	Data   []SubmissionDTO `json:"data"`
}

type AddReplyRequest struct {
	SubmissionID uint64 `json:"submission_id"`
	Content      string `json:"content"`
}

type SelectWinnersRequest struct {
	Winners       []string `json:"winners"`
	SubmissionIDs []uint64 `json:"submission_ids"`
}

type RevealSolutionRequest struct {
	SubmissionID uint64 `json:"submission_id"`
	RevealRef    string `json:"reveal_ref"`
}

type SlashResponse struct {
	Status string `json:"status"`
	Data   struct {
		BountyID    uint64 `json:"bounty_id"`
		DisputeID   uint64 `json:"dispute_id"`
		SlashAmount uint64 `json:"slash_amount"`
	} `json:"data"`
}
