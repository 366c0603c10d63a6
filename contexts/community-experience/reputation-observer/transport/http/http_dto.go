package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ProfileDTO struct {
	Address          string `json:"address"`
	BountiesCreated  uint64 `json:"bounties_created"`
	SolutionsOffered uint64 `json:"solutions_offered"`
	BountiesWon      uint64 `json:"bounties_won"`
	FirstSeenAt      string `json:"first_seen_at"`
	LastActivityAt   string `json:"last_activity_at"`
}

type ProfileResponse struct {
	Status string     `json:"status"`
	Data   ProfileDTO `json:"data"`
}

type LeaderboardResponse struct {
	Status string       `json:"status"`
	Data   []ProfileDTO `json:"data"`
}
