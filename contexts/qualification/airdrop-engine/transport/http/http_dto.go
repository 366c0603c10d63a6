package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateAirdropRequest struct {
	Title           string `json:"title"`
	DescriptionRef  string `json:"description_ref,omitempty"`
	PerQualifier    uint64 `json:"per_qualifier"`
	MaxQualifiers   uint64 `json:"max_qualifiers"`
	Deadline        string `json:"deadline"`
	RequirementsRef string `json:"requirements_ref,omitempty"`
	Value           uint64 `json:"value"`
}

type AirdropDTO struct {
	AirdropID       uint64 `json:"airdrop_id"`
	Creator         string `json:"creator"`
	Title           string `json:"title"`
	DescriptionRef  string `json:"description_ref,omitempty"`
	PerQualifier    uint64 `json:"per_qualifier"`
	MaxQualifiers   uint64 `json:"max_qualifiers"`
	EscrowTotal     uint64 `json:"escrow_total"`
	Deadline        string `json:"deadline"`
	ApprovedCount   uint64 `json:"approved_count"`
	Resolved        bool   `json:"resolved"`
	Cancelled       bool   `json:"cancelled"`
	RequirementsRef string `json:"requirements_ref,omitempty"`
	CreatedAt       string `json:"created_at"`
}

type AirdropResponse struct {
	Status string     `json:"status"`
	Data   AirdropDTO `json:"data"`
}

type AirdropListResponse struct {
	Status string       `json:"status"`
	Data   []AirdropDTO `json:"data"`
}

type SubmitEntryRequest struct {
	ProofRef string `json:"proof_ref"`
}

type EntryDTO struct {
	EntryID   uint64 `json:"entry_id"`
	AirdropID uint64 `json:"airdrop_id"`
	Solver    string `json:"solver"`
	ProofRef  string `json:"proof_ref"`
	Status    string `json:"status"`
	Feedback  string `json:"feedback,omitempty"`
	CreatedAt string `json:"created_at"`
}

type EntryResponse struct {
	Status string   `json:"status"`
	Data   EntryDTO `json:"data"`
}

type EntryListResponse struct {
	Status string     `json:"status"`
	Data   []EntryDTO `json:"data"`
}

type VerifyEntryRequest struct {
	EntryID  uint64 `json:"entry_id"`
	Status   string `json:"status"`
	Feedback string `json:"feedback,omitempty"`
}

type VerifyEntriesRequest struct {
	Decisions []VerifyEntryRequest `json:"decisions"`
}

type VerifierRequest struct {
	Address string `json:"address"`
}

type VerifierListResponse struct {
	Status string   `json:"status"`
	Data   []string `json:"data"`
}

type StatsDTO struct {
	Total          int    `json:"total"`
	Pending        int    `json:"pending"`
	Approved       int    `json:"approved"`
	Rejected       int    `json:"rejected"`
	RemainingSlots uint64 `json:"remaining_slots"`
}

type StatsResponse struct {
	Status string   `json:"status"`
	Data   StatsDTO `json:"data"`
}

type AckResponse struct {
	Status string `json:"status"`
}
