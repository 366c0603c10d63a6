package entities

import "time"

// MaxQualifierBound is the sane upper bound on campaign capacity.
const MaxQualifierBound = 10000

type Airdrop struct {
	AirdropID       uint64
	Creator         string
	Title           string
	DescriptionRef  string
	PerQualifier    uint64
	MaxQualifiers   uint64
	Deadline        time.Time
	CreatedAt       time.Time
	ApprovedCount   uint64
	Resolved        bool
	Cancelled       bool
	RequirementsRef string
}

// EscrowTotal is the fixed custody amount locked at creation.
func (a Airdrop) EscrowTotal() uint64 {
	return a.PerQualifier * a.MaxQualifiers
}

// Active reports whether the campaign still accepts entries.
func (a Airdrop) Active(now time.Time) bool {
	return !a.Resolved && !a.Cancelled && !now.After(a.Deadline)
}

// AtCapacity reports whether approvals have filled every slot.
func (a Airdrop) AtCapacity() bool {
	return a.ApprovedCount >= a.MaxQualifiers
}

type EntryStatus string

const (
	EntryStatusPending  EntryStatus = "pending"
	EntryStatusApproved EntryStatus = "approved"
	EntryStatusRejected EntryStatus = "rejected"
)

type Entry struct {
	EntryID   uint64
	AirdropID uint64
	Solver    string
	ProofRef  string
	CreatedAt time.Time
	Status    EntryStatus
	Feedback  string
}

type Stats struct {
	Total          int
	Pending        int
	Approved       int
	Rejected       int
	RemainingSlots uint64
}
