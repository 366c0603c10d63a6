package application

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"quinty/contexts/escrow-core/dispute-engine/domain/entities"
	domainerrors "quinty/contexts/escrow-core/dispute-engine/domain/errors"
	"quinty/contexts/escrow-core/dispute-engine/ports"
	"quinty/internal/shared/ledger"
)

const entityDispute = "dispute"

// Payout splits in whole percent of the dispute pool (amount-at-stake plus
// all vote stakes). Residual percent goes to the dispute treasury.
const (
	expirySolverPct     = 10
	expiryVoterPct      = 5
	contestCreatorPct   = 80
	contestVoterPct     = 10
	contestOldWinnerPct = 10
	upheldVoterPct      = 10
	upheldOldWinnerPct  = 90
)

// Service resolves disputes by stake-weighted ranked voting. Expiry votes are
// opened only through the bounty engine's slash path; pengadilan contests are
// opened by bounty creators within the contest window.
type Service struct {
	Repo         ports.DisputeRepository
	Funds        ports.Funds
	Outbox       ports.OutboxWriter
	Bounties     ports.BountyReader
	Clock        ports.Clock
	Sequence     ports.Sequence
	Guard        ports.ReentrancyGuard
	MinVoteStake uint64
	BordaWeights [entities.RankedChoices]uint64
	VotingWindow time.Duration
	// ContestWindow bounds InitiatePengadilan relative to bounty resolution.
	ContestWindow time.Duration
	Logger        *slog.Logger
}

// OpenExpiryVote takes custody of the slashed escrow share and opens the
// expiry dispute. It is reachable only through the bounty engine's
// DisputeOpener handle, never through transport.
func (s Service) OpenExpiryVote(ctx context.Context, bountyID uint64, poolAmount uint64) (uint64, error) {
	if err := s.Guard.Enter(); err != nil {
		return 0, err
	}
	defer s.Guard.Exit()

	if bountyID == 0 || poolAmount == 0 {
		return 0, domainerrors.ErrInvalidInput
	}
	snapshot, err := s.Bounties.BountySnapshot(ctx, bountyID)
	if err != nil {
		return 0, err
	}
	if !snapshot.Slashed {
		return 0, domainerrors.ErrBountyNotEligible
	}

	now := s.now()
	dispute := entities.Dispute{
		DisputeID:      s.Sequence.NextID(entityDispute),
		BountyID:       bountyID,
		Kind:           entities.DisputeKindExpiryVote,
		AmountAtStake:  poolAmount,
		VotingDeadline: now.Add(s.votingWindow()),
		CreatedAt:      now,
	}
	if err := s.Funds.Move(ledger.BountyEscrowPool(bountyID), ledger.DisputePool(dispute.DisputeID), poolAmount); err != nil {
		return 0, err
	}
	if err := s.Repo.SaveDispute(ctx, dispute); err != nil {
		return 0, err
	}
	if err := s.appendEvent(ctx, "dispute.opened", dispute, "bounty-engine", map[string]any{
		"kind":            dispute.Kind,
		"amount_at_stake": dispute.AmountAtStake,
		"voting_deadline": dispute.VotingDeadline,
	}); err != nil {
		return 0, err
	}

	ResolveLogger(s.Logger).Info("expiry dispute opened",
		"event", "dispute_expiry_opened",
		"module", "escrow-core/dispute-engine",
		"layer", "application",
		"dispute_id", dispute.DisputeID,
		"bounty_id", bountyID,
		"amount_at_stake", poolAmount,
	)
	return dispute.DisputeID, nil
}

type InitiatePengadilanCommand struct {
	BountyID uint64
	Caller   string
	Value    uint64
}

func (s Service) InitiatePengadilan(ctx context.Context, cmd InitiatePengadilanCommand) (entities.Dispute, error) {
	if err := s.Guard.Enter(); err != nil {
		return entities.Dispute{}, err
	}
	defer s.Guard.Exit()

	caller := strings.TrimSpace(cmd.Caller)
	if caller == "" || cmd.BountyID == 0 {
		return entities.Dispute{}, domainerrors.ErrInvalidInput
	}
	snapshot, err := s.Bounties.BountySnapshot(ctx, cmd.BountyID)
	if err != nil {
		return entities.Dispute{}, err
	}
	if !snapshot.Resolved || snapshot.Slashed {
		return entities.Dispute{}, domainerrors.ErrBountyNotEligible
	}
	if caller != snapshot.Creator {
		return entities.Dispute{}, domainerrors.ErrNotCreator
	}
	now := s.now()
	if now.After(snapshot.ResolvedAt.Add(s.contestWindow())) {
		return entities.Dispute{}, domainerrors.ErrContestWindowClosed
	}
	if cmd.Value != snapshot.Amount {
		return entities.Dispute{}, domainerrors.ErrWrongStakeAmount
	}
	existing, err := s.Repo.ListDisputesByBounty(ctx, cmd.BountyID)
	if err != nil {
		return entities.Dispute{}, err
	}
	for _, d := range existing {
		if d.Kind == entities.DisputeKindPengadilan {
			return entities.Dispute{}, domainerrors.ErrAlreadyContested
		}
	}

	dispute := entities.Dispute{
		DisputeID:      s.Sequence.NextID(entityDispute),
		BountyID:       cmd.BountyID,
		Kind:           entities.DisputeKindPengadilan,
		AmountAtStake:  cmd.Value,
		VotingDeadline: now.Add(s.votingWindow()),
		CreatedAt:      now,
	}
	if err := s.Funds.Escrow(ledger.DisputePool(dispute.DisputeID), cmd.Value); err != nil {
		return entities.Dispute{}, err
	}
	if err := s.Repo.SaveDispute(ctx, dispute); err != nil {
		return entities.Dispute{}, err
	}
	if err := s.appendEvent(ctx, "dispute.opened", dispute, caller, map[string]any{
		"kind":            dispute.Kind,
		"amount_at_stake": dispute.AmountAtStake,
		"voting_deadline": dispute.VotingDeadline,
	}); err != nil {
		return entities.Dispute{}, err
	}

	ResolveLogger(s.Logger).Info("pengadilan contest opened",
		"event", "dispute_pengadilan_opened",
		"module", "escrow-core/dispute-engine",
		"layer", "application",
		"dispute_id", dispute.DisputeID,
		"bounty_id", cmd.BountyID,
	)
	return dispute, nil
}

type VoteCommand struct {
	DisputeID uint64
	Voter     string
	Ranked    []uint64
	Value     uint64
}

func (s Service) Vote(ctx context.Context, cmd VoteCommand) (entities.Dispute, error) {
	if err := s.Guard.Enter(); err != nil {
		return entities.Dispute{}, err
	}
	defer s.Guard.Exit()

	voter := strings.TrimSpace(cmd.Voter)
	if voter == "" || cmd.DisputeID == 0 {
		return entities.Dispute{}, domainerrors.ErrInvalidInput
	}
	dispute, err := s.Repo.GetDispute(ctx, cmd.DisputeID)
	if err != nil {
		return entities.Dispute{}, err
	}
	if dispute.Resolved {
		return entities.Dispute{}, domainerrors.ErrAlreadyResolved
	}
	if !s.now().Before(dispute.VotingDeadline) {
		return entities.Dispute{}, domainerrors.ErrVotingClosed
	}
	if cmd.Value < s.minVoteStake() {
		return entities.Dispute{}, domainerrors.ErrStakeTooLow
	}
	snapshot, err := s.Bounties.BountySnapshot(ctx, dispute.BountyID)
	if err != nil {
		return entities.Dispute{}, err
	}
	ranked, err := validateRanking(cmd.Ranked, snapshot)
	if err != nil {
		return entities.Dispute{}, err
	}
	if dispute.HasVoted(voter) {
		return entities.Dispute{}, domainerrors.ErrAlreadyVoted
	}

	if err := s.Funds.Escrow(ledger.DisputePool(dispute.DisputeID), cmd.Value); err != nil {
		return entities.Dispute{}, err
	}
	dispute.Votes = append(dispute.Votes, entities.Vote{
		Voter:     voter,
		Stake:     cmd.Value,
		Ranked:    ranked,
		CreatedAt: s.now(),
	})
	if err := s.Repo.SaveDispute(ctx, dispute); err != nil {
		return entities.Dispute{}, err
	}
	if err := s.appendEvent(ctx, "dispute.vote_cast", dispute, voter, map[string]any{
		"stake":  cmd.Value,
		"ranked": ranked,
	}); err != nil {
		return entities.Dispute{}, err
	}
	return dispute, nil
}

type ResolveDisputeCommand struct {
	DisputeID uint64
	Caller    string
}

type Payout struct {
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
	Reason string `json:"reason"`
}

type Resolution struct {
	Dispute      entities.Dispute
	WinningSubID uint64
	Overturned   bool
	Payouts      []Payout
}

func (s Service) ResolveDispute(ctx context.Context, cmd ResolveDisputeCommand) (Resolution, error) {
	if err := s.Guard.Enter(); err != nil {
		return Resolution{}, err
	}
	defer s.Guard.Exit()

	dispute, err := s.Repo.GetDispute(ctx, cmd.DisputeID)
	if err != nil {
		return Resolution{}, err
	}
	if dispute.Resolved {
		return Resolution{}, domainerrors.ErrAlreadyResolved
	}
	if s.now().Before(dispute.VotingDeadline) {
		return Resolution{}, domainerrors.ErrVotingStillOpen
	}
	if len(dispute.Votes) == 0 {
		return Resolution{}, domainerrors.ErrNoVotes
	}
	snapshot, err := s.Bounties.BountySnapshot(ctx, dispute.BountyID)
	if err != nil {
		return Resolution{}, err
	}

	winner := tallyWinner(dispute.Votes, s.bordaWeights())
	payouts := s.buildPayouts(dispute, snapshot, winner)

	dispute.Resolved = true
	dispute.WinningSubID = winner
	dispute.Overturned = dispute.Kind == entities.DisputeKindPengadilan && isOverturn(snapshot, winner)
	if err := s.Repo.SaveDispute(ctx, dispute); err != nil {
		return Resolution{}, err
	}
	if err := s.appendEvent(ctx, "dispute.resolved", dispute, strings.TrimSpace(cmd.Caller), map[string]any{
		"winning_submission_id": winner,
		"overturned":            dispute.Overturned,
		"payouts":               payouts,
	}); err != nil {
		return Resolution{}, err
	}

	// State is final; settle the pool last. Whatever the percentage splits
	// leave behind is swept to the treasury so the pool zeroes out.
	pool := ledger.DisputePool(dispute.DisputeID)
	for _, payout := range payouts {
		if err := s.Funds.Payout(pool, payout.To, payout.Amount); err != nil {
			return Resolution{}, err
		}
	}
	if residual := s.Funds.PoolBalance(pool); residual > 0 {
		if err := s.Funds.Move(pool, ledger.DisputeTreasuryPool, residual); err != nil {
			return Resolution{}, err
		}
	}

	ResolveLogger(s.Logger).Info("dispute resolved",
		"event", "dispute_resolved",
		"module", "escrow-core/dispute-engine",
		"layer", "application",
		"dispute_id", dispute.DisputeID,
		"kind", string(dispute.Kind),
		"winning_submission_id", winner,
		"overturned", dispute.Overturned,
	)
	return Resolution{
		Dispute:      dispute,
		WinningSubID: winner,
		Overturned:   dispute.Overturned,
		Payouts:      payouts,
	}, nil
}

// buildPayouts applies the documented percentage splits to the full pool
// (amount-at-stake plus vote stakes). Voter stakes are not returned
// separately; they fund the pool the correct voters share in.
func (s Service) buildPayouts(dispute entities.Dispute, snapshot ports.BountySnapshot, winner uint64) []Payout {
	pool := dispute.AmountAtStake + dispute.TotalStake()
	payouts := make([]Payout, 0, 4)

	addVoterRewards := func(pct uint64) {
		stakes, total := correctVoterStakes(dispute.Votes, winner)
		if total == 0 {
			return
		}
		reward := mulDiv(pool, pct, 100)
		voters := make([]string, 0, len(stakes))
		for voter := range stakes {
			voters = append(voters, voter)
		}
		sort.Strings(voters)
		for _, voter := range voters {
			amount := mulDiv(reward, stakes[voter], total)
			if amount > 0 {
				payouts = append(payouts, Payout{To: voter, Amount: amount, Reason: "correct_vote"})
			}
		}
	}

	switch dispute.Kind {
	case entities.DisputeKindExpiryVote:
		if solver, ok := snapshot.SolverOf(winner); ok {
			if amount := mulDiv(pool, expirySolverPct, 100); amount > 0 {
				payouts = append(payouts, Payout{To: solver, Amount: amount, Reason: "top_submission"})
			}
		}
		addVoterRewards(expiryVoterPct)
	case entities.DisputeKindPengadilan:
		originalWinner := ""
		if len(snapshot.Winners) > 0 {
			originalWinner = snapshot.Winners[0]
		}
		if isOverturn(snapshot, winner) {
			if amount := mulDiv(pool, contestCreatorPct, 100); amount > 0 {
				payouts = append(payouts, Payout{To: snapshot.Creator, Amount: amount, Reason: "contest_refund"})
			}
			addVoterRewards(contestVoterPct)
			if originalWinner != "" {
				if amount := mulDiv(pool, contestOldWinnerPct, 100); amount > 0 {
					payouts = append(payouts, Payout{To: originalWinner, Amount: amount, Reason: "overturned_compensation"})
				}
			}
		} else {
			addVoterRewards(upheldVoterPct)
			if originalWinner != "" {
				if amount := mulDiv(pool, upheldOldWinnerPct, 100); amount > 0 {
					payouts = append(payouts, Payout{To: originalWinner, Amount: amount, Reason: "upheld_award"})
				}
			}
		}
	}
	return payouts
}

// isOverturn compares the tally winner with the originally selected first
// submission.
func isOverturn(snapshot ports.BountySnapshot, winner uint64) bool {
	if len(snapshot.WinningSubIDs) == 0 {
		return true
	}
	return snapshot.WinningSubIDs[0] != winner
}

func validateRanking(ranked []uint64, snapshot ports.BountySnapshot) ([entities.RankedChoices]uint64, error) {
	var out [entities.RankedChoices]uint64
	if len(ranked) != entities.RankedChoices {
		return out, domainerrors.ErrInvalidRanking
	}
	seen := make(map[uint64]bool, entities.RankedChoices)
	for i, submissionID := range ranked {
		if seen[submissionID] {
			return out, domainerrors.ErrInvalidRanking
		}
		seen[submissionID] = true
		if _, ok := snapshot.SolverOf(submissionID); !ok {
			return out, domainerrors.ErrInvalidRanking
		}
		out[i] = submissionID
	}
	return out, nil
}

func (s Service) GetDispute(ctx context.Context, disputeID uint64) (entities.Dispute, error) {
	return s.Repo.GetDispute(ctx, disputeID)
}

func (s Service) ListDisputes(ctx context.Context) ([]entities.Dispute, error) {
	return s.Repo.ListDisputes(ctx)
}

func (s Service) CountDisputes(ctx context.Context) (uint64, error) {
	return s.Repo.CountDisputes(ctx)
}

// TreasuryBalance reports residual dispute value retained after resolutions.
func (s Service) TreasuryBalance() uint64 {
	return s.Funds.PoolBalance(ledger.DisputeTreasuryPool)
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func (s Service) votingWindow() time.Duration {
	if s.VotingWindow <= 0 {
		return entities.DefaultVotingWindow
	}
	return s.VotingWindow
}

func (s Service) contestWindow() time.Duration {
	if s.ContestWindow <= 0 {
		return entities.DefaultContestWindow
	}
	return s.ContestWindow
}

func (s Service) minVoteStake() uint64 {
	if s.MinVoteStake == 0 {
		return 1
	}
	return s.MinVoteStake
}

func (s Service) bordaWeights() [entities.RankedChoices]uint64 {
	if s.BordaWeights == ([entities.RankedChoices]uint64{}) {
		return DefaultBordaWeights
	}
	return s.BordaWeights
}
