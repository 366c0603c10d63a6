package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"quinty/contexts/escrow-core/bounty-engine/domain/entities"
	domainerrors "quinty/contexts/escrow-core/bounty-engine/domain/errors"
	"quinty/contexts/escrow-core/bounty-engine/ports"
	"quinty/internal/shared/ledger"
)

const entityBounty = "bounty"

// Service orchestrates the bounty lifecycle: escrowed creation, blinded
// submissions, winner selection, post-resolution reveal, and expiry slashing.
// Every mutating method applies state transitions and outbox events first and
// external value transfers last, under the engine's reentrancy guard.
type Service struct {
	Repo     ports.BountyRepository
	Funds    ports.Funds
	Outbox   ports.OutboxWriter
	Disputes ports.DisputeOpener
	Observer ports.ReputationNotifier
	Clock    ports.Clock
	Sequence ports.Sequence
	Guard    ports.ReentrancyGuard
	Logger   *slog.Logger
}

type CreateBountyCommand struct {
	Creator        string
	ContentRef     string
	Deadline       time.Time
	MultiWinner    bool
	WinnerSharesBP []uint64
	SlashBP        uint64
	Value          uint64
}

func (s Service) CreateBounty(ctx context.Context, cmd CreateBountyCommand) (entities.Bounty, error) {
	if err := s.Guard.Enter(); err != nil {
		return entities.Bounty{}, err
	}
	defer s.Guard.Exit()

	creator := strings.TrimSpace(cmd.Creator)
	ref := strings.TrimSpace(cmd.ContentRef)
	if creator == "" || ref == "" {
		return entities.Bounty{}, domainerrors.ErrInvalidInput
	}
	// Amount below 10 would floor the submission deposit to zero.
	if cmd.Value < 10 {
		return entities.Bounty{}, domainerrors.ErrZeroEscrow
	}
	// Keep amount*basis-point products inside uint64.
	if cmd.Value > entities.MaxBountyAmount {
		return entities.Bounty{}, domainerrors.ErrAmountTooLarge
	}
	now := s.now()
	if !cmd.Deadline.After(now) {
		return entities.Bounty{}, domainerrors.ErrDeadlineNotFuture
	}
	if cmd.SlashBP < entities.MinSlashBP || cmd.SlashBP > entities.MaxSlashBP {
		return entities.Bounty{}, domainerrors.ErrSlashPercentOutOfBand
	}
	if cmd.MultiWinner {
		var total uint64
		for _, share := range cmd.WinnerSharesBP {
			if share == 0 {
				return entities.Bounty{}, domainerrors.ErrSharesDoNotSum
			}
			total += share
		}
		if len(cmd.WinnerSharesBP) < 2 || total != entities.FullShareBP {
			return entities.Bounty{}, domainerrors.ErrSharesDoNotSum
		}
	} else if len(cmd.WinnerSharesBP) != 0 {
		return entities.Bounty{}, domainerrors.ErrInvalidInput
	}

	bounty := entities.Bounty{
		BountyID:       s.Sequence.NextID(entityBounty),
		Creator:        creator,
		ContentRef:     ref,
		Amount:         cmd.Value,
		Deadline:       cmd.Deadline.UTC(),
		MultiWinner:    cmd.MultiWinner,
		WinnerSharesBP: append([]uint64(nil), cmd.WinnerSharesBP...),
		SlashBP:        cmd.SlashBP,
		Status:         entities.BountyStatusOpen,
		CreatedAt:      now,
	}
	if err := s.Funds.Escrow(ledger.BountyEscrowPool(bounty.BountyID), cmd.Value); err != nil {
		return entities.Bounty{}, err
	}
	if err := s.Repo.SaveBounty(ctx, bounty); err != nil {
		return entities.Bounty{}, err
	}
	if err := s.appendEvent(ctx, "bounty.created", bounty.BountyID, creator, map[string]any{
		"amount":       bounty.Amount,
		"deadline":     bounty.Deadline,
		"multi_winner": bounty.MultiWinner,
		"slash_bp":     bounty.SlashBP,
		"content_ref":  bounty.ContentRef,
	}); err != nil {
		return entities.Bounty{}, err
	}
	s.notifyObserver("bounty_created", func() error {
		return s.Observer.BountyCreated(ctx, creator, bounty.BountyID)
	})

	ResolveLogger(s.Logger).Info("bounty created",
		"event", "bounty_created",
		"module", "escrow-core/bounty-engine",
		"layer", "application",
		"bounty_id", bounty.BountyID,
		"creator", creator,
		"amount", bounty.Amount,
	)
	return bounty, nil
}

type SubmitSolutionCommand struct {
	BountyID   uint64
	Solver     string
	BlindedRef string
	Value      uint64
}

func (s Service) SubmitSolution(ctx context.Context, cmd SubmitSolutionCommand) (entities.Submission, error) {
	if err := s.Guard.Enter(); err != nil {
		return entities.Submission{}, err
	}
	defer s.Guard.Exit()

	solver := strings.TrimSpace(cmd.Solver)
	ref := strings.TrimSpace(cmd.BlindedRef)
	if solver == "" || ref == "" || cmd.BountyID == 0 {
		return entities.Submission{}, domainerrors.ErrInvalidInput
	}
	bounty, err := s.Repo.GetBounty(ctx, cmd.BountyID)
	if err != nil {
		return entities.Submission{}, err
	}
	now := s.now()
	if bounty.Status != entities.BountyStatusOpen {
		return entities.Submission{}, domainerrors.ErrBountyNotOpen
	}
	if now.After(bounty.Deadline) {
		return entities.Submission{}, domainerrors.ErrDeadlinePassed
	}
	if cmd.Value != bounty.DepositAmount() {
		return entities.Submission{}, domainerrors.ErrWrongDeposit
	}

	submission := entities.Submission{
		SubmissionID: s.Sequence.NextID("submission"),
		BountyID:     bounty.BountyID,
		Solver:       solver,
		BlindedRef:   ref,
		Deposit:      cmd.Value,
		CreatedAt:    now,
	}
	if err := s.Funds.Escrow(ledger.SubmissionDepositPool(bounty.BountyID, submission.SubmissionID), cmd.Value); err != nil {
		return entities.Submission{}, err
	}
	if err := s.Repo.SaveSubmission(ctx, submission); err != nil {
		return entities.Submission{}, err
	}
	if err := s.appendEvent(ctx, "bounty.submission_received", bounty.BountyID, solver, map[string]any{
		"submission_id": submission.SubmissionID,
		"deposit":       submission.Deposit,
		"blinded_ref":   submission.BlindedRef,
	}); err != nil {
		return entities.Submission{}, err
	}
	s.notifyObserver("solution_submitted", func() error {
		return s.Observer.SolutionSubmitted(ctx, solver, bounty.BountyID, submission.SubmissionID)
	})
	return submission, nil
}

type AddReplyCommand struct {
	BountyID     uint64
	SubmissionID uint64
	Caller       string
	Content      string
}

func (s Service) AddReply(ctx context.Context, cmd AddReplyCommand) (entities.Submission, error) {
	caller := strings.TrimSpace(cmd.Caller)
	content := strings.TrimSpace(cmd.Content)
	if caller == "" || content == "" {
		return entities.Submission{}, domainerrors.ErrInvalidInput
	}
	bounty, err := s.Repo.GetBounty(ctx, cmd.BountyID)
	if err != nil {
		return entities.Submission{}, err
	}
	if bounty.Status != entities.BountyStatusOpen {
		return entities.Submission{}, domainerrors.ErrBountyNotOpen
	}
	submission, err := s.Repo.GetSubmission(ctx, cmd.SubmissionID)
	if err != nil {
		return entities.Submission{}, err
	}
	if submission.BountyID != bounty.BountyID {
		return entities.Submission{}, domainerrors.ErrSubmissionNotFound
	}
	if caller != submission.Solver && caller != bounty.Creator {
		return entities.Submission{}, domainerrors.ErrNotParticipant
	}

	submission.Replies = append(submission.Replies, entities.Reply{
		Replier:   caller,
		Content:   content,
		CreatedAt: s.now(),
	})
	if err := s.Repo.SaveSubmission(ctx, submission); err != nil {
		return entities.Submission{}, err
	}
	if err := s.appendEvent(ctx, "bounty.reply_added", bounty.BountyID, caller, map[string]any{
		"submission_id": submission.SubmissionID,
		"reply_index":   len(submission.Replies) - 1,
	}); err != nil {
		return entities.Submission{}, err
	}
	return submission, nil
}

type SelectWinnersCommand struct {
	BountyID      uint64
	Caller        string
	Winners       []string
	SubmissionIDs []uint64
}

func (s Service) SelectWinners(ctx context.Context, cmd SelectWinnersCommand) (entities.Bounty, error) {
	if err := s.Guard.Enter(); err != nil {
		return entities.Bounty{}, err
	}
	defer s.Guard.Exit()

	caller := strings.TrimSpace(cmd.Caller)
	bounty, err := s.Repo.GetBounty(ctx, cmd.BountyID)
	if err != nil {
		return entities.Bounty{}, err
	}
	if caller != bounty.Creator {
		return entities.Bounty{}, domainerrors.ErrNotCreator
	}
	if bounty.Status != entities.BountyStatusOpen {
		return entities.Bounty{}, domainerrors.ErrBountyResolved
	}
	now := s.now()
	if now.After(bounty.Deadline) {
		return entities.Bounty{}, domainerrors.ErrDeadlinePassed
	}
	if len(cmd.Winners) == 0 || len(cmd.Winners) != len(cmd.SubmissionIDs) {
		return entities.Bounty{}, domainerrors.ErrInvalidInput
	}
	if bounty.MultiWinner {
		if len(cmd.Winners) != len(bounty.WinnerSharesBP) {
			return entities.Bounty{}, domainerrors.ErrInvalidInput
		}
	} else if len(cmd.Winners) != 1 {
		return entities.Bounty{}, domainerrors.ErrInvalidInput
	}

	seen := make(map[uint64]bool, len(cmd.SubmissionIDs))
	winning := make([]entities.Submission, 0, len(cmd.SubmissionIDs))
	for i, submissionID := range cmd.SubmissionIDs {
		if seen[submissionID] {
			return entities.Bounty{}, domainerrors.ErrInvalidInput
		}
		seen[submissionID] = true
		submission, err := s.Repo.GetSubmission(ctx, submissionID)
		if err != nil {
			return entities.Bounty{}, err
		}
		if submission.BountyID != bounty.BountyID {
			return entities.Bounty{}, domainerrors.ErrSubmissionNotFound
		}
		if strings.TrimSpace(cmd.Winners[i]) != submission.Solver {
			return entities.Bounty{}, domainerrors.ErrWinnerMismatch
		}
		winning = append(winning, submission)
	}

	payouts := winnerPayouts(bounty, cmd.Winners)

	bounty.Status = entities.BountyStatusResolved
	bounty.Winners = append([]string(nil), cmd.Winners...)
	bounty.WinningSubIDs = append([]uint64(nil), cmd.SubmissionIDs...)
	bounty.ResolvedAt = now
	if err := s.Repo.SaveBounty(ctx, bounty); err != nil {
		return entities.Bounty{}, err
	}
	if err := s.appendEvent(ctx, "bounty.winners_selected", bounty.BountyID, caller, map[string]any{
		"winners":        bounty.Winners,
		"submission_ids": bounty.WinningSubIDs,
		"payouts":        payouts,
	}); err != nil {
		return entities.Bounty{}, err
	}

	// Effects are committed; transfers happen last.
	escrowPool := ledger.BountyEscrowPool(bounty.BountyID)
	for i, winner := range bounty.Winners {
		if err := s.Funds.Payout(escrowPool, winner, payouts[i]); err != nil {
			return entities.Bounty{}, err
		}
		depositPool := ledger.SubmissionDepositPool(bounty.BountyID, winning[i].SubmissionID)
		if err := s.Funds.Payout(depositPool, winner, winning[i].Deposit); err != nil {
			return entities.Bounty{}, err
		}
	}
	if err := s.refundUnselectedDeposits(ctx, bounty, seen); err != nil {
		return entities.Bounty{}, err
	}
	for _, winner := range bounty.Winners {
		winner := winner
		s.notifyObserver("winner_selected", func() error {
			return s.Observer.WinnerSelected(ctx, winner, bounty.BountyID)
		})
	}

	ResolveLogger(s.Logger).Info("bounty winners selected",
		"event", "bounty_winners_selected",
		"module", "escrow-core/bounty-engine",
		"layer", "application",
		"bounty_id", bounty.BountyID,
		"winners", len(bounty.Winners),
	)
	return bounty, nil
}

type RevealSolutionCommand struct {
	BountyID     uint64
	SubmissionID uint64
	Caller       string
	RevealRef    string
}

func (s Service) RevealSolution(ctx context.Context, cmd RevealSolutionCommand) (entities.Submission, error) {
	caller := strings.TrimSpace(cmd.Caller)
	ref := strings.TrimSpace(cmd.RevealRef)
	if caller == "" || ref == "" {
		return entities.Submission{}, domainerrors.ErrInvalidInput
	}
	bounty, err := s.Repo.GetBounty(ctx, cmd.BountyID)
	if err != nil {
		return entities.Submission{}, err
	}
	// Reveal opens once the escrow has settled, whether a winner was
	// selected or the bounty was slashed into a dispute. Voters ranking
	// slashed submissions need the plaintext solutions.
	if bounty.Status != entities.BountyStatusResolved && bounty.Status != entities.BountyStatusSlashed {
		return entities.Submission{}, domainerrors.ErrNotResolved
	}
	submission, err := s.Repo.GetSubmission(ctx, cmd.SubmissionID)
	if err != nil {
		return entities.Submission{}, err
	}
	if submission.BountyID != bounty.BountyID {
		return entities.Submission{}, domainerrors.ErrSubmissionNotFound
	}
	if caller != submission.Solver {
		return entities.Submission{}, domainerrors.ErrNotSolver
	}
	if submission.Revealed {
		return entities.Submission{}, domainerrors.ErrAlreadyRevealed
	}

	submission.RevealRef = ref
	submission.Revealed = true
	if err := s.Repo.SaveSubmission(ctx, submission); err != nil {
		return entities.Submission{}, err
	}
	if err := s.appendEvent(ctx, "bounty.solution_revealed", bounty.BountyID, caller, map[string]any{
		"submission_id": submission.SubmissionID,
		"reveal_ref":    submission.RevealRef,
	}); err != nil {
		return entities.Submission{}, err
	}
	return submission, nil
}

type TriggerSlashCommand struct {
	BountyID uint64
	Caller   string
}

type SlashResult struct {
	Bounty      entities.Bounty
	DisputeID   uint64
	SlashAmount uint64
}

// TriggerSlash is callable by anyone once the deadline has passed, so a
// stalling creator cannot trap solver deposits.
func (s Service) TriggerSlash(ctx context.Context, cmd TriggerSlashCommand) (SlashResult, error) {
	if err := s.Guard.Enter(); err != nil {
		return SlashResult{}, err
	}
	defer s.Guard.Exit()

	if strings.TrimSpace(cmd.Caller) == "" {
		return SlashResult{}, domainerrors.ErrInvalidInput
	}
	if s.Disputes == nil {
		return SlashResult{}, domainerrors.ErrDisputesUnavailable
	}
	bounty, err := s.Repo.GetBounty(ctx, cmd.BountyID)
	if err != nil {
		return SlashResult{}, err
	}
	if bounty.Status != entities.BountyStatusOpen {
		return SlashResult{}, domainerrors.ErrBountyResolved
	}
	now := s.now()
	if !now.After(bounty.Deadline) {
		return SlashResult{}, domainerrors.ErrDeadlineNotPassed
	}

	slashAmount := bounty.SlashAmount()
	bounty.Status = entities.BountyStatusSlashed
	bounty.ResolvedAt = now
	if err := s.Repo.SaveBounty(ctx, bounty); err != nil {
		return SlashResult{}, err
	}
	if err := s.appendEvent(ctx, "bounty.slashed", bounty.BountyID, cmd.Caller, map[string]any{
		"slash_amount": slashAmount,
		"slash_bp":     bounty.SlashBP,
	}); err != nil {
		return SlashResult{}, err
	}

	// The dispute engine takes custody of the slashed share and opens the
	// expiry vote in the same call.
	disputeID, err := s.Disputes.OpenExpiryVote(ctx, bounty.BountyID, slashAmount)
	if err != nil {
		return SlashResult{}, err
	}

	// Remaining escrow returns to the creator; solver deposits are refunded.
	if remainder := bounty.Amount - slashAmount; remainder > 0 {
		if err := s.Funds.Payout(ledger.BountyEscrowPool(bounty.BountyID), bounty.Creator, remainder); err != nil {
			return SlashResult{}, err
		}
	}
	if err := s.refundUnselectedDeposits(ctx, bounty, nil); err != nil {
		return SlashResult{}, err
	}

	ResolveLogger(s.Logger).Info("bounty slashed",
		"event", "bounty_slashed",
		"module", "escrow-core/bounty-engine",
		"layer", "application",
		"bounty_id", bounty.BountyID,
		"dispute_id", disputeID,
		"slash_amount", slashAmount,
	)
	return SlashResult{Bounty: bounty, DisputeID: disputeID, SlashAmount: slashAmount}, nil
}

// refundUnselectedDeposits returns every deposit not claimed by a winner to
// its solver. Deposits are escrowed apart from the bounty amount, so only the
// solver ever gets a non-winning deposit back.
func (s Service) refundUnselectedDeposits(ctx context.Context, bounty entities.Bounty, selected map[uint64]bool) error {
	submissions, err := s.Repo.ListSubmissionsByBounty(ctx, bounty.BountyID)
	if err != nil {
		return err
	}
	for _, submission := range submissions {
		if selected[submission.SubmissionID] {
			continue
		}
		pool := ledger.SubmissionDepositPool(bounty.BountyID, submission.SubmissionID)
		if err := s.Funds.Payout(pool, submission.Solver, submission.Deposit); err != nil {
			return err
		}
	}
	return nil
}

// winnerPayouts splits the escrow by basis-point shares with truncating
// division; truncation dust goes to the first winner so the escrow is fully
// disbursed.
func winnerPayouts(bounty entities.Bounty, winners []string) []uint64 {
	payouts := make([]uint64, len(winners))
	if !bounty.MultiWinner {
		payouts[0] = bounty.Amount
		return payouts
	}
	var distributed uint64
	for i, share := range bounty.WinnerSharesBP {
		payouts[i] = bounty.Amount * share / entities.FullShareBP
		distributed += payouts[i]
	}
	payouts[0] += bounty.Amount - distributed
	return payouts
}

func (s Service) GetBounty(ctx context.Context, bountyID uint64) (entities.Bounty, error) {
	return s.Repo.GetBounty(ctx, bountyID)
}

func (s Service) ListBounties(ctx context.Context) ([]entities.Bounty, error) {
	return s.Repo.ListBounties(ctx)
}

func (s Service) CountBounties(ctx context.Context) (uint64, error) {
	return s.Repo.CountBounties(ctx)
}

func (s Service) GetSubmission(ctx context.Context, submissionID uint64) (entities.Submission, error) {
	return s.Repo.GetSubmission(ctx, submissionID)
}

func (s Service) ListSubmissions(ctx context.Context, bountyID uint64) ([]entities.Submission, error) {
	if _, err := s.Repo.GetBounty(ctx, bountyID); err != nil {
		return nil, err
	}
	return s.Repo.ListSubmissionsByBounty(ctx, bountyID)
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func (s Service) notifyObserver(milestone string, notify func() error) {
	if s.Observer == nil {
		return
	}
	if err := notify(); err != nil {
		ResolveLogger(s.Logger).Warn("reputation notification dropped",
			"event", "bounty_observer_notify_failed",
			"module", "escrow-core/bounty-engine",
			"layer", "application",
			"milestone", milestone,
			"error", err.Error(),
		)
	}
}
