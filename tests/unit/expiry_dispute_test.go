package unit

import (
	"context"
	"errors"
	"testing"
	"time"

	bountyengine "quinty/contexts/escrow-core/bounty-engine"
	bountyerrors "quinty/contexts/escrow-core/bounty-engine/domain/errors"
	bountytransport "quinty/contexts/escrow-core/bounty-engine/transport/http"
	disputeerrors "quinty/contexts/escrow-core/dispute-engine/domain/errors"
	disputetransport "quinty/contexts/escrow-core/dispute-engine/transport/http"
	"quinty/internal/shared/ledger"
)

// slashedBountyFixture builds a bounty with three submissions and slashes it
// past its deadline, returning the opened expiry dispute id alongside the
// submission ids in order of creation.
func slashedBountyFixture(t *testing.T, rig escrowRig) (bountyID, disputeID uint64, subs [3]uint64) {
	t.Helper()
	rig.setNow(testBase)
	bountyID = rig.createBounty(t, "creator-1", 1000, testBase.Add(24*time.Hour))
	subs[0] = rig.submit(t, "alice", bountyID, 100)
	subs[1] = rig.submit(t, "bob", bountyID, 100)
	subs[2] = rig.submit(t, "carol", bountyID, 100)

	rig.setNow(testBase.Add(25 * time.Hour))
	resp, err := rig.bounty.Handler.TriggerSlashHandler(context.Background(), "anyone", bountyID)
	if err != nil {
		t.Fatalf("trigger slash failed: %v", err)
	}
	return bountyID, resp.Data.DisputeID, subs
}

func TestExpirySlashMovesValueAndOpensDispute(t *testing.T) {
	rig := newEscrowRig()
	bountyID, disputeID, _ := slashedBountyFixture(t, rig)

	// 30% of the escrow moves into dispute custody, the rest returns to the
	// creator, and every solver deposit is refunded.
	if got := rig.funds.PoolBalance(ledger.DisputePool(disputeID)); got != 300 {
		t.Fatalf("expected 300 in dispute pool, got %d", got)
	}
	if got := rig.funds.AccountBalance("creator-1"); got != 700 {
		t.Fatalf("expected creator refunded 700, got %d", got)
	}
	for _, solver := range []string{"alice", "bob", "carol"} {
		if got := rig.funds.AccountBalance(solver); got != 100 {
			t.Fatalf("expected %s deposit refunded, got %d", solver, got)
		}
	}
	if got := rig.funds.PoolBalance(ledger.BountyEscrowPool(bountyID)); got != 0 {
		t.Fatalf("expected drained bounty escrow, got %d", got)
	}

	bounty, err := rig.bounty.Handler.GetBountyHandler(context.Background(), bountyID)
	if err != nil {
		t.Fatalf("get bounty failed: %v", err)
	}
	if bounty.Data.Status != "slashed" {
		t.Fatalf("expected slashed status, got %s", bounty.Data.Status)
	}

	dispute, err := rig.dispute.Handler.GetDisputeHandler(context.Background(), disputeID)
	if err != nil {
		t.Fatalf("get dispute failed: %v", err)
	}
	if dispute.Data.Kind != "expiry_vote" || dispute.Data.AmountAtStake != 300 {
		t.Fatalf("unexpected dispute: %+v", dispute.Data)
	}
}

func TestSlashGuards(t *testing.T) {
	rig := newEscrowRig()
	rig.setNow(testBase)
	bountyID := rig.createBounty(t, "creator-1", 1000, testBase.Add(24*time.Hour))

	_, err := rig.bounty.Handler.TriggerSlashHandler(context.Background(), "anyone", bountyID)
	if !errors.Is(err, bountyerrors.ErrDeadlineNotPassed) {
		t.Fatalf("expected deadline not passed, got %v", err)
	}

	rig.setNow(testBase.Add(25 * time.Hour))
	if _, err := rig.bounty.Handler.TriggerSlashHandler(context.Background(), "anyone", bountyID); err != nil {
		t.Fatalf("trigger slash failed: %v", err)
	}
	_, err = rig.bounty.Handler.TriggerSlashHandler(context.Background(), "anyone", bountyID)
	if !errors.Is(err, bountyerrors.ErrBountyResolved) {
		t.Fatalf("expected repeat slash rejected, got %v", err)
	}
}

func TestSlashFailsWithoutDisputeEngine(t *testing.T) {
	module := bountyengine.NewInMemoryModule(nil, nil, nil, nil)
	module.Store.SetNow(testBase)

	resp, err := module.Handler.CreateBountyHandler(context.Background(), "creator-1", bountyCreateRequest(testBase.Add(time.Hour)))
	if err != nil {
		t.Fatalf("create bounty failed: %v", err)
	}
	module.Store.SetNow(testBase.Add(2 * time.Hour))
	_, err = module.Handler.TriggerSlashHandler(context.Background(), "anyone", resp.Data.BountyID)
	if !errors.Is(err, bountyerrors.ErrDisputesUnavailable) {
		t.Fatalf("expected disputes unavailable, got %v", err)
	}
}

func TestExpiryVoteValidation(t *testing.T) {
	rig := newEscrowRig()
	_, disputeID, subs := slashedBountyFixture(t, rig)
	ctx := context.Background()

	_, err := rig.dispute.Handler.VoteHandler(ctx, "vera", disputeID, disputetransport.VoteRequest{
		Ranked: []uint64{subs[0], subs[1], subs[2]},
		Value:  testMinVoteStake - 1,
	})
	if !errors.Is(err, disputeerrors.ErrStakeTooLow) {
		t.Fatalf("expected stake too low, got %v", err)
	}

	badRankings := [][]uint64{
		{subs[0], subs[1]},          // too short
		{subs[0], subs[0], subs[1]}, // duplicate
		{subs[0], subs[1], 9999},    // unknown submission
	}
	for _, ranked := range badRankings {
		_, err := rig.dispute.Handler.VoteHandler(ctx, "vera", disputeID, disputetransport.VoteRequest{
			Ranked: ranked,
			Value:  50,
		})
		if !errors.Is(err, disputeerrors.ErrInvalidRanking) {
			t.Fatalf("expected invalid ranking for %v, got %v", ranked, err)
		}
	}

	if _, err := rig.dispute.Handler.VoteHandler(ctx, "vera", disputeID, disputetransport.VoteRequest{
		Ranked: []uint64{subs[0], subs[1], subs[2]},
		Value:  50,
	}); err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	_, err = rig.dispute.Handler.VoteHandler(ctx, "vera", disputeID, disputetransport.VoteRequest{
		Ranked: []uint64{subs[1], subs[0], subs[2]},
		Value:  50,
	})
	if !errors.Is(err, disputeerrors.ErrAlreadyVoted) {
		t.Fatalf("expected double vote rejected, got %v", err)
	}

	rig.setNow(testBase.Add(25*time.Hour + 72*time.Hour))
	_, err = rig.dispute.Handler.VoteHandler(ctx, "victor", disputeID, disputetransport.VoteRequest{
		Ranked: []uint64{subs[0], subs[1], subs[2]},
		Value:  50,
	})
	if !errors.Is(err, disputeerrors.ErrVotingClosed) {
		t.Fatalf("expected voting closed, got %v", err)
	}
}

func TestExpiryDisputeResolution(t *testing.T) {
	rig := newEscrowRig()
	_, disputeID, subs := slashedBountyFixture(t, rig)
	ctx := context.Background()

	_, err := rig.dispute.Handler.ResolveDisputeHandler(ctx, "anyone", disputeID)
	if !errors.Is(err, disputeerrors.ErrVotingStillOpen) {
		t.Fatalf("expected voting still open, got %v", err)
	}

	if _, err := rig.dispute.Handler.VoteHandler(ctx, "vera", disputeID, disputetransport.VoteRequest{
		Ranked: []uint64{subs[1], subs[0], subs[2]},
		Value:  60,
	}); err != nil {
		t.Fatalf("vera vote failed: %v", err)
	}
	if _, err := rig.dispute.Handler.VoteHandler(ctx, "victor", disputeID, disputetransport.VoteRequest{
		Ranked: []uint64{subs[0], subs[1], subs[2]},
		Value:  40,
	}); err != nil {
		t.Fatalf("victor vote failed: %v", err)
	}

	rig.setNow(testBase.Add(25*time.Hour + 73*time.Hour))
	resolved, err := rig.dispute.Handler.ResolveDisputeHandler(ctx, "anyone", disputeID)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	// Stake-weighted Borda: bob's submission takes 3x60+2x40 = 260 points
	// against alice's 2x60+3x40 = 240.
	if resolved.Data.WinningSubID != subs[1] {
		t.Fatalf("expected bob's submission to win, got %d", resolved.Data.WinningSubID)
	}

	// Pool is 300 at stake + 100 staked votes = 400. Solver takes 10%, the
	// correct voter 5% by stake, and the residual lands in the treasury.
	if got := rig.funds.AccountBalance("bob"); got != 100+40 {
		t.Fatalf("expected bob paid 40 on top of his refund, got %d", got)
	}
	if got := rig.funds.AccountBalance("vera"); got != 20 {
		t.Fatalf("expected vera rewarded 20, got %d", got)
	}
	if got := rig.funds.AccountBalance("victor"); got != 0 {
		t.Fatalf("expected victor unrewarded, got %d", got)
	}
	treasury := rig.dispute.Handler.TreasuryHandler(ctx)
	if treasury.Data.Balance != 340 {
		t.Fatalf("expected 340 in treasury, got %d", treasury.Data.Balance)
	}
	if got := rig.funds.PoolBalance(ledger.DisputePool(disputeID)); got != 0 {
		t.Fatalf("expected drained dispute pool, got %d", got)
	}

	_, err = rig.dispute.Handler.ResolveDisputeHandler(ctx, "anyone", disputeID)
	if !errors.Is(err, disputeerrors.ErrAlreadyResolved) {
		t.Fatalf("expected repeat resolve rejected, got %v", err)
	}
}

func TestRevealOpensAfterSlash(t *testing.T) {
	rig := newEscrowRig()
	bountyID, _, subs := slashedBountyFixture(t, rig)

	// Voters rank blinded submissions, so solvers must be able to publish
	// the plaintext once the bounty is slashed into a dispute.
	revealed, err := rig.bounty.Handler.RevealSolutionHandler(context.Background(), "alice", bountyID, bountytransport.RevealSolutionRequest{
		SubmissionID: subs[0],
		RevealRef:    "bafy-plain",
	})
	if err != nil {
		t.Fatalf("reveal on slashed bounty failed: %v", err)
	}
	if !revealed.Data.Revealed || revealed.Data.RevealRef != "bafy-plain" {
		t.Fatalf("expected revealed submission, got %+v", revealed.Data)
	}

	_, err = rig.bounty.Handler.RevealSolutionHandler(context.Background(), "mallory", bountyID, bountytransport.RevealSolutionRequest{
		SubmissionID: subs[1],
		RevealRef:    "bafy-other",
	})
	if !errors.Is(err, bountyerrors.ErrNotSolver) {
		t.Fatalf("expected not solver, got %v", err)
	}
}

func TestExpiryDisputeLargeStakeResolution(t *testing.T) {
	rig := newEscrowRig()
	_, disputeID, subs := slashedBountyFixture(t, rig)
	ctx := context.Background()

	// A stake near the top of the uint64 range inflates the pool far past
	// what 64-bit products can hold; the splits must still come out exact.
	const stake = uint64(1) << 62
	if _, err := rig.dispute.Handler.VoteHandler(ctx, "vera", disputeID, disputetransport.VoteRequest{
		Ranked: []uint64{subs[0], subs[1], subs[2]},
		Value:  stake,
	}); err != nil {
		t.Fatalf("vote failed: %v", err)
	}

	rig.setNow(testBase.Add(25*time.Hour + 73*time.Hour))
	resolved, err := rig.dispute.Handler.ResolveDisputeHandler(ctx, "anyone", disputeID)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if resolved.Data.WinningSubID != subs[0] {
		t.Fatalf("expected alice's submission to win, got %d", resolved.Data.WinningSubID)
	}

	// Pool is 300 at stake + 2^62 staked; solver 10%, sole correct voter 5%.
	pool := uint64(300) + stake
	wantSolver := uint64(100) + pool/10
	wantVoter := pool / 20
	if got := rig.funds.AccountBalance("alice"); got != wantSolver {
		t.Fatalf("expected alice paid %d, got %d", wantSolver, got)
	}
	if got := rig.funds.AccountBalance("vera"); got != wantVoter {
		t.Fatalf("expected vera rewarded %d, got %d", wantVoter, got)
	}
	treasury := rig.dispute.Handler.TreasuryHandler(ctx)
	wantTreasury := pool - pool/10 - pool/20
	if treasury.Data.Balance != wantTreasury {
		t.Fatalf("expected %d in treasury, got %d", wantTreasury, treasury.Data.Balance)
	}
	if got := rig.funds.PoolBalance(ledger.DisputePool(disputeID)); got != 0 {
		t.Fatalf("expected drained dispute pool, got %d", got)
	}
}

func TestExpiryDisputeTieBreaksToLowestSubmission(t *testing.T) {
	rig := newEscrowRig()
	_, disputeID, subs := slashedBountyFixture(t, rig)
	ctx := context.Background()

	// Mirrored rankings with equal stakes tie the top two submissions.
	if _, err := rig.dispute.Handler.VoteHandler(ctx, "vera", disputeID, disputetransport.VoteRequest{
		Ranked: []uint64{subs[0], subs[1], subs[2]},
		Value:  50,
	}); err != nil {
		t.Fatalf("vera vote failed: %v", err)
	}
	if _, err := rig.dispute.Handler.VoteHandler(ctx, "victor", disputeID, disputetransport.VoteRequest{
		Ranked: []uint64{subs[1], subs[0], subs[2]},
		Value:  50,
	}); err != nil {
		t.Fatalf("victor vote failed: %v", err)
	}

	rig.setNow(testBase.Add(25*time.Hour + 73*time.Hour))
	resolved, err := rig.dispute.Handler.ResolveDisputeHandler(ctx, "anyone", disputeID)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if resolved.Data.WinningSubID != subs[0] {
		t.Fatalf("expected lowest submission id on tie, got %d", resolved.Data.WinningSubID)
	}
}

func TestExpiryDisputeWithoutVotes(t *testing.T) {
	rig := newEscrowRig()
	_, disputeID, _ := slashedBountyFixture(t, rig)

	rig.setNow(testBase.Add(25*time.Hour + 73*time.Hour))
	_, err := rig.dispute.Handler.ResolveDisputeHandler(context.Background(), "anyone", disputeID)
	if !errors.Is(err, disputeerrors.ErrNoVotes) {
		t.Fatalf("expected no votes, got %v", err)
	}
	// The pool stays in custody until votes arrive.
	if got := rig.funds.PoolBalance(ledger.DisputePool(disputeID)); got != 300 {
		t.Fatalf("expected pool retained, got %d", got)
	}
}
