package unit

import (
	"context"
	"errors"
	"testing"
	"time"

	bountytransport "quinty/contexts/escrow-core/bounty-engine/transport/http"
	disputeerrors "quinty/contexts/escrow-core/dispute-engine/domain/errors"
	disputetransport "quinty/contexts/escrow-core/dispute-engine/transport/http"
	"quinty/internal/shared/ledger"
)

// resolvedBountyFixture creates a bounty with three submissions and resolves
// it in alice's favor at testBase.
func resolvedBountyFixture(t *testing.T, rig escrowRig) (bountyID uint64, subs [3]uint64) {
	t.Helper()
	rig.setNow(testBase)
	bountyID = rig.createBounty(t, "creator-1", 1000, testBase.Add(24*time.Hour))
	subs[0] = rig.submit(t, "alice", bountyID, 100)
	subs[1] = rig.submit(t, "bob", bountyID, 100)
	subs[2] = rig.submit(t, "carol", bountyID, 100)

	if _, err := rig.bounty.Handler.SelectWinnersHandler(context.Background(), "creator-1", bountyID, bountytransport.SelectWinnersRequest{
		Winners:       []string{"alice"},
		SubmissionIDs: []uint64{subs[0]},
	}); err != nil {
		t.Fatalf("select winners failed: %v", err)
	}
	return bountyID, subs
}

func TestPengadilanInitiationGuards(t *testing.T) {
	rig := newEscrowRig()
	bountyID, _ := resolvedBountyFixture(t, rig)
	ctx := context.Background()

	_, err := rig.dispute.Handler.InitiatePengadilanHandler(ctx, "mallory", disputetransport.InitiatePengadilanRequest{
		BountyID: bountyID,
		Value:    1000,
	})
	if !errors.Is(err, disputeerrors.ErrNotCreator) {
		t.Fatalf("expected not creator, got %v", err)
	}

	_, err = rig.dispute.Handler.InitiatePengadilanHandler(ctx, "creator-1", disputetransport.InitiatePengadilanRequest{
		BountyID: bountyID,
		Value:    999,
	})
	if !errors.Is(err, disputeerrors.ErrWrongStakeAmount) {
		t.Fatalf("expected wrong stake amount, got %v", err)
	}

	// A still-open bounty cannot be contested.
	openBounty := rig.createBounty(t, "creator-1", 500, testBase.Add(24*time.Hour))
	_, err = rig.dispute.Handler.InitiatePengadilanHandler(ctx, "creator-1", disputetransport.InitiatePengadilanRequest{
		BountyID: openBounty,
		Value:    500,
	})
	if !errors.Is(err, disputeerrors.ErrBountyNotEligible) {
		t.Fatalf("expected bounty not eligible, got %v", err)
	}

	if _, err := rig.dispute.Handler.InitiatePengadilanHandler(ctx, "creator-1", disputetransport.InitiatePengadilanRequest{
		BountyID: bountyID,
		Value:    1000,
	}); err != nil {
		t.Fatalf("initiate pengadilan failed: %v", err)
	}
	_, err = rig.dispute.Handler.InitiatePengadilanHandler(ctx, "creator-1", disputetransport.InitiatePengadilanRequest{
		BountyID: bountyID,
		Value:    1000,
	})
	if !errors.Is(err, disputeerrors.ErrAlreadyContested) {
		t.Fatalf("expected already contested, got %v", err)
	}
}

func TestPengadilanContestWindowCloses(t *testing.T) {
	rig := newEscrowRig()
	bountyID, _ := resolvedBountyFixture(t, rig)

	rig.setNow(testBase.Add(169 * time.Hour))
	_, err := rig.dispute.Handler.InitiatePengadilanHandler(context.Background(), "creator-1", disputetransport.InitiatePengadilanRequest{
		BountyID: bountyID,
		Value:    1000,
	})
	if !errors.Is(err, disputeerrors.ErrContestWindowClosed) {
		t.Fatalf("expected contest window closed, got %v", err)
	}
}

func TestPengadilanOverturnedSplit(t *testing.T) {
	rig := newEscrowRig()
	bountyID, subs := resolvedBountyFixture(t, rig)
	ctx := context.Background()

	contest, err := rig.dispute.Handler.InitiatePengadilanHandler(ctx, "creator-1", disputetransport.InitiatePengadilanRequest{
		BountyID: bountyID,
		Value:    1000,
	})
	if err != nil {
		t.Fatalf("initiate pengadilan failed: %v", err)
	}
	disputeID := contest.Data.DisputeID

	if _, err := rig.dispute.Handler.VoteHandler(ctx, "vera", disputeID, disputetransport.VoteRequest{
		Ranked: []uint64{subs[1], subs[2], subs[0]},
		Value:  60,
	}); err != nil {
		t.Fatalf("vera vote failed: %v", err)
	}
	if _, err := rig.dispute.Handler.VoteHandler(ctx, "victor", disputeID, disputetransport.VoteRequest{
		Ranked: []uint64{subs[1], subs[0], subs[2]},
		Value:  40,
	}); err != nil {
		t.Fatalf("victor vote failed: %v", err)
	}

	rig.setNow(testBase.Add(73 * time.Hour))
	resolved, err := rig.dispute.Handler.ResolveDisputeHandler(ctx, "anyone", disputeID)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !resolved.Data.Overturned || resolved.Data.WinningSubID != subs[1] {
		t.Fatalf("expected overturn in favor of bob, got %+v", resolved.Data)
	}

	// Pool is 1000 contest stake + 100 votes = 1100, split 80% creator,
	// 10% correct voters by stake, 10% original winner.
	if got := rig.funds.AccountBalance("creator-1"); got != 880 {
		t.Fatalf("expected creator paid 880, got %d", got)
	}
	if got := rig.funds.AccountBalance("vera"); got != 66 {
		t.Fatalf("expected vera rewarded 66, got %d", got)
	}
	if got := rig.funds.AccountBalance("victor"); got != 44 {
		t.Fatalf("expected victor rewarded 44, got %d", got)
	}
	// alice keeps her original 1100 and receives the 10% compensation.
	if got := rig.funds.AccountBalance("alice"); got != 1210 {
		t.Fatalf("expected alice at 1210, got %d", got)
	}
	if got := rig.funds.PoolBalance(ledger.DisputePool(disputeID)); got != 0 {
		t.Fatalf("expected drained dispute pool, got %d", got)
	}
}

func TestPengadilanUpheldSplit(t *testing.T) {
	rig := newEscrowRig()
	bountyID, subs := resolvedBountyFixture(t, rig)
	ctx := context.Background()

	contest, err := rig.dispute.Handler.InitiatePengadilanHandler(ctx, "creator-1", disputetransport.InitiatePengadilanRequest{
		BountyID: bountyID,
		Value:    1000,
	})
	if err != nil {
		t.Fatalf("initiate pengadilan failed: %v", err)
	}
	disputeID := contest.Data.DisputeID

	if _, err := rig.dispute.Handler.VoteHandler(ctx, "vera", disputeID, disputetransport.VoteRequest{
		Ranked: []uint64{subs[0], subs[1], subs[2]},
		Value:  100,
	}); err != nil {
		t.Fatalf("vera vote failed: %v", err)
	}

	rig.setNow(testBase.Add(73 * time.Hour))
	resolved, err := rig.dispute.Handler.ResolveDisputeHandler(ctx, "anyone", disputeID)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if resolved.Data.Overturned {
		t.Fatalf("expected upheld outcome, got overturn")
	}

	// Pool is 1100; the upheld winner takes 90%, correct voters share 10%,
	// and the contesting creator forfeits the stake.
	if got := rig.funds.AccountBalance("alice"); got != 1100+990 {
		t.Fatalf("expected alice at 2090, got %d", got)
	}
	if got := rig.funds.AccountBalance("vera"); got != 110 {
		t.Fatalf("expected vera rewarded 110, got %d", got)
	}
	if got := rig.funds.AccountBalance("creator-1"); got != 0 {
		t.Fatalf("expected creator stake forfeited, got %d", got)
	}
}
