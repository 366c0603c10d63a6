package unit

import (
	"context"
	"testing"
	"time"

	bountyengine "quinty/contexts/escrow-core/bounty-engine"
	bountytransport "quinty/contexts/escrow-core/bounty-engine/transport/http"
	disputeengine "quinty/contexts/escrow-core/dispute-engine"
	disputememory "quinty/contexts/escrow-core/dispute-engine/adapters/memory"
	"quinty/internal/app/bootstrap"
	"quinty/internal/shared/ledger"
)

// escrowRig wires the bounty and dispute engines over one shared ledger the
// same way the composition root does: the bounty engine holds a dispute
// opener proxy, the dispute engine reads bounty state through the snapshot
// adapter.
type escrowRig struct {
	funds   *ledger.Ledger
	bounty  bountyengine.Module
	dispute disputeengine.Module
}

const testMinVoteStake = 10

func newEscrowRig() escrowRig {
	funds := ledger.New()
	opener := &bootstrap.DisputeOpenerProxy{}
	bountyModule := bountyengine.NewInMemoryModule(funds, opener, nil, nil)

	disputeStore := disputememory.NewStore()
	disputeModule := disputeengine.NewModule(disputeengine.Dependencies{
		Repository:   disputeStore,
		Funds:        funds,
		Outbox:       disputeStore,
		Bounties:     bootstrap.BountyReaderAdapter{Repo: bountyModule.Service.Repo},
		Clock:        disputeStore,
		Sequence:     ledger.NewSequence(),
		Guard:        ledger.NewGuard(),
		MinVoteStake: testMinVoteStake,
	})
	disputeModule.Store = disputeStore
	opener.Bind(disputeModule.Service)

	return escrowRig{funds: funds, bounty: bountyModule, dispute: disputeModule}
}

// setNow pins both engine clocks so deadline checks agree across the rig.
func (r escrowRig) setNow(now time.Time) {
	r.bounty.Store.SetNow(now)
	r.dispute.Store.SetNow(now)
}

func bountyCreateRequest(deadline time.Time) bountytransport.CreateBountyRequest {
	return bountytransport.CreateBountyRequest{
		ContentRef: "bafy-task-brief",
		Deadline:   deadline.Format(time.RFC3339),
		SlashBP:    3000,
		Value:      1000,
	}
}

func (r escrowRig) createBounty(t *testing.T, creator string, amount uint64, deadline time.Time) uint64 {
	t.Helper()
	resp, err := r.bounty.Handler.CreateBountyHandler(context.Background(), creator, bountytransport.CreateBountyRequest{
		ContentRef: "bafy-task-brief",
		Deadline:   deadline.Format(time.RFC3339),
		SlashBP:    3000,
		Value:      amount,
	})
	if err != nil {
		t.Fatalf("create bounty failed: %v", err)
	}
	return resp.Data.BountyID
}

func (r escrowRig) submit(t *testing.T, solver string, bountyID, deposit uint64) uint64 {
	t.Helper()
	resp, err := r.bounty.Handler.SubmitSolutionHandler(context.Background(), solver, bountyID, bountytransport.SubmitSolutionRequest{
		BlindedRef: "bafy-blinded-" + solver,
		Value:      deposit,
	})
	if err != nil {
		t.Fatalf("submit solution for %s failed: %v", solver, err)
	}
	return resp.Data.SubmissionID
}
