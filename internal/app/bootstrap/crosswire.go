package bootstrap

import (
	"context"
	"sync"

	bountyentities "quinty/contexts/escrow-core/bounty-engine/domain/entities"
	bountyerrors "quinty/contexts/escrow-core/bounty-engine/domain/errors"
	bountyports "quinty/contexts/escrow-core/bounty-engine/ports"
	disputeports "quinty/contexts/escrow-core/dispute-engine/ports"
)

// DisputeOpenerProxy breaks the construction cycle between the two escrow
// engines: the bounty engine is built first holding the proxy, and the
// dispute service is bound once it exists. Calls before Bind fail with the
// bounty engine's wiring error.
type DisputeOpenerProxy struct {
	mu     sync.RWMutex
	target bountyports.DisputeOpener
}

func (p *DisputeOpenerProxy) Bind(target bountyports.DisputeOpener) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.target = target
}

func (p *DisputeOpenerProxy) OpenExpiryVote(ctx context.Context, bountyID uint64, poolAmount uint64) (uint64, error) {
	p.mu.RLock()
	target := p.target
	p.mu.RUnlock()
	if target == nil {
		return 0, bountyerrors.ErrDisputesUnavailable
	}
	return target.OpenExpiryVote(ctx, bountyID, poolAmount)
}

// BountyReaderAdapter projects bounty state into the dispute engine's
// snapshot read model, keeping the dependency one-way.
type BountyReaderAdapter struct {
	Repo bountyports.BountyRepository
}

func (a BountyReaderAdapter) BountySnapshot(ctx context.Context, bountyID uint64) (disputeports.BountySnapshot, error) {
	bounty, err := a.Repo.GetBounty(ctx, bountyID)
	if err != nil {
		return disputeports.BountySnapshot{}, err
	}
	submissions, err := a.Repo.ListSubmissionsByBounty(ctx, bountyID)
	if err != nil {
		return disputeports.BountySnapshot{}, err
	}
	snapshot := disputeports.BountySnapshot{
		BountyID:      bounty.BountyID,
		Creator:       bounty.Creator,
		Amount:        bounty.Amount,
		Resolved:      bounty.Status == bountyentities.BountyStatusResolved,
		Slashed:       bounty.Status == bountyentities.BountyStatusSlashed,
		ResolvedAt:    bounty.ResolvedAt,
		Winners:       bounty.Winners,
		WinningSubIDs: bounty.WinningSubIDs,
	}
	for _, submission := range submissions {
		snapshot.Submissions = append(snapshot.Submissions, disputeports.SubmissionRef{
			SubmissionID: submission.SubmissionID,
			Solver:       submission.Solver,
		})
	}
	return snapshot, nil
}
