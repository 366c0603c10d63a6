package unit

import (
	"context"
	"errors"
	"testing"
	"time"

	reputationobserver "quinty/contexts/community-experience/reputation-observer"
	domainerrors "quinty/contexts/community-experience/reputation-observer/domain/errors"
	bountyengine "quinty/contexts/escrow-core/bounty-engine"
	bountytransport "quinty/contexts/escrow-core/bounty-engine/transport/http"
)

func TestReputationRecordsBountyMilestones(t *testing.T) {
	observer := reputationobserver.NewInMemoryModule(nil)
	module := bountyengine.NewInMemoryModule(nil, nil, observer.Service, nil)
	module.Store.SetNow(testBase)
	ctx := context.Background()

	created, err := module.Handler.CreateBountyHandler(ctx, "creator-1", bountyCreateRequest(testBase.Add(24*time.Hour)))
	if err != nil {
		t.Fatalf("create bounty failed: %v", err)
	}
	bountyID := created.Data.BountyID

	sub, err := module.Handler.SubmitSolutionHandler(ctx, "alice", bountyID, bountytransport.SubmitSolutionRequest{
		BlindedRef: "bafy-blinded",
		Value:      100,
	})
	if err != nil {
		t.Fatalf("submit solution failed: %v", err)
	}
	if _, err := module.Handler.SelectWinnersHandler(ctx, "creator-1", bountyID, bountytransport.SelectWinnersRequest{
		Winners:       []string{"alice"},
		SubmissionIDs: []uint64{sub.Data.SubmissionID},
	}); err != nil {
		t.Fatalf("select winners failed: %v", err)
	}

	creator, err := observer.Handler.GetProfileHandler(ctx, "creator-1")
	if err != nil {
		t.Fatalf("get creator profile failed: %v", err)
	}
	if creator.Data.BountiesCreated != 1 || creator.Data.BountiesWon != 0 {
		t.Fatalf("unexpected creator profile: %+v", creator.Data)
	}

	alice, err := observer.Handler.GetProfileHandler(ctx, "alice")
	if err != nil {
		t.Fatalf("get alice profile failed: %v", err)
	}
	if alice.Data.SolutionsOffered != 1 || alice.Data.BountiesWon != 1 {
		t.Fatalf("unexpected alice profile: %+v", alice.Data)
	}
}

func TestReputationProfileNotFound(t *testing.T) {
	observer := reputationobserver.NewInMemoryModule(nil)
	_, err := observer.Handler.GetProfileHandler(context.Background(), "ghost")
	if !errors.Is(err, domainerrors.ErrProfileNotFound) {
		t.Fatalf("expected profile not found, got %v", err)
	}
}

func TestReputationLeaderboardOrdering(t *testing.T) {
	observer := reputationobserver.NewInMemoryModule(nil)
	ctx := context.Background()

	// carol: 2 wins, bob: 1 win 2 created, alice: 1 win 1 created.
	for range [2]struct{}{} {
		if err := observer.Service.WinnerSelected(ctx, "carol", 1); err != nil {
			t.Fatalf("record win failed: %v", err)
		}
	}
	if err := observer.Service.WinnerSelected(ctx, "bob", 2); err != nil {
		t.Fatalf("record win failed: %v", err)
	}
	for range [2]struct{}{} {
		if err := observer.Service.BountyCreated(ctx, "bob", 3); err != nil {
			t.Fatalf("record creation failed: %v", err)
		}
	}
	if err := observer.Service.WinnerSelected(ctx, "alice", 4); err != nil {
		t.Fatalf("record win failed: %v", err)
	}
	if err := observer.Service.BountyCreated(ctx, "alice", 5); err != nil {
		t.Fatalf("record creation failed: %v", err)
	}

	board, err := observer.Handler.LeaderboardHandler(ctx, 2)
	if err != nil {
		t.Fatalf("leaderboard failed: %v", err)
	}
	if len(board.Data) != 2 {
		t.Fatalf("expected two entries, got %d", len(board.Data))
	}
	if board.Data[0].Address != "carol" || board.Data[1].Address != "bob" {
		t.Fatalf("unexpected ordering: %+v", board.Data)
	}
}
