package unit

import (
	"context"
	"errors"
	"testing"
	"time"

	bountyentities "quinty/contexts/escrow-core/bounty-engine/domain/entities"
	domainerrors "quinty/contexts/escrow-core/bounty-engine/domain/errors"
	bountytransport "quinty/contexts/escrow-core/bounty-engine/transport/http"
	"quinty/internal/shared/ledger"
)

var testBase = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestBountySingleWinnerLifecycle(t *testing.T) {
	rig := newEscrowRig()
	rig.setNow(testBase)
	deadline := testBase.Add(24 * time.Hour)

	bountyID := rig.createBounty(t, "creator-1", 1000, deadline)
	if got := rig.funds.PoolBalance(ledger.BountyEscrowPool(bountyID)); got != 1000 {
		t.Fatalf("expected 1000 in escrow, got %d", got)
	}

	subAlice := rig.submit(t, "alice", bountyID, 100)
	subBob := rig.submit(t, "bob", bountyID, 100)

	resp, err := rig.bounty.Handler.SelectWinnersHandler(context.Background(), "creator-1", bountyID, bountytransport.SelectWinnersRequest{
		Winners:       []string{"alice"},
		SubmissionIDs: []uint64{subAlice},
	})
	if err != nil {
		t.Fatalf("select winners failed: %v", err)
	}
	if resp.Data.Status != "resolved" {
		t.Fatalf("expected resolved status, got %s", resp.Data.Status)
	}

	// Winner receives the full escrow plus their own deposit back; the
	// losing deposit is refunded to its solver.
	if got := rig.funds.AccountBalance("alice"); got != 1100 {
		t.Fatalf("expected alice paid 1100, got %d", got)
	}
	if got := rig.funds.AccountBalance("bob"); got != 100 {
		t.Fatalf("expected bob refunded 100, got %d", got)
	}
	if got := rig.funds.PoolBalance(ledger.BountyEscrowPool(bountyID)); got != 0 {
		t.Fatalf("expected drained escrow pool, got %d", got)
	}
	if got := rig.funds.PoolBalance(ledger.SubmissionDepositPool(bountyID, subBob)); got != 0 {
		t.Fatalf("expected drained deposit pool, got %d", got)
	}

	_, err = rig.bounty.Handler.SelectWinnersHandler(context.Background(), "creator-1", bountyID, bountytransport.SelectWinnersRequest{
		Winners:       []string{"bob"},
		SubmissionIDs: []uint64{subBob},
	})
	if !errors.Is(err, domainerrors.ErrBountyResolved) {
		t.Fatalf("expected second selection rejected, got %v", err)
	}
}

func TestBountyMultiWinnerSharesWithDust(t *testing.T) {
	rig := newEscrowRig()
	rig.setNow(testBase)

	resp, err := rig.bounty.Handler.CreateBountyHandler(context.Background(), "creator-1", bountytransport.CreateBountyRequest{
		ContentRef:     "bafy-task-brief",
		Deadline:       testBase.Add(24 * time.Hour).Format(time.RFC3339),
		MultiWinner:    true,
		WinnerSharesBP: []uint64{5000, 3000, 2000},
		SlashBP:        3000,
		Value:          1001,
	})
	if err != nil {
		t.Fatalf("create multi-winner bounty failed: %v", err)
	}
	bountyID := resp.Data.BountyID

	subA := rig.submit(t, "alice", bountyID, 100)
	subB := rig.submit(t, "bob", bountyID, 100)
	subC := rig.submit(t, "carol", bountyID, 100)

	_, err = rig.bounty.Handler.SelectWinnersHandler(context.Background(), "creator-1", bountyID, bountytransport.SelectWinnersRequest{
		Winners:       []string{"alice", "bob", "carol"},
		SubmissionIDs: []uint64{subA, subB, subC},
	})
	if err != nil {
		t.Fatalf("select winners failed: %v", err)
	}

	// 1001 splits to 500/300/200 with 1 unit of truncation dust credited to
	// the first winner; every winner also recovers their deposit.
	if got := rig.funds.AccountBalance("alice"); got != 601 {
		t.Fatalf("expected alice paid 601, got %d", got)
	}
	if got := rig.funds.AccountBalance("bob"); got != 400 {
		t.Fatalf("expected bob paid 400, got %d", got)
	}
	if got := rig.funds.AccountBalance("carol"); got != 300 {
		t.Fatalf("expected carol paid 300, got %d", got)
	}
	if got := rig.funds.TotalInCustody(); got != 0 {
		t.Fatalf("expected empty custody after settlement, got %d", got)
	}
}

func TestBountyLargeEscrowSplitsExactly(t *testing.T) {
	rig := newEscrowRig()
	rig.setNow(testBase)

	// A quadrillion-unit escrow sits near the supported maximum; the
	// basis-point split must stay exact instead of wrapping.
	const escrow = uint64(1_000_000_000_000_000)
	const deposit = escrow / 10

	resp, err := rig.bounty.Handler.CreateBountyHandler(context.Background(), "creator-1", bountytransport.CreateBountyRequest{
		ContentRef:     "bafy-task-brief",
		Deadline:       testBase.Add(24 * time.Hour).Format(time.RFC3339),
		MultiWinner:    true,
		WinnerSharesBP: []uint64{5000, 5000},
		SlashBP:        3000,
		Value:          escrow,
	})
	if err != nil {
		t.Fatalf("create large bounty failed: %v", err)
	}
	bountyID := resp.Data.BountyID

	subA := rig.submit(t, "alice", bountyID, deposit)
	subB := rig.submit(t, "bob", bountyID, deposit)

	if _, err := rig.bounty.Handler.SelectWinnersHandler(context.Background(), "creator-1", bountyID, bountytransport.SelectWinnersRequest{
		Winners:       []string{"alice", "bob"},
		SubmissionIDs: []uint64{subA, subB},
	}); err != nil {
		t.Fatalf("select winners failed: %v", err)
	}

	want := escrow/2 + deposit
	if got := rig.funds.AccountBalance("alice"); got != want {
		t.Fatalf("expected alice paid %d, got %d", want, got)
	}
	if got := rig.funds.AccountBalance("bob"); got != want {
		t.Fatalf("expected bob paid %d, got %d", want, got)
	}
	if got := rig.funds.TotalInCustody(); got != 0 {
		t.Fatalf("expected empty custody after settlement, got %d", got)
	}
}

func TestBountyCreationValidation(t *testing.T) {
	rig := newEscrowRig()
	rig.setNow(testBase)
	future := testBase.Add(24 * time.Hour).Format(time.RFC3339)

	cases := []struct {
		name string
		req  bountytransport.CreateBountyRequest
		want error
	}{
		{
			name: "escrow below deposit floor",
			req:  bountytransport.CreateBountyRequest{ContentRef: "bafy-x", Deadline: future, SlashBP: 3000, Value: 9},
			want: domainerrors.ErrZeroEscrow,
		},
		{
			name: "deadline in the past",
			req:  bountytransport.CreateBountyRequest{ContentRef: "bafy-x", Deadline: testBase.Add(-time.Hour).Format(time.RFC3339), SlashBP: 3000, Value: 100},
			want: domainerrors.ErrDeadlineNotFuture,
		},
		{
			name: "slash percent below band",
			req:  bountytransport.CreateBountyRequest{ContentRef: "bafy-x", Deadline: future, SlashBP: 2499, Value: 100},
			want: domainerrors.ErrSlashPercentOutOfBand,
		},
		{
			name: "slash percent above band",
			req:  bountytransport.CreateBountyRequest{ContentRef: "bafy-x", Deadline: future, SlashBP: 5001, Value: 100},
			want: domainerrors.ErrSlashPercentOutOfBand,
		},
		{
			name: "shares do not sum",
			req:  bountytransport.CreateBountyRequest{ContentRef: "bafy-x", Deadline: future, MultiWinner: true, WinnerSharesBP: []uint64{6000, 3000}, SlashBP: 3000, Value: 100},
			want: domainerrors.ErrSharesDoNotSum,
		},
		{
			name: "single share for multi-winner",
			req:  bountytransport.CreateBountyRequest{ContentRef: "bafy-x", Deadline: future, MultiWinner: true, WinnerSharesBP: []uint64{10000}, SlashBP: 3000, Value: 100},
			want: domainerrors.ErrSharesDoNotSum,
		},
		{
			name: "shares without multi-winner flag",
			req:  bountytransport.CreateBountyRequest{ContentRef: "bafy-x", Deadline: future, WinnerSharesBP: []uint64{5000, 5000}, SlashBP: 3000, Value: 100},
			want: domainerrors.ErrInvalidInput,
		},
		{
			name: "missing content ref",
			req:  bountytransport.CreateBountyRequest{Deadline: future, SlashBP: 3000, Value: 100},
			want: domainerrors.ErrInvalidInput,
		},
		{
			name: "escrow above uint64 safe bound",
			req:  bountytransport.CreateBountyRequest{ContentRef: "bafy-x", Deadline: future, SlashBP: 3000, Value: bountyentities.MaxBountyAmount + 1},
			want: domainerrors.ErrAmountTooLarge,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := rig.bounty.Handler.CreateBountyHandler(context.Background(), "creator-1", tc.req)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestBountySubmissionRules(t *testing.T) {
	rig := newEscrowRig()
	rig.setNow(testBase)
	bountyID := rig.createBounty(t, "creator-1", 1000, testBase.Add(24*time.Hour))

	_, err := rig.bounty.Handler.SubmitSolutionHandler(context.Background(), "alice", bountyID, bountytransport.SubmitSolutionRequest{
		BlindedRef: "bafy-blinded",
		Value:      99,
	})
	if !errors.Is(err, domainerrors.ErrWrongDeposit) {
		t.Fatalf("expected wrong deposit, got %v", err)
	}

	rig.setNow(testBase.Add(25 * time.Hour))
	_, err = rig.bounty.Handler.SubmitSolutionHandler(context.Background(), "alice", bountyID, bountytransport.SubmitSolutionRequest{
		BlindedRef: "bafy-blinded",
		Value:      100,
	})
	if !errors.Is(err, domainerrors.ErrDeadlinePassed) {
		t.Fatalf("expected deadline passed, got %v", err)
	}

	_, err = rig.bounty.Handler.SubmitSolutionHandler(context.Background(), "alice", 999, bountytransport.SubmitSolutionRequest{
		BlindedRef: "bafy-blinded",
		Value:      100,
	})
	if !errors.Is(err, domainerrors.ErrBountyNotFound) {
		t.Fatalf("expected bounty not found, got %v", err)
	}
}

func TestBountySelectionGuards(t *testing.T) {
	rig := newEscrowRig()
	rig.setNow(testBase)
	bountyID := rig.createBounty(t, "creator-1", 1000, testBase.Add(24*time.Hour))
	subAlice := rig.submit(t, "alice", bountyID, 100)

	_, err := rig.bounty.Handler.SelectWinnersHandler(context.Background(), "mallory", bountyID, bountytransport.SelectWinnersRequest{
		Winners:       []string{"alice"},
		SubmissionIDs: []uint64{subAlice},
	})
	if !errors.Is(err, domainerrors.ErrNotCreator) {
		t.Fatalf("expected not creator, got %v", err)
	}

	_, err = rig.bounty.Handler.SelectWinnersHandler(context.Background(), "creator-1", bountyID, bountytransport.SelectWinnersRequest{
		Winners:       []string{"bob"},
		SubmissionIDs: []uint64{subAlice},
	})
	if !errors.Is(err, domainerrors.ErrWinnerMismatch) {
		t.Fatalf("expected winner mismatch, got %v", err)
	}

	rig.setNow(testBase.Add(25 * time.Hour))
	_, err = rig.bounty.Handler.SelectWinnersHandler(context.Background(), "creator-1", bountyID, bountytransport.SelectWinnersRequest{
		Winners:       []string{"alice"},
		SubmissionIDs: []uint64{subAlice},
	})
	if !errors.Is(err, domainerrors.ErrDeadlinePassed) {
		t.Fatalf("expected deadline passed, got %v", err)
	}
}

func TestBountyRevealAfterResolution(t *testing.T) {
	rig := newEscrowRig()
	rig.setNow(testBase)
	bountyID := rig.createBounty(t, "creator-1", 1000, testBase.Add(24*time.Hour))
	subAlice := rig.submit(t, "alice", bountyID, 100)

	_, err := rig.bounty.Handler.RevealSolutionHandler(context.Background(), "alice", bountyID, bountytransport.RevealSolutionRequest{
		SubmissionID: subAlice,
		RevealRef:    "bafy-plain",
	})
	if !errors.Is(err, domainerrors.ErrNotResolved) {
		t.Fatalf("expected reveal blocked before resolution, got %v", err)
	}

	if _, err := rig.bounty.Handler.SelectWinnersHandler(context.Background(), "creator-1", bountyID, bountytransport.SelectWinnersRequest{
		Winners:       []string{"alice"},
		SubmissionIDs: []uint64{subAlice},
	}); err != nil {
		t.Fatalf("select winners failed: %v", err)
	}

	_, err = rig.bounty.Handler.RevealSolutionHandler(context.Background(), "mallory", bountyID, bountytransport.RevealSolutionRequest{
		SubmissionID: subAlice,
		RevealRef:    "bafy-plain",
	})
	if !errors.Is(err, domainerrors.ErrNotSolver) {
		t.Fatalf("expected not solver, got %v", err)
	}

	revealed, err := rig.bounty.Handler.RevealSolutionHandler(context.Background(), "alice", bountyID, bountytransport.RevealSolutionRequest{
		SubmissionID: subAlice,
		RevealRef:    "bafy-plain",
	})
	if err != nil {
		t.Fatalf("reveal failed: %v", err)
	}
	if !revealed.Data.Revealed || revealed.Data.RevealRef != "bafy-plain" {
		t.Fatalf("expected revealed submission, got %+v", revealed.Data)
	}

	_, err = rig.bounty.Handler.RevealSolutionHandler(context.Background(), "alice", bountyID, bountytransport.RevealSolutionRequest{
		SubmissionID: subAlice,
		RevealRef:    "bafy-other",
	})
	if !errors.Is(err, domainerrors.ErrAlreadyRevealed) {
		t.Fatalf("expected already revealed, got %v", err)
	}
}

func TestBountyRepliesRestrictedToParticipants(t *testing.T) {
	rig := newEscrowRig()
	rig.setNow(testBase)
	bountyID := rig.createBounty(t, "creator-1", 1000, testBase.Add(24*time.Hour))
	subAlice := rig.submit(t, "alice", bountyID, 100)

	_, err := rig.bounty.Handler.AddReplyHandler(context.Background(), "mallory", bountyID, bountytransport.AddReplyRequest{
		SubmissionID: subAlice,
		Content:      "can you clarify?",
	})
	if !errors.Is(err, domainerrors.ErrNotParticipant) {
		t.Fatalf("expected not participant, got %v", err)
	}

	resp, err := rig.bounty.Handler.AddReplyHandler(context.Background(), "creator-1", bountyID, bountytransport.AddReplyRequest{
		SubmissionID: subAlice,
		Content:      "does this cover the edge case?",
	})
	if err != nil {
		t.Fatalf("creator reply failed: %v", err)
	}
	if len(resp.Data.Replies) != 1 || resp.Data.Replies[0].Replier != "creator-1" {
		t.Fatalf("expected one creator reply, got %+v", resp.Data.Replies)
	}
}
