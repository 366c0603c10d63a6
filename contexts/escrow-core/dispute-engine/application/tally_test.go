package application

import (
	"testing"

	"quinty/contexts/escrow-core/dispute-engine/domain/entities"
)

func TestTallyWinnerStakeWeighted(t *testing.T) {
	votes := []entities.Vote{
		{Voter: "a", Stake: 60, Ranked: [entities.RankedChoices]uint64{2, 1, 3}},
		{Voter: "b", Stake: 40, Ranked: [entities.RankedChoices]uint64{1, 2, 3}},
	}
	// Submission 2 scores 3x60+2x40 = 260 against submission 1's 240.
	if got := tallyWinner(votes, DefaultBordaWeights); got != 2 {
		t.Fatalf("expected submission 2, got %d", got)
	}
}

func TestTallyWinnerTieBreaksLow(t *testing.T) {
	votes := []entities.Vote{
		{Voter: "a", Stake: 50, Ranked: [entities.RankedChoices]uint64{1, 2, 3}},
		{Voter: "b", Stake: 50, Ranked: [entities.RankedChoices]uint64{2, 1, 3}},
	}
	if got := tallyWinner(votes, DefaultBordaWeights); got != 1 {
		t.Fatalf("expected lowest id on tie, got %d", got)
	}
}

func TestTallyWinnerWithHugeStakes(t *testing.T) {
	// Two maximal stakes push submission 5's true score to 6x2^63, which a
	// 64-bit accumulator would wrap to zero and hand the win to submission 7.
	votes := []entities.Vote{
		{Voter: "a", Stake: 1 << 63, Ranked: [entities.RankedChoices]uint64{5, 7, 9}},
		{Voter: "b", Stake: 1 << 63, Ranked: [entities.RankedChoices]uint64{5, 9, 7}},
	}
	if got := tallyWinner(votes, DefaultBordaWeights); got != 5 {
		t.Fatalf("expected submission 5, got %d", got)
	}
}

func TestCorrectVoterStakes(t *testing.T) {
	votes := []entities.Vote{
		{Voter: "a", Stake: 60, Ranked: [entities.RankedChoices]uint64{2, 1, 3}},
		{Voter: "b", Stake: 40, Ranked: [entities.RankedChoices]uint64{1, 2, 3}},
		{Voter: "c", Stake: 25, Ranked: [entities.RankedChoices]uint64{2, 3, 1}},
	}
	stakes, total := correctVoterStakes(votes, 2)
	if total != 85 {
		t.Fatalf("expected total 85, got %d", total)
	}
	if stakes["a"] != 60 || stakes["c"] != 25 {
		t.Fatalf("unexpected stakes: %v", stakes)
	}
	if _, ok := stakes["b"]; ok {
		t.Fatalf("voter b ranked the loser first")
	}
}
