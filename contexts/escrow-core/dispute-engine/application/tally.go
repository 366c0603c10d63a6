package application

import (
	"math/bits"
	"sort"

	"quinty/contexts/escrow-core/dispute-engine/domain/entities"
)

// DefaultBordaWeights are the per-rank points applied to a vote's raw stake:
// first choice 3x, second 2x, third 1x.
var DefaultBordaWeights = [entities.RankedChoices]uint64{3, 2, 1}

// score is a 128-bit Borda aggregate; weighted stakes can exceed uint64.
type score struct {
	hi, lo uint64
}

func (s score) less(o score) bool {
	return s.hi < o.hi || (s.hi == o.hi && s.lo < o.lo)
}

// tallyWinner computes the stake-weighted Borda winner. Each vote contributes
// weight[rank] x stake to the ranked submission; the highest aggregate wins
// and ties break to the lowest submission id so the result is total-ordered.
func tallyWinner(votes []entities.Vote, weights [entities.RankedChoices]uint64) uint64 {
	scores := make(map[uint64]score)
	for _, vote := range votes {
		for rank, submissionID := range vote.Ranked {
			acc := scores[submissionID]
			hi, lo := bits.Mul64(weights[rank], vote.Stake)
			var carry uint64
			acc.lo, carry = bits.Add64(acc.lo, lo, 0)
			acc.hi += hi + carry
			scores[submissionID] = acc
		}
	}

	ids := make([]uint64, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var winner uint64
	var best score
	for _, id := range ids {
		if best.less(scores[id]) {
			winner = id
			best = scores[id]
		}
	}
	return winner
}

// correctVoterStakes collects the stake of every voter whose first choice
// matched the winning submission.
func correctVoterStakes(votes []entities.Vote, winner uint64) (map[string]uint64, uint64) {
	stakes := make(map[string]uint64)
	var total uint64
	for _, vote := range votes {
		if vote.Ranked[0] == winner {
			stakes[vote.Voter] += vote.Stake
			total += vote.Stake
		}
	}
	return stakes, total
}

// mulDiv computes amount*num/den through a 128-bit intermediate so large
// stake-inflated pools never wrap uint64. Callers must keep num <= den,
// which holds for percentage splits and pro-rata stake shares and keeps
// the quotient inside uint64.
func mulDiv(amount, num, den uint64) uint64 {
	hi, lo := bits.Mul64(amount, num)
	quo, _ := bits.Div64(hi, lo, den)
	return quo
}
