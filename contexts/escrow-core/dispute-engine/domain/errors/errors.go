package errors

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid dispute input")
	ErrDisputeNotFound     = errors.New("dispute not found")
	ErrBountyNotEligible   = errors.New("bounty is not eligible for this dispute kind")
	ErrNotCreator          = errors.New("caller is not the bounty creator")
	ErrContestWindowClosed = errors.New("contest window has closed")
	ErrAlreadyContested    = errors.New("bounty already contested")
	ErrWrongStakeAmount    = errors.New("stake must equal the full bounty amount")
	ErrStakeTooLow         = errors.New("stake below minimum")
	ErrVotingClosed        = errors.New("voting window has elapsed")
	ErrVotingStillOpen     = errors.New("voting window has not elapsed")
	ErrInvalidRanking      = errors.New("ranking must be three distinct in-range submission ids")
	ErrAlreadyVoted        = errors.New("voter already voted on this dispute")
	ErrAlreadyResolved     = errors.New("dispute already resolved")
	ErrNoVotes             = errors.New("no votes cast")
)
