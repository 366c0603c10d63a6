package errors

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid bounty input")
	ErrZeroEscrow            = errors.New("escrow amount is zero")
	ErrAmountTooLarge        = errors.New("escrow amount exceeds the supported maximum")
	ErrDeadlineNotFuture     = errors.New("deadline must be in the future")
	ErrSlashPercentOutOfBand = errors.New("slash percent outside allowed range")
	ErrSharesDoNotSum        = errors.New("winner shares must sum to 10000 basis points")
	ErrBountyNotFound        = errors.New("bounty not found")
	ErrSubmissionNotFound    = errors.New("submission not found")
	ErrBountyNotOpen         = errors.New("bounty is not open")
	ErrBountyResolved        = errors.New("bounty already resolved")
	ErrDeadlinePassed        = errors.New("bounty deadline has passed")
	ErrDeadlineNotPassed     = errors.New("bounty deadline has not passed")
	ErrWrongDeposit          = errors.New("deposit must equal one tenth of the bounty amount")
	ErrNotCreator            = errors.New("caller is not the bounty creator")
	ErrNotParticipant        = errors.New("caller is neither the solver nor the creator")
	ErrNotSolver             = errors.New("caller is not the submission solver")
	ErrWinnerMismatch        = errors.New("winner does not match submission solver")
	ErrAlreadyRevealed       = errors.New("solution already revealed")
	ErrNotResolved           = errors.New("bounty is not resolved")
	ErrDisputesUnavailable   = errors.New("dispute engine is not wired")
)
