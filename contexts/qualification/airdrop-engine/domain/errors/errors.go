package errors

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid airdrop input")
	ErrEscrowMismatch      = errors.New("escrow must equal per-qualifier times max qualifiers")
	ErrAmountTooLarge      = errors.New("escrow amount exceeds the supported maximum")
	ErrDeadlineNotFuture   = errors.New("deadline must be in the future")
	ErrQualifierBound      = errors.New("max qualifiers outside allowed bound")
	ErrAirdropNotFound     = errors.New("airdrop not found")
	ErrEntryNotFound       = errors.New("entry not found")
	ErrAirdropNotActive    = errors.New("airdrop is not active")
	ErrDuplicateEntry      = errors.New("solver already entered this airdrop")
	ErrNotVerifier         = errors.New("caller is not an authorized verifier")
	ErrNotOwner            = errors.New("caller is not the contract owner")
	ErrNotAuthorized       = errors.New("caller may not finalize this airdrop")
	ErrNotCreator          = errors.New("caller is not the airdrop creator")
	ErrEntryAlreadyDecided = errors.New("entry already verified")
	ErrInvalidStatus       = errors.New("verification status must be approved or rejected")
	ErrAlreadyResolved     = errors.New("airdrop already resolved or cancelled")
	ErrNotFinalizable      = errors.New("airdrop is neither past deadline nor at capacity")
	ErrHasApprovedEntries  = errors.New("has approved entries")
)
