package application

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	"quinty/contexts/qualification/airdrop-engine/domain/entities"
	domainerrors "quinty/contexts/qualification/airdrop-engine/domain/errors"
	"quinty/contexts/qualification/airdrop-engine/ports"
	"quinty/internal/shared/ledger"
)

const entityAirdrop = "airdrop"

// Service runs qualification campaigns: verifier-gated approval of entries
// against a fixed per-qualifier escrow, with auto-finalization at capacity.
type Service struct {
	Repo      ports.AirdropRepository
	Verifiers ports.VerifierSet
	Funds     ports.Funds
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	Sequence  ports.Sequence
	Guard     ports.ReentrancyGuard
	// Owner is the address allowed to manage the verifier set.
	Owner  string
	Logger *slog.Logger
}

type CreateAirdropCommand struct {
	Creator         string
	Title           string
	DescriptionRef  string
	PerQualifier    uint64
	MaxQualifiers   uint64
	Deadline        time.Time
	RequirementsRef string
	Value           uint64
}

func (s Service) CreateAirdrop(ctx context.Context, cmd CreateAirdropCommand) (entities.Airdrop, error) {
	if err := s.Guard.Enter(); err != nil {
		return entities.Airdrop{}, err
	}
	defer s.Guard.Exit()

	creator := strings.TrimSpace(cmd.Creator)
	title := strings.TrimSpace(cmd.Title)
	if creator == "" || title == "" {
		return entities.Airdrop{}, domainerrors.ErrInvalidInput
	}
	if cmd.PerQualifier == 0 {
		return entities.Airdrop{}, domainerrors.ErrInvalidInput
	}
	if cmd.MaxQualifiers == 0 || cmd.MaxQualifiers > entities.MaxQualifierBound {
		return entities.Airdrop{}, domainerrors.ErrQualifierBound
	}
	// The escrow product must stay inside uint64 or the mismatch check
	// below compares against a wrapped value.
	if cmd.PerQualifier > math.MaxUint64/cmd.MaxQualifiers {
		return entities.Airdrop{}, domainerrors.ErrAmountTooLarge
	}
	if cmd.Value != cmd.PerQualifier*cmd.MaxQualifiers {
		return entities.Airdrop{}, domainerrors.ErrEscrowMismatch
	}
	now := s.now()
	if !cmd.Deadline.After(now) {
		return entities.Airdrop{}, domainerrors.ErrDeadlineNotFuture
	}

	airdrop := entities.Airdrop{
		AirdropID:       s.Sequence.NextID(entityAirdrop),
		Creator:         creator,
		Title:           title,
		DescriptionRef:  strings.TrimSpace(cmd.DescriptionRef),
		PerQualifier:    cmd.PerQualifier,
		MaxQualifiers:   cmd.MaxQualifiers,
		Deadline:        cmd.Deadline.UTC(),
		CreatedAt:       now,
		RequirementsRef: strings.TrimSpace(cmd.RequirementsRef),
	}
	if err := s.Funds.Escrow(ledger.AirdropEscrowPool(airdrop.AirdropID), cmd.Value); err != nil {
		return entities.Airdrop{}, err
	}
	if err := s.Repo.SaveAirdrop(ctx, airdrop); err != nil {
		return entities.Airdrop{}, err
	}
	if err := s.appendEvent(ctx, "airdrop.created", airdrop.AirdropID, creator, map[string]any{
		"title":          airdrop.Title,
		"per_qualifier":  airdrop.PerQualifier,
		"max_qualifiers": airdrop.MaxQualifiers,
		"deadline":       airdrop.Deadline,
	}); err != nil {
		return entities.Airdrop{}, err
	}

	ResolveLogger(s.Logger).Info("airdrop created",
		"event", "airdrop_created",
		"module", "qualification/airdrop-engine",
		"layer", "application",
		"airdrop_id", airdrop.AirdropID,
		"creator", creator,
		"escrow", airdrop.EscrowTotal(),
	)
	return airdrop, nil
}

type SubmitEntryCommand struct {
	AirdropID uint64
	Solver    string
	ProofRef  string
}

func (s Service) SubmitEntry(ctx context.Context, cmd SubmitEntryCommand) (entities.Entry, error) {
	solver := strings.TrimSpace(cmd.Solver)
	proof := strings.TrimSpace(cmd.ProofRef)
	if solver == "" || proof == "" {
		return entities.Entry{}, domainerrors.ErrInvalidInput
	}
	airdrop, err := s.Repo.GetAirdrop(ctx, cmd.AirdropID)
	if err != nil {
		return entities.Entry{}, err
	}
	if !airdrop.Active(s.now()) {
		return entities.Entry{}, domainerrors.ErrAirdropNotActive
	}
	if _, exists, err := s.Repo.GetEntryBySolver(ctx, airdrop.AirdropID, solver); err != nil {
		return entities.Entry{}, err
	} else if exists {
		return entities.Entry{}, domainerrors.ErrDuplicateEntry
	}

	entry := entities.Entry{
		EntryID:   s.Sequence.NextID("entry"),
		AirdropID: airdrop.AirdropID,
		Solver:    solver,
		ProofRef:  proof,
		CreatedAt: s.now(),
		Status:    entities.EntryStatusPending,
	}
	if err := s.Repo.SaveEntry(ctx, entry); err != nil {
		return entities.Entry{}, err
	}
	if err := s.appendEvent(ctx, "airdrop.entry_submitted", airdrop.AirdropID, solver, map[string]any{
		"entry_id":  entry.EntryID,
		"proof_ref": entry.ProofRef,
	}); err != nil {
		return entities.Entry{}, err
	}
	return entry, nil
}

type VerifyEntryCommand struct {
	AirdropID uint64
	EntryID   uint64
	Caller    string
	Status    entities.EntryStatus
	Feedback  string
}

// VerifyEntry decides a pending entry. Reaching capacity finalizes the
// airdrop within the same call.
func (s Service) VerifyEntry(ctx context.Context, cmd VerifyEntryCommand) (entities.Entry, error) {
	if err := s.Guard.Enter(); err != nil {
		return entities.Entry{}, err
	}
	defer s.Guard.Exit()
	return s.verifyEntryLocked(ctx, cmd)
}

// VerifyMultipleEntries applies one decision batch atomically per entry; the
// first failing entry aborts the remainder of the batch.
func (s Service) VerifyMultipleEntries(ctx context.Context, cmds []VerifyEntryCommand) ([]entities.Entry, error) {
	if err := s.Guard.Enter(); err != nil {
		return nil, err
	}
	defer s.Guard.Exit()

	decided := make([]entities.Entry, 0, len(cmds))
	for _, cmd := range cmds {
		entry, err := s.verifyEntryLocked(ctx, cmd)
		if err != nil {
			return decided, err
		}
		decided = append(decided, entry)
	}
	return decided, nil
}

func (s Service) verifyEntryLocked(ctx context.Context, cmd VerifyEntryCommand) (entities.Entry, error) {
	caller := strings.TrimSpace(cmd.Caller)
	if caller == "" {
		return entities.Entry{}, domainerrors.ErrInvalidInput
	}
	if cmd.Status != entities.EntryStatusApproved && cmd.Status != entities.EntryStatusRejected {
		return entities.Entry{}, domainerrors.ErrInvalidStatus
	}
	authorized, err := s.Verifiers.IsVerifier(ctx, caller)
	if err != nil {
		return entities.Entry{}, err
	}
	if !authorized {
		return entities.Entry{}, domainerrors.ErrNotVerifier
	}
	airdrop, err := s.Repo.GetAirdrop(ctx, cmd.AirdropID)
	if err != nil {
		return entities.Entry{}, err
	}
	if airdrop.Resolved || airdrop.Cancelled {
		return entities.Entry{}, domainerrors.ErrAlreadyResolved
	}
	entry, err := s.Repo.GetEntry(ctx, cmd.EntryID)
	if err != nil {
		return entities.Entry{}, err
	}
	if entry.AirdropID != airdrop.AirdropID {
		return entities.Entry{}, domainerrors.ErrEntryNotFound
	}
	if entry.Status != entities.EntryStatusPending {
		return entities.Entry{}, domainerrors.ErrEntryAlreadyDecided
	}

	entry.Status = cmd.Status
	entry.Feedback = strings.TrimSpace(cmd.Feedback)
	if err := s.Repo.SaveEntry(ctx, entry); err != nil {
		return entities.Entry{}, err
	}
	if cmd.Status == entities.EntryStatusApproved {
		airdrop.ApprovedCount++
		if err := s.Repo.SaveAirdrop(ctx, airdrop); err != nil {
			return entities.Entry{}, err
		}
	}
	if err := s.appendEvent(ctx, "airdrop.entry_verified", airdrop.AirdropID, caller, map[string]any{
		"entry_id": entry.EntryID,
		"solver":   entry.Solver,
		"status":   entry.Status,
		"feedback": entry.Feedback,
	}); err != nil {
		return entities.Entry{}, err
	}

	// Capacity reached: settle the campaign inside the same call.
	if cmd.Status == entities.EntryStatusApproved && airdrop.AtCapacity() {
		if _, err := s.finalizeLocked(ctx, airdrop.AirdropID, caller); err != nil {
			return entities.Entry{}, err
		}
	}
	return entry, nil
}

type FinalizeAirdropCommand struct {
	AirdropID uint64
	Caller    string
}

func (s Service) FinalizeAirdrop(ctx context.Context, cmd FinalizeAirdropCommand) (entities.Airdrop, error) {
	if err := s.Guard.Enter(); err != nil {
		return entities.Airdrop{}, err
	}
	defer s.Guard.Exit()

	caller := strings.TrimSpace(cmd.Caller)
	airdrop, err := s.Repo.GetAirdrop(ctx, cmd.AirdropID)
	if err != nil {
		return entities.Airdrop{}, err
	}
	authorized := caller == airdrop.Creator
	if !authorized {
		verifier, err := s.Verifiers.IsVerifier(ctx, caller)
		if err != nil {
			return entities.Airdrop{}, err
		}
		authorized = verifier
	}
	if !authorized {
		return entities.Airdrop{}, domainerrors.ErrNotAuthorized
	}
	return s.finalizeLocked(ctx, cmd.AirdropID, caller)
}

func (s Service) finalizeLocked(ctx context.Context, airdropID uint64, caller string) (entities.Airdrop, error) {
	airdrop, err := s.Repo.GetAirdrop(ctx, airdropID)
	if err != nil {
		return entities.Airdrop{}, err
	}
	if airdrop.Resolved || airdrop.Cancelled {
		return entities.Airdrop{}, domainerrors.ErrAlreadyResolved
	}
	now := s.now()
	if !now.After(airdrop.Deadline) && !airdrop.AtCapacity() {
		return entities.Airdrop{}, domainerrors.ErrNotFinalizable
	}
	entries, err := s.Repo.ListEntriesByAirdrop(ctx, airdrop.AirdropID)
	if err != nil {
		return entities.Airdrop{}, err
	}

	airdrop.Resolved = true
	if err := s.Repo.SaveAirdrop(ctx, airdrop); err != nil {
		return entities.Airdrop{}, err
	}
	if err := s.appendEvent(ctx, "airdrop.finalized", airdrop.AirdropID, caller, map[string]any{
		"approved_count": airdrop.ApprovedCount,
		"refund":         airdrop.PerQualifier * (airdrop.MaxQualifiers - airdrop.ApprovedCount),
	}); err != nil {
		return entities.Airdrop{}, err
	}

	// Transfers last: pay every approved entrant, refund unspent escrow.
	pool := ledger.AirdropEscrowPool(airdrop.AirdropID)
	for _, entry := range entries {
		if entry.Status != entities.EntryStatusApproved {
			continue
		}
		if err := s.Funds.Payout(pool, entry.Solver, airdrop.PerQualifier); err != nil {
			return entities.Airdrop{}, err
		}
	}
	if refund := airdrop.PerQualifier * (airdrop.MaxQualifiers - airdrop.ApprovedCount); refund > 0 {
		if err := s.Funds.Payout(pool, airdrop.Creator, refund); err != nil {
			return entities.Airdrop{}, err
		}
	}

	ResolveLogger(s.Logger).Info("airdrop finalized",
		"event", "airdrop_finalized",
		"module", "qualification/airdrop-engine",
		"layer", "application",
		"airdrop_id", airdrop.AirdropID,
		"approved_count", airdrop.ApprovedCount,
	)
	return airdrop, nil
}

type CancelAirdropCommand struct {
	AirdropID uint64
	Caller    string
}

func (s Service) CancelAirdrop(ctx context.Context, cmd CancelAirdropCommand) (entities.Airdrop, error) {
	if err := s.Guard.Enter(); err != nil {
		return entities.Airdrop{}, err
	}
	defer s.Guard.Exit()

	caller := strings.TrimSpace(cmd.Caller)
	airdrop, err := s.Repo.GetAirdrop(ctx, cmd.AirdropID)
	if err != nil {
		return entities.Airdrop{}, err
	}
	if caller != airdrop.Creator {
		return entities.Airdrop{}, domainerrors.ErrNotCreator
	}
	if airdrop.Resolved || airdrop.Cancelled {
		return entities.Airdrop{}, domainerrors.ErrAlreadyResolved
	}
	if airdrop.ApprovedCount > 0 {
		return entities.Airdrop{}, domainerrors.ErrHasApprovedEntries
	}

	airdrop.Cancelled = true
	if err := s.Repo.SaveAirdrop(ctx, airdrop); err != nil {
		return entities.Airdrop{}, err
	}
	if err := s.appendEvent(ctx, "airdrop.cancelled", airdrop.AirdropID, caller, map[string]any{
		"refund": airdrop.EscrowTotal(),
	}); err != nil {
		return entities.Airdrop{}, err
	}
	if err := s.Funds.Payout(ledger.AirdropEscrowPool(airdrop.AirdropID), airdrop.Creator, airdrop.EscrowTotal()); err != nil {
		return entities.Airdrop{}, err
	}
	return airdrop, nil
}

type AddVerifierCommand struct {
	Caller  string
	Address string
}

func (s Service) AddVerifier(ctx context.Context, cmd AddVerifierCommand) error {
	address := strings.TrimSpace(cmd.Address)
	if address == "" {
		return domainerrors.ErrInvalidInput
	}
	if strings.TrimSpace(cmd.Caller) != s.Owner {
		return domainerrors.ErrNotOwner
	}
	if err := s.Verifiers.AddVerifier(ctx, address); err != nil {
		return err
	}
	return s.appendEvent(ctx, "airdrop.verifier_added", 0, cmd.Caller, map[string]any{
		"address": address,
	})
}

func (s Service) RemoveVerifier(ctx context.Context, cmd AddVerifierCommand) error {
	address := strings.TrimSpace(cmd.Address)
	if address == "" {
		return domainerrors.ErrInvalidInput
	}
	if strings.TrimSpace(cmd.Caller) != s.Owner {
		return domainerrors.ErrNotOwner
	}
	if err := s.Verifiers.RemoveVerifier(ctx, address); err != nil {
		return err
	}
	return s.appendEvent(ctx, "airdrop.verifier_removed", 0, cmd.Caller, map[string]any{
		"address": address,
	})
}

func (s Service) ListVerifiers(ctx context.Context) ([]string, error) {
	return s.Verifiers.ListVerifiers(ctx)
}

func (s Service) GetAirdrop(ctx context.Context, airdropID uint64) (entities.Airdrop, error) {
	return s.Repo.GetAirdrop(ctx, airdropID)
}

func (s Service) ListAirdrops(ctx context.Context) ([]entities.Airdrop, error) {
	return s.Repo.ListAirdrops(ctx)
}

func (s Service) CountAirdrops(ctx context.Context) (uint64, error) {
	return s.Repo.CountAirdrops(ctx)
}

func (s Service) GetEntry(ctx context.Context, entryID uint64) (entities.Entry, error) {
	return s.Repo.GetEntry(ctx, entryID)
}

func (s Service) ListEntries(ctx context.Context, airdropID uint64) ([]entities.Entry, error) {
	if _, err := s.Repo.GetAirdrop(ctx, airdropID); err != nil {
		return nil, err
	}
	return s.Repo.ListEntriesByAirdrop(ctx, airdropID)
}

// GetAirdropStats is the aggregate read view of a campaign.
func (s Service) GetAirdropStats(ctx context.Context, airdropID uint64) (entities.Stats, error) {
	airdrop, err := s.Repo.GetAirdrop(ctx, airdropID)
	if err != nil {
		return entities.Stats{}, err
	}
	entries, err := s.Repo.ListEntriesByAirdrop(ctx, airdropID)
	if err != nil {
		return entities.Stats{}, err
	}
	stats := entities.Stats{
		Total:          len(entries),
		RemainingSlots: airdrop.MaxQualifiers - airdrop.ApprovedCount,
	}
	for _, entry := range entries {
		switch entry.Status {
		case entities.EntryStatusPending:
			stats.Pending++
		case entities.EntryStatusApproved:
			stats.Approved++
		case entities.EntryStatusRejected:
			stats.Rejected++
		}
	}
	return stats, nil
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}
