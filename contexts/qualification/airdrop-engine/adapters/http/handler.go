package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"quinty/contexts/qualification/airdrop-engine/application"
	"quinty/contexts/qualification/airdrop-engine/domain/entities"
	domainerrors "quinty/contexts/qualification/airdrop-engine/domain/errors"
	httptransport "quinty/contexts/qualification/airdrop-engine/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) CreateAirdropHandler(ctx context.Context, caller string, req httptransport.CreateAirdropRequest) (httptransport.AirdropResponse, error) {
	deadline, err := time.Parse(time.RFC3339, req.Deadline)
	if err != nil {
		return httptransport.AirdropResponse{}, domainerrors.ErrInvalidInput
	}
	airdrop, err := h.Service.CreateAirdrop(ctx, application.CreateAirdropCommand{
		Creator:         caller,
		Title:           req.Title,
		DescriptionRef:  req.DescriptionRef,
		PerQualifier:    req.PerQualifier,
		MaxQualifiers:   req.MaxQualifiers,
		Deadline:        deadline,
		RequirementsRef: req.RequirementsRef,
		Value:           req.Value,
	})
	if err != nil {
		return httptransport.AirdropResponse{}, err
	}
	return httptransport.AirdropResponse{Status: "success", Data: toAirdropDTO(airdrop)}, nil
}

func (h Handler) SubmitEntryHandler(ctx context.Context, caller string, airdropID uint64, req httptransport.SubmitEntryRequest) (httptransport.EntryResponse, error) {
	entry, err := h.Service.SubmitEntry(ctx, application.SubmitEntryCommand{
		AirdropID: airdropID,
		Solver:    caller,
		ProofRef:  req.ProofRef,
	})
	if err != nil {
		return httptransport.EntryResponse{}, err
	}
	return httptransport.EntryResponse{Status: "success", Data: toEntryDTO(entry)}, nil
}

func (h Handler) VerifyEntryHandler(ctx context.Context, caller string, airdropID uint64, req httptransport.VerifyEntryRequest) (httptransport.EntryResponse, error) {
	entry, err := h.Service.VerifyEntry(ctx, application.VerifyEntryCommand{
		AirdropID: airdropID,
		EntryID:   req.EntryID,
		Caller:    caller,
		Status:    entities.EntryStatus(req.Status),
		Feedback:  req.Feedback,
	})
	if err != nil {
		return httptransport.EntryResponse{}, err
	}
	return httptransport.EntryResponse{Status: "success", Data: toEntryDTO(entry)}, nil
}

func (h Handler) VerifyEntriesHandler(ctx context.Context, caller string, airdropID uint64, req httptransport.VerifyEntriesRequest) (httptransport.EntryListResponse, error) {
	cmds := make([]application.VerifyEntryCommand, 0, len(req.Decisions))
	for _, decision := range req.Decisions {
		cmds = append(cmds, application.VerifyEntryCommand{
			AirdropID: airdropID,
			EntryID:   decision.EntryID,
			Caller:    caller,
			Status:    entities.EntryStatus(decision.Status),
			Feedback:  decision.Feedback,
		})
	}
	decided, err := h.Service.VerifyMultipleEntries(ctx, cmds)
	if err != nil {
		return httptransport.EntryListResponse{}, err
	}
	resp := httptransport.EntryListResponse{Status: "success", Data: make([]httptransport.EntryDTO, 0, len(decided))}
	for _, entry := range decided {
		resp.Data = append(resp.Data, toEntryDTO(entry))
	}
	return resp, nil
}

func (h Handler) FinalizeAirdropHandler(ctx context.Context, caller string, airdropID uint64) (httptransport.AirdropResponse, error) {
	airdrop, err := h.Service.FinalizeAirdrop(ctx, application.FinalizeAirdropCommand{
		AirdropID: airdropID,
		Caller:    caller,
	})
	if err != nil {
		return httptransport.AirdropResponse{}, err
	}
	return httptransport.AirdropResponse{Status: "success", Data: toAirdropDTO(airdrop)}, nil
}

func (h Handler) CancelAirdropHandler(ctx context.Context, caller string, airdropID uint64) (httptransport.AirdropResponse, error) {
	airdrop, err := h.Service.CancelAirdrop(ctx, application.CancelAirdropCommand{
		AirdropID: airdropID,
		Caller:    caller,
	})
	if err != nil {
		return httptransport.AirdropResponse{}, err
	}
	return httptransport.AirdropResponse{Status: "success", Data: toAirdropDTO(airdrop)}, nil
}

func (h Handler) AddVerifierHandler(ctx context.Context, caller string, req httptransport.VerifierRequest) (httptransport.AckResponse, error) {
	if err := h.Service.AddVerifier(ctx, application.AddVerifierCommand{Caller: caller, Address: req.Address}); err != nil {
		return httptransport.AckResponse{}, err
	}
	return httptransport.AckResponse{Status: "success"}, nil
}

func (h Handler) RemoveVerifierHandler(ctx context.Context, caller string, req httptransport.VerifierRequest) (httptransport.AckResponse, error) {
	if err := h.Service.RemoveVerifier(ctx, application.AddVerifierCommand{Caller: caller, Address: req.Address}); err != nil {
		return httptransport.AckResponse{}, err
	}
	return httptransport.AckResponse{Status: "success"}, nil
}

func (h Handler) ListVerifiersHandler(ctx context.Context) (httptransport.VerifierListResponse, error) {
	verifiers, err := h.Service.ListVerifiers(ctx)
	if err != nil {
		return httptransport.VerifierListResponse{}, err
	}
	return httptransport.VerifierListResponse{Status: "success", Data: verifiers}, nil
}

func (h Handler) GetAirdropHandler(ctx context.Context, airdropID uint64) (httptransport.AirdropResponse, error) {
	airdrop, err := h.Service.GetAirdrop(ctx, airdropID)
	if err != nil {
		return httptransport.AirdropResponse{}, err
	}
	return httptransport.AirdropResponse{Status: "success", Data: toAirdropDTO(airdrop)}, nil
}

func (h Handler) ListAirdropsHandler(ctx context.Context) (httptransport.AirdropListResponse, error) {
	airdrops, err := h.Service.ListAirdrops(ctx)
	if err != nil {
		return httptransport.AirdropListResponse{}, err
	}
	resp := httptransport.AirdropListResponse{Status: "success", Data: make([]httptransport.AirdropDTO, 0, len(airdrops))}
	for _, airdrop := range airdrops {
		resp.Data = append(resp.Data, toAirdropDTO(airdrop))
	}
	return resp, nil
}

func (h Handler) ListEntriesHandler(ctx context.Context, airdropID uint64) (httptransport.EntryListResponse, error) {
	entries, err := h.Service.ListEntries(ctx, airdropID)
	if err != nil {
		return httptransport.EntryListResponse{}, err
	}
	resp := httptransport.EntryListResponse{Status: "success", Data: make([]httptransport.EntryDTO, 0, len(entries))}
	for _, entry := range entries {
		resp.Data = append(resp.Data, toEntryDTO(entry))
	}
	return resp, nil
}

func (h Handler) GetStatsHandler(ctx context.Context, airdropID uint64) (httptransport.StatsResponse, error) {
	stats, err := h.Service.GetAirdropStats(ctx, airdropID)
	if err != nil {
		return httptransport.StatsResponse{}, err
	}
	return httptransport.StatsResponse{Status: "success", Data: httptransport.StatsDTO{
		Total:          stats.Total,
		Pending:        stats.Pending,
		Approved:       stats.Approved,
		Rejected:       stats.Rejected,
		RemainingSlots: stats.RemainingSlots,
	}}, nil
}

func toAirdropDTO(airdrop entities.Airdrop) httptransport.AirdropDTO {
	return httptransport.AirdropDTO{
		AirdropID:       airdrop.AirdropID,
		Creator:         airdrop.Creator,
		Title:           airdrop.Title,
		DescriptionRef:  airdrop.DescriptionRef,
		PerQualifier:    airdrop.PerQualifier,
		MaxQualifiers:   airdrop.MaxQualifiers,
		EscrowTotal:     airdrop.EscrowTotal(),
		Deadline:        airdrop.Deadline.Format(time.RFC3339),
		ApprovedCount:   airdrop.ApprovedCount,
		Resolved:        airdrop.Resolved,
		Cancelled:       airdrop.Cancelled,
		RequirementsRef: airdrop.RequirementsRef,
		CreatedAt:       airdrop.CreatedAt.Format(time.RFC3339),
	}
}

func toEntryDTO(entry entities.Entry) httptransport.EntryDTO {
	return httptransport.EntryDTO{
		EntryID:   entry.EntryID,
		AirdropID: entry.AirdropID,
		Solver:    entry.Solver,
		ProofRef:  entry.ProofRef,
		Status:    string(entry.Status),
		Feedback:  entry.Feedback,
		CreatedAt: entry.CreatedAt.Format(time.RFC3339),
	}
}
