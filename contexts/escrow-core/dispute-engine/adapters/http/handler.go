package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"quinty/contexts/escrow-core/dispute-engine/application"
	"quinty/contexts/escrow-core/dispute-engine/domain/entities"
	httptransport "quinty/contexts/escrow-core/dispute-engine/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) InitiatePengadilanHandler(ctx context.Context, caller string, req httptransport.InitiatePengadilanRequest) (httptransport.DisputeResponse, error) {
	dispute, err := h.Service.InitiatePengadilan(ctx, application.InitiatePengadilanCommand{
		BountyID: req.BountyID,
		Caller:   caller,
		Value:    req.Value,
	})
	if err != nil {
		return httptransport.DisputeResponse{}, err
	}
	return httptransport.DisputeResponse{Status: "success", Data: toDisputeDTO(dispute)}, nil
}

func (h Handler) VoteHandler(ctx context.Context, caller string, disputeID uint64, req httptransport.VoteRequest) (httptransport.DisputeResponse, error) {
	dispute, err := h.Service.Vote(ctx, application.VoteCommand{
		DisputeID: disputeID,
		Voter:     caller,
		Ranked:    req.Ranked,
		Value:     req.Value,
	})
	if err != nil {
		return httptransport.DisputeResponse{}, err
	}
	return httptransport.DisputeResponse{Status: "success", Data: toDisputeDTO(dispute)}, nil
}

func (h Handler) ResolveDisputeHandler(ctx context.Context, caller string, disputeID uint64) (httptransport.ResolutionResponse, error) {
	resolution, err := h.Service.ResolveDispute(ctx, application.ResolveDisputeCommand{
		DisputeID: disputeID,
		Caller:    caller,
	})
	if err != nil {
		return httptransport.ResolutionResponse{}, err
	}
	resp := httptransport.ResolutionResponse{Status: "success"}
	resp.Data.DisputeID = resolution.Dispute.DisputeID
	resp.Data.WinningSubID = resolution.WinningSubID
	resp.Data.Overturned = resolution.Overturned
	for _, payout := range resolution.Payouts {
		resp.Data.Payouts = append(resp.Data.Payouts, httptransport.PayoutDTO{
			To:     payout.To,
			Amount: payout.Amount,
			Reason: payout.Reason,
		})
	}
	return resp, nil
}

func (h Handler) GetDisputeHandler(ctx context.Context, disputeID uint64) (httptransport.DisputeResponse, error) {
	dispute, err := h.Service.GetDispute(ctx, disputeID)
	if err != nil {
		return httptransport.DisputeResponse{}, err
	}
	return httptransport.DisputeResponse{Status: "success", Data: toDisputeDTO(dispute)}, nil
}

func (h Handler) ListDisputesHandler(ctx context.Context) (httptransport.DisputeListResponse, error) {
	disputes, err := h.Service.ListDisputes(ctx)
	if err != nil {
		return httptransport.DisputeListResponse{}, err
	}
	resp := httptransport.DisputeListResponse{Status: "success", Data: make([]httptransport.DisputeDTO, 0, len(disputes))}
	for _, dispute := range disputes {
		resp.Data = append(resp.Data, toDisputeDTO(dispute))
	}
	return resp, nil
}

func (h Handler) TreasuryHandler(_ context.Context) httptransport.TreasuryResponse {
	resp := httptransport.TreasuryResponse{Status: "success"}
	resp.Data.Balance = h.Service.TreasuryBalance()
	return resp
}

func toDisputeDTO(dispute entities.Dispute) httptransport.DisputeDTO {
	dto := httptransport.DisputeDTO{
		DisputeID:      dispute.DisputeID,
		BountyID:       dispute.BountyID,
		Kind:           string(dispute.Kind),
		AmountAtStake:  dispute.AmountAtStake,
		VotingDeadline: dispute.VotingDeadline.Format(time.RFC3339),
		Resolved:       dispute.Resolved,
		WinningSubID:   dispute.WinningSubID,
		Overturned:     dispute.Overturned,
		CreatedAt:      dispute.CreatedAt.Format(time.RFC3339),
	}
	for _, vote := range dispute.Votes {
		dto.Votes = append(dto.Votes, httptransport.VoteDTO{
			Voter:     vote.Voter,
			Stake:     vote.Stake,
			Ranked:    vote.Ranked[:],
			CreatedAt: vote.CreatedAt.Format(time.RFC3339),
		})
	}
	return dto
}
