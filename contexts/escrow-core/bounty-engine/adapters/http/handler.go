package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"quinty/contexts/escrow-core/bounty-engine/application"
	"quinty/contexts/escrow-core/bounty-engine/domain/entities"
	domainerrors "quinty/contexts/escrow-core/bounty-engine/domain/errors"
	httptransport "quinty/contexts/escrow-core/bounty-engine/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) CreateBountyHandler(ctx context.Context, caller string, req httptransport.CreateBountyRequest) (httptransport.BountyResponse, error) {
	deadline, err := time.Parse(time.RFC3339, req.Deadline)
	if err != nil {
		return httptransport.BountyResponse{}, domainerrors.ErrInvalidInput
	}
	bounty, err := h.Service.CreateBounty(ctx, application.CreateBountyCommand{
		Creator:        caller,
		ContentRef:     req.ContentRef,
		Deadline:       deadline,
		MultiWinner:    req.MultiWinner,
		WinnerSharesBP: req.WinnerSharesBP,
		SlashBP:        req.SlashBP,
		Value:          req.Value,
	})
	if err != nil {
		return httptransport.BountyResponse{}, err
	}
	return httptransport.BountyResponse{Status: "success", Data: toBountyDTO(bounty)}, nil
}

func (h Handler) SubmitSolutionHandler(ctx context.Context, caller string, bountyID uint64, req httptransport.SubmitSolutionRequest) (httptransport.SubmissionResponse, error) {
	submission, err := h.Service.SubmitSolution(ctx, application.SubmitSolutionCommand{
		BountyID:   bountyID,
		Solver:     caller,
		BlindedRef: req.BlindedRef,
		Value:      req.Value,
	})
	if err != nil {
		return httptransport.SubmissionResponse{}, err
	}
	return httptransport.SubmissionResponse{Status: "success", Data: toSubmissionDTO(submission)}, nil
}

func (h Handler) AddReplyHandler(ctx context.Context, caller string, bountyID uint64, req httptransport.AddReplyRequest) (httptransport.SubmissionResponse, error) {
	submission, err := h.Service.AddReply(ctx, application.AddReplyCommand{
		BountyID:     bountyID,
		SubmissionID: req.SubmissionID,
		Caller:       caller,
		Content:      req.Content,
	})
	if err != nil {
		return httptransport.SubmissionResponse{}, err
	}
	return httptransport.SubmissionResponse{Status: "success", Data: toSubmissionDTO(submission)}, nil
}

func (h Handler) SelectWinnersHandler(ctx context.Context, caller string, bountyID uint64, req httptransport.SelectWinnersRequest) (httptransport.BountyResponse, error) {
	bounty, err := h.Service.SelectWinners(ctx, application.SelectWinnersCommand{
		BountyID:      bountyID,
		Caller:        caller,
		Winners:       req.Winners,
		SubmissionIDs: req.SubmissionIDs,
	})
	if err != nil {
		return httptransport.BountyResponse{}, err
	}
	return httptransport.BountyResponse{Status: "success", Data: toBountyDTO(bounty)}, nil
}

func (h Handler) RevealSolutionHandler(ctx context.Context, caller string, bountyID uint64, req httptransport.RevealSolutionRequest) (httptransport.SubmissionResponse, error) {
	submission, err := h.Service.RevealSolution(ctx, application.RevealSolutionCommand{
		BountyID:     bountyID,
		SubmissionID: req.SubmissionID,
		Caller:       caller,
		RevealRef:    req.RevealRef,
	})
	if err != nil {
		return httptransport.SubmissionResponse{}, err
	}
	return httptransport.SubmissionResponse{Status: "success", Data: toSubmissionDTO(submission)}, nil
}

func (h Handler) TriggerSlashHandler(ctx context.Context, caller string, bountyID uint64) (httptransport.SlashResponse, error) {
	result, err := h.Service.TriggerSlash(ctx, application.TriggerSlashCommand{
		BountyID: bountyID,
		Caller:   caller,
	})
	if err != nil {
		return httptransport.SlashResponse{}, err
	}
	resp := httptransport.SlashResponse{Status: "success"}
	resp.Data.BountyID = result.Bounty.BountyID
	resp.Data.DisputeID = result.DisputeID
	resp.Data.SlashAmount = result.SlashAmount
	return resp, nil
}

func (h Handler) GetBountyHandler(ctx context.Context, bountyID uint64) (httptransport.BountyResponse, error) {
	bounty, err := h.Service.GetBounty(ctx, bountyID)
	if err != nil {
		return httptransport.BountyResponse{}, err
	}
	return httptransport.BountyResponse{Status: "success", Data: toBountyDTO(bounty)}, nil
}

func (h Handler) ListBountiesHandler(ctx context.Context) (httptransport.BountyListResponse, error) {
	bounties, err := h.Service.ListBounties(ctx)
	if err != nil {
		return httptransport.BountyListResponse{}, err
	}
	resp := httptransport.BountyListResponse{Status: "success", Data: make([]httptransport.BountyDTO, 0, len(bounties))}
	for _, bounty := range bounties {
		resp.Data = append(resp.Data, toBountyDTO(bounty))
	}
	return resp, nil
}

func (h Handler) ListSubmissionsHandler(ctx context.Context, bountyID uint64) (httptransport.SubmissionListResponse, error) {
	submissions, err := h.Service.ListSubmissions(ctx, bountyID)
	if err != nil {
		return httptransport.SubmissionListResponse{}, err
	}
	resp := httptransport.SubmissionListResponse{Status: "success", Data: make([]httptransport.SubmissionDTO, 0, len(submissions))}
	for _, submission := range submissions {
		resp.Data = append(resp.Data, toSubmissionDTO(submission))
	}
	return resp, nil
}

func toBountyDTO(bounty entities.Bounty) httptransport.BountyDTO {
	dto := httptransport.BountyDTO{
		BountyID:       bounty.BountyID,
		Creator:        bounty.Creator,
		ContentRef:     bounty.ContentRef,
		Amount:         bounty.Amount,
		Deadline:       bounty.Deadline.Format(time.RFC3339),
		MultiWinner:    bounty.MultiWinner,
		WinnerSharesBP: bounty.WinnerSharesBP,
		SlashBP:        bounty.SlashBP,
		Status:         string(bounty.Status),
		Winners:        bounty.Winners,
		SubmissionIDs:  bounty.WinningSubIDs,
		CreatedAt:      bounty.CreatedAt.Format(time.RFC3339),
	}
	if !bounty.ResolvedAt.IsZero() {
		dto.ResolvedAt = bounty.ResolvedAt.Format(time.RFC3339)
	}
	return dto
}

func toSubmissionDTO(submission entities.Submission) httptransport.SubmissionDTO {
	dto := httptransport.SubmissionDTO{
		SubmissionID: submission.SubmissionID,
		BountyID:     submission.BountyID,
		Solver:       submission.Solver,
		BlindedRef:   submission.BlindedRef,
		Deposit:      submission.Deposit,
		RevealRef:    submission.RevealRef,
		Revealed:     submission.Revealed,
		CreatedAt:    submission.CreatedAt.Format(time.RFC3339),
	}
	for _, reply := range submission.Replies {
		dto.Replies = append(dto.Replies, httptransport.ReplyDTO{
			Replier:   reply.Replier,
			Content:   reply.Content,
			CreatedAt: reply.CreatedAt.Format(time.RFC3339),
		})
	}
	return dto
}
