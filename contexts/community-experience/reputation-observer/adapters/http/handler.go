package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"quinty/contexts/community-experience/reputation-observer/application"
	"quinty/contexts/community-experience/reputation-observer/domain/entities"
	httptransport "quinty/contexts/community-experience/reputation-observer/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) GetProfileHandler(ctx context.Context, address string) (httptransport.ProfileResponse, error) {
	profile, err := h.Service.GetProfile(ctx, address)
	if err != nil {
		return httptransport.ProfileResponse{}, err
	}
	return httptransport.ProfileResponse{Status: "success", Data: toProfileDTO(profile)}, nil
}

func (h Handler) LeaderboardHandler(ctx context.Context, limit int) (httptransport.LeaderboardResponse, error) {
	profiles, err := h.Service.Leaderboard(ctx, limit)
	if err != nil {
		return httptransport.LeaderboardResponse{}, err
	}
	resp := httptransport.LeaderboardResponse{Status: "success", Data: make([]httptransport.ProfileDTO, 0, len(profiles))}
	for _, profile := range profiles {
		resp.Data = append(resp.Data, toProfileDTO(profile))
	}
	return resp, nil
}

func toProfileDTO(profile entities.Profile) httptransport.ProfileDTO {
	return httptransport.ProfileDTO{
		Address:          profile.Address,
		BountiesCreated:  profile.BountiesCreated,
		SolutionsOffered: profile.SolutionsOffered,
		BountiesWon:      profile.BountiesWon,
		FirstSeenAt:      profile.FirstSeenAt.Format(time.RFC3339),
		LastActivityAt:   profile.LastActivityAt.Format(time.RFC3339),
	}
}
