package application

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"quinty/contexts/community-experience/reputation-observer/domain/entities"
	domainerrors "quinty/contexts/community-experience/reputation-observer/domain/errors"
	"quinty/contexts/community-experience/reputation-observer/ports"
)

// Service tallies bounty lifecycle milestones per address. It sits behind the
// bounty engine's notifier port, so every method must stay cheap and must not
// reach back into escrow state.
type Service struct {
	Repo   ports.ProfileRepository
	Clock  ports.Clock
	Logger *slog.Logger
}

func (s Service) BountyCreated(ctx context.Context, creator string, bountyID uint64) error {
	return s.record(ctx, creator, "bounty_created", bountyID, func(profile *entities.Profile) {
		profile.BountiesCreated++
	})
}

func (s Service) SolutionSubmitted(ctx context.Context, solver string, bountyID, submissionID uint64) error {
	return s.record(ctx, solver, "solution_submitted", bountyID, func(profile *entities.Profile) {
		profile.SolutionsOffered++
	})
}

func (s Service) WinnerSelected(ctx context.Context, winner string, bountyID uint64) error {
	return s.record(ctx, winner, "winner_selected", bountyID, func(profile *entities.Profile) {
		profile.BountiesWon++
	})
}

func (s Service) record(ctx context.Context, address, milestone string, bountyID uint64, apply func(*entities.Profile)) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return domainerrors.ErrInvalidInput
	}
	now := s.now()
	profile, err := s.Repo.GetProfile(ctx, address)
	if err != nil {
		profile = entities.Profile{Address: address, FirstSeenAt: now}
	}
	apply(&profile)
	profile.LastActivityAt = now
	if err := s.Repo.SaveProfile(ctx, profile); err != nil {
		return err
	}
	ResolveLogger(s.Logger).Info("milestone recorded",
		"event", "reputation_milestone",
		"module", "community-experience/reputation-observer",
		"layer", "application",
		"milestone", milestone,
		"address", address,
		"bounty_id", bountyID,
	)
	return nil
}

func (s Service) GetProfile(ctx context.Context, address string) (entities.Profile, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return entities.Profile{}, domainerrors.ErrInvalidInput
	}
	return s.Repo.GetProfile(ctx, address)
}

// Leaderboard ranks profiles by wins, then created bounties, then address.
func (s Service) Leaderboard(ctx context.Context, limit int) ([]entities.Profile, error) {
	profiles, err := s.Repo.ListProfiles(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(profiles, func(i, j int) bool {
		if profiles[i].BountiesWon != profiles[j].BountiesWon {
			return profiles[i].BountiesWon > profiles[j].BountiesWon
		}
		if profiles[i].BountiesCreated != profiles[j].BountiesCreated {
			return profiles[i].BountiesCreated > profiles[j].BountiesCreated
		}
		return profiles[i].Address < profiles[j].Address
	})
	if limit > 0 && len(profiles) > limit {
		profiles = profiles[:limit]
	}
	return profiles, nil
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}
