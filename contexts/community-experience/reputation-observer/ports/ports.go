package ports

import (
	"context"
	"time"

	"quinty/contexts/community-experience/reputation-observer/domain/entities"
)

type ProfileRepository interface {
	SaveProfile(ctx context.Context, profile entities.Profile) error
	GetProfile(ctx context.Context, address string) (entities.Profile, error)
	ListProfiles(ctx context.Context) ([]entities.Profile, error)
}

type Clock interface {
	Now() time.Time
}
