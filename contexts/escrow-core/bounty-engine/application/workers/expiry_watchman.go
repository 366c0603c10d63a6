package workers

import (
	"context"
	"errors"
	"log/slog"

	"quinty/contexts/escrow-core/bounty-engine/application"
	"quinty/contexts/escrow-core/bounty-engine/domain/entities"
	domainerrors "quinty/contexts/escrow-core/bounty-engine/domain/errors"
)

// WatchmanCaller is the address the watchman acts under. Slashing is
// permissionless, so the worker is just one more caller.
const WatchmanCaller = "expiry-watchman"

// ExpiryWatchman sweeps Open bounties whose deadline has passed and triggers
// the slash path for each. Deadlines only take effect when somebody calls;
// this worker is that somebody.
type ExpiryWatchman struct {
	Service application.Service
	Logger  *slog.Logger
}

func (w ExpiryWatchman) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(w.Logger)
	bounties, err := w.Service.ListBounties(ctx)
	if err != nil {
		logger.Error("expiry sweep list failed",
			"event", "bounty_expiry_sweep_list_failed",
			"module", "escrow-core/bounty-engine",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	for _, bounty := range bounties {
		if bounty.Status != entities.BountyStatusOpen {
			continue
		}
		result, err := w.Service.TriggerSlash(ctx, application.TriggerSlashCommand{
			BountyID: bounty.BountyID,
			Caller:   WatchmanCaller,
		})
		if err != nil {
			// Not yet expired or raced with another caller; both are normal.
			if errors.Is(err, domainerrors.ErrDeadlineNotPassed) || errors.Is(err, domainerrors.ErrBountyResolved) {
				continue
			}
			logger.Error("expiry sweep slash failed",
				"event", "bounty_expiry_sweep_slash_failed",
				"module", "escrow-core/bounty-engine",
				"layer", "worker",
				"bounty_id", bounty.BountyID,
				"error", err.Error(),
			)
			return err
		}
		logger.Info("expired bounty slashed",
			"event", "bounty_expiry_sweep_slashed",
			"module", "escrow-core/bounty-engine",
			"layer", "worker",
			"bounty_id", bounty.BountyID,
			"dispute_id", result.DisputeID,
			"slash_amount", result.SlashAmount,
		)
	}
	return nil
}
