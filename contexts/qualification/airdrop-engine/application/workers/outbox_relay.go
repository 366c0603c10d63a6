package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"quinty/contexts/qualification/airdrop-engine/application"
	"quinty/contexts/qualification/airdrop-engine/ports"
)

// OutboxRelay publishes persisted outbox records to the event bus.
type OutboxRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

// RunOnce publishes a bounded batch of pending outbox rows, stopping on the
// first failure so the retry loop reprocesses the remainder.
func (r OutboxRelay) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("airdrop outbox list failed",
			"event", "airdrop_outbox_list_failed",
			"module", "qualification/airdrop-engine",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}

	for _, row := range pending {
		var event ports.EventEnvelope
		if err := json.Unmarshal(row.Payload, &event); err != nil {
			logger.Error("airdrop outbox decode failed",
				"event", "airdrop_outbox_decode_failed",
				"module", "qualification/airdrop-engine",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			return err
		}
		topic := event.EventType
		if topic == "" {
			topic = row.EventType
		}
		if err := r.Publisher.Publish(ctx, topic, event); err != nil {
			logger.Error("airdrop outbox publish failed",
				"event", "airdrop_outbox_publish_failed",
				"module", "qualification/airdrop-engine",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"event_id", event.EventID,
				"error", err.Error(),
			)
			return err
		}
		if err := r.Outbox.MarkOutboxPublished(ctx, row.OutboxID, now); err != nil {
			logger.Error("airdrop outbox mark published failed",
				"event", "airdrop_outbox_mark_published_failed",
				"module", "qualification/airdrop-engine",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			return err
		}
	}

	logger.Info("airdrop outbox relay cycle completed",
		"event", "airdrop_outbox_relay_completed",
		"module", "qualification/airdrop-engine",
		"layer", "worker",
		"published_count", len(pending),
	)
	return nil
}
