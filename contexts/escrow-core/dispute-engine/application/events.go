package application

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/google/uuid"

	"quinty/contexts/escrow-core/dispute-engine/domain/entities"
	"quinty/contexts/escrow-core/dispute-engine/ports"
)

// Events are partitioned by dispute id for ordered consumption.
func (s Service) appendEvent(ctx context.Context, eventType string, dispute entities.Dispute, actor string, data map[string]any) error {
	if s.Outbox == nil {
		return nil
	}
	data["bounty_id"] = dispute.BountyID
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return s.Outbox.AppendOutbox(ctx, ports.EventEnvelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		OccurredAt:    s.now(),
		SourceService: "dispute-engine",
		SchemaVersion: 1,
		EntityType:    "dispute",
		EntityID:      dispute.DisputeID,
		Actor:         actor,
		PartitionKey:  strconv.FormatUint(dispute.DisputeID, 10),
		Data:          payload,
	})
}
