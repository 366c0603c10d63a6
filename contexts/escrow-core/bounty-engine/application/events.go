package application

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/google/uuid"

	"quinty/contexts/escrow-core/bounty-engine/ports"
)

// Events are partitioned by bounty id so bounty-scoped consumers observe
// transitions in order.
func (s Service) appendEvent(ctx context.Context, eventType string, bountyID uint64, actor string, data map[string]any) error {
	if s.Outbox == nil {
		return nil
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return s.Outbox.AppendOutbox(ctx, ports.EventEnvelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		OccurredAt:    s.now(),
		SourceService: "bounty-engine",
		SchemaVersion: 1,
		EntityType:    "bounty",
		EntityID:      bountyID,
		Actor:         actor,
		PartitionKey:  strconv.FormatUint(bountyID, 10),
		Data:          payload,
	})
}
