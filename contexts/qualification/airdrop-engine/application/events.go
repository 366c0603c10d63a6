package application

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/google/uuid"

	"quinty/contexts/qualification/airdrop-engine/ports"
)

// Events are partitioned by airdrop id; verifier-set changes use id 0.
func (s Service) appendEvent(ctx context.Context, eventType string, airdropID uint64, actor string, data map[string]any) error {
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
		SourceService: "airdrop-engine",
		SchemaVersion: 1,
		EntityType:    "airdrop",
		EntityID:      airdropID,
		Actor:         actor,
		PartitionKey:  strconv.FormatUint(airdropID, 10),
		Data:          payload,
	})
}
