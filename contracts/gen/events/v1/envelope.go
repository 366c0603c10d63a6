package v1

import (
	"encoding/json"
	"time"
)

// Envelope is the canonical, versioned event envelope emitted by every
// state-mutating operation. It carries enough payload for off-chain observers
// (reputation tracker, UI) to reconstruct the transition without re-querying
// full state. This package is generated-contract-only and must stay backward
// compatible.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	OccurredAt    time.Time       `json:"occurred_at"`
	SourceService string          `json:"source_service"`
	SchemaVersion int             `json:"schema_version"`
	EntityType    string          `json:"entity_type"`
	EntityID      uint64          `json:"entity_id"`
	Actor         string          `json:"actor"`
	PartitionKey  string          `json:"partition_key"`
	Data          json.RawMessage `json:"data"`
}
