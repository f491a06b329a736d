package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	platformevents "github.com/divyanshukashyap0/Pulsely-AI/pkg/platform/events"
)

// EventMetadata describes how to route an outbox event.
type EventMetadata struct {
	Topic         string
	SchemaSubject string
	AggregateType string
}

var eventCatalog = map[string]EventMetadata{
	platformevents.TypeReadinessComputed: {
		Topic:         platformevents.TopicReadinessComputed,
		SchemaSubject: platformevents.ValueSubject(platformevents.TopicReadinessComputed),
		AggregateType: "readiness_score",
	},
	platformevents.TypePlanGenerated: {
		Topic:         platformevents.TopicPlanGenerated,
		SchemaSubject: platformevents.ValueSubject(platformevents.TopicPlanGenerated),
		AggregateType: "workout_plan",
	},
}

// outboxEvent is one row to enqueue alongside a domain write.
type outboxEvent struct {
	UserID      string
	AggregateID string
	EventType   string
	DedupeKey   string
	Payload     any
}

// insertOutbox records the event in the caller's transaction. Events are keyed by
// user so a user's events stay ordered within a partition.
func insertOutbox(ctx context.Context, tx pgx.Tx, event outboxEvent) error {
	meta, ok := eventCatalog[event.EventType]
	if !ok {
		return fmt.Errorf("unknown event type: %s", event.EventType)
	}

	body, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}

	const stmt = `INSERT INTO outbox (user_id, aggregate_type, aggregate_id, event_type, topic, schema_subject, partition_key, payload, dedupe_key)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        ON CONFLICT (dedupe_key) DO NOTHING`

	_, err = tx.Exec(ctx, stmt,
		event.UserID,
		meta.AggregateType,
		event.AggregateID,
		event.EventType,
		meta.Topic,
		meta.SchemaSubject,
		event.UserID,
		body,
		nullIfEmpty(event.DedupeKey),
	)
	return err
}
