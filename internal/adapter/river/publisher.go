package river

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/riverqueue/river"

	"github.com/neomorfeo/franchiseapi/internal/domain"
)

// Compile-time check: Publisher implements domain.EventPublisher.
var _ domain.EventPublisher = (*Publisher[*sql.Tx])(nil)

// EventJobArgs carries a domain event through the job queue until it is
// relayed to a Sink. River serializes this as JSON into its job table, and
// Payload holds the event exactly as it will be delivered.
type EventJobArgs struct {
	Topic     string           `json:"topic"`
	Key       string           `json:"key"`
	EventType domain.EventType `json:"event_type"`
	EventID   string           `json:"event_id"`
	Payload   json.RawMessage  `json:"payload"`
}

// QueueEvents is the queue every relay job is inserted into. It runs a
// single worker so jobs complete in insertion order.
const QueueEvents = "event_relay"

// Kind returns the unique job type identifier used by River's job routing.
func (EventJobArgs) Kind() string { return "event.relay" }

// InsertOpts routes every relay job to QueueEvents.
func (EventJobArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{Queue: QueueEvents}
}

// Publisher implements domain.EventPublisher by enqueuing River jobs.
// TTx is the driver's transaction type (*sql.Tx for SQLite, pgx.Tx for PostgreSQL).
type Publisher[TTx any] struct {
	client *river.Client[TTx]
}

// NewPublisher creates a publisher backed by the given River client.
func NewPublisher[TTx any](client *river.Client[TTx]) *Publisher[TTx] {
	return &Publisher[TTx]{client: client}
}

// Publish enqueues a domain event as an async relay job.
func (p *Publisher[TTx]) Publish(ctx context.Context, topic, key string, event domain.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	meta := event.Meta()
	_, err = p.client.Insert(ctx, EventJobArgs{
		Topic:     topic,
		Key:       key,
		EventType: meta.EventType,
		EventID:   meta.EventID,
		Payload:   payload,
	}, nil)
	if err != nil {
		return fmt.Errorf("enqueuing event job: %w", err)
	}
	return nil
}
