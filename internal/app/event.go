package app

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/neomorfeo/franchiseapi/internal/domain"
)

// newMeta stamps a fresh event envelope.
// Isolated here so the ID strategy can evolve independently.
func newMeta(eventType domain.EventType) domain.EventMeta {
	return domain.EventMeta{
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		EventType:  eventType,
	}
}

// publish sends event to topic keyed by the entity id. It runs after the
// write has committed; a failure here is reported to the caller as is and
// the write stays in place.
func publish(ctx context.Context, publisher domain.EventPublisher, topic string, id int64, event domain.Event) error {
	if err := publisher.Publish(ctx, topic, strconv.FormatInt(id, 10), event); err != nil {
		return fmt.Errorf("publishing %s event to %s: %w", event.Meta().EventType, topic, err)
	}
	return nil
}
