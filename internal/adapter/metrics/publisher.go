package metrics

import (
	"context"
	"time"

	"github.com/neomorfeo/franchiseapi/internal/domain"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Publisher wraps a domain.EventPublisher and counts every publish.
type Publisher struct {
	next    domain.EventPublisher
	metrics *Metrics
}

// Compile-time check: Publisher implements domain.EventPublisher.
var _ domain.EventPublisher = (*Publisher)(nil)

// Publisher creates a counting decorator around next.
func (m *Metrics) Publisher(next domain.EventPublisher) *Publisher {
	return &Publisher{next: next, metrics: m}
}

func (p *Publisher) Publish(ctx context.Context, topic, key string, event domain.Event) error {
	start := time.Now()
	err := p.next.Publish(ctx, topic, key, event)
	p.metrics.EventPublishDuration.WithLabelValues(topic).Observe(time.Since(start).Seconds())

	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	p.metrics.EventsPublished.WithLabelValues(topic, string(event.Meta().EventType), outcome).Inc()

	return err
}
