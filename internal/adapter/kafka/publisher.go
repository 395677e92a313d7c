// Package kafka publishes domain events to Kafka-compatible brokers with franz-go.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/neomorfeo/franchiseapi/internal/domain"
)

// Record header names.
const (
	HeaderEventType = "event-type"
	HeaderEventID   = "event-id"
)

// Compile-time check: Publisher implements domain.EventPublisher.
var _ domain.EventPublisher = (*Publisher)(nil)

// Publisher writes events as JSON records, keyed by entity id so that all
// events of one entity land on the same partition in order.
type Publisher struct {
	client *kgo.Client
}

// New connects a producer to the given seed brokers.
func New(brokers []string, opts ...kgo.Opt) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("no kafka brokers configured")
	}

	opts = append([]kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	}, opts...)

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating kafka client: %w", err)
	}
	return &Publisher{client: client}, nil
}

// Close closes the underlying client.
func (p *Publisher) Close() {
	p.client.Close()
}

// Ping checks that at least one broker is reachable.
func (p *Publisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx)
}

// Publish encodes event and writes it synchronously.
func (p *Publisher) Publish(ctx context.Context, topic, key string, event domain.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	meta := event.Meta()
	return p.Deliver(ctx, topic, key, meta.EventType, meta.EventID, payload)
}

// Deliver writes an already encoded event. It lets the publisher act as the
// sink of the river relay.
func (p *Publisher) Deliver(ctx context.Context, topic, key string, eventType domain.EventType, eventID string, payload []byte) error {
	if err := p.client.ProduceSync(ctx, newRecord(topic, key, eventType, eventID, payload)).FirstErr(); err != nil {
		return fmt.Errorf("producing to %s: %w", topic, err)
	}
	return nil
}

// EnsureTopics creates topics with one partition and replication factor
// one. Topics that already exist are left alone.
func (p *Publisher) EnsureTopics(ctx context.Context, topics ...string) error {
	adm := kadm.NewClient(p.client)

	resp, err := adm.CreateTopics(ctx, 1, 1, nil, topics...)
	if err != nil {
		return fmt.Errorf("creating topics: %w", err)
	}

	for _, t := range resp.Sorted() {
		if t.Err != nil && !errors.Is(t.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("creating topic %s: %w", t.Topic, t.Err)
		}
	}
	return nil
}

func newRecord(topic, key string, eventType domain.EventType, eventID string, payload []byte) *kgo.Record {
	return &kgo.Record{
		Topic: topic,
		Key:   []byte(key),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: HeaderEventType, Value: []byte(eventType)},
			{Key: HeaderEventID, Value: []byte(eventID)},
		},
	}
}
