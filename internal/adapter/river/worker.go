package river

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/riverqueue/river"
	"go.uber.org/zap"

	"github.com/neomorfeo/franchiseapi/internal/domain"
)

// Delivery is attempted this many times inside one job run, waiting
// attempt*deliverBackoff between tries.
const (
	deliverAttempts = 3
	deliverBackoff  = 100 * time.Millisecond
)

// Sink receives relayed events. The Kafka publisher is the production sink.
type Sink interface {
	Deliver(ctx context.Context, topic, key string, eventType domain.EventType, eventID string, payload []byte) error
}

// Compile-time check: LogSink also publishes directly, without the queue.
var _ domain.EventPublisher = (*LogSink)(nil)

// LogSink is a Sink that only logs, for deployments without a broker.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a sink that writes each event to logger.
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Deliver(_ context.Context, topic, key string, eventType domain.EventType, eventID string, payload []byte) error {
	s.logger.Info("event delivered",
		zap.String("topic", topic),
		zap.String("key", key),
		zap.String("event_type", string(eventType)),
		zap.String("event_id", eventID),
		zap.ByteString("payload", payload),
	)
	return nil
}

// Publish encodes event and logs it immediately.
func (s *LogSink) Publish(ctx context.Context, topic, key string, event domain.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	meta := event.Meta()
	return s.Deliver(ctx, topic, key, meta.EventType, meta.EventID, payload)
}

// RelayWorker delivers queued events to a Sink. After each delivery it
// audits the event against the entity's lifecycle and logs a warning when
// events for one key arrive out of order. The audit never blocks delivery.
type RelayWorker struct {
	river.WorkerDefaults[EventJobArgs]

	sink      Sink
	validator domain.LifecycleValidator
	logger    *zap.Logger

	mu     sync.Mutex
	states map[string]domain.Lifecycle
}

// NewRelayWorker creates a worker relaying to sink.
func NewRelayWorker(sink Sink, validator domain.LifecycleValidator, logger *zap.Logger) *RelayWorker {
	return &RelayWorker{
		sink:      sink,
		validator: validator,
		logger:    logger,
		states:    make(map[string]domain.Lifecycle),
	}
}

// Work relays a single event job. Delivery is retried in place so that
// later events for the same key wait behind it; once the attempts are
// exhausted the error goes back to River, which retries the job with backoff.
func (w *RelayWorker) Work(ctx context.Context, job *river.Job[EventJobArgs]) error {
	args := job.Args

	if err := w.deliver(ctx, args); err != nil {
		return fmt.Errorf("delivering event %s: %w", args.EventID, err)
	}

	w.audit(ctx, args)

	w.logger.Debug("event relayed",
		zap.String("topic", args.Topic),
		zap.String("key", args.Key),
		zap.String("event_type", string(args.EventType)),
		zap.Int64("job_id", job.ID),
		zap.Int("attempt", job.Attempt),
	)
	return nil
}

func (w *RelayWorker) deliver(ctx context.Context, args EventJobArgs) error {
	var err error
	for attempt := 1; attempt <= deliverAttempts; attempt++ {
		err = w.sink.Deliver(ctx, args.Topic, args.Key, args.EventType, args.EventID, args.Payload)
		if err == nil || attempt == deliverAttempts {
			break
		}

		w.logger.Warn("event delivery failed, retrying",
			zap.String("topic", args.Topic),
			zap.String("key", args.Key),
			zap.String("event_id", args.EventID),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-time.After(time.Duration(attempt) * deliverBackoff):
		}
	}
	return err
}

// Tracked reports how many keys the auditor currently holds state for.
func (w *RelayWorker) Tracked() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.states)
}

// Lifecycle reports the last audited lifecycle state for topic and key.
func (w *RelayWorker) Lifecycle(topic, key string) domain.Lifecycle {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current(topic + "/" + key)
}

func (w *RelayWorker) audit(ctx context.Context, args EventJobArgs) {
	id := args.Topic + "/" + args.Key

	w.mu.Lock()
	defer w.mu.Unlock()

	current := w.current(id)
	next, err := w.validator.Apply(ctx, current, args.EventType)
	if err != nil {
		w.logger.Warn("out-of-order event",
			zap.String("topic", args.Topic),
			zap.String("key", args.Key),
			zap.String("event_id", args.EventID),
			zap.Error(err),
		)
		next = resync(args.EventType)
	}

	// Deleted keys are forgotten. A late UPDATED then reads as absent and
	// is still reported.
	if next == domain.LifecycleDeleted {
		delete(w.states, id)
		return
	}
	w.states[id] = next
}

func (w *RelayWorker) current(id string) domain.Lifecycle {
	if s, ok := w.states[id]; ok {
		return s
	}
	return domain.LifecycleAbsent
}

// resync returns the state an event always leads to, so one stray event
// does not make every later event for the key look out of order.
func resync(event domain.EventType) domain.Lifecycle {
	for _, t := range domain.Transitions {
		if t.Event == event {
			return t.Dst
		}
	}
	return domain.LifecycleAbsent
}
