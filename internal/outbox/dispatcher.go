// Package outbox delivers change events recorded alongside repository writes to Kafka.
package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"example.com/workouttracker/internal/platform/logger"
)

type messageWriter interface {
	WriteMessages(context.Context, string, ...kafka.Message) error
}

// Store claims pending outbox rows and records their delivery outcome.
type Store interface {
	Claim(ctx context.Context, limit int) ([]Message, error)
	MarkPublished(ctx context.Context, ids []int64) error
	MarkFailed(ctx context.Context, ids []int64, reason string) error
}

// Message represents a row fetched from the outbox.
type Message struct {
	EventID       int64
	AggregateType string
	AggregateID   string
	EventType     string
	Topic         string
	PartitionKey  string
	Payload       json.RawMessage
	Attempts      int
}

// Dispatcher drains the outbox and delivers events to Kafka.
type Dispatcher struct {
	store            Store
	producer         messageWriter
	log              *logger.Logger
	pollInterval     time.Duration
	batchSize        int
	now              func() time.Time
	shutdownComplete chan struct{}
}

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(store Store, producer messageWriter, log *logger.Logger, pollInterval time.Duration, batchSize int) *Dispatcher {
	if log == nil {
		log = logger.Nop()
	}
	return &Dispatcher{
		store:            store,
		producer:         producer,
		log:              log,
		pollInterval:     pollInterval,
		batchSize:        batchSize,
		now:              func() time.Time { return time.Now().UTC() },
		shutdownComplete: make(chan struct{}),
	}
}

// Start runs the polling loop until ctx is cancelled. It should be called in a goroutine.
func (d *Dispatcher) Start(ctx context.Context) {
	ticker := time.NewTicker(d.pollInterval)
	defer func() {
		ticker.Stop()
		close(d.shutdownComplete)
	}()

	for {
		if err := d.processBatch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			d.log.Error("outbox dispatcher error", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Wait blocks until the polling loop has stopped.
func (d *Dispatcher) Wait() {
	<-d.shutdownComplete
}

func (d *Dispatcher) processBatch(ctx context.Context) error {
	start := time.Now()

	messages, err := d.store.Claim(ctx, d.batchSize)
	if err != nil {
		return fmt.Errorf("claim outbox batch: %w", err)
	}
	if len(messages) == 0 {
		return nil
	}
	defer func() { batchDuration.Observe(time.Since(start).Seconds()) }()

	ids := eventIDs(messages)
	if err := d.deliver(ctx, messages); err != nil {
		d.log.Warn("outbox delivery failed", "events", len(messages), "error", err)
		failedCounter.Add(float64(len(messages)))
		return d.store.MarkFailed(ctx, ids, err.Error())
	}

	deliveredCounter.Add(float64(len(messages)))
	return d.store.MarkPublished(ctx, ids)
}

func (d *Dispatcher) deliver(ctx context.Context, messages []Message) error {
	batches := make(map[string][]kafka.Message)
	order := make([]string, 0)

	for _, msg := range messages {
		if msg.Topic == "" {
			return fmt.Errorf("no topic for event %d (type=%s)", msg.EventID, msg.EventType)
		}
		record := kafka.Message{
			Key:   []byte(msg.PartitionKey),
			Value: []byte(msg.Payload),
			Time:  d.now(),
			Headers: []kafka.Header{
				{Key: "event_type", Value: []byte(msg.EventType)},
				{Key: "aggregate_type", Value: []byte(msg.AggregateType)},
			},
		}
		if _, seen := batches[msg.Topic]; !seen {
			order = append(order, msg.Topic)
		}
		batches[msg.Topic] = append(batches[msg.Topic], record)
	}

	for _, topic := range order {
		if err := d.producer.WriteMessages(ctx, topic, batches[topic]...); err != nil {
			return fmt.Errorf("publish to %s: %w", topic, err)
		}
	}
	return nil
}

func eventIDs(messages []Message) []int64 {
	ids := make([]int64, 0, len(messages))
	for _, msg := range messages {
		ids = append(ids, msg.EventID)
	}
	return ids
}
