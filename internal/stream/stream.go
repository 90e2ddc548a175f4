// Package stream turns one-shot collection queries into live snapshot feeds.
//
// Stores call Notify after every committed write to a topic. Each Watch subscription re-runs its
// query on notification and hands the result to the consumer. Consumers only ever see the latest
// snapshot: a value that has not been received yet is replaced by the newer one.
package stream

import (
	"context"
	"sync"

	"example.com/workouttracker/internal/observability"
	"example.com/workouttracker/internal/platform/logger"
)

// Topics notified by the stores.
const (
	TopicExercises = "exercises"
	TopicTemplates = "templates"
	TopicSessions  = "sessions"
)

// Notifier fans write notifications out to subscribers. The zero value is not usable; call NewNotifier.
type Notifier struct {
	mu   sync.Mutex
	subs map[string]map[chan struct{}]struct{}
}

// NewNotifier constructs a Notifier.
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[string]map[chan struct{}]struct{})}
}

// Subscribe registers for notifications on topic. Bursts of notifications coalesce into one.
func (n *Notifier) Subscribe(topic string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	n.mu.Lock()
	if n.subs[topic] == nil {
		n.subs[topic] = make(map[chan struct{}]struct{})
	}
	n.subs[topic][ch] = struct{}{}
	n.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs[topic], ch)
			n.mu.Unlock()
		})
	}
}

// Subscribers reports how many subscriptions topic currently has.
func (n *Notifier) Subscribers(topic string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs[topic])
}

// Notify signals every subscriber of topic without blocking.
func (n *Notifier) Notify(topic string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for ch := range n.subs[topic] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Watch emits load's result immediately and again after every notification on topic, until ctx
// is done, at which point the returned channel is closed. Load errors are logged and skipped.
func Watch[T any](ctx context.Context, n *Notifier, topic string, load func(context.Context) (T, error), log *logger.Logger) <-chan T {
	out := make(chan T, 1)
	signal, unsubscribe := n.Subscribe(topic)
	observability.AddSubscribers(topic, 1)

	go func() {
		defer close(out)
		defer unsubscribe()
		defer observability.AddSubscribers(topic, -1)

		for {
			snapshot, err := load(ctx)
			switch {
			case ctx.Err() != nil:
				return
			case err != nil:
				log.Warn("stream reload failed", "topic", topic, "error", err)
			default:
				publish(out, snapshot)
			}

			select {
			case <-ctx.Done():
				return
			case <-signal:
			}
		}
	}()
	return out
}

// publish replaces any unread snapshot with v. Only the Watch goroutine sends on out.
func publish[T any](out chan T, v T) {
	for {
		select {
		case out <- v:
			return
		default:
		}
		select {
		case <-out:
		default:
		}
	}
}
