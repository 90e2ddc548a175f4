package stream

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/workouttracker/internal/platform/logger"
)

func TestWatchEmitsInitialSnapshotAndReloadsOnNotify(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	n := NewNotifier()
	var version atomic.Int64
	ch := Watch(ctx, n, TopicExercises, func(context.Context) (int64, error) {
		return version.Load(), nil
	}, logger.Nop())

	require.Equal(t, int64(0), receive(t, ch))

	version.Store(1)
	n.Notify(TopicExercises)
	require.Equal(t, int64(1), receive(t, ch))
}

func TestWatchIgnoresOtherTopics(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	n := NewNotifier()
	var loads atomic.Int64
	ch := Watch(ctx, n, TopicTemplates, func(context.Context) (int64, error) {
		return loads.Add(1), nil
	}, logger.Nop())
	receive(t, ch)

	n.Notify(TopicSessions)

	select {
	case v := <-ch:
		t.Fatalf("unexpected snapshot %d", v)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPublishReplacesUnreadSnapshot(t *testing.T) {
	out := make(chan int, 1)

	publish(out, 1)
	publish(out, 2)

	require.Len(t, out, 1)
	require.Equal(t, 2, <-out)
}

func TestWatchSkipsFailedLoads(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	n := NewNotifier()
	var calls atomic.Int64
	ch := Watch(ctx, n, TopicExercises, func(context.Context) (string, error) {
		if calls.Add(1) == 1 {
			return "", errors.New("store unavailable")
		}
		return "ok", nil
	}, logger.Nop())

	n.Notify(TopicExercises)
	require.Equal(t, "ok", receive(t, ch))
}

func TestWatchClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	n := NewNotifier()
	ch := Watch(ctx, n, TopicExercises, func(context.Context) (int, error) { return 1, nil }, logger.Nop())
	receive(t, ch)
	require.Equal(t, 1, n.Subscribers(TopicExercises))

	cancel()

	require.Eventually(t, func() bool {
		_, open := <-ch
		return !open
	}, time.Second, 5*time.Millisecond)
	require.Zero(t, n.Subscribers(TopicExercises))
}

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "stream closed")
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
	var zero T
	return zero
}
