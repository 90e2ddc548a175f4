package outbox

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"example.com/workouttracker/internal/platform/logger"
)

type fakeStore struct {
	pending   []Message
	published []int64
	failed    []int64
	reason    string
}

func (s *fakeStore) Claim(ctx context.Context, limit int) ([]Message, error) {
	if len(s.pending) < limit {
		limit = len(s.pending)
	}
	claimed := s.pending[:limit]
	s.pending = s.pending[limit:]
	return claimed, nil
}

func (s *fakeStore) MarkPublished(ctx context.Context, ids []int64) error {
	s.published = append(s.published, ids...)
	return nil
}

func (s *fakeStore) MarkFailed(ctx context.Context, ids []int64, reason string) error {
	s.failed = append(s.failed, ids...)
	s.reason = reason
	return nil
}

type fakeWriter struct {
	topics  []string
	byTopic map[string][]kafka.Message
	err     error
}

func (w *fakeWriter) WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	if w.byTopic == nil {
		w.byTopic = make(map[string][]kafka.Message)
	}
	w.topics = append(w.topics, topic)
	w.byTopic[topic] = append(w.byTopic[topic], msgs...)
	return nil
}

func pendingEvents() []Message {
	return []Message{
		{EventID: 1, AggregateType: "exercise", AggregateID: "42", EventType: "exercise.upserted", Topic: "exercise_events", PartitionKey: "42", Payload: []byte(`{"exercise_id":42}`)},
		{EventID: 2, AggregateType: "session", AggregateID: "s-1", EventType: "session.recorded", Topic: "session_events", PartitionKey: "s-1", Payload: []byte(`{"session_id":"s-1"}`)},
		{EventID: 3, AggregateType: "exercise", AggregateID: "42", EventType: "exercise.deleted", Topic: "exercise_events", PartitionKey: "42", Payload: []byte(`{"exercise_id":42}`)},
	}
}

func TestProcessBatchGroupsByTopicAndMarksPublished(t *testing.T) {
	store := &fakeStore{pending: pendingEvents()}
	writer := &fakeWriter{}
	d := NewDispatcher(store, writer, logger.Nop(), 0, 10)

	require.NoError(t, d.processBatch(context.Background()))

	require.Equal(t, []string{"exercise_events", "session_events"}, writer.topics)
	exerciseMsgs := writer.byTopic["exercise_events"]
	require.Len(t, exerciseMsgs, 2)
	require.Equal(t, "42", string(exerciseMsgs[0].Key))
	require.Equal(t, "exercise.upserted", string(exerciseMsgs[0].Headers[0].Value))
	require.Equal(t, "exercise.deleted", string(exerciseMsgs[1].Headers[0].Value))

	require.Equal(t, []int64{1, 2, 3}, store.published)
	require.Empty(t, store.failed)
}

func TestProcessBatchReleasesEventsOnFailure(t *testing.T) {
	store := &fakeStore{pending: pendingEvents()}
	writer := &fakeWriter{err: errors.New("broker unavailable")}
	d := NewDispatcher(store, writer, logger.Nop(), 0, 2)

	require.NoError(t, d.processBatch(context.Background()))

	require.Empty(t, store.published)
	require.Equal(t, []int64{1, 2}, store.failed)
	require.Contains(t, store.reason, "broker unavailable")
	require.Len(t, store.pending, 1)
}

func TestProcessBatchRejectsEventWithoutTopic(t *testing.T) {
	store := &fakeStore{pending: []Message{{EventID: 7, EventType: "exercise.upserted"}}}
	d := NewDispatcher(store, &fakeWriter{}, logger.Nop(), 0, 10)

	require.NoError(t, d.processBatch(context.Background()))
	require.Equal(t, []int64{7}, store.failed)
}

func TestProcessBatchIdleWhenNothingPending(t *testing.T) {
	store := &fakeStore{}
	writer := &fakeWriter{}
	d := NewDispatcher(store, writer, logger.Nop(), 0, 10)

	require.NoError(t, d.processBatch(context.Background()))
	require.Empty(t, writer.topics)
}
