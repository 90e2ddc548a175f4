package memory

import (
	"context"
	"fmt"
	"sort"

	"example.com/workouttracker/internal/domain"
	"example.com/workouttracker/internal/persistence"
	"example.com/workouttracker/internal/stream"
)

// SessionRepository implements domain.SessionRepository.
type SessionRepository struct {
	store *Store
}

// NewSessionRepository constructs a SessionRepository over store.
func NewSessionRepository(store *Store) *SessionRepository {
	return &SessionRepository{store: store}
}

// List returns every session, newest first.
func (r *SessionRepository) List(ctx context.Context) ([]domain.WorkoutSession, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]domain.WorkoutSession, 0, len(r.store.sessions))
	for id, rec := range r.store.sessions {
		out = append(out, persistence.SessionFromRecords(rec, r.store.performed[id]))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// WatchAll streams List.
func (r *SessionRepository) WatchAll(ctx context.Context) <-chan []domain.WorkoutSession {
	return stream.Watch(ctx, r.store.notifier, stream.TopicSessions, r.List, r.store.log)
}

// Get returns the session with its exercises, or nil.
func (r *SessionRepository) Get(ctx context.Context, id string) (*domain.WorkoutSession, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rec, ok := r.store.sessions[id]
	if !ok {
		return nil, nil
	}
	s := persistence.SessionFromRecords(rec, r.store.performed[id])
	return &s, nil
}

// Create stores a session and its performed exercises.
func (r *SessionRepository) Create(ctx context.Context, session domain.WorkoutSession) error {
	parent, children := persistence.SessionToRecords(session)

	r.store.mu.Lock()
	if _, exists := r.store.sessions[parent.ID]; exists {
		r.store.mu.Unlock()
		return fmt.Errorf("session %s: %w", parent.ID, domain.ErrConflict)
	}
	r.store.sessions[parent.ID] = parent
	r.store.performed[parent.ID] = children
	r.store.mu.Unlock()

	r.store.committed(stream.TopicSessions)
	return nil
}

// Update replaces the session row and all of its performed exercise rows.
func (r *SessionRepository) Update(ctx context.Context, session domain.WorkoutSession) error {
	parent, children := persistence.SessionToRecords(session)

	r.store.mu.Lock()
	if _, exists := r.store.sessions[parent.ID]; !exists {
		r.store.mu.Unlock()
		return fmt.Errorf("session %s: %w", parent.ID, domain.ErrNotFound)
	}
	r.store.sessions[parent.ID] = parent
	r.store.performed[parent.ID] = children
	r.store.mu.Unlock()

	r.store.committed(stream.TopicSessions)
	return nil
}

// Delete removes the session and its performed exercise rows.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	delete(r.store.sessions, id)
	delete(r.store.performed, id)
	r.store.mu.Unlock()

	r.store.committed(stream.TopicSessions)
	return nil
}

// PerformedExerciseRows returns the stored child rows of a session, for cascade checks.
func (r *SessionRepository) PerformedExerciseRows(id string) []persistence.PerformedExerciseRecord {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return append([]persistence.PerformedExerciseRecord(nil), r.store.performed[id]...)
}
