package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"example.com/workouttracker/internal/domain"
	"example.com/workouttracker/internal/events"
	"example.com/workouttracker/internal/persistence"
	"example.com/workouttracker/internal/stream"
)

// SessionRepository implements domain.SessionRepository.
type SessionRepository struct {
	store *Store
}

// NewSessionRepository constructs a SessionRepository.
func NewSessionRepository(store *Store) *SessionRepository {
	return &SessionRepository{store: store}
}

func (r *SessionRepository) load(ctx context.Context, where string, args ...any) ([]domain.WorkoutSession, error) {
	sql := `SELECT id, session_date, duration_seconds, template_id, notes FROM workout_sessions`
	if where != "" {
		sql += ` WHERE ` + where
	}
	sql += ` ORDER BY session_date DESC, id`

	rows, err := r.store.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	parents := make([]persistence.SessionRecord, 0)
	ids := make([]string, 0)
	for rows.Next() {
		var rec persistence.SessionRecord
		if err := rows.Scan(&rec.ID, &rec.Date, &rec.DurationSeconds, &rec.TemplateID, &rec.Notes); err != nil {
			rows.Close()
			return nil, err
		}
		parents = append(parents, rec)
		ids = append(ids, rec.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]domain.WorkoutSession, 0, len(parents))
	if len(parents) == 0 {
		return out, nil
	}

	const childSQL = `SELECT id, session_id, exercise_id, weight, reps, sets, position
        FROM performed_exercises WHERE session_id = ANY($1) ORDER BY session_id, position`
	childRows, err := r.store.pool.Query(ctx, childSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("query performed exercises: %w", err)
	}
	defer childRows.Close()

	children := make(map[string][]persistence.PerformedExerciseRecord, len(ids))
	for childRows.Next() {
		var rec persistence.PerformedExerciseRecord
		if err := childRows.Scan(&rec.ID, &rec.SessionID, &rec.ExerciseID, &rec.Weight, &rec.Reps, &rec.Sets, &rec.Position); err != nil {
			return nil, err
		}
		children[rec.SessionID] = append(children[rec.SessionID], rec)
	}
	if err := childRows.Err(); err != nil {
		return nil, err
	}

	for _, parent := range parents {
		out = append(out, persistence.SessionFromRecords(parent, children[parent.ID]))
	}
	return out, nil
}

// List returns sessions newest first.
func (r *SessionRepository) List(ctx context.Context) ([]domain.WorkoutSession, error) {
	return r.load(ctx, "")
}

// WatchAll streams List.
func (r *SessionRepository) WatchAll(ctx context.Context) <-chan []domain.WorkoutSession {
	return stream.Watch(ctx, r.store.notifier, stream.TopicSessions, r.List, r.store.log)
}

// Get returns the session or nil.
func (r *SessionRepository) Get(ctx context.Context, id string) (*domain.WorkoutSession, error) {
	found, err := r.load(ctx, "id=$1", id)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

// Create inserts the session and its performed exercises atomically.
func (r *SessionRepository) Create(ctx context.Context, session domain.WorkoutSession) error {
	parent, children := persistence.SessionToRecords(session)
	err := r.store.write(ctx, stream.TopicSessions, func(tx pgx.Tx) ([]outboxEvent, error) {
		const stmt = `INSERT INTO workout_sessions (id, session_date, duration_seconds, template_id, notes) VALUES ($1,$2,$3,$4,$5)`
		if _, err := tx.Exec(ctx, stmt, parent.ID, parent.Date, parent.DurationSeconds, parent.TemplateID, parent.Notes); err != nil {
			return nil, err
		}
		if err := insertPerformed(ctx, tx, children); err != nil {
			return nil, err
		}
		return []outboxEvent{r.recorded(session)}, nil
	})
	return translate(err, "session "+session.ID)
}

// Update replaces the session row and all of its performed exercises atomically.
func (r *SessionRepository) Update(ctx context.Context, session domain.WorkoutSession) error {
	parent, children := persistence.SessionToRecords(session)
	err := r.store.write(ctx, stream.TopicSessions, func(tx pgx.Tx) ([]outboxEvent, error) {
		const stmt = `UPDATE workout_sessions SET session_date=$2, duration_seconds=$3, template_id=$4, notes=$5 WHERE id=$1`
		tag, err := tx.Exec(ctx, stmt, parent.ID, parent.Date, parent.DurationSeconds, parent.TemplateID, parent.Notes)
		if err != nil {
			return nil, err
		}
		if tag.RowsAffected() == 0 {
			return nil, domain.ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM performed_exercises WHERE session_id=$1`, parent.ID); err != nil {
			return nil, err
		}
		if err := insertPerformed(ctx, tx, children); err != nil {
			return nil, err
		}
		return []outboxEvent{r.recorded(session)}, nil
	})
	return translate(err, "session "+session.ID)
}

// Delete removes the session; its performed exercises go with it through the foreign key cascade.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	err := r.store.write(ctx, stream.TopicSessions, func(tx pgx.Tx) ([]outboxEvent, error) {
		tag, err := tx.Exec(ctx, `DELETE FROM workout_sessions WHERE id=$1`, id)
		if err != nil || tag.RowsAffected() == 0 {
			return nil, err
		}
		return []outboxEvent{{
			eventType:   events.TypeSessionDeleted,
			aggregateID: id,
			payload:     events.SessionDeleted{SessionID: id, DeletedAt: r.store.now()},
		}}, nil
	})
	return translate(err, "session "+id)
}

func (r *SessionRepository) recorded(s domain.WorkoutSession) outboxEvent {
	return outboxEvent{
		eventType:   events.TypeSessionRecorded,
		aggregateID: s.ID,
		payload: events.SessionRecorded{
			SessionID:       s.ID,
			Date:            s.Date,
			DurationSeconds: s.DurationSeconds,
			TemplateID:      s.TemplateID,
			ExerciseCount:   len(s.Exercises),
			TotalVolume:     s.TotalVolume(),
			RecordedAt:      r.store.now(),
		},
	}
}

func insertPerformed(ctx context.Context, tx pgx.Tx, rows []persistence.PerformedExerciseRecord) error {
	for _, rec := range rows {
		const stmt = `INSERT INTO performed_exercises (id, session_id, exercise_id, weight, reps, sets, position)
            VALUES ($1,$2,$3,$4,$5,$6,$7)`
		if _, err := tx.Exec(ctx, stmt, rec.ID, rec.SessionID, rec.ExerciseID, rec.Weight, rec.Reps, rec.Sets, rec.Position); err != nil {
			return fmt.Errorf("insert performed exercise %s: %w", rec.ID, err)
		}
	}
	return nil
}
