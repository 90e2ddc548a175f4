package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"example.com/workouttracker/internal/domain"
	"example.com/workouttracker/internal/events"
	"example.com/workouttracker/internal/persistence"
	"example.com/workouttracker/internal/stream"
)

const exerciseColumns = `id, name, primary_muscles, secondary_muscles, description, instructions, difficulty,
        equipment, category, exercise_type, image_url, video_url, is_custom, created_by, is_hidden`

// ExerciseRepository implements domain.ExerciseRepository.
type ExerciseRepository struct {
	store *Store
}

// NewExerciseRepository constructs an ExerciseRepository.
func NewExerciseRepository(store *Store) *ExerciseRepository {
	return &ExerciseRepository{store: store}
}

func scanExercise(row pgx.Row) (persistence.ExerciseRecord, error) {
	var rec persistence.ExerciseRecord
	err := row.Scan(&rec.ID, &rec.Name, &rec.PrimaryMuscles, &rec.SecondaryMuscles, &rec.Description, &rec.Instructions,
		&rec.Difficulty, &rec.Equipment, &rec.Category, &rec.Type, &rec.ImageURL, &rec.VideoURL, &rec.IsCustom,
		&rec.CreatedBy, &rec.IsHidden)
	return rec, err
}

func (r *ExerciseRepository) decode(rec persistence.ExerciseRecord) domain.Exercise {
	ex, dropped := persistence.ExerciseFromRecord(rec)
	persistence.ReportDropped(r.store.log, "exercise", rec.ID, dropped)
	return ex
}

func (r *ExerciseRepository) query(ctx context.Context, where string, args ...any) ([]domain.Exercise, error) {
	sql := `SELECT ` + exerciseColumns + ` FROM exercises`
	if where != "" {
		sql += ` WHERE ` + where
	}
	sql += ` ORDER BY lower(name), id`

	rows, err := r.store.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query exercises: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Exercise, 0)
	for rows.Next() {
		rec, err := scanExercise(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r.decode(rec))
	}
	return out, rows.Err()
}

// List returns visible exercises ordered by name.
func (r *ExerciseRepository) List(ctx context.Context) ([]domain.Exercise, error) {
	return r.query(ctx, "NOT is_hidden")
}

// ListIncludingHidden returns every exercise ordered by name.
func (r *ExerciseRepository) ListIncludingHidden(ctx context.Context) ([]domain.Exercise, error) {
	return r.query(ctx, "")
}

// WatchAll streams List.
func (r *ExerciseRepository) WatchAll(ctx context.Context) <-chan []domain.Exercise {
	return stream.Watch(ctx, r.store.notifier, stream.TopicExercises, r.List, r.store.log)
}

// Get returns the exercise or nil.
func (r *ExerciseRepository) Get(ctx context.Context, id int64) (*domain.Exercise, error) {
	row := r.store.pool.QueryRow(ctx, `SELECT `+exerciseColumns+` FROM exercises WHERE id=$1`, id)
	rec, err := scanExercise(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	ex := r.decode(rec)
	return &ex, nil
}

// Search returns visible exercises whose name, description or muscle groups contain query.
// Muscle matching uses display names, so it is applied after decoding.
func (r *ExerciseRepository) Search(ctx context.Context, query string) ([]domain.Exercise, error) {
	visible, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Exercise, 0, len(visible))
	for _, ex := range visible {
		if domain.MatchesSearch(ex, query) {
			out = append(out, ex)
		}
	}
	return out, nil
}

// WatchSearch streams Search.
func (r *ExerciseRepository) WatchSearch(ctx context.Context, query string) <-chan []domain.Exercise {
	load := func(ctx context.Context) ([]domain.Exercise, error) { return r.Search(ctx, query) }
	return stream.Watch(ctx, r.store.notifier, stream.TopicExercises, load, r.store.log)
}

// Create inserts a new exercise.
func (r *ExerciseRepository) Create(ctx context.Context, exercise domain.Exercise) error {
	rec := persistence.ExerciseToRecord(exercise)
	err := r.store.write(ctx, stream.TopicExercises, func(tx pgx.Tx) ([]outboxEvent, error) {
		const stmt = `INSERT INTO exercises (` + exerciseColumns + `)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`
		if _, err := tx.Exec(ctx, stmt, exerciseArgs(rec)...); err != nil {
			return nil, err
		}
		return []outboxEvent{r.upserted(exercise)}, nil
	})
	return translate(err, fmt.Sprintf("exercise %d", exercise.ID))
}

// Update replaces every column of a stored exercise.
func (r *ExerciseRepository) Update(ctx context.Context, exercise domain.Exercise) error {
	rec := persistence.ExerciseToRecord(exercise)
	err := r.store.write(ctx, stream.TopicExercises, func(tx pgx.Tx) ([]outboxEvent, error) {
		const stmt = `UPDATE exercises SET name=$2, primary_muscles=$3, secondary_muscles=$4, description=$5,
            instructions=$6, difficulty=$7, equipment=$8, category=$9, exercise_type=$10, image_url=$11,
            video_url=$12, is_custom=$13, created_by=$14, is_hidden=$15 WHERE id=$1`
		tag, err := tx.Exec(ctx, stmt, exerciseArgs(rec)...)
		if err != nil {
			return nil, err
		}
		if tag.RowsAffected() == 0 {
			return nil, domain.ErrNotFound
		}
		return []outboxEvent{r.upserted(exercise)}, nil
	})
	return translate(err, fmt.Sprintf("exercise %d", exercise.ID))
}

// Delete removes an exercise. Template and session rows referencing it are kept.
func (r *ExerciseRepository) Delete(ctx context.Context, id int64) error {
	err := r.store.write(ctx, stream.TopicExercises, func(tx pgx.Tx) ([]outboxEvent, error) {
		tag, err := tx.Exec(ctx, `DELETE FROM exercises WHERE id=$1`, id)
		if err != nil || tag.RowsAffected() == 0 {
			return nil, err
		}
		return []outboxEvent{{
			eventType:   events.TypeExerciseDeleted,
			aggregateID: formatID(id),
			payload:     events.ExerciseDeleted{ExerciseID: id, DeletedAt: r.store.now()},
		}}, nil
	})
	return translate(err, fmt.Sprintf("exercise %d", id))
}

func (r *ExerciseRepository) upserted(ex domain.Exercise) outboxEvent {
	payload := events.ExerciseUpserted{
		ExerciseID:     ex.ID,
		Name:           ex.Name,
		Difficulty:     string(ex.Difficulty),
		PrimaryMuscles: make([]string, 0, len(ex.PrimaryMuscles)),
		Equipment:      make([]string, 0, len(ex.Equipment)),
		IsCustom:       ex.IsCustom,
		IsHidden:       ex.IsHidden,
		UpdatedAt:      r.store.now(),
	}
	for _, m := range ex.PrimaryMuscles {
		payload.PrimaryMuscles = append(payload.PrimaryMuscles, string(m))
	}
	for _, e := range ex.Equipment {
		payload.Equipment = append(payload.Equipment, string(e))
	}
	return outboxEvent{eventType: events.TypeExerciseUpserted, aggregateID: formatID(ex.ID), payload: payload}
}

func exerciseArgs(rec persistence.ExerciseRecord) []any {
	instructions := rec.Instructions
	if instructions == nil {
		instructions = []string{}
	}
	return []any{
		rec.ID, rec.Name, rec.PrimaryMuscles, rec.SecondaryMuscles, rec.Description, instructions,
		rec.Difficulty, rec.Equipment, rec.Category, rec.Type, rec.ImageURL, rec.VideoURL, rec.IsCustom,
		rec.CreatedBy, rec.IsHidden,
	}
}
