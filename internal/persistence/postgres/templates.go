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

// TemplateRepository implements domain.TemplateRepository.
type TemplateRepository struct {
	store *Store
}

// NewTemplateRepository constructs a TemplateRepository.
func NewTemplateRepository(store *Store) *TemplateRepository {
	return &TemplateRepository{store: store}
}

// load reads matching templates and their exercises with one query per table.
func (r *TemplateRepository) load(ctx context.Context, q querier, where string, args ...any) ([]domain.WorkoutTemplate, error) {
	sql := `SELECT id, title, is_default, is_hidden FROM workout_templates`
	if where != "" {
		sql += ` WHERE ` + where
	}
	sql += ` ORDER BY lower(title), id`

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query templates: %w", err)
	}
	parents := make([]persistence.TemplateRecord, 0)
	ids := make([]string, 0)
	for rows.Next() {
		var rec persistence.TemplateRecord
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.IsDefault, &rec.IsHidden); err != nil {
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

	out := make([]domain.WorkoutTemplate, 0, len(parents))
	if len(parents) == 0 {
		return out, nil
	}

	children, err := r.children(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	for _, parent := range parents {
		out = append(out, persistence.TemplateFromRecords(parent, children[parent.ID]))
	}
	return out, nil
}

func (r *TemplateRepository) children(ctx context.Context, q querier, templateIDs []string) (map[string][]persistence.TemplateExerciseRecord, error) {
	const sql = `SELECT id, template_id, exercise_id, sets, reps, order_index, rest_seconds, notes
        FROM template_exercises WHERE template_id = ANY($1) ORDER BY template_id, order_index, id`

	rows, err := q.Query(ctx, sql, templateIDs)
	if err != nil {
		return nil, fmt.Errorf("query template exercises: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]persistence.TemplateExerciseRecord, len(templateIDs))
	for rows.Next() {
		var rec persistence.TemplateExerciseRecord
		if err := rows.Scan(&rec.ID, &rec.TemplateID, &rec.ExerciseID, &rec.Sets, &rec.Reps, &rec.OrderIndex, &rec.RestSeconds, &rec.Notes); err != nil {
			return nil, err
		}
		out[rec.TemplateID] = append(out[rec.TemplateID], rec)
	}
	return out, rows.Err()
}

// List returns visible templates ordered by title.
func (r *TemplateRepository) List(ctx context.Context) ([]domain.WorkoutTemplate, error) {
	return r.load(ctx, r.store.pool, "NOT is_hidden")
}

// ListHidden returns hidden templates ordered by title.
func (r *TemplateRepository) ListHidden(ctx context.Context) ([]domain.WorkoutTemplate, error) {
	return r.load(ctx, r.store.pool, "is_hidden")
}

// WatchAll streams List.
func (r *TemplateRepository) WatchAll(ctx context.Context) <-chan []domain.WorkoutTemplate {
	return stream.Watch(ctx, r.store.notifier, stream.TopicTemplates, r.List, r.store.log)
}

// WatchHidden streams ListHidden.
func (r *TemplateRepository) WatchHidden(ctx context.Context) <-chan []domain.WorkoutTemplate {
	return stream.Watch(ctx, r.store.notifier, stream.TopicTemplates, r.ListHidden, r.store.log)
}

// Get returns the template, hidden or not, or nil.
func (r *TemplateRepository) Get(ctx context.Context, id string) (*domain.WorkoutTemplate, error) {
	found, err := r.load(ctx, r.store.pool, "id=$1", id)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

// Search returns visible templates whose title contains query, ignoring case.
func (r *TemplateRepository) Search(ctx context.Context, query string) ([]domain.WorkoutTemplate, error) {
	return r.load(ctx, r.store.pool, "NOT is_hidden AND strpos(lower(title), lower(btrim($1))) > 0", query)
}

// WatchSearch streams Search.
func (r *TemplateRepository) WatchSearch(ctx context.Context, query string) <-chan []domain.WorkoutTemplate {
	load := func(ctx context.Context) ([]domain.WorkoutTemplate, error) { return r.Search(ctx, query) }
	return stream.Watch(ctx, r.store.notifier, stream.TopicTemplates, load, r.store.log)
}

// Create inserts the template and its exercises atomically.
func (r *TemplateRepository) Create(ctx context.Context, template domain.WorkoutTemplate) error {
	parent, children := persistence.TemplateToRecords(template)
	err := r.store.write(ctx, stream.TopicTemplates, func(tx pgx.Tx) ([]outboxEvent, error) {
		const stmt = `INSERT INTO workout_templates (id, title, is_default, is_hidden) VALUES ($1,$2,$3,$4)`
		if _, err := tx.Exec(ctx, stmt, parent.ID, parent.Title, parent.IsDefault, parent.IsHidden); err != nil {
			return nil, err
		}
		if err := insertTemplateExercises(ctx, tx, children); err != nil {
			return nil, err
		}
		return []outboxEvent{r.saved(template)}, nil
	})
	return translate(err, "template "+template.ID)
}

// Update replaces the template row and all of its exercises atomically.
func (r *TemplateRepository) Update(ctx context.Context, template domain.WorkoutTemplate) error {
	parent, children := persistence.TemplateToRecords(template)
	err := r.store.write(ctx, stream.TopicTemplates, func(tx pgx.Tx) ([]outboxEvent, error) {
		const stmt = `UPDATE workout_templates SET title=$2, is_default=$3, is_hidden=$4 WHERE id=$1`
		tag, err := tx.Exec(ctx, stmt, parent.ID, parent.Title, parent.IsDefault, parent.IsHidden)
		if err != nil {
			return nil, err
		}
		if tag.RowsAffected() == 0 {
			return nil, domain.ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM template_exercises WHERE template_id=$1`, parent.ID); err != nil {
			return nil, err
		}
		if err := insertTemplateExercises(ctx, tx, children); err != nil {
			return nil, err
		}
		return []outboxEvent{r.saved(template)}, nil
	})
	return translate(err, "template "+template.ID)
}

// SetHidden flips the hidden flag of a template.
func (r *TemplateRepository) SetHidden(ctx context.Context, id string, hidden bool) error {
	err := r.store.write(ctx, stream.TopicTemplates, func(tx pgx.Tx) ([]outboxEvent, error) {
		tag, err := tx.Exec(ctx, `UPDATE workout_templates SET is_hidden=$2 WHERE id=$1`, id, hidden)
		if err != nil {
			return nil, err
		}
		if tag.RowsAffected() == 0 {
			return nil, domain.ErrNotFound
		}
		found, err := r.load(ctx, tx, "id=$1", id)
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			return nil, domain.ErrNotFound
		}
		return []outboxEvent{r.saved(found[0])}, nil
	})
	return translate(err, "template "+id)
}

// Delete removes the template; its exercises go with it through the foreign key cascade.
func (r *TemplateRepository) Delete(ctx context.Context, id string) error {
	err := r.store.write(ctx, stream.TopicTemplates, func(tx pgx.Tx) ([]outboxEvent, error) {
		tag, err := tx.Exec(ctx, `DELETE FROM workout_templates WHERE id=$1`, id)
		if err != nil || tag.RowsAffected() == 0 {
			return nil, err
		}
		return []outboxEvent{{
			eventType:   events.TypeTemplateDeleted,
			aggregateID: id,
			payload:     events.TemplateDeleted{TemplateID: id, DeletedAt: r.store.now()},
		}}, nil
	})
	return translate(err, "template "+id)
}

func (r *TemplateRepository) saved(t domain.WorkoutTemplate) outboxEvent {
	ids := make([]int64, 0, len(t.Exercises))
	for _, ex := range t.Exercises {
		ids = append(ids, ex.ExerciseID)
	}
	return outboxEvent{
		eventType:   events.TypeTemplateSaved,
		aggregateID: t.ID,
		payload: events.TemplateSaved{
			TemplateID:  t.ID,
			Title:       t.Title,
			ExerciseIDs: ids,
			IsDefault:   t.IsDefault,
			IsHidden:    t.IsHidden,
			SavedAt:     r.store.now(),
		},
	}
}

func insertTemplateExercises(ctx context.Context, tx pgx.Tx, rows []persistence.TemplateExerciseRecord) error {
	if len(rows) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, rec := range rows {
		batch.Queue(`INSERT INTO template_exercises (id, template_id, exercise_id, sets, reps, order_index, rest_seconds, notes)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			rec.ID, rec.TemplateID, rec.ExerciseID, rec.Sets, rec.Reps, rec.OrderIndex, rec.RestSeconds, rec.Notes)
	}
	results := tx.SendBatch(ctx, batch)
	for range rows {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return err
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("insert template exercises: %w", err)
	}
	return nil
}
