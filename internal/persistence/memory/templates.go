package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"example.com/workouttracker/internal/domain"
	"example.com/workouttracker/internal/persistence"
	"example.com/workouttracker/internal/stream"
)

// TemplateRepository implements domain.TemplateRepository.
type TemplateRepository struct {
	store *Store
}

// NewTemplateRepository constructs a TemplateRepository over store.
func NewTemplateRepository(store *Store) *TemplateRepository {
	return &TemplateRepository{store: store}
}

func (r *TemplateRepository) collect(match func(domain.WorkoutTemplate) bool) []domain.WorkoutTemplate {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]domain.WorkoutTemplate, 0, len(r.store.templates))
	for id, rec := range r.store.templates {
		t := persistence.TemplateFromRecords(rec, r.store.templateExercises[id])
		if match(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Title), strings.ToLower(out[j].Title)
		if a != b {
			return a < b
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// List returns visible templates ordered by title.
func (r *TemplateRepository) List(ctx context.Context) ([]domain.WorkoutTemplate, error) {
	return r.collect(func(t domain.WorkoutTemplate) bool { return !t.IsHidden }), nil
}

// ListHidden returns hidden templates ordered by title.
func (r *TemplateRepository) ListHidden(ctx context.Context) ([]domain.WorkoutTemplate, error) {
	return r.collect(func(t domain.WorkoutTemplate) bool { return t.IsHidden }), nil
}

// WatchAll streams List.
func (r *TemplateRepository) WatchAll(ctx context.Context) <-chan []domain.WorkoutTemplate {
	return stream.Watch(ctx, r.store.notifier, stream.TopicTemplates, r.List, r.store.log)
}

// WatchHidden streams ListHidden.
func (r *TemplateRepository) WatchHidden(ctx context.Context) <-chan []domain.WorkoutTemplate {
	return stream.Watch(ctx, r.store.notifier, stream.TopicTemplates, r.ListHidden, r.store.log)
}

// Get returns the template with its exercises, or nil.
func (r *TemplateRepository) Get(ctx context.Context, id string) (*domain.WorkoutTemplate, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rec, ok := r.store.templates[id]
	if !ok {
		return nil, nil
	}
	t := persistence.TemplateFromRecords(rec, r.store.templateExercises[id])
	return &t, nil
}

// Search returns visible templates whose title contains query.
func (r *TemplateRepository) Search(ctx context.Context, query string) ([]domain.WorkoutTemplate, error) {
	return r.collect(func(t domain.WorkoutTemplate) bool {
		return !t.IsHidden && domain.MatchesTitle(t, query)
	}), nil
}

// WatchSearch streams Search.
func (r *TemplateRepository) WatchSearch(ctx context.Context, query string) <-chan []domain.WorkoutTemplate {
	load := func(ctx context.Context) ([]domain.WorkoutTemplate, error) { return r.Search(ctx, query) }
	return stream.Watch(ctx, r.store.notifier, stream.TopicTemplates, load, r.store.log)
}

// Create stores a template and its exercises.
func (r *TemplateRepository) Create(ctx context.Context, template domain.WorkoutTemplate) error {
	parent, children := persistence.TemplateToRecords(template)

	r.store.mu.Lock()
	if _, exists := r.store.templates[parent.ID]; exists {
		r.store.mu.Unlock()
		return fmt.Errorf("template %s: %w", parent.ID, domain.ErrConflict)
	}
	r.store.templates[parent.ID] = parent
	r.store.templateExercises[parent.ID] = children
	r.store.mu.Unlock()

	r.store.committed(stream.TopicTemplates)
	return nil
}

// Update replaces the template row and all of its exercise rows.
func (r *TemplateRepository) Update(ctx context.Context, template domain.WorkoutTemplate) error {
	parent, children := persistence.TemplateToRecords(template)

	r.store.mu.Lock()
	if _, exists := r.store.templates[parent.ID]; !exists {
		r.store.mu.Unlock()
		return fmt.Errorf("template %s: %w", parent.ID, domain.ErrNotFound)
	}
	r.store.templates[parent.ID] = parent
	r.store.templateExercises[parent.ID] = children
	r.store.mu.Unlock()

	r.store.committed(stream.TopicTemplates)
	return nil
}

// SetHidden flips the visibility flag.
func (r *TemplateRepository) SetHidden(ctx context.Context, id string, hidden bool) error {
	r.store.mu.Lock()
	rec, exists := r.store.templates[id]
	if !exists {
		r.store.mu.Unlock()
		return fmt.Errorf("template %s: %w", id, domain.ErrNotFound)
	}
	rec.IsHidden = hidden
	r.store.templates[id] = rec
	r.store.mu.Unlock()

	r.store.committed(stream.TopicTemplates)
	return nil
}

// Delete removes the template and its exercise rows.
func (r *TemplateRepository) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	delete(r.store.templates, id)
	delete(r.store.templateExercises, id)
	r.store.mu.Unlock()

	r.store.committed(stream.TopicTemplates)
	return nil
}

// TemplateExerciseRows returns the stored child rows of a template, for cascade checks.
func (r *TemplateRepository) TemplateExerciseRows(id string) []persistence.TemplateExerciseRecord {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return append([]persistence.TemplateExerciseRecord(nil), r.store.templateExercises[id]...)
}
