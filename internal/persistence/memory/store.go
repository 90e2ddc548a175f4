// Package memory keeps the stored record shapes in process memory for local development and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"example.com/workouttracker/internal/domain"
	"example.com/workouttracker/internal/observability"
	"example.com/workouttracker/internal/persistence"
	"example.com/workouttracker/internal/platform/logger"
	"example.com/workouttracker/internal/stream"
)

// Store holds every table. Repositories are views over one Store so that writes to one
// aggregate are visible to the others, as with a shared database handle.
type Store struct {
	mu                sync.RWMutex
	exercises         map[int64]persistence.ExerciseRecord
	templates         map[string]persistence.TemplateRecord
	templateExercises map[string][]persistence.TemplateExerciseRecord
	sessions          map[string]persistence.SessionRecord
	performed         map[string][]persistence.PerformedExerciseRecord

	notifier *stream.Notifier
	log      *logger.Logger
}

// NewStore constructs an empty Store. Writes are announced on notifier.
func NewStore(notifier *stream.Notifier, log *logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	if notifier == nil {
		notifier = stream.NewNotifier()
	}
	return &Store{
		exercises:         make(map[int64]persistence.ExerciseRecord),
		templates:         make(map[string]persistence.TemplateRecord),
		templateExercises: make(map[string][]persistence.TemplateExerciseRecord),
		sessions:          make(map[string]persistence.SessionRecord),
		performed:         make(map[string][]persistence.PerformedExerciseRecord),
		notifier:          notifier,
		log:               log,
	}
}

func (s *Store) committed(topic string) {
	observability.RecordWrite(topic, time.Now().UTC())
	s.notifier.Notify(topic)
}

// ExerciseRepository implements domain.ExerciseRepository.
type ExerciseRepository struct {
	store *Store
}

// NewExerciseRepository constructs an ExerciseRepository over store.
func NewExerciseRepository(store *Store) *ExerciseRepository {
	return &ExerciseRepository{store: store}
}

func (r *ExerciseRepository) decode(rec persistence.ExerciseRecord) domain.Exercise {
	ex, dropped := persistence.ExerciseFromRecord(rec)
	persistence.ReportDropped(r.store.log, "exercise", rec.ID, dropped)
	return ex
}

func (r *ExerciseRepository) collect(match func(domain.Exercise) bool) []domain.Exercise {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]domain.Exercise, 0, len(r.store.exercises))
	for _, rec := range r.store.exercises {
		ex := r.decode(rec)
		if match(ex) {
			out = append(out, ex)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if a != b {
			return a < b
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// List returns visible exercises ordered by name.
func (r *ExerciseRepository) List(ctx context.Context) ([]domain.Exercise, error) {
	return r.collect(func(ex domain.Exercise) bool { return !ex.IsHidden }), nil
}

// ListIncludingHidden returns every exercise ordered by name.
func (r *ExerciseRepository) ListIncludingHidden(ctx context.Context) ([]domain.Exercise, error) {
	return r.collect(func(domain.Exercise) bool { return true }), nil
}

// WatchAll streams List.
func (r *ExerciseRepository) WatchAll(ctx context.Context) <-chan []domain.Exercise {
	return stream.Watch(ctx, r.store.notifier, stream.TopicExercises, r.List, r.store.log)
}

// Get returns the exercise or nil.
func (r *ExerciseRepository) Get(ctx context.Context, id int64) (*domain.Exercise, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rec, ok := r.store.exercises[id]
	if !ok {
		return nil, nil
	}
	ex := r.decode(rec)
	return &ex, nil
}

// Search returns visible exercises matching domain.MatchesSearch.
func (r *ExerciseRepository) Search(ctx context.Context, query string) ([]domain.Exercise, error) {
	return r.collect(func(ex domain.Exercise) bool {
		return !ex.IsHidden && domain.MatchesSearch(ex, query)
	}), nil
}

// WatchSearch streams Search.
func (r *ExerciseRepository) WatchSearch(ctx context.Context, query string) <-chan []domain.Exercise {
	load := func(ctx context.Context) ([]domain.Exercise, error) { return r.Search(ctx, query) }
	return stream.Watch(ctx, r.store.notifier, stream.TopicExercises, load, r.store.log)
}

// Create stores a new exercise.
func (r *ExerciseRepository) Create(ctx context.Context, exercise domain.Exercise) error {
	r.store.mu.Lock()
	if _, exists := r.store.exercises[exercise.ID]; exists {
		r.store.mu.Unlock()
		return fmt.Errorf("exercise %d: %w", exercise.ID, domain.ErrConflict)
	}
	r.store.exercises[exercise.ID] = persistence.ExerciseToRecord(exercise)
	r.store.mu.Unlock()

	r.store.committed(stream.TopicExercises)
	return nil
}

// Update replaces a stored exercise.
func (r *ExerciseRepository) Update(ctx context.Context, exercise domain.Exercise) error {
	r.store.mu.Lock()
	if _, exists := r.store.exercises[exercise.ID]; !exists {
		r.store.mu.Unlock()
		return fmt.Errorf("exercise %d: %w", exercise.ID, domain.ErrNotFound)
	}
	r.store.exercises[exercise.ID] = persistence.ExerciseToRecord(exercise)
	r.store.mu.Unlock()

	r.store.committed(stream.TopicExercises)
	return nil
}

// Delete removes an exercise. Rows referencing it are kept.
func (r *ExerciseRepository) Delete(ctx context.Context, id int64) error {
	r.store.mu.Lock()
	delete(r.store.exercises, id)
	r.store.mu.Unlock()

	r.store.committed(stream.TopicExercises)
	return nil
}
