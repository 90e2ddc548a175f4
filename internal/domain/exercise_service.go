package domain

import (
	"context"
	"errors"
	"fmt"

	"example.com/workouttracker/internal/observability"
)

// ExerciseService holds the exercise use cases.
type ExerciseService struct {
	repo ExerciseRepository
	ids  IDGenerator
}

// NewExerciseService constructs an ExerciseService.
func NewExerciseService(repo ExerciseRepository, opts ...ServiceOption) *ExerciseService {
	o := buildOptions(opts)
	return &ExerciseService{repo: repo, ids: o.ids}
}

// CreateExercise validates the exercise, assigns an ID when it has none and stores it.
func (s *ExerciseService) CreateExercise(ctx context.Context, exercise Exercise) (Exercise, error) {
	err := s.create(ctx, &exercise)
	record("exercise", "create", err)
	if err != nil {
		return Exercise{}, err
	}
	return exercise, nil
}

func (s *ExerciseService) create(ctx context.Context, exercise *Exercise) error {
	if err := exercise.validate(); err != nil {
		return err
	}
	*exercise = exercise.normalized()
	if exercise.ID <= 0 {
		exercise.ID = s.ids.NumericID()
	}
	if err := s.repo.Create(ctx, *exercise); err != nil {
		return fmt.Errorf("create exercise: %w", err)
	}
	return nil
}

// UpdateExercise replaces a stored exercise wholesale.
func (s *ExerciseService) UpdateExercise(ctx context.Context, exercise Exercise) (Exercise, error) {
	err := func() error {
		if exercise.ID <= 0 {
			return invalid("id", "must be positive")
		}
		if err := exercise.validate(); err != nil {
			return err
		}
		exercise = exercise.normalized()
		if err := s.repo.Update(ctx, exercise); err != nil {
			return fmt.Errorf("update exercise %d: %w", exercise.ID, err)
		}
		return nil
	}()
	record("exercise", "update", err)
	if err != nil {
		return Exercise{}, err
	}
	return exercise, nil
}

// DeleteExercise removes an exercise. Templates and sessions referencing it are left untouched.
func (s *ExerciseService) DeleteExercise(ctx context.Context, id int64) error {
	var err error
	if id <= 0 {
		err = invalid("id", "must be positive")
	} else if repoErr := s.repo.Delete(ctx, id); repoErr != nil {
		err = fmt.Errorf("delete exercise %d: %w", id, repoErr)
	}
	record("exercise", "delete", err)
	return err
}

// GetExercise returns the exercise or nil when it does not exist. Hidden exercises are returned.
func (s *ExerciseService) GetExercise(ctx context.Context, id int64) (*Exercise, error) {
	exercise, err := s.repo.Get(ctx, id)
	if err != nil {
		err = fmt.Errorf("get exercise %d: %w", id, err)
	}
	record("exercise", "get", err)
	return exercise, err
}

// ListExercises returns the visible exercises ordered by name.
func (s *ExerciseService) ListExercises(ctx context.Context) ([]Exercise, error) {
	exercises, err := s.repo.List(ctx)
	if err != nil {
		err = fmt.Errorf("list exercises: %w", err)
	}
	record("exercise", "list", err)
	return exercises, err
}

// ListAllExercises includes hidden exercises, for resolving names of referenced exercises.
func (s *ExerciseService) ListAllExercises(ctx context.Context) ([]Exercise, error) {
	exercises, err := s.repo.ListIncludingHidden(ctx)
	if err != nil {
		err = fmt.Errorf("list all exercises: %w", err)
	}
	record("exercise", "list_all", err)
	return exercises, err
}

// WatchExercises streams the visible exercise list until ctx is done.
func (s *ExerciseService) WatchExercises(ctx context.Context) <-chan []Exercise {
	return s.repo.WatchAll(ctx)
}

// SearchExercises matches query against name, description and muscle group names.
func (s *ExerciseService) SearchExercises(ctx context.Context, query string) ([]Exercise, error) {
	exercises, err := s.repo.Search(ctx, query)
	if err != nil {
		err = fmt.Errorf("search exercises: %w", err)
	}
	record("exercise", "search", err)
	return exercises, err
}

// WatchSearch streams SearchExercises results until ctx is done.
func (s *ExerciseService) WatchSearch(ctx context.Context, query string) <-chan []Exercise {
	return s.repo.WatchSearch(ctx, query)
}

// FilterExercises applies FilterExercises to the visible exercise list.
func (s *ExerciseService) FilterExercises(ctx context.Context, query string, muscles []MuscleGroup, equipment []Equipment) ([]Exercise, error) {
	exercises, err := s.repo.List(ctx)
	if err != nil {
		err = fmt.Errorf("filter exercises: %w", err)
		record("exercise", "filter", err)
		return nil, err
	}
	record("exercise", "filter", nil)
	return FilterExercises(exercises, query, muscles, equipment), nil
}

func record(entity, operation string, err error) {
	outcome := observability.OutcomeOK
	switch {
	case errors.Is(err, ErrValidation):
		outcome = observability.OutcomeInvalid
	case err != nil:
		outcome = observability.OutcomeError
	}
	observability.RecordOperation(entity, operation, outcome)
}
