package domain

import "context"

// ExerciseRepository persists exercises. List and WatchAll exclude hidden exercises and are
// ordered by name.
type ExerciseRepository interface {
	List(ctx context.Context) ([]Exercise, error)
	ListIncludingHidden(ctx context.Context) ([]Exercise, error)
	WatchAll(ctx context.Context) <-chan []Exercise
	Get(ctx context.Context, id int64) (*Exercise, error)
	Search(ctx context.Context, query string) ([]Exercise, error)
	WatchSearch(ctx context.Context, query string) <-chan []Exercise
	Create(ctx context.Context, exercise Exercise) error
	Update(ctx context.Context, exercise Exercise) error
	Delete(ctx context.Context, id int64) error
}

// TemplateRepository persists templates with their exercises. List and WatchAll exclude hidden
// templates and are ordered by title; children are ordered by OrderIndex.
type TemplateRepository interface {
	List(ctx context.Context) ([]WorkoutTemplate, error)
	ListHidden(ctx context.Context) ([]WorkoutTemplate, error)
	WatchAll(ctx context.Context) <-chan []WorkoutTemplate
	WatchHidden(ctx context.Context) <-chan []WorkoutTemplate
	Get(ctx context.Context, id string) (*WorkoutTemplate, error)
	Search(ctx context.Context, query string) ([]WorkoutTemplate, error)
	WatchSearch(ctx context.Context, query string) <-chan []WorkoutTemplate
	Create(ctx context.Context, template WorkoutTemplate) error
	Update(ctx context.Context, template WorkoutTemplate) error
	SetHidden(ctx context.Context, id string, hidden bool) error
	Delete(ctx context.Context, id string) error
}

// SessionRepository persists workout sessions, newest first.
type SessionRepository interface {
	List(ctx context.Context) ([]WorkoutSession, error)
	WatchAll(ctx context.Context) <-chan []WorkoutSession
	Get(ctx context.Context, id string) (*WorkoutSession, error)
	Create(ctx context.Context, session WorkoutSession) error
	Update(ctx context.Context, session WorkoutSession) error
	Delete(ctx context.Context, id string) error
}
