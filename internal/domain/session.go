package domain

import "fmt"

// WorkoutSession is a dated record of exercises actually performed.
type WorkoutSession struct {
	ID              string              `json:"id"`
	Date            int64               `json:"date"`
	DurationSeconds int64               `json:"duration_seconds"`
	TemplateID      string              `json:"template_id,omitempty"`
	Notes           string              `json:"notes,omitempty"`
	Exercises       []PerformedExercise `json:"exercises"`
}

// PerformedExercise is what was done for one exercise in a session.
type PerformedExercise struct {
	ID         string  `json:"id"`
	ExerciseID int64   `json:"exercise_id"`
	Weight     float64 `json:"weight"`
	Reps       int     `json:"reps"`
	Sets       int     `json:"sets"`
}

func (s WorkoutSession) validate() error {
	if s.Date <= 0 {
		return invalid("date", "must be a positive epoch millisecond timestamp")
	}
	if s.DurationSeconds < 0 {
		return invalid("duration_seconds", "must not be negative")
	}
	for i, ex := range s.Exercises {
		field := func(name string) string { return fmt.Sprintf("exercises[%d].%s", i, name) }
		switch {
		case ex.ExerciseID <= 0:
			return invalid(field("exercise_id"), "must be positive")
		case ex.Sets <= 0:
			return invalid(field("sets"), "must be positive")
		case ex.Reps <= 0:
			return invalid(field("reps"), "must be positive")
		case ex.Weight < 0:
			return invalid(field("weight"), "must not be negative")
		}
	}
	return nil
}
