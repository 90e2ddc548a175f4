package domain

import (
	"fmt"
	"strings"
)

// WorkoutTemplate is a reusable plan of exercises that is not tied to a date.
type WorkoutTemplate struct {
	ID        string             `json:"id"`
	Title     string             `json:"title"`
	Exercises []TemplateExercise `json:"exercises"`
	IsDefault bool               `json:"is_default"`
	IsHidden  bool               `json:"is_hidden"`
}

// TemplateExercise is one planned entry of a template. OrderIndex defines execution order.
type TemplateExercise struct {
	ID          string `json:"id"`
	ExerciseID  int64  `json:"exercise_id"`
	Sets        int    `json:"sets"`
	Reps        int    `json:"reps"`
	OrderIndex  int    `json:"order_index"`
	RestSeconds *int   `json:"rest_seconds,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

func (t WorkoutTemplate) validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return invalid("title", "is required")
	}
	if len(t.Exercises) == 0 {
		return invalid("exercises", "must contain at least one exercise")
	}
	for i, ex := range t.Exercises {
		if err := ex.validate(i); err != nil {
			return err
		}
	}
	return nil
}

func (te TemplateExercise) validate(pos int) error {
	field := func(name string) string { return fmt.Sprintf("exercises[%d].%s", pos, name) }
	switch {
	case te.ExerciseID <= 0:
		return invalid(field("exercise_id"), "must be positive")
	case te.Sets <= 0:
		return invalid(field("sets"), "must be positive")
	case te.Reps <= 0:
		return invalid(field("reps"), "must be positive")
	case te.OrderIndex < 0:
		return invalid(field("order_index"), "must not be negative")
	case te.RestSeconds != nil && *te.RestSeconds <= 0:
		return invalid(field("rest_seconds"), "must be positive when set")
	}
	return nil
}
