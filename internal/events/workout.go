// Package events defines the change events published for exercises, templates and sessions.
package events

import "time"

// Event types.
const (
	TypeExerciseUpserted = "exercise.upserted"
	TypeExerciseDeleted  = "exercise.deleted"
	TypeTemplateSaved    = "template.saved"
	TypeTemplateDeleted  = "template.deleted"
	TypeSessionRecorded  = "session.recorded"
	TypeSessionDeleted   = "session.deleted"
)

// ExerciseUpserted is emitted when an exercise is created or replaced.
type ExerciseUpserted struct {
	ExerciseID     int64     `json:"exercise_id"`
	Name           string    `json:"name"`
	Difficulty     string    `json:"difficulty,omitempty"`
	PrimaryMuscles []string  `json:"primary_muscles"`
	Equipment      []string  `json:"equipment"`
	IsCustom       bool      `json:"is_custom"`
	IsHidden       bool      `json:"is_hidden"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ExerciseDeleted is emitted when an exercise is removed.
type ExerciseDeleted struct {
	ExerciseID int64     `json:"exercise_id"`
	DeletedAt  time.Time `json:"deleted_at"`
}

// TemplateSaved is emitted when a template is created, replaced, hidden or unhidden.
type TemplateSaved struct {
	TemplateID  string    `json:"template_id"`
	Title       string    `json:"title"`
	ExerciseIDs []int64   `json:"exercise_ids"`
	IsDefault   bool      `json:"is_default"`
	IsHidden    bool      `json:"is_hidden"`
	SavedAt     time.Time `json:"saved_at"`
}

// TemplateDeleted is emitted when a template and its exercises are removed.
type TemplateDeleted struct {
	TemplateID string    `json:"template_id"`
	DeletedAt  time.Time `json:"deleted_at"`
}

// SessionRecorded is emitted when a session is created or replaced.
type SessionRecorded struct {
	SessionID       string    `json:"session_id"`
	Date            int64     `json:"date"`
	DurationSeconds int64     `json:"duration_seconds"`
	TemplateID      string    `json:"template_id,omitempty"`
	ExerciseCount   int       `json:"exercise_count"`
	TotalVolume     float64   `json:"total_volume"`
	RecordedAt      time.Time `json:"recorded_at"`
}

// SessionDeleted is emitted when a session and its performed exercises are removed.
type SessionDeleted struct {
	SessionID string    `json:"session_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

// Route describes where an event type is delivered.
type Route struct {
	Topic         string
	AggregateType string
}

// Catalog maps every event type to its route.
var Catalog = map[string]Route{
	TypeExerciseUpserted: {Topic: "exercise_events", AggregateType: "exercise"},
	TypeExerciseDeleted:  {Topic: "exercise_events", AggregateType: "exercise"},
	TypeTemplateSaved:    {Topic: "template_events", AggregateType: "template"},
	TypeTemplateDeleted:  {Topic: "template_events", AggregateType: "template"},
	TypeSessionRecorded:  {Topic: "session_events", AggregateType: "session"},
	TypeSessionDeleted:   {Topic: "session_events", AggregateType: "session"},
}
