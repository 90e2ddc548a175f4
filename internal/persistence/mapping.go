package persistence

import (
	"slices"
	"sort"

	"example.com/workouttracker/internal/domain"
)

// ExerciseRecord is the stored shape of an exercise.
type ExerciseRecord struct {
	ID               int64
	Name             string
	PrimaryMuscles   string
	SecondaryMuscles string
	Description      string
	Instructions     []string
	Difficulty       string
	Equipment        string
	Category         string
	Type             string
	ImageURL         *string
	VideoURL         *string
	IsCustom         bool
	CreatedBy        *string
	IsHidden         bool
}

// TemplateRecord is the stored shape of a template row without its exercises.
type TemplateRecord struct {
	ID        string
	Title     string
	IsDefault bool
	IsHidden  bool
}

// TemplateExerciseRecord is a child row of a template.
type TemplateExerciseRecord struct {
	ID          string
	TemplateID  string
	ExerciseID  int64
	Sets        int
	Reps        int
	OrderIndex  int
	RestSeconds *int
	Notes       *string
}

// SessionRecord is the stored shape of a session row without its exercises.
type SessionRecord struct {
	ID              string
	Date            int64
	DurationSeconds int64
	TemplateID      *string
	Notes           *string
}

// PerformedExerciseRecord is a child row of a session. Position keeps the recorded order.
type PerformedExerciseRecord struct {
	ID         string
	SessionID  string
	ExerciseID int64
	Weight     float64
	Reps       int
	Sets       int
	Position   int
}

// ExerciseToRecord maps an exercise to its stored shape.
func ExerciseToRecord(e domain.Exercise) ExerciseRecord {
	return ExerciseRecord{
		ID:               e.ID,
		Name:             e.Name,
		PrimaryMuscles:   EncodeList(e.PrimaryMuscles),
		SecondaryMuscles: EncodeList(e.SecondaryMuscles),
		Description:      e.Description,
		Instructions:     slices.Clone(e.Instructions),
		Difficulty:       string(e.Difficulty),
		Equipment:        EncodeList(e.Equipment),
		Category:         string(e.Category),
		Type:             string(e.Type),
		ImageURL:         optional(e.ImageURL),
		VideoURL:         optional(e.VideoURL),
		IsCustom:         e.IsCustom,
		CreatedBy:        optional(e.CreatedBy),
		IsHidden:         e.IsHidden,
	}
}

// ExerciseFromRecord maps a stored exercise back, reporting enum values it had to drop.
func ExerciseFromRecord(r ExerciseRecord) (domain.Exercise, []Dropped) {
	var dropped []Dropped
	e := domain.Exercise{
		ID:               r.ID,
		Name:             r.Name,
		PrimaryMuscles:   decodeMany("primary_muscles", r.PrimaryMuscles, DecodeMuscleGroup, &dropped),
		SecondaryMuscles: decodeMany("secondary_muscles", r.SecondaryMuscles, DecodeMuscleGroup, &dropped),
		Description:      r.Description,
		Difficulty:       decodeSingle("difficulty", r.Difficulty, DecodeDifficulty, &dropped),
		Equipment:        decodeMany("equipment", r.Equipment, DecodeEquipment, &dropped),
		Category:         decodeSingle("category", r.Category, DecodeCategory, &dropped),
		Type:             decodeSingle("type", r.Type, DecodeExerciseType, &dropped),
		ImageURL:         deref(r.ImageURL),
		VideoURL:         deref(r.VideoURL),
		IsCustom:         r.IsCustom,
		CreatedBy:        deref(r.CreatedBy),
		IsHidden:         r.IsHidden,
		Instructions:     []string{},
	}
	if len(r.Instructions) > 0 {
		e.Instructions = slices.Clone(r.Instructions)
	}
	return e, dropped
}

// TemplateToRecords splits a template into its parent row and child rows.
func TemplateToRecords(t domain.WorkoutTemplate) (TemplateRecord, []TemplateExerciseRecord) {
	parent := TemplateRecord{ID: t.ID, Title: t.Title, IsDefault: t.IsDefault, IsHidden: t.IsHidden}
	children := make([]TemplateExerciseRecord, 0, len(t.Exercises))
	for _, ex := range t.Exercises {
		children = append(children, TemplateExerciseRecord{
			ID:          ex.ID,
			TemplateID:  t.ID,
			ExerciseID:  ex.ExerciseID,
			Sets:        ex.Sets,
			Reps:        ex.Reps,
			OrderIndex:  ex.OrderIndex,
			RestSeconds: cloneInt(ex.RestSeconds),
			Notes:       optional(ex.Notes),
		})
	}
	return parent, children
}

// TemplateFromRecords rebuilds a template, ordering its exercises by OrderIndex whatever order
// the rows arrive in. Rows with equal OrderIndex keep their relative order.
func TemplateFromRecords(parent TemplateRecord, children []TemplateExerciseRecord) domain.WorkoutTemplate {
	sorted := slices.Clone(children)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].OrderIndex < sorted[j].OrderIndex })

	t := domain.WorkoutTemplate{
		ID:        parent.ID,
		Title:     parent.Title,
		IsDefault: parent.IsDefault,
		IsHidden:  parent.IsHidden,
		Exercises: make([]domain.TemplateExercise, 0, len(sorted)),
	}
	for _, c := range sorted {
		t.Exercises = append(t.Exercises, domain.TemplateExercise{
			ID:          c.ID,
			ExerciseID:  c.ExerciseID,
			Sets:        c.Sets,
			Reps:        c.Reps,
			OrderIndex:  c.OrderIndex,
			RestSeconds: cloneInt(c.RestSeconds),
			Notes:       deref(c.Notes),
		})
	}
	return t
}

// SessionToRecords splits a session into its parent row and child rows.
func SessionToRecords(s domain.WorkoutSession) (SessionRecord, []PerformedExerciseRecord) {
	parent := SessionRecord{
		ID:              s.ID,
		Date:            s.Date,
		DurationSeconds: s.DurationSeconds,
		TemplateID:      optional(s.TemplateID),
		Notes:           optional(s.Notes),
	}
	children := make([]PerformedExerciseRecord, 0, len(s.Exercises))
	for i, ex := range s.Exercises {
		children = append(children, PerformedExerciseRecord{
			ID:         ex.ID,
			SessionID:  s.ID,
			ExerciseID: ex.ExerciseID,
			Weight:     ex.Weight,
			Reps:       ex.Reps,
			Sets:       ex.Sets,
			Position:   i,
		})
	}
	return parent, children
}

// SessionFromRecords rebuilds a session with its exercises in recorded order.
func SessionFromRecords(parent SessionRecord, children []PerformedExerciseRecord) domain.WorkoutSession {
	sorted := slices.Clone(children)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })

	s := domain.WorkoutSession{
		ID:              parent.ID,
		Date:            parent.Date,
		DurationSeconds: parent.DurationSeconds,
		TemplateID:      deref(parent.TemplateID),
		Notes:           deref(parent.Notes),
		Exercises:       make([]domain.PerformedExercise, 0, len(sorted)),
	}
	for _, c := range sorted {
		s.Exercises = append(s.Exercises, domain.PerformedExercise{
			ID:         c.ID,
			ExerciseID: c.ExerciseID,
			Weight:     c.Weight,
			Reps:       c.Reps,
			Sets:       c.Sets,
		})
	}
	return s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
