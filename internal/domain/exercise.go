package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Exercise is a movement in the user's library.
type Exercise struct {
	ID               int64         `json:"id"`
	Name             string        `json:"name"`
	PrimaryMuscles   []MuscleGroup `json:"primary_muscles"`
	SecondaryMuscles []MuscleGroup `json:"secondary_muscles"`
	Description      string        `json:"description"`
	Instructions     []string      `json:"instructions"`
	Difficulty       Difficulty    `json:"difficulty"`
	Equipment        []Equipment   `json:"equipment"`
	Category         Category      `json:"category"`
	Type             ExerciseType  `json:"type"`
	ImageURL         string        `json:"image_url,omitempty"`
	VideoURL         string        `json:"video_url,omitempty"`
	IsCustom         bool          `json:"is_custom"`
	CreatedBy        string        `json:"created_by,omitempty"`
	IsHidden         bool          `json:"is_hidden"`
}

func (e Exercise) validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return invalid("name", "is required")
	}
	if len(e.PrimaryMuscles) == 0 {
		return invalid("primary_muscles", "must contain at least one muscle group")
	}
	if err := knownList("primary_muscles", e.PrimaryMuscles, MuscleGroups); err != nil {
		return err
	}
	if err := knownList("secondary_muscles", e.SecondaryMuscles, MuscleGroups); err != nil {
		return err
	}
	if err := knownList("equipment", e.Equipment, EquipmentKinds); err != nil {
		return err
	}
	if err := knownValue("difficulty", e.Difficulty, Difficulties); err != nil {
		return err
	}
	if err := knownValue("category", e.Category, Categories); err != nil {
		return err
	}
	return knownValue("type", e.Type, ExerciseTypes)
}

// normalized returns e with nil lists replaced by empty ones, the form stores read back.
func (e Exercise) normalized() Exercise {
	e.PrimaryMuscles = emptyIfNil(e.PrimaryMuscles)
	e.SecondaryMuscles = emptyIfNil(e.SecondaryMuscles)
	e.Instructions = emptyIfNil(e.Instructions)
	e.Equipment = emptyIfNil(e.Equipment)
	return e
}

func knownList[T ~string](field string, values, known []T) error {
	for i, v := range values {
		if !slices.Contains(known, v) {
			return invalid(fmt.Sprintf("%s[%d]", field, i), fmt.Sprintf("unknown value %q", v))
		}
	}
	return nil
}

// knownValue accepts the empty value; optional enums may be unset.
func knownValue[T ~string](field string, value T, known []T) error {
	if value == "" || slices.Contains(known, value) {
		return nil
	}
	return invalid(field, fmt.Sprintf("unknown value %q", value))
}

func emptyIfNil[T any](values []T) []T {
	if values == nil {
		return []T{}
	}
	return values
}

// TargetsMuscle reports whether m is one of the primary or secondary muscles.
func (e Exercise) TargetsMuscle(m MuscleGroup) bool {
	return slices.Contains(e.PrimaryMuscles, m) || slices.Contains(e.SecondaryMuscles, m)
}

// UsesEquipment reports whether eq is in the exercise's equipment list.
func (e Exercise) UsesEquipment(eq Equipment) bool {
	return slices.Contains(e.Equipment, eq)
}
