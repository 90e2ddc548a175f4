// Package persistence maps domain objects to the row shapes the stores persist and back.
//
// Enum fields are stored by name; enum sets are stored as comma-delimited names. Decoding is
// lenient: a stored name that no longer matches a known value is dropped from the decoded object
// instead of failing the read, and is reported back to the caller as a Dropped entry so the store
// can log it. A write after such a read persists the reduced set.
package persistence

import (
	"slices"
	"strings"

	"example.com/workouttracker/internal/domain"
	"example.com/workouttracker/internal/observability"
	"example.com/workouttracker/internal/platform/logger"
)

const listSeparator = ","

// Decoded is the tagged result of decoding one stored enum name.
type Decoded[T ~string] struct {
	Value      T
	Raw        string
	Recognized bool
}

// Dropped records a stored value that did not decode.
type Dropped struct {
	Field string
	Raw   string
}

func decodeEnum[T ~string](raw string, known []T) Decoded[T] {
	clean := strings.TrimSpace(raw)
	candidate := T(strings.ToUpper(clean))
	if slices.Contains(known, candidate) {
		return Decoded[T]{Value: candidate, Raw: raw, Recognized: true}
	}
	return Decoded[T]{Raw: raw}
}

// DecodeMuscleGroup decodes a stored muscle group name.
func DecodeMuscleGroup(raw string) Decoded[domain.MuscleGroup] {
	return decodeEnum(raw, domain.MuscleGroups)
}

// DecodeEquipment decodes a stored equipment name.
func DecodeEquipment(raw string) Decoded[domain.Equipment] {
	return decodeEnum(raw, domain.EquipmentKinds)
}

// DecodeDifficulty decodes a stored difficulty name.
func DecodeDifficulty(raw string) Decoded[domain.Difficulty] {
	return decodeEnum(raw, domain.Difficulties)
}

// DecodeCategory decodes a stored category name.
func DecodeCategory(raw string) Decoded[domain.Category] {
	return decodeEnum(raw, domain.Categories)
}

// DecodeExerciseType decodes a stored exercise type name.
func DecodeExerciseType(raw string) Decoded[domain.ExerciseType] {
	return decodeEnum(raw, domain.ExerciseTypes)
}

// EncodeList joins enum names with the list separator. Nil and empty encode to "".
func EncodeList[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, listSeparator)
}

// DecodeList splits a stored list and decodes every element, returning recognised values in
// stored order and the raw elements that were dropped. An empty column decodes to an empty list.
func DecodeList[T ~string](raw string, decode func(string) Decoded[T]) ([]T, []string) {
	values := []T{}
	if strings.TrimSpace(raw) == "" {
		return values, nil
	}
	var dropped []string
	for _, part := range strings.Split(raw, listSeparator) {
		d := decode(part)
		if !d.Recognized {
			dropped = append(dropped, d.Raw)
			continue
		}
		values = append(values, d.Value)
	}
	return values, dropped
}

func decodeSingle[T ~string](field, raw string, decode func(string) Decoded[T], dropped *[]Dropped) T {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	d := decode(raw)
	if !d.Recognized {
		*dropped = append(*dropped, Dropped{Field: field, Raw: raw})
	}
	return d.Value
}

func decodeMany[T ~string](field, raw string, decode func(string) Decoded[T], dropped *[]Dropped) []T {
	values, skipped := DecodeList(raw, decode)
	for _, s := range skipped {
		*dropped = append(*dropped, Dropped{Field: field, Raw: s})
	}
	return values
}

// ReportDropped logs and counts values dropped while decoding the record identified by key.
func ReportDropped(log *logger.Logger, entity string, key interface{}, dropped []Dropped) {
	for _, d := range dropped {
		log.Warn("dropping unrecognized stored value", "entity", entity, "key", key, "field", d.Field, "value", d.Raw)
		observability.RecordDroppedEnum(d.Field, 1)
	}
}
