package domain

import (
	"fmt"
	"math"
	"strings"
)

// WeightUnit is the unit a weight is expressed in.
type WeightUnit string

const (
	Kilograms WeightUnit = "kg"
	Pounds    WeightUnit = "lb"
)

const poundsPerKilogram = 2.20462

// ParseWeightUnit accepts "kg"/"lb" and their long forms, case-insensitively.
func ParseWeightUnit(raw string) (WeightUnit, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "kg", "kgs", "kilogram", "kilograms", "":
		return Kilograms, nil
	case "lb", "lbs", "pound", "pounds":
		return Pounds, nil
	}
	return "", fmt.Errorf("unknown weight unit %q", raw)
}

// ConvertWeight converts value between units at full precision.
func ConvertWeight(value float64, from, to WeightUnit) float64 {
	if from == to {
		return value
	}
	if to == Pounds {
		return value * poundsPerKilogram
	}
	return value / poundsPerKilogram
}

// DisplayWeight converts a stored kilogram value to unit and rounds it to two decimal places.
// Stored values are never rounded.
func DisplayWeight(kilograms float64, unit WeightUnit) float64 {
	return math.Round(ConvertWeight(kilograms, Kilograms, unit)*100) / 100
}

// Volume is weight × reps × sets for one performed exercise.
func (p PerformedExercise) Volume() float64 {
	return p.Weight * float64(p.Reps) * float64(p.Sets)
}

// TotalVolume sums the volume of every performed exercise, in the unit weights were recorded in.
func (s WorkoutSession) TotalVolume() float64 {
	var total float64
	for _, ex := range s.Exercises {
		total += ex.Volume()
	}
	return total
}
