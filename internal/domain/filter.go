package domain

import "strings"

// DisplayName renders the muscle group the way users type it, e.g. "lower back".
func (m MuscleGroup) DisplayName() string {
	return strings.ToLower(strings.ReplaceAll(string(m), "_", " "))
}

func (m MuscleGroup) matches(needle string) bool {
	return strings.Contains(m.DisplayName(), needle) || strings.Contains(strings.ToLower(string(m)), needle)
}

// FilterExercises returns the exercises that match query and cover every muscle group and every
// equipment item requested. A blank query or an empty set does not constrain. Input order is kept.
func FilterExercises(exercises []Exercise, query string, muscles []MuscleGroup, equipment []Equipment) []Exercise {
	needle := normalizeQuery(query)
	out := make([]Exercise, 0, len(exercises))
	for _, ex := range exercises {
		if needle != "" && !matchesFilterQuery(ex, needle) {
			continue
		}
		if !coversMuscles(ex, muscles) || !coversEquipment(ex, equipment) {
			continue
		}
		out = append(out, ex)
	}
	return out
}

// MatchesSearch is the exercise search predicate: name, description, or any primary or secondary
// muscle group name contains query, case-insensitively.
func MatchesSearch(ex Exercise, query string) bool {
	needle := normalizeQuery(query)
	if needle == "" {
		return true
	}
	if matchesFilterQuery(ex, needle) {
		return true
	}
	for _, m := range ex.SecondaryMuscles {
		if m.matches(needle) {
			return true
		}
	}
	return false
}

// MatchesTitle reports whether the template title contains query, case-insensitively.
func MatchesTitle(t WorkoutTemplate, query string) bool {
	needle := normalizeQuery(query)
	return needle == "" || strings.Contains(strings.ToLower(t.Title), needle)
}

func matchesFilterQuery(ex Exercise, needle string) bool {
	if strings.Contains(strings.ToLower(ex.Name), needle) || strings.Contains(strings.ToLower(ex.Description), needle) {
		return true
	}
	for _, m := range ex.PrimaryMuscles {
		if m.matches(needle) {
			return true
		}
	}
	return false
}

func coversMuscles(ex Exercise, required []MuscleGroup) bool {
	for _, m := range required {
		if !ex.TargetsMuscle(m) {
			return false
		}
	}
	return true
}

func coversEquipment(ex Exercise, required []Equipment) bool {
	for _, eq := range required {
		if !ex.UsesEquipment(eq) {
			return false
		}
	}
	return true
}

func normalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}
