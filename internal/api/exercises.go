package api

import (
	"net/http"
	"strconv"
	"strings"

	"example.com/workouttracker/internal/auth"
	"example.com/workouttracker/internal/domain"
	"example.com/workouttracker/internal/persistence"
)

// ExerciseListResponse packages exercise list results.
type ExerciseListResponse struct {
	Items []domain.Exercise `json:"items"`
}

// exerciseFilter is the parsed form of the exercise list query string.
type exerciseFilter struct {
	query         string
	muscles       []domain.MuscleGroup
	equipment     []domain.Equipment
	includeHidden bool
}

func parseExerciseFilter(r *http.Request) (exerciseFilter, error) {
	q := r.URL.Query()
	f := exerciseFilter{
		query:         strings.TrimSpace(q.Get("query")),
		includeHidden: q.Get("include_hidden") == "true",
	}
	for _, raw := range splitValues(q["muscle"]) {
		decoded := persistence.DecodeMuscleGroup(raw)
		if !decoded.Recognized {
			return f, &domain.ValidationError{Field: "muscle", Reason: "unknown muscle group " + strconv.Quote(raw)}
		}
		f.muscles = append(f.muscles, decoded.Value)
	}
	for _, raw := range splitValues(q["equipment"]) {
		decoded := persistence.DecodeEquipment(raw)
		if !decoded.Recognized {
			return f, &domain.ValidationError{Field: "equipment", Reason: "unknown equipment " + strconv.Quote(raw)}
		}
		f.equipment = append(f.equipment, decoded.Value)
	}
	return f, nil
}

// splitValues accepts both repeated parameters and comma-separated lists.
func splitValues(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (h *Handler) listExercises(w http.ResponseWriter, r *http.Request) {
	f, err := parseExerciseFilter(r)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	var items []domain.Exercise
	switch {
	case len(f.muscles) > 0 || len(f.equipment) > 0:
		items, err = h.exercises.FilterExercises(r.Context(), f.query, f.muscles, f.equipment)
	case f.query != "":
		items, err = h.exercises.SearchExercises(r.Context(), f.query)
	case f.includeHidden:
		items, err = h.exercises.ListAllExercises(r.Context())
	default:
		items, err = h.exercises.ListExercises(r.Context())
	}
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ExerciseListResponse{Items: nonNil(items)})
}

func (h *Handler) streamExercises(w http.ResponseWriter, r *http.Request) {
	var updates <-chan []domain.Exercise
	if query := strings.TrimSpace(r.URL.Query().Get("query")); query != "" {
		updates = h.exercises.WatchSearch(r.Context(), query)
	} else {
		updates = h.exercises.WatchExercises(r.Context())
	}
	serveStream(h, w, r, updates, func(items []domain.Exercise) interface{} {
		return ExerciseListResponse{Items: nonNil(items)}
	})
}

func (h *Handler) getExercise(w http.ResponseWriter, r *http.Request) {
	id, ok := exerciseID(w, r)
	if !ok {
		return
	}
	exercise, err := h.exercises.GetExercise(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if exercise == nil {
		writeNotFound(w, "exercise")
		return
	}
	writeJSON(w, http.StatusOK, exercise)
}

func (h *Handler) createExercise(w http.ResponseWriter, r *http.Request) {
	var req domain.Exercise
	if !decodeBody(w, r, &req) {
		return
	}
	if req.IsCustom && req.CreatedBy == "" {
		if claims, ok := auth.FromContext(r.Context()); ok {
			req.CreatedBy = claims.Subject
		}
	}
	created, err := h.exercises.CreateExercise(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) updateExercise(w http.ResponseWriter, r *http.Request) {
	id, ok := exerciseID(w, r)
	if !ok {
		return
	}
	var req domain.Exercise
	if !decodeBody(w, r, &req) {
		return
	}
	req.ID = id
	updated, err := h.exercises.UpdateExercise(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteExercise(w http.ResponseWriter, r *http.Request) {
	id, ok := exerciseID(w, r)
	if !ok {
		return
	}
	if err := h.exercises.DeleteExercise(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func exerciseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "exercise id must be a positive integer")
		return 0, false
	}
	return id, true
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
