package api

import (
	"net/http"

	"example.com/workouttracker/internal/domain"
)

// Weights are stored in kilograms at full precision; the unit query parameter selects the unit of
// request and response bodies, and only responses are rounded.

// SessionView exposes a session with weights in the requested unit.
type SessionView struct {
	ID              string                  `json:"id"`
	Date            int64                   `json:"date"`
	DurationSeconds int64                   `json:"duration_seconds"`
	TemplateID      string                  `json:"template_id,omitempty"`
	Notes           string                  `json:"notes,omitempty"`
	Exercises       []PerformedExerciseView `json:"exercises"`
	Unit            domain.WeightUnit       `json:"unit"`
	TotalVolume     float64                 `json:"total_volume"`
}

// PerformedExerciseView is one performed exercise of a SessionView.
type PerformedExerciseView struct {
	ID         string  `json:"id"`
	ExerciseID int64   `json:"exercise_id"`
	Weight     float64 `json:"weight"`
	Reps       int     `json:"reps"`
	Sets       int     `json:"sets"`
	Volume     float64 `json:"volume"`
}

// SessionListResponse packages session list results.
type SessionListResponse struct {
	Items []SessionView `json:"items"`
}

func toSessionView(s domain.WorkoutSession, unit domain.WeightUnit) SessionView {
	view := SessionView{
		ID:              s.ID,
		Date:            s.Date,
		DurationSeconds: s.DurationSeconds,
		TemplateID:      s.TemplateID,
		Notes:           s.Notes,
		Exercises:       make([]PerformedExerciseView, 0, len(s.Exercises)),
		Unit:            unit,
		TotalVolume:     domain.DisplayWeight(s.TotalVolume(), unit),
	}
	for _, ex := range s.Exercises {
		view.Exercises = append(view.Exercises, PerformedExerciseView{
			ID:         ex.ID,
			ExerciseID: ex.ExerciseID,
			Weight:     domain.DisplayWeight(ex.Weight, unit),
			Reps:       ex.Reps,
			Sets:       ex.Sets,
			Volume:     domain.DisplayWeight(ex.Volume(), unit),
		})
	}
	return view
}

func toSessionViews(sessions []domain.WorkoutSession, unit domain.WeightUnit) SessionListResponse {
	resp := SessionListResponse{Items: make([]SessionView, 0, len(sessions))}
	for _, s := range sessions {
		resp.Items = append(resp.Items, toSessionView(s, unit))
	}
	return resp
}

// toKilograms converts request weights in unit to the stored unit.
func toKilograms(s domain.WorkoutSession, unit domain.WeightUnit) domain.WorkoutSession {
	if unit == domain.Kilograms {
		return s
	}
	exercises := make([]domain.PerformedExercise, len(s.Exercises))
	for i, ex := range s.Exercises {
		ex.Weight = domain.ConvertWeight(ex.Weight, unit, domain.Kilograms)
		exercises[i] = ex
	}
	s.Exercises = exercises
	return s
}

func weightUnit(w http.ResponseWriter, r *http.Request) (domain.WeightUnit, bool) {
	unit, err := domain.ParseWeightUnit(r.URL.Query().Get("unit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return "", false
	}
	return unit, true
}

func (h *Handler) listSessions(w http.ResponseWriter, r *http.Request) {
	unit, ok := weightUnit(w, r)
	if !ok {
		return
	}
	sessions, err := h.sessions.ListSessions(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionViews(sessions, unit))
}

func (h *Handler) streamSessions(w http.ResponseWriter, r *http.Request) {
	unit, ok := weightUnit(w, r)
	if !ok {
		return
	}
	serveStream(h, w, r, h.sessions.WatchSessions(r.Context()), func(sessions []domain.WorkoutSession) interface{} {
		return toSessionViews(sessions, unit)
	})
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	unit, ok := weightUnit(w, r)
	if !ok {
		return
	}
	session, err := h.sessions.GetSession(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if session == nil {
		writeNotFound(w, "session")
		return
	}
	writeJSON(w, http.StatusOK, toSessionView(*session, unit))
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	unit, ok := weightUnit(w, r)
	if !ok {
		return
	}
	var req domain.WorkoutSession
	if !decodeBody(w, r, &req) {
		return
	}
	created, err := h.sessions.CreateSession(r.Context(), toKilograms(req, unit))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSessionView(created, unit))
}

func (h *Handler) updateSession(w http.ResponseWriter, r *http.Request) {
	unit, ok := weightUnit(w, r)
	if !ok {
		return
	}
	var req domain.WorkoutSession
	if !decodeBody(w, r, &req) {
		return
	}
	req.ID = r.PathValue("id")
	updated, err := h.sessions.UpdateSession(r.Context(), toKilograms(req, unit))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionView(updated, unit))
}

func (h *Handler) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.DeleteSession(r.Context(), r.PathValue("id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
