// Package api exposes HTTP handlers for exercises, workout templates and workout sessions.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"example.com/workouttracker/internal/auth"
	"example.com/workouttracker/internal/domain"
	"example.com/workouttracker/internal/platform/logger"
)

// Handler coordinates HTTP requests with the domain services.
type Handler struct {
	exercises *domain.ExerciseService
	templates *domain.TemplateService
	sessions  *domain.SessionService
	log       *logger.Logger
}

// NewHandler builds a Handler.
func NewHandler(exercises *domain.ExerciseService, templates *domain.TemplateService, sessions *domain.SessionService, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{exercises: exercises, templates: templates, sessions: sessions, log: log}
}

// RegisterRoutes wires endpoints to the mux. Every /v1 route requires claims placed on the context
// by auth.Middleware.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	read := auth.RequireScope(auth.ScopeWorkoutsRead)
	write := auth.RequireScope(auth.ScopeWorkoutsWrite)

	mux.HandleFunc("GET /v1/exercises", read(h.listExercises))
	mux.HandleFunc("POST /v1/exercises", write(h.createExercise))
	mux.HandleFunc("GET /v1/exercises/stream", read(h.streamExercises))
	mux.HandleFunc("GET /v1/exercises/{id}", read(h.getExercise))
	mux.HandleFunc("PUT /v1/exercises/{id}", write(h.updateExercise))
	mux.HandleFunc("DELETE /v1/exercises/{id}", write(h.deleteExercise))

	mux.HandleFunc("GET /v1/templates", read(h.listTemplates))
	mux.HandleFunc("POST /v1/templates", write(h.createTemplate))
	mux.HandleFunc("GET /v1/templates/hidden", read(h.listHiddenTemplates))
	mux.HandleFunc("GET /v1/templates/stream", read(h.streamTemplates))
	mux.HandleFunc("GET /v1/templates/{id}", read(h.getTemplate))
	mux.HandleFunc("PUT /v1/templates/{id}", write(h.updateTemplate))
	mux.HandleFunc("DELETE /v1/templates/{id}", write(h.deleteTemplate))
	mux.HandleFunc("POST /v1/templates/{id}/hide", write(h.hideTemplate))
	mux.HandleFunc("POST /v1/templates/{id}/unhide", write(h.unhideTemplate))

	mux.HandleFunc("GET /v1/sessions", read(h.listSessions))
	mux.HandleFunc("POST /v1/sessions", write(h.createSession))
	mux.HandleFunc("GET /v1/sessions/stream", read(h.streamSessions))
	mux.HandleFunc("GET /v1/sessions/{id}", read(h.getSession))
	mux.HandleFunc("PUT /v1/sessions/{id}", write(h.updateSession))
	mux.HandleFunc("DELETE /v1/sessions/{id}", write(h.deleteSession))

	mux.HandleFunc("GET /healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return false
	}
	return true
}

// writeServiceError maps domain errors onto HTTP statuses.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, "validation_failed", verr.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", err.Error())
	default:
		h.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
	}
}

func writeNotFound(w http.ResponseWriter, what string) {
	writeError(w, http.StatusNotFound, "not_found", what+" not found")
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
