package api

import (
	"net/http"
	"strings"

	"example.com/workouttracker/internal/domain"
)

// TemplateListResponse packages template list results.
type TemplateListResponse struct {
	Items []domain.WorkoutTemplate `json:"items"`
}

func (h *Handler) listTemplates(w http.ResponseWriter, r *http.Request) {
	var (
		items []domain.WorkoutTemplate
		err   error
	)
	if query := strings.TrimSpace(r.URL.Query().Get("query")); query != "" {
		items, err = h.templates.SearchTemplates(r.Context(), query)
	} else {
		items, err = h.templates.ListTemplates(r.Context())
	}
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TemplateListResponse{Items: nonNil(items)})
}

func (h *Handler) listHiddenTemplates(w http.ResponseWriter, r *http.Request) {
	items, err := h.templates.ListHiddenTemplates(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TemplateListResponse{Items: nonNil(items)})
}

func (h *Handler) streamTemplates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var updates <-chan []domain.WorkoutTemplate
	switch query := strings.TrimSpace(q.Get("query")); {
	case q.Get("hidden") == "true":
		updates = h.templates.WatchHiddenTemplates(r.Context())
	case query != "":
		updates = h.templates.WatchSearch(r.Context(), query)
	default:
		updates = h.templates.WatchTemplates(r.Context())
	}
	serveStream(h, w, r, updates, func(items []domain.WorkoutTemplate) interface{} {
		return TemplateListResponse{Items: nonNil(items)}
	})
}

func (h *Handler) getTemplate(w http.ResponseWriter, r *http.Request) {
	template, err := h.templates.GetTemplate(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if template == nil {
		writeNotFound(w, "template")
		return
	}
	writeJSON(w, http.StatusOK, template)
}

func (h *Handler) createTemplate(w http.ResponseWriter, r *http.Request) {
	var req domain.WorkoutTemplate
	if !decodeBody(w, r, &req) {
		return
	}
	created, err := h.templates.CreateTemplate(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) updateTemplate(w http.ResponseWriter, r *http.Request) {
	var req domain.WorkoutTemplate
	if !decodeBody(w, r, &req) {
		return
	}
	req.ID = r.PathValue("id")
	updated, err := h.templates.UpdateTemplate(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := h.templates.DeleteTemplate(r.Context(), r.PathValue("id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) hideTemplate(w http.ResponseWriter, r *http.Request) {
	if err := h.templates.HideTemplate(r.Context(), r.PathValue("id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) unhideTemplate(w http.ResponseWriter, r *http.Request) {
	if err := h.templates.UnhideTemplate(r.Context(), r.PathValue("id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
