package domain

import (
	"context"
	"fmt"
	"slices"
)

// TemplateService holds the workout template use cases.
type TemplateService struct {
	repo TemplateRepository
	ids  IDGenerator
}

// NewTemplateService constructs a TemplateService.
func NewTemplateService(repo TemplateRepository, opts ...ServiceOption) *TemplateService {
	o := buildOptions(opts)
	return &TemplateService{repo: repo, ids: o.ids}
}

// CreateTemplate validates the template, fills in missing template and exercise IDs and stores it.
func (s *TemplateService) CreateTemplate(ctx context.Context, template WorkoutTemplate) (WorkoutTemplate, error) {
	err := func() error {
		if err := template.validate(); err != nil {
			return err
		}
		if blank(template.ID) {
			template.ID = s.ids.StringID()
		}
		template.Exercises = slices.Clone(template.Exercises)
		for i := range template.Exercises {
			if blank(template.Exercises[i].ID) {
				template.Exercises[i].ID = s.ids.StringID()
			}
		}
		if err := s.repo.Create(ctx, template); err != nil {
			return fmt.Errorf("create template: %w", err)
		}
		return nil
	}()
	record("template", "create", err)
	if err != nil {
		return WorkoutTemplate{}, err
	}
	return template, nil
}

// UpdateTemplate replaces a stored template and all of its exercises. Every ID must already be set.
func (s *TemplateService) UpdateTemplate(ctx context.Context, template WorkoutTemplate) (WorkoutTemplate, error) {
	err := func() error {
		if blank(template.ID) {
			return invalid("id", "is required")
		}
		if err := template.validate(); err != nil {
			return err
		}
		for i, ex := range template.Exercises {
			if blank(ex.ID) {
				return invalid(fmt.Sprintf("exercises[%d].id", i), "is required")
			}
		}
		if err := s.repo.Update(ctx, template); err != nil {
			return fmt.Errorf("update template %s: %w", template.ID, err)
		}
		return nil
	}()
	record("template", "update", err)
	if err != nil {
		return WorkoutTemplate{}, err
	}
	return template, nil
}

// DeleteTemplate removes a template and its exercises.
func (s *TemplateService) DeleteTemplate(ctx context.Context, id string) error {
	var err error
	if blank(id) {
		err = invalid("id", "is required")
	} else if repoErr := s.repo.Delete(ctx, id); repoErr != nil {
		err = fmt.Errorf("delete template %s: %w", id, repoErr)
	}
	record("template", "delete", err)
	return err
}

// HideTemplate removes a template from the visible list without deleting it.
func (s *TemplateService) HideTemplate(ctx context.Context, id string) error {
	return s.setHidden(ctx, id, true, "hide")
}

// UnhideTemplate returns a hidden template to the visible list.
func (s *TemplateService) UnhideTemplate(ctx context.Context, id string) error {
	return s.setHidden(ctx, id, false, "unhide")
}

func (s *TemplateService) setHidden(ctx context.Context, id string, hidden bool, op string) error {
	var err error
	if blank(id) {
		err = invalid("id", "is required")
	} else if repoErr := s.repo.SetHidden(ctx, id, hidden); repoErr != nil {
		err = fmt.Errorf("%s template %s: %w", op, id, repoErr)
	}
	record("template", op, err)
	return err
}

// GetTemplate returns the template or nil when it does not exist.
func (s *TemplateService) GetTemplate(ctx context.Context, id string) (*WorkoutTemplate, error) {
	template, err := s.repo.Get(ctx, id)
	if err != nil {
		err = fmt.Errorf("get template %s: %w", id, err)
	}
	record("template", "get", err)
	return template, err
}

// ListTemplates returns the visible templates ordered by title.
func (s *TemplateService) ListTemplates(ctx context.Context) ([]WorkoutTemplate, error) {
	templates, err := s.repo.List(ctx)
	if err != nil {
		err = fmt.Errorf("list templates: %w", err)
	}
	record("template", "list", err)
	return templates, err
}

// ListHiddenTemplates returns only hidden templates ordered by title.
func (s *TemplateService) ListHiddenTemplates(ctx context.Context) ([]WorkoutTemplate, error) {
	templates, err := s.repo.ListHidden(ctx)
	if err != nil {
		err = fmt.Errorf("list hidden templates: %w", err)
	}
	record("template", "list_hidden", err)
	return templates, err
}

// SearchTemplates matches query against template titles.
func (s *TemplateService) SearchTemplates(ctx context.Context, query string) ([]WorkoutTemplate, error) {
	templates, err := s.repo.Search(ctx, query)
	if err != nil {
		err = fmt.Errorf("search templates: %w", err)
	}
	record("template", "search", err)
	return templates, err
}

// WatchTemplates streams the visible templates until ctx is done.
func (s *TemplateService) WatchTemplates(ctx context.Context) <-chan []WorkoutTemplate {
	return s.repo.WatchAll(ctx)
}

// WatchHiddenTemplates streams the hidden templates until ctx is done.
func (s *TemplateService) WatchHiddenTemplates(ctx context.Context) <-chan []WorkoutTemplate {
	return s.repo.WatchHidden(ctx)
}

// WatchSearch streams SearchTemplates results until ctx is done.
func (s *TemplateService) WatchSearch(ctx context.Context, query string) <-chan []WorkoutTemplate {
	return s.repo.WatchSearch(ctx, query)
}
