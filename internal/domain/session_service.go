package domain

import (
	"context"
	"fmt"
	"slices"
)

// SessionService holds the workout session use cases.
type SessionService struct {
	repo SessionRepository
	ids  IDGenerator
}

// NewSessionService constructs a SessionService.
func NewSessionService(repo SessionRepository, opts ...ServiceOption) *SessionService {
	o := buildOptions(opts)
	return &SessionService{repo: repo, ids: o.ids}
}

// CreateSession validates the session, fills in missing IDs and stores it with its exercises.
func (s *SessionService) CreateSession(ctx context.Context, session WorkoutSession) (WorkoutSession, error) {
	err := func() error {
		if err := session.validate(); err != nil {
			return err
		}
		if blank(session.ID) {
			session.ID = s.ids.StringID()
		}
		session.Exercises = slices.Clone(session.Exercises)
		for i := range session.Exercises {
			if blank(session.Exercises[i].ID) {
				session.Exercises[i].ID = s.ids.StringID()
			}
		}
		if err := s.repo.Create(ctx, session); err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		return nil
	}()
	record("session", "create", err)
	if err != nil {
		return WorkoutSession{}, err
	}
	return session, nil
}

// UpdateSession replaces a stored session and all of its performed exercises.
func (s *SessionService) UpdateSession(ctx context.Context, session WorkoutSession) (WorkoutSession, error) {
	err := func() error {
		if blank(session.ID) {
			return invalid("id", "is required")
		}
		if err := session.validate(); err != nil {
			return err
		}
		for i, ex := range session.Exercises {
			if blank(ex.ID) {
				return invalid(fmt.Sprintf("exercises[%d].id", i), "is required")
			}
		}
		if err := s.repo.Update(ctx, session); err != nil {
			return fmt.Errorf("update session %s: %w", session.ID, err)
		}
		return nil
	}()
	record("session", "update", err)
	if err != nil {
		return WorkoutSession{}, err
	}
	return session, nil
}

// DeleteSession removes a session and its performed exercises.
func (s *SessionService) DeleteSession(ctx context.Context, id string) error {
	var err error
	if blank(id) {
		err = invalid("id", "is required")
	} else if repoErr := s.repo.Delete(ctx, id); repoErr != nil {
		err = fmt.Errorf("delete session %s: %w", id, repoErr)
	}
	record("session", "delete", err)
	return err
}

// GetSession returns the session or nil when it does not exist.
func (s *SessionService) GetSession(ctx context.Context, id string) (*WorkoutSession, error) {
	session, err := s.repo.Get(ctx, id)
	if err != nil {
		err = fmt.Errorf("get session %s: %w", id, err)
	}
	record("session", "get", err)
	return session, err
}

// ListSessions returns every session, newest first.
func (s *SessionService) ListSessions(ctx context.Context) ([]WorkoutSession, error) {
	sessions, err := s.repo.List(ctx)
	if err != nil {
		err = fmt.Errorf("list sessions: %w", err)
	}
	record("session", "list", err)
	return sessions, err
}

// WatchSessions streams the session list until ctx is done.
func (s *SessionService) WatchSessions(ctx context.Context) <-chan []WorkoutSession {
	return s.repo.WatchAll(ctx)
}
