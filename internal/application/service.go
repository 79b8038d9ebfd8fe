package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=application
type Repository interface {
	// Create persists a new application. The store assigns ID, Version
	// and both timestamps on the passed struct.
	Create(ctx context.Context, app *Application) error

	// Get returns ErrNotFound when no application exists for the id.
	Get(ctx context.Context, id uuid.UUID) (*Application, error)

	// Update writes the application guarded by its Version and bumps
	// Version and UpdatedAt on success. Returns ErrVersionConflict when a
	// concurrent writer got there first, ErrNotFound when the row is gone.
	Update(ctx context.Context, app *Application) error

	// List returns all applications, newest first.
	List(ctx context.Context) ([]*Application, error)

	// DeleteAll removes every application. Test/reset utility only.
	DeleteAll(ctx context.Context) error
}

// Service orchestrates the application lifecycle: draft creation, partial
// updates and the one-way submit into COMPLETED.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create opens a new application in DRAFT with any supplied fields merged
// in. Format constraints (the default rule set) are enforced even here, so
// a future date of birth never enters the store.
func (s *Service) Create(ctx context.Context, patch Patch) (*Application, error) {
	app := &Application{Status: StatusDraft}
	patch.Apply(app)

	if violations := Validate(app, DefaultRules); len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	if err := s.repo.Create(ctx, app); err != nil {
		return nil, fmt.Errorf("creating application: %w", err)
	}

	slog.Info("created application", "id", app.ID)

	return app, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Application, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Application, error) {
	return s.repo.List(ctx)
}

// Update merges the supplied fields into a draft application. Completed
// applications are immutable; a failed validation leaves the stored record
// untouched.
func (s *Service) Update(ctx context.Context, id uuid.UUID, patch Patch) (*Application, error) {
	app, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if app.Completed() {
		return nil, ErrCompleted
	}

	patch.Apply(app)

	if violations := Validate(app, DefaultRules); len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	if err := s.repo.Update(ctx, app); err != nil {
		return nil, fmt.Errorf("updating application: %w", err)
	}

	slog.Info("updated application", "id", app.ID, "version", app.Version)

	return app, nil
}

// Submit finalizes an application. It validates the union of the default
// and submission rule sets, and only a fully valid application transitions
// to COMPLETED. This is the sole path that produces the terminal state.
func (s *Service) Submit(ctx context.Context, id uuid.UUID) (*Application, error) {
	app, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if app.Completed() {
		return nil, ErrCompleted
	}

	if violations := Validate(app, DefaultRules, SubmitRules); len(violations) > 0 {
		slog.Info("submit rejected", "id", app.ID, "violations", len(violations))
		return nil, &ValidationError{Violations: violations}
	}

	app.Status = StatusCompleted

	if err := s.repo.Update(ctx, app); err != nil {
		return nil, fmt.Errorf("submitting application: %w", err)
	}

	slog.Info("submitted application", "id", app.ID)

	return app, nil
}
