package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/gatherly/server/internal/domain/accounts"
	"github.com/gatherly/server/internal/domain/ids"
)

var (
	ErrNotFound  = errors.New("event not found")
	ErrForbidden = errors.New("caller is not the manager of this event")
)

// Service implements the event lifecycle: create, get, list, update. It owns
// the ordering of the checks; handlers only translate its errors to statuses.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates in, derives the computed flags, forces status to DRAFT,
// sets the caller as manager, and persists. Any validation failure
// short-circuits persistence.
func (s *Service) Create(ctx context.Context, in Input, manager *accounts.Account) (*Event, error) {
	if manager == nil {
		return nil, ErrForbidden
	}
	if errs := validate(in); len(errs) > 0 {
		return nil, errs
	}

	id, err := ids.NewULID()
	if err != nil {
		return nil, fmt.Errorf("mint event id: %w", err)
	}

	event := &Event{ID: id, Status: StatusDraft, Manager: manager}
	event.ApplyInput(in)

	created, err := s.repo.Create(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return created, nil
}

// Get fetches one event. The callerID is only used to compute the manage
// affordance; read access is always permitted regardless of ownership.
func (s *Service) Get(ctx context.Context, id string, callerID string) (*Event, bool, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return event, event.ManagedBy(callerID), nil
}

// List returns one page of events with no ownership filtering.
func (s *Service) List(ctx context.Context, page Page) (ListResult, error) {
	return s.repo.List(ctx, page)
}

// Update overwrites all mutable fields of an existing event. Check order is
// load-bearing: not-found first, then validation, then ownership — a
// malformed request from a non-owner reports the validation failure, not the
// ownership one.
func (s *Service) Update(ctx context.Context, id string, in Input, callerID string) (*Event, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if errs := validate(in); len(errs) > 0 {
		return nil, errs
	}

	if !event.ManagedBy(callerID) {
		return nil, ErrForbidden
	}

	event.ApplyInput(in)

	updated, err := s.repo.Update(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return updated, nil
}

// validate runs the schema pass first and only reaches the domain pass when
// the schema pass is clean, so a request with missing fields reports the
// binding errors alone.
func validate(in Input) ValidationErrors {
	if errs := ValidateSchema(in); len(errs) > 0 {
		return errs
	}
	return ValidateInput(in)
}
