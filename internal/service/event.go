package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mehrdadmmz/StagePass/internal/domain"
	"github.com/mehrdadmmz/StagePass/internal/repository"
)

var (
	ErrEventNotFound = repository.ErrEventNotFound
)

type EventRepository interface {
	Create(ctx context.Context, event domain.Event) (domain.Event, error)
	FindByID(ctx context.Context, id uuid.UUID) (domain.Event, error)
	FindTicketTypeAvailability(ctx context.Context, eventID uuid.UUID) ([]domain.TicketTypeAvailability, error)
}

// EventService provisions events and their ticket types. It does not manage
// their lifecycle beyond creation.
type EventService struct {
	repo EventRepository
}

func NewEventService(repo EventRepository) *EventService {
	return &EventService{
		repo: repo,
	}
}

func (s *EventService) CreateEvent(ctx context.Context, event domain.Event, organizerID uuid.UUID) (domain.Event, error) {
	event.OrganizerID = organizerID

	created, err := s.repo.Create(ctx, event)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

// GetTicketTypeAvailability reports sold and remaining counts. They are read
// without locking and may be stale by the time a purchase is attempted.
func (s *EventService) GetTicketTypeAvailability(ctx context.Context, eventID uuid.UUID) ([]domain.TicketTypeAvailability, error) {
	if _, err := s.repo.FindByID(ctx, eventID); err != nil {
		return nil, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	availability, err := s.repo.FindTicketTypeAvailability(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindTicketTypeAvailability -> %w", err)
	}

	return availability, nil
}
