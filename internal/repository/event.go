package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mehrdadmmz/StagePass/internal/domain"
	"github.com/mehrdadmmz/StagePass/internal/repository/dao"
)

var (
	ErrEventNotFound      = dao.ErrEventNotFound
	ErrTicketTypeNotFound = dao.ErrTicketTypeNotFound
)

type EventDAO interface {
	Insert(ctx context.Context, event dao.Event) (dao.Event, error)
	FindByID(ctx context.Context, id uuid.UUID) (dao.Event, error)
	FindTicketTypeByIDForUpdate(ctx context.Context, id uuid.UUID) (dao.TicketType, error)
	FindTicketTypeSalesByEventID(ctx context.Context, eventID uuid.UUID) ([]dao.TicketTypeSales, error)
}

type EventRepository struct {
	dao EventDAO
}

func NewEventRepository(dao EventDAO) *EventRepository {
	return &EventRepository{
		dao: dao,
	}
}

func (r *EventRepository) Create(ctx context.Context, event domain.Event) (domain.Event, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(event))
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *EventRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.Event, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *EventRepository) FindTicketTypeByIDForUpdate(ctx context.Context, id uuid.UUID) (domain.TicketType, error) {
	found, err := r.dao.FindTicketTypeByIDForUpdate(ctx, id)
	if err != nil {
		return domain.TicketType{}, fmt.Errorf("r.dao.FindTicketTypeByIDForUpdate -> %w", err)
	}

	return ticketTypeDaoToDomain(found), nil
}

func (r *EventRepository) FindTicketTypeAvailability(ctx context.Context, eventID uuid.UUID) ([]domain.TicketTypeAvailability, error) {
	sales, err := r.dao.FindTicketTypeSalesByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindTicketTypeSalesByEventID -> %w", err)
	}

	availability := make([]domain.TicketTypeAvailability, len(sales))
	for i, s := range sales {
		remaining := int64(s.TotalAvailable) - s.Sold
		if remaining < 0 {
			remaining = 0
		}
		availability[i] = domain.TicketTypeAvailability{
			TicketType: ticketTypeDaoToDomain(s.TicketType),
			Sold:       s.Sold,
			Remaining:  remaining,
		}
	}

	return availability, nil
}

func (r *EventRepository) domainToDao(e domain.Event) dao.Event {
	types := make([]dao.TicketType, len(e.TicketTypes))
	for i, t := range e.TicketTypes {
		types[i] = dao.TicketType{
			ID:             t.ID,
			EventID:        e.ID,
			Name:           t.Name,
			Price:          t.Price,
			TotalAvailable: t.TotalAvailable,
		}
	}

	return dao.Event{
		ID:          e.ID,
		Name:        e.Name,
		Venue:       e.Venue,
		StartsAt:    e.StartsAt,
		OrganizerID: e.OrganizerID,
		TicketTypes: types,
	}
}

func (r *EventRepository) daoToDomain(e dao.Event) domain.Event {
	types := make([]domain.TicketType, len(e.TicketTypes))
	for i, t := range e.TicketTypes {
		types[i] = ticketTypeDaoToDomain(t)
	}

	return domain.Event{
		ID:          e.ID,
		Name:        e.Name,
		Venue:       e.Venue,
		StartsAt:    e.StartsAt,
		OrganizerID: e.OrganizerID,
		TicketTypes: types,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func ticketTypeDaoToDomain(t dao.TicketType) domain.TicketType {
	return domain.TicketType{
		ID:             t.ID,
		EventID:        t.EventID,
		Name:           t.Name,
		Price:          t.Price,
		TotalAvailable: t.TotalAvailable,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}
