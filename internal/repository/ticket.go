package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mehrdadmmz/StagePass/internal/domain"
	"github.com/mehrdadmmz/StagePass/internal/repository/dao"
)

var (
	ErrTicketNotFound = dao.ErrTicketNotFound
	ErrConflict       = dao.ErrConflict
)

type TicketDAO interface {
	Insert(ctx context.Context, ticket dao.Ticket) (dao.Ticket, error)
	CountCommittedByTicketTypeID(ctx context.Context, ticketTypeID uuid.UUID) (int64, error)
	FindByIDAndPurchaserID(ctx context.Context, id, purchaserID uuid.UUID) (dao.Ticket, error)
	FindByIDAndStatusForUpdate(ctx context.Context, id uuid.UUID, status string) (dao.Ticket, error)
	FindByPurchaserID(ctx context.Context, purchaserID uuid.UUID, limit, offset int) ([]dao.Ticket, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to string) error
}

type TicketRepository struct {
	dao TicketDAO
}

func NewTicketRepository(dao TicketDAO) *TicketRepository {
	return &TicketRepository{
		dao: dao,
	}
}

func (r *TicketRepository) Create(ctx context.Context, ticket domain.Ticket) (domain.Ticket, error) {
	created, err := r.dao.Insert(ctx, dao.Ticket{
		ID:           ticket.ID,
		Status:       string(ticket.Status),
		TicketTypeID: ticket.TicketTypeID,
		PurchaserID:  ticket.PurchaserID,
	})
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return ticketDaoToDomain(created), nil
}

func (r *TicketRepository) CountCommittedByTicketTypeID(ctx context.Context, ticketTypeID uuid.UUID) (int64, error) {
	count, err := r.dao.CountCommittedByTicketTypeID(ctx, ticketTypeID)
	if err != nil {
		return 0, fmt.Errorf("r.dao.CountCommittedByTicketTypeID -> %w", err)
	}

	return count, nil
}

func (r *TicketRepository) FindByIDAndPurchaserID(ctx context.Context, id, purchaserID uuid.UUID) (domain.Ticket, error) {
	found, err := r.dao.FindByIDAndPurchaserID(ctx, id, purchaserID)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("r.dao.FindByIDAndPurchaserID -> %w", err)
	}

	return ticketDaoToDomain(found), nil
}

func (r *TicketRepository) FindByIDAndStatusForUpdate(ctx context.Context, id uuid.UUID, status domain.TicketStatus) (domain.Ticket, error) {
	found, err := r.dao.FindByIDAndStatusForUpdate(ctx, id, string(status))
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("r.dao.FindByIDAndStatusForUpdate -> %w", err)
	}

	return ticketDaoToDomain(found), nil
}

func (r *TicketRepository) FindByPurchaserID(ctx context.Context, purchaserID uuid.UUID, page, size int) (domain.TicketPage, error) {
	tickets, total, err := r.dao.FindByPurchaserID(ctx, purchaserID, size, (page-1)*size)
	if err != nil {
		return domain.TicketPage{}, fmt.Errorf("r.dao.FindByPurchaserID -> %w", err)
	}

	result := domain.TicketPage{
		Tickets: make([]domain.Ticket, len(tickets)),
		Page:    page,
		Size:    size,
		Total:   total,
	}
	for i, t := range tickets {
		result.Tickets[i] = ticketDaoToDomain(t)
	}

	return result, nil
}

func (r *TicketRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.TicketStatus) error {
	if err := r.dao.UpdateStatus(ctx, id, string(from), string(to)); err != nil {
		return fmt.Errorf("r.dao.UpdateStatus -> %w", err)
	}

	return nil
}

func ticketDaoToDomain(t dao.Ticket) domain.Ticket {
	ticket := domain.Ticket{
		ID:           t.ID,
		Status:       domain.TicketStatus(t.Status),
		TicketTypeID: t.TicketTypeID,
		PurchaserID:  t.PurchaserID,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
	if t.QrCode != nil {
		qr := qrCodeDaoToDomain(*t.QrCode)
		ticket.QrCode = &qr
	}

	return ticket
}
