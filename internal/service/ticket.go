package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mehrdadmmz/StagePass/internal/domain"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type TicketRepository interface {
	FindByIDAndPurchaserID(ctx context.Context, id, purchaserID uuid.UUID) (domain.Ticket, error)
	FindByPurchaserID(ctx context.Context, purchaserID uuid.UUID, page, size int) (domain.TicketPage, error)
}

type TicketService struct {
	repo TicketRepository
}

func NewTicketService(repo TicketRepository) *TicketService {
	return &TicketService{
		repo: repo,
	}
}

func (s *TicketService) ListTicketsForUser(ctx context.Context, userID uuid.UUID, page, size int) (domain.TicketPage, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	tickets, err := s.repo.FindByPurchaserID(ctx, userID, page, size)
	if err != nil {
		return domain.TicketPage{}, fmt.Errorf("s.repo.FindByPurchaserID -> %w", err)
	}

	return tickets, nil
}

func (s *TicketService) GetTicketForUser(ctx context.Context, userID, ticketID uuid.UUID) (domain.Ticket, error) {
	ticket, err := s.repo.FindByIDAndPurchaserID(ctx, ticketID, userID)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("s.repo.FindByIDAndPurchaserID -> %w", err)
	}

	return ticket, nil
}
