package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mehrdadmmz/StagePass/internal/domain"
	"github.com/mehrdadmmz/StagePass/internal/metrics"
	"github.com/mehrdadmmz/StagePass/internal/repository"
)

var (
	ErrTicketTypeNotFound = repository.ErrTicketTypeNotFound
	ErrTicketsSoldOut     = errors.New("tickets sold out")
	ErrConflict           = repository.ErrConflict
)

// TxManager runs fn in one atomic unit; repositories called with the context
// passed to fn take part in it.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type PurchaseUserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (domain.User, error)
}

type PurchaseTicketTypeRepository interface {
	FindTicketTypeByIDForUpdate(ctx context.Context, id uuid.UUID) (domain.TicketType, error)
}

type PurchaseTicketRepository interface {
	CountCommittedByTicketTypeID(ctx context.Context, ticketTypeID uuid.UUID) (int64, error)
	Create(ctx context.Context, ticket domain.Ticket) (domain.Ticket, error)
}

type QrCodeIssuer interface {
	GenerateQrCode(ctx context.Context, ticket domain.Ticket) (domain.QrCode, error)
}

type PurchaseService struct {
	tx          TxManager
	users       PurchaseUserRepository
	ticketTypes PurchaseTicketTypeRepository
	tickets     PurchaseTicketRepository
	issuer      QrCodeIssuer
}

func NewPurchaseService(
	tx TxManager,
	users PurchaseUserRepository,
	ticketTypes PurchaseTicketTypeRepository,
	tickets PurchaseTicketRepository,
	issuer QrCodeIssuer,
) *PurchaseService {
	return &PurchaseService{
		tx:          tx,
		users:       users,
		ticketTypes: ticketTypes,
		tickets:     tickets,
		issuer:      issuer,
	}
}

// PurchaseTicket reserves one unit of the ticket type for the user and issues
// its credential. The ticket type row stays locked from the capacity check
// until the ticket and its qr code are committed, so concurrent purchases of
// the same type are serialised and can never oversell it.
func (s *PurchaseService) PurchaseTicket(ctx context.Context, userID, ticketTypeID uuid.UUID) (domain.Ticket, error) {
	var purchased domain.Ticket

	start := time.Now()
	err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
		user, err := s.users.FindByID(txCtx, userID)
		if err != nil {
			return fmt.Errorf("s.users.FindByID -> %w", err)
		}

		ticketType, err := s.ticketTypes.FindTicketTypeByIDForUpdate(txCtx, ticketTypeID)
		if err != nil {
			return fmt.Errorf("s.ticketTypes.FindTicketTypeByIDForUpdate -> %w", err)
		}

		committed, err := s.tickets.CountCommittedByTicketTypeID(txCtx, ticketType.ID)
		if err != nil {
			return fmt.Errorf("s.tickets.CountCommittedByTicketTypeID -> %w", err)
		}

		if !ticketType.CanIssue(committed) {
			return ErrTicketsSoldOut
		}

		ticket, err := s.tickets.Create(txCtx, domain.Ticket{
			ID:           uuid.New(),
			Status:       domain.TicketStatusPurchased,
			TicketTypeID: ticketType.ID,
			PurchaserID:  user.ID,
		})
		if err != nil {
			return fmt.Errorf("s.tickets.Create -> %w", err)
		}

		qrCode, err := s.issuer.GenerateQrCode(txCtx, ticket)
		if err != nil {
			return fmt.Errorf("s.issuer.GenerateQrCode -> %w", err)
		}
		ticket.QrCode = &qrCode

		purchased = ticket
		return nil
	})
	metrics.ObserveCriticalSection("purchase", start)

	if err != nil {
		s.observeFailure(err, userID, ticketTypeID)
		return domain.Ticket{}, fmt.Errorf("s.tx.WithTx -> %w", err)
	}

	metrics.ObservePurchase(metrics.OutcomePurchased)
	zap.L().Info("ticket purchased",
		zap.Stringer("ticket_id", purchased.ID),
		zap.Stringer("ticket_type_id", ticketTypeID),
		zap.Stringer("user_id", userID),
	)

	return purchased, nil
}

func (s *PurchaseService) observeFailure(err error, userID, ticketTypeID uuid.UUID) {
	fields := []zap.Field{
		zap.Stringer("ticket_type_id", ticketTypeID),
		zap.Stringer("user_id", userID),
	}

	switch {
	case errors.Is(err, ErrTicketsSoldOut):
		metrics.ObservePurchase(metrics.OutcomeSoldOut)
		zap.L().Info("ticket type sold out", fields...)
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrTicketTypeNotFound):
		metrics.ObservePurchase(metrics.OutcomeRejected)
	case errors.Is(err, ErrConflict):
		metrics.ObservePurchase(metrics.OutcomeConflict)
		zap.L().Warn("ticket purchase conflicted", append(fields, zap.Error(err))...)
	default:
		metrics.ObservePurchase(metrics.OutcomeError)
		zap.L().Error("ticket purchase failed", append(fields, zap.Error(err))...)
	}
}
