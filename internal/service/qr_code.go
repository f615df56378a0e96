package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mehrdadmmz/StagePass/internal/domain"
	"github.com/mehrdadmmz/StagePass/internal/repository"
)

var (
	ErrQrCodeNotFound = repository.ErrQrCodeNotFound
	ErrQrCodeExists   = repository.ErrQrCodeExists
)

type QrCodeRepository interface {
	Create(ctx context.Context, qrCode domain.QrCode) (domain.QrCode, error)
	FindByTicketIDAndPurchaserID(ctx context.Context, ticketID, purchaserID uuid.UUID) (domain.QrCode, error)
}

// ImageEncoder renders a credential payload as a scannable image.
type ImageEncoder interface {
	Encode(content string) ([]byte, error)
}

type QrCodeService struct {
	repo    QrCodeRepository
	encoder ImageEncoder
}

func NewQrCodeService(repo QrCodeRepository, encoder ImageEncoder) *QrCodeService {
	return &QrCodeService{
		repo:    repo,
		encoder: encoder,
	}
}

// GenerateQrCode mints the one credential of a freshly created ticket. Its id
// is random and unrelated to the ticket id. A second call for the same ticket
// fails with ErrQrCodeExists.
func (s *QrCodeService) GenerateQrCode(ctx context.Context, ticket domain.Ticket) (domain.QrCode, error) {
	id := uuid.New()

	created, err := s.repo.Create(ctx, domain.QrCode{
		ID:          id,
		Status:      domain.QrCodeStatusActive,
		Value:       id.String(),
		TicketID:    ticket.ID,
		PurchaserID: ticket.PurchaserID,
	})
	if err != nil {
		return domain.QrCode{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

// GetQrCodeImageForUserAndTicket renders the credential of a ticket owned by
// userID. A ticket that does not exist and a ticket owned by somebody else
// both yield ErrQrCodeNotFound.
func (s *QrCodeService) GetQrCodeImageForUserAndTicket(ctx context.Context, userID, ticketID uuid.UUID) ([]byte, error) {
	qrCode, err := s.repo.FindByTicketIDAndPurchaserID(ctx, ticketID, userID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByTicketIDAndPurchaserID -> %w", err)
	}

	image, err := s.encoder.Encode(qrCode.Value)
	if err != nil {
		return nil, fmt.Errorf("s.encoder.Encode -> %w", err)
	}

	return image, nil
}
