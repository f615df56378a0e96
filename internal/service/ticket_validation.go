package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mehrdadmmz/StagePass/internal/clock"
	"github.com/mehrdadmmz/StagePass/internal/domain"
	"github.com/mehrdadmmz/StagePass/internal/metrics"
	"github.com/mehrdadmmz/StagePass/internal/repository"
)

var (
	ErrTicketNotFound          = repository.ErrTicketNotFound
	ErrInvalidValidationMethod = errors.New("invalid validation method")
)

type ValidationTicketRepository interface {
	FindByIDAndStatusForUpdate(ctx context.Context, id uuid.UUID, status domain.TicketStatus) (domain.Ticket, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.TicketStatus) error
}

type ValidationQrCodeRepository interface {
	FindByIDAndStatus(ctx context.Context, id uuid.UUID, status domain.QrCodeStatus) (domain.QrCode, error)
	FindByIDAndStatusForUpdate(ctx context.Context, id uuid.UUID, status domain.QrCodeStatus) (domain.QrCode, error)
	FindByTicketIDForUpdate(ctx context.Context, ticketID uuid.UUID) (domain.QrCode, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.QrCodeStatus) error
}

type TicketValidationRepository interface {
	Create(ctx context.Context, validation domain.TicketValidation) (domain.TicketValidation, error)
}

// TicketValidationService admits a ticket at most once. Both entry points lock
// the ticket row first and the qr code row second, then hand over to consume.
type TicketValidationService struct {
	tx          TxManager
	tickets     ValidationTicketRepository
	qrCodes     ValidationQrCodeRepository
	validations TicketValidationRepository
	clock       clock.Clock
}

func NewTicketValidationService(
	tx TxManager,
	tickets ValidationTicketRepository,
	qrCodes ValidationQrCodeRepository,
	validations TicketValidationRepository,
	clk clock.Clock,
) *TicketValidationService {
	return &TicketValidationService{
		tx:          tx,
		tickets:     tickets,
		qrCodes:     qrCodes,
		validations: validations,
		clock:       clk,
	}
}

// Validate dispatches on method: id is a qr code id for QR_CODE and a ticket
// id for MANUAL.
func (s *TicketValidationService) Validate(ctx context.Context, id uuid.UUID, method domain.ValidationMethod) (domain.TicketValidation, error) {
	switch method {
	case domain.ValidationMethodQrCode:
		return s.ValidateTicketByQrCode(ctx, id)
	case domain.ValidationMethodManual:
		return s.ValidateTicketManually(ctx, id)
	default:
		return domain.TicketValidation{}, ErrInvalidValidationMethod
	}
}

// ValidateTicketByQrCode consumes an ACTIVE qr code. Unknown and already used
// codes are both reported as ErrQrCodeNotFound.
func (s *TicketValidationService) ValidateTicketByQrCode(ctx context.Context, qrCodeID uuid.UUID) (domain.TicketValidation, error) {
	var validation domain.TicketValidation

	start := time.Now()
	err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
		candidate, err := s.qrCodes.FindByIDAndStatus(txCtx, qrCodeID, domain.QrCodeStatusActive)
		if err != nil {
			return fmt.Errorf("s.qrCodes.FindByIDAndStatus -> %w", err)
		}

		ticket, err := s.tickets.FindByIDAndStatusForUpdate(txCtx, candidate.TicketID, domain.TicketStatusPurchased)
		if err != nil {
			return fmt.Errorf("s.tickets.FindByIDAndStatusForUpdate -> %w", notFoundAs(err, ErrQrCodeNotFound))
		}

		// Re-read under lock: a concurrent scan may have used it meanwhile.
		qrCode, err := s.qrCodes.FindByIDAndStatusForUpdate(txCtx, qrCodeID, domain.QrCodeStatusActive)
		if err != nil {
			return fmt.Errorf("s.qrCodes.FindByIDAndStatusForUpdate -> %w", err)
		}

		validation, err = s.consume(txCtx, ticket, &qrCode, domain.ValidationMethodQrCode)
		return notFoundAs(err, ErrQrCodeNotFound)
	})
	metrics.ObserveCriticalSection("validate_qr_code", start)

	if err != nil {
		observeValidationFailure(err, domain.ValidationMethodQrCode, zap.Stringer("qr_code_id", qrCodeID))
		return domain.TicketValidation{}, fmt.Errorf("s.tx.WithTx -> %w", err)
	}

	observeValidation(validation)
	return validation, nil
}

// ValidateTicketManually consumes a PURCHASED ticket looked up by id, and its
// qr code along with it. Unknown and already validated tickets are both
// reported as ErrTicketNotFound.
func (s *TicketValidationService) ValidateTicketManually(ctx context.Context, ticketID uuid.UUID) (domain.TicketValidation, error) {
	var validation domain.TicketValidation

	start := time.Now()
	err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
		ticket, err := s.tickets.FindByIDAndStatusForUpdate(txCtx, ticketID, domain.TicketStatusPurchased)
		if err != nil {
			return fmt.Errorf("s.tickets.FindByIDAndStatusForUpdate -> %w", err)
		}

		var qrCode *domain.QrCode
		found, err := s.qrCodes.FindByTicketIDForUpdate(txCtx, ticket.ID)
		switch {
		case err == nil:
			qrCode = &found
		case !errors.Is(err, ErrQrCodeNotFound):
			return fmt.Errorf("s.qrCodes.FindByTicketIDForUpdate -> %w", err)
		}

		validation, err = s.consume(txCtx, ticket, qrCode, domain.ValidationMethodManual)
		return notFoundAs(err, ErrTicketNotFound)
	})
	metrics.ObserveCriticalSection("validate_manual", start)

	if err != nil {
		observeValidationFailure(err, domain.ValidationMethodManual, zap.Stringer("ticket_id", ticketID))
		return domain.TicketValidation{}, fmt.Errorf("s.tx.WithTx -> %w", err)
	}

	observeValidation(validation)
	return validation, nil
}

// consume applies domain.Consume and persists its outcome. Callers must hold
// the locks on ticket and qrCode. Status updates are conditional on the
// previous status, so a lost race surfaces as a not-found error.
func (s *TicketValidationService) consume(ctx context.Context, ticket domain.Ticket, qrCode *domain.QrCode, method domain.ValidationMethod) (domain.TicketValidation, error) {
	validation, err := domain.Consume(&ticket, qrCode, method, s.clock.Now())
	if err != nil {
		return domain.TicketValidation{}, err
	}

	if err = s.tickets.UpdateStatus(ctx, ticket.ID, domain.TicketStatusPurchased, ticket.Status); err != nil {
		return domain.TicketValidation{}, fmt.Errorf("s.tickets.UpdateStatus -> %w", err)
	}

	if qrCode != nil {
		if err = s.qrCodes.UpdateStatus(ctx, qrCode.ID, domain.QrCodeStatusActive, qrCode.Status); err != nil {
			return domain.TicketValidation{}, fmt.Errorf("s.qrCodes.UpdateStatus -> %w", err)
		}
	}

	created, err := s.validations.Create(ctx, validation)
	if err != nil {
		return domain.TicketValidation{}, fmt.Errorf("s.validations.Create -> %w", err)
	}

	return created, nil
}

// notFoundAs folds every "not eligible" outcome into target so callers cannot
// tell a missing credential from a consumed one.
func notFoundAs(err error, target error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, target) {
		return err
	}
	if errors.Is(err, domain.ErrNotConsumable) ||
		errors.Is(err, ErrTicketNotFound) ||
		errors.Is(err, ErrQrCodeNotFound) ||
		errors.Is(err, repository.ErrTicketAlreadyValidated) {
		return fmt.Errorf("%w: %v", target, err)
	}

	return err
}

func observeValidation(v domain.TicketValidation) {
	metrics.ObserveValidation(string(v.Method), metrics.OutcomeValidated)
	zap.L().Info("ticket validated",
		zap.Stringer("ticket_id", v.TicketID),
		zap.String("method", string(v.Method)),
	)
}

func observeValidationFailure(err error, method domain.ValidationMethod, field zap.Field) {
	switch {
	case errors.Is(err, ErrQrCodeNotFound), errors.Is(err, ErrTicketNotFound):
		metrics.ObserveValidation(string(method), metrics.OutcomeRejected)
	case errors.Is(err, ErrConflict):
		metrics.ObserveValidation(string(method), metrics.OutcomeConflict)
		zap.L().Warn("ticket validation conflicted", field, zap.Error(err))
	default:
		metrics.ObserveValidation(string(method), metrics.OutcomeError)
		zap.L().Error("ticket validation failed", field, zap.Error(err))
	}
}
