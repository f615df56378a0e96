package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mehrdadmmz/StagePass/internal/domain"
	"github.com/mehrdadmmz/StagePass/internal/repository/dao"
)

var (
	ErrQrCodeNotFound = dao.ErrQrCodeNotFound
	ErrQrCodeExists   = dao.ErrQrCodeExists
)

type QrCodeDAO interface {
	Insert(ctx context.Context, qrCode dao.QrCode) (dao.QrCode, error)
	FindByIDAndStatus(ctx context.Context, id uuid.UUID, status string) (dao.QrCode, error)
	FindByIDAndStatusForUpdate(ctx context.Context, id uuid.UUID, status string) (dao.QrCode, error)
	FindByTicketIDForUpdate(ctx context.Context, ticketID uuid.UUID) (dao.QrCode, error)
	FindByTicketIDAndPurchaserID(ctx context.Context, ticketID, purchaserID uuid.UUID) (dao.QrCode, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to string) error
}

type QrCodeRepository struct {
	dao QrCodeDAO
}

func NewQrCodeRepository(dao QrCodeDAO) *QrCodeRepository {
	return &QrCodeRepository{
		dao: dao,
	}
}

func (r *QrCodeRepository) Create(ctx context.Context, qrCode domain.QrCode) (domain.QrCode, error) {
	created, err := r.dao.Insert(ctx, dao.QrCode{
		ID:          qrCode.ID,
		Status:      string(qrCode.Status),
		Value:       qrCode.Value,
		TicketID:    qrCode.TicketID,
		PurchaserID: qrCode.PurchaserID,
	})
	if err != nil {
		return domain.QrCode{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return qrCodeDaoToDomain(created), nil
}

func (r *QrCodeRepository) FindByIDAndStatus(ctx context.Context, id uuid.UUID, status domain.QrCodeStatus) (domain.QrCode, error) {
	found, err := r.dao.FindByIDAndStatus(ctx, id, string(status))
	if err != nil {
		return domain.QrCode{}, fmt.Errorf("r.dao.FindByIDAndStatus -> %w", err)
	}

	return qrCodeDaoToDomain(found), nil
}

func (r *QrCodeRepository) FindByIDAndStatusForUpdate(ctx context.Context, id uuid.UUID, status domain.QrCodeStatus) (domain.QrCode, error) {
	found, err := r.dao.FindByIDAndStatusForUpdate(ctx, id, string(status))
	if err != nil {
		return domain.QrCode{}, fmt.Errorf("r.dao.FindByIDAndStatusForUpdate -> %w", err)
	}

	return qrCodeDaoToDomain(found), nil
}

func (r *QrCodeRepository) FindByTicketIDForUpdate(ctx context.Context, ticketID uuid.UUID) (domain.QrCode, error) {
	found, err := r.dao.FindByTicketIDForUpdate(ctx, ticketID)
	if err != nil {
		return domain.QrCode{}, fmt.Errorf("r.dao.FindByTicketIDForUpdate -> %w", err)
	}

	return qrCodeDaoToDomain(found), nil
}

func (r *QrCodeRepository) FindByTicketIDAndPurchaserID(ctx context.Context, ticketID, purchaserID uuid.UUID) (domain.QrCode, error) {
	found, err := r.dao.FindByTicketIDAndPurchaserID(ctx, ticketID, purchaserID)
	if err != nil {
		return domain.QrCode{}, fmt.Errorf("r.dao.FindByTicketIDAndPurchaserID -> %w", err)
	}

	return qrCodeDaoToDomain(found), nil
}

func (r *QrCodeRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.QrCodeStatus) error {
	if err := r.dao.UpdateStatus(ctx, id, string(from), string(to)); err != nil {
		return fmt.Errorf("r.dao.UpdateStatus -> %w", err)
	}

	return nil
}

func qrCodeDaoToDomain(q dao.QrCode) domain.QrCode {
	return domain.QrCode{
		ID:          q.ID,
		Status:      domain.QrCodeStatus(q.Status),
		Value:       q.Value,
		TicketID:    q.TicketID,
		PurchaserID: q.PurchaserID,
		CreatedAt:   q.CreatedAt,
		UpdatedAt:   q.UpdatedAt,
	}
}
