package dao

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	ValidationMethodQrCode = "QR_CODE"
	ValidationMethodManual = "MANUAL"
)

type TicketValidation struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	TicketID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uni_ticket_validations_ticket_id"`
	Ticket      Ticket    `gorm:"foreignKey:TicketID"`
	Method      string    `gorm:"not null"`
	ValidatedAt time.Time `gorm:"not null"`
	CreatedAt   time.Time
}

func (v *TicketValidation) BeforeCreate(*gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

type TicketValidationDAO struct {
	db *gorm.DB
}

func NewTicketValidationDAO(db *gorm.DB) *TicketValidationDAO {
	return &TicketValidationDAO{
		db: db,
	}
}

func (d *TicketValidationDAO) Insert(ctx context.Context, validation TicketValidation) (TicketValidation, error) {
	result := conn(ctx, d.db).Omit(clause.Associations).Create(&validation)
	if result.Error != nil {
		if isUniqueViolation(result.Error, "uni_ticket_validations_ticket_id") {
			return TicketValidation{}, ErrTicketAlreadyChecked
		}

		return TicketValidation{}, classify(result.Error)
	}

	return validation, nil
}

func (d *TicketValidationDAO) CountByTicketID(ctx context.Context, ticketID uuid.UUID) (int64, error) {
	var count int64

	result := conn(ctx, d.db).Model(&TicketValidation{}).Where("ticket_id = ?", ticketID).Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}
