package dao

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	QrCodeStatusActive = "ACTIVE"
	QrCodeStatusUsed   = "USED"
)

type QrCode struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Status      string    `gorm:"not null"`
	Value       string    `gorm:"not null"`
	TicketID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uni_qr_codes_ticket_id"`
	PurchaserID uuid.UUID `gorm:"type:uuid;not null;index"`
	Purchaser   User      `gorm:"foreignKey:PurchaserID"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (q *QrCode) BeforeCreate(*gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

type QrCodeDAO struct {
	db *gorm.DB
}

func NewQrCodeDAO(db *gorm.DB) *QrCodeDAO {
	return &QrCodeDAO{
		db: db,
	}
}

func (d *QrCodeDAO) Insert(ctx context.Context, qrCode QrCode) (QrCode, error) {
	result := conn(ctx, d.db).Omit(clause.Associations).Create(&qrCode)
	if result.Error != nil {
		if isUniqueViolation(result.Error, "uni_qr_codes_ticket_id") {
			return QrCode{}, ErrQrCodeExists
		}

		return QrCode{}, classify(result.Error)
	}

	return qrCode, nil
}

func (d *QrCodeDAO) FindByIDAndStatus(ctx context.Context, id uuid.UUID, status string) (QrCode, error) {
	return d.findOne(conn(ctx, d.db), "id = ? AND status = ?", id, status)
}

func (d *QrCodeDAO) FindByIDAndStatusForUpdate(ctx context.Context, id uuid.UUID, status string) (QrCode, error) {
	db := conn(ctx, d.db).Clauses(clause.Locking{Strength: "UPDATE"})
	return d.findOne(db, "id = ? AND status = ?", id, status)
}

func (d *QrCodeDAO) FindByTicketIDForUpdate(ctx context.Context, ticketID uuid.UUID) (QrCode, error) {
	db := conn(ctx, d.db).Clauses(clause.Locking{Strength: "UPDATE"})
	return d.findOne(db, "ticket_id = ?", ticketID)
}

func (d *QrCodeDAO) FindByTicketIDAndPurchaserID(ctx context.Context, ticketID, purchaserID uuid.UUID) (QrCode, error) {
	return d.findOne(conn(ctx, d.db), "ticket_id = ? AND purchaser_id = ?", ticketID, purchaserID)
}

// UpdateStatus moves the qr code between statuses; ErrQrCodeNotFound means
// it was not in the expected status.
func (d *QrCodeDAO) UpdateStatus(ctx context.Context, id uuid.UUID, from, to string) error {
	result := conn(ctx, d.db).
		Model(&QrCode{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return classify(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrQrCodeNotFound
	}

	return nil
}

func (d *QrCodeDAO) findOne(db *gorm.DB, query string, args ...any) (QrCode, error) {
	var qrCode QrCode

	result := db.Where(query, args...).First(&qrCode)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return QrCode{}, ErrQrCodeNotFound
		}

		return QrCode{}, classify(result.Error)
	}

	return qrCode, nil
}
