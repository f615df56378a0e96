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
	TicketStatusPurchased = "PURCHASED"
	TicketStatusValidated = "VALIDATED"
	TicketStatusCancelled = "CANCELLED"
)

type Ticket struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Status       string     `gorm:"not null;index"`
	TicketTypeID uuid.UUID  `gorm:"type:uuid;not null;index"`
	TicketType   TicketType `gorm:"foreignKey:TicketTypeID"`
	PurchaserID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	Purchaser    User       `gorm:"foreignKey:PurchaserID"`
	QrCode       *QrCode    `gorm:"foreignKey:TicketID"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (t *Ticket) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

type TicketDAO struct {
	db *gorm.DB
}

func NewTicketDAO(db *gorm.DB) *TicketDAO {
	return &TicketDAO{
		db: db,
	}
}

func (d *TicketDAO) Insert(ctx context.Context, ticket Ticket) (Ticket, error) {
	result := conn(ctx, d.db).Omit(clause.Associations).Create(&ticket)
	if result.Error != nil {
		return Ticket{}, classify(result.Error)
	}

	return ticket, nil
}

// CountCommittedByTicketTypeID counts every ticket of the type that still
// holds capacity, i.e. everything but cancelled tickets.
func (d *TicketDAO) CountCommittedByTicketTypeID(ctx context.Context, ticketTypeID uuid.UUID) (int64, error) {
	var count int64

	result := conn(ctx, d.db).
		Model(&Ticket{}).
		Where("ticket_type_id = ? AND status <> ?", ticketTypeID, TicketStatusCancelled).
		Count(&count)
	if result.Error != nil {
		return 0, classify(result.Error)
	}

	return count, nil
}

func (d *TicketDAO) FindByIDAndPurchaserID(ctx context.Context, id, purchaserID uuid.UUID) (Ticket, error) {
	var ticket Ticket

	result := conn(ctx, d.db).
		Preload("QrCode").
		First(&ticket, "id = ? AND purchaser_id = ?", id, purchaserID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Ticket{}, ErrTicketNotFound
		}

		return Ticket{}, result.Error
	}

	return ticket, nil
}

// FindByIDAndStatusForUpdate locks the ticket row, but only if it is
// currently in status. A ticket that changed status while this call waited
// for the lock is reported as ErrTicketNotFound.
func (d *TicketDAO) FindByIDAndStatusForUpdate(ctx context.Context, id uuid.UUID, status string) (Ticket, error) {
	var ticket Ticket

	result := conn(ctx, d.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&ticket, "id = ? AND status = ?", id, status)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Ticket{}, ErrTicketNotFound
		}

		return Ticket{}, classify(result.Error)
	}

	return ticket, nil
}

func (d *TicketDAO) FindByPurchaserID(ctx context.Context, purchaserID uuid.UUID, limit, offset int) ([]Ticket, int64, error) {
	var (
		tickets []Ticket
		total   int64
	)

	db := conn(ctx, d.db)
	if err := db.Model(&Ticket{}).Where("purchaser_id = ?", purchaserID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	result := db.
		Preload("QrCode").
		Where("purchaser_id = ?", purchaserID).
		Order("created_at DESC, id").
		Limit(limit).
		Offset(offset).
		Find(&tickets)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	return tickets, total, nil
}

// UpdateStatus moves the ticket from one status to another. It fails with
// ErrTicketNotFound when the ticket is not in the expected status.
func (d *TicketDAO) UpdateStatus(ctx context.Context, id uuid.UUID, from, to string) error {
	result := conn(ctx, d.db).
		Model(&Ticket{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return classify(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTicketNotFound
	}

	return nil
}
