package dao

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Event struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"not null"`
	Venue       string
	StartsAt    *time.Time
	OrganizerID uuid.UUID    `gorm:"type:uuid;not null;index"`
	Organizer   User         `gorm:"foreignKey:OrganizerID"`
	TicketTypes []TicketType `gorm:"foreignKey:EventID"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (e *Event) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

type TicketType struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	EventID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name           string          `gorm:"not null"`
	Price          decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	TotalAvailable int             `gorm:"not null;check:chk_ticket_types_total_available,total_available >= 0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (t *TicketType) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TicketTypeSales is a ticket type joined with its committed ticket count.
type TicketTypeSales struct {
	TicketType `gorm:"embedded"`
	Sold       int64
}

type EventDAO struct {
	db *gorm.DB
}

func NewEventDAO(db *gorm.DB) *EventDAO {
	return &EventDAO{
		db: db,
	}
}

// Insert creates the event together with its ticket types.
func (d *EventDAO) Insert(ctx context.Context, event Event) (Event, error) {
	err := conn(ctx, d.db).Transaction(func(tx *gorm.DB) error {
		types := event.TicketTypes
		event.TicketTypes = nil

		if err := tx.Omit(clause.Associations).Create(&event).Error; err != nil {
			return err
		}

		for i := range types {
			types[i].EventID = event.ID
		}
		if len(types) > 0 {
			if err := tx.Create(&types).Error; err != nil {
				return err
			}
		}
		event.TicketTypes = types

		return nil
	})
	if err != nil {
		return Event{}, err
	}

	return event, nil
}

func (d *EventDAO) FindByID(ctx context.Context, id uuid.UUID) (Event, error) {
	var event Event

	result := conn(ctx, d.db).Preload("TicketTypes").First(&event, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Event{}, ErrEventNotFound
		}

		return Event{}, result.Error
	}

	return event, nil
}

// FindTicketTypeByIDForUpdate reads the ticket type with SELECT ... FOR UPDATE.
// The lock only outlives the call when ctx carries a transaction.
func (d *EventDAO) FindTicketTypeByIDForUpdate(ctx context.Context, id uuid.UUID) (TicketType, error) {
	var ticketType TicketType

	result := conn(ctx, d.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&ticketType, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return TicketType{}, ErrTicketTypeNotFound
		}

		return TicketType{}, classify(result.Error)
	}

	return ticketType, nil
}

func (d *EventDAO) FindTicketTypeSalesByEventID(ctx context.Context, eventID uuid.UUID) ([]TicketTypeSales, error) {
	var sales []TicketTypeSales

	result := conn(ctx, d.db).
		Model(&TicketType{}).
		Select(`ticket_types.*, (
			SELECT COUNT(*) FROM tickets
			WHERE tickets.ticket_type_id = ticket_types.id AND tickets.status <> ?
		) AS sold`, TicketStatusCancelled).
		Where("ticket_types.event_id = ?", eventID).
		Order("ticket_types.created_at").
		Scan(&sales)
	if result.Error != nil {
		return nil, result.Error
	}

	return sales, nil
}
