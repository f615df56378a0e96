package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Event struct {
	ID          uuid.UUID    `json:"id"`
	Name        string       `json:"name"`
	Venue       string       `json:"venue"`
	StartsAt    *time.Time   `json:"starts_at,omitempty"`
	OrganizerID uuid.UUID    `json:"organizer_id"`
	TicketTypes []TicketType `json:"ticket_types"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// TicketType is the capacity authority for the tickets sold against it.
type TicketType struct {
	ID             uuid.UUID       `json:"id"`
	EventID        uuid.UUID       `json:"event_id"`
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	TotalAvailable int             `json:"total_available"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// CanIssue reports whether one more ticket fits given the number already committed.
func (t TicketType) CanIssue(committed int64) bool {
	return committed+1 <= int64(t.TotalAvailable)
}

type TicketTypeAvailability struct {
	TicketType
	Sold      int64 `json:"sold"`
	Remaining int64 `json:"remaining"`
}
