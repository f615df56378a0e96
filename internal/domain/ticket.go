package domain

import (
	"time"

	"github.com/google/uuid"
)

type TicketStatus string

const (
	TicketStatusPurchased TicketStatus = "PURCHASED"
	TicketStatusValidated TicketStatus = "VALIDATED"
	TicketStatusCancelled TicketStatus = "CANCELLED"
)

type Ticket struct {
	ID           uuid.UUID    `json:"id"`
	Status       TicketStatus `json:"status"`
	TicketTypeID uuid.UUID    `json:"ticket_type_id"`
	PurchaserID  uuid.UUID    `json:"purchaser_id"`
	QrCode       *QrCode      `json:"qr_code,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

type TicketPage struct {
	Tickets []Ticket `json:"tickets"`
	Page    int      `json:"page"`
	Size    int      `json:"size"`
	Total   int64    `json:"total"`
}
