package domain

import (
	"time"

	"github.com/google/uuid"
)

type QrCodeStatus string

const (
	QrCodeStatusActive QrCodeStatus = "ACTIVE"
	QrCodeStatusUsed   QrCodeStatus = "USED"
)

// QrCode is the scannable credential of a ticket. Value is what gets encoded
// into the image; it is derived from ID, never from the ticket.
type QrCode struct {
	ID          uuid.UUID    `json:"id"`
	Status      QrCodeStatus `json:"status"`
	Value       string       `json:"-"`
	TicketID    uuid.UUID    `json:"ticket_id"`
	PurchaserID uuid.UUID    `json:"-"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}
