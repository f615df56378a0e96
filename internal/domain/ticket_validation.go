package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type ValidationMethod string

const (
	ValidationMethodQrCode ValidationMethod = "QR_CODE"
	ValidationMethodManual ValidationMethod = "MANUAL"
)

var ErrNotConsumable = errors.New("ticket is not in a consumable state")

type TicketValidation struct {
	ID          uuid.UUID        `json:"id"`
	TicketID    uuid.UUID        `json:"ticket_id"`
	Method      ValidationMethod `json:"method"`
	ValidatedAt time.Time        `json:"validated_at"`
}

// Consume is the single transition of a ticket and its credential into their
// terminal states. qr may be nil for tickets that never had a credential.
// On success ticket and qr are mutated in place and the validation record to
// persist is returned.
func Consume(ticket *Ticket, qr *QrCode, method ValidationMethod, at time.Time) (TicketValidation, error) {
	if ticket.Status != TicketStatusPurchased {
		return TicketValidation{}, ErrNotConsumable
	}
	if qr != nil && (qr.Status != QrCodeStatusActive || qr.TicketID != ticket.ID) {
		return TicketValidation{}, ErrNotConsumable
	}

	ticket.Status = TicketStatusValidated
	ticket.UpdatedAt = at
	if qr != nil {
		qr.Status = QrCodeStatusUsed
		qr.UpdatedAt = at
	}

	return TicketValidation{
		ID:          uuid.New(),
		TicketID:    ticket.ID,
		Method:      method,
		ValidatedAt: at,
	}, nil
}
