package request

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"

	"github.com/mehrdadmmz/StagePass/internal/domain"
)

var errPriceNegative = errors.New("must not be negative")

type CreateEventRequest struct {
	Name        string                    `json:"name"`
	Venue       string                    `json:"venue"`
	StartsAt    *time.Time                `json:"starts_at,omitempty"`
	TicketTypes []CreateTicketTypeRequest `json:"ticket_types"`
}

type CreateTicketTypeRequest struct {
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price" swaggertype:"string"`
	TotalAvailable int             `json:"total_available"`
}

func (req *CreateEventRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&req.Venue, validation.Length(0, 200)),
		validation.Field(&req.TicketTypes, validation.Required),
	)
}

func (req CreateTicketTypeRequest) Validate() error {
	return validation.ValidateStruct(
		&req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Price, validation.By(nonNegativePrice)),
		validation.Field(&req.TotalAvailable, validation.Min(0)),
	)
}

func (req *CreateEventRequest) ToDomain() domain.Event {
	event := domain.Event{
		Name:     req.Name,
		Venue:    req.Venue,
		StartsAt: req.StartsAt,
	}
	for _, tt := range req.TicketTypes {
		event.TicketTypes = append(event.TicketTypes, domain.TicketType{
			Name:           tt.Name,
			Price:          tt.Price,
			TotalAvailable: tt.TotalAvailable,
		})
	}

	return event
}

func nonNegativePrice(value any) error {
	price, _ := value.(decimal.Decimal)
	if price.IsNegative() {
		return errPriceNegative
	}
	return nil
}
