package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/mehrdadmmz/StagePass/internal/domain"
)

// TicketValidationRequest carries a qr code id for QR_CODE and a ticket id
// for MANUAL.
type TicketValidationRequest struct {
	ID     string `json:"id"`
	Method string `json:"method" enums:"QR_CODE,MANUAL"`
}

func (req *TicketValidationRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.ID, validation.Required, is.UUID),
		validation.Field(&req.Method, validation.Required, validation.In(
			string(domain.ValidationMethodQrCode),
			string(domain.ValidationMethodManual),
		)),
	)
}
