package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mehrdadmmz/StagePass/internal/api/handler/v1/request"
	"github.com/mehrdadmmz/StagePass/internal/api/handler/v1/response"
	"github.com/mehrdadmmz/StagePass/internal/domain"
	"github.com/mehrdadmmz/StagePass/internal/service"
)

type TicketValidationService interface {
	Validate(ctx context.Context, id uuid.UUID, method domain.ValidationMethod) (domain.TicketValidation, error)
}

type TicketValidationHandler struct {
	svc  TicketValidationService
	uSvc UserService
}

func NewTicketValidationHandler(svc TicketValidationService, uSvc UserService) *TicketValidationHandler {
	return &TicketValidationHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleValidateTicket godoc
// @Summary      Admit a ticket by QR code or manually by ticket ID
// @Tags         ticket-validations
// @Accept       json
// @Produce      json
// @Param        request   body      request.TicketValidationRequest true "request body"
// @Success      201      {object}   domain.TicketValidation
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      429      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /ticket-validations [post]
// @Security     BearerAuth
func (h *TicketValidationHandler) HandleValidateTicket(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if !user.CanValidateTickets() {
		response.RenderErr(ctx, response.ErrPermissionDenied(fmt.Errorf("user %v is not allowed to validate tickets", user.ID)))
		return
	}

	var req request.TicketValidationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	id := uuid.MustParse(req.ID)
	method := domain.ValidationMethod(req.Method)

	validation, err := h.svc.Validate(ctx.Request.Context(), id, method)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrQrCodeNotFound):
			response.RenderErr(ctx, response.ErrNotFound("qr code", "ID", id))
		case errors.Is(err, service.ErrTicketNotFound):
			response.RenderErr(ctx, response.ErrNotFound("ticket", "ID", id))
		case errors.Is(err, service.ErrInvalidValidationMethod):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrConflict):
			response.RenderErr(ctx, response.ErrConflict(err))
		default:
			err = fmt.Errorf("v1.HandleValidateTicket -> h.svc.Validate -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusCreated, validation)
}
