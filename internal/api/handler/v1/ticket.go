package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mehrdadmmz/StagePass/internal/api/handler/v1/response"
	"github.com/mehrdadmmz/StagePass/internal/domain"
	"github.com/mehrdadmmz/StagePass/internal/service"
)

type PurchaseService interface {
	PurchaseTicket(ctx context.Context, userID, ticketTypeID uuid.UUID) (domain.Ticket, error)
}

type TicketService interface {
	ListTicketsForUser(ctx context.Context, userID uuid.UUID, page, size int) (domain.TicketPage, error)
	GetTicketForUser(ctx context.Context, userID, ticketID uuid.UUID) (domain.Ticket, error)
}

type QrCodeService interface {
	GetQrCodeImageForUserAndTicket(ctx context.Context, userID, ticketID uuid.UUID) ([]byte, error)
}

type TicketHandler struct {
	purchases PurchaseService
	tickets   TicketService
	qrCodes   QrCodeService
	uSvc      UserService
}

func NewTicketHandler(purchases PurchaseService, tickets TicketService, qrCodes QrCodeService, uSvc UserService) *TicketHandler {
	return &TicketHandler{
		purchases: purchases,
		tickets:   tickets,
		qrCodes:   qrCodes,
		uSvc:      uSvc,
	}
}

// HandlePurchaseTicket godoc
// @Summary      Purchase one ticket of a ticket type
// @Tags         tickets
// @Produce      json
// @Param        ticketTypeID   path      string  true  "ticket type ID"
// @Success      201      {object}   domain.Ticket
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /ticket-types/{ticketTypeID}/tickets [post]
// @Security     BearerAuth
func (h *TicketHandler) HandlePurchaseTicket(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	ticketTypeID, respErr := parseUUIDParam(ctx, "ticketTypeID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	ticket, err := h.purchases.PurchaseTicket(ctx.Request.Context(), user.ID, ticketTypeID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTicketTypeNotFound):
			response.RenderErr(ctx, response.ErrNotFound("ticket type", "ID", ticketTypeID))
		case errors.Is(err, service.ErrUserNotFound):
			response.RenderErr(ctx, response.ErrNotFound("user", "ID", user.ID))
		case errors.Is(err, service.ErrTicketsSoldOut):
			response.RenderErr(ctx, response.ErrSoldOut("ticket type", ticketTypeID))
		case errors.Is(err, service.ErrConflict):
			response.RenderErr(ctx, response.ErrConflict(err))
		default:
			err = fmt.Errorf("v1.HandlePurchaseTicket -> h.purchases.PurchaseTicket -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusCreated, ticket)
}

// HandleListTickets godoc
// @Summary      List the tickets of the authenticated user
// @Tags         tickets
// @Produce      json
// @Param        page   query      int  false  "page, starting at 1"
// @Param        size   query      int  false  "page size, at most 100"
// @Success      200      {object}   domain.TicketPage
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /tickets [get]
// @Security     BearerAuth
func (h *TicketHandler) HandleListTickets(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	page, err := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid page: %w", err)))
		return
	}

	size, err := strconv.Atoi(ctx.DefaultQuery("size", "0"))
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid size: %w", err)))
		return
	}

	tickets, err := h.tickets.ListTicketsForUser(ctx.Request.Context(), user.ID, page, size)
	if err != nil {
		err = fmt.Errorf("v1.HandleListTickets -> h.tickets.ListTicketsForUser -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, tickets)
}

// HandleGetTicket godoc
// @Summary      Get one ticket of the authenticated user
// @Tags         tickets
// @Produce      json
// @Param        ticketID   path      string  true  "ticket ID"
// @Success      200      {object}   domain.Ticket
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /tickets/{ticketID} [get]
// @Security     BearerAuth
func (h *TicketHandler) HandleGetTicket(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	ticketID, respErr := parseUUIDParam(ctx, "ticketID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	ticket, err := h.tickets.GetTicketForUser(ctx.Request.Context(), user.ID, ticketID)
	if err != nil {
		if errors.Is(err, service.ErrTicketNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("ticket", "ID", ticketID))
			return
		}

		err = fmt.Errorf("v1.HandleGetTicket -> h.tickets.GetTicketForUser -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, ticket)
}

// HandleGetTicketQrCode godoc
// @Summary      Get the QR code image of a ticket
// @Tags         tickets
// @Produce      png
// @Param        ticketID   path      string  true  "ticket ID"
// @Success      200      {file}     binary
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /tickets/{ticketID}/qr-codes [get]
// @Security     BearerAuth
func (h *TicketHandler) HandleGetTicketQrCode(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	ticketID, respErr := parseUUIDParam(ctx, "ticketID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	image, err := h.qrCodes.GetQrCodeImageForUserAndTicket(ctx.Request.Context(), user.ID, ticketID)
	if err != nil {
		if errors.Is(err, service.ErrQrCodeNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("qr code", "ticket ID", ticketID))
			return
		}

		err = fmt.Errorf("v1.HandleGetTicketQrCode -> h.qrCodes.GetQrCodeImageForUserAndTicket -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.Header("Cache-Control", "no-store")
	ctx.Data(http.StatusOK, "image/png", image)
}
