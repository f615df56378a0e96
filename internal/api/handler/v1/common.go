package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mehrdadmmz/StagePass/internal/api/handler/v1/response"
	"github.com/mehrdadmmz/StagePass/internal/api/middleware"
	"github.com/mehrdadmmz/StagePass/internal/domain"
	"github.com/mehrdadmmz/StagePass/internal/service"
)

var errMissingUserID = errors.New("no authenticated user in context")

type UserService interface {
	GetUser(ctx context.Context, id uuid.UUID) (domain.User, error)
}

// getUserFromContext resolves the user authenticated by the JWT middleware.
// A token whose user no longer exists is treated as unauthenticated.
func getUserFromContext(ctx *gin.Context, uSvc UserService) (domain.User, *response.Err) {
	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		return domain.User{}, response.ErrUnauthorized(errMissingUserID)
	}

	user, err := uSvc.GetUser(ctx.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return domain.User{}, response.ErrUnauthorized(err)
		}

		err = fmt.Errorf("getUserFromContext -> uSvc.GetUser -> %w", err)
		return domain.User{}, response.ErrInternalServerError(err)
	}

	return user, nil
}

func parseUUIDParam(ctx *gin.Context, name string) (uuid.UUID, *response.Err) {
	id, err := uuid.Parse(ctx.Param(name))
	if err != nil {
		return uuid.Nil, response.ErrInvalidID(name, err)
	}

	return id, nil
}

// HandleHealthcheck godoc
// @Summary      Healthcheck
// @Tags         healthcheck
// @Produce      plain
// @Success      200
// @Router       / [get]
func HandleHealthcheck(ctx *gin.Context) {
	ctx.String(http.StatusOK, "OK")
}
