package response

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Err is the JSON body of every failed request.
type Err struct {
	HTTPStatusCode int    `json:"-"`
	RetryAfter     int    `json:"-"`
	StatusText     string `json:"status"`
	ErrorMessage   string `json:"error"`
	Err            error  `json:"-"`
}

func (e *Err) Error() string {
	return e.ErrorMessage
}

func (e *Err) Unwrap() error {
	return e.Err
}

// RenderErr writes e and aborts the handler chain. 5xx errors are logged with
// the underlying cause, which is never sent to the client.
func RenderErr(ctx *gin.Context, e *Err) {
	if e.HTTPStatusCode >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.Request.URL.Path),
			zap.String("request_id", requestid.Get(ctx)),
			zap.Error(e.Err),
		)
	}
	if e.RetryAfter > 0 {
		ctx.Header("Retry-After", strconv.Itoa(e.RetryAfter))
	}

	ctx.AbortWithStatusJSON(e.HTTPStatusCode, e)
}

func ErrBadRequest(err error) *Err {
	return &Err{
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     http.StatusText(http.StatusBadRequest),
		ErrorMessage:   err.Error(),
		Err:            err,
	}
}

func ErrInvalidID(name string, err error) *Err {
	return ErrBadRequest(fmt.Errorf("invalid %s: %w", name, err))
}

func ErrWrongCredentials(err error) *Err {
	return &Err{
		HTTPStatusCode: http.StatusUnauthorized,
		StatusText:     http.StatusText(http.StatusUnauthorized),
		ErrorMessage:   "wrong email or password",
		Err:            err,
	}
}

func ErrUnauthorized(err error) *Err {
	return &Err{
		HTTPStatusCode: http.StatusUnauthorized,
		StatusText:     http.StatusText(http.StatusUnauthorized),
		ErrorMessage:   "authentication required",
		Err:            err,
	}
}

func ErrPermissionDenied(err error) *Err {
	return &Err{
		HTTPStatusCode: http.StatusForbidden,
		StatusText:     http.StatusText(http.StatusForbidden),
		ErrorMessage:   err.Error(),
		Err:            err,
	}
}

func ErrNotFound(resource, key string, value any) *Err {
	err := fmt.Errorf("%s with %s %v not found", resource, key, value)

	return &Err{
		HTTPStatusCode: http.StatusNotFound,
		StatusText:     http.StatusText(http.StatusNotFound),
		ErrorMessage:   err.Error(),
		Err:            err,
	}
}

func ErrSoldOut(resource string, value any) *Err {
	err := fmt.Errorf("%s %v is sold out", resource, value)

	return &Err{
		HTTPStatusCode: http.StatusConflict,
		StatusText:     http.StatusText(http.StatusConflict),
		ErrorMessage:   err.Error(),
		Err:            err,
	}
}

// ErrConflict reports a transient contention failure the client may retry.
func ErrConflict(err error) *Err {
	return &Err{
		HTTPStatusCode: http.StatusConflict,
		RetryAfter:     1,
		StatusText:     http.StatusText(http.StatusConflict),
		ErrorMessage:   "request conflicted with a concurrent update, please retry",
		Err:            err,
	}
}

func ErrTooManyRequests(retryAfter int) *Err {
	err := errors.New("rate limit exceeded, try again later")

	return &Err{
		HTTPStatusCode: http.StatusTooManyRequests,
		RetryAfter:     retryAfter,
		StatusText:     http.StatusText(http.StatusTooManyRequests),
		ErrorMessage:   err.Error(),
		Err:            err,
	}
}

func ErrInternalServerError(err error) *Err {
	if err == nil {
		err = errors.New("unknown error")
	}

	return &Err{
		HTTPStatusCode: http.StatusInternalServerError,
		StatusText:     http.StatusText(http.StatusInternalServerError),
		ErrorMessage:   "internal server error",
		Err:            err,
	}
}
