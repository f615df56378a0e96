package dao

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrUserEmailExists      = errors.New("user already exists")
	ErrUserNotFound         = errors.New("user not found")
	ErrEventNotFound        = errors.New("event not found")
	ErrTicketTypeNotFound   = errors.New("ticket type not found")
	ErrTicketNotFound       = errors.New("ticket not found")
	ErrQrCodeNotFound       = errors.New("qr code not found")
	ErrQrCodeExists         = errors.New("ticket already has a qr code")
	ErrTicketAlreadyChecked = errors.New("ticket already validated")

	// ErrConflict marks transient failures of the locking protocol (lock
	// timeout, deadlock, serialization failure). Retrying the operation is safe.
	ErrConflict = errors.New("concurrent update conflict")
)

func asPgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

func isUniqueViolation(err error, constraint string) bool {
	pgErr, ok := asPgError(err)
	return ok &&
		pgErr.Code == pgerrcode.UniqueViolation &&
		(pgErr.ConstraintName == constraint || strings.Contains(pgErr.Message, `"`+constraint+`"`))
}

// classify turns Postgres failures caused by lock contention into ErrConflict
// and leaves everything else untouched.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrConflict) {
		return err
	}

	pgErr, ok := asPgError(err)
	if !ok {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %w", ErrConflict, err)
		}
		return err
	}

	switch pgErr.Code {
	case pgerrcode.LockNotAvailable,
		pgerrcode.DeadlockDetected,
		pgerrcode.SerializationFailure,
		pgerrcode.QueryCanceled:
		return fmt.Errorf("%w: %s (%s)", ErrConflict, pgErr.Message, pgErr.Code)
	}

	return err
}
