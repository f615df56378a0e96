package dao_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mehrdadmmz/StagePass/internal/repository/dao"
)

func TestUserDAO(t *testing.T) {
	gdb := requireDB(t)
	users := dao.NewUserDAO(gdb)

	created, err := users.Insert(context.Background(), dao.User{Email: "a@example.com", Password: "x", Name: "A", Role: "staff"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)

	_, err = users.Insert(context.Background(), dao.User{Email: "a@example.com", Password: "x", Name: "B", Role: "attendee"})
	assert.ErrorIs(t, err, dao.ErrUserEmailExists)

	found, err := users.FindByEmail(context.Background(), "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = users.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, dao.ErrUserNotFound)
}

func TestEventDAO_TicketTypeSales(t *testing.T) {
	gdb := requireDB(t)
	organizer := insertUser(t, gdb, "organizer")
	buyer := insertUser(t, gdb, "attendee")
	tt := insertTicketType(t, gdb, organizer, 3)

	tickets := dao.NewTicketDAO(gdb)
	for _, status := range []string{dao.TicketStatusPurchased, dao.TicketStatusValidated, dao.TicketStatusCancelled} {
		_, err := tickets.Insert(context.Background(), dao.Ticket{Status: status, TicketTypeID: tt.ID, PurchaserID: buyer.ID})
		require.NoError(t, err)
	}

	sales, err := dao.NewEventDAO(gdb).FindTicketTypeSalesByEventID(context.Background(), tt.EventID)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, int64(2), sales[0].Sold)
	assert.Equal(t, 3, sales[0].TotalAvailable)
}

func TestUniqueConstraints(t *testing.T) {
	gdb := requireDB(t)
	organizer := insertUser(t, gdb, "organizer")
	buyer := insertUser(t, gdb, "attendee")
	tt := insertTicketType(t, gdb, organizer, 3)

	ticket, err := dao.NewTicketDAO(gdb).Insert(context.Background(), dao.Ticket{
		Status:       dao.TicketStatusPurchased,
		TicketTypeID: tt.ID,
		PurchaserID:  buyer.ID,
	})
	require.NoError(t, err)

	qrCodes := dao.NewQrCodeDAO(gdb)
	_, err = qrCodes.Insert(context.Background(), dao.QrCode{Status: dao.QrCodeStatusActive, Value: "a", TicketID: ticket.ID, PurchaserID: buyer.ID})
	require.NoError(t, err)
	_, err = qrCodes.Insert(context.Background(), dao.QrCode{Status: dao.QrCodeStatusActive, Value: "b", TicketID: ticket.ID, PurchaserID: buyer.ID})
	assert.ErrorIs(t, err, dao.ErrQrCodeExists)

	validations := dao.NewTicketValidationDAO(gdb)
	_, err = validations.Insert(context.Background(), dao.TicketValidation{TicketID: ticket.ID, Method: dao.ValidationMethodManual, ValidatedAt: time.Now()})
	require.NoError(t, err)
	_, err = validations.Insert(context.Background(), dao.TicketValidation{TicketID: ticket.ID, Method: dao.ValidationMethodQrCode, ValidatedAt: time.Now()})
	assert.ErrorIs(t, err, dao.ErrTicketAlreadyChecked)
}

func TestTicketDAO_UpdateStatusIsConditional(t *testing.T) {
	gdb := requireDB(t)
	organizer := insertUser(t, gdb, "organizer")
	buyer := insertUser(t, gdb, "attendee")
	tt := insertTicketType(t, gdb, organizer, 3)

	tickets := dao.NewTicketDAO(gdb)
	ticket, err := tickets.Insert(context.Background(), dao.Ticket{Status: dao.TicketStatusPurchased, TicketTypeID: tt.ID, PurchaserID: buyer.ID})
	require.NoError(t, err)

	require.NoError(t, tickets.UpdateStatus(context.Background(), ticket.ID, dao.TicketStatusPurchased, dao.TicketStatusValidated))
	err = tickets.UpdateStatus(context.Background(), ticket.ID, dao.TicketStatusPurchased, dao.TicketStatusValidated)
	assert.ErrorIs(t, err, dao.ErrTicketNotFound)

	list, total, err := tickets.FindByPurchaserID(context.Background(), buyer.ID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, dao.TicketStatusValidated, list[0].Status)
}

func TestTxManager(t *testing.T) {
	gdb := requireDB(t)
	organizer := insertUser(t, gdb, "organizer")
	tt := insertTicketType(t, gdb, organizer, 3)
	events := dao.NewEventDAO(gdb)

	t.Run("rolls back on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := dao.NewTxManager(gdb, time.Second).WithTx(context.Background(), func(ctx context.Context) error {
			if _, err := dao.NewUserDAO(gdb).Insert(ctx, dao.User{Email: "rollback@example.com", Password: "x", Name: "R", Role: "staff"}); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		_, err = dao.NewUserDAO(gdb).FindByEmail(context.Background(), "rollback@example.com")
		assert.ErrorIs(t, err, dao.ErrUserNotFound)
	})

	t.Run("lock timeout is a conflict", func(t *testing.T) {
		locked := make(chan struct{})
		release := make(chan struct{})
		holderDone := make(chan error, 1)

		go func() {
			holderDone <- dao.NewTxManager(gdb, time.Second).WithTx(context.Background(), func(ctx context.Context) error {
				if _, err := events.FindTicketTypeByIDForUpdate(ctx, tt.ID); err != nil {
					return err
				}
				close(locked)
				<-release
				return nil
			})
		}()
		<-locked

		err := dao.NewTxManager(gdb, 100*time.Millisecond).WithTx(context.Background(), func(ctx context.Context) error {
			_, err := events.FindTicketTypeByIDForUpdate(ctx, tt.ID)
			return err
		})
		assert.ErrorIs(t, err, dao.ErrConflict)

		close(release)
		assert.NoError(t, <-holderDone)
	})
}
