package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mehrdadmmz/StagePass/internal/api/middleware"
	"github.com/mehrdadmmz/StagePass/internal/config"
	"github.com/mehrdadmmz/StagePass/internal/domain"
	"github.com/mehrdadmmz/StagePass/internal/pkg/jwthelper"
	"github.com/mehrdadmmz/StagePass/internal/service"
)

const (
	testSigningKey = "0123456789abcdef0123456789abcdef"
	testUserAgent  = "handler-test"
)

type fakeUserService map[uuid.UUID]domain.User

func (f fakeUserService) GetUser(_ context.Context, id uuid.UUID) (domain.User, error) {
	u, ok := f[id]
	if !ok {
		return domain.User{}, service.ErrUserNotFound
	}
	return u, nil
}

type fakeAuthService struct {
	users fakeUserService
}

func (f fakeAuthService) Signup(_ context.Context, user domain.User) (domain.User, error) {
	for _, u := range f.users {
		if u.Email == user.Email {
			return domain.User{}, service.ErrUserEmailExists
		}
	}
	user.ID = uuid.New()
	f.users[user.ID] = user
	return user, nil
}

func (f fakeAuthService) Login(_ context.Context, email, password string) (domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			if u.Password != password {
				return domain.User{}, service.ErrWrongPassword
			}
			return u, nil
		}
	}
	return domain.User{}, service.ErrUserNotFound
}

type fakePurchaseService func(userID, ticketTypeID uuid.UUID) (domain.Ticket, error)

func (f fakePurchaseService) PurchaseTicket(_ context.Context, userID, ticketTypeID uuid.UUID) (domain.Ticket, error) {
	return f(userID, ticketTypeID)
}

type fakeTicketService struct {
	tickets map[uuid.UUID]domain.Ticket
}

func (f fakeTicketService) ListTicketsForUser(_ context.Context, userID uuid.UUID, page, size int) (domain.TicketPage, error) {
	out := domain.TicketPage{Page: page, Size: size}
	for _, t := range f.tickets {
		if t.PurchaserID == userID {
			out.Tickets = append(out.Tickets, t)
		}
	}
	out.Total = int64(len(out.Tickets))
	return out, nil
}

func (f fakeTicketService) GetTicketForUser(_ context.Context, userID, ticketID uuid.UUID) (domain.Ticket, error) {
	t, ok := f.tickets[ticketID]
	if !ok || t.PurchaserID != userID {
		return domain.Ticket{}, service.ErrTicketNotFound
	}
	return t, nil
}

type fakeQrCodeService struct {
	tickets map[uuid.UUID]domain.Ticket
}

func (f fakeQrCodeService) GetQrCodeImageForUserAndTicket(_ context.Context, userID, ticketID uuid.UUID) ([]byte, error) {
	t, ok := f.tickets[ticketID]
	if !ok || t.PurchaserID != userID {
		return nil, service.ErrQrCodeNotFound
	}
	return []byte("\x89PNG"), nil
}

type fakeValidationService func(id uuid.UUID, method domain.ValidationMethod) (domain.TicketValidation, error)

func (f fakeValidationService) Validate(_ context.Context, id uuid.UUID, method domain.ValidationMethod) (domain.TicketValidation, error) {
	return f(id, method)
}

type fakeEventService struct {
	events map[uuid.UUID]domain.Event
}

func (f fakeEventService) CreateEvent(_ context.Context, event domain.Event, organizerID uuid.UUID) (domain.Event, error) {
	event.ID = uuid.New()
	event.OrganizerID = organizerID
	f.events[event.ID] = event
	return event, nil
}

func (f fakeEventService) GetTicketTypeAvailability(_ context.Context, eventID uuid.UUID) ([]domain.TicketTypeAvailability, error) {
	event, ok := f.events[eventID]
	if !ok {
		return nil, service.ErrEventNotFound
	}
	var out []domain.TicketTypeAvailability
	for _, tt := range event.TicketTypes {
		out = append(out, domain.TicketTypeAvailability{TicketType: tt, Remaining: int64(tt.TotalAvailable)})
	}
	return out, nil
}

type testEnv struct {
	router  *gin.Engine
	users   fakeUserService
	tickets map[uuid.UUID]domain.Ticket
	events  map[uuid.UUID]domain.Event

	purchase fakePurchaseService
	validate fakeValidationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		router:  gin.New(),
		users:   fakeUserService{},
		tickets: map[uuid.UUID]domain.Ticket{},
		events:  map[uuid.UUID]domain.Event{},
	}
	env.purchase = func(uuid.UUID, uuid.UUID) (domain.Ticket, error) {
		return domain.Ticket{}, fmt.Errorf("unexpected purchase")
	}
	env.validate = func(uuid.UUID, domain.ValidationMethod) (domain.TicketValidation, error) {
		return domain.TicketValidation{}, fmt.Errorf("unexpected validation")
	}

	apiConf := &config.APIConfig{JWTSigningKey: testSigningKey, JWTTTL: time.Hour}
	auth := NewAuthHandler(apiConf, fakeAuthService{users: env.users})
	user := NewUserHandler(env.users)
	event := NewEventHandler(fakeEventService{events: env.events}, env.users)
	ticket := NewTicketHandler(
		fakePurchaseService(func(u, tt uuid.UUID) (domain.Ticket, error) { return env.purchase(u, tt) }),
		fakeTicketService{tickets: env.tickets},
		fakeQrCodeService{tickets: env.tickets},
		env.users,
	)
	validation := NewTicketValidationHandler(
		fakeValidationService(func(id uuid.UUID, m domain.ValidationMethod) (domain.TicketValidation, error) {
			return env.validate(id, m)
		}),
		env.users,
	)

	env.router.POST("/auth/signup", auth.HandleSignup)
	env.router.POST("/auth/login", auth.HandleLogin)
	authed := env.router.Group("", middleware.NewAuthenticator(testSigningKey).VerifyJWT())
	authed.GET("/users/me", user.HandleGetMe)
	authed.POST("/events", event.HandleCreateEvent)
	authed.GET("/events/:eventID/ticket-types", event.HandleGetTicketTypes)
	authed.POST("/ticket-types/:ticketTypeID/tickets", ticket.HandlePurchaseTicket)
	authed.GET("/tickets", ticket.HandleListTickets)
	authed.GET("/tickets/:ticketID", ticket.HandleGetTicket)
	authed.GET("/tickets/:ticketID/qr-codes", ticket.HandleGetTicketQrCode)
	authed.POST("/ticket-validations", validation.HandleValidateTicket)

	return env
}

func (e *testEnv) addUser(role domain.Role) domain.User {
	u := domain.User{ID: uuid.New(), Email: uuid.NewString() + "@example.com", Role: role}
	e.users[u.ID] = u
	return u
}

func (e *testEnv) do(t *testing.T, method, path string, user *domain.User, body any) *httptest.ResponseRecorder {
	t.Helper()

	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}

	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", testUserAgent)
	if user != nil {
		token, err := jwthelper.GenerateToken([]byte(testSigningKey), user.ID, testUserAgent, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
