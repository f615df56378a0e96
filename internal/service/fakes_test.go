package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mehrdadmmz/StagePass/internal/domain"
	"github.com/mehrdadmmz/StagePass/internal/repository"
)

// fakeStore is an in-memory database. Transactions are serialised by txMu,
// which stands in for the row locks, and roll back when fn fails.
type fakeStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	users       map[uuid.UUID]domain.User
	events      map[uuid.UUID]domain.Event
	ticketTypes map[uuid.UUID]domain.TicketType
	tickets     map[uuid.UUID]domain.Ticket
	qrCodes     map[uuid.UUID]domain.QrCode
	validations map[uuid.UUID]domain.TicketValidation
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:       map[uuid.UUID]domain.User{},
		events:      map[uuid.UUID]domain.Event{},
		ticketTypes: map[uuid.UUID]domain.TicketType{},
		tickets:     map[uuid.UUID]domain.Ticket{},
		qrCodes:     map[uuid.UUID]domain.QrCode{},
		validations: map[uuid.UUID]domain.TicketValidation{},
	}
}

func (s *fakeStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.copyState()
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.restore(snapshot)
		s.mu.Unlock()
		return err
	}

	return nil
}

func (s *fakeStore) copyState() *fakeStore {
	return &fakeStore{
		users:       cloneMap(s.users),
		events:      cloneMap(s.events),
		ticketTypes: cloneMap(s.ticketTypes),
		tickets:     cloneMap(s.tickets),
		qrCodes:     cloneMap(s.qrCodes),
		validations: cloneMap(s.validations),
	}
}

func (s *fakeStore) restore(snapshot *fakeStore) {
	s.users = snapshot.users
	s.events = snapshot.events
	s.ticketTypes = snapshot.ticketTypes
	s.tickets = snapshot.tickets
	s.qrCodes = snapshot.qrCodes
	s.validations = snapshot.validations
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *fakeStore) addUser(role domain.Role) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := domain.User{ID: uuid.New(), Email: uuid.NewString() + "@example.com", Role: role}
	s.users[u.ID] = u
	return u
}

func (s *fakeStore) addTicketType(total int) domain.TicketType {
	s.mu.Lock()
	defer s.mu.Unlock()

	event := domain.Event{ID: uuid.New(), Name: "Concert"}
	tt := domain.TicketType{ID: uuid.New(), EventID: event.ID, Name: "General", TotalAvailable: total}
	event.TicketTypes = []domain.TicketType{tt}
	s.events[event.ID] = event
	s.ticketTypes[tt.ID] = tt
	return tt
}

func (s *fakeStore) addTicket(ticket domain.Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tickets[ticket.ID] = ticket
}

func (s *fakeStore) ticket(id uuid.UUID) domain.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tickets[id]
}

func (s *fakeStore) qrCode(id uuid.UUID) domain.QrCode {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.qrCodes[id]
}

func (s *fakeStore) count() (tickets, qrCodes, validations int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.tickets), len(s.qrCodes), len(s.validations)
}

type fakeUsers struct{ *fakeStore }

func (f fakeUsers) Create(_ context.Context, user domain.User) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Email == user.Email {
			return domain.User{}, repository.ErrUserEmailExists
		}
	}
	user.ID = uuid.New()
	f.users[user.ID] = user
	return user, nil
}

func (f fakeUsers) FindByID(_ context.Context, id uuid.UUID) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return domain.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (f fakeUsers) FindByEmail(_ context.Context, email string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, repository.ErrUserNotFound
}

type fakeEvents struct{ *fakeStore }

func (f fakeEvents) Create(_ context.Context, event domain.Event) (domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	event.ID = uuid.New()
	for i := range event.TicketTypes {
		event.TicketTypes[i].ID = uuid.New()
		event.TicketTypes[i].EventID = event.ID
		f.ticketTypes[event.TicketTypes[i].ID] = event.TicketTypes[i]
	}
	f.events[event.ID] = event
	return event, nil
}

func (f fakeEvents) FindByID(_ context.Context, id uuid.UUID) (domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	e, ok := f.events[id]
	if !ok {
		return domain.Event{}, repository.ErrEventNotFound
	}
	return e, nil
}

func (f fakeEvents) FindTicketTypeByIDForUpdate(_ context.Context, id uuid.UUID) (domain.TicketType, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	tt, ok := f.ticketTypes[id]
	if !ok {
		return domain.TicketType{}, repository.ErrTicketTypeNotFound
	}
	return tt, nil
}

func (f fakeEvents) FindTicketTypeAvailability(_ context.Context, eventID uuid.UUID) ([]domain.TicketTypeAvailability, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []domain.TicketTypeAvailability
	for _, tt := range f.ticketTypes {
		if tt.EventID != eventID {
			continue
		}
		var sold int64
		for _, t := range f.tickets {
			if t.TicketTypeID == tt.ID && t.Status != domain.TicketStatusCancelled {
				sold++
			}
		}
		out = append(out, domain.TicketTypeAvailability{
			TicketType: tt,
			Sold:       sold,
			Remaining:  max(int64(tt.TotalAvailable)-sold, 0),
		})
	}
	return out, nil
}

type fakeTickets struct{ *fakeStore }

func (f fakeTickets) Create(_ context.Context, ticket domain.Ticket) (domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ticket.CreatedAt = time.Now().UTC()
	ticket.UpdatedAt = ticket.CreatedAt
	f.tickets[ticket.ID] = ticket
	return ticket, nil
}

func (f fakeTickets) CountCommittedByTicketTypeID(_ context.Context, ticketTypeID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var n int64
	for _, t := range f.tickets {
		if t.TicketTypeID == ticketTypeID && t.Status != domain.TicketStatusCancelled {
			n++
		}
	}
	return n, nil
}

func (f fakeTickets) FindByIDAndPurchaserID(_ context.Context, id, purchaserID uuid.UUID) (domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, ok := f.tickets[id]
	if !ok || t.PurchaserID != purchaserID {
		return domain.Ticket{}, repository.ErrTicketNotFound
	}
	return t, nil
}

func (f fakeTickets) FindByIDAndStatusForUpdate(_ context.Context, id uuid.UUID, status domain.TicketStatus) (domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, ok := f.tickets[id]
	if !ok || t.Status != status {
		return domain.Ticket{}, repository.ErrTicketNotFound
	}
	return t, nil
}

func (f fakeTickets) FindByPurchaserID(_ context.Context, purchaserID uuid.UUID, page, size int) (domain.TicketPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var all []domain.Ticket
	for _, t := range f.tickets {
		if t.PurchaserID == purchaserID {
			all = append(all, t)
		}
	}

	start := min((page-1)*size, len(all))
	end := min(start+size, len(all))
	return domain.TicketPage{Tickets: all[start:end], Page: page, Size: size, Total: int64(len(all))}, nil
}

func (f fakeTickets) UpdateStatus(_ context.Context, id uuid.UUID, from, to domain.TicketStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, ok := f.tickets[id]
	if !ok || t.Status != from {
		return repository.ErrTicketNotFound
	}
	t.Status = to
	f.tickets[id] = t
	return nil
}

type fakeQrCodes struct{ *fakeStore }

func (f fakeQrCodes) Create(_ context.Context, qrCode domain.QrCode) (domain.QrCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, q := range f.qrCodes {
		if q.TicketID == qrCode.TicketID {
			return domain.QrCode{}, repository.ErrQrCodeExists
		}
	}
	f.qrCodes[qrCode.ID] = qrCode
	return qrCode, nil
}

func (f fakeQrCodes) FindByIDAndStatus(_ context.Context, id uuid.UUID, status domain.QrCodeStatus) (domain.QrCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	q, ok := f.qrCodes[id]
	if !ok || q.Status != status {
		return domain.QrCode{}, repository.ErrQrCodeNotFound
	}
	return q, nil
}

func (f fakeQrCodes) FindByIDAndStatusForUpdate(ctx context.Context, id uuid.UUID, status domain.QrCodeStatus) (domain.QrCode, error) {
	return f.FindByIDAndStatus(ctx, id, status)
}

func (f fakeQrCodes) FindByTicketIDForUpdate(_ context.Context, ticketID uuid.UUID) (domain.QrCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, q := range f.qrCodes {
		if q.TicketID == ticketID {
			return q, nil
		}
	}
	return domain.QrCode{}, repository.ErrQrCodeNotFound
}

func (f fakeQrCodes) FindByTicketIDAndPurchaserID(_ context.Context, ticketID, purchaserID uuid.UUID) (domain.QrCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, q := range f.qrCodes {
		if q.TicketID == ticketID && q.PurchaserID == purchaserID {
			return q, nil
		}
	}
	return domain.QrCode{}, repository.ErrQrCodeNotFound
}

func (f fakeQrCodes) UpdateStatus(_ context.Context, id uuid.UUID, from, to domain.QrCodeStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	q, ok := f.qrCodes[id]
	if !ok || q.Status != from {
		return repository.ErrQrCodeNotFound
	}
	q.Status = to
	f.qrCodes[id] = q
	return nil
}

type fakeValidations struct{ *fakeStore }

func (f fakeValidations) Create(_ context.Context, v domain.TicketValidation) (domain.TicketValidation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.validations {
		if existing.TicketID == v.TicketID {
			return domain.TicketValidation{}, repository.ErrTicketAlreadyValidated
		}
	}
	f.validations[v.ID] = v
	return v, nil
}

type fakeEncoder struct{}

func (fakeEncoder) Encode(content string) ([]byte, error) {
	if content == "" {
		return nil, errors.New("empty content")
	}
	return []byte("png:" + content), nil
}

type failingIssuer struct{}

func (failingIssuer) GenerateQrCode(context.Context, domain.Ticket) (domain.QrCode, error) {
	return domain.QrCode{}, errors.New("boom")
}
