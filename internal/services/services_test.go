package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"ticketbari/internal/auth"
	"ticketbari/internal/services/payment"
	"ticketbari/internal/store/memstore"
	"ticketbari/models"
)

const (
	vendorEmail = "vendor@ticketbari.com"
	aliceEmail  = "alice@example.com"
	bobEmail    = "bob@example.com"
	adminEmail  = "admin@ticketbari.com"
)

func caller(email string, role models.Role) *auth.Caller {
	return &auth.Caller{Identity: auth.Identity{UID: email, Email: email}, Role: role}
}

type sentEvent struct {
	Event      Event
	Recipients []string
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []sentEvent
}

func (n *recordingNotifier) Notify(_ context.Context, event Event, recipients ...string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, sentEvent{Event: event, Recipients: recipients})
}

func (n *recordingNotifier) Sent() []sentEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentEvent(nil), n.events...)
}

type fixture struct {
	ctx      context.Context
	store    *memstore.Store
	notifier *recordingNotifier
	gateway  *payment.MockGateway

	ledger   *Ledger
	bookings *BookingService
	tickets  *TicketService
	users    *UserService
	payments *PaymentService
	reports  *ReportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st := memstore.New()
	notifier := &recordingNotifier{}
	gateway := payment.NewMockGateway()
	ledger := NewLedger(st, nil, DefaultAdvertiseLimit)

	return &fixture{
		ctx:      context.Background(),
		store:    st,
		notifier: notifier,
		gateway:  gateway,
		ledger:   ledger,
		bookings: NewBookingService(st, ledger, notifier),
		tickets:  NewTicketService(st, ledger),
		users:    NewUserService(st),
		payments: NewPaymentService(st, ledger, gateway, notifier, "usd"),
		reports:  NewReportService(st, DefaultAdvertiseLimit, "Jan"),
	}
}

func (f *fixture) ticket(t *testing.T, title string, quantity int, price float64) *models.Ticket {
	t.Helper()

	ticket := &models.Ticket{
		VendorEmail:        vendorEmail,
		Title:              title,
		From:               "Dhaka",
		To:                 "Chattogram",
		TransportType:      "bus",
		Price:              price,
		Quantity:           quantity,
		DepartureDate:      "2025-07-01T08:00",
		Perks:              []string{},
		VerificationStatus: models.TicketApproved,
	}
	require.NoError(t, f.store.Tickets().Insert(f.ctx, ticket))
	return ticket
}

func (f *fixture) reserve(t *testing.T, customer string, ticketID string, seats ...string) *models.Booking {
	t.Helper()

	booking, err := f.ledger.ReserveSeats(f.ctx, caller(customer, models.RoleUser), ReserveRequest{
		TicketID:    ticketID,
		SeatNumbers: seats,
	})
	require.NoError(t, err)
	return booking
}

func (f *fixture) approve(t *testing.T, bookingID string) {
	t.Helper()

	_, err := f.bookings.Decide(f.ctx, caller(vendorEmail, models.RoleVendor), bookingID, models.BookingApproved)
	require.NoError(t, err)
}

func (f *fixture) quantity(t *testing.T, ticketID string) int {
	t.Helper()

	ticket, err := f.store.Tickets().FindByID(f.ctx, ticketID)
	require.NoError(t, err)
	return ticket.Quantity
}
