package services

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticketbari/internal/status"
	"ticketbari/models"
)

func TestBookingService_BookNotifiesVendor(t *testing.T) {
	f := newFixture(t)
	ticket := f.ticket(t, "Dhaka Express", 10, 500)

	booking, err := f.bookings.Book(f.ctx, caller(aliceEmail, models.RoleUser), ReserveRequest{
		TicketID:     ticket.ID,
		SeatNumbers:  []string{"1"},
		CustomerName: "Alice",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice", booking.CustomerName)
	assert.Equal(t, vendorEmail, booking.VendorEmail)

	sent := f.notifier.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, EventBookingCreated, sent[0].Event.Type)
	assert.Contains(t, sent[0].Recipients, vendorEmail)
}

func TestBookingService_Decide(t *testing.T) {
	f := newFixture(t)
	ticket := f.ticket(t, "Dhaka Express", 10, 500)
	booking := f.reserve(t, aliceEmail, ticket.ID, "1")
	vendor := caller(vendorEmail, models.RoleVendor)

	_, err := f.bookings.Decide(f.ctx, vendor, booking.ID, models.BookingPaid)
	var validation *status.ValidationError
	assert.ErrorAs(t, err, &validation)

	_, err = f.bookings.Decide(f.ctx, caller("other@vendor.com", models.RoleVendor), booking.ID, models.BookingApproved)
	assert.ErrorIs(t, err, status.ErrForbidden)

	decided, err := f.bookings.Decide(f.ctx, vendor, booking.ID, models.BookingApproved)
	require.NoError(t, err)
	assert.Equal(t, models.BookingApproved, decided.Status)

	_, err = f.bookings.Decide(f.ctx, vendor, booking.ID, models.BookingRejected)
	assert.ErrorIs(t, err, status.ErrInvalidState)

	sent := f.notifier.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, EventBookingDecided, sent[0].Event.Type)
	assert.Equal(t, models.BookingApproved, sent[0].Event.Status)
	assert.Equal(t, []string{aliceEmail}, sent[0].Recipients)
}

func TestBookingService_DecideMissing(t *testing.T) {
	f := newFixture(t)

	_, err := f.bookings.Decide(f.ctx, caller(vendorEmail, models.RoleVendor), "missing", models.BookingApproved)

	assert.ErrorIs(t, err, status.ErrBookingNotFound)
}

func TestBookingService_CancelPending(t *testing.T) {
	f := newFixture(t)
	ticket := f.ticket(t, "Dhaka Express", 10, 500)
	booking := f.reserve(t, aliceEmail, ticket.ID, "1")

	err := f.bookings.Cancel(f.ctx, caller(bobEmail, models.RoleUser), booking.ID)
	assert.ErrorIs(t, err, status.ErrForbidden)

	require.NoError(t, f.bookings.Cancel(f.ctx, caller(aliceEmail, models.RoleUser), booking.ID))

	_, err = f.store.Bookings().FindByID(f.ctx, booking.ID)
	assert.ErrorIs(t, err, status.ErrNotFound)

	seats, err := f.ledger.TakenSeats(f.ctx, ticket.ID)
	require.NoError(t, err)
	assert.Empty(t, seats)
}

func TestBookingService_CancelAfterVendorActed(t *testing.T) {
	f := newFixture(t)
	ticket := f.ticket(t, "Dhaka Express", 10, 500)
	alice := caller(aliceEmail, models.RoleUser)

	approved := f.reserve(t, aliceEmail, ticket.ID, "1")
	f.approve(t, approved.ID)

	err := f.bookings.Cancel(f.ctx, alice, approved.ID)
	assert.ErrorIs(t, err, status.ErrInvalidState)
	assert.Equal(t, http.StatusForbidden, status.HTTPCode(err))
	assert.EqualError(t, err, "booking: vendor already acted or payment completed")

	_, err = f.ledger.ConfirmPayment(f.ctx, alice, approved.ID, "")
	require.NoError(t, err)
	assert.ErrorIs(t, f.bookings.Cancel(f.ctx, alice, approved.ID), status.ErrInvalidState)
}

func TestBookingService_Listing(t *testing.T) {
	f := newFixture(t)
	ticket := f.ticket(t, "Dhaka Express", 10, 500)
	f.reserve(t, aliceEmail, ticket.ID, "1")
	f.reserve(t, bobEmail, ticket.ID, "2")

	mine, err := f.bookings.ForCustomer(f.ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	none, err := f.bookings.ForCustomer(f.ctx, "")
	require.NoError(t, err)
	assert.Empty(t, none)

	vendor, err := f.bookings.ForVendor(f.ctx, vendorEmail)
	require.NoError(t, err)
	assert.Len(t, vendor, 2)
}
