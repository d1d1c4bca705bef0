package pbstore

import (
	"testing"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticketbari/models"
)

func TestTicketRecordMapping(t *testing.T) {
	record := core.NewRecord(NewTicketsCollection())

	in := models.Ticket{
		VendorEmail:        "Vendor@Bari.com",
		Title:              "Dhaka - Cox's Bazar",
		From:               "Dhaka",
		To:                 "Cox's Bazar",
		TransportType:      "bus",
		Price:              1250.5,
		Quantity:           36,
		DepartureDate:      "2026-11-02T22:30",
		Perks:              []string{"AC", "Snacks"},
		VerificationStatus: models.TicketPending,
	}
	fillTicketRecord(record, &in)

	out := ticketFromRecord(record)
	assert.Equal(t, "vendor@bari.com", out.VendorEmail)
	assert.Equal(t, "Dhaka", out.From)
	assert.Equal(t, "Cox's Bazar", out.To)
	assert.Equal(t, 1250.5, out.Price)
	assert.Equal(t, 36, out.Quantity)
	assert.Equal(t, []string{"AC", "Snacks"}, out.Perks)
	assert.Equal(t, models.TicketPending, out.VerificationStatus)
	assert.False(t, out.IsAdvertised)
}

func TestBookingRecordMapping(t *testing.T) {
	record := core.NewRecord(NewBookingsCollection())
	record.Set("ticketId", "t1")
	record.Set("seatNumbers", []string{"A1", "A2"})
	record.Set("bookingQty", 2)
	record.Set("totalPrice", 900)
	record.Set("status", string(models.BookingApproved))

	b := bookingFromRecord(record)
	assert.Equal(t, "t1", b.TicketID)
	assert.Equal(t, models.SeatNumbers{"A1", "A2"}, b.SeatNumbers)
	assert.Equal(t, 2, b.BookingQty)
	assert.Equal(t, 900.0, b.TotalPrice)
	assert.Equal(t, models.BookingApproved, b.Status)
}

func TestPaymentRecordMapping(t *testing.T) {
	record := core.NewRecord(NewPaymentsCollection())
	paidAt := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	record.Set("bookingId", "b1")
	record.Set("email", "a@bari.com")
	record.Set("price", 450)
	record.Set("date", paidAt)

	p := paymentFromRecord(record)
	assert.Equal(t, "b1", p.BookingID)
	assert.Equal(t, 450.0, p.Price)
	assert.True(t, paidAt.Equal(p.Date))
}

func TestCollections(t *testing.T) {
	for _, c := range []*core.Collection{
		NewUsersCollection(), NewTicketsCollection(), NewBookingsCollection(), NewPaymentsCollection(),
	} {
		require.NotNil(t, c.Fields.GetByName("created"), c.Name)
		assert.True(t, c.IsBase(), c.Name)
	}

	payments := NewPaymentsCollection()
	assert.Len(t, payments.Indexes, 3)
	txIndex := payments.GetIndex("idx_payments_transaction")
	assert.Contains(t, txIndex, "UNIQUE")
	assert.Contains(t, txIndex, "transactionId != ''")
}
