package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticketbari/internal/status"
	"ticketbari/models"
)

func validInput() TicketInput {
	return TicketInput{
		Title:         "Dhaka Express",
		From:          "Dhaka",
		To:            "Chattogram",
		TransportType: "train",
		Price:         750,
		Quantity:      40,
		DepartureDate: "2025-07-01T08:00",
		Perks:         []string{"AC", "Breakfast"},
	}
}

func TestTicketService_Create(t *testing.T) {
	f := newFixture(t)

	ticket, err := f.tickets.Create(f.ctx, caller(vendorEmail, models.RoleVendor), validInput())
	require.NoError(t, err)
	assert.NotEmpty(t, ticket.ID)
	assert.Equal(t, vendorEmail, ticket.VendorEmail)
	assert.Equal(t, models.TicketPending, ticket.VerificationStatus)
	assert.False(t, ticket.IsAdvertised)
}

func TestTicketService_CreateValidation(t *testing.T) {
	f := newFixture(t)
	vendor := caller(vendorEmail, models.RoleVendor)

	tests := []struct {
		name   string
		mutate func(in *TicketInput)
	}{
		{"missing title", func(in *TicketInput) { in.Title = "" }},
		{"missing route", func(in *TicketInput) { in.To = "" }},
		{"negative price", func(in *TicketInput) { in.Price = -1 }},
		{"negative quantity", func(in *TicketInput) { in.Quantity = -5 }},
		{"missing departure", func(in *TicketInput) { in.DepartureDate = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			_, err := f.tickets.Create(f.ctx, vendor, in)
			var validation *status.ValidationError
			assert.ErrorAs(t, err, &validation)
		})
	}
}

func TestTicketService_UpdateOwnTicketOnly(t *testing.T) {
	f := newFixture(t)
	ticket := f.ticket(t, "Dhaka Express", 10, 500)
	price := 650.0

	_, err := f.tickets.Update(f.ctx, caller("other@vendor.com", models.RoleVendor), ticket.ID, models.TicketPatch{Price: &price})
	assert.ErrorIs(t, err, status.ErrForbidden)

	updated, err := f.tickets.Update(f.ctx, caller(vendorEmail, models.RoleVendor), ticket.ID, models.TicketPatch{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 650.0, updated.Price)
	assert.Equal(t, "Dhaka Express", updated.Title)

	blank := " "
	_, err = f.tickets.Update(f.ctx, caller(vendorEmail, models.RoleVendor), ticket.ID, models.TicketPatch{Title: &blank})
	var validation *status.ValidationError
	assert.ErrorAs(t, err, &validation)

	_, err = f.tickets.Update(f.ctx, caller(vendorEmail, models.RoleVendor), ticket.ID, models.TicketPatch{})
	assert.ErrorAs(t, err, &validation)
}

func TestTicketService_Delete(t *testing.T) {
	f := newFixture(t)
	first := f.ticket(t, "Dhaka Express", 10, 500)
	second := f.ticket(t, "Sylhet Coach", 10, 500)

	err := f.tickets.Delete(f.ctx, caller("other@vendor.com", models.RoleVendor), first.ID)
	assert.ErrorIs(t, err, status.ErrForbidden)

	require.NoError(t, f.tickets.Delete(f.ctx, caller(vendorEmail, models.RoleVendor), first.ID))
	require.NoError(t, f.tickets.Delete(f.ctx, caller(adminEmail, models.RoleAdmin), second.ID))

	_, err = f.tickets.Get(f.ctx, first.ID)
	assert.ErrorIs(t, err, status.ErrTicketNotFound)
}

func TestTicketService_SetStatusRejectUnadvertises(t *testing.T) {
	f := newFixture(t)
	ticket := f.ticket(t, "Dhaka Express", 10, 500)
	_, err := f.tickets.SetAdvertised(f.ctx, ticket.ID, true)
	require.NoError(t, err)

	updated, err := f.tickets.SetStatus(f.ctx, ticket.ID, models.TicketRejected)
	require.NoError(t, err)
	assert.Equal(t, models.TicketRejected, updated.VerificationStatus)
	assert.False(t, updated.IsAdvertised)

	_, err = f.tickets.SetStatus(f.ctx, ticket.ID, "maybe")
	var validation *status.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestTicketService_ListAndAdvertised(t *testing.T) {
	f := newFixture(t)
	cheap := f.ticket(t, "Cheap Bus", 10, 100)
	f.ticket(t, "Pricey Train", 10, 900)
	mid := f.ticket(t, "Mid Launch", 10, 400)

	tickets, err := f.tickets.List(f.ctx, TicketQuery{Sort: "price_asc"})
	require.NoError(t, err)
	require.Len(t, tickets, 3)
	assert.Equal(t, cheap.ID, tickets[0].ID)

	page, err := f.tickets.List(f.ctx, TicketQuery{Sort: "price_asc", Page: 2, Limit: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, mid.ID, page[0].ID)

	_, err = f.tickets.List(f.ctx, TicketQuery{Sort: "random"})
	var validation *status.ValidationError
	assert.ErrorAs(t, err, &validation)

	_, err = f.tickets.SetAdvertised(f.ctx, mid.ID, true)
	require.NoError(t, err)
	advertised, err := f.tickets.Advertised(f.ctx)
	require.NoError(t, err)
	require.Len(t, advertised, 1)
	assert.Equal(t, mid.ID, advertised[0].ID)

	mine, err := f.tickets.ForVendor(f.ctx, vendorEmail)
	require.NoError(t, err)
	assert.Len(t, mine, 3)
}
