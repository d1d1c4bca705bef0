package pbstore

import (
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"

	"ticketbari/models"
)

func timestamps() []core.Field {
	return []core.Field{
		&core.AutodateField{Name: "created", OnCreate: true},
		&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
	}
}

func NewUsersCollection() *core.Collection {
	roles := make([]string, 0, len(models.Roles))
	for _, r := range models.Roles {
		roles = append(roles, string(r))
	}

	c := core.NewBaseCollection(UsersCollection)
	c.Fields.Add(
		&core.EmailField{Name: "email", Required: true},
		&core.TextField{Name: "name", Max: 200},
		&core.URLField{Name: "photo"},
		&core.SelectField{Name: "role", Required: true, MaxSelect: 1, Values: roles},
	)
	c.Fields.Add(timestamps()...)
	c.AddIndex("idx_accounts_email", true, "email", "")
	return c
}

func NewTicketsCollection() *core.Collection {
	c := core.NewBaseCollection(TicketsCollection)
	c.Fields.Add(
		&core.EmailField{Name: "vendorEmail", Required: true},
		&core.TextField{Name: "vendorName", Max: 200},
		&core.TextField{Name: "title", Required: true, Max: 300},
		&core.TextField{Name: "origin", Required: true},
		&core.TextField{Name: "destination", Required: true},
		&core.TextField{Name: "transportType", Required: true},
		&core.NumberField{Name: "price", Min: types.Pointer(0.0)},
		&core.NumberField{Name: "quantity", OnlyInt: true, Min: types.Pointer(0.0)},
		&core.TextField{Name: "departureDate"},
		&core.JSONField{Name: "perks"},
		&core.TextField{Name: "photo"},
		&core.SelectField{Name: "verificationStatus", Required: true, MaxSelect: 1, Values: []string{
			string(models.TicketPending), string(models.TicketApproved), string(models.TicketRejected),
		}},
		&core.BoolField{Name: "isAdvertised"},
	)
	c.Fields.Add(timestamps()...)
	c.AddIndex("idx_tickets_vendor", false, "vendorEmail", "")
	c.AddIndex("idx_tickets_advertised", false, "isAdvertised", "")
	return c
}

func NewBookingsCollection() *core.Collection {
	statuses := make([]string, 0, len(models.BookingStatuses))
	for _, s := range models.BookingStatuses {
		statuses = append(statuses, string(s))
	}

	c := core.NewBaseCollection(BookingsCollection)
	c.Fields.Add(
		&core.TextField{Name: "ticketId", Required: true},
		&core.TextField{Name: "ticketTitle"},
		&core.EmailField{Name: "customerEmail", Required: true},
		&core.TextField{Name: "customerName"},
		&core.EmailField{Name: "vendorEmail", Required: true},
		&core.JSONField{Name: "seatNumbers"},
		&core.NumberField{Name: "bookingQty", OnlyInt: true, Min: types.Pointer(1.0)},
		&core.NumberField{Name: "unitPrice", Min: types.Pointer(0.0)},
		&core.NumberField{Name: "totalPrice", Min: types.Pointer(0.0)},
		&core.TextField{Name: "departureDate"},
		&core.SelectField{Name: "status", Required: true, MaxSelect: 1, Values: statuses},
	)
	c.Fields.Add(timestamps()...)
	c.AddIndex("idx_bookings_ticket", false, "ticketId", "")
	c.AddIndex("idx_bookings_customer", false, "customerEmail", "")
	c.AddIndex("idx_bookings_vendor", false, "vendorEmail", "")
	return c
}

func NewPaymentsCollection() *core.Collection {
	c := core.NewBaseCollection(PaymentsCollection)
	c.Fields.Add(
		&core.TextField{Name: "bookingId", Required: true},
		&core.TextField{Name: "ticketId"},
		&core.EmailField{Name: "email", Required: true},
		&core.NumberField{Name: "price", Min: types.Pointer(0.0)},
		&core.TextField{Name: "transactionId"},
		&core.DateField{Name: "date"},
	)
	c.Fields.Add(timestamps()...)
	c.AddIndex("idx_payments_booking", true, "bookingId", "")
	c.AddIndex("idx_payments_transaction", true, "transactionId", "transactionId != ''")
	c.AddIndex("idx_payments_email", false, "email", "")
	return c
}
