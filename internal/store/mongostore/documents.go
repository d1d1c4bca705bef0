package mongostore

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"ticketbari/models"
)

type userDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Email     string             `bson:"email"`
	Name      string             `bson:"name,omitempty"`
	Photo     string             `bson:"photo,omitempty"`
	Role      string             `bson:"role"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d userDoc) model() models.User {
	return models.User{
		ID:        d.ID.Hex(),
		Email:     d.Email,
		Name:      d.Name,
		Photo:     d.Photo,
		Role:      models.Role(d.Role),
		CreatedAt: d.CreatedAt,
	}
}

type ticketDoc struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	VendorEmail        string             `bson:"vendorEmail"`
	VendorName         string             `bson:"vendorName,omitempty"`
	Title              string             `bson:"title"`
	From               string             `bson:"from"`
	To                 string             `bson:"to"`
	TransportType      string             `bson:"transportType"`
	Price              float64            `bson:"price"`
	Quantity           int                `bson:"quantity"`
	DepartureDate      string             `bson:"departureDate"`
	Perks              []string           `bson:"perks"`
	Photo              string             `bson:"photo,omitempty"`
	VerificationStatus string             `bson:"verificationStatus"`
	IsAdvertised       bool               `bson:"isAdvertised"`
	CreatedAt          time.Time          `bson:"createdAt"`
}

func newTicketDoc(t *models.Ticket) ticketDoc {
	perks := t.Perks
	if perks == nil {
		perks = []string{}
	}
	return ticketDoc{
		VendorEmail:        models.NormalizeEmail(t.VendorEmail),
		VendorName:         t.VendorName,
		Title:              t.Title,
		From:               t.From,
		To:                 t.To,
		TransportType:      t.TransportType,
		Price:              t.Price,
		Quantity:           t.Quantity,
		DepartureDate:      t.DepartureDate,
		Perks:              perks,
		Photo:              t.Photo,
		VerificationStatus: string(t.VerificationStatus),
		IsAdvertised:       t.IsAdvertised,
		CreatedAt:          t.CreatedAt,
	}
}

func (d ticketDoc) model() models.Ticket {
	return models.Ticket{
		ID:                 d.ID.Hex(),
		VendorEmail:        d.VendorEmail,
		VendorName:         d.VendorName,
		Title:              d.Title,
		From:               d.From,
		To:                 d.To,
		TransportType:      d.TransportType,
		Price:              d.Price,
		Quantity:           d.Quantity,
		DepartureDate:      d.DepartureDate,
		Perks:              d.Perks,
		Photo:              d.Photo,
		VerificationStatus: models.VerificationStatus(d.VerificationStatus),
		IsAdvertised:       d.IsAdvertised,
		CreatedAt:          d.CreatedAt,
	}
}

type bookingDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	TicketID      string             `bson:"ticketId"`
	TicketTitle   string             `bson:"ticketTitle"`
	CustomerEmail string             `bson:"customerEmail"`
	CustomerName  string             `bson:"customerName,omitempty"`
	VendorEmail   string             `bson:"vendorEmail"`
	SeatNumbers   []string           `bson:"seatNumbers"`
	BookingQty    int                `bson:"bookingQty"`
	UnitPrice     float64            `bson:"unitPrice"`
	TotalPrice    float64            `bson:"totalPrice"`
	DepartureDate string             `bson:"departureDate,omitempty"`
	Status        string             `bson:"status"`
	CreatedAt     time.Time          `bson:"createdAt"`
}

func newBookingDoc(b *models.Booking) bookingDoc {
	return bookingDoc{
		TicketID:      b.TicketID,
		TicketTitle:   b.TicketTitle,
		CustomerEmail: models.NormalizeEmail(b.CustomerEmail),
		CustomerName:  b.CustomerName,
		VendorEmail:   models.NormalizeEmail(b.VendorEmail),
		SeatNumbers:   []string(b.SeatNumbers),
		BookingQty:    b.BookingQty,
		UnitPrice:     b.UnitPrice,
		TotalPrice:    b.TotalPrice,
		DepartureDate: b.DepartureDate,
		Status:        string(b.Status),
		CreatedAt:     b.CreatedAt,
	}
}

func (d bookingDoc) model() models.Booking {
	return models.Booking{
		ID:            d.ID.Hex(),
		TicketID:      d.TicketID,
		TicketTitle:   d.TicketTitle,
		CustomerEmail: d.CustomerEmail,
		CustomerName:  d.CustomerName,
		VendorEmail:   d.VendorEmail,
		SeatNumbers:   models.SeatNumbers(d.SeatNumbers),
		BookingQty:    d.BookingQty,
		UnitPrice:     d.UnitPrice,
		TotalPrice:    d.TotalPrice,
		DepartureDate: d.DepartureDate,
		Status:        models.BookingStatus(d.Status),
		CreatedAt:     d.CreatedAt,
	}
}

type paymentDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	BookingID     string             `bson:"bookingId"`
	TicketID      string             `bson:"ticketId,omitempty"`
	Email         string             `bson:"email"`
	Price         float64            `bson:"price"`
	TransactionID string             `bson:"transactionId,omitempty"`
	Date          time.Time          `bson:"date"`
}

func (d paymentDoc) model() models.Payment {
	return models.Payment{
		ID:            d.ID.Hex(),
		BookingID:     d.BookingID,
		TicketID:      d.TicketID,
		Email:         d.Email,
		Price:         d.Price,
		TransactionID: d.TransactionID,
		Date:          d.Date,
	}
}
