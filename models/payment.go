package models

import (
	"time"
)

type Payment struct {
	ID            string    `json:"_id"`
	BookingID     string    `json:"bookingId"`
	TicketID      string    `json:"ticketId,omitempty"`
	Email         string    `json:"email"`
	Price         float64   `json:"price"`
	TransactionID string    `json:"transactionId,omitempty"`
	Date          time.Time `json:"date"`
}

// PaymentIntent is what the client needs to finish a card payment.
type PaymentIntent struct {
	ID           string  `json:"id"`
	ClientSecret string  `json:"clientSecret"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
	Status       string  `json:"status,omitempty"`

	// Metadata echoes what the intent was created with, bookingId included.
	Metadata map[string]string `json:"-"`
}
