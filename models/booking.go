package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

type BookingStatus string

const (
	BookingPending  BookingStatus = "pending"
	BookingApproved BookingStatus = "approved"
	BookingRejected BookingStatus = "rejected"
	BookingPaid     BookingStatus = "paid"
)

var BookingStatuses = []BookingStatus{BookingPending, BookingApproved, BookingRejected, BookingPaid}

// Holds reports whether a booking in this status occupies its seats.
func (s BookingStatus) Holds() bool {
	return s == BookingPending || s == BookingApproved || s == BookingPaid
}

// Terminal statuses have no outgoing transition.
func (s BookingStatus) Terminal() bool {
	return s == BookingPaid || s == BookingRejected
}

// SeatNumbers decodes seat identifiers sent either as numbers or strings.
type SeatNumbers []string

func (s *SeatNumbers) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*s = nil
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("seat numbers: %w", err)
	}

	seats := make(SeatNumbers, 0, len(raw))
	for _, item := range raw {
		var str string
		if err := json.Unmarshal(item, &str); err == nil {
			seats = append(seats, str)
			continue
		}
		var num json.Number
		if err := json.Unmarshal(item, &num); err != nil {
			return fmt.Errorf("seat numbers: invalid seat %s", string(item))
		}
		if _, err := strconv.ParseFloat(num.String(), 64); err != nil {
			return fmt.Errorf("seat numbers: invalid seat %s", string(item))
		}
		seats = append(seats, num.String())
	}
	*s = seats
	return nil
}

type Booking struct {
	ID            string        `json:"_id"`
	TicketID      string        `json:"ticketId"`
	TicketTitle   string        `json:"ticketTitle"`
	CustomerEmail string        `json:"customerEmail"`
	CustomerName  string        `json:"customerName,omitempty"`
	VendorEmail   string        `json:"vendorEmail"`
	SeatNumbers   SeatNumbers   `json:"seatNumbers"`
	BookingQty    int           `json:"bookingQty"`
	UnitPrice     float64       `json:"unitPrice"`
	TotalPrice    float64       `json:"totalPrice"`
	DepartureDate string        `json:"departureDate,omitempty"`
	Status        BookingStatus `json:"status"`
	CreatedAt     time.Time     `json:"createdAt"`
}
