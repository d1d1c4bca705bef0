package models

import (
	"time"
)

type VerificationStatus string

const (
	TicketPending  VerificationStatus = "pending"
	TicketApproved VerificationStatus = "approved"
	TicketRejected VerificationStatus = "rejected"
)

var VerificationStatuses = []VerificationStatus{TicketPending, TicketApproved, TicketRejected}

func (s VerificationStatus) Valid() bool {
	return s == TicketPending || s == TicketApproved || s == TicketRejected
}

type Ticket struct {
	ID                 string             `json:"_id"`
	VendorEmail        string             `json:"vendorEmail"`
	VendorName         string             `json:"vendorName,omitempty"`
	Title              string             `json:"title"`
	From               string             `json:"from"`
	To                 string             `json:"to"`
	TransportType      string             `json:"transportType"`
	Price              float64            `json:"price"`
	Quantity           int                `json:"quantity"`
	DepartureDate      string             `json:"departureDate"`
	Perks              []string           `json:"perks"`
	Photo              string             `json:"photo,omitempty"`
	VerificationStatus VerificationStatus `json:"verificationStatus"`
	IsAdvertised       bool               `json:"isAdvertised"`
	CreatedAt          time.Time          `json:"createdAt"`
}

// TicketPatch carries the vendor editable fields. Nil fields are left untouched.
type TicketPatch struct {
	Title         *string   `json:"title,omitempty"`
	From          *string   `json:"from,omitempty"`
	To            *string   `json:"to,omitempty"`
	TransportType *string   `json:"transportType,omitempty"`
	Price         *float64  `json:"price,omitempty"`
	Quantity      *int      `json:"quantity,omitempty"`
	DepartureDate *string   `json:"departureDate,omitempty"`
	Perks         *[]string `json:"perks,omitempty"`
	Photo         *string   `json:"photo,omitempty"`
}

// Apply copies the set fields of p onto t.
func (p TicketPatch) Apply(t *Ticket) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.From != nil {
		t.From = *p.From
	}
	if p.To != nil {
		t.To = *p.To
	}
	if p.TransportType != nil {
		t.TransportType = *p.TransportType
	}
	if p.Price != nil {
		t.Price = *p.Price
	}
	if p.Quantity != nil {
		t.Quantity = *p.Quantity
	}
	if p.DepartureDate != nil {
		t.DepartureDate = *p.DepartureDate
	}
	if p.Perks != nil {
		t.Perks = *p.Perks
	}
	if p.Photo != nil {
		t.Photo = *p.Photo
	}
}

func (p TicketPatch) Empty() bool {
	return p == TicketPatch{}
}
