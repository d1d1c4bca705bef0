package store

import (
	"sort"
	"strings"

	"ticketbari/models"
)

// Matches applies the filter to a single ticket in memory.
func (f TicketFilter) Matches(t *models.Ticket) bool {
	if f.VendorEmail != "" && !models.SameEmail(f.VendorEmail, t.VendorEmail) {
		return false
	}
	if f.From != "" && !strings.EqualFold(f.From, t.From) {
		return false
	}
	if f.To != "" && !strings.EqualFold(f.To, t.To) {
		return false
	}
	if f.TransportType != "" && !strings.EqualFold(f.TransportType, t.TransportType) {
		return false
	}
	if f.Status != "" && f.Status != t.VerificationStatus {
		return false
	}
	if f.AdvertisedOnly && !t.IsAdvertised {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(f.Search)) {
		return false
	}
	return true
}

// SortTickets orders tickets in place and applies the filter window.
func SortTickets(tickets []models.Ticket, f TicketFilter) []models.Ticket {
	sort.SliceStable(tickets, func(i, j int) bool {
		a, b := tickets[i], tickets[j]
		switch f.Sort {
		case SortPriceAsc:
			return a.Price < b.Price
		case SortPriceDesc:
			return a.Price > b.Price
		case SortDeparture:
			return a.DepartureDate < b.DepartureDate
		default:
			return a.CreatedAt.After(b.CreatedAt)
		}
	})

	if f.Offset > 0 {
		if f.Offset >= len(tickets) {
			return []models.Ticket{}
		}
		tickets = tickets[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(tickets) {
		tickets = tickets[:f.Limit]
	}
	return tickets
}

// Matches applies the filter to a single booking in memory.
func (f BookingFilter) Matches(b *models.Booking) bool {
	if f.TicketID != "" && f.TicketID != b.TicketID {
		return false
	}
	if f.CustomerEmail != "" && !models.SameEmail(f.CustomerEmail, b.CustomerEmail) {
		return false
	}
	if f.VendorEmail != "" && !models.SameEmail(f.VendorEmail, b.VendorEmail) {
		return false
	}
	if f.HoldingOnly && !b.Status.Holds() {
		return false
	}
	return true
}
