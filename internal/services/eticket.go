package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"

	"ticketbari/internal/auth"
	"ticketbari/internal/status"
	"ticketbari/internal/store"
	"ticketbari/models"
)

// ETicketService renders printable tickets for paid bookings.
type ETicketService struct {
	store store.Store
}

func NewETicketService(st store.Store) *ETicketService {
	return &ETicketService{store: st}
}

// TicketCode is the payload of the boarding QR code.
func TicketCode(bookingID, transactionID string) string {
	return fmt.Sprintf("ticketbari:%s:%s", bookingID, transactionID)
}

func (s *ETicketService) Render(ctx context.Context, caller *auth.Caller, bookingID string) ([]byte, error) {
	booking, err := s.store.Bookings().FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !caller.Owns(booking.CustomerEmail) {
		return nil, fmt.Errorf("%w: booking belongs to another customer", status.ErrForbidden)
	}
	if booking.Status != models.BookingPaid {
		return nil, fmt.Errorf("%w: booking is %s", status.ErrInvalidState, booking.Status)
	}

	p, err := s.store.Payments().FindByBookingID(ctx, booking.ID)
	if err != nil {
		return nil, err
	}

	// the listing may have been deleted since
	ticket, err := s.store.Tickets().FindByID(ctx, booking.TicketID)
	if err != nil && !errors.Is(err, status.ErrNotFound) {
		return nil, err
	}

	return renderETicket(booking, ticket, p)
}

func renderETicket(b *models.Booking, t *models.Ticket, p *models.Payment) ([]byte, error) {
	png, err := qrcode.Encode(TicketCode(b.ID, p.TransactionID), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A5", "")
	pdf.SetTitle("TicketBari e-ticket "+b.ID, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "TicketBari", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, b.TicketTitle, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	rows := [][2]string{{"Booking", b.ID}}
	if t != nil {
		rows = append(rows, [2]string{"Route", t.From + " - " + t.To}, [2]string{"Transport", t.TransportType})
	}
	rows = append(rows,
		[2]string{"Passenger", passengerName(b)},
		[2]string{"Seats", strings.Join(b.SeatNumbers, ", ")},
		[2]string{"Quantity", fmt.Sprintf("%d", b.BookingQty)},
		[2]string{"Departure", b.DepartureDate},
		[2]string{"Paid", fmt.Sprintf("%.2f", p.Price)},
		[2]string{"Transaction", p.TransactionID},
	)

	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(35, 7, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 7, row[1], "", 1, "L", false, 0, "")
	}

	pdf.RegisterImageOptionsReader("qr", gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))
	pdf.ImageOptions("qr", 49, pdf.GetY()+6, 50, 50, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render e-ticket: %w", err)
	}
	return buf.Bytes(), nil
}

func passengerName(b *models.Booking) string {
	if b.CustomerName != "" {
		return b.CustomerName
	}
	return b.CustomerEmail
}
