// Package services holds the booking, ticket, account, payment and report
// logic of the marketplace.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"ticketbari/internal/auth"
	"ticketbari/internal/logging"
	"ticketbari/internal/status"
	"ticketbari/internal/store"
	"ticketbari/models"
	"ticketbari/monitoring"
)

const DefaultAdvertiseLimit = 6

// Ledger guards ticket inventory: seat occupancy, the remaining quantity and
// the advertise cap.
type Ledger struct {
	store          store.Store
	locker         Locker
	advertiseLimit int
}

func NewLedger(st store.Store, locker Locker, advertiseLimit int) *Ledger {
	if locker == nil {
		locker = NopLocker{}
	}
	if advertiseLimit <= 0 {
		advertiseLimit = DefaultAdvertiseLimit
	}
	return &Ledger{store: st, locker: locker, advertiseLimit: advertiseLimit}
}

func (l *Ledger) AdvertiseLimit() int {
	return l.advertiseLimit
}

type ReserveRequest struct {
	TicketID     string
	SeatNumbers  []string
	BookingQty   int
	CustomerName string
}

func (r *ReserveRequest) normalize() error {
	if strings.TrimSpace(r.TicketID) == "" {
		return status.Invalid("ticketId is required")
	}
	if len(r.SeatNumbers) == 0 {
		return status.Invalid("at least one seat must be selected")
	}

	seen := make(map[string]bool, len(r.SeatNumbers))
	seats := make([]string, 0, len(r.SeatNumbers))
	for _, seat := range r.SeatNumbers {
		seat = strings.TrimSpace(seat)
		if seat == "" {
			return status.Invalid("seat numbers must not be empty")
		}
		if seen[seat] {
			return status.Invalid("seat %s selected twice", seat)
		}
		seen[seat] = true
		seats = append(seats, seat)
	}
	r.SeatNumbers = seats

	switch {
	case r.BookingQty == 0:
		r.BookingQty = len(seats)
	case r.BookingQty != len(seats):
		return status.Invalid("bookingQty %d does not match %d selected seats", r.BookingQty, len(seats))
	}
	return nil
}

// ReserveSeats creates a pending booking for the customer if none of the
// requested seats is held and enough quantity is left. Quantity itself is
// only decremented once the booking is paid.
func (l *Ledger) ReserveSeats(ctx context.Context, customer *auth.Caller, req ReserveRequest) (*models.Booking, error) {
	if customer == nil {
		return nil, status.ErrUnauthenticated
	}
	if err := req.normalize(); err != nil {
		return nil, err
	}

	release, err := l.locker.Acquire(ctx, store.TicketLockKey(req.TicketID))
	if err != nil {
		return nil, err
	}
	defer release()

	var booking *models.Booking
	err = l.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := tx.Lock(ctx, store.TicketLockKey(req.TicketID)); err != nil {
			return err
		}

		ticket, err := tx.Tickets().FindByID(ctx, req.TicketID)
		if err != nil {
			return err
		}
		if ticket.VerificationStatus == models.TicketRejected {
			return status.ErrTicketRejected
		}

		holding, err := tx.Bookings().List(ctx, store.BookingFilter{TicketID: ticket.ID, HoldingOnly: true})
		if err != nil {
			return err
		}

		taken := make(map[string]bool)
		held := 0
		for _, b := range holding {
			for _, seat := range b.SeatNumbers {
				taken[seat] = true
			}
			// paid bookings are already subtracted from quantity
			if b.Status != models.BookingPaid {
				held += b.BookingQty
			}
		}

		var conflicts []string
		for _, seat := range req.SeatNumbers {
			if taken[seat] {
				conflicts = append(conflicts, seat)
			}
		}
		if len(conflicts) > 0 {
			return &status.SeatConflictError{TicketID: ticket.ID, Seats: conflicts}
		}

		available := max(ticket.Quantity-held, 0)
		if req.BookingQty > available {
			return &status.InsufficientQuantityError{TicketID: ticket.ID, Requested: req.BookingQty, Available: available}
		}

		total := decimal.NewFromFloat(ticket.Price).Mul(decimal.NewFromInt(int64(req.BookingQty)))
		booking = &models.Booking{
			TicketID:      ticket.ID,
			TicketTitle:   ticket.Title,
			CustomerEmail: customer.Email,
			CustomerName:  req.CustomerName,
			VendorEmail:   ticket.VendorEmail,
			SeatNumbers:   models.SeatNumbers(req.SeatNumbers),
			BookingQty:    req.BookingQty,
			UnitPrice:     ticket.Price,
			TotalPrice:    total.InexactFloat64(),
			DepartureDate: ticket.DepartureDate,
			Status:        models.BookingPending,
		}
		return tx.Bookings().Insert(ctx, booking)
	})
	monitoring.TrackOperation("reserve", outcome(err))
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).WithField("booking", booking.ID).Info("seats reserved")
	return booking, nil
}

// ConfirmPayment applies a successful payment to an approved booking. The
// quantity decrement, the status change and the payment record commit
// together; a second confirmation returns status.ErrAlreadyApplied.
func (l *Ledger) ConfirmPayment(ctx context.Context, payer *auth.Caller, bookingID, transactionID string) (*models.Payment, error) {
	if payer == nil {
		return nil, status.ErrUnauthenticated
	}

	var payment *models.Payment
	err := l.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := tx.Lock(ctx, store.BookingLockKey(bookingID)); err != nil {
			return err
		}

		booking, err := tx.Bookings().FindByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if !payer.Owns(booking.CustomerEmail) {
			return fmt.Errorf("%w: booking belongs to another customer", status.ErrForbidden)
		}
		if booking.Status == models.BookingPaid {
			return status.ErrAlreadyApplied
		}

		_, err = tx.Payments().FindByBookingID(ctx, booking.ID)
		switch {
		case err == nil:
			return status.ErrAlreadyApplied
		case !errors.Is(err, status.ErrNotFound):
			return err
		}

		if booking.Status != models.BookingApproved {
			return fmt.Errorf("%w: booking is %s", status.ErrInvalidState, booking.Status)
		}

		if err := tx.Lock(ctx, store.TicketLockKey(booking.TicketID)); err != nil {
			return err
		}
		if err := tx.Tickets().DecrementQuantity(ctx, booking.TicketID, booking.BookingQty); err != nil {
			return err
		}

		moved, err := tx.Bookings().TransitionStatus(ctx, booking.ID, models.BookingApproved, models.BookingPaid)
		if err != nil {
			return err
		}
		if !moved {
			return status.ErrAlreadyApplied
		}

		payment = &models.Payment{
			BookingID:     booking.ID,
			TicketID:      booking.TicketID,
			Email:         booking.CustomerEmail,
			Price:         booking.TotalPrice,
			TransactionID: transactionID,
		}
		if err := tx.Payments().Insert(ctx, payment); err != nil {
			if errors.Is(err, status.ErrDuplicate) {
				return status.ErrAlreadyApplied
			}
			return err
		}
		return nil
	})
	monitoring.TrackOperation("confirm_payment", outcome(err))
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).WithField("booking", bookingID).Info("payment applied")
	return payment, nil
}

// ToggleAdvertise flags or unflags a ticket for the home page. Turning it on
// re-counts the advertised tickets under the advertise lock.
func (l *Ledger) ToggleAdvertise(ctx context.Context, ticketID string, on bool) (*models.Ticket, error) {
	var ticket *models.Ticket
	err := l.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := tx.Lock(ctx, store.AdvertiseLockKey); err != nil {
			return err
		}

		var err error
		ticket, err = tx.Tickets().FindByID(ctx, ticketID)
		if err != nil {
			return err
		}
		if ticket.IsAdvertised == on {
			return nil
		}

		if on {
			if ticket.VerificationStatus == models.TicketRejected {
				return status.ErrTicketRejected
			}
			count, err := tx.Tickets().CountAdvertised(ctx)
			if err != nil {
				return err
			}
			if count >= l.advertiseLimit {
				return status.ErrLimitReached
			}
		}

		if err := tx.Tickets().SetAdvertised(ctx, ticketID, on); err != nil {
			return err
		}
		ticket.IsAdvertised = on
		return nil
	})
	monitoring.TrackOperation("advertise", outcome(err))
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// TakenSeats lists the seats held by non-rejected bookings of a ticket.
func (l *Ledger) TakenSeats(ctx context.Context, ticketID string) ([]string, error) {
	if _, err := l.store.Tickets().FindByID(ctx, ticketID); err != nil {
		return nil, err
	}

	bookings, err := l.store.Bookings().List(ctx, store.BookingFilter{TicketID: ticketID, HoldingOnly: true})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	seats := []string{}
	for _, b := range bookings {
		for _, seat := range b.SeatNumbers {
			if !seen[seat] {
				seen[seat] = true
				seats = append(seats, seat)
			}
		}
	}
	return seats, nil
}

// outcome is the metrics label of an operation result.
func outcome(err error) string {
	var (
		conflict     *status.SeatConflictError
		insufficient *status.InsufficientQuantityError
	)

	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &conflict):
		return "seat_conflict"
	case errors.As(err, &insufficient):
		return "insufficient_quantity"
	case errors.Is(err, status.ErrAlreadyApplied):
		return "already_applied"
	case errors.Is(err, status.ErrLimitReached):
		return "limit_reached"
	case errors.Is(err, status.ErrInvalidState), errors.Is(err, status.ErrTicketRejected):
		return "invalid_state"
	case errors.Is(err, status.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
