package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"ticketbari/internal/auth"
	"ticketbari/internal/logging"
	"ticketbari/internal/status"
	"ticketbari/internal/store"
	"ticketbari/models"
	"ticketbari/monitoring"
)

// BookingService moves bookings through pending, approved, rejected and paid.
type BookingService struct {
	store    store.Store
	ledger   *Ledger
	notifier Notifier
}

func NewBookingService(st store.Store, ledger *Ledger, notifier Notifier) *BookingService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &BookingService{store: st, ledger: ledger, notifier: notifier}
}

// Book reserves seats for the customer and tells the vendor about it.
func (s *BookingService) Book(ctx context.Context, customer *auth.Caller, req ReserveRequest) (*models.Booking, error) {
	booking, err := s.ledger.ReserveSeats(ctx, customer, req)
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, Event{
		Type:      EventBookingCreated,
		BookingID: booking.ID,
		TicketID:  booking.TicketID,
		Status:    booking.Status,
	}, booking.VendorEmail, booking.CustomerEmail)
	return booking, nil
}

// Decide approves or rejects a pending booking on behalf of its vendor.
// Rejected bookings stop holding their seats.
func (s *BookingService) Decide(ctx context.Context, vendor *auth.Caller, bookingID string, decision models.BookingStatus) (*models.Booking, error) {
	if decision != models.BookingApproved && decision != models.BookingRejected {
		return nil, status.Invalid("status must be approved or rejected, got %q", decision)
	}

	booking, err := s.store.Bookings().FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !vendor.Owns(booking.VendorEmail) {
		return nil, fmt.Errorf("%w: booking belongs to another vendor", status.ErrForbidden)
	}

	moved, err := s.store.Bookings().TransitionStatus(ctx, bookingID, models.BookingPending, decision)
	if err != nil {
		return nil, err
	}
	if !moved {
		monitoring.TrackOperation("decide", "invalid_state")
		return nil, status.ErrInvalidState
	}
	monitoring.TrackOperation("decide", string(decision))

	booking.Status = decision
	logging.FromContext(ctx).WithFields(logrus.Fields{
		"booking": booking.ID,
		"status":  decision,
	}).Info("booking decided")

	s.notifier.Notify(ctx, Event{
		Type:      EventBookingDecided,
		BookingID: booking.ID,
		TicketID:  booking.TicketID,
		Status:    decision,
	}, booking.CustomerEmail)
	return booking, nil
}

// Cancel deletes the customer's booking while the vendor has not acted on it.
func (s *BookingService) Cancel(ctx context.Context, customer *auth.Caller, bookingID string) error {
	booking, err := s.store.Bookings().FindByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if !customer.Owns(booking.CustomerEmail) {
		return fmt.Errorf("%w: booking belongs to another customer", status.ErrForbidden)
	}
	if booking.Status != models.BookingPending {
		monitoring.TrackOperation("cancel", "invalid_state")
		return status.ErrInvalidState
	}

	deleted, err := s.store.Bookings().DeleteIfStatus(ctx, bookingID, models.BookingPending)
	if err != nil {
		return err
	}
	if !deleted {
		monitoring.TrackOperation("cancel", "invalid_state")
		return status.ErrInvalidState
	}
	monitoring.TrackOperation("cancel", "ok")

	s.notifier.Notify(ctx, Event{
		Type:      EventBookingCancelled,
		BookingID: booking.ID,
		TicketID:  booking.TicketID,
	}, booking.VendorEmail)
	return nil
}

func (s *BookingService) Get(ctx context.Context, id string) (*models.Booking, error) {
	return s.store.Bookings().FindByID(ctx, id)
}

func (s *BookingService) ForCustomer(ctx context.Context, email string) ([]models.Booking, error) {
	if email == "" {
		return []models.Booking{}, nil
	}
	return s.store.Bookings().List(ctx, store.BookingFilter{CustomerEmail: email})
}

func (s *BookingService) ForVendor(ctx context.Context, email string) ([]models.Booking, error) {
	if email == "" {
		return []models.Booking{}, nil
	}
	return s.store.Bookings().List(ctx, store.BookingFilter{VendorEmail: email})
}
