package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"ticketbari/internal/auth"
	"ticketbari/internal/logging"
	"ticketbari/internal/services/payment"
	"ticketbari/internal/status"
	"ticketbari/internal/store"
	"ticketbari/models"
)

type PaymentService struct {
	store    store.Store
	ledger   *Ledger
	gateway  payment.Gateway
	notifier Notifier
	currency string
}

func NewPaymentService(st store.Store, ledger *Ledger, gateway payment.Gateway, notifier Notifier, currency string) *PaymentService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if currency == "" {
		currency = "usd"
	}
	return &PaymentService{
		store:    st,
		ledger:   ledger,
		gateway:  gateway,
		notifier: notifier,
		currency: currency,
	}
}

type IntentRequest struct {
	Price     float64 `json:"price"`
	BookingID string  `json:"bookingId"`
}

// CreateIntent prepares a card payment. For a known booking the booking's
// total is charged regardless of the requested price.
func (s *PaymentService) CreateIntent(ctx context.Context, caller *auth.Caller, req IntentRequest) (*models.PaymentIntent, error) {
	amount := decimal.NewFromFloat(req.Price)
	metadata := map[string]string{"email": caller.Email}

	if req.BookingID != "" {
		booking, err := s.ownBooking(ctx, caller, req.BookingID)
		if err != nil {
			return nil, err
		}
		switch booking.Status {
		case models.BookingPaid:
			return nil, status.ErrAlreadyApplied
		case models.BookingApproved:
		default:
			return nil, fmt.Errorf("%w: booking is %s", status.ErrInvalidState, booking.Status)
		}
		amount = decimal.NewFromFloat(booking.TotalPrice)
		metadata["bookingId"] = booking.ID
	}

	if !amount.IsPositive() {
		return nil, status.Invalid("price must be greater than zero")
	}

	intent, err := s.gateway.CreateIntent(ctx, amount, s.currency, metadata)
	if err != nil {
		logging.FromContext(ctx).WithError(err).Error("create payment intent failed")
		return nil, err
	}
	return intent, nil
}

type RecordRequest struct {
	BookingID     string  `json:"bookingId"`
	TransactionID string  `json:"transactionId"`
	Email         string  `json:"email"`
	Price         float64 `json:"price"`
}

// Record applies a finished payment to its booking. The transaction id must
// name a succeeded intent created for this booking and covering its total;
// only the mock gateway accepts payments without one.
func (s *PaymentService) Record(ctx context.Context, caller *auth.Caller, req RecordRequest) (*models.Payment, error) {
	if req.BookingID == "" {
		return nil, status.Invalid("bookingId is required")
	}
	if req.Email != "" && !caller.Owns(req.Email) {
		return nil, fmt.Errorf("%w: payment email does not match token", status.ErrForbidden)
	}

	booking, err := s.ownBooking(ctx, caller, req.BookingID)
	if err != nil {
		return nil, err
	}

	switch {
	case req.TransactionID != "":
		if err := s.verifyIntent(ctx, req.TransactionID, booking); err != nil {
			return nil, err
		}
	case s.gateway.Provider() != payment.ProviderMock:
		return nil, status.Invalid("transactionId is required")
	}

	p, err := s.ledger.ConfirmPayment(ctx, caller, booking.ID, req.TransactionID)
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, Event{
		Type:      EventPaymentSucceeded,
		BookingID: booking.ID,
		TicketID:  booking.TicketID,
		Status:    models.BookingPaid,
	}, booking.CustomerEmail, booking.VendorEmail)
	return p, nil
}

func (s *PaymentService) verifyIntent(ctx context.Context, id string, booking *models.Booking) error {
	intent, err := s.gateway.GetIntent(ctx, id)
	if err != nil {
		return err
	}
	if intent.Metadata["bookingId"] != booking.ID {
		return status.Invalid("payment intent %s was not created for booking %s", id, booking.ID)
	}
	if intent.Status != payment.IntentSucceeded {
		return fmt.Errorf("%w: intent %s is %s", status.ErrPaymentPending, id, intent.Status)
	}

	paid := decimal.NewFromFloat(intent.Amount).Round(2)
	due := decimal.NewFromFloat(booking.TotalPrice).Round(2)
	if paid.LessThan(due) {
		return status.Invalid("payment of %s does not cover booking total %s", paid, due)
	}
	return nil
}

func (s *PaymentService) History(ctx context.Context, email string) ([]models.Payment, error) {
	return s.store.Payments().ListByEmail(ctx, email)
}

func (s *PaymentService) ownBooking(ctx context.Context, caller *auth.Caller, id string) (*models.Booking, error) {
	booking, err := s.store.Bookings().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.Owns(booking.CustomerEmail) {
		return nil, fmt.Errorf("%w: booking belongs to another customer", status.ErrForbidden)
	}
	return booking, nil
}
