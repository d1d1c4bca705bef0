package status

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrUnauthenticated = errors.New("auth: missing or invalid credential")
	ErrForbidden       = errors.New("auth: forbidden access")
	ErrDemoReadOnly    = errors.New("auth: demo admin is read only")

	ErrNotFound        = errors.New("store: not found")
	ErrUserNotFound    = fmt.Errorf("user: %w", ErrNotFound)
	ErrTicketNotFound  = fmt.Errorf("ticket: %w", ErrNotFound)
	ErrBookingNotFound = fmt.Errorf("booking: %w", ErrNotFound)
	ErrDuplicate       = errors.New("store: duplicate key")

	ErrInvalidState   = errors.New("booking: vendor already acted or payment completed")
	ErrTicketRejected = errors.New("ticket: ticket is rejected")
	ErrAlreadyApplied = errors.New("payment: payment already applied")
	ErrLimitReached   = errors.New("ticket: advertise limit reached")
	ErrRateLimited    = errors.New("rate limit: too many requests")
	ErrBusy           = errors.New("lock: resource is busy, try again")

	ErrUpstream       = errors.New("payment: gateway failure")
	ErrPaymentPending = errors.New("payment: intent has not succeeded")
	ErrIntentUsed     = errors.New("payment: transaction already recorded for another booking")
)

// SeatConflictError is returned when requested seats are already held by
// another non-rejected booking on the same ticket.
type SeatConflictError struct {
	TicketID string
	Seats    []string
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("booking: seats %s already taken on ticket %s", strings.Join(e.Seats, ", "), e.TicketID)
}

type InsufficientQuantityError struct {
	TicketID  string
	Requested int
	Available int
}

func (e *InsufficientQuantityError) Error() string {
	return fmt.Sprintf("booking: requested %d seats but only %d available on ticket %s", e.Requested, e.Available, e.TicketID)
}

// ValidationError wraps a field level validation failure.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func Invalid(format string, args ...any) error {
	return &ValidationError{Err: fmt.Errorf(format, args...)}
}

func Validation(err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Err: err}
}

// Upstream marks err as a failure of an external collaborator.
func Upstream(err error) error {
	return fmt.Errorf("%w: %w", ErrUpstream, err)
}

// HTTPCode maps an error to the response status it is reported with.
func HTTPCode(err error) int {
	var (
		conflict     *SeatConflictError
		insufficient *InsufficientQuantityError
		validation   *ValidationError
	)

	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrDemoReadOnly),
		errors.Is(err, ErrInvalidState), errors.Is(err, ErrTicketRejected):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &conflict), errors.As(err, &insufficient),
		errors.Is(err, ErrAlreadyApplied), errors.Is(err, ErrDuplicate), errors.Is(err, ErrLimitReached),
		errors.Is(err, ErrBusy), errors.Is(err, ErrIntentUsed):
		return http.StatusConflict
	case errors.As(err, &validation), errors.Is(err, ErrPaymentPending):
		return http.StatusBadRequest
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
