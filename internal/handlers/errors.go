package handlers

import (
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/tools/router"

	"ticketbari/internal/status"
)

// toAPIError maps a domain error to the response it is reported with.
// Internal failures are not echoed to the client.
func toAPIError(err error) *router.ApiError {
	var apiErr *router.ApiError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	code := status.HTTPCode(err)
	if code >= http.StatusInternalServerError && !errors.Is(err, status.ErrUpstream) {
		return apis.NewApiError(code, "Something went wrong while processing your request.", nil)
	}

	var (
		conflict     *status.SeatConflictError
		insufficient *status.InsufficientQuantityError
		fieldErrs    validation.Errors
	)
	switch {
	case errors.As(err, &fieldErrs):
		return apis.NewApiError(code, "Failed to validate the request.", fieldErrs)
	case errors.As(err, &conflict):
		apiErr = apis.NewApiError(code, err.Error(), nil)
		apiErr.Data = map[string]any{"ticketId": conflict.TicketID, "seats": conflict.Seats}
		return apiErr
	case errors.As(err, &insufficient):
		apiErr = apis.NewApiError(code, err.Error(), nil)
		apiErr.Data = map[string]any{
			"ticketId":  insufficient.TicketID,
			"requested": insufficient.Requested,
			"available": insufficient.Available,
		}
		return apiErr
	}
	return apis.NewApiError(code, err.Error(), nil)
}
