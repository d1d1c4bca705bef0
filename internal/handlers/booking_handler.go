package handlers

import (
	"fmt"
	"net/http"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"ticketbari/internal/services"
	"ticketbari/models"
)

type BookingHandler struct {
	bookings *services.BookingService
	etickets *services.ETicketService
	auth     *Authenticator
}

func NewBookingHandler(bookings *services.BookingService, etickets *services.ETicketService, auth *Authenticator) *BookingHandler {
	return &BookingHandler{bookings: bookings, etickets: etickets, auth: auth}
}

// Create reserves seats. Title, prices and vendor are taken from the ticket,
// never from the body.
func (h *BookingHandler) Create(e *core.RequestEvent) error {
	var req struct {
		TicketID     string             `json:"ticketId"`
		SeatNumbers  models.SeatNumbers `json:"seatNumbers"`
		BookingQty   int                `json:"bookingQty"`
		CustomerName string             `json:"customerName"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	booking, err := h.bookings.Book(e.Request.Context(), callerFrom(e), services.ReserveRequest{
		TicketID:     req.TicketID,
		SeatNumbers:  req.SeatNumbers,
		BookingQty:   req.BookingQty,
		CustomerName: req.CustomerName,
	})
	if err != nil {
		return err
	}
	return e.JSON(http.StatusOK, inserted(booking.ID))
}

// ForCustomer lists /bookings?email=. Without an email the list is empty.
func (h *BookingHandler) ForCustomer(e *core.RequestEvent) error {
	email := e.Request.URL.Query().Get("email")
	if email == "" {
		return e.JSON(http.StatusOK, []models.Booking{})
	}
	if err := h.auth.Self(e, email, true); err != nil {
		return err
	}

	bookings, err := h.bookings.ForCustomer(e.Request.Context(), email)
	if err != nil {
		return err
	}
	return e.JSON(http.StatusOK, bookings)
}

func (h *BookingHandler) ForVendor(e *core.RequestEvent) error {
	email := e.Request.URL.Query().Get("email")
	if email == "" {
		return e.JSON(http.StatusOK, []models.Booking{})
	}
	if err := h.auth.Self(e, email, true); err != nil {
		return err
	}

	bookings, err := h.bookings.ForVendor(e.Request.Context(), email)
	if err != nil {
		return err
	}
	return e.JSON(http.StatusOK, bookings)
}

func (h *BookingHandler) Decide(e *core.RequestEvent) error {
	var req struct {
		Status models.BookingStatus `json:"status"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	if _, err := h.bookings.Decide(e.Request.Context(), callerFrom(e), e.Request.PathValue("id"), req.Status); err != nil {
		return err
	}
	return e.JSON(http.StatusOK, updated(1))
}

func (h *BookingHandler) Cancel(e *core.RequestEvent) error {
	if err := h.bookings.Cancel(e.Request.Context(), callerFrom(e), e.Request.PathValue("id")); err != nil {
		return err
	}
	return e.JSON(http.StatusOK, deleted(1))
}

func (h *BookingHandler) ETicket(e *core.RequestEvent) error {
	id := e.Request.PathValue("id")
	pdf, err := h.etickets.Render(e.Request.Context(), callerFrom(e), id)
	if err != nil {
		return err
	}

	e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="ticketbari-%s.pdf"`, id))
	return e.Blob(http.StatusOK, "application/pdf", pdf)
}
