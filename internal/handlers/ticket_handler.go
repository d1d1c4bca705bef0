package handlers

import (
	"errors"
	"net/http"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/spf13/cast"

	"ticketbari/internal/services"
	"ticketbari/internal/status"
	"ticketbari/models"
)

type TicketHandler struct {
	tickets *services.TicketService
	ledger  *services.Ledger
	auth    *Authenticator
}

func NewTicketHandler(tickets *services.TicketService, ledger *services.Ledger, auth *Authenticator) *TicketHandler {
	return &TicketHandler{tickets: tickets, ledger: ledger, auth: auth}
}

// List serves the public catalogue with optional filters, e.g.
// /tickets?from=Dhaka&sort=price_asc&page=2&limit=9
func (h *TicketHandler) List(e *core.RequestEvent) error {
	q := e.Request.URL.Query()
	tickets, err := h.tickets.List(e.Request.Context(), services.TicketQuery{
		From:          q.Get("from"),
		To:            q.Get("to"),
		TransportType: q.Get("transportType"),
		Search:        q.Get("search"),
		Status:        q.Get("status"),
		Sort:          q.Get("sort"),
		Page:          cast.ToInt(q.Get("page")),
		Limit:         cast.ToInt(q.Get("limit")),
	})
	if err != nil {
		return err
	}
	return e.JSON(http.StatusOK, tickets)
}

func (h *TicketHandler) Get(e *core.RequestEvent) error {
	ticket, err := h.tickets.Get(e.Request.Context(), e.Request.PathValue("id"))
	if err != nil {
		return err
	}
	return e.JSON(http.StatusOK, ticket)
}

func (h *TicketHandler) Advertised(e *core.RequestEvent) error {
	tickets, err := h.tickets.Advertised(e.Request.Context())
	if err != nil {
		return err
	}
	return e.JSON(http.StatusOK, tickets)
}

func (h *TicketHandler) TakenSeats(e *core.RequestEvent) error {
	seats, err := h.ledger.TakenSeats(e.Request.Context(), e.Request.PathValue("id"))
	if err != nil {
		return err
	}
	return e.JSON(http.StatusOK, seats)
}

func (h *TicketHandler) ForVendor(e *core.RequestEvent) error {
	email := e.Request.PathValue("email")
	if err := h.auth.Self(e, email, true); err != nil {
		return err
	}

	tickets, err := h.tickets.ForVendor(e.Request.Context(), email)
	if err != nil {
		return err
	}
	return e.JSON(http.StatusOK, tickets)
}

func (h *TicketHandler) Create(e *core.RequestEvent) error {
	var in services.TicketInput
	if err := e.BindBody(&in); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	ticket, err := h.tickets.Create(e.Request.Context(), callerFrom(e), in)
	if err != nil {
		return err
	}
	return e.JSON(http.StatusOK, inserted(ticket.ID))
}

func (h *TicketHandler) Update(e *core.RequestEvent) error {
	var patch models.TicketPatch
	if err := e.BindBody(&patch); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	if _, err := h.tickets.Update(e.Request.Context(), callerFrom(e), e.Request.PathValue("id"), patch); err != nil {
		return err
	}
	return e.JSON(http.StatusOK, updated(1))
}

func (h *TicketHandler) SetStatus(e *core.RequestEvent) error {
	var req struct {
		Status models.VerificationStatus `json:"status"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	if _, err := h.tickets.SetStatus(e.Request.Context(), e.Request.PathValue("id"), req.Status); err != nil {
		return err
	}
	return e.JSON(http.StatusOK, updated(1))
}

// SetAdvertised answers a full home page with 200 {message: "limit_reached"},
// which is what the admin dashboard checks for.
func (h *TicketHandler) SetAdvertised(e *core.RequestEvent) error {
	var req struct {
		IsAdvertised bool `json:"isAdvertised"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	_, err := h.tickets.SetAdvertised(e.Request.Context(), e.Request.PathValue("id"), req.IsAdvertised)
	if errors.Is(err, status.ErrLimitReached) {
		return e.JSON(http.StatusOK, MessageResult{Message: "limit_reached", Limit: h.ledger.AdvertiseLimit()})
	}
	if err != nil {
		return err
	}
	return e.JSON(http.StatusOK, updated(1))
}

func (h *TicketHandler) Delete(e *core.RequestEvent) error {
	if err := h.tickets.Delete(e.Request.Context(), callerFrom(e), e.Request.PathValue("id")); err != nil {
		return err
	}
	return e.JSON(http.StatusOK, deleted(1))
}
