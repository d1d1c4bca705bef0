package handlers

import (
	"errors"
	"net/http"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"ticketbari/internal/services"
	"ticketbari/internal/status"
)

type PaymentHandler struct {
	payments *services.PaymentService
	auth     *Authenticator
}

func NewPaymentHandler(payments *services.PaymentService, auth *Authenticator) *PaymentHandler {
	return &PaymentHandler{payments: payments, auth: auth}
}

func (h *PaymentHandler) CreateIntent(e *core.RequestEvent) error {
	var req services.IntentRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	intent, err := h.payments.CreateIntent(e.Request.Context(), callerFrom(e), req)
	if err != nil {
		return err
	}
	return e.JSON(http.StatusOK, map[string]any{
		"clientSecret":    intent.ClientSecret,
		"paymentIntentId": intent.ID,
		"amount":          intent.Amount,
		"currency":        intent.Currency,
	})
}

// Record applies a finished payment. Retrying an applied payment answers
// 200 {message: "already_applied"}.
func (h *PaymentHandler) Record(e *core.RequestEvent) error {
	var req services.RecordRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	p, err := h.payments.Record(e.Request.Context(), callerFrom(e), req)
	if errors.Is(err, status.ErrAlreadyApplied) {
		return e.JSON(http.StatusOK, MessageResult{Message: "already_applied"})
	}
	if err != nil {
		return err
	}
	return e.JSON(http.StatusOK, inserted(p.ID))
}

func (h *PaymentHandler) History(e *core.RequestEvent) error {
	email := e.Request.PathValue("email")
	if err := h.auth.Self(e, email, false); err != nil {
		return err
	}

	payments, err := h.payments.History(e.Request.Context(), email)
	if err != nil {
		return err
	}
	return e.JSON(http.StatusOK, payments)
}
