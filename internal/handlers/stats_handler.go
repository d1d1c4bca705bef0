package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"ticketbari/internal/services"
)

type StatsHandler struct {
	reports *services.ReportService
	auth    *Authenticator
}

func NewStatsHandler(reports *services.ReportService, auth *Authenticator) *StatsHandler {
	return &StatsHandler{reports: reports, auth: auth}
}

func (h *StatsHandler) Vendor(e *core.RequestEvent) error {
	email := e.Request.PathValue("email")
	if err := h.auth.Self(e, email, true); err != nil {
		return err
	}

	stats, err := h.reports.VendorStats(e.Request.Context(), email)
	if err != nil {
		return err
	}
	return e.JSON(http.StatusOK, stats)
}

func (h *StatsHandler) Admin(e *core.RequestEvent) error {
	stats, err := h.reports.AdminStats(e.Request.Context())
	if err != nil {
		return err
	}
	return e.JSON(http.StatusOK, stats)
}

func (h *StatsHandler) User(e *core.RequestEvent) error {
	email := e.Request.PathValue("email")
	if err := h.auth.Self(e, email, false); err != nil {
		return err
	}

	stats, err := h.reports.UserStats(e.Request.Context(), email)
	if err != nil {
		return err
	}
	return e.JSON(http.StatusOK, stats)
}
