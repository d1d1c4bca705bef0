package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"ticketbari/internal/services"
	"ticketbari/internal/status"
	"ticketbari/models"
)

type UserHandler struct {
	users *services.UserService
	auth  *Authenticator
}

func NewUserHandler(users *services.UserService, auth *Authenticator) *UserHandler {
	return &UserHandler{users: users, auth: auth}
}

// SignIn stores the caller's account on first login.
func (h *UserHandler) SignIn(e *core.RequestEvent) error {
	var req struct {
		Email string `json:"email"`
		Name  string `json:"name"`
		Photo string `json:"photo"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	caller := callerFrom(e)
	if req.Email != "" && !caller.Owns(req.Email) {
		return fmt.Errorf("%w: user email does not match token", status.ErrForbidden)
	}

	res, err := h.users.SignIn(e.Request.Context(), caller, services.Profile{Name: req.Name, Photo: req.Photo})
	if err != nil {
		return err
	}
	return e.JSON(http.StatusOK, res)
}

func (h *UserHandler) List(e *core.RequestEvent) error {
	users, err := h.users.List(e.Request.Context())
	if err != nil {
		return err
	}
	return e.JSON(http.StatusOK, users)
}

func (h *UserHandler) Role(e *core.RequestEvent) error {
	email := e.Request.PathValue("email")
	if err := h.auth.Self(e, email, false); err != nil {
		return err
	}

	role, err := h.users.Role(e.Request.Context(), email)
	if err != nil {
		return err
	}
	return e.JSON(http.StatusOK, map[string]models.Role{"role": role})
}

// SetRole promotes an account to admin unless the body names another role.
// The body is optional, including chunked requests of unknown length.
func (h *UserHandler) SetRole(e *core.RequestEvent) error {
	req := struct {
		Role models.Role `json:"role"`
	}{Role: models.RoleAdmin}
	if err := e.BindBody(&req); err != nil && !errors.Is(err, io.EOF) {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.Role == "" {
		req.Role = models.RoleAdmin
	}

	modified, err := h.users.SetRole(e.Request.Context(), e.Request.PathValue("id"), req.Role)
	if err != nil {
		return err
	}
	return e.JSON(http.StatusOK, updated(modified))
}

func (h *UserHandler) MarkFraud(e *core.RequestEvent) error {
	res, err := h.users.MarkFraud(e.Request.Context(), e.Request.PathValue("id"))
	if err != nil {
		return err
	}
	return e.JSON(http.StatusOK, res)
}
