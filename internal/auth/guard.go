package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"ticketbari/internal/status"
	"ticketbari/models"
)

type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// Caller is an authenticated identity with its stored role.
type Caller struct {
	Identity
	Role models.Role
}

func (c *Caller) Is(role models.Role) bool {
	return c != nil && c.Role == role
}

func (c *Caller) Owns(email string) bool {
	return c != nil && models.SameEmail(c.Email, email)
}

type Guard struct {
	verifier  Verifier
	users     UserFinder
	demoAdmin string
}

func NewGuard(verifier Verifier, users UserFinder, demoAdminEmail string) *Guard {
	return &Guard{
		verifier:  verifier,
		users:     users,
		demoAdmin: models.NormalizeEmail(demoAdminEmail),
	}
}

// Identify verifies an Authorization header value and resolves the caller role.
func (g *Guard) Identify(ctx context.Context, header string) (*Caller, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return nil, status.ErrUnauthenticated
	}

	identity, err := g.verifier.Verify(ctx, strings.TrimSpace(token))
	if err != nil {
		return nil, err
	}

	role := models.RoleUser
	user, err := g.users.FindByEmail(ctx, identity.Email)
	switch {
	case err == nil:
		role = user.Role
	case !errors.Is(err, status.ErrNotFound):
		return nil, fmt.Errorf("resolve role: %w", err)
	}

	return &Caller{Identity: *identity, Role: role}, nil
}

// Authorize requires one of roles and then applies the demo admin rail.
func (g *Guard) Authorize(caller *Caller, method string, roles ...models.Role) error {
	if caller == nil {
		return status.ErrUnauthenticated
	}
	if len(roles) > 0 && !hasRole(caller.Role, roles) {
		return fmt.Errorf("%w: requires role %v", status.ErrForbidden, roles)
	}
	return g.readOnlyRail(caller, method)
}

// AuthorizeSelf requires the caller to be the account named by email, or an
// admin when allowAdmin is set.
func (g *Guard) AuthorizeSelf(caller *Caller, method, email string, allowAdmin bool) error {
	if caller == nil {
		return status.ErrUnauthenticated
	}
	if !caller.Owns(email) && !(allowAdmin && caller.Is(models.RoleAdmin)) {
		return fmt.Errorf("%w: email does not match token", status.ErrForbidden)
	}
	return g.readOnlyRail(caller, method)
}

func (g *Guard) IsDemoAdmin(caller *Caller) bool {
	return g.demoAdmin != "" && caller != nil && caller.Owns(g.demoAdmin)
}

func (g *Guard) readOnlyRail(caller *Caller, method string) error {
	if g.IsDemoAdmin(caller) && !isRead(method) {
		return status.ErrDemoReadOnly
	}
	return nil
}

func isRead(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func hasRole(role models.Role, roles []models.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
