package auth

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticketbari/internal/status"
	"ticketbari/internal/store/memstore"
	"ticketbari/models"
)

type staticVerifier map[string]string

func (v staticVerifier) Verify(_ context.Context, token string) (*Identity, error) {
	email, ok := v[token]
	if !ok {
		return nil, status.ErrUnauthenticated
	}
	return &Identity{UID: token, Email: email}, nil
}

func newTestGuard(t *testing.T) *Guard {
	t.Helper()
	ctx := context.Background()
	users := memstore.New().Users()
	for _, u := range []*models.User{
		{Email: "admin@bari.com", Role: models.RoleAdmin},
		{Email: "demo@bari.com", Role: models.RoleAdmin},
		{Email: "vendor@bari.com", Role: models.RoleVendor},
	} {
		require.NoError(t, users.Insert(ctx, u))
	}

	verifier := staticVerifier{
		"admin":    "admin@bari.com",
		"demo":     "Demo@Bari.com",
		"vendor":   "vendor@bari.com",
		"newcomer": "new@bari.com",
	}
	return NewGuard(verifier, users, "demo@bari.com")
}

func TestGuard_Identify(t *testing.T) {
	g := newTestGuard(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		header string
		role   models.Role
		err    error
	}{
		{"missing header", "", "", status.ErrUnauthenticated},
		{"wrong scheme", "Basic vendor", "", status.ErrUnauthenticated},
		{"empty token", "Bearer  ", "", status.ErrUnauthenticated},
		{"invalid token", "Bearer forged", "", status.ErrUnauthenticated},
		{"vendor", "Bearer vendor", models.RoleVendor, nil},
		{"lowercase scheme", "bearer admin", models.RoleAdmin, nil},
		{"unknown user defaults to user", "Bearer newcomer", models.RoleUser, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caller, err := g.Identify(ctx, tt.header)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.role, caller.Role)
		})
	}
}

func TestGuard_Authorize(t *testing.T) {
	g := newTestGuard(t)
	ctx := context.Background()

	vendor, err := g.Identify(ctx, "Bearer vendor")
	require.NoError(t, err)
	admin, err := g.Identify(ctx, "Bearer admin")
	require.NoError(t, err)

	assert.NoError(t, g.Authorize(vendor, http.MethodPost, models.RoleVendor))
	assert.ErrorIs(t, g.Authorize(vendor, http.MethodPatch, models.RoleAdmin), status.ErrForbidden)
	assert.NoError(t, g.Authorize(admin, http.MethodPatch, models.RoleAdmin))
	assert.ErrorIs(t, g.Authorize(nil, http.MethodGet), status.ErrUnauthenticated)
}

func TestGuard_AuthorizeSelf(t *testing.T) {
	g := newTestGuard(t)
	ctx := context.Background()

	vendor, err := g.Identify(ctx, "Bearer vendor")
	require.NoError(t, err)
	admin, err := g.Identify(ctx, "Bearer admin")
	require.NoError(t, err)

	assert.NoError(t, g.AuthorizeSelf(vendor, http.MethodGet, "VENDOR@bari.com", false))
	assert.ErrorIs(t, g.AuthorizeSelf(vendor, http.MethodGet, "other@bari.com", false), status.ErrForbidden)
	assert.ErrorIs(t, g.AuthorizeSelf(admin, http.MethodGet, "vendor@bari.com", false), status.ErrForbidden)
	assert.NoError(t, g.AuthorizeSelf(admin, http.MethodGet, "vendor@bari.com", true))
}

func TestGuard_DemoAdminIsReadOnly(t *testing.T) {
	g := newTestGuard(t)

	demo, err := g.Identify(context.Background(), "Bearer demo")
	require.NoError(t, err)
	require.True(t, g.IsDemoAdmin(demo))

	assert.NoError(t, g.Authorize(demo, http.MethodGet, models.RoleAdmin))
	assert.NoError(t, g.Authorize(demo, http.MethodGet))

	for _, method := range []string{http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete} {
		err := g.Authorize(demo, method, models.RoleAdmin)
		assert.ErrorIs(t, err, status.ErrDemoReadOnly, method)
		assert.Equal(t, http.StatusForbidden, status.HTTPCode(err))
	}

	// role mismatch still reports the normal authorization failure
	assert.ErrorIs(t, g.Authorize(demo, http.MethodPost, models.RoleVendor), status.ErrForbidden)
}
