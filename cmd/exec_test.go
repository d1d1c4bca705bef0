package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticketbari/config"
	"ticketbari/internal/auth"
	"ticketbari/internal/store/memstore"
)

func TestOpenStore(t *testing.T) {
	st, err := openStore(context.Background(), nil, &config.Config{StoreDriver: config.StoreMemory})
	require.NoError(t, err)
	assert.IsType(t, &memstore.Store{}, st)

	_, err = openStore(context.Background(), nil, &config.Config{StoreDriver: "postgres"})
	assert.ErrorContains(t, err, "unknown STORE_DRIVER")
}

func TestNewVerifier(t *testing.T) {
	v, err := newVerifier(context.Background(), &config.Config{
		AuthProvider:      config.AuthJWT,
		AccessTokenSecret: strings.Repeat("k", 32),
	})
	require.NoError(t, err)
	assert.IsType(t, &auth.HMACVerifier{}, v)

	_, err = newVerifier(context.Background(), &config.Config{AuthProvider: config.AuthJWT, AccessTokenSecret: "short"})
	assert.Error(t, err)

	_, err = newVerifier(context.Background(), &config.Config{AuthProvider: "saml"})
	assert.ErrorContains(t, err, "unknown AUTH_PROVIDER")
}

func TestWireMemoryStack(t *testing.T) {
	cfg := &config.Config{
		StoreDriver:       config.StoreMemory,
		AuthProvider:      config.AuthJWT,
		AccessTokenSecret: strings.Repeat("k", 32),
		PaymentProvider:   "mock",
		AdvertiseLimit:    6,
		StatsMonthLayout:  "Jan",
	}

	deps, closeAll, err := wire(context.Background(), nil, cfg)
	require.NoError(t, err)
	defer closeAll()

	assert.Nil(t, deps.Redis)
	assert.Nil(t, deps.Limiter)
	assert.Equal(t, 6, deps.Ledger.AdvertiseLimit())
	assert.NoError(t, deps.Store.Ping(context.Background()))
}

func TestWireRejectsStripeWithoutKey(t *testing.T) {
	cfg := &config.Config{
		StoreDriver:       config.StoreMemory,
		AuthProvider:      config.AuthJWT,
		AccessTokenSecret: strings.Repeat("k", 32),
		PaymentProvider:   "stripe",
	}

	_, _, err := wire(context.Background(), nil, cfg)
	assert.ErrorContains(t, err, "STRIPE_SECRET_KEY")
}

func TestTokenCmd(t *testing.T) {
	secret := strings.Repeat("k", 32)
	cfg := &config.Config{AuthProvider: config.AuthJWT, AccessTokenSecret: secret, AccessTokenTTL: time.Hour}

	var out bytes.Buffer
	c := tokenCmd(cfg)
	c.SetOut(&out)
	c.SetArgs([]string{"Alice@Example.com"})
	require.NoError(t, c.Execute())

	verifier, err := auth.NewHMACVerifier(secret)
	require.NoError(t, err)
	identity, err := verifier.Verify(context.Background(), strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", identity.Email)

	c = tokenCmd(&config.Config{AuthProvider: config.AuthFirebase})
	c.SetArgs([]string{"alice@example.com"})
	c.SilenceUsage = true
	c.SilenceErrors = true
	assert.Error(t, c.Execute())
}

func TestPromoteAdminCmd(t *testing.T) {
	c := promoteAdminCmd(nil, &config.Config{StoreDriver: config.StoreMemory})
	c.SetArgs([]string{"nobody@example.com"})
	c.SilenceUsage = true
	c.SilenceErrors = true

	assert.ErrorContains(t, c.Execute(), "promote nobody@example.com")
}
