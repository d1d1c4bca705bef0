package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticketbari/internal/status"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestHMACVerifier_IssueAndVerify(t *testing.T) {
	v, err := NewHMACVerifier(testSecret)
	require.NoError(t, err)

	token, err := v.Issue("Customer@Bari.com", time.Hour)
	require.NoError(t, err)

	identity, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "customer@bari.com", identity.Email)
	assert.Equal(t, "customer@bari.com", identity.UID)
}

func TestHMACVerifier_RejectsExpired(t *testing.T) {
	v, err := NewHMACVerifier(testSecret)
	require.NoError(t, err)

	v.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := v.Issue("a@bari.com", time.Hour)
	require.NoError(t, err)

	v.now = time.Now
	_, err = v.Verify(context.Background(), token)
	assert.ErrorIs(t, err, status.ErrUnauthenticated)
}

func TestHMACVerifier_RejectsForeignSignature(t *testing.T) {
	issuer, err := NewHMACVerifier("another-secret-of-enough-length")
	require.NoError(t, err)
	token, err := issuer.Issue("a@bari.com", time.Hour)
	require.NoError(t, err)

	v, err := NewHMACVerifier(testSecret)
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), token)
	assert.ErrorIs(t, err, status.ErrUnauthenticated)

	_, err = v.Verify(context.Background(), "not.a.token")
	assert.ErrorIs(t, err, status.ErrUnauthenticated)
}

func TestNewHMACVerifier_ShortSecret(t *testing.T) {
	_, err := NewHMACVerifier("short")
	assert.Error(t, err)
}
