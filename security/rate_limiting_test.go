package security

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/pocketbase/pocketbase/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEvent(method, userAgent string) (*core.RequestEvent, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, "/bookings", nil)
	req.Header.Set("User-Agent", userAgent)
	rec := httptest.NewRecorder()

	e := new(core.RequestEvent)
	e.Request = req
	e.Response = rec
	return e, rec
}

func TestRateLimiter_Allow(t *testing.T) {
	db, mock := redismock.NewClientMock()
	limiter := NewRateLimiter(db, 2)
	ctx := context.Background()

	mock.ExpectIncr("ratelimit:ip:10.0.0.1").SetVal(1)
	mock.ExpectExpire("ratelimit:ip:10.0.0.1", time.Minute).SetVal(true)
	mock.ExpectIncr("ratelimit:ip:10.0.0.1").SetVal(2)
	mock.ExpectIncr("ratelimit:ip:10.0.0.1").SetVal(3)

	for i, want := range []bool{true, true, false} {
		ok, err := limiter.Allow(ctx, "ip:10.0.0.1")
		require.NoError(t, err)
		assert.Equal(t, want, ok, "hit %d", i+1)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	db, mock := redismock.NewClientMock()
	limiter := NewRateLimiter(db, 1)

	mock.ExpectIncr("ratelimit:ip:10.0.0.1").SetErr(errors.New("connection refused"))

	ok, err := limiter.Allow(context.Background(), "ip:10.0.0.1")
	assert.True(t, ok)
	assert.Error(t, err)
}

func TestRateLimiter_WriteLimit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	limiter := NewRateLimiter(db, 1)
	limiter.KeyFunc = func(*core.RequestEvent) string { return "user:alice@example.com" }
	middleware := limiter.WriteLimit()

	// reads never touch redis
	e, _ := newEvent(http.MethodGet, "")
	assert.NoError(t, middleware(e))

	mock.ExpectIncr("ratelimit:user:alice@example.com").SetVal(1)
	mock.ExpectExpire("ratelimit:user:alice@example.com", time.Minute).SetVal(true)
	e, _ = newEvent(http.MethodPost, "")
	assert.NoError(t, middleware(e))

	mock.ExpectIncr("ratelimit:user:alice@example.com").SetVal(2)
	e, _ = newEvent(http.MethodPost, "")
	err := middleware(e)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Too many requests")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimiter_NilIsDisabled(t *testing.T) {
	var limiter *RateLimiter
	e, _ := newEvent(http.MethodPost, "")

	assert.NoError(t, limiter.WriteLimit()(e))
}

func TestBotFilter(t *testing.T) {
	filter := BotFilter()

	e, _ := newEvent(http.MethodPost, "Mozilla/5.0 (compatible; Googlebot/2.1)")
	assert.Error(t, filter(e))

	e, _ = newEvent(http.MethodGet, "Googlebot")
	assert.NoError(t, filter(e), "crawlers may read")

	e, _ = newEvent(http.MethodPost, "Mozilla/5.0 (X11; Linux x86_64)")
	assert.NoError(t, filter(e))
}

func TestIsSuspiciousUserAgent(t *testing.T) {
	tests := []struct {
		ua   string
		want bool
	}{
		{"Mozilla/5.0", false},
		{"", false},
		{"SemrushBot", true},
		{"my-Scraper/1.0", true},
		{"Baiduspider", true},
		{"AhrefsCrawler", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsSuspiciousUserAgent(tt.ua), tt.ua)
	}
}
