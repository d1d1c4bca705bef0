package payment

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"

	"ticketbari/internal/status"
	"ticketbari/models"
)

type mockIntentAPI struct {
	mock.Mock
}

func (m *mockIntentAPI) New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	args := m.Called(params)
	pi, _ := args.Get(0).(*stripe.PaymentIntent)
	return pi, args.Error(1)
}

func (m *mockIntentAPI) Get(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	args := m.Called(id, params)
	pi, _ := args.Get(0).(*stripe.PaymentIntent)
	return pi, args.Error(1)
}

func TestStripeGateway_CreateIntent(t *testing.T) {
	api := new(mockIntentAPI)
	gw := &StripeGateway{intents: api}
	ctx := context.Background()

	api.On("New", mock.MatchedBy(func(p *stripe.PaymentIntentParams) bool {
		return *p.Amount == 125050 &&
			*p.Currency == "usd" &&
			len(p.PaymentMethodTypes) == 1 && *p.PaymentMethodTypes[0] == "card" &&
			p.Metadata["bookingId"] == "b1" &&
			p.Context == ctx
	})).Return(&stripe.PaymentIntent{
		ID:           "pi_123",
		ClientSecret: "pi_123_secret_abc",
		Amount:       125050,
		Currency:     stripe.CurrencyUSD,
		Status:       stripe.PaymentIntentStatusRequiresPaymentMethod,
	}, nil)

	intent, err := gw.CreateIntent(ctx, decimal.RequireFromString("1250.50"), "usd", map[string]string{"bookingId": "b1"})

	require.NoError(t, err)
	assert.Equal(t, "pi_123_secret_abc", intent.ClientSecret)
	assert.Equal(t, 1250.50, intent.Amount)
	assert.Equal(t, "requires_payment_method", intent.Status)
	api.AssertExpectations(t)
}

func TestStripeGateway_GetIntent(t *testing.T) {
	api := new(mockIntentAPI)
	gw := &StripeGateway{intents: api}

	api.On("Get", "pi_9", mock.Anything).Return(&stripe.PaymentIntent{
		ID:       "pi_9",
		Amount:   5000,
		Currency: stripe.CurrencyUSD,
		Status:   stripe.PaymentIntentStatusSucceeded,
		Metadata: map[string]string{"bookingId": "b9"},
	}, nil)

	intent, err := gw.GetIntent(context.Background(), "pi_9")

	require.NoError(t, err)
	assert.Equal(t, IntentSucceeded, intent.Status)
	assert.Equal(t, 50.0, intent.Amount)
	assert.Equal(t, "b9", intent.Metadata["bookingId"])
}

func TestIsProviderFault(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"card declined", &stripe.Error{Type: stripe.ErrorTypeCard, HTTPStatusCode: http.StatusPaymentRequired}, false},
		{"bad request", &stripe.Error{Type: stripe.ErrorTypeInvalidRequest, HTTPStatusCode: http.StatusBadRequest}, false},
		{"server error", &stripe.Error{Type: stripe.ErrorTypeAPI, HTTPStatusCode: http.StatusInternalServerError}, true},
		{"throttled", &stripe.Error{HTTPStatusCode: http.StatusTooManyRequests}, true},
		{"network", errors.New("dial tcp: i/o timeout"), true},
		{"cancelled", context.Canceled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isProviderFault(tt.err))
		})
	}
}

type failingGateway struct {
	calls int
	err   error
}

func (g *failingGateway) Provider() Provider { return "failing" }

func (g *failingGateway) CreateIntent(context.Context, decimal.Decimal, string, map[string]string) (*models.PaymentIntent, error) {
	g.calls++
	return nil, g.err
}

func (g *failingGateway) GetIntent(context.Context, string) (*models.PaymentIntent, error) {
	g.calls++
	return nil, g.err
}

func TestBreakerGateway_WrapsErrorsAsUpstream(t *testing.T) {
	gw := NewBreakerGateway(&failingGateway{err: errors.New("connection reset")}, 5, time.Minute)

	_, err := gw.CreateIntent(context.Background(), decimal.NewFromInt(10), "usd", nil)

	assert.ErrorIs(t, err, status.ErrUpstream)
	assert.Equal(t, http.StatusBadGateway, status.HTTPCode(err))
}

func TestBreakerGateway_OpensWithoutRetrying(t *testing.T) {
	inner := &failingGateway{err: errors.New("connection reset")}
	gw := NewBreakerGateway(inner, 2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := gw.GetIntent(ctx, "pi_1")
		assert.ErrorIs(t, err, status.ErrUpstream)
	}

	assert.Equal(t, 2, inner.calls)
}

func TestBreakerGateway_PassesSuccess(t *testing.T) {
	gw := NewBreakerGateway(NewMockGateway(), 1, time.Minute)

	intent, err := gw.CreateIntent(context.Background(), decimal.NewFromInt(30), "usd", nil)

	require.NoError(t, err)
	assert.Equal(t, 30.0, intent.Amount)
	assert.Equal(t, ProviderMock, gw.Provider())
}

func TestMockGateway(t *testing.T) {
	gw := NewMockGateway()
	ctx := context.Background()

	intent, err := gw.CreateIntent(ctx, decimal.RequireFromString("99.999"), "usd", nil)
	require.NoError(t, err)
	assert.Contains(t, intent.ID, "pi_mock_")
	assert.Contains(t, intent.ClientSecret, intent.ID+"_secret_")
	assert.Equal(t, 100.0, intent.Amount)
	assert.Equal(t, IntentSucceeded, intent.Status)

	got, err := gw.GetIntent(ctx, intent.ID)
	require.NoError(t, err)
	assert.Equal(t, intent, got)

	meta := map[string]string{"bookingId": "b1"}
	withBooking, err := gw.CreateIntent(ctx, decimal.NewFromInt(5), "usd", meta)
	require.NoError(t, err)
	meta["bookingId"] = "changed"
	got, err = gw.GetIntent(ctx, withBooking.ID)
	require.NoError(t, err)
	assert.Equal(t, "b1", got.Metadata["bookingId"])

	gw.SetDefaultStatus("requires_payment_method")
	pending, err := gw.CreateIntent(ctx, decimal.NewFromInt(1), "usd", nil)
	require.NoError(t, err)
	assert.Equal(t, "requires_payment_method", pending.Status)

	_, err = gw.GetIntent(ctx, "pi_unknown")
	assert.Equal(t, http.StatusBadRequest, status.HTTPCode(err))
}

func TestFactory_Create(t *testing.T) {
	f := NewFactory()

	gw, err := f.Create(ProviderMock, Config{})
	require.NoError(t, err)
	assert.Equal(t, ProviderMock, gw.Provider())

	gw, err = f.Create("STRIPE", Config{StripeSecretKey: "sk_test_123", Timeout: time.Second})
	require.NoError(t, err)
	assert.IsType(t, &BreakerGateway{}, gw)
	assert.Equal(t, ProviderStripe, gw.Provider())

	_, err = f.Create(ProviderStripe, Config{})
	assert.Error(t, err)

	_, err = f.Create("paypal", Config{})
	assert.Error(t, err)

	assert.ElementsMatch(t, []Provider{ProviderStripe, ProviderMock}, f.SupportedProviders())
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(1999), minorUnits(decimal.RequireFromString("19.99")))
	assert.Equal(t, int64(50), minorUnits(decimal.RequireFromString("0.499")))
	assert.Equal(t, 19.99, majorUnits(1999))
}
