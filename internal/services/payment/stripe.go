package payment

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"ticketbari/models"
)

type intentAPI interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	Get(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

// StripeGateway creates card payment intents with the Stripe API.
type StripeGateway struct {
	intents intentAPI
}

func NewStripeGateway(secretKey string, timeout time.Duration) *StripeGateway {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	api := client.New(secretKey, stripe.NewBackends(&http.Client{Timeout: timeout}))
	return &StripeGateway{intents: api.PaymentIntents}
}

func (g *StripeGateway) Provider() Provider {
	return ProviderStripe
}

func (g *StripeGateway) CreateIntent(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (*models.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(minorUnits(amount)),
		Currency:           stripe.String(currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := g.intents.New(params)
	if err != nil {
		return nil, err
	}
	return intentFromStripe(pi), nil
}

func (g *StripeGateway) GetIntent(ctx context.Context, id string) (*models.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := g.intents.Get(id, params)
	if err != nil {
		return nil, err
	}
	return intentFromStripe(pi), nil
}

func intentFromStripe(pi *stripe.PaymentIntent) *models.PaymentIntent {
	return &models.PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       majorUnits(pi.Amount),
		Currency:     string(pi.Currency),
		Status:       string(pi.Status),
		Metadata:     pi.Metadata,
	}
}

// isProviderFault reports whether err means Stripe itself is unhealthy, as
// opposed to the request or the card being refused.
func isProviderFault(err error) bool {
	if err == nil {
		return false
	}
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return stripeErr.HTTPStatusCode == 0 || stripeErr.HTTPStatusCode >= 500 ||
			stripeErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	return !errors.Is(err, context.Canceled)
}
