// Package payment adapts card payment providers behind a single Gateway.
package payment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"ticketbari/models"
)

// Provider names a payment provider.
type Provider string

const (
	ProviderStripe Provider = "stripe"
	ProviderMock   Provider = "mock"
)

const IntentSucceeded = "succeeded"

// Gateway creates and inspects payment intents.
type Gateway interface {
	Provider() Provider

	// CreateIntent asks the provider to prepare a card payment of amount in the
	// major currency unit.
	CreateIntent(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (*models.PaymentIntent, error)

	// GetIntent returns the current state of a previously created intent.
	GetIntent(ctx context.Context, id string) (*models.PaymentIntent, error)
}

type Config struct {
	StripeSecretKey string
	Timeout         time.Duration

	BreakerMaxFailures int
	BreakerOpenTimeout time.Duration
}

// Factory creates gateways by provider name.
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(provider Provider, cfg Config) (Gateway, error) {
	switch Provider(strings.ToLower(string(provider))) {
	case ProviderStripe:
		if cfg.StripeSecretKey == "" {
			return nil, fmt.Errorf("stripe provider requires STRIPE_SECRET_KEY")
		}
		return NewBreakerGateway(NewStripeGateway(cfg.StripeSecretKey, cfg.Timeout), cfg.BreakerMaxFailures, cfg.BreakerOpenTimeout), nil

	case ProviderMock, "":
		return NewMockGateway(), nil

	default:
		return nil, fmt.Errorf("unsupported payment provider: %s", provider)
	}
}

func (f *Factory) SupportedProviders() []Provider {
	return []Provider{ProviderStripe, ProviderMock}
}

// minorUnits converts a major unit amount to the provider's smallest unit.
func minorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func majorUnits(amount int64) float64 {
	return decimal.New(amount, -2).InexactFloat64()
}
