package payment

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"ticketbari/internal/status"
	"ticketbari/models"
	"ticketbari/monitoring"
	"ticketbari/utils"
)

// BreakerGateway guards a gateway with a circuit breaker and records call
// latency. Every error it returns wraps status.ErrUpstream.
type BreakerGateway struct {
	next    Gateway
	breaker *utils.CircuitBreaker
}

func NewBreakerGateway(next Gateway, maxFailures int, openTimeout time.Duration) *BreakerGateway {
	var maxFails uint32
	if maxFailures > 0 {
		maxFails = uint32(maxFailures)
	}

	breaker := utils.NewCircuitBreaker(string(next.Provider()), utils.BreakerSettings{
		MaxFailures: maxFails,
		OpenTimeout: openTimeout,
		IsFailure:   isProviderFault,
		OnStateChange: func(name string, from, to utils.State) {
			logrus.WithFields(logrus.Fields{
				"gateway": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("payment gateway breaker changed state")
		},
	})

	return &BreakerGateway{next: next, breaker: breaker}
}

func (g *BreakerGateway) Provider() Provider {
	return g.next.Provider()
}

func (g *BreakerGateway) CreateIntent(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (*models.PaymentIntent, error) {
	return g.call(ctx, "create_intent", func(ctx context.Context) (*models.PaymentIntent, error) {
		return g.next.CreateIntent(ctx, amount, currency, metadata)
	})
}

func (g *BreakerGateway) GetIntent(ctx context.Context, id string) (*models.PaymentIntent, error) {
	return g.call(ctx, "get_intent", func(ctx context.Context) (*models.PaymentIntent, error) {
		return g.next.GetIntent(ctx, id)
	})
}

func (g *BreakerGateway) call(ctx context.Context, name string, fn func(ctx context.Context) (*models.PaymentIntent, error)) (*models.PaymentIntent, error) {
	start := time.Now()
	result, err := g.breaker.Execute(ctx, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})

	outcome := "ok"
	switch {
	case errors.Is(err, utils.ErrBreakerOpen), errors.Is(err, utils.ErrTooManyRequests):
		outcome = "rejected"
	case err != nil:
		outcome = "error"
	}
	monitoring.TrackGatewayCall(string(g.Provider()), name, outcome, time.Since(start))

	if err != nil {
		return nil, status.Upstream(err)
	}
	return result.(*models.PaymentIntent), nil
}
