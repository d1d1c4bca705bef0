package payment

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"ticketbari/internal/status"
	"ticketbari/models"
	"ticketbari/utils"
)

// MockGateway keeps intents in memory. Intents succeed immediately unless a
// test changes their status.
type MockGateway struct {
	mu      sync.Mutex
	intents map[string]models.PaymentIntent
	status  string
}

func NewMockGateway() *MockGateway {
	return &MockGateway{
		intents: make(map[string]models.PaymentIntent),
		status:  IntentSucceeded,
	}
}

func (g *MockGateway) Provider() Provider {
	return ProviderMock
}

// SetDefaultStatus changes the status given to newly created intents.
func (g *MockGateway) SetDefaultStatus(status string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.status = status
}

func (g *MockGateway) CreateIntent(_ context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (*models.PaymentIntent, error) {
	code, err := utils.GenerateCode(12)
	if err != nil {
		return nil, fmt.Errorf("generate intent id: %w", err)
	}
	secret, err := utils.GenerateCode(12)
	if err != nil {
		return nil, fmt.Errorf("generate client secret: %w", err)
	}

	id := "pi_mock_" + strings.ToLower(code)
	g.mu.Lock()
	defer g.mu.Unlock()

	intent := models.PaymentIntent{
		ID:           id,
		ClientSecret: id + "_secret_" + strings.ToLower(secret),
		Amount:       majorUnits(minorUnits(amount)),
		Currency:     currency,
		Status:       g.status,
		Metadata:     make(map[string]string, len(metadata)),
	}
	for k, v := range metadata {
		intent.Metadata[k] = v
	}
	g.intents[id] = intent
	return &intent, nil
}

func (g *MockGateway) GetIntent(_ context.Context, id string) (*models.PaymentIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	intent, ok := g.intents[id]
	if !ok {
		return nil, status.Invalid("unknown payment intent %s", id)
	}
	return &intent, nil
}
