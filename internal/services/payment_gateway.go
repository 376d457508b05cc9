package services

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/rand"
)

const (
	VerificationSucceeded = "succeeded"
	VerificationFailed    = "failed"
	VerificationPending   = "pending"
)

type PaymentIntent struct {
	ID           string            `json:"id"`
	ClientSecret string            `json:"clientSecret"`
	Amount       decimal.Decimal   `json:"amount"`
	Currency     string            `json:"currency"`
	Metadata     map[string]string `json:"metadata"`
}

type PaymentVerification struct {
	Status          string `json:"status"`
	PaymentID       string `json:"paymentId"`
	PaymentIntentID string `json:"paymentIntentId"`
	PaymentMethod   string `json:"paymentMethod"`
}

// PaymentGateway is the seam to a payment processor.
type PaymentGateway interface {
	CreatePaymentIntent(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (PaymentIntent, error)
	VerifyPayment(ctx context.Context, paymentID, paymentIntentID string) (PaymentVerification, error)
}

// MockGateway stands in for a real processor: intents are always created and
// every verification succeeds.
type MockGateway struct {
	Now    Clock
	Logger *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

func NewMockGateway(logger *slog.Logger) *MockGateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &MockGateway{
		Logger: logger,
		rng:    rand.New(rand.NewSource(uint64(time.Now().UnixNano()))),
	}
}

func (g *MockGateway) CreatePaymentIntent(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (PaymentIntent, error) {
	id := fmt.Sprintf("pi_%d_%s", g.Now.now().UnixNano(), strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
	secret, err := g.randomHex(16)
	if err != nil {
		return PaymentIntent{}, fmt.Errorf("client secret: %w", err)
	}
	md := make(map[string]string, len(metadata))
	for k, v := range metadata {
		md[k] = v
	}
	intent := PaymentIntent{
		ID:           id,
		ClientSecret: id + "_secret_" + secret,
		Amount:       amount,
		Currency:     strings.ToLower(currency),
		Metadata:     md,
	}
	g.logger().Debug("mock payment intent created", "op", "CreatePaymentIntent", "id", id, "amount", amount.String())
	return intent, nil
}

func (g *MockGateway) VerifyPayment(ctx context.Context, paymentID, paymentIntentID string) (PaymentVerification, error) {
	g.logger().Debug("mock payment verified", "op", "VerifyPayment", "paymentId", paymentID, "paymentIntentId", paymentIntentID)
	return PaymentVerification{
		Status:          VerificationSucceeded,
		PaymentID:       paymentID,
		PaymentIntentID: paymentIntentID,
		PaymentMethod:   "card",
	}, nil
}

func (g *MockGateway) logger() *slog.Logger {
	if g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}

func (g *MockGateway) randomHex(n int) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.rng == nil {
		g.rng = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	}
	b := make([]byte, n)
	if _, err := g.rng.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
