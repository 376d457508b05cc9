package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"classifiedsBack/internal/models"
)

type CheckoutRequest struct {
	UserID          int
	PackageID       int
	PackageName     string
	AdvertisementID int
	Amount          decimal.Decimal
	Currency        string
	Buyer           models.BuyerContact
}

func (r CheckoutRequest) Validate() error {
	if r.UserID <= 0 {
		return fmt.Errorf("%w: buyer identity is required", models.ErrValidation)
	}
	if r.PackageID <= 0 {
		return fmt.Errorf("%w: packageId is required", models.ErrValidation)
	}
	if r.AdvertisementID <= 0 {
		return fmt.Errorf("%w: advertisementId is required", models.ErrValidation)
	}
	if !r.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", models.ErrValidation)
	}
	return r.Buyer.Validate()
}

type CheckoutResult struct {
	OrderID         int
	ClientSecret    string
	PaymentIntentID string
	Order           models.Order
}

type CheckoutService struct {
	Packages PackageStore
	Orders   OrderStore
	Gateway  PaymentGateway
	Currency string
}

func NewCheckoutService(packages PackageStore, orders OrderStore, gateway PaymentGateway, currency string) *CheckoutService {
	return &CheckoutService{Packages: packages, Orders: orders, Gateway: gateway, Currency: currency}
}

// Checkout creates a pending order backed by a fresh payment intent. Identical
// requests produce distinct orders.
func (s *CheckoutService) Checkout(ctx context.Context, req CheckoutRequest) (CheckoutResult, error) {
	if err := req.Validate(); err != nil {
		return CheckoutResult{}, err
	}

	pkg, err := s.Packages.GetByID(ctx, req.PackageID)
	if err != nil {
		return CheckoutResult{}, err
	}

	currency := strings.TrimSpace(req.Currency)
	if currency == "" {
		currency = s.Currency
	}
	packageName := pkg.Name
	if packageName == "" {
		packageName = strings.TrimSpace(req.PackageName)
	}

	intent, err := s.Gateway.CreatePaymentIntent(ctx, req.Amount, currency, map[string]string{
		"packageId":       strconv.Itoa(pkg.ID),
		"packageName":     packageName,
		"advertisementId": strconv.Itoa(req.AdvertisementID),
	})
	if err != nil {
		return CheckoutResult{}, fmt.Errorf("%w: %v", models.ErrPaymentInitiation, err)
	}

	order, err := s.Orders.Create(ctx, models.Order{
		UserID:          req.UserID,
		PackageID:       pkg.ID,
		PackageName:     packageName,
		AdvertisementID: req.AdvertisementID,
		Amount:          req.Amount,
		Currency:        strings.ToLower(currency),
		PaymentStatus:   models.PaymentStatusPending,
		PaymentIntentID: intent.ID,
		Buyer:           req.Buyer,
	})
	if err != nil {
		return CheckoutResult{}, err
	}

	return CheckoutResult{
		OrderID:         order.ID,
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
		Order:           order,
	}, nil
}

// CreatePaymentIntent exposes the gateway directly for clients that collect
// payment before checkout.
func (s *CheckoutService) CreatePaymentIntent(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (PaymentIntent, error) {
	if !amount.IsPositive() {
		return PaymentIntent{}, fmt.Errorf("%w: amount must be positive", models.ErrValidation)
	}
	if strings.TrimSpace(currency) == "" {
		currency = s.Currency
	}
	intent, err := s.Gateway.CreatePaymentIntent(ctx, amount, currency, metadata)
	if err != nil {
		return PaymentIntent{}, fmt.Errorf("%w: %v", models.ErrPaymentInitiation, err)
	}
	return intent, nil
}
