package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"classifiedsBack/internal/models"
)

// StatusPaid is reported to clients once a boost purchase is confirmed.
const StatusPaid = "paid"

// InvoiceSender dispatches the invoice of a confirmed order.
type InvoiceSender interface {
	SendInvoice(ctx context.Context, orderID int) (DispatchResult, error)
}

type VerifyResult struct {
	OrderID      int
	Status       string
	BoostedUntil time.Time
	InvoiceSent  bool
}

// PaymentService confirms payments and applies the purchased boost.
//
// The order update, the advertisement update and the invoice e-mail are three
// independent writes. A failure between them leaves the earlier ones in place.
type PaymentService struct {
	Orders   OrderStore
	Packages PackageStore
	Ads      AdvertisementStore
	Gateway  PaymentGateway
	Invoices InvoiceSender
	Events   EventPublisher
	Now      Clock
	Logger   *slog.Logger
}

func (s *PaymentService) VerifyPayment(ctx context.Context, paymentID string, orderID int) (VerifyResult, error) {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return VerifyResult{}, fmt.Errorf("%w: paymentId is required", models.ErrValidation)
	}
	if orderID <= 0 {
		return VerifyResult{}, fmt.Errorf("%w: orderId is required", models.ErrValidation)
	}
	logger := s.logger().With("op", "VerifyPayment", "orderId", orderID)

	order, err := s.Orders.GetByID(ctx, orderID)
	if err != nil {
		return VerifyResult{}, err
	}

	verification, err := s.Gateway.VerifyPayment(ctx, paymentID, order.PaymentIntentID)
	if err != nil {
		return VerifyResult{}, fmt.Errorf("verify payment with gateway: %w", err)
	}

	switch verification.Status {
	case VerificationSucceeded:
	case VerificationFailed, VerificationPending:
		return VerifyResult{}, fmt.Errorf("%w: gateway reported %s", models.ErrPaymentVerificationFailed, verification.Status)
	default:
		return VerifyResult{}, fmt.Errorf("%w: unknown gateway status %q", models.ErrPaymentVerificationFailed, verification.Status)
	}

	if !models.CanTransition(order.PaymentStatus, models.PaymentStatusSucceeded) {
		return VerifyResult{}, fmt.Errorf("%w: order %d has status %q", models.ErrValidation, order.ID, order.PaymentStatus)
	}
	if verification.PaymentID == "" {
		verification.PaymentID = paymentID
	}
	if err := s.Orders.MarkSucceeded(ctx, order.ID, verification.PaymentID, verification.PaymentMethod); err != nil {
		return VerifyResult{}, err
	}

	pkg, err := s.Packages.GetByID(ctx, order.PackageID)
	if err != nil {
		return VerifyResult{}, err
	}
	ad, err := s.Ads.GetByID(ctx, order.AdvertisementID)
	if err != nil {
		return VerifyResult{}, err
	}

	boostedUntil, err := ComputeBoostedUntil(s.Now.now(), ad.BoostedUntil, pkg.Duration)
	if err != nil {
		return VerifyResult{}, err
	}
	if err := s.Ads.ApplyBoost(ctx, ad.ID, boostedUntil, pkg.ID); err != nil {
		return VerifyResult{}, err
	}
	logger.Info("advertisement boosted", "advertisementId", ad.ID, "packageId", pkg.ID, "boostedUntil", boostedUntil)

	result := VerifyResult{OrderID: order.ID, Status: StatusPaid, BoostedUntil: boostedUntil}
	if s.Invoices != nil {
		if _, err := s.Invoices.SendInvoice(ctx, order.ID); err != nil {
			logger.Error("invoice dispatch failed", "err", err)
		} else {
			result.InvoiceSent = true
		}
	}

	if s.Events != nil {
		until := boostedUntil
		s.Events.Publish(order.UserID, models.BoostEvent{
			Type:            models.BoostEventActivated,
			AdvertisementID: ad.ID,
			OrderID:         order.ID,
			Title:           ad.Title,
			BoostedUntil:    &until,
			OccurredAt:      s.Now.now().UTC(),
		})
	}
	return result, nil
}

func (s *PaymentService) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
