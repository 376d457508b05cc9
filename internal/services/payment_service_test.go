package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"classifiedsBack/internal/models"
)

type paymentFixture struct {
	svc     *PaymentService
	orders  *memOrders
	ads     *memAds
	gateway *stubGateway
	mailer  *recordingMailer
	events  *recordingEvents
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newPaymentFixture(now time.Time, ad models.Advertisement) paymentFixture {
	orders := newMemOrders()
	pkgs := newMemPackages(models.Package{ID: 1, Name: "Premium", Price: decimal.NewFromInt(1000), Duration: 7, IsActive: true})
	ads := newMemAds(ad)
	gw := &stubGateway{}
	mailer := &recordingMailer{}
	events := newRecordingEvents()
	invoices := NewInvoiceService(orders, mailer, nil, "Classifieds", time.UTC, discardLogger())

	return paymentFixture{
		svc: &PaymentService{
			Orders:   orders,
			Packages: pkgs,
			Ads:      ads,
			Gateway:  gw,
			Invoices: invoices,
			Events:   events,
			Now:      fixedClock(now),
			Logger:   discardLogger(),
		},
		orders:  orders,
		ads:     ads,
		gateway: gw,
		mailer:  mailer,
		events:  events,
	}
}

func (f paymentFixture) pendingOrder(t *testing.T, adID int) models.Order {
	t.Helper()
	o, err := f.orders.Create(context.Background(), models.Order{
		UserID:          42,
		PackageID:       1,
		PackageName:     "Premium",
		AdvertisementID: adID,
		Amount:          decimal.NewFromInt(1000),
		Currency:        "usd",
		PaymentStatus:   models.PaymentStatusPending,
		PaymentIntentID: "pi_test_1",
		Buyer:           testBuyer(),
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	return o
}

func TestVerifyPaymentStacksOnExistingExpiry(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	existing := now.Add(72 * time.Hour)
	f := newPaymentFixture(now, models.Advertisement{ID: 10, UserID: 42, Title: "Bike", IsBoosted: true, Visibility: true, BoostedUntil: timePtr(existing)})
	order := f.pendingOrder(t, 10)

	res, err := f.svc.VerifyPayment(context.Background(), "pay_1", order.ID)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}

	want := existing.Add(time.Duration(7*models.MillisPerDay) * time.Millisecond)
	if !res.BoostedUntil.Equal(want) {
		t.Fatalf("expected boostedUntil %s, got %s", want, res.BoostedUntil)
	}
	ad, _ := f.ads.GetByID(context.Background(), 10)
	if ad.BoostedUntil == nil || !ad.BoostedUntil.Equal(want) {
		t.Fatalf("advertisement not extended to %s: %+v", want, ad.BoostedUntil)
	}
}

func TestVerifyPaymentStacksEvenWhenExpiryIsPast(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	past := now.Add(-48 * time.Hour)
	f := newPaymentFixture(now, models.Advertisement{ID: 10, UserID: 42, Title: "Bike", BoostedUntil: timePtr(past)})
	order := f.pendingOrder(t, 10)

	res, err := f.svc.VerifyPayment(context.Background(), "pay_1", order.ID)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	want := past.Add(7 * 24 * time.Hour)
	if !res.BoostedUntil.Equal(want) {
		t.Fatalf("expected %s, got %s", want, res.BoostedUntil)
	}
}

func TestVerifyPaymentColdActivation(t *testing.T) {
	now := time.Now()
	f := newPaymentFixture(now, models.Advertisement{ID: 10, UserID: 42, Title: "Bike"})
	f.svc.Now = nil
	order := f.pendingOrder(t, 10)

	res, err := f.svc.VerifyPayment(context.Background(), "pay_1", order.ID)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}

	want := time.Now().Add(7 * 24 * time.Hour)
	if diff := res.BoostedUntil.Sub(want); diff > 2*time.Second || diff < -2*time.Second {
		t.Fatalf("expected boostedUntil near %s, got %s", want, res.BoostedUntil)
	}
	ad, _ := f.ads.GetByID(context.Background(), 10)
	if !ad.IsBoosted || !ad.Visibility {
		t.Fatalf("expected boosted and visible advertisement, got %+v", ad)
	}
	if ad.PackageID == nil || *ad.PackageID != 1 {
		t.Fatalf("expected package id 1 on advertisement")
	}
}

func TestVerifyPaymentNonSuccessLeavesStateUntouched(t *testing.T) {
	for _, status := range []string{VerificationFailed, VerificationPending, "requires_action"} {
		t.Run(status, func(t *testing.T) {
			now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
			f := newPaymentFixture(now, models.Advertisement{ID: 10, UserID: 42, Title: "Bike"})
			f.gateway.status = status
			order := f.pendingOrder(t, 10)

			_, err := f.svc.VerifyPayment(context.Background(), "pay_1", order.ID)
			if !errors.Is(err, models.ErrPaymentVerificationFailed) {
				t.Fatalf("expected verification failure, got %v", err)
			}

			stored, _ := f.orders.GetByID(context.Background(), order.ID)
			if stored.PaymentStatus != models.PaymentStatusPending {
				t.Fatalf("order should stay pending, got %q", stored.PaymentStatus)
			}
			if f.ads.applyCalls != 0 {
				t.Fatalf("advertisement should not be touched")
			}
			if len(f.mailer.sent) != 0 {
				t.Fatalf("no invoice expected")
			}
		})
	}
}

func TestVerifyPaymentInvoiceFailureDoesNotRollBack(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	f := newPaymentFixture(now, models.Advertisement{ID: 10, UserID: 42, Title: "Bike"})
	f.mailer.err = errors.New("smtp down")
	order := f.pendingOrder(t, 10)

	res, err := f.svc.VerifyPayment(context.Background(), "pay_1", order.ID)
	if err != nil {
		t.Fatalf("verify should succeed despite invoice failure: %v", err)
	}
	if res.Status != StatusPaid || res.InvoiceSent {
		t.Fatalf("unexpected result %+v", res)
	}
	stored, _ := f.orders.GetByID(context.Background(), order.ID)
	if stored.PaymentStatus != models.PaymentStatusSucceeded {
		t.Fatalf("order should be succeeded, got %q", stored.PaymentStatus)
	}
}

func TestVerifyPaymentMissingEntities(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("order", func(t *testing.T) {
		f := newPaymentFixture(now, models.Advertisement{ID: 10})
		_, err := f.svc.VerifyPayment(context.Background(), "pay_1", 404)
		if !errors.Is(err, models.ErrOrderNotFound) {
			t.Fatalf("expected order not found, got %v", err)
		}
	})

	t.Run("advertisement", func(t *testing.T) {
		f := newPaymentFixture(now, models.Advertisement{ID: 10})
		order := f.pendingOrder(t, 77)
		_, err := f.svc.VerifyPayment(context.Background(), "pay_1", order.ID)
		if !errors.Is(err, models.ErrAdvertisementNotFound) {
			t.Fatalf("expected advertisement not found, got %v", err)
		}
		assertPaidWithoutBoost(t, f, order.ID)
	})

	t.Run("validation", func(t *testing.T) {
		f := newPaymentFixture(now, models.Advertisement{ID: 10})
		if _, err := f.svc.VerifyPayment(context.Background(), " ", 1); !errors.Is(err, models.ErrValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}

func TestCheckoutThenVerifyEndToEnd(t *testing.T) {
	orders := newMemOrders()
	pkgs := newMemPackages(models.Package{ID: 1, Name: "P1", Price: decimal.NewFromInt(1000), Duration: 7, IsActive: true})
	ads := newMemAds(models.Advertisement{ID: 1, UserID: 42, Title: "A1"})
	gateway := NewMockGateway(discardLogger())
	mailer := &recordingMailer{}
	events := newRecordingEvents()
	invoices := NewInvoiceService(orders, mailer, nil, "Classifieds", time.UTC, discardLogger())

	checkout := NewCheckoutService(pkgs, orders, gateway, "usd")
	payments := &PaymentService{
		Orders: orders, Packages: pkgs, Ads: ads, Gateway: gateway,
		Invoices: invoices, Events: events, Logger: discardLogger(),
	}

	req := validCheckout()
	req.AdvertisementID = 1
	co, err := checkout.Checkout(context.Background(), req)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	o1, _ := orders.GetByID(context.Background(), co.OrderID)
	if o1.PaymentStatus != models.PaymentStatusPending {
		t.Fatalf("expected pending order, got %q", o1.PaymentStatus)
	}

	res, err := payments.VerifyPayment(context.Background(), "x", co.OrderID)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if res.Status != "paid" || res.OrderID != co.OrderID {
		t.Fatalf("unexpected result %+v", res)
	}

	o1, _ = orders.GetByID(context.Background(), co.OrderID)
	if o1.PaymentStatus != models.PaymentStatusSucceeded || o1.PaymentMethod != "card" {
		t.Fatalf("order not confirmed: %+v", o1)
	}
	a1, _ := ads.GetByID(context.Background(), 1)
	if !a1.IsBoosted || a1.BoostedUntil == nil {
		t.Fatalf("advertisement not boosted: %+v", a1)
	}
	if diff := time.Until(*a1.BoostedUntil) - 7*24*time.Hour; diff > 2*time.Second || diff < -2*time.Second {
		t.Fatalf("boostedUntil %s is not about 7 days away", a1.BoostedUntil)
	}
	if len(mailer.sent) != 1 || mailer.sent[0].To[0] != "buyer@example.com" {
		t.Fatalf("expected one invoice to buyer, got %+v", mailer.sent)
	}
	if got := events.events[42]; len(got) != 1 || got[0].Type != models.BoostEventActivated {
		t.Fatalf("expected one activation event, got %+v", got)
	}
}

// assertPaidWithoutBoost checks the state left behind when the flow stops
// after the order was confirmed: the payment is recorded, the advertisement
// is not boosted and no invoice went out.
func assertPaidWithoutBoost(t *testing.T, f paymentFixture, orderID int) {
	t.Helper()
	stored, _ := f.orders.GetByID(context.Background(), orderID)
	if stored.PaymentStatus != models.PaymentStatusSucceeded {
		t.Fatalf("order should already be succeeded, got %q", stored.PaymentStatus)
	}
	if f.ads.applyCalls != 0 {
		t.Fatalf("expected no applied boost, got %d", f.ads.applyCalls)
	}
	if len(f.mailer.sent) != 0 {
		t.Fatalf("expected no invoice, got %d", len(f.mailer.sent))
	}
	if len(f.events.events[42]) != 0 {
		t.Fatalf("expected no activation event, got %+v", f.events.events[42])
	}
}

func TestVerifyPaymentBoostWriteFailureKeepsPaidOrder(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	f := newPaymentFixture(now, models.Advertisement{ID: 10, UserID: 42, Title: "Bike"})
	f.ads.applyErr = fmt.Errorf("%w: update advertisement 10: connection reset", models.ErrPersistence)
	order := f.pendingOrder(t, 10)

	_, err := f.svc.VerifyPayment(context.Background(), "pay_1", order.ID)
	if !errors.Is(err, models.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	assertPaidWithoutBoost(t, f, order.ID)

	ad, _ := f.ads.GetByID(context.Background(), 10)
	if ad.IsBoosted || ad.BoostedUntil != nil {
		t.Fatalf("advertisement must not be boosted: %+v", ad)
	}
}

func TestVerifyPaymentTwiceStacksTwoBoosts(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	f := newPaymentFixture(now, models.Advertisement{ID: 10, UserID: 42, Title: "Bike"})
	order := f.pendingOrder(t, 10)

	first, err := f.svc.VerifyPayment(context.Background(), "pay_1", order.ID)
	if err != nil {
		t.Fatalf("first verify: %v", err)
	}
	second, err := f.svc.VerifyPayment(context.Background(), "pay_1", order.ID)
	if err != nil {
		t.Fatalf("second verify: %v", err)
	}

	week := 7 * 24 * time.Hour
	if want := now.Add(week); !first.BoostedUntil.Equal(want) {
		t.Fatalf("first boost: expected %s, got %s", want, first.BoostedUntil)
	}
	if want := now.Add(2 * week); !second.BoostedUntil.Equal(want) {
		t.Fatalf("second boost: expected %s, got %s", want, second.BoostedUntil)
	}
	if f.ads.applyCalls != 2 || len(f.mailer.sent) != 2 {
		t.Fatalf("expected two boosts and two invoices, got %d and %d", f.ads.applyCalls, len(f.mailer.sent))
	}
}
