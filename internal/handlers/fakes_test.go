package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"classifiedsBack/internal/models"
	"classifiedsBack/internal/services"
)

type fakeOrders struct {
	orders map[int]models.Order
}

func newFakeOrders() *fakeOrders { return &fakeOrders{orders: map[int]models.Order{}} }

func (f *fakeOrders) Create(ctx context.Context, o models.Order) (models.Order, error) {
	o.ID = len(f.orders) + 1
	o.CreatedAt = time.Now()
	f.orders[o.ID] = o
	return o, nil
}

func (f *fakeOrders) GetByID(ctx context.Context, id int) (models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return models.Order{}, models.ErrOrderNotFound
	}
	return o, nil
}

func (f *fakeOrders) MarkSucceeded(ctx context.Context, id int, paymentID, method string) error {
	o, ok := f.orders[id]
	if !ok {
		return models.ErrOrderNotFound
	}
	o.PaymentStatus = models.PaymentStatusSucceeded
	o.PaymentID, o.PaymentMethod = paymentID, method
	f.orders[id] = o
	return nil
}

func (f *fakeOrders) FindFirstByAdvertisement(ctx context.Context, adID int) (models.Order, error) {
	return models.Order{}, models.ErrOrderNotFound
}

func (f *fakeOrders) ListByUser(ctx context.Context, userID int) ([]models.Order, error) {
	out := []models.Order{}
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

type fakePackages struct {
	pkgs map[int]models.Package
}

func (f *fakePackages) GetByID(ctx context.Context, id int) (models.Package, error) {
	p, ok := f.pkgs[id]
	if !ok {
		return models.Package{}, models.ErrPackageNotFound
	}
	return p, nil
}

func (f *fakePackages) List(ctx context.Context, activeOnly bool) ([]models.Package, error) {
	out := []models.Package{}
	for _, p := range f.pkgs {
		if !activeOnly || p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePackages) Create(ctx context.Context, p models.Package) (models.Package, error) {
	for _, existing := range f.pkgs {
		if existing.Name == p.Name {
			return models.Package{}, models.ErrDuplicatePackageName
		}
	}
	p.ID = len(f.pkgs) + 1
	f.pkgs[p.ID] = p
	return p, nil
}

func (f *fakePackages) Update(ctx context.Context, p models.Package) (models.Package, error) {
	if _, ok := f.pkgs[p.ID]; !ok {
		return models.Package{}, models.ErrPackageNotFound
	}
	f.pkgs[p.ID] = p
	return p, nil
}

func (f *fakePackages) Delete(ctx context.Context, id int) error {
	if _, ok := f.pkgs[id]; !ok {
		return models.ErrPackageNotFound
	}
	delete(f.pkgs, id)
	return nil
}

type fakeAds struct {
	ads     map[int]models.Advertisement
	touched bool
}

func (f *fakeAds) GetByID(ctx context.Context, id int) (models.Advertisement, error) {
	a, ok := f.ads[id]
	if !ok {
		return models.Advertisement{}, models.ErrAdvertisementNotFound
	}
	return a, nil
}

func (f *fakeAds) ApplyBoost(ctx context.Context, id int, until time.Time, packageID int) error {
	a := f.ads[id]
	a.IsBoosted, a.Visibility, a.BoostedUntil, a.PackageID = true, true, &until, &packageID
	f.ads[id] = a
	f.touched = true
	return nil
}

func (f *fakeAds) ClearBoost(ctx context.Context, id int) error { return nil }

func (f *fakeAds) ListBoostedBetween(ctx context.Context, from, to time.Time) ([]models.Advertisement, error) {
	return nil, nil
}

func (f *fakeAds) ListBoostedBefore(ctx context.Context, t time.Time) ([]models.Advertisement, error) {
	return nil, nil
}

type statusGateway struct {
	services.MockGateway
	status string
}

func (g *statusGateway) VerifyPayment(ctx context.Context, paymentID, intentID string) (services.PaymentVerification, error) {
	return services.PaymentVerification{Status: g.status, PaymentID: paymentID, PaymentIntentID: intentID}, nil
}

type failingMailer struct{ err error }

func (m failingMailer) Send(ctx context.Context, msg services.Email) (services.SendResult, error) {
	if m.err != nil {
		return services.SendResult{}, m.err
	}
	return services.SendResult{MessageID: "msg_1"}, nil
}

func withUser(r *http.Request, userID int, role string) *http.Request {
	ctx := context.WithValue(r.Context(), "user_id", userID)
	ctx = context.WithValue(ctx, "role", role)
	return r.WithContext(ctx)
}

func premiumPackages() *fakePackages {
	return &fakePackages{pkgs: map[int]models.Package{
		1: {ID: 1, Name: "Premium", Price: decimal.NewFromInt(1000), Duration: 7, IsActive: true},
	}}
}
