package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"classifiedsBack/internal/models"
)

type memOrders struct {
	mu     sync.Mutex
	nextID int
	orders map[int]models.Order
}

func newMemOrders() *memOrders {
	return &memOrders{orders: map[int]models.Order{}}
}

func (m *memOrders) Create(ctx context.Context, order models.Order) (models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	order.ID = m.nextID
	order.CreatedAt = time.Now().UTC()
	order.UpdatedAt = order.CreatedAt
	m.orders[order.ID] = order
	return order, nil
}

func (m *memOrders) GetByID(ctx context.Context, id int) (models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return models.Order{}, models.ErrOrderNotFound
	}
	return o, nil
}

func (m *memOrders) MarkSucceeded(ctx context.Context, id int, paymentID, method string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return models.ErrOrderNotFound
	}
	o.PaymentStatus = models.PaymentStatusSucceeded
	o.PaymentID = paymentID
	o.PaymentMethod = method
	m.orders[id] = o
	return nil
}

func (m *memOrders) FindFirstByAdvertisement(ctx context.Context, advertisementID int) (models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int, 0, len(m.orders))
	for id := range m.orders {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if m.orders[id].AdvertisementID == advertisementID {
			return m.orders[id], nil
		}
	}
	return models.Order{}, models.ErrOrderNotFound
}

func (m *memOrders) ListByUser(ctx context.Context, userID int) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Order{}
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memPackages struct {
	packages map[int]models.Package
}

func newMemPackages(pkgs ...models.Package) *memPackages {
	m := &memPackages{packages: map[int]models.Package{}}
	for _, p := range pkgs {
		m.packages[p.ID] = p
	}
	return m
}

func (m *memPackages) GetByID(ctx context.Context, id int) (models.Package, error) {
	p, ok := m.packages[id]
	if !ok {
		return models.Package{}, models.ErrPackageNotFound
	}
	return p, nil
}

func (m *memPackages) List(ctx context.Context, activeOnly bool) ([]models.Package, error) {
	out := []models.Package{}
	for _, p := range m.packages {
		if activeOnly && !p.IsActive {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memPackages) Create(ctx context.Context, pkg models.Package) (models.Package, error) {
	for _, p := range m.packages {
		if p.Name == pkg.Name {
			return models.Package{}, models.ErrDuplicatePackageName
		}
	}
	pkg.ID = len(m.packages) + 1
	m.packages[pkg.ID] = pkg
	return pkg, nil
}

func (m *memPackages) Update(ctx context.Context, pkg models.Package) (models.Package, error) {
	if _, ok := m.packages[pkg.ID]; !ok {
		return models.Package{}, models.ErrPackageNotFound
	}
	m.packages[pkg.ID] = pkg
	return pkg, nil
}

func (m *memPackages) Delete(ctx context.Context, id int) error {
	if _, ok := m.packages[id]; !ok {
		return models.ErrPackageNotFound
	}
	delete(m.packages, id)
	return nil
}

type memAds struct {
	mu         sync.Mutex
	ads        map[int]models.Advertisement
	applyCalls int
	applyErr   error
	clearCalls int
	clearErr   map[int]error
}

func newMemAds(ads ...models.Advertisement) *memAds {
	m := &memAds{ads: map[int]models.Advertisement{}, clearErr: map[int]error{}}
	for _, a := range ads {
		m.ads[a.ID] = a
	}
	return m
}

func (m *memAds) GetByID(ctx context.Context, id int) (models.Advertisement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.ads[id]
	if !ok {
		return models.Advertisement{}, models.ErrAdvertisementNotFound
	}
	return a, nil
}

func (m *memAds) ApplyBoost(ctx context.Context, id int, boostedUntil time.Time, packageID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.ads[id]
	if !ok {
		return models.ErrAdvertisementNotFound
	}
	if m.applyErr != nil {
		return m.applyErr
	}
	m.applyCalls++
	a.IsBoosted = true
	a.Visibility = true
	a.BoostedUntil = &boostedUntil
	a.PackageID = &packageID
	m.ads[id] = a
	return nil
}

func (m *memAds) ClearBoost(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.clearErr[id]; err != nil {
		return err
	}
	a, ok := m.ads[id]
	if !ok {
		return models.ErrAdvertisementNotFound
	}
	m.clearCalls++
	a.IsBoosted = false
	a.Visibility = false
	a.BoostedUntil = nil
	m.ads[id] = a
	return nil
}

func (m *memAds) ListBoostedBetween(ctx context.Context, from, to time.Time) ([]models.Advertisement, error) {
	return m.filter(func(a models.Advertisement) bool {
		return !a.BoostedUntil.Before(from) && !a.BoostedUntil.After(to)
	}), nil
}

func (m *memAds) ListBoostedBefore(ctx context.Context, t time.Time) ([]models.Advertisement, error) {
	return m.filter(func(a models.Advertisement) bool { return a.BoostedUntil.Before(t) }), nil
}

func (m *memAds) filter(match func(models.Advertisement) bool) []models.Advertisement {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Advertisement
	for _, a := range m.ads {
		if a.IsBoosted && a.BoostedUntil != nil && match(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type stubGateway struct {
	status    string
	createErr error
	created   int
	verified  []string
}

func (g *stubGateway) CreatePaymentIntent(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (PaymentIntent, error) {
	if g.createErr != nil {
		return PaymentIntent{}, g.createErr
	}
	g.created++
	id := fmt.Sprintf("pi_test_%d", g.created)
	return PaymentIntent{ID: id, ClientSecret: id + "_secret", Amount: amount, Currency: currency}, nil
}

func (g *stubGateway) VerifyPayment(ctx context.Context, paymentID, paymentIntentID string) (PaymentVerification, error) {
	g.verified = append(g.verified, paymentIntentID)
	status := g.status
	if status == "" {
		status = VerificationSucceeded
	}
	return PaymentVerification{Status: status, PaymentID: paymentID, PaymentIntentID: paymentIntentID, PaymentMethod: "card"}, nil
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []Email
	err  error
}

func (m *recordingMailer) Send(ctx context.Context, msg Email) (SendResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return SendResult{}, m.err
	}
	m.sent = append(m.sent, msg)
	return SendResult{MessageID: fmt.Sprintf("msg_%d", len(m.sent))}, nil
}

type recordingEvents struct {
	mu     sync.Mutex
	events map[int][]models.BoostEvent
}

func newRecordingEvents() *recordingEvents {
	return &recordingEvents{events: map[int][]models.BoostEvent{}}
}

func (r *recordingEvents) Publish(userID int, event models.BoostEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[userID] = append(r.events[userID], event)
}

type recordingArchive struct {
	keys []string
	err  error
}

func (a *recordingArchive) Upload(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.keys = append(a.keys, key)
	return "https://bucket.example.com/" + key, nil
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func timePtr(t time.Time) *time.Time { return &t }

func testBuyer() models.BuyerContact {
	return models.BuyerContact{
		Name:         "Jane Buyer",
		Country:      "US",
		AddressLine1: "1 Main St",
		City:         "Springfield",
		State:        "IL",
		Zip:          "62701",
		Phone:        "+15555550100",
		Email:        "buyer@example.com",
	}
}
