package services

import (
	"context"
	"time"

	"classifiedsBack/internal/models"
)

type OrderStore interface {
	Create(ctx context.Context, order models.Order) (models.Order, error)
	GetByID(ctx context.Context, id int) (models.Order, error)
	MarkSucceeded(ctx context.Context, id int, paymentID, method string) error
	FindFirstByAdvertisement(ctx context.Context, advertisementID int) (models.Order, error)
	ListByUser(ctx context.Context, userID int) ([]models.Order, error)
}

type PackageStore interface {
	GetByID(ctx context.Context, id int) (models.Package, error)
	List(ctx context.Context, activeOnly bool) ([]models.Package, error)
	Create(ctx context.Context, pkg models.Package) (models.Package, error)
	Update(ctx context.Context, pkg models.Package) (models.Package, error)
	Delete(ctx context.Context, id int) error
}

type AdvertisementStore interface {
	GetByID(ctx context.Context, id int) (models.Advertisement, error)
	ApplyBoost(ctx context.Context, id int, boostedUntil time.Time, packageID int) error
	ClearBoost(ctx context.Context, id int) error
	ListBoostedBetween(ctx context.Context, from, to time.Time) ([]models.Advertisement, error)
	ListBoostedBefore(ctx context.Context, t time.Time) ([]models.Advertisement, error)
}

// EventPublisher delivers boost events to a user's live connection, if any.
type EventPublisher interface {
	Publish(userID int, event models.BoostEvent)
}

// Clock returns the current instant. A nil Clock means time.Now.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}
