package models

import (
	"fmt"
	"strings"
	"time"
)

// MillisPerDay is the length of one boost day.
const MillisPerDay int64 = 86_400_000

const (
	ReminderExpiringSoon = "expiring-soon"
	ReminderExpired      = "expired"
)

const (
	BoostEventActivated = "boost.activated"
	BoostEventExpiring  = "boost.expiring"
	BoostEventExpired   = "boost.expired"
)

// Advertisement carries the boost-relevant subset of a listing.
type Advertisement struct {
	ID           int        `json:"id"`
	UserID       int        `json:"userId"`
	Title        string     `json:"title"`
	IsBoosted    bool       `json:"isBoosted"`
	Visibility   bool       `json:"visibility"`
	BoostedUntil *time.Time `json:"boostedUntil"`
	PackageID    *int       `json:"packageId"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// BoostDuration converts a package duration in days to a time.Duration.
func BoostDuration(days int) (time.Duration, error) {
	if days <= 0 {
		return 0, fmt.Errorf("%w: boost duration must be positive, got %d", ErrValidation, days)
	}
	return time.Duration(int64(days)*MillisPerDay) * time.Millisecond, nil
}

func ValidReminderKind(kind string) bool {
	switch strings.TrimSpace(kind) {
	case ReminderExpiringSoon, ReminderExpired:
		return true
	}
	return false
}

// BoostEvent is pushed to a buyer's live connection.
type BoostEvent struct {
	Type            string     `json:"type"`
	AdvertisementID int        `json:"advertisementId"`
	OrderID         int        `json:"orderId,omitempty"`
	Title           string     `json:"title,omitempty"`
	BoostedUntil    *time.Time `json:"boostedUntil,omitempty"`
	OccurredAt      time.Time  `json:"occurredAt"`
}
