package services

import (
	"time"

	"classifiedsBack/internal/models"
)

// ComputeBoostedUntil returns the new boost expiry for a package of durationDays.
// An existing expiry is extended even when it already lies in the past; only a
// never-boosted advertisement starts from now.
func ComputeBoostedUntil(now time.Time, existing *time.Time, durationDays int) (time.Time, error) {
	d, err := models.BoostDuration(durationDays)
	if err != nil {
		return time.Time{}, err
	}
	if existing != nil && !existing.IsZero() {
		return existing.Add(d).UTC(), nil
	}
	return now.Add(d).UTC(), nil
}
