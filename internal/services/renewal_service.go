package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"classifiedsBack/internal/models"
)

// ReminderSender delivers boost reminders to the buyer recorded on an order.
type ReminderSender interface {
	SendReminder(ctx context.Context, ad models.Advertisement, order *models.Order, kind string) (bool, error)
}

type RunReport struct {
	ExpiringSoon int `json:"expiringSoon"`
	Reminded     int `json:"reminded"`
	Expired      int `json:"expired"`
	Notified     int `json:"notified"`
	Skipped      int `json:"skipped"`
	Failed       int `json:"failed"`
}

// RenewalService reminds buyers about boosts ending tomorrow and expires the
// ones that already ended.
type RenewalService struct {
	Ads      AdvertisementStore
	Orders   OrderStore
	Notifier ReminderSender
	Events   EventPublisher
	Location *time.Location
	Logger   *slog.Logger
}

func NewRenewalService(ads AdvertisementStore, orders OrderStore, notifier ReminderSender, events EventPublisher, loc *time.Location, logger *slog.Logger) *RenewalService {
	return &RenewalService{
		Ads:      ads,
		Orders:   orders,
		Notifier: notifier,
		Events:   events,
		Location: loc,
		Logger:   logger,
	}
}

// TomorrowWindow returns the first and last millisecond of the calendar day
// after now in loc.
func TomorrowWindow(now time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, loc)
	end := time.Date(local.Year(), local.Month(), local.Day()+2, 0, 0, 0, 0, loc).Add(-time.Millisecond)
	return start, end
}

// RunOnce performs the expiring-soon pass and then the expired pass for the
// given instant. A failure on one advertisement is logged and counted; the
// scan goes on. The returned error only reports a failed listing query.
func (s *RenewalService) RunOnce(ctx context.Context, now time.Time) (RunReport, error) {
	var report RunReport
	logger := s.logger().With("op", "RenewalRunOnce")

	var errs []error
	if err := s.remindExpiringSoon(ctx, now, &report); err != nil {
		logger.Error("expiring-soon pass failed", "err", err)
		errs = append(errs, err)
	}
	if err := s.expireEnded(ctx, now, &report); err != nil {
		logger.Error("expired pass failed", "err", err)
		errs = append(errs, err)
	}

	logger.Info("renewal run finished",
		"expiringSoon", report.ExpiringSoon,
		"reminded", report.Reminded,
		"expired", report.Expired,
		"notified", report.Notified,
		"skipped", report.Skipped,
		"failed", report.Failed,
	)
	return report, errors.Join(errs...)
}

func (s *RenewalService) remindExpiringSoon(ctx context.Context, now time.Time, report *RunReport) error {
	from, to := TomorrowWindow(now, s.Location)
	ads, err := s.Ads.ListBoostedBetween(ctx, from, to)
	if err != nil {
		return fmt.Errorf("list expiring advertisements: %w", err)
	}
	report.ExpiringSoon = len(ads)

	for _, ad := range ads {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.each(ad, report, func() error {
			order, err := s.findOrder(ctx, ad.ID)
			if err != nil {
				return err
			}
			sent, err := s.Notifier.SendReminder(ctx, ad, order, models.ReminderExpiringSoon)
			if err != nil {
				return err
			}
			if sent {
				report.Reminded++
			} else {
				report.Skipped++
			}
			s.publish(ad, order, models.BoostEventExpiring, now)
			return nil
		})
	}
	return nil
}

func (s *RenewalService) expireEnded(ctx context.Context, now time.Time, report *RunReport) error {
	ads, err := s.Ads.ListBoostedBefore(ctx, now)
	if err != nil {
		return fmt.Errorf("list expired advertisements: %w", err)
	}

	for _, ad := range ads {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.each(ad, report, func() error {
			if err := s.Ads.ClearBoost(ctx, ad.ID); err != nil {
				return err
			}
			report.Expired++

			order, err := s.findOrder(ctx, ad.ID)
			if err != nil {
				return err
			}
			sent, err := s.Notifier.SendReminder(ctx, ad, order, models.ReminderExpired)
			if err != nil {
				return err
			}
			if sent {
				report.Notified++
			} else {
				report.Skipped++
			}
			s.publish(ad, order, models.BoostEventExpired, now)
			return nil
		})
	}
	return nil
}

// each runs fn for one advertisement, turning errors and panics into a log
// line and a failure count.
func (s *RenewalService) each(ad models.Advertisement, report *RunReport, fn func() error) {
	logger := s.logger().With("advertisementId", ad.ID)
	defer func() {
		if r := recover(); r != nil {
			report.Failed++
			logger.Error("advertisement processing panicked", "panic", r)
		}
	}()
	if err := fn(); err != nil {
		report.Failed++
		logger.Error("advertisement processing failed", "err", err)
	}
}

// findOrder returns nil without an error when no order references the advertisement.
func (s *RenewalService) findOrder(ctx context.Context, adID int) (*models.Order, error) {
	order, err := s.Orders.FindFirstByAdvertisement(ctx, adID)
	if errors.Is(err, models.ErrOrderNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *RenewalService) publish(ad models.Advertisement, order *models.Order, eventType string, now time.Time) {
	if s.Events == nil {
		return
	}
	userID := ad.UserID
	event := models.BoostEvent{
		Type:            eventType,
		AdvertisementID: ad.ID,
		Title:           ad.Title,
		BoostedUntil:    ad.BoostedUntil,
		OccurredAt:      now.UTC(),
	}
	if order != nil {
		userID = order.UserID
		event.OrderID = order.ID
	}
	if userID <= 0 {
		return
	}
	s.Events.Publish(userID, event)
}

func (s *RenewalService) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
