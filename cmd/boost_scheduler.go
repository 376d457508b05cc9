package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"classifiedsBack/internal/services"
)

type boostSchedule struct {
	Hour       int
	Minute     int
	Location   *time.Location
	Timeout    time.Duration
	RunOnStart bool
}

// nextRun returns the first hour:minute in loc strictly after now.
func nextRun(now time.Time, hour, minute int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, hour, minute, 0, 0, loc)
	}
	return next
}

func startBoostScheduler(ctx context.Context, svc *services.RenewalService, sched boostSchedule, infoLog, errorLog *log.Logger) {
	if svc == nil {
		return
	}
	if sched.Timeout <= 0 {
		sched.Timeout = 5 * time.Minute
	}

	go func() {
		if sched.RunOnStart {
			runBoostRenewal(ctx, svc, sched.Timeout, infoLog, errorLog)
		}

		for {
			next := nextRun(time.Now(), sched.Hour, sched.Minute, sched.Location)
			infoLog.Printf("boost scheduler: next run at %s", next.Format(time.RFC3339))
			timer := time.NewTimer(time.Until(next))

			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
				runBoostRenewal(ctx, svc, sched.Timeout, infoLog, errorLog)
			}
		}
	}()
}

// runBoostRenewal executes one pass. Errors and panics are logged, never propagated.
func runBoostRenewal(ctx context.Context, svc *services.RenewalService, timeout time.Duration, infoLog, errorLog *log.Logger) {
	defer func() {
		if r := recover(); r != nil {
			errorLog.Printf("boost scheduler: run panicked: %v", fmt.Sprint(r))
		}
	}()

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	report, err := svc.RunOnce(runCtx, time.Now())
	if err != nil {
		errorLog.Printf("boost scheduler: run failed: %v", err)
	}
	infoLog.Printf("boost scheduler: %d expiring soon (%d reminded), %d expired (%d notified), %d skipped, %d failed",
		report.ExpiringSoon, report.Reminded, report.Expired, report.Notified, report.Skipped, report.Failed)
}
