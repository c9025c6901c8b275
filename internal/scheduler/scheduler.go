// Package scheduler runs the periodic service-reminder sweep. Clock,
// storage and dispatcher are injected so sweeps are testable without real
// time or a real mail server.
package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"equiptrack/internal/models"
	"equiptrack/internal/reminder"
	"equiptrack/internal/services"

	"go.uber.org/zap"
)

// Clock supplies the current time. Tests inject a fixed or stepped clock.
type Clock func() time.Time

// ReminderSource is the scheduler's view of storage.
type ReminderSource interface {
	FindRemindersDue(from, to time.Time) ([]models.Equipment, error)
	MarkNotified(id string) error
}

// SweepResult counts what one sweep did.
type SweepResult struct {
	Sent    int
	Failed  int
	Skipped int
}

type Scheduler struct {
	source          ReminderSource
	mailer          services.Mailer
	clock           Clock
	hour            int
	dispatchTimeout time.Duration
	log             *zap.Logger

	// Guards against overlapping sweeps if the cadence is ever shortened.
	running atomic.Bool
}

func New(source ReminderSource, mailer services.Mailer, clock Clock, hour int, dispatchTimeout time.Duration, log *zap.Logger) *Scheduler {
	return &Scheduler{
		source:          source,
		mailer:          mailer,
		clock:           clock,
		hour:            hour,
		dispatchTimeout: dispatchTimeout,
		log:             log,
	}
}

// Start runs one sweep immediately, then once per day at the configured
// hour until the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.log.Info("reminder scheduler started", zap.Int("daily_hour", s.hour))
	s.RunSweep(ctx)

	for {
		next := s.nextRun(s.clock())
		timer := time.NewTimer(next.Sub(s.clock()))
		select {
		case <-ctx.Done():
			timer.Stop()
			s.log.Info("reminder scheduler stopped")
			return
		case <-timer.C:
			s.RunSweep(ctx)
		}
	}
}

// RunSweep executes one scan-and-dispatch cycle. Records are handled
// sequentially and state is persisted per record immediately after a
// confirmed dispatch, so a crash mid-sweep can duplicate at most the
// single in-flight reminder. A concurrent invocation while a sweep is
// running is a no-op.
func (s *Scheduler) RunSweep(ctx context.Context) SweepResult {
	var result SweepResult

	if !s.running.CompareAndSwap(false, true) {
		s.log.Warn("sweep already in progress, skipping")
		return result
	}
	defer s.running.Store(false)

	now := s.clock()
	from, to := reminder.Window(now)

	due, err := s.source.FindRemindersDue(from, to)
	if err != nil {
		s.log.Error("reminder query failed", zap.Error(err))
		return result
	}

	s.log.Info("service reminder sweep",
		zap.Time("window_start", from),
		zap.Time("window_end", to),
		zap.Int("due", len(due)))

	for i := range due {
		eq := &due[i]

		if eq.Owner == nil || eq.Owner.Email == "" {
			// No resolvable contact address; the record keeps its state
			// and stays eligible once an address exists.
			result.Skipped++
			continue
		}

		if err := s.dispatch(ctx, eq); err != nil {
			// Dispatch failures never abort the batch; the record stays
			// armed and is retried on the next run.
			s.log.Warn("reminder dispatch failed",
				zap.String("equipment_id", eq.ID),
				zap.String("title", eq.Title),
				zap.Error(err))
			result.Failed++
			continue
		}

		if err := s.source.MarkNotified(eq.ID); err != nil {
			s.log.Error("failed to persist notification state",
				zap.String("equipment_id", eq.ID), zap.Error(err))
			result.Failed++
			continue
		}

		s.log.Info("reminder sent",
			zap.String("equipment_id", eq.ID),
			zap.String("title", eq.Title),
			zap.String("recipient", eq.Owner.Email))
		result.Sent++
	}

	s.log.Info("service reminder sweep complete",
		zap.Int("sent", result.Sent),
		zap.Int("failed", result.Failed),
		zap.Int("skipped", result.Skipped))

	return result
}

func (s *Scheduler) dispatch(ctx context.Context, eq *models.Equipment) error {
	summary := services.ReminderSummary{
		EquipmentID:  eq.ID,
		Title:        eq.Title,
		Model:        eq.Model,
		Location:     eq.Location,
		DueDate:      eq.ServiceExpiryDate.Format("January 2, 2006"),
		DaysUntilDue: reminder.DaysUntil(*eq.ServiceExpiryDate, s.clock()),
	}
	if eq.SerialNumber != nil {
		summary.SerialNumber = *eq.SerialNumber
	}

	cctx, cancel := context.WithTimeout(ctx, s.dispatchTimeout)
	defer cancel()
	return s.mailer.SendServiceReminder(cctx, eq.Owner.Email, summary)
}

// nextRun returns the next daily slot at the configured hour strictly
// after now.
func (s *Scheduler) nextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), s.hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
