// Package main provides the LaunchPath reminder scheduler.
package main

import (
	"context"
	"log/slog"

	"github.com/launchpath/launchpath/pkg/otelhelper"
	"github.com/launchpath/launchpath/pkg/services"
	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Sweeper runs the reminder sweep on a cron schedule. Overlapping runs are
// skipped rather than queued, so a slow sweep never piles up behind itself.
type Sweeper struct {
	logger   *slog.Logger
	reminder *services.Reminder
	tracer   trace.Tracer
	schedule string
}

func NewSweeper(logger *slog.Logger, reminder *services.Reminder, tracer trace.Tracer, schedule string) *Sweeper {
	return &Sweeper{
		logger:   logger,
		reminder: reminder,
		tracer:   tracer,
		schedule: schedule,
	}
}

// Start blocks until the context is cancelled.
func (s *Sweeper) Start(ctx context.Context) error {
	scheduler := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	_, err := scheduler.AddFunc(s.schedule, func() {
		s.RunOnce(ctx)
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Reminder sweep scheduled", "schedule", s.schedule)
	scheduler.Start()

	<-ctx.Done()

	stopCtx := scheduler.Stop()
	<-stopCtx.Done()

	return nil
}

// RunOnce executes a single sweep and logs its summary.
func (s *Sweeper) RunOnce(ctx context.Context) {
	spanCtx, span := otelhelper.StartSpan(ctx, s.tracer, "reminder.sweep")
	defer span.End()

	result, err := s.reminder.Sweep(spanCtx)
	if err != nil {
		otelhelper.SetError(span, err)
		s.logger.ErrorContext(spanCtx, "Reminder sweep failed", "error", err)

		return
	}

	span.SetAttributes(
		attribute.Int("launchpath.sweep.candidates", result.CandidateCount),
		attribute.Int("launchpath.sweep.sent", result.SentCount),
	)

	s.logger.InfoContext(spanCtx, "Reminder sweep finished",
		"candidates", result.CandidateCount,
		"sent", result.SentCount,
	)
}
