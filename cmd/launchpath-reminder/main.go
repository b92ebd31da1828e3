package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/launchpath/launchpath/pkg/cmd"
	"github.com/launchpath/launchpath/pkg/log"
	"github.com/launchpath/launchpath/pkg/notify"
	"github.com/launchpath/launchpath/pkg/otelhelper"
	"github.com/launchpath/launchpath/pkg/services"
	cli "github.com/urfave/cli/v3"
)

func main() {
	_ = godotenv.Load()

	logger := log.WithModule("reminder")

	command := &cli.Command{
		Name:                  "launchpath-reminder",
		Usage:                 "Send reminder emails for stalled onboardings",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence (postgres:// or a directory path)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus provider (kafka, gochannel)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "schedule",
				Usage:   "Cron expression for the sweep",
				Value:   "@hourly",
				Sources: cli.EnvVars("REMINDER_SCHEDULE"),
			},
			&cli.DurationFlag{
				Name:    "inactivity-threshold",
				Usage:   "Inactivity period before an onboarding is reminder-eligible",
				Value:   services.DefaultInactivityThreshold,
				Sources: cli.EnvVars("INACTIVITY_THRESHOLD"),
			},
			&cli.StringFlag{
				Name:    "public-url",
				Usage:   "Externally reachable base URL of the API, used in portal links",
				Value:   "http://localhost:9090",
				Sources: cli.EnvVars("PUBLIC_URL"),
			},
			&cli.BoolFlag{
				Name:  "once",
				Usage: "Run a single sweep and exit",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger.InfoContext(ctx, "Initializing LaunchPath reminder scheduler")

			tracer, err := otelhelper.NewTracer(ctx, "launchpath-reminder")
			if err != nil {
				return err
			}

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus := cmd.NewEventBus(command.String("event-bus"), "launchpath-reminder", logger)
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			notifier := notify.NewNotifier(
				logger, notify.NewLogMailer(logger), persistence, command.String("public-url"),
			)
			reminder := services.NewReminder(
				logger, persistence, notifier, eventBus, command.Duration("inactivity-threshold"),
			)

			sweeper := NewSweeper(logger, reminder, tracer, command.String("schedule"))

			if command.Bool("once") {
				sweeper.RunOnce(ctx)

				return nil
			}

			runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return sweeper.Start(runCtx)
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
