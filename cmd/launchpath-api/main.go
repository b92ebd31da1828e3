package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/launchpath/launchpath/pkg/cmd"
	"github.com/launchpath/launchpath/pkg/log"
	"github.com/launchpath/launchpath/pkg/notify"
	"github.com/launchpath/launchpath/pkg/services"
	"github.com/launchpath/launchpath/pkg/steps"
	"github.com/launchpath/launchpath/pkg/storage"
	cli "github.com/urfave/cli/v3"
)

const defaultPort = 9090

func main() {
	_ = godotenv.Load()

	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "launchpath-api",
		Usage:                 "Manage onboarding flows, clients and the client portal",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
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
				Name:    "redis-url",
				Usage:   "Redis URL for portal token caching (optional)",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.StringFlag{
				Name:    "blob-dir",
				Usage:   "Directory for uploaded client files",
				Value:   "./data/files",
				Sources: cli.EnvVars("BLOB_DIR"),
			},
			&cli.StringFlag{
				Name:    "public-url",
				Usage:   "Externally reachable base URL of this API",
				Value:   "http://localhost:9090",
				Sources: cli.EnvVars("PUBLIC_URL"),
			},
			&cli.StringFlag{
				Name:    "cron-secret",
				Usage:   "Bearer secret for the scheduled job endpoints",
				Sources: cli.EnvVars("CRON_SECRET"),
			},
			&cli.DurationFlag{
				Name:    "inactivity-threshold",
				Usage:   "Inactivity period before an onboarding is reminder-eligible",
				Value:   services.DefaultInactivityThreshold,
				Sources: cli.EnvVars("INACTIVITY_THRESHOLD"),
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

			logger.InfoContext(ctx, "Initializing LaunchPath API")

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus := cmd.NewEventBus(command.String("event-bus"), "launchpath-api", logger)
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			tokens := cmd.NewTokenCache(ctx, logger, command.String("redis-url"))
			defer func() {
				if err := tokens.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close token cache", "error", err)
				}
			}()

			publicURL := command.String("public-url")
			store := storage.NewLocalBlobStore(logger, command.String("blob-dir"), publicURL+"/files")
			notifier := notify.NewNotifier(logger, notify.NewLogMailer(logger), persistence, publicURL)

			api := NewAPI(
				logger,
				persistence,
				steps.NewRegistry(logger),
				eventBus,
				tokens,
				store,
				notifier,
				APIConfig{
					BlobDir:             command.String("blob-dir"),
					CronSecret:          command.String("cron-secret"),
					InactivityThreshold: command.Duration("inactivity-threshold"),
				},
			)

			err = api.Start(ctx, command.Int("port"))
			if err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)
			}

			return nil
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
