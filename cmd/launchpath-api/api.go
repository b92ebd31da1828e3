// Package main provides the LaunchPath API server implementation.
package main

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/static"
	"github.com/launchpath/launchpath/pkg/cache"
	"github.com/launchpath/launchpath/pkg/eventbus"
	"github.com/launchpath/launchpath/pkg/notify"
	"github.com/launchpath/launchpath/pkg/persistence"
	"github.com/launchpath/launchpath/pkg/services"
	"github.com/launchpath/launchpath/pkg/steps"
	"github.com/launchpath/launchpath/pkg/storage"
	"github.com/launchpath/launchpath/pkg/web"
)

// APIConfig carries the deployment-specific knobs the route wiring needs.
type APIConfig struct {
	BlobDir             string
	CronSecret          string
	InactivityThreshold time.Duration
}

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	registry    *steps.Registry
	eventBus    eventbus.EventBus
	tokens      cache.TokenCache
	store       storage.BlobStore
	notifier    *notify.Notifier
	config      APIConfig
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	registry *steps.Registry,
	eventBus eventbus.EventBus,
	tokens cache.TokenCache,
	store storage.BlobStore,
	notifier *notify.Notifier,
	config APIConfig,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		registry:    registry,
		eventBus:    eventBus,
		tokens:      tokens,
		store:       store,
		notifier:    notifier,
		config:      config,
	}
}

func (a *API) App() *fiber.App {
	flowService := services.NewFlow(a.persistence, a.registry)
	clientService := services.NewClient(a.persistence)
	onboardingService := services.NewOnboarding(a.logger, a.persistence, a.eventBus)
	progressService := services.NewProgress(a.logger, a.persistence, a.registry, a.eventBus, a.tokens)
	uploadService := services.NewUpload(a.logger, a.persistence, progressService, a.store)
	reminderService := services.NewReminder(a.logger, a.persistence, a.notifier, a.eventBus, a.config.InactivityThreshold)

	handlers := web.NewAPIHandlers(flowService, clientService, onboardingService, reminderService, a.registry)
	portal := web.NewPortalHandlers(progressService, uploadService)
	jobs := web.NewJobHandlers(reminderService, a.config.CronSecret)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("LaunchPath API")
	})

	f := app.Group("/flows")
	f.Get("/", handlers.GetFlows)
	f.Post("/", handlers.CreateFlow)
	f.Get("/:id", handlers.GetFlow)
	f.Patch("/:id", handlers.UpdateFlow)
	f.Delete("/:id", handlers.DeleteFlow)
	f.Post("/:id/publish", handlers.PublishFlow)
	f.Post("/:id/archive", handlers.ArchiveFlow)

	c := app.Group("/clients")
	c.Get("/", handlers.GetClients)
	c.Post("/", handlers.CreateClient)
	c.Get("/:id", handlers.GetClient)
	c.Patch("/:id", handlers.UpdateClient)
	c.Delete("/:id", handlers.DeleteClient)
	c.Get("/:id/onboardings", handlers.GetClientOnboardings)
	c.Post("/:id/reminders", handlers.SendClientReminder)

	o := app.Group("/onboardings")
	o.Get("/", handlers.GetOnboardings)
	o.Post("/", handlers.AssignFlow)
	o.Get("/:id", handlers.GetOnboarding)
	o.Delete("/:id", handlers.DeleteOnboarding)
	o.Post("/:id/reminders", handlers.SendReminder)

	// Client-facing portal, authenticated solely by the path token.
	p := app.Group("/portal/:token")
	p.Get("/", portal.GetOnboarding)
	p.Post("/steps/:stepProgressId", portal.SubmitStep)
	p.Post("/steps/:stepProgressId/files", portal.UploadFile)

	j := app.Group("/jobs")
	j.Post("/reminders/sweep", jobs.SweepReminders)

	if a.config.BlobDir != "" {
		app.Use("/files", static.New(a.config.BlobDir))
	}

	app.Get("/health", handlers.HealthCheck)

	return app
}

// Start registers the notification handlers on the event bus and serves the
// API until the listener fails.
func (a *API) Start(ctx context.Context, port int) error {
	if err := a.notifier.RegisterHandlers(a.eventBus); err != nil {
		return err
	}

	if err := a.eventBus.Subscribe(ctx); err != nil {
		return err
	}

	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
