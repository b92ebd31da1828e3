// Package postgresql provides the PostgreSQL persistence implementation.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	// Registers the postgres driver.
	_ "github.com/lib/pq"

	"github.com/launchpath/launchpath/pkg/persistence"
	"github.com/launchpath/launchpath/pkg/persistence/sqlbase"
)

// Persistence implements the persistence layer for PostgreSQL.
type Persistence struct {
	db               *sql.DB
	logger           *slog.Logger
	flowRepo         *FlowRepository
	clientRepo       *ClientRepository
	onboardingRepo   *OnboardingRepository
	notificationRepo *NotificationLogRepository
}

// NewPersistence creates a new PostgreSQL persistence layer and runs pending
// migrations.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Persistence{
		db:               database,
		logger:           logger,
		flowRepo:         &FlowRepository{db: database, logger: logger},
		clientRepo:       &ClientRepository{db: database, logger: logger},
		onboardingRepo:   &OnboardingRepository{db: database, logger: logger},
		notificationRepo: &NotificationLogRepository{db: database, logger: logger},
	}, nil
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// HealthCheck pings the database.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func (p *Persistence) FlowRepository() persistence.FlowRepository {
	return p.flowRepo
}

func (p *Persistence) ClientRepository() persistence.ClientRepository {
	return p.clientRepo
}

func (p *Persistence) OnboardingRepository() persistence.OnboardingRepository {
	return p.onboardingRepo
}

func (p *Persistence) NotificationLogRepository() persistence.NotificationLogRepository {
	return p.notificationRepo
}
