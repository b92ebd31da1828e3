package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/launchpath/launchpath/pkg/models"
	"github.com/launchpath/launchpath/pkg/persistence"
)

// Client manages the provider's client records.
type Client struct {
	persistence persistence.Persistence
	validator   *validator.Validate
}

// NewClient creates a new client service.
func NewClient(persist persistence.Persistence) *Client {
	return &Client{
		persistence: persist,
		validator:   validator.New(),
	}
}

// List retrieves all clients.
func (s *Client) List(ctx context.Context) ([]*models.Client, error) {
	clients, err := s.persistence.ClientRepository().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}

	return clients, nil
}

// FetchByID retrieves a client by its ID.
func (s *Client) FetchByID(ctx context.Context, id string) (*models.Client, error) {
	client, err := s.persistence.ClientRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if client == nil {
		return nil, ErrClientNotFound
	}

	return client, nil
}

// Create adds a new client.
func (s *Client) Create(ctx context.Context, client *models.Client) (*models.Client, error) {
	now := time.Now().UTC()
	client.ID = uuid.New().String()
	client.CreatedAt = now
	client.UpdatedAt = now

	if err := s.validator.Struct(client); err != nil {
		return nil, NewValidationError("createClient", "INVALID_CLIENT", err.Error(), ErrInvalidRequest)
	}

	if err := s.persistence.ClientRepository().Save(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

// Update modifies an existing client.
func (s *Client) Update(ctx context.Context, clientID string, client *models.Client) (*models.Client, error) {
	existing, err := s.FetchByID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	client.ID = clientID
	client.CreatedAt = existing.CreatedAt
	client.UpdatedAt = time.Now().UTC()

	if err := s.validator.Struct(client); err != nil {
		return nil, NewValidationError("updateClient", "INVALID_CLIENT", err.Error(), ErrInvalidRequest)
	}

	if err := s.persistence.ClientRepository().Save(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}

	return client, nil
}

// Delete removes a client together with their onboardings.
func (s *Client) Delete(ctx context.Context, clientID string) error {
	_, err := s.FetchByID(ctx, clientID)
	if err != nil {
		return err
	}

	onboardings, err := s.persistence.OnboardingRepository().GetByClient(ctx, clientID)
	if err != nil {
		return fmt.Errorf("failed to list onboardings of client %s: %w", clientID, err)
	}

	for _, onboarding := range onboardings {
		if err := s.persistence.OnboardingRepository().Delete(ctx, onboarding.ID); err != nil {
			return fmt.Errorf("failed to delete onboarding %s: %w", onboarding.ID, err)
		}
	}

	if err := s.persistence.ClientRepository().Delete(ctx, clientID); err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}

	return nil
}
