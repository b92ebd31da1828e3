package file

import (
	"context"
	"sort"
	"time"

	"github.com/launchpath/launchpath/pkg/models"
)

const clientsCollection = "clients"

// ClientRepository handles client-related file operations.
type ClientRepository struct {
	root string
}

func (r *ClientRepository) List(_ context.Context) ([]*models.Client, error) {
	clients, err := listRecords[models.Client](r.root, clientsCollection)
	if err != nil {
		return nil, err
	}

	sort.Slice(clients, func(i, j int) bool {
		return clients[i].Name < clients[j].Name
	})

	return clients, nil
}

func (r *ClientRepository) GetByID(_ context.Context, id string) (*models.Client, error) {
	return readRecord[models.Client](r.root, clientsCollection, id)
}

func (r *ClientRepository) Save(_ context.Context, client *models.Client) error {
	now := time.Now().UTC()
	if client.CreatedAt.IsZero() {
		client.CreatedAt = now
	}

	client.UpdatedAt = now

	return writeRecord(r.root, clientsCollection, client.ID, client)
}

func (r *ClientRepository) Delete(_ context.Context, id string) error {
	return deleteRecord(r.root, clientsCollection, id)
}
