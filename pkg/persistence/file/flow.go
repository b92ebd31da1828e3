package file

import (
	"context"
	"sort"
	"time"

	"github.com/launchpath/launchpath/pkg/models"
)

const flowsCollection = "flows"

// FlowRepository handles flow-related file operations.
type FlowRepository struct {
	root string
}

// List returns all flows sorted by creation time, newest first.
func (r *FlowRepository) List(_ context.Context) ([]*models.Flow, error) {
	flows, err := listRecords[models.Flow](r.root, flowsCollection)
	if err != nil {
		return nil, err
	}

	sort.Slice(flows, func(i, j int) bool {
		return flows[i].CreatedAt.After(flows[j].CreatedAt)
	})

	return flows, nil
}

// GetByID retrieves a flow by its ID, or nil when it does not exist.
func (r *FlowRepository) GetByID(_ context.Context, id string) (*models.Flow, error) {
	return readRecord[models.Flow](r.root, flowsCollection, id)
}

// Save persists a flow with its step templates.
func (r *FlowRepository) Save(_ context.Context, flow *models.Flow) error {
	now := time.Now().UTC()
	if flow.CreatedAt.IsZero() {
		flow.CreatedAt = now
	}

	flow.UpdatedAt = now

	return writeRecord(r.root, flowsCollection, flow.ID, flow)
}

// Delete removes a flow by its ID. The caller is responsible for the
// active-onboardings guard; cascade of step templates is implicit since they
// live inside the flow record.
func (r *FlowRepository) Delete(_ context.Context, id string) error {
	return deleteRecord(r.root, flowsCollection, id)
}
