// Package file provides a file-based persistence implementation for local
// development and tests.
package file

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/launchpath/launchpath/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface using the file
// system. A single mutex serializes onboarding mutations, which is what gives
// the conditional step-completion write its compare-and-swap semantics here.
type Persistence struct {
	root             string
	mu               sync.Mutex
	flowRepo         *FlowRepository
	clientRepo       *ClientRepository
	onboardingRepo   *OnboardingRepository
	notificationRepo *NotificationLogRepository
}

// NewPersistence creates a new instance of Persistence rooted at the given
// directory.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	p := &Persistence{root: cleanRoot}
	p.flowRepo = &FlowRepository{root: cleanRoot}
	p.clientRepo = &ClientRepository{root: cleanRoot}
	p.onboardingRepo = &OnboardingRepository{root: cleanRoot, mu: &p.mu}
	p.notificationRepo = &NotificationLogRepository{root: cleanRoot}

	return p
}

// Close performs any necessary cleanup. For file-based persistence, there is
// nothing to clean up.
func (p *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck verifies the root directory exists.
func (p *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(p.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
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
