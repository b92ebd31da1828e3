package web

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/launchpath/launchpath/pkg/services"
)

// JobHandlers serves scheduler-invoked endpoints. They are guarded by a
// shared bearer secret instead of a portal token or provider session.
type JobHandlers struct {
	reminderService *services.Reminder
	secret          string
}

func NewJobHandlers(reminderService *services.Reminder, secret string) *JobHandlers {
	return &JobHandlers{
		reminderService: reminderService,
		secret:          secret,
	}
}

// authorize checks the Authorization bearer token in constant time.
func (h *JobHandlers) authorize(c fiber.Ctx) bool {
	if h.secret == "" {
		return false
	}

	header := c.Get("Authorization")

	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(token), []byte(h.secret)) == 1
}

// SweepReminders runs the reminder sweep and returns its summary.
func (h *JobHandlers) SweepReminders(c fiber.Ctx) error {
	if !h.authorize(c) {
		return unauthorized(c)
	}

	result, err := h.reminderService.Sweep(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(result)
}
