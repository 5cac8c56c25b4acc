package notifiers

import (
	"context"

	"github.com/Fullex26/linenotify/pkg/models"
)

// Notifier sends payloads to an external channel
type Notifier interface {
	// Name returns the notifier identifier
	Name() string
	// Send delivers a payload. A response with any status code is a
	// delivery, not an error; err is set only when no response was received.
	Send(ctx context.Context, p models.Payload) (models.Delivery, error)
	// Test sends a test notification to verify configuration
	Test(ctx context.Context) (models.Delivery, error)
}
