package events

import (
	"context"
	"encoding/json"

	"github.com/yashrajoria/luxe-storefront/models"
)

// Publisher emits order integration events.
type Publisher interface {
	Publish(ctx context.Context, event models.OrderEvent) error
	Close() error
}

// Noop drops every event. It backs EVENTS_BACKEND=none.
type Noop struct{}

func (Noop) Publish(context.Context, models.OrderEvent) error { return nil }
func (Noop) Close() error                                     { return nil }

func encode(event models.OrderEvent) ([]byte, error) {
	return json.Marshal(event)
}
