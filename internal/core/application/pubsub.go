package application

import (
	"context"

	"github.com/tdex-network/arkd/internal/core/application/pubsub"
	"github.com/tdex-network/arkd/internal/core/ports"
)

type PubSubService interface {
	AddWebhook(ctx context.Context, event, endpoint, secret string) (string, error)
	RemoveWebhook(ctx context.Context, id string) error
	ListWebhooks(ctx context.Context, event string) []ports.Subscription
	Close()
}

// NewPubSubService returns the service publishing coordinator events through
// the given pubsub. It accepts a nil pubsub, in which case events are simply
// discarded.
func NewPubSubService(ps ports.PubSub) PubSubService {
	return pubsub.NewService(ps)
}
