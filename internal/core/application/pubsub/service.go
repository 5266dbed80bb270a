package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tdex-network/arkd/internal/core/domain"
	"github.com/tdex-network/arkd/internal/core/ports"
)

const (
	EventRoundFinalized    = "ROUND_FINALIZED"
	EventRequestsDropped   = "REQUESTS_DROPPED"
	EventTransferCommitted = "TRANSFER_COMMITTED"
	EventAssetBred         = "ASSET_BRED"
)

var events = map[string]struct{}{
	EventRoundFinalized:    {},
	EventRequestsDropped:   {},
	EventTransferCommitted: {},
	EventAssetBred:         {},
	ports.AnyTopic:         {},
}

// Service publishes the coordinator events. A nil pubsub makes every publish
// a no-op.
type Service struct {
	pubsub ports.PubSub
}

func NewService(pubsub ports.PubSub) *Service {
	return &Service{pubsub}
}

func (s *Service) PubSub() ports.PubSub {
	return s.pubsub
}

func (s *Service) AddWebhook(
	_ context.Context, event, endpoint, secret string,
) (string, error) {
	if s.pubsub == nil {
		return "", fmt.Errorf("pubsub service not enabled")
	}
	if _, ok := events[event]; !ok {
		return "", fmt.Errorf("unknown webhook event %s", event)
	}
	return s.pubsub.Subscribe(event, endpoint, secret)
}

func (s *Service) RemoveWebhook(_ context.Context, id string) error {
	if s.pubsub == nil {
		return fmt.Errorf("pubsub service not enabled")
	}
	return s.pubsub.Unsubscribe(ports.UnspecifiedTopic, id)
}

func (s *Service) ListWebhooks(
	_ context.Context, event string,
) []ports.Subscription {
	if s.pubsub == nil {
		return nil
	}
	return s.pubsub.ListSubscriptionsForTopic(event)
}

func (s *Service) PublishRoundFinalizedEvent(
	round domain.Round, vtxos []domain.Vtxo,
) error {
	event := EventRoundFinalized
	payload := map[string]interface{}{
		"event":      event,
		"round":      getRoundPayload(round),
		"vtxos":      getVtxosPayload(vtxos),
		"timestamp":  round.Timestamp,
		"round_date": time.Unix(round.Timestamp, 0).Format(time.RFC3339),
	}
	return s.publish(event, payload)
}

func (s *Service) PublishRequestsDroppedEvent(
	height uint64, requests []domain.PendingRequest, reason error,
) error {
	event := EventRequestsDropped
	var reasonStr string
	if reason != nil {
		reasonStr = reason.Error()
	}
	dropped := make([]map[string]interface{}, 0, len(requests))
	for _, r := range requests {
		dropped = append(dropped, getOutputPayload(r.Output))
	}
	payload := map[string]interface{}{
		"event":        event,
		"round_height": height,
		"requests":     dropped,
		"reason":       reasonStr,
	}
	return s.publish(event, payload)
}

func (s *Service) PublishTransferCommittedEvent(
	inputs []domain.VtxoKey, outputs []domain.Output, fee uint64,
) error {
	event := EventTransferCommitted
	ins := make([]string, 0, len(inputs))
	for _, in := range inputs {
		ins = append(ins, in.String())
	}
	outs := make([]map[string]interface{}, 0, len(outputs))
	for _, out := range outputs {
		outs = append(outs, getOutputPayload(out))
	}
	payload := map[string]interface{}{
		"event":   event,
		"inputs":  ins,
		"outputs": outs,
		"fee":     fee,
	}
	return s.publish(event, payload)
}

func (s *Service) PublishAssetBredEvent(
	child domain.Asset, parents [2]string, locator domain.Locator,
) error {
	event := EventAssetBred
	payload := map[string]interface{}{
		"event":    event,
		"asset":    getAssetPayload(child),
		"parents":  parents,
		"locator":  locator,
		"identity": child.IdentityHash().String(),
	}
	return s.publish(event, payload)
}

func (s *Service) Close() {
	if s.pubsub != nil {
		s.pubsub.Close()
	}
}

func (s *Service) publish(event string, payload map[string]interface{}) error {
	if s.pubsub == nil {
		return nil
	}
	message, _ := json.Marshal(payload)
	return s.pubsub.Publish(event, string(message))
}
