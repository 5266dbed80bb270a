package pubsub

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/tdex-network/arkd/internal/core/ports"
)

// Subscription is a webhook registered for an event, or for any event if
// Event is ports.AnyTopic. Secret, if set, is the key the bearer tokens
// sent to Endpoint are signed with and is never serialized.
type Subscription struct {
	ID       string `json:"id"`
	Event    string `json:"event"`
	Endpoint string `json:"endpoint"`
	Secret   string `json:"-"`
}

type subscriptions []Subscription

func (s subscriptions) toPortable() []ports.Subscription {
	subs := make([]ports.Subscription, 0, len(s))
	for i := range s {
		sub := s[i]
		subs = append(subs, &sub)
	}
	return subs
}

func NewSubscription(event, endpoint, secret string) (*Subscription, error) {
	event = strings.TrimSpace(event)
	if len(event) <= 0 {
		return nil, fmt.Errorf("missing event")
	}
	u, err := url.ParseRequestURI(endpoint)
	if err != nil || len(u.Host) <= 0 {
		return nil, fmt.Errorf("invalid webhook endpoint, must be an absolute url")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid webhook endpoint scheme %s", u.Scheme)
	}

	return &Subscription{
		ID:       uuid.New().String(),
		Event:    event,
		Endpoint: endpoint,
		Secret:   secret,
	}, nil
}

func (s *Subscription) Topic() string    { return s.Event }
func (s *Subscription) Id() string       { return s.ID }
func (s *Subscription) NotifyAt() string { return s.Endpoint }
func (s *Subscription) IsSecured() bool  { return len(s.Secret) > 0 }
