package pubsub

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/tdex-network/arkd/internal/core/ports"
	"github.com/tdex-network/arkd/pkg/circuitbreaker"
	"go.uber.org/ratelimit"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultRequestTimeout = 15 * time.Second
	tokenIssuer           = "arkd"
)

var (
	// ErrSubscriptionNotFound ...
	ErrSubscriptionNotFound = errors.New("webhook not found")
)

type service struct {
	store   *store
	client  *webhookClient
	limiter ratelimit.Limiter

	// one breaker per endpoint, so that a broken endpoint doesn't prevent
	// notifying the others.
	breakersLock *sync.Mutex
	breakers     map[string]*gobreaker.CircuitBreaker
}

// NewService returns a pubsub that notifies its subscribers by POSTing the
// published messages to their endpoints. At most rateLimit requests per
// second are sent, no limit is applied if it's not positive.
func NewService(
	rateLimit int, requestTimeout time.Duration,
) (ports.PubSub, error) {
	if requestTimeout <= 0 {
		return nil, fmt.Errorf("request timeout must be greater than zero")
	}

	limiter := ratelimit.NewUnlimited()
	if rateLimit > 0 {
		limiter = ratelimit.New(rateLimit)
	}

	return &service{
		store:        newStore(),
		client:       newWebhookClient(requestTimeout),
		limiter:      limiter,
		breakersLock: &sync.Mutex{},
		breakers:     make(map[string]*gobreaker.CircuitBreaker),
	}, nil
}

func (ws *service) Subscribe(topic, endpoint, secret string) (string, error) {
	sub, err := NewSubscription(topic, endpoint, secret)
	if err != nil {
		return "", err
	}

	for _, s := range ws.store.get(sub.Event, false) {
		if s.Endpoint == sub.Endpoint && s.Secret == sub.Secret {
			return s.ID, nil
		}
	}

	ws.store.add(*sub)
	return sub.ID, nil
}

func (ws *service) Unsubscribe(_, id string) error {
	if !ws.store.remove(id) {
		return ErrSubscriptionNotFound
	}
	return nil
}

func (ws *service) ListSubscriptionsForTopic(topic string) []ports.Subscription {
	return ws.listSubscriptionsForTopic(topic).toPortable()
}

func (ws *service) Publish(topic string, message string) error {
	return ws.publishForTopic(topic, message)
}

func (ws *service) Close() {
	ws.store.clear()
}

func (ws *service) listSubscriptionsForTopic(topic string) subscriptions {
	if topic == ports.UnspecifiedTopic {
		return ws.store.get(topic, true)
	}

	subs := ws.store.get(topic, false)
	if topic != ports.AnyTopic {
		subsForAnyTopic := ws.store.get(ports.AnyTopic, false)
		subs = append(subs, subsForAnyTopic...)
	}
	return subs
}

func (ws *service) publishForTopic(topic, message string) error {
	subs := ws.listSubscriptionsForTopic(topic)

	eg := &errgroup.Group{}
	for i := range subs {
		sub := subs[i]
		eg.Go(func() error { return ws.doRequest(sub, message) })
	}
	return eg.Wait()
}

func (ws *service) doRequest(sub Subscription, payload string) error {
	ws.limiter.Take()

	token, err := authToken(sub)
	if err != nil {
		return err
	}

	_, err = ws.breaker(sub.Endpoint).Execute(func() (interface{}, error) {
		return nil, ws.client.notify(
			context.Background(), sub.Endpoint, payload, token,
		)
	})
	if err != nil {
		log.WithError(err).Debugf("failed to notify webhook %s", sub.ID)
	}

	return err
}

func (ws *service) breaker(endpoint string) *gobreaker.CircuitBreaker {
	ws.breakersLock.Lock()
	defer ws.breakersLock.Unlock()

	cb, ok := ws.breakers[endpoint]
	if !ok {
		cb = circuitbreaker.New(endpoint, circuitbreaker.DefaultConfig)
		ws.breakers[endpoint] = cb
	}
	return cb
}

// authToken returns the HS256 JWT sent as bearer to secured subscriptions,
// or an empty string if the subscription has no secret.
func authToken(sub Subscription) (string, error) {
	if !sub.IsSecured() {
		return "", nil
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
		Issuer:   tokenIssuer,
		IssuedAt: time.Now().Unix(),
		Subject:  sub.Event,
	})
	return token.SignedString([]byte(sub.Secret))
}
