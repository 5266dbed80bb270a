package application

import (
	"context"

	"github.com/lightningnetwork/lnd/ticker"
	"github.com/tdex-network/arkd/internal/core/application/pubsub"
	"github.com/tdex-network/arkd/internal/core/application/round"
	"github.com/tdex-network/arkd/internal/core/domain"
	"github.com/tdex-network/arkd/internal/core/ports"
)

var (
	// ErrFlushInProgress ...
	ErrFlushInProgress = round.ErrFlushInProgress
	// ErrRoundAlreadyStarted ...
	ErrRoundAlreadyStarted = round.ErrAlreadyStarted
	// ErrRoundBatcherStopped ...
	ErrRoundBatcherStopped = round.ErrStopped
)

type RoundState = round.State

const (
	RoundIdle     = round.Idle
	RoundFlushing = round.Flushing
)

type RoundBatcher interface {
	Start() error
	Stop()
	SubmitPendingRequest(
		ctx context.Context, locator domain.Locator, amount uint64,
	) error
	Flush(ctx context.Context) (*domain.Round, error)
	State() RoundState
	CurrentRoundHeight() uint64
	CurrentRoundSessionId() string
	PendingRequests() int
}

func NewRoundBatcher(
	repoManager ports.RepoManager, pubsubSvc PubSubService,
	metrics ports.Metrics, t ticker.Ticker,
) (RoundBatcher, error) {
	p := pubsubSvc.(*pubsub.Service)
	svc, err := round.NewService(repoManager, p, metrics, t)
	if err != nil {
		return nil, err
	}
	return svc, nil
}
