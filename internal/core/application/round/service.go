package round

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lightningnetwork/lnd/ticker"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/arkd/internal/core/application/pubsub"
	"github.com/tdex-network/arkd/internal/core/domain"
	"github.com/tdex-network/arkd/internal/core/ports"
	"github.com/thanhpk/randstr"
)

const txidSize = 32

var (
	// ErrFlushInProgress is returned when a flush is requested while another
	// one is still running.
	ErrFlushInProgress = errors.New("round flush already in progress")
	// ErrAlreadyStarted ...
	ErrAlreadyStarted = errors.New("round batcher already started")
	// ErrStopped is returned when starting a batcher that has been stopped.
	ErrStopped = errors.New("round batcher stopped, it can't be restarted")
)

// State is the state of the batcher.
type State int

const (
	Idle State = iota
	Flushing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Flushing:
		return "flushing"
	default:
		return "unknown"
	}
}

// Service accumulates pending requests and, at every tick, turns all those
// enqueued so far into a new generation of vtxos.
type Service struct {
	repoManager ports.RepoManager
	pubsub      *pubsub.Service
	metrics     ports.Metrics
	ticker      ticker.Ticker
	now         func() time.Time

	queueLock *sync.Mutex
	queue     []domain.PendingRequest

	lock      *sync.RWMutex
	state     State
	height    uint64
	sessionId string
	started   bool
	stopped   bool

	quit chan struct{}
	wg   *sync.WaitGroup
}

func NewService(
	repoManager ports.RepoManager, pubsubSvc *pubsub.Service,
	metrics ports.Metrics, t ticker.Ticker,
) (*Service, error) {
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if pubsubSvc == nil {
		return nil, fmt.Errorf("missing pubsub service")
	}
	if t == nil {
		return nil, fmt.Errorf("missing ticker")
	}

	svc := &Service{
		repoManager: repoManager,
		pubsub:      pubsubSvc,
		metrics:     metrics,
		ticker:      t,
		now:         time.Now,
		queueLock:   &sync.Mutex{},
		queue:       make([]domain.PendingRequest, 0),
		lock:        &sync.RWMutex{},
		state:       Idle,
		sessionId:   uuid.New().String(),
		quit:        make(chan struct{}),
		wg:          &sync.WaitGroup{},
	}

	// Resume from the latest persisted round, if any.
	latest, err := repoManager.RoundRepository().GetLatestRound(
		context.Background(),
	)
	if err != nil && !errors.Is(err, domain.ErrRoundNotFound) {
		return nil, fmt.Errorf("failed to restore latest round: %w", err)
	}
	if latest != nil {
		svc.height = latest.Height
		svc.sessionId = latest.SessionId
	}

	return svc, nil
}

func (s *Service) Start() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.stopped {
		return ErrStopped
	}
	if s.started {
		return ErrAlreadyStarted
	}
	s.started = true

	s.ticker.Resume()
	s.wg.Add(1)
	go s.loop()

	log.Debugf("round batcher started at height %d", s.height)
	return nil
}

func (s *Service) Stop() {
	s.lock.Lock()
	if !s.started {
		s.lock.Unlock()
		return
	}
	s.started = false
	s.stopped = true
	s.lock.Unlock()

	close(s.quit)
	s.wg.Wait()
	s.ticker.Stop()

	log.Debug("round batcher stopped")
}

// SubmitPendingRequest appends a new request to the queue. It has no
// immediate effect on the ledger.
func (s *Service) SubmitPendingRequest(
	_ context.Context, locator domain.Locator, amount uint64,
) error {
	req, err := domain.NewPendingRequest(locator, amount)
	if err != nil {
		return err
	}

	s.queueLock.Lock()
	s.queue = append(s.queue, *req)
	s.queueLock.Unlock()

	if s.metrics != nil {
		s.metrics.RequestsEnqueued(1)
	}
	return nil
}

// Flush drains the queue and inserts a vtxo for every drained request. It
// returns the finalized round, or nil if the queue was empty.
func (s *Service) Flush(ctx context.Context) (*domain.Round, error) {
	s.lock.Lock()
	if s.state == Flushing {
		s.lock.Unlock()
		return nil, ErrFlushInProgress
	}
	s.state = Flushing
	height := s.height + 1
	s.lock.Unlock()

	defer func() {
		s.lock.Lock()
		s.state = Idle
		s.lock.Unlock()
	}()

	requests := s.takeQueue()
	if len(requests) <= 0 {
		return nil, nil
	}

	vtxos := make([]domain.Vtxo, 0, len(requests))
	for i, req := range requests {
		txid := hex.EncodeToString(randstr.Bytes(txidSize))
		vtxo := domain.NewVtxo(txid, uint32(i), req.Amount, req.Locator, height)
		if err := s.repoManager.VtxoRepository().AddVtxo(ctx, vtxo); err != nil {
			// Vtxos already inserted are not rolled back and the remaining
			// requests are not retried.
			s.reportDroppedRequests(height, requests[i:], err)
			return nil, fmt.Errorf(
				"failed to insert vtxo %d of %d, %d requests dropped: %w",
				i, len(requests), len(requests)-i, err,
			)
		}
		vtxos = append(vtxos, vtxo)
	}

	round := domain.Round{
		Height:    height,
		SessionId: uuid.New().String(),
		Timestamp: s.now().Unix(),
		NumVtxos:  len(vtxos),
	}
	if err := s.repoManager.RoundRepository().AddRound(ctx, round); err != nil {
		log.WithError(err).Warnf("failed to persist round %d", height)
	}

	s.lock.Lock()
	s.height = round.Height
	s.sessionId = round.SessionId
	s.lock.Unlock()

	log.Debugf("round %d finalized with %d vtxos", round.Height, len(vtxos))

	if s.metrics != nil {
		s.metrics.RoundFinalized(round.Height, len(vtxos))
	}
	go func() {
		if err := s.pubsub.PublishRoundFinalizedEvent(round, vtxos); err != nil {
			log.WithError(err).Warnf(
				"an error occured while publishing message for topic %s",
				pubsub.EventRoundFinalized,
			)
		}
	}()

	return &round, nil
}

func (s *Service) State() State {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.state
}

func (s *Service) CurrentRoundHeight() uint64 {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.height
}

func (s *Service) CurrentRoundSessionId() string {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.sessionId
}

// PendingRequests returns the number of requests waiting for the next round.
func (s *Service) PendingRequests() int {
	s.queueLock.Lock()
	defer s.queueLock.Unlock()
	return len(s.queue)
}

func (s *Service) loop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ticker.Ticks():
			if _, err := s.Flush(context.Background()); err != nil {
				if errors.Is(err, ErrFlushInProgress) {
					log.Debug("skipping tick, round flush in progress")
					continue
				}
				log.WithError(err).Error("round flush failed")
			}
		case <-s.quit:
			return
		}
	}
}

// takeQueue swaps the queue with an empty one.
func (s *Service) takeQueue() []domain.PendingRequest {
	s.queueLock.Lock()
	defer s.queueLock.Unlock()

	requests := s.queue
	s.queue = make([]domain.PendingRequest, 0)
	return requests
}

func (s *Service) reportDroppedRequests(
	height uint64, dropped []domain.PendingRequest, err error,
) {
	log.WithError(err).Errorf(
		"dropped %d pending requests of round %d", len(dropped), height,
	)
	if s.metrics != nil {
		s.metrics.RequestsDropped(len(dropped))
	}
	if err := s.pubsub.PublishRequestsDroppedEvent(height, dropped, err); err != nil {
		log.WithError(err).Warnf(
			"an error occured while publishing message for topic %s",
			pubsub.EventRequestsDropped,
		)
	}
}
