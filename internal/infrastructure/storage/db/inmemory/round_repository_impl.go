package inmemory

import (
	"context"
	"fmt"
	"sync"

	"github.com/tdex-network/arkd/internal/core/domain"
)

// RoundRepositoryImpl represents an in memory storage for rounds.
type RoundRepositoryImpl struct {
	rounds map[uint64]domain.Round
	latest *domain.Round
	lock   *sync.RWMutex
}

// NewRoundRepositoryImpl returns a new empty RoundRepositoryImpl
func NewRoundRepositoryImpl() *RoundRepositoryImpl {
	return &RoundRepositoryImpl{
		rounds: map[uint64]domain.Round{},
		lock:   &sync.RWMutex{},
	}
}

func (r *RoundRepositoryImpl) AddRound(_ context.Context, round domain.Round) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.latest != nil && round.Height <= r.latest.Height {
		return fmt.Errorf(
			"round height must be greater than %d, got %d",
			r.latest.Height, round.Height,
		)
	}
	r.rounds[round.Height] = round
	r.latest = &round
	return nil
}

func (r *RoundRepositoryImpl) GetLatestRound(
	_ context.Context,
) (*domain.Round, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	if r.latest == nil {
		return nil, domain.ErrRoundNotFound
	}
	round := *r.latest
	return &round, nil
}

func (r *RoundRepositoryImpl) GetRoundByHeight(
	_ context.Context, height uint64,
) (*domain.Round, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	round, ok := r.rounds[height]
	if !ok {
		return nil, fmt.Errorf("%w: height %d", domain.ErrRoundNotFound, height)
	}
	return &round, nil
}
