package dbbadger

import (
	"context"
	"errors"
	"fmt"

	"github.com/tdex-network/arkd/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type roundRepositoryImpl struct {
	store *badgerhold.Store
}

// NewRoundRepositoryImpl initialize a badger implementation of the
// domain.RoundRepository
func NewRoundRepositoryImpl(store *badgerhold.Store) domain.RoundRepository {
	return &roundRepositoryImpl{store}
}

func (r *roundRepositoryImpl) AddRound(ctx context.Context, round domain.Round) error {
	latest, err := r.GetLatestRound(ctx)
	if err != nil && !errors.Is(err, domain.ErrRoundNotFound) {
		return err
	}
	if latest != nil && round.Height <= latest.Height {
		return fmt.Errorf(
			"round height must be greater than %d, got %d",
			latest.Height, round.Height,
		)
	}
	return r.store.Insert(round.Height, round)
}

func (r *roundRepositoryImpl) GetLatestRound(
	_ context.Context,
) (*domain.Round, error) {
	var rounds []domain.Round
	if err := r.store.Find(&rounds, nil); err != nil {
		return nil, err
	}
	if len(rounds) <= 0 {
		return nil, domain.ErrRoundNotFound
	}

	latest := rounds[0]
	for _, round := range rounds[1:] {
		if round.Height > latest.Height {
			latest = round
		}
	}
	return &latest, nil
}

func (r *roundRepositoryImpl) GetRoundByHeight(
	_ context.Context, height uint64,
) (*domain.Round, error) {
	var round domain.Round
	if err := r.store.Get(height, &round); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf("%w: height %d", domain.ErrRoundNotFound, height)
		}
		return nil, err
	}
	return &round, nil
}
