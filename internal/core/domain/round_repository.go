package domain

import "context"

// RoundRepository is the abstraction for any kind of database intended to
// persist the rounds produced by the batcher.
type RoundRepository interface {
	// AddRound stores a finalized round.
	AddRound(ctx context.Context, round Round) error
	// GetLatestRound returns the round with the highest height, if any.
	GetLatestRound(ctx context.Context) (*Round, error)
	// GetRoundByHeight returns the round at the given height.
	GetRoundByHeight(ctx context.Context, height uint64) (*Round, error)
}
