package domain

import "context"

// AssetRepository is the abstraction for any kind of database intended to
// persist Assets.
type AssetRepository interface {
	// AddAsset inserts a new asset, or returns ErrDuplicateAsset.
	AddAsset(ctx context.Context, asset Asset) error
	// GetAsset returns the asset with the given id, or ErrAssetNotFound.
	GetAsset(ctx context.Context, id string) (*Asset, error)
	// GetAssetsByOwner returns all assets owned by the given key.
	GetAssetsByOwner(ctx context.Context, ownerKey string) ([]Asset, error)
	// UpdateAsset allows to commit multiple changes to the same asset in a
	// transactional way.
	UpdateAsset(
		ctx context.Context, id string,
		updateFn func(a *Asset) (*Asset, error),
	) error
}
