package inmemory

import (
	"context"
	"fmt"
	"sync"

	"github.com/tdex-network/arkd/internal/core/domain"
)

// AssetRepositoryImpl represents an in memory storage for assets.
type AssetRepositoryImpl struct {
	assets map[string]domain.Asset
	lock   *sync.RWMutex
}

// NewAssetRepositoryImpl returns a new empty AssetRepositoryImpl
func NewAssetRepositoryImpl() *AssetRepositoryImpl {
	return &AssetRepositoryImpl{
		assets: map[string]domain.Asset{},
		lock:   &sync.RWMutex{},
	}
}

func (r *AssetRepositoryImpl) AddAsset(_ context.Context, asset domain.Asset) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.assets[asset.Id]; ok {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateAsset, asset.Id)
	}
	r.assets[asset.Id] = asset
	return nil
}

func (r *AssetRepositoryImpl) GetAsset(
	_ context.Context, id string,
) (*domain.Asset, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return r.getAsset(id)
}

func (r *AssetRepositoryImpl) GetAssetsByOwner(
	_ context.Context, ownerKey string,
) ([]domain.Asset, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	assets := make([]domain.Asset, 0)
	for _, asset := range r.assets {
		if asset.OwnerKey == ownerKey {
			assets = append(assets, asset)
		}
	}
	return assets, nil
}

func (r *AssetRepositoryImpl) UpdateAsset(
	_ context.Context, id string,
	updateFn func(a *domain.Asset) (*domain.Asset, error),
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	asset, err := r.getAsset(id)
	if err != nil {
		return err
	}
	updatedAsset, err := updateFn(asset)
	if err != nil {
		return err
	}
	r.assets[id] = *updatedAsset
	return nil
}

func (r *AssetRepositoryImpl) getAsset(id string) (*domain.Asset, error) {
	asset, ok := r.assets[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrAssetNotFound, id)
	}
	return &asset, nil
}
