package dbbadger

import (
	"context"
	"errors"
	"fmt"

	"github.com/tdex-network/arkd/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type assetRepositoryImpl struct {
	store *badgerhold.Store
}

// NewAssetRepositoryImpl initialize a badger implementation of the
// domain.AssetRepository
func NewAssetRepositoryImpl(store *badgerhold.Store) domain.AssetRepository {
	return &assetRepositoryImpl{store}
}

func (r *assetRepositoryImpl) AddAsset(_ context.Context, asset domain.Asset) error {
	if err := r.store.Insert(asset.Id, asset); err != nil {
		if errors.Is(err, badgerhold.ErrKeyExists) {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateAsset, asset.Id)
		}
		return err
	}
	return nil
}

func (r *assetRepositoryImpl) GetAsset(
	_ context.Context, id string,
) (*domain.Asset, error) {
	var asset domain.Asset
	if err := r.store.Get(id, &asset); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrAssetNotFound, id)
		}
		return nil, err
	}
	return &asset, nil
}

func (r *assetRepositoryImpl) GetAssetsByOwner(
	_ context.Context, ownerKey string,
) ([]domain.Asset, error) {
	var assets []domain.Asset
	query := badgerhold.Where("OwnerKey").Eq(ownerKey)
	if err := r.store.Find(&assets, query); err != nil {
		return nil, err
	}
	if assets == nil {
		assets = make([]domain.Asset, 0)
	}
	return assets, nil
}

func (r *assetRepositoryImpl) UpdateAsset(
	_ context.Context, id string,
	updateFn func(a *domain.Asset) (*domain.Asset, error),
) error {
	tx := r.store.Badger().NewTransaction(true)
	defer tx.Discard()

	var asset domain.Asset
	if err := r.store.TxGet(tx, id, &asset); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return fmt.Errorf("%w: %s", domain.ErrAssetNotFound, id)
		}
		return err
	}

	updatedAsset, err := updateFn(&asset)
	if err != nil {
		return err
	}
	if err := r.store.TxUpdate(tx, id, *updatedAsset); err != nil {
		return err
	}
	return tx.Commit()
}
