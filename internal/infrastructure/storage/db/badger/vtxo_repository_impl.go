package dbbadger

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v3"
	"github.com/tdex-network/arkd/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type vtxoRepositoryImpl struct {
	store *badgerhold.Store
}

// NewVtxoRepositoryImpl initialize a badger implementation of the
// domain.VtxoRepository
func NewVtxoRepositoryImpl(store *badgerhold.Store) domain.VtxoRepository {
	return &vtxoRepositoryImpl{store}
}

func (r *vtxoRepositoryImpl) AddVtxo(_ context.Context, vtxo domain.Vtxo) error {
	if err := r.store.Insert(vtxo.Key().String(), vtxo); err != nil {
		if errors.Is(err, badgerhold.ErrKeyExists) {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateVtxo, vtxo.Key())
		}
		return err
	}
	return nil
}

func (r *vtxoRepositoryImpl) GetVtxo(
	_ context.Context, key domain.VtxoKey,
) (*domain.Vtxo, error) {
	var vtxo domain.Vtxo
	if err := r.store.Get(key.String(), &vtxo); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrVtxoNotFound, key)
		}
		return nil, err
	}
	return &vtxo, nil
}

func (r *vtxoRepositoryImpl) GetVtxosForLocator(
	_ context.Context, locator domain.Locator,
) ([]domain.Vtxo, error) {
	query := badgerhold.Where("Locator").Eq(locator)
	return r.findVtxos(query)
}

func (r *vtxoRepositoryImpl) GetAllVtxos(_ context.Context) ([]domain.Vtxo, error) {
	return r.findVtxos(nil)
}

func (r *vtxoRepositoryImpl) SpendVtxo(
	ctx context.Context, key domain.VtxoKey,
) error {
	return r.SpendVtxos(ctx, []domain.VtxoKey{key})
}

// SpendVtxos spends all vtxos within a single badger transaction that is
// discarded if any of them is missing.
func (r *vtxoRepositoryImpl) SpendVtxos(
	_ context.Context, keys []domain.VtxoKey,
) error {
	tx := r.store.Badger().NewTransaction(true)
	defer tx.Discard()

	vtxos := make([]domain.Vtxo, 0, len(keys))
	for _, key := range keys {
		vtxo, err := r.getVtxo(tx, key)
		if err != nil {
			return err
		}
		vtxos = append(vtxos, *vtxo)
	}

	for _, vtxo := range vtxos {
		vtxo.Spend()
		if err := r.store.TxUpdate(tx, vtxo.Key().String(), vtxo); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *vtxoRepositoryImpl) getVtxo(
	tx *badger.Txn, key domain.VtxoKey,
) (*domain.Vtxo, error) {
	var vtxo domain.Vtxo
	if err := r.store.TxGet(tx, key.String(), &vtxo); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrVtxoNotFound, key)
		}
		return nil, err
	}
	return &vtxo, nil
}

func (r *vtxoRepositoryImpl) findVtxos(
	query *badgerhold.Query,
) ([]domain.Vtxo, error) {
	var vtxos []domain.Vtxo
	if err := r.store.Find(&vtxos, query); err != nil {
		return nil, err
	}
	if vtxos == nil {
		vtxos = make([]domain.Vtxo, 0)
	}
	sort.SliceStable(vtxos, func(i, j int) bool {
		if vtxos[i].RoundHeight == vtxos[j].RoundHeight {
			return vtxos[i].VOut < vtxos[j].VOut
		}
		return vtxos[i].RoundHeight < vtxos[j].RoundHeight
	})
	return vtxos, nil
}
