package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tdex-network/arkd/internal/core/domain"
)

// VtxoRepositoryImpl represents an in memory ledger.
type VtxoRepositoryImpl struct {
	vtxos map[domain.VtxoKey]domain.Vtxo
	// vtxo keys in insertion order.
	keys []domain.VtxoKey
	lock *sync.RWMutex
}

// NewVtxoRepositoryImpl returns a new empty VtxoRepositoryImpl
func NewVtxoRepositoryImpl() *VtxoRepositoryImpl {
	return &VtxoRepositoryImpl{
		vtxos: map[domain.VtxoKey]domain.Vtxo{},
		keys:  make([]domain.VtxoKey, 0),
		lock:  &sync.RWMutex{},
	}
}

func (r *VtxoRepositoryImpl) AddVtxo(_ context.Context, vtxo domain.Vtxo) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	key := vtxo.Key()
	if _, ok := r.vtxos[key]; ok {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateVtxo, key)
	}
	r.vtxos[key] = vtxo
	r.keys = append(r.keys, key)
	return nil
}

func (r *VtxoRepositoryImpl) GetVtxo(
	_ context.Context, key domain.VtxoKey,
) (*domain.Vtxo, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	vtxo, ok := r.vtxos[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrVtxoNotFound, key)
	}
	return &vtxo, nil
}

func (r *VtxoRepositoryImpl) GetVtxosForLocator(
	_ context.Context, locator domain.Locator,
) ([]domain.Vtxo, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	vtxos := make([]domain.Vtxo, 0)
	for _, key := range r.keys {
		if vtxo := r.vtxos[key]; vtxo.Locator == locator {
			vtxos = append(vtxos, vtxo)
		}
	}
	return vtxos, nil
}

func (r *VtxoRepositoryImpl) GetAllVtxos(_ context.Context) ([]domain.Vtxo, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	vtxos := make([]domain.Vtxo, 0, len(r.keys))
	for _, key := range r.keys {
		vtxos = append(vtxos, r.vtxos[key])
	}
	sort.SliceStable(vtxos, func(i, j int) bool {
		return vtxos[i].RoundHeight < vtxos[j].RoundHeight
	})
	return vtxos, nil
}

func (r *VtxoRepositoryImpl) SpendVtxo(
	ctx context.Context, key domain.VtxoKey,
) error {
	return r.SpendVtxos(ctx, []domain.VtxoKey{key})
}

func (r *VtxoRepositoryImpl) SpendVtxos(
	_ context.Context, keys []domain.VtxoKey,
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	for _, key := range keys {
		if _, ok := r.vtxos[key]; !ok {
			return fmt.Errorf("%w: %s", domain.ErrVtxoNotFound, key)
		}
	}

	for _, key := range keys {
		vtxo := r.vtxos[key]
		vtxo.Spend()
		r.vtxos[key] = vtxo
	}
	return nil
}
