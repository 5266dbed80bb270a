package domain

import "context"

// VtxoRepository is the abstraction for any kind of database intended to
// persist Vtxos, ie. the ledger.
type VtxoRepository interface {
	// AddVtxo inserts a new vtxo. It fails with ErrDuplicateVtxo if another
	// one with the same key exists.
	AddVtxo(ctx context.Context, vtxo Vtxo) error
	// GetVtxo returns the vtxo with the given key, or ErrVtxoNotFound.
	GetVtxo(ctx context.Context, key VtxoKey) (*Vtxo, error)
	// GetVtxosForLocator returns all vtxos, spent or not, locked to the given
	// locator.
	GetVtxosForLocator(ctx context.Context, locator Locator) ([]Vtxo, error)
	// GetAllVtxos returns all vtxos.
	GetAllVtxos(ctx context.Context) ([]Vtxo, error)
	// SpendVtxo marks the vtxo as spent. Spending an already spent vtxo is a
	// no-op.
	SpendVtxo(ctx context.Context, key VtxoKey) error
	// SpendVtxos marks all given vtxos as spent, or none of them if any is
	// missing.
	SpendVtxos(ctx context.Context, keys []VtxoKey) error
}
