package ports

import "github.com/tdex-network/arkd/internal/core/domain"

// RepoManager interface defines the methods for vtxo, round and asset
// repositories.
type RepoManager interface {
	VtxoRepository() domain.VtxoRepository
	RoundRepository() domain.RoundRepository
	AssetRepository() domain.AssetRepository
	Close()
}
