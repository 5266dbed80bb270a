package inmemory

import (
	"github.com/tdex-network/arkd/internal/core/domain"
	"github.com/tdex-network/arkd/internal/core/ports"
)

type repoManager struct {
	vtxoRepository  domain.VtxoRepository
	roundRepository domain.RoundRepository
	assetRepository domain.AssetRepository
}

func NewRepoManager() ports.RepoManager {
	return &repoManager{
		vtxoRepository:  NewVtxoRepositoryImpl(),
		roundRepository: NewRoundRepositoryImpl(),
		assetRepository: NewAssetRepositoryImpl(),
	}
}

func (r *repoManager) VtxoRepository() domain.VtxoRepository {
	return r.vtxoRepository
}

func (r *repoManager) RoundRepository() domain.RoundRepository {
	return r.roundRepository
}

func (r *repoManager) AssetRepository() domain.AssetRepository {
	return r.assetRepository
}

func (r *repoManager) Close() {}
