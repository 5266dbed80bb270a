package application

import (
	"context"

	"github.com/tdex-network/arkd/internal/core/application/asset"
	"github.com/tdex-network/arkd/internal/core/application/pubsub"
	"github.com/tdex-network/arkd/internal/core/domain"
	"github.com/tdex-network/arkd/internal/core/ports"
	"github.com/tdex-network/arkd/pkg/lock"
	"github.com/tdex-network/arkd/pkg/verifier"
)

type Breeding = asset.Breeding

type AssetService interface {
	MintAsset(
		ctx context.Context, ownerKey string, identity domain.AssetIdentity,
		amount uint64,
	) (*domain.Asset, *lock.AssetLock, error)
	FeedAsset(
		ctx context.Context, assetId string, signature []byte,
	) (*domain.Asset, error)
	PreviewBreeding(
		ctx context.Context, parentAId, parentBId string,
		inputs [2]domain.VtxoKey, childPayload string,
	) (*Breeding, error)
	BreedAssets(
		ctx context.Context, parentAId, parentBId string,
		inputs [2]TransferInput, childPayload string,
	) (*domain.Asset, *lock.AssetLock, error)
	GetAsset(
		ctx context.Context, assetId string,
	) (*domain.Asset, *lock.AssetLock, error)
}

func NewAssetService(
	repoManager ports.RepoManager, engine *verifier.Engine,
	pubsubSvc PubSubService, batcher RoundBatcher,
	transferSvc TransferService, maxGeneration uint32,
) (AssetService, error) {
	p := pubsubSvc.(*pubsub.Service)
	svc, err := asset.NewService(
		repoManager, engine, p, batcher, transferSvc, maxGeneration,
	)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// FeedMessageHash returns the message the owner of an asset must sign to
// feed it.
func FeedMessageHash(
	assetId string, lastInteractionHeight, experience uint64,
) [32]byte {
	return asset.FeedMessageHash(assetId, lastInteractionHeight, experience)
}
