package application

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/arkd/internal/core/domain"
	"github.com/tdex-network/arkd/internal/core/ports"
	"github.com/tdex-network/arkd/pkg/lock"
	"github.com/tdex-network/arkd/pkg/verifier"
)

// Service is the single entry point of the coordinator. It groups the round
// batcher, the transfer validator and the asset policy layer over the same
// ledger.
type Service struct {
	repoManager ports.RepoManager
	engine      *verifier.Engine
	pubsub      PubSubService
	batcher     RoundBatcher
	transfer    TransferService
	asset       AssetService
}

func NewService(cfg *Config) (*Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("missing config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	batcher, err := cfg.roundBatcher()
	if err != nil {
		return nil, err
	}
	transfer, err := cfg.transferService()
	if err != nil {
		return nil, err
	}
	asset, err := cfg.assetService()
	if err != nil {
		return nil, err
	}

	return &Service{
		repoManager: cfg.RepoManager(),
		engine:      cfg.SignatureEngine(),
		pubsub:      cfg.PubSubService(),
		batcher:     batcher,
		transfer:    transfer,
		asset:       asset,
	}, nil
}

// Start starts the round batcher.
func (s *Service) Start() error {
	return s.batcher.Start()
}

// Stop stops the round batcher and releases the pubsub and the storage.
// The service can't be restarted afterwards.
func (s *Service) Stop() {
	s.batcher.Stop()
	s.pubsub.Close()
	s.repoManager.Close()
}

func (s *Service) SubmitPendingRequest(
	ctx context.Context, locator domain.Locator, amount uint64,
) error {
	return s.batcher.SubmitPendingRequest(ctx, locator, amount)
}

// GetVtxo returns the vtxo with the given key, if any.
func (s *Service) GetVtxo(
	ctx context.Context, key domain.VtxoKey,
) (*domain.Vtxo, bool) {
	vtxo, err := s.repoManager.VtxoRepository().GetVtxo(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrVtxoNotFound) {
			log.WithError(err).Warnf("failed to get vtxo %s", key)
		}
		return nil, false
	}
	return vtxo, true
}

func (s *Service) GetVtxosForLocator(
	ctx context.Context, locator domain.Locator,
) ([]domain.Vtxo, error) {
	return s.repoManager.VtxoRepository().GetVtxosForLocator(ctx, locator)
}

func (s *Service) ValidateAndCommit(
	ctx context.Context, inputs []TransferInput, outputs []domain.Output,
) error {
	return s.transfer.ValidateAndCommit(ctx, inputs, outputs)
}

func (s *Service) BuildSwapLock(
	claimKey, refundKey, preimageHash []byte, timeout int64,
) (*lock.SwapLock, error) {
	return lock.BuildSwapLock(
		claimKey, refundKey, preimageHash, timeout, s.engine.Network(),
	)
}

func (s *Service) BuildAssetIdentityAddress(
	ownerKey []byte, identityHash lock.IdentityHash,
) (*lock.AssetLock, error) {
	return lock.BuildAssetIdentityAddress(
		ownerKey, identityHash, s.engine.Network(),
	)
}

func (s *Service) CurrentRoundHeight() uint64 {
	return s.batcher.CurrentRoundHeight()
}

func (s *Service) CurrentRoundSessionId() string {
	return s.batcher.CurrentRoundSessionId()
}

// PendingRequests returns the number of requests waiting for the next round.
func (s *Service) PendingRequests() int {
	return s.batcher.PendingRequests()
}

// UnspentVtxos returns the number and the total amount of the unspent vtxos
// in the ledger.
func (s *Service) UnspentVtxos(ctx context.Context) (int, uint64, error) {
	vtxos, err := s.repoManager.VtxoRepository().GetAllVtxos(ctx)
	if err != nil {
		return 0, 0, err
	}

	var count int
	var amount uint64
	for _, vtxo := range vtxos {
		if vtxo.IsSpent() {
			continue
		}
		count++
		amount += vtxo.Amount
	}
	return count, amount, nil
}

// Flush forces the round batcher to finalize a round with the requests
// enqueued so far.
func (s *Service) Flush(ctx context.Context) (*domain.Round, error) {
	return s.batcher.Flush(ctx)
}

func (s *Service) MintAsset(
	ctx context.Context, ownerKey string, identity domain.AssetIdentity,
	amount uint64,
) (*domain.Asset, *lock.AssetLock, error) {
	return s.asset.MintAsset(ctx, ownerKey, identity, amount)
}

func (s *Service) FeedAsset(
	ctx context.Context, assetId string, signature []byte,
) (*domain.Asset, error) {
	return s.asset.FeedAsset(ctx, assetId, signature)
}

func (s *Service) PreviewBreeding(
	ctx context.Context, parentAId, parentBId string,
	inputs [2]domain.VtxoKey, childPayload string,
) (*Breeding, error) {
	return s.asset.PreviewBreeding(ctx, parentAId, parentBId, inputs, childPayload)
}

func (s *Service) BreedAssets(
	ctx context.Context, parentAId, parentBId string,
	inputs [2]TransferInput, childPayload string,
) (*domain.Asset, *lock.AssetLock, error) {
	return s.asset.BreedAssets(ctx, parentAId, parentBId, inputs, childPayload)
}

func (s *Service) GetAsset(
	ctx context.Context, assetId string,
) (*domain.Asset, *lock.AssetLock, error) {
	return s.asset.GetAsset(ctx, assetId)
}

func (s *Service) AddWebhook(
	ctx context.Context, event, endpoint, secret string,
) (string, error) {
	return s.pubsub.AddWebhook(ctx, event, endpoint, secret)
}

func (s *Service) RemoveWebhook(ctx context.Context, id string) error {
	return s.pubsub.RemoveWebhook(ctx, id)
}

func (s *Service) ListWebhooks(
	ctx context.Context, event string,
) []ports.Subscription {
	return s.pubsub.ListWebhooks(ctx, event)
}
