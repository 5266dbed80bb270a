package asset

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/btcsuite/btcd/chaincfg"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/arkd/internal/core/application/pubsub"
	"github.com/tdex-network/arkd/internal/core/application/transfer"
	"github.com/tdex-network/arkd/internal/core/domain"
	"github.com/tdex-network/arkd/internal/core/ports"
	"github.com/tdex-network/arkd/pkg/lock"
	"github.com/tdex-network/arkd/pkg/verifier"
)

const feedPrefix = "ark-feed-v1"

var (
	// ErrInputNotBound is returned when a breeding input is not locked to the
	// identity address of its parent.
	ErrInputNotBound = errors.New("input is not locked to the parent identity address")
)

// Batcher is the round batcher as seen by the asset service.
type Batcher interface {
	SubmitPendingRequest(
		ctx context.Context, locator domain.Locator, amount uint64,
	) error
	CurrentRoundHeight() uint64
}

// Validator is the transfer validator as seen by the asset service.
type Validator interface {
	ValidateAndCommit(
		ctx context.Context, inputs []transfer.Input, outputs []domain.Output,
	) error
}

// Breeding is the preview of a breeding: the child identity, its lock and
// the only output of the transfer burning the parents.
type Breeding struct {
	Identity domain.AssetIdentity
	Lock     *lock.AssetLock
	Output   domain.Output
	Inputs   [2]domain.VtxoKey
}

// CommitmentHash returns the hash both parents' owners must sign.
func (b *Breeding) CommitmentHash() [32]byte {
	return transfer.CommitmentHash(b.Inputs[:], []domain.Output{b.Output})
}

// Service is the policy layer for identity-bound assets on top of the
// transfer validator.
type Service struct {
	repoManager   ports.RepoManager
	engine        *verifier.Engine
	pubsub        *pubsub.Service
	batcher       Batcher
	validator     Validator
	net           *chaincfg.Params
	maxGeneration uint32

	lock *sync.Mutex
}

func NewService(
	repoManager ports.RepoManager, engine *verifier.Engine,
	pubsubSvc *pubsub.Service, batcher Batcher, validator Validator,
	maxGeneration uint32,
) (*Service, error) {
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if engine == nil || engine.Network() == nil {
		return nil, fmt.Errorf("missing signature engine")
	}
	if pubsubSvc == nil {
		return nil, fmt.Errorf("missing pubsub service")
	}
	if batcher == nil {
		return nil, fmt.Errorf("missing round batcher")
	}
	if validator == nil {
		return nil, fmt.Errorf("missing transfer validator")
	}
	if maxGeneration == 0 {
		return nil, fmt.Errorf("max generation must be greater than zero")
	}

	return &Service{
		repoManager:   repoManager,
		engine:        engine,
		pubsub:        pubsubSvc,
		batcher:       batcher,
		validator:     validator,
		net:           engine.Network(),
		maxGeneration: maxGeneration,
		lock:          &sync.Mutex{},
	}, nil
}

// MintAsset registers a new asset and enqueues a request to lock the given
// amount to its identity address in the next round.
func (s *Service) MintAsset(
	ctx context.Context, ownerKey string, identity domain.AssetIdentity,
	amount uint64,
) (*domain.Asset, *lock.AssetLock, error) {
	if identity.Generation >= s.maxGeneration {
		return nil, nil, fmt.Errorf(
			"%w: generation %d, max %d", domain.ErrMaxGenerationReached,
			identity.Generation, s.maxGeneration,
		)
	}

	asset, err := domain.NewAsset(
		ownerKey, identity, s.batcher.CurrentRoundHeight(),
	)
	if err != nil {
		return nil, nil, err
	}
	assetLock, err := s.assetLock(asset)
	if err != nil {
		return nil, nil, err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.repoManager.AssetRepository().AddAsset(ctx, *asset); err != nil {
		return nil, nil, err
	}
	if err := s.batcher.SubmitPendingRequest(
		ctx, domain.Locator(assetLock.Locator()), amount,
	); err != nil {
		return nil, nil, err
	}

	log.Debugf("minted asset %s at %s", asset.Id, assetLock.Address)
	return asset, assetLock, nil
}

// FeedAsset bumps the experience of the asset. The owner proves to hold the
// asset by signing FeedMessageHash with the asset spending key.
func (s *Service) FeedAsset(
	ctx context.Context, assetId string, signature []byte,
) (*domain.Asset, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	assetRepo := s.repoManager.AssetRepository()
	asset, err := assetRepo.GetAsset(ctx, assetId)
	if err != nil {
		return nil, err
	}

	ownerKey, err := hex.DecodeString(asset.OwnerKey)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed owner key", domain.ErrInvalidRequest)
	}
	identityHash := asset.IdentityHash()
	spendingKey, err := s.engine.DeriveSpendingKey(ownerKey, &identityHash)
	if err != nil {
		return nil, err
	}
	msg := FeedMessageHash(asset.Id, asset.LastInteractionHeight, asset.Experience)
	ok, err := s.engine.Verify(msg, spendingKey, signature)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w for asset %s", transfer.ErrInvalidSignature, asset.Id)
	}

	height := s.batcher.CurrentRoundHeight()
	var fed *domain.Asset
	if err := assetRepo.UpdateAsset(
		ctx, assetId, func(a *domain.Asset) (*domain.Asset, error) {
			if err := a.Feed(height); err != nil {
				return nil, err
			}
			fed = a
			return a, nil
		},
	); err != nil {
		return nil, err
	}
	return fed, nil
}

// PreviewBreeding returns the identity and the lock of the child of the given
// parents, and the output both parents' owners must commit to.
func (s *Service) PreviewBreeding(
	ctx context.Context, parentAId, parentBId string,
	inputs [2]domain.VtxoKey, childPayload string,
) (*Breeding, error) {
	parentA, parentB, err := s.getParents(ctx, parentAId, parentBId)
	if err != nil {
		return nil, err
	}
	return s.previewBreeding(ctx, parentA, parentB, inputs, childPayload)
}

// BreedAssets burns the two parents' vtxos and mints a child, whose vtxo
// amount is the sum of the parents' ones, in the next round.
func (s *Service) BreedAssets(
	ctx context.Context, parentAId, parentBId string,
	inputs [2]transfer.Input, childPayload string,
) (*domain.Asset, *lock.AssetLock, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	parentA, parentB, err := s.getParents(ctx, parentAId, parentBId)
	if err != nil {
		return nil, nil, err
	}

	height := s.batcher.CurrentRoundHeight()
	for _, parent := range []*domain.Asset{parentA, parentB} {
		if err := parent.CanBreed(height, s.maxGeneration); err != nil {
			return nil, nil, fmt.Errorf("asset %s: %w", parent.Id, err)
		}
	}

	breeding, err := s.previewBreeding(
		ctx, parentA, parentB, [2]domain.VtxoKey{inputs[0].Key, inputs[1].Key},
		childPayload,
	)
	if err != nil {
		return nil, nil, err
	}

	if err := s.validator.ValidateAndCommit(
		ctx, inputs[:], []domain.Output{breeding.Output},
	); err != nil {
		return nil, nil, err
	}

	child, err := domain.NewAsset(parentA.OwnerKey, breeding.Identity, height)
	if err != nil {
		return nil, nil, err
	}

	assetRepo := s.repoManager.AssetRepository()
	for _, parent := range []*domain.Asset{parentA, parentB} {
		if err := assetRepo.UpdateAsset(
			ctx, parent.Id, func(a *domain.Asset) (*domain.Asset, error) {
				a.Burn(height)
				return a, nil
			},
		); err != nil {
			log.WithError(err).Errorf("failed to burn parent asset %s", parent.Id)
		}
	}
	if err := assetRepo.AddAsset(ctx, *child); err != nil {
		return nil, nil, err
	}

	log.Debugf(
		"bred asset %s from %s and %s", child.Id, parentA.Id, parentB.Id,
	)
	go func() {
		if err := s.pubsub.PublishAssetBredEvent(
			*child, [2]string{parentA.Id, parentB.Id}, breeding.Output.Locator,
		); err != nil {
			log.WithError(err).Warnf(
				"an error occured while publishing message for topic %s",
				pubsub.EventAssetBred,
			)
		}
	}()

	return child, breeding.Lock, nil
}

// GetAsset returns the asset with the given id along with its lock.
func (s *Service) GetAsset(
	ctx context.Context, assetId string,
) (*domain.Asset, *lock.AssetLock, error) {
	asset, err := s.repoManager.AssetRepository().GetAsset(ctx, assetId)
	if err != nil {
		return nil, nil, err
	}
	assetLock, err := s.assetLock(asset)
	if err != nil {
		return nil, nil, err
	}
	return asset, assetLock, nil
}

// FeedMessageHash is the message the owner of an asset must sign to feed it.
// It commits to the current experience so that every feeding requires a new
// signature, even with no cooldown.
func FeedMessageHash(
	assetId string, lastInteractionHeight, experience uint64,
) [32]byte {
	return sha256.Sum256([]byte(fmt.Sprintf(
		"%s|%s|%d|%d", feedPrefix, assetId, lastInteractionHeight, experience,
	)))
}

func (s *Service) getParents(
	ctx context.Context, parentAId, parentBId string,
) (*domain.Asset, *domain.Asset, error) {
	if parentAId == parentBId {
		return nil, nil, domain.ErrSameParents
	}

	assetRepo := s.repoManager.AssetRepository()
	parentA, err := assetRepo.GetAsset(ctx, parentAId)
	if err != nil {
		return nil, nil, err
	}
	parentB, err := assetRepo.GetAsset(ctx, parentBId)
	if err != nil {
		return nil, nil, err
	}
	return parentA, parentB, nil
}

func (s *Service) previewBreeding(
	ctx context.Context, parentA, parentB *domain.Asset,
	inputs [2]domain.VtxoKey, childPayload string,
) (*Breeding, error) {
	if inputs[0] == inputs[1] {
		return nil, fmt.Errorf("%w: same input for both parents", domain.ErrVtxoAlreadySpent)
	}

	vtxoRepo := s.repoManager.VtxoRepository()
	var amount uint64
	for i, parent := range []*domain.Asset{parentA, parentB} {
		vtxo, err := vtxoRepo.GetVtxo(ctx, inputs[i])
		if err != nil {
			return nil, err
		}
		parentLock, err := s.assetLock(parent)
		if err != nil {
			return nil, err
		}
		if string(vtxo.Locator) != parentLock.Locator() {
			return nil, fmt.Errorf(
				"%w: vtxo %s, asset %s", ErrInputNotBound, vtxo.Key(), parent.Id,
			)
		}
		if amount > math.MaxUint64-vtxo.Amount {
			return nil, fmt.Errorf("%w: inputs amount overflows", transfer.ErrInvalidAmount)
		}
		amount += vtxo.Amount
	}

	identity := domain.ChildIdentity(parentA, parentB, childPayload)
	if err := identity.Validate(); err != nil {
		return nil, err
	}
	child := &domain.Asset{OwnerKey: parentA.OwnerKey, Identity: identity}
	childLock, err := s.assetLock(child)
	if err != nil {
		return nil, err
	}

	return &Breeding{
		Identity: identity,
		Lock:     childLock,
		Output: domain.Output{
			Locator: domain.Locator(childLock.Locator()),
			Amount:  amount,
		},
		Inputs: inputs,
	}, nil
}

func (s *Service) assetLock(asset *domain.Asset) (*lock.AssetLock, error) {
	ownerKey, err := hex.DecodeString(asset.OwnerKey)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed owner key", domain.ErrInvalidRequest)
	}
	return lock.BuildAssetIdentityAddress(ownerKey, asset.IdentityHash(), s.net)
}
