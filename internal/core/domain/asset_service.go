package domain

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/tdex-network/arkd/pkg/lock"
)

// NewAsset returns a new asset of the given owner, minted at the given round
// height.
func NewAsset(
	ownerKey string, identity AssetIdentity, height uint64,
) (*Asset, error) {
	if err := validateOwnerKey(ownerKey); err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(identity.Payload)) <= 0 {
		return nil, fmt.Errorf("%w: missing identity payload", ErrInvalidRequest)
	}
	if err := identity.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, err)
	}

	return &Asset{
		Id:                    uuid.New().String(),
		OwnerKey:              ownerKey,
		Identity:              copyIdentity(identity),
		LastInteractionHeight: height,
		LastBreedHeight:       height,
	}, nil
}

// IdentityHash recomputes the identity hash of the asset.
func (a *Asset) IdentityHash() lock.IdentityHash {
	return lock.ComputeIdentityHash(a.Identity)
}

// IsBurned returns whether the asset was consumed by a breeding.
func (a *Asset) IsBurned() bool {
	return a.Burned
}

// CanInteract returns whether the cooldown since the last interaction elapsed
// at the given height.
func (a *Asset) CanInteract(height uint64) bool {
	return height >= a.LastInteractionHeight+uint64(a.Identity.Cooldown)
}

// CanBreed returns nil if the asset can be used as a breeding parent at the
// given height.
func (a *Asset) CanBreed(height uint64, maxGeneration uint32) error {
	if a.IsBurned() {
		return ErrAssetBurned
	}
	if a.Identity.Generation >= maxGeneration {
		return fmt.Errorf(
			"%w: generation %d, max %d",
			ErrMaxGenerationReached, a.Identity.Generation, maxGeneration,
		)
	}
	if height < a.LastBreedHeight+uint64(a.Identity.Cooldown) {
		return fmt.Errorf(
			"%w: next breeding at height %d",
			ErrAssetCooldown, a.LastBreedHeight+uint64(a.Identity.Cooldown),
		)
	}
	return nil
}

// Feed bumps the experience of the asset and resets its interaction cooldown.
// Only mutable fields are touched.
func (a *Asset) Feed(height uint64) error {
	if a.IsBurned() {
		return ErrAssetBurned
	}
	if !a.CanInteract(height) {
		return fmt.Errorf(
			"%w: next interaction at height %d",
			ErrAssetCooldown, a.LastInteractionHeight+uint64(a.Identity.Cooldown),
		)
	}
	a.Experience++
	a.LastInteractionHeight = height
	return nil
}

// Burn marks the asset as consumed. It never reverts.
func (a *Asset) Burn(height uint64) {
	a.Burned = true
	a.LastBreedHeight = height
	a.LastInteractionHeight = height
}

// ChildIdentity returns the identity of the offspring of the two assets.
// The child's cooldown is the greatest of the parents'.
func ChildIdentity(parentA, parentB *Asset, payload string) AssetIdentity {
	generation := parentA.Identity.Generation
	if parentB.Identity.Generation > generation {
		generation = parentB.Identity.Generation
	}
	cooldown := parentA.Identity.Cooldown
	if parentB.Identity.Cooldown > cooldown {
		cooldown = parentB.Identity.Cooldown
	}
	return AssetIdentity{
		Payload:    payload,
		Generation: generation + 1,
		Cooldown:   cooldown,
		Ancestors:  []string{parentA.Id, parentB.Id},
	}
}

func validateOwnerKey(key string) error {
	buf, err := hex.DecodeString(key)
	if err != nil {
		return fmt.Errorf("%w: owner key must be hex encoded", ErrInvalidRequest)
	}
	if len(buf) != 32 {
		return fmt.Errorf("%w: owner key must be 32 bytes", ErrInvalidRequest)
	}
	return nil
}

func copyIdentity(identity AssetIdentity) AssetIdentity {
	if identity.Ancestors != nil {
		identity.Ancestors = append([]string{}, identity.Ancestors...)
	}
	return identity
}
