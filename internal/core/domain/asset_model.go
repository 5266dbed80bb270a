package domain

import "github.com/tdex-network/arkd/pkg/lock"

// AssetIdentity is the immutable part of an asset, the only one that feeds
// the identity hash.
type AssetIdentity = lock.AssetIdentity

// Asset is an identity-bound collectible locked to the address derived from
// its owner key and its identity hash.
type Asset struct {
	// Id is a random unique identifier.
	Id string
	// OwnerKey is the hex encoded x-only public key of the owner.
	OwnerKey string
	Identity AssetIdentity
	// Mutable state, never committed in the identity hash so the asset keeps
	// the same address for its whole life.
	Experience            uint64
	LastInteractionHeight uint64
	LastBreedHeight       uint64
	Burned                bool
}
