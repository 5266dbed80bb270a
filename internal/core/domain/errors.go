package domain

import "errors"

var (
	// ErrDuplicateVtxo is returned when inserting a vtxo whose key exists.
	ErrDuplicateVtxo = errors.New("vtxo already exists")
	// ErrVtxoNotFound is returned when a vtxo is not in the ledger.
	ErrVtxoNotFound = errors.New("vtxo not found")
	// ErrVtxoAlreadySpent is returned when trying to spend a spent vtxo.
	ErrVtxoAlreadySpent = errors.New("vtxo already spent")
	// ErrInvalidLocator is returned for locators that are not hex encoded
	// output scripts.
	ErrInvalidLocator = errors.New("invalid locator")
	// ErrInvalidRequest ...
	ErrInvalidRequest = errors.New("invalid pending request")
	// ErrRoundNotFound ...
	ErrRoundNotFound = errors.New("round not found")
	// ErrAssetNotFound ...
	ErrAssetNotFound = errors.New("asset not found")
	// ErrDuplicateAsset ...
	ErrDuplicateAsset = errors.New("asset already exists")
	// ErrAssetBurned is returned when operating on an asset already burned in
	// a breeding.
	ErrAssetBurned = errors.New("asset is burned")
	// ErrAssetCooldown is returned when an asset interaction happens before
	// its cooldown elapsed.
	ErrAssetCooldown = errors.New("asset cooldown not elapsed")
	// ErrMaxGenerationReached ...
	ErrMaxGenerationReached = errors.New("asset reached max generation")
	// ErrSameParents ...
	ErrSameParents = errors.New("an asset can't be bred with itself")
)
