package lock

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/tdex-network/arkd/pkg/tweak"
)

// AssetLock is the key-path-only output an identity-bound asset is locked to.
type AssetLock struct {
	OwnerKey     []byte
	IdentityHash IdentityHash
	SpendingKey  []byte
	Address      Address
	OutputScript []byte
}

// BuildAssetIdentityAddress tweaks the owner key with the identity hash,
// applies the standard output key tweak and encodes the result as a
// single-key taproot output. Same owner and same identity always map to the
// same address.
func BuildAssetIdentityAddress(
	ownerKey []byte, identityHash IdentityHash, net *chaincfg.Params,
) (*AssetLock, error) {
	if net == nil {
		return nil, fmt.Errorf("%w: missing network", ErrInvalidParameter)
	}
	key, err := tweak.ParseKey(ownerKey)
	if err != nil {
		return nil, fmt.Errorf("%w: owner key: %s", ErrInvalidParameter, err)
	}

	h := [tweak.TweakSize]byte(identityHash)
	spendingKey, err := tweak.SpendingKey(key, &h)
	if err != nil {
		if errors.Is(err, tweak.ErrInvalidTweak) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidParameter, err)
		}
		return nil, err
	}

	outputScript, err := PayToTaprootScript(spendingKey)
	if err != nil {
		return nil, err
	}
	addr, err := TaprootAddress(spendingKey, net)
	if err != nil {
		return nil, err
	}

	return &AssetLock{
		OwnerKey:     cloneBytes(ownerKey),
		IdentityHash: identityHash,
		SpendingKey:  schnorr.SerializePubKey(spendingKey),
		Address:      addr,
		OutputScript: outputScript,
	}, nil
}

// Locator returns the hex encoded output script of the lock.
func (l *AssetLock) Locator() string {
	return hex.EncodeToString(l.OutputScript)
}
