package lock

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// IdentityHash is the digest of the immutable identity subset of an asset.
type IdentityHash [sha256.Size]byte

func (h IdentityHash) String() string {
	return hex.EncodeToString(h[:])
}

// IdentityHashFromString parses a hex encoded identity hash.
func IdentityHashFromString(str string) (IdentityHash, error) {
	var h IdentityHash
	buf, err := hex.DecodeString(str)
	if err != nil {
		return h, fmt.Errorf("%w: identity hash must be hex encoded", ErrInvalidParameter)
	}
	if len(buf) != len(h) {
		return h, fmt.Errorf(
			"%w: identity hash must be %d bytes, got %d",
			ErrInvalidParameter, len(h), len(buf),
		)
	}
	copy(h[:], buf)
	return h, nil
}

// AssetIdentity is the immutable subset of an asset record. It's fixed when
// the asset is minted or bred and is the only part of the record that binds
// the asset to its owning address.
type AssetIdentity struct {
	// Payload is the opaque identity (DNA) produced by an external generator.
	Payload    string   `json:"payload"`
	Generation uint32   `json:"generation"`
	Cooldown   uint32   `json:"cooldown"`
	Ancestors  []string `json:"ancestors,omitempty"`
}

// Validate returns an error if the payload or any ancestor is not valid
// UTF-8, since those can't be serialized without loss.
func (i AssetIdentity) Validate() error {
	if !utf8.ValidString(i.Payload) {
		return fmt.Errorf("%w: identity payload must be valid utf-8", ErrInvalidParameter)
	}
	for n, ancestor := range i.Ancestors {
		if !utf8.ValidString(ancestor) {
			return fmt.Errorf(
				"%w: identity ancestor %d must be valid utf-8", ErrInvalidParameter, n,
			)
		}
	}
	return nil
}

// ComputeIdentityHash serializes exactly the immutable fields of the given
// identity with sorted keys and hashes the result once with SHA-256.
// A nil ancestor list hashes like an empty one. The identity is expected to
// be valid, see Validate.
func ComputeIdentityHash(identity AssetIdentity) IdentityHash {
	ancestors := identity.Ancestors
	if ancestors == nil {
		ancestors = []string{}
	}

	// Maps are always encoded with sorted keys.
	canonical := map[string]interface{}{
		"ancestors":  ancestors,
		"cooldown":   identity.Cooldown,
		"generation": identity.Generation,
		"payload":    identity.Payload,
	}
	// nolint
	buf, _ := json.Marshal(canonical)

	return sha256.Sum256(buf)
}
