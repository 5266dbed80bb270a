// Package tweak implements the key derivation pipeline shared by signers and
// verifiers:
//
//	internalKey = baseKey + identityHash * G       (optional)
//	finalKey    = TapTweak(internalKey)            (BIP-341, no script root)
//
// Both the public and the private side normalise the parity of every
// intermediate point the way BIP-340 does, so that a signature produced with
// SpendingPrivKey always verifies against SpendingKey.
package tweak

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
)

const (
	// KeySize is the size of a x-only public key.
	KeySize = 32
	// TweakSize is the size of an identity tweak.
	TweakSize = 32

	compressedOddPrefix = 0x03
)

var (
	// ErrInvalidKey is returned if a key is not a valid x-only point.
	ErrInvalidKey = errors.New("invalid x-only public key")
	// ErrInvalidTweak is returned if a tweak is not a valid scalar or if it
	// would bring the key to the point at infinity.
	ErrInvalidTweak = errors.New("invalid tweak")
)

// ParseKey parses a 32-byte x-only public key.
func ParseKey(key []byte) (*btcec.PublicKey, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf(
			"%w: expected %d bytes, got %d", ErrInvalidKey, KeySize, len(key),
		)
	}
	pubkey, err := schnorr.ParsePubKey(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidKey, err)
	}
	return pubkey, nil
}

// IdentityTweak returns key + tweak*G, where key is first lifted to its even
// y representative.
func IdentityTweak(
	key *btcec.PublicKey, tweak [TweakSize]byte,
) (*btcec.PublicKey, error) {
	scalar, err := tweakScalar(tweak)
	if err != nil {
		return nil, err
	}

	var p, t, r btcec.JacobianPoint
	evenKey(key).AsJacobian(&p)
	btcec.ScalarBaseMultNonConst(scalar, &t)
	btcec.AddNonConst(&p, &t, &r)
	if (r.X.IsZero() && r.Y.IsZero()) || r.Z.IsZero() {
		return nil, fmt.Errorf("%w: result is the point at infinity", ErrInvalidTweak)
	}
	r.ToAffine()

	return btcec.NewPublicKey(&r.X, &r.Y), nil
}

// SpendingKey derives the final key embedded in a key-path-only output: the
// optional identity tweak is applied first, then the standard output key
// tweak is always applied to whatever key results.
func SpendingKey(
	baseKey *btcec.PublicKey, identityHash *[TweakSize]byte,
) (*btcec.PublicKey, error) {
	if baseKey == nil {
		return nil, fmt.Errorf("%w: missing key", ErrInvalidKey)
	}

	internalKey := evenKey(baseKey)
	if identityHash != nil {
		var err error
		if internalKey, err = IdentityTweak(internalKey, *identityHash); err != nil {
			return nil, err
		}
	}

	return txscript.ComputeTaprootKeyNoScript(internalKey), nil
}

// SpendingKeyFromBytes is like SpendingKey but works with serialized x-only
// keys.
func SpendingKeyFromBytes(
	baseKey []byte, identityHash *[TweakSize]byte,
) ([]byte, error) {
	key, err := ParseKey(baseKey)
	if err != nil {
		return nil, err
	}
	finalKey, err := SpendingKey(key, identityHash)
	if err != nil {
		return nil, err
	}
	return schnorr.SerializePubKey(finalKey), nil
}

// SpendingPrivKey is the signer side counterpart of SpendingKey.
func SpendingPrivKey(
	privKey *btcec.PrivateKey, identityHash *[TweakSize]byte,
) (*btcec.PrivateKey, error) {
	if privKey == nil {
		return nil, fmt.Errorf("missing private key")
	}

	d := new(btcec.ModNScalar).Set(&privKey.Key)
	if isOdd(privKey.PubKey()) {
		d.Negate()
	}

	if identityHash != nil {
		scalar, err := tweakScalar(*identityHash)
		if err != nil {
			return nil, err
		}
		d.Add(scalar)
		if d.IsZero() {
			return nil, fmt.Errorf("%w: tweaked key is zero", ErrInvalidTweak)
		}
	}

	internalKey := privKeyFromScalar(d).PubKey()
	if isOdd(internalKey) {
		d.Negate()
	}

	tapTweak := chainhash.TaggedHash(
		chainhash.TagTapTweak, schnorr.SerializePubKey(internalKey),
	)
	var t btcec.ModNScalar
	if overflow := t.SetByteSlice(tapTweak[:]); overflow {
		return nil, fmt.Errorf("%w: taproot tweak overflows", ErrInvalidTweak)
	}
	d.Add(&t)

	return privKeyFromScalar(d), nil
}

func tweakScalar(tweak [TweakSize]byte) (*btcec.ModNScalar, error) {
	scalar := new(btcec.ModNScalar)
	if overflow := scalar.SetBytes(&tweak); overflow != 0 {
		return nil, fmt.Errorf("%w: tweak exceeds curve order", ErrInvalidTweak)
	}
	if scalar.IsZero() {
		return nil, fmt.Errorf("%w: tweak is zero", ErrInvalidTweak)
	}
	return scalar, nil
}

func evenKey(key *btcec.PublicKey) *btcec.PublicKey {
	if !isOdd(key) {
		return key
	}
	even, _ := schnorr.ParsePubKey(schnorr.SerializePubKey(key))
	return even
}

func isOdd(key *btcec.PublicKey) bool {
	return key.SerializeCompressed()[0] == compressedOddPrefix
}

func privKeyFromScalar(scalar *btcec.ModNScalar) *btcec.PrivateKey {
	b := scalar.Bytes()
	privKey, _ := btcec.PrivKeyFromBytes(b[:])
	return privKey
}
