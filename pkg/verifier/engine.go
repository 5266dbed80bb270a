// Package verifier holds the signature engine, the explicit context object
// that every component needing to verify or produce signatures receives at
// construction time.
package verifier

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/tdex-network/arkd/pkg/lock"
	"github.com/tdex-network/arkd/pkg/tweak"
)

const (
	singleKeyScriptLen = 34
	signatureLen       = schnorr.SignatureSize
)

var selfTestSeed = sha256.Sum256([]byte("arkd signature engine self test"))

// Engine derives spending keys and verifies signatures. The zero value and
// a nil engine refuse every signature operation.
type Engine struct {
	net   *chaincfg.Params
	ready bool
}

// NewEngine brings up the curve backend by running a sign/verify round trip
// and returns an engine bound to the given network.
func NewEngine(net *chaincfg.Params) (*Engine, error) {
	if net == nil {
		return nil, fmt.Errorf("missing network params")
	}
	if err := selfTest(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBackendUnavailable, err)
	}
	return &Engine{net: net, ready: true}, nil
}

// Network returns the network the engine is bound to.
func (e *Engine) Network() *chaincfg.Params {
	if e == nil {
		return nil
	}
	return e.net
}

// DeriveSpendingKey applies the optional identity tweak, then the standard
// output key tweak, to the given x-only key.
func (e *Engine) DeriveSpendingKey(
	baseKey []byte, identityHash *lock.IdentityHash,
) ([]byte, error) {
	if err := e.checkBackend(); err != nil {
		return nil, err
	}
	if identityHash == nil {
		return tweak.SpendingKeyFromBytes(baseKey, nil)
	}
	h := [tweak.TweakSize]byte(*identityHash)
	return tweak.SpendingKeyFromBytes(baseKey, &h)
}

// CommitmentHash is the method version of the package level function.
func (e *Engine) CommitmentHash(
	inputs []InputRef, outputs []OutputRef,
) [32]byte {
	return CommitmentHash(inputs, outputs)
}

// Verify returns whether sig is a valid BIP-340 signature of hash under the
// given x-only final key. It errors, rather than returning false, only if the
// engine can't verify signatures at all or if the key is malformed.
func (e *Engine) Verify(hash [32]byte, finalKey, sig []byte) (bool, error) {
	if err := e.checkBackend(); err != nil {
		return false, err
	}
	pubkey, err := tweak.ParseKey(finalKey)
	if err != nil {
		return false, fmt.Errorf("%w: %s", ErrMalformedScript, err)
	}
	if len(sig) != signatureLen {
		return false, nil
	}
	signature, err := schnorr.ParseSignature(sig)
	if err != nil {
		return false, nil
	}
	return signature.Verify(hash[:], pubkey), nil
}

// Sign produces a BIP-340 signature of hash with the key derived from priv
// and the optional identity hash. It's the client side mirror of
// DeriveSpendingKey + Verify.
func (e *Engine) Sign(
	hash [32]byte, privKey *btcec.PrivateKey, identityHash *lock.IdentityHash,
) ([]byte, error) {
	if err := e.checkBackend(); err != nil {
		return nil, err
	}

	var h *[tweak.TweakSize]byte
	if identityHash != nil {
		hh := [tweak.TweakSize]byte(*identityHash)
		h = &hh
	}
	signingKey, err := tweak.SpendingPrivKey(privKey, h)
	if err != nil {
		return nil, err
	}
	sig, err := schnorr.Sign(signingKey, hash[:])
	if err != nil {
		return nil, err
	}
	return sig.Serialize(), nil
}

// ExtractKey returns the key embedded in a single-key taproot locator. The
// locator can be either a hex encoded output script or an address for the
// engine's network.
func (e *Engine) ExtractKey(locator string) ([]byte, error) {
	script, err := hex.DecodeString(locator)
	if err != nil {
		if e == nil || e.net == nil {
			return nil, fmt.Errorf("%w: locator is not hex encoded", ErrMalformedScript)
		}
		script, err = lock.ScriptFromAddress(locator, e.net)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrMalformedScript, err)
		}
	}
	return ExtractKeyFromScript(script)
}

// ExtractKeyFromScript parses a key-path-only output script, exactly
// OP_1 OP_DATA_32 <32-byte key>, and returns the embedded key.
func ExtractKeyFromScript(script []byte) ([]byte, error) {
	if len(script) != singleKeyScriptLen ||
		script[0] != txscript.OP_1 || script[1] != txscript.OP_DATA_32 {
		return nil, fmt.Errorf(
			"%w: expected %d bytes segwit v1 script", ErrMalformedScript,
			singleKeyScriptLen,
		)
	}
	key := append([]byte{}, script[2:]...)
	if _, err := schnorr.ParsePubKey(key); err != nil {
		return nil, fmt.Errorf("%w: embedded key is not on curve", ErrMalformedScript)
	}
	return key, nil
}

func (e *Engine) checkBackend() error {
	if e == nil || !e.ready {
		return ErrBackendUnavailable
	}
	return nil
}

func selfTest() error {
	privKey, pubkey := btcec.PrivKeyFromBytes(selfTestSeed[:])
	msg := sha256.Sum256(selfTestSeed[:])

	sig, err := schnorr.Sign(privKey, msg[:])
	if err != nil {
		return err
	}
	if !sig.Verify(msg[:], pubkey) {
		return fmt.Errorf("self signed message does not verify")
	}

	tampered := sig.Serialize()
	tampered[len(tampered)-1] ^= 0x01
	parsed, err := schnorr.ParseSignature(tampered)
	if err == nil && parsed.Verify(msg[:], pubkey) {
		return fmt.Errorf("tampered signature verifies")
	}

	derived, err := tweak.SpendingPrivKey(privKey, nil)
	if err != nil {
		return err
	}
	expected, err := tweak.SpendingKey(pubkey, nil)
	if err != nil {
		return err
	}
	if !bytes.Equal(
		schnorr.SerializePubKey(derived.PubKey()), schnorr.SerializePubKey(expected),
	) {
		return fmt.Errorf("private and public key tweaks diverge")
	}
	return nil
}
