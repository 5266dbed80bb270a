package verifier_test

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/arkd/pkg/lock"
	"github.com/tdex-network/arkd/pkg/verifier"
)

var net = &chaincfg.RegressionNetParams

func newTestEngine(t *testing.T) *verifier.Engine {
	engine, err := verifier.NewEngine(net)
	require.NoError(t, err)
	return engine
}

func TestCommitmentHash(t *testing.T) {
	t.Parallel()

	inputs := []verifier.InputRef{{Txid: "aa", VOut: 0}, {Txid: "bb", VOut: 1}}
	outputs := []verifier.OutputRef{{Locator: "l1", Amount: 600}, {Locator: "l2", Amount: 400}}

	expected := sha256.Sum256([]byte("ark-transfer-v1|aa:0,bb:1|l1:600,l2:400"))
	require.Equal(t, expected, verifier.CommitmentHash(inputs, outputs))

	reversed := []verifier.InputRef{inputs[1], inputs[0]}
	require.NotEqual(t, expected, verifier.CommitmentHash(reversed, outputs))

	empty := sha256.Sum256([]byte("ark-transfer-v1||"))
	require.Equal(t, empty, verifier.CommitmentHash(nil, nil))
}

func TestSignVerify(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)
	privKey, pubkey := btcec.PrivKeyFromBytes(bytes.Repeat([]byte{0x11}, 32))
	baseKey := schnorr.SerializePubKey(pubkey)
	hash := verifier.CommitmentHash(
		[]verifier.InputRef{{Txid: "aa", VOut: 0}},
		[]verifier.OutputRef{{Locator: "l1", Amount: 1000}},
	)
	identityHash := lock.ComputeIdentityHash(lock.AssetIdentity{Payload: "dna"})

	for _, h := range []*lock.IdentityHash{nil, &identityHash} {
		finalKey, err := engine.DeriveSpendingKey(baseKey, h)
		require.NoError(t, err)

		sig, err := engine.Sign(hash, privKey, h)
		require.NoError(t, err)

		ok, err := engine.Verify(hash, finalKey, sig)
		require.NoError(t, err)
		require.True(t, ok)

		// Wrong key.
		ok, err = engine.Verify(hash, baseKey, sig)
		require.NoError(t, err)
		require.False(t, ok)

		// 1-bit flip.
		tampered := append([]byte{}, sig...)
		tampered[10] ^= 0x01
		ok, err = engine.Verify(hash, finalKey, tampered)
		require.NoError(t, err)
		require.False(t, ok)

		// Truncated.
		ok, err = engine.Verify(hash, finalKey, sig[:63])
		require.NoError(t, err)
		require.False(t, ok)
	}
}

func TestSignedAgainstAssetAddress(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)
	privKey, pubkey := btcec.PrivKeyFromBytes(bytes.Repeat([]byte{0x22}, 32))
	identityHash := lock.ComputeIdentityHash(lock.AssetIdentity{
		Payload: "dna", Generation: 1, Cooldown: 3,
	})

	assetLock, err := lock.BuildAssetIdentityAddress(
		schnorr.SerializePubKey(pubkey), identityHash, net,
	)
	require.NoError(t, err)

	key, err := engine.ExtractKey(assetLock.Locator())
	require.NoError(t, err)

	hash := sha256.Sum256([]byte("msg"))
	sig, err := engine.Sign(hash, privKey, &identityHash)
	require.NoError(t, err)

	ok, err := engine.Verify(hash, key, sig)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestExtractKey(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)
	_, pubkey := btcec.PrivKeyFromBytes(bytes.Repeat([]byte{0x33}, 32))
	addr, script, err := lock.BuildSingleKeyAddress(schnorr.SerializePubKey(pubkey), net)
	require.NoError(t, err)

	fromScript, err := engine.ExtractKey(hex.EncodeToString(script))
	require.NoError(t, err)
	require.Equal(t, script[2:], fromScript)

	fromAddr, err := engine.ExtractKey(addr.String())
	require.NoError(t, err)
	require.Equal(t, fromScript, fromAddr)
}

func TestFailingExtractKey(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)
	_, pubkey := btcec.PrivKeyFromBytes(bytes.Repeat([]byte{0x33}, 32))
	_, script, err := lock.BuildSingleKeyAddress(schnorr.SerializePubKey(pubkey), net)
	require.NoError(t, err)

	notOnCurve := append([]byte{0x51, 0x20}, bytes.Repeat([]byte{0xff}, 32)...)
	segwitV0 := append([]byte{0x00, 0x20}, script[2:]...)

	tests := []struct {
		name    string
		locator string
	}{
		{"empty", ""},
		{"garbage", "notalocator"},
		{"truncated", hex.EncodeToString(script[:33])},
		{"trailing", hex.EncodeToString(append(append([]byte{}, script...), 0x00))},
		{"segwit v0", hex.EncodeToString(segwitV0)},
		{"not on curve", hex.EncodeToString(notOnCurve)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			key, err := engine.ExtractKey(tt.locator)
			require.ErrorIs(t, err, verifier.ErrMalformedScript)
			require.Nil(t, key)
		})
	}
}

func TestBackendUnavailable(t *testing.T) {
	t.Parallel()

	var engine *verifier.Engine
	hash := sha256.Sum256([]byte("msg"))
	privKey, pubkey := btcec.PrivKeyFromBytes(bytes.Repeat([]byte{0x44}, 32))

	_, err := engine.Verify(hash, schnorr.SerializePubKey(pubkey), make([]byte, 64))
	require.ErrorIs(t, err, verifier.ErrBackendUnavailable)

	_, err = engine.Sign(hash, privKey, nil)
	require.ErrorIs(t, err, verifier.ErrBackendUnavailable)

	_, err = engine.DeriveSpendingKey(schnorr.SerializePubKey(pubkey), nil)
	require.ErrorIs(t, err, verifier.ErrBackendUnavailable)

	zero := &verifier.Engine{}
	_, err = zero.Verify(hash, schnorr.SerializePubKey(pubkey), make([]byte, 64))
	require.ErrorIs(t, err, verifier.ErrBackendUnavailable)

	_, err = verifier.NewEngine(nil)
	require.Error(t, err)
}
