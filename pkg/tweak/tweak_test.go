package tweak_test

import (
	"bytes"
	"crypto/sha256"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/txscript"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/arkd/pkg/tweak"
)

func TestSpendingKeyNoIdentity(t *testing.T) {
	t.Parallel()

	for seed := byte(1); seed < 10; seed++ {
		_, pubkey := btcec.PrivKeyFromBytes(bytes.Repeat([]byte{seed}, 32))

		key, err := tweak.SpendingKey(pubkey, nil)
		require.NoError(t, err)

		expected := txscript.ComputeTaprootKeyNoScript(pubkey)
		require.Equal(
			t, schnorr.SerializePubKey(expected), schnorr.SerializePubKey(key),
		)
	}
}

func TestIdentityTweak(t *testing.T) {
	t.Parallel()

	privKey, pubkey := btcec.PrivKeyFromBytes(bytes.Repeat([]byte{0x07}, 32))
	h := sha256.Sum256([]byte("identity"))

	tweaked, err := tweak.IdentityTweak(pubkey, h)
	require.NoError(t, err)

	// (d + h)G == P + hG with d normalised to the even y key.
	d := new(btcec.ModNScalar).Set(&privKey.Key)
	if pubkey.SerializeCompressed()[0] == 0x03 {
		d.Negate()
	}
	var hs btcec.ModNScalar
	hs.SetBytes(&h)
	d.Add(&hs)
	b := d.Bytes()
	_, expected := btcec.PrivKeyFromBytes(b[:])

	require.True(t, expected.IsEqual(tweaked))
}

func TestSpendingPrivKey(t *testing.T) {
	t.Parallel()

	msg := sha256.Sum256([]byte("msg"))

	for seed := byte(1); seed < 20; seed++ {
		privKey, pubkey := btcec.PrivKeyFromBytes(bytes.Repeat([]byte{seed}, 32))
		identity := sha256.Sum256([]byte{seed})

		for _, h := range []*[32]byte{nil, &identity} {
			finalKey, err := tweak.SpendingKey(pubkey, h)
			require.NoError(t, err)

			signingKey, err := tweak.SpendingPrivKey(privKey, h)
			require.NoError(t, err)
			require.Equal(
				t, schnorr.SerializePubKey(finalKey),
				schnorr.SerializePubKey(signingKey.PubKey()),
			)

			sig, err := schnorr.Sign(signingKey, msg[:])
			require.NoError(t, err)
			require.True(t, sig.Verify(msg[:], finalKey))
		}
	}
}

func TestSpendingKeyFromBytes(t *testing.T) {
	t.Parallel()

	_, pubkey := btcec.PrivKeyFromBytes(bytes.Repeat([]byte{0x03}, 32))
	h := sha256.Sum256([]byte("identity"))

	key, err := tweak.SpendingKeyFromBytes(schnorr.SerializePubKey(pubkey), &h)
	require.NoError(t, err)
	require.Len(t, key, tweak.KeySize)

	untweaked, err := tweak.SpendingKeyFromBytes(schnorr.SerializePubKey(pubkey), nil)
	require.NoError(t, err)
	require.NotEqual(t, key, untweaked)
}

func TestFailingSpendingKey(t *testing.T) {
	t.Parallel()

	_, pubkey := btcec.PrivKeyFromBytes(bytes.Repeat([]byte{0x03}, 32))
	key := schnorr.SerializePubKey(pubkey)

	_, err := tweak.SpendingKeyFromBytes(key[:31], nil)
	require.ErrorIs(t, err, tweak.ErrInvalidKey)

	_, err = tweak.SpendingKeyFromBytes(bytes.Repeat([]byte{0xff}, 32), nil)
	require.ErrorIs(t, err, tweak.ErrInvalidKey)

	var zero [32]byte
	_, err = tweak.SpendingKeyFromBytes(key, &zero)
	require.ErrorIs(t, err, tweak.ErrInvalidTweak)

	overflow := [32]byte{}
	for i := range overflow {
		overflow[i] = 0xff
	}
	_, err = tweak.SpendingKeyFromBytes(key, &overflow)
	require.ErrorIs(t, err, tweak.ErrInvalidTweak)

	_, err = tweak.SpendingKey(nil, nil)
	require.ErrorIs(t, err, tweak.ErrInvalidKey)
}
