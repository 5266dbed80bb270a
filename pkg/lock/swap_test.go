package lock_test

import (
	"bytes"
	"crypto/sha256"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/arkd/pkg/lock"
)

var (
	net          = &chaincfg.RegressionNetParams
	claimKey     = xOnlyKey(0x01)
	refundKey    = xOnlyKey(0x02)
	preimage     = []byte("preimage")
	preimageHash = sha256Sum(preimage)
)

func TestBuildSwapLock(t *testing.T) {
	t.Parallel()

	swapLock, err := lock.BuildSwapLock(
		claimKey, refundKey, preimageHash, 20, net,
	)
	require.NoError(t, err)
	require.NotNil(t, swapLock)

	require.Len(t, swapLock.OutputScript, 34)
	require.Equal(t, byte(txscript.OP_1), swapLock.OutputScript[0])
	require.Equal(t, byte(txscript.OP_DATA_32), swapLock.OutputScript[1])
	require.Len(t, swapLock.TapscriptRoot, 32)

	script, err := lock.ScriptFromAddress(swapLock.Address.String(), net)
	require.NoError(t, err)
	require.Equal(t, swapLock.OutputScript, script)

	require.NoError(t, swapLock.VerifyControlBlocks())

	// Output key must commit to the NUMS internal key and the tree root.
	outputKey := txscript.ComputeTaprootOutputKey(
		lock.NUMSKey, swapLock.TapscriptRoot,
	)
	require.Equal(t, schnorr.SerializePubKey(outputKey), swapLock.OutputScript[2:])
}

func TestBuildSwapLockDeterminism(t *testing.T) {
	t.Parallel()

	first, err := lock.BuildSwapLock(claimKey, refundKey, preimageHash, 144, net)
	require.NoError(t, err)
	second, err := lock.BuildSwapLock(claimKey, refundKey, preimageHash, 144, net)
	require.NoError(t, err)

	require.Equal(t, first.Address, second.Address)
	require.Equal(t, first.OutputScript, second.OutputScript)
	require.Equal(t, first.ClaimLeaf, second.ClaimLeaf)
	require.Equal(t, first.RefundLeaf, second.RefundLeaf)
	require.Equal(t, first.ClaimControlBlock, second.ClaimControlBlock)
	require.Equal(t, first.RefundControlBlock, second.RefundControlBlock)
	require.Equal(t, first.TapscriptRoot, second.TapscriptRoot)
}

func TestBuildSwapLockSensitivity(t *testing.T) {
	t.Parallel()

	base, err := lock.BuildSwapLock(claimKey, refundKey, preimageHash, 144, net)
	require.NoError(t, err)

	for i := range preimageHash {
		hash := flipByte(preimageHash, i)
		swapLock, err := lock.BuildSwapLock(claimKey, refundKey, hash, 144, net)
		require.NoError(t, err)
		require.NotEqual(t, base.Address, swapLock.Address)
	}

	for _, keys := range []struct {
		name   string
		mutate func(i int) ([]byte, []byte)
	}{
		{"claim key", func(i int) ([]byte, []byte) {
			return flipByte(claimKey, i), refundKey
		}},
		{"refund key", func(i int) ([]byte, []byte) {
			return claimKey, flipByte(refundKey, i)
		}},
	} {
		checked := 0
		for i := 0; i < lock.KeySize; i++ {
			claim, refund := keys.mutate(i)
			swapLock, err := lock.BuildSwapLock(claim, refund, preimageHash, 144, net)
			if err != nil {
				// The mutated x coordinate is not on the curve.
				require.ErrorIs(t, err, lock.ErrInvalidParameter)
				continue
			}
			checked++
			require.NotEqual(t, base.Address, swapLock.Address, keys.name)
		}
		require.Greater(t, checked, 0, keys.name)
	}

	for _, timeout := range []int64{1, 143, 145, 1 << 16, lock.MaxTimeout} {
		swapLock, err := lock.BuildSwapLock(claimKey, refundKey, preimageHash, timeout, net)
		require.NoError(t, err)
		require.NotEqual(t, base.Address, swapLock.Address)
	}
}

func TestFailingBuildSwapLock(t *testing.T) {
	t.Parallel()

	notOnCurve := bytes.Repeat([]byte{0xff}, 32)

	tests := []struct {
		name         string
		claimKey     []byte
		refundKey    []byte
		preimageHash []byte
		timeout      int64
	}{
		{"short claim key", claimKey[:31], refundKey, preimageHash, 20},
		{"invalid claim key", notOnCurve, refundKey, preimageHash, 20},
		{"long refund key", claimKey, append(cloneKey(refundKey), 0x00), preimageHash, 20},
		{"short preimage hash", claimKey, refundKey, preimageHash[:20], 20},
		{"zero timeout", claimKey, refundKey, preimageHash, 0},
		{"negative timeout", claimKey, refundKey, preimageHash, -1},
		{"timeout overflow", claimKey, refundKey, preimageHash, lock.MaxTimeout + 1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			swapLock, err := lock.BuildSwapLock(
				tt.claimKey, tt.refundKey, tt.preimageHash, tt.timeout, net,
			)
			require.ErrorIs(t, err, lock.ErrInvalidParameter)
			require.Nil(t, swapLock)
		})
	}
}

func TestSwapLockLeaves(t *testing.T) {
	t.Parallel()

	swapLock, err := lock.BuildSwapLock(claimKey, refundKey, preimageHash, 20, net)
	require.NoError(t, err)

	hash, key, err := lock.ParseClaimLeaf(swapLock.ClaimLeaf)
	require.NoError(t, err)
	require.Equal(t, preimageHash, hash)
	require.Equal(t, claimKey, key)
	require.Equal(t, byte(txscript.OP_SHA256), swapLock.ClaimLeaf[0])
	require.True(t, bytes.Contains(swapLock.ClaimLeaf, preimageHash))

	timeout, key, err := lock.ParseRefundLeaf(swapLock.RefundLeaf)
	require.NoError(t, err)
	require.Equal(t, int64(20), timeout)
	require.Equal(t, refundKey, key)
	require.True(t, bytes.Contains(swapLock.RefundLeaf, []byte{
		txscript.OP_DATA_1, 20, txscript.OP_CHECKSEQUENCEVERIFY,
	}))

	for _, timeout := range []int64{1, 16, 17, 255, 256, 65535, lock.MaxTimeout} {
		leaf, err := lock.RefundLeafScript(refundKey, timeout)
		require.NoError(t, err)
		parsed, _, err := lock.ParseRefundLeaf(leaf)
		require.NoError(t, err)
		require.Equal(t, timeout, parsed)
	}

	_, _, err = lock.ParseClaimLeaf(swapLock.RefundLeaf)
	require.ErrorIs(t, err, lock.ErrMalformedScript)
	_, _, err = lock.ParseRefundLeaf(swapLock.ClaimLeaf)
	require.ErrorIs(t, err, lock.ErrMalformedScript)
}

func TestSwapLockTamperedControlBlock(t *testing.T) {
	t.Parallel()

	swapLock, err := lock.BuildSwapLock(claimKey, refundKey, preimageHash, 20, net)
	require.NoError(t, err)

	swapLock.ClaimLeaf = swapLock.RefundLeaf
	require.ErrorIs(t, swapLock.VerifyControlBlocks(), lock.ErrMalformedScript)
}

func xOnlyKey(seed byte) []byte {
	_, pubkey := btcec.PrivKeyFromBytes(bytes.Repeat([]byte{seed}, 32))
	return schnorr.SerializePubKey(pubkey)
}

func sha256Sum(buf []byte) []byte {
	h := sha256.Sum256(buf)
	return h[:]
}

func flipByte(buf []byte, i int) []byte {
	b := append([]byte{}, buf...)
	b[i] ^= 0x01
	return b
}

func cloneKey(key []byte) []byte {
	return append([]byte{}, key...)
}
