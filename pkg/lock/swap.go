package lock

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"math"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
)

const (
	// HashSize is the size of a preimage hash.
	HashSize = 32
	// KeySize is the size of a x-only public key.
	KeySize = 32

	// MinTimeout and MaxTimeout delimit the valid relative timelock range.
	MinTimeout = 1
	MaxTimeout = math.MaxUint32

	claimLeafIndex  = 0
	refundLeafIndex = 1
)

// SwapLock is the fully derived descriptor of a swap contract: claim by
// revealing the preimage of PreimageHash with ClaimKey, or refund with
// RefundKey after Timeout blocks.
type SwapLock struct {
	ClaimKey           []byte
	RefundKey          []byte
	PreimageHash       []byte
	Timeout            int64
	Address            Address
	OutputScript       []byte
	TapscriptRoot      []byte
	ClaimLeaf          []byte
	RefundLeaf         []byte
	ClaimControlBlock  []byte
	RefundControlBlock []byte
}

// BuildSwapLock derives the swap contract output for the given parameters.
// The internal key is the NUMS point, so the output has no key-path spend.
// Identical arguments always produce byte-identical results.
func BuildSwapLock(
	claimKey, refundKey, preimageHash []byte, timeout int64,
	net *chaincfg.Params,
) (*SwapLock, error) {
	if err := validateKey("claim key", claimKey); err != nil {
		return nil, err
	}
	if err := validateKey("refund key", refundKey); err != nil {
		return nil, err
	}
	if len(preimageHash) != HashSize {
		return nil, fmt.Errorf(
			"%w: preimage hash must be %d bytes, got %d",
			ErrInvalidParameter, HashSize, len(preimageHash),
		)
	}
	if timeout < MinTimeout || timeout > MaxTimeout {
		return nil, fmt.Errorf(
			"%w: timeout must be in range [%d, %d]",
			ErrInvalidParameter, MinTimeout, int64(MaxTimeout),
		)
	}
	if net == nil {
		return nil, fmt.Errorf("%w: missing network", ErrInvalidParameter)
	}

	claimLeaf, err := ClaimLeafScript(claimKey, preimageHash)
	if err != nil {
		return nil, err
	}
	refundLeaf, err := RefundLeafScript(refundKey, timeout)
	if err != nil {
		return nil, err
	}

	tapTree := txscript.AssembleTaprootScriptTree(
		txscript.NewBaseTapLeaf(claimLeaf), txscript.NewBaseTapLeaf(refundLeaf),
	)
	root := tapTree.RootNode.TapHash()
	outputKey := txscript.ComputeTaprootOutputKey(NUMSKey, root[:])

	outputScript, err := PayToTaprootScript(outputKey)
	if err != nil {
		return nil, err
	}
	addr, err := TaprootAddress(outputKey, net)
	if err != nil {
		return nil, err
	}

	claimCtrlBlock, err := serializeControlBlock(tapTree, claimLeafIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize claim control block: %s", err)
	}
	refundCtrlBlock, err := serializeControlBlock(tapTree, refundLeafIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize refund control block: %s", err)
	}

	return &SwapLock{
		ClaimKey:           cloneBytes(claimKey),
		RefundKey:          cloneBytes(refundKey),
		PreimageHash:       cloneBytes(preimageHash),
		Timeout:            timeout,
		Address:            addr,
		OutputScript:       outputScript,
		TapscriptRoot:      root[:],
		ClaimLeaf:          claimLeaf,
		RefundLeaf:         refundLeaf,
		ClaimControlBlock:  claimCtrlBlock,
		RefundControlBlock: refundCtrlBlock,
	}, nil
}

// Locator returns the hex encoded output script of the lock.
func (l *SwapLock) Locator() string {
	return hex.EncodeToString(l.OutputScript)
}

// VerifyControlBlocks checks that both control blocks commit to the output
// key of the lock for their respective leaf.
func (l *SwapLock) VerifyControlBlocks() error {
	leaves := []struct {
		name              string
		script, ctrlBlock []byte
	}{
		{"claim", l.ClaimLeaf, l.ClaimControlBlock},
		{"refund", l.RefundLeaf, l.RefundControlBlock},
	}
	for _, leaf := range leaves {
		ctrlBlock, err := txscript.ParseControlBlock(leaf.ctrlBlock)
		if err != nil {
			return fmt.Errorf("%w: %s control block: %s", ErrMalformedScript, leaf.name, err)
		}
		if !bytes.Equal(schnorr.SerializePubKey(ctrlBlock.InternalKey), NUMSBytes) {
			return fmt.Errorf(
				"%w: %s control block internal key is not NUMS", ErrMalformedScript, leaf.name,
			)
		}
		if !bytes.Equal(ctrlBlock.RootHash(leaf.script), l.TapscriptRoot) {
			return fmt.Errorf(
				"%w: %s leaf does not belong to the tree", ErrMalformedScript, leaf.name,
			)
		}
	}
	return nil
}

// ClaimLeafScript returns the claim leaf:
//
//	OP_SHA256 <preimage_hash> OP_EQUALVERIFY <claim_key> OP_CHECKSIG
func ClaimLeafScript(claimKey, preimageHash []byte) ([]byte, error) {
	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_SHA256).
		AddData(preimageHash).
		AddOp(txscript.OP_EQUALVERIFY).
		AddData(claimKey).
		AddOp(txscript.OP_CHECKSIG).
		Script()
}

// RefundLeafScript returns the refund leaf:
//
//	<timeout> OP_CHECKSEQUENCEVERIFY OP_DROP <refund_key> OP_CHECKSIG
func RefundLeafScript(refundKey []byte, timeout int64) ([]byte, error) {
	return txscript.NewScriptBuilder().
		AddInt64(timeout).
		AddOp(txscript.OP_CHECKSEQUENCEVERIFY).
		AddOp(txscript.OP_DROP).
		AddData(refundKey).
		AddOp(txscript.OP_CHECKSIG).
		Script()
}

func serializeControlBlock(
	tapTree *txscript.IndexedTapScriptTree, leafIndex int,
) ([]byte, error) {
	ctrlBlock := tapTree.LeafMerkleProofs[leafIndex].ToControlBlock(NUMSKey)
	return ctrlBlock.ToBytes()
}

func validateKey(name string, key []byte) error {
	if len(key) != KeySize {
		return fmt.Errorf(
			"%w: %s must be %d bytes, got %d", ErrInvalidParameter, name, KeySize, len(key),
		)
	}
	if _, err := schnorr.ParsePubKey(key); err != nil {
		return fmt.Errorf("%w: %s is not a valid x-only key", ErrInvalidParameter, name)
	}
	return nil
}

func cloneBytes(b []byte) []byte {
	return append([]byte{}, b...)
}
