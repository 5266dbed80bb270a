package lock

import (
	"fmt"

	"github.com/btcsuite/btcd/txscript"
)

// maxScriptNumLen is the max length of a numeric push accepted by
// OP_CHECKSEQUENCEVERIFY.
const maxScriptNumLen = 5

// ParseClaimLeaf decodes a claim leaf built by ClaimLeafScript and returns
// its preimage hash and claim key.
func ParseClaimLeaf(script []byte) (preimageHash, claimKey []byte, err error) {
	tokenizer := txscript.MakeScriptTokenizer(0, script)

	if err := expectOp(&tokenizer, txscript.OP_SHA256); err != nil {
		return nil, nil, err
	}
	if preimageHash, err = expectData(&tokenizer, HashSize); err != nil {
		return nil, nil, err
	}
	if err := expectOp(&tokenizer, txscript.OP_EQUALVERIFY); err != nil {
		return nil, nil, err
	}
	if claimKey, err = expectData(&tokenizer, KeySize); err != nil {
		return nil, nil, err
	}
	if err := expectOp(&tokenizer, txscript.OP_CHECKSIG); err != nil {
		return nil, nil, err
	}
	if err := expectEnd(&tokenizer); err != nil {
		return nil, nil, err
	}
	return preimageHash, claimKey, nil
}

// ParseRefundLeaf decodes a refund leaf built by RefundLeafScript and
// returns its relative timeout and refund key.
func ParseRefundLeaf(script []byte) (timeout int64, refundKey []byte, err error) {
	tokenizer := txscript.MakeScriptTokenizer(0, script)

	if !tokenizer.Next() {
		return 0, nil, fmt.Errorf("%w: missing timeout", ErrMalformedScript)
	}
	op := tokenizer.Opcode()
	switch {
	case op >= txscript.OP_1 && op <= txscript.OP_16:
		timeout = int64(op - (txscript.OP_1 - 1))
	case op >= txscript.OP_DATA_1 && op <= txscript.OP_DATA_5:
		data := tokenizer.Data()
		if len(data) > maxScriptNumLen {
			return 0, nil, fmt.Errorf("%w: timeout too long", ErrMalformedScript)
		}
		timeout = decodeScriptNum(data)
	default:
		return 0, nil, fmt.Errorf("%w: unexpected timeout opcode", ErrMalformedScript)
	}
	if timeout < MinTimeout {
		return 0, nil, fmt.Errorf("%w: timeout out of range", ErrMalformedScript)
	}

	if err := expectOp(&tokenizer, txscript.OP_CHECKSEQUENCEVERIFY); err != nil {
		return 0, nil, err
	}
	if err := expectOp(&tokenizer, txscript.OP_DROP); err != nil {
		return 0, nil, err
	}
	if refundKey, err = expectData(&tokenizer, KeySize); err != nil {
		return 0, nil, err
	}
	if err := expectOp(&tokenizer, txscript.OP_CHECKSIG); err != nil {
		return 0, nil, err
	}
	if err := expectEnd(&tokenizer); err != nil {
		return 0, nil, err
	}
	return timeout, refundKey, nil
}

func expectOp(tokenizer *txscript.ScriptTokenizer, op byte) error {
	if !tokenizer.Next() || tokenizer.Opcode() != op {
		return fmt.Errorf("%w: expected opcode 0x%02x", ErrMalformedScript, op)
	}
	return nil
}

func expectData(tokenizer *txscript.ScriptTokenizer, size int) ([]byte, error) {
	if !tokenizer.Next() || len(tokenizer.Data()) != size {
		return nil, fmt.Errorf("%w: expected %d bytes push", ErrMalformedScript, size)
	}
	return cloneBytes(tokenizer.Data()), nil
}

func expectEnd(tokenizer *txscript.ScriptTokenizer) error {
	if tokenizer.Next() {
		return fmt.Errorf("%w: unexpected trailing opcodes", ErrMalformedScript)
	}
	if err := tokenizer.Err(); err != nil {
		return fmt.Errorf("%w: %s", ErrMalformedScript, err)
	}
	return nil
}

// decodeScriptNum decodes a minimally encoded little-endian script number
// with the sign bit in the most significant byte.
func decodeScriptNum(data []byte) int64 {
	if len(data) == 0 {
		return 0
	}
	var n int64
	for i, b := range data {
		n |= int64(b) << uint8(8*i)
	}
	if data[len(data)-1]&0x80 != 0 {
		n &= ^(int64(0x80) << uint8(8*(len(data)-1)))
		return -n
	}
	return n
}
