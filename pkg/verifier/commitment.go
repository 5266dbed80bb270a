package verifier

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

const (
	commitmentPrefix    = "ark-transfer-v1"
	commitmentSeparator = "|"
	commitmentDelimiter = ","
)

// InputRef is the reference to a spent output, signatures excluded.
type InputRef struct {
	Txid string
	VOut uint32
}

func (i InputRef) String() string {
	return fmt.Sprintf("%s:%d", i.Txid, i.VOut)
}

// OutputRef is a (locator, amount) pair.
type OutputRef struct {
	Locator string
	Amount  uint64
}

func (o OutputRef) String() string {
	return fmt.Sprintf("%s:%d", o.Locator, o.Amount)
}

// CommitmentHash returns the digest a transfer is signed against:
//
//	SHA256("ark-transfer-v1|" + txid:vout,... + "|" + locator:amount,...)
//
// Order of inputs and outputs is preserved.
func CommitmentHash(inputs []InputRef, outputs []OutputRef) [32]byte {
	ins := make([]string, 0, len(inputs))
	for _, in := range inputs {
		ins = append(ins, in.String())
	}
	outs := make([]string, 0, len(outputs))
	for _, out := range outputs {
		outs = append(outs, out.String())
	}

	preimage := strings.Join([]string{
		commitmentPrefix,
		strings.Join(ins, commitmentDelimiter),
		strings.Join(outs, commitmentDelimiter),
	}, commitmentSeparator)

	return sha256.Sum256([]byte(preimage))
}
