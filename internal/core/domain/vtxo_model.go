package domain

import "fmt"

// Locator is the opaque destination descriptor a VTXO is locked to. In
// practice it's the hex-encoded Taproot output script of the owner.
type Locator string

// VtxoKey represent the ID of a Vtxo, composed by its txid and vout.
type VtxoKey struct {
	Txid string
	VOut uint32
}

func (k VtxoKey) String() string {
	return fmt.Sprintf("%s:%d", k.Txid, k.VOut)
}

// Vtxo is the data structure representing a virtual (off-chain) output
// tracked by the ledger.
type Vtxo struct {
	VtxoKey
	Amount      uint64
	Locator     Locator
	Spent       bool
	RoundHeight uint64
}

// Output is a (locator, amount) pair as found in a transfer or in a pending
// request.
type Output struct {
	Locator Locator
	Amount  uint64
}

func (o Output) String() string {
	return fmt.Sprintf("%s:%d", o.Locator, o.Amount)
}

// PendingRequest is a mint/lift request waiting to be included in the next
// round.
type PendingRequest struct {
	Output
}
