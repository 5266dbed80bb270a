package domain

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/txscript"
)

// NewVtxo returns a new unspent Vtxo.
func NewVtxo(
	txid string, vout uint32, amount uint64, locator Locator, roundHeight uint64,
) Vtxo {
	return Vtxo{
		VtxoKey:     VtxoKey{Txid: txid, VOut: vout},
		Amount:      amount,
		Locator:     locator,
		RoundHeight: roundHeight,
	}
}

// NewPendingRequest validates the given locator and amount and returns a new
// pending request.
func NewPendingRequest(locator Locator, amount uint64) (*PendingRequest, error) {
	if len(strings.TrimSpace(string(locator))) <= 0 {
		return nil, fmt.Errorf("%w: missing destination locator", ErrInvalidRequest)
	}
	if err := locator.Validate(); err != nil {
		return nil, err
	}
	if amount == 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidRequest)
	}
	return &PendingRequest{Output{locator, amount}}, nil
}

// Validate returns an error if the locator is not a hex encoded, parsable
// output script. Locators are committed as plain text in transfer hashes, so
// anything else could be made to collide with a different list of outputs.
func (l Locator) Validate() error {
	script, err := hex.DecodeString(string(l))
	if err != nil {
		return fmt.Errorf("%w: must be a hex encoded output script", ErrInvalidLocator)
	}
	if len(script) <= 0 || len(script) > txscript.MaxScriptSize {
		return fmt.Errorf(
			"%w: script size must be in range [1, %d], got %d",
			ErrInvalidLocator, txscript.MaxScriptSize, len(script),
		)
	}
	tokenizer := txscript.MakeScriptTokenizer(0, script)
	for tokenizer.Next() {
	}
	if err := tokenizer.Err(); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidLocator, err)
	}
	return nil
}

// Key returns the VtxoKey of the current vtxo.
func (v *Vtxo) Key() VtxoKey {
	return v.VtxoKey
}

// IsSpent returns whether the vtxo is already spent.
func (v *Vtxo) IsSpent() bool {
	return v.Spent
}

// Spend marks the vtxo as spent. It never reverts.
func (v *Vtxo) Spend() {
	v.Spent = true
}
