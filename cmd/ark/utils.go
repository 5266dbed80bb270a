package main

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/shopspring/decimal"
	"github.com/tdex-network/arkd/pkg/lock"
	"github.com/tdex-network/arkd/pkg/verifier"
)

const btcPrecision = 8

func parseHex(str, name string) ([]byte, error) {
	buf, err := hex.DecodeString(str)
	if err != nil {
		return nil, fmt.Errorf("%s must be hex encoded", name)
	}
	return buf, nil
}

func parseHash(str string) ([32]byte, error) {
	var hash [32]byte
	buf, err := parseHex(str, "hash")
	if err != nil {
		return hash, err
	}
	if len(buf) != len(hash) {
		return hash, fmt.Errorf("hash must be %d bytes, got %d", len(hash), len(buf))
	}
	copy(hash[:], buf)
	return hash, nil
}

// parseInput parses a txid:vout pair.
func parseInput(str string) (verifier.InputRef, error) {
	split := strings.Split(str, ":")
	if len(split) != 2 {
		return verifier.InputRef{}, fmt.Errorf("input %s must be in the form txid:vout", str)
	}
	if _, err := chainhash.NewHashFromStr(split[0]); err != nil ||
		len(split[0]) != chainhash.MaxHashStringSize {
		return verifier.InputRef{}, fmt.Errorf("invalid txid %s", split[0])
	}
	vout, err := strconv.ParseUint(split[1], 10, 32)
	if err != nil {
		return verifier.InputRef{}, fmt.Errorf("invalid vout %s", split[1])
	}
	return verifier.InputRef{Txid: split[0], VOut: uint32(vout)}, nil
}

// parseOutput parses a locator:btc_amount pair. The locator can be either an
// hex encoded output script or an address, that is converted to its script.
func parseOutput(str string, net *chaincfg.Params) (verifier.OutputRef, error) {
	i := strings.LastIndex(str, ":")
	if i <= 0 {
		return verifier.OutputRef{}, fmt.Errorf(
			"output %s must be in the form locator:btc_amount", str,
		)
	}
	locator, amountStr := str[:i], str[i+1:]

	if _, err := hex.DecodeString(locator); err != nil {
		script, err := lock.ScriptFromAddress(locator, net)
		if err != nil {
			return verifier.OutputRef{}, err
		}
		locator = hex.EncodeToString(script)
	}

	amount, err := parseBtcAmount(amountStr)
	if err != nil {
		return verifier.OutputRef{}, err
	}
	return verifier.OutputRef{Locator: locator, Amount: amount}, nil
}

// parseBtcAmount converts a BTC denominated amount to satoshis.
func parseBtcAmount(str string) (uint64, error) {
	amount, err := decimal.NewFromString(str)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %s", str)
	}
	sats := amount.Shift(btcPrecision)
	if !sats.IsInteger() {
		return 0, fmt.Errorf("amount %s exceeds max precision of %d decimals", str, btcPrecision)
	}
	if !sats.IsPositive() {
		return 0, fmt.Errorf("amount must be positive")
	}
	if !sats.BigInt().IsUint64() {
		return 0, fmt.Errorf("amount %s out of range", str)
	}
	return sats.BigInt().Uint64(), nil
}
