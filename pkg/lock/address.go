package lock

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/tdex-network/arkd/pkg/tweak"
)

// Address is a bech32m encoded segwit v1 address.
type Address string

func (a Address) String() string {
	return string(a)
}

// PayToTaprootScript creates a pk script for a pay-to-taproot output key.
func PayToTaprootScript(taprootKey *btcec.PublicKey) ([]byte, error) {
	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_1).
		AddData(schnorr.SerializePubKey(taprootKey)).
		Script()
}

// TaprootAddress encodes the given output key as a segwit v1 address for the
// given network.
func TaprootAddress(
	taprootKey *btcec.PublicKey, net *chaincfg.Params,
) (Address, error) {
	if net == nil {
		return "", fmt.Errorf("%w: missing network", ErrInvalidParameter)
	}
	addr, err := btcutil.NewAddressTaproot(
		schnorr.SerializePubKey(taprootKey), net,
	)
	if err != nil {
		return "", err
	}
	return Address(addr.EncodeAddress()), nil
}

// ScriptFromAddress decodes a segwit v1 address for the given network and
// returns its output script.
func ScriptFromAddress(addr string, net *chaincfg.Params) ([]byte, error) {
	if net == nil {
		return nil, fmt.Errorf("%w: missing network", ErrInvalidParameter)
	}
	decoded, err := btcutil.DecodeAddress(addr, net)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedScript, err)
	}
	if _, ok := decoded.(*btcutil.AddressTaproot); !ok {
		return nil, fmt.Errorf("%w: address is not taproot", ErrMalformedScript)
	}
	if !decoded.IsForNet(net) {
		return nil, fmt.Errorf(
			"%w: address is not for network %s", ErrMalformedScript, net.Name,
		)
	}
	return txscript.PayToAddrScript(decoded)
}

// BuildSingleKeyAddress returns the key-path-only address and output script
// for the given owner key, with no identity tweak.
func BuildSingleKeyAddress(
	ownerKey []byte, net *chaincfg.Params,
) (Address, []byte, error) {
	key, err := tweak.ParseKey(ownerKey)
	if err != nil {
		return "", nil, fmt.Errorf("%w: owner key: %s", ErrInvalidParameter, err)
	}
	spendingKey, err := tweak.SpendingKey(key, nil)
	if err != nil {
		return "", nil, err
	}
	outputScript, err := PayToTaprootScript(spendingKey)
	if err != nil {
		return "", nil, err
	}
	addr, err := TaprootAddress(spendingKey, net)
	if err != nil {
		return "", nil, err
	}
	return addr, outputScript, nil
}
