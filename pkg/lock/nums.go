package lock

import (
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
)

var (
	// NUMSBytes is the x-only "nothing up my sleeve" point H suggested by
	// BIP-341, lift_x(SHA256(G)). Nobody knows its discrete logarithm, so an
	// output using it as internal key can only be spent via script path.
	NUMSBytes, _ = hex.DecodeString(
		"50929b74c1a04954b78b4b6035e97a5e078a5a0f28ec96d547bfee9ace803ac0",
	)
	// NUMSKey is the parsed NUMSBytes.
	NUMSKey = mustParseKey(NUMSBytes)
)

func mustParseKey(key []byte) *btcec.PublicKey {
	pubkey, err := schnorr.ParsePubKey(key)
	if err != nil {
		panic(err)
	}
	return pubkey
}
