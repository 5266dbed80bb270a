package main

import (
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/tdex-network/arkd/pkg/verifier"
	"github.com/urfave/cli/v2"
)

var sign = cli.Command{
	Name:  "sign",
	Usage: "sign a commitment or feed hash with a private key",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "hash",
			Usage:    "the hex encoded 32 bytes hash to sign",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "privkey",
			Usage:    "the hex encoded private key",
			Required: true,
		},
		&identityHashFlag,
	},
	Action: signAction,
}

func signAction(ctx *cli.Context) error {
	net, err := getNetwork(ctx)
	if err != nil {
		return err
	}
	hash, err := parseHash(ctx.String("hash"))
	if err != nil {
		return err
	}
	key, err := parseHex(ctx.String("privkey"), "privkey")
	if err != nil {
		return err
	}
	identityHash, err := getIdentityHash(ctx)
	if err != nil {
		return err
	}

	engine, err := verifier.NewEngine(net)
	if err != nil {
		return err
	}

	privKey, pubKey := btcec.PrivKeyFromBytes(key)
	sig, err := engine.Sign(hash, privKey, identityHash)
	if err != nil {
		return err
	}

	spendingKey, err := engine.DeriveSpendingKey(
		pubKey.SerializeCompressed()[1:], identityHash,
	)
	if err != nil {
		return err
	}

	printRespJSON(map[string]string{
		"signature":    hex.EncodeToString(sig),
		"spending_key": hex.EncodeToString(spendingKey),
	})
	return nil
}
