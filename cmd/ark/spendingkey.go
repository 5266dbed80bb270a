package main

import (
	"encoding/hex"

	"github.com/tdex-network/arkd/pkg/lock"
	"github.com/tdex-network/arkd/pkg/tweak"
	"github.com/urfave/cli/v2"
)

var identityHashFlag = cli.StringFlag{
	Name:  "identity-hash",
	Usage: "the optional hex encoded identity hash the key is tweaked with",
}

var spendingkey = cli.Command{
	Name:  "spendingkey",
	Usage: "derive the final taproot key of a base key",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "key",
			Usage:    "the hex encoded x-only base key",
			Required: true,
		},
		&identityHashFlag,
	},
	Action: spendingKeyAction,
}

func spendingKeyAction(ctx *cli.Context) error {
	net, err := getNetwork(ctx)
	if err != nil {
		return err
	}
	baseKey, err := parseHex(ctx.String("key"), "key")
	if err != nil {
		return err
	}
	identityHash, err := getIdentityHash(ctx)
	if err != nil {
		return err
	}

	var h *[tweak.TweakSize]byte
	if identityHash != nil {
		hh := [tweak.TweakSize]byte(*identityHash)
		h = &hh
	}
	finalKey, err := tweak.SpendingKeyFromBytes(baseKey, h)
	if err != nil {
		return err
	}
	pubkey, err := tweak.ParseKey(finalKey)
	if err != nil {
		return err
	}
	addr, err := lock.TaprootAddress(pubkey, net)
	if err != nil {
		return err
	}
	script, err := lock.PayToTaprootScript(pubkey)
	if err != nil {
		return err
	}

	printRespJSON(map[string]string{
		"spending_key": hex.EncodeToString(finalKey),
		"address":      addr.String(),
		"locator":      hex.EncodeToString(script),
	})
	return nil
}

func getIdentityHash(ctx *cli.Context) (*lock.IdentityHash, error) {
	str := ctx.String(identityHashFlag.Name)
	if str == "" {
		return nil, nil
	}
	identityHash, err := lock.IdentityHashFromString(str)
	if err != nil {
		return nil, err
	}
	return &identityHash, nil
}
