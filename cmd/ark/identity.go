package main

import (
	"encoding/hex"

	"github.com/tdex-network/arkd/pkg/lock"
	"github.com/urfave/cli/v2"
)

var identityFlags = []cli.Flag{
	&cli.StringFlag{
		Name:     "payload",
		Usage:    "the opaque identity payload of the asset",
		Required: true,
	},
	&cli.UintFlag{
		Name:  "generation",
		Usage: "the generation of the asset",
	},
	&cli.UintFlag{
		Name:  "cooldown",
		Usage: "the cooldown of the asset, in rounds",
	},
	&cli.StringSliceFlag{
		Name:  "ancestor",
		Usage: "the id of a parent of the asset, can be repeated",
	},
}

var identityhash = cli.Command{
	Name:   "identityhash",
	Usage:  "compute the identity hash of an asset",
	Flags:  identityFlags,
	Action: identityHashAction,
}

var assetaddress = cli.Command{
	Name:  "assetaddress",
	Usage: "derive the identity bound address of an asset",
	Flags: append([]cli.Flag{
		&cli.StringFlag{
			Name:     "owner-key",
			Usage:    "the hex encoded x-only key of the owner",
			Required: true,
		},
	}, identityFlags...),
	Action: assetAddressAction,
}

type assetAddressReply struct {
	IdentityHash string `json:"identity_hash"`
	SpendingKey  string `json:"spending_key"`
	Address      string `json:"address"`
	Locator      string `json:"locator"`
}

func identityHashAction(ctx *cli.Context) error {
	identityHash := lock.ComputeIdentityHash(getIdentity(ctx))

	printRespJSON(map[string]string{
		"identity_hash": identityHash.String(),
	})
	return nil
}

func assetAddressAction(ctx *cli.Context) error {
	net, err := getNetwork(ctx)
	if err != nil {
		return err
	}
	ownerKey, err := parseHex(ctx.String("owner-key"), "owner-key")
	if err != nil {
		return err
	}

	identityHash := lock.ComputeIdentityHash(getIdentity(ctx))
	assetLock, err := lock.BuildAssetIdentityAddress(ownerKey, identityHash, net)
	if err != nil {
		return err
	}

	printRespJSON(assetAddressReply{
		IdentityHash: identityHash.String(),
		SpendingKey:  hex.EncodeToString(assetLock.SpendingKey),
		Address:      assetLock.Address.String(),
		Locator:      assetLock.Locator(),
	})
	return nil
}

func getIdentity(ctx *cli.Context) lock.AssetIdentity {
	return lock.AssetIdentity{
		Payload:    ctx.String("payload"),
		Generation: uint32(ctx.Uint("generation")),
		Cooldown:   uint32(ctx.Uint("cooldown")),
		Ancestors:  ctx.StringSlice("ancestor"),
	}
}
