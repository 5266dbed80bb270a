package main

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/tdex-network/arkd/pkg/lock"
	"github.com/urfave/cli/v2"
)

var swaplock = cli.Command{
	Name:  "swaplock",
	Usage: "build the taproot output of a hash/time locked swap contract",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "claim-key",
			Usage:    "the hex encoded x-only key of the claimer",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "refund-key",
			Usage:    "the hex encoded x-only key of the refunder",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "preimage-hash",
			Usage: "the hex encoded sha256 hash of the preimage",
		},
		&cli.StringFlag{
			Name:  "preimage",
			Usage: "the hex encoded preimage, alternative to preimage-hash",
		},
		&cli.Int64Flag{
			Name:     "timeout",
			Usage:    "the relative timeout in blocks after which refund is possible",
			Required: true,
		},
	},
	Action: swapLockAction,
}

type swapLockReply struct {
	Address            string `json:"address"`
	OutputScript       string `json:"output_script"`
	TapscriptRoot      string `json:"tapscript_root"`
	ClaimLeaf          string `json:"claim_leaf"`
	RefundLeaf         string `json:"refund_leaf"`
	ClaimControlBlock  string `json:"claim_control_block"`
	RefundControlBlock string `json:"refund_control_block"`
	PreimageHash       string `json:"preimage_hash"`
	Timeout            int64  `json:"timeout"`
}

func swapLockAction(ctx *cli.Context) error {
	net, err := getNetwork(ctx)
	if err != nil {
		return err
	}

	claimKey, err := parseHex(ctx.String("claim-key"), "claim-key")
	if err != nil {
		return err
	}
	refundKey, err := parseHex(ctx.String("refund-key"), "refund-key")
	if err != nil {
		return err
	}
	preimageHash, err := getPreimageHash(ctx)
	if err != nil {
		return err
	}

	swapLock, err := lock.BuildSwapLock(
		claimKey, refundKey, preimageHash, ctx.Int64("timeout"), net,
	)
	if err != nil {
		return err
	}

	printRespJSON(swapLockReply{
		Address:            swapLock.Address.String(),
		OutputScript:       hex.EncodeToString(swapLock.OutputScript),
		TapscriptRoot:      hex.EncodeToString(swapLock.TapscriptRoot),
		ClaimLeaf:          hex.EncodeToString(swapLock.ClaimLeaf),
		RefundLeaf:         hex.EncodeToString(swapLock.RefundLeaf),
		ClaimControlBlock:  hex.EncodeToString(swapLock.ClaimControlBlock),
		RefundControlBlock: hex.EncodeToString(swapLock.RefundControlBlock),
		PreimageHash:       hex.EncodeToString(swapLock.PreimageHash),
		Timeout:            swapLock.Timeout,
	})
	return nil
}

func getPreimageHash(ctx *cli.Context) ([]byte, error) {
	preimageHash, preimage := ctx.String("preimage-hash"), ctx.String("preimage")
	if (preimageHash == "") == (preimage == "") {
		return nil, fmt.Errorf("either preimage-hash or preimage must be given")
	}
	if preimageHash != "" {
		return parseHex(preimageHash, "preimage-hash")
	}

	buf, err := parseHex(preimage, "preimage")
	if err != nil {
		return nil, err
	}
	hash := sha256.Sum256(buf)
	return hash[:], nil
}
