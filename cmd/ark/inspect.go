package main

import (
	"encoding/hex"
	"fmt"

	"github.com/tdex-network/arkd/pkg/lock"
	"github.com/tdex-network/arkd/pkg/verifier"
	"github.com/urfave/cli/v2"
)

var inspect = cli.Command{
	Name:  "inspect",
	Usage: "decode a swap leaf script or a single key locator",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "script",
			Usage:    "the hex encoded script, or an address",
			Required: true,
		},
	},
	Action: inspectAction,
}

type inspectReply struct {
	Type         string `json:"type"`
	Key          string `json:"key"`
	PreimageHash string `json:"preimage_hash,omitempty"`
	Timeout      int64  `json:"timeout,omitempty"`
}

func inspectAction(ctx *cli.Context) error {
	net, err := getNetwork(ctx)
	if err != nil {
		return err
	}

	str := ctx.String("script")
	script, err := hex.DecodeString(str)
	if err != nil {
		if script, err = lock.ScriptFromAddress(str, net); err != nil {
			return err
		}
	}

	if preimageHash, claimKey, err := lock.ParseClaimLeaf(script); err == nil {
		printRespJSON(inspectReply{
			Type:         "claim_leaf",
			Key:          hex.EncodeToString(claimKey),
			PreimageHash: hex.EncodeToString(preimageHash),
		})
		return nil
	}
	if timeout, refundKey, err := lock.ParseRefundLeaf(script); err == nil {
		printRespJSON(inspectReply{
			Type:    "refund_leaf",
			Key:     hex.EncodeToString(refundKey),
			Timeout: timeout,
		})
		return nil
	}
	if key, err := verifier.ExtractKeyFromScript(script); err == nil {
		printRespJSON(inspectReply{
			Type: "single_key",
			Key:  hex.EncodeToString(key),
		})
		return nil
	}

	return fmt.Errorf("%w: unknown script type", lock.ErrMalformedScript)
}
