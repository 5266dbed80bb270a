package main

import (
	"encoding/hex"

	"github.com/tdex-network/arkd/pkg/verifier"
	"github.com/urfave/cli/v2"
)

var commitment = cli.Command{
	Name:  "commitment",
	Usage: "compute the commitment hash a transfer is signed against",
	Flags: []cli.Flag{
		&cli.StringSliceFlag{
			Name:  "input",
			Usage: "a spent vtxo in the form txid:vout, can be repeated",
		},
		&cli.StringSliceFlag{
			Name:  "output",
			Usage: "a new vtxo in the form locator:btc_amount, can be repeated",
		},
	},
	Action: commitmentAction,
}

func commitmentAction(ctx *cli.Context) error {
	ins, outs := ctx.StringSlice("input"), ctx.StringSlice("output")
	if len(ins) <= 0 || len(outs) <= 0 {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}

	net, err := getNetwork(ctx)
	if err != nil {
		return err
	}

	inputs := make([]verifier.InputRef, 0, len(ins))
	for _, in := range ins {
		input, err := parseInput(in)
		if err != nil {
			return err
		}
		inputs = append(inputs, input)
	}
	outputs := make([]verifier.OutputRef, 0, len(outs))
	for _, out := range outs {
		output, err := parseOutput(out, net)
		if err != nil {
			return err
		}
		outputs = append(outputs, output)
	}

	hash := verifier.CommitmentHash(inputs, outputs)

	printRespJSON(map[string]interface{}{
		"commitment_hash": hex.EncodeToString(hash[:]),
		"inputs":          inputs,
		"outputs":         outputs,
	})
	return nil
}
