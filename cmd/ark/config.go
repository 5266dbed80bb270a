package main

import (
	"fmt"
	"sort"

	"github.com/urfave/cli/v2"
)

var (
	networkFlag = cli.StringFlag{
		Name:  "network",
		Usage: "the network addresses are encoded for: mainnet, testnet, regtest or signet",
		Value: "regtest",
	}
)

var config = cli.Command{
	Name:   "config",
	Usage:  "Print local configuration of the ark CLI",
	Action: configAction,
	Subcommands: []*cli.Command{
		{
			Name:   "set",
			Usage:  "set a <key> <value> in the local state",
			Action: configSetAction,
		},
	},
}

func configAction(ctx *cli.Context) error {
	state, err := getState()
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(state))
	for key := range state {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Println(key + ": " + state[key])
	}

	return nil
}

func configSetAction(c *cli.Context) error {
	if c.NArg() < 2 {
		return &invalidUsageError{c, "set"}
	}

	key := c.Args().Get(0)
	value := c.Args().Get(1)
	if key == "network" {
		if _, ok := networks[value]; !ok {
			return fmt.Errorf("unknown network %s", value)
		}
	}

	if err := setState(map[string]string{key: value}); err != nil {
		return err
	}

	fmt.Printf("%s %s has been set\n", key, value)
	return nil
}
