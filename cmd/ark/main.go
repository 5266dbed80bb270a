package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/urfave/cli/v2"
)

var (
	arkDataDir = btcutil.AppDataDir("ark-cli", false)
	statePath  = path.Join(arkDataDir, "state.json")

	networks = map[string]*chaincfg.Params{
		"mainnet": &chaincfg.MainNetParams,
		"testnet": &chaincfg.TestNet3Params,
		"regtest": &chaincfg.RegressionNetParams,
		"signet":  &chaincfg.SigNetParams,
	}
)

func main() {
	app := cli.NewApp()

	app.Version = "0.0.1"
	app.Name = "ark CLI"
	app.Usage = "Offline command line interface to build and inspect arkd locks, keys and signatures"
	app.Flags = []cli.Flag{&networkFlag}
	app.Commands = append(
		app.Commands,
		&config,
		&swaplock,
		&inspect,
		&identityhash,
		&assetaddress,
		&spendingkey,
		&commitment,
		&sign,
	)

	err := app.Run(os.Args)
	if err != nil {
		fatal(err)
	}
}

func getState() (map[string]string, error) {
	data := map[string]string{}

	file, err := os.ReadFile(statePath)
	if err != nil {
		if os.IsNotExist(err) {
			return data, nil
		}
		return nil, fmt.Errorf("get config state error: %w", err)
	}
	if err := json.Unmarshal(file, &data); err != nil {
		return nil, fmt.Errorf("get config state error: %w", err)
	}

	return data, nil
}

func setState(data map[string]string) error {
	if _, err := os.Stat(arkDataDir); os.IsNotExist(err) {
		if err := os.MkdirAll(arkDataDir, os.ModeDir|0755); err != nil {
			return err
		}
	}

	currentData, err := getState()
	if err != nil {
		return err
	}

	mergedData := merge(currentData, data)

	jsonString, err := json.Marshal(mergedData)
	if err != nil {
		return err
	}
	if err := os.WriteFile(statePath, jsonString, 0644); err != nil {
		return fmt.Errorf("writing to file: %w", err)
	}

	return nil
}

func merge(maps ...map[string]string) map[string]string {
	merge := make(map[string]string, 0)
	for _, m := range maps {
		for k, v := range m {
			merge[k] = v
		}
	}
	return merge
}

// getNetwork returns the network given with the global flag, falling back to
// the one in the local state.
func getNetwork(ctx *cli.Context) (*chaincfg.Params, error) {
	name := ctx.String(networkFlag.Name)
	if !ctx.IsSet(networkFlag.Name) {
		state, err := getState()
		if err != nil {
			return nil, err
		}
		if n, ok := state["network"]; ok {
			name = n
		}
	}

	net, ok := networks[name]
	if !ok {
		return nil, fmt.Errorf("unknown network %s", name)
	}
	return net, nil
}

func printRespJSON(resp interface{}) {
	jsonBytes, err := json.MarshalIndent(resp, "", "\t")
	if err != nil {
		fmt.Println("unable to decode response: ", err)
		return
	}

	fmt.Println(string(jsonBytes))
}

type invalidUsageError struct {
	ctx     *cli.Context
	command string
}

func (e *invalidUsageError) Error() string {
	return fmt.Sprintf("invalid usage of command %s", e.command)
}

func fatal(err error) {
	var e *invalidUsageError
	if errors.As(err, &e) {
		_ = cli.ShowCommandHelp(e.ctx, e.command)
	} else {
		_, _ = fmt.Fprintf(os.Stderr, "[ark] %v\n", err)
	}
	os.Exit(1)
}
