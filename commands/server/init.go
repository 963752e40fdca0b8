package server

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	"github.com/chidioffor/crypto-hybrid-sub000/errors"
	"github.com/spf13/pflag"
	cmn "github.com/tendermint/tendermint/libs/common"
	"github.com/tendermint/tendermint/libs/log"
	yaml "gopkg.in/yaml.v2"
)

const (
	flagChainID = "chain-id"
	flagForce   = "force"
)

// GenOptions can parse command-line and flag to
// generate default app_state for the genesis file.
// This is application-specific
type GenOptions func(args []string) (json.RawMessage, error)

// GenesisPath returns the location of the genesis file in the home
// directory, the same place tendermint keeps it.
func GenesisPath(home string) string {
	return filepath.Join(home, "config", "genesis.json")
}

// InitCmd will initialize the genesis file with the app_state returned
// by the generator, along with a ConfigFile holding the defaults.
//
// An existing genesis file only gets its app_state replaced, so that
// the output of `tendermint init` can be extended. The app_state is
// left alone if it is already set, unless -force is given.
func InitCmd(gen GenOptions, logger log.Logger, home string, args []string) error {
	var chainID string
	var force bool
	fs := pflag.NewFlagSet("init", pflag.ContinueOnError)
	fs.StringVar(&chainID, flagChainID, "", "chain id of a newly created genesis file (default random)")
	fs.BoolVar(&force, flagForce, false, "overwrite an existing app_state")
	if err := fs.Parse(args); err != nil {
		return err
	}

	options, err := gen(fs.Args())
	if err != nil {
		return err
	}

	genFile := GenesisPath(home)
	if err := os.MkdirAll(filepath.Dir(genFile), 0755); err != nil {
		return errors.Wrapf(errors.ErrInput, "create config dir: %s", err)
	}

	doc, err := readGenesisDoc(genFile)
	if err != nil {
		return err
	}
	if doc == nil {
		if chainID == "" {
			chainID = fmt.Sprintf("custody-%s", cmn.RandStr(6))
		}
		created, err := json.Marshal(time.Now().UTC())
		if err != nil {
			return err
		}
		doc = GenesisDoc{
			"chain_id":     json.RawMessage(fmt.Sprintf("%q", chainID)),
			"genesis_time": created,
		}
		logger.Info("Generated genesis file", "path", genFile, "chain_id", chainID)
	} else {
		logger.Info("Found genesis file", "path", genFile)
	}

	if state, ok := doc["app_state"]; ok && len(state) != 0 && string(state) != "null" && !force {
		return errors.Wrap(errors.ErrState, "app_state already set, use -force to overwrite")
	}
	doc["app_state"] = options
	if err := writeGenesisDoc(genFile, doc); err != nil {
		return err
	}

	return writeDefaultConfig(logger, home)
}

// GenesisDoc involves some tendermint-specific structures we don't
// want to parse, so we just grab it into a raw object format,
// so we can add one line.
type GenesisDoc map[string]json.RawMessage

// readGenesisDoc returns nil if the file does not exist.
func readGenesisDoc(filename string) (GenesisDoc, error) {
	bz, err := ioutil.ReadFile(filename)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "read genesis: %s", err)
	}
	var doc GenesisDoc
	if err := json.Unmarshal(bz, &doc); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "parse genesis: %s", err)
	}
	if doc == nil {
		doc = GenesisDoc{}
	}
	return doc, nil
}

func writeGenesisDoc(filename string, doc GenesisDoc) error {
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return ioutil.WriteFile(filename, out, 0600)
}

func writeDefaultConfig(logger log.Logger, home string) error {
	path := filepath.Join(home, ConfigFile)
	if _, err := os.Stat(path); err == nil {
		logger.Info("Found config file", "path", path)
		return nil
	}
	out, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	logger.Info("Generated config file", "path", path)
	return ioutil.WriteFile(path, out, 0644)
}
