package app

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	custody "github.com/chidioffor/crypto-hybrid-sub000"
	"github.com/chidioffor/crypto-hybrid-sub000/coin"
	"github.com/chidioffor/crypto-hybrid-sub000/crypto"
	"github.com/chidioffor/crypto-hybrid-sub000/errors"
	"github.com/prometheus/client_golang/prometheus"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

// GenInitOptions will produce some basic options for one rich
// account, to use for dev mode. The account owns all module
// configurations.
//
// Arguments are an optional ticker (default GOV) and an optional
// address. Without an address a new key is generated and printed.
func GenInitOptions(args []string) (json.RawMessage, error) {
	ticker := "GOV"
	if len(args) > 0 {
		ticker = args[0]
		if !coin.IsCC(ticker) {
			return nil, errors.Wrapf(errors.ErrCurrency, "invalid ticker %s", ticker)
		}
	}

	var addr custody.Address
	if len(args) > 1 {
		var err error
		if addr, err = custody.ParseAddress(args[1]); err != nil {
			return nil, err
		}
	} else {
		// if no address provided, auto-generate one
		// and print out the keys
		bz, keys, err := GenerateCoinKey()
		if err != nil {
			return nil, err
		}
		addr = bz
		fmt.Println(keys)
	}

	opts := fmt.Sprintf(`{
  "cash": [
    {"address": %[1]q, "coins": ["123456789 %[2]s"]}
  ],
  "vaults": [],
  "governors": [],
  "conf": {
    "vault": {"owner": %[1]q, "max_signers": 20},
    "escrow": {"owner": %[1]q, "fee_sink": %[1]q, "fee_rate": "0", "max_milestones": 10},
    "gov": {"owner": %[1]q, "max_actions": 10, "max_description_length": 2048}
  }
}`, addr, ticker)
	return []byte(opts), nil
}

// GenerateApp is used to create a stub for server/start.go command
func GenerateApp(home string, logger log.Logger, debug bool, reg prometheus.Registerer) (abci.Application, error) {
	// db goes in a subdir, but "" -> "" for memdb
	var dbPath string
	if home != "" {
		dbPath = filepath.Join(home, "custody.db")
	}
	return NewApplication(Options{
		DBPath:  dbPath,
		Logger:  logger,
		Debug:   debug,
		Metrics: reg,
	})
}

type output struct {
	Pubkey crypto.PublicKey  `json:"pub_key"`
	Secret crypto.PrivateKey `json:"secret"`
}

// GenerateCoinKey returns the address of a public key,
// along with a json representation of the keys.
func GenerateCoinKey() (custody.Address, string, error) {
	privKey := crypto.GenPrivKeyEd25519()
	pubKey := privKey.PublicKey()
	addr := pubKey.Address()

	out := output{Pubkey: pubKey, Secret: privKey}
	keys, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, "", err
	}
	return addr, string(keys), nil
}
