package server

import (
	"encoding/json"
	"io/ioutil"
	"time"

	custody "github.com/chidioffor/crypto-hybrid-sub000"
	"github.com/chidioffor/crypto-hybrid-sub000/errors"
	"github.com/chidioffor/crypto-hybrid-sub000/store"
)

// ValidateGenesis runs the initializer against every given genesis file
// without persisting anything.
func ValidateGenesis(ini custody.Initializer, genesisPaths []string) error {
	if len(genesisPaths) == 0 {
		return errors.Wrap(errors.ErrInput, "usage: cmd validate <genesis.json>...")
	}
	for _, path := range genesisPaths {
		if err := validateGenesis(ini, path); err != nil {
			return errors.Wrap(err, path)
		}
	}
	return nil
}

func validateGenesis(ini custody.Initializer, genesisPath string) error {
	b, err := ioutil.ReadFile(genesisPath)
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "cannot read genesis file: %s", err)
	}

	var genesis struct {
		ChainID string          `json:"chain_id"`
		Time    time.Time       `json:"genesis_time"`
		State   custody.Options `json:"app_state"`
	}
	if err := json.Unmarshal(b, &genesis); err != nil {
		return errors.Wrapf(errors.ErrInput, "cannot JSON deserialize genesis: %s", err)
	}
	if !custody.IsValidChainID(genesis.ChainID) {
		return errors.Wrapf(errors.ErrInput, "invalid chain id %q", genesis.ChainID)
	}

	// Use in memory store because we want to discard the result.
	db := store.MemStore()

	params := custody.GenesisParams{ChainID: genesis.ChainID, Time: genesis.Time}
	if err := ini.FromGenesis(genesis.State, params, db); err != nil {
		return errors.Wrap(err, "cannot initialize from genesis")
	}
	return nil
}
