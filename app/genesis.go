package app

import (
	"encoding/json"
	"io/ioutil"
	"time"

	custody "github.com/chidioffor/crypto-hybrid-sub000"
	"github.com/chidioffor/crypto-hybrid-sub000/errors"
)

// Genesis file format, designed to be overlayed with tendermint genesis
type Genesis struct {
	ChainID     string          `json:"chain_id"`
	GenesisTime time.Time       `json:"genesis_time"`
	AppState    json.RawMessage `json:"app_state"`
}

// loadGenesis tries to load a given file into a Genesis struct
func loadGenesis(filePath string) (Genesis, error) {
	var gen Genesis

	raw, err := ioutil.ReadFile(filePath)
	if err != nil {
		return gen, errors.Wrapf(errors.ErrInput, "loading genesis file: %s", err)
	}
	if err := json.Unmarshal(raw, &gen); err != nil {
		return gen, errors.Wrapf(errors.ErrInput, "unmarshaling genesis file: %s", err)
	}
	return gen, nil
}

// LoadGenesis initializes the application state from a genesis file
// instead of the InitChain call. Used to set up an application without
// a running tendermint node.
func (s *StoreApp) LoadGenesis(filePath string, init custody.Initializer) error {
	gen, err := loadGenesis(filePath)
	if err != nil {
		return err
	}
	params := custody.GenesisParams{ChainID: gen.ChainID, Time: gen.GenesisTime}
	return s.applyGenesis(gen.AppState, params, init)
}
