package escrow

import (
	custody "github.com/chidioffor/crypto-hybrid-sub000"
	"github.com/chidioffor/crypto-hybrid-sub000/errors"
	"github.com/chidioffor/crypto-hybrid-sub000/gconf"
)

// Initializer fulfils the Initializer interface to load data from
// the genesis file
type Initializer struct{}

var _ custody.Initializer = Initializer{}

// FromGenesis stores the escrow configuration. Agreements always start
// from a create message, so the genesis holds no agreements.
func (Initializer) FromGenesis(opts custody.Options, params custody.GenesisParams, kv custody.KVStore) error {
	if err := gconf.InitConfig(kv, opts, configPkg, &Configuration{}); err != nil {
		return errors.Wrap(err, "init config")
	}
	return nil
}
