package gov

import (
	custody "github.com/chidioffor/crypto-hybrid-sub000"
	"github.com/chidioffor/crypto-hybrid-sub000/errors"
	"github.com/chidioffor/crypto-hybrid-sub000/gconf"
)

// GenesisGovernor is a governor created at genesis.
type GenesisGovernor struct {
	Admin custody.Address `json:"admin,omitempty"`
	Token string          `json:"token"`
	Rules Rules           `json:"rules"`
}

// Initializer fulfils the Initializer interface to load data from the
// genesis file.
type Initializer struct{}

var _ custody.Initializer = Initializer{}

// FromGenesis stores the governance configuration and creates the listed
// governors in order.
func (Initializer) FromGenesis(opts custody.Options, params custody.GenesisParams, kv custody.KVStore) error {
	if err := gconf.InitConfig(kv, opts, configPkg, &Configuration{}); err != nil {
		return errors.Wrap(err, "init config")
	}
	var governors []GenesisGovernor
	if err := opts.ReadOptions("governors", &governors); err != nil {
		return errors.Wrapf(errors.ErrInput, "governor genesis: %s", err)
	}
	bucket := NewGovernorBucket()
	for i, gg := range governors {
		id := bucket.Sequence().NextVal(kv)
		g := Governor{
			Admin:     gg.Admin,
			Token:     gg.Token,
			Rules:     gg.Rules,
			Address:   Condition(id).Address(),
			CreatedAt: custody.AsUnixTime(params.Time),
		}
		if len(g.Admin) == 0 {
			g.Admin = g.Address
		}
		if _, err := bucket.Put(kv, id, &g); err != nil {
			return errors.Wrapf(err, "governor %d", i)
		}
	}
	return nil
}
