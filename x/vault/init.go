package vault

import (
	custody "github.com/chidioffor/crypto-hybrid-sub000"
	"github.com/chidioffor/crypto-hybrid-sub000/errors"
	"github.com/chidioffor/crypto-hybrid-sub000/gconf"
)

// GenesisVault is a vault created at genesis.
type GenesisVault struct {
	Signers   []custody.Address `json:"signers"`
	Threshold uint32            `json:"threshold"`
}

// Initializer fulfils the Initializer interface to load data from the
// genesis file.
type Initializer struct{}

var _ custody.Initializer = Initializer{}

// FromGenesis stores the vault configuration and creates the listed vaults
// in order, so their ids are predictable.
func (Initializer) FromGenesis(opts custody.Options, params custody.GenesisParams, kv custody.KVStore) error {
	if err := gconf.InitConfig(kv, opts, configPkg, &Configuration{}); err != nil {
		return errors.Wrap(err, "init config")
	}
	var vaults []GenesisVault
	if err := opts.ReadOptions("vaults", &vaults); err != nil {
		return errors.Wrapf(errors.ErrInput, "vault genesis: %s", err)
	}
	bucket := NewVaultBucket()
	for i, gv := range vaults {
		id := bucket.Sequence().NextVal(kv)
		v := Vault{
			Signers:   gv.Signers,
			Threshold: gv.Threshold,
			Address:   Condition(id).Address(),
			CreatedAt: custody.AsUnixTime(params.Time),
		}
		if _, err := bucket.Put(kv, id, &v); err != nil {
			return errors.Wrapf(err, "vault %d", i)
		}
	}
	return nil
}
