package vault

import (
	custody "github.com/chidioffor/crypto-hybrid-sub000"
	"github.com/chidioffor/crypto-hybrid-sub000/errors"
	"github.com/chidioffor/crypto-hybrid-sub000/gconf"
)

const configPkg = "vault"

// Configuration of the vault extension.
type Configuration struct {
	// Owner may update the configuration.
	Owner custody.Address `json:"owner"`
	// MaxSigners limits the size of a vault signer set.
	MaxSigners int32 `json:"max_signers"`
}

var _ gconf.OwnedConfig = (*Configuration)(nil)

func (c *Configuration) GetOwner() custody.Address { return c.Owner }

func (c *Configuration) Marshal() ([]byte, error) { return custody.MarshalBinary(c) }

func (c *Configuration) Unmarshal(raw []byte) error { return custody.UnmarshalBinary(raw, c) }

func (c *Configuration) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Owner", c.Owner.Validate())
	if c.MaxSigners <= 0 {
		errs = errors.AppendField(errs, "MaxSigners", errors.Wrap(errors.ErrInput, "must be positive"))
	}
	return errs
}

func loadConf(db custody.ReadOnlyKVStore) (*Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, configPkg, &conf); err != nil {
		return nil, errors.Wrap(err, "load configuration")
	}
	return &conf, nil
}
