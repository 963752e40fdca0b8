package gov

import (
	custody "github.com/chidioffor/crypto-hybrid-sub000"
	"github.com/chidioffor/crypto-hybrid-sub000/errors"
	"github.com/chidioffor/crypto-hybrid-sub000/gconf"
)

const configPkg = "gov"

// Configuration of the governance extension.
type Configuration struct {
	// Owner may update the configuration.
	Owner custody.Address `json:"owner"`
	// MaxActions limits the number of actions of a proposal.
	MaxActions int32 `json:"max_actions"`
	// MaxDescriptionLength limits proposal descriptions and vote reasons.
	MaxDescriptionLength int32 `json:"max_description_length"`
}

var _ gconf.OwnedConfig = (*Configuration)(nil)

func (c *Configuration) GetOwner() custody.Address { return c.Owner }

func (c *Configuration) Marshal() ([]byte, error) { return custody.MarshalBinary(c) }

func (c *Configuration) Unmarshal(raw []byte) error { return custody.UnmarshalBinary(raw, c) }

func (c *Configuration) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Owner", c.Owner.Validate())
	if c.MaxActions <= 0 {
		errs = errors.AppendField(errs, "MaxActions", errors.Wrap(errors.ErrInput, "must be positive"))
	}
	if c.MaxDescriptionLength <= 0 {
		errs = errors.AppendField(errs, "MaxDescriptionLength", errors.Wrap(errors.ErrInput, "must be positive"))
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
