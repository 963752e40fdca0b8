package escrow

import (
	custody "github.com/chidioffor/crypto-hybrid-sub000"
	"github.com/chidioffor/crypto-hybrid-sub000/errors"
	"github.com/chidioffor/crypto-hybrid-sub000/gconf"
)

const configPkg = "escrow"

// Configuration of the escrow extension. Fee settings apply to
// agreements created after a change only.
type Configuration struct {
	Owner         custody.Address  `json:"owner"`
	FeeSink       custody.Address  `json:"fee_sink"`
	FeeRate       custody.Fraction `json:"fee_rate"`
	MaxMilestones int32            `json:"max_milestones"`
}

var _ gconf.OwnedConfig = (*Configuration)(nil)

func (c *Configuration) GetOwner() custody.Address { return c.Owner }

func (c *Configuration) Marshal() ([]byte, error) { return custody.MarshalBinary(c) }

func (c *Configuration) Unmarshal(raw []byte) error { return custody.UnmarshalBinary(raw, c) }

func (c *Configuration) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Owner", c.Owner.Validate())
	errs = errors.AppendField(errs, "FeeSink", c.FeeSink.Validate())
	errs = errors.AppendField(errs, "FeeRate", c.FeeRate.ValidateRatio())
	if c.MaxMilestones <= 0 {
		errs = errors.AppendField(errs, "MaxMilestones", errors.Wrap(errors.ErrInput, "must be positive"))
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
