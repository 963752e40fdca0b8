package gconf

import (
	custody "github.com/chidioffor/crypto-hybrid-sub000"
	"github.com/chidioffor/crypto-hybrid-sub000/errors"
)

// ValidMarshaler is a configuration that can be checked and written.
type ValidMarshaler interface {
	Marshal() ([]byte, error)
	Validate() error
}

type Unmarshaler interface {
	Unmarshal([]byte) error
}

// Configuration is implemented by the configuration of every module.
type Configuration interface {
	ValidMarshaler
	Unmarshaler
}

// Each module has exactly one configuration, stored under "_c:<pkg>".
func configKey(pkg string) []byte {
	return []byte("_c:" + pkg)
}

// Save validates src and stores it as the configuration of pkg.
func Save(db custody.KVStore, pkg string, src ValidMarshaler) error {
	if err := src.Validate(); err != nil {
		return errors.Wrapf(err, "%s configuration", pkg)
	}
	raw, err := src.Marshal()
	if err != nil {
		return errors.Wrapf(err, "marshal %s configuration", pkg)
	}
	db.Set(configKey(pkg), raw)
	return nil
}

// Load reads the configuration of pkg into dst. It returns ErrNotFound if
// the configuration was never saved.
func Load(db custody.ReadOnlyKVStore, pkg string, dst Unmarshaler) error {
	raw := db.Get(configKey(pkg))
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%s configuration", pkg)
	}
	if err := dst.Unmarshal(raw); err != nil {
		return errors.Wrapf(err, "unmarshal %s configuration", pkg)
	}
	return nil
}

// InitConfig saves the genesis value of conf.<pkg>. Every module that
// calls it requires its configuration to be present in the genesis file.
func InitConfig(db custody.KVStore, opts custody.Options, pkg string, conf Configuration) error {
	var all custody.Options
	if err := opts.ReadOptions("conf", &all); err != nil {
		return errors.Wrapf(errors.ErrInput, "genesis conf: %s", err)
	}
	if _, ok := all[pkg]; !ok {
		return errors.Wrapf(errors.ErrNotFound, "genesis conf has no %q entry", pkg)
	}
	if err := all.ReadOptions(pkg, conf); err != nil {
		return errors.Wrapf(errors.ErrInput, "genesis conf %s: %s", pkg, err)
	}
	return Save(db, pkg, conf)
}
