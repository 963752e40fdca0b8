package custody

import (
	"github.com/chidioffor/crypto-hybrid-sub000/errors"
	amino "github.com/tendermint/go-amino"
)

// cdc serializes all persisted models and messages. Models are plain
// structures without interface fields, so no type registration is needed.
var cdc = amino.NewCodec()

// MarshalBinary returns the binary representation of a model or message.
func MarshalBinary(o interface{}) ([]byte, error) {
	bz, err := cdc.MarshalBinaryBare(o)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrModel, "marshal %T: %s", o, err)
	}
	return bz, nil
}

// UnmarshalBinary decodes the binary representation into the structure
// pointed to by ptr.
func UnmarshalBinary(bz []byte, ptr interface{}) error {
	if err := cdc.UnmarshalBinaryBare(bz, ptr); err != nil {
		return errors.Wrapf(errors.ErrModel, "unmarshal %T: %s", ptr, err)
	}
	return nil
}

// MustMarshalBinary is MarshalBinary that panics on error. Use only with
// values that are known to serialize, such as in tests.
func MustMarshalBinary(o interface{}) []byte {
	bz, err := MarshalBinary(o)
	if err != nil {
		panic(err)
	}
	return bz
}
