package cash

import (
	custody "github.com/chidioffor/crypto-hybrid-sub000"
	"github.com/chidioffor/crypto-hybrid-sub000/coin"
	"github.com/chidioffor/crypto-hybrid-sub000/errors"
	"github.com/chidioffor/crypto-hybrid-sub000/orm"
)

// Set is the balance of a single account. It is stored under the account
// address.
type Set struct {
	Coins coin.Coins `json:"coins"`
}

var _ orm.Model = (*Set)(nil)

func (s *Set) Marshal() ([]byte, error) { return custody.MarshalBinary(s) }

func (s *Set) Unmarshal(raw []byte) error { return custody.UnmarshalBinary(raw, s) }

// Validate requires a normalized set of positive coins. An empty set is
// valid, it is what remains of an account that spent everything.
func (s *Set) Validate() error {
	if err := s.Coins.Validate(); err != nil {
		return errors.Field("Coins", err, "invalid balance")
	}
	return nil
}

// Bucket is a type-safe wrapper around orm.ModelBucket
type Bucket struct {
	orm.ModelBucket
}

// NewBucket initializes a cash.Bucket with default name
func NewBucket() Bucket {
	return Bucket{orm.NewModelBucket("cash", &Set{})}
}

// Balance returns the coins held by the given address. An unknown address
// holds nothing.
func (b Bucket) Balance(db custody.ReadOnlyKVStore, addr custody.Address) (coin.Coins, error) {
	var s Set
	switch err := b.One(db, addr, &s); {
	case err == nil:
		return s.Coins, nil
	case errors.ErrNotFound.Is(err):
		return nil, nil
	default:
		return nil, err
	}
}
