package sigs

import (
	custody "github.com/chidioffor/crypto-hybrid-sub000"
	"github.com/chidioffor/crypto-hybrid-sub000/crypto"
	"github.com/chidioffor/crypto-hybrid-sub000/errors"
	"github.com/chidioffor/crypto-hybrid-sub000/orm"
)

// UserData is the state kept for every signer, stored under the address
// of its public key.
type UserData struct {
	Pubkey   crypto.PublicKey `json:"pubkey"`
	Sequence int64            `json:"sequence"`
}

var _ orm.Model = (*UserData)(nil)

func (u *UserData) Marshal() ([]byte, error) { return custody.MarshalBinary(u) }

func (u *UserData) Unmarshal(raw []byte) error { return custody.UnmarshalBinary(raw, u) }

// Validate requires a public key and a non negative sequence.
func (u *UserData) Validate() error {
	if _, err := crypto.ParsePublicKey(u.Pubkey); err != nil {
		return errors.Field("Pubkey", err, "invalid public key")
	}
	if u.Sequence < 0 {
		return errors.Field("Sequence", ErrInvalidSequence, "negative")
	}
	return nil
}

// CheckAndIncrementSequence makes sure the sequence is what we expect,
// and increments it on success.
func (u *UserData) CheckAndIncrementSequence(check int64) error {
	if u.Sequence != check {
		return errors.Wrapf(ErrInvalidSequence, "mismatch: expected %d, got %d", u.Sequence, check)
	}
	u.Sequence++
	return nil
}

// Bucket stores UserData by the signer address.
type Bucket struct {
	orm.ModelBucket
}

// NewBucket returns the bucket for signer data.
func NewBucket() Bucket {
	return Bucket{orm.NewModelBucket("sigs", &UserData{})}
}

// GetOrCreate loads the user data of the given key, or returns a new
// record with a zero sequence if the key was never seen.
func (b Bucket) GetOrCreate(db custody.ReadOnlyKVStore, pubkey crypto.PublicKey) (*UserData, error) {
	var u UserData
	switch err := b.One(db, pubkey.Address(), &u); {
	case err == nil:
		return &u, nil
	case errors.ErrNotFound.Is(err):
		return &UserData{Pubkey: pubkey}, nil
	default:
		return nil, err
	}
}

// Save stores the user data under the address of its key.
func (b Bucket) Save(db custody.KVStore, u *UserData) error {
	_, err := b.Put(db, u.Pubkey.Address(), u)
	return err
}
