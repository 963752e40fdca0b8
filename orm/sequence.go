package orm

import (
	"encoding/binary"

	custody "github.com/chidioffor/crypto-hybrid-sub000"
	"github.com/chidioffor/crypto-hybrid-sub000/errors"
)

// Sequence maintains a counter, and generates a
// series of keys. Each key is greater than the last,
// both NextInt() as well as bytes.Compare() on NextVal().
type Sequence struct {
	id []byte
}

// NewSequence returns a sequence counter stored under the key
//
//	_s.<bucket>:<name>
func NewSequence(bucket, name string) Sequence {
	id := "_s." + bucket + ":" + name
	return Sequence{
		id: []byte(id),
	}
}

// NextVal increments the sequence and returns its state as 8 bytes.
func (s Sequence) NextVal(db custody.KVStore) []byte {
	_, bz := s.increment(db, 1)
	return bz
}

// NextInt increments the sequence and returns its state as int.
func (s Sequence) NextInt(db custody.KVStore) int64 {
	val, _ := s.increment(db, 1)
	return val
}

// Latest returns the recently returned value of the sequence. This method does
// not modify the sequence state.
func (s Sequence) Latest(db custody.ReadOnlyKVStore) int64 {
	return DecodeSequence(db.Get(s.id))
}

func (s Sequence) increment(db custody.KVStore, inc int64) (int64, []byte) {
	val := DecodeSequence(db.Get(s.id)) + inc
	raw := EncodeSequence(val)
	db.Set(s.id, raw)
	return val, raw
}

// DecodeSequence reads the value written by EncodeSequence. A nil value
// decodes to zero.
func DecodeSequence(bz []byte) int64 {
	if bz == nil {
		return 0
	}
	return int64(binary.BigEndian.Uint64(bz))
}

// EncodeSequence returns the 8 byte big endian representation, which sorts
// the same way the numbers do.
func EncodeSequence(val int64) []byte {
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, uint64(val))
	return bz
}

// ParseSequence is DecodeSequence with length validation, useful for ids
// received from the outside.
func ParseSequence(bz []byte) (int64, error) {
	if len(bz) != 8 {
		return 0, errors.Wrapf(errors.ErrInput, "sequence id must be 8 bytes, got %d", len(bz))
	}
	return DecodeSequence(bz), nil
}
