package cash

import (
	"encoding/binary"

	custody "github.com/chidioffor/crypto-hybrid-sub000"
	"github.com/chidioffor/crypto-hybrid-sub000/errors"
	"github.com/chidioffor/crypto-hybrid-sub000/orm"
)

// Checkpoint keys are fixed length within a ticker, so that a reverse scan
// bounded by a time finds the latest checkpoint not after that time first.
//
//	_w.<ticker>:<address><time>  -> balance
//	_t.<ticker>:<time>           -> supply

func weightPrefix(ticker string, addr custody.Address) []byte {
	return append([]byte("_w."+ticker+":"), addr...)
}

func supplyPrefix(ticker string) []byte {
	return []byte("_t." + ticker + ":")
}

func encodeTime(t custody.UnixTime) []byte {
	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, uint64(t))
	return raw
}

func encodeAmount(n int64) []byte {
	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, uint64(n))
	return raw
}

func decodeAmount(raw []byte) (int64, error) {
	if len(raw) != 8 {
		return 0, errors.Wrapf(errors.ErrDatabase, "checkpoint value of %d bytes", len(raw))
	}
	return int64(binary.BigEndian.Uint64(raw)), nil
}

func writeCheckpoint(db custody.KVStore, prefix []byte, t custody.UnixTime, value int64) error {
	if t < 0 {
		return errors.Wrap(errors.ErrInput, "checkpoint before epoch")
	}
	db.Set(append(prefix, encodeTime(t)...), encodeAmount(value))
	return nil
}

// readAt returns the value of the latest checkpoint under prefix recorded
// at or before t, or zero if there is none.
func readAt(db custody.ReadOnlyKVStore, prefix []byte, t custody.UnixTime) (int64, error) {
	if t < 0 {
		return 0, nil
	}
	start, _ := orm.PrefixRange(prefix)
	end := append(append([]byte{}, prefix...), encodeTime(t+1)...)
	itr := db.ReverseIterator(start, end)
	defer itr.Close()
	if !itr.Valid() {
		return 0, nil
	}
	return decodeAmount(itr.Value())
}
