package orm

import (
	"bytes"
	"sort"

	custody "github.com/chidioffor/crypto-hybrid-sub000"
	"github.com/chidioffor/crypto-hybrid-sub000/errors"
)

const indexPrefix = "_i."

// Indexer calculates the secondary index key for a given model. Returning
// a nil key means the model is not indexed.
type Indexer func(Model) ([]byte, error)

// Index represents a secondary index on some data.
// It is indexed by an arbitrary key returned by Indexer.
// The value is one primary key (unique),
// Or a sorted set of primary keys (!unique).
type Index struct {
	name   string
	id     []byte
	unique bool
	index  Indexer
	refKey func([]byte) []byte
}

var _ custody.QueryHandler = Index{}

// NewIndex constructs an index
// Indexer calculates the index for an object
// unique enforces a unique constraint on the index
// refKey calculates the absolute dbkey for a ref
func NewIndex(name string, indexer Indexer, unique bool, refKey func([]byte) []byte) Index {
	return Index{
		name:   name,
		id:     append([]byte(indexPrefix), []byte(name+":")...),
		index:  indexer,
		unique: unique,
		refKey: refKey,
	}
}

// Name returns the name of this index.
func (i Index) Name() string {
	return i.name
}

// IndexKey is the full key we store in the db, including prefix
// We copy into a new array rather than use append, as we don't
// want consecutive calls to overwrite the same byte array.
func (i Index) IndexKey(key []byte) []byte {
	l := len(i.id)
	out := make([]byte, l+len(key))
	copy(out, i.id)
	copy(out[l:], key)
	return out
}

// Update handles updating the reference to the object in
// the secondary index.
//
// prev == nil means insert
// both == nil is error
//
// Otherwise, it will check indexer(prev) and indexer(save)
// and make sure the key is now stored in the right location
func (i Index) Update(db custody.KVStore, pk []byte, prev, save Model) error {
	if save == nil {
		return errors.Wrap(errors.ErrHuman, "index update requires a model to save")
	}
	next, err := i.index(save)
	if err != nil {
		return err
	}
	if prev != nil {
		old, err := i.index(prev)
		if err != nil {
			return err
		}
		if bytes.Equal(old, next) {
			return nil
		}
		if old != nil {
			if err := i.remove(db, old, pk); err != nil {
				return err
			}
		}
	}
	if next == nil {
		return nil
	}
	return i.insert(db, next, pk)
}

func (i Index) insert(db custody.KVStore, key []byte, pk []byte) error {
	dbkey := i.IndexKey(key)
	cur := db.Get(dbkey)

	if i.unique {
		if cur != nil && !bytes.Equal(cur, pk) {
			return errors.Wrapf(errors.ErrDuplicate, "index %s", i.name)
		}
		db.Set(dbkey, pk)
		return nil
	}

	refs, err := decodeRefs(cur)
	if err != nil {
		return err
	}
	n := sort.Search(len(refs.Refs), func(j int) bool { return bytes.Compare(refs.Refs[j], pk) >= 0 })
	if n < len(refs.Refs) && bytes.Equal(refs.Refs[n], pk) {
		return nil
	}
	refs.Refs = append(refs.Refs, nil)
	copy(refs.Refs[n+1:], refs.Refs[n:])
	refs.Refs[n] = pk
	return writeRefs(db, dbkey, refs)
}

func (i Index) remove(db custody.KVStore, key []byte, pk []byte) error {
	dbkey := i.IndexKey(key)
	cur := db.Get(dbkey)
	if cur == nil {
		return errors.Wrapf(errors.ErrDatabase, "index %s: missing reference", i.name)
	}

	if i.unique {
		db.Delete(dbkey)
		return nil
	}

	refs, err := decodeRefs(cur)
	if err != nil {
		return err
	}
	for j, r := range refs.Refs {
		if bytes.Equal(r, pk) {
			refs.Refs = append(refs.Refs[:j], refs.Refs[j+1:]...)
			break
		}
	}
	if len(refs.Refs) == 0 {
		db.Delete(dbkey)
		return nil
	}
	return writeRefs(db, dbkey, refs)
}

// Keys returns all primary keys indexed under the given value, in
// ascending order.
func (i Index) Keys(db custody.ReadOnlyKVStore, value []byte) ([][]byte, error) {
	cur := db.Get(i.IndexKey(value))
	if cur == nil {
		return nil, nil
	}
	if i.unique {
		return [][]byte{cur}, nil
	}
	refs, err := decodeRefs(cur)
	if err != nil {
		return nil, err
	}
	return refs.Refs, nil
}

// Query handles queries from the QueryRouter
func (i Index) Query(db custody.ReadOnlyKVStore, mod string, data []byte) ([]custody.Model, error) {
	if mod != custody.KeyQueryMod {
		return nil, errors.Wrapf(errors.ErrInput, "unsupported index query mod %q", mod)
	}
	pks, err := i.Keys(db, data)
	if err != nil {
		return nil, err
	}
	res := make([]custody.Model, 0, len(pks))
	for _, pk := range pks {
		key := i.refKey(pk)
		if val := db.Get(key); val != nil {
			res = append(res, custody.Pair(key, val))
		}
	}
	return res, nil
}

// multiRef is the stored form of a non unique index entry.
type multiRef struct {
	Refs [][]byte
}

func decodeRefs(raw []byte) (*multiRef, error) {
	var refs multiRef
	if raw == nil {
		return &refs, nil
	}
	if err := custody.UnmarshalBinary(raw, &refs); err != nil {
		return nil, errors.Wrap(err, "index references")
	}
	return &refs, nil
}

func writeRefs(db custody.KVStore, key []byte, refs *multiRef) error {
	raw, err := custody.MarshalBinary(refs)
	if err != nil {
		return err
	}
	db.Set(key, raw)
	return nil
}
