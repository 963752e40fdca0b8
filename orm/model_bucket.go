/*
Package orm provides an easy to use db wrapper

Break state space into prefixed sections called Buckets.
* Each bucket contains only one type of model.
* It has a primary key (which may be composite),
and may possess secondary indexes.
* Easy queries for one and by index.

Buckets never delete. Custody records are kept forever for audit, so the
only write operation is Put, which inserts or replaces a model.
*/
package orm

import (
	"fmt"
	"reflect"
	"regexp"

	custody "github.com/chidioffor/crypto-hybrid-sub000"
	"github.com/chidioffor/crypto-hybrid-sub000/errors"
)

var isBucketName = regexp.MustCompile(`^[a-z_]{3,12}$`).MatchString

// Model is implemented by any entity that can be stored using ModelBucket.
type Model interface {
	custody.Persistent
	Validate() error
}

// ModelBucket is implemented by buckets that operates on Models.
type ModelBucket interface {
	// One query the database for a single model instance. Lookup is done
	// by the primary index key. Result is loaded into given destination
	// model.
	// This method returns ErrNotFound if the entity does not exist in the
	// database.
	// If given model type cannot be used to contain stored entity, ErrType
	// is returned.
	One(db custody.ReadOnlyKVStore, key []byte, dest Model) error

	// Has returns nil if an entity with given primary key exists, and
	// ErrNotFound otherwise.
	Has(db custody.ReadOnlyKVStore, key []byte) error

	// Put saves given model in the database. Before inserting into the
	// database, model is validated using its Validate method.
	// If the key is nil or zero length then a sequence generator is used
	// to create a unique key value.
	// Using a key that already exists in the database cause the value to
	// be overwritten.
	// Returns the key the model was stored under.
	Put(db custody.KVStore, key []byte, m Model) ([]byte, error)

	// ByIndex returns all objects that secondary index with given name and
	// given key. Main index is always unique but secondary indexes can
	// return more than one value for the same key.
	// All found entities are appended to given destination slice, which
	// must be a pointer to a slice of the model type or of pointers to it.
	// Returned are the primary keys, in the same order.
	ByIndex(db custody.ReadOnlyKVStore, indexName string, key []byte, dest interface{}) ([][]byte, error)

	// Register registers this buckets content to be accessible via query
	// requests under the given name.
	Register(name string, r custody.QueryRouter)

	// Sequence returns the sequence used to generate keys.
	Sequence() Sequence
}

// ModelBucketOption is implemented by any function that can configure
// ModelBucket during creation.
type ModelBucketOption func(mb *modelBucket)

// WithIndex configures the bucket to build an index with given name. All
// entities stored in the bucket are indexed using value returned by the
// indexer function. If an index is unique, there can be only one entity
// referenced per index value.
func WithIndex(name string, indexer Indexer, unique bool) ModelBucketOption {
	return func(mb *modelBucket) {
		if _, ok := mb.indexes[name]; ok {
			panic(fmt.Sprintf("Index %s registered twice", name))
		}
		mb.indexes[name] = NewIndex(mb.name+"_"+name, indexer, unique, mb.DBKey)
	}
}

// WithIDSequence configures the bucket to use the given sequence instance
// for generating ID.
func WithIDSequence(s Sequence) ModelBucketOption {
	return func(mb *modelBucket) {
		mb.idSeq = s
	}
}

// NewModelBucket returns a ModelBucket instance. The given model is used as
// the prototype: all stored and loaded entities must be of its type.
func NewModelBucket(name string, m Model, opts ...ModelBucketOption) ModelBucket {
	if !isBucketName(name) {
		panic(fmt.Sprintf("Illegal bucket: %s", name))
	}
	tp := reflect.TypeOf(m)
	if tp.Kind() != reflect.Ptr {
		panic(fmt.Sprintf("model must be a pointer, got %T", m))
	}
	mb := &modelBucket{
		name:    name,
		prefix:  append([]byte(name), ':'),
		model:   tp,
		idSeq:   NewSequence(name, "id"),
		indexes: make(map[string]Index),
	}
	for _, fn := range opts {
		fn(mb)
	}
	return mb
}

type modelBucket struct {
	name    string
	prefix  []byte
	model   reflect.Type
	idSeq   Sequence
	indexes map[string]Index
}

var _ ModelBucket = (*modelBucket)(nil)

// DBKey is the full key we store in the db, including prefix
// We copy into a new array rather than use append, as we don't
// want consequetive calls to overwrite the same byte array.
func (mb *modelBucket) DBKey(key []byte) []byte {
	l := len(mb.prefix)
	out := make([]byte, l+len(key))
	copy(out, mb.prefix)
	copy(out[l:], key)
	return out
}

func (mb *modelBucket) One(db custody.ReadOnlyKVStore, key []byte, dest Model) error {
	if reflect.TypeOf(dest) != mb.model {
		return errors.Wrapf(errors.ErrType, "%s cannot be represented as %T", mb.model, dest)
	}
	raw := db.Get(mb.DBKey(key))
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", mb.name, key)
	}
	if err := dest.Unmarshal(raw); err != nil {
		return errors.Wrapf(err, "cannot unmarshal %s", mb.name)
	}
	return nil
}

func (mb *modelBucket) Has(db custody.ReadOnlyKVStore, key []byte) error {
	if len(key) == 0 || !db.Has(mb.DBKey(key)) {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", mb.name, key)
	}
	return nil
}

func (mb *modelBucket) Put(db custody.KVStore, key []byte, m Model) ([]byte, error) {
	if reflect.TypeOf(m) != mb.model {
		return nil, errors.Wrapf(errors.ErrType, "cannot store %T in %s bucket", m, mb.name)
	}
	if err := m.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid %s", mb.name)
	}
	if len(key) == 0 {
		key = mb.idSeq.NextVal(db)
	}

	if len(mb.indexes) > 0 {
		var prev Model
		if raw := db.Get(mb.DBKey(key)); raw != nil {
			prev = reflect.New(mb.model.Elem()).Interface().(Model)
			if err := prev.Unmarshal(raw); err != nil {
				return nil, errors.Wrapf(err, "cannot unmarshal previous %s", mb.name)
			}
		}
		for _, idx := range mb.indexes {
			if err := idx.Update(db, key, prev, m); err != nil {
				return nil, errors.Wrapf(err, "cannot update %s index", idx.Name())
			}
		}
	}

	raw, err := m.Marshal()
	if err != nil {
		return nil, errors.Wrapf(err, "cannot marshal %s", mb.name)
	}
	db.Set(mb.DBKey(key), raw)
	return key, nil
}

func (mb *modelBucket) ByIndex(db custody.ReadOnlyKVStore, indexName string, key []byte, dest interface{}) ([][]byte, error) {
	idx, ok := mb.indexes[indexName]
	if !ok {
		return nil, errors.Wrapf(errors.ErrInput, "unknown index %q of %s", indexName, mb.name)
	}

	dv := reflect.ValueOf(dest)
	if dv.Kind() != reflect.Ptr || dv.Elem().Kind() != reflect.Slice {
		return nil, errors.Wrapf(errors.ErrType, "destination must be a pointer to a slice, got %T", dest)
	}
	slice := dv.Elem()
	elem := slice.Type().Elem()
	byPtr := elem == mb.model
	if !byPtr && reflect.PtrTo(elem) != mb.model {
		return nil, errors.Wrapf(errors.ErrType, "cannot load %s into %T", mb.model, dest)
	}

	pks, err := idx.Keys(db, key)
	if err != nil {
		return nil, err
	}
	for _, pk := range pks {
		m := reflect.New(mb.model.Elem())
		if err := mb.One(db, pk, m.Interface().(Model)); err != nil {
			return nil, errors.Wrapf(err, "index %s reference", indexName)
		}
		if byPtr {
			slice = reflect.Append(slice, m)
		} else {
			slice = reflect.Append(slice, m.Elem())
		}
	}
	dv.Elem().Set(slice)
	return pks, nil
}

func (mb *modelBucket) Register(name string, r custody.QueryRouter) {
	if name == "" {
		name = mb.name
	}
	root := "/" + name
	r.Register(root, mb)
	for iname, idx := range mb.indexes {
		r.Register(root+"/"+iname, idx)
	}
}

func (mb *modelBucket) Sequence() Sequence {
	return mb.idSeq
}

// Query handles queries from the QueryRouter
func (mb *modelBucket) Query(db custody.ReadOnlyKVStore, mod string, data []byte) ([]custody.Model, error) {
	switch mod {
	case custody.KeyQueryMod:
		key := mb.DBKey(data)
		value := db.Get(key)
		// return nothing on miss
		if value == nil {
			return nil, nil
		}
		return []custody.Model{custody.Pair(key, value)}, nil
	case custody.PrefixQueryMod:
		return queryPrefix(db, mb.DBKey(data)), nil
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unsupported query mod %q", mod)
	}
}

// queryPrefix returns all models whose keys start with the prefix.
func queryPrefix(db custody.ReadOnlyKVStore, prefix []byte) []custody.Model {
	itr := db.Iterator(PrefixRange(prefix))
	defer itr.Close()

	var res []custody.Model
	for ; itr.Valid(); itr.Next() {
		res = append(res, custody.Pair(itr.Key(), itr.Value()))
	}
	return res
}

// PrefixRange turns a prefix into a (start, end) range. The end is the
// smallest key greater than all keys with the given prefix, or nil if
// there is none.
func PrefixRange(prefix []byte) ([]byte, []byte) {
	if len(prefix) == 0 {
		return nil, nil
	}
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xFF {
			end[i]++
			return prefix, end[:i+1]
		}
	}
	return prefix, nil
}
