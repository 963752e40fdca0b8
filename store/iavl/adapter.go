package iavl

import (
	"github.com/chidioffor/crypto-hybrid-sub000/errors"
	"github.com/chidioffor/crypto-hybrid-sub000/store"
	"github.com/tendermint/iavl"
	dbm "github.com/tendermint/tendermint/libs/db"
)

// DefaultCacheSize is the number of nodes the iavl tree keeps in memory.
const DefaultCacheSize = 10000

// CommitStore manages a iavl committed state
type CommitStore struct {
	tree *iavl.MutableTree
}

var _ store.CommitKVStore = CommitStore{}

// NewCommitStore creates a new store with disk backing. An empty dir keeps
// all data in memory, which is handy for tests.
func NewCommitStore(dir, name string) (CommitStore, error) {
	var db dbm.DB
	if dir == "" {
		db = dbm.NewMemDB()
	} else {
		ldb, err := dbm.NewGoLevelDB(name, dir)
		if err != nil {
			return CommitStore{}, errors.Wrapf(errors.ErrDatabase, "open %s: %s", dir, err)
		}
		db = ldb
	}
	return NewCommitStoreFromDB(db), nil
}

// NewCommitStoreFromDB builds a commit store on top of an already opened
// database.
func NewCommitStoreFromDB(db dbm.DB) CommitStore {
	return CommitStore{
		tree: iavl.NewMutableTree(db, DefaultCacheSize),
	}
}

// Get returns the value at last committed state
// returns nil iff key doesn't exist. Panics on nil key.
func (s CommitStore) Get(key []byte) []byte {
	_, val := s.tree.GetVersioned(key, s.tree.Version())
	return val
}

// Commit the next version to disk, and returns info
func (s CommitStore) Commit() (store.CommitID, error) {
	hash, version, err := s.tree.SaveVersion()
	if err != nil {
		return store.CommitID{}, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return store.CommitID{
		Version: version,
		Hash:    hash,
	}, nil
}

// LoadLatestVersion loads the latest persisted version.
// If there was a crash during the last commit, it is guaranteed
// to return a stable state, even if older.
func (s CommitStore) LoadLatestVersion() error {
	if _, err := s.tree.Load(); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

// LatestVersion returns info on the latest version saved to disk
func (s CommitStore) LatestVersion() store.CommitID {
	return store.CommitID{
		Version: s.tree.Version(),
		Hash:    s.tree.Hash(),
	}
}

// CacheWrap gives us a savepoint to perform actions. Writing the cache
// moves the changes into the working tree, they become persistent with
// the next Commit.
func (s CommitStore) CacheWrap() store.KVCacheWrap {
	w := working{tree: s.tree}
	return store.NewBTreeCacheWrap(w, store.NewNonAtomicBatch(w), nil)
}

// working exposes the uncommitted iavl tree as a KVStore.
type working struct {
	tree *iavl.MutableTree
}

var _ store.KVStore = working{}

// Get returns nil iff key doesn't exist. Panics on nil key.
func (w working) Get(key []byte) []byte {
	_, val := w.tree.Get(key)
	return val
}

// Has checks if a key exists. Panics on nil key.
func (w working) Has(key []byte) bool {
	return w.tree.Has(key)
}

// Set adds a new value
func (w working) Set(key, value []byte) {
	w.tree.Set(key, value)
}

// Delete removes from the tree
func (w working) Delete(key []byte) {
	w.tree.Remove(key)
}

// Iterator over a domain of keys in ascending order. End is exclusive.
func (w working) Iterator(start, end []byte) store.Iterator {
	return store.NewSliceIterator(w.collect(start, end, true))
}

// ReverseIterator over a domain of keys in descending order. End is
// exclusive.
func (w working) ReverseIterator(start, end []byte) store.Iterator {
	return store.NewSliceIterator(w.collect(start, end, false))
}

func (w working) collect(start, end []byte, ascending bool) []store.Model {
	var res []store.Model
	w.tree.IterateRange(start, end, ascending, func(key, value []byte) bool {
		res = append(res, store.Model{Key: key, Value: value})
		return false
	})
	return res
}
