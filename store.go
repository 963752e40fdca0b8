package custody

// ReadOnlyKVStore gives access to the state without modifying it. Queries
// and Check calls only need this much.
type ReadOnlyKVStore interface {
	// Get returns nil if the key is not set. Panics on nil key.
	Get(key []byte) []byte

	// Has reports whether the key is set. Panics on nil key.
	Has(key []byte) bool

	// Iterator walks keys in [start, end) in ascending order. A nil
	// bound leaves that side of the range open.
	// The range must not be written to while the iterator is open.
	Iterator(start, end []byte) Iterator

	// ReverseIterator walks the same range in descending order.
	ReverseIterator(start, end []byte) Iterator
}

// SetDeleter is the write half of a store. Batches implement it too.
// Implementations must not modify the given slices.
type SetDeleter interface {
	Set(key, value []byte)
	Delete(key []byte)
}

// KVStore is the store handlers receive.
type KVStore interface {
	ReadOnlyKVStore
	SetDeleter
}

// Iterator is a cursor over a key range. Always Close it:
//
//	itr := db.Iterator(start, end)
//	defer itr.Close()
//	for ; itr.Valid(); itr.Next() {
//		use(itr.Key(), itr.Value())
//	}
type Iterator interface {
	// Valid is false once the range is exhausted, and stays false.
	Valid() bool

	// Next, Key and Value panic on an invalid iterator.
	Next()
	Key() (key []byte)
	Value() (value []byte)

	Close()
}

// CacheableKVStore can stack a scratch layer on top of itself. This is
// how a transaction gets a savepoint: its writes go to the cache wrap and
// reach the store below only if the whole transaction succeeded.
type CacheableKVStore interface {
	KVStore
	CacheWrap() KVCacheWrap
}

// KVCacheWrap shows its own pending writes on top of the parent state.
// Write flushes them to the parent, Discard drops them. A cache wrap can
// be wrapped again, nesting savepoints.
type KVCacheWrap interface {
	CacheableKVStore
	Write() error
	Discard()
}

// CommitKVStore is the persisted root store of the application. Each
// Commit produces a new version with a merkle root hash, which becomes the
// app hash of the block.
type CommitKVStore interface {
	// Get reads the last committed state.
	Get(key []byte) []byte

	// CacheWrap returns a working layer over the committed state.
	CacheWrap() KVCacheWrap

	Commit() (CommitID, error)

	// LoadLatestVersion loads the last version fully written to disk.
	LoadLatestVersion() error

	LatestVersion() CommitID
}

// CommitID identifies a committed version.
type CommitID struct {
	Version int64
	Hash    []byte
}
