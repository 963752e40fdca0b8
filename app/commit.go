package app

import (
	custody "github.com/chidioffor/crypto-hybrid-sub000"
	"github.com/chidioffor/crypto-hybrid-sub000/errors"
)

// CommitStore keeps two working layers over the committed state. Deliver
// collects the writes of the current block and becomes the next version
// on Commit. Check validates mempool transactions and is thrown away on
// every Commit.
type CommitStore struct {
	committed custody.CommitKVStore
	deliver   custody.KVCacheWrap
	check     custody.KVCacheWrap
}

// NewCommitStore loads the latest version of store. It panics if the
// version cannot be loaded.
func NewCommitStore(store custody.CommitKVStore) *CommitStore {
	if err := store.LoadLatestVersion(); err != nil {
		panic(err)
	}
	cs := &CommitStore{committed: store}
	cs.reset()
	return cs
}

func (cs *CommitStore) reset() {
	cs.deliver = cs.committed.CacheWrap()
	cs.check = cs.committed.CacheWrap()
}

// CommitInfo returns the last committed version and hash.
func (cs *CommitStore) CommitInfo() custody.CommitID {
	return cs.committed.LatestVersion()
}

// Commit writes the block to disk and opens fresh layers on top of it.
func (cs *CommitStore) Commit() (custody.CommitID, error) {
	if err := cs.deliver.Write(); err != nil {
		return custody.CommitID{}, errors.Wrap(err, "flush deliver layer")
	}
	cs.check.Discard()

	id, err := cs.committed.Commit()
	if err != nil {
		return id, err
	}
	cs.reset()
	return id, nil
}

func (cs *CommitStore) CheckStore() custody.CacheableKVStore {
	return cs.check
}

func (cs *CommitStore) DeliverStore() custody.CacheableKVStore {
	return cs.deliver
}

// Keys under "_i:" are internal to the application. Module configuration
// lives under "_c:".
const chainIDKey = "_i:chainID"

func loadChainID(kv custody.ReadOnlyKVStore) string {
	return string(kv.Get([]byte(chainIDKey)))
}

// saveChainID writes the chain id once. A chain id cannot be changed
// after genesis.
func saveChainID(kv custody.KVStore, chainID string) error {
	if !custody.IsValidChainID(chainID) {
		return errors.Wrapf(errors.ErrInput, "chain id: %q", chainID)
	}
	key := []byte(chainIDKey)
	if kv.Has(key) {
		return errors.Wrap(errors.ErrUnauthorized, "chain id is set at genesis")
	}
	kv.Set(key, []byte(chainID))
	return nil
}
