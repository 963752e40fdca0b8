package store

import (
	"bytes"

	"github.com/google/btree"
)

// BTreeCacheable gives any KVStore a btree backed cache wrap.
type BTreeCacheable struct {
	KVStore
}

var _ CacheableKVStore = BTreeCacheable{}

func (b BTreeCacheable) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(b.KVStore, NewNonAtomicBatch(b.KVStore), nil)
}

// MemStore returns an empty in-memory store. Nothing it holds survives
// the process; tests and genesis validation use it.
func MemStore() CacheableKVStore {
	var empty EmptyKVStore
	return NewBTreeCacheWrap(empty, NewNonAtomicBatch(empty), nil)
}

// BTreeCacheWrap keeps pending writes, including deletions, in a btree
// over a read-only parent. Reads see the pending writes first. Every write
// is also queued in the batch, which Write flushes to the parent.
type BTreeCacheWrap struct {
	tree   *btree.BTree
	free   *btree.FreeList
	parent ReadOnlyKVStore
	batch  Batch
}

var _ KVCacheWrap = BTreeCacheWrap{}

// NewBTreeCacheWrap layers a cache over parent. Nested wraps pass their
// free list down so that released nodes are reused; free may be nil.
func NewBTreeCacheWrap(parent ReadOnlyKVStore, batch Batch, free *btree.FreeList) BTreeCacheWrap {
	if free == nil {
		free = btree.NewFreeList(btree.DefaultFreeListSize)
	}
	return BTreeCacheWrap{
		tree:   btree.NewWithFreeList(2, free),
		free:   free,
		parent: parent,
		batch:  batch,
	}
}

func (b BTreeCacheWrap) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(b, NewNonAtomicBatch(b), b.free)
}

// Write flushes the pending writes to the parent and empties the cache.
func (b BTreeCacheWrap) Write() error {
	err := b.batch.Write()
	b.Discard()
	return err
}

// Discard drops the cached entries, returning their nodes to the free
// list. The batch is not written.
func (b BTreeCacheWrap) Discard() {
	for b.tree.DeleteMin() != nil {
	}
}

func (b BTreeCacheWrap) Set(key, value []byte) {
	b.tree.ReplaceOrInsert(valueEntry{probe{key}, value})
	b.batch.Set(key, value)
}

func (b BTreeCacheWrap) Delete(key []byte) {
	b.tree.ReplaceOrInsert(tombstone{probe{key}})
	b.batch.Delete(key)
}

func (b BTreeCacheWrap) Get(key []byte) []byte {
	switch e := b.tree.Get(probe{key}).(type) {
	case valueEntry:
		return e.value
	case tombstone:
		return nil
	default:
		return b.parent.Get(key)
	}
}

func (b BTreeCacheWrap) Has(key []byte) bool {
	switch b.tree.Get(probe{key}).(type) {
	case valueEntry:
		return true
	case tombstone:
		return false
	default:
		return b.parent.Has(key)
	}
}

func (b BTreeCacheWrap) Iterator(start, end []byte) Iterator {
	return newMergeIterator(b.ascend(start, end), b.parent.Iterator(start, end), false)
}

func (b BTreeCacheWrap) ReverseIterator(start, end []byte) Iterator {
	return newMergeIterator(b.descend(start, end), b.parent.ReverseIterator(start, end), true)
}

// ascend returns the cached entries in [start, end), lowest key first.
func (b BTreeCacheWrap) ascend(start, end []byte) []entry {
	var out []entry
	visit := func(i btree.Item) bool {
		out = append(out, i.(entry))
		return true
	}
	switch {
	case start == nil && end == nil:
		b.tree.Ascend(visit)
	case start == nil:
		b.tree.AscendLessThan(probe{end}, visit)
	case end == nil:
		b.tree.AscendGreaterOrEqual(probe{start}, visit)
	default:
		b.tree.AscendRange(probe{start}, probe{end}, visit)
	}
	return out
}

// descend returns the cached entries in [start, end), highest key first.
// The btree has no half-open descending range, so end itself is skipped
// here.
func (b BTreeCacheWrap) descend(start, end []byte) []entry {
	var out []entry
	visit := func(i btree.Item) bool {
		e := i.(entry)
		if end != nil && bytes.Compare(e.key(), end) >= 0 {
			return true
		}
		if start != nil && bytes.Compare(e.key(), start) < 0 {
			return false
		}
		out = append(out, e)
		return true
	}
	if end == nil {
		b.tree.Descend(visit)
	} else {
		b.tree.DescendLessOrEqual(probe{end}, visit)
	}
	return out
}

// entry is implemented by every item stored in the btree.
type entry interface {
	btree.Item
	key() []byte
}

// probe orders entries by key. On its own it is used to look keys up.
type probe struct {
	k []byte
}

func (p probe) key() []byte { return p.k }

func (p probe) Less(than btree.Item) bool {
	return bytes.Compare(p.k, than.(entry).key()) < 0
}

// valueEntry is a pending Set.
type valueEntry struct {
	probe
	value []byte
}

// tombstone is a pending Delete. It hides the key of the parent.
type tombstone struct {
	probe
}
