package store

import (
	"bytes"
)

// side tells which input holds the next key of a mergeIterator.
type side int

const (
	sideNone side = iota
	sideCache
	sideParent
	// sideBoth means both inputs are at the same key. The cached entry
	// shadows the parent one.
	sideBoth
)

// mergeIterator walks the cached entries of a cache wrap and the parent
// iterator together, in key order. Cached values override the parent and
// tombstones hide parent keys.
type mergeIterator struct {
	cached  []entry
	pos     int
	parent  Iterator
	reverse bool
}

var _ Iterator = (*mergeIterator)(nil)

func newMergeIterator(cached []entry, parent Iterator, reverse bool) *mergeIterator {
	it := &mergeIterator{cached: cached, parent: parent, reverse: reverse}
	it.skipTombstones()
	return it
}

func (it *mergeIterator) Valid() bool {
	return it.next() != sideNone
}

func (it *mergeIterator) Next() {
	switch it.next() {
	case sideCache:
		it.pos++
	case sideParent:
		it.parent.Next()
	case sideBoth:
		it.pos++
		it.parent.Next()
	default:
		panic("iterator exhausted")
	}
	it.skipTombstones()
}

func (it *mergeIterator) Key() []byte {
	switch it.next() {
	case sideCache, sideBoth:
		return it.cached[it.pos].key()
	case sideParent:
		return it.parent.Key()
	default:
		panic("iterator exhausted")
	}
}

func (it *mergeIterator) Value() []byte {
	switch it.next() {
	case sideCache, sideBoth:
		return it.cached[it.pos].(valueEntry).value
	case sideParent:
		return it.parent.Value()
	default:
		panic("iterator exhausted")
	}
}

func (it *mergeIterator) Close() {
	if it.parent != nil {
		it.parent.Close()
	}
	it.cached = nil
}

// skipTombstones moves past deleted keys, together with the parent entry
// they hide.
func (it *mergeIterator) skipTombstones() {
	for {
		s := it.next()
		if s != sideCache && s != sideBoth {
			return
		}
		if _, ok := it.cached[it.pos].(tombstone); !ok {
			return
		}
		it.pos++
		if s == sideBoth {
			it.parent.Next()
		}
	}
}

// next compares the heads of both inputs in iteration order.
func (it *mergeIterator) next() side {
	cacheOK := it.pos < len(it.cached)
	parentOK := it.parent != nil && it.parent.Valid()
	switch {
	case !cacheOK && !parentOK:
		return sideNone
	case !parentOK:
		return sideCache
	case !cacheOK:
		return sideParent
	}

	cmp := bytes.Compare(it.cached[it.pos].key(), it.parent.Key())
	if it.reverse {
		cmp = -cmp
	}
	switch {
	case cmp < 0:
		return sideCache
	case cmp > 0:
		return sideParent
	default:
		return sideBoth
	}
}
