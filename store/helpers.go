package store

// SliceIterator iterates over models already loaded in memory, for
// example the result of an ABCI query.
type SliceIterator struct {
	data []Model
	pos  int
	step int
}

var _ Iterator = (*SliceIterator)(nil)

// NewSliceIterator iterates over data in the given order.
func NewSliceIterator(data []Model) *SliceIterator {
	return &SliceIterator{data: data, step: 1}
}

// NewReverseSliceIterator iterates over data from the last element to
// the first.
func NewReverseSliceIterator(data []Model) *SliceIterator {
	return &SliceIterator{data: data, pos: len(data) - 1, step: -1}
}

func (s *SliceIterator) Valid() bool {
	return s.pos >= 0 && s.pos < len(s.data)
}

// Next panics when called on an exhausted iterator.
func (s *SliceIterator) Next() {
	s.mustBeValid()
	s.pos += s.step
}

func (s *SliceIterator) Key() []byte {
	s.mustBeValid()
	return s.data[s.pos].Key
}

func (s *SliceIterator) Value() []byte {
	s.mustBeValid()
	return s.data[s.pos].Value
}

func (s *SliceIterator) Close() {
	s.data = nil
}

func (s *SliceIterator) mustBeValid() {
	if !s.Valid() {
		panic("slice iterator exhausted")
	}
}

// EmptyKVStore holds nothing and ignores writes. It is the bottom layer
// of a MemStore.
type EmptyKVStore struct{}

var _ KVStore = EmptyKVStore{}

func (EmptyKVStore) Get(key []byte) []byte { return nil }

func (EmptyKVStore) Has(key []byte) bool { return false }

func (EmptyKVStore) Set(key, value []byte) {}

func (EmptyKVStore) Delete(key []byte) {}

func (EmptyKVStore) Iterator(start, end []byte) Iterator { return NewSliceIterator(nil) }

func (EmptyKVStore) ReverseIterator(start, end []byte) Iterator { return NewSliceIterator(nil) }

// NonAtomicBatch queues writes and replays them in order on Write. The
// replay is not atomic, which is fine for stores that cannot fail, such
// as in-memory ones.
type NonAtomicBatch struct {
	out SetDeleter
	ops []func(SetDeleter)
}

var _ Batch = (*NonAtomicBatch)(nil)

// NewNonAtomicBatch returns an empty batch writing to out.
func NewNonAtomicBatch(out SetDeleter) *NonAtomicBatch {
	return &NonAtomicBatch{out: out}
}

func (b *NonAtomicBatch) Set(key, value []byte) {
	b.ops = append(b.ops, func(out SetDeleter) { out.Set(key, value) })
}

func (b *NonAtomicBatch) Delete(key []byte) {
	b.ops = append(b.ops, func(out SetDeleter) { out.Delete(key) })
}

// Write applies the queued operations and empties the batch.
func (b *NonAtomicBatch) Write() error {
	for _, op := range b.ops {
		op(b.out)
	}
	b.ops = nil
	return nil
}
