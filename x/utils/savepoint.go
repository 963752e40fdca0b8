package utils

import (
	custody "github.com/chidioffor/crypto-hybrid-sub000"
	"github.com/chidioffor/crypto-hybrid-sub000/errors"
)

// Savepoint runs the rest of the stack on a cache wrap of the store. The
// writes reach the store only if the call succeeds, which makes every
// vault, escrow and governance operation all or nothing.
type Savepoint struct {
	onCheck   bool
	onDeliver bool
}

var _ custody.Decorator = Savepoint{}

// NewSavepoint returns a decorator that does nothing until OnCheck or
// OnDeliver enables it.
func NewSavepoint() Savepoint {
	return Savepoint{}
}

func (s Savepoint) OnCheck() Savepoint {
	s.onCheck = true
	return s
}

func (s Savepoint) OnDeliver() Savepoint {
	s.onDeliver = true
	return s
}

func (s Savepoint) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx, next custody.Checker) (*custody.CheckResult, error) {
	var res *custody.CheckResult
	err := s.atomic(s.onCheck, db, func(db custody.KVStore) (err error) {
		res, err = next.Check(ctx, db, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s Savepoint) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx, next custody.Deliverer) (*custody.DeliverResult, error) {
	var res *custody.DeliverResult
	err := s.atomic(s.onDeliver, db, func(db custody.KVStore) (err error) {
		res, err = next.Deliver(ctx, db, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// atomic calls fn on a cache wrap of db when enabled and db supports it,
// else directly on db.
func (Savepoint) atomic(enabled bool, db custody.KVStore, fn func(custody.KVStore) error) error {
	cs, ok := db.(custody.CacheableKVStore)
	if !enabled || !ok {
		return fn(db)
	}
	cache := cs.CacheWrap()
	if err := fn(cache); err != nil {
		cache.Discard()
		return err
	}
	if err := cache.Write(); err != nil {
		return errors.Wrap(err, "write savepoint")
	}
	return nil
}
