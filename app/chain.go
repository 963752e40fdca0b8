package app

import (
	"reflect"

	custody "github.com/chidioffor/crypto-hybrid-sub000"
)

// Decorators is a stack of decorators waiting for the handler they wrap.
// The first decorator added is the outermost one:
//
//	app.ChainDecorators(
//		utils.NewLogging(),
//		utils.NewRecovery(),
//		sigs.NewDecorator(),
//		utils.NewSavepoint().OnDeliver(),
//	).WithHandler(router)
type Decorators struct {
	chain []custody.Decorator
}

// ChainDecorators starts a stack. Nil decorators are skipped, so optional
// ones (metrics without a registry) can be passed unconditionally.
func ChainDecorators(ds ...custody.Decorator) Decorators {
	return Decorators{}.Chain(ds...)
}

// Chain returns a new stack with ds appended below the existing ones.
func (d Decorators) Chain(ds ...custody.Decorator) Decorators {
	chain := make([]custody.Decorator, 0, len(d.chain)+len(ds))
	chain = append(chain, d.chain...)
	for _, dec := range ds {
		if !isNilDecorator(dec) {
			chain = append(chain, dec)
		}
	}
	return Decorators{chain: chain}
}

func isNilDecorator(d custody.Decorator) bool {
	if d == nil {
		return true
	}
	v := reflect.ValueOf(d)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// WithHandler closes the stack over h.
func (d Decorators) WithHandler(h custody.Handler) custody.Handler {
	for i := len(d.chain) - 1; i >= 0; i-- {
		h = step{d: d.chain[i], next: h}
	}
	return h
}

// step binds one decorator to the rest of the stack.
type step struct {
	d    custody.Decorator
	next custody.Handler
}

var _ custody.Handler = step{}

func (s step) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	return s.d.Check(ctx, db, tx, s.next)
}

func (s step) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	return s.d.Deliver(ctx, db, tx, s.next)
}
