package custodytest

import (
	"reflect"

	custody "github.com/chidioffor/crypto-hybrid-sub000"
	"github.com/chidioffor/crypto-hybrid-sub000/errors"
)

// Router is an in memory custody.Registry for handler tests. It delivers
// messages directly, without a transaction envelope, and implements the
// x.Invoker interface so that extensions can be tested together.
type Router struct {
	handlers   map[string]custody.Handler
	prototypes map[string]reflect.Type
}

var _ custody.Registry = (*Router)(nil)

func NewRouter() *Router {
	return &Router{
		handlers:   make(map[string]custody.Handler),
		prototypes: make(map[string]reflect.Type),
	}
}

func (r *Router) Handle(prototype custody.Msg, h custody.Handler) {
	path := prototype.Path()
	if _, ok := r.handlers[path]; ok {
		panic("handler already registered for " + path)
	}
	r.handlers[path] = h
	r.prototypes[path] = reflect.TypeOf(prototype)
}

// Check runs the check phase of the handler registered for the message.
func (r *Router) Check(ctx custody.Context, db custody.KVStore, msg custody.Msg) (*custody.CheckResult, error) {
	h, ok := r.handlers[msg.Path()]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "no handler for %s", msg.Path())
	}
	return h.Check(ctx, db, &Tx{Msg: msg})
}

// Deliver runs the deliver phase of the handler registered for the
// message. The message is processed in a cache wrap that is written only
// on success, as the application does for a transaction.
func (r *Router) Deliver(ctx custody.Context, db custody.CacheableKVStore, msg custody.Msg) (*custody.DeliverResult, error) {
	h, ok := r.handlers[msg.Path()]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "no handler for %s", msg.Path())
	}
	cache := db.CacheWrap()
	res, err := h.Deliver(ctx, cache, &Tx{Msg: msg})
	if err != nil {
		cache.Discard()
		return nil, err
	}
	if err := cache.Write(); err != nil {
		return nil, err
	}
	return res, nil
}

// Invoke decodes the payload with the prototype registered for the path
// and delivers it.
func (r *Router) Invoke(ctx custody.Context, db custody.KVStore, path string, payload []byte) (*custody.DeliverResult, error) {
	tp, ok := r.prototypes[path]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "no handler for %s", path)
	}
	msg := reflect.New(tp.Elem()).Interface().(custody.Msg)
	if err := msg.Unmarshal(payload); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return r.handlers[path].Deliver(ctx, db, &Tx{Msg: msg})
}
