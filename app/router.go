package app

import (
	"reflect"
	"regexp"

	custody "github.com/chidioffor/crypto-hybrid-sub000"
	"github.com/chidioffor/crypto-hybrid-sub000/errors"
	"github.com/chidioffor/crypto-hybrid-sub000/x"
)

// isPath is the RegExp to ensure the routes make sense
var isPath = regexp.MustCompile(`^[a-z0-9_]+/[a-z0-9_]+$`).MatchString

// Router allows us to register many handlers with different
// paths and then direct each message to the proper handler.
//
// Router is also the invoke capability of the application: vault actions
// and governance proposals carry a path and a payload, and Invoke turns
// that pair back into a message delivered to its handler.
type Router struct {
	routes     map[string]custody.Handler
	prototypes map[string]reflect.Type
}

var (
	_ custody.Registry = (*Router)(nil)
	_ custody.Handler  = (*Router)(nil)
	_ x.Invoker        = (*Router)(nil)
)

// NewRouter returns a new empty router instance
func NewRouter() *Router {
	return &Router{
		routes:     make(map[string]custody.Handler, 32),
		prototypes: make(map[string]reflect.Type, 32),
	}
}

// Handle adds a new Handler for the path of the given message prototype.
// Panics if another Handler was already registered or the path is not
// of the form "module/action".
func (r *Router) Handle(prototype custody.Msg, h custody.Handler) {
	path := prototype.Path()
	if !isPath(path) {
		panic("invalid path: " + path)
	}
	if _, ok := r.routes[path]; ok {
		panic("re-registering route: " + path)
	}
	if reflect.TypeOf(prototype).Kind() != reflect.Ptr {
		panic("message prototype must be a pointer: " + path)
	}
	r.routes[path] = h
	r.prototypes[path] = reflect.TypeOf(prototype)
}

// handler returns the registered Handler for this path.
// If no path is found, returns a noSuchPath Handler
// Always returns a non-nil Handler
func (r *Router) handler(path string) custody.Handler {
	h, ok := r.routes[path]
	if !ok {
		return notFoundHandler(path)
	}
	return h
}

// Paths returns the registered message paths.
func (r *Router) Paths() []string {
	paths := make([]string, 0, len(r.routes))
	for p := range r.routes {
		paths = append(paths, p)
	}
	return paths
}

// Check dispatches to the proper handler based on path
func (r *Router) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "cannot load msg")
	}
	return r.handler(msg.Path()).Check(ctx, db, tx)
}

// Deliver dispatches to the proper handler based on path
func (r *Router) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "cannot load msg")
	}
	return r.handler(msg.Path()).Deliver(ctx, db, tx)
}

// Invoke decodes the payload into the message type registered for the
// path, validates it and delivers it to its handler. Decorators are not
// run: the caller is responsible for setting the authority the message
// executes as.
func (r *Router) Invoke(ctx custody.Context, db custody.KVStore, path string, payload []byte) (*custody.DeliverResult, error) {
	msg, err := r.decode(path, payload)
	if err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid %s", path)
	}
	return r.routes[path].Deliver(ctx, db, invokedTx{msg: msg})
}

// decode returns a new message of the type registered for the path.
func (r *Router) decode(path string, payload []byte) (custody.Msg, error) {
	tp, ok := r.prototypes[path]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "path %q", path)
	}
	msg := reflect.New(tp.Elem()).Interface().(custody.Msg)
	if err := msg.Unmarshal(payload); err != nil {
		return nil, errors.Wrapf(errors.ErrMsg, "decode %s: %s", path, err)
	}
	return msg, nil
}

// invokedTx carries a message dispatched through Invoke. It has no
// signatures, the identity comes from the authority set in the context.
type invokedTx struct {
	msg custody.Msg
}

func (tx invokedTx) GetMsg() (custody.Msg, error) {
	return tx.msg, nil
}

// notFoundHandler always returns ErrNotFound for the given path.
type notFoundHandler string

var _ custody.Handler = notFoundHandler("")

func (path notFoundHandler) Check(custody.Context, custody.KVStore, custody.Tx) (*custody.CheckResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for path %q", string(path))
}

func (path notFoundHandler) Deliver(custody.Context, custody.KVStore, custody.Tx) (*custody.DeliverResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for path %q", string(path))
}
