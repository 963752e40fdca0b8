package x

import (
	"context"

	custody "github.com/chidioffor/crypto-hybrid-sub000"
	"github.com/chidioffor/crypto-hybrid-sub000/errors"
)

// MaxInvokeDepth limits how deeply invocations may nest. A vault invoking
// a governor invoking a vault is three levels deep.
const MaxInvokeDepth = 4

// Invoker executes a message identified by its path and binary payload.
// Callers must set the identity the message runs as with WithAuthority
// before invoking.
//
// Invoker is how custody entities act on other extensions: a vault action
// or a governance proposal carries only a path and a payload, never a
// handler reference.
type Invoker interface {
	Invoke(ctx custody.Context, db custody.KVStore, path string, payload []byte) (*custody.DeliverResult, error)
}

type authorityKey int

const (
	authorityCondition authorityKey = iota
	authorityDepth
)

// WithAuthority returns a context in which the given condition is the only
// identity visible to authenticators created with ChainAuth or
// AuthorityAuth. Each call increases the invocation depth and fails with
// ErrState once MaxInvokeDepth is exceeded.
func WithAuthority(ctx custody.Context, cond custody.Condition) (custody.Context, error) {
	if err := cond.Validate(); err != nil {
		return nil, errors.Wrap(err, "authority")
	}
	depth := InvokeDepth(ctx) + 1
	if depth > MaxInvokeDepth {
		return nil, errors.Wrapf(errors.ErrState, "invocation depth %d exceeded", MaxInvokeDepth)
	}
	ctx = context.WithValue(ctx, authorityDepth, depth)
	return context.WithValue(ctx, authorityCondition, cond), nil
}

// Authority returns the condition a message is being invoked on behalf of.
func Authority(ctx custody.Context) (custody.Condition, bool) {
	c, ok := ctx.Value(authorityCondition).(custody.Condition)
	return c, ok
}

// InvokeDepth returns how many invocations are currently nested.
func InvokeDepth(ctx custody.Context) int {
	d, _ := ctx.Value(authorityDepth).(int)
	return d
}

// AuthorityAuth authenticates the condition set by WithAuthority.
type AuthorityAuth struct{}

var _ Authenticator = AuthorityAuth{}

func (AuthorityAuth) GetConditions(ctx custody.Context) []custody.Condition {
	if c, ok := Authority(ctx); ok {
		return []custody.Condition{c}
	}
	return nil
}

func (AuthorityAuth) HasAddress(ctx custody.Context, addr custody.Address) bool {
	c, ok := Authority(ctx)
	return ok && c.Address().Equals(addr)
}
