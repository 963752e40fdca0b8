package custodytest

import (
	"context"
	"fmt"

	custody "github.com/chidioffor/crypto-hybrid-sub000"
)

// Auth authenticates a fixed set of conditions: all of Signers followed
// by Signer, when set.
type Auth struct {
	Signer  custody.Condition
	Signers []custody.Condition
}

func (a *Auth) GetConditions(custody.Context) []custody.Condition {
	conds := make([]custody.Condition, 0, len(a.Signers)+1)
	conds = append(conds, a.Signers...)
	if a.Signer != nil {
		conds = append(conds, a.Signer)
	}
	if len(conds) == 0 {
		return nil
	}
	return conds
}

func (a *Auth) HasAddress(ctx custody.Context, addr custody.Address) bool {
	return hasAddress(a.GetConditions(ctx), addr)
}

// CtxAuth reads the authenticated conditions from the context, so that
// one handler can serve the calls of several parties in a test. Auths
// with different keys do not see each other's conditions.
type CtxAuth struct {
	Key string
}

func (a *CtxAuth) SetConditions(ctx custody.Context, conds ...custody.Condition) custody.Context {
	return context.WithValue(ctx, a.Key, conds)
}

func (a *CtxAuth) GetConditions(ctx custody.Context) []custody.Condition {
	switch v := ctx.Value(a.Key).(type) {
	case nil:
		return nil
	case []custody.Condition:
		return v
	default:
		panic(fmt.Sprintf("context key %q holds %T", a.Key, v))
	}
}

func (a *CtxAuth) HasAddress(ctx custody.Context, addr custody.Address) bool {
	return hasAddress(a.GetConditions(ctx), addr)
}

func hasAddress(conds []custody.Condition, addr custody.Address) bool {
	for _, c := range conds {
		if c.Address().Equals(addr) {
			return true
		}
	}
	return false
}
