package x

import (
	custody "github.com/chidioffor/crypto-hybrid-sub000"
)

// Authenticator tells a handler who authorized the current transaction.
// Handlers receive it in their constructor, so tests and the invoke
// capability can replace signature checks.
type Authenticator interface {
	// GetConditions lists every condition satisfied in ctx.
	GetConditions(custody.Context) []custody.Condition
	// HasAddress reports whether a condition of addr is satisfied.
	HasAddress(custody.Context, custody.Address) bool
}

// MultiAuth is the union of several authenticators.
type MultiAuth struct {
	impls []Authenticator
}

var _ Authenticator = MultiAuth{}

// ChainAuth combines impls. Conditions keep the order of impls and
// duplicates are dropped.
//
// While a message runs on behalf of an authority (see WithAuthority), the
// authority is the only condition a MultiAuth reports. The signers of the
// outer transaction are not visible to the invoked handler.
func ChainAuth(impls ...Authenticator) MultiAuth {
	return MultiAuth{impls: impls}
}

func (m MultiAuth) GetConditions(ctx custody.Context) []custody.Condition {
	if auth, ok := Authority(ctx); ok {
		return []custody.Condition{auth}
	}
	var all []custody.Condition
	for _, impl := range m.impls {
		for _, c := range impl.GetConditions(ctx) {
			if !containsCondition(all, c) {
				all = append(all, c)
			}
		}
	}
	return all
}

func (m MultiAuth) HasAddress(ctx custody.Context, addr custody.Address) bool {
	if auth, ok := Authority(ctx); ok {
		return auth.Address().Equals(addr)
	}
	for _, impl := range m.impls {
		if impl.HasAddress(ctx, addr) {
			return true
		}
	}
	return false
}

// MainSigner returns the first condition, or nil if nobody signed. Entity
// creators default to it.
func MainSigner(ctx custody.Context, auth Authenticator) custody.Condition {
	if conds := auth.GetConditions(ctx); len(conds) > 0 {
		return conds[0]
	}
	return nil
}

// AnySigner returns the first of candidates that is authenticated, or
// nil. Escrow uses it to learn which party is calling.
func AnySigner(ctx custody.Context, auth Authenticator, candidates ...custody.Address) custody.Address {
	for _, c := range candidates {
		if auth.HasAddress(ctx, c) {
			return c
		}
	}
	return nil
}

func containsCondition(conds []custody.Condition, c custody.Condition) bool {
	for _, have := range conds {
		if have.Equals(c) {
			return true
		}
	}
	return false
}
