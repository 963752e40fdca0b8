package utils

import (
	custody "github.com/chidioffor/crypto-hybrid-sub000"
	"github.com/chidioffor/crypto-hybrid-sub000/errors"
)

// Recovery converts a panic anywhere below it into an ErrPanic result, so
// a faulty handler fails one transaction instead of halting the node.
type Recovery struct{}

var _ custody.Decorator = Recovery{}

func NewRecovery() Recovery {
	return Recovery{}
}

func (Recovery) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx, next custody.Checker) (res *custody.CheckResult, err error) {
	defer errors.Recover(&err)
	res, err = next.Check(ctx, db, tx)
	return res, err
}

func (Recovery) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx, next custody.Deliverer) (res *custody.DeliverResult, err error) {
	defer errors.Recover(&err)
	res, err = next.Deliver(ctx, db, tx)
	return res, err
}
