package utils

import (
	custody "github.com/chidioffor/crypto-hybrid-sub000"
)

// ActionKey is the tag key set by ActionTagger.
const ActionKey = "action"

// ActionTagger tags every successful delivery with action=<message path>,
// so that clients can subscribe to vault executions or escrow releases.
// Messages run through the invoke capability skip the decorator stack and
// only carry the tags of their own handlers.
type ActionTagger struct{}

var _ custody.Decorator = ActionTagger{}

func NewActionTagger() ActionTagger {
	return ActionTagger{}
}

func (ActionTagger) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx, next custody.Checker) (*custody.CheckResult, error) {
	return next.Check(ctx, db, tx)
}

func (ActionTagger) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx, next custody.Deliverer) (*custody.DeliverResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	res, err := next.Deliver(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	res.Tag(ActionKey, []byte(msg.Path()))
	return res, nil
}
