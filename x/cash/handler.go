package cash

import (
	custody "github.com/chidioffor/crypto-hybrid-sub000"
	"github.com/chidioffor/crypto-hybrid-sub000/errors"
	"github.com/chidioffor/crypto-hybrid-sub000/x"
)

const sendCost = 100

func RegisterRoutes(r custody.Registry, auth x.Authenticator, control Controller) {
	r.Handle(&SendMsg{}, NewSendHandler(auth, control))
}

// RegisterQuery exposes balances under "/wallets".
func RegisterQuery(qr custody.QueryRouter) {
	NewBucket().Register("wallets", qr)
}

// SendHandler moves coins out of a wallet on behalf of its owner. A vault
// or a governor sends through the invoke capability, with its own
// condition as the authority.
type SendHandler struct {
	auth    x.Authenticator
	control Controller
}

var _ custody.Handler = SendHandler{}

func NewSendHandler(auth x.Authenticator, control Controller) SendHandler {
	return SendHandler{auth: auth, control: control}
}

// Check moves the coins on the check state as well, so the mempool
// rejects a second send that the first one already made unaffordable.
func (h SendHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	msg, err := h.load(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := h.control.MoveCoins(ctx, db, msg.Source, msg.Destination, *msg.Amount); err != nil {
		return nil, err
	}
	return &custody.CheckResult{GasAllocated: sendCost}, nil
}

func (h SendHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, err := h.load(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := h.control.MoveCoins(ctx, db, msg.Source, msg.Destination, *msg.Amount); err != nil {
		return nil, err
	}
	res := &custody.DeliverResult{}
	res.Tag("cash.source", msg.Source)
	res.Tag("cash.destination", msg.Destination)
	return res, nil
}

func (h SendHandler) load(ctx custody.Context, tx custody.Tx) (*SendMsg, error) {
	var msg SendMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, err
	}
	if !h.auth.HasAddress(ctx, msg.Source) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "source wallet owner must sign")
	}
	return &msg, nil
}
