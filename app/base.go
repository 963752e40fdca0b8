package app

import (
	custody "github.com/chidioffor/crypto-hybrid-sub000"
	"github.com/chidioffor/crypto-hybrid-sub000/errors"
	abci "github.com/tendermint/tendermint/abci/types"
)

// BaseApp is the complete ABCI application: StoreApp plus the decoding
// and processing of transactions.
type BaseApp struct {
	*StoreApp
	decoder custody.TxDecoder
	handler custody.Handler
}

var _ abci.Application = BaseApp{}

func NewBaseApp(store *StoreApp, decoder custody.TxDecoder, handler custody.Handler) BaseApp {
	return BaseApp{StoreApp: store, decoder: decoder, handler: handler}
}

// DeliverTx runs the transaction against the block state.
func (b BaseApp) DeliverTx(raw []byte) abci.ResponseDeliverTx {
	tx, err := b.decode(raw)
	if err != nil {
		return DeliverTxError(err, b.debug)
	}
	ctx := b.txContext("deliver_tx", tx)
	res, err := b.handler.Deliver(ctx, b.DeliverStore(), tx)
	return DeliverOrError(res, err, b.debug)
}

// CheckTx validates the transaction for the mempool.
func (b BaseApp) CheckTx(raw []byte) abci.ResponseCheckTx {
	tx, err := b.decode(raw)
	if err != nil {
		return CheckTxError(err, b.debug)
	}
	ctx := b.txContext("check_tx", tx)
	res, err := b.handler.Check(ctx, b.CheckStore(), tx)
	return CheckOrError(res, err, b.debug)
}

func (b BaseApp) txContext(call string, tx custody.Tx) custody.Context {
	return custody.WithLogInfo(b.BlockContext(), "call", call, "path", custody.GetPath(tx))
}

// decode turns a decoder panic on hostile input into an error.
func (b BaseApp) decode(raw []byte) (tx custody.Tx, err error) {
	defer errors.Recover(&err)
	return b.decoder(raw)
}
