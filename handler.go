package custody

import (
	"encoding/json"
	"time"

	"github.com/tendermint/tendermint/libs/common"
)

// Handler processes the messages routed to it, for example vault
// approvals or governance votes. Check validates a transaction for the
// mempool and Deliver applies it to the block state.
type Handler interface {
	Checker
	Deliverer
}

type Checker interface {
	Check(ctx Context, store KVStore, tx Tx) (*CheckResult, error)
}

type Deliverer interface {
	Deliver(ctx Context, store KVStore, tx Tx) (*DeliverResult, error)
}

// Decorator runs around the next handler of a stack, adding behaviour
// shared by all messages such as signature checks, savepoints or logging.
type Decorator interface {
	Check(ctx Context, store KVStore, tx Tx, next Checker) (*CheckResult, error)
	Deliver(ctx Context, store KVStore, tx Tx, next Deliverer) (*DeliverResult, error)
}

// Registry binds message types to handlers.
type Registry interface {
	// Handle routes every message of the prototype's type to h.
	Handle(prototype Msg, h Handler)
}

// CheckResult is the outcome of a successful Check. Failures are reported
// as errors only.
type CheckResult struct {
	// Data is returned to the client as is.
	Data []byte
	Log  string
	// GasAllocated bounds the work the transaction may cause.
	GasAllocated int64
}

// DeliverResult is the outcome of a successful Deliver.
type DeliverResult struct {
	// Data carries the id of a created entity, if any.
	Data []byte
	Log  string
	// Tags are indexed by the node, so that clients can search for
	// transactions touching a vault, agreement or proposal.
	Tags []common.KVPair
}

func (d *DeliverResult) Tag(key string, value []byte) {
	d.Tags = append(d.Tags, common.KVPair{Key: []byte(key), Value: value})
}

// Options is the app_state of the genesis file, one JSON value per key.
type Options map[string]json.RawMessage

// ReadOptions decodes the value under key into obj. A missing key leaves
// obj untouched.
func (o Options) ReadOptions(key string, obj interface{}) error {
	raw, ok := o[key]
	if !ok || len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, obj)
}

// GenesisParams describes the chain at the moment it is initialized.
type GenesisParams struct {
	ChainID string
	Time    time.Time
}

// Initializer writes the initial state of a module from the genesis file.
type Initializer interface {
	FromGenesis(opts Options, params GenesisParams, kv KVStore) error
}

// ChainInitializers runs inits in order and stops at the first error.
func ChainInitializers(inits ...Initializer) Initializer {
	return initializers(inits)
}

type initializers []Initializer

func (in initializers) FromGenesis(opts Options, params GenesisParams, kv KVStore) error {
	for _, i := range in {
		if err := i.FromGenesis(opts, params, kv); err != nil {
			return err
		}
	}
	return nil
}
