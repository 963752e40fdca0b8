package app

import (
	"fmt"

	custody "github.com/chidioffor/crypto-hybrid-sub000"
	"github.com/chidioffor/crypto-hybrid-sub000/errors"
	abci "github.com/tendermint/tendermint/abci/types"
)

// ResultSet is one column of a query response: either all keys or all
// values, in the same order.
type ResultSet struct {
	Results [][]byte `json:"results"`
}

func (r *ResultSet) Marshal() ([]byte, error) { return custody.MarshalBinary(r) }

func (r *ResultSet) Unmarshal(raw []byte) error { return custody.UnmarshalBinary(raw, r) }

func ResultsFromKeys(models []custody.Model) *ResultSet {
	return column(models, func(m custody.Model) []byte { return m.Key })
}

func ResultsFromValues(models []custody.Model) *ResultSet {
	return column(models, func(m custody.Model) []byte { return m.Value })
}

func column(models []custody.Model, get func(custody.Model) []byte) *ResultSet {
	res := make([][]byte, 0, len(models))
	for _, m := range models {
		res = append(res, get(m))
	}
	return &ResultSet{Results: res}
}

// JoinResults pairs the key and value columns of a query response back
// into models.
func JoinResults(keys, values *ResultSet) ([]custody.Model, error) {
	if n, m := len(keys.Results), len(values.Results); n != m {
		return nil, errors.Wrapf(errors.ErrInput, "%d keys and %d values", n, m)
	}
	models := make([]custody.Model, 0, len(keys.Results))
	for i, k := range keys.Results {
		models = append(models, custody.Pair(k, values.Results[i]))
	}
	return models, nil
}

// UnmarshalOneResult decodes the first entry of a serialized ResultSet
// into o. An empty set leaves o untouched.
func UnmarshalOneResult(raw []byte, o custody.Persistent) error {
	var set ResultSet
	if err := set.Unmarshal(raw); err != nil {
		return err
	}
	if len(set.Results) == 0 {
		return nil
	}
	return o.Unmarshal(set.Results[0])
}

// DeliverOrError builds the DeliverTx response, carrying the tags of a
// successful result or the code and log of err.
func DeliverOrError(res *custody.DeliverResult, err error, debug bool) abci.ResponseDeliverTx {
	if err != nil {
		return DeliverTxError(err, debug)
	}
	return abci.ResponseDeliverTx{Data: res.Data, Log: res.Log, Tags: res.Tags}
}

// CheckOrError builds the CheckTx response.
func CheckOrError(res *custody.CheckResult, err error, debug bool) abci.ResponseCheckTx {
	if err != nil {
		return CheckTxError(err, debug)
	}
	return abci.ResponseCheckTx{Data: res.Data, Log: res.Log, GasWanted: res.GasAllocated}
}

func DeliverTxError(err error, debug bool) abci.ResponseDeliverTx {
	code, log := txErrorInfo("deliver", err, debug)
	return abci.ResponseDeliverTx{Code: code, Log: log}
}

func CheckTxError(err error, debug bool) abci.ResponseCheckTx {
	code, log := txErrorInfo("check", err, debug)
	return abci.ResponseCheckTx{Code: code, Log: log}
}

func txErrorInfo(phase string, err error, debug bool) (uint32, string) {
	code, log := errors.ABCIInfo(err, debug)
	if code != errors.SuccessABCICode {
		log = fmt.Sprintf("cannot %s tx: %s", phase, log)
	}
	return code, log
}

func queryError(err error, debug bool) abci.ResponseQuery {
	code, log := errors.ABCIInfo(err, debug)
	return abci.ResponseQuery{Code: code, Log: log}
}
