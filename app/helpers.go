package app

import (
	"bytes"

	custody "github.com/chidioffor/crypto-hybrid-sub000"
	"github.com/chidioffor/crypto-hybrid-sub000/errors"
	"github.com/chidioffor/crypto-hybrid-sub000/orm"
	"github.com/chidioffor/crypto-hybrid-sub000/store"
	abci "github.com/tendermint/tendermint/abci/types"
)

// ABCIStore reads committed state through ABCI queries. Wrapped in a
// bucket it decodes models exactly as a client would.
type ABCIStore struct {
	app abci.Application
}

var _ custody.ReadOnlyKVStore = (*ABCIStore)(nil)

func NewABCIStore(app abci.Application) *ABCIStore {
	return &ABCIStore{app: app}
}

// Get panics when the query fails, since the store interface has no
// error return.
func (a *ABCIStore) Get(key []byte) []byte {
	res := a.app.Query(abci.RequestQuery{Path: "/", Data: key})
	if res.Code != errors.SuccessABCICode {
		panic(res.Log)
	}
	var values ResultSet
	if err := values.Unmarshal(res.Value); err != nil {
		panic(errors.Wrap(err, "unmarshal result set"))
	}
	if len(values.Results) == 0 {
		return nil
	}
	return values.Results[0]
}

func (a *ABCIStore) Has(key []byte) bool {
	return len(a.Get(key)) > 0
}

// Iterator does a range iteration over the store. Only prefix ranges, as
// produced by orm.PrefixRange, can be served by a query.
func (a *ABCIStore) Iterator(start, end []byte) custody.Iterator {
	return store.NewSliceIterator(a.prefix(start, end))
}

// ReverseIterator is Iterator played backwards.
func (a *ABCIStore) ReverseIterator(start, end []byte) custody.Iterator {
	return store.NewReverseSliceIterator(a.prefix(start, end))
}

func (a *ABCIStore) prefix(start, end []byte) []custody.Model {
	if _, e := orm.PrefixRange(start); !bytes.Equal(e, end) {
		panic("only prefix ranges are supported")
	}
	res := a.app.Query(abci.RequestQuery{Path: "/?" + custody.PrefixQueryMod, Data: start})
	if res.Code != errors.SuccessABCICode {
		panic(res.Log)
	}
	models, err := toModels(res.Key, res.Value)
	if err != nil {
		panic(err)
	}
	return models
}

func toModels(keys, values []byte) ([]custody.Model, error) {
	var k, v ResultSet
	if err := k.Unmarshal(keys); err != nil {
		return nil, errors.Wrap(err, "keys")
	}
	if err := v.Unmarshal(values); err != nil {
		return nil, errors.Wrap(err, "values")
	}
	return JoinResults(&k, &v)
}
