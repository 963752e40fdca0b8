package app

import (
	"encoding/json"
	"fmt"
	"strings"

	custody "github.com/chidioffor/crypto-hybrid-sub000"
	"github.com/chidioffor/crypto-hybrid-sub000/errors"
	"github.com/chidioffor/crypto-hybrid-sub000/orm"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

// StoreApp owns the committed ledger state and answers the ABCI calls that
// do not process transactions: handshake, queries, genesis, block
// boundaries and commit. BaseApp embeds it and adds CheckTx and DeliverTx.
//
// Failures of InitChain and Commit leave the node with an unknown state,
// so they panic instead of returning an error.
type StoreApp struct {
	name   string
	logger log.Logger
	debug  bool

	store       *CommitStore
	initializer custody.Initializer
	queryRouter custody.QueryRouter

	// chainID is written once at genesis and read back on restart.
	chainID string

	// baseContext lives as long as the app, blockContext is replaced on
	// every BeginBlock.
	baseContext  custody.Context
	blockContext custody.Context
}

// NewStoreApp loads the latest committed version of store. It panics if
// the store cannot be loaded.
func NewStoreApp(name string, store custody.CommitKVStore, queryRouter custody.QueryRouter, baseContext custody.Context) *StoreApp {
	s := &StoreApp{
		name:        name,
		store:       NewCommitStore(store),
		queryRouter: queryRouter,
		baseContext: baseContext,
	}
	s = s.WithLogger(log.NewNopLogger())

	if s.chainID = loadChainID(s.DeliverStore()); s.chainID != "" {
		s.baseContext = custody.WithChainID(s.baseContext, s.chainID)
	}
	s.blockContext = custody.WithHeight(s.baseContext, s.store.CommitInfo().Version)
	return s
}

// GetChainID returns the chain id stored at genesis, or an empty string
// before InitChain.
func (s *StoreApp) GetChainID() string {
	return s.chainID
}

// WithInit sets the genesis initializer.
func (s *StoreApp) WithInit(init custody.Initializer) *StoreApp {
	s.initializer = init
	return s
}

// WithDebug makes ABCI responses carry the full error, stack trace
// included.
func (s *StoreApp) WithDebug(debug bool) *StoreApp {
	s.debug = debug
	return s
}

// WithLogger sets the app logger, which handlers find in their context.
func (s *StoreApp) WithLogger(logger log.Logger) *StoreApp {
	s.logger = logger
	s.baseContext = custody.WithLogger(s.baseContext, logger)
	return s
}

func (s *StoreApp) Logger() log.Logger {
	return s.logger
}

// BlockContext holds height, block time and chain id of the current block.
func (s *StoreApp) BlockContext() custody.Context {
	return s.blockContext
}

func (s *StoreApp) DeliverStore() custody.CacheableKVStore {
	return s.store.DeliverStore()
}

func (s *StoreApp) CheckStore() custody.CacheableKVStore {
	return s.store.CheckStore()
}

// applyGenesis runs only once in the life of a chain.
func (s *StoreApp) applyGenesis(raw []byte, params custody.GenesisParams, init custody.Initializer) error {
	if s.chainID != "" {
		return errors.Wrapf(errors.ErrState, "genesis already loaded for chain %s", s.chainID)
	}
	if len(raw) == 0 {
		return errors.Wrap(errors.ErrEmpty, "app_state missing from genesis, run init first")
	}
	var opts custody.Options
	if err := json.Unmarshal(raw, &opts); err != nil {
		return errors.Wrapf(errors.ErrInput, "app_state: %s", err)
	}

	if err := saveChainID(s.DeliverStore(), params.ChainID); err != nil {
		return err
	}
	s.chainID = params.ChainID
	s.baseContext = custody.WithChainID(s.baseContext, params.ChainID)

	if init == nil {
		return nil
	}
	return init.FromGenesis(opts, params, s.DeliverStore())
}

// Info reports the last committed height and app hash so that tendermint
// can replay missing blocks.
func (s *StoreApp) Info(req abci.RequestInfo) abci.ResponseInfo {
	info := s.store.CommitInfo()
	s.logger.Info("handshake",
		"height", info.Version,
		"hash", fmt.Sprintf("%X", info.Hash))

	return abci.ResponseInfo{
		Data:             s.name,
		Version:          custody.Version(),
		LastBlockHeight:  info.Version,
		LastBlockAppHash: info.Hash,
	}
}

func (s *StoreApp) SetOption(res abci.RequestSetOption) abci.ResponseSetOption {
	return abci.ResponseSetOption{Log: "not supported"}
}

// Query reads the latest committed state. The path selects a bucket or an
// index ("/vaults", "/votes/voter") or the raw store ("/"). Data is an
// exact key unless the path ends in "?prefix".
//
// Key and Value of the response are both ResultSets of equal length, so
// zero, one and many results look the same to the client.
func (s *StoreApp) Query(req abci.RequestQuery) abci.ResponseQuery {
	path, mod := splitPath(req.Path)
	var qh custody.QueryHandler = rawQuery{}
	if path != "/" {
		if qh = s.queryRouter.Handler(path); qh == nil {
			return queryError(errors.Wrapf(errors.ErrNotFound, "no query handler for %q", req.Path), s.debug)
		}
	}

	info := s.store.CommitInfo()
	if req.Height != 0 && req.Height != info.Version {
		return queryError(errors.Wrapf(errors.ErrInput, "only the latest height %d can be queried", info.Version), s.debug)
	}
	db := s.store.committed.CacheWrap()
	defer db.Discard()

	models, err := qh.Query(db, mod, req.Data)
	if err != nil {
		return queryError(err, s.debug)
	}
	keys, err := ResultsFromKeys(models).Marshal()
	if err != nil {
		return queryError(err, s.debug)
	}
	values, err := ResultsFromValues(models).Marshal()
	if err != nil {
		return queryError(err, s.debug)
	}
	return abci.ResponseQuery{Height: info.Version, Key: keys, Value: values}
}

func splitPath(path string) (string, string) {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i], path[i+1:]
	}
	return path, ""
}

// rawQuery serves "/" with store keys as they are.
type rawQuery struct{}

func (rawQuery) Query(db custody.ReadOnlyKVStore, mod string, data []byte) ([]custody.Model, error) {
	switch mod {
	case custody.KeyQueryMod:
		if len(data) == 0 {
			return nil, errors.Wrap(errors.ErrEmpty, "key")
		}
		if value := db.Get(data); value != nil {
			return []custody.Model{custody.Pair(data, value)}, nil
		}
		return nil, nil
	case custody.PrefixQueryMod:
		var res []custody.Model
		itr := db.Iterator(orm.PrefixRange(data))
		defer itr.Close()
		for ; itr.Valid(); itr.Next() {
			res = append(res, custody.Pair(itr.Key(), itr.Value()))
		}
		return res, nil
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unsupported query mod %q", mod)
	}
}

// Commit persists the block and returns the new app hash.
func (s *StoreApp) Commit() abci.ResponseCommit {
	id, err := s.store.Commit()
	if err != nil {
		panic(err)
	}
	s.logger.Debug("committed",
		"height", id.Version,
		"hash", fmt.Sprintf("%X", id.Hash))
	return abci.ResponseCommit{Data: id.Hash}
}

// InitChain loads app_state. The genesis time is the time of every
// checkpoint written during initialization.
func (s *StoreApp) InitChain(req abci.RequestInitChain) abci.ResponseInitChain {
	params := custody.GenesisParams{ChainID: req.ChainId, Time: req.Time}
	if err := s.applyGenesis(req.AppStateBytes, params, s.initializer); err != nil {
		panic(err)
	}
	return abci.ResponseInitChain{}
}

// BeginBlock sets the height and time all transactions of the block see.
func (s *StoreApp) BeginBlock(req abci.RequestBeginBlock) abci.ResponseBeginBlock {
	ctx := custody.WithHeight(s.baseContext, req.Header.GetHeight())
	s.blockContext = custody.WithBlockTime(ctx, req.Header.GetTime())
	return abci.ResponseBeginBlock{}
}

// EndBlock makes no validator updates. The validator set is managed by
// tendermint.
func (s *StoreApp) EndBlock(_ abci.RequestEndBlock) abci.ResponseEndBlock {
	return abci.ResponseEndBlock{}
}
