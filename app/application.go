package app

import (
	"context"

	custody "github.com/chidioffor/crypto-hybrid-sub000"
	"github.com/chidioffor/crypto-hybrid-sub000/store/iavl"
	"github.com/chidioffor/crypto-hybrid-sub000/x"
	"github.com/chidioffor/crypto-hybrid-sub000/x/cash"
	"github.com/chidioffor/crypto-hybrid-sub000/x/escrow"
	"github.com/chidioffor/crypto-hybrid-sub000/x/gov"
	"github.com/chidioffor/crypto-hybrid-sub000/x/sigs"
	"github.com/chidioffor/crypto-hybrid-sub000/x/utils"
	"github.com/chidioffor/crypto-hybrid-sub000/x/vault"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tendermint/tendermint/libs/log"
)

// Name is returned by abci.Info.
const Name = "custodyd"

// Authenticator returns the authentication scheme of the application:
// transaction signatures, or the entity a message is invoked on behalf of.
func Authenticator() x.Authenticator {
	return x.ChainAuth(sigs.Authenticate{})
}

// Routes registers the handlers of all extensions. The router doubles as
// the invoker of vault actions and governance proposals.
func Routes(auth x.Authenticator) *Router {
	r := NewRouter()
	control := cash.NewController(cash.NewBucket())
	cash.RegisterRoutes(r, auth, control)
	vault.RegisterRoutes(r, auth, control, r)
	escrow.RegisterRoutes(r, auth, control)
	gov.RegisterRoutes(r, auth, control, r)
	return r
}

// QueryRouter returns a router serving the buckets of all extensions.
func QueryRouter() custody.QueryRouter {
	r := custody.NewQueryRouter()
	r.RegisterAll(
		cash.RegisterQuery,
		sigs.RegisterQuery,
		vault.RegisterQuery,
		escrow.RegisterQuery,
		gov.RegisterQuery,
	)
	return r
}

// Initializers returns the genesis initializers of all extensions. Cash
// runs first so the balances exist before anything refers to them.
func Initializers() custody.Initializer {
	return custody.ChainInitializers(
		cash.Initializer{},
		vault.Initializer{},
		escrow.Initializer{},
		gov.Initializer{},
	)
}

// Chain returns the decorators every transaction passes before reaching
// the router. Metrics are collected only when a registerer is given.
//
// The savepoint makes each delivered transaction atomic: any error leaves
// the state as it was before the transaction.
func Chain(reg prometheus.Registerer) Decorators {
	var metrics *utils.Metrics
	if reg != nil {
		metrics = utils.NewMetrics(reg)
	}
	return ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		metrics,
		sigs.NewDecorator(),
		utils.NewActionTagger(),
		utils.NewSavepoint().OnCheck().OnDeliver(),
	)
}

// Options configure the application.
type Options struct {
	// DBPath is the directory of the committed state. Empty keeps the
	// state in memory.
	DBPath string
	Logger log.Logger
	Debug  bool
	// Metrics, if set, receives the transaction collectors.
	Metrics prometheus.Registerer
}

// NewApplication assembles the full ABCI application.
func NewApplication(opts Options) (BaseApp, error) {
	kv, err := iavl.NewCommitStore(opts.DBPath, "custody")
	if err != nil {
		return BaseApp{}, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}

	router := Routes(Authenticator())
	handler := Chain(opts.Metrics).WithHandler(router)
	store := NewStoreApp(Name, kv, QueryRouter(), context.Background()).
		WithInit(Initializers()).
		WithLogger(logger).
		WithDebug(opts.Debug)
	return NewBaseApp(store, NewTxDecoder(router), handler), nil
}
