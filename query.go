package custody

import (
	"fmt"
	"sort"
)

const (
	// KeyQueryMod means the query data is an exact key.
	KeyQueryMod = ""
	// PrefixQueryMod means the query data is a key prefix.
	PrefixQueryMod = "prefix"
)

// Model is a raw key and value as found in the store.
type Model struct {
	Key   []byte
	Value []byte
}

func Pair(key, value []byte) Model {
	return Model{Key: key, Value: value}
}

// QueryHandler serves the ABCI queries of one path. The query mod is
// KeyQueryMod or PrefixQueryMod, data is the key or prefix.
type QueryHandler interface {
	Query(db ReadOnlyKVStore, mod string, data []byte) ([]Model, error)
}

// QueryRegister is exposed by each extension to add its query paths.
type QueryRegister func(QueryRouter)

// QueryRouter maps query paths, such as "/vaults", to their handlers.
type QueryRouter struct {
	routes map[string]QueryHandler
}

func NewQueryRouter() QueryRouter {
	return QueryRouter{
		routes: make(map[string]QueryHandler, 16),
	}
}

func (r QueryRouter) RegisterAll(qr ...QueryRegister) {
	for _, q := range qr {
		q(r)
	}
}

// Register panics if the path is already taken.
func (r QueryRouter) Register(path string, h QueryHandler) {
	if _, ok := r.routes[path]; ok {
		panic(fmt.Sprintf("query path %s registered twice", path))
	}
	r.routes[path] = h
}

// Handler returns nil for an unknown path.
func (r QueryRouter) Handler(path string) QueryHandler {
	return r.routes[path]
}

// Paths returns all registered paths in lexical order.
func (r QueryRouter) Paths() []string {
	paths := make([]string, 0, len(r.routes))
	for p := range r.routes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
