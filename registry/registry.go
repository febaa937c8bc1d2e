// Package registry holds the chain and network configuration a wallet
// dispatches to plus the history of submitted transactions.
package registry

import (
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/meme-bots/go-custody/types"
	"github.com/samber/lo"
)

type (
	Option func(*Registry)

	// Registry is an in-memory configuration store with capacity ceilings.
	// Readers get copies; nothing handed out aliases registry state.
	Registry struct {
		mu sync.RWMutex

		maxChains   int
		maxNetworks int
		maxHistory  int

		chains   map[uint64]*types.ChainConfig
		networks map[string]*types.NetworkConfig
		history  []*types.TransactionRecord
		nextID   uint64

		now    func() time.Time
		newUID func() string
	}
)

func WithCapacity(chains, networks int) Option {
	return func(r *Registry) {
		r.maxChains = chains
		r.maxNetworks = networks
	}
}

func WithMaxHistory(n int) Option {
	return func(r *Registry) { r.maxHistory = n }
}

func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

func WithUIDSource(f func() string) Option {
	return func(r *Registry) { r.newUID = f }
}

func New(opts ...Option) *Registry {
	r := &Registry{
		maxChains:   types.DefaultMaxChains,
		maxNetworks: types.DefaultMaxNetworks,
		maxHistory:  types.DefaultMaxHistory,
		chains:      make(map[uint64]*types.ChainConfig),
		networks:    make(map[string]*types.NetworkConfig),
		nextID:      1,
		now:         time.Now,
		newUID:      func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// UpsertChain replaces the chain with the same id or adds a new one.
func (r *Registry) UpsertChain(cfg *types.ChainConfig) error {
	if cfg == nil || cfg.RPC == "" {
		return types.Configuration("upsert chain", "rpc", "", types.ErrChainNotConfigured)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.chains[cfg.ChainID]; !ok && len(r.chains) >= r.maxChains {
		return types.Configuration("upsert chain", "chain_id", strconv.FormatUint(cfg.ChainID, 10), types.ErrCapacityExceeded)
	}
	c := cfg.Clone()
	if c.Name == "" {
		c.Name = types.ChainName(c.ChainID)
	}
	r.chains[c.ChainID] = c
	return nil
}

func (r *Registry) RemoveChain(chainID uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.chains[chainID]
	delete(r.chains, chainID)
	return ok
}

// Chain returns a snapshot of the chain config for chainID.
func (r *Registry) Chain(chainID uint64) (*types.ChainConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.chains[chainID]
	if !ok {
		return nil, types.Configuration("lookup chain", "chain_id", strconv.FormatUint(chainID, 10), types.ErrChainNotConfigured)
	}
	return c.Clone(), nil
}

// Chains lists all chains ordered by id.
func (r *Registry) Chains() []*types.ChainConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := lo.MapToSlice(r.chains, func(_ uint64, c *types.ChainConfig) *types.ChainConfig {
		return c.Clone()
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ChainID < out[j].ChainID })
	return out
}

// UpsertNetwork replaces the network with the same name or adds a new one.
func (r *Registry) UpsertNetwork(cfg *types.NetworkConfig) error {
	if cfg == nil || cfg.Name == "" || cfg.RPC == "" {
		return types.Configuration("upsert network", "rpc", "", types.ErrNetworkNotConfigured)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.networks[cfg.Name]; !ok && len(r.networks) >= r.maxNetworks {
		return types.Configuration("upsert network", "name", cfg.Name, types.ErrCapacityExceeded)
	}
	r.networks[cfg.Name] = cfg.Clone()
	return nil
}

func (r *Registry) RemoveNetwork(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.networks[name]
	delete(r.networks, name)
	return ok
}

func (r *Registry) Network(name string) (*types.NetworkConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.networks[name]
	if !ok {
		return nil, types.Configuration("lookup network", "name", name, types.ErrNetworkNotConfigured)
	}
	return n.Clone(), nil
}

// Networks lists all networks ordered by name.
func (r *Registry) Networks() []*types.NetworkConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := lo.MapToSlice(r.networks, func(_ string, n *types.NetworkConfig) *types.NetworkConfig {
		return n.Clone()
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Record appends rec to the history, assigning its id, uid and timestamp.
// The oldest records are dropped once the history exceeds its ceiling.
func (r *Registry) Record(rec types.TransactionRecord) types.TransactionRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec.ID = r.nextID
	r.nextID++
	if rec.UID == "" {
		rec.UID = r.newUID()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = r.now()
	}
	r.history = append(r.history, &rec)
	if over := len(r.history) - r.maxHistory; r.maxHistory > 0 && over > 0 {
		r.history = append(r.history[:0:0], r.history[over:]...)
	}
	return rec
}

// History returns up to limit records, newest first. A non-positive limit
// means the default page size.
func (r *Registry) History(limit int) []types.TransactionRecord {
	return r.HistoryFor("", limit)
}

// HistoryFor is History restricted to one network name ("" matches all).
func (r *Registry) HistoryFor(network string, limit int) []types.TransactionRecord {
	if limit <= 0 {
		limit = types.DefaultHistoryPage
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]types.TransactionRecord, 0, lo.Min([]int{limit, len(r.history)}))
	for i := len(r.history) - 1; i >= 0 && len(out) < limit; i-- {
		if network != "" && r.history[i].Network != network {
			continue
		}
		out = append(out, *r.history[i])
	}
	return out
}

// Lookup finds a record by its uid.
func (r *Registry) Lookup(uid string) (types.TransactionRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := lo.Find(r.history, func(rec *types.TransactionRecord) bool { return rec.UID == uid })
	if !ok {
		return types.TransactionRecord{}, false
	}
	return *rec, true
}

// SetStatus moves a record to a new status, e.g. once a watcher sees it
// confirmed.
func (r *Registry) SetStatus(uid string, status types.TransactionStatus) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := lo.Find(r.history, func(rec *types.TransactionRecord) bool { return rec.UID == uid })
	if ok {
		rec.Status = status
	}
	return ok
}
