package custody

import (
	"context"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/meme-bots/go-custody/registry"
	"github.com/meme-bots/go-custody/types"
	"github.com/meme-bots/go-custody/utils"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Target names the chain (by id) or Solana network (by name) an operation
// runs against.
type Target struct {
	Type    int
	ChainID uint64
	Network string
}

func EVMChain(chainID uint64) Target {
	return Target{Type: types.NetworkTypeEVM, ChainID: chainID}
}

func SolanaNetwork(name string) Target {
	return Target{Type: types.NetworkTypeSol, Network: name}
}

func (t Target) String() string {
	if t.Type == types.NetworkTypeEVM {
		return "evm:" + strconv.FormatUint(t.ChainID, 10)
	}
	return "sol:" + t.Network
}

type handle struct {
	cfg types.Config
	net types.NetworkInterface
}

// Wallet is the call-dispatch layer: it resolves targets through the
// registry, serializes operations per (target, key) so nonces are not
// raced, and records every successful submission.
type Wallet struct {
	registry *registry.Registry
	deps     Deps
	logger   zerolog.Logger
	now      func() time.Time

	locks utils.KeyedMutex

	mu      sync.Mutex
	handles map[Target]*handle
}

func NewWallet(reg *registry.Registry, deps Deps) *Wallet {
	logger := log.Logger
	if deps.Logger != nil {
		logger = *deps.Logger
	}
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	return &Wallet{
		registry: reg,
		deps:     deps,
		logger:   logger,
		now:      now,
		handles:  make(map[Target]*handle),
	}
}

func (w *Wallet) Registry() *registry.Registry {
	return w.registry
}

func (w *Wallet) config(t Target) (types.Config, error) {
	switch t.Type {
	case types.NetworkTypeEVM:
		chain, err := w.registry.Chain(t.ChainID)
		if err != nil {
			return types.Config{}, err
		}
		return types.Config{Type: t.Type, Chain: chain}, nil
	case types.NetworkTypeSol:
		network, err := w.registry.Network(t.Network)
		if err != nil {
			return types.Config{}, err
		}
		return types.Config{Type: t.Type, Network: network}, nil
	}
	return types.Config{}, types.Configuration("resolve target", "type", strconv.Itoa(t.Type), types.ErrNotImplemented)
}

func sameConfig(a, b types.Config) bool {
	if a.Type != b.Type {
		return false
	}
	if a.Chain != nil && b.Chain != nil {
		return *a.Chain == *b.Chain
	}
	if a.Network != nil && b.Network != nil {
		return *a.Network == *b.Network
	}
	return false
}

// Network returns the handle for t built from the registry's current
// config. Handles are reused until the config changes.
func (w *Wallet) Network(t Target) (types.NetworkInterface, error) {
	cfg, err := w.config(t)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if h, ok := w.handles[t]; ok {
		if sameConfig(h.cfg, cfg) {
			return h.net, nil
		}
		w.release(h)
	}

	net, err := NewNetwork(cfg, w.deps)
	if err != nil {
		return nil, err
	}
	if s, ok := net.(interface{ Start() error }); ok {
		if err := s.Start(); err != nil {
			return nil, err
		}
	}
	w.handles[t] = &handle{cfg: cfg, net: net}
	return net, nil
}

func (w *Wallet) release(h *handle) {
	if c, ok := h.net.(io.Closer); ok {
		if err := c.Close(); err != nil {
			w.logger.Warn().Err(err).Msg("close network handle")
		}
	}
}

// Close stops background work of every cached handle.
func (w *Wallet) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for t, h := range w.handles {
		w.release(h)
		delete(w.handles, t)
	}
	return nil
}

func (w *Wallet) lock(t Target) func() {
	return w.locks.Lock(t.String() + "/" + string(w.deps.Key))
}

func (w *Wallet) Address(ctx context.Context, t Target) (string, error) {
	net, err := w.Network(t)
	if err != nil {
		return "", err
	}
	return net.Address(ctx)
}

// Balance returns the native balance of address (the wallet's own when
// empty) in base and display units.
func (w *Wallet) Balance(ctx context.Context, t Target, address string) (*types.Balance, error) {
	net, err := w.Network(t)
	if err != nil {
		return nil, err
	}
	raw, err := net.GetBalance(ctx, &types.GetBalanceRequest{Address: address})
	if err != nil {
		return nil, err
	}
	return utils.NewBalance(raw, net.GetNativeTokenDecimals()), nil
}

// TokenBalance returns the token balance of owner. When decimals is zero
// the decimals reported by the node are used where the network has them;
// otherwise Display is in base units.
func (w *Wallet) TokenBalance(ctx context.Context, t Target, owner, token string, decimals uint8) (*types.Balance, error) {
	net, err := w.Network(t)
	if err != nil {
		return nil, err
	}
	req := &types.GetTokenBalanceRequest{Owner: owner, Token: token}
	if r, ok := net.(types.TokenBalanceReporter); ok && decimals == 0 {
		raw, reported, err := r.GetTokenBalanceWithDecimals(ctx, req)
		if err != nil {
			return nil, err
		}
		return utils.NewBalance(raw, reported), nil
	}
	raw, err := net.GetTokenBalance(ctx, req)
	if err != nil {
		return nil, err
	}
	return utils.NewBalance(raw, decimals), nil
}

func (w *Wallet) record(t Target, net types.NetworkInterface, resp *types.TransactResponse, to, amount, token string) types.TransactionRecord {
	rec := w.registry.Record(types.TransactionRecord{
		Network:   net.GetName(),
		ChainID:   t.ChainID,
		TxHash:    resp.TxHash,
		To:        to,
		Amount:    amount,
		Token:     token,
		Timestamp: w.now(),
		Status:    types.Submitted(resp.TxHash),
	})
	w.logger.Info().
		Str("network", rec.Network).
		Uint64("chain_id", rec.ChainID).
		Uint64("id", rec.ID).
		Str("tx", rec.TxHash).
		Msg("transaction recorded")
	return rec
}

// SendNative transfers native value and records the submission.
func (w *Wallet) SendNative(ctx context.Context, t Target, bill *types.TransferBill) (*types.TransactionRecord, error) {
	net, err := w.Network(t)
	if err != nil {
		return nil, err
	}
	unlock := w.lock(t)
	defer unlock()

	resp, err := net.SendNative(ctx, bill)
	if err != nil {
		return nil, err
	}
	rec := w.record(t, net, resp, bill.Recipient, bill.Amount, "")
	return &rec, nil
}

// SendToken transfers a fungible token and records the submission.
func (w *Wallet) SendToken(ctx context.Context, t Target, req *types.TokenTransferRequest) (*types.TransactionRecord, error) {
	net, err := w.Network(t)
	if err != nil {
		return nil, err
	}
	unlock := w.lock(t)
	defer unlock()

	resp, err := net.SendToken(ctx, req)
	if err != nil {
		return nil, err
	}
	rec := w.record(t, net, resp, req.Recipient, req.Amount, req.Token)
	return &rec, nil
}

func (w *Wallet) swapper(t Target) (types.Swapper, error) {
	net, err := w.Network(t)
	if err != nil {
		return nil, err
	}
	s, ok := net.(types.Swapper)
	if !ok {
		return nil, types.Configuration("swap", "network", t.String(), types.ErrNotImplemented)
	}
	return s, nil
}

func (w *Wallet) QuoteSwap(ctx context.Context, t Target, req *types.SwapRequest) (*types.QuoteResponse, error) {
	s, err := w.swapper(t)
	if err != nil {
		return nil, err
	}
	return s.QuoteSwap(ctx, req)
}

// ExecuteSwap submits a swap and records it with the input token and
// amount.
func (w *Wallet) ExecuteSwap(ctx context.Context, t Target, req *types.SwapRequest) (*types.TransactionRecord, error) {
	s, err := w.swapper(t)
	if err != nil {
		return nil, err
	}
	net := s.(types.NetworkInterface)
	recipient := req.Recipient
	if recipient == "" {
		// the output goes to the signer
		if recipient, err = net.Address(ctx); err != nil {
			return nil, err
		}
	}
	unlock := w.lock(t)
	defer unlock()

	resp, err := s.ExecuteSwap(ctx, req)
	if err != nil {
		return nil, err
	}
	rec := w.record(t, net, resp, recipient, req.AmountIn, req.TokenIn)
	return &rec, nil
}

// History lists recorded submissions newest first.
func (w *Wallet) History(limit int) []types.TransactionRecord {
	return w.registry.History(limit)
}
