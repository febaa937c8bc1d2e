package evm

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	gmath "github.com/ethereum/go-ethereum/common/math"
	"github.com/meme-bots/go-custody/keys"
	"github.com/meme-bots/go-custody/signer"
	"github.com/meme-bots/go-custody/transport"
	"github.com/meme-bots/go-custody/types"
	"github.com/meme-bots/go-custody/utils"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type (
	Options struct {
		Strategy       types.RecoveryStrategy
		PriorityFeeWei uint64
		FeeMultiplier  uint64
		NativeGasLimit uint64
		TokenGasLimit  uint64
		SwapGasLimit   uint64
		Logger         *zerolog.Logger
		KeyCache       *utils.KeyCache
	}

	EVM struct {
		cfg       *types.ChainConfig
		opts      Options
		client    *Client
		oracle    signer.Oracle
		key       signer.KeyHandle
		finalizer *Finalizer
		logger    zerolog.Logger
	}
)

func DefaultOptions() Options {
	return Options{
		Strategy:       types.RecoveryLocal,
		PriorityFeeWei: types.EVMDefaultPriorityFee,
		FeeMultiplier:  types.EVMDefaultFeeMultiple,
		NativeGasLimit: types.EVMNativeGasLimit,
		TokenGasLimit:  types.EVMTokenGasLimit,
		SwapGasLimit:   types.EVMSwapGasLimit,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Strategy == "" {
		o.Strategy = d.Strategy
	}
	if o.PriorityFeeWei == 0 {
		o.PriorityFeeWei = d.PriorityFeeWei
	}
	if o.FeeMultiplier == 0 {
		o.FeeMultiplier = d.FeeMultiplier
	}
	if o.NativeGasLimit == 0 {
		o.NativeGasLimit = d.NativeGasLimit
	}
	if o.TokenGasLimit == 0 {
		o.TokenGasLimit = d.TokenGasLimit
	}
	if o.SwapGasLimit == 0 {
		o.SwapGasLimit = d.SwapGasLimit
	}
	return o
}

// NewEVM binds a chain config to a transport and a signing key. cfg is
// copied so later registry edits do not affect in-flight operations.
func NewEVM(cfg *types.ChainConfig, t transport.Transport, o signer.Oracle, key signer.KeyHandle, opts Options) (*EVM, error) {
	if cfg == nil || cfg.RPC == "" {
		return nil, types.Configuration("new evm", "rpc", "", types.ErrChainNotConfigured)
	}
	opts = opts.withDefaults()
	logger := log.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	logger = logger.With().Str("network", cfg.Name).Uint64("chain_id", cfg.ChainID).Logger()

	client := NewClient(t, cfg.RPC)
	return &EVM{
		cfg:       cfg.Clone(),
		opts:      opts,
		client:    client,
		oracle:    o,
		key:       key,
		finalizer: NewFinalizer(o, key, client, opts.Strategy, logger),
		logger:    logger,
	}, nil
}

func (v *EVM) GetType() int {
	return types.NetworkTypeEVM
}

func (v *EVM) GetTypeSymbol() string {
	return "EVM"
}

func (v *EVM) GetName() string {
	return v.cfg.Name
}

func (v *EVM) GetChainID() uint64 {
	return v.cfg.ChainID
}

func (v *EVM) GetNativeTokenSymbol() string {
	return v.cfg.NativeTokenSymbol
}

func (v *EVM) GetNativeTokenDecimals() uint8 {
	return v.cfg.NativeTokenDecimals
}

func (v *EVM) CheckAddress(text string) bool {
	_, err := keys.ParseEVMAddress(text)
	return err == nil && len(text) == 42
}

func (v *EVM) signerAddress(ctx context.Context) (common.Address, error) {
	pub, err := v.opts.KeyCache.GetOrLoad(ctx, "secp256k1:"+string(v.key), func(ctx context.Context) ([]byte, error) {
		return signer.PublicKey(ctx, v.oracle, v.key)
	})
	if err != nil {
		return common.Address{}, err
	}
	return keys.EVMAddressBytes(pub)
}

// Address is the account-chain address of the configured key.
func (v *EVM) Address(ctx context.Context) (string, error) {
	addr, err := v.signerAddress(ctx)
	if err != nil {
		return "", err
	}
	return keys.FormatEVMAddress(addr), nil
}

// GetBalance returns the wei balance of req.Address, or of the signer when
// the address is empty.
func (v *EVM) GetBalance(ctx context.Context, req *types.GetBalanceRequest) (*big.Int, error) {
	addr, err := v.addressOrSelf(ctx, req.Address)
	if err != nil {
		return nil, err
	}
	return v.client.Balance(ctx, addr)
}

// GetTokenBalance calls balanceOf(owner) on req.Token.
func (v *EVM) GetTokenBalance(ctx context.Context, req *types.GetTokenBalanceRequest) (*big.Int, error) {
	token, err := keys.ParseEVMAddress(req.Token)
	if err != nil {
		return nil, err
	}
	owner, err := v.addressOrSelf(ctx, req.Owner)
	if err != nil {
		return nil, err
	}
	data, err := EncodeBalanceOf(keys.FormatEVMAddress(owner))
	if err != nil {
		return nil, err
	}
	out, err := v.client.Call(ctx, token, data)
	if err != nil {
		return nil, err
	}
	return FirstWord(out)
}

func (v *EVM) addressOrSelf(ctx context.Context, text string) (common.Address, error) {
	if text == "" {
		return v.signerAddress(ctx)
	}
	return keys.ParseEVMAddress(text)
}

// fees derives (priority, max) from eth_gasPrice: max = price*multiplier and
// the tip is capped at max so low-fee chains stay valid.
func (v *EVM) fees(ctx context.Context) (uint64, uint64, error) {
	price, err := v.client.GasPrice(ctx)
	if err != nil {
		return 0, 0, err
	}
	maxFee, overflow := gmath.SafeMul(price, v.opts.FeeMultiplier)
	if overflow {
		return 0, 0, types.Transport("eth_gasPrice", v.client.Endpoint(), hexutil.ErrUint64Range)
	}
	priority := v.opts.PriorityFeeWei
	if priority > maxFee {
		priority = maxFee
	}
	return priority, maxFee, nil
}
