package sol

import (
	"context"
	"math/big"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/meme-bots/go-custody/keys"
	"github.com/meme-bots/go-custody/signer"
	"github.com/meme-bots/go-custody/transport"
	"github.com/meme-bots/go-custody/types"
	"github.com/meme-bots/go-custody/utils"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// errCodeInvalidParams is what nodes answer for token accounts that do not
// exist yet.
const errCodeInvalidParams = -32602

type (
	Options struct {
		Logger   *zerolog.Logger
		KeyCache *utils.KeyCache
		// Clock defaults to time.Now.
		Clock func() time.Time
		// WatchBlockhash keeps a recent blockhash refreshed in the
		// background. Start must be called to begin watching.
		WatchBlockhash bool
	}

	Solana struct {
		cfg     *types.NetworkConfig
		client  *Client
		oracle  signer.Oracle
		key     signer.KeyHandle
		cache   *utils.KeyCache
		watcher *Watcher
		logger  zerolog.Logger
	}
)

func NewSolana(cfg *types.NetworkConfig, t transport.Transport, o signer.Oracle, key signer.KeyHandle, opts Options) (*Solana, error) {
	if cfg == nil || cfg.RPC == "" {
		return nil, types.Configuration("new solana", "rpc", "", types.ErrNetworkNotConfigured)
	}
	logger := log.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	logger = logger.With().Str("network", cfg.Name).Logger()

	client := NewClient(t, cfg.RPC)
	s := &Solana{
		cfg:    cfg.Clone(),
		client: client,
		oracle: o,
		key:    key,
		cache:  opts.KeyCache,
		logger: logger,
	}
	if opts.WatchBlockhash {
		s.watcher = NewWatcher(client, opts.Clock, logger)
	}
	return s, nil
}

func (s *Solana) Start() error {
	if s.watcher == nil {
		return nil
	}
	return s.watcher.Start()
}

func (s *Solana) Close() error {
	if s.watcher == nil {
		return nil
	}
	return s.watcher.Close()
}

func (s *Solana) GetType() int {
	return types.NetworkTypeSol
}

func (s *Solana) GetTypeSymbol() string {
	return "SOL"
}

func (s *Solana) GetName() string {
	return s.cfg.Name
}

func (s *Solana) GetNativeTokenSymbol() string {
	return s.cfg.NativeTokenSymbol
}

func (s *Solana) GetNativeTokenDecimals() uint8 {
	return s.cfg.NativeTokenDecimals
}

func (s *Solana) CheckAddress(text string) bool {
	_, err := keys.ParseSolanaAddress(text)
	return err == nil
}

func (s *Solana) signerKey(ctx context.Context) (solana.PublicKey, error) {
	pub, err := s.cache.GetOrLoad(ctx, "ed25519:"+string(s.key), func(ctx context.Context) ([]byte, error) {
		return signer.PublicKey(ctx, s.oracle, s.key)
	})
	if err != nil {
		return solana.PublicKey{}, err
	}
	return keys.SolanaPublicKey(pub)
}

func (s *Solana) Address(ctx context.Context) (string, error) {
	pub, err := s.signerKey(ctx)
	if err != nil {
		return "", err
	}
	return pub.String(), nil
}

func (s *Solana) keyOrSelf(ctx context.Context, text string) (solana.PublicKey, error) {
	if text == "" {
		return s.signerKey(ctx)
	}
	return keys.ParseSolanaAddress(text)
}

// AssociatedAccount returns the token account of owner for mint using the
// derivation this network is configured for.
func (s *Solana) AssociatedAccount(owner, mint solana.PublicKey) (solana.PublicKey, error) {
	if s.cfg.LegacyAssociatedAccounts {
		return LegacyAssociatedTokenAccount(owner, mint), nil
	}
	return AssociatedTokenAccount(owner, mint)
}

func (s *Solana) GetBalance(ctx context.Context, req *types.GetBalanceRequest) (*big.Int, error) {
	owner, err := s.keyOrSelf(ctx, req.Address)
	if err != nil {
		return nil, err
	}
	return s.client.Balance(ctx, owner)
}

// GetTokenBalance reads the owner's associated account for req.Token. An
// account that does not exist yet holds zero.
func (s *Solana) GetTokenBalance(ctx context.Context, req *types.GetTokenBalanceRequest) (*big.Int, error) {
	amount, _, err := s.GetTokenBalanceWithDecimals(ctx, req)
	return amount, err
}

// GetTokenBalanceWithDecimals is GetTokenBalance plus the mint decimals the
// node reports. A missing account reports zero decimals.
func (s *Solana) GetTokenBalanceWithDecimals(ctx context.Context, req *types.GetTokenBalanceRequest) (*big.Int, uint8, error) {
	mint, err := keys.ParseSolanaAddress(req.Token)
	if err != nil {
		return nil, 0, err
	}
	owner, err := s.keyOrSelf(ctx, req.Owner)
	if err != nil {
		return nil, 0, err
	}
	account, err := s.AssociatedAccount(owner, mint)
	if err != nil {
		return nil, 0, err
	}
	amount, decimals, err := s.client.TokenAccountBalance(ctx, account)
	if err != nil {
		var rpcErr *types.RPCError
		if errors.As(err, &rpcErr) && rpcErr.Code == errCodeInvalidParams {
			return big.NewInt(0), 0, nil
		}
		return nil, 0, err
	}
	return amount, decimals, nil
}

func parseAmount(op, value string) (uint64, error) {
	amount, err := utils.ParseDecimal(value)
	if err != nil {
		return 0, err
	}
	if amount.Sign() == 0 {
		return 0, types.Validation(op, "amount", value, types.ErrInvalidAmount)
	}
	if !amount.IsUint64() {
		return 0, types.Validation(op, "amount", value, types.ErrAmountTooLarge)
	}
	return amount.Uint64(), nil
}

// NativeInstruction validates a lamport transfer from payer.
func (s *Solana) NativeInstruction(payer solana.PublicKey, bill *types.TransferBill) (Instruction, error) {
	to, err := keys.ParseSolanaAddress(bill.Recipient)
	if err != nil {
		return Instruction{}, err
	}
	lamports, err := parseAmount("send native", bill.Amount)
	if err != nil {
		return Instruction{}, err
	}
	return NewTransferInstruction(lamports, payer, to)
}

// TokenInstruction validates a token transfer between the associated
// accounts of payer and the recipient.
func (s *Solana) TokenInstruction(payer solana.PublicKey, req *types.TokenTransferRequest) (Instruction, error) {
	mint, err := keys.ParseSolanaAddress(req.Token)
	if err != nil {
		return Instruction{}, err
	}
	to, err := keys.ParseSolanaAddress(req.Recipient)
	if err != nil {
		return Instruction{}, err
	}
	amount, err := parseAmount("send token", req.Amount)
	if err != nil {
		return Instruction{}, err
	}
	source, err := s.AssociatedAccount(payer, mint)
	if err != nil {
		return Instruction{}, err
	}
	destination, err := s.AssociatedAccount(to, mint)
	if err != nil {
		return Instruction{}, err
	}
	return NewTokenTransferInstruction(amount, source, destination, payer)
}

func (s *Solana) recentBlockhash(ctx context.Context) (solana.Hash, error) {
	if s.watcher != nil {
		if hash, ok := s.watcher.GetRecentBlockHash(); ok {
			return hash, nil
		}
		return s.watcher.Refresh(ctx)
	}
	return s.client.LatestBlockhash(ctx)
}

// Build compiles ix into a message paid for by payer against a fresh
// blockhash.
func (s *Solana) Build(ctx context.Context, payer solana.PublicKey, ix Instruction) (*Message, error) {
	hash, err := s.recentBlockhash(ctx)
	if err != nil {
		return nil, err
	}
	return Compile(payer, hash, ix)
}

// Finalize signs msg once and submits it once. A rejection is returned as
// is; there is no second candidate to try.
func (s *Solana) Finalize(ctx context.Context, msg *Message) (string, error) {
	content, err := msg.MarshalBinary()
	if err != nil {
		return "", err
	}
	raw, err := signer.Sign(ctx, s.oracle, s.key, content)
	if err != nil {
		return "", err
	}
	sig := solana.SignatureFromBytes(raw)
	txSig, err := s.client.SendTransaction(ctx, EncodeTransaction(content, sig))
	if err != nil {
		return "", err
	}
	s.logger.Info().Str("tx", txSig).Msg("transaction submitted")
	return txSig, nil
}

func (s *Solana) submit(ctx context.Context, build func(payer solana.PublicKey) (Instruction, error)) (*types.TransactResponse, error) {
	payer, err := s.signerKey(ctx)
	if err != nil {
		return nil, err
	}
	ix, err := build(payer)
	if err != nil {
		return nil, err
	}
	msg, err := s.Build(ctx, payer, ix)
	if err != nil {
		return nil, err
	}
	txSig, err := s.Finalize(ctx, msg)
	if err != nil {
		return nil, err
	}
	return &types.TransactResponse{TxHash: txSig}, nil
}

func (s *Solana) SendNative(ctx context.Context, bill *types.TransferBill) (*types.TransactResponse, error) {
	if _, err := keys.ParseSolanaAddress(bill.Recipient); err != nil {
		return nil, err
	}
	if _, err := parseAmount("send native", bill.Amount); err != nil {
		return nil, err
	}
	return s.submit(ctx, func(payer solana.PublicKey) (Instruction, error) {
		return s.NativeInstruction(payer, bill)
	})
}

func (s *Solana) SendToken(ctx context.Context, req *types.TokenTransferRequest) (*types.TransactResponse, error) {
	for _, addr := range []string{req.Token, req.Recipient} {
		if _, err := keys.ParseSolanaAddress(addr); err != nil {
			return nil, err
		}
	}
	if _, err := parseAmount("send token", req.Amount); err != nil {
		return nil, err
	}
	return s.submit(ctx, func(payer solana.PublicKey) (Instruction, error) {
		return s.TokenInstruction(payer, req)
	})
}
