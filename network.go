// Package custody assembles, signs and submits transactions on account
// chains and Solana clusters from one custodial key context.
package custody

import (
	"time"

	"github.com/meme-bots/go-custody/evm"
	"github.com/meme-bots/go-custody/signer"
	"github.com/meme-bots/go-custody/sol"
	"github.com/meme-bots/go-custody/transport"
	"github.com/meme-bots/go-custody/types"
	"github.com/meme-bots/go-custody/utils"
	"github.com/rs/zerolog"
)

// Deps are the collaborators every network handle is built from.
type Deps struct {
	Transport transport.Transport
	// EVMOracle signs secp256k1 digests, SolanaOracle ed25519 messages.
	// A single oracle may serve both.
	EVMOracle    signer.Oracle
	SolanaOracle signer.Oracle
	Key          signer.KeyHandle

	Logger   *zerolog.Logger
	KeyCache *utils.KeyCache
	Clock    func() time.Time

	EVM            evm.Options
	WatchBlockhash bool
}

// NewNetwork builds the handle for cfg.
func NewNetwork(cfg types.Config, deps Deps) (types.NetworkInterface, error) {
	switch cfg.Type {
	case types.NetworkTypeSol:
		s, err := sol.NewSolana(cfg.Network, deps.Transport, deps.SolanaOracle, deps.Key, sol.Options{
			Logger:         deps.Logger,
			KeyCache:       deps.KeyCache,
			Clock:          deps.Clock,
			WatchBlockhash: deps.WatchBlockhash,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	case types.NetworkTypeEVM:
		opts := deps.EVM
		if opts.Logger == nil {
			opts.Logger = deps.Logger
		}
		if opts.KeyCache == nil {
			opts.KeyCache = deps.KeyCache
		}
		v, err := evm.NewEVM(cfg.Chain, deps.Transport, deps.EVMOracle, deps.Key, opts)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
	return nil, types.Configuration("new network", "type", "", types.ErrNotImplemented)
}
