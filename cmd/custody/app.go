package main

import (
	"encoding/json"
	"io"
	"os"

	custody "github.com/meme-bots/go-custody"
	"github.com/meme-bots/go-custody/config"
	"github.com/meme-bots/go-custody/evm"
	"github.com/meme-bots/go-custody/signer"
	"github.com/meme-bots/go-custody/transport"
	"github.com/meme-bots/go-custody/types"
	"github.com/meme-bots/go-custody/utils"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type app struct {
	cfg    *config.Config
	logger zerolog.Logger
	wallet *custody.Wallet
	target custody.Target
	out    io.Writer
}

// newApp wires config, logging, the local signing oracles and the wallet
// for one command invocation. needTarget requires --chain or --network.
func newApp(cmd *cobra.Command, needTarget bool) (*app, error) {
	path, _ := cmd.Flags().GetString(configFlag)
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger(os.Stderr)

	reg, err := cfg.Registry()
	if err != nil {
		return nil, err
	}

	handle := signer.KeyHandle(cfg.Keys.Handle)
	evmOracle := signer.NewSecp256k1Oracle()
	if cfg.Keys.EVMKey != "" {
		if err := evmOracle.AddHex(handle, cfg.Keys.EVMKey); err != nil {
			return nil, types.Configuration("load keys", "keys.evm_private_key", "", err)
		}
	}
	solOracle := signer.NewEd25519Oracle()
	if cfg.Keys.SolanaKey != "" {
		if err := solOracle.AddBase58(handle, cfg.Keys.SolanaKey); err != nil {
			return nil, types.Configuration("load keys", "keys.solana_private_key", "", err)
		}
	}

	keyCache, err := utils.NewKeyCache()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create key cache")
	}

	w := custody.NewWallet(reg, custody.Deps{
		Transport:    transport.NewHTTPWithLogger(logger),
		EVMOracle:    evmOracle,
		SolanaOracle: solOracle,
		Key:          handle,
		Logger:       &logger,
		KeyCache:     keyCache,
		EVM: evm.Options{
			Strategy:       types.RecoveryStrategy(cfg.EVM.Strategy),
			PriorityFeeWei: cfg.EVM.PriorityFeeWei,
			FeeMultiplier:  cfg.EVM.FeeMultiplier,
			NativeGasLimit: cfg.EVM.NativeGasLimit,
			TokenGasLimit:  cfg.EVM.TokenGasLimit,
			SwapGasLimit:   cfg.EVM.SwapGasLimit,
		},
		WatchBlockhash: cfg.Solana.WatchBlockhash,
	})

	a := &app{cfg: cfg, logger: logger, wallet: w, out: cmd.OutOrStdout()}
	if needTarget {
		if a.target, err = targetFromFlags(cmd); err != nil {
			_ = w.Close()
			return nil, err
		}
	}
	return a, nil
}

func targetFromFlags(cmd *cobra.Command) (custody.Target, error) {
	chainID, _ := cmd.Flags().GetUint64(chainFlag)
	network, _ := cmd.Flags().GetString(networkFlag)
	switch {
	case chainID != 0:
		return custody.EVMChain(chainID), nil
	case network != "":
		return custody.SolanaNetwork(network), nil
	}
	return custody.Target{}, types.Validation("select target", chainFlag, "", errors.New("--chain or --network is required"))
}

func (a *app) Close() {
	if err := a.wallet.Close(); err != nil {
		a.logger.Warn().Err(err).Msg("close wallet")
	}
}

func (a *app) print(v interface{}) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
