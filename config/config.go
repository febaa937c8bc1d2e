// Package config loads wallet settings from a file and CUSTODY_* environment
// variables.
package config

import (
	"io"
	"strings"

	"github.com/meme-bots/go-custody/registry"
	"github.com/meme-bots/go-custody/types"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const EnvPrefix = "CUSTODY"

type (
	EVM struct {
		Strategy       string `mapstructure:"strategy"`
		PriorityFeeWei uint64 `mapstructure:"priority_fee_wei"`
		FeeMultiplier  uint64 `mapstructure:"fee_multiplier"`
		NativeGasLimit uint64 `mapstructure:"native_gas_limit"`
		TokenGasLimit  uint64 `mapstructure:"token_gas_limit"`
		SwapGasLimit   uint64 `mapstructure:"swap_gas_limit"`
	}

	Solana struct {
		WatchBlockhash bool `mapstructure:"watch_blockhash"`
	}

	// Keys configures the local development oracles. Production deployments
	// leave them empty and plug in a remote signer.
	Keys struct {
		Handle    string `mapstructure:"handle"`
		EVMKey    string `mapstructure:"evm_private_key"`
		SolanaKey string `mapstructure:"solana_private_key"`
	}

	Config struct {
		LogLevel  string `mapstructure:"log_level"`
		LogPretty bool   `mapstructure:"log_pretty"`

		Keys   Keys   `mapstructure:"keys"`
		EVM    EVM    `mapstructure:"evm"`
		Solana Solana `mapstructure:"solana"`

		MaxChains   int `mapstructure:"max_chains"`
		MaxNetworks int `mapstructure:"max_networks"`
		MaxHistory  int `mapstructure:"max_history"`

		Chains   []types.ChainConfig   `mapstructure:"chains"`
		Networks []types.NetworkConfig `mapstructure:"networks"`
	}
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", false)

	v.SetDefault("keys.handle", "default")
	v.SetDefault("keys.evm_private_key", "")
	v.SetDefault("keys.solana_private_key", "")

	v.SetDefault("evm.strategy", string(types.RecoveryLocal))
	v.SetDefault("evm.priority_fee_wei", types.EVMDefaultPriorityFee)
	v.SetDefault("evm.fee_multiplier", types.EVMDefaultFeeMultiple)
	v.SetDefault("evm.native_gas_limit", types.EVMNativeGasLimit)
	v.SetDefault("evm.token_gas_limit", types.EVMTokenGasLimit)
	v.SetDefault("evm.swap_gas_limit", types.EVMSwapGasLimit)

	v.SetDefault("solana.watch_blockhash", false)

	v.SetDefault("max_chains", types.DefaultMaxChains)
	v.SetDefault("max_networks", types.DefaultMaxNetworks)
	v.SetDefault("max_history", types.DefaultMaxHistory)
}

// Load reads path (TOML, YAML or JSON by extension) when it is not empty
// and applies CUSTODY_* overrides, e.g. CUSTODY_EVM_STRATEGY=probe.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, types.Configuration("load config", "path", path, errors.Wrap(err, "failed to read config file"))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, types.Configuration("load config", "path", path, errors.Wrap(err, "failed to decode config"))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch types.RecoveryStrategy(c.EVM.Strategy) {
	case types.RecoveryLocal, types.RecoveryProbe:
	default:
		return types.Configuration("validate config", "evm.strategy", c.EVM.Strategy, errors.New("unknown recovery strategy"))
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return types.Configuration("validate config", "log_level", c.LogLevel, err)
	}
	if len(c.Chains) > c.MaxChains {
		return types.Configuration("validate config", "chains", "", types.ErrCapacityExceeded)
	}
	if len(c.Networks) > c.MaxNetworks {
		return types.Configuration("validate config", "networks", "", types.ErrCapacityExceeded)
	}
	return nil
}

// Registry builds a registry holding every configured chain and network.
func (c *Config) Registry(opts ...registry.Option) (*registry.Registry, error) {
	opts = append([]registry.Option{
		registry.WithCapacity(c.MaxChains, c.MaxNetworks),
		registry.WithMaxHistory(c.MaxHistory),
	}, opts...)
	r := registry.New(opts...)
	for i := range c.Chains {
		if err := r.UpsertChain(&c.Chains[i]); err != nil {
			return nil, err
		}
	}
	for i := range c.Networks {
		if err := r.UpsertNetwork(&c.Networks[i]); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Logger builds the root logger for the configured level writing to w.
func (c *Config) Logger(w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	var logger zerolog.Logger
	if c.LogPretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: w})
	} else {
		logger = zerolog.New(w)
	}
	return logger.Level(level).With().Timestamp().Logger()
}
