package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/meme-bots/go-custody/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTOML = `
log_level = "debug"

[keys]
handle = "hot"

[evm]
strategy = "probe"
priority_fee_wei = 2000000000

[[chains]]
chain_id = 8453
rpc = "https://mainnet.base.org"
native_symbol = "ETH"
decimals = 18
swap_router = "0x2626664c2603336e57b271c5c0b26f421741e481"

[[networks]]
name = "mainnet-beta"
rpc = "https://api.mainnet-beta.solana.com"
native_symbol = "SOL"
decimals = 9
`

func writeConfig(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, string(types.RecoveryLocal), cfg.EVM.Strategy)
	assert.Equal(t, types.EVMDefaultPriorityFee, cfg.EVM.PriorityFeeWei)
	assert.Equal(t, types.EVMDefaultFeeMultiple, cfg.EVM.FeeMultiplier)
	assert.Equal(t, uint64(21000), cfg.EVM.NativeGasLimit)
	assert.Equal(t, uint64(100000), cfg.EVM.TokenGasLimit)
	assert.Equal(t, uint64(300000), cfg.EVM.SwapGasLimit)
	assert.Equal(t, 32, cfg.MaxChains)
	assert.Equal(t, 16, cfg.MaxNetworks)
	assert.Equal(t, 500, cfg.MaxHistory)
	assert.Empty(t, cfg.Chains)
}

func TestLoadFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, "custody.toml", sampleTOML))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "hot", cfg.Keys.Handle)
	assert.Equal(t, "probe", cfg.EVM.Strategy)
	assert.Equal(t, uint64(2000000000), cfg.EVM.PriorityFeeWei)
	assert.Equal(t, uint64(21000), cfg.EVM.NativeGasLimit)
	require.Len(t, cfg.Chains, 1)
	assert.Equal(t, uint64(8453), cfg.Chains[0].ChainID)
	assert.Equal(t, uint8(18), cfg.Chains[0].NativeTokenDecimals)
	require.Len(t, cfg.Networks, 1)
	assert.Equal(t, "SOL", cfg.Networks[0].NativeTokenSymbol)

	r, err := cfg.Registry()
	require.NoError(t, err)
	c, err := r.Chain(8453)
	require.NoError(t, err)
	assert.Equal(t, "Base", c.Name)
	_, err = r.Network("mainnet-beta")
	require.NoError(t, err)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("CUSTODY_EVM_STRATEGY", "probe")
	t.Setenv("CUSTODY_MAX_HISTORY", "10")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "probe", cfg.EVM.Strategy)
	assert.Equal(t, 10, cfg.MaxHistory)
}

func TestLoadInvalid(t *testing.T) {
	t.Setenv("CUSTODY_EVM_STRATEGY", "guess")
	_, err := Load("")
	assert.True(t, errors.Is(err, types.ErrConfiguration))

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, types.KindConfiguration, types.KindOf(err))
}

func TestLoadCapacity(t *testing.T) {
	path := writeConfig(t, "custody.yaml", `
max_networks: 1
networks:
  - name: devnet
    rpc: https://api.devnet.solana.com
  - name: testnet
    rpc: https://api.testnet.solana.com
`)
	_, err := Load(path)
	assert.True(t, errors.Is(err, types.ErrCapacityExceeded))
}

func TestLogger(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	var buf bytes.Buffer
	logger := cfg.Logger(&buf)
	logger.Debug().Msg("hidden")
	logger.Info().Str("network", "Base").Msg("visible")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"network":"Base"`)
}
