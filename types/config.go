package types

type (
	// ChainConfig describes one account-style chain.
	ChainConfig struct {
		ChainID             uint64 `mapstructure:"chain_id" json:"chainId"`
		Name                string `mapstructure:"name" json:"name"`
		RPC                 string `mapstructure:"rpc" json:"rpc"`
		NativeTokenSymbol   string `mapstructure:"native_symbol" json:"nativeSymbol"`
		NativeTokenDecimals uint8  `mapstructure:"decimals" json:"decimals"`

		SwapRouter string `mapstructure:"swap_router" json:"swapRouter,omitempty"`
		SwapQuoter string `mapstructure:"swap_quoter" json:"swapQuoter,omitempty"`
	}

	// NetworkConfig describes one Solana-style cluster.
	NetworkConfig struct {
		Name                string `mapstructure:"name" json:"name"`
		RPC                 string `mapstructure:"rpc" json:"rpc"`
		NativeTokenSymbol   string `mapstructure:"native_symbol" json:"nativeSymbol"`
		NativeTokenDecimals uint8  `mapstructure:"decimals" json:"decimals"`

		// LegacyAssociatedAccounts selects the plain-hash associated account
		// derivation instead of the program-derived address search.
		LegacyAssociatedAccounts bool `mapstructure:"legacy_associated_accounts" json:"legacyAssociatedAccounts,omitempty"`
	}

	// Config is what NewNetwork needs to build a network handle.
	Config struct {
		Type    int
		Chain   *ChainConfig
		Network *NetworkConfig
	}
)

func (c *ChainConfig) Clone() *ChainConfig {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

func (c *NetworkConfig) Clone() *NetworkConfig {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

var knownChainNames = map[uint64]string{
	1:        "Ethereum Mainnet",
	8453:     "Base",
	137:      "Polygon",
	10:       "Optimism",
	42161:    "Arbitrum One",
	11155111: "Sepolia (Testnet)",
	84532:    "Base Sepolia (Testnet)",
}

// ChainName returns a human name for well-known chain ids.
func ChainName(chainID uint64) string {
	if name, ok := knownChainNames[chainID]; ok {
		return name
	}
	return "Unknown Chain"
}
