package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	configFlag  = "config"
	chainFlag   = "chain"
	networkFlag = "network"
	dumpFlag    = "dump"
)

var rootCmd = &cobra.Command{
	Use:   "custody",
	Short: "Custodial transfers and swaps on EVM chains and Solana clusters",
	Long: `custody signs and submits native transfers, token transfers and swaps
from a single key context.

Settings come from --config (TOML, YAML or JSON) and CUSTODY_* environment
variables. Select the target with --chain <id> or --network <name>.`,
	SilenceUsage: true,
}

func Execute() {
	rootCmd.PersistentFlags().String(configFlag, "", "config file")
	rootCmd.PersistentFlags().Uint64(chainFlag, 0, "EVM chain id")
	rootCmd.PersistentFlags().String(networkFlag, "", "Solana network name")
	rootCmd.MarkFlagsMutuallyExclusive(chainFlag, networkFlag)

	rootCmd.AddCommand(
		newTargets(),
		newAddress(),
		newBalance(),
		newTokenBalance(),
		newSendNative(),
		newSendToken(),
		newQuote(),
		newSwap(),
	)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Failed to execute command")
		os.Exit(1)
	}
}
