package types

const (
	NetworkTypeSol int = iota
	NetworkTypeEVM
)

const (
	EVMNativeGasLimit uint64 = 21000
	EVMTokenGasLimit  uint64 = 100000
	EVMSwapGasLimit   uint64 = 300000

	// 1.5 gwei
	EVMDefaultPriorityFee uint64 = 1_500_000_000
	EVMDefaultFeeMultiple uint64 = 2

	DefaultMaxChains   = 32
	DefaultMaxNetworks = 16
	DefaultMaxHistory  = 500
	DefaultHistoryPage = 50
)

// RecoveryStrategy selects how the account-chain finalizer resolves the
// recovery identifier of an oracle signature.
type RecoveryStrategy string

const (
	RecoveryLocal RecoveryStrategy = "local"
	RecoveryProbe RecoveryStrategy = "probe"
)
