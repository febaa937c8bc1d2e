package types

import (
	"context"
	"math/big"
)

type NetworkInterface interface {
	GetType() int
	GetTypeSymbol() string
	GetName() string
	GetNativeTokenSymbol() string
	GetNativeTokenDecimals() uint8
	CheckAddress(text string) bool
	Address(ctx context.Context) (string, error)
	GetBalance(ctx context.Context, req *GetBalanceRequest) (*big.Int, error)
	GetTokenBalance(ctx context.Context, req *GetTokenBalanceRequest) (*big.Int, error)
	SendNative(ctx context.Context, bill *TransferBill) (*TransactResponse, error)
	SendToken(ctx context.Context, req *TokenTransferRequest) (*TransactResponse, error)
}

// Swapper is implemented by networks that can quote and execute swaps.
type Swapper interface {
	QuoteSwap(ctx context.Context, req *SwapRequest) (*QuoteResponse, error)
	ExecuteSwap(ctx context.Context, req *SwapRequest) (*TransactResponse, error)
}

// TokenBalanceReporter is implemented by networks whose node reports the
// token's decimals together with the balance.
type TokenBalanceReporter interface {
	GetTokenBalanceWithDecimals(ctx context.Context, req *GetTokenBalanceRequest) (*big.Int, uint8, error)
}
