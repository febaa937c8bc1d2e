package evm

import (
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/meme-bots/go-custody/keys"
	"github.com/meme-bots/go-custody/types"
	"github.com/meme-bots/go-custody/utils"
)

var (
	// transfer(address,uint256)
	SelectorTransfer = Selector{0xa9, 0x05, 0x9c, 0xbb}
	// balanceOf(address)
	SelectorBalanceOf = Selector{0x70, 0xa0, 0x82, 0x31}
	// quoteExactInputSingle((address,address,uint256,uint24,uint160))
	SelectorQuoteExactInputSingle = Selector{0xc6, 0xa5, 0x02, 0x6a}
	// exactInputSingle((address,address,uint24,address,uint256,uint256,uint160))
	SelectorExactInputSingle = Selector{0x04, 0xe4, 0x5a, 0xaf}
)

// Common pool fee tiers in hundredths of a basis point.
const (
	FeeTierLowest uint32 = 100
	FeeTierLow    uint32 = 500
	FeeTierMedium uint32 = 3000
	FeeTierHigh   uint32 = 10000

	maxFeeTier uint32 = 1<<24 - 1
)

// EncodeTransfer builds transfer(to, amount) call-data.
func EncodeTransfer(to, amount string) ([]byte, error) {
	toAddr, err := keys.ParseEVMAddress(to)
	if err != nil {
		return nil, err
	}
	word, err := utils.DecimalToFixed32(amount)
	if err != nil {
		return nil, err
	}
	return encodeCall(SelectorTransfer, addressWord(toAddr), word[:]), nil
}

// EncodeBalanceOf builds balanceOf(owner) call-data.
func EncodeBalanceOf(owner string) ([]byte, error) {
	ownerAddr, err := keys.ParseEVMAddress(owner)
	if err != nil {
		return nil, err
	}
	return encodeCall(SelectorBalanceOf, addressWord(ownerAddr)), nil
}

// SwapParams is the exact-input single-pool swap tuple. SqrtPriceLimitX96
// is left nil (no limit) by every caller in this module.
type SwapParams struct {
	TokenIn           common.Address
	TokenOut          common.Address
	Fee               uint32
	Recipient         common.Address
	AmountIn          *big.Int
	AmountOutMinimum  *big.Int
	SqrtPriceLimitX96 *big.Int
}

// NewSwapParams validates the textual swap inputs. minOut may be empty.
func NewSwapParams(tokenIn, tokenOut string, fee uint32, recipient, amountIn, minOut string) (*SwapParams, error) {
	in, err := keys.ParseEVMAddress(tokenIn)
	if err != nil {
		return nil, err
	}
	out, err := keys.ParseEVMAddress(tokenOut)
	if err != nil {
		return nil, err
	}
	var to common.Address
	if recipient != "" {
		if to, err = keys.ParseEVMAddress(recipient); err != nil {
			return nil, err
		}
	}
	if fee == 0 || fee > maxFeeTier {
		return nil, types.Validation("swap params", "fee", strconv.FormatUint(uint64(fee), 10), types.ErrInvalidAmount)
	}
	amount, err := utils.ParseDecimal(amountIn)
	if err != nil {
		return nil, err
	}
	if amount.Sign() == 0 {
		return nil, types.Validation("swap params", "amount_in", amountIn, types.ErrInvalidAmount)
	}
	min := new(big.Int)
	if minOut != "" {
		if min, err = utils.ParseDecimal(minOut); err != nil {
			return nil, err
		}
	}
	return &SwapParams{
		TokenIn:          in,
		TokenOut:         out,
		Fee:              fee,
		Recipient:        to,
		AmountIn:         amount,
		AmountOutMinimum: min,
	}, nil
}

// EncodeQuoteExactInputSingle builds the quoter call for p.
func EncodeQuoteExactInputSingle(p *SwapParams) ([]byte, error) {
	amountIn, err := uintWord(p.AmountIn, "amount_in")
	if err != nil {
		return nil, err
	}
	limit, err := uintWord(p.SqrtPriceLimitX96, "sqrt_price_limit")
	if err != nil {
		return nil, err
	}
	fee, _ := uintWord(new(big.Int).SetUint64(uint64(p.Fee)), "fee")
	return encodeCall(SelectorQuoteExactInputSingle,
		addressWord(p.TokenIn),
		addressWord(p.TokenOut),
		amountIn,
		fee,
		limit,
	), nil
}

// EncodeExactInputSingle builds the router call for p.
func EncodeExactInputSingle(p *SwapParams) ([]byte, error) {
	amountIn, err := uintWord(p.AmountIn, "amount_in")
	if err != nil {
		return nil, err
	}
	minOut, err := uintWord(p.AmountOutMinimum, "amount_out_minimum")
	if err != nil {
		return nil, err
	}
	limit, err := uintWord(p.SqrtPriceLimitX96, "sqrt_price_limit")
	if err != nil {
		return nil, err
	}
	fee, _ := uintWord(new(big.Int).SetUint64(uint64(p.Fee)), "fee")
	return encodeCall(SelectorExactInputSingle,
		addressWord(p.TokenIn),
		addressWord(p.TokenOut),
		fee,
		addressWord(p.Recipient),
		amountIn,
		minOut,
		limit,
	), nil
}
