package utils

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/meme-bots/go-custody/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// FormatUnits renders base units as a decimal amount, e.g. wei -> ETH.
func FormatUnits(v *big.Int, decimals uint8) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(v, -int32(decimals))
}

// ParseUnits converts a human amount ("0.25") into base units. Amounts with
// more fractional digits than decimals are rejected.
func ParseUnits(s string, decimals uint8) (*big.Int, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || d.IsNegative() {
		return nil, types.Validation("parse units", "amount", s, types.ErrInvalidAmount)
	}
	scaled := d.Shift(int32(decimals))
	if !scaled.Equal(scaled.Truncate(0)) {
		return nil, types.Validation("parse units", "amount", s, types.ErrInvalidAmount)
	}
	return scaled.BigInt(), nil
}

func AbbreviateDecimal(v decimal.Decimal) string {
	s := v.StringFixedBank(9)
	ss := strings.Split(s, ".")
	if len(ss) == 1 {
		return s
	}

	fraction := ss[1]
	cnt := 0
	for _, c := range fraction {
		if c == '0' {
			cnt++
		} else {
			break
		}
	}

	const zero rune = '\u2080'
	if cnt >= 9 {
		fraction = fraction[:3]
	} else if cnt > 2 {
		fraction = fmt.Sprintf("0%s%s", string(zero+rune(cnt)), fraction[cnt:lo.Min([]int{9, cnt + 3})])
	} else {
		fraction = fraction[:cnt+3]
	}
	return fmt.Sprintf("%s.%s", ss[0], fraction)
}

func NewBalance(raw *big.Int, decimals uint8) *types.Balance {
	return &types.Balance{
		Raw:      raw,
		Decimals: decimals,
		Display:  FormatUnits(raw, decimals).String(),
	}
}
