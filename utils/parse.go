package utils

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/meme-bots/go-custody/types"
)

const wordSize = 32

// ParseDecimal parses a non-negative base-10 integer of arbitrary size.
func ParseDecimal(s string) (*big.Int, error) {
	if s == "" {
		return nil, types.Validation("parse decimal", "amount", s, types.ErrInvalidAmount)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return nil, types.Validation("parse decimal", "amount", s, types.ErrInvalidAmount)
		}
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, types.Validation("parse decimal", "amount", s, types.ErrInvalidAmount)
	}
	return v, nil
}

// DecimalToBytes returns the minimal big-endian form of s. Zero is empty.
func DecimalToBytes(s string) ([]byte, error) {
	v, err := ParseDecimal(s)
	if err != nil {
		return nil, err
	}
	// big.Int.Bytes is already minimal and empty for zero
	return v.Bytes(), nil
}

// DecimalToFixed32 right-aligns s into a 32-byte big-endian word.
func DecimalToFixed32(s string) ([32]byte, error) {
	v, err := ParseDecimal(s)
	if err != nil {
		return [32]byte{}, err
	}
	return BigToFixed32(v, s)
}

func BigToFixed32(v *big.Int, label string) ([32]byte, error) {
	var word [32]byte
	if v.Sign() < 0 {
		return word, types.Validation("encode word", "amount", label, types.ErrInvalidAmount)
	}
	if v.BitLen() > wordSize*8 {
		return word, types.Validation("encode word", "amount", label, types.ErrAmountTooLarge)
	}
	v.FillBytes(word[:])
	return word, nil
}

// HexToBytes decodes hex with an optional 0x prefix.
func HexToBytes(s string) ([]byte, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if trimmed == "" {
		return []byte{}, nil
	}
	b, err := hexutil.Decode("0x" + trimmed)
	if err != nil {
		return nil, types.Validation("parse hex", "hex", s, types.ErrInvalidHex)
	}
	return b, nil
}

// ApplySlippage returns amount reduced by bps basis points.
func ApplySlippage(amount *big.Int, bps uint64) *big.Int {
	if bps >= 10000 {
		return big.NewInt(0)
	}
	slip := new(big.Int).Div(new(big.Int).Mul(amount, new(big.Int).SetUint64(bps)), big.NewInt(10000))
	return new(big.Int).Sub(amount, slip)
}
