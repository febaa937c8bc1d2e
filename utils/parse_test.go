package utils

import (
	"math/big"
	"strings"
	"testing"

	"github.com/meme-bots/go-custody/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecimalToBytes(t *testing.T) {
	b, err := DecimalToBytes("0")
	require.NoError(t, err)
	assert.Empty(t, b)

	b, err = DecimalToBytes("256")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x00}, b)

	b, err = DecimalToBytes("000127")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x7f}, b)

	b, err = DecimalToBytes("1000000000000000000")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x0d, 0xe0, 0xb6, 0xb3, 0xa7, 0x64, 0x00, 0x00}, b)

	for _, bad := range []string{"", "-1", "+1", "1.5", "0x10", "abc", " 1"} {
		_, err := DecimalToBytes(bad)
		require.Error(t, err, bad)
		assert.True(t, errors.Is(err, types.ErrInvalidAmount), bad)
		assert.True(t, errors.Is(err, types.ErrValidation), bad)
	}
}

func TestDecimalToFixed32(t *testing.T) {
	w, err := DecimalToFixed32("258")
	require.NoError(t, err)
	assert.Equal(t, byte(0x01), w[30])
	assert.Equal(t, byte(0x02), w[31])
	assert.Equal(t, make([]byte, 30), w[:30])

	max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	w, err = DecimalToFixed32(max.String())
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("ff", 32), hexString(w[:]))

	tooLarge := new(big.Int).Lsh(big.NewInt(1), 256)
	_, err = DecimalToFixed32(tooLarge.String())
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrAmountTooLarge))

	_, err = DecimalToFixed32("ten")
	assert.True(t, errors.Is(err, types.ErrInvalidAmount))
}

func TestHexToBytes(t *testing.T) {
	b, err := HexToBytes("0xdeadbeef")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, b)

	b, err = HexToBytes("DEADBEEF")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, b)

	b, err = HexToBytes("0x")
	require.NoError(t, err)
	assert.Empty(t, b)

	for _, bad := range []string{"0xabc", "0xzz", "xyz1"} {
		_, err := HexToBytes(bad)
		require.Error(t, err, bad)
		assert.True(t, errors.Is(err, types.ErrInvalidHex), bad)
	}
}

func TestApplySlippage(t *testing.T) {
	assert.Equal(t, big.NewInt(9950), ApplySlippage(big.NewInt(10000), 50))
	assert.Equal(t, big.NewInt(10000), ApplySlippage(big.NewInt(10000), 0))
	assert.Equal(t, big.NewInt(0), ApplySlippage(big.NewInt(10000), 10000))
}

func hexString(b []byte) string {
	const digits = "0123456789abcdef"
	var sb strings.Builder
	for _, c := range b {
		sb.WriteByte(digits[c>>4])
		sb.WriteByte(digits[c&0x0f])
	}
	return sb.String()
}
