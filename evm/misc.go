package evm

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/meme-bots/go-custody/types"
	"github.com/meme-bots/go-custody/utils"
)

const wordSize = 32

type Selector [4]byte

func (s Selector) Bytes() []byte { return s[:] }

func addressWord(addr common.Address) []byte {
	return common.LeftPadBytes(addr.Bytes(), wordSize)
}

func uintWord(v *big.Int, field string) ([]byte, error) {
	if v == nil {
		v = new(big.Int)
	}
	word, err := utils.BigToFixed32(v, v.String())
	if err != nil {
		if e, ok := err.(*types.Error); ok {
			e.Field = field
		}
		return nil, err
	}
	return word[:], nil
}

func encodeCall(sel Selector, words ...[]byte) []byte {
	out := make([]byte, 0, 4+wordSize*len(words))
	out = append(out, sel[:]...)
	for _, w := range words {
		out = append(out, w...)
	}
	return out
}

// FirstWord decodes the first 32-byte word of an eth_call result as uint256.
func FirstWord(result []byte) (*big.Int, error) {
	if len(result) < wordSize {
		return nil, types.Transport("decode call result", "", types.ErrInvalidAmount)
	}
	return new(big.Int).SetBytes(result[:wordSize]), nil
}
