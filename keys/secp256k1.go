// Package keys derives chain addresses from oracle public keys.
package keys

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/meme-bots/go-custody/types"
)

const (
	CompressedKeyLen   = 33
	UncompressedKeyLen = 65
	AddressLen         = common.AddressLength

	prefixEven         = 0x02
	prefixOdd          = 0x03
	prefixUncompressed = 0x04
)

var (
	fieldPrime = crypto.S256().Params().P
	curveB     = crypto.S256().Params().B
	// (p+1)/4, valid because p = 3 mod 4
	sqrtExp = new(big.Int).Rsh(new(big.Int).Add(fieldPrime, big.NewInt(1)), 2)
)

// Decompress expands a 33-byte SEC1 compressed secp256k1 key into the
// 65-byte 0x04||x||y form.
func Decompress(compressed []byte) ([]byte, error) {
	if len(compressed) != CompressedKeyLen || (compressed[0] != prefixEven && compressed[0] != prefixOdd) {
		return nil, types.Validation("decompress", "public key", hexutil.Encode(compressed), types.ErrInvalidCompressedKey)
	}

	x := new(big.Int).SetBytes(compressed[1:])
	if x.Cmp(fieldPrime) >= 0 {
		return nil, types.Validation("decompress", "public key", hexutil.Encode(compressed), types.ErrInvalidCompressedKey)
	}

	// y^2 = x^3 + 7
	ySquared := new(big.Int).Exp(x, big.NewInt(3), fieldPrime)
	ySquared.Add(ySquared, curveB)
	ySquared.Mod(ySquared, fieldPrime)

	y := new(big.Int).Exp(ySquared, sqrtExp, fieldPrime)
	if new(big.Int).Exp(y, big.NewInt(2), fieldPrime).Cmp(ySquared) != 0 {
		// x is not on the curve
		return nil, types.Validation("decompress", "public key", hexutil.Encode(compressed), types.ErrInvalidCompressedKey)
	}

	wantOdd := compressed[0] == prefixOdd
	if (y.Bit(0) == 1) != wantOdd {
		y.Sub(fieldPrime, y)
	}

	out := make([]byte, UncompressedKeyLen)
	out[0] = prefixUncompressed
	x.FillBytes(out[1:33])
	y.FillBytes(out[33:])
	return out, nil
}

// Uncompressed normalizes a 33 or 65 byte SEC1 key to the 65-byte form.
func Uncompressed(pub []byte) ([]byte, error) {
	switch {
	case len(pub) == UncompressedKeyLen && pub[0] == prefixUncompressed:
		out := make([]byte, UncompressedKeyLen)
		copy(out, pub)
		return out, nil
	case len(pub) == CompressedKeyLen && (pub[0] == prefixEven || pub[0] == prefixOdd):
		return Decompress(pub)
	}
	return nil, types.Validation("derive address", "public key", hexutil.Encode(pub), types.ErrInvalidPublicKeyLength)
}

// EVMAddressBytes is the low 20 bytes of keccak256(x||y).
func EVMAddressBytes(pub []byte) (common.Address, error) {
	full, err := Uncompressed(pub)
	if err != nil {
		return common.Address{}, err
	}
	return common.BytesToAddress(crypto.Keccak256(full[1:])[12:]), nil
}

// EVMAddress renders the account-chain address of pub as 0x + 40 lowercase
// hex characters.
func EVMAddress(pub []byte) (string, error) {
	addr, err := EVMAddressBytes(pub)
	if err != nil {
		return "", err
	}
	return FormatEVMAddress(addr), nil
}

func FormatEVMAddress(addr common.Address) string {
	return hexutil.Encode(addr.Bytes())
}

// ParseEVMAddress decodes a hex address that must be exactly 20 bytes.
func ParseEVMAddress(s string) (common.Address, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, err := hexutil.Decode("0x" + trimmed)
	if err != nil || len(b) != AddressLen {
		return common.Address{}, types.Validation("parse address", "address", s, types.ErrInvalidAddress)
	}
	return common.BytesToAddress(b), nil
}
