package keys

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gagliardetto/solana-go"
	"github.com/meme-bots/go-custody/types"
)

const SolanaKeyLen = solana.PublicKeyLength

// SolanaAddress renders a 32-byte ed25519 public key in base-58.
func SolanaAddress(pub []byte) (string, error) {
	key, err := SolanaPublicKey(pub)
	if err != nil {
		return "", err
	}
	return key.String(), nil
}

func SolanaPublicKey(pub []byte) (solana.PublicKey, error) {
	if len(pub) != SolanaKeyLen {
		return solana.PublicKey{}, types.Validation("derive address", "public key", hexutil.Encode(pub), types.ErrInvalidPublicKeyLength)
	}
	return solana.PublicKeyFromBytes(pub), nil
}

// ParseSolanaAddress decodes a base-58 address that must be 32 bytes.
func ParseSolanaAddress(s string) (solana.PublicKey, error) {
	key, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return solana.PublicKey{}, types.Validation("parse address", "address", s, types.ErrInvalidAddress)
	}
	return key, nil
}
