package sol

import (
	"crypto/sha256"

	"github.com/gagliardetto/solana-go"
	"github.com/meme-bots/go-custody/types"
)

// AssociatedTokenAccount derives the token account of owner for mint with
// the associated-token-account program's bump seed search.
func AssociatedTokenAccount(owner, mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{
		owner[:],
		solana.TokenProgramID[:],
		mint[:],
	}, solana.SPLAssociatedTokenAccountProgramID)
	if err != nil {
		return solana.PublicKey{}, types.Validation("associated account", "mint", mint.String(), err)
	}
	return addr, nil
}

// LegacyAssociatedTokenAccount is sha256(owner || token program || mint).
// It does not match the accounts standard wallets create and only exists
// for balances already held at such addresses.
func LegacyAssociatedTokenAccount(owner, mint solana.PublicKey) solana.PublicKey {
	h := sha256.New()
	h.Write(owner[:])
	h.Write(solana.TokenProgramID[:])
	h.Write(mint[:])
	return solana.PublicKeyFromBytes(h.Sum(nil))
}
