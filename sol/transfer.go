package sol

import (
	"github.com/gagliardetto/solana-go"
	"github.com/meme-bots/go-custody/types"
	"github.com/near/borsh-go"
)

const (
	systemTransferInstruction uint32 = 2
	tokenTransferInstruction  uint8  = 3
)

type (
	systemTransferData struct {
		Instruction uint32
		Lamports    uint64
	}

	tokenTransferData struct {
		Instruction uint8
		Amount      uint64
	}
)

// NewTransferInstruction moves lamports from a system account. Data is the
// little-endian u32 discriminator 2 followed by the u64 amount.
func NewTransferInstruction(lamports uint64, from, to solana.PublicKey) (Instruction, error) {
	data, err := borsh.Serialize(systemTransferData{Instruction: systemTransferInstruction, Lamports: lamports})
	if err != nil {
		return Instruction{}, types.Validation("system transfer", "lamports", "", err)
	}
	return Instruction{
		ProgramID: solana.SystemProgramID,
		Accounts: []AccountMeta{
			{PublicKey: from, IsSigner: true, IsWritable: true},
			{PublicKey: to, IsWritable: true},
		},
		Data: data,
	}, nil
}

// NewTokenTransferInstruction moves amount base units between two token
// accounts owned by owner.
func NewTokenTransferInstruction(amount uint64, source, destination, owner solana.PublicKey) (Instruction, error) {
	data, err := borsh.Serialize(tokenTransferData{Instruction: tokenTransferInstruction, Amount: amount})
	if err != nil {
		return Instruction{}, types.Validation("token transfer", "amount", "", err)
	}
	return Instruction{
		ProgramID: solana.TokenProgramID,
		Accounts: []AccountMeta{
			{PublicKey: source, IsWritable: true},
			{PublicKey: destination, IsWritable: true},
			{PublicKey: owner, IsSigner: true},
		},
		Data: data,
	}, nil
}
