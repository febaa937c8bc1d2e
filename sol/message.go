package sol

import (
	"sort"
	"strconv"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/meme-bots/go-custody/types"
	"github.com/samber/lo"
)

type (
	// AccountMeta is one account reference of an instruction.
	AccountMeta struct {
		PublicKey  solana.PublicKey
		IsSigner   bool
		IsWritable bool
	}

	// Instruction is an uncompiled program invocation.
	Instruction struct {
		ProgramID solana.PublicKey
		Accounts  []AccountMeta
		Data      []byte
	}

	MessageHeader struct {
		NumRequiredSignatures       uint8
		NumReadonlySignedAccounts   uint8
		NumReadonlyUnsignedAccounts uint8
	}

	CompiledInstruction struct {
		ProgramIDIndex uint8
		Accounts       []uint8
		Data           []byte
	}

	// Message is the legacy compact transaction message: the bytes the
	// payer signs.
	Message struct {
		Header          MessageHeader
		AccountKeys     []solana.PublicKey
		RecentBlockhash solana.Hash
		Instructions    []CompiledInstruction
	}
)

// maxAccounts keeps every account index within a single byte.
const maxAccounts = 256

func (a AccountMeta) less(b AccountMeta) bool {
	if a.IsSigner != b.IsSigner {
		return a.IsSigner
	}
	if a.IsWritable != b.IsWritable {
		return a.IsWritable
	}
	return false
}

// Compile orders the accounts of instructions (payer first, then signers,
// then writable, then read-only, program ids last among equals), merges
// duplicates and rewrites instruction accounts as indices.
func Compile(payer solana.PublicKey, recentBlockhash solana.Hash, instructions ...Instruction) (*Message, error) {
	if len(instructions) == 0 {
		return nil, types.Validation("compile message", "instructions", "0", types.ErrInvalidAmount)
	}

	programIDs := lo.Uniq(lo.Map(instructions, func(ix Instruction, _ int) solana.PublicKey {
		return ix.ProgramID
	}))
	var metas []AccountMeta
	for _, ix := range instructions {
		metas = append(metas, ix.Accounts...)
	}
	for _, id := range programIDs {
		metas = append(metas, AccountMeta{PublicKey: id})
	}

	// flags are merged before ordering so an account lands in the group of
	// its strongest use
	index := make(map[solana.PublicKey]int, len(metas)+1)
	index[payer] = -1
	var merged []AccountMeta
	for _, m := range metas {
		if i, ok := index[m.PublicKey]; ok {
			if i >= 0 {
				merged[i].IsWritable = merged[i].IsWritable || m.IsWritable
				merged[i].IsSigner = merged[i].IsSigner || m.IsSigner
			}
			continue
		}
		index[m.PublicKey] = len(merged)
		merged = append(merged, m)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].less(merged[j])
	})

	uniq := make([]AccountMeta, 0, len(merged)+1)
	uniq = append(uniq, AccountMeta{PublicKey: payer, IsSigner: true, IsWritable: true})
	uniq = append(uniq, merged...)
	for i, m := range uniq {
		index[m.PublicKey] = i
	}
	if len(uniq) > maxAccounts {
		return nil, types.Validation("compile message", "accounts", strconv.Itoa(len(uniq)), types.ErrCapacityExceeded)
	}

	msg := &Message{RecentBlockhash: recentBlockhash}
	for _, m := range uniq {
		msg.AccountKeys = append(msg.AccountKeys, m.PublicKey)
		if m.IsSigner {
			msg.Header.NumRequiredSignatures++
			if !m.IsWritable {
				msg.Header.NumReadonlySignedAccounts++
			}
			continue
		}
		if !m.IsWritable {
			msg.Header.NumReadonlyUnsignedAccounts++
		}
	}

	for _, ix := range instructions {
		msg.Instructions = append(msg.Instructions, CompiledInstruction{
			ProgramIDIndex: uint8(index[ix.ProgramID]),
			Accounts: lo.Map(ix.Accounts, func(m AccountMeta, _ int) uint8 {
				return uint8(index[m.PublicKey])
			}),
			Data: ix.Data,
		})
	}
	return msg, nil
}

// MarshalBinary encodes the message in the legacy wire format.
func (m *Message) MarshalBinary() ([]byte, error) {
	buf := []byte{
		m.Header.NumRequiredSignatures,
		m.Header.NumReadonlySignedAccounts,
		m.Header.NumReadonlyUnsignedAccounts,
	}

	bin.EncodeCompactU16Length(&buf, len(m.AccountKeys))
	for _, key := range m.AccountKeys {
		buf = append(buf, key[:]...)
	}
	buf = append(buf, m.RecentBlockhash[:]...)

	bin.EncodeCompactU16Length(&buf, len(m.Instructions))
	for _, ix := range m.Instructions {
		buf = append(buf, ix.ProgramIDIndex)
		bin.EncodeCompactU16Length(&buf, len(ix.Accounts))
		buf = append(buf, ix.Accounts...)
		bin.EncodeCompactU16Length(&buf, len(ix.Data))
		buf = append(buf, ix.Data...)
	}
	return buf, nil
}

// Signers returns the keys whose signatures the message requires, in order.
func (m *Message) Signers() []solana.PublicKey {
	return m.AccountKeys[:m.Header.NumRequiredSignatures]
}

// EncodeTransaction frames signatures and the message for sendTransaction.
func EncodeTransaction(message []byte, signatures ...solana.Signature) []byte {
	var out []byte
	bin.EncodeCompactU16Length(&out, len(signatures))
	for _, sig := range signatures {
		out = append(out, sig[:]...)
	}
	return append(out, message...)
}
