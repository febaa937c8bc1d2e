package evm

import (
	"bytes"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/meme-bots/go-custody/keys"
	"github.com/meme-bots/go-custody/rlp"
	"github.com/meme-bots/go-custody/types"
	"github.com/meme-bots/go-custody/utils"
)

// DynamicFeeTxType is the EIP-2718 envelope byte of EIP-1559 transactions.
const DynamicFeeTxType = 0x02

// DynamicFeeTx is the unsigned account-chain payload. Value is the minimal
// big-endian amount in wei.
type DynamicFeeTx struct {
	ChainID              uint64
	Nonce                uint64
	MaxPriorityFeePerGas uint64
	MaxFeePerGas         uint64
	GasLimit             uint64
	To                   common.Address
	Value                []byte
	Data                 []byte
}

// SignatureCandidate is one of the two possible completions of an oracle
// signature.
type SignatureCandidate struct {
	R          [32]byte
	S          [32]byte
	RecoveryID byte
}

// NewDynamicFeeTx validates the textual inputs and assembles the payload.
// value is a decimal wei amount, data is hex call-data (may be empty).
func NewDynamicFeeTx(chainID, nonce, priorityFee, maxFee, gasLimit uint64, to, value, data string) (*DynamicFeeTx, error) {
	toAddr, err := keys.ParseEVMAddress(to)
	if err != nil {
		return nil, err
	}
	valueBytes, err := utils.DecimalToBytes(value)
	if err != nil {
		return nil, err
	}
	dataBytes, err := utils.HexToBytes(data)
	if err != nil {
		return nil, err
	}
	return &DynamicFeeTx{
		ChainID:              chainID,
		Nonce:                nonce,
		MaxPriorityFeePerGas: priorityFee,
		MaxFeePerGas:         maxFee,
		GasLimit:             gasLimit,
		To:                   toAddr,
		Value:                valueBytes,
		Data:                 dataBytes,
	}, nil
}

func (tx *DynamicFeeTx) fields() [][]byte {
	return [][]byte{
		rlp.EncodeUint(tx.ChainID),
		rlp.EncodeUint(tx.Nonce),
		rlp.EncodeUint(tx.MaxPriorityFeePerGas),
		rlp.EncodeUint(tx.MaxFeePerGas),
		rlp.EncodeUint(tx.GasLimit),
		rlp.EncodeBytes(tx.To.Bytes()),
		rlp.EncodeBytes(trimLeadingZeros(tx.Value)),
		rlp.EncodeBytes(tx.Data),
		// empty access list
		rlp.EncodeList(),
	}
}

// SigningPayload is 0x02 || rlp([chainId, nonce, tip, feeCap, gas, to,
// value, data, accessList]).
func (tx *DynamicFeeTx) SigningPayload() []byte {
	return envelope(rlp.EncodeList(tx.fields()...))
}

func (tx *DynamicFeeTx) SigningHash() common.Hash {
	return crypto.Keccak256Hash(tx.SigningPayload())
}

// SignedPayload appends [v, r, s] to the field list and re-encodes.
func (tx *DynamicFeeTx) SignedPayload(sig SignatureCandidate) []byte {
	items := append(tx.fields(), sig.encode()...)
	return envelope(rlp.EncodeList(items...))
}

// TxHash is the network identifier of the signed payload.
func (tx *DynamicFeeTx) TxHash(sig SignatureCandidate) common.Hash {
	return crypto.Keccak256Hash(tx.SignedPayload(sig))
}

// Candidates splits a 64-byte oracle signature into the two recovery-id
// completions, 0 first.
func Candidates(sig []byte) ([2]SignatureCandidate, error) {
	var out [2]SignatureCandidate
	if len(sig) != 64 {
		return out, types.Validation("split signature", "signature length", strconv.Itoa(len(sig)), types.ErrInvalidSignature)
	}
	for v := range out {
		copy(out[v].R[:], sig[:32])
		copy(out[v].S[:], sig[32:])
		out[v].RecoveryID = byte(v)
	}
	return out, nil
}

// Bytes returns r||s||v as accepted by crypto.Ecrecover.
func (c SignatureCandidate) Bytes() []byte {
	out := make([]byte, 0, 65)
	out = append(out, c.R[:]...)
	out = append(out, c.S[:]...)
	return append(out, c.RecoveryID)
}

func (c SignatureCandidate) encode() [][]byte {
	return [][]byte{
		rlp.EncodeUint(uint64(c.RecoveryID)),
		rlp.EncodeBytes(trimLeadingZeros(c.R[:])),
		rlp.EncodeBytes(trimLeadingZeros(c.S[:])),
	}
}

func envelope(list []byte) []byte {
	out := make([]byte, 0, 1+len(list))
	out = append(out, DynamicFeeTxType)
	return append(out, list...)
}

func trimLeadingZeros(b []byte) []byte {
	return bytes.TrimLeft(b, "\x00")
}
