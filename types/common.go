package types

import (
	"fmt"
	"math/big"
	"time"
)

type (
	GetBalanceRequest struct {
		Address string
	}

	GetTokenBalanceRequest struct {
		Owner string
		Token string
	}

	// TransferBill is a native value transfer. Amount is a decimal string in
	// base units (wei, lamports).
	TransferBill struct {
		Recipient string
		Amount    string
	}

	// TokenTransferRequest moves Amount base units of Token to Recipient.
	TokenTransferRequest struct {
		Token     string
		Recipient string
		Amount    string
	}

	// SwapRequest describes a single-pool exact-input swap on a
	// concentrated-liquidity exchange.
	SwapRequest struct {
		TokenIn      string
		TokenOut     string
		Fee          uint32
		AmountIn     string
		MinAmountOut string
		// SlippageBps derives MinAmountOut from a fresh quote when
		// MinAmountOut is empty.
		SlippageBps uint64
		Recipient   string
	}

	QuoteResponse struct {
		AmountOut *big.Int
	}

	TransactResponse struct {
		TxHash string
	}

	Balance struct {
		Raw      *big.Int
		Decimals uint8
		Display  string
	}
)

type TxStatus int

const (
	TxPending TxStatus = iota
	TxSubmitted
	TxConfirmed
	TxFailed
)

func (s TxStatus) String() string {
	switch s {
	case TxPending:
		return "pending"
	case TxSubmitted:
		return "submitted"
	case TxConfirmed:
		return "confirmed"
	case TxFailed:
		return "failed"
	}
	return "unknown"
}

// TransactionStatus is Pending, Submitted(Ref), Confirmed(Height) or
// Failed(Reason).
type TransactionStatus struct {
	State  TxStatus `json:"state"`
	Ref    string   `json:"ref,omitempty"`
	Height uint64   `json:"height,omitempty"`
	Reason string   `json:"reason,omitempty"`
}

func Pending() TransactionStatus                { return TransactionStatus{State: TxPending} }
func Submitted(ref string) TransactionStatus    { return TransactionStatus{State: TxSubmitted, Ref: ref} }
func Confirmed(height uint64) TransactionStatus { return TransactionStatus{State: TxConfirmed, Height: height} }
func Failed(reason string) TransactionStatus    { return TransactionStatus{State: TxFailed, Reason: reason} }

func (s TransactionStatus) String() string {
	switch s.State {
	case TxSubmitted:
		return fmt.Sprintf("submitted(%s)", s.Ref)
	case TxConfirmed:
		return fmt.Sprintf("confirmed(%d)", s.Height)
	case TxFailed:
		return fmt.Sprintf("failed(%s)", s.Reason)
	}
	return s.State.String()
}

// TransactionRecord is written by the registry after a successful broadcast.
type TransactionRecord struct {
	ID        uint64            `json:"id"`
	UID       string            `json:"uid"`
	Network   string            `json:"network"`
	ChainID   uint64            `json:"chainId,omitempty"`
	TxHash    string            `json:"txHash"`
	To        string            `json:"to"`
	Amount    string            `json:"amount"`
	Token     string            `json:"token,omitempty"`
	Data      string            `json:"data,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Status    TransactionStatus `json:"status"`
}
