package evm

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/meme-bots/go-custody/keys"
	"github.com/meme-bots/go-custody/transport"
	"github.com/meme-bots/go-custody/types"
)

// Client issues the account-chain JSON-RPC methods the engine needs.
type Client struct {
	transport transport.Transport
	endpoint  string
}

func NewClient(t transport.Transport, endpoint string) *Client {
	return &Client{transport: t, endpoint: endpoint}
}

func (c *Client) Endpoint() string { return c.endpoint }

func (c *Client) quantity(ctx context.Context, req *transport.Request) (*big.Int, error) {
	var hex string
	if err := transport.CallFor(ctx, c.transport, c.endpoint, &hex, req); err != nil {
		return nil, err
	}
	v, err := decodeQuantity(hex)
	if err != nil {
		return nil, types.Transport(req.Method, c.endpoint, err)
	}
	return v, nil
}

// PendingNonce is eth_getTransactionCount(addr, "pending").
func (c *Client) PendingNonce(ctx context.Context, addr common.Address) (uint64, error) {
	v, err := c.quantity(ctx, transport.NewRequest("eth_getTransactionCount", keys.FormatEVMAddress(addr), "pending"))
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, types.Transport("eth_getTransactionCount", c.endpoint, hexutil.ErrUint64Range)
	}
	return v.Uint64(), nil
}

// GasPrice is eth_gasPrice in wei.
func (c *Client) GasPrice(ctx context.Context) (uint64, error) {
	v, err := c.quantity(ctx, transport.NewRequest("eth_gasPrice"))
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, types.Transport("eth_gasPrice", c.endpoint, hexutil.ErrUint64Range)
	}
	return v.Uint64(), nil
}

// Balance is eth_getBalance(addr, "latest") in wei.
func (c *Client) Balance(ctx context.Context, addr common.Address) (*big.Int, error) {
	return c.quantity(ctx, transport.NewRequest("eth_getBalance", keys.FormatEVMAddress(addr), "latest"))
}

type callMsg struct {
	To   string `json:"to"`
	Data string `json:"data"`
	From string `json:"from,omitempty"`
}

// Call is eth_call against the latest block.
func (c *Client) Call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	var hex string
	req := transport.NewRequest("eth_call", callMsg{To: keys.FormatEVMAddress(to), Data: hexutil.Encode(data)}, "latest")
	if err := transport.CallFor(ctx, c.transport, c.endpoint, &hex, req); err != nil {
		return nil, err
	}
	out, err := hexutil.Decode(hex)
	if err != nil {
		return nil, types.Transport("eth_call", c.endpoint, err)
	}
	return out, nil
}

// SendRawTransaction submits a signed payload and returns the node's hash.
func (c *Client) SendRawTransaction(ctx context.Context, raw []byte) (string, error) {
	var hash string
	if err := transport.CallFor(ctx, c.transport, c.endpoint, &hash, transport.NewRequest("eth_sendRawTransaction", hexutil.Encode(raw))); err != nil {
		return "", err
	}
	return hash, nil
}

// decodeQuantity accepts 0x-prefixed hex quantities, tolerating the leading
// zeros some nodes emit.
func decodeQuantity(s string) (*big.Int, error) {
	if len(s) < 3 || (s[:2] != "0x" && s[:2] != "0X") {
		return nil, hexutil.ErrMissingPrefix
	}
	v, ok := new(big.Int).SetString(s[2:], 16)
	if !ok || v.Sign() < 0 {
		return nil, hexutil.ErrSyntax
	}
	return v, nil
}
