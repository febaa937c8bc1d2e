package sol

import (
	"context"
	"encoding/base64"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/meme-bots/go-custody/transport"
	"github.com/meme-bots/go-custody/types"
	"github.com/pkg/errors"
)

// Client issues the cluster JSON-RPC methods the engine needs. Results are
// decoded into the solana-go rpc result types.
type Client struct {
	transport  transport.Transport
	endpoint   string
	commitment rpc.CommitmentType
}

func NewClient(t transport.Transport, endpoint string) *Client {
	return &Client{transport: t, endpoint: endpoint, commitment: rpc.CommitmentConfirmed}
}

func (c *Client) Endpoint() string { return c.endpoint }

func (c *Client) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	var out rpc.GetLatestBlockhashResult
	req := transport.NewRequest("getLatestBlockhash", rpc.M{"commitment": rpc.CommitmentFinalized})
	if err := transport.CallFor(ctx, c.transport, c.endpoint, &out, req); err != nil {
		return solana.Hash{}, err
	}
	if out.Value == nil || out.Value.Blockhash.IsZero() {
		return solana.Hash{}, types.Transport(req.Method, c.endpoint, transport.ErrEmptyResult)
	}
	return out.Value.Blockhash, nil
}

// Balance returns the lamport balance of addr.
func (c *Client) Balance(ctx context.Context, addr solana.PublicKey) (*big.Int, error) {
	var out rpc.GetBalanceResult
	req := transport.NewRequest("getBalance", addr.String(), rpc.M{"commitment": c.commitment})
	if err := transport.CallFor(ctx, c.transport, c.endpoint, &out, req); err != nil {
		return nil, err
	}
	return new(big.Int).SetUint64(out.Value), nil
}

// TokenAccountBalance returns the raw amount held by a token account.
func (c *Client) TokenAccountBalance(ctx context.Context, account solana.PublicKey) (*big.Int, uint8, error) {
	var out rpc.GetTokenAccountBalanceResult
	req := transport.NewRequest("getTokenAccountBalance", account.String(), rpc.M{"commitment": c.commitment})
	if err := transport.CallFor(ctx, c.transport, c.endpoint, &out, req); err != nil {
		return nil, 0, err
	}
	if out.Value == nil {
		return nil, 0, types.Transport(req.Method, c.endpoint, transport.ErrEmptyResult)
	}
	amount, ok := new(big.Int).SetString(out.Value.Amount, 10)
	if !ok {
		return nil, 0, types.Transport(req.Method, c.endpoint, errors.Errorf("malformed amount %q", out.Value.Amount))
	}
	return amount, out.Value.Decimals, nil
}

// SendTransaction submits a wire transaction and returns its signature.
func (c *Client) SendTransaction(ctx context.Context, wire []byte) (string, error) {
	var sig string
	req := transport.NewRequest("sendTransaction",
		base64.StdEncoding.EncodeToString(wire),
		rpc.M{"encoding": "base64", "preflightCommitment": c.commitment},
	)
	if err := transport.CallFor(ctx, c.transport, c.endpoint, &sig, req); err != nil {
		return "", err
	}
	return sig, nil
}
