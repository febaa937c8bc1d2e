package evm

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	gtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/meme-bots/go-custody/transport"
	"github.com/meme-bots/go-custody/types"
	"github.com/stretchr/testify/require"
)

const testEndpoint = "http://node.test"

type handler func(params []interface{}) (interface{}, error)

// fakeNode answers JSON-RPC methods in-process and records every call.
type fakeNode struct {
	mu       sync.Mutex
	handlers map[string]handler
	calls    []string
	sent     []*gtypes.Transaction
}

func newFakeNode() *fakeNode {
	return &fakeNode{handlers: map[string]handler{}}
}

func (n *fakeNode) on(method string, h handler) *fakeNode {
	n.handlers[method] = h
	return n
}

func (n *fakeNode) reply(method string, result interface{}) *fakeNode {
	return n.on(method, func([]interface{}) (interface{}, error) { return result, nil })
}

// acceptRecoveryID accepts raw transactions whose v equals id and rejects
// everything else with a node error.
func (n *fakeNode) acceptRecoveryID(t *testing.T, id int64) *fakeNode {
	return n.accept(t, func(v int64) bool { return v == id })
}

func (n *fakeNode) acceptAll(t *testing.T) *fakeNode {
	return n.accept(t, func(int64) bool { return true })
}

func (n *fakeNode) accept(t *testing.T, ok func(v int64) bool) *fakeNode {
	return n.on("eth_sendRawTransaction", func(params []interface{}) (interface{}, error) {
		raw, err := hexutil.Decode(params[0].(string))
		require.NoError(t, err)
		tx := new(gtypes.Transaction)
		require.NoError(t, tx.UnmarshalBinary(raw))
		n.mu.Lock()
		n.sent = append(n.sent, tx)
		n.mu.Unlock()
		v, _, _ := tx.RawSignatureValues()
		if !ok(v.Int64()) {
			return nil, types.Transport("eth_sendRawTransaction", testEndpoint, &types.RPCError{Code: -32000, Message: "invalid sender"})
		}
		return tx.Hash().Hex(), nil
	})
}

func (n *fakeNode) count(method string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, m := range n.calls {
		if m == method {
			c++
		}
	}
	return c
}

func (n *fakeNode) transport() transport.Transport {
	return transport.Func(func(ctx context.Context, endpoint string, req *transport.Request) (json.RawMessage, error) {
		n.mu.Lock()
		n.calls = append(n.calls, req.Method)
		h, ok := n.handlers[req.Method]
		n.mu.Unlock()
		if !ok {
			return nil, types.Transport(req.Method, endpoint, &types.RPCError{Code: -32601, Message: "method not found"})
		}
		// round-trip params through JSON the way a real node sees them
		b, err := json.Marshal(req.Params)
		if err != nil {
			return nil, err
		}
		var params []interface{}
		if err := json.Unmarshal(b, &params); err != nil {
			return nil, err
		}
		out, err := h(params)
		if err != nil {
			return nil, err
		}
		return json.Marshal(out)
	})
}
