package transport

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/meme-bots/go-custody/types"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var ErrEmptyResult = errors.New("empty result")

// HTTP is a JSON-RPC 2.0 over HTTP transport with one client per endpoint.
type HTTP struct {
	logger  zerolog.Logger
	mu      sync.Mutex
	clients map[string]jsonrpc.RPCClient
}

func NewHTTP() *HTTP {
	return NewHTTPWithLogger(log.Logger)
}

func NewHTTPWithLogger(logger zerolog.Logger) *HTTP {
	return &HTTP{
		logger:  logger.With().Str("component", "transport").Logger(),
		clients: make(map[string]jsonrpc.RPCClient),
	}
}

func (h *HTTP) client(endpoint string) jsonrpc.RPCClient {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.clients[endpoint]
	if !ok {
		c = jsonrpc.NewClient(endpoint)
		h.clients[endpoint] = c
	}
	return c
}

func (h *HTTP) Call(ctx context.Context, endpoint string, req *Request) (json.RawMessage, error) {
	h.logger.Debug().Str("method", req.Method).Str("endpoint", endpoint).Msg("rpc call")

	params := req.Params
	if params == nil {
		params = []interface{}{}
	}
	resp, err := h.client(endpoint).CallRaw(ctx, &jsonrpc.RPCRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  req.Method,
		Params:  params,
	})
	if resp != nil && resp.Error != nil {
		rpcErr := &types.RPCError{Code: resp.Error.Code, Message: resp.Error.Message, Data: resp.Error.Data}
		h.logger.Warn().Str("method", req.Method).Int("code", rpcErr.Code).Str("message", rpcErr.Message).Msg("rpc error")
		return nil, types.Transport(req.Method, endpoint, rpcErr)
	}
	if err != nil {
		return nil, types.Transport(req.Method, endpoint, errors.Wrap(err, "rpc request failed"))
	}
	if resp == nil {
		return nil, types.Transport(req.Method, endpoint, ErrEmptyResult)
	}
	return resp.Result, nil
}

func decode(method, endpoint string, raw json.RawMessage, out interface{}) error {
	if len(raw) == 0 || string(raw) == "null" {
		return types.Transport(method, endpoint, ErrEmptyResult)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return types.Transport(method, endpoint, errors.Wrap(err, "decode result"))
	}
	return nil
}
