// Package transport carries JSON-RPC requests to chain nodes.
package transport

import (
	"context"
	"encoding/json"
)

type Request struct {
	Method string
	Params []interface{}
}

func NewRequest(method string, params ...interface{}) *Request {
	if params == nil {
		params = []interface{}{}
	}
	return &Request{Method: method, Params: params}
}

// Transport submits req to endpoint and returns the raw `result` member.
// A top-level `error` member is always a failure, whatever the HTTP status.
type Transport interface {
	Call(ctx context.Context, endpoint string, req *Request) (json.RawMessage, error)
}

// Func adapts a function to Transport.
type Func func(ctx context.Context, endpoint string, req *Request) (json.RawMessage, error)

func (f Func) Call(ctx context.Context, endpoint string, req *Request) (json.RawMessage, error) {
	return f(ctx, endpoint, req)
}

// CallFor decodes the result of req into out.
func CallFor(ctx context.Context, t Transport, endpoint string, out interface{}, req *Request) error {
	raw, err := t.Call(ctx, endpoint, req)
	if err != nil {
		return err
	}
	return decode(req.Method, endpoint, raw, out)
}
