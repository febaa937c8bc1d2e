package types

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrorKind is the closed set of failure classes surfaced by the engine.
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindConfiguration
	KindTransport
	KindBroadcastExhausted
)

var (
	ErrValidation         = errors.New("validation error")
	ErrConfiguration      = errors.New("configuration error")
	ErrTransport          = errors.New("transport error")
	ErrBroadcastExhausted = errors.New("broadcast exhausted")

	ErrInvalidAmount          = errors.New("invalid amount")
	ErrAmountTooLarge         = errors.New("amount too large")
	ErrInvalidHex             = errors.New("invalid hex")
	ErrInvalidAddress         = errors.New("invalid address")
	ErrInvalidCompressedKey   = errors.New("invalid compressed key")
	ErrInvalidPublicKeyLength = errors.New("invalid public key length")
	ErrInvalidSignature       = errors.New("invalid signature")

	ErrChainNotConfigured   = errors.New("chain not configured")
	ErrNetworkNotConfigured = errors.New("network not configured")
	ErrCapacityExceeded     = errors.New("registry capacity exceeded")

	ErrSigningFailed  = errors.New("signing failed")
	ErrSignerMismatch = errors.New("signature does not match signer")
	ErrRPC            = errors.New("rpc error")

	ErrNotImplemented = errors.New("not implemented")
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConfiguration:
		return "configuration"
	case KindTransport:
		return "transport"
	case KindBroadcastExhausted:
		return "broadcast exhausted"
	}
	return "unknown"
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindValidation:
		return ErrValidation
	case KindConfiguration:
		return ErrConfiguration
	case KindTransport:
		return ErrTransport
	case KindBroadcastExhausted:
		return ErrBroadcastExhausted
	}
	return nil
}

// Error carries the failure kind plus the operation and input that caused it.
// Err is the specific cause (one of the Err* sentinels or an upstream error).
type Error struct {
	Kind     ErrorKind
	Op       string
	Field    string
	Value    string
	Endpoint string
	Attempts int
	Err      error
}

func (e *Error) Error() string {
	var sb strings.Builder
	if e.Op != "" {
		sb.WriteString(e.Op)
		sb.WriteString(": ")
	}
	sb.WriteString(e.Kind.String())
	if e.Field != "" {
		fmt.Fprintf(&sb, " [%s=%q]", e.Field, e.Value)
	}
	if e.Endpoint != "" {
		fmt.Fprintf(&sb, " [endpoint=%s]", e.Endpoint)
	}
	if e.Attempts > 0 {
		fmt.Fprintf(&sb, " [attempts=%d]", e.Attempts)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinel so callers can test either the class
// (ErrValidation) or the specific cause (ErrInvalidHex).
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

func Validation(op, field, value string, cause error) error {
	return &Error{Kind: KindValidation, Op: op, Field: field, Value: value, Err: cause}
}

func Configuration(op, field, value string, cause error) error {
	return &Error{Kind: KindConfiguration, Op: op, Field: field, Value: value, Err: cause}
}

func Transport(op, endpoint string, cause error) error {
	return &Error{Kind: KindTransport, Op: op, Endpoint: endpoint, Err: cause}
}

func BroadcastExhausted(op, endpoint string, attempts int, last error) error {
	return &Error{Kind: KindBroadcastExhausted, Op: op, Endpoint: endpoint, Attempts: attempts, Err: last}
}

// KindOf reports the kind of the first *Error found in err's chain.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// RPCError is a JSON-RPC `error` object returned by a node.
type RPCError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

func (e *RPCError) Is(target error) bool {
	return target == ErrRPC
}
