package signer

import (
	"context"
	"crypto/ecdsa"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
)

var ErrUnknownKey = errors.New("unknown key handle")

// Secp256k1Oracle is an in-process oracle for development and tests. It
// mimics a remote threshold signer: compressed SEC1 public keys and 64-byte
// signatures with the recovery id dropped.
type Secp256k1Oracle struct {
	mu   sync.RWMutex
	keys map[KeyHandle]*ecdsa.PrivateKey
}

func NewSecp256k1Oracle() *Secp256k1Oracle {
	return &Secp256k1Oracle{keys: make(map[KeyHandle]*ecdsa.PrivateKey)}
}

func (o *Secp256k1Oracle) AddHex(handle KeyHandle, hexKey string) error {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return errors.Wrap(err, "failed to parse secp256k1 private key")
	}
	o.Add(handle, key)
	return nil
}

func (o *Secp256k1Oracle) Add(handle KeyHandle, key *ecdsa.PrivateKey) {
	o.mu.Lock()
	o.keys[handle] = key
	o.mu.Unlock()
}

func (o *Secp256k1Oracle) key(handle KeyHandle) (*ecdsa.PrivateKey, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	key, ok := o.keys[handle]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownKey, "%s", handle)
	}
	return key, nil
}

func (o *Secp256k1Oracle) PublicKey(_ context.Context, handle KeyHandle) ([]byte, error) {
	key, err := o.key(handle)
	if err != nil {
		return nil, err
	}
	return crypto.CompressPubkey(&key.PublicKey), nil
}

func (o *Secp256k1Oracle) Sign(_ context.Context, handle KeyHandle, digest []byte) ([]byte, error) {
	key, err := o.key(handle)
	if err != nil {
		return nil, err
	}
	sig, err := crypto.Sign(digest, key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign digest")
	}
	return sig[:SignatureLen], nil
}

// Ed25519Oracle is the Solana-side counterpart of Secp256k1Oracle.
type Ed25519Oracle struct {
	mu   sync.RWMutex
	keys map[KeyHandle]solana.PrivateKey
}

func NewEd25519Oracle() *Ed25519Oracle {
	return &Ed25519Oracle{keys: make(map[KeyHandle]solana.PrivateKey)}
}

func (o *Ed25519Oracle) AddBase58(handle KeyHandle, b58 string) error {
	key, err := solana.PrivateKeyFromBase58(b58)
	if err != nil {
		return errors.Wrap(err, "failed to parse ed25519 private key")
	}
	o.Add(handle, key)
	return nil
}

func (o *Ed25519Oracle) Add(handle KeyHandle, key solana.PrivateKey) {
	o.mu.Lock()
	o.keys[handle] = key
	o.mu.Unlock()
}

func (o *Ed25519Oracle) key(handle KeyHandle) (solana.PrivateKey, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	key, ok := o.keys[handle]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownKey, "%s", handle)
	}
	return key, nil
}

func (o *Ed25519Oracle) PublicKey(_ context.Context, handle KeyHandle) ([]byte, error) {
	key, err := o.key(handle)
	if err != nil {
		return nil, err
	}
	return key.PublicKey().Bytes(), nil
}

func (o *Ed25519Oracle) Sign(_ context.Context, handle KeyHandle, message []byte) ([]byte, error) {
	key, err := o.key(handle)
	if err != nil {
		return nil, err
	}
	sig, err := key.Sign(message)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign message")
	}
	return sig[:], nil
}
