// Package signer defines the signing oracle boundary. The oracle holds the
// private keys; the engine only ever sees public keys and 64-byte signatures.
package signer

import (
	"context"

	"github.com/meme-bots/go-custody/types"
	"github.com/pkg/errors"
)

// SignatureLen is r||s for secp256k1 and the raw ed25519 signature.
const SignatureLen = 64

// KeyHandle names a key held by the oracle.
type KeyHandle string

// Oracle signs digests (account chains) or messages (Solana) with a key it
// holds. Signatures carry no recovery identifier.
type Oracle interface {
	PublicKey(ctx context.Context, key KeyHandle) ([]byte, error)
	Sign(ctx context.Context, key KeyHandle, payload []byte) ([]byte, error)
}

// Sign invokes the oracle once and checks the signature shape. Failures are
// transport errors wrapping ErrSigningFailed; there is no retry.
func Sign(ctx context.Context, o Oracle, key KeyHandle, payload []byte) ([]byte, error) {
	sig, err := o.Sign(ctx, key, payload)
	if err != nil {
		return nil, types.Transport("sign", string(key), errors.Wrap(types.ErrSigningFailed, err.Error()))
	}
	if len(sig) != SignatureLen {
		return nil, types.Transport("sign", string(key), errors.Wrapf(types.ErrSigningFailed, "signature length %d", len(sig)))
	}
	return sig, nil
}

// PublicKey fetches the public key for key from the oracle.
func PublicKey(ctx context.Context, o Oracle, key KeyHandle) ([]byte, error) {
	pub, err := o.PublicKey(ctx, key)
	if err != nil {
		return nil, types.Transport("public key", string(key), errors.Wrap(types.ErrSigningFailed, err.Error()))
	}
	return pub, nil
}
