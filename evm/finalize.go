package evm

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/meme-bots/go-custody/signer"
	"github.com/meme-bots/go-custody/types"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Broadcaster is the slice of Client the finalizer needs.
type Broadcaster interface {
	Endpoint() string
	SendRawTransaction(ctx context.Context, raw []byte) (string, error)
}

// Finalizer turns an unsigned payload into a broadcast transaction. The
// oracle returns r||s only, so the recovery id has to be resolved here.
type Finalizer struct {
	oracle   signer.Oracle
	key      signer.KeyHandle
	node     Broadcaster
	strategy types.RecoveryStrategy
	logger   zerolog.Logger
}

func NewFinalizer(o signer.Oracle, key signer.KeyHandle, node Broadcaster, strategy types.RecoveryStrategy, logger zerolog.Logger) *Finalizer {
	if strategy == "" {
		strategy = types.RecoveryLocal
	}
	return &Finalizer{oracle: o, key: key, node: node, strategy: strategy, logger: logger}
}

// Finalize signs tx and submits it. from is the expected signer; with the
// local strategy the matching candidate is picked by public key recovery and
// broadcast once. The probe strategy, or an unknown signer, submits
// candidate 0 then 1 and keeps the first the node accepts.
func (f *Finalizer) Finalize(ctx context.Context, tx *DynamicFeeTx, from common.Address) (string, error) {
	digest := tx.SigningHash()
	sig, err := signer.Sign(ctx, f.oracle, f.key, digest.Bytes())
	if err != nil {
		return "", err
	}
	candidates, err := Candidates(sig)
	if err != nil {
		return "", err
	}

	if f.strategy == types.RecoveryLocal && from != (common.Address{}) {
		candidate, err := Resolve(digest, candidates, from)
		if err != nil {
			return "", types.Transport("finalize", string(f.key), err)
		}
		return f.broadcast(ctx, tx, candidate)
	}
	return f.probe(ctx, tx, candidates)
}

// Resolve returns the candidate whose recovered address equals from.
func Resolve(digest common.Hash, candidates [2]SignatureCandidate, from common.Address) (SignatureCandidate, error) {
	for _, c := range candidates {
		pub, err := crypto.SigToPub(digest.Bytes(), c.Bytes())
		if err != nil {
			continue
		}
		if crypto.PubkeyToAddress(*pub) == from {
			return c, nil
		}
	}
	return SignatureCandidate{}, errors.Wrapf(types.ErrSignerMismatch, "no recovery id yields %s", from.Hex())
}

func (f *Finalizer) broadcast(ctx context.Context, tx *DynamicFeeTx, c SignatureCandidate) (string, error) {
	hash, err := f.node.SendRawTransaction(ctx, tx.SignedPayload(c))
	if err != nil {
		return "", err
	}
	f.logger.Info().
		Uint64("chain_id", tx.ChainID).
		Uint64("nonce", tx.Nonce).
		Uint8("recovery_id", c.RecoveryID).
		Str("tx", hash).
		Msg("transaction submitted")
	return hash, nil
}

func (f *Finalizer) probe(ctx context.Context, tx *DynamicFeeTx, candidates [2]SignatureCandidate) (string, error) {
	var last error
	attempts := 0
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return "", types.Transport("finalize", f.node.Endpoint(), err)
		}
		attempts++
		hash, err := f.broadcast(ctx, tx, c)
		if err == nil {
			return hash, nil
		}
		last = err
		f.logger.Warn().
			Err(err).
			Uint64("chain_id", tx.ChainID).
			Uint64("nonce", tx.Nonce).
			Uint8("recovery_id", c.RecoveryID).
			Msg("candidate rejected")
	}
	return "", types.BroadcastExhausted("finalize", f.node.Endpoint(), attempts, last)
}
