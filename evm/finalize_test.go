package evm

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	gtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/meme-bots/go-custody/signer"
	"github.com/meme-bots/go-custody/types"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHandle signer.KeyHandle = "hot-wallet"

func newTestOracle(t *testing.T) (*signer.Secp256k1Oracle, common.Address) {
	o := signer.NewSecp256k1Oracle()
	require.NoError(t, o.AddHex(testHandle, testPrivateKey))
	key, err := crypto.HexToECDSA(testPrivateKey)
	require.NoError(t, err)
	return o, crypto.PubkeyToAddress(key.PublicKey)
}

func testTx(t *testing.T) *DynamicFeeTx {
	tx, err := NewDynamicFeeTx(1, 3, 1_000_000_000, 2_000_000_000, 21000, testRecipient, "12345", "")
	require.NoError(t, err)
	return tx
}

// expectedRecoveryID is the id a full 65-byte signature carries for tx.
func expectedRecoveryID(t *testing.T, tx *DynamicFeeTx) int64 {
	key, err := crypto.HexToECDSA(testPrivateKey)
	require.NoError(t, err)
	sig, err := crypto.Sign(tx.SigningHash().Bytes(), key)
	require.NoError(t, err)
	return int64(sig[64])
}

func TestFinalizeProbeSecondCandidate(t *testing.T) {
	o, from := newTestOracle(t)
	node := newFakeNode()
	node.acceptRecoveryID(t, 1)
	f := NewFinalizer(o, testHandle, NewClient(node.transport(), testEndpoint), types.RecoveryProbe, zerolog.Nop())

	tx := testTx(t)
	hash, err := f.Finalize(context.Background(), tx, from)
	require.NoError(t, err)
	require.Len(t, node.sent, 2)
	assert.Equal(t, node.sent[1].Hash().Hex(), hash)

	v, _, _ := node.sent[0].RawSignatureValues()
	assert.Zero(t, v.Int64())
}

func TestFinalizeProbeExhausted(t *testing.T) {
	o, from := newTestOracle(t)
	node := newFakeNode()
	node.acceptRecoveryID(t, 5)
	f := NewFinalizer(o, testHandle, NewClient(node.transport(), testEndpoint), types.RecoveryProbe, zerolog.Nop())

	_, err := f.Finalize(context.Background(), testTx(t), from)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrBroadcastExhausted))
	assert.True(t, errors.Is(err, types.ErrRPC))
	assert.Equal(t, types.KindBroadcastExhausted, types.KindOf(err))
	assert.Equal(t, 2, node.count("eth_sendRawTransaction"))

	var e *types.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, 2, e.Attempts)
}

func TestFinalizeLocalBroadcastsOnce(t *testing.T) {
	o, from := newTestOracle(t)
	tx := testTx(t)
	want := expectedRecoveryID(t, tx)

	node := newFakeNode()
	node.acceptRecoveryID(t, want)
	f := NewFinalizer(o, testHandle, NewClient(node.transport(), testEndpoint), types.RecoveryLocal, zerolog.Nop())

	hash, err := f.Finalize(context.Background(), tx, from)
	require.NoError(t, err)
	require.Len(t, node.sent, 1)
	assert.Equal(t, node.sent[0].Hash().Hex(), hash)

	v, _, _ := node.sent[0].RawSignatureValues()
	assert.Equal(t, want, v.Int64())
	sender, err := gtypes.Sender(gtypes.LatestSignerForChainID(big.NewInt(1)), node.sent[0])
	require.NoError(t, err)
	assert.Equal(t, from, sender)
}

func TestFinalizeLocalSignerMismatch(t *testing.T) {
	o, _ := newTestOracle(t)
	node := newFakeNode()
	node.acceptRecoveryID(t, 0)
	f := NewFinalizer(o, testHandle, NewClient(node.transport(), testEndpoint), types.RecoveryLocal, zerolog.Nop())

	_, err := f.Finalize(context.Background(), testTx(t), common.HexToAddress(testRecipient))
	assert.True(t, errors.Is(err, types.ErrSignerMismatch))
	assert.Zero(t, node.count("eth_sendRawTransaction"))
}

func TestFinalizeSigningFailure(t *testing.T) {
	node := newFakeNode()
	f := NewFinalizer(signer.NewSecp256k1Oracle(), "missing", NewClient(node.transport(), testEndpoint), types.RecoveryProbe, zerolog.Nop())

	_, err := f.Finalize(context.Background(), testTx(t), common.Address{})
	assert.True(t, errors.Is(err, types.ErrSigningFailed))
	assert.Equal(t, types.KindTransport, types.KindOf(err))
	assert.Empty(t, node.calls)
}

func TestResolve(t *testing.T) {
	key, err := crypto.HexToECDSA(testPrivateKey)
	require.NoError(t, err)
	from := crypto.PubkeyToAddress(key.PublicKey)
	digest := crypto.Keccak256Hash([]byte("payload"))

	sig, err := crypto.Sign(digest.Bytes(), key)
	require.NoError(t, err)
	candidates, err := Candidates(sig[:64])
	require.NoError(t, err)

	c, err := Resolve(digest, candidates, from)
	require.NoError(t, err)
	assert.Equal(t, sig[64], c.RecoveryID)
}
