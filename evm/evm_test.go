package evm

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/meme-bots/go-custody/types"
	"github.com/meme-bots/go-custody/utils"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testRouter = "0x2626664c2603336e57b271c5c0b26f421741e481"
	testQuoter = "0x3d4e44eb1374240ce5f1b871ab261cd16335b76a"
)

func newTestEVM(t *testing.T, node *fakeNode, strategy types.RecoveryStrategy) *EVM {
	o, _ := newTestOracle(t)
	logger := zerolog.Nop()
	cache, err := utils.NewKeyCache()
	require.NoError(t, err)
	v, err := NewEVM(&types.ChainConfig{
		ChainID:             8453,
		Name:                "Base",
		RPC:                 testEndpoint,
		NativeTokenSymbol:   "ETH",
		NativeTokenDecimals: 18,
		SwapRouter:          testRouter,
		SwapQuoter:          testQuoter,
	}, node.transport(), o, testHandle, Options{Strategy: strategy, Logger: &logger, KeyCache: cache})
	require.NoError(t, err)
	return v
}

func pipelineNode(t *testing.T) *fakeNode {
	return newFakeNode().
		reply("eth_getTransactionCount", "0x7").
		reply("eth_gasPrice", "0x3b9aca00").
		acceptAll(t)
}

func TestNewEVMRequiresEndpoint(t *testing.T) {
	_, err := NewEVM(&types.ChainConfig{ChainID: 1}, newFakeNode().transport(), nil, testHandle, Options{})
	assert.True(t, errors.Is(err, types.ErrConfiguration))
	assert.True(t, errors.Is(err, types.ErrChainNotConfigured))
}

func TestEVMAddress(t *testing.T) {
	v := newTestEVM(t, newFakeNode(), types.RecoveryLocal)
	addr, err := v.Address(context.Background())
	require.NoError(t, err)
	_, from := newTestOracle(t)
	assert.Equal(t, hexutil.Encode(from.Bytes()), addr)
	assert.True(t, v.CheckAddress(addr))
	assert.False(t, v.CheckAddress("0x1234"))
	assert.Equal(t, types.NetworkTypeEVM, v.GetType())
	assert.Equal(t, "ETH", v.GetNativeTokenSymbol())
	assert.Equal(t, uint8(18), v.GetNativeTokenDecimals())
}

func TestSendNative(t *testing.T) {
	node := pipelineNode(t)
	v := newTestEVM(t, node, types.RecoveryLocal)

	resp, err := v.SendNative(context.Background(), &types.TransferBill{Recipient: testRecipient, Amount: "1000000000000000"})
	require.NoError(t, err)
	require.Len(t, node.sent, 1)

	tx := node.sent[0]
	assert.Equal(t, tx.Hash().Hex(), resp.TxHash)
	assert.Equal(t, uint64(8453), tx.ChainId().Uint64())
	assert.Equal(t, uint64(7), tx.Nonce())
	assert.Equal(t, uint64(21000), tx.Gas())
	assert.Equal(t, int64(2_000_000_000), tx.GasFeeCap().Int64())
	assert.Equal(t, int64(1_500_000_000), tx.GasTipCap().Int64())
	assert.Equal(t, int64(1000000000000000), tx.Value().Int64())
	assert.Equal(t, common.HexToAddress(testRecipient), *tx.To())
	assert.Empty(t, tx.Data())
	assert.Equal(t, 1, node.count("eth_getTransactionCount"))
}

func TestSendNativeClampsPriorityFee(t *testing.T) {
	node := newFakeNode().
		reply("eth_getTransactionCount", "0x0").
		reply("eth_gasPrice", "0x5f5e100").
		acceptAll(t)
	v := newTestEVM(t, node, types.RecoveryLocal)

	_, err := v.SendNative(context.Background(), &types.TransferBill{Recipient: testRecipient, Amount: "1"})
	require.NoError(t, err)
	require.Len(t, node.sent, 1)
	assert.Equal(t, int64(200_000_000), node.sent[0].GasFeeCap().Int64())
	assert.Equal(t, int64(200_000_000), node.sent[0].GasTipCap().Int64())
}

func TestSendNativeRejectsOverflowingGasPrice(t *testing.T) {
	node := newFakeNode().
		reply("eth_getTransactionCount", "0x0").
		reply("eth_gasPrice", "0xffffffffffffffff").
		acceptAll(t)
	v := newTestEVM(t, node, types.RecoveryLocal)

	_, err := v.SendNative(context.Background(), &types.TransferBill{Recipient: testRecipient, Amount: "1"})
	require.Error(t, err)
	assert.Equal(t, types.KindTransport, types.KindOf(err))
	assert.True(t, errors.Is(err, hexutil.ErrUint64Range))
	assert.Empty(t, node.sent)
}

func TestSendNativeValidatesBeforeNetwork(t *testing.T) {
	node := pipelineNode(t)
	v := newTestEVM(t, node, types.RecoveryLocal)
	ctx := context.Background()

	_, err := v.SendNative(ctx, &types.TransferBill{Recipient: "0xdead", Amount: "1"})
	assert.True(t, errors.Is(err, types.ErrInvalidAddress))

	_, err = v.SendNative(ctx, &types.TransferBill{Recipient: testRecipient, Amount: "0"})
	assert.True(t, errors.Is(err, types.ErrInvalidAmount))

	_, err = v.SendNative(ctx, &types.TransferBill{Recipient: testRecipient, Amount: "-1"})
	assert.True(t, errors.Is(err, types.ErrValidation))

	assert.Empty(t, node.calls)
}

func TestSendNativeNonceFailure(t *testing.T) {
	node := newFakeNode().reply("eth_gasPrice", "0x1").acceptAll(t)
	v := newTestEVM(t, node, types.RecoveryLocal)

	_, err := v.SendNative(context.Background(), &types.TransferBill{Recipient: testRecipient, Amount: "1"})
	assert.Equal(t, types.KindTransport, types.KindOf(err))
	assert.True(t, errors.Is(err, types.ErrRPC))
	assert.Zero(t, node.count("eth_gasPrice"))
	assert.Empty(t, node.sent)
}

func TestSendToken(t *testing.T) {
	node := pipelineNode(t)
	v := newTestEVM(t, node, types.RecoveryProbe)

	resp, err := v.SendToken(context.Background(), &types.TokenTransferRequest{Token: tokenB, Recipient: testRecipient, Amount: "2500000"})
	require.NoError(t, err)
	require.NotEmpty(t, node.sent)

	tx := node.sent[len(node.sent)-1]
	assert.Equal(t, tx.Hash().Hex(), resp.TxHash)
	assert.Equal(t, common.HexToAddress(tokenB), *tx.To())
	assert.Zero(t, tx.Value().Sign())
	assert.Equal(t, uint64(100000), tx.Gas())

	data, err := EncodeTransfer(testRecipient, "2500000")
	require.NoError(t, err)
	assert.Equal(t, data, tx.Data())
}

func TestGetBalances(t *testing.T) {
	word := hexutil.Encode(common.LeftPadBytes(big.NewInt(4200).Bytes(), 32))
	node := newFakeNode().
		on("eth_getBalance", func(params []interface{}) (interface{}, error) {
			assert.Equal(t, testRecipient, params[0])
			assert.Equal(t, "latest", params[1])
			return "0xde0b6b3a7640000", nil
		}).
		on("eth_call", func(params []interface{}) (interface{}, error) {
			msg := params[0].(map[string]interface{})
			assert.Equal(t, tokenB, msg["to"])
			return word, nil
		})
	v := newTestEVM(t, node, types.RecoveryLocal)
	ctx := context.Background()

	bal, err := v.GetBalance(ctx, &types.GetBalanceRequest{Address: testRecipient})
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000", bal.String())

	tok, err := v.GetTokenBalance(ctx, &types.GetTokenBalanceRequest{Token: tokenB})
	require.NoError(t, err)
	assert.Equal(t, int64(4200), tok.Int64())
}

func TestQuoteSwap(t *testing.T) {
	word := hexutil.Encode(common.LeftPadBytes(big.NewInt(3_000_000).Bytes(), 32))
	node := newFakeNode().on("eth_call", func(params []interface{}) (interface{}, error) {
		msg := params[0].(map[string]interface{})
		assert.Equal(t, testQuoter, msg["to"])
		return word, nil
	})
	v := newTestEVM(t, node, types.RecoveryLocal)

	q, err := v.QuoteSwap(context.Background(), &types.SwapRequest{TokenIn: tokenA, TokenOut: tokenB, Fee: FeeTierLow, AmountIn: "1000000000000000"})
	require.NoError(t, err)
	assert.Equal(t, int64(3_000_000), q.AmountOut.Int64())
}

func TestExecuteSwapWithSlippage(t *testing.T) {
	word := hexutil.Encode(common.LeftPadBytes(big.NewInt(3_000_000).Bytes(), 32))
	node := pipelineNode(t).reply("eth_call", word)
	v := newTestEVM(t, node, types.RecoveryLocal)
	_, from := newTestOracle(t)

	_, err := v.ExecuteSwap(context.Background(), &types.SwapRequest{
		TokenIn:     tokenA,
		TokenOut:    tokenB,
		Fee:         FeeTierLow,
		AmountIn:    "1000000000000000",
		SlippageBps: 50,
	})
	require.NoError(t, err)
	require.Len(t, node.sent, 1)

	tx := node.sent[0]
	assert.Equal(t, common.HexToAddress(testRouter), *tx.To())
	assert.Equal(t, uint64(300000), tx.Gas())

	p, err := NewSwapParams(tokenA, tokenB, FeeTierLow, hexutil.Encode(from.Bytes()), "1000000000000000", "2985000")
	require.NoError(t, err)
	want, err := EncodeExactInputSingle(p)
	require.NoError(t, err)
	assert.Equal(t, want, tx.Data())
}

func TestExecuteSwapRequiresBound(t *testing.T) {
	node := pipelineNode(t)
	v := newTestEVM(t, node, types.RecoveryLocal)

	_, err := v.ExecuteSwap(context.Background(), &types.SwapRequest{TokenIn: tokenA, TokenOut: tokenB, Fee: FeeTierLow, AmountIn: "1"})
	assert.True(t, errors.Is(err, types.ErrValidation))
	assert.Empty(t, node.calls)
}

func TestExecuteSwapWithoutRouter(t *testing.T) {
	o, _ := newTestOracle(t)
	node := pipelineNode(t)
	v, err := NewEVM(&types.ChainConfig{ChainID: 1, RPC: testEndpoint}, node.transport(), o, testHandle, Options{})
	require.NoError(t, err)

	_, err = v.ExecuteSwap(context.Background(), &types.SwapRequest{TokenIn: tokenA, TokenOut: tokenB, Fee: FeeTierLow, AmountIn: "1", MinAmountOut: "1"})
	assert.True(t, errors.Is(err, types.ErrConfiguration))
	assert.Empty(t, node.calls)
}
