package evm

import (
	"context"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/meme-bots/go-custody/keys"
	"github.com/meme-bots/go-custody/types"
	"github.com/meme-bots/go-custody/utils"
)

// Call describes one contract or value transfer before nonce and fees are
// known.
type Call struct {
	To       string
	Value    string
	Data     string
	GasLimit uint64
}

// NativeCall validates a value transfer. Amount is in wei and must be
// positive.
func (v *EVM) NativeCall(bill *types.TransferBill) (*Call, error) {
	if _, err := keys.ParseEVMAddress(bill.Recipient); err != nil {
		return nil, err
	}
	amount, err := utils.ParseDecimal(bill.Amount)
	if err != nil {
		return nil, err
	}
	if amount.Sign() == 0 {
		return nil, types.Validation("send native", "amount", bill.Amount, types.ErrInvalidAmount)
	}
	return &Call{To: bill.Recipient, Value: bill.Amount, GasLimit: v.opts.NativeGasLimit}, nil
}

// TokenCall validates a token transfer: the transaction goes to the token
// contract with zero value and transfer(recipient, amount) as data.
func (v *EVM) TokenCall(req *types.TokenTransferRequest) (*Call, error) {
	if _, err := keys.ParseEVMAddress(req.Token); err != nil {
		return nil, err
	}
	amount, err := utils.ParseDecimal(req.Amount)
	if err != nil {
		return nil, err
	}
	if amount.Sign() == 0 {
		return nil, types.Validation("send token", "amount", req.Amount, types.ErrInvalidAmount)
	}
	data, err := EncodeTransfer(req.Recipient, req.Amount)
	if err != nil {
		return nil, err
	}
	return &Call{To: req.Token, Value: "0", Data: hexutil.Encode(data), GasLimit: v.opts.TokenGasLimit}, nil
}

// Build fetches nonce and fee parameters for from and assembles the
// unsigned transaction.
func (v *EVM) Build(ctx context.Context, from common.Address, call *Call) (*DynamicFeeTx, error) {
	nonce, err := v.client.PendingNonce(ctx, from)
	if err != nil {
		return nil, err
	}
	priority, maxFee, err := v.fees(ctx)
	if err != nil {
		return nil, err
	}
	return NewDynamicFeeTx(v.cfg.ChainID, nonce, priority, maxFee, call.GasLimit, call.To, call.Value, call.Data)
}

func (v *EVM) submit(ctx context.Context, call *Call) (*types.TransactResponse, error) {
	from, err := v.signerAddress(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := v.Build(ctx, from, call)
	if err != nil {
		return nil, err
	}
	hash, err := v.finalizer.Finalize(ctx, tx, from)
	if err != nil {
		return nil, err
	}
	return &types.TransactResponse{TxHash: hash}, nil
}

// SendNative transfers bill.Amount wei to bill.Recipient.
func (v *EVM) SendNative(ctx context.Context, bill *types.TransferBill) (*types.TransactResponse, error) {
	call, err := v.NativeCall(bill)
	if err != nil {
		return nil, err
	}
	return v.submit(ctx, call)
}

// SendToken transfers req.Amount base units of req.Token.
func (v *EVM) SendToken(ctx context.Context, req *types.TokenTransferRequest) (*types.TransactResponse, error) {
	call, err := v.TokenCall(req)
	if err != nil {
		return nil, err
	}
	return v.submit(ctx, call)
}

func (v *EVM) swapParams(ctx context.Context, req *types.SwapRequest) (*SwapParams, error) {
	p, err := NewSwapParams(req.TokenIn, req.TokenOut, req.Fee, req.Recipient, req.AmountIn, req.MinAmountOut)
	if err != nil {
		return nil, err
	}
	if p.Recipient == (common.Address{}) {
		if p.Recipient, err = v.signerAddress(ctx); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// QuoteSwap asks the configured quoter how much TokenOut AmountIn buys.
func (v *EVM) QuoteSwap(ctx context.Context, req *types.SwapRequest) (*types.QuoteResponse, error) {
	if v.cfg.SwapQuoter == "" {
		return nil, types.Configuration("quote swap", "swap_quoter", v.cfg.Name, types.ErrChainNotConfigured)
	}
	quoter, err := keys.ParseEVMAddress(v.cfg.SwapQuoter)
	if err != nil {
		return nil, err
	}
	p, err := NewSwapParams(req.TokenIn, req.TokenOut, req.Fee, req.Recipient, req.AmountIn, req.MinAmountOut)
	if err != nil {
		return nil, err
	}
	return v.quote(ctx, quoter, p)
}

func (v *EVM) quote(ctx context.Context, quoter common.Address, p *SwapParams) (*types.QuoteResponse, error) {
	data, err := EncodeQuoteExactInputSingle(p)
	if err != nil {
		return nil, err
	}
	out, err := v.client.Call(ctx, quoter, data)
	if err != nil {
		return nil, err
	}
	amountOut, err := FirstWord(out)
	if err != nil {
		return nil, err
	}
	return &types.QuoteResponse{AmountOut: amountOut}, nil
}

// SwapCall validates and encodes an exact-input swap through the router.
// When MinAmountOut is empty it is derived from a fresh quote less
// SlippageBps.
func (v *EVM) SwapCall(ctx context.Context, req *types.SwapRequest) (*Call, error) {
	if v.cfg.SwapRouter == "" {
		return nil, types.Configuration("swap", "swap_router", v.cfg.Name, types.ErrChainNotConfigured)
	}
	if _, err := keys.ParseEVMAddress(v.cfg.SwapRouter); err != nil {
		return nil, err
	}
	if req.MinAmountOut == "" && req.SlippageBps == 0 {
		return nil, types.Validation("swap", "min_amount_out", "", types.ErrInvalidAmount)
	}
	if req.SlippageBps > 10000 {
		return nil, types.Validation("swap", "slippage_bps", strconv.FormatUint(req.SlippageBps, 10), types.ErrInvalidAmount)
	}
	p, err := v.swapParams(ctx, req)
	if err != nil {
		return nil, err
	}
	if req.MinAmountOut == "" {
		if v.cfg.SwapQuoter == "" {
			return nil, types.Configuration("swap", "swap_quoter", v.cfg.Name, types.ErrChainNotConfigured)
		}
		quoter, err := keys.ParseEVMAddress(v.cfg.SwapQuoter)
		if err != nil {
			return nil, err
		}
		q, err := v.quote(ctx, quoter, p)
		if err != nil {
			return nil, err
		}
		p.AmountOutMinimum = utils.ApplySlippage(q.AmountOut, req.SlippageBps)
	}
	data, err := EncodeExactInputSingle(p)
	if err != nil {
		return nil, err
	}
	return &Call{To: v.cfg.SwapRouter, Value: "0", Data: hexutil.Encode(data), GasLimit: v.opts.SwapGasLimit}, nil
}

// ExecuteSwap submits an exact-input single-pool swap. The router must
// already hold an allowance for AmountIn.
func (v *EVM) ExecuteSwap(ctx context.Context, req *types.SwapRequest) (*types.TransactResponse, error) {
	call, err := v.SwapCall(ctx, req)
	if err != nil {
		return nil, err
	}
	v.logger.Debug().
		Str("token_in", req.TokenIn).
		Str("token_out", req.TokenOut).
		Str("amount_in", req.AmountIn).
		Msg("executing swap")
	return v.submit(ctx, call)
}
