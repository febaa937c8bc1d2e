package main

import (
	"context"

	"github.com/davecgh/go-spew/spew"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"
	"github.com/meme-bots/go-custody/evm"
	"github.com/meme-bots/go-custody/sol"
	"github.com/meme-bots/go-custody/types"
	"github.com/meme-bots/go-custody/utils"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func run(needTarget bool, f func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, needTarget)
		if err != nil {
			return err
		}
		defer a.Close()
		return f(cmd.Context(), a, args)
	}
}

func newTargets() *cobra.Command {
	return &cobra.Command{
		Use:   "targets",
		Short: "List configured chains and networks",
		Args:  cobra.NoArgs,
		RunE: run(false, func(_ context.Context, a *app, _ []string) error {
			reg := a.wallet.Registry()
			return a.print(map[string]interface{}{
				"chains":   reg.Chains(),
				"networks": reg.Networks(),
			})
		}),
	}
}

func newAddress() *cobra.Command {
	return &cobra.Command{
		Use:   "address",
		Short: "Print the wallet address on the target",
		Args:  cobra.NoArgs,
		RunE: run(true, func(ctx context.Context, a *app, _ []string) error {
			addr, err := a.wallet.Address(ctx, a.target)
			if err != nil {
				return err
			}
			return a.print(map[string]string{"target": a.target.String(), "address": addr})
		}),
	}
}

func newBalance() *cobra.Command {
	return &cobra.Command{
		Use:   "balance [address]",
		Short: "Native balance of address, or of the wallet",
		Args:  cobra.MaximumNArgs(1),
		RunE: run(true, func(ctx context.Context, a *app, args []string) error {
			var address string
			if len(args) == 1 {
				address = args[0]
			}
			bal, err := a.wallet.Balance(ctx, a.target, address)
			if err != nil {
				return err
			}
			return a.printBalance(bal)
		}),
	}
}

func newTokenBalance() *cobra.Command {
	var decimals uint8
	cmd := &cobra.Command{
		Use:   "token-balance <token> [owner]",
		Short: "Token balance of owner, or of the wallet",
		Args:  cobra.RangeArgs(1, 2),
		RunE: run(true, func(ctx context.Context, a *app, args []string) error {
			var owner string
			if len(args) == 2 {
				owner = args[1]
			}
			bal, err := a.wallet.TokenBalance(ctx, a.target, owner, args[0], decimals)
			if err != nil {
				return err
			}
			return a.printBalance(bal)
		}),
	}
	cmd.Flags().Uint8Var(&decimals, "decimals", 0, "token decimals for display")
	return cmd
}

func newSendNative() *cobra.Command {
	var dump, human bool
	cmd := &cobra.Command{
		Use:   "send-native <recipient> <amount>",
		Short: "Transfer native value; amount is in base units unless --human",
		Args:  cobra.ExactArgs(2),
		RunE: run(true, func(ctx context.Context, a *app, args []string) error {
			amount := args[1]
			if human {
				var err error
				if amount, err = a.nativeUnits(amount); err != nil {
					return err
				}
			}
			bill := &types.TransferBill{Recipient: args[0], Amount: amount}
			if dump {
				return a.dumpNative(ctx, bill)
			}
			rec, err := a.wallet.SendNative(ctx, a.target, bill)
			if err != nil {
				return err
			}
			return a.print(rec)
		}),
	}
	cmd.Flags().BoolVar(&dump, dumpFlag, false, "print the unsigned transaction instead of sending it")
	cmd.Flags().BoolVar(&human, "human", false, "amount is in whole native units, e.g. 0.25")
	return cmd
}

func newSendToken() *cobra.Command {
	var dump bool
	cmd := &cobra.Command{
		Use:   "send-token <token> <recipient> <amount>",
		Short: "Transfer a token; amount is in base units",
		Args:  cobra.ExactArgs(3),
		RunE: run(true, func(ctx context.Context, a *app, args []string) error {
			req := &types.TokenTransferRequest{Token: args[0], Recipient: args[1], Amount: args[2]}
			if dump {
				return a.dumpToken(ctx, req)
			}
			rec, err := a.wallet.SendToken(ctx, a.target, req)
			if err != nil {
				return err
			}
			return a.print(rec)
		}),
	}
	cmd.Flags().BoolVar(&dump, dumpFlag, false, "print the unsigned transaction instead of sending it")
	return cmd
}

func swapFlags(cmd *cobra.Command, req *types.SwapRequest) {
	cmd.Flags().StringVar(&req.TokenIn, "in", "", "input token")
	cmd.Flags().StringVar(&req.TokenOut, "out", "", "output token")
	cmd.Flags().Uint32Var(&req.Fee, "fee", 3000, "pool fee tier in hundredths of a bip")
	cmd.Flags().StringVar(&req.AmountIn, "amount", "", "input amount in base units")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")
	_ = cmd.MarkFlagRequired("amount")
}

func newQuote() *cobra.Command {
	req := &types.SwapRequest{}
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Quote an exact-input swap",
		Args:  cobra.NoArgs,
		RunE: run(true, func(ctx context.Context, a *app, _ []string) error {
			q, err := a.wallet.QuoteSwap(ctx, a.target, req)
			if err != nil {
				return err
			}
			return a.print(map[string]string{"amountOut": q.AmountOut.String()})
		}),
	}
	swapFlags(cmd, req)
	return cmd
}

func newSwap() *cobra.Command {
	var dump bool
	req := &types.SwapRequest{}
	cmd := &cobra.Command{
		Use:   "swap",
		Short: "Execute an exact-input swap",
		Args:  cobra.NoArgs,
		RunE: run(true, func(ctx context.Context, a *app, _ []string) error {
			if dump {
				return a.dumpSwap(ctx, req)
			}
			rec, err := a.wallet.ExecuteSwap(ctx, a.target, req)
			if err != nil {
				return err
			}
			return a.print(rec)
		}),
	}
	swapFlags(cmd, req)
	cmd.Flags().StringVar(&req.MinAmountOut, "min-out", "", "minimum output in base units")
	cmd.Flags().Uint64Var(&req.SlippageBps, "slippage-bps", 0, "derive the minimum output from a quote")
	cmd.Flags().StringVar(&req.Recipient, "recipient", "", "output recipient, the wallet when empty")
	cmd.Flags().BoolVar(&dump, dumpFlag, false, "print the unsigned transaction instead of sending it")
	return cmd
}

func (a *app) printBalance(bal *types.Balance) error {
	return a.print(map[string]interface{}{
		"raw":      bal.Raw.String(),
		"decimals": bal.Decimals,
		"display":  bal.Display,
		"short":    utils.AbbreviateDecimal(utils.FormatUnits(bal.Raw, bal.Decimals)),
	})
}

func (a *app) nativeUnits(amount string) (string, error) {
	net, err := a.wallet.Network(a.target)
	if err != nil {
		return "", err
	}
	v, err := utils.ParseUnits(amount, net.GetNativeTokenDecimals())
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

func (a *app) evmHandle(ctx context.Context) (*evm.EVM, common.Address, error) {
	net, err := a.wallet.Network(a.target)
	if err != nil {
		return nil, common.Address{}, err
	}
	v, ok := net.(*evm.EVM)
	if !ok {
		return nil, common.Address{}, errors.Errorf("%s is not an EVM chain", a.target)
	}
	addr, err := v.Address(ctx)
	if err != nil {
		return nil, common.Address{}, err
	}
	return v, common.HexToAddress(addr), nil
}

func (a *app) solanaHandle(ctx context.Context) (*sol.Solana, solana.PublicKey, error) {
	net, err := a.wallet.Network(a.target)
	if err != nil {
		return nil, solana.PublicKey{}, err
	}
	s, ok := net.(*sol.Solana)
	if !ok {
		return nil, solana.PublicKey{}, errors.Errorf("%s is not a Solana network", a.target)
	}
	addr, err := s.Address(ctx)
	if err != nil {
		return nil, solana.PublicKey{}, err
	}
	payer, err := solana.PublicKeyFromBase58(addr)
	if err != nil {
		return nil, solana.PublicKey{}, err
	}
	return s, payer, nil
}

func (a *app) dumpEVM(ctx context.Context, call func(v *evm.EVM) (*evm.Call, error)) error {
	v, from, err := a.evmHandle(ctx)
	if err != nil {
		return err
	}
	c, err := call(v)
	if err != nil {
		return err
	}
	tx, err := v.Build(ctx, from, c)
	if err != nil {
		return err
	}
	spew.Fdump(a.out, tx)
	return nil
}

func (a *app) dumpSolana(ctx context.Context, ix func(s *sol.Solana, payer solana.PublicKey) (sol.Instruction, error)) error {
	s, payer, err := a.solanaHandle(ctx)
	if err != nil {
		return err
	}
	in, err := ix(s, payer)
	if err != nil {
		return err
	}
	msg, err := s.Build(ctx, payer, in)
	if err != nil {
		return err
	}
	spew.Fdump(a.out, msg)
	return nil
}

func (a *app) dumpNative(ctx context.Context, bill *types.TransferBill) error {
	if a.target.Type == types.NetworkTypeEVM {
		return a.dumpEVM(ctx, func(v *evm.EVM) (*evm.Call, error) { return v.NativeCall(bill) })
	}
	return a.dumpSolana(ctx, func(s *sol.Solana, payer solana.PublicKey) (sol.Instruction, error) {
		return s.NativeInstruction(payer, bill)
	})
}

func (a *app) dumpToken(ctx context.Context, req *types.TokenTransferRequest) error {
	if a.target.Type == types.NetworkTypeEVM {
		return a.dumpEVM(ctx, func(v *evm.EVM) (*evm.Call, error) { return v.TokenCall(req) })
	}
	return a.dumpSolana(ctx, func(s *sol.Solana, payer solana.PublicKey) (sol.Instruction, error) {
		return s.TokenInstruction(payer, req)
	})
}

func (a *app) dumpSwap(ctx context.Context, req *types.SwapRequest) error {
	if a.target.Type != types.NetworkTypeEVM {
		return types.Configuration("swap", "network", a.target.String(), types.ErrNotImplemented)
	}
	return a.dumpEVM(ctx, func(v *evm.EVM) (*evm.Call, error) { return v.SwapCall(ctx, req) })
}
