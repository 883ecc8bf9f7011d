package main

import (
	"github.com/spf13/cobra"

	"poolpulse/internal/model"
)

// Mutation commands print the result JSON even when the transaction
// fails so the reached phase is visible; the non-nil error still sets
// the exit code.
func registerMutationCommands(root *cobra.Command) {
	initCmd := &cobra.Command{
		Use:   "init-pool <token> <token-amount> <eth-amount>",
		Short: "Create and seed a pool for an unlisted token",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			app, cleanup, err := setup(ctx, cmd, true)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := app.client.InitializePool(ctx, model.InitPoolRequest{
				Token:       args[0],
				TokenAmount: args[1],
				EthAmount:   args[2],
			})
			if printErr := printJSON(result); printErr != nil {
				return printErr
			}
			return err
		},
	}

	depositCmd := &cobra.Command{
		Use:   "deposit <token> <token-amount> <eth-amount>",
		Short: "Add liquidity to an existing pool",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			app, cleanup, err := setup(ctx, cmd, true)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := app.client.Deposit(ctx, model.DepositRequest{
				Token:       args[0],
				TokenAmount: args[1],
				EthAmount:   args[2],
			})
			if printErr := printJSON(result); printErr != nil {
				return printErr
			}
			return err
		},
	}

	withdrawCmd := &cobra.Command{
		Use:   "withdraw <token> <lp-amount>",
		Short: "Burn LP tokens to remove liquidity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			app, cleanup, err := setup(ctx, cmd, true)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := app.client.Withdraw(ctx, model.WithdrawRequest{
				Token:    args[0],
				LPAmount: args[1],
			})
			if printErr := printJSON(result); printErr != nil {
				return printErr
			}
			return err
		},
	}

	buyCmd := &cobra.Command{
		Use:   "buy <token> <eth-amount>",
		Short: "Buy tokens with attached ETH",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			app, cleanup, err := setup(ctx, cmd, true)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := app.client.Buy(ctx, model.BuyRequest{
				Token:     args[0],
				EthAmount: args[1],
			})
			if printErr := printJSON(result); printErr != nil {
				return printErr
			}
			return err
		},
	}

	sellCmd := &cobra.Command{
		Use:   "sell <token> <token-amount>",
		Short: "Sell tokens for ETH",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			app, cleanup, err := setup(ctx, cmd, true)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := app.client.Sell(ctx, model.SellRequest{
				Token:       args[0],
				TokenAmount: args[1],
			})
			if printErr := printJSON(result); printErr != nil {
				return printErr
			}
			return err
		},
	}

	swapCmd := &cobra.Command{
		Use:   "swap <sold-token> <bought-token> <amount>",
		Short: "Trade one listed token for another",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			app, cleanup, err := setup(ctx, cmd, true)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := app.client.Swap(ctx, model.SwapRequest{
				SoldToken:   args[0],
				BoughtToken: args[1],
				Amount:      args[2],
			})
			if printErr := printJSON(result); printErr != nil {
				return printErr
			}
			return err
		},
	}

	root.AddCommand(initCmd, depositCmd, withdrawCmd, buyCmd, sellCmd, swapCmd)
}
