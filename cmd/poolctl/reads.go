package main

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"poolpulse/internal/poolclient"
	"poolpulse/internal/storage/postgres"
)

func parseAddressArg(name, input string) (common.Address, error) {
	input = strings.TrimSpace(input)
	if !common.IsHexAddress(input) {
		return common.Address{}, fmt.Errorf("invalid %s address: %s", name, input)
	}
	return common.HexToAddress(input), nil
}

func optionalAddressFlag(cmd *cobra.Command, flag string) (*common.Address, error) {
	value, _ := cmd.Flags().GetString(flag)
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	addr, err := parseAddressArg(flag, value)
	if err != nil {
		return nil, err
	}
	return &addr, nil
}

func registerReadCommands(root *cobra.Command) {
	poolCmd := &cobra.Command{
		Use:   "pool <token>",
		Short: "Show the aggregate view of one pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			app, cleanup, err := setup(ctx, cmd, false)
			if err != nil {
				return err
			}
			defer cleanup()

			token, err := parseAddressArg("token", args[0])
			if err != nil {
				return err
			}
			user := common.Address{}
			if app.cfg.User != "" {
				user, err = parseAddressArg("user", app.cfg.User)
				if err != nil {
					return err
				}
			}

			pool, err := app.client.GetPool(ctx, token, user)
			if err != nil {
				return err
			}

			if app.cfg.PGDSN != "" {
				pg, err := postgres.NewStore(ctx, app.cfg.PGDSN)
				if err != nil {
					return fmt.Errorf("connect postgres: %w", err)
				}
				defer pg.Close()
				if err := pg.UpsertPoolSnapshot(ctx, app.cfg.ChainID, pool); err != nil {
					return fmt.Errorf("upsert pool snapshot: %w", err)
				}
			}

			return printJSON(pool)
		},
	}
	poolCmd.Flags().String("user", "", "user address for LP balance")
	poolCmd.Flags().String("pg-dsn", "", "Postgres DSN for persisting the snapshot")

	poolsCmd := &cobra.Command{
		Use:   "pools",
		Short: "List pools as paginated rows",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			app, cleanup, err := setup(ctx, cmd, false)
			if err != nil {
				return err
			}
			defer cleanup()

			offset, _ := cmd.Flags().GetUint64("offset")
			limit, _ := cmd.Flags().GetUint64("limit")

			var user *common.Address
			if app.cfg.User != "" {
				addr, err := parseAddressArg("user", app.cfg.User)
				if err != nil {
					return err
				}
				user = &addr
			}

			rows, err := app.client.GetPools(ctx, offset, limit, user)
			if err != nil {
				return err
			}
			return printJSON(rows)
		},
	}
	poolsCmd.Flags().Uint64("offset", 0, "pagination offset")
	poolsCmd.Flags().Uint64("limit", 20, "pagination limit")
	poolsCmd.Flags().String("user", "", "user address for LP balances")

	volumeCmd := &cobra.Command{
		Use:   "volume <token>",
		Short: "Show the pool's trailing 24h trade volume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			app, cleanup, err := setup(ctx, cmd, false)
			if err != nil {
				return err
			}
			defer cleanup()

			token, err := parseAddressArg("token", args[0])
			if err != nil {
				return err
			}

			volume, err := app.client.Get24hVolume(ctx, token)
			if err != nil {
				return err
			}
			return printJSON(map[string]string{"token": token.Hex(), "volume_24h": volume})
		},
	}

	historyCmd := &cobra.Command{
		Use:       "history <buys|sells|swaps|deposits|withdraws>",
		Short:     "List historical trade or liquidity events",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"buys", "sells", "swaps", "deposits", "withdraws"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			app, cleanup, err := setup(ctx, cmd, false)
			if err != nil {
				return err
			}
			defer cleanup()

			token, err := optionalAddressFlag(cmd, "token")
			if err != nil {
				return err
			}
			account, err := optionalAddressFlag(cmd, "account")
			if err != nil {
				return err
			}
			from, _ := cmd.Flags().GetUint64("from")
			to, _ := cmd.Flags().GetUint64("to")

			filter := poolclient.HistoryFilter{
				Token:     token,
				Account:   account,
				FromBlock: from,
				ToBlock:   to,
			}

			switch args[0] {
			case "buys":
				trades, err := app.client.GetBuyTrades(ctx, filter)
				if err != nil {
					return err
				}
				return printJSON(trades)
			case "sells":
				trades, err := app.client.GetSellTrades(ctx, filter)
				if err != nil {
					return err
				}
				return printJSON(trades)
			case "swaps":
				trades, err := app.client.GetSwapTrades(ctx, filter)
				if err != nil {
					return err
				}
				return printJSON(trades)
			case "deposits":
				deposits, err := app.client.GetDeposits(ctx, filter)
				if err != nil {
					return err
				}
				return printJSON(deposits)
			case "withdraws":
				withdraws, err := app.client.GetWithdraws(ctx, filter)
				if err != nil {
					return err
				}
				return printJSON(withdraws)
			default:
				return fmt.Errorf("unknown history kind: %s", args[0])
			}
		},
	}
	historyCmd.Flags().String("token", "", "filter by token address")
	historyCmd.Flags().String("account", "", "filter by trader/provider address")
	historyCmd.Flags().Uint64("from", 0, "start block (inclusive)")
	historyCmd.Flags().Uint64("to", 0, "end block (inclusive), 0 means latest")

	root.AddCommand(poolCmd, poolsCmd, volumeCmd, historyCmd)
}
