package main

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"poolpulse/internal/model"
	"poolpulse/internal/poolclient"
	"poolpulse/internal/storage"
	"poolpulse/internal/storage/postgres"
)

func registerExportCommand(root *cobra.Command) {
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export trade and liquidity history to JSONL and optionally Postgres",
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			return runExport(ctx, app, token)
		},
	}

	exportCmd.Flags().String("token", "", "restrict the export to one token")
	exportCmd.Flags().Uint64("from", 0, "start block (inclusive)")
	exportCmd.Flags().Uint64("to", 0, "end block (inclusive), 0 means latest")
	exportCmd.Flags().String("out", "./data/trades.jsonl", "JSONL output path")
	exportCmd.Flags().String("checkpoint", "./data/checkpoint.json", "checkpoint file path")
	exportCmd.Flags().Bool("checkpoint-enabled", true, "resume from the checkpoint file")
	exportCmd.Flags().String("pg-dsn", "", "Postgres DSN for the trades sink")

	root.AddCommand(exportCmd)
}

// runExport walks the block range in batch-size windows, projecting
// each window's events into trade records. The checkpoint advances
// after every window, so an interrupted run resumes at the next window
// rather than retrying finished work.
func runExport(ctx context.Context, app *app, token *common.Address) error {
	cfg := app.cfg

	fromBlock := cfg.FromBlock
	toBlock := cfg.ToBlock
	if toBlock == 0 {
		latest, err := app.chain.LatestBlockNumber(ctx)
		if err != nil {
			return fmt.Errorf("latest block: %w", err)
		}
		toBlock = latest
	}

	checkpoints := storage.NewCheckpointStore(cfg.Checkpoint, cfg.CheckpointEnabled)
	cp, found, err := checkpoints.Load()
	if err != nil {
		return err
	}
	if found && cp.LastScannedBlock >= fromBlock {
		fromBlock = cp.LastScannedBlock + 1
		app.logger.Info("resuming from checkpoint",
			zap.Uint64("last_scanned", cp.LastScannedBlock),
			zap.Uint64("from", fromBlock))
	}
	if fromBlock > toBlock {
		app.logger.Info("nothing to export",
			zap.Uint64("from", fromBlock),
			zap.Uint64("to", toBlock))
		return nil
	}

	var sink storage.Storage = storage.NewJsonlStorage(cfg.Out)

	var pg *postgres.Store
	if cfg.PGDSN != "" {
		pg, err = postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pg.Close()
	}

	batchSize := cfg.BatchSize
	if batchSize == 0 {
		batchSize = poolclient.DefaultLogBatchSize
	}

	total := 0
	for start := fromBlock; start <= toBlock; start += batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := start + batchSize - 1
		if end > toBlock {
			end = toBlock
		}

		records, err := collectWindow(ctx, app, token, start, end)
		if err != nil {
			return fmt.Errorf("scan blocks %d-%d: %w", start, end, err)
		}

		if len(records) > 0 {
			if err := sink.PutTradeBatch(records); err != nil {
				return err
			}
			if pg != nil {
				if err := pg.UpsertTrades(ctx, records); err != nil {
					return fmt.Errorf("upsert trades: %w", err)
				}
			}
		}

		if err := checkpoints.Save(end); err != nil {
			return err
		}

		total += len(records)
		app.logger.Info("exported window",
			zap.Uint64("from", start),
			zap.Uint64("to", end),
			zap.Int("records", len(records)),
			zap.Int("total", total))
	}

	app.logger.Info("export complete",
		zap.Uint64("from", fromBlock),
		zap.Uint64("to", toBlock),
		zap.Int("records", total))
	return nil
}

// collectWindow fetches every event kind for one block window and
// flattens them into normalized trade records.
func collectWindow(ctx context.Context, app *app, token *common.Address, from, to uint64) ([]model.TradeRecord, error) {
	filter := poolclient.HistoryFilter{Token: token, FromBlock: from, ToBlock: to}
	ingestedAt := time.Now().UTC().Format(time.RFC3339)
	chainID := app.cfg.ChainID

	var records []model.TradeRecord

	buys, err := app.client.GetBuyTrades(ctx, filter)
	if err != nil {
		return nil, err
	}
	for _, t := range buys {
		records = append(records, model.TradeRecord{
			ChainID:     chainID,
			Kind:        model.TradeKindBuy,
			Token:       t.Token.Address,
			Account:     t.Buyer,
			AmountIn:    t.EthSold,
			AmountOut:   t.TokensBought,
			Price:       t.Price,
			BlockNumber: t.BlockNumber,
			TxHash:      t.TxHash,
			LogIndex:    t.LogIndex,
			Timestamp:   t.Timestamp,
			IngestedAt:  ingestedAt,
		})
	}

	sells, err := app.client.GetSellTrades(ctx, filter)
	if err != nil {
		return nil, err
	}
	for _, t := range sells {
		records = append(records, model.TradeRecord{
			ChainID:     chainID,
			Kind:        model.TradeKindSell,
			Token:       t.Token.Address,
			Account:     t.Seller,
			AmountIn:    t.TokensSold,
			AmountOut:   t.EthBought,
			Price:       t.Price,
			BlockNumber: t.BlockNumber,
			TxHash:      t.TxHash,
			LogIndex:    t.LogIndex,
			Timestamp:   t.Timestamp,
			IngestedAt:  ingestedAt,
		})
	}

	swaps, err := app.client.GetSwapTrades(ctx, filter)
	if err != nil {
		return nil, err
	}
	for _, t := range swaps {
		records = append(records, model.TradeRecord{
			ChainID:      chainID,
			Kind:         model.TradeKindSwap,
			Token:        t.SoldToken.Address,
			CounterToken: t.BoughtToken.Address,
			Account:      t.Trader,
			AmountIn:     t.TokensSold,
			AmountOut:    t.TokensBought,
			Price:        t.SoldPrice,
			BlockNumber:  t.BlockNumber,
			TxHash:       t.TxHash,
			LogIndex:     t.LogIndex,
			Timestamp:    t.Timestamp,
			IngestedAt:   ingestedAt,
		})
	}

	deposits, err := app.client.GetDeposits(ctx, filter)
	if err != nil {
		return nil, err
	}
	for _, d := range deposits {
		records = append(records, model.TradeRecord{
			ChainID:     chainID,
			Kind:        model.TradeKindDeposit,
			Token:       d.Token.Address,
			Account:     d.Provider,
			AmountIn:    d.TokenAmount,
			AmountOut:   d.LPMinted,
			BlockNumber: d.BlockNumber,
			TxHash:      d.TxHash,
			LogIndex:    d.LogIndex,
			Timestamp:   d.Timestamp,
			IngestedAt:  ingestedAt,
		})
	}

	withdraws, err := app.client.GetWithdraws(ctx, filter)
	if err != nil {
		return nil, err
	}
	for _, w := range withdraws {
		records = append(records, model.TradeRecord{
			ChainID:     chainID,
			Kind:        model.TradeKindWithdraw,
			Token:       w.Token.Address,
			Account:     w.Provider,
			AmountIn:    w.LPBurned,
			AmountOut:   w.TokenAmount,
			BlockNumber: w.BlockNumber,
			TxHash:      w.TxHash,
			LogIndex:    w.LogIndex,
			Timestamp:   w.Timestamp,
			IngestedAt:  ingestedAt,
		})
	}

	return records, nil
}
