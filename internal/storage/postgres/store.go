package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"poolpulse/internal/model"
)

// Store provides Postgres persistence for exported trades and pool
// snapshots.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// UpsertTrades inserts or updates exported trade records, keyed by
// their on-chain identity.
func (s *Store) UpsertTrades(ctx context.Context, trades []model.TradeRecord) error {
	if len(trades) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, trade := range trades {
		batch.Queue(`
			INSERT INTO trades (
				chain_id, kind, token, counter_token, account, amount_in, amount_out,
				price, block_number, tx_hash, log_index, ts, ingested_at, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,now(),now())
			ON CONFLICT (chain_id, block_number, tx_hash, log_index)
			DO UPDATE SET
				kind = EXCLUDED.kind,
				token = EXCLUDED.token,
				counter_token = EXCLUDED.counter_token,
				account = EXCLUDED.account,
				amount_in = EXCLUDED.amount_in,
				amount_out = EXCLUDED.amount_out,
				price = EXCLUDED.price,
				ts = EXCLUDED.ts,
				ingested_at = EXCLUDED.ingested_at,
				updated_at = now()
		`,
			int64(trade.ChainID),
			trade.Kind,
			trade.Token,
			trade.CounterToken,
			trade.Account,
			trade.AmountIn,
			trade.AmountOut,
			trade.Price,
			int64(trade.BlockNumber),
			trade.TxHash,
			int64(trade.LogIndex),
			int64(trade.Timestamp),
			trade.IngestedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range trades {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// UpsertPoolSnapshot inserts or updates the latest aggregate view of a
// pool.
func (s *Store) UpsertPoolSnapshot(ctx context.Context, chainID uint64, pool model.Pool) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO pool_snapshots (
			chain_id, token, symbol, name, decimals, token_reserve, eth_reserve,
			buy_price, sell_price, avg_price, token_ratio, volume_24h,
			total_liquidity, apr, last_exchange_ts, last_updated, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,now(),now())
		ON CONFLICT (chain_id, token)
		DO UPDATE SET
			symbol = EXCLUDED.symbol,
			name = EXCLUDED.name,
			decimals = EXCLUDED.decimals,
			token_reserve = EXCLUDED.token_reserve,
			eth_reserve = EXCLUDED.eth_reserve,
			buy_price = EXCLUDED.buy_price,
			sell_price = EXCLUDED.sell_price,
			avg_price = EXCLUDED.avg_price,
			token_ratio = EXCLUDED.token_ratio,
			volume_24h = EXCLUDED.volume_24h,
			total_liquidity = EXCLUDED.total_liquidity,
			apr = EXCLUDED.apr,
			last_exchange_ts = EXCLUDED.last_exchange_ts,
			last_updated = EXCLUDED.last_updated,
			updated_at = now()
	`,
		int64(chainID),
		pool.Token.Address,
		pool.Token.Symbol,
		pool.Token.Name,
		int16(pool.Token.Decimals),
		pool.Reserve.TokenReserve,
		pool.Reserve.EthReserve,
		pool.BuyPrice,
		pool.SellPrice,
		pool.AvgPrice,
		pool.TokenRatio,
		pool.Volume24h,
		pool.TotalLiquidity,
		pool.APR,
		int64(pool.LastExchangeTimestamp),
		pool.LastUpdated,
	)
	return err
}
