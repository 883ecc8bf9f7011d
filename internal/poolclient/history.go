package poolclient

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"golang.org/x/sync/errgroup"

	"poolpulse/internal/model"
)

// DefaultLogBatchSize bounds each historical log query. Public nodes
// reject or truncate overly large block ranges, so scans partition into
// batches of this many blocks.
const DefaultLogBatchSize = 999

// HistoryFilter narrows a historical event query. A nil Token matches
// every pool; a nil Account matches every trader. ToBlock zero means
// the latest block.
type HistoryFilter struct {
	Token     *common.Address
	Account   *common.Address
	FromBlock uint64
	ToBlock   uint64
}

// blockRange is an inclusive block range.
type blockRange struct {
	from uint64
	to   uint64
}

// splitRange partitions [from, to] into batches of size batchSize.
func splitRange(from, to, batchSize uint64) ([]blockRange, error) {
	if batchSize == 0 {
		return nil, fmt.Errorf("batch size must be greater than zero")
	}
	if to < from {
		return nil, fmt.Errorf("to block must be >= from block")
	}

	ranges := make([]blockRange, 0)
	start := from
	for start <= to {
		remaining := to - start + 1
		var end uint64
		if remaining <= batchSize {
			end = to
		} else {
			end = start + batchSize - 1
		}
		ranges = append(ranges, blockRange{from: start, to: end})
		if end == to {
			break
		}
		start = end + 1
	}

	return ranges, nil
}

// Block24hAgo binary-searches [0, latest] for the lowest block whose
// timestamp falls within the last 24 hours. Block timestamps are
// monotonically non-decreasing, which keeps the search sound. Returns 0
// when the whole chain is younger than 24 hours.
func (c *Client) Block24hAgo(ctx context.Context) (uint64, error) {
	if err := c.checkConnection(); err != nil {
		return 0, err
	}

	latest, err := c.reader.LatestBlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("latest block: %w", err)
	}

	cutoff := uint64(c.now().Add(-24 * time.Hour).Unix())

	low := int64(0)
	high := int64(latest)
	for low <= high {
		mid := low + (high-low)/2
		ts, err := c.reader.BlockTimestamp(ctx, uint64(mid))
		if err != nil {
			return 0, fmt.Errorf("block timestamp %d: %w", mid, err)
		}
		if ts < cutoff {
			low = mid + 1
		} else {
			high = mid - 1
		}
	}

	return uint64(low), nil
}

// scanState memoizes per-scan lookups so one scan resolves each block
// timestamp and token's metadata at most once.
type scanState struct {
	client      *Client
	resolveMeta bool
	timestamps  map[uint64]uint64
	tokens      map[common.Address]model.Token
}

func (c *Client) newScanState(resolveMeta bool) *scanState {
	return &scanState{
		client:      c,
		resolveMeta: resolveMeta,
		timestamps:  make(map[uint64]uint64),
		tokens:      make(map[common.Address]model.Token),
	}
}

func (s *scanState) timestamp(ctx context.Context, block uint64) (uint64, error) {
	if ts, ok := s.timestamps[block]; ok {
		return ts, nil
	}
	ts, err := s.client.reader.BlockTimestamp(ctx, block)
	if err != nil {
		return 0, fmt.Errorf("block timestamp %d: %w", block, err)
	}
	s.timestamps[block] = ts
	return ts, nil
}

// token resolves per-log token identity. Full metadata is fetched only
// for unfiltered queries, where mixed-token result sets must remain
// self-describing.
func (s *scanState) token(ctx context.Context, addr common.Address) (model.Token, error) {
	if cached, ok := s.tokens[addr]; ok {
		return cached, nil
	}
	if !s.resolveMeta {
		return model.Token{Address: addr.Hex()}, nil
	}
	meta, err := s.client.GetToken(ctx, addr)
	if err != nil {
		return model.Token{}, err
	}
	s.tokens[addr] = meta
	return meta, nil
}

// collectLogs runs the given topic queries over [from, to]. Batches are
// issued sequentially to bound request fan-out against the node;
// within a batch the queries run concurrently. Results preserve block
// order per query.
func (c *Client) collectLogs(ctx context.Context, from, to uint64, queries [][][]common.Hash) ([][]types.Log, error) {
	batches, err := splitRange(from, to, c.batchSize)
	if err != nil {
		return nil, err
	}

	out := make([][]types.Log, len(queries))
	addresses := []common.Address{c.exchange}

	for _, batch := range batches {
		results := make([][]types.Log, len(queries))
		group, groupCtx := errgroup.WithContext(ctx)
		for i, topics := range queries {
			i, topics := i, topics
			group.Go(func() error {
				logs, err := c.reader.FilterLogs(groupCtx, batch.from, batch.to, addresses, topics)
				if err != nil {
					return fmt.Errorf("filter logs [%d, %d]: %w", batch.from, batch.to, err)
				}
				results[i] = logs
				return nil
			})
		}
		if err := group.Wait(); err != nil {
			return nil, err
		}
		for i := range queries {
			out[i] = append(out[i], results[i]...)
		}
	}

	return out, nil
}

func (c *Client) resolveScanWindow(ctx context.Context, filter HistoryFilter) (uint64, uint64, error) {
	to := filter.ToBlock
	if to == 0 {
		latest, err := c.reader.LatestBlockNumber(ctx)
		if err != nil {
			return 0, 0, fmt.Errorf("latest block: %w", err)
		}
		to = latest
	}
	return filter.FromBlock, to, nil
}

func topicFromAddress(addr common.Address) common.Hash {
	return common.BytesToHash(addr.Bytes())
}

func addressFromTopic(topic common.Hash) common.Address {
	return common.BytesToAddress(topic.Bytes())
}

func optionalTopic(addr *common.Address) []common.Hash {
	if addr == nil {
		return nil
	}
	return []common.Hash{topicFromAddress(*addr)}
}

// GetBuyTrades returns projected TokensBought events in block order.
func (c *Client) GetBuyTrades(ctx context.Context, filter HistoryFilter) ([]model.BuyTrade, error) {
	return safeRead(ctx, c, "getBuyTrades", []model.BuyTrade{}, func(ctx context.Context) ([]model.BuyTrade, error) {
		from, to, err := c.resolveScanWindow(ctx, filter)
		if err != nil {
			return nil, err
		}

		event := c.exchangeABI.Events["TokensBought"]
		query := [][]common.Hash{{event.ID}, optionalTopic(filter.Token), optionalTopic(filter.Account)}
		results, err := c.collectLogs(ctx, from, to, [][][]common.Hash{query})
		if err != nil {
			return nil, err
		}

		scan := c.newScanState(filter.Token == nil)
		trades := make([]model.BuyTrade, 0, len(results[0]))
		for _, log := range results[0] {
			trade, err := c.decodeBuyTrade(ctx, scan, log)
			if err != nil {
				return nil, err
			}
			trades = append(trades, trade)
		}
		return trades, nil
	})
}

// GetSellTrades returns projected TokensSold events in block order.
func (c *Client) GetSellTrades(ctx context.Context, filter HistoryFilter) ([]model.SellTrade, error) {
	return safeRead(ctx, c, "getSellTrades", []model.SellTrade{}, func(ctx context.Context) ([]model.SellTrade, error) {
		from, to, err := c.resolveScanWindow(ctx, filter)
		if err != nil {
			return nil, err
		}

		event := c.exchangeABI.Events["TokensSold"]
		query := [][]common.Hash{{event.ID}, optionalTopic(filter.Token), optionalTopic(filter.Account)}
		results, err := c.collectLogs(ctx, from, to, [][][]common.Hash{query})
		if err != nil {
			return nil, err
		}

		scan := c.newScanState(filter.Token == nil)
		trades := make([]model.SellTrade, 0, len(results[0]))
		for _, log := range results[0] {
			trade, err := c.decodeSellTrade(ctx, scan, log)
			if err != nil {
				return nil, err
			}
			trades = append(trades, trade)
		}
		return trades, nil
	})
}

// GetSwapTrades returns projected TokensSwapped events. A swap is
// symmetric, and the log index keys sold and bought tokens separately,
// so a token filter queries both indexed positions independently and
// concatenates the results. The trader is not indexed; an Account
// filter is applied after decoding.
func (c *Client) GetSwapTrades(ctx context.Context, filter HistoryFilter) ([]model.SwapTrade, error) {
	return safeRead(ctx, c, "getSwapTrades", []model.SwapTrade{}, func(ctx context.Context) ([]model.SwapTrade, error) {
		from, to, err := c.resolveScanWindow(ctx, filter)
		if err != nil {
			return nil, err
		}

		event := c.exchangeABI.Events["TokensSwapped"]
		var queries [][][]common.Hash
		if filter.Token != nil {
			tokenTopic := []common.Hash{topicFromAddress(*filter.Token)}
			queries = [][][]common.Hash{
				{{event.ID}, tokenTopic, nil},
				{{event.ID}, nil, tokenTopic},
			}
		} else {
			queries = [][][]common.Hash{{{event.ID}}}
		}

		results, err := c.collectLogs(ctx, from, to, queries)
		if err != nil {
			return nil, err
		}

		scan := c.newScanState(filter.Token == nil)
		trades := make([]model.SwapTrade, 0)
		for _, logs := range results {
			for _, log := range logs {
				trade, err := c.decodeSwapTrade(ctx, scan, log)
				if err != nil {
					return nil, err
				}
				if filter.Account != nil && trade.Trader != filter.Account.Hex() {
					continue
				}
				trades = append(trades, trade)
			}
		}
		return trades, nil
	})
}

// GetDeposits returns projected LiquidityAdded events in block order.
func (c *Client) GetDeposits(ctx context.Context, filter HistoryFilter) ([]model.Deposit, error) {
	return safeRead(ctx, c, "getDeposits", []model.Deposit{}, func(ctx context.Context) ([]model.Deposit, error) {
		from, to, err := c.resolveScanWindow(ctx, filter)
		if err != nil {
			return nil, err
		}

		event := c.exchangeABI.Events["LiquidityAdded"]
		query := [][]common.Hash{{event.ID}, optionalTopic(filter.Token), optionalTopic(filter.Account)}
		results, err := c.collectLogs(ctx, from, to, [][][]common.Hash{query})
		if err != nil {
			return nil, err
		}

		scan := c.newScanState(filter.Token == nil)
		deposits := make([]model.Deposit, 0, len(results[0]))
		for _, log := range results[0] {
			deposit, err := c.decodeDeposit(ctx, scan, log)
			if err != nil {
				return nil, err
			}
			deposits = append(deposits, deposit)
		}
		return deposits, nil
	})
}

// GetWithdraws returns projected LiquidityRemoved events in block order.
func (c *Client) GetWithdraws(ctx context.Context, filter HistoryFilter) ([]model.Withdraw, error) {
	return safeRead(ctx, c, "getWithdraws", []model.Withdraw{}, func(ctx context.Context) ([]model.Withdraw, error) {
		from, to, err := c.resolveScanWindow(ctx, filter)
		if err != nil {
			return nil, err
		}

		event := c.exchangeABI.Events["LiquidityRemoved"]
		query := [][]common.Hash{{event.ID}, optionalTopic(filter.Token), optionalTopic(filter.Account)}
		results, err := c.collectLogs(ctx, from, to, [][][]common.Hash{query})
		if err != nil {
			return nil, err
		}

		scan := c.newScanState(filter.Token == nil)
		withdraws := make([]model.Withdraw, 0, len(results[0]))
		for _, log := range results[0] {
			withdraw, err := c.decodeWithdraw(ctx, scan, log)
			if err != nil {
				return nil, err
			}
			withdraws = append(withdraws, withdraw)
		}
		return withdraws, nil
	})
}

// Get24hVolume accrues the pool's trade volume over the trailing 24
// hours, in wei. Buy and sell volumes add the ETH leg directly; swap
// volumes are imputed by pricing the queried token's leg at the trade's
// own recorded price.
func (c *Client) Get24hVolume(ctx context.Context, token common.Address) (string, error) {
	return safeRead(ctx, c, "get24hVolume", "0", func(ctx context.Context) (string, error) {
		from, err := c.Block24hAgo(ctx)
		if err != nil {
			return "", err
		}
		latest, err := c.reader.LatestBlockNumber(ctx)
		if err != nil {
			return "", fmt.Errorf("latest block: %w", err)
		}
		if from > latest {
			return "0", nil
		}

		buyEvent := c.exchangeABI.Events["TokensBought"]
		sellEvent := c.exchangeABI.Events["TokensSold"]
		swapEvent := c.exchangeABI.Events["TokensSwapped"]
		tokenTopic := []common.Hash{topicFromAddress(token)}

		queries := [][][]common.Hash{
			{{buyEvent.ID}, tokenTopic},
			{{sellEvent.ID}, tokenTopic},
			{{swapEvent.ID}, tokenTopic, nil},
			{{swapEvent.ID}, nil, tokenTopic},
		}

		results, err := c.collectLogs(ctx, from, latest, queries)
		if err != nil {
			return "", err
		}

		volume := big.NewInt(0)
		for _, log := range results[0] {
			values, err := c.unpackEventData(buyEvent.Name, log.Data)
			if err != nil {
				return "", err
			}
			ethSold, err := asEventBigInt(values[0])
			if err != nil {
				return "", err
			}
			volume.Add(volume, ethSold)
		}
		for _, log := range results[1] {
			values, err := c.unpackEventData(sellEvent.Name, log.Data)
			if err != nil {
				return "", err
			}
			ethBought, err := asEventBigInt(values[1])
			if err != nil {
				return "", err
			}
			volume.Add(volume, ethBought)
		}
		// Sold-side swaps: tokensSold at soldPrice.
		for _, log := range results[2] {
			values, err := c.unpackEventData(swapEvent.Name, log.Data)
			if err != nil {
				return "", err
			}
			amount, err := asEventBigInt(values[1])
			if err != nil {
				return "", err
			}
			price, err := asEventBigInt(values[3])
			if err != nil {
				return "", err
			}
			volume.Add(volume, imputedLeg(amount, price))
		}
		// Bought-side swaps: tokensBought at boughtPrice.
		for _, log := range results[3] {
			values, err := c.unpackEventData(swapEvent.Name, log.Data)
			if err != nil {
				return "", err
			}
			amount, err := asEventBigInt(values[2])
			if err != nil {
				return "", err
			}
			price, err := asEventBigInt(values[4])
			if err != nil {
				return "", err
			}
			volume.Add(volume, imputedLeg(amount, price))
		}

		return volume.String(), nil
	})
}

// imputedLeg converts a token amount in minor units to its ETH value at
// the given price.
func imputedLeg(amount, price *big.Int) *big.Int {
	leg := new(big.Int).Mul(amount, price)
	return leg.Div(leg, weiPerEther)
}
