package poolclient

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"poolpulse/internal/contract"
	"poolpulse/internal/model"
)

// GetPool builds the full aggregate view of one pool. Independent reads
// run concurrently; derived metrics are computed once the raw values
// are in. An uninitialized pool renders as a zero-valued snapshot
// around the token's metadata rather than an error.
func (c *Client) GetPool(ctx context.Context, token, user common.Address) (model.Pool, error) {
	if err := c.checkConnection(); err != nil {
		return model.Pool{}, err
	}

	tokenMeta, err := c.GetToken(ctx, token)
	if err != nil {
		return model.Pool{}, err
	}

	instantiated, err := c.IsPoolInstantiated(ctx, token)
	if err != nil {
		return model.Pool{}, err
	}

	pool := model.Pool{
		Token:          tokenMeta,
		Reserve:        model.ZeroReserve(),
		LPToken:        model.LPToken{TotalSupply: "0", Balance: "0"},
		BuyPrice:       "0",
		SellPrice:      "0",
		AvgPrice:       "0",
		TokenRatio:     "0",
		Volume24h:      "0",
		TotalLiquidity: "0",
		APR:            "0",
		LastUpdated:    c.now().UTC().Format(time.RFC3339),
	}
	if !instantiated {
		return pool, nil
	}

	var feeEvents []model.PoolFeesEvent

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		reserve, err := c.GetReserves(groupCtx, token)
		if err != nil {
			return err
		}
		pool.Reserve = reserve
		return nil
	})
	group.Go(func() error {
		price, err := c.GetBuyPrice(groupCtx, token)
		if err != nil {
			return err
		}
		pool.BuyPrice = price
		return nil
	})
	group.Go(func() error {
		price, err := c.GetSellPrice(groupCtx, token)
		if err != nil {
			return err
		}
		pool.SellPrice = price
		return nil
	})
	group.Go(func() error {
		ratio, err := c.GetTokenRatio(groupCtx, token)
		if err != nil {
			return err
		}
		pool.TokenRatio = ratio
		return nil
	})
	group.Go(func() error {
		ts, err := c.GetLastExchangeTimestamp(groupCtx, token)
		if err != nil {
			return err
		}
		pool.LastExchangeTimestamp = ts
		return nil
	})
	group.Go(func() error {
		lpToken, err := c.GetLPToken(groupCtx, token, user)
		if err != nil {
			return err
		}
		pool.LPToken = lpToken
		return nil
	})
	group.Go(func() error {
		events, err := c.GetPoolFeeEvents(groupCtx, token)
		if err != nil {
			return err
		}
		feeEvents = events
		return nil
	})
	group.Go(func() error {
		volume, err := c.Get24hVolume(groupCtx, token)
		if err != nil {
			return err
		}
		pool.Volume24h = volume
		return nil
	})
	if err := group.Wait(); err != nil {
		return model.Pool{}, fmt.Errorf("pool %s: %w", token.Hex(), err)
	}

	pool.AvgPrice, err = AvgPrice(pool.BuyPrice, pool.SellPrice)
	if err != nil {
		return model.Pool{}, fmt.Errorf("pool %s: %w", token.Hex(), err)
	}
	pool.TotalLiquidity, err = TotalLiquidity(pool.AvgPrice, pool.Reserve.TokenReserve, pool.Reserve.EthReserve)
	if err != nil {
		return model.Pool{}, fmt.Errorf("pool %s: %w", token.Hex(), err)
	}
	yieldRate, err := Yield(feeEvents, pool.TotalLiquidity)
	if err != nil {
		return model.Pool{}, fmt.Errorf("pool %s: %w", token.Hex(), err)
	}
	pool.APR, err = APR(yieldRate)
	if err != nil {
		return model.Pool{}, fmt.Errorf("pool %s: %w", token.Hex(), err)
	}

	return pool, nil
}

// GetPools builds the paginated list view. Rows come back in the same
// order as the exchange's token address list; per-row reads fan out
// concurrently. A non-nil user additionally resolves each row's LP
// position.
func (c *Client) GetPools(ctx context.Context, offset, limit uint64, user *common.Address) ([]model.RowPool, error) {
	if err := c.checkConnection(); err != nil {
		return nil, err
	}

	addresses, err := safeRead(ctx, c, "getTokenAddresses", []common.Address{}, func(ctx context.Context) ([]common.Address, error) {
		values, err := c.callExchange(ctx, "getTokenAddresses", new(big.Int).SetUint64(offset), new(big.Int).SetUint64(limit))
		if err != nil {
			return nil, err
		}
		return contract.AsAddressSlice(values[0])
	})
	if err != nil {
		return nil, err
	}

	rows := make([]model.RowPool, len(addresses))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, token := range addresses {
		i, token := i, token
		group.Go(func() error {
			row, err := c.getRowPool(groupCtx, token, user)
			if err != nil {
				return fmt.Errorf("pool row %s: %w", token.Hex(), err)
			}
			rows[i] = row
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	return rows, nil
}

// GetPoolsCount reads how many tokens the exchange lists, for
// paginating GetPools.
func (c *Client) GetPoolsCount(ctx context.Context) (uint64, error) {
	return safeRead(ctx, c, "getTokensCount", 0, func(ctx context.Context) (uint64, error) {
		values, err := c.callExchange(ctx, "getTokensCount")
		if err != nil {
			return 0, err
		}
		count, err := contract.AsBigInt(values[0])
		if err != nil {
			return 0, err
		}
		return count.Uint64(), nil
	})
}

func (c *Client) getRowPool(ctx context.Context, token common.Address, user *common.Address) (model.RowPool, error) {
	row := model.RowPool{BuyPrice: "0", SellPrice: "0", TotalLiquidity: "0"}

	var reserve model.Reserve

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		meta, err := c.GetToken(groupCtx, token)
		if err != nil {
			return err
		}
		row.Token = meta
		return nil
	})
	group.Go(func() error {
		price, err := c.GetBuyPrice(groupCtx, token)
		if err != nil {
			return err
		}
		row.BuyPrice = price
		return nil
	})
	group.Go(func() error {
		price, err := c.GetSellPrice(groupCtx, token)
		if err != nil {
			return err
		}
		row.SellPrice = price
		return nil
	})
	group.Go(func() error {
		snapshot, err := c.GetReserves(groupCtx, token)
		if err != nil {
			return err
		}
		reserve = snapshot
		return nil
	})
	if user != nil {
		group.Go(func() error {
			instantiated, err := c.IsPoolInstantiated(groupCtx, token)
			if err != nil || !instantiated {
				return err
			}
			lpToken, err := c.GetLPToken(groupCtx, token, *user)
			if err != nil {
				return err
			}
			row.LPToken = &lpToken
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return model.RowPool{}, err
	}

	avg, err := AvgPrice(row.BuyPrice, row.SellPrice)
	if err != nil {
		return model.RowPool{}, err
	}
	row.TotalLiquidity, err = TotalLiquidity(avg, reserve.TokenReserve, reserve.EthReserve)
	if err != nil {
		return model.RowPool{}, err
	}

	return row, nil
}
