package poolclient

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"poolpulse/internal/contract"
	"poolpulse/internal/model"
)

// GetReserves reads the point-in-time reserve snapshot for a pool,
// degrading to zero reserves when the pool does not exist yet.
func (c *Client) GetReserves(ctx context.Context, token common.Address) (model.Reserve, error) {
	return safeRead(ctx, c, "getReserves", model.ZeroReserve(), func(ctx context.Context) (model.Reserve, error) {
		values, err := c.callExchange(ctx, "getReserves", token)
		if err != nil {
			return model.Reserve{}, err
		}
		tokenReserve, err := contract.AsBigInt(values[0])
		if err != nil {
			return model.Reserve{}, fmt.Errorf("token reserve: %w", err)
		}
		ethReserve, err := contract.AsBigInt(values[1])
		if err != nil {
			return model.Reserve{}, fmt.Errorf("eth reserve: %w", err)
		}
		return model.Reserve{
			TokenReserve: tokenReserve.String(),
			EthReserve:   ethReserve.String(),
		}, nil
	})
}

// readAmount runs a single-value uint256 exchange read with a "0"
// fallback.
func (c *Client) readAmount(ctx context.Context, method string, token common.Address) (string, error) {
	return safeRead(ctx, c, method, "0", func(ctx context.Context) (string, error) {
		values, err := c.callExchange(ctx, method, token)
		if err != nil {
			return "", err
		}
		amount, err := contract.AsBigInt(values[0])
		if err != nil {
			return "", err
		}
		return amount.String(), nil
	})
}

// GetBuyPrice reads the current buy price in wei per whole token.
func (c *Client) GetBuyPrice(ctx context.Context, token common.Address) (string, error) {
	return c.readAmount(ctx, "getBuyPrice", token)
}

// GetSellPrice reads the current sell price in wei per whole token.
func (c *Client) GetSellPrice(ctx context.Context, token common.Address) (string, error) {
	return c.readAmount(ctx, "getSellPrice", token)
}

// GetTokenRatio reads the pool's token/ETH ratio.
func (c *Client) GetTokenRatio(ctx context.Context, token common.Address) (string, error) {
	return c.readAmount(ctx, "getTokenRatio", token)
}

// GetTotalFees reads cumulative fees collected for the pool.
func (c *Client) GetTotalFees(ctx context.Context, token common.Address) (string, error) {
	return c.readAmount(ctx, "getTotalFees", token)
}

// GetTotalPoolFee reads the pool's current fee balance.
func (c *Client) GetTotalPoolFee(ctx context.Context, token common.Address) (string, error) {
	return c.readAmount(ctx, "getTotalPoolFee", token)
}

// GetLastExchangeTimestamp reads the wall-clock time of the pool's most
// recent trade, zero when the pool has never traded.
func (c *Client) GetLastExchangeTimestamp(ctx context.Context, token common.Address) (uint64, error) {
	return safeRead(ctx, c, "getLastExchangeTimestamp", 0, func(ctx context.Context) (uint64, error) {
		values, err := c.callExchange(ctx, "getLastExchangeTimestamp", token)
		if err != nil {
			return 0, err
		}
		ts, err := contract.AsBigInt(values[0])
		if err != nil {
			return 0, err
		}
		return ts.Uint64(), nil
	})
}

// GetPoolFeeEventsCount reads the number of recorded fee accruals.
func (c *Client) GetPoolFeeEventsCount(ctx context.Context, token common.Address) (uint64, error) {
	return safeRead(ctx, c, "getPoolFeeEventsCount", 0, func(ctx context.Context) (uint64, error) {
		values, err := c.callExchange(ctx, "getPoolFeeEventsCount", token)
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

// GetPoolFeeEvents reads the pool's fee accrual history, oldest first.
func (c *Client) GetPoolFeeEvents(ctx context.Context, token common.Address) ([]model.PoolFeesEvent, error) {
	return safeRead(ctx, c, "getPoolFeeEvents", []model.PoolFeesEvent{}, func(ctx context.Context) ([]model.PoolFeesEvent, error) {
		values, err := c.callExchange(ctx, "getPoolFeeEvents", token)
		if err != nil {
			return nil, err
		}
		amounts, err := contract.AsBigIntSlice(values[0])
		if err != nil {
			return nil, fmt.Errorf("amounts: %w", err)
		}
		timestamps, err := contract.AsBigIntSlice(values[1])
		if err != nil {
			return nil, fmt.Errorf("timestamps: %w", err)
		}
		if len(amounts) != len(timestamps) {
			return nil, fmt.Errorf("fee event arity mismatch: %d amounts, %d timestamps", len(amounts), len(timestamps))
		}

		events := make([]model.PoolFeesEvent, 0, len(amounts))
		for i := range amounts {
			events = append(events, model.PoolFeesEvent{
				Amount:    amounts[i].String(),
				Timestamp: timestamps[i].Uint64(),
			})
		}
		return events, nil
	})
}
