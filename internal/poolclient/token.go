package poolclient

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"poolpulse/internal/contract"
	"poolpulse/internal/model"
)

// GetToken resolves ERC20 identity metadata, fetching decimals, symbol
// and name concurrently. Token existence is assumed once an address is
// supplied, so any failure is fatal.
func (c *Client) GetToken(ctx context.Context, token common.Address) (model.Token, error) {
	if err := c.checkConnection(); err != nil {
		return model.Token{}, err
	}

	out := model.Token{Address: token.Hex()}
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		values, err := contract.Call(groupCtx, c.reader, token, c.erc20ABI, "decimals")
		if err != nil {
			return err
		}
		decimals, err := contract.AsUint8(values[0])
		if err != nil {
			return fmt.Errorf("decimals: %w", err)
		}
		out.Decimals = decimals
		return nil
	})

	group.Go(func() error {
		symbol, err := c.readTokenString(groupCtx, token, "symbol")
		if err != nil {
			return err
		}
		out.Symbol = symbol
		return nil
	})

	group.Go(func() error {
		name, err := c.readTokenString(groupCtx, token, "name")
		if err != nil {
			return err
		}
		out.Name = name
		return nil
	})

	if err := group.Wait(); err != nil {
		return model.Token{}, fmt.Errorf("token metadata %s: %w", token.Hex(), err)
	}
	return out, nil
}

// readTokenString reads a string metadata field, falling back to the
// bytes32 ABI variant used by older token deployments.
func (c *Client) readTokenString(ctx context.Context, token common.Address, method string) (string, error) {
	values, err := contract.Call(ctx, c.reader, token, c.erc20ABI, method)
	if err == nil {
		if text, ok := values[0].(string); ok {
			return text, nil
		}
	}

	values, b32Err := contract.Call(ctx, c.reader, token, c.erc20B32ABI, method)
	if b32Err == nil {
		if text, ok := contract.Bytes32ToString(values[0]); ok {
			return text, nil
		}
	}
	if err == nil {
		err = b32Err
	}
	return "", err
}

// liquidityTokenAddress reads the LP token registered for a token.
func (c *Client) liquidityTokenAddress(ctx context.Context, token common.Address) (common.Address, error) {
	values, err := c.callExchange(ctx, "liquidityToken", token)
	if err != nil {
		return common.Address{}, err
	}
	return contract.AsAddress(values[0])
}

// GetLPToken resolves the pool's liquidity token for a listed ERC20 and
// fetches its metadata, total supply, and the user's balance
// concurrently. A pool without a registered LP token is a fatal,
// descriptive error.
func (c *Client) GetLPToken(ctx context.Context, token, user common.Address) (model.LPToken, error) {
	if err := c.checkConnection(); err != nil {
		return model.LPToken{}, err
	}

	lpAddr, err := c.liquidityTokenAddress(ctx, token)
	if err != nil {
		return model.LPToken{}, fmt.Errorf("resolve liquidity token for %s: %w", token.Hex(), err)
	}
	if (lpAddr == common.Address{}) {
		return model.LPToken{}, fmt.Errorf("no liquidity pool token registered for %s", token.Hex())
	}

	out := model.LPToken{TotalSupply: "0", Balance: "0"}
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		meta, err := c.GetToken(groupCtx, lpAddr)
		if err != nil {
			return err
		}
		out.Token = meta
		return nil
	})

	group.Go(func() error {
		values, err := contract.Call(groupCtx, c.reader, lpAddr, c.erc20ABI, "totalSupply")
		if err != nil {
			return err
		}
		supply, err := contract.AsBigInt(values[0])
		if err != nil {
			return fmt.Errorf("total supply: %w", err)
		}
		out.TotalSupply = supply.String()
		return nil
	})

	group.Go(func() error {
		values, err := contract.Call(groupCtx, c.reader, lpAddr, c.erc20ABI, "balanceOf", user)
		if err != nil {
			return err
		}
		balance, err := contract.AsBigInt(values[0])
		if err != nil {
			return fmt.Errorf("balance: %w", err)
		}
		out.Balance = balance.String()
		return nil
	})

	if err := group.Wait(); err != nil {
		return model.LPToken{}, fmt.Errorf("liquidity token %s: %w", lpAddr.Hex(), err)
	}
	return out, nil
}

// IsPoolInstantiated reports whether a pool exists for the token. The
// pool is uninstantiated iff the registered LP token address is the
// zero address; a read that degrades behaves the same way.
func (c *Client) IsPoolInstantiated(ctx context.Context, token common.Address) (bool, error) {
	lpAddr, err := safeRead(ctx, c, "isPoolInstantiated", common.Address{}, func(ctx context.Context) (common.Address, error) {
		return c.liquidityTokenAddress(ctx, token)
	})
	if err != nil {
		return false, err
	}
	return lpAddr != common.Address{}, nil
}

// GetUserBalance reads the user's ERC20 balance. This answers "can this
// user act", so failures are fatal rather than degraded.
func (c *Client) GetUserBalance(ctx context.Context, token, user common.Address) (string, error) {
	if err := c.checkConnection(); err != nil {
		return "0", err
	}

	values, err := contract.Call(ctx, c.reader, token, c.erc20ABI, "balanceOf", user)
	if err != nil {
		return "0", fmt.Errorf("user balance %s: %w", user.Hex(), err)
	}
	balance, err := contract.AsBigInt(values[0])
	if err != nil {
		return "0", fmt.Errorf("user balance %s: %w", user.Hex(), err)
	}
	return balance.String(), nil
}
