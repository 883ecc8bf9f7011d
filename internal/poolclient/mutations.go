package poolclient

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"poolpulse/internal/model"
)

// Mutation phases. Each operation walks Idle → Approving → Approved →
// Submitting → Complete, or stops at Failed; the reached phase is
// recorded on the result so a future enhancement can retry from the
// last successful phase.
const (
	PhaseIdle       = "idle"
	PhaseApproving  = "approving"
	PhaseApproved   = "approved"
	PhaseSubmitting = "submitting"
	PhaseComplete   = "complete"
	PhaseFailed     = "failed"
)

// approval names the ERC20 leg that must grant the exchange spending
// rights before the primary write.
type approval struct {
	token  common.Address
	amount *big.Int
}

// runMutation drives the two-phase protocol. There is no partial
// success: either both phases complete or the whole operation fails
// with an error wrapped in the operation name.
func (c *Client) runMutation(ctx context.Context, op string, pre *approval, submit func(ctx context.Context) (common.Hash, error)) (model.MutationResult, error) {
	fail := func(phase string, err error) (model.MutationResult, error) {
		wrapped := fmt.Errorf("%s failed: %w", op, err)
		return model.MutationResult{
			Success:   false,
			Phase:     PhaseFailed,
			Timestamp: c.now().UTC().Format(time.RFC3339),
			Error:     fmt.Sprintf("%s (phase %s)", wrapped.Error(), phase),
		}, wrapped
	}

	if c.sender == nil {
		return fail(PhaseIdle, fmt.Errorf("transaction sender not configured"))
	}
	if err := c.checkConnection(); err != nil {
		return fail(PhaseIdle, err)
	}

	phase := PhaseIdle

	if pre != nil {
		phase = PhaseApproving
		data, err := c.erc20ABI.Pack("approve", c.exchange, pre.amount)
		if err != nil {
			return fail(phase, fmt.Errorf("pack approve: %w", err))
		}
		approveHash, err := c.sender.Send(ctx, pre.token, data, nil)
		if err != nil {
			return fail(phase, fmt.Errorf("approve: %w", err))
		}
		if _, err := c.sender.WaitMined(ctx, approveHash); err != nil {
			return fail(phase, fmt.Errorf("approve: %w", err))
		}
		phase = PhaseApproved
		c.logger.Debug("mutation phase", zap.String("op", op), zap.String("phase", phase), zap.String("approve_tx", approveHash.Hex()))
	}

	phase = PhaseSubmitting
	c.logger.Debug("mutation phase", zap.String("op", op), zap.String("phase", phase))
	hash, err := submit(ctx)
	if err != nil {
		return fail(phase, err)
	}

	return model.MutationResult{
		Success:   true,
		TxHash:    hash.Hex(),
		Phase:     PhaseComplete,
		Timestamp: c.now().UTC().Format(time.RFC3339),
	}, nil
}

func parseCallAmount(field, value string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(value, 10)
	if !ok || amount.Sign() < 0 {
		return nil, fmt.Errorf("invalid %s: %q", field, value)
	}
	return amount, nil
}

func parseCallAddress(field, value string) (common.Address, error) {
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("invalid %s: %q", field, value)
	}
	return common.HexToAddress(value), nil
}

// InitializePool creates and seeds a pool for an unlisted token. The
// token deposit needs a prior allowance; the ETH leg rides on the
// primary transaction.
func (c *Client) InitializePool(ctx context.Context, req model.InitPoolRequest) (model.InitPoolResult, error) {
	token, err := parseCallAddress("token", req.Token)
	if err != nil {
		return model.InitPoolResult{}, fmt.Errorf("initialize pool failed: %w", err)
	}
	tokenAmount, err := parseCallAmount("token amount", req.TokenAmount)
	if err != nil {
		return model.InitPoolResult{}, fmt.Errorf("initialize pool failed: %w", err)
	}
	ethAmount, err := parseCallAmount("eth amount", req.EthAmount)
	if err != nil {
		return model.InitPoolResult{}, fmt.Errorf("initialize pool failed: %w", err)
	}

	return c.runMutation(ctx, "initialize pool", &approval{token: token, amount: tokenAmount}, func(ctx context.Context) (common.Hash, error) {
		data, err := c.exchangeABI.Pack("initializePool", token, tokenAmount)
		if err != nil {
			return common.Hash{}, fmt.Errorf("pack initializePool: %w", err)
		}
		return c.sender.Send(ctx, c.exchange, data, ethAmount)
	})
}

// Deposit adds liquidity to an existing pool.
func (c *Client) Deposit(ctx context.Context, req model.DepositRequest) (model.DepositResult, error) {
	token, err := parseCallAddress("token", req.Token)
	if err != nil {
		return model.DepositResult{}, fmt.Errorf("deposit failed: %w", err)
	}
	tokenAmount, err := parseCallAmount("token amount", req.TokenAmount)
	if err != nil {
		return model.DepositResult{}, fmt.Errorf("deposit failed: %w", err)
	}
	ethAmount, err := parseCallAmount("eth amount", req.EthAmount)
	if err != nil {
		return model.DepositResult{}, fmt.Errorf("deposit failed: %w", err)
	}

	return c.runMutation(ctx, "deposit", &approval{token: token, amount: tokenAmount}, func(ctx context.Context) (common.Hash, error) {
		data, err := c.exchangeABI.Pack("addLiquidity", token, tokenAmount)
		if err != nil {
			return common.Hash{}, fmt.Errorf("pack addLiquidity: %w", err)
		}
		return c.sender.Send(ctx, c.exchange, data, ethAmount)
	})
}

// Withdraw burns LP tokens to remove liquidity. The allowance is
// granted on the LP token, which has to be resolved first.
func (c *Client) Withdraw(ctx context.Context, req model.WithdrawRequest) (model.WithdrawResult, error) {
	token, err := parseCallAddress("token", req.Token)
	if err != nil {
		return model.WithdrawResult{}, fmt.Errorf("withdraw failed: %w", err)
	}
	lpAmount, err := parseCallAmount("lp amount", req.LPAmount)
	if err != nil {
		return model.WithdrawResult{}, fmt.Errorf("withdraw failed: %w", err)
	}

	lpAddr, err := c.liquidityTokenAddress(ctx, token)
	if err != nil {
		return model.WithdrawResult{}, fmt.Errorf("withdraw failed: resolve liquidity token: %w", err)
	}
	if (lpAddr == common.Address{}) {
		return model.WithdrawResult{}, fmt.Errorf("withdraw failed: no liquidity pool token registered for %s", token.Hex())
	}

	return c.runMutation(ctx, "withdraw", &approval{token: lpAddr, amount: lpAmount}, func(ctx context.Context) (common.Hash, error) {
		data, err := c.exchangeABI.Pack("removeLiquidity", token, lpAmount)
		if err != nil {
			return common.Hash{}, fmt.Errorf("pack removeLiquidity: %w", err)
		}
		return c.sender.Send(ctx, c.exchange, data, nil)
	})
}

// Buy purchases tokens with attached ETH. The native asset needs no
// allowance, so there is no approval phase.
func (c *Client) Buy(ctx context.Context, req model.BuyRequest) (model.BuyResult, error) {
	token, err := parseCallAddress("token", req.Token)
	if err != nil {
		return model.BuyResult{}, fmt.Errorf("buy failed: %w", err)
	}
	ethAmount, err := parseCallAmount("eth amount", req.EthAmount)
	if err != nil {
		return model.BuyResult{}, fmt.Errorf("buy failed: %w", err)
	}

	return c.runMutation(ctx, "buy", nil, func(ctx context.Context) (common.Hash, error) {
		data, err := c.exchangeABI.Pack("buyTokens", token)
		if err != nil {
			return common.Hash{}, fmt.Errorf("pack buyTokens: %w", err)
		}
		return c.sender.Send(ctx, c.exchange, data, ethAmount)
	})
}

// Sell trades tokens for ETH.
func (c *Client) Sell(ctx context.Context, req model.SellRequest) (model.SellResult, error) {
	token, err := parseCallAddress("token", req.Token)
	if err != nil {
		return model.SellResult{}, fmt.Errorf("sell failed: %w", err)
	}
	tokenAmount, err := parseCallAmount("token amount", req.TokenAmount)
	if err != nil {
		return model.SellResult{}, fmt.Errorf("sell failed: %w", err)
	}

	return c.runMutation(ctx, "sell", &approval{token: token, amount: tokenAmount}, func(ctx context.Context) (common.Hash, error) {
		data, err := c.exchangeABI.Pack("sellTokens", token, tokenAmount)
		if err != nil {
			return common.Hash{}, fmt.Errorf("pack sellTokens: %w", err)
		}
		return c.sender.Send(ctx, c.exchange, data, nil)
	})
}

// Swap trades one listed token for another.
func (c *Client) Swap(ctx context.Context, req model.SwapRequest) (model.SwapResult, error) {
	soldToken, err := parseCallAddress("sold token", req.SoldToken)
	if err != nil {
		return model.SwapResult{}, fmt.Errorf("swap failed: %w", err)
	}
	boughtToken, err := parseCallAddress("bought token", req.BoughtToken)
	if err != nil {
		return model.SwapResult{}, fmt.Errorf("swap failed: %w", err)
	}
	amount, err := parseCallAmount("amount", req.Amount)
	if err != nil {
		return model.SwapResult{}, fmt.Errorf("swap failed: %w", err)
	}

	return c.runMutation(ctx, "swap", &approval{token: soldToken, amount: amount}, func(ctx context.Context) (common.Hash, error) {
		data, err := c.exchangeABI.Pack("swapTokens", soldToken, boughtToken, amount)
		if err != nil {
			return common.Hash{}, fmt.Errorf("pack swapTokens: %w", err)
		}
		return c.sender.Send(ctx, c.exchange, data, nil)
	})
}
