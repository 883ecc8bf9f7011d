package poolclient

import (
	"fmt"
	"math/big"

	"poolpulse/internal/model"
)

// Decimal places used for yield and APR strings.
const ratioScale = 18

const secondsPerDay = 24 * 60 * 60

var weiPerEther = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

func parseAmount(value string) (*big.Int, error) {
	if value == "" {
		return big.NewInt(0), nil
	}
	parsed, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount: %s", value)
	}
	return parsed, nil
}

// AvgPrice is the mid price (buy + sell) / 2 in minor units.
func AvgPrice(buyPrice, sellPrice string) (string, error) {
	buy, err := parseAmount(buyPrice)
	if err != nil {
		return "0", err
	}
	sell, err := parseAmount(sellPrice)
	if err != nil {
		return "0", err
	}

	avg := new(big.Int).Add(buy, sell)
	avg.Div(avg, big.NewInt(2))
	return avg.String(), nil
}

// TotalLiquidity values the pool by marking the token leg at the mid
// price and adding the ETH leg directly. The token reserve is converted
// from minor units to whole tokens before multiplying, and the result
// is re-expressed in minor units.
func TotalLiquidity(avgPrice, tokenReserve, ethReserve string) (string, error) {
	avg, err := parseAmount(avgPrice)
	if err != nil {
		return "0", err
	}
	tokens, err := parseAmount(tokenReserve)
	if err != nil {
		return "0", err
	}
	eth, err := parseAmount(ethReserve)
	if err != nil {
		return "0", err
	}

	tokenLeg := new(big.Int).Mul(avg, tokens)
	tokenLeg.Div(tokenLeg, weiPerEther)
	tokenLeg.Add(tokenLeg, eth)
	return tokenLeg.String(), nil
}

// Yield is the realized fee yield over the fee-event window: total fee
// amount divided by window duration in days times total liquidity. A
// window spanning zero time or zero liquidity yields zero rather than a
// degenerate division.
func Yield(events []model.PoolFeesEvent, totalLiquidity string) (string, error) {
	if len(events) < 2 {
		return "0", nil
	}

	liquidity, err := parseAmount(totalLiquidity)
	if err != nil {
		return "0", err
	}
	if liquidity.Sign() == 0 {
		return "0", nil
	}

	first := events[0].Timestamp
	last := events[len(events)-1].Timestamp
	for _, event := range events {
		if event.Timestamp < first {
			first = event.Timestamp
		}
		if event.Timestamp > last {
			last = event.Timestamp
		}
	}
	if last <= first {
		return "0", nil
	}

	total := big.NewInt(0)
	for _, event := range events {
		amount, err := parseAmount(event.Amount)
		if err != nil {
			return "0", err
		}
		total.Add(total, amount)
	}

	days := new(big.Rat).SetFrac64(int64(last-first), secondsPerDay)
	denom := new(big.Rat).SetInt(liquidity)
	denom.Mul(denom, days)

	rate := new(big.Rat).SetInt(total)
	rate.Quo(rate, denom)
	return rate.FloatString(ratioScale), nil
}

// APR annualizes a realized yield as a simple, non-compounding
// percentage: yield * 365 * 100.
func APR(yieldRate string) (string, error) {
	rate, ok := new(big.Rat).SetString(yieldRate)
	if !ok {
		return "0", fmt.Errorf("invalid yield: %s", yieldRate)
	}
	rate.Mul(rate, big.NewRat(365*100, 1))
	return rate.FloatString(ratioScale), nil
}
