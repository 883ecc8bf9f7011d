package poolclient

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"

	"poolpulse/internal/contract"
	"poolpulse/internal/model"
)

// unpackEventData unpacks the non-indexed payload of an exchange event.
func (c *Client) unpackEventData(eventName string, data []byte) ([]interface{}, error) {
	event, ok := c.exchangeABI.Events[eventName]
	if !ok {
		return nil, fmt.Errorf("unknown event: %s", eventName)
	}
	values, err := event.Inputs.NonIndexed().Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", eventName, err)
	}
	return values, nil
}

func asEventBigInt(value interface{}) (*big.Int, error) {
	parsed, ok := value.(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unsupported event value type %T", value)
	}
	return parsed, nil
}

func (c *Client) decodeBuyTrade(ctx context.Context, scan *scanState, log types.Log) (model.BuyTrade, error) {
	if len(log.Topics) != 3 {
		return model.BuyTrade{}, fmt.Errorf("buy log topics: %d", len(log.Topics))
	}
	values, err := c.unpackEventData("TokensBought", log.Data)
	if err != nil {
		return model.BuyTrade{}, err
	}
	if len(values) != 3 {
		return model.BuyTrade{}, fmt.Errorf("unexpected buy values: %d", len(values))
	}

	ethSold, err := asEventBigInt(values[0])
	if err != nil {
		return model.BuyTrade{}, err
	}
	tokensBought, err := asEventBigInt(values[1])
	if err != nil {
		return model.BuyTrade{}, err
	}
	price, err := asEventBigInt(values[2])
	if err != nil {
		return model.BuyTrade{}, err
	}

	ts, err := scan.timestamp(ctx, log.BlockNumber)
	if err != nil {
		return model.BuyTrade{}, err
	}
	token, err := scan.token(ctx, addressFromTopic(log.Topics[1]))
	if err != nil {
		return model.BuyTrade{}, err
	}

	return model.BuyTrade{
		Token:        token,
		Buyer:        addressFromTopic(log.Topics[2]).Hex(),
		EthSold:      ethSold.String(),
		TokensBought: tokensBought.String(),
		Price:        price.String(),
		BlockNumber:  log.BlockNumber,
		TxHash:       log.TxHash.Hex(),
		LogIndex:     uint64(log.Index),
		Timestamp:    ts,
	}, nil
}

func (c *Client) decodeSellTrade(ctx context.Context, scan *scanState, log types.Log) (model.SellTrade, error) {
	if len(log.Topics) != 3 {
		return model.SellTrade{}, fmt.Errorf("sell log topics: %d", len(log.Topics))
	}
	values, err := c.unpackEventData("TokensSold", log.Data)
	if err != nil {
		return model.SellTrade{}, err
	}
	if len(values) != 3 {
		return model.SellTrade{}, fmt.Errorf("unexpected sell values: %d", len(values))
	}

	tokensSold, err := asEventBigInt(values[0])
	if err != nil {
		return model.SellTrade{}, err
	}
	ethBought, err := asEventBigInt(values[1])
	if err != nil {
		return model.SellTrade{}, err
	}
	price, err := asEventBigInt(values[2])
	if err != nil {
		return model.SellTrade{}, err
	}

	ts, err := scan.timestamp(ctx, log.BlockNumber)
	if err != nil {
		return model.SellTrade{}, err
	}
	token, err := scan.token(ctx, addressFromTopic(log.Topics[1]))
	if err != nil {
		return model.SellTrade{}, err
	}

	return model.SellTrade{
		Token:       token,
		Seller:      addressFromTopic(log.Topics[2]).Hex(),
		TokensSold:  tokensSold.String(),
		EthBought:   ethBought.String(),
		Price:       price.String(),
		BlockNumber: log.BlockNumber,
		TxHash:      log.TxHash.Hex(),
		LogIndex:    uint64(log.Index),
		Timestamp:   ts,
	}, nil
}

func (c *Client) decodeSwapTrade(ctx context.Context, scan *scanState, log types.Log) (model.SwapTrade, error) {
	if len(log.Topics) != 3 {
		return model.SwapTrade{}, fmt.Errorf("swap log topics: %d", len(log.Topics))
	}
	values, err := c.unpackEventData("TokensSwapped", log.Data)
	if err != nil {
		return model.SwapTrade{}, err
	}
	if len(values) != 5 {
		return model.SwapTrade{}, fmt.Errorf("unexpected swap values: %d", len(values))
	}

	traderAddr, err := contract.AsAddress(values[0])
	if err != nil {
		return model.SwapTrade{}, err
	}
	tokensSold, err := asEventBigInt(values[1])
	if err != nil {
		return model.SwapTrade{}, err
	}
	tokensBought, err := asEventBigInt(values[2])
	if err != nil {
		return model.SwapTrade{}, err
	}
	soldPrice, err := asEventBigInt(values[3])
	if err != nil {
		return model.SwapTrade{}, err
	}
	boughtPrice, err := asEventBigInt(values[4])
	if err != nil {
		return model.SwapTrade{}, err
	}

	ts, err := scan.timestamp(ctx, log.BlockNumber)
	if err != nil {
		return model.SwapTrade{}, err
	}
	soldToken, err := scan.token(ctx, addressFromTopic(log.Topics[1]))
	if err != nil {
		return model.SwapTrade{}, err
	}
	boughtToken, err := scan.token(ctx, addressFromTopic(log.Topics[2]))
	if err != nil {
		return model.SwapTrade{}, err
	}

	return model.SwapTrade{
		SoldToken:    soldToken,
		BoughtToken:  boughtToken,
		Trader:       traderAddr.Hex(),
		TokensSold:   tokensSold.String(),
		TokensBought: tokensBought.String(),
		SoldPrice:    soldPrice.String(),
		BoughtPrice:  boughtPrice.String(),
		BlockNumber:  log.BlockNumber,
		TxHash:       log.TxHash.Hex(),
		LogIndex:     uint64(log.Index),
		Timestamp:    ts,
	}, nil
}

func (c *Client) decodeDeposit(ctx context.Context, scan *scanState, log types.Log) (model.Deposit, error) {
	if len(log.Topics) != 3 {
		return model.Deposit{}, fmt.Errorf("deposit log topics: %d", len(log.Topics))
	}
	values, err := c.unpackEventData("LiquidityAdded", log.Data)
	if err != nil {
		return model.Deposit{}, err
	}
	if len(values) != 3 {
		return model.Deposit{}, fmt.Errorf("unexpected deposit values: %d", len(values))
	}

	ethAmount, err := asEventBigInt(values[0])
	if err != nil {
		return model.Deposit{}, err
	}
	tokenAmount, err := asEventBigInt(values[1])
	if err != nil {
		return model.Deposit{}, err
	}
	lpMinted, err := asEventBigInt(values[2])
	if err != nil {
		return model.Deposit{}, err
	}

	ts, err := scan.timestamp(ctx, log.BlockNumber)
	if err != nil {
		return model.Deposit{}, err
	}
	token, err := scan.token(ctx, addressFromTopic(log.Topics[1]))
	if err != nil {
		return model.Deposit{}, err
	}

	return model.Deposit{
		Token:       token,
		Provider:    addressFromTopic(log.Topics[2]).Hex(),
		EthAmount:   ethAmount.String(),
		TokenAmount: tokenAmount.String(),
		LPMinted:    lpMinted.String(),
		BlockNumber: log.BlockNumber,
		TxHash:      log.TxHash.Hex(),
		LogIndex:    uint64(log.Index),
		Timestamp:   ts,
	}, nil
}

func (c *Client) decodeWithdraw(ctx context.Context, scan *scanState, log types.Log) (model.Withdraw, error) {
	if len(log.Topics) != 3 {
		return model.Withdraw{}, fmt.Errorf("withdraw log topics: %d", len(log.Topics))
	}
	values, err := c.unpackEventData("LiquidityRemoved", log.Data)
	if err != nil {
		return model.Withdraw{}, err
	}
	if len(values) != 3 {
		return model.Withdraw{}, fmt.Errorf("unexpected withdraw values: %d", len(values))
	}

	ethAmount, err := asEventBigInt(values[0])
	if err != nil {
		return model.Withdraw{}, err
	}
	tokenAmount, err := asEventBigInt(values[1])
	if err != nil {
		return model.Withdraw{}, err
	}
	lpBurned, err := asEventBigInt(values[2])
	if err != nil {
		return model.Withdraw{}, err
	}

	ts, err := scan.timestamp(ctx, log.BlockNumber)
	if err != nil {
		return model.Withdraw{}, err
	}
	token, err := scan.token(ctx, addressFromTopic(log.Topics[1]))
	if err != nil {
		return model.Withdraw{}, err
	}

	return model.Withdraw{
		Token:       token,
		Provider:    addressFromTopic(log.Topics[2]).Hex(),
		EthAmount:   ethAmount.String(),
		TokenAmount: tokenAmount.String(),
		LPBurned:    lpBurned.String(),
		BlockNumber: log.BlockNumber,
		TxHash:      log.TxHash.Hex(),
		LogIndex:    uint64(log.Index),
		Timestamp:   ts,
	}, nil
}
