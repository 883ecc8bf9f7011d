package poolclient

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

func TestGetPoolUninitialized(t *testing.T) {
	reader := &fakeReader{}
	client := newTestClient(t, reader, nil)

	d := newDispatcher(client)
	d.returns("decimals", uint8(18))
	d.returns("symbol", "TKN")
	d.returns("name", "Test Token")
	d.returns("liquidityToken", common.Address{})
	reader.callFn = d.call

	pool, err := client.GetPool(context.Background(), testToken, testUser)
	if err != nil {
		t.Fatalf("GetPool: %v", err)
	}
	if pool.Token.Symbol != "TKN" {
		t.Errorf("token symbol = %q, want TKN", pool.Token.Symbol)
	}
	if pool.BuyPrice != "0" || pool.SellPrice != "0" || pool.TotalLiquidity != "0" || pool.APR != "0" {
		t.Errorf("uninitialized pool must be zero-valued: %+v", pool)
	}
	if pool.Reserve.TokenReserve != "0" || pool.Reserve.EthReserve != "0" {
		t.Errorf("unexpected reserves: %+v", pool.Reserve)
	}
	if pool.LastUpdated == "" {
		t.Error("missing last updated stamp")
	}
}

func TestGetPool(t *testing.T) {
	const base = uint64(1_700_000_000)
	reader := &fakeReader{latest: 10}
	client := newTestClient(t, reader, nil)
	client.now = func() time.Time { return time.Unix(int64(base), 0) }
	reader.timestampFn = func(number uint64) (uint64, error) {
		return base - 100 + number, nil
	}

	weiScale := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

	d := newDispatcher(client)
	d.handle("decimals", func(common.Address, []interface{}) ([]interface{}, error) {
		return []interface{}{uint8(18)}, nil
	})
	d.handle("symbol", func(to common.Address, _ []interface{}) ([]interface{}, error) {
		if to == testLPToken {
			return []interface{}{"TKN-LP"}, nil
		}
		return []interface{}{"TKN"}, nil
	})
	d.handle("name", func(to common.Address, _ []interface{}) ([]interface{}, error) {
		if to == testLPToken {
			return []interface{}{"Test Token LP"}, nil
		}
		return []interface{}{"Test Token"}, nil
	})
	d.returns("liquidityToken", testLPToken)
	d.returns("getReserves", new(big.Int).Mul(big.NewInt(2), weiScale), big.NewInt(700))
	d.returns("getBuyPrice", big.NewInt(200))
	d.returns("getSellPrice", big.NewInt(100))
	d.returns("getTokenRatio", big.NewInt(3))
	d.returns("getLastExchangeTimestamp", big.NewInt(int64(base-5)))
	d.returns("getPoolFeeEvents",
		[]*big.Int{big.NewInt(5), big.NewInt(5)},
		[]*big.Int{big.NewInt(int64(base - secondsPerDay)), big.NewInt(int64(base))},
	)
	d.returns("totalSupply", big.NewInt(9000))
	d.returns("balanceOf", big.NewInt(40))
	reader.callFn = d.call

	pool, err := client.GetPool(context.Background(), testToken, testUser)
	if err != nil {
		t.Fatalf("GetPool: %v", err)
	}

	if pool.BuyPrice != "200" || pool.SellPrice != "100" {
		t.Errorf("prices: buy=%s sell=%s", pool.BuyPrice, pool.SellPrice)
	}
	if pool.AvgPrice != "150" {
		t.Errorf("avg price = %s, want 150", pool.AvgPrice)
	}
	// 2 whole tokens at the 150 mid price plus 700 wei in reserve.
	if pool.TotalLiquidity != "1000" {
		t.Errorf("total liquidity = %s, want 1000", pool.TotalLiquidity)
	}
	// 10 fee units over one day against 1000 liquidity, annualized.
	if pool.APR != "365.000000000000000000" {
		t.Errorf("apr = %s, want 365.000000000000000000", pool.APR)
	}
	if pool.TokenRatio != "3" {
		t.Errorf("token ratio = %s, want 3", pool.TokenRatio)
	}
	if pool.LastExchangeTimestamp != base-5 {
		t.Errorf("last exchange ts = %d, want %d", pool.LastExchangeTimestamp, base-5)
	}
	if pool.LPToken.Symbol != "TKN-LP" || pool.LPToken.TotalSupply != "9000" || pool.LPToken.Balance != "40" {
		t.Errorf("unexpected LP token: %+v", pool.LPToken)
	}
	if pool.Volume24h != "0" {
		t.Errorf("volume = %s, want 0 with no logs", pool.Volume24h)
	}
}

func TestGetPoolsPreservesOrder(t *testing.T) {
	tokens := []common.Address{
		common.HexToAddress("0x00000000000000000000000000000000000000A3"),
		common.HexToAddress("0x00000000000000000000000000000000000000A1"),
		common.HexToAddress("0x00000000000000000000000000000000000000A2"),
	}
	prices := map[common.Address]*big.Int{
		tokens[0]: big.NewInt(11),
		tokens[1]: big.NewInt(22),
		tokens[2]: big.NewInt(33),
	}

	reader := &fakeReader{}
	client := newTestClient(t, reader, nil)

	d := newDispatcher(client)
	d.returns("getTokenAddresses", tokens)
	d.returns("decimals", uint8(18))
	d.returns("symbol", "TKN")
	d.returns("name", "Test Token")
	d.handle("getBuyPrice", func(_ common.Address, args []interface{}) ([]interface{}, error) {
		return []interface{}{prices[args[0].(common.Address)]}, nil
	})
	d.handle("getSellPrice", func(_ common.Address, args []interface{}) ([]interface{}, error) {
		return []interface{}{prices[args[0].(common.Address)]}, nil
	})
	d.returns("getReserves", big.NewInt(0), big.NewInt(0))
	reader.callFn = d.call

	rows, err := client.GetPools(context.Background(), 0, 10, nil)
	if err != nil {
		t.Fatalf("GetPools: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	for i, row := range rows {
		if row.Token.Address != tokens[i].Hex() {
			t.Errorf("row %d = %s, want %s", i, row.Token.Address, tokens[i].Hex())
		}
		if row.BuyPrice != prices[tokens[i]].String() {
			t.Errorf("row %d buy price = %s, want %s", i, row.BuyPrice, prices[tokens[i]])
		}
		if row.LPToken != nil {
			t.Errorf("row %d has an LP position without a user", i)
		}
	}
}

func TestGetPoolsWithUser(t *testing.T) {
	reader := &fakeReader{}
	client := newTestClient(t, reader, nil)

	d := newDispatcher(client)
	d.returns("getTokenAddresses", []common.Address{testToken})
	d.returns("decimals", uint8(18))
	d.returns("symbol", "TKN")
	d.returns("name", "Test Token")
	d.returns("getBuyPrice", big.NewInt(10))
	d.returns("getSellPrice", big.NewInt(10))
	d.returns("getReserves", big.NewInt(0), big.NewInt(0))
	d.returns("liquidityToken", testLPToken)
	d.returns("totalSupply", big.NewInt(100))
	d.returns("balanceOf", big.NewInt(7))
	reader.callFn = d.call

	user := testUser
	rows, err := client.GetPools(context.Background(), 0, 10, &user)
	if err != nil {
		t.Fatalf("GetPools: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].LPToken == nil {
		t.Fatal("expected LP position for the user")
	}
	if rows[0].LPToken.Balance != "7" {
		t.Fatalf("lp balance = %s, want 7", rows[0].LPToken.Balance)
	}
}

func TestGetPoolsCount(t *testing.T) {
	reader := &fakeReader{}
	client := newTestClient(t, reader, nil)
	d := newDispatcher(client)
	d.returns("getTokensCount", big.NewInt(12))
	reader.callFn = d.call

	count, err := client.GetPoolsCount(context.Background())
	if err != nil {
		t.Fatalf("GetPoolsCount: %v", err)
	}
	if count != 12 {
		t.Fatalf("count = %d, want 12", count)
	}
}
