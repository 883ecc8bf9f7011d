package poolclient

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

func TestGetToken(t *testing.T) {
	reader := &fakeReader{}
	client := newTestClient(t, reader, nil)

	d := newDispatcher(client)
	d.returns("decimals", uint8(18))
	d.returns("symbol", "TKN")
	d.returns("name", "Test Token")
	reader.callFn = d.call

	token, err := client.GetToken(context.Background(), testToken)
	if err != nil {
		t.Fatalf("GetToken: %v", err)
	}
	if token.Address != testToken.Hex() {
		t.Errorf("address = %s, want %s", token.Address, testToken.Hex())
	}
	if token.Symbol != "TKN" || token.Name != "Test Token" || token.Decimals != 18 {
		t.Errorf("unexpected metadata: %+v", token)
	}
}

func TestGetTokenBytes32Fallback(t *testing.T) {
	reader := &fakeReader{}
	client := newTestClient(t, reader, nil)

	var symbol, name [32]byte
	copy(symbol[:], "MKR")
	copy(name[:], "Maker")

	reader.callFn = func(msg ethereum.CallMsg) ([]byte, error) {
		selector := msg.Data[:4]
		switch {
		case string(selector) == string(client.erc20ABI.Methods["decimals"].ID):
			return client.erc20ABI.Methods["decimals"].Outputs.Pack(uint8(18))
		case string(selector) == string(client.erc20ABI.Methods["symbol"].ID):
			return client.erc20B32ABI.Methods["symbol"].Outputs.Pack(symbol)
		case string(selector) == string(client.erc20ABI.Methods["name"].ID):
			return client.erc20B32ABI.Methods["name"].Outputs.Pack(name)
		default:
			return nil, fmt.Errorf("execution reverted")
		}
	}

	token, err := client.GetToken(context.Background(), testToken)
	if err != nil {
		t.Fatalf("GetToken: %v", err)
	}
	if token.Symbol != "MKR" {
		t.Errorf("symbol = %q, want MKR", token.Symbol)
	}
	if token.Name != "Maker" {
		t.Errorf("name = %q, want Maker", token.Name)
	}
}

func TestGetTokenSurfacesFailure(t *testing.T) {
	reader := &fakeReader{}
	client := newTestClient(t, reader, nil)

	fatal := errors.New("dial tcp: connection refused")
	reader.callFn = func(ethereum.CallMsg) ([]byte, error) {
		return nil, fatal
	}

	_, err := client.GetToken(context.Background(), testToken)
	if !errors.Is(err, fatal) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestIsPoolInstantiated(t *testing.T) {
	reader := &fakeReader{}
	client := newTestClient(t, reader, nil)
	d := newDispatcher(client)
	reader.callFn = d.call

	d.returns("liquidityToken", common.Address{})
	ok, err := client.IsPoolInstantiated(context.Background(), testToken)
	if err != nil {
		t.Fatalf("IsPoolInstantiated: %v", err)
	}
	if ok {
		t.Fatal("zero LP address must mean uninstantiated")
	}

	d.returns("liquidityToken", testLPToken)
	ok, err = client.IsPoolInstantiated(context.Background(), testToken)
	if err != nil {
		t.Fatalf("IsPoolInstantiated: %v", err)
	}
	if !ok {
		t.Fatal("registered LP address must mean instantiated")
	}
}

func TestIsPoolInstantiatedDegradesRevert(t *testing.T) {
	reader := &fakeReader{}
	client := newTestClient(t, reader, nil)
	reader.callFn = func(ethereum.CallMsg) ([]byte, error) {
		return nil, errors.New("execution reverted")
	}

	ok, err := client.IsPoolInstantiated(context.Background(), testToken)
	if err != nil {
		t.Fatalf("revert must degrade, got %v", err)
	}
	if ok {
		t.Fatal("degraded read must report uninstantiated")
	}
}

func TestGetLPToken(t *testing.T) {
	reader := &fakeReader{}
	client := newTestClient(t, reader, nil)

	d := newDispatcher(client)
	d.returns("liquidityToken", testLPToken)
	d.returns("decimals", uint8(18))
	d.returns("symbol", "TKN-LP")
	d.returns("name", "Test Token LP")
	d.returns("totalSupply", big.NewInt(5000))
	d.handle("balanceOf", func(to common.Address, args []interface{}) ([]interface{}, error) {
		if to != testLPToken {
			return nil, fmt.Errorf("balanceOf against %s", to.Hex())
		}
		if args[0].(common.Address) != testUser {
			return nil, fmt.Errorf("balanceOf for %v", args[0])
		}
		return []interface{}{big.NewInt(42)}, nil
	})
	reader.callFn = d.call

	lp, err := client.GetLPToken(context.Background(), testToken, testUser)
	if err != nil {
		t.Fatalf("GetLPToken: %v", err)
	}
	if lp.Address != testLPToken.Hex() {
		t.Errorf("lp address = %s, want %s", lp.Address, testLPToken.Hex())
	}
	if lp.TotalSupply != "5000" {
		t.Errorf("total supply = %s, want 5000", lp.TotalSupply)
	}
	if lp.Balance != "42" {
		t.Errorf("balance = %s, want 42", lp.Balance)
	}
}

func TestGetLPTokenUnregistered(t *testing.T) {
	reader := &fakeReader{}
	client := newTestClient(t, reader, nil)
	d := newDispatcher(client)
	d.returns("liquidityToken", common.Address{})
	reader.callFn = d.call

	_, err := client.GetLPToken(context.Background(), testToken, testUser)
	if err == nil {
		t.Fatal("expected error for unregistered LP token")
	}
	if !strings.Contains(err.Error(), testToken.Hex()) {
		t.Fatalf("error must name the token, got %v", err)
	}
}

func TestGetUserBalance(t *testing.T) {
	reader := &fakeReader{}
	client := newTestClient(t, reader, nil)
	d := newDispatcher(client)
	d.returns("balanceOf", big.NewInt(777))
	reader.callFn = d.call

	balance, err := client.GetUserBalance(context.Background(), testToken, testUser)
	if err != nil {
		t.Fatalf("GetUserBalance: %v", err)
	}
	if balance != "777" {
		t.Fatalf("balance = %s, want 777", balance)
	}
}
