package poolclient

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"strings"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"poolpulse/internal/model"
)

type sentTx struct {
	to    common.Address
	data  []byte
	value *big.Int
}

// fakeSender records submitted transactions and mines them instantly.
type fakeSender struct {
	mu      sync.Mutex
	sent    []sentTx
	sendErr error
	waitErr error
}

func (f *fakeSender) From() common.Address {
	return testUser
}

func (f *fakeSender) Send(_ context.Context, to common.Address, data []byte, value *big.Int) (common.Hash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return common.Hash{}, f.sendErr
	}
	f.sent = append(f.sent, sentTx{to: to, data: data, value: value})
	return common.BigToHash(big.NewInt(int64(len(f.sent)))), nil
}

func (f *fakeSender) WaitMined(context.Context, common.Hash) (*types.Receipt, error) {
	if f.waitErr != nil {
		return nil, f.waitErr
	}
	return &types.Receipt{Status: types.ReceiptStatusSuccessful}, nil
}

func (f *fakeSender) transactions() []sentTx {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sentTx, len(f.sent))
	copy(out, f.sent)
	return out
}

func TestDepositApprovesThenSubmits(t *testing.T) {
	sender := &fakeSender{}
	client := newTestClient(t, &fakeReader{}, sender)

	result, err := client.Deposit(context.Background(), model.DepositRequest{
		Token:       testToken.Hex(),
		TokenAmount: "1000",
		EthAmount:   "500",
	})
	if err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	if !result.Success || result.Phase != PhaseComplete {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.TxHash == "" {
		t.Fatal("missing tx hash")
	}

	txs := sender.transactions()
	if len(txs) != 2 {
		t.Fatalf("got %d transactions, want approve + addLiquidity", len(txs))
	}
	if txs[0].to != testToken {
		t.Errorf("approve sent to %s, want the token", txs[0].to.Hex())
	}
	if !bytes.Equal(txs[0].data[:4], client.erc20ABI.Methods["approve"].ID) {
		t.Error("first transaction is not an approve")
	}
	if txs[1].to != testExchange {
		t.Errorf("addLiquidity sent to %s, want the exchange", txs[1].to.Hex())
	}
	if !bytes.Equal(txs[1].data[:4], client.exchangeABI.Methods["addLiquidity"].ID) {
		t.Error("second transaction is not addLiquidity")
	}
	if txs[1].value == nil || txs[1].value.String() != "500" {
		t.Errorf("attached value = %v, want 500", txs[1].value)
	}
}

func TestDepositApprovalFailureStopsBeforeSubmit(t *testing.T) {
	sender := &fakeSender{waitErr: errors.New("transaction reverted")}
	client := newTestClient(t, &fakeReader{}, sender)

	result, err := client.Deposit(context.Background(), model.DepositRequest{
		Token:       testToken.Hex(),
		TokenAmount: "1000",
		EthAmount:   "500",
	})
	if err == nil {
		t.Fatal("expected deposit failure")
	}
	if !strings.HasPrefix(err.Error(), "deposit failed") {
		t.Fatalf("error must carry the operation name, got %v", err)
	}
	if result.Success || result.Phase != PhaseFailed {
		t.Fatalf("unexpected result: %+v", result)
	}
	if !strings.Contains(result.Error, PhaseApproving) {
		t.Fatalf("result must record the failing phase, got %q", result.Error)
	}
	if len(sender.transactions()) != 1 {
		t.Fatalf("primary write must not run after a failed approval, got %d transactions", len(sender.transactions()))
	}
}

func TestBuySkipsApproval(t *testing.T) {
	sender := &fakeSender{}
	client := newTestClient(t, &fakeReader{}, sender)

	result, err := client.Buy(context.Background(), model.BuyRequest{
		Token:     testToken.Hex(),
		EthAmount: "250",
	})
	if err != nil {
		t.Fatalf("Buy: %v", err)
	}
	if !result.Success {
		t.Fatalf("unexpected result: %+v", result)
	}

	txs := sender.transactions()
	if len(txs) != 1 {
		t.Fatalf("got %d transactions, want 1 (no approval for the native asset)", len(txs))
	}
	if !bytes.Equal(txs[0].data[:4], client.exchangeABI.Methods["buyTokens"].ID) {
		t.Error("transaction is not buyTokens")
	}
	if txs[0].value == nil || txs[0].value.String() != "250" {
		t.Errorf("attached value = %v, want 250", txs[0].value)
	}
}

func TestSellApprovesToken(t *testing.T) {
	sender := &fakeSender{}
	client := newTestClient(t, &fakeReader{}, sender)

	_, err := client.Sell(context.Background(), model.SellRequest{
		Token:       testToken.Hex(),
		TokenAmount: "1000",
	})
	if err != nil {
		t.Fatalf("Sell: %v", err)
	}

	txs := sender.transactions()
	if len(txs) != 2 {
		t.Fatalf("got %d transactions, want approve + sellTokens", len(txs))
	}
	if txs[0].to != testToken {
		t.Errorf("approve sent to %s, want the token", txs[0].to.Hex())
	}
	if !bytes.Equal(txs[1].data[:4], client.exchangeABI.Methods["sellTokens"].ID) {
		t.Error("second transaction is not sellTokens")
	}
}

func TestSwapApprovesSoldToken(t *testing.T) {
	sender := &fakeSender{}
	client := newTestClient(t, &fakeReader{}, sender)

	_, err := client.Swap(context.Background(), model.SwapRequest{
		SoldToken:   testToken.Hex(),
		BoughtToken: testToken2.Hex(),
		Amount:      "100",
	})
	if err != nil {
		t.Fatalf("Swap: %v", err)
	}

	txs := sender.transactions()
	if len(txs) != 2 {
		t.Fatalf("got %d transactions, want approve + swapTokens", len(txs))
	}
	if txs[0].to != testToken {
		t.Errorf("approve sent to %s, want the sold token", txs[0].to.Hex())
	}
	if !bytes.Equal(txs[1].data[:4], client.exchangeABI.Methods["swapTokens"].ID) {
		t.Error("second transaction is not swapTokens")
	}
}

func TestWithdrawApprovesLPToken(t *testing.T) {
	reader := &fakeReader{}
	sender := &fakeSender{}
	client := newTestClient(t, reader, sender)
	d := newDispatcher(client)
	d.returns("liquidityToken", testLPToken)
	reader.callFn = d.call

	_, err := client.Withdraw(context.Background(), model.WithdrawRequest{
		Token:    testToken.Hex(),
		LPAmount: "300",
	})
	if err != nil {
		t.Fatalf("Withdraw: %v", err)
	}

	txs := sender.transactions()
	if len(txs) != 2 {
		t.Fatalf("got %d transactions, want approve + removeLiquidity", len(txs))
	}
	if txs[0].to != testLPToken {
		t.Errorf("approve sent to %s, want the LP token", txs[0].to.Hex())
	}
	if !bytes.Equal(txs[1].data[:4], client.exchangeABI.Methods["removeLiquidity"].ID) {
		t.Error("second transaction is not removeLiquidity")
	}
}

func TestWithdrawUnregisteredPool(t *testing.T) {
	reader := &fakeReader{}
	sender := &fakeSender{}
	client := newTestClient(t, reader, sender)
	d := newDispatcher(client)
	d.returns("liquidityToken", common.Address{})
	reader.callFn = d.call

	_, err := client.Withdraw(context.Background(), model.WithdrawRequest{
		Token:    testToken.Hex(),
		LPAmount: "300",
	})
	if err == nil {
		t.Fatal("expected withdraw failure for unregistered pool")
	}
	if len(sender.transactions()) != 0 {
		t.Fatal("no transaction may be sent without a registered LP token")
	}
}

func TestInitializePoolAttachesEth(t *testing.T) {
	sender := &fakeSender{}
	client := newTestClient(t, &fakeReader{}, sender)

	result, err := client.InitializePool(context.Background(), model.InitPoolRequest{
		Token:       testToken.Hex(),
		TokenAmount: "1000",
		EthAmount:   "900",
	})
	if err != nil {
		t.Fatalf("InitializePool: %v", err)
	}
	if result.Phase != PhaseComplete {
		t.Fatalf("phase = %s, want %s", result.Phase, PhaseComplete)
	}

	txs := sender.transactions()
	if len(txs) != 2 {
		t.Fatalf("got %d transactions, want approve + initializePool", len(txs))
	}
	if !bytes.Equal(txs[1].data[:4], client.exchangeABI.Methods["initializePool"].ID) {
		t.Error("second transaction is not initializePool")
	}
	if txs[1].value == nil || txs[1].value.String() != "900" {
		t.Errorf("attached value = %v, want 900", txs[1].value)
	}
}

func TestMutationRequiresSender(t *testing.T) {
	client := newTestClient(t, &fakeReader{}, nil)

	result, err := client.Buy(context.Background(), model.BuyRequest{
		Token:     testToken.Hex(),
		EthAmount: "100",
	})
	if err == nil {
		t.Fatal("expected failure without a sender")
	}
	if !strings.HasPrefix(err.Error(), "buy failed") {
		t.Fatalf("error must carry the operation name, got %v", err)
	}
	if result.Success || result.Phase != PhaseFailed {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestMutationRejectsMalformedAmount(t *testing.T) {
	sender := &fakeSender{}
	client := newTestClient(t, &fakeReader{}, sender)

	_, err := client.Deposit(context.Background(), model.DepositRequest{
		Token:       testToken.Hex(),
		TokenAmount: "not-a-number",
		EthAmount:   "500",
	})
	if err == nil {
		t.Fatal("expected validation failure")
	}
	if len(sender.transactions()) != 0 {
		t.Fatal("nothing may be sent for a malformed request")
	}
}

func TestMutationRejectsNegativeAmount(t *testing.T) {
	sender := &fakeSender{}
	client := newTestClient(t, &fakeReader{}, sender)

	_, err := client.Sell(context.Background(), model.SellRequest{
		Token:       testToken.Hex(),
		TokenAmount: "-5",
	})
	if err == nil {
		t.Fatal("expected validation failure")
	}
	if len(sender.transactions()) != 0 {
		t.Fatal("nothing may be sent for a malformed request")
	}
}
