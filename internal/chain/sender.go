package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Gas estimates get a fixed headroom so state drift between estimate
// and inclusion does not starve the call.
const gasHeadroomPercent = 20

// Sender signs and submits contract transactions for a single account.
type Sender struct {
	client  *Client
	key     *ecdsa.PrivateKey
	from    common.Address
	chainID *big.Int
}

// NewSender builds a Sender from a hex-encoded private key.
func NewSender(ctx context.Context, client *Client, privateKeyHex string) (*Sender, error) {
	if client == nil {
		return nil, fmt.Errorf("chain client is nil")
	}

	key, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	chainID, err := client.GetChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("get chain id: %w", err)
	}

	return &Sender{
		client:  client,
		key:     key,
		from:    crypto.PubkeyToAddress(key.PublicKey),
		chainID: chainID,
	}, nil
}

// From returns the sender account address.
func (s *Sender) From() common.Address {
	return s.from
}

// Send signs and submits a contract call with optional attached value,
// returning the transaction hash once the node accepts it.
func (s *Sender) Send(ctx context.Context, to common.Address, data []byte, value *big.Int) (common.Hash, error) {
	nonce, err := s.client.Eth().PendingNonceAt(ctx, s.from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("pending nonce: %w", err)
	}

	gasPrice, err := s.client.Eth().SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("suggest gas price: %w", err)
	}

	msg := ethereum.CallMsg{From: s.from, To: &to, Value: value, Data: data}
	gasLimit, err := s.client.Eth().EstimateGas(ctx, msg)
	if err != nil {
		return common.Hash{}, fmt.Errorf("estimate gas: %w", err)
	}
	gasLimit += gasLimit * gasHeadroomPercent / 100

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    value,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(s.chainID), s.key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("sign tx: %w", err)
	}

	if err := s.client.Eth().SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("send tx: %w", err)
	}

	return signed.Hash(), nil
}

// WaitMined blocks until the transaction is included and returns its
// receipt. A reverted receipt is reported as an error.
func (s *Sender) WaitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	tx, _, err := s.client.Eth().TransactionByHash(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("lookup tx %s: %w", hash.Hex(), err)
	}

	receipt, err := bind.WaitMined(ctx, s.client.Eth(), tx)
	if err != nil {
		return nil, fmt.Errorf("wait mined %s: %w", hash.Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("tx %s reverted", hash.Hex())
	}
	return receipt, nil
}
