package poolclient

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"poolpulse/internal/contract"
)

// ChainReader is the ledger read surface the client consumes.
type ChainReader interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	FilterLogs(ctx context.Context, fromBlock, toBlock uint64, addresses []common.Address, topics [][]common.Hash) ([]types.Log, error)
	LatestBlockNumber(ctx context.Context) (uint64, error)
	BlockTimestamp(ctx context.Context, number uint64) (uint64, error)
}

// TxSubmitter is the transaction submission surface the client consumes.
type TxSubmitter interface {
	From() common.Address
	Send(ctx context.Context, to common.Address, data []byte, value *big.Int) (common.Hash, error)
	WaitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// Options configures a Client.
type Options struct {
	// ChainID selects the deployment from Exchanges.
	ChainID uint64
	// Exchanges maps chain id to the deployed exchange contract address.
	Exchanges map[uint64]string
	Reader    ChainReader
	// Sender is optional; required only for mutation operations.
	Sender TxSubmitter
	// BatchSize bounds each historical log query's block range.
	BatchSize uint64
	Logger    *zap.Logger
}

// Client is a stateless read/write client for a single exchange
// deployment. Configuration is fixed at construction; every query takes
// explicit parameters and returns a fresh result with no cache across
// calls beyond block-timestamp memoization inside a single scan.
type Client struct {
	reader    ChainReader
	sender    TxSubmitter
	exchange  common.Address
	chainID   uint64
	batchSize uint64
	logger    *zap.Logger
	now       func() time.Time

	exchangeABI abi.ABI
	erc20ABI    abi.ABI
	erc20B32ABI abi.ABI
}

// New validates the chain configuration and builds a Client. It fails
// with ErrUnsupportedChain before any network call when the chain id
// has no deployed exchange address.
func New(opts Options) (*Client, error) {
	addrHex, ok := opts.Exchanges[opts.ChainID]
	if !ok || !common.IsHexAddress(addrHex) {
		return nil, fmt.Errorf("chain %d: %w", opts.ChainID, ErrUnsupportedChain)
	}
	if opts.Reader == nil {
		return nil, ErrReadHandleUnavailable
	}

	exchangeABI, err := contract.ExchangeABI()
	if err != nil {
		return nil, fmt.Errorf("parse exchange abi: %w", err)
	}
	erc20ABI, err := contract.ERC20ABI()
	if err != nil {
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}
	erc20B32ABI, err := contract.ERC20Bytes32ABI()
	if err != nil {
		return nil, fmt.Errorf("parse erc20 bytes32 abi: %w", err)
	}

	batchSize := opts.BatchSize
	if batchSize == 0 {
		batchSize = DefaultLogBatchSize
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		reader:      opts.Reader,
		sender:      opts.Sender,
		exchange:    common.HexToAddress(addrHex),
		chainID:     opts.ChainID,
		batchSize:   batchSize,
		logger:      logger,
		now:         time.Now,
		exchangeABI: exchangeABI,
		erc20ABI:    erc20ABI,
		erc20B32ABI: erc20B32ABI,
	}, nil
}

// Exchange returns the configured exchange contract address.
func (c *Client) Exchange() common.Address {
	return c.exchange
}

// ChainID returns the configured chain id.
func (c *Client) ChainID() uint64 {
	return c.chainID
}

// checkConnection verifies the configuration before a read. The chain
// mapping was validated at construction, so only the read handle can go
// missing afterwards.
func (c *Client) checkConnection() error {
	if (c.exchange == common.Address{}) {
		return fmt.Errorf("chain %d: %w", c.chainID, ErrUnsupportedChain)
	}
	if c.reader == nil {
		return ErrReadHandleUnavailable
	}
	return nil
}

// callExchange executes a view method on the exchange contract.
func (c *Client) callExchange(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	return contract.Call(ctx, c.reader, c.exchange, c.exchangeABI, method, args...)
}
