package model

// BuyTrade is a projected TokensBought log with a resolved wall-clock
// timestamp. Keyed on the ledger by (block number, log index).
type BuyTrade struct {
	Token        Token  `json:"token"`
	Buyer        string `json:"buyer"`
	EthSold      string `json:"eth_sold"`
	TokensBought string `json:"tokens_bought"`
	Price        string `json:"price"`
	BlockNumber  uint64 `json:"block_number"`
	TxHash       string `json:"tx_hash"`
	LogIndex     uint64 `json:"log_index"`
	Timestamp    uint64 `json:"timestamp"`
}

// SellTrade is a projected TokensSold log.
type SellTrade struct {
	Token       Token  `json:"token"`
	Seller      string `json:"seller"`
	TokensSold  string `json:"tokens_sold"`
	EthBought   string `json:"eth_bought"`
	Price       string `json:"price"`
	BlockNumber uint64 `json:"block_number"`
	TxHash      string `json:"tx_hash"`
	LogIndex    uint64 `json:"log_index"`
	Timestamp   uint64 `json:"timestamp"`
}

// SwapTrade is a projected TokensSwapped log. The event is symmetric:
// either leg can be the queried token.
type SwapTrade struct {
	SoldToken    Token  `json:"sold_token"`
	BoughtToken  Token  `json:"bought_token"`
	Trader       string `json:"trader"`
	TokensSold   string `json:"tokens_sold"`
	TokensBought string `json:"tokens_bought"`
	SoldPrice    string `json:"sold_price"`
	BoughtPrice  string `json:"bought_price"`
	BlockNumber  uint64 `json:"block_number"`
	TxHash       string `json:"tx_hash"`
	LogIndex     uint64 `json:"log_index"`
	Timestamp    uint64 `json:"timestamp"`
}

// Deposit is a projected LiquidityAdded log.
type Deposit struct {
	Token       Token  `json:"token"`
	Provider    string `json:"provider"`
	EthAmount   string `json:"eth_amount"`
	TokenAmount string `json:"token_amount"`
	LPMinted    string `json:"lp_minted"`
	BlockNumber uint64 `json:"block_number"`
	TxHash      string `json:"tx_hash"`
	LogIndex    uint64 `json:"log_index"`
	Timestamp   uint64 `json:"timestamp"`
}

// Withdraw is a projected LiquidityRemoved log.
type Withdraw struct {
	Token       Token  `json:"token"`
	Provider    string `json:"provider"`
	EthAmount   string `json:"eth_amount"`
	TokenAmount string `json:"token_amount"`
	LPBurned    string `json:"lp_burned"`
	BlockNumber uint64 `json:"block_number"`
	TxHash      string `json:"tx_hash"`
	LogIndex    uint64 `json:"log_index"`
	Timestamp   uint64 `json:"timestamp"`
}

// PoolFeesEvent is a fee accrual entry read from the pool contract.
type PoolFeesEvent struct {
	Amount    string `json:"amount"`
	Timestamp uint64 `json:"timestamp"`
}
