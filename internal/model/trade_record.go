package model

import "encoding/json"

// Trade record kinds.
const (
	TradeKindBuy      = "buy"
	TradeKindSell     = "sell"
	TradeKindSwap     = "swap"
	TradeKindDeposit  = "deposit"
	TradeKindWithdraw = "withdraw"
)

// TradeRecord is the normalized storage projection of any trade or
// liquidity event, used by the JSONL and Postgres export sinks.
type TradeRecord struct {
	ChainID      uint64 `json:"chain_id"`
	Kind         string `json:"kind"`
	Token        string `json:"token"`
	CounterToken string `json:"counter_token,omitempty"`
	Account      string `json:"account"`
	AmountIn     string `json:"amount_in"`
	AmountOut    string `json:"amount_out"`
	Price        string `json:"price,omitempty"`
	BlockNumber  uint64 `json:"block_number"`
	TxHash       string `json:"tx_hash"`
	LogIndex     uint64 `json:"log_index"`
	Timestamp    uint64 `json:"timestamp"`
	IngestedAt   string `json:"ingested_at"`
}

// MarshalJSON ensures TradeRecord is encoded with stable field names.
func (tr TradeRecord) MarshalJSON() ([]byte, error) {
	type Alias TradeRecord
	return json.Marshal(Alias(tr))
}

// UnmarshalJSON decodes a TradeRecord from JSON.
func (tr *TradeRecord) UnmarshalJSON(data []byte) error {
	type Alias TradeRecord
	var a Alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*tr = TradeRecord(a)
	return nil
}
