package model

// Pool is the full aggregate view of a single liquidity pool. It is
// constructed fresh per request and never mutated afterwards; a new
// snapshot replaces the old one. All monetary fields are decimal
// strings in minor units (wei-scale).
type Pool struct {
	Token                 Token   `json:"token"`
	Reserve               Reserve `json:"reserve"`
	LPToken               LPToken `json:"lp_token"`
	BuyPrice              string  `json:"buy_price"`
	SellPrice             string  `json:"sell_price"`
	AvgPrice              string  `json:"avg_price"`
	TokenRatio            string  `json:"token_ratio"`
	Volume24h             string  `json:"volume_24h"`
	TotalLiquidity        string  `json:"total_liquidity"`
	APR                   string  `json:"apr"`
	LastExchangeTimestamp uint64  `json:"last_exchange_timestamp"`
	LastUpdated           string  `json:"last_updated"`
}

// RowPool is the lightweight list-view projection used for paginated
// pool listings. LPToken is only resolved when a user address was
// supplied to the listing call.
type RowPool struct {
	Token          Token    `json:"token"`
	BuyPrice       string   `json:"buy_price"`
	SellPrice      string   `json:"sell_price"`
	TotalLiquidity string   `json:"total_liquidity"`
	LPToken        *LPToken `json:"lp_token,omitempty"`
}
