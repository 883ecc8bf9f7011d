package model

// InitPoolRequest creates a pool for a not-yet-listed token.
type InitPoolRequest struct {
	Token       string `json:"token"`
	TokenAmount string `json:"token_amount"`
	EthAmount   string `json:"eth_amount"`
}

// DepositRequest adds liquidity to an existing pool.
type DepositRequest struct {
	Token       string `json:"token"`
	TokenAmount string `json:"token_amount"`
	EthAmount   string `json:"eth_amount"`
}

// WithdrawRequest burns LP tokens to remove liquidity.
type WithdrawRequest struct {
	Token    string `json:"token"`
	LPAmount string `json:"lp_amount"`
}

// BuyRequest buys tokens with attached ETH.
type BuyRequest struct {
	Token     string `json:"token"`
	EthAmount string `json:"eth_amount"`
}

// SellRequest sells tokens for ETH.
type SellRequest struct {
	Token       string `json:"token"`
	TokenAmount string `json:"token_amount"`
}

// SwapRequest trades one listed token for another.
type SwapRequest struct {
	SoldToken   string `json:"sold_token"`
	BoughtToken string `json:"bought_token"`
	Amount      string `json:"amount"`
}

// MutationResult reports the outcome of a state-mutating operation.
// Phase records where the two-phase protocol ended up; Error carries
// the failure text when Success is false.
type MutationResult struct {
	Success   bool   `json:"success"`
	TxHash    string `json:"tx_hash,omitempty"`
	Phase     string `json:"phase"`
	Timestamp string `json:"timestamp"`
	Error     string `json:"error,omitempty"`
}

// Per-operation result aliases keep call sites self-describing.
type (
	InitPoolResult = MutationResult
	DepositResult  = MutationResult
	WithdrawResult = MutationResult
	BuyResult      = MutationResult
	SellResult     = MutationResult
	SwapResult     = MutationResult
)
