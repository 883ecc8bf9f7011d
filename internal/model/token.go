package model

// Token captures ERC20 identity metadata.
type Token struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals uint8  `json:"decimals"`
}

// LPToken is the pool's liquidity token for a listed ERC20, together
// with its total supply and the querying user's balance. Amounts are
// decimal strings in minor units.
type LPToken struct {
	Token
	TotalSupply string `json:"total_supply"`
	Balance     string `json:"balance"`
}

// Reserve is a point-in-time snapshot of both pool legs.
type Reserve struct {
	TokenReserve string `json:"token_reserve"`
	EthReserve   string `json:"eth_reserve"`
}

// ZeroReserve is the fallback snapshot for an uninitialized pool.
func ZeroReserve() Reserve {
	return Reserve{TokenReserve: "0", EthReserve: "0"}
}
