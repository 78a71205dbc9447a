package wallet

import "time"

// TokenHolding is one asset position in the wallet.
type TokenHolding struct {
	Address  string  `json:"address"` // Mint address
	Symbol   string  `json:"symbol"`
	Name     string  `json:"name"`
	Decimals int     `json:"decimals"`
	Balance  float64 `json:"balance"`
	Value    float64 `json:"value"` // Quote-currency value; 0 until priced
}

// WalletStats is the display summary mirrored from the state fields.
type WalletStats struct {
	TotalValue          float64   `json:"total_value"`
	TotalTransactions   uint      `json:"total_transactions"`
	UniqueTokens        uint      `json:"unique_tokens"`
	AvgTransactionValue float64   `json:"avg_transaction_value"`
	LastActivity        time.Time `json:"last_activity"`
}

// WalletState is the feature vector derived from on-chain activity.
// Immutable once constructed; every numeric field is finite and
// non-negative, and RiskLevel is clamped to [0, 1].
type WalletState struct {
	TransactionCount    uint           `json:"transaction_count"`
	UniqueTokens        uint           `json:"unique_tokens"`
	AvgTransactionValue float64        `json:"avg_transaction_value"`
	TradeFrequency      float64        `json:"trade_frequency"` // Transactions per day
	ProfitRatio         float64        `json:"profit_ratio"`    // Inflow / outflow, outflow floored at 1
	RiskLevel           float64        `json:"risk_level"`      // [0, 1]
	TimeInMarket        float64        `json:"time_in_market"`  // Days since first activity
	TotalInflow         float64        `json:"total_inflow"`
	TotalOutflow        float64        `json:"total_outflow"`
	LastActivity        time.Time      `json:"last_activity"`
	Tokens              []TokenHolding `json:"tokens"`
	Stats               WalletStats    `json:"stats"`
}
