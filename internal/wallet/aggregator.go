// Package wallet derives the behavior feature vector from raw chain data.
package wallet

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"solana-trading-bot/internal/solana"
)

// maxDetailFetch caps how many transactions are inspected per state build.
// History beyond this adds latency without moving the aggregates much.
const maxDetailFetch = 100

// Aggregator builds WalletState snapshots from a chain data provider.
// Stateless; every call reflects live data.
type Aggregator struct {
	provider solana.Provider
	logger   zerolog.Logger
	now      func() time.Time
}

// NewAggregator creates a new Aggregator.
func NewAggregator(provider solana.Provider, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		provider: provider,
		logger:   logger.With().Str("component", "WalletAggregator").Logger(),
		now:      time.Now,
	}
}

// GetWalletState derives a fresh feature vector for the wallet.
// Provider errors propagate unchanged; this layer never suppresses them.
func (a *Aggregator) GetWalletState(ctx context.Context, address string) (*WalletState, error) {
	signatures, err := a.provider.GetSignaturesForAddress(ctx, address, 1000)
	if err != nil {
		return nil, err
	}

	tokenAccounts, err := a.provider.GetTokenAccountsByOwner(ctx, address)
	if err != nil {
		return nil, err
	}

	details, err := a.fetchDetails(ctx, signatures)
	if err != nil {
		return nil, err
	}

	avgValue := avgTransactionValue(details)
	frequency := tradeFrequency(signatures)
	inflow, outflow := balanceFlows(details)
	risk := riskLevel(details, frequency)

	var lastActivity time.Time
	var timeInMarket float64
	if len(signatures) > 0 {
		// Signatures are newest first
		lastActivity = time.Unix(signatures[0].BlockTime, 0)
		first := time.Unix(signatures[len(signatures)-1].BlockTime, 0)
		timeInMarket = a.now().Sub(first).Hours() / 24
		if timeInMarket < 0 {
			timeInMarket = 0
		}
	}

	tokens := make([]TokenHolding, 0, len(tokenAccounts))
	totalValue := 0.0
	for _, acct := range tokenAccounts {
		holding := TokenHolding{
			Address:  acct.Mint,
			Symbol:   acct.Symbol,
			Name:     acct.Name,
			Decimals: acct.Decimals,
			Balance:  acct.UIAmount,
		}
		tokens = append(tokens, holding)
		totalValue += holding.Value
	}

	state := &WalletState{
		TransactionCount:    uint(len(signatures)),
		UniqueTokens:        uint(len(tokenAccounts)),
		AvgTransactionValue: avgValue,
		TradeFrequency:      frequency,
		ProfitRatio:         inflow / math.Max(outflow, 1),
		RiskLevel:           risk,
		TimeInMarket:        timeInMarket,
		TotalInflow:         inflow,
		TotalOutflow:        outflow,
		LastActivity:        lastActivity,
		Tokens:              tokens,
		Stats: WalletStats{
			TotalValue:          totalValue,
			TotalTransactions:   uint(len(signatures)),
			UniqueTokens:        uint(len(tokenAccounts)),
			AvgTransactionValue: avgValue,
			LastActivity:        lastActivity,
		},
	}

	if err := validateState(state); err != nil {
		return nil, err
	}

	a.logger.Debug().
		Str("wallet", address).
		Uint("tx_count", state.TransactionCount).
		Float64("trade_frequency", state.TradeFrequency).
		Float64("risk_level", state.RiskLevel).
		Msg("Wallet state built")

	return state, nil
}

// fetchDetails loads transaction metadata for the most recent signatures.
func (a *Aggregator) fetchDetails(ctx context.Context, signatures []solana.SignatureInfo) ([]*solana.TransactionDetail, error) {
	n := len(signatures)
	if n > maxDetailFetch {
		n = maxDetailFetch
	}

	details := make([]*solana.TransactionDetail, 0, n)
	for _, sig := range signatures[:n] {
		detail, err := a.provider.GetTransaction(ctx, sig.Signature)
		if err != nil {
			return nil, err
		}
		details = append(details, detail)
	}
	return details, nil
}

// avgTransactionValue is the mean fee across inspected transactions,
// a cheap proxy for per-transaction value.
func avgTransactionValue(details []*solana.TransactionDetail) float64 {
	if len(details) == 0 {
		return 0
	}
	sum := 0.0
	for _, d := range details {
		sum += float64(d.Meta.Fee)
	}
	return sum / float64(len(details))
}

// tradeFrequency is transactions per day across the observed span.
func tradeFrequency(signatures []solana.SignatureInfo) float64 {
	if len(signatures) < 2 {
		return 0
	}
	span := float64(signatures[0].BlockTime - signatures[len(signatures)-1].BlockTime)
	if span <= 0 {
		return 0
	}
	return float64(len(signatures)) / (span / (24 * 60 * 60))
}

// balanceFlows sums pre/post balances of the wallet's first account index.
func balanceFlows(details []*solana.TransactionDetail) (inflow, outflow float64) {
	for _, d := range details {
		if len(d.Meta.PreBalances) > 0 {
			inflow += float64(d.Meta.PreBalances[0]) / solana.LamportsPerSol
		}
		if len(d.Meta.PostBalances) > 0 {
			outflow += float64(d.Meta.PostBalances[0]) / solana.LamportsPerSol
		}
	}
	return inflow, outflow
}

// riskLevel combines balance volatility and trade frequency, clamped to [0, 1].
func riskLevel(details []*solana.TransactionDetail, frequency float64) float64 {
	vol := balanceVolatility(details)
	risk := vol * frequency / 100
	if risk < 0 || math.IsNaN(risk) {
		return 0
	}
	return math.Min(risk, 1)
}

// balanceVolatility is the standard deviation of per-transaction net
// balance changes, in SOL.
func balanceVolatility(details []*solana.TransactionDetail) float64 {
	deltas := make([]float64, 0, len(details))
	for _, d := range details {
		if len(d.Meta.PreBalances) > 0 && len(d.Meta.PostBalances) > 0 {
			delta := (float64(d.Meta.PostBalances[0]) - float64(d.Meta.PreBalances[0])) / solana.LamportsPerSol
			deltas = append(deltas, delta)
		}
	}
	if len(deltas) == 0 {
		return 0
	}

	mean := 0.0
	for _, v := range deltas {
		mean += v
	}
	mean /= float64(len(deltas))

	variance := 0.0
	for _, v := range deltas {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(deltas))

	return math.Sqrt(variance)
}

// validateState enforces the state invariants before the vector enters
// the classifier.
func validateState(s *WalletState) error {
	checks := map[string]float64{
		"avg_transaction_value": s.AvgTransactionValue,
		"trade_frequency":       s.TradeFrequency,
		"profit_ratio":          s.ProfitRatio,
		"time_in_market":        s.TimeInMarket,
		"total_inflow":          s.TotalInflow,
		"total_outflow":         s.TotalOutflow,
	}
	for name, v := range checks {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("wallet state field %s is invalid: %v", name, v)
		}
	}
	if s.RiskLevel < 0 || s.RiskLevel > 1 {
		return fmt.Errorf("wallet state risk_level out of range: %v", s.RiskLevel)
	}
	return nil
}
