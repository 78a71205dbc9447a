// Package trader runs the trading pipeline: wallet state, prediction,
// confidence gate, route discovery, selection, and execution.
package trader

import (
	"context"
	"math"

	"github.com/rs/zerolog"

	"solana-trading-bot/internal/ai/behavior"
	"solana-trading-bot/internal/events"
	"solana-trading-bot/internal/jupiter"
)

// usdcMint is the quote leg of every pair the strategy trades.
const usdcMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"

// Expected-outcome failure reasons. These are trading conditions, not
// errors, and callers match on them.
const (
	ReasonLowConfidence = "Low confidence prediction"
	ReasonNoRoutes      = "No routes available for trade"
	ReasonHoldSignal    = "Hold prediction, no trade executed"
)

// Config holds orchestrator settings.
type Config struct {
	ConfidenceThreshold float64 // Predictions below this do not trade
	DryRun              bool    // Stop before swap submission
}

// DefaultConfig returns the shipped orchestrator settings.
func DefaultConfig() *Config {
	return &Config{ConfidenceThreshold: 0.7}
}

// AutoTrader is the top-level pipeline. All collaborators are injected;
// it owns no global state and every invocation builds its state fresh.
type AutoTrader struct {
	states StateLoader
	model  Predictor
	swaps  jupiter.SwapClient
	bus    *events.EventBus
	cfg    *Config
	logger zerolog.Logger
}

// NewAutoTrader wires the pipeline. bus may be nil when no one listens.
func NewAutoTrader(states StateLoader, model Predictor, swaps jupiter.SwapClient, bus *events.EventBus, logger zerolog.Logger, cfg *Config) *AutoTrader {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &AutoTrader{
		states: states,
		model:  model,
		swaps:  swaps,
		bus:    bus,
		cfg:    cfg,
		logger: logger.With().Str("component", "AutoTrader").Logger(),
	}
}

// Init prepares the swap client (token list load). Call once before the
// first trade.
func (t *AutoTrader) Init(ctx context.Context) error {
	return t.swaps.Init(ctx)
}

// ExecuteTradeStrategy runs one full pipeline pass. The returned error is
// non-nil only for invalid params, checked before any I/O; every runtime
// failure past that point resolves to a TradeResult so scheduled callers
// never crash. Two calls with identical state are deliberately not
// idempotent: each reflects current routes and may execute a new
// transaction.
func (t *AutoTrader) ExecuteTradeStrategy(ctx context.Context, params TradeParams) (*TradeResult, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	state, err := t.states.GetWalletState(ctx, params.WalletAddress)
	if err != nil {
		return t.fail(params.WalletAddress, err.Error()), nil
	}

	prediction, err := t.model.Predict(state)
	if err != nil {
		return t.fail(params.WalletAddress, err.Error()), nil
	}

	t.logger.Info().
		Str("wallet", params.WalletAddress).
		Str("action", string(prediction.Type)).
		Str("token", prediction.Token).
		Float64("confidence", prediction.Confidence).
		Msg("Prediction generated")

	if prediction.Confidence < t.cfg.ConfidenceThreshold {
		return t.reject(params.WalletAddress, ReasonLowConfidence), nil
	}

	if t.bus != nil {
		t.bus.PublishSignal(params.WalletAddress, string(prediction.Type), prediction.Token, prediction.Amount, prediction.Confidence)
	}

	if prediction.Type == behavior.ActionHold {
		return t.reject(params.WalletAddress, ReasonHoldSignal), nil
	}

	amount := math.Min(prediction.Amount, params.MaxAmount)
	inputMint, outputMint := t.tradePair(prediction.Type, prediction.Token)

	routes, err := t.swaps.GetRoutes(ctx, inputMint, outputMint, amount, params.Slippage)
	if err != nil {
		return t.fail(params.WalletAddress, err.Error()), nil
	}
	if len(routes) == 0 {
		return t.reject(params.WalletAddress, ReasonNoRoutes), nil
	}

	best := jupiter.SelectBestRoute(routes)
	if best == nil {
		return t.reject(params.WalletAddress, ReasonNoRoutes), nil
	}

	if t.cfg.DryRun {
		t.logger.Info().Str("wallet", params.WalletAddress).Msg("Dry run, skipping swap submission")
		return t.success(params.WalletAddress, "dry-run", prediction), nil
	}

	txid, err := t.swaps.ExecuteSwap(ctx, best)
	if err != nil {
		return t.fail(params.WalletAddress, err.Error()), nil
	}

	return t.success(params.WalletAddress, txid, prediction), nil
}

// tradePair maps a trade direction onto an input/output mint pair against
// the USDC quote leg: buys spend USDC for the predicted token, sells do
// the reverse.
func (t *AutoTrader) tradePair(action behavior.ActionType, token string) (string, string) {
	mint := t.swaps.ResolveMint(token)
	if action == behavior.ActionSell {
		return mint, usdcMint
	}
	return usdcMint, mint
}

func (t *AutoTrader) fail(wallet, reason string) *TradeResult {
	t.logger.Warn().Str("wallet", wallet).Str("reason", reason).Msg("Trade failed")
	if t.bus != nil {
		t.bus.PublishTradeFailed(wallet, reason)
	}
	return &TradeResult{Success: false, Error: reason}
}

// reject reports an expected non-trade outcome.
func (t *AutoTrader) reject(wallet, reason string) *TradeResult {
	t.logger.Info().Str("wallet", wallet).Str("reason", reason).Msg("Trade not executed")
	if t.bus != nil {
		t.bus.PublishTradeRejected(wallet, reason)
	}
	return &TradeResult{Success: false, Error: reason}
}

// success reports the model's intent, not re-derived fill values: after
// slippage the executed amounts may differ slightly, and the audit trail
// records what the model decided.
func (t *AutoTrader) success(wallet, txid string, prediction *behavior.TradeAction) *TradeResult {
	t.logger.Info().
		Str("wallet", wallet).
		Str("txid", txid).
		Str("action", string(prediction.Type)).
		Msg("Trade executed")

	if t.bus != nil {
		t.bus.PublishTradeExecuted(wallet, txid, string(prediction.Type), prediction.Token, prediction.Amount, prediction.Confidence)
	}

	return &TradeResult{
		Success:    true,
		TxID:       txid,
		Type:       prediction.Type,
		Token:      prediction.Token,
		Amount:     prediction.Amount,
		Confidence: prediction.Confidence,
	}
}
