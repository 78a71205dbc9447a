package trader

import (
	"context"
	"errors"

	"solana-trading-bot/internal/ai/behavior"
	"solana-trading-bot/internal/wallet"
)

// ErrInvalidParams marks caller bugs: malformed trade parameters rejected
// before any I/O. Runtime trading failures never use it; they surface as
// failed TradeResults.
var ErrInvalidParams = errors.New("invalid trade params")

// TradeParams is the caller's bounds for one strategy invocation.
type TradeParams struct {
	WalletAddress string  `json:"wallet_address"`
	MaxAmount     float64 `json:"max_amount"` // Upper bound on traded amount, > 0
	Slippage      float64 `json:"slippage"`   // Fraction in (0, 1)
}

// Validate rejects programmer-error-class input.
func (p *TradeParams) Validate() error {
	if p.WalletAddress == "" {
		return errors.Join(ErrInvalidParams, errors.New("wallet address is required"))
	}
	if p.MaxAmount <= 0 {
		return errors.Join(ErrInvalidParams, errors.New("max amount must be positive"))
	}
	if p.Slippage <= 0 || p.Slippage >= 1 {
		return errors.Join(ErrInvalidParams, errors.New("slippage must be in (0, 1)"))
	}
	return nil
}

// TradeResult is the single outcome shape of a strategy invocation.
// Success is the sole discriminant: on success the trade fields carry the
// model's intent, on failure only Error is set. Expected non-trades (low
// confidence, no routes) are failures here, never Go errors.
type TradeResult struct {
	Success    bool                `json:"success"`
	TxID       string              `json:"txid,omitempty"`
	Type       behavior.ActionType `json:"type,omitempty"`
	Token      string              `json:"token,omitempty"`
	Amount     float64             `json:"amount,omitempty"`
	Confidence float64             `json:"confidence,omitempty"`
	Error      string              `json:"error,omitempty"`
}

// StateLoader builds wallet feature vectors from live chain data.
type StateLoader interface {
	GetWalletState(ctx context.Context, address string) (*wallet.WalletState, error)
}

// Predictor classifies a wallet state into a trade action.
type Predictor interface {
	Predict(state *wallet.WalletState) (*behavior.TradeAction, error)
}
