package behavior

import "solana-trading-bot/internal/wallet"

// ActionType is the trade direction decided by the classifier.
type ActionType string

const (
	ActionBuy  ActionType = "buy"
	ActionSell ActionType = "sell"
	ActionHold ActionType = "hold"
)

// actionTypes indexes the softmax output classes.
var actionTypes = [3]ActionType{ActionBuy, ActionSell, ActionHold}

// TradeAction is the classifier's output. The model decides direction only;
// token and amount are fixed defaults, and sizing is bounded downstream by
// the caller's max amount.
type TradeAction struct {
	Type       ActionType `json:"type"`
	Token      string     `json:"token"`
	Amount     float64    `json:"amount"`
	Confidence float64    `json:"confidence"` // Softmax probability of the chosen class
}

// TrainingExample is one reward-labeled observation for batch retraining.
type TrainingExample struct {
	State  *wallet.WalletState `json:"state"`
	Action TradeAction         `json:"action"`
	Reward float64             `json:"reward"`
}
