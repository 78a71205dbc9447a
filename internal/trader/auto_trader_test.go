package trader

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"solana-trading-bot/internal/ai/behavior"
	"solana-trading-bot/internal/jupiter"
	"solana-trading-bot/internal/wallet"
)

// mockStateLoader returns a fixed wallet state.
type mockStateLoader struct {
	state     *wallet.WalletState
	err       error
	callCount int
}

func (m *mockStateLoader) GetWalletState(ctx context.Context, address string) (*wallet.WalletState, error) {
	m.callCount++
	if m.err != nil {
		return nil, m.err
	}
	return m.state, nil
}

// mockPredictor returns a fixed prediction.
type mockPredictor struct {
	action    *behavior.TradeAction
	err       error
	callCount int
}

func (m *mockPredictor) Predict(state *wallet.WalletState) (*behavior.TradeAction, error) {
	m.callCount++
	if m.err != nil {
		return nil, m.err
	}
	return m.action, nil
}

// mockSwapClient records calls and returns canned routes and txids.
type mockSwapClient struct {
	routes        []jupiter.SwapRoute
	routesErr     error
	txid          string
	swapErr       error
	initCount     int
	routesCount   int
	executeCount  int
	lastAmount    float64
	lastInputMint string
	lastOutput    string
}

func (m *mockSwapClient) Init(ctx context.Context) error {
	m.initCount++
	return nil
}

func (m *mockSwapClient) GetRoutes(ctx context.Context, inputMint, outputMint string, amount, slippage float64) ([]jupiter.SwapRoute, error) {
	m.routesCount++
	m.lastInputMint = inputMint
	m.lastOutput = outputMint
	m.lastAmount = amount
	return m.routes, m.routesErr
}

func (m *mockSwapClient) ExecuteSwap(ctx context.Context, route *jupiter.SwapRoute) (string, error) {
	m.executeCount++
	if m.swapErr != nil {
		return "", m.swapErr
	}
	return m.txid, nil
}

func (m *mockSwapClient) ResolveMint(symbol string) string {
	if symbol == "SOL" {
		return "So11111111111111111111111111111111111111112"
	}
	return symbol
}

func testState() *wallet.WalletState {
	return &wallet.WalletState{
		TransactionCount:    150,
		UniqueTokens:        12,
		AvgTransactionValue: 500,
		TradeFrequency:      2.5,
		ProfitRatio:         1.2,
		RiskLevel:           0.4,
		TimeInMarket:        180,
	}
}

func buyAction(confidence float64) *behavior.TradeAction {
	return &behavior.TradeAction{Type: behavior.ActionBuy, Token: "SOL", Amount: 1.0, Confidence: confidence}
}

func validParams() TradeParams {
	return TradeParams{WalletAddress: "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU", MaxAmount: 1.0, Slippage: 0.01}
}

func TestExecuteTradeStrategySuccess(t *testing.T) {
	swaps := &mockSwapClient{
		routes: []jupiter.SwapRoute{{OutAmount: 1.5, PriceImpact: 0.001}},
		txid:   "mock-transaction-signature",
	}
	trader := NewAutoTrader(
		&mockStateLoader{state: testState()},
		&mockPredictor{action: buyAction(0.85)},
		swaps, nil, zerolog.Nop(), nil,
	)

	result, err := trader.ExecuteTradeStrategy(context.Background(), validParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got error %q", result.Error)
	}
	if result.TxID != "mock-transaction-signature" {
		t.Errorf("expected txid mock-transaction-signature, got %q", result.TxID)
	}
	if result.Type != behavior.ActionBuy || result.Token != "SOL" {
		t.Errorf("result does not carry the prediction: %+v", result)
	}
	if result.Confidence != 0.85 {
		t.Errorf("expected confidence 0.85, got %v", result.Confidence)
	}
	if swaps.executeCount != 1 {
		t.Errorf("expected exactly one swap execution, got %d", swaps.executeCount)
	}
}

func TestExecuteTradeStrategyLowConfidence(t *testing.T) {
	swaps := &mockSwapClient{routes: []jupiter.SwapRoute{{OutAmount: 1.0}}}
	trader := NewAutoTrader(
		&mockStateLoader{state: testState()},
		&mockPredictor{action: buyAction(0.5)},
		swaps, nil, zerolog.Nop(), nil,
	)

	result, err := trader.ExecuteTradeStrategy(context.Background(), validParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Success {
		t.Fatal("expected rejection")
	}
	if result.Error != ReasonLowConfidence {
		t.Errorf("expected %q, got %q", ReasonLowConfidence, result.Error)
	}
	// The gate must short-circuit before any route discovery or execution.
	if swaps.routesCount != 0 || swaps.executeCount != 0 {
		t.Errorf("expected no swap calls, got routes=%d execute=%d", swaps.routesCount, swaps.executeCount)
	}
}

func TestExecuteTradeStrategyNoRoutes(t *testing.T) {
	swaps := &mockSwapClient{routes: []jupiter.SwapRoute{}}
	trader := NewAutoTrader(
		&mockStateLoader{state: testState()},
		&mockPredictor{action: buyAction(0.9)},
		swaps, nil, zerolog.Nop(), nil,
	)

	result, err := trader.ExecuteTradeStrategy(context.Background(), validParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Success {
		t.Fatal("expected rejection")
	}
	if result.Error != ReasonNoRoutes {
		t.Errorf("expected %q, got %q", ReasonNoRoutes, result.Error)
	}
	if swaps.executeCount != 0 {
		t.Errorf("expected no execution without routes, got %d", swaps.executeCount)
	}
}

func TestExecuteTradeStrategyHold(t *testing.T) {
	swaps := &mockSwapClient{routes: []jupiter.SwapRoute{{OutAmount: 1.0}}}
	action := &behavior.TradeAction{Type: behavior.ActionHold, Token: "SOL", Amount: 1.0, Confidence: 0.95}
	trader := NewAutoTrader(
		&mockStateLoader{state: testState()},
		&mockPredictor{action: action},
		swaps, nil, zerolog.Nop(), nil,
	)

	result, err := trader.ExecuteTradeStrategy(context.Background(), validParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Success || result.Error != ReasonHoldSignal {
		t.Errorf("expected hold rejection, got %+v", result)
	}
	if swaps.routesCount != 0 {
		t.Errorf("hold must not reach route discovery, got %d calls", swaps.routesCount)
	}
}

func TestExecuteTradeStrategyRouteError(t *testing.T) {
	swaps := &mockSwapClient{routesErr: errors.New("No route found")}
	trader := NewAutoTrader(
		&mockStateLoader{state: testState()},
		&mockPredictor{action: buyAction(0.9)},
		swaps, nil, zerolog.Nop(), nil,
	)

	result, err := trader.ExecuteTradeStrategy(context.Background(), validParams())
	if err != nil {
		t.Fatalf("runtime failures must resolve to results, got error %v", err)
	}
	if result.Success {
		t.Fatal("expected failure")
	}
	if result.Error != "No route found" {
		t.Errorf("expected collaborator message to surface, got %q", result.Error)
	}
}

func TestExecuteTradeStrategySwapFailure(t *testing.T) {
	swaps := &mockSwapClient{
		routes:  []jupiter.SwapRoute{{OutAmount: 1.0}},
		swapErr: jupiter.ErrConfirmationTimeout,
	}
	trader := NewAutoTrader(
		&mockStateLoader{state: testState()},
		&mockPredictor{action: buyAction(0.9)},
		swaps, nil, zerolog.Nop(), nil,
	)

	result, err := trader.ExecuteTradeStrategy(context.Background(), validParams())
	if err != nil {
		t.Fatalf("execution failures must resolve to results, got error %v", err)
	}
	if result.Success {
		t.Fatal("expected failure")
	}
	if result.Error != jupiter.ErrConfirmationTimeout.Error() {
		t.Errorf("expected confirmation timeout reason, got %q", result.Error)
	}
	if swaps.executeCount != 1 {
		t.Errorf("expected exactly one swap attempt, got %d", swaps.executeCount)
	}
}

func TestExecuteTradeStrategyStateLoadFailure(t *testing.T) {
	trader := NewAutoTrader(
		&mockStateLoader{err: errors.New("rpc unavailable")},
		&mockPredictor{action: buyAction(0.9)},
		&mockSwapClient{}, nil, zerolog.Nop(), nil,
	)

	result, err := trader.ExecuteTradeStrategy(context.Background(), validParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Success || result.Error != "rpc unavailable" {
		t.Errorf("expected state load failure result, got %+v", result)
	}
}

func TestExecuteTradeStrategyInvalidParams(t *testing.T) {
	states := &mockStateLoader{state: testState()}
	trader := NewAutoTrader(states, &mockPredictor{action: buyAction(0.9)}, &mockSwapClient{}, nil, zerolog.Nop(), nil)

	cases := []TradeParams{
		{WalletAddress: "", MaxAmount: 1, Slippage: 0.01},
		{WalletAddress: "addr", MaxAmount: 0, Slippage: 0.01},
		{WalletAddress: "addr", MaxAmount: -1, Slippage: 0.01},
		{WalletAddress: "addr", MaxAmount: 1, Slippage: 0},
		{WalletAddress: "addr", MaxAmount: 1, Slippage: 1},
	}

	for _, params := range cases {
		result, err := trader.ExecuteTradeStrategy(context.Background(), params)
		if !errors.Is(err, ErrInvalidParams) {
			t.Errorf("params %+v: expected ErrInvalidParams, got %v", params, err)
		}
		if result != nil {
			t.Errorf("params %+v: expected nil result, got %+v", params, result)
		}
	}
	// Validation happens before any I/O.
	if states.callCount != 0 {
		t.Errorf("expected no state loads for invalid params, got %d", states.callCount)
	}
}

func TestExecuteTradeStrategyAmountCappedByMax(t *testing.T) {
	swaps := &mockSwapClient{
		routes: []jupiter.SwapRoute{{OutAmount: 1.0}},
		txid:   "tx",
	}
	action := &behavior.TradeAction{Type: behavior.ActionBuy, Token: "SOL", Amount: 5.0, Confidence: 0.9}
	trader := NewAutoTrader(
		&mockStateLoader{state: testState()},
		&mockPredictor{action: action},
		swaps, nil, zerolog.Nop(), nil,
	)

	params := validParams()
	params.MaxAmount = 0.25
	if _, err := trader.ExecuteTradeStrategy(context.Background(), params); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if swaps.lastAmount != 0.25 {
		t.Errorf("expected amount capped at 0.25, got %v", swaps.lastAmount)
	}
}

func TestExecuteTradeStrategyTradePairDirection(t *testing.T) {
	swaps := &mockSwapClient{
		routes: []jupiter.SwapRoute{{OutAmount: 1.0}},
		txid:   "tx",
	}
	solMint := "So11111111111111111111111111111111111111112"

	buy := NewAutoTrader(
		&mockStateLoader{state: testState()},
		&mockPredictor{action: buyAction(0.9)},
		swaps, nil, zerolog.Nop(), nil,
	)
	if _, err := buy.ExecuteTradeStrategy(context.Background(), validParams()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if swaps.lastInputMint != usdcMint || swaps.lastOutput != solMint {
		t.Errorf("buy should quote USDC->SOL, got %s -> %s", swaps.lastInputMint, swaps.lastOutput)
	}

	sellAction := &behavior.TradeAction{Type: behavior.ActionSell, Token: "SOL", Amount: 1.0, Confidence: 0.9}
	sell := NewAutoTrader(
		&mockStateLoader{state: testState()},
		&mockPredictor{action: sellAction},
		swaps, nil, zerolog.Nop(), nil,
	)
	if _, err := sell.ExecuteTradeStrategy(context.Background(), validParams()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if swaps.lastInputMint != solMint || swaps.lastOutput != usdcMint {
		t.Errorf("sell should quote SOL->USDC, got %s -> %s", swaps.lastInputMint, swaps.lastOutput)
	}
}

func TestExecuteTradeStrategyDryRun(t *testing.T) {
	swaps := &mockSwapClient{routes: []jupiter.SwapRoute{{OutAmount: 1.0}}, txid: "real-tx"}
	trader := NewAutoTrader(
		&mockStateLoader{state: testState()},
		&mockPredictor{action: buyAction(0.9)},
		swaps, nil, zerolog.Nop(),
		&Config{ConfidenceThreshold: 0.7, DryRun: true},
	)

	result, err := trader.ExecuteTradeStrategy(context.Background(), validParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success || result.TxID != "dry-run" {
		t.Errorf("expected dry-run success, got %+v", result)
	}
	if swaps.executeCount != 0 {
		t.Errorf("dry run must not submit swaps, got %d", swaps.executeCount)
	}
}
