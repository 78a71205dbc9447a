package wallet

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"solana-trading-bot/internal/solana"
)

// mockProvider serves canned chain data and records call counts.
type mockProvider struct {
	signatures    []solana.SignatureInfo
	transactions  map[string]*solana.TransactionDetail
	tokenAccounts []solana.TokenAccount
	sigErr        error
	txErr         error

	sigCalls   int
	txCalls    int
	tokenCalls int
}

func (m *mockProvider) GetSignaturesForAddress(ctx context.Context, address string, limit int) ([]solana.SignatureInfo, error) {
	m.sigCalls++
	if m.sigErr != nil {
		return nil, m.sigErr
	}
	return m.signatures, nil
}

func (m *mockProvider) GetTransaction(ctx context.Context, signature string) (*solana.TransactionDetail, error) {
	m.txCalls++
	if m.txErr != nil {
		return nil, m.txErr
	}
	if tx, ok := m.transactions[signature]; ok {
		return tx, nil
	}
	return &solana.TransactionDetail{Signature: signature}, nil
}

func (m *mockProvider) GetTokenAccountsByOwner(ctx context.Context, address string) ([]solana.TokenAccount, error) {
	m.tokenCalls++
	return m.tokenAccounts, nil
}

func (m *mockProvider) GetAccountInfo(ctx context.Context, address string) (*solana.AccountInfo, error) {
	return &solana.AccountInfo{}, nil
}

func (m *mockProvider) SendTransaction(ctx context.Context, signedTx string) (string, error) {
	return "", errors.New("not implemented")
}

func (m *mockProvider) ConfirmTransaction(ctx context.Context, signature string) (*solana.ConfirmResult, error) {
	return nil, errors.New("not implemented")
}

func fixedAggregator(provider *mockProvider, now time.Time) *Aggregator {
	a := NewAggregator(provider, zerolog.Nop())
	a.now = func() time.Time { return now }
	return a
}

func TestGetWalletStateAggregates(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	dayAgo := now.Add(-24 * time.Hour).Unix()
	tenDaysAgo := now.Add(-10 * 24 * time.Hour).Unix()

	provider := &mockProvider{
		signatures: []solana.SignatureInfo{
			{Signature: "sig1", BlockTime: dayAgo},
			{Signature: "sig2", BlockTime: tenDaysAgo},
		},
		transactions: map[string]*solana.TransactionDetail{
			"sig1": {Signature: "sig1", Meta: solana.TransactionMeta{
				Fee:          5000,
				PreBalances:  []uint64{2_000_000_000},
				PostBalances: []uint64{1_500_000_000},
			}},
			"sig2": {Signature: "sig2", Meta: solana.TransactionMeta{
				Fee:          7000,
				PreBalances:  []uint64{1_000_000_000},
				PostBalances: []uint64{1_200_000_000},
			}},
		},
		tokenAccounts: []solana.TokenAccount{
			{Mint: "mint1", Symbol: "SOL", UIAmount: 2.5},
			{Mint: "mint2", Symbol: "USDC", UIAmount: 100},
		},
	}

	state, err := fixedAggregator(provider, now).GetWalletState(context.Background(), "wallet-addr")
	if err != nil {
		t.Fatalf("GetWalletState failed: %v", err)
	}

	if state.TransactionCount != 2 {
		t.Errorf("transaction count = %d, want 2", state.TransactionCount)
	}
	if state.UniqueTokens != 2 {
		t.Errorf("unique tokens = %d, want 2", state.UniqueTokens)
	}
	if state.AvgTransactionValue != 6000 {
		t.Errorf("avg transaction value = %v, want 6000", state.AvgTransactionValue)
	}

	// Two transactions over a nine-day span.
	wantFreq := 2.0 / 9.0
	if math.Abs(state.TradeFrequency-wantFreq) > 1e-9 {
		t.Errorf("trade frequency = %v, want %v", state.TradeFrequency, wantFreq)
	}

	// Inflow sums pre balances, outflow sums post balances, in SOL.
	if math.Abs(state.TotalInflow-3.0) > 1e-9 {
		t.Errorf("inflow = %v, want 3.0", state.TotalInflow)
	}
	if math.Abs(state.TotalOutflow-2.7) > 1e-9 {
		t.Errorf("outflow = %v, want 2.7", state.TotalOutflow)
	}
	if math.Abs(state.ProfitRatio-3.0/2.7) > 1e-9 {
		t.Errorf("profit ratio = %v, want %v", state.ProfitRatio, 3.0/2.7)
	}

	if math.Abs(state.TimeInMarket-10) > 1e-6 {
		t.Errorf("time in market = %v days, want 10", state.TimeInMarket)
	}
	if state.RiskLevel < 0 || state.RiskLevel > 1 {
		t.Errorf("risk level out of range: %v", state.RiskLevel)
	}
	if !state.LastActivity.Equal(time.Unix(dayAgo, 0)) {
		t.Errorf("last activity = %v, want %v", state.LastActivity, time.Unix(dayAgo, 0))
	}
	if len(state.Tokens) != 2 {
		t.Errorf("expected 2 token holdings, got %d", len(state.Tokens))
	}
}

func TestGetWalletStateEmptyWallet(t *testing.T) {
	provider := &mockProvider{}

	state, err := fixedAggregator(provider, time.Now()).GetWalletState(context.Background(), "fresh-wallet")
	if err != nil {
		t.Fatalf("GetWalletState failed: %v", err)
	}

	if state.TransactionCount != 0 || state.UniqueTokens != 0 {
		t.Errorf("expected zeroed counts, got %+v", state)
	}
	if state.TradeFrequency != 0 || state.TimeInMarket != 0 {
		t.Errorf("expected zero activity metrics, got %+v", state)
	}
	if state.ProfitRatio != 0 {
		t.Errorf("profit ratio = %v, want 0 for empty wallet", state.ProfitRatio)
	}
}

func TestGetWalletStatePropagatesProviderErrors(t *testing.T) {
	wantErr := errors.New("rpc unavailable")
	provider := &mockProvider{sigErr: wantErr}

	_, err := fixedAggregator(provider, time.Now()).GetWalletState(context.Background(), "wallet")
	if !errors.Is(err, wantErr) {
		t.Errorf("expected provider error to propagate, got %v", err)
	}
}

func TestGetWalletStateDetailFetchCapped(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	signatures := make([]solana.SignatureInfo, 500)
	for i := range signatures {
		signatures[i] = solana.SignatureInfo{
			Signature: "sig",
			BlockTime: now.Add(-time.Duration(i) * time.Hour).Unix(),
		}
	}
	provider := &mockProvider{signatures: signatures}

	if _, err := fixedAggregator(provider, now).GetWalletState(context.Background(), "busy-wallet"); err != nil {
		t.Fatalf("GetWalletState failed: %v", err)
	}
	if provider.txCalls != maxDetailFetch {
		t.Errorf("expected %d detail fetches, got %d", maxDetailFetch, provider.txCalls)
	}
}
