package solana

import (
	"context"
	"hash/fnv"
	"math/rand"
	"time"
)

// MockClient provides simulated chain data for development/testing.
// Per-wallet data is derived from a hash of the address, so repeated calls
// for the same wallet return identical history.
type MockClient struct {
	now func() time.Time
}

// NewMockClient creates a new mock provider.
func NewMockClient() *MockClient {
	return &MockClient{now: time.Now}
}

func walletRand(address string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(address))
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

// GetSignaturesForAddress returns a simulated transaction history.
func (mc *MockClient) GetSignaturesForAddress(ctx context.Context, address string, limit int) ([]SignatureInfo, error) {
	rng := walletRand(address)
	count := 50 + rng.Intn(150)
	if limit > 0 && count > limit {
		count = limit
	}

	now := mc.now().Unix()
	// Spread history over roughly six months, newest first
	span := int64(180 * 24 * 60 * 60)
	sigs := make([]SignatureInfo, count)
	for i := 0; i < count; i++ {
		sigs[i] = SignatureInfo{
			Signature: mockSignature(rng),
			Slot:      250_000_000 - int64(i)*100,
			BlockTime: now - int64(i)*span/int64(count),
		}
	}
	return sigs, nil
}

// GetTransaction returns simulated transaction metadata.
func (mc *MockClient) GetTransaction(ctx context.Context, signature string) (*TransactionDetail, error) {
	rng := walletRand(signature)
	pre := uint64(1_000_000_000 + rng.Intn(5_000_000_000))
	delta := int64(rng.Intn(200_000_000)) - 100_000_000
	post := uint64(int64(pre) + delta)

	return &TransactionDetail{
		Signature: signature,
		Slot:      250_000_000,
		BlockTime: mc.now().Unix(),
		Meta: TransactionMeta{
			Fee:          5000 + uint64(rng.Intn(10000)),
			PreBalances:  []uint64{pre},
			PostBalances: []uint64{post},
		},
	}, nil
}

// GetTokenAccountsByOwner returns a simulated token portfolio.
func (mc *MockClient) GetTokenAccountsByOwner(ctx context.Context, address string) ([]TokenAccount, error) {
	rng := walletRand(address)

	mints := []struct {
		mint, symbol, name string
		decimals           int
	}{
		{"So11111111111111111111111111111111111111112", "SOL", "Wrapped SOL", 9},
		{"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", "USDC", "USD Coin", 6},
		{"Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB", "USDT", "USDT", 6},
		{"DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263", "BONK", "Bonk", 5},
		{"JUPyiwrYJFskUPiHa7hkeR8VUtAeFoSYbKedZNsDvCN", "JUP", "Jupiter", 6},
	}

	count := 2 + rng.Intn(len(mints)-1)
	accounts := make([]TokenAccount, 0, count)
	for i := 0; i < count; i++ {
		m := mints[i]
		raw := uint64(rng.Intn(1_000_000_000))
		div := 1.0
		for d := 0; d < m.decimals; d++ {
			div *= 10
		}
		accounts = append(accounts, TokenAccount{
			Mint:     m.mint,
			Symbol:   m.symbol,
			Name:     m.name,
			Decimals: m.decimals,
			Amount:   raw,
			UIAmount: float64(raw) / div,
		})
	}
	return accounts, nil
}

// GetAccountInfo returns simulated account state.
func (mc *MockClient) GetAccountInfo(ctx context.Context, address string) (*AccountInfo, error) {
	rng := walletRand(address)
	return &AccountInfo{
		Lamports: uint64(1_000_000_000 + rng.Intn(10_000_000_000)),
		Owner:    "11111111111111111111111111111111",
	}, nil
}

// SendTransaction accepts any payload and returns a fixed mock signature.
func (mc *MockClient) SendTransaction(ctx context.Context, signedTxBase64 string) (string, error) {
	return "mock-transaction-signature", nil
}

// ConfirmTransaction always confirms immediately.
func (mc *MockClient) ConfirmTransaction(ctx context.Context, txid string) (*ConfirmResult, error) {
	return &ConfirmResult{}, nil
}

const sigAlphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

func mockSignature(rng *rand.Rand) string {
	b := make([]byte, 88)
	for i := range b {
		b[i] = sigAlphabet[rng.Intn(len(sigAlphabet))]
	}
	return string(b)
}
