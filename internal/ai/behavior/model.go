// Package behavior implements the wallet behavior classifier: a small
// feed-forward network mapping a normalized WalletState to a trade action.
package behavior

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"

	"solana-trading-bot/internal/wallet"
)

const inputFeatures = 7

// Feature scale divisors. The network is sensitive to input scale, so each
// raw feature is divided down to roughly unit range before inference.
const (
	scaleTransactionCount = 1000
	scaleUniqueTokens     = 100
	scaleAvgValue         = 10000
	scaleTimeInMarket     = 365
)

// Config holds classifier configuration. Zero values fall back to the
// shipped defaults; changing them changes trading behavior.
type Config struct {
	HiddenUnits1   int     `json:"hidden_units_1"`
	HiddenUnits2   int     `json:"hidden_units_2"`
	DropoutRate    float64 `json:"dropout_rate"`
	TrainingEpochs int     `json:"training_epochs"`
	BatchSize      int     `json:"batch_size"`
	DefaultToken   string  `json:"default_token"`
	DefaultAmount  float64 `json:"default_amount"`
	Seed           int64   `json:"-"` // Weight init seed; 0 means nondeterministic
}

// DefaultConfig returns the shipped model configuration.
func DefaultConfig() *Config {
	return &Config{
		HiddenUnits1:   64,
		HiddenUnits2:   32,
		DropoutRate:    0.2,
		TrainingEpochs: 10,
		BatchSize:      32,
		DefaultToken:   "SOL",
		DefaultAmount:  1.0,
	}
}

// BehaviorModel is a 3-class direction classifier over wallet behavior
// features. Weights are the only state that outlives a single call; they
// are mutated by Train only, and Predict holds a read lock so training
// never interleaves with inference.
type BehaviorModel struct {
	mu  sync.RWMutex
	cfg *Config
	rng *rand.Rand

	hidden1 *denseLayer
	hidden2 *denseLayer
	output  *denseLayer

	adamStep int

	// Training progress in [0, 1], epoch-granular, readable mid-train.
	progressBits atomic.Uint64
}

// NewBehaviorModel creates a model with freshly initialized weights.
func NewBehaviorModel(cfg *Config) *BehaviorModel {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.HiddenUnits1 <= 0 {
		cfg.HiddenUnits1 = 64
	}
	if cfg.HiddenUnits2 <= 0 {
		cfg.HiddenUnits2 = 32
	}
	if cfg.TrainingEpochs <= 0 {
		cfg.TrainingEpochs = 10
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 32
	}
	if cfg.DefaultToken == "" {
		cfg.DefaultToken = "SOL"
	}
	if cfg.DefaultAmount <= 0 {
		cfg.DefaultAmount = 1.0
	}

	var rng *rand.Rand
	if cfg.Seed != 0 {
		rng = rand.New(rand.NewSource(cfg.Seed))
	} else {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}

	return &BehaviorModel{
		cfg:     cfg,
		rng:     rng,
		hidden1: newDenseLayer(inputFeatures, cfg.HiddenUnits1, rng),
		hidden2: newDenseLayer(cfg.HiddenUnits1, cfg.HiddenUnits2, rng),
		output:  newDenseLayer(cfg.HiddenUnits2, 3, rng),
	}
}

// normalizeState scales the raw feature vector to roughly unit range.
func normalizeState(state *wallet.WalletState) []float64 {
	return []float64{
		float64(state.TransactionCount) / scaleTransactionCount,
		float64(state.UniqueTokens) / scaleUniqueTokens,
		state.AvgTransactionValue / scaleAvgValue,
		state.TradeFrequency,
		state.ProfitRatio,
		state.RiskLevel,
		state.TimeInMarket / scaleTimeInMarket,
	}
}

// forward runs inference without dropout.
func (m *BehaviorModel) forward(input []float64) []float64 {
	h1 := relu(m.hidden1.forward(input))
	h2 := relu(m.hidden2.forward(h1))
	return softmax(m.output.forward(h2))
}

// Predict classifies the wallet state into buy/sell/hold. Confidence is
// the softmax probability of the chosen class; token and amount are the
// configured defaults since the model decides direction, not sizing.
func (m *BehaviorModel) Predict(state *wallet.WalletState) (*TradeAction, error) {
	if state == nil {
		return nil, fmt.Errorf("nil wallet state")
	}

	m.mu.RLock()
	probs := m.forward(normalizeState(state))
	m.mu.RUnlock()

	best := 0
	for i := 1; i < len(probs); i++ {
		if probs[i] > probs[best] {
			best = i
		}
	}

	return &TradeAction{
		Type:       actionTypes[best],
		Token:      m.cfg.DefaultToken,
		Amount:     m.cfg.DefaultAmount,
		Confidence: probs[best],
	}, nil
}

// Probabilities returns the raw class distribution for diagnostics.
// Order: buy, sell, hold.
func (m *BehaviorModel) Probabilities(state *wallet.WalletState) ([3]float64, error) {
	if state == nil {
		return [3]float64{}, fmt.Errorf("nil wallet state")
	}

	m.mu.RLock()
	probs := m.forward(normalizeState(state))
	m.mu.RUnlock()

	return [3]float64{probs[0], probs[1], probs[2]}, nil
}

// TrainingProgress reports batch training progress in [0, 1]. It is
// monotone within one Train call and readable while training runs.
func (m *BehaviorModel) TrainingProgress() float64 {
	return math.Float64frombits(m.progressBits.Load())
}

func (m *BehaviorModel) setProgress(p float64) {
	m.progressBits.Store(math.Float64bits(p))
}

// snapshot is the serialized form of the model weights.
type snapshot struct {
	HiddenUnits1 int          `json:"hidden_units_1"`
	HiddenUnits2 int          `json:"hidden_units_2"`
	Layers       []layerState `json:"layers"`
}

type layerState struct {
	Weights [][]float64 `json:"weights"`
	Biases  []float64   `json:"biases"`
}

// ExportWeights serializes the current weights. Callers own persistence;
// the model itself never touches storage.
func (m *BehaviorModel) ExportWeights() ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := snapshot{
		HiddenUnits1: m.cfg.HiddenUnits1,
		HiddenUnits2: m.cfg.HiddenUnits2,
		Layers: []layerState{
			{Weights: m.hidden1.weights, Biases: m.hidden1.biases},
			{Weights: m.hidden2.weights, Biases: m.hidden2.biases},
			{Weights: m.output.weights, Biases: m.output.biases},
		},
	}
	return json.Marshal(snap)
}

// ImportWeights replaces the model weights with a previously exported
// snapshot. Fails without mutating the model if shapes do not match.
func (m *BehaviorModel) ImportWeights(data []byte) error {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("error parsing model snapshot: %w", err)
	}
	if snap.HiddenUnits1 != m.cfg.HiddenUnits1 || snap.HiddenUnits2 != m.cfg.HiddenUnits2 {
		return fmt.Errorf("snapshot shape %d/%d does not match model %d/%d",
			snap.HiddenUnits1, snap.HiddenUnits2, m.cfg.HiddenUnits1, m.cfg.HiddenUnits2)
	}
	if len(snap.Layers) != 3 {
		return fmt.Errorf("snapshot has %d layers, want 3", len(snap.Layers))
	}

	layers := []*denseLayer{m.hidden1, m.hidden2, m.output}
	for i, l := range layers {
		if len(snap.Layers[i].Weights) != l.outSize || len(snap.Layers[i].Biases) != l.outSize {
			return fmt.Errorf("layer %d shape mismatch", i)
		}
		for _, row := range snap.Layers[i].Weights {
			if len(row) != l.inSize {
				return fmt.Errorf("layer %d shape mismatch", i)
			}
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, l := range layers {
		l.weights = snap.Layers[i].Weights
		l.biases = snap.Layers[i].Biases
	}
	return nil
}
