// Package strategy drives the trading pipeline on a schedule.
package strategy

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"solana-trading-bot/internal/circuit"
	"solana-trading-bot/internal/events"
	"solana-trading-bot/internal/trader"
)

// Config holds the strategy loop configuration.
type Config struct {
	WalletAddress string
	TickInterval  time.Duration
	MaxAmount     float64
	Slippage      float64
}

// Runner invokes the trade pipeline once per tick. Failed trades are
// never retried within a tick; the next tick starts from a freshly
// loaded wallet state, so a failure cannot corrupt anything.
type Runner struct {
	cfg     Config
	trader  *trader.AutoTrader
	breaker *circuit.Breaker
	bus     *events.EventBus
	logger  zerolog.Logger

	mu         sync.Mutex
	running    bool
	cancel     context.CancelFunc
	lastRun    time.Time
	lastResult *trader.TradeResult
}

// NewRunner creates a strategy runner. breaker may be nil to run unguarded.
func NewRunner(cfg Config, t *trader.AutoTrader, breaker *circuit.Breaker, bus *events.EventBus, logger zerolog.Logger) *Runner {
	return &Runner{
		cfg:     cfg,
		trader:  t,
		breaker: breaker,
		bus:     bus,
		logger:  logger.With().Str("component", "StrategyRunner").Logger(),
	}
}

// Start launches the tick loop. Returns immediately; the loop stops when
// ctx is done or Stop is called.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return
	}
	ctx, r.cancel = context.WithCancel(ctx)
	r.running = true
	r.mu.Unlock()

	if r.bus != nil {
		r.bus.Publish(events.Event{Type: events.EventBotStarted, Data: map[string]interface{}{
			"wallet":   r.cfg.WalletAddress,
			"interval": r.cfg.TickInterval.String(),
		}})
	}

	go r.loop(ctx)
}

// Stop halts the tick loop.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return
	}
	r.cancel()
	r.running = false

	if r.bus != nil {
		r.bus.Publish(events.Event{Type: events.EventBotStopped, Data: map[string]interface{}{
			"wallet": r.cfg.WalletAddress,
		}})
	}
}

// IsRunning reports whether the loop is active.
func (r *Runner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// LastResult returns the most recent tick outcome, or nil before the
// first tick completes.
func (r *Runner) LastResult() (*trader.TradeResult, time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastResult, r.lastRun
}

func (r *Runner) loop(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.TickInterval)
	defer ticker.Stop()

	r.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

// tick runs one strategy pass behind the circuit breaker.
func (r *Runner) tick(ctx context.Context) {
	runID := uuid.NewString()
	logger := r.logger.With().Str("run_id", runID).Logger()

	if r.breaker != nil {
		if ok, reason := r.breaker.CanTrade(); !ok {
			logger.Warn().Str("reason", reason).Msg("Tick skipped, breaker open")
			return
		}
	}

	result, err := r.trader.ExecuteTradeStrategy(ctx, trader.TradeParams{
		WalletAddress: r.cfg.WalletAddress,
		MaxAmount:     r.cfg.MaxAmount,
		Slippage:      r.cfg.Slippage,
	})
	if err != nil {
		// Invalid params are a wiring bug; log loudly and keep the loop alive.
		logger.Error().Err(err).Msg("Strategy invocation rejected")
		return
	}

	r.mu.Lock()
	r.lastResult = result
	r.lastRun = time.Now()
	r.mu.Unlock()

	if r.breaker == nil {
		return
	}
	if result.Success {
		r.breaker.RecordSuccess()
		return
	}
	// Expected non-trades leave the breaker alone; real failures count.
	switch result.Error {
	case trader.ReasonLowConfidence, trader.ReasonNoRoutes, trader.ReasonHoldSignal:
	default:
		r.breaker.RecordFailure()
	}
}
