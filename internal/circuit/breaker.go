// Package circuit halts the strategy loop when trading degrades, so a
// misbehaving model or venue cannot burn the wallet down tick by tick.
package circuit

import (
	"sync"
	"time"
)

// BreakerState represents the circuit breaker state
type BreakerState string

const (
	StateClosed   BreakerState = "closed"    // Normal operation
	StateOpen     BreakerState = "open"      // Trading halted
	StateHalfOpen BreakerState = "half_open" // Testing recovery after cooldown
)

// Config holds circuit breaker configuration
type Config struct {
	Enabled             bool `json:"enabled"`
	MaxConsecutiveFails int  `json:"max_consecutive_fails"` // Failed trades in a row before trip
	CooldownMinutes     int  `json:"cooldown_minutes"`      // Cooldown after trip
	MaxTradesPerMinute  int  `json:"max_trades_per_minute"` // Rate limit
	MaxDailyTrades      int  `json:"max_daily_trades"`      // Executed trades per day
}

// DefaultConfig returns safe defaults
func DefaultConfig() *Config {
	return &Config{
		Enabled:             true,
		MaxConsecutiveFails: 5,
		CooldownMinutes:     30,
		MaxTradesPerMinute:  10,
		MaxDailyTrades:      100,
	}
}

// Breaker implements the trading circuit breaker pattern over strategy
// invocations.
type Breaker struct {
	config           *Config
	state            BreakerState
	consecutiveFails int
	tradesLastMinute int
	dailyTrades      int
	lastTripTime     time.Time
	dailyResetTime   time.Time
	minuteResetTime  time.Time
	tripReason       string
	mu               sync.RWMutex
	onTrip           func(reason string)
	onReset          func()
}

// NewBreaker creates a new circuit breaker
func NewBreaker(config *Config) *Breaker {
	if config == nil {
		config = DefaultConfig()
	}

	now := time.Now()
	return &Breaker{
		config:          config,
		state:           StateClosed,
		dailyResetTime:  now.Truncate(24 * time.Hour).Add(24 * time.Hour),
		minuteResetTime: now.Add(time.Minute),
	}
}

// OnTrip sets the callback invoked when the breaker trips
func (b *Breaker) OnTrip(handler func(reason string)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onTrip = handler
}

// OnReset sets the callback invoked when the breaker recovers
func (b *Breaker) OnReset(handler func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onReset = handler
}

// CanTrade checks whether a strategy tick may execute. Returns the block
// reason when trading is halted.
func (b *Breaker) CanTrade() (bool, string) {
	if !b.config.Enabled {
		return true, ""
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.resetWindows()

	switch b.state {
	case StateOpen:
		cooldown := time.Duration(b.config.CooldownMinutes) * time.Minute
		if time.Since(b.lastTripTime) >= cooldown {
			b.state = StateHalfOpen
			return true, ""
		}
		return false, b.tripReason

	case StateHalfOpen:
		return true, ""
	}

	if b.config.MaxTradesPerMinute > 0 && b.tradesLastMinute >= b.config.MaxTradesPerMinute {
		return false, "trade rate limit reached"
	}
	if b.config.MaxDailyTrades > 0 && b.dailyTrades >= b.config.MaxDailyTrades {
		return false, "daily trade limit reached"
	}
	return true, ""
}

// RecordSuccess records an executed trade
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.resetWindows()
	b.consecutiveFails = 0
	b.tradesLastMinute++
	b.dailyTrades++

	if b.state == StateHalfOpen {
		b.state = StateClosed
		b.tripReason = ""
		if b.onReset != nil {
			go b.onReset()
		}
	}
}

// RecordFailure records a failed trade and trips the breaker when the
// consecutive-failure limit is hit. Expected non-trades (low confidence,
// no routes) should not be recorded here.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.consecutiveFails++

	if b.state == StateHalfOpen {
		b.trip("failure during recovery probe")
		return
	}
	if b.config.MaxConsecutiveFails > 0 && b.consecutiveFails >= b.config.MaxConsecutiveFails {
		b.trip("consecutive failure limit reached")
	}
}

// State returns the current breaker state and trip reason.
func (b *Breaker) State() (BreakerState, string) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state, b.tripReason
}

// trip halts trading. Caller holds the lock.
func (b *Breaker) trip(reason string) {
	b.state = StateOpen
	b.tripReason = reason
	b.lastTripTime = time.Now()
	b.consecutiveFails = 0

	if b.onTrip != nil {
		go b.onTrip(reason)
	}
}

// resetWindows rolls the minute and day counters. Caller holds the lock.
func (b *Breaker) resetWindows() {
	now := time.Now()
	if now.After(b.minuteResetTime) {
		b.tradesLastMinute = 0
		b.minuteResetTime = now.Add(time.Minute)
	}
	if now.After(b.dailyResetTime) {
		b.dailyTrades = 0
		b.dailyResetTime = b.dailyResetTime.Add(24 * time.Hour)
	}
}
