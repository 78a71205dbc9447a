package circuit

import (
	"testing"
	"time"
)

func testConfig() *Config {
	return &Config{
		Enabled:             true,
		MaxConsecutiveFails: 3,
		CooldownMinutes:     30,
		MaxTradesPerMinute:  5,
		MaxDailyTrades:      20,
	}
}

func TestBreakerStartsClosed(t *testing.T) {
	b := NewBreaker(testConfig())

	if ok, reason := b.CanTrade(); !ok {
		t.Errorf("expected trading allowed, blocked with %q", reason)
	}
	if state, _ := b.State(); state != StateClosed {
		t.Errorf("expected closed state, got %s", state)
	}
}

func TestBreakerDisabledAlwaysAllows(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	b := NewBreaker(cfg)

	for i := 0; i < 10; i++ {
		b.RecordFailure()
	}
	if ok, _ := b.CanTrade(); !ok {
		t.Error("disabled breaker must always allow trading")
	}
}

func TestBreakerTripsOnConsecutiveFailures(t *testing.T) {
	b := NewBreaker(testConfig())
	tripped := make(chan string, 1)
	b.OnTrip(func(reason string) { tripped <- reason })

	b.RecordFailure()
	b.RecordFailure()
	if ok, _ := b.CanTrade(); !ok {
		t.Fatal("breaker tripped before the limit")
	}

	b.RecordFailure()
	if ok, reason := b.CanTrade(); ok {
		t.Error("expected trading blocked after trip")
	} else if reason == "" {
		t.Error("expected a trip reason")
	}
	if state, _ := b.State(); state != StateOpen {
		t.Errorf("expected open state, got %s", state)
	}

	select {
	case <-tripped:
	case <-time.After(time.Second):
		t.Error("trip callback never fired")
	}
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	b := NewBreaker(testConfig())

	b.RecordFailure()
	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()
	b.RecordFailure()

	if ok, _ := b.CanTrade(); !ok {
		t.Error("success should have reset the consecutive failure count")
	}
}

func TestBreakerHalfOpenAfterCooldown(t *testing.T) {
	cfg := testConfig()
	cfg.CooldownMinutes = 0 // Cooldown elapses immediately
	b := NewBreaker(cfg)

	for i := 0; i < cfg.MaxConsecutiveFails; i++ {
		b.RecordFailure()
	}

	if ok, _ := b.CanTrade(); !ok {
		t.Fatal("expected probe allowed after cooldown")
	}
	if state, _ := b.State(); state != StateHalfOpen {
		t.Errorf("expected half_open state, got %s", state)
	}
}

func TestBreakerRecoversOnProbeSuccess(t *testing.T) {
	cfg := testConfig()
	cfg.CooldownMinutes = 0
	b := NewBreaker(cfg)
	reset := make(chan struct{}, 1)
	b.OnReset(func() { reset <- struct{}{} })

	for i := 0; i < cfg.MaxConsecutiveFails; i++ {
		b.RecordFailure()
	}
	b.CanTrade() // Moves to half_open
	b.RecordSuccess()

	if state, _ := b.State(); state != StateClosed {
		t.Errorf("expected closed after probe success, got %s", state)
	}
	select {
	case <-reset:
	case <-time.After(time.Second):
		t.Error("reset callback never fired")
	}
}

func TestBreakerReTripsOnProbeFailure(t *testing.T) {
	cfg := testConfig()
	cfg.CooldownMinutes = 0
	b := NewBreaker(cfg)

	for i := 0; i < cfg.MaxConsecutiveFails; i++ {
		b.RecordFailure()
	}
	b.CanTrade() // Moves to half_open
	b.RecordFailure()

	if state, _ := b.State(); state != StateOpen {
		t.Errorf("expected re-trip on probe failure, got %s", state)
	}
}

func TestBreakerRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.MaxTradesPerMinute = 2
	b := NewBreaker(cfg)

	b.RecordSuccess()
	b.RecordSuccess()

	if ok, reason := b.CanTrade(); ok {
		t.Error("expected rate limit block")
	} else if reason != "trade rate limit reached" {
		t.Errorf("unexpected reason %q", reason)
	}
}

func TestBreakerDailyLimit(t *testing.T) {
	cfg := testConfig()
	cfg.MaxTradesPerMinute = 0 // Unlimited per minute
	cfg.MaxDailyTrades = 3
	b := NewBreaker(cfg)

	for i := 0; i < 3; i++ {
		b.RecordSuccess()
	}

	if ok, reason := b.CanTrade(); ok {
		t.Error("expected daily limit block")
	} else if reason != "daily trade limit reached" {
		t.Errorf("unexpected reason %q", reason)
	}
}
