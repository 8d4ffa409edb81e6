package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/podsage/podsage/pkg/fn"
)

// --- Limiter ---

func TestLimiterAllowConsumesBurst(t *testing.T) {
	l := NewLimiter(LimiterOpts{Rate: 1, Burst: 2})
	if !l.Allow() || !l.Allow() {
		t.Fatal("burst tokens should be available")
	}
	if l.Allow() {
		t.Fatal("third call should be limited")
	}
}

func TestLimiterRefills(t *testing.T) {
	now := time.Now()
	l := NewLimiter(LimiterOpts{Rate: 2, Burst: 1})
	l.now = func() time.Time { return now }

	if !l.Allow() {
		t.Fatal("first token should be available")
	}
	if l.Allow() {
		t.Fatal("bucket should be empty")
	}

	now = now.Add(time.Second) // 2 tokens accrue, capped at burst 1
	if !l.Allow() {
		t.Fatal("token should have refilled")
	}
	if l.Allow() {
		t.Fatal("refill must cap at burst")
	}
}

func TestLimiterZeroOptsDefaulted(t *testing.T) {
	now := time.Now()
	l := NewLimiter(LimiterOpts{})
	l.now = func() time.Time { return now }

	if !l.Allow() {
		t.Fatal("default burst should hold one token")
	}
	if l.Allow() {
		t.Fatal("bucket should be empty")
	}

	// A zero Rate would never refill and make Wait compute an infinite
	// sleep; the default of one token per second must apply instead.
	now = now.Add(time.Second)
	if !l.Allow() {
		t.Fatal("defaulted rate should refill one token per second")
	}

	l.mu.Lock()
	rate := l.opts.Rate
	l.mu.Unlock()
	if rate != 1 {
		t.Fatalf("rate = %v, want 1", rate)
	}
}

func TestLimiterWaitCancelled(t *testing.T) {
	l := NewLimiter(LimiterOpts{Rate: 0.001, Burst: 1})
	l.Allow() // drain

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func TestLimiterCallWait(t *testing.T) {
	l := NewLimiter(LimiterOpts{Rate: 100, Burst: 1})
	called := false
	err := l.CallWait(context.Background(), func(context.Context) error {
		called = true
		return nil
	})
	if err != nil || !called {
		t.Fatalf("err=%v called=%v", err, called)
	}
}

// --- Breaker ---

func failing(err error) func(context.Context) error {
	return func(context.Context) error { return err }
}

func TestBreakerTripsAfterThreshold(t *testing.T) {
	b := NewBreaker(BreakerOpts{FailThreshold: 3, Timeout: time.Minute})
	boom := errors.New("boom")

	for i := 0; i < 3; i++ {
		if err := b.Call(context.Background(), failing(boom)); !errors.Is(err, boom) {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if b.State() != StateOpen {
		t.Fatalf("state = %v, want open", b.State())
	}
	if err := b.Call(context.Background(), failing(nil)); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("open breaker should reject, got %v", err)
	}
}

func TestBreakerHalfOpenRecovery(t *testing.T) {
	now := time.Now()
	b := NewBreaker(BreakerOpts{FailThreshold: 1, Timeout: time.Minute})
	b.now = func() time.Time { return now }

	b.Call(context.Background(), failing(errors.New("boom")))
	if b.State() != StateOpen {
		t.Fatal("should be open")
	}

	now = now.Add(2 * time.Minute)
	if b.State() != StateHalfOpen {
		t.Fatal("should be half-open after timeout")
	}

	if err := b.Call(context.Background(), failing(nil)); err != nil {
		t.Fatalf("probe should pass: %v", err)
	}
	if b.State() != StateClosed {
		t.Fatalf("successful probe should close, state = %v", b.State())
	}
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	now := time.Now()
	b := NewBreaker(BreakerOpts{FailThreshold: 1, Timeout: time.Minute})
	b.now = func() time.Time { return now }

	b.Call(context.Background(), failing(errors.New("boom")))
	now = now.Add(2 * time.Minute)

	b.Call(context.Background(), failing(errors.New("still broken")))
	if b.State() != StateOpen {
		t.Fatalf("failed probe should reopen, state = %v", b.State())
	}
}

func TestBreakerSuccessResetsFailures(t *testing.T) {
	b := NewBreaker(BreakerOpts{FailThreshold: 2, Timeout: time.Minute})
	boom := errors.New("boom")

	b.Call(context.Background(), failing(boom))
	b.Call(context.Background(), failing(nil))
	b.Call(context.Background(), failing(boom))
	if b.State() != StateClosed {
		t.Fatal("interleaved success should keep breaker closed")
	}
}

func TestCallResult(t *testing.T) {
	b := NewBreaker(BreakerOpts{FailThreshold: 1, Timeout: time.Minute})

	r := CallResult(b, context.Background(), func(context.Context) fn.Result[string] {
		return fn.Ok("answer")
	})
	if v, _ := r.Unwrap(); v != "answer" {
		t.Fatalf("got %q", v)
	}

	CallResult(b, context.Background(), func(context.Context) fn.Result[string] {
		return fn.Errf[string]("boom")
	})
	rejected := CallResult(b, context.Background(), func(context.Context) fn.Result[string] {
		t.Fatal("open breaker must not invoke f")
		return fn.Ok("")
	})
	if _, err := rejected.Unwrap(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("want ErrCircuitOpen, got %v", err)
	}
}

func TestStateString(t *testing.T) {
	if StateClosed.String() != "closed" || StateOpen.String() != "open" || StateHalfOpen.String() != "half-open" {
		t.Fatal("state names wrong")
	}
}
