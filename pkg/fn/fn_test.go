package fn

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"
)

// --- Result ---

func TestOkAndErr(t *testing.T) {
	r := Ok(42)
	if !r.IsOk() || r.IsErr() {
		t.Fatal("Ok should be ok")
	}
	v, err := r.Unwrap()
	if v != 42 || err != nil {
		t.Fatal("wrong unwrap")
	}

	e := Err[int](errors.New("fail"))
	if e.IsOk() || !e.IsErr() {
		t.Fatal("Err should be err")
	}
}

func TestErrf(t *testing.T) {
	r := Errf[string]("code %d", 404)
	_, err := r.Unwrap()
	if err == nil || err.Error() != "code 404" {
		t.Fatal("Errf wrong message")
	}
}

func TestUnwrapOr(t *testing.T) {
	if Ok(1).UnwrapOr(9) != 1 {
		t.Fatal("should return value")
	}
	if Err[int](errors.New("x")).UnwrapOr(9) != 9 {
		t.Fatal("should return fallback")
	}
}

func TestMapResult(t *testing.T) {
	r := MapResult(Ok(5), func(v int) string { return strconv.Itoa(v) })
	if s, _ := r.Unwrap(); s != "5" {
		t.Fatal("MapResult failed")
	}
}

func TestFromPair(t *testing.T) {
	r := FromPair(strconv.Atoi("42"))
	if v, _ := r.Unwrap(); v != 42 {
		t.Fatal("FromPair failed")
	}
	e := FromPair(strconv.Atoi("nope"))
	if e.IsOk() {
		t.Fatal("FromPair should fail")
	}
}

func TestCollect(t *testing.T) {
	ok := Collect([]Result[int]{Ok(1), Ok(2), Ok(3)})
	if vs, _ := ok.Unwrap(); len(vs) != 3 || vs[2] != 3 {
		t.Fatal("Collect lost values")
	}
	bad := Collect([]Result[int]{Ok(1), Err[int](errors.New("x"))})
	if bad.IsOk() {
		t.Fatal("Collect should fail on first error")
	}
}

// --- Pipeline ---

func TestThen(t *testing.T) {
	double := MapStage(func(v int) int { return v * 2 })
	str := MapStage(strconv.Itoa)
	stage := Then(double, str)
	if s, _ := stage(context.Background(), 21).Unwrap(); s != "42" {
		t.Fatalf("got %q", s)
	}
}

func TestThenShortCircuits(t *testing.T) {
	boom := errors.New("boom")
	fail := Stage[int, int](func(context.Context, int) Result[int] { return Err[int](boom) })
	called := false
	next := Stage[int, string](func(_ context.Context, v int) Result[string] {
		called = true
		return Ok(strconv.Itoa(v))
	})
	r := Then(fail, next)(context.Background(), 1)
	if _, err := r.Unwrap(); !errors.Is(err, boom) {
		t.Fatal("error not propagated")
	}
	if called {
		t.Fatal("second stage should not run after failure")
	}
}

func TestPipeline(t *testing.T) {
	inc := MapStage(func(v int) int { return v + 1 })
	stage := Pipeline(inc, inc, inc)
	if v, _ := stage(context.Background(), 0).Unwrap(); v != 3 {
		t.Fatalf("got %d", v)
	}
}

func TestTapStage(t *testing.T) {
	var seen int
	tap := TapStage(func(_ context.Context, v int) { seen = v })
	if v, _ := tap(context.Background(), 7).Unwrap(); v != 7 || seen != 7 {
		t.Fatal("tap should pass through and observe")
	}
}

func TestTracedStagePropagates(t *testing.T) {
	boom := errors.New("boom")
	fail := TracedStage("t", Stage[int, int](func(context.Context, int) Result[int] { return Err[int](boom) }))
	if _, err := fail(context.Background(), 0).Unwrap(); !errors.Is(err, boom) {
		t.Fatal("traced stage swallowed error")
	}
	ok := TracedStage("t", MapStage(func(v int) int { return v }))
	if v, _ := ok(context.Background(), 5).Unwrap(); v != 5 {
		t.Fatal("traced stage changed value")
	}
}

// --- Retry ---

func TestRetrySucceedsAfterFailures(t *testing.T) {
	attempts := 0
	r := Retry(context.Background(), RetryOpts{MaxAttempts: 5, InitialWait: time.Microsecond, MaxWait: time.Millisecond},
		func(context.Context) Result[int] {
			attempts++
			if attempts < 3 {
				return Errf[int]("attempt %d", attempts)
			}
			return Ok(attempts)
		})
	if v, _ := r.Unwrap(); v != 3 {
		t.Fatalf("got %d attempts", v)
	}
}

func TestRetryExhausts(t *testing.T) {
	attempts := 0
	r := Retry(context.Background(), RetryOpts{MaxAttempts: 3, InitialWait: time.Microsecond, MaxWait: time.Millisecond},
		func(context.Context) Result[int] {
			attempts++
			return Errf[int]("nope")
		})
	if r.IsOk() || attempts != 3 {
		t.Fatalf("expected 3 failed attempts, got %d ok=%v", attempts, r.IsOk())
	}
}

func TestRetryIfStopsOnNonRetryable(t *testing.T) {
	fatal := errors.New("fatal")
	attempts := 0
	r := RetryIf(context.Background(), RetryOpts{MaxAttempts: 5, InitialWait: time.Microsecond, MaxWait: time.Millisecond},
		func(err error) bool { return !errors.Is(err, fatal) },
		func(context.Context) Result[int] {
			attempts++
			return Err[int](fatal)
		})
	if attempts != 1 {
		t.Fatalf("non-retryable error should stop immediately, got %d attempts", attempts)
	}
	if _, err := r.Unwrap(); !errors.Is(err, fatal) {
		t.Fatal("original error must come back")
	}
}

func TestRetryHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := Retry(ctx, RetryOpts{MaxAttempts: 3, InitialWait: time.Hour, MaxWait: time.Hour},
		func(context.Context) Result[int] { return Errf[int]("nope") })
	if _, err := r.Unwrap(); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}
