package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

type permErr struct{ msg string }

func (e *permErr) Error() string   { return e.msg }
func (e *permErr) Permanent() bool { return true }

func TestDoFirstAttemptSucceeds(t *testing.T) {
	var slept []time.Duration
	p := Policy{
		MaxAttempts: 3,
		BackoffUnit: 5 * time.Second,
		Sleep:       func(d time.Duration) { slept = append(slept, d) },
	}

	calls := 0
	out, err := Do(context.Background(), p, func(ctx context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if out != "ok" {
		t.Fatalf("Do() = %q, want %q", out, "ok")
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if len(slept) != 0 {
		t.Fatalf("slept %v, want no sleeps", slept)
	}
}

func TestDoRecoversAfterFailures(t *testing.T) {
	var slept []time.Duration
	p := Policy{
		MaxAttempts: 3,
		BackoffUnit: 5 * time.Second,
		Sleep:       func(d time.Duration) { slept = append(slept, d) },
	}

	calls := 0
	out, err := Do(context.Background(), p, func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if out != "ok" {
		t.Fatalf("Do() = %q, want %q", out, "ok")
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}

	want := []time.Duration{5 * time.Second, 10 * time.Second}
	if len(slept) != len(want) {
		t.Fatalf("slept %v, want %v", slept, want)
	}
	for i := range want {
		if slept[i] != want[i] {
			t.Fatalf("sleep[%d] = %v, want %v", i, slept[i], want[i])
		}
	}
}

func TestDoExhaustsBudget(t *testing.T) {
	var slept []time.Duration
	p := Policy{
		MaxAttempts: 3,
		BackoffUnit: 3 * time.Second,
		Sleep:       func(d time.Duration) { slept = append(slept, d) },
	}

	lastErr := errors.New("still failing")
	calls := 0
	_, err := Do(context.Background(), p, func(ctx context.Context) (string, error) {
		calls++
		return "", lastErr
	})
	if !errors.Is(err, lastErr) {
		t.Fatalf("Do() error = %v, want %v", err, lastErr)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}

	want := []time.Duration{3 * time.Second, 6 * time.Second}
	if len(slept) != len(want) {
		t.Fatalf("slept %v, want %v", slept, want)
	}
	for i := range want {
		if slept[i] != want[i] {
			t.Fatalf("sleep[%d] = %v, want %v", i, slept[i], want[i])
		}
	}
}

func TestDoStopsOnPermanentError(t *testing.T) {
	p := Policy{
		MaxAttempts: 3,
		BackoffUnit: time.Second,
		Sleep:       func(time.Duration) { t.Fatal("unexpected sleep") },
	}

	perm := &permErr{msg: "bad config"}
	calls := 0
	_, err := Do(context.Background(), p, func(ctx context.Context) (string, error) {
		calls++
		return "", perm
	})
	if !errors.Is(err, perm) {
		t.Fatalf("Do() error = %v, want %v", err, perm)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestDoStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := Policy{MaxAttempts: 3, Sleep: func(time.Duration) {}}
	calls := 0
	_, err := Do(ctx, p, func(ctx context.Context) (string, error) {
		calls++
		return "", errors.New("should not run")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Do() error = %v, want context.Canceled", err)
	}
	if calls != 0 {
		t.Fatalf("calls = %d, want 0", calls)
	}
}

func TestDoDefaultsToSingleAttempt(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), Policy{Sleep: func(time.Duration) {}}, func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("fail")
	})
	if err == nil {
		t.Fatal("Do() error = nil, want error")
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}
