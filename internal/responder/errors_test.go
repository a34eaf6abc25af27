package responder

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestKind(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"transient rate limit", transient(KindRateLimit, errors.New("429")), KindRateLimit},
		{"wrapped transient", fmt.Errorf("outer: %w", transient(KindStatus, errors.New("500"))), KindStatus},
		{"config", &ConfigError{Msg: "bad"}, KindConfig},
		{"deadline", context.DeadlineExceeded, KindTimeout},
		{"plain", errors.New("boom"), KindRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Kind(tc.err); got != tc.want {
				t.Fatalf("Kind() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestTransientErrorMessage(t *testing.T) {
	err := transient(KindStatus, errors.New("500 internal"))
	want := "APIStatusError: 500 internal"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}

	var te *TransientError
	if !errors.As(err, &te) {
		t.Fatal("expected *TransientError")
	}
	if te.Unwrap() == nil {
		t.Fatal("Unwrap() = nil, want inner error")
	}
}

func TestConfigErrorIsPermanent(t *testing.T) {
	err := &ConfigError{Msg: "missing path"}
	if !err.Permanent() {
		t.Fatal("Permanent() = false, want true")
	}
	if err.Error() != "missing path" {
		t.Fatalf("Error() = %q, want %q", err.Error(), "missing path")
	}
}

func TestClassifyCallError(t *testing.T) {
	if got := Kind(classifyCallError(context.DeadlineExceeded)); got != KindTimeout {
		t.Fatalf("deadline kind = %q, want %q", got, KindTimeout)
	}
	if got := Kind(classifyCallError(errors.New("read tcp: reset"))); got != KindRequest {
		t.Fatalf("plain kind = %q, want %q", got, KindRequest)
	}
	if classifyCallError(nil) != nil {
		t.Fatal("classifyCallError(nil) != nil")
	}
}
