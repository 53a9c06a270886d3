package resilience

import (
	"errors"
	"testing"
	"time"
)

// TestCircuitBreakerOpensAtThreshold verifies the breaker trips after the
// configured consecutive failures and then rejects without calling fn.
func TestCircuitBreakerOpensAtThreshold(t *testing.T) {
	cb := NewCircuitBreaker("dataset", CircuitBreakerConfig{FailureThreshold: 3, Cooldown: time.Hour})
	boom := errors.New("connection refused")

	for i := 0; i < 3; i++ {
		if err := cb.Execute(func() error { return boom }); !errors.Is(err, boom) {
			t.Fatalf("failure %d: Execute() = %v, want %v", i, err, boom)
		}
	}
	if state := cb.CurrentState(); state != StateOpen {
		t.Fatalf("state = %v, want open", state)
	}

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("Execute() while open = %v, want ErrCircuitOpen", err)
	}
	if called {
		t.Error("fn ran while circuit open")
	}
}

// TestCircuitBreakerSuccessResetsCount verifies a success between failures
// keeps the breaker closed.
func TestCircuitBreakerSuccessResetsCount(t *testing.T) {
	cb := NewCircuitBreaker("dataset", CircuitBreakerConfig{FailureThreshold: 2, Cooldown: time.Hour})
	boom := errors.New("timeout")

	cb.Execute(func() error { return boom })
	cb.Execute(func() error { return nil })
	cb.Execute(func() error { return boom })

	if state := cb.CurrentState(); state != StateClosed {
		t.Errorf("state = %v, want closed", state)
	}
}

// TestCircuitBreakerProbeAfterCooldown verifies the open breaker admits a
// probe once the cooldown elapses, closing on success.
func TestCircuitBreakerProbeAfterCooldown(t *testing.T) {
	cb := NewCircuitBreaker("dataset", CircuitBreakerConfig{FailureThreshold: 1, Cooldown: 10 * time.Millisecond})
	cb.Execute(func() error { return errors.New("down") })
	if state := cb.CurrentState(); state != StateOpen {
		t.Fatalf("state = %v, want open", state)
	}

	time.Sleep(20 * time.Millisecond)

	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Fatalf("probe Execute() = %v, want nil", err)
	}
	if state := cb.CurrentState(); state != StateClosed {
		t.Errorf("state after successful probe = %v, want closed", state)
	}
}

// TestCircuitBreakerFailedProbeReopens verifies a failing probe re-opens
// the circuit for another full cooldown.
func TestCircuitBreakerFailedProbeReopens(t *testing.T) {
	cb := NewCircuitBreaker("dataset", CircuitBreakerConfig{FailureThreshold: 1, Cooldown: 10 * time.Millisecond})
	boom := errors.New("still down")
	cb.Execute(func() error { return boom })

	time.Sleep(20 * time.Millisecond)

	if err := cb.Execute(func() error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("probe Execute() = %v, want %v", err, boom)
	}
	if state := cb.CurrentState(); state != StateOpen {
		t.Errorf("state after failed probe = %v, want open", state)
	}
	if err := cb.Execute(func() error { return nil }); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Execute() right after re-open = %v, want ErrCircuitOpen", err)
	}
}
