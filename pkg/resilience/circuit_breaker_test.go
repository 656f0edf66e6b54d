package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

// TestCircuitBreakerOpensAfterThreshold проверяет открытие после порога ошибок
func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker("test", 3, time.Minute, zap.NewNop())

	failing := func(ctx context.Context) error {
		return errors.New("dependency failure")
	}

	ctx := context.Background()

	// Первые три ошибки проходят и накапливаются
	for i := 0; i < 3; i++ {
		if err := cb.Execute(ctx, "op", failing); err == nil {
			t.Fatalf("Expected error on attempt %d", i+1)
		}
	}

	if cb.State() != CircuitOpen {
		t.Errorf("Expected circuit to be open after %d failures", 3)
	}

	// Следующий запрос блокируется, функция не выполняется
	called := false
	err := cb.Execute(ctx, "op", func(ctx context.Context) error {
		called = true
		return nil
	})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Expected ErrCircuitOpen, got %v", err)
	}
	if called {
		t.Error("Function should not be called while circuit is open")
	}
}

// TestCircuitBreakerIgnoredErrors проверяет, что игнорируемые ошибки не открывают breaker
func TestCircuitBreakerIgnoredErrors(t *testing.T) {
	ignored := errors.New("запись не найдена")
	cb := NewCircuitBreaker("test", 2, time.Minute, zap.NewNop(), ignored)

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		err := cb.Execute(ctx, "op", func(ctx context.Context) error {
			return ignored
		})
		if !errors.Is(err, ignored) {
			t.Fatalf("Expected ignored error to pass through, got %v", err)
		}
	}

	if cb.State() != CircuitClosed {
		t.Error("Ignored errors must not open the circuit")
	}
}

// TestCircuitBreakerHalfOpenRecovery проверяет восстановление через полуоткрытое состояние
func TestCircuitBreakerHalfOpenRecovery(t *testing.T) {
	cb := NewCircuitBreaker("test", 1, 20*time.Millisecond, zap.NewNop())

	ctx := context.Background()
	_ = cb.Execute(ctx, "op", func(ctx context.Context) error {
		return errors.New("dependency failure")
	})

	if cb.State() != CircuitOpen {
		t.Fatal("Expected circuit to open after failure")
	}

	// Ждем таймаут сброса и выполняем успешный пробный запрос
	time.Sleep(30 * time.Millisecond)

	if err := cb.Execute(ctx, "op", func(ctx context.Context) error {
		return nil
	}); err != nil {
		t.Fatalf("Expected probe request to succeed, got %v", err)
	}

	if cb.State() != CircuitClosed {
		t.Error("Expected circuit to close after successful probe")
	}
}

// TestCircuitStateMetricValue проверяет кодировку состояний для метрики circuit_breaker_state
func TestCircuitStateMetricValue(t *testing.T) {
	cases := []struct {
		state CircuitState
		want  int
	}{
		{CircuitClosed, 0},
		{CircuitHalfOpen, 1},
		{CircuitOpen, 2},
	}

	for _, c := range cases {
		if got := c.state.metricValue(); got != c.want {
			t.Errorf("Expected metric value %d for state %d, got %d", c.want, c.state, got)
		}
	}
}

// TestCircuitBreakerReopensAfterFailedProbe проверяет повторное открытие после неудачной пробы
func TestCircuitBreakerReopensAfterFailedProbe(t *testing.T) {
	cb := NewCircuitBreaker("test", 1, 20*time.Millisecond, zap.NewNop())

	ctx := context.Background()
	_ = cb.Execute(ctx, "op", func(ctx context.Context) error {
		return errors.New("dependency failure")
	})

	time.Sleep(30 * time.Millisecond)

	_ = cb.Execute(ctx, "op", func(ctx context.Context) error {
		return errors.New("still failing")
	})

	if cb.State() != CircuitOpen {
		t.Error("Expected circuit to reopen after failed probe")
	}
}
