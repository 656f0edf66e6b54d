package resilience

import (
	"context"
	"errors"
	"sync"
	"time"

	"NeedForPartyService/pkg/server"

	"go.uber.org/zap"
)

// CircuitState представляет состояние circuit breaker
type CircuitState int

const (
	// CircuitClosed означает нормальное состояние, запросы проходят
	CircuitClosed CircuitState = iota
	// CircuitOpen означает состояние ошибки, запросы блокируются
	CircuitOpen
	// CircuitHalfOpen означает пробное состояние после таймаута сброса
	CircuitHalfOpen
)

// metricValue возвращает числовое представление состояния для метрики
// circuit_breaker_state (0: closed, 1: half-open, 2: open)
func (s CircuitState) metricValue() int {
	switch s {
	case CircuitHalfOpen:
		return 1
	case CircuitOpen:
		return 2
	default:
		return 0
	}
}

// ErrCircuitOpen возвращается, когда circuit breaker блокирует операцию
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreaker защищает внешние зависимости от каскадных отказов
type CircuitBreaker struct {
	name             string
	state            CircuitState
	failureCount     int
	failureThreshold int
	resetTimeout     time.Duration
	lastStateChange  time.Time
	mutex            sync.Mutex
	logger           *zap.Logger
	ignoredErrors    []error
}

// NewCircuitBreaker создает новый экземпляр CircuitBreaker.
// Ошибки из списка ignoredErrors (например, "запись не найдена") не считаются
// отказами зависимости и не влияют на счетчик ошибок
func NewCircuitBreaker(name string, failureThreshold int, resetTimeout time.Duration, logger *zap.Logger, ignoredErrors ...error) *CircuitBreaker {
	server.RecordCircuitBreakerStateChange(name, CircuitClosed.metricValue())

	return &CircuitBreaker{
		name:             name,
		state:            CircuitClosed,
		failureThreshold: failureThreshold,
		resetTimeout:     resetTimeout,
		lastStateChange:  time.Now(),
		logger:           logger,
		ignoredErrors:    ignoredErrors,
	}
}

// DefaultCircuitBreakerOptions возвращает рекомендуемые настройки circuit breaker
func DefaultCircuitBreakerOptions() (int, time.Duration) {
	return 5, 30 * time.Second
}

// Execute выполняет функцию с учетом состояния circuit breaker
func (cb *CircuitBreaker) Execute(ctx context.Context, operation string, fn func(context.Context) error) error {
	if !cb.allowRequest() {
		cb.logger.Warn("Circuit breaker preventing operation execution",
			zap.String("breaker", cb.name),
			zap.String("operation", operation))
		return ErrCircuitOpen
	}

	err := fn(ctx)
	cb.handleResult(operation, err)

	return err
}

// State возвращает текущее состояние circuit breaker
func (cb *CircuitBreaker) State() CircuitState {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	return cb.state
}

// allowRequest проверяет, можно ли выполнить запрос в текущем состоянии
func (cb *CircuitBreaker) allowRequest() bool {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	switch cb.state {
	case CircuitClosed:
		return true
	case CircuitOpen:
		// По истечении таймаута сброса переходим в полуоткрытое состояние
		// и пропускаем один пробный запрос
		if time.Since(cb.lastStateChange) > cb.resetTimeout {
			cb.transitionTo(CircuitHalfOpen)
			return true
		}
		return false
	case CircuitHalfOpen:
		return true
	default:
		return false
	}
}

// handleResult обрабатывает результат выполнения функции
func (cb *CircuitBreaker) handleResult(operation string, err error) {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	if err != nil && cb.isIgnoredError(err) {
		return
	}

	if err != nil {
		switch cb.state {
		case CircuitClosed:
			cb.failureCount++
			if cb.failureCount >= cb.failureThreshold {
				cb.logger.Warn("Circuit breaker opened after repeated failures",
					zap.String("breaker", cb.name),
					zap.String("operation", operation),
					zap.Int("failures", cb.failureCount))
				cb.transitionTo(CircuitOpen)
			}
		case CircuitHalfOpen:
			// Пробный запрос не удался, снова блокируем
			cb.logger.Warn("Circuit breaker reopened after failed probe",
				zap.String("breaker", cb.name),
				zap.String("operation", operation))
			cb.transitionTo(CircuitOpen)
		}
		return
	}

	// Успех: в полуоткрытом состоянии закрываемся, в закрытом сбрасываем счетчик
	if cb.state == CircuitHalfOpen {
		cb.logger.Info("Circuit breaker closed after successful probe",
			zap.String("breaker", cb.name),
			zap.String("operation", operation))
		cb.transitionTo(CircuitClosed)
	}
	cb.failureCount = 0
}

// transitionTo переводит circuit breaker в новое состояние (вызывается под мьютексом)
func (cb *CircuitBreaker) transitionTo(state CircuitState) {
	cb.state = state
	cb.lastStateChange = time.Now()
	if state != CircuitOpen {
		cb.failureCount = 0
	}

	server.RecordCircuitBreakerStateChange(cb.name, state.metricValue())
}

// isIgnoredError проверяет, входит ли ошибка в список игнорируемых
func (cb *CircuitBreaker) isIgnoredError(err error) bool {
	for _, ignored := range cb.ignoredErrors {
		if errors.Is(err, ignored) {
			return true
		}
	}
	return false
}
