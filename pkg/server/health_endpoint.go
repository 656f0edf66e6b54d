package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// HealthCheckerInterface определяет интерфейс для проверки здоровья зависимостей
type HealthCheckerInterface interface {
	// IsDatabaseHealthy проверяет здоровье PostgreSQL
	IsDatabaseHealthy(ctx context.Context) bool

	// IsRedisHealthy проверяет здоровье Redis
	IsRedisHealthy(ctx context.Context) bool

	// DatabaseVersion возвращает строку версии сервера базы данных
	DatabaseVersion(ctx context.Context) (string, error)
}

// HealthCheck представляет сервис проверки здоровья
type HealthCheck struct {
	checker       HealthCheckerInterface
	logger        *zap.Logger
	statusMutex   sync.RWMutex
	serviceStatus map[string]string
	stop          chan struct{}
	stopOnce      sync.Once
}

// HealthResponse представляет ответ эндпоинта /api/health
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Database  string    `json:"database"`
	Version   *string   `json:"version"`
}

// NewHealthCheck создает новый сервис проверки здоровья
func NewHealthCheck(checker HealthCheckerInterface, logger *zap.Logger) *HealthCheck {
	health := &HealthCheck{
		checker:       checker,
		logger:        logger,
		serviceStatus: make(map[string]string),
		stop:          make(chan struct{}),
	}

	health.serviceStatus["postgres"] = "unknown"
	health.serviceStatus["redis"] = "unknown"

	return health
}

// Start запускает фоновую проверку здоровья зависимостей
func (h *HealthCheck) Start() {
	h.checkServicesHealth()
	go h.monitorHealth()
}

// Stop останавливает фоновую проверку
func (h *HealthCheck) Stop() {
	h.stopOnce.Do(func() {
		close(h.stop)
	})
}

// Handler обрабатывает запросы /api/health: статус сервиса, доступность базы
// и строка версии сервера
func (h *HealthCheck) Handler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "healthy"
	dbStatus := "connected"

	var version *string
	if v, err := h.checker.DatabaseVersion(ctx); err == nil {
		version = &v
	} else {
		status = "unhealthy"
		dbStatus = "disconnected"
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Database:  dbStatus,
		Version:   version,
	}

	w.Header().Set("Content-Type", "application/json")
	if status != "healthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	json.NewEncoder(w).Encode(response)
}

// LivenessHandler обрабатывает запросы проверки жизнеспособности:
// отвечает, пока жив сам процесс
func (h *HealthCheck) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "up"})
}

// ReadinessHandler обрабатывает запросы проверки готовности:
// без PostgreSQL сервис не готов принимать запросы
func (h *HealthCheck) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	h.statusMutex.RLock()
	pgStatus := h.serviceStatus["postgres"]
	h.statusMutex.RUnlock()

	w.Header().Set("Content-Type", "application/json")

	if pgStatus != "up" {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{
			"status":  "down",
			"message": "PostgreSQL is not available",
		})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "up"})
}

// monitorHealth регулярно проверяет состояние зависимостей
func (h *HealthCheck) monitorHealth() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.checkServicesHealth()
		case <-h.stop:
			return
		}
	}
}

// checkServicesHealth проверяет здоровье всех зависимостей
func (h *HealthCheck) checkServicesHealth() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	pgStatus := "up"
	if !h.checker.IsDatabaseHealthy(ctx) {
		pgStatus = "down"
		h.logger.Warn("PostgreSQL health check failed")
	}

	// Redis деградирует, но не роняет готовность: кэш не обязателен
	redisStatus := "up"
	if !h.checker.IsRedisHealthy(ctx) {
		redisStatus = "degraded"
		h.logger.Warn("Redis health check failed")
	}

	h.statusMutex.Lock()
	h.serviceStatus["postgres"] = pgStatus
	h.serviceStatus["redis"] = redisStatus
	h.statusMutex.Unlock()
}
