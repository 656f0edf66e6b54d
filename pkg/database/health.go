package database

import (
	"context"
	"time"

	"NeedForPartyService/pkg/apperrors"
	"NeedForPartyService/pkg/resilience"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HealthChecker предоставляет функции для проверки состояния баз данных
type HealthChecker struct {
	db           *gorm.DB
	redisClient  *redis.Client
	logger       *zap.Logger
	pgCircuit    *resilience.CircuitBreaker
	redisCircuit *resilience.CircuitBreaker
}

// Diagnostics содержит результат диагностического опроса базы данных
// для эндпоинта /api/test-db
type Diagnostics struct {
	Tables    []string
	UserCount int64
}

// NewHealthChecker создает новый экземпляр проверки состояния баз данных
func NewHealthChecker(db *gorm.DB, redisClient *redis.Client, logger *zap.Logger) *HealthChecker {
	failureThreshold, resetTimeout := resilience.DefaultCircuitBreakerOptions()

	return &HealthChecker{
		db:           db,
		redisClient:  redisClient,
		logger:       logger,
		pgCircuit:    resilience.NewCircuitBreaker("postgres", failureThreshold, resetTimeout, logger, apperrors.IgnoredErrors...),
		redisCircuit: resilience.NewCircuitBreaker("redis", failureThreshold, resetTimeout, logger, apperrors.IgnoredErrors...),
	}
}

// IsDatabaseHealthy проверяет здоровье PostgreSQL
func (c *HealthChecker) IsDatabaseHealthy(ctx context.Context) bool {
	err := c.pgCircuit.Execute(ctx, "postgres_health_check", func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		sqlDB, err := c.db.DB()
		if err != nil {
			return err
		}

		return sqlDB.PingContext(ctx)
	})
	if err != nil {
		c.logger.Warn("PostgreSQL health check failed", zap.Error(err))
		return false
	}

	return true
}

// IsRedisHealthy проверяет здоровье Redis
func (c *HealthChecker) IsRedisHealthy(ctx context.Context) bool {
	err := c.redisCircuit.Execute(ctx, "redis_health_check", func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		return c.redisClient.Ping(ctx).Err()
	})
	if err != nil {
		c.logger.Warn("Redis health check failed", zap.Error(err))
		return false
	}

	return true
}

// DatabaseVersion возвращает строку версии сервера PostgreSQL.
// Длинная строка обрезается до 100 символов, этого достаточно для диагностики
func (c *HealthChecker) DatabaseVersion(ctx context.Context) (string, error) {
	var version string
	err := c.pgCircuit.Execute(ctx, "postgres_version", func(ctx context.Context) error {
		return c.db.WithContext(ctx).Raw("SELECT version()").Scan(&version).Error
	})
	if err != nil {
		return "", err
	}

	if len(version) > 100 {
		version = version[:100]
	}

	return version, nil
}

// CollectDiagnostics собирает список таблиц и количество пользователей
func (c *HealthChecker) CollectDiagnostics(ctx context.Context) (*Diagnostics, error) {
	diag := &Diagnostics{}

	err := c.pgCircuit.Execute(ctx, "postgres_diagnostics", func(ctx context.Context) error {
		tx := c.db.WithContext(ctx)

		if err := tx.Raw(
			"SELECT tablename FROM pg_catalog.pg_tables WHERE schemaname = 'public' ORDER BY tablename",
		).Scan(&diag.Tables).Error; err != nil {
			return err
		}

		return tx.Table("users").Count(&diag.UserCount).Error
	})
	if err != nil {
		return nil, err
	}

	return diag, nil
}
