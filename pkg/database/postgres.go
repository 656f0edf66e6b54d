package database

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"NeedForPartyService/config"
	"NeedForPartyService/internal/models"
	"NeedForPartyService/pkg/resilience"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewPostgresDB создает новое подключение к PostgreSQL и выполняет миграции.
// Подключение повторяется с экспоненциальной задержкой: при старте в
// контейнерном окружении база может подняться позже сервиса
func NewPostgresDB(cfg config.PostgresConfig, zlog *zap.Logger) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.DBName, cfg.SSLMode)

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Error,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	var db *gorm.DB
	err := resilience.WithRetry(context.Background(), zlog, "postgres_connect", resilience.ConnectRetryOptions(), func(ctx context.Context) error {
		var openErr error
		db, openErr = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: newLogger,
		})
		return openErr
	})
	if err != nil {
		return nil, err
	}

	// Настройка пула соединений
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Автоматическая миграция моделей
	err = db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.UserRole{},
		&models.Party{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}
