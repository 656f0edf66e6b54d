package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"NeedForPartyService/config"
	"NeedForPartyService/internal/database/seed"
	delivery "NeedForPartyService/internal/delivery/http"
	"NeedForPartyService/internal/refercode"
	"NeedForPartyService/internal/repository/postgres"
	"NeedForPartyService/internal/repository/redis"
	"NeedForPartyService/internal/service"
	"NeedForPartyService/pkg/database"
	"NeedForPartyService/pkg/logger"
	"NeedForPartyService/pkg/server"

	"go.uber.org/zap"
)

// Версия сервиса
const (
	ServiceVersion = "1.0.0"
)

func main() {
	// Инициализация логгера
	log := logger.NewLogger()
	log.Info("Запуск сервиса Need for Party", zap.String("version", ServiceVersion))

	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Не удалось загрузить конфигурацию", zap.Error(err))
	}

	// Определение номеров портов
	httpPort := cfg.HTTP.Port
	metricsPort := httpPort + 200

	// Создаем механизм graceful shutdown
	gracefulShutdown := server.NewGracefulShutdown(log, 30*time.Second)

	// Подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Postgres, log)
	if err != nil {
		log.Fatal("Не удалось подключиться к PostgreSQL", zap.Error(err))
	}
	log.Info("Подключение к PostgreSQL установлено")

	// Получаем базовое подключение к PostgreSQL для закрытия
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("Не удалось получить экземпляр SQL DB", zap.Error(err))
	}

	// Добавляем закрытие соединения с PostgreSQL при завершении
	gracefulShutdown.AddShutdownFunc(func(ctx context.Context) error {
		log.Info("Закрытие соединения с PostgreSQL")
		return sqlDB.Close()
	})

	// Подключение к Redis
	redisClient, err := database.NewRedisClient(cfg.Redis)
	if err != nil {
		log.Fatal("Не удалось подключиться к Redis", zap.Error(err))
	}
	log.Info("Подключение к Redis установлено")

	// Добавляем закрытие соединения с Redis при завершении
	gracefulShutdown.AddShutdownFunc(func(ctx context.Context) error {
		log.Info("Закрытие соединения с Redis")
		return redisClient.Close()
	})

	// Заполняем базовую роль и демонстрационные данные
	seeder := seed.NewDevEnvironmentSeeder(db, log)
	if err := seeder.SeedAllDevData(context.Background()); err != nil {
		log.Warn("Не удалось заполнить начальные данные", zap.Error(err))
	}

	// Создаем проверку здоровья баз данных
	healthChecker := database.NewHealthChecker(db, redisClient, log)

	// Запускаем сервер для метрик Prometheus
	metricsServer := server.MetricsServer(strconv.Itoa(metricsPort))

	// Добавляем остановку сервера метрик при завершении
	gracefulShutdown.AddShutdownFunc(func(ctx context.Context) error {
		log.Info("Остановка сервера метрик")
		return metricsServer.Shutdown(ctx)
	})

	// Инициализация репозиториев
	userRepo := postgres.NewUserRepository(db)
	partyRepo := postgres.NewPartyRepository(db)
	cacheRepo := redis.NewCacheRepository(redisClient, log)

	// Инициализация сервисов
	referCodes := refercode.NewDefaultGenerator()
	userService := service.NewUserService(userRepo, cacheRepo, referCodes, log)
	partyService := service.NewPartyService(partyRepo, cacheRepo, log)

	// Фоновая проверка здоровья зависимостей
	healthCheck := server.NewHealthCheck(healthChecker, log)
	healthCheck.Start()

	gracefulShutdown.AddShutdownFunc(func(ctx context.Context) error {
		log.Info("Остановка фоновой проверки здоровья")
		healthCheck.Stop()
		return nil
	})

	// Инициализация HTTP API
	handler := delivery.NewHandler(
		userService,
		partyService,
		healthChecker,
		log,
		cfg.Postgres.Host,
		cfg.Postgres.DBName,
	)
	router := delivery.NewRouter(handler, healthCheck, log, cfg.HTTP)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", httpPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Добавляем остановку HTTP сервера при завершении
	gracefulShutdown.AddShutdownFunc(func(ctx context.Context) error {
		log.Info("Остановка HTTP сервера")
		return httpServer.Shutdown(ctx)
	})

	// Запуск HTTP сервера в отдельной горутине
	go func() {
		log.Info("Запуск HTTP сервера", zap.Int("port", httpPort))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Не удалось запустить HTTP сервер", zap.Error(err))
		}
	}()

	// Логируем информацию о версии и PID
	hostname, _ := os.Hostname()
	log.Info("Сервис успешно запущен",
		zap.Int("http_port", httpPort),
		zap.Int("metrics_port", metricsPort),
		zap.String("version", ServiceVersion),
		zap.Int("pid", os.Getpid()),
		zap.String("hostname", hostname))

	// Ожидаем сигнала остановки
	gracefulShutdown.Wait()
	log.Info("Завершение работы сервиса выполнено")
}
