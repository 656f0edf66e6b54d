package main

import (
	"context"
	"time"

	"NeedForPartyService/config"
	"NeedForPartyService/internal/bot"
	"NeedForPartyService/pkg/logger"
	"NeedForPartyService/pkg/server"

	"go.uber.org/zap"
)

func main() {
	// Инициализация логгера
	log := logger.NewLogger()
	log.Info("Запуск Telegram-бота Need for Party")

	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Не удалось загрузить конфигурацию", zap.Error(err))
	}

	if cfg.Bot.Token == "" {
		log.Fatal("Не задан BOT_TOKEN")
	}

	// Создаем механизм graceful shutdown
	gracefulShutdown := server.NewGracefulShutdown(log, 10*time.Second)

	tgBot, err := bot.New(cfg.Bot, log)
	if err != nil {
		log.Fatal("Не удалось инициализировать бота", zap.Error(err))
	}

	gracefulShutdown.AddShutdownFunc(func(ctx context.Context) error {
		tgBot.Stop()
		return nil
	})

	// Запуск цикла обработки обновлений в отдельной горутине
	go tgBot.Start()

	// Ожидаем сигнала остановки
	gracefulShutdown.Wait()
	log.Info("Завершение работы бота выполнено")
}
