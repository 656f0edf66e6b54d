package bot

import (
	"fmt"
	"time"

	"NeedForPartyService/config"

	"go.uber.org/zap"
	telebot "gopkg.in/telebot.v3"
)

const pollTimeout = 10 * time.Second

// Bot оборачивает telebot.Bot и отправляет пользователям кнопку
// для открытия мини-приложения
type Bot struct {
	telebot   *telebot.Bot
	logger    *zap.Logger
	webAppURL string
}

// New создает новый экземпляр Bot с long-polling
func New(cfg config.BotConfig, logger *zap.Logger) (*Bot, error) {
	settings := telebot.Settings{
		Token:     cfg.Token,
		ParseMode: telebot.ModeMarkdown,
		Poller: &telebot.LongPoller{
			Timeout: pollTimeout,
		},
	}

	tb, err := telebot.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("initialize telebot: %w", err)
	}

	b := &Bot{
		telebot:   tb,
		logger:    logger,
		webAppURL: cfg.WebAppURL,
	}

	b.registerHandlers()

	return b, nil
}

// Start запускает цикл обработки обновлений. Блокирует вызывающую горутину
func (b *Bot) Start() {
	b.logger.Info("Telegram bot started", zap.String("webapp_url", b.webAppURL))
	b.telebot.Start()
}

// Stop останавливает обработку обновлений
func (b *Bot) Stop() {
	b.logger.Info("Stopping telegram bot")
	b.telebot.Stop()
}

func (b *Bot) registerHandlers() {
	b.telebot.Handle("/start", b.handleWelcome)
	b.telebot.Handle("/help", b.handleWelcome)
}

// handleWelcome отвечает приветствием и inline-кнопкой, открывающей мини-приложение
func (b *Bot) handleWelcome(c telebot.Context) error {
	sender := c.Sender()
	if sender == nil {
		b.logger.Warn("Welcome handler invoked without sender")
		return nil
	}

	markup := &telebot.ReplyMarkup{}
	openApp := markup.WebApp("🎮 Открыть Need for Party", &telebot.WebApp{
		URL: b.webAppURL,
	})
	markup.Inline(markup.Row(openApp))

	text := fmt.Sprintf(
		"👋 Привет, %s!\n\n"+
			"Добро пожаловать в **Need for Party** 🎉\n\n"+
			"Нажми кнопку ниже, чтобы открыть приложение",
		sender.FirstName,
	)

	if err := c.Send(text, markup); err != nil {
		b.logger.Error("Failed to send welcome message",
			zap.Error(err),
			zap.Int64("telegram_id", sender.ID))
		return err
	}

	b.logger.Debug("Welcome message sent", zap.Int64("telegram_id", sender.ID))
	return nil
}
