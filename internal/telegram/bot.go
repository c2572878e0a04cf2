// Package telegram provides the bot's command intake and reply surface.
package telegram

import (
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/user/ghrelay/pkg/logger"
)

// Bot runs the long-poll update loop and sends outbound messages.
type Bot struct {
	api      *tgbotapi.BotAPI
	handlers *Handlers
	wg       sync.WaitGroup
	stop     chan struct{}
}

// NewBot creates a new Telegram bot instance.
func NewBot(token string, debug bool) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	api.Debug = debug

	logger.Info().Str("username", api.Self.UserName).Msg("Telegram bot authorized")

	return &Bot{
		api:  api,
		stop: make(chan struct{}),
	}, nil
}

// SetHandlers attaches the command handlers. Must be called before Start.
func (b *Bot) SetHandlers(h *Handlers) {
	b.handlers = h
}

// Start begins the update loop. Updates are fetched by long polling and each
// batch is processed sequentially before the next poll begins.
func (b *Bot) Start() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for {
			select {
			case <-b.stop:
				return
			case update := <-updates:
				if update.Message != nil && update.Message.Text != "" {
					b.handlers.HandleMessage(update.Message)
				}
			}
		}
	}()

	logger.Info().Msg("Telegram bot started, listening for updates")
}

// Stop gracefully stops the bot.
func (b *Bot) Stop() {
	logger.Info().Msg("Stopping Telegram bot")
	close(b.stop)
	b.api.StopReceivingUpdates()
	b.wg.Wait()
}

// SendMessage sends a markdown-formatted message to a chat.
func (b *Bot) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true

	_, err := b.api.Send(msg)
	return err
}
