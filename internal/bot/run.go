package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/skorin/webshop/internal/logging"
)

// Handler is the conversation engine behind a bot; both ShopBot and
// AdminBot satisfy it.
type Handler interface {
	Handle(ctx context.Context, chatID int64, text string) []string
}

// Run long-polls Telegram and feeds each text message through the handler,
// sending every reply back to the chat. It returns when ctx is cancelled.
func Run(ctx context.Context, token string, h Handler) error {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return fmt.Errorf("connect to telegram: %w", err)
	}

	l := logging.FromContext(ctx)
	l.Info("bot started", "username", api.Self.UserName)

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := api.GetUpdatesChan(cfg)

	for {
		select {
		case <-ctx.Done():
			api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}

			chatID := update.Message.Chat.ID
			for _, reply := range h.Handle(ctx, chatID, update.Message.Text) {
				if _, err := api.Send(tgbotapi.NewMessage(chatID, reply)); err != nil {
					l.Error("send reply failed", "chat_id", chatID, "error", err)
				}
			}
		}
	}
}
