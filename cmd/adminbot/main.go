package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/skorin/webshop/internal/bot"
	"github.com/skorin/webshop/internal/config"
	"github.com/skorin/webshop/internal/logging"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName+"-adminbot")

	config.MustNonEmpty(cfg.AdminBotToken, "TG_ADMIN_BOT_TOKEN")
	config.MustNonEmpty(cfg.BotAPIToken, "BOT_API_TOKEN")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logging.IntoContext(ctx, logger)

	defaultCategory := uint(config.EnvIntDefault("ADMIN_DEFAULT_CATEGORY_ID", 1))
	admin := bot.NewAdminBot(bot.NewAPIClient(cfg.APIURL, cfg.BotAPIToken), defaultCategory)
	if err := bot.Run(ctx, cfg.AdminBotToken, admin); err != nil {
		logger.Error("bot stopped", "error", err)
		os.Exit(1)
	}
}
