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
	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName+"-shopbot")

	config.MustNonEmpty(cfg.BotToken, "TG_BOT_TOKEN")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logging.IntoContext(ctx, logger)

	shop := bot.NewShopBot(bot.NewAPIClient(cfg.APIURL, ""))
	if err := bot.Run(ctx, cfg.BotToken, shop); err != nil {
		logger.Error("bot stopped", "error", err)
		os.Exit(1)
	}
}
