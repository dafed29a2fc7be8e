// Command exchanger charges a card amount through Stripe and, once the
// payment settles, buys crypto for it on Binance with a market order.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/skorin/webshop/internal/config"
	"github.com/skorin/webshop/internal/exchange"
	"github.com/skorin/webshop/internal/logging"
)

func main() {
	amount := flag.Int64("amount", 10000, "charge amount in cents")
	symbol := flag.String("symbol", "BTCUSDT", "binance trading pair to buy")
	spend := flag.Float64("spend", 100.0, "quote currency amount to spend on the buy")
	timeout := flag.Duration("timeout", 10*time.Minute, "how long to wait for the card payment")
	flag.Parse()

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName+"-exchanger")

	config.MustNonEmpty(cfg.StripeSecretKey, "STRIPE_SECRET_KEY")
	config.MustNonEmpty(cfg.BinanceAPIKey, "BINANCE_API_KEY")
	config.MustNonEmpty(cfg.BinanceSecretKey, "BINANCE_SECRET_KEY")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()
	ctx = logging.IntoContext(ctx, logger)

	ex := &exchange.Exchanger{
		Charger: exchange.NewStripeCharger(cfg.StripeSecretKey),
		Trader:  exchange.NewBinanceTrader(cfg.BinanceURL, cfg.BinanceAPIKey, cfg.BinanceSecretKey),
	}

	intentID, order, err := ex.Exchange(ctx, *amount, *symbol, *spend)
	if err != nil {
		logger.Error("exchange failed", "intent_id", intentID, "error", err)
		os.Exit(1)
	}

	logger.Info("exchange complete",
		"intent_id", intentID,
		"symbol", order.Symbol,
		"order_id", order.OrderID,
		"executed_qty", order.ExecutedQty,
	)
}
