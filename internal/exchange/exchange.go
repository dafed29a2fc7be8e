// Package exchange implements the fiat-to-crypto exchanger: charge a card
// through Stripe, then spend the proceeds on a Binance market buy.
package exchange

import (
	"context"
	"fmt"
	"time"

	"github.com/skorin/webshop/internal/logging"
)

type Exchanger struct {
	Charger *StripeCharger
	Trader  *BinanceTrader

	// PollInterval is how often the Stripe intent is re-checked while
	// waiting for the card payment to settle.
	PollInterval time.Duration
}

// Exchange runs one exchange end to end: open a PaymentIntent for
// amountMinor cents, wait until it succeeds, then market-buy symbol for
// quoteAmount. It returns the intent ID and the executed order.
func (e *Exchanger) Exchange(ctx context.Context, amountMinor int64, symbol string, quoteAmount float64) (string, *MarketOrder, error) {
	l := logging.FromContext(ctx)

	pi, err := e.Charger.CreatePayment(ctx, amountMinor, "usd")
	if err != nil {
		return "", nil, err
	}
	l.Info("payment intent created", "intent_id", pi.ID, "amount", amountMinor)

	interval := e.PollInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		ok, err := e.Charger.PaymentSucceeded(ctx, pi.ID)
		if err != nil {
			return pi.ID, nil, err
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return pi.ID, nil, fmt.Errorf("waiting for payment %s: %w", pi.ID, ctx.Err())
		case <-ticker.C:
		}
	}
	l.Info("payment succeeded", "intent_id", pi.ID)

	order, err := e.Trader.BuyMarket(ctx, symbol, quoteAmount)
	if err != nil {
		return pi.ID, nil, err
	}
	l.Info("market order executed", "symbol", order.Symbol, "order_id", order.OrderID, "status", order.Status)

	return pi.ID, order, nil
}
