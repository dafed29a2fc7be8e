package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"

	"github.com/skorin/webshop/internal/logging"
	"github.com/skorin/webshop/internal/service"
)

// Stripe webhooks are small; anything bigger than this is not one.
const maxWebhookPayload = 65536

type WebhookHandler struct {
	Svc                 *service.CheckoutService
	StripeWebhookSecret string
}

// StripeWebhook verifies the event signature against the raw body and marks
// the referenced order paid on a completed, paid checkout session. Bad
// signatures and malformed payloads fail closed with 400; event types other
// than checkout.session.completed are acknowledged and ignored.
func (h *WebhookHandler) StripeWebhook(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "webhook.stripe")

	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookPayload+1))
	if err != nil || len(payload) > maxWebhookPayload {
		l.Warn("stripe_webhook_error", "status", 400, "reason", "bad payload")
		return c.NoContent(http.StatusBadRequest)
	}

	sig := c.Request().Header.Get("Stripe-Signature")
	event, err := webhook.ConstructEvent(payload, sig, h.StripeWebhookSecret)
	if err != nil {
		l.Warn("stripe_webhook_error", "status", 400, "reason", "signature verification failed", "error", err)
		return c.NoContent(http.StatusBadRequest)
	}

	if event.Type != "checkout.session.completed" {
		return c.NoContent(http.StatusOK)
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		l.Warn("stripe_webhook_error", "status", 400, "reason", "bad event payload", "error", err)
		return c.NoContent(http.StatusBadRequest)
	}

	if session.Mode != stripe.CheckoutSessionModePayment ||
		session.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return c.NoContent(http.StatusOK)
	}
	if session.ClientReferenceID == "" {
		return c.NoContent(http.StatusOK)
	}

	orderID, err := strconv.ParseUint(session.ClientReferenceID, 10, 64)
	if err != nil {
		l.Warn("stripe_webhook_error", "status", 400, "reason", "bad client reference", "error", err)
		return c.NoContent(http.StatusBadRequest)
	}

	order, err := h.Svc.MarkOrderPaid(ctx, uint(orderID), "stripe")
	if errors.Is(err, service.ErrNotFound) {
		l.Warn("stripe_webhook_order_not_found", "status", 404, "order_id", orderID)
		return c.NoContent(http.StatusNotFound)
	}
	if err != nil {
		l.Error("stripe_webhook_error", "status", 500, "order_id", orderID, "error", err)
		return c.NoContent(http.StatusInternalServerError)
	}

	l.Info("order marked paid", "order_id", order.ID, "provider", "stripe")
	return c.NoContent(http.StatusOK)
}

type bitpayEvent struct {
	Data struct {
		Status  string `json:"status"`
		OrderID uint   `json:"orderId"`
	} `json:"data"`
}

// BitPayWebhook consumes unauthenticated invoice notifications. There is no
// signature on this channel; deployments must restrict it to trusted
// networks.
func (h *WebhookHandler) BitPayWebhook(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "webhook.bitpay")

	var event bitpayEvent
	if err := json.NewDecoder(io.LimitReader(c.Request().Body, maxWebhookPayload)).Decode(&event); err != nil {
		l.Warn("bitpay_webhook_error", "status", 400, "reason", "bad payload", "error", err)
		return c.NoContent(http.StatusBadRequest)
	}

	if event.Data.Status != "paid" || event.Data.OrderID == 0 {
		return c.NoContent(http.StatusOK)
	}

	order, err := h.Svc.MarkOrderPaid(ctx, event.Data.OrderID, "bitpay")
	if errors.Is(err, service.ErrNotFound) {
		l.Warn("bitpay_webhook_order_not_found", "status", 404, "order_id", event.Data.OrderID)
		return c.NoContent(http.StatusNotFound)
	}
	if err != nil {
		l.Error("bitpay_webhook_error", "status", 500, "order_id", event.Data.OrderID, "error", err)
		return c.NoContent(http.StatusInternalServerError)
	}

	l.Info("order marked paid", "order_id", order.ID, "provider", "bitpay")
	return c.NoContent(http.StatusOK)
}
