package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/skorin/webshop/internal/auth"
	"github.com/skorin/webshop/internal/cart"
	"github.com/skorin/webshop/internal/logging"
	"github.com/skorin/webshop/internal/payment"
	"github.com/skorin/webshop/internal/service"
)

type CheckoutHandler struct {
	Svc   *service.CheckoutService
	Store cart.SessionStore
}

type checkoutRequest struct {
	ShippingAddress service.ShippingInput `json:"shipping_address"`
	PaymentType     string                `json:"payment_type"`
}

// Checkout converts the session cart into an order and redirects the client
// to the provider-hosted payment page.
func (h *CheckoutHandler) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout")

	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("checkout_error", "status", 400, "error", err)
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	method, err := payment.ParseMethod(req.PaymentType)
	if err != nil {
		l.Warn("checkout_error", "status", 400, "error", err)
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	sid := sessionID(c)
	cv, err := h.Store.Load(ctx, sid)
	if err != nil {
		l.Error("checkout_error", "status", 500, "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	order, sess, err := h.Svc.Checkout(ctx, auth.UserID(c), cv, req.ShippingAddress, method)
	if err != nil {
		if order != nil {
			// order is recorded, the provider call failed
			l.Error("checkout_session_error", "order_id", order.ID, "error", err)
		} else {
			l.Warn("checkout_error", "error", err)
		}
		return writeErr(c, err)
	}

	l.Info("checkout complete", "order_id", order.ID, "payment_type", method.String())
	return c.JSON(http.StatusCreated, echo.Map{
		"order_id":     order.ID,
		"checkout_url": sess.URL,
	})
}

type apiCheckoutRequest struct {
	ShippingAddress service.ShippingInput `json:"shipping_address"`
	CartItems       []service.CartLine    `json:"cart_items"`
}

// CheckoutAPI is the REST checkout the bots use: cart lines travel in the
// body, payment is always the card backend.
func (h *CheckoutHandler) CheckoutAPI(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.api")

	var req apiCheckoutRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("checkout_api_error", "status", 400, "error", err)
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	order, sess, err := h.Svc.CheckoutLines(ctx, auth.UserID(c), req.ShippingAddress, req.CartItems)
	if err != nil {
		if order != nil {
			l.Error("checkout_api_session_error", "order_id", order.ID, "error", err)
		} else {
			l.Warn("checkout_api_error", "error", err)
		}
		return writeErr(c, err)
	}

	l.Info("api checkout complete", "order_id", order.ID)
	return c.JSON(http.StatusCreated, echo.Map{"checkout_url": sess.URL})
}

// PaymentSuccess is the provider redirect target; it drops the session cart.
func (h *CheckoutHandler) PaymentSuccess(c echo.Context) error {
	ctx := c.Request().Context()
	sid := sessionID(c)
	if err := h.Store.Delete(ctx, sid); err != nil {
		logging.FromContext(ctx).Error("clear session failed", "error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "payment successful"})
}

func (h *CheckoutHandler) PaymentFailed(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "payment failed"})
}
