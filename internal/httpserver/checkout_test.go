package httpserver

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skorin/webshop/internal/models"
)

func TestCheckoutFromSessionCart(t *testing.T) {
	env := newTestEnv(t)
	pa := env.seedProduct("SKU-A", "10.00")
	pb := env.seedProduct("SKU-B", "5.00")

	env.doJSON(http.MethodPost, "/api/v1/cart", map[string]any{"product_id": pa.ID, "quantity": 2})
	env.doJSON(http.MethodPost, "/api/v1/cart", map[string]any{"product_id": pb.ID, "quantity": 1})

	rec := env.doJSON(http.MethodPost, "/api/v1/checkout/session", map[string]any{
		"shipping_address": validShippingBody(),
		"payment_type":     "card",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		OrderID     uint   `json:"order_id"`
		CheckoutURL string `json:"checkout_url"`
	}
	env.decode(rec, &resp)
	require.NotZero(t, resp.OrderID)
	require.Contains(t, resp.CheckoutURL, "https://pay.test/")

	order, err := env.Repo.GetOrder(context.Background(), resp.OrderID)
	require.NoError(t, err)
	require.Len(t, order.Items, 2)
	require.False(t, order.IsPaid)
}

func TestCheckoutEmptyCart(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(http.MethodPost, "/api/v1/checkout/session", map[string]any{
		"shipping_address": validShippingBody(),
		"payment_type":     "card",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var count int64
	require.NoError(t, env.Repo.DB.Model(&models.Order{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestCheckoutUnknownPaymentType(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(http.MethodPost, "/api/v1/checkout/session", map[string]any{
		"shipping_address": validShippingBody(),
		"payment_type":     "paypal",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckoutMissingAddressFields(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedProduct("SKU-A", "10.00")
	env.doJSON(http.MethodPost, "/api/v1/cart", map[string]any{"product_id": p.ID, "quantity": 1})

	rec := env.doJSON(http.MethodPost, "/api/v1/checkout/session", map[string]any{
		"shipping_address": map[string]any{"full_name": "Jane"},
		"payment_type":     "card",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Errors map[string]string `json:"errors"`
	}
	env.decode(rec, &resp)
	require.Equal(t, "required", resp.Errors["email"])
}

func TestCheckoutProviderDown(t *testing.T) {
	env := newTestEnv(t)
	env.Backend.broken = true
	p := env.seedProduct("SKU-A", "10.00")
	env.doJSON(http.MethodPost, "/api/v1/cart", map[string]any{"product_id": p.ID, "quantity": 1})

	rec := env.doJSON(http.MethodPost, "/api/v1/checkout/session", map[string]any{
		"shipping_address": validShippingBody(),
		"payment_type":     "card",
	})
	require.Equal(t, http.StatusBadGateway, rec.Code)

	// the order exists, unpaid, without a checkout ref
	var count int64
	require.NoError(t, env.Repo.DB.Model(&models.Order{}).Where("is_paid = ? AND checkout_ref = ?", false, "").Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestCheckoutAPI(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct("SKU-A", "10.00")

	rec := env.doJSON(http.MethodPost, "/api/v1/checkout", map[string]any{
		"shipping_address": validShippingBody(),
		"cart_items": []map[string]any{
			{"product_name": "SKU-A", "price": "10.00", "quantity": 2},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		CheckoutURL string `json:"checkout_url"`
	}
	env.decode(rec, &resp)
	require.Contains(t, resp.CheckoutURL, "https://pay.test/")
}

func TestPaymentSuccessClearsCart(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedProduct("SKU-A", "10.00")
	env.doJSON(http.MethodPost, "/api/v1/cart", map[string]any{"product_id": p.ID, "quantity": 2})

	rec := env.doJSON(http.MethodGet, "/payment/success", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.doJSON(http.MethodGet, "/api/v1/cart", nil)
	var getResp struct {
		Qty int `json:"qty"`
	}
	env.decode(rec, &getResp)
	require.Zero(t, getResp.Qty)
}
