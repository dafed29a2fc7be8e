package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skorin/webshop/internal/models"
)

var testItems = []LineItem{
	{Name: "SKU-A", UnitAmount: 1000, Quantity: 2},
	{Name: "SKU-B", UnitAmount: 500, Quantity: 1},
}

func TestBitPayCreateSession(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/invoices", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"id": "inv_1", "url": "https://bitpay.test/i/inv_1"},
		})
	}))
	defer srv.Close()

	b := NewBitPayBackend(srv.URL, "tok", URLs{
		Success:      "https://shop/payment/success",
		Cancel:       "https://shop/payment/failed",
		Notification: "https://shop/payment/webhook/bitpay",
	})

	sess, err := b.CreateSession(context.Background(), &models.Order{ID: 42}, testItems)
	require.NoError(t, err)
	require.Equal(t, "https://bitpay.test/i/inv_1", sess.URL)
	require.Equal(t, "inv_1", sess.Ref)

	require.Equal(t, "tok", got["token"])
	require.Equal(t, 25.0, got["price"])
	require.Equal(t, "USD", got["currency"])
	require.Equal(t, 42.0, got["orderId"])
	require.Equal(t, "https://shop/payment/webhook/bitpay", got["notificationURL"])
	require.Equal(t, "SKU-A\nSKU-B", got["itemDesc"])
	require.Equal(t, "https://shop/payment/success", got["redirectURL"])
}

func TestBitPayUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	b := NewBitPayBackend(srv.URL, "tok", URLs{})
	_, err := b.CreateSession(context.Background(), &models.Order{ID: 1}, testItems)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrProvider))
}

func TestSimpleSwapCreateSession(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/create_exchange", r.URL.Path)
		require.Equal(t, "key", r.URL.Query().Get("api_key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(map[string]any{
			"id": "xch_1", "redirect_url": "https://simpleswap.test/x/xch_1",
		})
	}))
	defer srv.Close()

	b := NewSimpleSwapBackend(srv.URL, "key", "bc1qwallet")
	sess, err := b.CreateSession(context.Background(), &models.Order{ID: 7}, testItems)
	require.NoError(t, err)
	require.Equal(t, "https://simpleswap.test/x/xch_1", sess.URL)
	require.Equal(t, "xch_1", sess.Ref)

	require.Equal(t, false, got["fixed"])
	require.Equal(t, "usd", got["currency_from"])
	require.Equal(t, "btc", got["currency_to"])
	require.Equal(t, 25.0, got["amount"])
	require.Equal(t, "bc1qwallet", got["address_to"])
}

func TestSimpleSwapMissingRedirect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": "xch_1"})
	}))
	defer srv.Close()

	b := NewSimpleSwapBackend(srv.URL, "key", "bc1qwallet")
	_, err := b.CreateSession(context.Background(), &models.Order{ID: 7}, testItems)
	require.True(t, errors.Is(err, ErrProvider))
}
