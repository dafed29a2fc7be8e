package httpserver

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestCartFlow(t *testing.T) {
	env := newTestEnv(t)
	pa := env.seedProduct("SKU-A", "10.00")
	pb := env.seedProduct("SKU-B", "5.00")

	rec := env.doJSON(http.MethodPost, "/api/v1/cart", map[string]any{"product_id": pa.ID, "quantity": 2})
	require.Equal(t, http.StatusOK, rec.Code)

	var addResp struct {
		Qty     int    `json:"qty"`
		Product string `json:"product"`
	}
	env.decode(rec, &addResp)
	require.Equal(t, 2, addResp.Qty)
	require.Equal(t, "SKU-A", addResp.Product)

	rec = env.doJSON(http.MethodPost, "/api/v1/cart", map[string]any{"product_id": pb.ID, "quantity": 1})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.doJSON(http.MethodGet, "/api/v1/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var getResp struct {
		Qty   int    `json:"qty"`
		Total string `json:"total"`
		Items []struct {
			Quantity int `json:"quantity"`
		} `json:"items"`
	}
	env.decode(rec, &getResp)
	require.Equal(t, 3, getResp.Qty)
	require.True(t, decimal.RequireFromString(getResp.Total).Equal(decimal.RequireFromString("25.00")))
	require.Len(t, getResp.Items, 2)

	rec = env.doJSON(http.MethodPatch, "/api/v1/cart", map[string]any{"product_id": pa.ID, "quantity": 1})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.doJSON(http.MethodDelete, "/api/v1/cart", map[string]any{"product_id": pb.ID, "quantity": 1})
	require.Equal(t, http.StatusOK, rec.Code)

	var delResp struct {
		Qty int `json:"qty"`
	}
	env.decode(rec, &delResp)
	require.Equal(t, 1, delResp.Qty)
}

func TestAddToCartValidation(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedProduct("SKU-A", "10.00")

	rec := env.doJSON(http.MethodPost, "/api/v1/cart", map[string]any{"product_id": p.ID, "quantity": 0})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.doJSON(http.MethodPost, "/api/v1/cart", map[string]any{"product_id": 9999, "quantity": 1})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCartIsPerSession(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedProduct("SKU-A", "10.00")

	rec := env.doJSON(http.MethodPost, "/api/v1/cart", map[string]any{"product_id": p.ID, "quantity": 2})
	require.Equal(t, http.StatusOK, rec.Code)

	// second client with no cookies sees an empty cart
	other := &testEnv{T: t, E: env.E, Repo: env.Repo, Store: env.Store}
	rec = other.doJSON(http.MethodGet, "/api/v1/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var getResp struct {
		Qty int `json:"qty"`
	}
	other.decode(rec, &getResp)
	require.Zero(t, getResp.Qty)
}
