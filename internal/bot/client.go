package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// Product is the catalog entry shape the storefront API returns; the bots
// only care about the fields they render and order with.
type Product struct {
	ID          uint            `json:"id"`
	Title       string          `json:"title"`
	Brand       string          `json:"brand"`
	Price       decimal.Decimal `json:"price"`
	IsAvailable bool            `json:"is_available"`
}

// OrderLine is one priced checkout line; the price is the catalog snapshot
// taken when the user last listed products.
type OrderLine struct {
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

// Shipping mirrors the checkout endpoint's shipping_address object.
type Shipping struct {
	FullName         string `json:"full_name"`
	Email            string `json:"email"`
	StreetAddress    string `json:"street_address"`
	ApartmentAddress string `json:"apartment_address"`
	City             string `json:"city,omitempty"`
	Country          string `json:"country,omitempty"`
	Zip              string `json:"zip,omitempty"`
}

// APIClient talks to the storefront REST API. The token is only needed for
// the admin product endpoints; the shop bot runs without one.
type APIClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewAPIClient(apiURL, token string) *APIClient {
	return &APIClient{
		baseURL: apiURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

func (c *APIClient) do(ctx context.Context, method, path string, body any, out any, wantStatus int) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return fmt.Errorf("%s %s failed with status: %d", method, path, resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *APIClient) ListProducts(ctx context.Context) ([]Product, error) {
	var result struct {
		Data []Product `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/products", nil, &result, http.StatusOK); err != nil {
		return nil, err
	}
	return result.Data, nil
}

func (c *APIClient) Checkout(ctx context.Context, addr Shipping, lines []OrderLine) (string, error) {
	body := struct {
		ShippingAddress Shipping    `json:"shipping_address"`
		CartItems       []OrderLine `json:"cart_items"`
	}{ShippingAddress: addr, CartItems: lines}

	var result struct {
		CheckoutURL string `json:"checkout_url"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/checkout", body, &result, http.StatusCreated); err != nil {
		return "", err
	}
	return result.CheckoutURL, nil
}

func (c *APIClient) CreateProduct(ctx context.Context, title, slug string, price decimal.Decimal, categoryID uint) error {
	body := map[string]any{
		"title":        title,
		"slug":         slug,
		"price":        price,
		"category_id":  categoryID,
		"is_available": true,
	}
	return c.do(ctx, http.MethodPost, "/api/v1/admin/products", body, nil, http.StatusCreated)
}

func (c *APIClient) UpdateProduct(ctx context.Context, id uint, field, value string) error {
	body := map[string]any{field: value}
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/v1/admin/products/%d", id), body, nil, http.StatusOK)
}

func (c *APIClient) DeleteProduct(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/admin/products/%d", id), nil, nil, http.StatusNoContent)
}
