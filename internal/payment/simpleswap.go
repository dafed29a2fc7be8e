package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/skorin/webshop/internal/models"
)

// SimpleSwapBackend requests a floating usd→btc exchange quote for the order
// total, paid out to a configured wallet address.
type SimpleSwapBackend struct {
	baseURL    string
	apiKey     string
	btcAddress string
	httpClient *http.Client
}

func NewSimpleSwapBackend(baseURL, apiKey, btcAddress string) *SimpleSwapBackend {
	return &SimpleSwapBackend{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		btcAddress: btcAddress,
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

func (b *SimpleSwapBackend) CreateSession(ctx context.Context, order *models.Order, items []LineItem) (*Session, error) {
	total := TotalMinorUnits(items)

	payload := map[string]any{
		"fixed":                false,
		"currency_from":        "usd",
		"currency_to":          "btc",
		"amount":               float64(total) / 100,
		"address_to":           b.btcAddress,
		"extra_id_to":          "",
		"user_refund_address":  "",
		"user_refund_extra_id": "",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode exchange: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/create_exchange?api_key="+b.apiKey, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: simpleswap: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: simpleswap: status %d", ErrProvider, resp.StatusCode)
	}

	var result struct {
		ID          string `json:"id"`
		RedirectURL string `json:"redirect_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: simpleswap: decode response: %v", ErrProvider, err)
	}
	if result.RedirectURL == "" {
		return nil, fmt.Errorf("%w: simpleswap: missing redirect url", ErrProvider)
	}

	return &Session{URL: result.RedirectURL, Ref: result.ID}, nil
}
