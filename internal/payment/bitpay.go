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

// BitPayBackend creates a hosted invoice. The order ID travels as orderId and
// comes back in the webhook body. Upstream failures surface as ErrProvider;
// nothing is retried.
type BitPayBackend struct {
	baseURL    string
	token      string
	urls       URLs
	httpClient *http.Client
}

func NewBitPayBackend(baseURL, token string, urls URLs) *BitPayBackend {
	return &BitPayBackend{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		urls:    urls,
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

func (b *BitPayBackend) CreateSession(ctx context.Context, order *models.Order, items []LineItem) (*Session, error) {
	var quantity int64
	names := make([]string, 0, len(items))
	for _, it := range items {
		quantity += int64(it.Quantity)
		names = append(names, it.Name)
	}
	total := TotalMinorUnits(items)

	payload := map[string]any{
		"token":           b.token,
		"price":           float64(total) / 100,
		"currency":        "USD",
		"orderId":         order.ID,
		"notificationURL": b.urls.Notification,
		"itemDesc":        strings.Join(names, "\n"),
		"autoRedirect":    true,
		"itemizedDetails": map[string]any{
			"isFee":  false,
			"amount": quantity,
		},
		"closeURL":    b.urls.Cancel,
		"redirectURL": b.urls.Success,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode invoice: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/invoices", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: bitpay: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: bitpay: status %d", ErrProvider, resp.StatusCode)
	}

	var result struct {
		Data struct {
			ID  string `json:"id"`
			URL string `json:"url"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: bitpay: decode response: %v", ErrProvider, err)
	}
	if result.Data.URL == "" {
		return nil, fmt.Errorf("%w: bitpay: missing payment url", ErrProvider)
	}

	return &Session{URL: result.Data.URL, Ref: result.Data.ID}, nil
}
