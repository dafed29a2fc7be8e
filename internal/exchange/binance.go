package exchange

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultBinanceURL = "https://api.binance.com"

// BinanceTrader places signed spot orders on the Binance REST API. Requests
// carry an HMAC-SHA256 signature of the query string, keyed by the account
// secret, as the API requires.
type BinanceTrader struct {
	baseURL    string
	apiKey     string
	secretKey  string
	httpClient *http.Client

	// now is swappable for deterministic signatures in tests.
	now func() time.Time
}

func NewBinanceTrader(baseURL, apiKey, secretKey string) *BinanceTrader {
	if baseURL == "" {
		baseURL = DefaultBinanceURL
	}
	return &BinanceTrader{
		baseURL:    baseURL,
		apiKey:     apiKey,
		secretKey:  secretKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		now:        time.Now,
	}
}

// Sign returns the hex HMAC-SHA256 of the query string under the secret key.
func (b *BinanceTrader) Sign(query string) string {
	mac := hmac.New(sha256.New, []byte(b.secretKey))
	mac.Write([]byte(query))
	return hex.EncodeToString(mac.Sum(nil))
}

// MarketOrder is the subset of the order response the exchanger reports.
type MarketOrder struct {
	Symbol      string `json:"symbol"`
	OrderID     int64  `json:"orderId"`
	Status      string `json:"status"`
	ExecutedQty string `json:"executedQty"`
}

// BuyMarket spends quoteAmount of the quote currency on a market buy of the
// given symbol (e.g. BTCUSDT).
func (b *BinanceTrader) BuyMarket(ctx context.Context, symbol string, quoteAmount float64) (*MarketOrder, error) {
	timestamp := b.now().UnixMilli()
	query := fmt.Sprintf("symbol=%s&side=BUY&type=MARKET&quoteOrderQty=%v&timestamp=%d", symbol, quoteAmount, timestamp)
	query += "&signature=" + b.Sign(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/api/v3/order?"+query, strings.NewReader(""))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-MBX-APIKEY", b.apiKey)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("order failed with status %d: %s", resp.StatusCode, body)
	}

	var order MarketOrder
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &order, nil
}
