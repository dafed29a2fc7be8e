package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/skorin/webshop/internal/models"
)

// ErrProvider marks failures of an upstream payment provider. Handlers map it
// to 502; nothing retries it.
var ErrProvider = errors.New("payment provider")

// Method is the closed set of payment backends a checkout can dispatch to.
type Method int

const (
	MethodCard Method = iota + 1
	MethodInvoiceCrypto
	MethodExchangeCrypto
)

func (m Method) String() string {
	switch m {
	case MethodCard:
		return "card"
	case MethodInvoiceCrypto:
		return "invoice_crypto"
	case MethodExchangeCrypto:
		return "exchange_crypto"
	}
	return "unknown"
}

// ParseMethod maps request discriminators onto the enum. The legacy aliases
// from the web checkout form are accepted alongside the canonical names.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "card", "stripe", "stripe-payment":
		return MethodCard, nil
	case "invoice", "bitpay":
		return MethodInvoiceCrypto, nil
	case "exchange", "simpleswap", "api_task":
		return MethodExchangeCrypto, nil
	}
	return 0, fmt.Errorf("unknown payment type %q", s)
}

// LineItem is a provider-facing record derived from one order item.
// UnitAmount is in currency minor units.
type LineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int
}

// MinorUnits converts a decimal major-unit amount to integer minor units,
// truncating toward zero. 10.999 becomes 1099.
func MinorUnits(p decimal.Decimal) int64 {
	return p.Mul(decimal.NewFromInt(100)).IntPart()
}

// TotalMinorUnits sums unit amount times quantity over the line items.
func TotalMinorUnits(items []LineItem) int64 {
	var total int64
	for _, it := range items {
		total += it.UnitAmount * int64(it.Quantity)
	}
	return total
}

// Session is a provider-hosted checkout flow instance. Ref is the provider's
// identifier for it, stored on the order once creation succeeds.
type Session struct {
	URL string
	Ref string
}

// Backend creates a hosted checkout session for an order. Implementations
// embed the order ID as the correlation identifier echoed back by webhooks.
type Backend interface {
	CreateSession(ctx context.Context, order *models.Order, items []LineItem) (*Session, error)
}

// URLs are the redirect targets handed to providers.
type URLs struct {
	Success      string
	Cancel       string
	Notification string
}
