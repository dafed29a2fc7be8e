package payment

import (
	"context"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"

	"github.com/skorin/webshop/internal/models"
)

// StripeBackend builds hosted checkout sessions. The order ID rides in
// client_reference_id and comes back in the checkout.session.completed event.
type StripeBackend struct {
	urls URLs
}

func NewStripeBackend(secretKey string, urls URLs) *StripeBackend {
	stripe.Key = secretKey
	return &StripeBackend{urls: urls}
}

func (b *StripeBackend) CreateSession(ctx context.Context, order *models.Order, items []LineItem) (*Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(b.urls.Success),
		CancelURL:         stripe.String(b.urls.Cancel),
		ClientReferenceID: stripe.String(strconv.FormatUint(uint64(order.ID), 10)),
	}
	for _, it := range items {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(string(stripe.CurrencyUSD)),
				UnitAmount: stripe.Int64(it.UnitAmount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(it.Name),
				},
			},
			Quantity: stripe.Int64(int64(it.Quantity)),
		})
	}
	params.Context = ctx

	s, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: stripe session: %v", ErrProvider, err)
	}
	return &Session{URL: s.URL, Ref: s.ID}, nil
}
