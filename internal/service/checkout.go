package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/skorin/webshop/internal/cart"
	"github.com/skorin/webshop/internal/events"
	"github.com/skorin/webshop/internal/logging"
	"github.com/skorin/webshop/internal/models"
	"github.com/skorin/webshop/internal/payment"
	"github.com/skorin/webshop/internal/repo"
)

type CheckoutService struct {
	Repo     *repo.GormRepo
	Backends map[payment.Method]payment.Backend
	Events   events.Publisher
}

type ShippingInput struct {
	FullName         string `json:"full_name"`
	Email            string `json:"email"`
	StreetAddress    string `json:"street_address"`
	ApartmentAddress string `json:"apartment_address"`
	City             string `json:"city"`
	Country          string `json:"country"`
	Zip              string `json:"zip"`
}

func (in ShippingInput) validate() FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(in.FullName) == "" {
		errs["full_name"] = "required"
	}
	if strings.TrimSpace(in.Email) == "" {
		errs["email"] = "required"
	} else if !strings.Contains(in.Email, "@") {
		errs["email"] = "invalid email"
	}
	if strings.TrimSpace(in.StreetAddress) == "" {
		errs["street_address"] = "required"
	}
	if strings.TrimSpace(in.ApartmentAddress) == "" {
		errs["apartment_address"] = "required"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (in ShippingInput) address() *models.ShippingAddress {
	return &models.ShippingAddress{
		FullName:         in.FullName,
		Email:            in.Email,
		StreetAddress:    in.StreetAddress,
		ApartmentAddress: in.ApartmentAddress,
		City:             in.City,
		Country:          in.Country,
		Zip:              in.Zip,
	}
}

// Checkout converts the session cart into an Order. The address replacement,
// the order row and its items are one transaction; the provider session is a
// separate step after commit, so a provider failure leaves a recorded unpaid
// order rather than a half-written one.
//
// The order amount is the cart total over all entries, snapshot prices
// included, while items are created only for entries still present in the
// catalog - the historical join semantics, kept as is.
func (s *CheckoutService) Checkout(ctx context.Context, userID *uint, c cart.Cart, in ShippingInput, method payment.Method) (*models.Order, *payment.Session, error) {
	if errs := in.validate(); errs != nil {
		return nil, nil, errs
	}
	if c.Len() == 0 {
		return nil, nil, fmt.Errorf("%w: cart is empty", ErrValidation)
	}
	backend, ok := s.Backends[method]
	if !ok {
		return nil, nil, fmt.Errorf("%w: payment method %s not configured", ErrValidation, method)
	}

	products, err := s.Repo.AvailableProductsByIDs(ctx, c.ProductIDs())
	if err != nil {
		return nil, nil, err
	}

	var (
		orderItems []models.OrderItem
		lineItems  []payment.LineItem
	)
	for _, it := range c.Items(products) {
		orderItems = append(orderItems, models.OrderItem{
			ProductID: it.Product.ID,
			Price:     it.UnitPrice,
			Quantity:  it.Quantity,
		})
		lineItems = append(lineItems, payment.LineItem{
			Name:       it.Product.Title,
			UnitAmount: payment.MinorUnits(it.UnitPrice),
			Quantity:   it.Quantity,
		})
	}

	order := &models.Order{Amount: c.Total()}
	if err := s.Repo.CreateCheckout(ctx, userID, in.address(), order, orderItems); err != nil {
		return nil, nil, err
	}
	s.publishOrderCreated(ctx, order, method)

	sess, err := backend.CreateSession(ctx, order, lineItems)
	if err != nil {
		return order, nil, err
	}
	if err := s.Repo.SetCheckoutRef(ctx, order.ID, sess.Ref); err != nil {
		logging.FromContext(ctx).Error("save checkout ref failed", "order_id", order.ID, "error", err)
	}
	order.CheckoutRef = sess.Ref

	return order, sess, nil
}

// CartLine is one REST-checkout line item, priced by the caller.
type CartLine struct {
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

// CheckoutLines serves the REST checkout used by the bots: the cart arrives
// in the request body instead of session state, and payment is always the
// card backend.
func (s *CheckoutService) CheckoutLines(ctx context.Context, userID *uint, in ShippingInput, lines []CartLine) (*models.Order, *payment.Session, error) {
	errs := in.validate()
	if errs == nil {
		errs = FieldErrors{}
	}
	if len(lines) == 0 {
		errs["cart_items"] = "required"
	}
	for i, l := range lines {
		if l.ProductName == "" {
			errs[fmt.Sprintf("cart_items[%d].product_name", i)] = "required"
		}
		if l.Quantity <= 0 {
			errs[fmt.Sprintf("cart_items[%d].quantity", i)] = "must be > 0"
		}
		if l.Price.IsNegative() {
			errs[fmt.Sprintf("cart_items[%d].price", i)] = "must be >= 0"
		}
	}
	if len(errs) > 0 {
		return nil, nil, errs
	}
	backend, ok := s.Backends[payment.MethodCard]
	if !ok {
		return nil, nil, fmt.Errorf("%w: card payments not configured", ErrValidation)
	}

	total := decimal.Zero
	var (
		orderItems []models.OrderItem
		lineItems  []payment.LineItem
	)
	for _, l := range lines {
		total = total.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))

		p, err := s.Repo.FindProductByTitle(ctx, l.ProductName)
		if err != nil {
			return nil, nil, err
		}
		if p == nil {
			return nil, nil, FieldErrors{"cart_items": fmt.Sprintf("unknown product %q", l.ProductName)}
		}
		orderItems = append(orderItems, models.OrderItem{
			ProductID: p.ID,
			Price:     l.Price,
			Quantity:  l.Quantity,
		})
		lineItems = append(lineItems, payment.LineItem{
			Name:       l.ProductName,
			UnitAmount: payment.MinorUnits(l.Price),
			Quantity:   l.Quantity,
		})
	}

	order := &models.Order{Amount: total}
	if err := s.Repo.CreateCheckout(ctx, userID, in.address(), order, orderItems); err != nil {
		return nil, nil, err
	}
	s.publishOrderCreated(ctx, order, payment.MethodCard)

	sess, err := backend.CreateSession(ctx, order, lineItems)
	if err != nil {
		return order, nil, err
	}
	if err := s.Repo.SetCheckoutRef(ctx, order.ID, sess.Ref); err != nil {
		logging.FromContext(ctx).Error("save checkout ref failed", "order_id", order.ID, "error", err)
	}
	order.CheckoutRef = sess.Ref

	return order, sess, nil
}

// MarkOrderPaid is the webhook reconciliation entry point: unpaid → paid,
// exactly once, idempotent on replays.
func (s *CheckoutService) MarkOrderPaid(ctx context.Context, orderID uint, provider string) (*models.Order, error) {
	order, changed, err := s.Repo.MarkOrderPaid(ctx, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}
	if err != nil {
		return nil, err
	}

	if changed {
		l := logging.FromContext(ctx)
		if err := s.Events.Publish(ctx, events.TopicPaymentEvents, fmt.Sprint(order.ID), map[string]any{
			"type": "order_paid", "order_id": order.ID, "provider": provider, "amount": order.Amount,
		}); err != nil {
			l.Error("publish payment event failed", "error", err)
		}
	}
	return order, nil
}

func (s *CheckoutService) publishOrderCreated(ctx context.Context, order *models.Order, method payment.Method) {
	if err := s.Events.Publish(ctx, events.TopicOrderEvents, fmt.Sprint(order.ID), map[string]any{
		"type":         "order_created",
		"order_id":     order.ID,
		"amount":       order.Amount,
		"payment_type": method.String(),
		"items":        len(order.Items),
	}); err != nil {
		logging.FromContext(ctx).Error("publish order event failed", "error", err)
	}
}
