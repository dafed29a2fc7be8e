package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/skorin/webshop/internal/cart"
	"github.com/skorin/webshop/internal/events"
	"github.com/skorin/webshop/internal/models"
	"github.com/skorin/webshop/internal/payment"
)

func newCheckoutSvc(t *testing.T) (*CheckoutService, *fakeBackend) {
	t.Helper()
	backend := &fakeBackend{}
	svc := &CheckoutService{
		Repo:     testRepo(t),
		Backends: map[payment.Method]payment.Backend{payment.MethodCard: backend},
		Events:   events.Nop{},
	}
	return svc, backend
}

func TestCheckoutCreatesOrderWithItems(t *testing.T) {
	ctx := context.Background()
	svc, backend := newCheckoutSvc(t)

	cat := seedCategory(t, svc.Repo)
	pa := seedProduct(t, svc.Repo, cat.ID, "SKU-A", "10.00")
	pb := seedProduct(t, svc.Repo, cat.ID, "SKU-B", "5.00")

	cv := cart.New()
	cv.Add(pa, 2)
	cv.Add(pb, 1)

	order, sess, err := svc.Checkout(ctx, nil, cv, validShipping(), payment.MethodCard)
	require.NoError(t, err)
	require.NotNil(t, sess)
	require.True(t, order.Amount.Equal(decimal.RequireFromString("25.00")))
	require.Equal(t, fmt.Sprintf("ref_%d", order.ID), order.CheckoutRef)

	saved, err := svc.Repo.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, saved.Items, 2)
	require.False(t, saved.IsPaid)
	require.Equal(t, sess.Ref, saved.CheckoutRef)

	require.Equal(t, []uint{order.ID}, backend.orders)
	require.Equal(t, int64(2500), payment.TotalMinorUnits(backend.items[0]))
}

func TestCheckoutEmptyCart(t *testing.T) {
	svc, _ := newCheckoutSvc(t)

	order, _, err := svc.Checkout(context.Background(), nil, cart.New(), validShipping(), payment.MethodCard)
	require.Nil(t, order)
	require.True(t, errors.Is(err, ErrValidation))

	var count int64
	require.NoError(t, svc.Repo.DB.Model(&models.Order{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestCheckoutInvalidAddress(t *testing.T) {
	svc, _ := newCheckoutSvc(t)

	in := validShipping()
	in.Email = "not-an-email"
	in.StreetAddress = ""

	_, _, err := svc.Checkout(context.Background(), nil, cart.New(), in, payment.MethodCard)
	var fe FieldErrors
	require.True(t, errors.As(err, &fe))
	require.Equal(t, "invalid email", fe["email"])
	require.Equal(t, "required", fe["street_address"])
}

func TestCheckoutUnconfiguredMethod(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCheckoutSvc(t)
	cat := seedCategory(t, svc.Repo)
	p := seedProduct(t, svc.Repo, cat.ID, "SKU-A", "10.00")
	cv := cart.New()
	cv.Add(p, 1)

	_, _, err := svc.Checkout(ctx, nil, cv, validShipping(), payment.MethodInvoiceCrypto)
	require.True(t, errors.Is(err, ErrValidation))
}

func TestCheckoutProviderFailureKeepsOrder(t *testing.T) {
	ctx := context.Background()
	svc, backend := newCheckoutSvc(t)
	backend.broken = true

	cat := seedCategory(t, svc.Repo)
	p := seedProduct(t, svc.Repo, cat.ID, "SKU-A", "10.00")
	cv := cart.New()
	cv.Add(p, 1)

	order, sess, err := svc.Checkout(ctx, nil, cv, validShipping(), payment.MethodCard)
	require.True(t, errors.Is(err, payment.ErrProvider))
	require.Nil(t, sess)
	require.NotNil(t, order, "order is recorded even when the provider call fails")

	saved, err := svc.Repo.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	require.False(t, saved.IsPaid)
	require.Empty(t, saved.CheckoutRef)
}

func TestCheckoutReplacesUserAddress(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCheckoutSvc(t)

	user := &models.User{Username: "jane", Email: "jane@example.com", PasswordHash: "x", Role: "user"}
	require.NoError(t, svc.Repo.CreateUser(ctx, user))
	require.NoError(t, svc.Repo.EnsureDefaultShippingAddress(ctx, user.ID))

	cat := seedCategory(t, svc.Repo)
	p := seedProduct(t, svc.Repo, cat.ID, "SKU-A", "10.00")
	cv := cart.New()
	cv.Add(p, 1)

	_, _, err := svc.Checkout(ctx, &user.ID, cv, validShipping(), payment.MethodCard)
	require.NoError(t, err)

	addr, err := svc.Repo.GetShippingAddressByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, "Jane Doe", addr.FullName, "default address is replaced, not kept")

	var count int64
	require.NoError(t, svc.Repo.DB.Model(&models.ShippingAddress{}).Where("user_id = ?", user.ID).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestCheckoutLines(t *testing.T) {
	ctx := context.Background()
	svc, backend := newCheckoutSvc(t)
	cat := seedCategory(t, svc.Repo)
	seedProduct(t, svc.Repo, cat.ID, "SKU-A", "10.00")

	lines := []CartLine{{ProductName: "SKU-A", Price: decimal.RequireFromString("10.00"), Quantity: 2}}
	order, sess, err := svc.CheckoutLines(ctx, nil, validShipping(), lines)
	require.NoError(t, err)
	require.NotNil(t, sess)
	require.True(t, order.Amount.Equal(decimal.RequireFromString("20.00")))
	require.Equal(t, []uint{order.ID}, backend.orders)
}

func TestCheckoutLinesUnknownProduct(t *testing.T) {
	svc, _ := newCheckoutSvc(t)
	seedCategory(t, svc.Repo)

	lines := []CartLine{{ProductName: "Ghost", Price: decimal.RequireFromString("1.00"), Quantity: 1}}
	_, _, err := svc.CheckoutLines(context.Background(), nil, validShipping(), lines)
	var fe FieldErrors
	require.True(t, errors.As(err, &fe))
	require.Contains(t, fe["cart_items"], "Ghost")
}

func TestCheckoutLinesValidation(t *testing.T) {
	svc, _ := newCheckoutSvc(t)

	_, _, err := svc.CheckoutLines(context.Background(), nil, ShippingInput{}, nil)
	var fe FieldErrors
	require.True(t, errors.As(err, &fe))
	require.Equal(t, "required", fe["cart_items"])
	require.Equal(t, "required", fe["full_name"])
}

func TestMarkOrderPaidIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCheckoutSvc(t)
	cat := seedCategory(t, svc.Repo)
	p := seedProduct(t, svc.Repo, cat.ID, "SKU-A", "10.00")
	cv := cart.New()
	cv.Add(p, 1)

	order, _, err := svc.Checkout(ctx, nil, cv, validShipping(), payment.MethodCard)
	require.NoError(t, err)

	paid, err := svc.MarkOrderPaid(ctx, order.ID, "stripe")
	require.NoError(t, err)
	require.True(t, paid.IsPaid)

	// replayed webhook: same answer, still paid
	paid, err = svc.MarkOrderPaid(ctx, order.ID, "stripe")
	require.NoError(t, err)
	require.True(t, paid.IsPaid)
}

func TestMarkOrderPaidUnknownOrder(t *testing.T) {
	svc, _ := newCheckoutSvc(t)

	_, err := svc.MarkOrderPaid(context.Background(), 9999, "stripe")
	require.True(t, errors.Is(err, ErrNotFound))
}
