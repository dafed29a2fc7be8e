package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/skorin/webshop/internal/models"
	"github.com/skorin/webshop/internal/payment"
	"github.com/skorin/webshop/internal/repo"
)

func testRepo(t *testing.T) *repo.GormRepo {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=private"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Category{}, &models.Product{}, &models.User{},
		&models.ShippingAddress{}, &models.Order{}, &models.OrderItem{},
	))
	return &repo.GormRepo{DB: db}
}

func seedCategory(t *testing.T, r *repo.GormRepo) *models.Category {
	t.Helper()
	cat := &models.Category{Name: "Shoes"}
	require.NoError(t, r.CreateCategory(context.Background(), cat))
	return cat
}

func seedProduct(t *testing.T, r *repo.GormRepo, catID uint, title, price string) *models.Product {
	t.Helper()
	p := &models.Product{
		Title:       title,
		Brand:       "Acme",
		Price:       decimal.RequireFromString(price),
		IsAvailable: true,
		CategoryID:  catID,
	}
	require.NoError(t, r.CreateProduct(context.Background(), p))
	return p
}

// fakeBackend records the order it was called with and returns a canned
// session, or fails when broken.
type fakeBackend struct {
	broken bool
	orders []uint
	items  [][]payment.LineItem
}

func (f *fakeBackend) CreateSession(ctx context.Context, order *models.Order, items []payment.LineItem) (*payment.Session, error) {
	if f.broken {
		return nil, fmt.Errorf("%w: fake: down", payment.ErrProvider)
	}
	f.orders = append(f.orders, order.ID)
	f.items = append(f.items, items)
	return &payment.Session{
		URL: fmt.Sprintf("https://pay.test/%d", order.ID),
		Ref: fmt.Sprintf("ref_%d", order.ID),
	}, nil
}

func validShipping() ShippingInput {
	return ShippingInput{
		FullName:         "Jane Doe",
		Email:            "jane@example.com",
		StreetAddress:    "1 Main St",
		ApartmentAddress: "Apt 2",
		City:             "Springfield",
	}
}
