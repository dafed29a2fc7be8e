package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/skorin/webshop/internal/auth"
	"github.com/skorin/webshop/internal/cart"
	"github.com/skorin/webshop/internal/events"
	"github.com/skorin/webshop/internal/models"
	"github.com/skorin/webshop/internal/payment"
	"github.com/skorin/webshop/internal/repo"
	"github.com/skorin/webshop/internal/service"
)

const testWebhookSecret = "whsec_test_secret"

type testEnv struct {
	T       *testing.T
	E       *echo.Echo
	Repo    *repo.GormRepo
	Store   cart.SessionStore
	Backend *fakeBackend
	Issuer  *auth.TokenIssuer

	cookies []*http.Cookie
}

type fakeBackend struct {
	broken bool
}

func (f *fakeBackend) CreateSession(ctx context.Context, order *models.Order, items []payment.LineItem) (*payment.Session, error) {
	if f.broken {
		return nil, fmt.Errorf("%w: fake: down", payment.ErrProvider)
	}
	return &payment.Session{
		URL: fmt.Sprintf("https://pay.test/%d", order.ID),
		Ref: fmt.Sprintf("ref_%d", order.ID),
	}, nil
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=private"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Category{}, &models.Product{}, &models.User{},
		&models.ShippingAddress{}, &models.Order{}, &models.OrderItem{},
	))

	r := &repo.GormRepo{DB: db}
	store := cart.NewMemoryStore()
	backend := &fakeBackend{}
	issuer := &auth.TokenIssuer{Secret: []byte("test-secret")}

	catalogSvc := &service.CatalogService{Repo: r, Events: events.Nop{}}
	checkoutSvc := &service.CheckoutService{
		Repo:     r,
		Backends: map[payment.Method]payment.Backend{payment.MethodCard: backend},
		Events:   events.Nop{},
	}
	accountSvc := &service.AccountService{Repo: r, Issuer: issuer}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	Register(e, &Deps{
		ProductHandler:  &ProductHandler{Svc: catalogSvc},
		CartHandler:     &CartHandler{Repo: r, Store: store},
		CheckoutHandler: &CheckoutHandler{Svc: checkoutSvc, Store: store},
		WebhookHandler:  &WebhookHandler{Svc: checkoutSvc, StripeWebhookSecret: testWebhookSecret},
		AccountHandler:  &AccountHandler{Svc: accountSvc},
		Auth:            &auth.Middleware{Issuer: issuer},
	})

	return &testEnv{T: t, E: e, Repo: r, Store: store, Backend: backend, Issuer: issuer}
}

// doJSON runs a request through the full router, carrying session cookies
// across calls like a browser would.
func (env *testEnv) doJSON(method, path string, body any) *httptest.ResponseRecorder {
	env.T.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, c := range env.cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)

	if got := rec.Result().Cookies(); len(got) > 0 {
		env.cookies = got
	}
	return rec
}

func (env *testEnv) decode(rec *httptest.ResponseRecorder, out any) {
	env.T.Helper()
	require.NoError(env.T, json.Unmarshal(rec.Body.Bytes(), out))
}

func (env *testEnv) seedProduct(title, price string) *models.Product {
	env.T.Helper()
	cat := &models.Category{Name: "cat-" + title}
	require.NoError(env.T, env.Repo.CreateCategory(context.Background(), cat))
	p := &models.Product{
		Title:       title,
		Brand:       "Acme",
		Price:       decimal.RequireFromString(price),
		IsAvailable: true,
		CategoryID:  cat.ID,
	}
	require.NoError(env.T, env.Repo.CreateProduct(context.Background(), p))
	return p
}

func validShippingBody() map[string]any {
	return map[string]any{
		"full_name":         "Jane Doe",
		"email":             "jane@example.com",
		"street_address":    "1 Main St",
		"apartment_address": "Apt 2",
	}
}
