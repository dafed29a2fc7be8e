package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/skorin/webshop/internal/auth"
	"github.com/skorin/webshop/internal/cart"
	"github.com/skorin/webshop/internal/config"
	"github.com/skorin/webshop/internal/events"
	"github.com/skorin/webshop/internal/httpserver"
	"github.com/skorin/webshop/internal/logging"
	"github.com/skorin/webshop/internal/models"
	"github.com/skorin/webshop/internal/payment"
	"github.com/skorin/webshop/internal/repo"
	"github.com/skorin/webshop/internal/search"
	"github.com/skorin/webshop/internal/service"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)

	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")
	config.MustNonEmpty(cfg.StripeSecretKey, "STRIPE_SECRET_KEY")

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		logger.Error("open database failed", "error", err)
		os.Exit(1)
	}
	if err := db.AutoMigrate(
		&models.Category{}, &models.Product{}, &models.User{},
		&models.ShippingAddress{}, &models.Order{}, &models.OrderItem{},
	); err != nil {
		logger.Error("migrate failed", "error", err)
		os.Exit(1)
	}
	r := &repo.GormRepo{DB: db}

	var store cart.SessionStore
	redisStore, err := cart.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		logger.Warn("redis unavailable, carts held in memory", "error", err)
		store = cart.NewMemoryStore()
	} else {
		store = redisStore
		defer redisStore.Close()
	}

	var pub events.Publisher = events.Nop{}
	var producer *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = events.NewProducer(cfg.KafkaBrokers)
		pub = producer
		defer producer.Close()
	} else {
		logger.Warn("no kafka brokers configured, events disabled")
	}

	var (
		indexer       *search.Indexer
		searchHandler *httpserver.SearchHandler
	)
	if cfg.ESURL != "" {
		esClient, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			logger.Error("elasticsearch unavailable", "error", err)
			os.Exit(1)
		}
		indexer = &search.Indexer{ES: esClient, Index: search.ProductIndex}
		searchHandler = &httpserver.SearchHandler{ES: esClient, Index: search.ProductIndex}
	} else {
		logger.Warn("no elasticsearch configured, search disabled")
	}

	urls := payment.URLs{
		Success:      cfg.BaseURL + "/payment/success",
		Cancel:       cfg.BaseURL + "/payment/failed",
		Notification: cfg.BaseURL + "/payment/webhook/bitpay",
	}
	backends := map[payment.Method]payment.Backend{
		payment.MethodCard: payment.NewStripeBackend(cfg.StripeSecretKey, urls),
	}
	if cfg.BitPayToken != "" {
		backends[payment.MethodInvoiceCrypto] = payment.NewBitPayBackend(cfg.BitPayURL, cfg.BitPayToken, urls)
	}
	if cfg.SimpleSwapAPIKey != "" && cfg.BTCAddress != "" {
		backends[payment.MethodExchangeCrypto] = payment.NewSimpleSwapBackend(cfg.SimpleSwapURL, cfg.SimpleSwapAPIKey, cfg.BTCAddress)
	}

	issuer := &auth.TokenIssuer{Secret: cfg.JWTSecret}
	catalogSvc := &service.CatalogService{Repo: r, Events: pub, Indexer: indexer}
	checkoutSvc := &service.CheckoutService{Repo: r, Backends: backends, Events: pub}
	accountSvc := &service.AccountService{Repo: r, Issuer: issuer}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), httpserver.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		ProductHandler:  &httpserver.ProductHandler{Svc: catalogSvc},
		CartHandler:     &httpserver.CartHandler{Repo: r, Store: store},
		CheckoutHandler: &httpserver.CheckoutHandler{Svc: checkoutSvc, Store: store},
		WebhookHandler:  &httpserver.WebhookHandler{Svc: checkoutSvc, StripeWebhookSecret: cfg.StripeWebhookSecret},
		SearchHandler:   searchHandler,
		AccountHandler:  &httpserver.AccountHandler{Svc: accountSvc},
		Auth:            &auth.Middleware{Issuer: issuer},
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
