package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string
	ServerPort  int
	LogLevel    string

	DatabaseURL string

	RedisAddr     string
	RedisPassword string

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string

	JWTSecret []byte

	BaseURL string

	StripeSecretKey     string
	StripeWebhookSecret string
	BitPayToken         string
	BitPayURL           string
	SimpleSwapAPIKey    string
	SimpleSwapURL       string
	BTCAddress          string

	BotToken      string
	AdminBotToken string
	BotAPIToken   string
	APIURL        string

	BinanceAPIKey    string
	BinanceSecretKey string
	BinanceURL       string
}

func Load() Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("notice: .env file not found, using system environment")
	}

	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "webshop"),
		ServerPort:  EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		RedisAddr:     EnvDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),

		JWTSecret: []byte(os.Getenv("JWT_SECRET")),

		BaseURL: EnvDefault("BASE_URL", "http://localhost:8080"),

		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		BitPayToken:         os.Getenv("BITPAY_TOKEN"),
		BitPayURL:           EnvDefault("BITPAY_URL", "https://test.bitpay.com"),
		SimpleSwapAPIKey:    os.Getenv("SIMPLESWAP_API_KEY"),
		SimpleSwapURL:       EnvDefault("SIMPLESWAP_URL", "https://api.simpleswap.io"),
		BTCAddress:          os.Getenv("BTC_ADDRESS"),

		BotToken:      os.Getenv("TG_BOT_TOKEN"),
		AdminBotToken: os.Getenv("TG_ADMIN_BOT_TOKEN"),
		BotAPIToken:   os.Getenv("BOT_API_TOKEN"),
		APIURL:        EnvDefault("API_URL", "http://localhost:8080"),

		BinanceAPIKey:    os.Getenv("BINANCE_API_KEY"),
		BinanceSecretKey: os.Getenv("BINANCE_SECRET_KEY"),
		BinanceURL:       EnvDefault("BINANCE_URL", "https://api.binance.com"),
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if os.Getenv(key) != "" {
		return os.Getenv(key)
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
