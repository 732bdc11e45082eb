package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Env is the process configuration. Business constants (seat limit, admin
// fees, paid tokens) are advisory copies; the backend enforces them.
type Env struct {
	AppAddr  string
	GinMode  string
	LogLevel string

	TravelAPIBaseURL string
	TravelAPITimeout time.Duration

	PaymentPollInterval time.Duration
	MaxSeats            int
	PaidStatusTokens    []string
	CashImpliesPaid     bool
	AdminFeeTransfer    int64
	AdminFeeQRIS        int64

	DBDSN              string
	SessionTokenSecret string
	SessionIdleTTL     time.Duration
	SessionRetention   time.Duration
	CORSAllowedOrigins []string
}

var defaultPaidTokens = []string{"lunas", "paid", "sukses", "success", "settlement", "pembayaran sukses", "approved"}

var defaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://127.0.0.1:3000",
	"http://localhost:5173",
	"http://127.0.0.1:5173",
}

// LoadEnv reads configuration from the environment, loading .env first when
// present. Invalid values fall back to defaults with a warning.
func LoadEnv() Env {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("gagal membaca .env")
	}

	return Env{
		AppAddr:  stringVar("APP_ADDR", ":8080"),
		GinMode:  stringVar("GIN_MODE", ""),
		LogLevel: stringVar("LOG_LEVEL", "info"),

		TravelAPIBaseURL: strings.TrimRight(stringVar("TRAVEL_API_BASE_URL", "http://localhost:8081"), "/"),
		TravelAPITimeout: durationVar("TRAVEL_API_TIMEOUT", 15*time.Second),

		PaymentPollInterval: durationVar("PAYMENT_POLL_INTERVAL", 5*time.Second),
		MaxSeats:            int(intVar("MAX_SEATS", 6)),
		PaidStatusTokens:    listVar("PAID_STATUS_TOKENS", defaultPaidTokens),
		CashImpliesPaid:     boolVar("CASH_IMPLIES_PAID", true),
		AdminFeeTransfer:    intVar("ADMIN_FEE_TRANSFER", 2500),
		AdminFeeQRIS:        intVar("ADMIN_FEE_QRIS", 1500),

		DBDSN:              stringVar("DB_DSN", ""),
		SessionTokenSecret: stringVar("SESSION_TOKEN_SECRET", "dev-secret-change-me"),
		SessionIdleTTL:     durationVar("SESSION_IDLE_TTL", 30*time.Minute),
		SessionRetention:   durationVar("SESSION_RETENTION", 7*24*time.Hour),
		CORSAllowedOrigins: listVar("CORS_ALLOWED_ORIGINS", defaultCORSOrigins),
	}
}

func stringVar(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func intVar(key string, def int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		logrus.WithField("key", key).Warnf("nilai %q tidak valid, pakai default %d", raw, def)
		return def
	}
	return n
}

func boolVar(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		logrus.WithField("key", key).Warnf("nilai %q tidak valid, pakai default %t", raw, def)
		return def
	}
	return b
}

func durationVar(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		logrus.WithField("key", key).Warnf("nilai %q tidak valid, pakai default %s", raw, def)
		return def
	}
	return d
}

func listVar(key string, def []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return append([]string(nil), def...)
	}
	out := []string{}
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), def...)
	}
	return out
}
