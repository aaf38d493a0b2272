package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress      string
	DatabaseURI     string
	TokenSecret     string
	TenantName      string
	ShutdownTimeout time.Duration

	PayPal      PayPalConfig
	TwoCheckout TwoCheckoutConfig

	NotifyQueueSize int
	NotifyWorkers   int
}

// PayPalConfig carries the REST API credentials and the webhook ids used to
// verify inbound event signatures. Order and subscription events arrive on
// separately registered webhooks.
type PayPalConfig struct {
	BaseURL               string
	ClientID              string
	Secret                string
	WebhookID             string
	SubscriptionWebhookID string
}

// Configured reports whether the API credential pair is present.
func (c PayPalConfig) Configured() bool {
	return c.ClientID != "" && c.Secret != ""
}

// TwoCheckoutConfig carries the INS notification credentials.
type TwoCheckoutConfig struct {
	SellerID string
	Secret   string
}

// Configured reports whether INS hash verification is possible.
func (c TwoCheckoutConfig) Configured() bool {
	return c.SellerID != "" && c.Secret != ""
}

const (
	defaultRunAddress      = ":8080"
	defaultTokenSecret     = "change-me-in-production"
	defaultShutdownTimeout = 10 * time.Second
	defaultNotifyQueueSize = 64
	defaultNotifyWorkers   = 2
)

// Load parses configuration from a .env file when present, environment
// variables, and flags, in increasing order of precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:      getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:     getString(lookup, "DATABASE_URI", ""),
		TokenSecret:     getString(lookup, "TOKEN_SECRET", defaultTokenSecret),
		TenantName:      getString(lookup, "TENANT_NAME", ""),
		ShutdownTimeout: getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		PayPal: PayPalConfig{
			BaseURL:               getString(lookup, "PAYPAL_BASE_URL", "https://api-m.paypal.com"),
			ClientID:              getString(lookup, "PAYPAL_CLIENT_ID", ""),
			Secret:                getString(lookup, "PAYPAL_SECRET", ""),
			WebhookID:             getString(lookup, "PAYPAL_WEBHOOK_ID", ""),
			SubscriptionWebhookID: getString(lookup, "PAYPAL_SUBSCRIPTION_WEBHOOK_ID", ""),
		},
		TwoCheckout: TwoCheckoutConfig{
			SellerID: getString(lookup, "TWOCHECKOUT_SELLER_ID", ""),
			Secret:   getString(lookup, "TWOCHECKOUT_SECRET", ""),
		},
		NotifyQueueSize: getInt(lookup, "NOTIFY_QUEUE_SIZE", defaultNotifyQueueSize),
		NotifyWorkers:   getInt(lookup, "NOTIFY_WORKERS", defaultNotifyWorkers),
	}

	fs := flag.NewFlagSet("papermart", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	shutdownTimeoutStr := cfg.ShutdownTimeout.String()

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.TokenSecret, "token-secret", cfg.TokenSecret, "Secret for signing auth tokens")
	fs.StringVar(&cfg.TenantName, "tenant", cfg.TenantName, "Tenant identifier expected in webhook payloads")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.IntVar(&cfg.NotifyWorkers, "notify-workers", cfg.NotifyWorkers, "Number of concurrent notification workers")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if secretFile, ok := lookup("TOKEN_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read token secret file: %w", err)
		}
		cfg.TokenSecret = string(content)
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.NotifyQueueSize <= 0 {
		cfg.NotifyQueueSize = defaultNotifyQueueSize
	}

	if cfg.NotifyWorkers <= 0 {
		cfg.NotifyWorkers = defaultNotifyWorkers
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
