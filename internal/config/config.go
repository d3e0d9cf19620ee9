package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress      string
	DatabaseURI     string
	ShopAPIAddress  string
	SessionSecret   string
	SessionTTL      time.Duration
	SessionIdleTTL  time.Duration
	RequestTimeout  time.Duration
	SyncInterval    time.Duration
	SyncBatchSize   int
	SyncWorkers     int
	ShutdownTimeout time.Duration
	LogLevel        string
}

const (
	defaultRunAddress      = ":8080"
	defaultSessionSecret   = "change-me-in-production"
	defaultSessionTTL      = 7 * 24 * time.Hour
	defaultSessionIdleTTL  = 24 * time.Hour
	defaultRequestTimeout  = 10 * time.Second
	defaultSyncInterval    = 30 * time.Second
	defaultSyncBatchSize   = 32
	defaultSyncWorkers     = 4
	defaultShutdownTimeout = 10 * time.Second
	defaultLogLevel        = "info"
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:      getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:     getString(lookup, "DATABASE_URI", ""),
		ShopAPIAddress:  getString(lookup, "SHOP_API_ADDRESS", ""),
		SessionSecret:   getString(lookup, "SESSION_SECRET", defaultSessionSecret),
		SessionTTL:      getDuration(lookup, "SESSION_TTL", defaultSessionTTL),
		SessionIdleTTL:  getDuration(lookup, "SESSION_IDLE_TTL", defaultSessionIdleTTL),
		RequestTimeout:  getDuration(lookup, "REQUEST_TIMEOUT", defaultRequestTimeout),
		SyncInterval:    getDuration(lookup, "SYNC_INTERVAL", defaultSyncInterval),
		SyncBatchSize:   getInt(lookup, "SYNC_BATCH_SIZE", defaultSyncBatchSize),
		SyncWorkers:     getInt(lookup, "SYNC_WORKERS", defaultSyncWorkers),
		ShutdownTimeout: getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		LogLevel:        getString(lookup, "LOG_LEVEL", defaultLogLevel),
	}

	fs := flag.NewFlagSet("storefront", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		sessionTTLStr      = cfg.SessionTTL.String()
		sessionIdleTTLStr  = cfg.SessionIdleTTL.String()
		requestTimeoutStr  = cfg.RequestTimeout.String()
		syncIntervalStr    = cfg.SyncInterval.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.ShopAPIAddress, "r", cfg.ShopAPIAddress, "Shop API base URL")
	fs.StringVar(&cfg.SessionSecret, "session-secret", cfg.SessionSecret, "Secret for signing session cookies")
	fs.StringVar(&sessionTTLStr, "session-ttl", sessionTTLStr, "Maximum lifetime of a session after login")
	fs.StringVar(&sessionIdleTTLStr, "session-idle-ttl", sessionIdleTTLStr, "Lifetime of a session without browser requests")
	fs.StringVar(&requestTimeoutStr, "request-timeout", requestTimeoutStr, "Timeout for shop API calls")
	fs.StringVar(&syncIntervalStr, "sync-interval", syncIntervalStr, "Interval between order view syncs")
	fs.IntVar(&cfg.SyncBatchSize, "sync-batch", cfg.SyncBatchSize, "Maximum order views per sync batch")
	fs.IntVar(&cfg.SyncWorkers, "sync-workers", cfg.SyncWorkers, "Number of concurrent sync workers")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.SessionTTL, err = time.ParseDuration(sessionTTLStr); err != nil {
		return nil, fmt.Errorf("invalid session ttl: %w", err)
	}

	if cfg.SessionIdleTTL, err = time.ParseDuration(sessionIdleTTLStr); err != nil {
		return nil, fmt.Errorf("invalid session idle ttl: %w", err)
	}

	if cfg.RequestTimeout, err = time.ParseDuration(requestTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid request timeout: %w", err)
	}

	if cfg.SyncInterval, err = time.ParseDuration(syncIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid sync interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if secretFile, ok := lookup("SESSION_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read session secret file: %w", err)
		}
		cfg.SessionSecret = strings.TrimSpace(string(content))
	}

	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = defaultSessionTTL
	}

	if cfg.SessionIdleTTL <= 0 {
		cfg.SessionIdleTTL = defaultSessionIdleTTL
	}

	if cfg.SessionIdleTTL > cfg.SessionTTL {
		cfg.SessionIdleTTL = cfg.SessionTTL
	}

	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}

	if cfg.SyncInterval <= 0 {
		cfg.SyncInterval = defaultSyncInterval
	}

	if cfg.SyncBatchSize <= 0 {
		cfg.SyncBatchSize = defaultSyncBatchSize
	}

	if cfg.SyncWorkers <= 0 {
		cfg.SyncWorkers = defaultSyncWorkers
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if cfg.ShopAPIAddress == "" {
		return nil, fmt.Errorf("shop API address must be provided")
	}

	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("session secret must not be empty")
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
