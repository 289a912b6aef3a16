package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Data source kinds.
const (
	SourceSheets   = "sheets"
	SourcePostgres = "postgres"
)

// Config holds application configuration loaded from environment variables
type Config struct {
	DataSource      string
	SheetID         string
	SheetsBaseURL   string
	SheetsRateLimit float64
	PGURL           string
	RedisURL        string

	AccountsTable string
	EquityTable   string
	IndexesTable  string

	FreshnessWindow  time.Duration
	CashAssetClasses []string
	EquityAssetClass string
	BenchmarkIndex   string

	DisplayCurrency  string
	CurrencyDecimals int
	PercentDecimals  int

	Port      string
	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables. A .env file in the
// working directory is read first; variables already set in the shell win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DataSource:       strings.ToLower(getEnv("DATA_SOURCE", SourceSheets)),
		SheetID:          os.Getenv("SHEET_ID"),
		SheetsBaseURL:    getEnv("SHEETS_BASE_URL", "https://docs.google.com/spreadsheets/d"),
		PGURL:            os.Getenv("PG_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		AccountsTable:    getEnv("WORKSHEET_ACCOUNTS", "portfolios"),
		EquityTable:      getEnv("WORKSHEET_EQUITY", "assets"),
		IndexesTable:     getEnv("WORKSHEET_INDEXES", "indexes"),
		CashAssetClasses: splitList(getEnv("CASH_ASSET_CLASSES", "cash")),
		EquityAssetClass: getEnv("EQUITY_ASSET_CLASS", "equity"),
		BenchmarkIndex:   getEnv("BENCHMARK_INDEX", "sp500"),
		DisplayCurrency:  strings.ToUpper(getEnv("DISPLAY_CURRENCY", "USD")),
		Port:             getEnv("PORT", "8080"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "text"),
	}

	var err error
	if cfg.SheetsRateLimit, err = strconv.ParseFloat(getEnv("SHEETS_RATE_LIMIT", "2"), 64); err != nil {
		return nil, fmt.Errorf("SHEETS_RATE_LIMIT must be a number: %w", err)
	}
	if cfg.FreshnessWindow, err = time.ParseDuration(getEnv("FRESHNESS_WINDOW", "10m")); err != nil {
		return nil, fmt.Errorf("FRESHNESS_WINDOW must be a duration such as 10m: %w", err)
	}
	if cfg.FreshnessWindow < 0 {
		return nil, fmt.Errorf("FRESHNESS_WINDOW must not be negative")
	}
	if cfg.CurrencyDecimals, err = getEnvInt("CURRENCY_DECIMALS", 2); err != nil {
		return nil, err
	}
	if cfg.PercentDecimals, err = getEnvInt("PERCENT_DECIMALS", 1); err != nil {
		return nil, err
	}

	switch cfg.DataSource {
	case SourceSheets:
		if cfg.SheetID == "" {
			return nil, fmt.Errorf("SHEET_ID environment variable is required when DATA_SOURCE=%s", SourceSheets)
		}
	case SourcePostgres:
		if cfg.PGURL == "" {
			return nil, fmt.Errorf("PG_URL environment variable is required when DATA_SOURCE=%s", SourcePostgres)
		}
	default:
		return nil, fmt.Errorf("DATA_SOURCE must be %q or %q, got %q", SourceSheets, SourcePostgres, cfg.DataSource)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer, got %q", key, v)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
