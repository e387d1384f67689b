package config

import (
	"os"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config carries everything tunable at startup. It is built once in main and
// passed down explicitly; packages never read the environment themselves.
type Config struct {
	ListenAddr      string
	MaxUploadBytes  int64
	AmountTolerance decimal.Decimal
	TaxTolerance    decimal.Decimal
	IngestWorkers   int
}

const defaultMaxUploadBytes = 10 * 1024 * 1024 // 10 MiB

// Load reads configuration from the environment. A .env file is honored when
// present, same as the original deployment.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		ListenAddr:      ":" + envOr("PORT", "8080"),
		MaxUploadBytes:  envInt64("MAX_UPLOAD_BYTES", defaultMaxUploadBytes),
		AmountTolerance: envDecimal("AMOUNT_TOLERANCE", decimal.NewFromInt(1)),
		TaxTolerance:    envDecimal("TAX_TOLERANCE", decimal.NewFromInt(1)),
		IngestWorkers:   int(envInt64("INGEST_WORKERS", int64(runtime.NumCPU()))),
	}
	if cfg.IngestWorkers < 1 {
		cfg.IngestWorkers = 1
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envDecimal(key string, fallback decimal.Decimal) decimal.Decimal {
	if v := os.Getenv(key); v != "" {
		if d, err := decimal.NewFromString(v); err == nil && !d.IsNegative() {
			return d
		}
	}
	return fallback
}
