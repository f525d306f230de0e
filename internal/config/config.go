package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds application runtime configuration.
type Config struct {
	Env                  string
	HTTPPort             string
	DatabaseURL          string
	JWTSecret            string
	LogLevel             string
	AccessTokenTTL       time.Duration
	ReadTimeout          time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	ShutdownTimeout      time.Duration
	BillNumberPrefix     string
	FixedDiscountPercent decimal.Decimal
	RateLimitPerMinute   int
	CORSAllowedOrigins   []string
	OpenAPIPath          string
	RunMigrations        bool
	BootstrapOwner       BootstrapOwner
}

// BootstrapOwner describes the owner account created on first start.
type BootstrapOwner struct {
	Username string
	Password string
	Email    string
	FullName string
}

// Load reads environment variables and .env (if present).
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Env:                  getEnv("APP_ENV", "development"),
		HTTPPort:             getEnv("HTTP_PORT", "8080"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		AccessTokenTTL:       getDuration("ACCESS_TOKEN_TTL", 24*time.Hour),
		ReadTimeout:          getDuration("HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:         getDuration("HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:          getDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout:      getDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		BillNumberPrefix:     getEnv("BILL_NUMBER_PREFIX", "VNDB"),
		FixedDiscountPercent: getDecimal("FIXED_DISCOUNT_PERCENT", decimal.NewFromInt(10)),
		RateLimitPerMinute:   getInt("RATE_LIMIT_PER_MINUTE", 200),
		CORSAllowedOrigins:   getList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		OpenAPIPath:          getEnv("OPENAPI_PATH", "api/openapi.yaml"),
		RunMigrations:        getBool("RUN_MIGRATIONS", true),
		BootstrapOwner: BootstrapOwner{
			Username: getEnv("BOOTSTRAP_OWNER_USERNAME", "owner"),
			Password: os.Getenv("BOOTSTRAP_OWNER_PASSWORD"),
			Email:    getEnv("BOOTSTRAP_OWNER_EMAIL", "owner@localhost"),
			FullName: getEnv("BOOTSTRAP_OWNER_NAME", "Shop Owner"),
		},
	}

	if cfg.DatabaseURL == "" {
		return cfg, errors.New("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return cfg, errors.New("JWT_SECRET is required")
	}
	if cfg.FixedDiscountPercent.IsNegative() || cfg.FixedDiscountPercent.GreaterThan(decimal.NewFromInt(100)) {
		return cfg, errors.New("FIXED_DISCOUNT_PERCENT must be between 0 and 100")
	}
	return cfg, nil
}

// IsDevelopment reports whether the process runs with developer defaults.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func getDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		// Support seconds as integer without suffix.
		if secs, convErr := strconv.Atoi(val); convErr == nil {
			return time.Duration(secs) * time.Second
		}
		return fallback
	}
	return d
}

func getInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return b
}

func getDecimal(key string, fallback decimal.Decimal) decimal.Decimal {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	d, err := decimal.NewFromString(val)
	if err != nil {
		return fallback
	}
	return d
}

func getList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
