package config

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Togather-Foundation/eventrip/internal/validation"
	"github.com/joho/godotenv"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Logging     LoggingConfig
	CORS        CORSConfig
	RateLimit   RateLimitConfig
	Tracing     TracingConfig
	Offers      OffersConfig
	Wizard      WizardConfig
	Environment string
}

type ServerConfig struct {
	Host    string
	Port    int
	BaseURL string
}

type DatabaseConfig struct {
	URL            string
	MaxConnections int
	MaxIdle        int
}

type LoggingConfig struct {
	Level  string
	Format string
}

type CORSConfig struct {
	AllowAllOrigins bool
	AllowedOrigins  []string
}

type RateLimitConfig struct {
	PublicPerMinute int
	// TrustedProxyCIDRs lists proxies whose X-Forwarded-For header is believed.
	TrustedProxyCIDRs []string
}

type TracingConfig struct {
	Enabled      bool
	Exporter     string
	ServiceName  string
	OTLPEndpoint string
	SampleRate   float64
}

// OffersConfig controls the mocked accommodation and flight providers.
type OffersConfig struct {
	AffiliateID string
	Currency    string
	// CatalogPath overrides the embedded offer catalog when set.
	CatalogPath string
}

// WizardConfig is read by the web wizard, which needs no database.
type WizardConfig struct {
	Host          string
	Port          int
	APIBaseURL    string
	FetchTimeout  time.Duration
	CSRFKey       []byte
	SecureCookies bool
}

const csrfKeyLength = 32

// Load reads the API server configuration. DATABASE_URL is required.
func Load() (Config, error) {
	cfg, err := load()
	if err != nil {
		return Config{}, err
	}
	if cfg.Database.URL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}
	return cfg, nil
}

// LoadWizard reads the configuration for the web wizard.
func LoadWizard() (Config, error) {
	cfg, err := load()
	if err != nil {
		return Config{}, err
	}
	key, err := csrfKey(os.Getenv("WIZARD_CSRF_KEY"), cfg.IsProduction())
	if err != nil {
		return Config{}, err
	}
	cfg.Wizard.CSRFKey = key
	if err := validation.ValidateBaseURL(cfg.Wizard.APIBaseURL, "WIZARD_API_BASE_URL", false); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadEnvFile loads variables from the given .env files (default ".env")
// without overriding the environment. Missing files are ignored.
func LoadEnvFile(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

func load() (Config, error) {
	env := getEnv("ENVIRONMENT", "development")
	cfg := Config{
		Server: ServerConfig{
			Host:    getEnv("SERVER_HOST", "0.0.0.0"),
			Port:    getEnvInt("SERVER_PORT", 8080),
			BaseURL: getEnv("SERVER_BASE_URL", "http://localhost:8080"),
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConnections: getEnvInt("DATABASE_MAX_CONNECTIONS", 25),
			MaxIdle:        getEnvInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		RateLimit: RateLimitConfig{
			PublicPerMinute:   getEnvInt("RATE_LIMIT_PUBLIC", 120),
			TrustedProxyCIDRs: splitList(os.Getenv("TRUSTED_PROXY_CIDRS")),
		},
		Tracing: TracingConfig{
			Enabled:      getEnvBool("TRACING_ENABLED", false),
			Exporter:     getEnv("TRACING_EXPORTER", "stdout"),
			ServiceName:  getEnv("TRACING_SERVICE_NAME", "eventrip"),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			SampleRate:   getEnvFloat("TRACING_SAMPLE_RATE", 1.0),
		},
		Offers: OffersConfig{
			AffiliateID: getEnv("OFFERS_AFFILIATE_ID", "YOUR_AFFILIATE_ID"),
			Currency:    getEnv("OFFERS_CURRENCY", "EUR"),
			CatalogPath: getEnv("OFFERS_CATALOG_PATH", ""),
		},
		Wizard: WizardConfig{
			Host:          getEnv("WIZARD_HOST", "0.0.0.0"),
			Port:          getEnvInt("WIZARD_PORT", 3000),
			APIBaseURL:    getEnv("WIZARD_API_BASE_URL", "http://localhost:8080"),
			FetchTimeout:  getEnvDuration("WIZARD_FETCH_TIMEOUT", 5*time.Second),
			SecureCookies: getEnvBool("WIZARD_SECURE_COOKIES", env == "production"),
		},
		Environment: env,
	}

	origins := splitList(os.Getenv("CORS_ALLOWED_ORIGINS"))
	switch env {
	case "development", "test":
		cfg.CORS = CORSConfig{AllowAllOrigins: true, AllowedOrigins: origins}
	default:
		if len(origins) == 0 {
			return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS is required when ENVIRONMENT=%s", env)
		}
		cfg.CORS = CORSConfig{AllowedOrigins: origins}
	}

	if cfg.Tracing.SampleRate < 0 || cfg.Tracing.SampleRate > 1 {
		return Config{}, fmt.Errorf("TRACING_SAMPLE_RATE must be between 0 and 1, got %v", cfg.Tracing.SampleRate)
	}
	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

// csrfKey takes the first 32 bytes of raw. Outside production an empty key is
// replaced by a random one, which invalidates forms on restart.
func csrfKey(raw string, production bool) ([]byte, error) {
	if raw == "" {
		if production {
			return nil, fmt.Errorf("WIZARD_CSRF_KEY is required in production")
		}
		key := make([]byte, csrfKeyLength)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate csrf key: %w", err)
		}
		return key, nil
	}
	if len(raw) < csrfKeyLength {
		return nil, fmt.Errorf("WIZARD_CSRF_KEY must be at least %d characters", csrfKeyLength)
	}
	return []byte(raw[:csrfKeyLength]), nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
