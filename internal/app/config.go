package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (CAFE_ prefix), flags, or YAML config files.
type Config struct {
	Addr          string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL   string `usage:"PostgreSQL connection URL (CAFE_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	RedisAddr     string `default:"localhost:6379" usage:"Redis address for the admin session store" flag:"redis-addr"`
	AdminPassword string `usage:"Shared admin dashboard password (CAFE_ADMIN_PASSWORD)" flag:"admin-password"`
	FrontendURL   string `default:"http://localhost:5173" usage:"Frontend base URL for payment callback redirects" flag:"frontend-url"`
	ImageBaseURL  string `default:"" usage:"Base URL for menu item images" flag:"image-base-url"`
	PhonePe       PhonePeConfig `env:"PHONEPE"`
	RateLimit     RateLimitConfig
	CORS          CORSConfig
	Graceful      GracefulConfig
}

// PhonePeConfig holds the payment gateway merchant credentials.
type PhonePeConfig struct {
	MerchantID  string `usage:"PhonePe merchant ID" flag:"phonepe-merchant-id"`
	SaltKey     string `usage:"PhonePe API salt key" flag:"phonepe-salt-key"`
	SaltIndex   string `default:"1" usage:"PhonePe salt key index" flag:"phonepe-salt-index"`
	APIEndpoint string `default:"https://api-preprod.phonepe.com/apis/pg-sandbox" usage:"PhonePe API base URL" flag:"phonepe-endpoint"`
	CallbackURL string `usage:"Public URL of the webhook endpoint" flag:"phonepe-callback-url"`
	RedirectURL string `usage:"Public URL the gateway redirects the browser to" flag:"phonepe-redirect-url"`
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config files,
// and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "CAFE",
		Files:     []string{"config.yaml", "/etc/cafe/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set CAFE_DATABASE_URL or DATABASE_URL")
	}
	if cfg.AdminPassword == "" {
		return nil, errors.New("admin password is required: set CAFE_ADMIN_PASSWORD")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's CAFE_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
