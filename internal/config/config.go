package config

import (
	"fmt"

	pkgconfig "github.com/hpcatalog/catalogadmin/pkg/config"
)

// Config holds startup configuration for the BFF. The upstream base URLs are
// deliberately absent: they are resolved per forwarded request so updates
// take effect without a restart (see the forward package).
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	HTTPPort    int    `env:"BFF_HTTP_PORT" envDefault:"8080"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	CORSMaxAge         int      `env:"CORS_MAX_AGE" envDefault:"3600"`

	// Rate limiting
	RateLimitRPS   int `env:"RATE_LIMIT_RPS" envDefault:"100"`
	RateLimitBurst int `env:"RATE_LIMIT_BURST" envDefault:"200"`

	// Optional bearer verification before forwarding. When disabled the BFF
	// forwards the Authorization header verbatim and lets upstreams decide.
	VerifyJWT bool   `env:"BFF_VERIFY_JWT" envDefault:"false"`
	JWTSecret string `env:"JWT_SECRET"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load bff config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.VerifyJWT && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when BFF_VERIFY_JWT is enabled")
	}
	return nil
}
