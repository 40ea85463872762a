package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"

	"github.com/subdee/icepay/infra/validate"
)

type Config struct {
	Validator *validator.Validate
}

// IcepayConfig holds the merchant account and gateway settings, read from ICEPAY_* variables
type IcepayConfig struct {
	MerchantID    string        `env:"MERCHANT_ID" validate:"required,numeric"`
	SecretCode    string        `env:"SECRET_CODE" validate:"required"`
	Language      string        `env:"LANGUAGE" validate:"omitempty,len=2,alpha"`
	Country       string        `env:"COUNTRY" validate:"omitempty,len=2,alpha"`
	Currency      string        `env:"CURRENCY" validate:"omitempty,currency"`
	BasicURL      string        `env:"BASIC_URL" validate:"omitempty,url"`
	WebserviceURL string        `env:"WEBSERVICE_URL" validate:"omitempty,url"`
	IPRanges      []string      `env:"IP_RANGES" envSeparator:","`
	Timeout       time.Duration `env:"TIMEOUT" envDefault:"30s"`
	URLCompleted  string        `env:"URL_COMPLETED" validate:"omitempty,url"`
	URLError      string        `env:"URL_ERROR" validate:"omitempty,url"`
	MethodsTTL    time.Duration `env:"METHODS_CACHE_TTL"`
}

// AppConfig represents the application configuration
type AppConfig struct {
	Port         string `env:"APP_PORT" envDefault:"9999"`
	Environment  string `env:"ENVIRONMENT" envDefault:"development"`
	LoggingLevel string `env:"LOGGING_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	APIKey       string `env:"API_KEY"`

	RateLimit      int           `env:"RATE_LIMIT" envDefault:"100" validate:"gte=0"`
	RateWindow     time.Duration `env:"RATE_WINDOW" envDefault:"1m"`
	AllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	// Ambient locale and currency the gateway settings fall back to
	Locale   string `env:"APP_LOCALE" envDefault:"en-GB" validate:"required,bcp47"`
	Currency string `env:"APP_CURRENCY" envDefault:"EUR" validate:"required,currency"`

	Icepay IcepayConfig `envPrefix:"ICEPAY_"`

	OpenSearchURL  string `env:"OPENSEARCH_URL"`
	OpenSearchUser string `env:"OPENSEARCH_USER"`
	OpenSearchPass string `env:"OPENSEARCH_PASSWORD"`
	EnableLogging  bool   `env:"ENABLE_OPENSEARCH_LOGGING" envDefault:"false"`

	SQLitePath string `env:"SQLITE_PATH"`

	KafkaBrokers       []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaPostbackTopic string   `env:"KAFKA_POSTBACK_TOPIC" envDefault:"icepay.postbacks"`
}

var (
	instance     *Config
	instanceOnce sync.Once
)

func App() *Config {
	instanceOnce.Do(func() {
		v := validator.New()
		validate.CustomValidate(v)
		instance = &Config{
			Validator: v,
		}
	})
	return instance
}

// Load parses the application configuration from the environment and validates it
func Load() (*AppConfig, error) {
	cfg, err := env.ParseAs[AppConfig]()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := App().Validator.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return &cfg, nil
}

// OpenSearchEnabled reports whether log shipping to OpenSearch is configured
func (c *AppConfig) OpenSearchEnabled() bool {
	return c.EnableLogging && c.OpenSearchURL != ""
}
