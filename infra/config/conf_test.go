package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApp(t *testing.T) {
	config1 := App()
	config2 := App()

	require.NotNil(t, config1)
	assert.Same(t, config1, config2, "App() should return singleton instance")
	assert.NotNil(t, config1.Validator)
}

func setRequired(t *testing.T) {
	t.Setenv("ICEPAY_MERCHANT_ID", "12345")
	t.Setenv("ICEPAY_SECRET_CODE", "s3cr3t")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LoggingLevel)
	assert.Equal(t, "en-GB", cfg.Locale)
	assert.Equal(t, "EUR", cfg.Currency)
	assert.Equal(t, "12345", cfg.Icepay.MerchantID)
	assert.Equal(t, "s3cr3t", cfg.Icepay.SecretCode)
	assert.Equal(t, 30*time.Second, cfg.Icepay.Timeout)
	assert.Equal(t, "icepay.postbacks", cfg.KafkaPostbackTopic)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.OpenSearchEnabled())
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_PORT", "8080")
	t.Setenv("APP_LOCALE", "nl-NL")
	t.Setenv("ICEPAY_LANGUAGE", "FR")
	t.Setenv("ICEPAY_TIMEOUT", "5s")
	t.Setenv("ICEPAY_IP_RANGES", "10.0.0.0/8,192.168.1.1")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("ENABLE_OPENSEARCH_LOGGING", "true")
	t.Setenv("OPENSEARCH_URL", "http://localhost:9200")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "nl-NL", cfg.Locale)
	assert.Equal(t, "FR", cfg.Icepay.Language)
	assert.Equal(t, 5*time.Second, cfg.Icepay.Timeout)
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.1"}, cfg.Icepay.IPRanges)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.OpenSearchEnabled())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "missing_merchant",
			env:  map[string]string{"ICEPAY_MERCHANT_ID": "", "ICEPAY_SECRET_CODE": "s3cr3t"},
		},
		{
			name: "missing_secret",
			env:  map[string]string{"ICEPAY_MERCHANT_ID": "12345", "ICEPAY_SECRET_CODE": ""},
		},
		{
			name: "non_numeric_merchant",
			env:  map[string]string{"ICEPAY_MERCHANT_ID": "abc", "ICEPAY_SECRET_CODE": "s3cr3t"},
		},
		{
			name: "bad_language_override",
			env:  map[string]string{"ICEPAY_MERCHANT_ID": "12345", "ICEPAY_SECRET_CODE": "s3cr3t", "ICEPAY_LANGUAGE": "ENG"},
		},
		{
			name: "bad_locale",
			env:  map[string]string{"ICEPAY_MERCHANT_ID": "12345", "ICEPAY_SECRET_CODE": "s3cr3t", "APP_LOCALE": "not a locale"},
		},
		{
			name: "bad_currency",
			env:  map[string]string{"ICEPAY_MERCHANT_ID": "12345", "ICEPAY_SECRET_CODE": "s3cr3t", "APP_CURRENCY": "ZZZ"},
		},
		{
			name: "bad_logging_level",
			env:  map[string]string{"ICEPAY_MERCHANT_ID": "12345", "ICEPAY_SECRET_CODE": "s3cr3t", "LOGGING_LEVEL": "verbose"},
		},
		{
			name: "bad_timeout",
			env:  map[string]string{"ICEPAY_MERCHANT_ID": "12345", "ICEPAY_SECRET_CODE": "s3cr3t", "ICEPAY_TIMEOUT": "soon"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}
