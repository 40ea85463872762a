package validate

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

type localeSettings struct {
	Locale   string `validate:"required,bcp47"`
	Currency string `validate:"omitempty,currency"`
}

func TestCustomValidate(t *testing.T) {
	v := validator.New()
	CustomValidate(v)

	tests := []struct {
		name     string
		settings localeSettings
		valid    bool
	}{
		{"tag with region", localeSettings{Locale: "en-GB", Currency: "EUR"}, true},
		{"underscore separator", localeSettings{Locale: "nl_NL", Currency: "eur"}, true},
		{"language only gets likely region", localeSettings{Locale: "nl"}, true},
		{"not a tag", localeSettings{Locale: "not a locale"}, false},
		{"empty locale", localeSettings{Locale: ""}, false},
		{"unknown currency", localeSettings{Locale: "en-GB", Currency: "ZZZ"}, false},
		{"currency name", localeSettings{Locale: "en-GB", Currency: "pounds"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.settings)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
