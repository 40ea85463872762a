package provider

import (
	"fmt"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

// ResolveLocale fills the unset fields of explicit from the ambient application locale
// (a BCP 47 tag such as "en-GB") and currency code. Fields that are already set are kept.
// A locale without a region takes the most likely region for its language.
func ResolveLocale(explicit Locale, ambientLocale, ambientCurrency string) (Locale, error) {
	resolved := Locale{
		Language: strings.ToUpper(strings.TrimSpace(explicit.Language)),
		Country:  strings.ToUpper(strings.TrimSpace(explicit.Country)),
		Currency: strings.ToUpper(strings.TrimSpace(explicit.Currency)),
	}
	if resolved.Complete() {
		return resolved, nil
	}

	if resolved.Language == "" || resolved.Country == "" {
		lang, country, err := splitLocale(ambientLocale)
		if err != nil {
			return Locale{}, err
		}
		if resolved.Language == "" {
			resolved.Language = lang
		}
		if resolved.Country == "" {
			resolved.Country = country
		}
	}

	if resolved.Currency == "" {
		unit, err := currency.ParseISO(strings.TrimSpace(ambientCurrency))
		if err != nil {
			return Locale{}, fmt.Errorf("%w: currency %q: %v", ErrInvalidLocale, ambientCurrency, err)
		}
		resolved.Currency = strings.ToUpper(unit.String())
	}

	return resolved, nil
}

func splitLocale(locale string) (string, string, error) {
	locale = strings.ReplaceAll(strings.TrimSpace(locale), "_", "-")
	if locale == "" {
		return "", "", fmt.Errorf("%w: locale is empty", ErrInvalidLocale)
	}

	tag, err := language.Parse(locale)
	if err != nil {
		return "", "", fmt.Errorf("%w: locale %q: %v", ErrInvalidLocale, locale, err)
	}

	base, conf := tag.Base()
	if conf == language.No {
		return "", "", fmt.Errorf("%w: locale %q has no language", ErrInvalidLocale, locale)
	}
	region, conf := tag.Region()
	if conf == language.No {
		return "", "", fmt.Errorf("%w: locale %q has no region", ErrInvalidLocale, locale)
	}

	return strings.ToUpper(base.String()), strings.ToUpper(region.String()), nil
}
