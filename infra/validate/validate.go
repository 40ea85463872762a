package validate

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

// CustomValidate registers the service specific validation tags on v:
//
//	bcp47     a language tag with a region, such as "en-GB" or "nl_NL"
//	currency  an ISO 4217 currency code in any case
func CustomValidate(v *validator.Validate) {
	_ = v.RegisterValidation("bcp47", isBCP47)
	_ = v.RegisterValidation("currency", isCurrency)
}

func isBCP47(fl validator.FieldLevel) bool {
	tag, err := language.Parse(strings.ReplaceAll(fl.Field().String(), "_", "-"))
	if err != nil {
		return false
	}
	_, conf := tag.Region()
	return conf != language.No
}

func isCurrency(fl validator.FieldLevel) bool {
	_, err := currency.ParseISO(fl.Field().String())
	return err == nil
}
