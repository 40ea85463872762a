package provider

type paymentMethod struct {
	name string
	code string
}

func (m paymentMethod) Name() string { return m.name }
func (m paymentMethod) Code() string { return m.code }

// NewMethodFactory returns a factory for a method handle with a fixed gateway code
func NewMethodFactory(name, code string) MethodFactory {
	return func() Method {
		return paymentMethod{name: normalizeMethodName(name), code: code}
	}
}

// builtin gateway payment methods, keyed by identifier
var builtinMethods = map[string]string{
	"creditcard":  "CREDITCARD",
	"ddebit":      "DDEBIT",
	"directebank": "DIRECTEBANK",
	"giropay":     "GIROPAY",
	"ideal":       "IDEAL",
	"mistercash":  "MISTERCASH",
	"paypal":      "PAYPAL",
	"paysafecard": "PAYSAFECARD",
	"phone":       "PHONE",
	"sms":         "SMS",
	"wire":        "WIRE",
}

func init() {
	for name, code := range builtinMethods {
		RegisterMethod(name, NewMethodFactory(name, code))
	}
}
