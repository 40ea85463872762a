// Package provider holds the gateway independent parts of the payment service.
//
// # Core Concepts
//
//   - PaymentRequest: the order data a caller supplies for a new payment
//   - PaymentObject: the payment as it is submitted to the gateway, amount in minor units
//   - Postback: the payment confirmation the gateway sends back
//   - MethodRegistry: maps case-insensitive identifiers such as "ideal" to method handles
//   - Locale: language, country and currency sent with every payment
//
// # Payment Methods
//
// DefaultMethods is populated at init with the Icepay methods (creditcard,
// ddebit, directebank, giropay, ideal, mistercash, paypal, paysafecard,
// phone, sms and wire). Additional methods can be registered:
//
//	provider.RegisterMethod("afterpay", provider.NewMethodFactory("afterpay", "AFTERPAY"))
//
//	method, err := provider.CreateMethod("iDEAL")
//	if errors.Is(err, provider.ErrUnknownPaymentMethod) {
//	    // reject the request
//	}
//	fmt.Println(method.Code()) // IDEAL
//
// # Locale Resolution
//
// ResolveLocale fills unset fields from the ambient BCP 47 locale and
// currency code:
//
//	locale, err := provider.ResolveLocale(provider.Locale{Language: "EN"}, "nl-NL", "eur")
//	// locale == Locale{Language: "EN", Country: "NL", Currency: "EUR"}
//
// # Amounts
//
// Amounts are decimals in major units. AmountInCents converts them to the
// minor units gateways expect, rounding half away from zero, and reject
// values that do not fit in an int64:
//
//	cents, err := provider.AmountInCents(decimal.RequireFromString("12.345")) // 1235, nil
//
// # Errors
//
// Failures are reported through sentinel errors so callers can use
// errors.Is: ErrUnknownPaymentMethod, ErrInvalidRequest, ErrInvalidLocale,
// ErrGateway, ErrIPNotAllowed, ErrInvalidSignature and ErrNotSuccessful.
//
// # HTTP Client
//
// ProviderHTTPClient wraps net/http with base URLs, default headers and
// status handling shared by gateway implementations.
package provider
