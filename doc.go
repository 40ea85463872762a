// Package icepay is a payment service that puts the Icepay payment gateway
// behind a small, validated API. It starts payments in Icepay basic mode,
// lists the payment methods enabled for the merchant through the Icepay
// webservice and verifies the postbacks Icepay sends when a payment changes
// state.
//
// # Architecture
//
//	┌─────────────────┐    ┌─────────────────┐    ┌─────────────────┐
//	│                 │    │                 │    │                 │
//	│   Your Shop     │◄──►│  Icepay service │◄──►│     Icepay      │
//	│                 │    │                 │    │                 │
//	└─────────────────┘    └─────────────────┘    └─────────────────┘
//
// The service is made of:
//   - provider: payment types, the payment method registry and locale resolution
//   - provider/icepay: the Icepay component and its HTTP gateway
//   - handler and router: the REST API
//   - infra: configuration, logging, metrics, SQLite transaction log,
//     OpenSearch audit log and Kafka publishing
//
// # Quick Start
//
//	gateway, err := icepay.NewHTTPGateway(icepay.GatewayConfig{})
//	if err != nil {
//	    panic(err)
//	}
//
//	service, err := icepay.New(icepay.Config{
//	    Credentials:     provider.Credentials{MerchantID: "10000", SecretCode: "secret"},
//	    AmbientLocale:   "nl-NL",
//	    AmbientCurrency: "EUR",
//	}, gateway)
//	if err != nil {
//	    panic(err)
//	}
//
//	redirectURL, err := service.CreatePayment(ctx, provider.PaymentRequest{
//	    Method:  "ideal",
//	    Amount:  decimal.RequireFromString("12.50"),
//	    OrderID: "1234",
//	})
//
// # HTTP API
//
//	GET  /v1/payment-methods
//	GET  /v1/payment-methods/supported
//	POST /v1/payments
//	GET  /v1/payments/{orderID}
//	POST /postback/icepay
//	GET  /health
//	GET  /health/ready
//	GET  /metrics
//
// Every /v1 route requires "Authorization: Bearer <API_KEY>".
//
// # Configuration
//
// The service reads its configuration from the environment, optionally
// loaded from a .env file:
//
//	ICEPAY_MERCHANT_ID=10000
//	ICEPAY_SECRET_CODE=your-secret-code
//	APP_LOCALE=nl-NL
//	APP_CURRENCY=EUR
//	API_KEY=your-api-key
//
// See infra/config for the full list.
//
// # Examples
//
//   - examples/icepay: using the component directly
//   - examples/logger: the structured system logger
package icepay
