// Package handler provides the HTTP handlers of the Icepay payment service.
//
// The handlers bridge the HTTP layer with the Icepay component in
// provider/icepay. They decode and validate requests, map component errors
// to status codes and write the standard response envelope from
// infra/response.
//
// # Payment Handler
//
//	paymentHandler := handler.NewPaymentHandler(icepayService, validate,
//	    handler.WithTransactionLog(sqliteStorage),
//	    handler.WithPostbackAudit(opensearchLogger),
//	    handler.WithPublisher(kafkaPublisher),
//	)
//
//	r.Get("/v1/payment-methods", paymentHandler.ListPaymentMethods)
//	r.Get("/v1/payment-methods/supported", paymentHandler.SupportedMethods)
//	r.Post("/v1/payments", paymentHandler.CreatePayment)
//	r.Get("/v1/payments/{orderID}", paymentHandler.OrderHistory)
//	r.Post("/postback/icepay", paymentHandler.Postback)
//
// Creating a payment:
//
//	POST /v1/payments
//	Headers:
//	  Authorization: Bearer your-api-key
//	  Content-Type: application/json
//
//	Body:
//	{
//	  "method": "ideal",
//	  "amount": "12.50",
//	  "orderId": "1234",
//	  "description": "Order 1234",
//	  "issuer": "ABNAMRO"
//	}
//
// The response carries the checkout URL the customer is sent to:
//
//	{
//	  "code": 201,
//	  "success": true,
//	  "message": "Payment created",
//	  "data": {"redirectUrl": "https://pay.icepay.eu/checkout/..."}
//	}
//
// # Postbacks
//
// Icepay posts the payment result as a form to /postback/icepay. The
// endpoint is not behind API key authentication; the component checks the
// sender address and the checksum instead. A valid postback is answered with
// 200 even when it reports a failed payment, so Icepay stops retrying.
// Confirmed payments are published to Kafka when a publisher is configured.
//
// # HTTP Status Codes
//
//   - 400 Bad Request: invalid body, unknown payment method or missing order data
//   - 401 Unauthorized: postback checksum mismatch
//   - 403 Forbidden: postback from an address outside the Icepay ranges
//   - 502 Bad Gateway: Icepay rejected or failed the call
//   - 504 Gateway Timeout: Icepay did not answer in time
//
// # Health
//
// HealthHandler serves /health for liveness and /health/ready for
// readiness. Readiness runs every configured HealthChecker (SQLite,
// OpenSearch, Kafka) concurrently.
package handler
