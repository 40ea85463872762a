package v1

import (
	"github.com/go-chi/chi/v5"

	"github.com/subdee/icepay/handler"
)

// Routes registers all authenticated API routes
func Routes(r chi.Router, payment *handler.PaymentHandler) {
	r.Route("/payment-methods", func(r chi.Router) {
		r.Get("/", payment.ListPaymentMethods)
		r.Get("/supported", payment.SupportedMethods)
	})

	r.Route("/payments", func(r chi.Router) {
		r.Post("/", payment.CreatePayment)
		r.Get("/{orderID}", payment.OrderHistory)
	})
}
