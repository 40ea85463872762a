package icepay

import (
	"context"

	"github.com/subdee/icepay/provider"
)

//go:generate mockgen -source gateway.go -destination mock_gateway.go -package icepay

// Gateway is the Icepay side of every operation. Checksums, the postback IP allow-list
// and the wire formats are owned by the implementation.
type Gateway interface {
	// RetrievePaymentMethods lists the payment methods enabled for the merchant
	RetrievePaymentMethods(ctx context.Context, creds provider.Credentials) ([]provider.PaymentMethod, error)

	// ValidatePayment submits a payment in basic mode and returns the checkout URL
	ValidatePayment(ctx context.Context, creds provider.Credentials, payment provider.PaymentObject) (string, error)

	// CheckIP verifies that a postback was sent from an Icepay address
	CheckIP(ip string) error

	// ValidatePostback verifies the postback checksum against the merchant credentials
	ValidatePostback(creds provider.Credentials, postback provider.Postback) error
}
