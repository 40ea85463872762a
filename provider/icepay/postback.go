package icepay

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/subdee/icepay/provider"
)

// ParsePostback reads the postback fields Icepay posts to the merchant
func ParsePostback(r *http.Request) (provider.Postback, error) {
	if err := r.ParseForm(); err != nil {
		return provider.Postback{}, fmt.Errorf("icepay: failed to parse postback: %w", err)
	}

	field := func(name string) string {
		return strings.TrimSpace(r.PostForm.Get(name))
	}

	pb := provider.Postback{
		Status:                provider.StatusCode(field("Status")),
		StatusCode:            field("StatusCode"),
		Merchant:              field("Merchant"),
		OrderID:               field("OrderID"),
		PaymentID:             field("PaymentID"),
		Reference:             field("Reference"),
		TransactionID:         field("TransactionID"),
		ConsumerName:          field("Consumername"),
		ConsumerAccountNumber: field("Consumeraccountnumber"),
		ConsumerAddress:       field("Consumeraddress"),
		ConsumerHouseNumber:   field("Consumerhousenumber"),
		ConsumerCity:          field("Consumercity"),
		ConsumerCountry:       field("Consumercountry"),
		ConsumerEmail:         field("Consumeremail"),
		ConsumerPhoneNumber:   field("Consumerphonenumber"),
		ConsumerIPAddress:     field("ConsumerIPAddress"),
		Amount:                field("Amount"),
		Currency:              field("Currency"),
		Duration:              field("Duration"),
		PaymentMethod:         field("PaymentMethod"),
		Checksum:              field("Checksum"),
	}

	if pb.Status == "" || pb.OrderID == "" || pb.Checksum == "" {
		return provider.Postback{}, fmt.Errorf("icepay: postback is missing status, order ID or checksum")
	}

	return pb, nil
}

// RemoteIP returns the address of the peer that sent the request
func RemoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
