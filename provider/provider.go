package provider

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrUnknownPaymentMethod is returned when a payment method identifier has no registered handle
	ErrUnknownPaymentMethod = errors.New("unknown payment method")
	// ErrInvalidRequest is returned when a payment request is missing required data
	ErrInvalidRequest = errors.New("invalid payment request")
	// ErrInvalidLocale is returned when the ambient locale or currency cannot be resolved
	ErrInvalidLocale = errors.New("invalid locale configuration")
	// ErrGateway wraps every failure reported by the payment gateway
	ErrGateway = errors.New("gateway error")
	// ErrIPNotAllowed is returned when a postback originates outside the gateway's IP ranges
	ErrIPNotAllowed = errors.New("postback ip not allowed")
	// ErrInvalidSignature is returned when a postback checksum does not match
	ErrInvalidSignature = errors.New("postback signature invalid")
	// ErrNotSuccessful is returned when a valid postback reports a status other than success
	ErrNotSuccessful = errors.New("postback status not successful")
)

// StatusCode is the payment status reported by the gateway in a postback
type StatusCode string

const (
	StatusSuccess    StatusCode = "OK"
	StatusOpen       StatusCode = "OPEN"
	StatusError      StatusCode = "ERR"
	StatusRefund     StatusCode = "REFUND"
	StatusChargeback StatusCode = "CBACK"
	StatusAuthorized StatusCode = "AUTHORIZED"
)

// Credentials identify the merchant account at the gateway
type Credentials struct {
	MerchantID string `json:"merchantId" validate:"required"`
	SecretCode string `json:"-" validate:"required"`
}

// String masks the secret code so credentials can never leak through formatting
func (c Credentials) String() string {
	return "merchant=" + c.MerchantID + " secret=***"
}

// Locale holds the language, country and currency sent with every payment
type Locale struct {
	Language string `json:"language"`
	Country  string `json:"country"`
	Currency string `json:"currency"`
}

// Complete reports whether all three fields are set
func (l Locale) Complete() bool {
	return l.Language != "" && l.Country != "" && l.Currency != ""
}

// PaymentRequest contains the caller supplied order data for a new payment
type PaymentRequest struct {
	Method      string          `json:"method" validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
	OrderID     string          `json:"orderId" validate:"required,max=10"`
	Description string          `json:"description,omitempty" validate:"max=100"`
	Issuer      string          `json:"issuer,omitempty"`
	Reference   string          `json:"reference,omitempty" validate:"max=50"`
}

// PaymentObject is the payment as it is submitted to the gateway
type PaymentObject struct {
	PaymentMethod string
	Amount        int64 // minor units
	OrderID       string
	Description   string
	Reference     string
	Language      string
	Country       string
	Currency      string
	Issuer        string
}

// AmountInCents converts a major unit amount to the minor units the gateway expects.
// Amounts whose minor unit value does not fit in an int64 wrap ErrInvalidRequest.
func AmountInCents(amount decimal.Decimal) (int64, error) {
	cents := amount.Shift(2).Round(0)
	if !cents.BigInt().IsInt64() {
		return 0, fmt.Errorf("%w: amount %s is out of range", ErrInvalidRequest, amount.String())
	}
	return cents.IntPart(), nil
}

// PaymentMethod is a payment method enabled for the merchant
type PaymentMethod struct {
	Code        string   `json:"code"`
	Description string   `json:"description"`
	Issuers     []Issuer `json:"issuers,omitempty"`
}

// ClonePaymentMethods returns a deep copy of methods, nested issuers and countries included
func ClonePaymentMethods(methods []PaymentMethod) []PaymentMethod {
	if methods == nil {
		return nil
	}
	out := make([]PaymentMethod, len(methods))
	for i, m := range methods {
		out[i] = m
		if m.Issuers == nil {
			continue
		}
		out[i].Issuers = make([]Issuer, len(m.Issuers))
		for j, issuer := range m.Issuers {
			issuer.Countries = slices.Clone(issuer.Countries)
			out[i].Issuers[j] = issuer
		}
	}
	return out
}

// Issuer is a bank or brand offering a payment method
type Issuer struct {
	Keyword     string    `json:"keyword"`
	Description string    `json:"description"`
	Countries   []Country `json:"countries,omitempty"`
}

// Country describes where and for which amounts an issuer is available
type Country struct {
	Code          string `json:"code"`
	Currency      string `json:"currency"`
	MinimumAmount int64  `json:"minimumAmount"`
	MaximumAmount int64  `json:"maximumAmount"`
}

// Postback is the payment confirmation the gateway sends to the merchant
type Postback struct {
	Status                StatusCode `json:"status"`
	StatusCode            string     `json:"statusCode"`
	Merchant              string     `json:"merchant"`
	OrderID               string     `json:"orderId"`
	PaymentID             string     `json:"paymentId"`
	Reference             string     `json:"reference,omitempty"`
	TransactionID         string     `json:"transactionId"`
	ConsumerName          string     `json:"consumerName,omitempty"`
	ConsumerAccountNumber string     `json:"consumerAccountNumber,omitempty"`
	ConsumerAddress       string     `json:"consumerAddress,omitempty"`
	ConsumerHouseNumber   string     `json:"consumerHouseNumber,omitempty"`
	ConsumerCity          string     `json:"consumerCity,omitempty"`
	ConsumerCountry       string     `json:"consumerCountry,omitempty"`
	ConsumerEmail         string     `json:"consumerEmail,omitempty"`
	ConsumerPhoneNumber   string     `json:"consumerPhoneNumber,omitempty"`
	ConsumerIPAddress     string     `json:"consumerIpAddress,omitempty"`
	Amount                string     `json:"amount"`
	Currency              string     `json:"currency"`
	Duration              string     `json:"duration,omitempty"`
	PaymentMethod         string     `json:"paymentMethod,omitempty"`
	Checksum              string     `json:"-"`
}

// Successful reports whether the postback confirms a completed payment
func (p Postback) Successful() bool {
	return strings.EqualFold(string(p.Status), string(StatusSuccess))
}
