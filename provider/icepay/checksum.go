package icepay

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/subdee/icepay/provider"
)

func sha1Hex(parts ...string) string {
	sum := sha1.Sum([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// basicModeChecksum signs a basic mode payment request
func basicModeChecksum(creds provider.Credentials, payment provider.PaymentObject, urlCompleted, urlError string) string {
	return sha1Hex(
		creds.MerchantID,
		creds.SecretCode,
		strconv.FormatInt(payment.Amount, 10),
		payment.OrderID,
		payment.Reference,
		payment.Currency,
		payment.Country,
		urlCompleted,
		urlError,
	)
}

// postbackChecksum computes the checksum Icepay sends along with a postback
func postbackChecksum(creds provider.Credentials, pb provider.Postback) string {
	return sha1Hex(
		creds.SecretCode,
		pb.Merchant,
		string(pb.Status),
		pb.StatusCode,
		pb.OrderID,
		pb.PaymentID,
		pb.Reference,
		pb.TransactionID,
		pb.Amount,
		pb.Currency,
		pb.Duration,
		pb.ConsumerIPAddress,
	)
}

// webserviceChecksum signs a webservice call
func webserviceChecksum(creds provider.Credentials, endpoint, method, body string) string {
	sum := sha256.Sum256([]byte(endpoint + method + creds.MerchantID + creds.SecretCode + body))
	return hex.EncodeToString(sum[:])
}

func checksumEqual(expected, actual string) bool {
	return subtle.ConstantTimeCompare([]byte(strings.ToLower(expected)), []byte(strings.ToLower(actual))) == 1
}
