package icepay

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subdee/icepay/provider"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) (*HTTPGateway, *httptest.Server) {
	t.Helper()

	server := httptest.NewTLSServer(handler)
	t.Cleanup(server.Close)

	gateway, err := NewHTTPGateway(GatewayConfig{
		BasicURL:      server.URL + "/basic/",
		WebserviceURL: server.URL + "/webservice/api/v1/",
		Timeout:       5 * time.Second,
		URLCompleted:  "https://shop.example.com/completed",
		URLError:      "https://shop.example.com/error",
		Transport:     server.Client().Transport,
	})
	require.NoError(t, err)

	return gateway, server
}

func testPayment() provider.PaymentObject {
	return provider.PaymentObject{
		PaymentMethod: "IDEAL",
		Amount:        1234,
		OrderID:       "ORD-1",
		Description:   "Order 1",
		Reference:     "ref-1",
		Language:      "EN",
		Country:       "NL",
		Currency:      "EUR",
		Issuer:        "ABNAMRO",
	}
}

func TestNewHTTPGateway(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		g, err := NewHTTPGateway(GatewayConfig{})
		require.NoError(t, err)
		assert.Len(t, g.ipRanges, len(DefaultIPRanges))
	})

	t.Run("plain_http_rejected", func(t *testing.T) {
		_, err := NewHTTPGateway(GatewayConfig{BasicURL: "http://pay.icepay.eu/basic/"})
		assert.Error(t, err)
	})

	t.Run("bad_ip_range", func(t *testing.T) {
		_, err := NewHTTPGateway(GatewayConfig{IPRanges: []string{"10.0.0.9-10.0.0.1"}})
		assert.Error(t, err)
	})
}

func TestHTTPGateway_ValidatePayment(t *testing.T) {
	payment := testPayment()

	gateway, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/basic/", r.URL.Path)

		q := r.URL.Query()
		assert.Equal(t, testCreds.MerchantID, q.Get("ic_merchantid"))
		assert.Equal(t, "1234", q.Get("ic_amount"))
		assert.Equal(t, "EUR", q.Get("ic_currency"))
		assert.Equal(t, "EN", q.Get("ic_language"))
		assert.Equal(t, "NL", q.Get("ic_country"))
		assert.Equal(t, "ORD-1", q.Get("ic_orderid"))
		assert.Equal(t, "IDEAL", q.Get("ic_paymentmethod"))
		assert.Equal(t, "ABNAMRO", q.Get("ic_issuer"))
		assert.Equal(t, "2", q.Get("ic_version"))
		assert.Equal(t, basicModeChecksum(testCreds, payment, "https://shop.example.com/completed", "https://shop.example.com/error"), q.Get("chk"))
		assert.Empty(t, q.Get("ic_secretcode"))

		w.Write([]byte("https://pay.icepay.eu/checkout/abc\n"))
	})

	redirect, err := gateway.ValidatePayment(context.Background(), testCreds, payment)

	require.NoError(t, err)
	assert.Equal(t, "https://pay.icepay.eu/checkout/abc", redirect)
}

func TestHTTPGateway_ValidatePayment_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"rejected", http.StatusOK, "ERR: Invalid issuer", "Invalid issuer"},
		{"not_https", http.StatusOK, "http://pay.icepay.eu/checkout/abc", "unexpected basic mode response"},
		{"garbage", http.StatusOK, "<html>maintenance</html>", "unexpected basic mode response"},
		{"server_error", http.StatusInternalServerError, "oops", "basic mode request failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gateway, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			redirect, err := gateway.ValidatePayment(context.Background(), testCreds, testPayment())

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
			assert.Empty(t, redirect)
		})
	}
}

func TestHTTPGateway_ValidatePayment_IncompletePayment(t *testing.T) {
	called := false
	gateway, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	payment := testPayment()
	payment.Currency = ""

	_, err := gateway.ValidatePayment(context.Background(), testCreds, payment)

	assert.Error(t, err)
	assert.False(t, called)
}

func TestHTTPGateway_RetrievePaymentMethods(t *testing.T) {
	var server *httptest.Server
	gateway, server := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/webservice/api/v1/payment/getmypaymentmethods", r.URL.Path)
		assert.Equal(t, testCreds.MerchantID, r.Header.Get("MerchantID"))

		body, _ := io.ReadAll(r.Body)
		var req paymentMethodsRequest
		require.NoError(t, json.Unmarshal(body, &req))
		assert.NotEmpty(t, req.Timestamp)

		endpoint := server.URL + "/webservice/api/v1/payment/getmypaymentmethods"
		assert.Equal(t, webserviceChecksum(testCreds, endpoint, http.MethodPost, string(body)), r.Header.Get("Checksum"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"PaymentMethods": [
				{
					"PaymentMethodCode": "IDEAL",
					"Description": "iDEAL",
					"Issuers": [
						{
							"IssuerKeyword": "ABNAMRO",
							"Description": "ABN AMRO",
							"Countries": [
								{"CountryCode": "NL", "Currency": "EUR", "MinimumAmount": 30, "MaximumAmount": 1000000}
							]
						}
					]
				},
				{"PaymentMethodCode": "PAYPAL", "Description": "PayPal"}
			]
		}`))
	})

	methods, err := gateway.RetrievePaymentMethods(context.Background(), testCreds)

	require.NoError(t, err)
	require.Len(t, methods, 2)
	assert.Equal(t, "IDEAL", methods[0].Code)
	require.Len(t, methods[0].Issuers, 1)
	assert.Equal(t, "ABNAMRO", methods[0].Issuers[0].Keyword)
	assert.Equal(t, provider.Country{Code: "NL", Currency: "EUR", MinimumAmount: 30, MaximumAmount: 1000000}, methods[0].Issuers[0].Countries[0])
	assert.Equal(t, "PAYPAL", methods[1].Code)
	assert.Empty(t, methods[1].Issuers)
}

func TestHTTPGateway_RetrievePaymentMethods_Errors(t *testing.T) {
	t.Run("http_error", func(t *testing.T) {
		gateway, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"Message":"Invalid checksum"}`))
		})

		_, err := gateway.RetrievePaymentMethods(context.Background(), testCreds)
		assert.Error(t, err)
	})

	t.Run("invalid_json", func(t *testing.T) {
		gateway, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json`))
		})

		_, err := gateway.RetrievePaymentMethods(context.Background(), testCreds)
		assert.Error(t, err)
	})

	t.Run("cancelled_context", func(t *testing.T) {
		gateway, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := gateway.RetrievePaymentMethods(ctx, testCreds)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestHTTPGateway_CheckIP(t *testing.T) {
	gateway, err := NewHTTPGateway(GatewayConfig{})
	require.NoError(t, err)

	tests := []struct {
		ip      string
		allowed bool
	}{
		{"194.30.175.0", true},
		{"194.30.175.255", true},
		{"194.126.241.128", true},
		{"194.126.241.191", true},
		{"::ffff:194.30.175.5", true},
		{"194.126.241.192", false},
		{"194.126.241.127", false},
		{"194.30.176.0", false},
		{"10.0.0.1", false},
		{"not-an-ip", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			err := gateway.CheckIP(tt.ip)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestParseIPRange(t *testing.T) {
	tests := []struct {
		raw      string
		from, to string
		wantErr  bool
	}{
		{raw: "194.30.175.0-194.30.175.255", from: "194.30.175.0", to: "194.30.175.255"},
		{raw: " 10.0.0.1 - 10.0.0.9 ", from: "10.0.0.1", to: "10.0.0.9"},
		{raw: "10.0.0.0/30", from: "10.0.0.0", to: "10.0.0.3"},
		{raw: "10.1.2.3/24", from: "10.1.2.0", to: "10.1.2.255"},
		{raw: "2001:db8::/126", from: "2001:db8::", to: "2001:db8::3"},
		{raw: "192.168.1.1", from: "192.168.1.1", to: "192.168.1.1"},
		{raw: "10.0.0.9-10.0.0.1", wantErr: true},
		{raw: "10.0.0.0/33", wantErr: true},
		{raw: "nope", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			r, err := parseIPRange(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, netip.MustParseAddr(tt.from), r.from)
			assert.Equal(t, netip.MustParseAddr(tt.to), r.to)
		})
	}
}

func signedPostback() provider.Postback {
	pb := provider.Postback{
		Status:        provider.StatusSuccess,
		StatusCode:    "Payment completed",
		Merchant:      testCreds.MerchantID,
		OrderID:       "ORD-1",
		PaymentID:     "42",
		TransactionID: "TX-1",
		Amount:        "1234",
		Currency:      "EUR",
		Duration:      "30",
	}
	pb.Checksum = postbackChecksum(testCreds, pb)
	return pb
}

func TestHTTPGateway_ValidatePostback(t *testing.T) {
	gateway, err := NewHTTPGateway(GatewayConfig{})
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, gateway.ValidatePostback(testCreds, signedPostback()))
	})

	t.Run("uppercase_checksum", func(t *testing.T) {
		pb := signedPostback()
		pb.Checksum = strings.ToUpper(pb.Checksum)
		assert.NoError(t, gateway.ValidatePostback(testCreds, pb))
	})

	t.Run("tampered_amount", func(t *testing.T) {
		pb := signedPostback()
		pb.Amount = "1"
		assert.Error(t, gateway.ValidatePostback(testCreds, pb))
	})

	t.Run("other_merchant", func(t *testing.T) {
		pb := signedPostback()
		pb.Merchant = "99999"
		pb.Checksum = postbackChecksum(testCreds, pb)
		assert.Error(t, gateway.ValidatePostback(testCreds, pb))
	})

	t.Run("wrong_secret", func(t *testing.T) {
		other := provider.Credentials{MerchantID: testCreds.MerchantID, SecretCode: "other"}
		assert.Error(t, gateway.ValidatePostback(other, signedPostback()))
	})
}
