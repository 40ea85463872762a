package icepay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-querystring/query"
	"github.com/subdee/icepay/provider"
)

const (
	// API URLs
	defaultBasicURL      = "https://pay.icepay.eu/basic/"
	defaultWebserviceURL = "https://connect.icepay.com/webservice/api/v1/"

	// API Endpoints
	endpointPaymentMethods = "payment/getmypaymentmethods"

	basicModeVersion = "2"
	defaultTimeout   = 30 * time.Second
)

// DefaultIPRanges are the addresses Icepay sends postbacks from
var DefaultIPRanges = []string{
	"194.30.175.0-194.30.175.255",
	"194.126.241.128-194.126.241.191",
}

// GatewayConfig configures the HTTP gateway
type GatewayConfig struct {
	BasicURL      string
	WebserviceURL string
	IPRanges      []string
	Timeout       time.Duration
	URLCompleted  string
	URLError      string
	Transport     http.RoundTripper
}

// HTTPGateway implements Gateway against the Icepay basic mode and webservice APIs
type HTTPGateway struct {
	basic        *provider.ProviderHTTPClient
	webservice   *provider.ProviderHTTPClient
	ipRanges     []ipRange
	urlCompleted string
	urlError     string
}

type ipRange struct {
	from netip.Addr
	to   netip.Addr
}

func (r ipRange) contains(ip netip.Addr) bool {
	return r.from.Compare(ip) <= 0 && ip.Compare(r.to) <= 0
}

// NewHTTPGateway creates the HTTP gateway. Basic mode is only spoken over HTTPS.
func NewHTTPGateway(cfg GatewayConfig) (*HTTPGateway, error) {
	if cfg.BasicURL == "" {
		cfg.BasicURL = defaultBasicURL
	}
	if cfg.WebserviceURL == "" {
		cfg.WebserviceURL = defaultWebserviceURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if len(cfg.IPRanges) == 0 {
		cfg.IPRanges = DefaultIPRanges
	}

	basicURL, err := url.Parse(cfg.BasicURL)
	if err != nil {
		return nil, fmt.Errorf("icepay: invalid basic mode URL: %w", err)
	}
	if basicURL.Scheme != "https" {
		return nil, errors.New("icepay: basic mode URL must use https")
	}

	ranges := make([]ipRange, 0, len(cfg.IPRanges))
	for _, raw := range cfg.IPRanges {
		r, err := parseIPRange(raw)
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, r)
	}

	basicConfig := provider.CreateHTTPClientConfig(cfg.BasicURL, cfg.Timeout)
	basicConfig.DefaultHeaders["Accept"] = "text/plain"
	basicConfig.Transport = cfg.Transport

	webserviceConfig := provider.CreateHTTPClientConfig(cfg.WebserviceURL, cfg.Timeout)
	webserviceConfig.Transport = cfg.Transport

	return &HTTPGateway{
		basic:        provider.NewProviderHTTPClient(basicConfig),
		webservice:   provider.NewProviderHTTPClient(webserviceConfig),
		ipRanges:     ranges,
		urlCompleted: cfg.URLCompleted,
		urlError:     cfg.URLError,
	}, nil
}

// parseIPRange accepts "a.b.c.d-e.f.g.h", a CIDR prefix or a single address
func parseIPRange(raw string) (ipRange, error) {
	raw = strings.TrimSpace(raw)

	if from, to, ok := strings.Cut(raw, "-"); ok {
		fromAddr, err := netip.ParseAddr(strings.TrimSpace(from))
		if err != nil {
			return ipRange{}, fmt.Errorf("icepay: invalid ip range %q: %w", raw, err)
		}
		toAddr, err := netip.ParseAddr(strings.TrimSpace(to))
		if err != nil {
			return ipRange{}, fmt.Errorf("icepay: invalid ip range %q: %w", raw, err)
		}
		if toAddr.Less(fromAddr) {
			return ipRange{}, fmt.Errorf("icepay: invalid ip range %q: start after end", raw)
		}
		return ipRange{from: fromAddr, to: toAddr}, nil
	}

	if strings.Contains(raw, "/") {
		prefix, err := netip.ParsePrefix(raw)
		if err != nil {
			return ipRange{}, fmt.Errorf("icepay: invalid ip range %q: %w", raw, err)
		}
		prefix = prefix.Masked()
		return ipRange{from: prefix.Addr(), to: lastAddr(prefix)}, nil
	}

	addr, err := netip.ParseAddr(raw)
	if err != nil {
		return ipRange{}, fmt.Errorf("icepay: invalid ip range %q: %w", raw, err)
	}
	return ipRange{from: addr, to: addr}, nil
}

// lastAddr returns the highest address inside prefix
func lastAddr(prefix netip.Prefix) netip.Addr {
	b := prefix.Addr().AsSlice()
	bits := prefix.Bits()
	for i := range b {
		start := i * 8
		switch {
		case start >= bits:
			b[i] = 0xff
		case start+8 > bits:
			b[i] |= 0xff >> (bits - start)
		}
	}
	addr, _ := netip.AddrFromSlice(b)
	return addr
}

type paymentMethodsRequest struct {
	Timestamp string `json:"Timestamp"`
}

type paymentMethodsResponse struct {
	PaymentMethods []struct {
		PaymentMethodCode string `json:"PaymentMethodCode"`
		Description       string `json:"Description"`
		Issuers           []struct {
			IssuerKeyword string `json:"IssuerKeyword"`
			Description   string `json:"Description"`
			Countries     []struct {
				CountryCode   string `json:"CountryCode"`
				Currency      string `json:"Currency"`
				MinimumAmount int64  `json:"MinimumAmount"`
				MaximumAmount int64  `json:"MaximumAmount"`
			} `json:"Countries"`
		} `json:"Issuers"`
	} `json:"PaymentMethods"`
}

// RetrievePaymentMethods lists the payment methods enabled for the merchant
func (g *HTTPGateway) RetrievePaymentMethods(ctx context.Context, creds provider.Credentials) ([]provider.PaymentMethod, error) {
	body, err := json.Marshal(paymentMethodsRequest{Timestamp: time.Now().UTC().Format(time.RFC3339)})
	if err != nil {
		return nil, fmt.Errorf("icepay: failed to marshal request: %w", err)
	}

	endpoint := g.webservice.BuildURL(endpointPaymentMethods, nil)
	resp, err := g.webservice.SendRaw(ctx, &provider.HTTPRequest{
		Method:   http.MethodPost,
		Endpoint: endpoint,
		Headers: map[string]string{
			"Content-Type": "application/json",
			"MerchantID":   creds.MerchantID,
			"Checksum":     webserviceChecksum(creds, endpoint, http.MethodPost, string(body)),
		},
		Body: body,
	})
	if err != nil {
		return nil, fmt.Errorf("icepay: payment methods request failed: %w", err)
	}

	var out paymentMethodsResponse
	if err := g.webservice.ParseJSONResponse(resp, &out); err != nil {
		return nil, fmt.Errorf("icepay: failed to parse payment methods: %w", err)
	}

	methods := make([]provider.PaymentMethod, 0, len(out.PaymentMethods))
	for _, m := range out.PaymentMethods {
		method := provider.PaymentMethod{
			Code:        m.PaymentMethodCode,
			Description: m.Description,
		}
		for _, is := range m.Issuers {
			issuer := provider.Issuer{Keyword: is.IssuerKeyword, Description: is.Description}
			for _, c := range is.Countries {
				issuer.Countries = append(issuer.Countries, provider.Country{
					Code:          c.CountryCode,
					Currency:      c.Currency,
					MinimumAmount: c.MinimumAmount,
					MaximumAmount: c.MaximumAmount,
				})
			}
			method.Issuers = append(method.Issuers, issuer)
		}
		methods = append(methods, method)
	}

	return methods, nil
}

type basicModeParams struct {
	MerchantID    string `url:"ic_merchantid"`
	Amount        int64  `url:"ic_amount"`
	Currency      string `url:"ic_currency"`
	Language      string `url:"ic_language"`
	Country       string `url:"ic_country"`
	OrderID       string `url:"ic_orderid"`
	Reference     string `url:"ic_reference,omitempty"`
	Description   string `url:"ic_description,omitempty"`
	PaymentMethod string `url:"ic_paymentmethod"`
	Issuer        string `url:"ic_issuer,omitempty"`
	URLCompleted  string `url:"ic_urlcompleted,omitempty"`
	URLError      string `url:"ic_urlerror,omitempty"`
	Version       string `url:"ic_version"`
	Checksum      string `url:"chk"`
}

// ValidatePayment submits a payment in basic mode and returns the checkout URL
func (g *HTTPGateway) ValidatePayment(ctx context.Context, creds provider.Credentials, payment provider.PaymentObject) (string, error) {
	if err := validatePaymentObject(payment); err != nil {
		return "", err
	}

	params, err := query.Values(basicModeParams{
		MerchantID:    creds.MerchantID,
		Amount:        payment.Amount,
		Currency:      payment.Currency,
		Language:      payment.Language,
		Country:       payment.Country,
		OrderID:       payment.OrderID,
		Reference:     payment.Reference,
		Description:   payment.Description,
		PaymentMethod: payment.PaymentMethod,
		Issuer:        payment.Issuer,
		URLCompleted:  g.urlCompleted,
		URLError:      g.urlError,
		Version:       basicModeVersion,
		Checksum:      basicModeChecksum(creds, payment, g.urlCompleted, g.urlError),
	})
	if err != nil {
		return "", fmt.Errorf("icepay: failed to encode payment: %w", err)
	}

	resp, err := g.basic.SendRaw(ctx, &provider.HTTPRequest{
		Method:      http.MethodGet,
		QueryParams: params,
	})
	if err != nil {
		return "", fmt.Errorf("icepay: basic mode request failed: %w", err)
	}

	body := strings.TrimSpace(resp.RawBody)
	if strings.HasPrefix(body, "ERR") {
		return "", fmt.Errorf("icepay: payment rejected: %s", strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(body, "ERR"), ":")))
	}

	redirect, err := url.Parse(body)
	if err != nil || redirect.Scheme != "https" || redirect.Host == "" {
		return "", fmt.Errorf("icepay: unexpected basic mode response %q", body)
	}

	return body, nil
}

func validatePaymentObject(payment provider.PaymentObject) error {
	switch {
	case payment.PaymentMethod == "":
		return errors.New("icepay: payment method is required")
	case payment.Amount <= 0:
		return errors.New("icepay: amount must be greater than 0")
	case payment.OrderID == "":
		return errors.New("icepay: order ID is required")
	case payment.Currency == "" || payment.Country == "" || payment.Language == "":
		return errors.New("icepay: language, country and currency are required")
	}
	return nil
}

// CheckIP verifies that a postback was sent from an Icepay address
func (g *HTTPGateway) CheckIP(ip string) error {
	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil {
		return fmt.Errorf("icepay: invalid postback ip %q: %w", ip, err)
	}
	addr = addr.Unmap()

	for _, r := range g.ipRanges {
		if r.contains(addr) {
			return nil
		}
	}

	return fmt.Errorf("icepay: ip %s is not in the allowed ranges", addr)
}

// ValidatePostback verifies the postback checksum against the merchant credentials
func (g *HTTPGateway) ValidatePostback(creds provider.Credentials, postback provider.Postback) error {
	if postback.Merchant != creds.MerchantID {
		return fmt.Errorf("icepay: postback for merchant %q", postback.Merchant)
	}
	if !checksumEqual(postbackChecksum(creds, postback), postback.Checksum) {
		return errors.New("icepay: postback checksum mismatch")
	}
	return nil
}
