package icepay

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/subdee/icepay/infra/config"
	"github.com/subdee/icepay/infra/logger"
	"github.com/subdee/icepay/infra/metrics"
	"github.com/subdee/icepay/provider"
)

const providerName = "icepay"

// ErrorLogger receives one entry per failed operation
type ErrorLogger interface {
	Error(message string, err error, ctx ...logger.LogContext)
}

// Config holds what the component needs from the application configuration
type Config struct {
	Credentials provider.Credentials

	// Locale overrides; empty fields are derived from AmbientLocale and AmbientCurrency
	Locale provider.Locale

	AmbientLocale   string
	AmbientCurrency string
}

// Option customizes the component
type Option func(*Icepay)

// WithLanguage overrides the payment language
func WithLanguage(language string) Option {
	return func(i *Icepay) { i.overrides.Language = language }
}

// WithCountry overrides the payment country
func WithCountry(country string) Option {
	return func(i *Icepay) { i.overrides.Country = country }
}

// WithCurrency overrides the payment currency
func WithCurrency(currency string) Option {
	return func(i *Icepay) { i.overrides.Currency = currency }
}

// WithLogger replaces the global logger
func WithLogger(l ErrorLogger) Option {
	return func(i *Icepay) { i.logger = l }
}

// WithMethods replaces the default payment method registry
func WithMethods(r *provider.MethodRegistry) Option {
	return func(i *Icepay) { i.methods = r }
}

// WithPaymentMethodsCache keeps the merchant's payment methods for ttl instead of asking
// Icepay on every call
func WithPaymentMethodsCache(ttl time.Duration) Option {
	return func(i *Icepay) {
		if ttl > 0 {
			i.methodsCache = provider.NewCache[[]provider.PaymentMethod](1, ttl)
		}
	}
}

// WithClientIP replaces the function used to find the postback sender's address.
// Only use it behind a proxy that sets the forwarded headers itself.
func WithClientIP(fn func(*http.Request) string) Option {
	return func(i *Icepay) { i.clientIP = fn }
}

// Icepay exposes the Icepay gateway to the application. It is safe for concurrent use.
type Icepay struct {
	creds     provider.Credentials
	overrides provider.Locale
	ambient   struct{ locale, currency string }

	gateway  Gateway
	methods  *provider.MethodRegistry
	logger   ErrorLogger
	clientIP func(*http.Request) string

	methodsCache *provider.Cache[[]provider.PaymentMethod]

	localeOnce sync.Once
	locale     provider.Locale
	localeErr  error
}

// New creates the component
func New(cfg Config, gateway Gateway, opts ...Option) (*Icepay, error) {
	if gateway == nil {
		return nil, errors.New("icepay: gateway is required")
	}
	if err := config.App().Validator.Struct(cfg.Credentials); err != nil {
		return nil, fmt.Errorf("icepay: invalid credentials: %w", err)
	}

	i := &Icepay{
		creds:     cfg.Credentials,
		overrides: cfg.Locale,
		gateway:   gateway,
		methods:   provider.DefaultMethods,
		logger:    logger.GetGlobalLogger(),
		clientIP:  RemoteIP,
	}
	i.ambient.locale = cfg.AmbientLocale
	i.ambient.currency = cfg.AmbientCurrency

	for _, opt := range opts {
		opt(i)
	}

	return i, nil
}

// Locale returns the language, country and currency sent with payments. Unset values are
// resolved from the ambient settings on first use and never change afterwards.
func (i *Icepay) Locale() (provider.Locale, error) {
	i.localeOnce.Do(func() {
		i.locale, i.localeErr = provider.ResolveLocale(i.overrides, i.ambient.locale, i.ambient.currency)
	})
	return i.locale, i.localeErr
}

// SupportedMethods lists the payment method identifiers CreatePayment accepts
func (i *Icepay) SupportedMethods() []string {
	return i.methods.MethodNames()
}

// PaymentMethods lists the payment methods enabled for the merchant. On failure the
// returned slice is empty and the error wraps provider.ErrGateway.
func (i *Icepay) PaymentMethods(ctx context.Context) ([]provider.PaymentMethod, error) {
	start := time.Now()

	if i.methodsCache != nil {
		if methods, ok := i.methodsCache.Get(i.creds.MerchantID); ok {
			metrics.ObserveGateway("payment_methods", metrics.OutcomeCached, start)
			return provider.ClonePaymentMethods(methods), nil
		}
	}

	methods, err := i.gateway.RetrievePaymentMethods(ctx, i.creds)
	if err != nil {
		metrics.ObserveGateway("payment_methods", metrics.OutcomeError, start)
		i.logger.Error("Failed to retrieve payment methods", err, i.logContext(""))
		return []provider.PaymentMethod{}, fmt.Errorf("%w: %w", provider.ErrGateway, err)
	}

	metrics.ObserveGateway("payment_methods", metrics.OutcomeSuccess, start)
	if methods == nil {
		methods = []provider.PaymentMethod{}
	}
	if i.methodsCache != nil {
		i.methodsCache.Set(i.creds.MerchantID, provider.ClonePaymentMethods(methods))
	}
	return methods, nil
}

// MethodsCacheSnapshot reports the payment methods cache counters. It is zero when
// caching is disabled.
func (i *Icepay) MethodsCacheSnapshot() metrics.CacheSnapshot {
	if i.methodsCache == nil {
		return metrics.CacheSnapshot{}
	}
	stats := i.methodsCache.Stats()
	return metrics.CacheSnapshot{
		Size:      stats.Size,
		Hits:      stats.Hits,
		Misses:    stats.Misses,
		Evictions: stats.Evictions,
		Expiries:  stats.TTLExpiries,
	}
}

// CreatePayment validates the payment with Icepay and returns the checkout URL the customer
// should be redirected to. req.Amount is in major units (12.50 is twelve euros fifty) and
// is sent to Icepay in cents.
func (i *Icepay) CreatePayment(ctx context.Context, req provider.PaymentRequest) (string, error) {
	method, err := i.methods.CreateMethod(req.Method)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(req.OrderID) == "" {
		return "", fmt.Errorf("%w: order ID is required", provider.ErrInvalidRequest)
	}
	if !req.Amount.IsPositive() {
		return "", fmt.Errorf("%w: amount must be greater than 0", provider.ErrInvalidRequest)
	}
	amount, err := provider.AmountInCents(req.Amount)
	if err != nil {
		return "", err
	}
	if amount <= 0 {
		return "", fmt.Errorf("%w: amount must be at least one cent", provider.ErrInvalidRequest)
	}

	locale, err := i.Locale()
	if err != nil {
		i.logger.Error("Failed to resolve payment locale", err, i.logContext(req.OrderID))
		return "", err
	}

	payment := provider.PaymentObject{
		PaymentMethod: method.Code(),
		Amount:        amount,
		OrderID:       req.OrderID,
		Description:   req.Description,
		Reference:     req.Reference,
		Language:      locale.Language,
		Country:       locale.Country,
		Currency:      locale.Currency,
		Issuer:        req.Issuer,
	}

	start := time.Now()
	redirectURL, err := i.gateway.ValidatePayment(ctx, i.creds, payment)
	if err != nil {
		metrics.ObserveGateway("create_payment", metrics.OutcomeError, start)
		i.logger.Error("Failed to create payment", err, i.logContext(req.OrderID, "method", method.Name()))
		return "", fmt.Errorf("%w: %w", provider.ErrGateway, err)
	}

	metrics.ObserveGateway("create_payment", metrics.OutcomeSuccess, start)
	return redirectURL, nil
}

// Postback validates an inbound postback. It checks the sender address, the checksum and
// the status, in that order. When only the status check fails the parsed postback is
// returned together with an error wrapping provider.ErrNotSuccessful.
func (i *Icepay) Postback(ctx context.Context, r *http.Request) (*provider.Postback, error) {
	start := time.Now()

	ip := i.clientIP(r)
	if err := i.gateway.CheckIP(ip); err != nil {
		metrics.ObserveGateway("postback", metrics.OutcomeRejected, start)
		i.logger.Error("Postback from disallowed address", err, i.logContext("", "ip", ip))
		return nil, fmt.Errorf("%w: %w", provider.ErrIPNotAllowed, err)
	}

	postback, err := ParsePostback(r)
	if err != nil {
		metrics.ObserveGateway("postback", metrics.OutcomeRejected, start)
		i.logger.Error("Malformed postback", err, i.logContext("", "ip", ip))
		return nil, fmt.Errorf("%w: %w", provider.ErrInvalidRequest, err)
	}

	if err := i.gateway.ValidatePostback(i.creds, postback); err != nil {
		metrics.ObserveGateway("postback", metrics.OutcomeRejected, start)
		i.logger.Error("Postback validation failed", err, i.logContext(postback.OrderID, "ip", ip))
		return nil, fmt.Errorf("%w: %w", provider.ErrInvalidSignature, err)
	}

	if !postback.Successful() {
		metrics.ObserveGateway("postback", metrics.OutcomeRejected, start)
		err := fmt.Errorf("%w: status %s (%s)", provider.ErrNotSuccessful, postback.Status, postback.StatusCode)
		i.logger.Error("Postback reports unsuccessful payment", err, i.logContext(postback.OrderID, "status", string(postback.Status)))
		return &postback, err
	}

	metrics.ObserveGateway("postback", metrics.OutcomeSuccess, start)
	return &postback, nil
}

func (i *Icepay) logContext(orderID string, kv ...string) logger.LogContext {
	ctx := logger.LogContext{
		Provider: providerName,
		OrderID:  orderID,
		Fields:   map[string]any{"merchant": i.creds.MerchantID},
	}
	for n := 0; n+1 < len(kv); n += 2 {
		ctx.Fields[kv[n]] = kv[n+1]
	}
	return ctx
}
