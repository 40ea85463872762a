package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/subdee/icepay/infra/logger"
	"github.com/subdee/icepay/infra/messaging"
	"github.com/subdee/icepay/infra/middle"
	"github.com/subdee/icepay/infra/opensearch"
	"github.com/subdee/icepay/infra/response"
	"github.com/subdee/icepay/infra/storage"
	"github.com/subdee/icepay/provider"
)

const requestTimeout = 30 * time.Second

// PaymentService is the Icepay component as seen by the HTTP layer
type PaymentService interface {
	PaymentMethods(ctx context.Context) ([]provider.PaymentMethod, error)
	CreatePayment(ctx context.Context, req provider.PaymentRequest) (string, error)
	Postback(ctx context.Context, r *http.Request) (*provider.Postback, error)
	SupportedMethods() []string
}

// TransactionLog persists payment attempts and postbacks
type TransactionLog interface {
	RecordPayment(ctx context.Context, rec storage.PaymentRecord) error
	RecordPostback(ctx context.Context, rec storage.PostbackRecord) error
	OrderHistory(ctx context.Context, orderID string) (*storage.OrderHistory, error)
}

// PostbackAudit ships postback records to the log store
type PostbackAudit interface {
	LogPostback(ctx context.Context, entry opensearch.PostbackLog) error
}

// PaymentHandler handles payment related HTTP requests
type PaymentHandler struct {
	service   PaymentService
	validate  *validator.Validate
	txLog     TransactionLog
	audit     PostbackAudit
	publisher messaging.Publisher
}

// Option configures optional sinks of the payment handler
type Option func(*PaymentHandler)

func WithTransactionLog(l TransactionLog) Option {
	return func(h *PaymentHandler) { h.txLog = l }
}

func WithPostbackAudit(a PostbackAudit) Option {
	return func(h *PaymentHandler) { h.audit = a }
}

// WithPublisher publishes confirmed postbacks
func WithPublisher(p messaging.Publisher) Option {
	return func(h *PaymentHandler) { h.publisher = p }
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(service PaymentService, validate *validator.Validate, opts ...Option) *PaymentHandler {
	h := &PaymentHandler{
		service:  service,
		validate: validate,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// statusFor maps component errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, provider.ErrUnknownPaymentMethod), errors.Is(err, provider.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, provider.ErrIPNotAllowed):
		return http.StatusForbidden
	case errors.Is(err, provider.ErrInvalidSignature):
		return http.StatusUnauthorized
	case errors.Is(err, provider.ErrGateway):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// ListPaymentMethods returns the payment methods enabled for the merchant
func (h *PaymentHandler) ListPaymentMethods(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	methods, err := h.service.PaymentMethods(ctx)
	if err != nil {
		response.Error(w, statusFor(err), "Failed to retrieve payment methods", err)
		return
	}

	response.Success(w, http.StatusOK, "Payment methods retrieved", methods)
}

// SupportedMethods returns the method identifiers accepted when creating a payment
func (h *PaymentHandler) SupportedMethods(w http.ResponseWriter, r *http.Request) {
	response.Success(w, http.StatusOK, "Supported payment methods", h.service.SupportedMethods())
}

type createPaymentResponse struct {
	RedirectURL string `json:"redirectUrl"`
}

// CreatePayment starts a payment and returns the checkout URL
func (h *PaymentHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var req provider.PaymentRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.Error(w, http.StatusBadRequest, "Validation error", err)
		return
	}

	redirectURL, err := h.service.CreatePayment(ctx, req)

	if h.txLog != nil && !errors.Is(err, provider.ErrUnknownPaymentMethod) {
		// zero when the amount is out of range
		cents, _ := provider.AmountInCents(req.Amount)
		rec := storage.PaymentRecord{
			RequestID:   middle.RequestIDFromContext(r.Context()),
			OrderID:     req.OrderID,
			Method:      strings.ToLower(req.Method),
			Amount:      cents,
			RedirectURL: redirectURL,
		}
		if err != nil {
			rec.Error = err.Error()
		}
		if logErr := h.txLog.RecordPayment(ctx, rec); logErr != nil {
			logger.Warn("Failed to record payment", logger.LogContext{
				RequestID: rec.RequestID,
				OrderID:   rec.OrderID,
				Fields:    map[string]any{"error": logErr.Error()},
			})
		}
	}

	if err != nil {
		response.Error(w, statusFor(err), "Payment failed", err)
		return
	}

	response.Success(w, http.StatusCreated, "Payment created", createPaymentResponse{RedirectURL: redirectURL})
}

// OrderHistory returns the recorded payment attempts and postbacks of an order
func (h *PaymentHandler) OrderHistory(w http.ResponseWriter, r *http.Request) {
	if h.txLog == nil {
		response.Error(w, http.StatusNotImplemented, "Transaction log is not configured", nil)
		return
	}

	orderID := chi.URLParam(r, "orderID")
	if orderID == "" {
		response.Error(w, http.StatusBadRequest, "Missing order ID", nil)
		return
	}

	history, err := h.txLog.OrderHistory(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			response.Error(w, http.StatusNotFound, "Order not found", nil)
			return
		}
		response.Error(w, http.StatusInternalServerError, "Failed to load order history", err)
		return
	}

	response.Success(w, http.StatusOK, "Order history retrieved", history)
}

// Postback receives the payment status callback from Icepay. Valid postbacks are
// acknowledged with 200 even when the payment itself did not succeed.
func (h *PaymentHandler) Postback(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	requestID := middle.RequestIDFromContext(r.Context())
	postback, err := h.service.Postback(ctx, r)

	h.recordPostback(ctx, requestID, r, postback, err)

	switch {
	case err == nil:
		h.publishConfirmed(ctx, requestID, postback)
		response.Success(w, http.StatusOK, "Postback accepted", postback)
	case errors.Is(err, provider.ErrNotSuccessful):
		response.Success(w, http.StatusOK, "Postback received", postback)
	default:
		response.Error(w, statusFor(err), "Postback rejected", err)
	}
}

func (h *PaymentHandler) recordPostback(ctx context.Context, requestID string, r *http.Request, pb *provider.Postback, err error) {
	rec := storage.PostbackRecord{
		ClientIP: remoteHost(r),
		Accepted: err == nil,
	}
	if pb != nil {
		rec.OrderID = pb.OrderID
		rec.PaymentID = pb.PaymentID
		rec.TransactionID = pb.TransactionID
		rec.Status = string(pb.Status)
		rec.StatusCode = pb.StatusCode
		rec.Amount = pb.Amount
		rec.Currency = pb.Currency
	}
	if err != nil {
		rec.Error = err.Error()
	}

	logCtx := logger.LogContext{RequestID: requestID, OrderID: rec.OrderID, Fields: map[string]any{}}

	// Rejected postbacks carry no trusted order ID, so only the audit log keeps them
	if h.txLog != nil && rec.OrderID != "" {
		if logErr := h.txLog.RecordPostback(ctx, rec); logErr != nil {
			logCtx.Fields["error"] = logErr.Error()
			logger.Warn("Failed to record postback", logCtx)
		}
	}

	if h.audit != nil {
		entry := opensearch.PostbackLog{
			RequestID:     requestID,
			ClientIP:      rec.ClientIP,
			OrderID:       rec.OrderID,
			PaymentID:     rec.PaymentID,
			TransactionID: rec.TransactionID,
			Status:        rec.Status,
			StatusCode:    rec.StatusCode,
			Amount:        rec.Amount,
			Currency:      rec.Currency,
			Accepted:      rec.Accepted,
			Error:         rec.Error,
		}
		if pb != nil {
			entry.PaymentMethod = pb.PaymentMethod
		}
		if logErr := h.audit.LogPostback(ctx, entry); logErr != nil {
			logCtx.Fields["error"] = logErr.Error()
			logger.Warn("Failed to ship postback audit log", logCtx)
		}
	}
}

func (h *PaymentHandler) publishConfirmed(ctx context.Context, requestID string, pb *provider.Postback) {
	if h.publisher == nil {
		return
	}

	env, err := messaging.NewEnvelope(pb.OrderID, messaging.TypePostbackConfirmed, pb)
	if err == nil {
		err = h.publisher.Publish(ctx, env)
	}
	if err != nil {
		logger.Error("Failed to publish confirmed postback", err, logger.LogContext{
			RequestID: requestID,
			OrderID:   pb.OrderID,
		})
	}
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
