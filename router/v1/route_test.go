package v1

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/subdee/icepay/handler"
)

func TestRoutes_EndpointRegistration(t *testing.T) {
	r := chi.NewRouter()
	Routes(r, handler.NewPaymentHandler(nil, validator.New()))

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/payment-methods/"},
		{http.MethodGet, "/payment-methods/supported"},
		{http.MethodPost, "/payments/"},
		{http.MethodGet, "/payments/1234"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rctx := chi.NewRouteContext()
			assert.True(t, r.Match(rctx, tt.method, tt.path))
		})
	}

	assert.False(t, r.Match(chi.NewRouteContext(), http.MethodDelete, "/payments/1234"))
}
