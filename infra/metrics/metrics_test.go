package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveGateway(t *testing.T) {
	before := testutil.ToFloat64(GatewayRequestsTotal.WithLabelValues("list_methods", OutcomeError))

	ObserveGateway("list_methods", OutcomeError, time.Now())

	after := testutil.ToFloat64(GatewayRequestsTotal.WithLabelValues("list_methods", OutcomeError))
	assert.Equal(t, before+1, after)
}

func TestMiddleware(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("/items/{id}", http.MethodGet, "418"))

	req := httptest.NewRequest(http.MethodGet, "/items/42", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusTeapot, rr.Code)
	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("/items/{id}", http.MethodGet, "418"))
	assert.Equal(t, before+1, after)
}

func TestHandler(t *testing.T) {
	ObserveGateway("create_payment", OutcomeSuccess, time.Now())

	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), "icepay_gateway_requests_total"))
}

func TestCacheCollector(t *testing.T) {
	snapshot := CacheSnapshot{Size: 1, Hits: 3, Misses: 2, Evictions: 0, Expiries: 1}
	c := NewCacheCollector("payment_methods", func() CacheSnapshot { return snapshot })

	assert.Equal(t, 5, testutil.CollectAndCount(c))

	expected := `
# HELP icepay_cache_hits_total Cache lookups answered from a live entry
# TYPE icepay_cache_hits_total counter
icepay_cache_hits_total{cache="payment_methods"} 3
# HELP icepay_cache_entries Number of entries held by the cache
# TYPE icepay_cache_entries gauge
icepay_cache_entries{cache="payment_methods"} 1
`
	assert.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected), "icepay_cache_hits_total", "icepay_cache_entries"))

	snapshot.Hits = 4
	assert.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(strings.Replace(expected, "} 3", "} 4", 1)), "icepay_cache_hits_total", "icepay_cache_entries"))
}
