package metrics

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestInstrumentHTTPUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(InstrumentHTTP)
	r.Get("/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/orders/{id}", "418"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/orders/abc", nil))
	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/orders/{id}", "418"))

	assert.Equal(t, before+1, after)
}

func TestHandlerExposesDomainCounters(t *testing.T) {
	OrderCreated()
	StockDeducted(3)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "erp_orders_created_total"))
	assert.True(t, strings.Contains(body, "erp_inventory_units_deducted_total"))
}
