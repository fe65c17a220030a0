package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counterValue reads a labelled sample back from the gateway registry.
func counterValue(t *testing.T, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := Registry.Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue metrics
				}
			}
			if m.GetCounter() != nil {
				return m.GetCounter().GetValue()
			}
			return m.GetGauge().GetValue()
		}
	}
	return 0
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	e := gin.New()
	e.Use(GinMiddleware())
	e.GET("/orders/:order_id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	routed := map[string]string{"handler": "/orders/:order_id", "method": "GET", "status_code": "404"}
	before := counterValue(t, "mpgw_http_requests_total", routed)
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/orders/abc", nil))
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/orders/def", nil))
	assert.Equal(t, before+2, counterValue(t, "mpgw_http_requests_total", routed))

	stray := map[string]string{"handler": unmatched, "method": "GET", "status_code": "404"}
	strayBefore := counterValue(t, "mpgw_http_requests_total", stray)
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/wp-admin", nil))
	assert.Equal(t, strayBefore+1, counterValue(t, "mpgw_http_requests_total", stray))

	assert.Zero(t, counterValue(t, "mpgw_http_requests_in_flight", map[string]string{"handler": "/orders/:order_id"}))
}
