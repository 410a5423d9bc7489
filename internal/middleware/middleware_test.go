package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(reg *prometheus.Registry) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	pm := NewPrometheusMiddleware("test_api", reg)
	r.Use(NewRequestLogger().Handler(), pm.Handler())
	pm.RegisterMetricsEndpoint(r, reg)
	r.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func TestRequestLogger_SetsTraceHeader(t *testing.T) {
	r := newRouter(prometheus.NewRegistry())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Trace-Id"))
}

func TestPrometheusMiddleware_RecordsRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := newRouter(reg)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.True(t, strings.Contains(body, `test_api_http_request_duration_seconds_count{method="GET",path="/ok",status="200"} 1`))
	assert.True(t, strings.Contains(body, `test_api_http_request_errors_total{method="GET",path="/missing",status="404"} 1`))
}
