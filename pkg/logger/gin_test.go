package logger

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(l *Logger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	e := gin.New()
	e.Use(CorrelationMiddleware(), l.GinBodyLogger())
	e.POST("/redirect", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"preference_id": "pref-1", "public_key": "APP_USR-1"})
	})
	e.GET("/health/live", func(c *gin.Context) { c.Status(http.StatusOK) })
	return e
}

func TestGinBodyLogger_RedactsBuyerDetails(t *testing.T) {
	var buf bytes.Buffer
	e := newTestEngine(NewWithWriter("info", &buf))

	body := `{"cart_id":"c-1","billing_address":{"email":"ana@example.com"},"items":[{"name":"Tee","email":"x@y.z"}]}`
	req := httptest.NewRequest(http.MethodPost, "/redirect?x=1", strings.NewReader(body))
	req.Header.Set("X-Request-Id", "mp-req-7")
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)

	assert.Equal(t, "mp-req-7", w.Header().Get("X-Correlation-ID"))
	assert.JSONEq(t, `{"preference_id":"pref-1","public_key":"APP_USR-1"}`, w.Body.String())

	require.NotContains(t, buf.String(), "ana@example.com")
	require.NotContains(t, buf.String(), "x@y.z")

	line := decodeLine(t, &buf)
	assert.Equal(t, "HTTP Request", line["message"])
	assert.Equal(t, "mp-req-7", line["correlation_id"])
	assert.Equal(t, "x=1", line["query"])
	assert.EqualValues(t, 200, line["status"])

	reqBody := line["request_body"].(map[string]any)
	assert.Equal(t, "c-1", reqBody["cart_id"])
	assert.Equal(t, redacted, reqBody["billing_address"])
	item := reqBody["items"].([]any)[0].(map[string]any)
	assert.Equal(t, "Tee", item["name"])
	assert.Equal(t, redacted, item["email"])
}

func TestGinBodyLogger_NonJSONBody(t *testing.T) {
	var buf bytes.Buffer
	e := newTestEngine(NewWithWriter("info", &buf))

	req := httptest.NewRequest(http.MethodPost, "/redirect", strings.NewReader("topic=payment&id=1"))
	e.ServeHTTP(httptest.NewRecorder(), req)

	line := decodeLine(t, &buf)
	assert.Equal(t, "topic=payment&id=1", line["request_body"])
}

func TestGinBodyLogger_SkipsProbes(t *testing.T) {
	var buf bytes.Buffer
	e := newTestEngine(NewWithWriter("info", &buf))

	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Correlation-ID"))
	assert.Zero(t, buf.Len())
}
