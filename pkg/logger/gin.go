package logger

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"time"

	"MercadoPagoGateway/pkg/correlation"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const maxBody = 8 * 1024 // 8KB

const redacted = "[redacted]"

// Buyer details arrive in checkout snapshots and leave in preference payloads.
var piiKeys = map[string]struct{}{
	"email":           {},
	"phone":           {},
	"first_name":      {},
	"last_name":       {},
	"address":         {},
	"postcode":        {},
	"billing_address": {},
	"access_token":    {},
}

// Probes and scrapes would drown the request log.
var quietPrefixes = []string{"/health/", "/metrics"}

type responseBodyWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (r *responseBodyWriter) Write(b []byte) (int, error) {
	if r.body.Len() < maxBody {
		r.body.Write(b)
	}
	return r.ResponseWriter.Write(b)
}

// CorrelationMiddleware stores the request's correlation id in its context and
// echoes it back in the response.
func CorrelationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		corrID := correlation.Resolve(c.GetHeader)
		c.Request = c.Request.WithContext(correlation.WithID(c.Request.Context(), corrID))
		c.Header(correlation.HeaderName, corrID)
		c.Next()
	}
}

func (l *Logger) GinBodyLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, p := range quietPrefixes {
			if strings.HasPrefix(path, p) {
				c.Next()
				return
			}
		}

		var requestBody []byte
		if c.Request.Body != nil {
			requestBody, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewReader(requestBody))
		}

		writer := &responseBodyWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = writer

		start := time.Now()
		c.Next()

		e := l.logger.Info()
		if c.Writer.Status() >= 500 {
			e = l.logger.Warn()
		}
		if corrID := correlation.FromContext(c.Request.Context()); corrID != "" {
			e = e.Str("correlation_id", corrID)
		}

		e = e.
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", c.Request.URL.RawQuery).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start))
		e = addBody(e, "request_body", requestBody)
		e = addBody(e, "response_body", writer.body.Bytes())

		e.Msg("HTTP Request")
	}
}

// addBody logs JSON bodies with buyer details masked and anything else as a
// truncated string.
func addBody(e *zerolog.Event, key string, b []byte) *zerolog.Event {
	bb := bytes.TrimSpace(b)
	if len(bb) == 0 {
		return e.RawJSON(key, []byte("null"))
	}

	var v any
	if err := json.Unmarshal(bb, &v); err != nil {
		if len(bb) > maxBody {
			bb = bb[:maxBody]
		}
		return e.Str(key, string(bb))
	}

	out, err := json.Marshal(redact(v))
	if err != nil || len(out) > maxBody {
		return e.Str(key, "[body too large]")
	}
	return e.RawJSON(key, out)
}

func redact(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			if _, ok := piiKeys[strings.ToLower(k)]; ok {
				t[k] = redacted
				continue
			}
			t[k] = redact(child)
		}
	case []any:
		for i := range t {
			t[i] = redact(t[i])
		}
	}
	return v
}
