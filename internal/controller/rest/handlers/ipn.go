package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"runtime/debug"
	"strings"

	"MercadoPagoGateway/internal/domain/ipn"
	"MercadoPagoGateway/pkg/logger"

	"github.com/gin-gonic/gin"
)

const (
	headerSignature = "x-signature"
	headerRequestID = "x-request-id"

	maxIPNBody = 64 * 1024
)

type NotificationProcessor interface {
	Process(ctx context.Context, payload map[string]any) ipn.Outcome
	Reject(ctx context.Context, payload map[string]any, out ipn.Outcome)
}

type IPNHandler struct {
	processor NotificationProcessor
	verifier  *ipn.SignatureVerifier
	l         logger.Interface
}

func NewIPNHandler(processor NotificationProcessor, verifier *ipn.SignatureVerifier, l logger.Interface) *IPNHandler {
	return &IPNHandler{processor: processor, verifier: verifier, l: l}
}

// Notify always answers 200 so Mercado Pago does not keep retrying a
// delivery this side cannot act on.
func (h *IPNHandler) Notify(c *gin.Context) {
	ctx := c.Request.Context()

	defer func() {
		if rec := recover(); rec != nil {
			h.l.WithContext(ctx).Error("ipn: handler panic: %v\n%s", rec, debug.Stack())
			c.JSON(http.StatusOK, gin.H{"status": "ERROR", "message": "Internal error"})
		}
	}()

	payload := h.payload(c)

	if h.verifier.Enabled() {
		dataID := c.Query("data.id")
		if dataID == "" {
			if ref, ok := ipn.Normalize(payload); ok {
				dataID = ref.ID
			}
		}
		if err := h.verifier.Verify(c.GetHeader(headerSignature), c.GetHeader(headerRequestID), dataID); err != nil {
			h.l.WithContext(ctx).Warn("ipn: delivery rejected: %v", err)
			h.processor.Reject(ctx, payload, ipn.OutcomeInvalidSignature)
			c.JSON(http.StatusOK, gin.H{"status": "OK"})
			return
		}
	}

	h.processor.Process(ctx, payload)
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

// payload merges query parameters with the JSON body, the body taking
// precedence. Dotted query keys such as data.id become nested objects.
func (h *IPNHandler) payload(c *gin.Context) map[string]any {
	payload := make(map[string]any)
	for key, values := range c.Request.URL.Query() {
		if len(values) == 0 {
			continue
		}
		setPath(payload, key, values[0])
	}

	if c.Request.Body == nil {
		return payload
	}
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxIPNBody))
	if err != nil || len(bytes.TrimSpace(raw)) == 0 {
		return payload
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		h.l.WithContext(c.Request.Context()).Debug("ipn: body is not a JSON object: %v", err)
		return payload
	}
	for k, v := range body {
		payload[k] = v
	}
	return payload
}

func setPath(m map[string]any, key, value string) {
	head, rest, nestedKey := strings.Cut(key, ".")
	if !nestedKey || head == "" || rest == "" {
		m[key] = value
		return
	}
	child, ok := m[head].(map[string]any)
	if !ok {
		child = make(map[string]any)
		m[head] = child
	}
	setPath(child, rest, value)
}
